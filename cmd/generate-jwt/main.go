package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"crosschain-hub/internal/config"
	"crosschain-hub/internal/handlers"
	"crosschain-hub/internal/types"
)

func main() {
	identityHex := flag.String("identity", "", "caller identity (32-byte hex)")
	configPath := flag.String("config", "", "path to config file")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	if err := config.LoadConfig(*configPath); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	identity, err := types.ParseAddress(*identityHex)
	if err != nil {
		log.Fatalf("Invalid identity: %v", err)
	}

	token, expiresAt, err := handlers.GenerateJWTToken([]byte(config.AppConfig.JWT.Secret), config.AppConfig.JWT.Issuer, identity, *ttl)
	if err != nil {
		log.Fatalf("Error generating token: %v", err)
	}

	fmt.Println("============================================================")
	fmt.Println("JWT Token Generated for Testing")
	fmt.Println("============================================================")
	fmt.Println()
	fmt.Println("Token:")
	fmt.Println(token)
	fmt.Println()
	fmt.Printf("  Identity: %s\n", identity.Hex())
	fmt.Printf("  Expires:  %s\n", expiresAt.Format(time.RFC3339))
	fmt.Println()
	fmt.Printf("curl -H 'Authorization: Bearer %s' http://localhost:%d/api/hub\n", token, config.AppConfig.Server.Port)
}

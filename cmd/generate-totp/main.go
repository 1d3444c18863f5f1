package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/pquerna/otp/totp"
)

func main() {
	account := flag.String("account", "hub-admin", "account name embedded in a new key")
	newKey := flag.Bool("new", false, "generate a new admin TOTP secret")
	flag.Parse()

	if *newKey {
		key, err := totp.Generate(totp.GenerateOpts{Issuer: "crosschain-hub", AccountName: *account})
		if err != nil {
			fmt.Printf("Error generating TOTP key: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Secret: %s\n", key.Secret())
		fmt.Printf("URL:    %s\n", key.URL())
		fmt.Println("Set admin.totpSecret (or ADMIN_TOTP_SECRET) to the secret above.")
		return
	}

	secret := os.Getenv("ADMIN_TOTP_SECRET")
	if secret == "" {
		fmt.Println("ADMIN_TOTP_SECRET is not set; use -new to create one")
		os.Exit(1)
	}

	code, err := totp.GenerateCode(secret, time.Now())
	if err != nil {
		fmt.Printf("Error generating TOTP code: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Current TOTP Code: %s\n", code)
	fmt.Printf("Send it as the X-Admin-TOTP header; valid for ~30 seconds\n")
}

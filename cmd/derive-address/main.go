package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"crosschain-hub/internal/types"
	"crosschain-hub/internal/utils"
)

func main() {
	programHex := flag.String("program", os.Getenv("HUB_PROGRAM_ID"), "program id (32-byte hex)")
	family := flag.String("family", utils.SeedHubState, "hub-state | bridge-request | bridge-completion | portfolio | pact | vault")
	ownerHex := flag.String("owner", "", "user, creator or pact address depending on family")
	targetChain := flag.Uint("target-chain", 0, "bridge-request target chain")
	amount := flag.Uint64("amount", 0, "bridge-request gross amount")
	hashHex := flag.String("hash", "", "bridge-completion bridge hash")
	campaignSeed := flag.Uint64("campaign-seed", 0, "pact campaign seed")
	flag.Parse()

	programID, err := types.ParseAddress(*programHex)
	if err != nil {
		log.Fatalf("Invalid program id: %v", err)
	}

	params := utils.SeedParams{
		TargetChain:  types.ChainID(*targetChain),
		Amount:       types.Amount(*amount),
		CampaignSeed: *campaignSeed,
	}
	if *ownerHex != "" {
		if params.Owner, err = types.ParseAddress(*ownerHex); err != nil {
			log.Fatalf("Invalid owner: %v", err)
		}
	}
	if *hashHex != "" {
		if params.BridgeHash, err = types.ParseAddress(*hashHex); err != nil {
			log.Fatalf("Invalid hash: %v", err)
		}
	}

	seeds, err := utils.SeedsForFamily(*family, params)
	if err != nil {
		log.Fatal(err)
	}
	address, bump, err := utils.FindDerivedAddress(seeds, programID)
	if err != nil {
		log.Fatalf("Derivation failed: %v", err)
	}

	fmt.Printf("family:  %s\n", *family)
	fmt.Printf("address: %s\n", address.Hex())
	fmt.Printf("base58:  %s\n", utils.Base58(address))
	fmt.Printf("bump:    %d\n", bump)
}

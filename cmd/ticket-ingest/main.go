package main

import (
	"log"

	"github.com/loopper-ai/ticket-ingest/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

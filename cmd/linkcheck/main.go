package main

import (
	"log"

	"go.linkcheck.dev/linkcheck/pkg/linkcheckcmd"
)

func main() {
	if err := linkcheckcmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

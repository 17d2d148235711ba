// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Command pantr assigns paired-end reads to tandem-repeat loci and
// refines assignments via de Bruijn graph threading (see spec.md/§6 for
// the full CLI surface). It is a thin wrapper around the root pantr
// package, the same role cmd/muscato/main.go plays for muscato.go.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/kshedden/pantr"
	"github.com/kshedden/pantr/config"
)

func main() {
	fs := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	cfg, err := config.ParseFlags(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "pantr: %v\n", err)
		os.Exit(1)
	}
	if err := config.Validate(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "pantr: %v\n", err)
		os.Exit(1)
	}
	if err := pantr.Run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "pantr: %v\n", err)
		os.Exit(1)
	}
}

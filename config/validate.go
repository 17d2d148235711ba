// Copyright 2017, Kerby Shedden and the Muscato contributors.

package config

import (
	"fmt"

	"github.com/kshedden/pantr/classify"
)

// Validate checks required fields and fills in defaults for everything
// the reference defaults rather than requires (§6, mirroring checkArgs).
// It mutates c in place and returns an error describing the first fatal
// problem found, or nil if c is ready to run.
func Validate(c *Config) error {
	if c.K <= 0 {
		return fmt.Errorf("config: -k is required and must be positive")
	}
	if c.QueryKmerPrefix == "" {
		return fmt.Errorf("config: -qs is required")
	}
	if c.FastaInput == "" && c.FastqInput == "" {
		return fmt.Errorf("config: one of -fai or -fqi is required")
	}
	if c.FastaInput != "" && c.FastqInput != "" {
		return fmt.Errorf("config: -fai and -fqi are mutually exclusive")
	}

	if c.OutPrefix == "" && c.ExtractMode != 1 {
		return fmt.Errorf("config: -o is required unless -e 1 is set")
	}

	if c.Workers <= 0 {
		c.Workers = 1
	}

	if c.Cth == 0 {
		c.Cth = 1
	}
	if c.Rth == 0 {
		c.Rth = 0.5
	}
	if c.Rth < 0.5 || c.Rth > 1 {
		return fmt.Errorf("config: -rth must be in [0.5, 1], got %v", c.Rth)
	}

	if c.Align && c.ThreadCth == 0 {
		return fmt.Errorf("config: -a requires -g or -gc")
	}

	if c.ExtractMode != 0 && c.ExtractMode != 1 && c.ExtractMode != 2 {
		return fmt.Errorf("config: -e must be 1 or 2, got %d", c.ExtractMode)
	}

	if c.NFilter == 0 {
		c.NFilter = classify.DefaultNFilter
	}
	if c.NMFilter == 0 {
		c.NMFilter = classify.DefaultNMFilter
	}
	if c.NFilter < 2 {
		return fmt.Errorf("config: -kf-n must be >= 2, got %d", c.NFilter)
	}

	if c.SimMode != 0 && c.SimMode != 1 && c.SimMode != 2 {
		return fmt.Errorf("config: -s must be 1 or 2, got %d", c.SimMode)
	}
	if c.GenomeMapFile != "" && c.SimMode != 2 {
		return fmt.Errorf("config: -m requires -s 2")
	}

	if c.ReadsPerBatch <= 0 {
		c.ReadsPerBatch = 300000
	}

	if c.LogDir == "" {
		c.LogDir = "pantr_logs"
	}

	if c.BloomScreen {
		if c.ScreenBits == 0 {
			c.ScreenBits = 1 << 30
		}
		if c.NumHashScreen == 0 {
			c.NumHashScreen = 4
		}
	}

	return nil
}

// Copyright 2017, Kerby Shedden and the Muscato contributors.

package pantr

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// setupLog creates "<logDir>/pantr.log" and wraps it in a *log.Logger the
// same way muscato.go's setupLog does, returning the open file so the
// caller can close it when the run finishes.
func setupLog(logDir string) (*log.Logger, *os.File, error) {
	path := filepath.Join(logDir, "pantr.log")
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("pantr: creating log file %s: %w", path, err)
	}
	return log.New(f, "", log.Ltime), f, nil
}

package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/subosito/gotenv"
)

// loadDotEnv exports KEY=VALUE pairs from a dotenv file. A missing file is not
// an error and variables already present in the environment are kept.
func loadDotEnv(path string) error {
	if err := gotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load dotenv %s: %w", path, err)
	}
	return nil
}

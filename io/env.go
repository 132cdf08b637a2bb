package io

import (
	"errors"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

// Environment variables that override configuration files.
const (
	EnvOutputDir  = "REENTRY_OUTPUT_DIR"
	EnvArchiveDSN = "REENTRY_ARCHIVE_DSN"
	EnvForceModel = "REENTRY_FORCE_MODEL"
	EnvLogLevel   = "REENTRY_LOG_LEVEL"
)

// LoadEnv loads variables from the given dotenv files, or from .env when
// none are named. Variables already set in the environment win. A missing
// file is not an error.
func LoadEnv(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// ApplyEnv overrides wrap with any REENTRY_* variables that are set.
func ApplyEnv(wrap *RunWrapper) {
	if v := os.Getenv(EnvOutputDir); v != "" {
		wrap.Output.Dir = v
	}
	if v := os.Getenv(EnvArchiveDSN); v != "" {
		wrap.Output.ArchiveDSN = v
	}
	if v := os.Getenv(EnvForceModel); v != "" {
		wrap.Integrator.ForceModel = v
	}
}

// Package config fills env-tagged structs from the process environment and
// optional dotenv files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// DotEnvFile is the optional file read by Load.
const DotEnvFile = ".env"

// Load fills cfg from the environment and ./.env. Fields use caarlos0/env
// tags:
//
//	type Config struct {
//	    Port int `env:"STOREFRONT_HTTP_PORT" envDefault:"8010"`
//	}
func Load(cfg any) error {
	return LoadWithDotEnv(cfg, DotEnvFile)
}

// LoadWithDotEnv fills cfg from the environment layered over the given
// dotenv files. The process environment wins, then earlier files over later
// ones. Missing files are skipped. The process environment is not modified.
func LoadWithDotEnv(cfg any, files ...string) error {
	vars, err := readDotEnv(files)
	if err != nil {
		return err
	}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}

	if err := env.ParseWithOptions(cfg, env.Options{Environment: vars}); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func readDotEnv(files []string) (map[string]string, error) {
	vars := make(map[string]string)
	for _, f := range files {
		if f == "" {
			continue
		}
		values, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read dotenv %s: %w", f, err)
		}
		for k, v := range values {
			if _, seen := vars[k]; !seen {
				vars[k] = v
			}
		}
	}
	return vars, nil
}

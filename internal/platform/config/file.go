package config

import (
	"bytes"
	"os"

	perr "chronosplit/internal/platform/errors"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// LoadDotEnv loads KEY=VALUE pairs from the given dotenv files into the process env.
// Variables that are already set win. Missing files are skipped so a default ".env" can be passed blindly
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return perr.FromFS(err, perr.ErrorCodeInvalidArgument, "config.dotenv", p)
		}
		if err := godotenv.Load(p); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "config: dotenv %s", p)
		}
	}
	return nil
}

// LoadFile decodes a TOML file into v. Unknown keys are rejected so typos surface early
func LoadFile(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return perr.FromFS(err, perr.ErrorCodeInvalidArgument, "config.load", path)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return perr.WithField(perr.Wrapf(err, perr.ErrorCodeValidation, "config: decode %s", path), path)
	}
	return nil
}

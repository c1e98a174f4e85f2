package config

import (
	stderrors "errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MustLoad loads the configuration from environment variables and .env file.
// It panics when parsing fails.
func MustLoad[T any](cfg T, files ...string) {
	_ = godotenv.Load(files...)

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and .env file.
// A missing .env file is not an error; the process environment is used as is.
func Load[T any](cfg T, files ...string) error {
	if err := godotenv.Load(files...); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return err
	}

	return env.Parse(cfg)
}

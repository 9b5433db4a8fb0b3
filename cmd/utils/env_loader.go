package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	envFileFlag   = "--env-file"
	envFileEnvVar = "ENV_FILE"
)

// envFileLoader resolves which env file should be loaded for a given set of command-line args and environment.
type envFileLoader struct {
	args      []string
	lookupEnv func(string) (string, bool)
	load      func(filenames ...string) error
}

func newEnvFileLoader(args []string) envFileLoader {
	return envFileLoader{
		args:      args,
		lookupEnv: os.LookupEnv,
		load:      godotenv.Load,
	}
}

// LoadEnvFile loads environment variables from a file before the CLI flags are parsed, so viper picks them up as
// regular env vars. Priority: --env-file flag > ENV_FILE environment variable > .env in working directory. Variables
// that are already set in the environment are never overridden.
func LoadEnvFile() error {
	return newEnvFileLoader(os.Args).Load()
}

func (l envFileLoader) Load() error {
	if path := l.explicitPath(); path != "" {
		if err := l.load(path); err != nil {
			return fmt.Errorf("loading env file %s: %w", path, err)
		}
		return nil
	}

	err := l.load()
	if err == nil || errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading .env file: %w", err)
}

func (l envFileLoader) explicitPath() string {
	if path := l.flagValue(); path != "" {
		return toAbsolutePath(path)
	}

	if path, ok := l.lookupEnv(envFileEnvVar); ok && strings.TrimSpace(path) != "" {
		return toAbsolutePath(strings.TrimSpace(path))
	}

	return ""
}

func (l envFileLoader) flagValue() string {
	for i, arg := range l.args {
		if arg == envFileFlag && i+1 < len(l.args) {
			return l.args[i+1]
		}
		if value, found := strings.CutPrefix(arg, envFileFlag+"="); found {
			return value
		}
	}
	return ""
}

func toAbsolutePath(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return absPath
}

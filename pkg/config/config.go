package config

import (
	"io/fs"
	"os"
	"strings"

	"github.com/iancoleman/strcase"
	yamlparser "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

type Config struct {
	Hostname      string   `koanf:"-"`
	ServerHost    string   `koanf:"server_host"`
	ServerPort    int      `koanf:"server_port"`
	AllowedRoots  []string `koanf:"allowed_roots"`
	MaxInputBytes int      `koanf:"max_input_bytes"`
	MaxNodes      int      `koanf:"max_nodes"`
	MaxDepth      int      `koanf:"max_depth"`
}

const (
	configFileENV     = "CONFIG_FILE"
	defaultConfigFile = "./autostruct.yaml"
	envPrefix         = "AUTOSTRUCT_"
)

// New loads config in three layers: built-in defaults, then the optional yaml
// config file, then AUTOSTRUCT_-prefixed environment variables. Later layers
// win.
func New() (*Config, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return nil, errors.WithStack(err)
	}

	cfg := &Config{
		Hostname:      hostname,
		ServerHost:    "127.0.0.1",
		ServerPort:    8501,
		MaxInputBytes: 1 << 20,
		MaxNodes:      10000,
		MaxDepth:      64,
	}

	k := koanf.New(".")

	configFile := os.Getenv(configFileENV)
	if configFile == "" {
		configFile = defaultConfigFile
	}
	if err := k.Load(file.Provider(configFile), yamlparser.Parser()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, errors.WithStack(err)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix:        envPrefix,
		TransformFunc: transformEnv,
	}), nil)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, errors.WithStack(err)
	}

	return cfg, nil
}

// NewForTest returns a config with the built-in defaults and no file or
// environment loading, so tests aren't affected by the host machine.
func NewForTest() *Config {
	return &Config{
		Hostname:      "test",
		ServerHost:    "127.0.0.1",
		ServerPort:    8501,
		MaxInputBytes: 1 << 20,
		MaxNodes:      10000,
		MaxDepth:      64,
	}
}

// transformEnv maps AUTOSTRUCT_SERVER_PORT to the server_port key.
// allowed_roots values are comma-separated since env vars can't hold lists.
func transformEnv(key, value string) (string, any) {
	key = strcase.ToSnake(strings.TrimPrefix(key, envPrefix))
	if key == "allowed_roots" {
		parts := []string{}
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				parts = append(parts, part)
			}
		}
		return key, parts
	}
	return key, value
}

package config

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Search  *SearchConfig  `yaml:"search"`
	DB      *DBConfig      `yaml:"db"`
	Metrics *MetricsConfig `yaml:"metrics"`
	LogFile string         `yaml:"logFile"`
}

type DBConfig struct {
	Path string `yaml:"path"`
	// Keeps the witness journal in memory only, nothing is written to Path.
	InMemory bool `yaml:"inMemory"`
}

type MetricsConfig struct {
	// Address the prometheus handler listens on, e.g. ":9464". Empty
	// disables the metrics endpoint.
	ListenAddr string `yaml:"listenAddr"`
}

// NewConfig reads a single config file without applying defaults.
func NewConfig(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}

	defer file.Close()

	d := yaml.NewDecoder(file)
	config := &Config{}

	if err := d.Decode(&config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns the configuration written on first run for the
// given config directory.
func DefaultConfig(configPath string) *Config {
	return &Config{
		Search: DefaultSearchConfig(),
		DB: &DBConfig{
			Path: filepath.Join(configPath, "store"),
		},
		Metrics: &MetricsConfig{},
	}
}

// LoadConfig loads config.yml from the config directory, creating the
// directory and a default config.yml when either is missing. Values absent
// from the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		fmt.Println("Creating config directory " + configPath)
		if err = os.MkdirAll(configPath, fs.FileMode(0700)); err != nil {
			return nil, errors.Wrap(err, "load config")
		}
	} else {
		if err != nil {
			return nil, errors.Wrap(err, "load config")
		}

		if !info.IsDir() {
			return nil, errors.Wrap(
				errors.Wrap(ErrInvalidConfig, configPath+" is not a directory"),
				"load config",
			)
		}
	}

	config := DefaultConfig(configPath)

	file, err := os.Open(filepath.Join(configPath, "config.yml"))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrap(err, "load config")
		}

		fmt.Println("Generating default config...")
		if err = SaveConfig(configPath, config); err != nil {
			return nil, errors.Wrap(err, "load config")
		}

		return config, nil
	}

	defer file.Close()
	d := yaml.NewDecoder(file)
	if err := d.Decode(config); err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	if config.Search == nil {
		config.Search = DefaultSearchConfig()
	}

	if config.DB == nil {
		config.DB = &DBConfig{Path: filepath.Join(configPath, "store")}
	}

	if config.Metrics == nil {
		config.Metrics = &MetricsConfig{}
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}

	return config, nil
}

func SaveConfig(configPath string, config *Config) error {
	file, err := os.OpenFile(
		filepath.Join(configPath, "config.yml"),
		os.O_CREATE|os.O_RDWR|os.O_TRUNC,
		os.FileMode(0600),
	)
	if err != nil {
		return err
	}

	defer file.Close()

	d := yaml.NewEncoder(file)

	if err := d.Encode(config); err != nil {
		return err
	}

	return d.Close()
}

func (c *Config) Validate() error {
	if c.Search == nil {
		return errors.Wrap(ErrInvalidConfig, "missing search section")
	}

	if err := c.Search.Validate(); err != nil {
		return err
	}

	if c.DB != nil && !c.DB.InMemory && c.DB.Path == "" {
		return errors.Wrap(ErrInvalidConfig, "db path is empty")
	}

	return nil
}

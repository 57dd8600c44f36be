package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fritzlink/fritzlink-go/pkg/client"
)

// loadableConfig is the YAML-loadable subset of the client
// configuration. Command-line values win over file values.
type loadableConfig struct {
	Address        string        `yaml:"address"`
	Port           int           `yaml:"port"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password"`
	UseTLS         bool          `yaml:"tls"`
	Timeout        time.Duration `yaml:"timeout"`
	UseCache       bool          `yaml:"cache"`
	CacheDirectory string        `yaml:"cache_dir"`
}

// buildConfig merges command-line values over the optional file.
func buildConfig(cli loadableConfig, path string) (client.Config, error) {
	merged := cli
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return client.Config{}, fmt.Errorf("reading config: %w", err)
		}
		var file loadableConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return client.Config{}, fmt.Errorf("parsing config: %w", err)
		}
		merged = mergeConfig(file, cli)
	}

	return client.Config{
		Address:        merged.Address,
		Port:           merged.Port,
		User:           merged.User,
		Password:       merged.Password,
		UseTLS:         merged.UseTLS,
		Timeout:        merged.Timeout,
		UseCache:       merged.UseCache,
		CacheDirectory: merged.CacheDirectory,
	}, nil
}

func mergeConfig(file, cli loadableConfig) loadableConfig {
	merged := file
	if cli.Address != "" {
		merged.Address = cli.Address
	}
	if cli.Port != 0 {
		merged.Port = cli.Port
	}
	if cli.User != "" {
		merged.User = cli.User
	}
	if cli.Password != "" {
		merged.Password = cli.Password
	}
	if cli.UseTLS {
		merged.UseTLS = true
	}
	if cli.Timeout != 0 {
		merged.Timeout = cli.Timeout
	}
	if cli.UseCache {
		merged.UseCache = true
	}
	if cli.CacheDirectory != "" {
		merged.CacheDirectory = cli.CacheDirectory
	}
	return merged
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/flanksource/commons/logger"
	"github.com/flanksource/fixture-refresh/fixtures"
	"gopkg.in/yaml.v3"
)

const ConfigFileName = ".fixture-refresh.yaml"

// DefaultFixtureFile is refreshed when no files are configured or
// passed on the command line.
const DefaultFixtureFile = "tests/Mbta/DecodeTest.elm"

// Config is the project-level configuration loaded from .fixture-refresh.yaml
type Config struct {
	APIKey  string   `yaml:"api_key,omitempty"`
	Files   []string `yaml:"files,omitempty"`
	Indent  int      `yaml:"indent,omitempty"`
	Timeout string   `yaml:"timeout,omitempty"`
	RPS     float64  `yaml:"rps,omitempty"`
}

// Default returns the configuration used when no config file exists
func Default() *Config {
	return &Config{
		Files:  []string{DefaultFixtureFile},
		Indent: fixtures.DefaultIndent,
	}
}

// RequestTimeout parses the configured timeout, defaulting to 30s
func (c *Config) RequestTimeout() (time.Duration, error) {
	if c.Timeout == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	return d, nil
}

type Parser struct {
	rootDir string
}

func NewParser(rootDir string) *Parser {
	return &Parser{
		rootDir: rootDir,
	}
}

// findGitRoot finds the git root directory by walking up from startDir
func findGitRoot(startDir string) string {
	dir := startDir
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}

// findConfigFile searches for the config file by walking up the directory
// tree, stopping at the git root
func (p *Parser) findConfigFile() (string, error) {
	gitRoot := findGitRoot(p.rootDir)
	dir := p.rootDir

	for {
		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			logger.Debugf("Found config file: %s", configPath)
			return configPath, nil
		}

		if dir == gitRoot {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", os.ErrNotExist
}

// LoadConfig loads .fixture-refresh.yaml from the directory tree, returning
// defaults when no config file exists.
func (p *Parser) LoadConfig() (*Config, error) {
	configPath, err := p.findConfigFile()
	if err != nil {
		return Default(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %w", err)
	}

	if err := p.validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", configPath, err)
	}
	return config, nil
}

func (p *Parser) validateConfig(config *Config) error {
	if config.Indent < 0 {
		return fmt.Errorf("indent must not be negative, got %d", config.Indent)
	}
	if config.RPS < 0 {
		return fmt.Errorf("rps must not be negative, got %v", config.RPS)
	}
	if len(config.Files) == 0 {
		config.Files = []string{DefaultFixtureFile}
	}
	if config.Indent == 0 {
		config.Indent = fixtures.DefaultIndent
	}
	if _, err := config.RequestTimeout(); err != nil {
		return err
	}
	return nil
}

package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Config represents the complete server configuration
type Config struct {
	Server   ServerSettings   `hcl:"server,block"`
	Database DatabaseSettings `hcl:"database,block"`
	Cache    CacheSettings    `hcl:"cache,block"`
	Game     GameSettings     `hcl:"game,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address     string   `hcl:"address,optional"`
	Port        int      `hcl:"port,optional"`
	LogLevel    string   `hcl:"log_level,optional"`
	CORSOrigins []string `hcl:"cors_origins,optional"`
}

// DatabaseSettings points at the SQLite file backing the table registry
type DatabaseSettings struct {
	Path string `hcl:"path,optional"`
}

// CacheSettings configures the optional Redis snapshot cache
type CacheSettings struct {
	URL     string `hcl:"url,optional"`
	Enabled bool   `hcl:"enabled,optional"`
}

// GameSettings carries the table parameters shared by every table
type GameSettings struct {
	MaxPlayers int `hcl:"max_players,optional"`
	BuyIn      int `hcl:"buy_in,optional"`
	SmallBlind int `hcl:"small_blind,optional"`
	BigBlind   int `hcl:"big_blind,optional"`
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:     "0.0.0.0",
			Port:        8080,
			LogLevel:    "info",
			CORSOrigins: []string{"*"},
		},
		Database: DatabaseSettings{
			Path: "gamecartas.db",
		},
		Cache: CacheSettings{
			URL: "redis://localhost:6379/0",
		},
		Game: GameSettings{
			MaxPlayers: 9,
			BuyIn:      1000,
			SmallBlind: 5,
			BigBlind:   10,
		},
	}
}

// LoadConfig loads server configuration from an HCL file. A missing file
// yields the defaults.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	// Apply defaults for missing values
	if config.Server.Address == "" {
		config.Server.Address = "0.0.0.0"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if len(config.Server.CORSOrigins) == 0 {
		config.Server.CORSOrigins = []string{"*"}
	}
	if config.Database.Path == "" {
		config.Database.Path = "gamecartas.db"
	}
	if config.Cache.URL == "" {
		config.Cache.URL = "redis://localhost:6379/0"
	}
	if config.Game.MaxPlayers == 0 {
		config.Game.MaxPlayers = 9
	}
	if config.Game.BuyIn == 0 {
		config.Game.BuyIn = 1000
	}
	if config.Game.SmallBlind == 0 {
		config.Game.SmallBlind = 5
	}
	if config.Game.BigBlind == 0 {
		config.Game.BigBlind = 10
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Game.SmallBlind <= 0 {
		return fmt.Errorf("small blind must be positive")
	}
	if c.Game.BigBlind <= c.Game.SmallBlind {
		return fmt.Errorf("big blind must be greater than small blind")
	}
	if c.Game.MaxPlayers < 2 || c.Game.MaxPlayers > 10 {
		return fmt.Errorf("max players must be between 2 and 10")
	}
	if c.Game.BuyIn < c.Game.BigBlind {
		return fmt.Errorf("buy-in must cover at least one big blind")
	}
	return nil
}

// GetServerAddress returns the full listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

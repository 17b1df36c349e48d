// Package config loads simulation tuning from YAML with sane defaults.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration for the simulator.
type Config struct {
	ListenAddr  string `yaml:"listen_addr"`
	DBPath      string `yaml:"db_path"`
	TradeLogDir string `yaml:"trade_log_dir"`
	TickMS      int    `yaml:"tick_ms"`

	World WorldConfig `yaml:"world"`
	Trade TradeConfig `yaml:"trade"`
}

// WorldConfig controls map generation.
type WorldConfig struct {
	Width             int     `yaml:"width"`
	Height            int     `yaml:"height"`
	Seed              int64   `yaml:"seed"`
	Continents        int     `yaml:"continents"`
	NoiseScale        float64 `yaml:"noise_scale"`
	SettlementChance  float64 `yaml:"settlement_chance"`
	SettlementMinDist int     `yaml:"settlement_min_dist"`
}

// TradeConfig controls route synthesis.
type TradeConfig struct {
	PartnerRadius int `yaml:"partner_radius"`
	MaxPartners   int `yaml:"max_partners"`
	MaxExpansions int `yaml:"max_expansions"`
}

// Default returns the configuration used when no tuning file is present.
func Default() *Config {
	return &Config{
		ListenAddr:  ":8080",
		DBPath:      "data/tradewinds.db",
		TradeLogDir: "data/tradelog",
		TickMS:      50,
		World: WorldConfig{
			Width:             100,
			Height:            100,
			Seed:              42,
			Continents:        10,
			NoiseScale:        15.0,
			SettlementChance:  0.3,
			SettlementMinDist: 10,
		},
		Trade: TradeConfig{
			PartnerRadius: 60,
			MaxPartners:   3,
			MaxExpansions: 4096,
		},
	}
}

// Load reads a YAML tuning file layered over Default.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tuning: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("tuning: %w", err)
	}
	return cfg, nil
}

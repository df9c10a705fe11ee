package transport

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the transport wrapper's own configuration: listen address, the
// grid size and seed handed to model.New, a station charging rate, and the
// websocket broadcast cadence. It is loaded from
// a YAML file plus environment overrides via viper, the way the retrieved
// pack's config-driven services do, rather than a bespoke flag parser for
// every option.
type Config struct {
	Addr           string `mapstructure:"addr" yaml:"addr"`
	GridWidth      int    `mapstructure:"grid_width" yaml:"grid_width"`
	GridHeight     int    `mapstructure:"grid_height" yaml:"grid_height"`
	Seed           int64  `mapstructure:"seed" yaml:"seed"`
	StationRate    int    `mapstructure:"station_rate" yaml:"station_rate"`
	BroadcastEvery int    `mapstructure:"broadcast_every_ticks" yaml:"broadcast_every_ticks"`
}

// DefaultConfig mirrors the defaults spec §6 documents for initialize-time
// options, at the transport-config level.
func DefaultConfig() Config {
	return Config{
		Addr:           ":8080",
		GridWidth:      20,
		GridHeight:     20,
		Seed:           1,
		StationRate:    10,
		BroadcastEvery: 1,
	}
}

// LoadConfig reads transport configuration from path (YAML), falling back
// to defaults for anything unset, and allowing WAREHOUSESIM_-prefixed
// environment variables to override any key.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	cfg := DefaultConfig()
	v.SetDefault("addr", cfg.Addr)
	v.SetDefault("grid_width", cfg.GridWidth)
	v.SetDefault("grid_height", cfg.GridHeight)
	v.SetDefault("seed", cfg.Seed)
	v.SetDefault("station_rate", cfg.StationRate)
	v.SetDefault("broadcast_every_ticks", cfg.BroadcastEvery)

	v.SetEnvPrefix("warehousesim")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("load transport config %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("parse transport config %s: %w", path, err)
	}
	return cfg, nil
}

// WriteDefault renders DefaultConfig as YAML and writes it to path, for a
// "config init" style bootstrap of a new deployment's config file.
func WriteDefault(path string) error {
	out, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("write default config %s: %w", path, err)
	}
	return nil
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config controls a single synthetic workload run against priorityq.Queue.
type Config struct {
	// Items is the total number of items to enqueue, urgent ones included.
	Items int `mapstructure:"items"`

	// UrgentPercent is the percentage (0-100) of enqueues that use
	// priorityq.Urgent instead of a priority drawn from PriorityMax.
	UrgentPercent int `mapstructure:"urgent_percent"`

	// PriorityMax bounds the random non-urgent priority range to [0, PriorityMax].
	PriorityMax int `mapstructure:"priority_max"`

	// ReprioritizeEvery makes every Nth enqueue also pick a random earlier
	// item and, if it is still in the queue, re-enqueue it with its priority
	// value lowered by one, to exercise the re-prioritization path. Zero
	// disables this.
	ReprioritizeEvery int `mapstructure:"reprioritize_every"`

	// Seed is the PRNG seed; fixing it makes a run reproducible.
	Seed int64 `mapstructure:"seed"`
}

func defaultConfig() *Config {
	return &Config{
		Items:             100_000,
		UrgentPercent:     1,
		PriorityMax:       127,
		ReprioritizeEvery: 0,
		Seed:              1,
	}
}

func (c *Config) validate() error {
	if c.Items <= 0 {
		return errors.New("items must be positive")
	}
	if c.UrgentPercent < 0 || c.UrgentPercent > 100 {
		return fmt.Errorf("urgent_percent must be in [0,100], got %d", c.UrgentPercent)
	}
	if c.PriorityMax < 0 || c.PriorityMax > 127 {
		return fmt.Errorf("priority_max must be in [0,127], got %d", c.PriorityMax)
	}
	if c.ReprioritizeEvery < 0 {
		return errors.New("reprioritize_every must be non-negative")
	}
	return nil
}

// loadConfig merges defaults, an optional config file and PQBENCH_-prefixed
// environment variables into v; values already Set on v (the explicitly
// supplied flags) take precedence over all of them.
func loadConfig(v *viper.Viper, cfgFile string) (*Config, error) {
	defaults := defaultConfig()
	v.SetDefault("items", defaults.Items)
	v.SetDefault("urgent_percent", defaults.UrgentPercent)
	v.SetDefault("priority_max", defaults.PriorityMax)
	v.SetDefault("reprioritize_every", defaults.ReprioritizeEvery)
	v.SetDefault("seed", defaults.Seed)

	v.SetEnvPrefix("PQBENCH")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config carries every tunable the server reads from the environment.
type Config struct {
	Port      string `env:"PORT" envDefault:"8080"`
	AWSRegion string `env:"AWS_REGION" envDefault:"us-east-1"`

	// CacheTTL bounds how long ranked suggestions per date stay cached.
	CacheTTL time.Duration `env:"CACHE_TTL" envDefault:"24h"`

	// ProposalTTL is the pending lifetime before the expiry sweep fires.
	ProposalTTL time.Duration `env:"PROPOSAL_TTL" envDefault:"24h"`

	// SuggestionCount is how many distinct candidate groups are generated
	// per date on a cache miss.
	SuggestionCount int `env:"SUGGESTION_COUNT" envDefault:"20"`

	// ExpirySweepSpec is the cron spec driving the proposal expiry sweep.
	ExpirySweepSpec string `env:"EXPIRY_SWEEP_SPEC" envDefault:"@every 10m"`

	// ScheduleAPIURL is the base URL of the external schedule collaborator.
	ScheduleAPIURL string `env:"SCHEDULE_API_URL" envDefault:"http://localhost:8081"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "SETGAME_"

// CleanupPolicy selects when the dealer drops tokens that no longer point
// at the card they were placed on.
type CleanupPolicy string

const (
	// CleanupAfterValidClaim clears tokens on the slots of a valid claim only.
	CleanupAfterValidClaim CleanupPolicy = "valid-claim"
	// CleanupEveryIteration also reconciles every player's tokens with the
	// board on each pass of the dealer's timer loop.
	CleanupEveryIteration CleanupPolicy = "every-iteration"
)

func (p *CleanupPolicy) UnmarshalText(text []byte) error {
	switch policy := CleanupPolicy(text); policy {
	case CleanupAfterValidClaim, CleanupEveryIteration:
		*p = policy
		return nil
	default:
		return fmt.Errorf("unknown cleanup policy: %s", text)
	}
}

// Config holds the game settings. It is read only once the game starts.
type Config struct {
	// Players is the total number of players, HumanPlayers of which take
	// input from the API; the rest are driven by a computer helper.
	Players      int `env:"PLAYERS" envDefault:"4"`
	HumanPlayers int `env:"HUMAN_PLAYERS" envDefault:"0"`

	// FeatureSize is the number of cards in a set (K).
	FeatureSize  int `env:"FEATURE_SIZE" envDefault:"3"`
	FeatureCount int `env:"FEATURE_COUNT" envDefault:"4"`
	TableSize    int `env:"TABLE_SIZE" envDefault:"12"`
	// DeckSize defaults to every card the features can encode.
	DeckSize int `env:"DECK_SIZE" envDefault:"0"`

	TurnTimeout        time.Duration `env:"TURN_TIMEOUT" envDefault:"60s"`
	TurnTimeoutWarning time.Duration `env:"TURN_TIMEOUT_WARNING" envDefault:"5s"`
	PointFreeze        time.Duration `env:"POINT_FREEZE" envDefault:"1s"`
	PenaltyFreeze      time.Duration `env:"PENALTY_FREEZE" envDefault:"3s"`
	// FreezeTick is the cadence of freeze display updates.
	FreezeTick time.Duration `env:"FREEZE_TICK" envDefault:"1s"`

	// SleepInterval bounds the dealer's sleep far from the reshuffle
	// deadline, WarningSleepInterval inside the warning window.
	SleepInterval        time.Duration `env:"SLEEP_INTERVAL" envDefault:"940ms"`
	WarningSleepInterval time.Duration `env:"WARNING_SLEEP_INTERVAL" envDefault:"10ms"`

	// ComputerDelay is slept by a computer helper after each key press.
	ComputerDelay time.Duration `env:"COMPUTER_DELAY" envDefault:"0s"`

	CleanupPolicy CleanupPolicy `env:"CLEANUP_POLICY" envDefault:"valid-claim"`

	// Tracing is exported over OTLP/HTTP only when OTelEndpoint is set.
	OTelEndpoint string `env:"OTEL_ENDPOINT"`
	OTelEnabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
}

// Default returns the configuration used when no environment is set.
func Default() Config {
	cfg := Config{}
	// the defaults are static so parsing an empty environment cannot fail
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix, Environment: map[string]string{}}); err != nil {
		panic(fmt.Sprintf("failed to parse default config: %v", err))
	}
	cfg.applyDefaults()
	return cfg
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(nil)
}

// LoadFrom reads the configuration from environ, or from the process
// environment when environ is nil.
func LoadFrom(environ map[string]string) (Config, error) {
	cfg := Config{}
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("failed to parse env: %v", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %v", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DeckSize == 0 {
		c.DeckSize = c.MaxDeckSize()
	}
}

// MaxDeckSize returns FeatureSize^FeatureCount.
func (c Config) MaxDeckSize() int {
	size := 1
	for i := 0; i < c.FeatureCount; i++ {
		size *= c.FeatureSize
	}
	return size
}

// Validate checks the settings are consistent.
func (c Config) Validate() error {
	switch {
	case c.Players < 1:
		return fmt.Errorf("players must be at least 1, got %d", c.Players)
	case c.HumanPlayers < 0 || c.HumanPlayers > c.Players:
		return fmt.Errorf("human players must be between 0 and %d, got %d", c.Players, c.HumanPlayers)
	case c.FeatureSize < 2:
		return fmt.Errorf("feature size must be at least 2, got %d", c.FeatureSize)
	case c.FeatureCount < 1:
		return fmt.Errorf("feature count must be at least 1, got %d", c.FeatureCount)
	case c.TableSize < c.FeatureSize:
		return fmt.Errorf("table size %d is smaller than feature size %d", c.TableSize, c.FeatureSize)
	case c.DeckSize < 1 || c.DeckSize > c.MaxDeckSize():
		return fmt.Errorf("deck size must be between 1 and %d, got %d", c.MaxDeckSize(), c.DeckSize)
	case c.TurnTimeout <= 0:
		return fmt.Errorf("turn timeout must be positive, got %s", c.TurnTimeout)
	case c.TurnTimeoutWarning < 0:
		return fmt.Errorf("turn timeout warning must not be negative, got %s", c.TurnTimeoutWarning)
	case c.PointFreeze < 0 || c.PenaltyFreeze < 0:
		return fmt.Errorf("freeze durations must not be negative")
	case c.FreezeTick <= 0:
		return fmt.Errorf("freeze tick must be positive, got %s", c.FreezeTick)
	case c.SleepInterval <= 0 || c.WarningSleepInterval <= 0:
		return fmt.Errorf("dealer sleep intervals must be positive")
	case c.ComputerDelay < 0:
		return fmt.Errorf("computer delay must not be negative, got %s", c.ComputerDelay)
	}
	switch c.CleanupPolicy {
	case CleanupAfterValidClaim, CleanupEveryIteration:
	default:
		return fmt.Errorf("unknown cleanup policy: %s", c.CleanupPolicy)
	}
	return nil
}

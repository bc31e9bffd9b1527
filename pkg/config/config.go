package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	iso8601 "github.com/senseyeio/duration"
	"github.com/travigo/nextdepartures/pkg/ctdf"
	"github.com/travigo/nextdepartures/pkg/util"
	"gopkg.in/yaml.v3"
)

var ErrDuplicateLine = errors.New("line configured more than once")

var defaultPaths = []string{"config.yml", "config.yaml"}

type Config struct {
	Timezone string `yaml:"timezone" validate:"required"`

	PRIM     PRIMConfig     `yaml:"prim"`
	Refresh  RefreshConfig  `yaml:"refresh"`
	Fallback FallbackConfig `yaml:"fallback"`

	Lines []*ctdf.Line `yaml:"lines" validate:"required,min=1,dive"`

	Location *time.Location `yaml:"-"`
}

type PRIMConfig struct {
	BaseURL     string `yaml:"baseUrl" validate:"omitempty,url"`
	ProxyPrefix string `yaml:"proxyPrefix" validate:"omitempty,url"`
	APIKey      string `yaml:"apiKey"`
	Timeout     string `yaml:"timeout"`
}

// Periods are ISO-8601 durations
type RefreshConfig struct {
	Departures   string `yaml:"departures"`
	Fallback     string `yaml:"fallback"`
	ItineraryTTL string `yaml:"itineraryTtl"`
}

type FallbackConfig struct {
	FirstLast string `yaml:"firstLast" validate:"required"`
	Stops     string `yaml:"stops"`
}

// Load reads the configuration from path, or from the first default location that exists when
// path is empty
func Load(path string) (*Config, error) {
	paths := defaultPaths
	if path != "" {
		paths = []string{path}
	}

	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}

	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	cfg.applyDefaults()

	cfg.PRIM.APIKey = util.GetEnvironmentVariableOrDefault("TRAVIGO_PRIM_API_KEY", cfg.PRIM.APIKey)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, err
	}

	if err := cfg.check(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Timezone == "" {
		c.Timezone = "Europe/Paris"
	}
	if c.PRIM.Timeout == "" {
		c.PRIM.Timeout = "PT10S"
	}
	if c.Refresh.Departures == "" {
		c.Refresh.Departures = "PT60S"
	}
	if c.Refresh.Fallback == "" {
		c.Refresh.Fallback = "P1D"
	}
	if c.Refresh.ItineraryTTL == "" {
		c.Refresh.ItineraryTTL = "PT90M"
	}
}

func (c *Config) check() error {
	location, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", c.Timezone, err)
	}
	c.Location = location

	for _, period := range []string{c.PRIM.Timeout, c.Refresh.Departures, c.Refresh.Fallback, c.Refresh.ItineraryTTL} {
		if _, err := iso8601.ParseISO8601(period); err != nil {
			return fmt.Errorf("period %q: %w", period, err)
		}
	}

	seen := map[string]bool{}
	for _, line := range c.Lines {
		if seen[line.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateLine, line.ID)
		}
		seen[line.ID] = true

		directions := map[string]bool{}
		for _, direction := range line.Directions {
			if directions[direction.Key] {
				return fmt.Errorf("line %s has direction %s more than once", line.ID, direction.Key)
			}
			directions[direction.Key] = true
		}
	}

	return nil
}

func (c *Config) GetLine(lineID string) *ctdf.Line {
	for _, line := range c.Lines {
		if line.ID == lineID {
			return line
		}
	}
	return nil
}

// Period resolves an ISO-8601 period against the current time, so calendar periods such as
// P1D follow daylight saving changes
func Period(value string, from time.Time) time.Duration {
	period, err := iso8601.ParseISO8601(value)
	if err != nil {
		return 0
	}
	return period.Shift(from).Sub(from)
}

func (c *Config) DeparturesInterval() time.Duration {
	return Period(c.Refresh.Departures, time.Now().In(c.Location))
}

func (c *Config) FallbackInterval() time.Duration {
	return Period(c.Refresh.Fallback, time.Now().In(c.Location))
}

func (c *Config) FallbackTTL() iso8601.Duration {
	period, _ := iso8601.ParseISO8601(c.Refresh.Fallback)
	return period
}

func (c *Config) ItineraryTTL() time.Duration {
	return Period(c.Refresh.ItineraryTTL, time.Now().In(c.Location))
}

func (c *Config) RequestTimeout() time.Duration {
	return Period(c.PRIM.Timeout, time.Now().In(c.Location))
}

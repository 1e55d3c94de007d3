// Package config handles tasklane.toml host configuration.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/vnykmshr/tasklane/pkg/common/errors"
	"github.com/vnykmshr/tasklane/pkg/common/validation"
	"github.com/vnykmshr/tasklane/pkg/workqueue"
)

// MaxCapacity bounds the configured queue capacity.
const MaxCapacity = 1 << 16

// Config is the host configuration read from a TOML file.
type Config struct {
	Name        string `toml:"name"`
	Capacity    int    `toml:"capacity"`
	Priority    int    `toml:"priority"`
	MetricsAddr string `toml:"metrics_addr"`
	Timezone    string `toml:"timezone"`
	Jobs        []Job  `toml:"jobs"`

	// Path is the file the configuration was loaded from (set at load time).
	Path string `toml:"-"`
}

// Job is a timed job. Exactly one of Every and Cron is set.
type Job struct {
	ID       string        `toml:"id"`
	Every    time.Duration `toml:"every"`
	Cron     string        `toml:"cron"`
	Closures int           `toml:"closures"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Name:     "tasklane",
		Capacity: workqueue.DefaultCapacity,
	}
}

// Load parses and validates the TOML file at path. Unknown keys are
// rejected.
func Load(path string) (*Config, error) {
	c := Default()
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	if err := checkUndecoded(md); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	c.Path = path
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse reads configuration from TOML text. Unknown keys are rejected.
func Parse(text string) (*Config, error) {
	c := Default()
	md, err := toml.Decode(text, c)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	if err := checkUndecoded(md); err != nil {
		return nil, err
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// checkUndecoded rejects keys present in the document but absent from
// Config.
func checkUndecoded(md toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, 0, len(undecoded))
	for _, k := range undecoded {
		keys = append(keys, k.String())
	}
	sort.Strings(keys)
	return errors.NewValidationError("config", "keys", strings.Join(keys, ", "), "unknown").
		WithHint("check spelling against the documented keys")
}

func (c *Config) applyDefaults() {
	if c.Capacity == 0 {
		c.Capacity = workqueue.DefaultCapacity
	}
	for i := range c.Jobs {
		if c.Jobs[i].Closures == 0 {
			c.Jobs[i].Closures = 1
		}
	}
}

// Validate checks every field and returns the first problem found.
func (c *Config) Validate() error {
	if err := validation.ValidateNotEmpty("config", "name", c.Name); err != nil {
		return err
	}
	if err := validation.ValidateMaxLength("config", "name", c.Name, 255); err != nil {
		return err
	}
	if err := validation.ValidateRange("config", "capacity", c.Capacity, 1, MaxCapacity); err != nil {
		return err
	}
	if err := validation.ValidateRange("config", "priority", c.Priority, -20, 19); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Jobs))
	for _, j := range c.Jobs {
		if err := j.validate(); err != nil {
			return err
		}
		if seen[j.ID] {
			return fmt.Errorf("job %q: %w", j.ID, errors.ErrDuplicateID)
		}
		seen[j.ID] = true
	}
	return nil
}

func (j Job) validate() error {
	if err := validation.ValidateNotEmpty("config", "jobs.id", j.ID); err != nil {
		return err
	}
	if (j.Every == 0) == (j.Cron == "") {
		return errors.NewValidationError("config", "jobs."+j.ID, "", "needs exactly one of every or cron").
			WithHint("set every = \"5s\" or cron = \"0 * * * *\"")
	}
	if j.Cron == "" {
		if err := validation.ValidatePositiveDuration("config", "jobs."+j.ID+".every", j.Every); err != nil {
			return err
		}
	}
	return validation.ValidateRange("config", "jobs."+j.ID+".closures", j.Closures, 1, MaxCapacity)
}

// Location returns the time zone for cron jobs. An empty timezone means
// the local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.NewValidationError("config", "timezone", c.Timezone, err.Error()).
			WithHint("use an IANA name such as UTC or Europe/Berlin")
	}
	return loc, nil
}

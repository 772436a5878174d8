// control/config.go
// Author: momentics <momentics@gmail.com>
//
// YAML configuration and a store that propagates reloads to listeners.

package control

import (
	"bytes"
	"io"
	"log"
	"os"
	"sync"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/momentics/hioload-ring/api"
	"github.com/momentics/hioload-ring/ring"
)

// Config is the on-disk configuration.
type Config struct {
	Ring      RingConfig      `yaml:"ring"`
	Allocator AllocatorConfig `yaml:"allocator"`
	Metrics   MetricsConfig   `yaml:"metrics"`
}

type RingConfig struct {
	Capacity     int    `yaml:"capacity"`
	ShrinkPolicy string `yaml:"shrink_policy"`
}

type AllocatorConfig struct {
	Kind       string `yaml:"kind"` // heap | page
	Slab       bool   `yaml:"slab"`
	SlabDepth  int    `yaml:"slab_depth"`
	LimitBytes int64  `yaml:"limit_bytes"` // 0 disables the budget
}

type MetricsConfig struct {
	Bind string `yaml:"bind"`
}

const (
	AllocatorHeap = "heap"
	AllocatorPage = "page"
)

// DefaultConfig returns a validated configuration with every default set.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and validates a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "control: read config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "control: %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML, rejecting unknown keys, then applies defaults and
// validates. An empty document yields DefaultConfig.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decode yaml")
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Ring.Capacity == 0 {
		c.Ring.Capacity = 64
	}
	if c.Ring.ShrinkPolicy == "" {
		c.Ring.ShrinkPolicy = ring.ShrinkDropOldest.String()
	}
	if c.Allocator.Kind == "" {
		c.Allocator.Kind = AllocatorHeap
	}
	if c.Allocator.SlabDepth == 0 {
		c.Allocator.SlabDepth = 1024
	}
	if c.Metrics.Bind == "" {
		c.Metrics.Bind = "127.0.0.1:9110"
	}
}

func invalid(field string, value any, msg string) *api.Error {
	return api.NewError(api.ErrCodeInvalidArgument, msg).
		WithContext("field", field).
		WithContext("value", value)
}

func (c *Config) validate() error {
	if c.Ring.Capacity < ring.MinCapacity {
		return invalid("ring.capacity", c.Ring.Capacity, "ring capacity below minimum")
	}
	if _, err := ring.ParseShrinkPolicy(c.Ring.ShrinkPolicy); err != nil {
		return invalid("ring.shrink_policy", c.Ring.ShrinkPolicy, "unknown shrink policy")
	}
	switch c.Allocator.Kind {
	case AllocatorHeap, AllocatorPage:
	default:
		return invalid("allocator.kind", c.Allocator.Kind, "unknown allocator kind")
	}
	if c.Allocator.SlabDepth < 0 {
		return invalid("allocator.slab_depth", c.Allocator.SlabDepth, "slab depth must not be negative")
	}
	if c.Allocator.LimitBytes < 0 {
		return invalid("allocator.limit_bytes", c.Allocator.LimitBytes, "limit must not be negative")
	}
	return nil
}

// Policy returns the parsed shrink policy; the config must be validated.
func (c *Config) Policy() ring.ShrinkPolicy {
	p, _ := ring.ParseShrinkPolicy(c.Ring.ShrinkPolicy)
	return p
}

// ConfigStore holds the current configuration and notifies listeners on
// change. Listeners run synchronously on the goroutine that calls Update or
// Reload, so a listener may operate on a ring owned by that goroutine.
type ConfigStore struct {
	mu        sync.RWMutex
	cfg       Config
	listeners []func(old, cur Config)
}

// NewConfigStore starts from cfg, or DefaultConfig when cfg is nil.
func NewConfigStore(cfg *Config) *ConfigStore {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &ConfigStore{cfg: *cfg}
}

// Snapshot returns a copy of the current configuration.
func (cs *ConfigStore) Snapshot() Config {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.cfg
}

// OnReload registers a listener called with the previous and new config.
func (cs *ConfigStore) OnReload(fn func(old, cur Config)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}

// Update validates cfg, swaps it in and dispatches listeners.
func (cs *ConfigStore) Update(cfg *Config) error {
	next := *cfg
	next.applyDefaults()
	if err := next.validate(); err != nil {
		return err
	}
	cs.mu.Lock()
	old := cs.cfg
	cs.cfg = next
	listeners := append([]func(old, cur Config){}, cs.listeners...)
	cs.mu.Unlock()

	for _, fn := range listeners {
		fn(old, next)
	}
	return nil
}

// Reload loads path and applies it with Update. On error the current
// configuration stays in place.
func (cs *ConfigStore) Reload(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	if err := cs.Update(cfg); err != nil {
		return err
	}
	log.Printf("control: configuration reloaded from %s", path)
	return nil
}

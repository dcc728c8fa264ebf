// Package config provides YAML configuration for a pointer store.
//
// Example configuration:
//
//	store:
//	  strictness: isEqual
//	  next_tick: false
//
//	initial:
//	  user:
//	    name: ada
//	overlays:
//	  - user:
//	      theme: dark
//
//	comparers:
//	  sameId: "a.id == b.id"
//	  sameSize:
//	    engine: expr
//	    expr: "len(a) == len(b)"
//
//	activity:
//	  enabled: true
//	  channel: ui
//	  actor_id: 2f0c1c1e-6a9b-4a55-9a0e-8b5f1a1f4c11
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goliatone/go-ptrstore/layering"
	"github.com/goliatone/go-ptrstore/pkg/activity"
	"github.com/goliatone/go-ptrstore/pkg/compare"
	"github.com/goliatone/go-ptrstore/pkg/eval"
	"github.com/goliatone/go-ptrstore/pkg/store"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
//
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Store holds the store-level write and comparison defaults.
	Store StoreConfig `yaml:"store"`

	// Initial is the document the store starts from.
	Initial map[string]any `yaml:"initial"`

	// Overlays are merged over Initial in order; later overlays win and a
	// null value removes the key.
	Overlays []map[string]any `yaml:"overlays"`

	// Comparers maps custom strictness names to expressions over `a`
	// (previous value) and `b` (next value) returning true when equal.
	Comparers map[string]ComparerConfig `yaml:"comparers"`

	// Activity configures mutation events.
	Activity ActivityConfig `yaml:"activity"`

	// Functions are exposed to comparer expressions. Set it in code before
	// calling StoreOptions or NewStore.
	Functions *eval.FunctionRegistry `yaml:"-"`
}

// ComparerConfig is one custom strictness rule. In YAML it is either a bare
// CEL expression or an object with expr and engine.
type ComparerConfig struct {
	Expr string `yaml:"expr"`

	// Engine is one of cel, expr or js. Defaults to cel.
	Engine string `yaml:"engine"`
}

// UnmarshalYAML implements yaml.Unmarshaler for ComparerConfig.
func (c *ComparerConfig) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		return node.Decode(&c.Expr)
	case yaml.MappingNode:
		var raw struct {
			Expr   string `yaml:"expr"`
			Engine string `yaml:"engine"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		c.Expr = raw.Expr
		c.Engine = raw.Engine
		return nil
	}
	return fmt.Errorf("comparer must be a string or object, got %v", node.Kind)
}

func (c ComparerConfig) engine() string {
	if e := strings.ToLower(strings.TrimSpace(c.Engine)); e != "" {
		return e
	}
	return eval.EngineCEL
}

// StoreConfig mirrors the store constructor flags.
type StoreConfig struct {
	// Strictness is the default equality policy. Defaults to "none".
	Strictness string `yaml:"strictness"`

	// NextTick makes deferred writes the default.
	NextTick bool `yaml:"next_tick"`
}

// ActivityConfig controls activity emission.
type ActivityConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Channel  string `yaml:"channel"`
	ActorID  string `yaml:"actor_id"`
	UserID   string `yaml:"user_id"`
	TenantID string `yaml:"tenant_id"`
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data, applies defaults and validates it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if strings.TrimSpace(cfg.Store.Strictness) == "" {
		cfg.Store.Strictness = string(compare.None)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks strictness names and compiles custom comparers.
func (c *Config) Validate() error {
	strictness, err := compare.ParseStrictness(c.Store.Strictness)
	if err != nil {
		return fmt.Errorf("store.strictness: %w", err)
	}
	if !strictness.IsBuiltin() {
		if _, ok := c.Comparers[string(strictness)]; !ok {
			return fmt.Errorf("store.strictness: %q is neither built in nor declared under comparers", strictness)
		}
	}
	for _, name := range c.comparerNames() {
		if strings.TrimSpace(c.Comparers[name].Expr) == "" {
			return fmt.Errorf("comparers.%s: expression is required", name)
		}
		if compare.Strictness(name).IsBuiltin() {
			return fmt.Errorf("comparers.%s: built-in strictness cannot be redefined", name)
		}
	}
	return c.checkComparers()
}

// checkComparers type-checks every comparer expression with `a` and `b`
// declared, so syntax errors surface at load time rather than on the
// first comparison.
func (c *Config) checkComparers() error {
	engines := map[string]eval.Evaluator{}
	for _, name := range c.comparerNames() {
		rule := c.Comparers[name]
		ev, ok := engines[rule.engine()]
		if !ok {
			var err error
			if ev, err = eval.NewEngine(rule.engine(), eval.EngineOptions{Functions: c.Functions}); err != nil {
				return fmt.Errorf("comparers.%s: %w", name, err)
			}
			engines[rule.engine()] = ev
		}
		if err := eval.Check(ev, rule.Expr, "a", "b"); err != nil {
			return fmt.Errorf("comparers.%s: %w", name, err)
		}
	}
	return nil
}

// Strictness returns the parsed default strictness.
func (c *Config) Strictness() compare.Strictness {
	s, err := compare.ParseStrictness(c.Store.Strictness)
	if err != nil {
		return compare.None
	}
	return s
}

// InitialDocument returns the initial document with overlays applied.
func (c *Config) InitialDocument() map[string]any {
	layers := make([]map[string]any, 0, len(c.Overlays)+1)
	for i := len(c.Overlays) - 1; i >= 0; i-- {
		layers = append(layers, c.Overlays[i])
	}
	layers = append(layers, c.Initial)
	return layering.MergeDocuments(layers...)
}

// StoreOptions converts the configuration into store options. hooks receive
// activity events when activity is enabled.
func (c *Config) StoreOptions(hooks ...activity.Hook) ([]store.Option, error) {
	opts := []store.Option{
		store.WithStrictness(c.Strictness()),
		store.WithNextTick(c.Store.NextTick),
	}
	cmp, err := c.comparer()
	if err != nil {
		return nil, err
	}
	if cmp != nil {
		opts = append(opts, store.WithComparer(cmp))
	}
	if c.Activity.Enabled {
		emitter := activity.NewEmitter(activity.Hooks(hooks), activity.Config{
			Enabled: true,
			Channel: c.Activity.Channel,
		})
		opts = append(opts, store.WithActivity(emitter, activity.Actor{
			ActorID:  c.Activity.ActorID,
			UserID:   c.Activity.UserID,
			TenantID: c.Activity.TenantID,
		}))
	}
	return opts, nil
}

// NewStore builds a store from the configuration.
func (c *Config) NewStore(extra ...store.Option) (*store.Store, error) {
	opts, err := c.StoreOptions()
	if err != nil {
		return nil, err
	}
	return store.New(c.InitialDocument(), append(opts, extra...)...), nil
}

// comparer builds one evaluator-backed comparer per engine and chains
// them. Each rule is owned by exactly one engine.
func (c *Config) comparer() (compare.Comparer, error) {
	if len(c.Comparers) == 0 {
		return nil, nil
	}
	byEngine := map[string]map[compare.Strictness]string{}
	for _, name := range c.comparerNames() {
		rule := c.Comparers[name]
		if byEngine[rule.engine()] == nil {
			byEngine[rule.engine()] = map[compare.Strictness]string{}
		}
		byEngine[rule.engine()][compare.Strictness(name)] = rule.Expr
	}
	engines := make([]string, 0, len(byEngine))
	for engine := range byEngine {
		engines = append(engines, engine)
	}
	sort.Strings(engines)

	cache := eval.NewMemoryCache()
	chain := make([]compare.Comparer, 0, len(engines))
	for _, engine := range engines {
		ev, err := eval.NewEngine(engine, eval.EngineOptions{Cache: cache, Functions: c.Functions})
		if err != nil {
			return nil, fmt.Errorf("comparers: %w", err)
		}
		cmp, err := compare.EvaluatorComparer(ev, byEngine[engine])
		if err != nil {
			return nil, fmt.Errorf("comparers: %w", err)
		}
		chain = append(chain, cmp)
	}
	if len(chain) == 1 {
		return chain[0], nil
	}
	return compare.Chain(chain...), nil
}

func (c *Config) comparerNames() []string {
	names := make([]string, 0, len(c.Comparers))
	for name := range c.Comparers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

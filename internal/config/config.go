package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rshade/pagerkit/internal/logging"
	"github.com/rshade/pagerkit/internal/paginator"
	"github.com/rshade/pagerkit/internal/transport"
)

// Output formats accepted by output.default_format and --output.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Default values.
const (
	DefaultSourceName = "demo"
	DefaultHTTPAddr   = "127.0.0.1:8080"
	DefaultGRPCAddr   = "127.0.0.1:7070"
	DefaultMaxPages   = 0
	configFileName    = "config.yaml"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the contents of ~/.pagerkit/config.yaml.
type Config struct {
	Paginator PaginatorConfig         `yaml:"paginator" json:"paginator"`
	Sources   map[string]SourceConfig `yaml:"sources"   json:"sources"`
	Logging   LoggingConfig           `yaml:"logging"   json:"logging"`
	Output    OutputConfig            `yaml:"output"    json:"output"`
	Serve     ServeConfig             `yaml:"serve"     json:"serve"`

	path string
}

// PaginatorConfig holds the defaults applied to every paginator the CLI builds.
type PaginatorConfig struct {
	// MergePolicy is "concat" or "distinct".
	MergePolicy      string `yaml:"merge_policy"        json:"merge_policy"`
	ClearOnStartOver bool   `yaml:"clear_on_start_over" json:"clear_on_start_over"`
	// MaxPages stops headless fetches after this many pages. Zero means no limit.
	MaxPages int `yaml:"max_pages" json:"max_pages"`
}

// SourceConfig is one named remote list.
type SourceConfig struct {
	Transport      string            `yaml:"transport"                 json:"transport"`
	Endpoint       string            `yaml:"endpoint"                  json:"endpoint"`
	PageSize       int               `yaml:"page_size,omitempty"       json:"page_size,omitempty"`
	TimeoutSeconds int               `yaml:"timeout_seconds,omitempty" json:"timeout_seconds,omitempty"`
	Headers        map[string]string `yaml:"headers,omitempty"         json:"headers,omitempty"`
}

// LoggingConfig configures the zerolog logger.
type LoggingConfig struct {
	Level  string `yaml:"level"          json:"level"`
	Format string `yaml:"format"         json:"format"`
	File   string `yaml:"file,omitempty" json:"file,omitempty"`
}

// OutputConfig configures command output.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"`
}

// ServeConfig configures the demo backend started by `pagerkit serve`.
type ServeConfig struct {
	HTTPAddr  string `yaml:"http_addr"  json:"http_addr"`
	GRPCAddr  string `yaml:"grpc_addr"  json:"grpc_addr"`
	Size      int    `yaml:"size"       json:"size"`
	Overlap   bool   `yaml:"overlap"    json:"overlap"`
	FailEvery int    `yaml:"fail_every" json:"fail_every"`
	LatencyMS int    `yaml:"latency_ms" json:"latency_ms"`
}

// Default returns the built-in configuration: one "demo" source pointing at
// the local demo backend.
func Default() *Config {
	return &Config{
		Paginator: PaginatorConfig{
			MergePolicy: string(paginator.MergeConcat),
			MaxPages:    DefaultMaxPages,
		},
		Sources: map[string]SourceConfig{
			DefaultSourceName: {
				Transport: transport.KindREST,
				Endpoint:  "http://" + DefaultHTTPAddr + "/v1/items",
				PageSize:  transport.DefaultPageSize,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatConsole,
		},
		Output: OutputConfig{
			DefaultFormat: FormatTable,
		},
		Serve: ServeConfig{
			HTTPAddr: DefaultHTTPAddr,
			GRPCAddr: DefaultGRPCAddr,
		},
	}
}

// New returns the effective configuration: defaults, then the config file in
// the config directory if it exists, then environment overrides. A broken
// config file is logged and ignored.
func New() *Config {
	cfg := Default()

	dir, err := GetConfigDir()
	if err == nil {
		cfg.path = filepath.Join(dir, configFileName)
		if loadErr := cfg.Load(cfg.path); loadErr != nil && !errors.Is(loadErr, os.ErrNotExist) {
			logger := logging.Global()
			logger.Warn().
				Str("component", "config").
				Err(loadErr).
				Str("path", cfg.path).
				Msg("failed to load config file, using defaults")
		}
	}

	cfg.applyEnv()
	return cfg
}

// LoadFile builds a Config from defaults and the file at path only, then
// applies environment overrides. It backs the --config flag.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.Load(path); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// Path returns the file the configuration was loaded from or will be saved to.
func (c *Config) Path() string {
	return c.path
}

// Load reads path and replaces the sections it contains.
func (c *Config) Load(path string) error {
	if err := ShallowMergeYAML(c, path); err != nil {
		return err
	}
	c.path = path
	return nil
}

// Save writes the configuration to path, creating parent directories.
func (c *Config) Save(path string) error {
	if path == "" {
		path = c.path
	}
	if path == "" {
		return errors.New("no config path to save to")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	c.path = path
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if _, err := paginator.ParseMergePolicy(c.Paginator.MergePolicy); err != nil {
		errs = append(errs, fmt.Errorf("paginator.merge_policy: %w", err))
	}
	if c.Paginator.MaxPages < 0 {
		errs = append(errs, fmt.Errorf("paginator.max_pages must not be negative, got %d", c.Paginator.MaxPages))
	}

	for _, name := range c.SourceNames() {
		if _, err := c.Source(name); err != nil {
			errs = append(errs, fmt.Errorf("sources.%s: %w", name, err))
		}
	}

	switch c.Output.DefaultFormat {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		errs = append(errs, fmt.Errorf("output.default_format must be table, json or yaml, got %q", c.Output.DefaultFormat))
	}

	switch c.Logging.Format {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format))
	}

	if c.Serve.FailEvery < 0 || c.Serve.LatencyMS < 0 {
		errs = append(errs, errors.New("serve.fail_every and serve.latency_ms must not be negative"))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// SourceNames returns the configured source names in sorted order.
func (c *Config) SourceNames() []string {
	names := make([]string, 0, len(c.Sources))
	for name := range c.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source resolves a named source into a normalized transport.Source.
func (c *Config) Source(name string) (transport.Source, error) {
	sc, ok := c.Sources[name]
	if !ok {
		return transport.Source{}, fmt.Errorf("unknown source %q (configured: %s)",
			name, strings.Join(c.SourceNames(), ", "))
	}
	return sc.ToSource(name)
}

// ToSource converts the section into a normalized transport.Source.
func (sc SourceConfig) ToSource(name string) (transport.Source, error) {
	kind := strings.ToLower(sc.Transport)
	switch kind {
	case "":
		kind = transport.KindREST
	case transport.KindREST, transport.KindGraphQL, transport.KindGRPC, transport.KindWebSocket:
	default:
		return transport.Source{}, fmt.Errorf("%w: %q", transport.ErrUnknownKind, sc.Transport)
	}
	if sc.TimeoutSeconds < 0 {
		return transport.Source{}, fmt.Errorf("timeout_seconds must not be negative, got %d", sc.TimeoutSeconds)
	}

	return transport.Source{
		Name:     name,
		Kind:     kind,
		Endpoint: sc.Endpoint,
		PageSize: sc.PageSize,
		Timeout:  time.Duration(sc.TimeoutSeconds) * time.Second,
		Headers:  sc.Headers,
	}.Normalize()
}

// MergePolicy returns the parsed merge policy, falling back to concat.
func (c *Config) MergePolicy() paginator.MergePolicy {
	p, err := paginator.ParseMergePolicy(c.Paginator.MergePolicy)
	if err != nil {
		return paginator.MergeConcat
	}
	return p
}

// applyEnv applies PAGERKIT_* environment overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv("PAGERKIT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("PAGERKIT_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("PAGERKIT_OUTPUT_FORMAT"); v != "" {
		c.Output.DefaultFormat = strings.ToLower(v)
	}
}

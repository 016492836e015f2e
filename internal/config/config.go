package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/quarkc-go/quark/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "quark.json"

	// DefaultPort is the default devtools server port.
	DefaultPort = 7070

	// DefaultHost is the default devtools server host.
	DefaultHost = "localhost"

	// DefaultContainer is the tag of the element trees are rendered into.
	DefaultContainer = "main"

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "quark"

	// DefaultSnapshotDir is the default directory for rendered snapshots.
	DefaultSnapshotDir = "snapshots"
)

// Config represents the complete quark.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Render contains rendering settings.
	Render RenderConfig `json:"render,omitempty"`

	// Devtools contains devtools server settings.
	Devtools DevtoolsConfig `json:"devtools,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics,omitempty"`

	// Tracing contains OpenTelemetry settings.
	Tracing TracingConfig `json:"tracing,omitempty"`

	// Snapshot contains snapshot storage settings.
	Snapshot SnapshotConfig `json:"snapshot,omitempty"`

	// Bench contains benchmark settings.
	Bench BenchConfig `json:"bench,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RenderConfig contains rendering settings.
type RenderConfig struct {
	// Debug enables development diagnostics.
	Debug bool `json:"debug,omitempty"`

	// Pretty indents rendered HTML.
	Pretty bool `json:"pretty,omitempty"`

	// Container is the tag of the element trees are rendered into.
	Container string `json:"container,omitempty"`
}

// DevtoolsConfig contains devtools server settings.
type DevtoolsConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled exposes /metrics on the devtools server.
	Enabled bool `json:"enabled,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	// Enabled records render spans with the global tracer provider.
	Enabled bool `json:"enabled,omitempty"`

	// TracerName is the tracer name.
	TracerName string `json:"tracerName,omitempty"`
}

// SnapshotConfig contains snapshot storage settings. Bucket selects S3
// storage; otherwise snapshots are written under Dir.
type SnapshotConfig struct {
	Dir    string `json:"dir,omitempty"`
	Bucket string `json:"bucket,omitempty"`
	Prefix string `json:"prefix,omitempty"`
	Region string `json:"region,omitempty"`

	// Endpoint overrides the S3 endpoint, for S3-compatible stores.
	Endpoint string `json:"endpoint,omitempty"`
}

// BenchConfig contains benchmark settings.
type BenchConfig struct {
	// Iterations is the number of samples per benchmark.
	Iterations int `json:"iterations,omitempty"`

	// Rows is the list size used by the list benchmarks.
	Rows int `json:"rows,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from the specified directory.
// It looks for quark.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("Q120").
				WithDetail("No quark.json found in " + filepath.Dir(path)).
				WithSuggestion("Create quark.json or run without a config to use defaults")
		}
		return nil, errors.New("Q121").Wrap(err)
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("Q121").
			WithDetail("Failed to parse quark.json: " + err.Error()).
			WithSuggestion("Check that quark.json is valid JSON").
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New("Q121").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("Q121").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Render.Container == "" {
		c.Render.Container = DefaultContainer
	}
	if c.Devtools.Host == "" {
		c.Devtools.Host = DefaultHost
	}
	if c.Devtools.Port == 0 {
		c.Devtools.Port = DefaultPort
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = "quark"
	}
	if c.Snapshot.Dir == "" {
		c.Snapshot.Dir = DefaultSnapshotDir
	}
	if c.Bench.Iterations == 0 {
		c.Bench.Iterations = 200
	}
	if c.Bench.Rows == 0 {
		c.Bench.Rows = 1000
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Devtools.Port < 0 || c.Devtools.Port > 65535 {
		return errors.New("Q122").
			WithDetail("devtools.port must be between 0 and 65535")
	}
	if c.Bench.Iterations < 0 || c.Bench.Rows < 0 {
		return errors.New("Q122").
			WithDetail("bench.iterations and bench.rows must not be negative")
	}
	if strings.ContainsAny(c.Render.Container, " <>/") {
		return errors.New("Q122").
			WithDetail("render.container must be a tag name, got " + strconv.Quote(c.Render.Container))
	}
	return nil
}

// DevtoolsAddress returns the listen address of the devtools server.
func (c *Config) DevtoolsAddress() string {
	return net.JoinHostPort(c.Devtools.Host, strconv.Itoa(c.Devtools.Port))
}

// SnapshotTarget returns the configured snapshot destination: an
// s3://bucket/prefix URL when a bucket is set, the snapshot directory
// otherwise.
func (c *Config) SnapshotTarget() string {
	if c.Snapshot.Bucket != "" {
		target := "s3://" + c.Snapshot.Bucket
		if p := strings.Trim(c.Snapshot.Prefix, "/"); p != "" {
			target += "/" + p
		}
		return target
	}
	return c.SnapshotPath()
}

// SnapshotPath returns the snapshot directory resolved against the config
// directory.
func (c *Config) SnapshotPath() string {
	if filepath.IsAbs(c.Snapshot.Dir) {
		return c.Snapshot.Dir
	}
	return filepath.Join(c.Dir(), c.Snapshot.Dir)
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the project root.
// Returns the directory containing quark.json, or an error if not found.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("Q120").
				WithDetail("No quark.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads configuration from the current working
// directory or its nearest parent with a quark.json. Without one it
// returns the defaults.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		if errors.HasCode(err, "Q120") {
			return New(), nil
		}
		return nil, err
	}

	return Load(root)
}

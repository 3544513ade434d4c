package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/fragsync-dev/fragsync/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "fragsync.json"

	// DefaultHost is the default HTTP listen host.
	DefaultHost = "localhost"

	// DefaultPort is the default HTTP listen port.
	DefaultPort = 8090

	// DefaultSnapshotPath is the default disk snapshot location.
	DefaultSnapshotPath = ".fragsync/snapshot.json"
)

// Config represents the complete fragsync.json configuration.
type Config struct {
	// Name is the deployment name, used in logs.
	Name string `json:"name,omitempty"`

	// Version is the configuration schema version.
	Version string `json:"version,omitempty"`

	// Server contains HTTP listener configuration.
	Server ServerConfig `json:"server,omitempty"`

	// Snapshot selects and configures the persistence backend.
	Snapshot SnapshotConfig `json:"snapshot,omitempty"`

	// Dashboard is the default dashboard layout served to the shell.
	Dashboard Dashboard `json:"dashboard,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP listener settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`

	// Debug enables verbose bus logging and the inspector endpoint.
	Debug bool `json:"debug,omitempty"`
}

// SnapshotConfig selects the snapshot backend.
//
// Backend is one of "memory", "disk", "sqlite", or "s3". The remaining
// fields apply to whichever backend is selected.
type SnapshotConfig struct {
	Backend string `json:"backend,omitempty"`

	// Path is the snapshot file for the disk backend, or the database
	// file for the sqlite backend.
	Path string `json:"path,omitempty"`

	// Bucket and Key locate the snapshot object for the s3 backend.
	Bucket string `json:"bucket,omitempty"`
	Key    string `json:"key,omitempty"`

	// Region is the AWS region for the s3 backend.
	Region string `json:"region,omitempty"`
}

// Dashboard describes the fragment layout served to the shell. The
// JSON keys match the configuration documents the shell consumes.
type Dashboard struct {
	// UserID is the persona this layout belongs to.
	UserID string `json:"userId"`

	// Version is the layout document version.
	Version string `json:"version"`

	// Modules lists the mountable fragments in display order.
	Modules []Module `json:"modules"`

	// Theme is "light" or "dark".
	Theme string `json:"theme,omitempty"`

	// Layout names the shell layout variant.
	Layout string `json:"layout,omitempty"`

	// LastUpdated is when this layout was produced.
	LastUpdated time.Time `json:"lastUpdated,omitempty"`

	// Features toggles optional dashboard behavior.
	Features map[string]bool `json:"features,omitempty"`
}

// Module describes one mountable fragment.
type Module struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Path        string `json:"path"`
	Component   string `json:"component"`
	Enabled     bool   `json:"enabled"`
	Order       int    `json:"order,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Name:    "fragsync",
		Version: "1.0.0",
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Snapshot: SnapshotConfig{
			Backend: "memory",
			Path:    DefaultSnapshotPath,
		},
		Dashboard: Fallback(),
	}
}

// Load reads configuration from the specified directory. It looks for
// fragsync.json in the directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("E101").
				WithDetail("No fragsync.json found in " + filepath.Dir(path)).
				WithSuggestion("Create fragsync.json or run with defaults by omitting --config")
		}
		return nil, errors.New("E102").Wrap(err)
	}

	// Decode into a zero Config, not into New(): json.Unmarshal merges
	// into pre-existing slice elements, so a partial module in the file
	// would silently inherit fields from the fallback layout and slip
	// past Validate.
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E102").
			WithDetail("Failed to parse fragsync.json: " + err.Error()).
			WithSuggestion("Check that fragsync.json is valid JSON")
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
		return errors.New("E102").Wrap(err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E102").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Addr returns the host:port listen address.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, itoa(c.Server.Port))
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Name == "" {
		c.Name = "fragsync"
	}
	if c.Version == "" {
		c.Version = "1.0.0"
	}
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
	if c.Snapshot.Backend == "" {
		c.Snapshot.Backend = "memory"
	}
	if c.Snapshot.Path == "" {
		c.Snapshot.Path = DefaultSnapshotPath
	}
	if c.Snapshot.Key == "" {
		c.Snapshot.Key = "snapshot.json"
	}
	// The fallback layout steps in only when the file says nothing
	// about the dashboard at all. A dashboard that is present but
	// incomplete must reach Validate as written.
	if c.Dashboard.UserID == "" && c.Dashboard.Modules == nil {
		c.Dashboard = Fallback()
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New("E105").
			WithDetail("Port must be between 0 and 65535")
	}
	switch c.Snapshot.Backend {
	case "memory", "disk", "sqlite", "s3":
	default:
		return errors.New("E501").
			WithDetail("Snapshot backend is " + c.Snapshot.Backend)
	}
	if c.Snapshot.Backend == "s3" && c.Snapshot.Bucket == "" {
		return errors.New("E103").
			WithDetail("The s3 backend requires snapshot.bucket")
	}
	return c.Dashboard.Validate()
}

// Validate checks the dashboard layout against the schema the shell
// expects.
func (d Dashboard) Validate() error {
	if d.UserID == "" || d.Version == "" || d.Modules == nil {
		return errors.New("E103").
			WithDetail("Dashboard requires userId, version, and a modules array")
	}
	for i, m := range d.Modules {
		if m.Name == "" || m.DisplayName == "" || m.Path == "" || m.Component == "" {
			return errors.New("E103").
				WithDetail("Invalid module configuration at index " + itoa(i))
		}
	}
	return nil
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up directories to find the directory containing
// fragsync.json.
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
			return "", errors.New("E101").
				WithDetail("No fragsync.json found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// itoa converts int to string without importing strconv.
func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	if n < 0 {
		return "-" + itoa(-n)
	}
	digits := make([]byte, 0, 10)
	for n > 0 {
		digits = append(digits, byte('0'+n%10))
		n /= 10
	}
	for i, j := 0, len(digits)-1; i < j; i, j = i+1, j-1 {
		digits[i], digits[j] = digits[j], digits[i]
	}
	return string(digits)
}

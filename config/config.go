package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-sql-driver/mysql"

	"github.com/vinayprograms/todokit/logging"
	"github.com/vinayprograms/todokit/state"
	"github.com/vinayprograms/todokit/todo"
)

var (
	// ErrInvalidConfig is returned when a loaded or overridden value is not usable.
	ErrInvalidConfig = fmt.Errorf("invalid config")

	// ErrInsecurePermissions is returned when a file holding a password is
	// readable by group or others.
	ErrInsecurePermissions = fmt.Errorf("config file has insecure permissions")
)

// Backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendNATS   = "nats"
	BackendMySQL  = "mysql"
)

// FileName is the config file name looked up in standard locations.
const FileName = "todo.toml"

// Config is the full set of settings.
type Config struct {
	Store     StoreConfig     `toml:"store"`
	Log       LogConfig       `toml:"log"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Backend string      `toml:"backend"`
	List    string      `toml:"list"` // Empty selects the default list
	File    FileConfig  `toml:"file"`
	NATS    NATSConfig  `toml:"nats"`
	MySQL   MySQLConfig `toml:"mysql"`
}

// FileConfig configures the file backend.
type FileConfig struct {
	Dir string `toml:"dir"`
}

// NATSConfig configures the NATS JetStream KV backend.
type NATSConfig struct {
	URL    string `toml:"url"`
	Bucket string `toml:"bucket"`
}

// MySQLConfig configures the MySQL backend.
type MySQLConfig struct {
	DSN   string `toml:"dsn"`
	Table string `toml:"table"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// TelemetryConfig configures OTLP trace export. Export is off while
// Endpoint is empty.
type TelemetryConfig struct {
	Endpoint    string `toml:"endpoint"`
	Protocol    string `toml:"protocol"`
	Insecure    bool   `toml:"insecure"`
	ServiceName string `toml:"service_name"`
	// Debug adds payload sizes to store spans.
	Debug bool `toml:"debug"`
}

// Default returns the settings used when no file is found.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Backend: BackendFile,
			File:    FileConfig{Dir: defaultDataDir()},
			NATS:    NATSConfig{URL: "nats://127.0.0.1:4222", Bucket: "todo"},
			MySQL:   MySQLConfig{Table: "kv_entries"},
		},
		Log:       LogConfig{Level: "info"},
		Telemetry: TelemetryConfig{Protocol: "grpc", ServiceName: "todo"},
	}
}

func defaultDataDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "todo")
	}
	return ".todo"
}

// StandardPaths returns the config file locations in order of priority.
func StandardPaths() []string {
	paths := []string{FileName}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "todo", FileName))
	}
	return paths
}

// Load reads the config from explicit when set, otherwise from the first
// standard location that exists, then applies environment overrides. It
// returns the path that was read, or "" when defaults were used.
func Load(explicit string) (*Config, string, error) {
	var (
		cfg  *Config
		path string
		err  error
	)
	if explicit != "" {
		path = explicit
		cfg, err = LoadFile(explicit)
	} else {
		cfg = Default()
		for _, p := range StandardPaths() {
			if _, statErr := os.Stat(p); statErr == nil {
				path = p
				cfg, err = LoadFile(p)
				break
			}
		}
	}
	if err != nil {
		return nil, path, err
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// LoadFile reads one TOML file over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: %s: unknown keys: %s", ErrInvalidConfig, path, strings.Join(keys, ", "))
	}

	if hasPassword(cfg.Store.MySQL.DSN) && runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if mode := info.Mode().Perm(); mode&0077 != 0 {
			return nil, fmt.Errorf("%w: %s has mode %04o (must not be readable by group or others)",
				ErrInsecurePermissions, path, mode)
		}
	}

	cfg.Store.File.Dir = expandHome(cfg.Store.File.Dir)
	return cfg, nil
}

func hasPassword(dsn string) bool {
	if dsn == "" {
		return false
	}
	parsed, err := mysql.ParseDSN(dsn)
	return err == nil && parsed.Passwd != ""
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ApplyEnv overrides fields from TODO_* variables found through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := []struct {
		name   string
		target *string
	}{
		{"TODO_BACKEND", &c.Store.Backend},
		{"TODO_LIST", &c.Store.List},
		{"TODO_FILE_DIR", &c.Store.File.Dir},
		{"TODO_NATS_URL", &c.Store.NATS.URL},
		{"TODO_NATS_BUCKET", &c.Store.NATS.Bucket},
		{"TODO_MYSQL_DSN", &c.Store.MySQL.DSN},
		{"TODO_MYSQL_TABLE", &c.Store.MySQL.Table},
		{"TODO_LOG_LEVEL", &c.Log.Level},
		{"TODO_TELEMETRY_ENDPOINT", &c.Telemetry.Endpoint},
		{"TODO_TELEMETRY_PROTOCOL", &c.Telemetry.Protocol},
		{"TODO_SERVICE_NAME", &c.Telemetry.ServiceName},
	}
	for _, s := range strs {
		if v, ok := lookup(s.name); ok {
			*s.target = v
		}
	}
	c.Store.File.Dir = expandHome(c.Store.File.Dir)

	bools := []struct {
		name   string
		target *bool
	}{
		{"TODO_TELEMETRY_INSECURE", &c.Telemetry.Insecure},
		{"TODO_TELEMETRY_DEBUG", &c.Telemetry.Debug},
	}
	for _, e := range bools {
		v, ok := lookup(e.name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, e.name, err)
		}
		*e.target = b
	}
	return nil
}

// Validate checks that the selected backend has what it needs.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory:
	case BackendFile:
		if c.Store.File.Dir == "" {
			return fmt.Errorf("%w: store.file.dir is required for the file backend", ErrInvalidConfig)
		}
	case BackendNATS:
		if c.Store.NATS.URL == "" {
			return fmt.Errorf("%w: store.nats.url is required for the nats backend", ErrInvalidConfig)
		}
	case BackendMySQL:
		if c.Store.MySQL.DSN == "" {
			return fmt.Errorf("%w: store.mysql.dsn is required for the mysql backend", ErrInvalidConfig)
		}
		if _, err := mysql.ParseDSN(c.Store.MySQL.DSN); err != nil {
			return fmt.Errorf("%w: store.mysql.dsn: %v", ErrInvalidConfig, err)
		}
	default:
		return fmt.Errorf("%w: unknown store.backend %q (use memory, file, nats or mysql)", ErrInvalidConfig, c.Store.Backend)
	}

	if err := ValidateListName(c.Store.List); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %v", ErrInvalidConfig, err)
	}
	switch c.Telemetry.Protocol {
	case "", "grpc", "http":
	default:
		return fmt.Errorf("%w: unknown telemetry.protocol %q (use grpc or http)", ErrInvalidConfig, c.Telemetry.Protocol)
	}
	return nil
}

// ListPrefix is the key prefix shared by every named list.
const ListPrefix = "todos."

var listNameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateListName accepts the empty name (the default list) and names of
// letters, digits, '-' and '_'.
func ValidateListName(name string) error {
	if name == "" {
		return nil
	}
	if !listNameRe.MatchString(name) {
		return fmt.Errorf("%w: list name %q (use letters, digits, '-' or '_')", ErrInvalidConfig, name)
	}
	return state.ValidateKey(ListKey(name))
}

// Key returns the storage key of the configured list.
func (c StoreConfig) Key() string {
	return ListKey(c.List)
}

// ListKey maps a list name to its storage key. The empty name is the
// default list.
func ListKey(name string) string {
	if name == "" {
		return todo.DefaultKey
	}
	return ListPrefix + name
}

// ListName is the inverse of ListKey. It reports false for keys outside
// ListPrefix.
func ListName(key string) (string, bool) {
	if key == todo.DefaultKey {
		return "", true
	}
	if !strings.HasPrefix(key, ListPrefix) {
		return "", false
	}
	return strings.TrimPrefix(key, ListPrefix), true
}

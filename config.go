package sqlkit

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/oarkflow/bcl"
	"github.com/oarkflow/json"

	"github.com/oarkflow/sqlkit/merger"
	"github.com/oarkflow/sqlkit/schema"
	"github.com/oarkflow/sqlkit/validation"
)

// DefaultConfigFile is loaded when no config path is given and it exists.
const DefaultConfigFile = "sqlkit.json"

// Config represents the configuration of the sqlkit tool
type Config struct {
	// Statement splitting and chunking
	Split SplitConfig `json:"split"`

	// File merging
	Merge MergeConfig `json:"merge"`

	// Schema cache
	Schema SchemaConfig `json:"schema"`

	// Logging settings
	Logging LoggingConfig `json:"logging"`
}

// SplitConfig holds chunking settings
type SplitConfig struct {
	Mode      string `json:"mode"`
	MaxBytes  int    `json:"max_bytes"`
	MaxDML    int    `json:"max_dml"`
	SizeLimit int    `json:"size_limit"`
	Header    string `json:"header"`
	OutputDir string `json:"output_dir"`
	Workers   int    `json:"workers"`
}

// MergeConfig holds merge output settings
type MergeConfig struct {
	Header     string `json:"header"`
	OutputDir  string `json:"output_dir"`
	MergedFile string `json:"merged_file"`
	SelectFile string `json:"select_file"`
}

// SchemaConfig selects and configures the schema cache store
type SchemaConfig struct {
	Store     string         `json:"store"`
	Directory string         `json:"directory"`
	Key       string         `json:"key"`
	RowLimit  int            `json:"row_limit"`
	Database  DatabaseConfig `json:"database"`
}

// DatabaseConfig holds connection settings for the database store
type DatabaseConfig struct {
	Driver   string `json:"driver"`
	Host     string `json:"host,omitempty"`
	Port     int    `json:"port,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	Database string `json:"database"`
	SSLMode  string `json:"ssl_mode,omitempty"`
	Charset  string `json:"charset,omitempty"`
	Table    string `json:"table,omitempty"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level   string `json:"level"`
	Output  string `json:"output"`
	LogFile string `json:"log_file,omitempty"`
	Verbose bool   `json:"verbose"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Split: SplitConfig{
			Mode:      "size",
			MaxBytes:  1 << 20,
			MaxDML:    100,
			Header:    merger.DefaultHeader,
			OutputDir: "chunks",
			Workers:   4,
		},
		Merge: MergeConfig{
			Header:     merger.DefaultHeader,
			OutputDir:  "merged",
			MergedFile: "merged.sql",
			SelectFile: "select.sql",
		},
		Schema: SchemaConfig{
			Store:     "file",
			Directory: ".sqlkit",
			Key:       schema.DefaultKey,
			RowLimit:  schema.DefaultRowLimit,
			Database: DatabaseConfig{
				Driver:   "sqlite",
				Database: "sqlkit.db",
				Table:    schema.DefaultTable,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: "console",
		},
	}
}

// LoadConfig loads configuration from a .json or .bcl file. An empty path
// falls back to ./sqlkit.json, or to the defaults when that does not exist.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	if configPath == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			configPath = DefaultConfigFile
		} else {
			return config, nil
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(configPath))
	switch ext {
	case ".json":
		err = json.Unmarshal(data, config)
	case ".bcl":
		_, err = bcl.Unmarshal(data, config)
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveConfig writes the configuration as indented JSON
func (c *Config) SaveConfig(configPath string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	v := validation.NewValidator()

	v.ValidateOneOf("split.mode", c.Split.Mode, "size", "count")
	v.ValidatePositive("split.max_bytes", c.Split.MaxBytes)
	v.ValidatePositive("split.max_dml", c.Split.MaxDML)
	if c.Split.SizeLimit < 0 {
		v.AddError("split.size_limit", strconv.Itoa(c.Split.SizeLimit), "size limit cannot be negative")
	}
	v.ValidatePositive("split.workers", c.Split.Workers)
	if c.Split.OutputDir == "" {
		v.AddError("split.output_dir", c.Split.OutputDir, "output directory cannot be empty")
	}

	if c.Merge.OutputDir == "" {
		v.AddError("merge.output_dir", c.Merge.OutputDir, "output directory cannot be empty")
	}
	if c.Merge.MergedFile == "" {
		v.AddError("merge.merged_file", c.Merge.MergedFile, "merged file name cannot be empty")
	}
	if c.Merge.SelectFile == "" {
		v.AddError("merge.select_file", c.Merge.SelectFile, "select file name cannot be empty")
	}
	if c.Merge.MergedFile != "" && c.Merge.MergedFile == c.Merge.SelectFile {
		v.AddError("merge.select_file", c.Merge.SelectFile, "select file must differ from merged file")
	}

	v.ValidateOneOf("schema.store", c.Schema.Store, "memory", "file", "database")
	if c.Schema.Key == "" {
		v.AddError("schema.key", c.Schema.Key, "store key cannot be empty")
	}
	v.ValidatePositive("schema.row_limit", c.Schema.RowLimit)
	switch c.Schema.Store {
	case "file":
		if c.Schema.Directory == "" {
			v.AddError("schema.directory", c.Schema.Directory, "directory cannot be empty for the file store")
		}
	case "database":
		db := c.Schema.Database
		v.ValidateOneOf("schema.database.driver", db.Driver, "postgres", "mysql", "sqlite")
		if db.Database == "" {
			v.AddError("schema.database.database", db.Database, "database name cannot be empty")
		}
		if db.Driver != "sqlite" {
			if db.Host == "" {
				v.AddError("schema.database.host", db.Host, "host cannot be empty for non-sqlite databases")
			}
			if db.Port <= 0 {
				v.AddError("schema.database.port", strconv.Itoa(db.Port), "port must be positive for non-sqlite databases")
			}
		}
	}

	v.ValidateOneOf("logging.level", c.Logging.Level, "debug", "info", "warn", "error")
	v.ValidateOneOf("logging.output", c.Logging.Output, "console", "file", "both")
	if c.Logging.Output != "console" && c.Logging.LogFile == "" {
		v.AddError("logging.log_file", c.Logging.LogFile, "log file is required when output includes file")
	}

	return v.Error()
}

// DSN returns the connection string of the schema database store
func (d DatabaseConfig) DSN() string {
	switch d.Driver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=%s", d.Host, d.Port, d.Username, d.Database)
		if d.Password != "" {
			dsn += fmt.Sprintf(" password=%s", d.Password)
		}
		if d.SSLMode != "" {
			dsn += fmt.Sprintf(" sslmode=%s", d.SSLMode)
		} else {
			dsn += " sslmode=disable"
		}
		return dsn
	case "mysql":
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s", d.Username, d.Password, d.Host, d.Port, d.Database)
		if d.Charset != "" {
			dsn += fmt.Sprintf("?charset=%s", d.Charset)
		} else {
			dsn += "?charset=utf8mb4"
		}
		return dsn
	case "sqlite":
		return d.Database
	default:
		return ""
	}
}

// ApplyEnvironmentOverrides applies SQLKIT_* environment variable overrides
func (c *Config) ApplyEnvironmentOverrides() {
	if mode := os.Getenv("SQLKIT_SPLIT_MODE"); mode != "" {
		c.Split.Mode = mode
	}
	if n, ok := envInt("SQLKIT_SPLIT_MAX_BYTES"); ok {
		c.Split.MaxBytes = n
	}
	if n, ok := envInt("SQLKIT_SPLIT_MAX_DML"); ok {
		c.Split.MaxDML = n
	}
	if n, ok := envInt("SQLKIT_WORKERS"); ok {
		c.Split.Workers = n
	}
	if dir := os.Getenv("SQLKIT_SPLIT_OUTPUT_DIR"); dir != "" {
		c.Split.OutputDir = dir
	}
	if dir := os.Getenv("SQLKIT_MERGE_OUTPUT_DIR"); dir != "" {
		c.Merge.OutputDir = dir
	}
	if store := os.Getenv("SQLKIT_SCHEMA_STORE"); store != "" {
		c.Schema.Store = store
	}
	if dir := os.Getenv("SQLKIT_SCHEMA_DIR"); dir != "" {
		c.Schema.Directory = dir
	}
	if n, ok := envInt("SQLKIT_SCHEMA_ROW_LIMIT"); ok {
		c.Schema.RowLimit = n
	}
	if driver := os.Getenv("SQLKIT_DB_DRIVER"); driver != "" {
		c.Schema.Database.Driver = driver
	}
	if host := os.Getenv("SQLKIT_DB_HOST"); host != "" {
		c.Schema.Database.Host = host
	}
	if port := os.Getenv("SQLKIT_DB_PORT"); port != "" {
		if p, err := parsePort(port); err == nil {
			c.Schema.Database.Port = p
		}
	}
	if username := os.Getenv("SQLKIT_DB_USERNAME"); username != "" {
		c.Schema.Database.Username = username
	}
	if password := os.Getenv("SQLKIT_DB_PASSWORD"); password != "" {
		c.Schema.Database.Password = password
	}
	if database := os.Getenv("SQLKIT_DB_DATABASE"); database != "" {
		c.Schema.Database.Database = database
	}
	if level := os.Getenv("SQLKIT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if verbose := os.Getenv("SQLKIT_VERBOSE"); verbose == "true" || verbose == "1" {
		c.Logging.Verbose = true
	}
}

func envInt(name string) (int, bool) {
	v := os.Getenv(name)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parsePort parses a port string to integer
func parsePort(portStr string) (int, error) {
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return 0, err
	}
	if port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port number: %d", port)
	}
	return port, nil
}

// CreateSampleConfig writes a commented sample configuration file
func CreateSampleConfig(configPath string) error {
	config := DefaultConfig()

	sample := map[string]any{
		"_comment": "Sample configuration file for the sqlkit tool",
		"split": map[string]any{
			"_comment":   "Statement chunking: mode is size or count",
			"mode":       config.Split.Mode,
			"max_bytes":  config.Split.MaxBytes,
			"max_dml":    config.Split.MaxDML,
			"size_limit": config.Split.SizeLimit,
			"header":     config.Split.Header,
			"output_dir": config.Split.OutputDir,
			"workers":    config.Split.Workers,
		},
		"merge": map[string]any{
			"_comment":    "Merged DML and verification SELECT scripts",
			"header":      config.Merge.Header,
			"output_dir":  config.Merge.OutputDir,
			"merged_file": config.Merge.MergedFile,
			"select_file": config.Merge.SelectFile,
		},
		"schema": map[string]any{
			"_comment":  "Schema cache: store is memory, file or database",
			"store":     config.Schema.Store,
			"directory": config.Schema.Directory,
			"key":       config.Schema.Key,
			"row_limit": config.Schema.RowLimit,
			"database": map[string]any{
				"driver":   config.Schema.Database.Driver,
				"database": config.Schema.Database.Database,
				"table":    config.Schema.Database.Table,
			},
		},
		"logging": map[string]any{
			"_comment": "Logging settings",
			"level":    config.Logging.Level,
			"output":   config.Logging.Output,
			"verbose":  config.Logging.Verbose,
		},
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(sample, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal sample config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write sample config file: %w", err)
	}

	return nil
}

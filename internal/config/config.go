// Package config layers javadeps settings: built-in defaults, an optional
// YAML file, .env files and JAVADEPS_* environment variables. Command-line
// flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/olehluchkiv/javadeps/internal/logging"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "JAVADEPS_"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full set of run settings.
type Config struct {
	Root           string   `yaml:"root"`
	Exclude        []string `yaml:"exclude"`
	Format         string   `yaml:"format"`
	Sorted         bool     `yaml:"sorted"`
	KeepUnresolved bool     `yaml:"keep_unresolved"`
	TypeArguments  bool     `yaml:"type_arguments"`
	Strict         bool     `yaml:"strict"`
	Workers        int      `yaml:"workers"`
	MaxFileSize    int      `yaml:"max_file_size"`
	CacheSize      int      `yaml:"cache_size"`
	KnownTypes     []string `yaml:"known_types"`

	Report ReportConfig `yaml:"report"`
	Export ExportConfig `yaml:"export"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

type ReportConfig struct {
	Disabled     bool `yaml:"disabled"`
	ShowFailures bool `yaml:"show_failures"`
}

type ExportConfig struct {
	SQLite string      `yaml:"sqlite"`
	Neo4j  Neo4jConfig `yaml:"neo4j"`
}

type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

type ServerConfig struct {
	Enabled     bool `yaml:"enabled"`
	Port        int  `yaml:"port"`
	OpenBrowser bool `yaml:"open_browser"`
}

type LogConfig struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Root:        "src/main/java",
		Format:      "dot",
		Sorted:      true,
		Workers:     1,
		MaxFileSize: 10 * 1024 * 1024,
		CacheSize:   4096,
		Server: ServerConfig{
			Port:        8080,
			OpenBrowser: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment. With no envFiles, a .env file in the
// working directory is loaded when present. Variables already set in the
// process environment win over .env values.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else if err := godotenv.Load(envFiles...); err != nil {
		return nil, fmt.Errorf("loading env files: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from JAVADEPS_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	strs := map[string]*string{
		"ROOT":           &c.Root,
		"FORMAT":         &c.Format,
		"SQLITE":         &c.Export.SQLite,
		"NEO4J_URI":      &c.Export.Neo4j.URI,
		"NEO4J_USER":     &c.Export.Neo4j.User,
		"NEO4J_PASSWORD": &c.Export.Neo4j.Password,
		"NEO4J_DATABASE": &c.Export.Neo4j.Database,
		"LOG_FILE":       &c.Log.File,
		"LOG_LEVEL":      &c.Log.Level,
	}
	for name, dst := range strs {
		if v, ok := get(name); ok {
			*dst = v
		}
	}

	bools := map[string]*bool{
		"SORTED":          &c.Sorted,
		"KEEP_UNRESOLVED": &c.KeepUnresolved,
		"TYPE_ARGS":       &c.TypeArguments,
		"STRICT":          &c.Strict,
	}
	for name, dst := range bools {
		if v, ok := get(name); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = b
		}
	}

	ints := map[string]*int{
		"WORKERS":       &c.Workers,
		"MAX_FILE_SIZE": &c.MaxFileSize,
		"CACHE_SIZE":    &c.CacheSize,
		"PORT":          &c.Server.Port,
	}
	for name, dst := range ints {
		if v, ok := get(name); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s%s: %w", EnvPrefix, name, err)
			}
			*dst = n
		}
	}

	if v, ok := get("EXCLUDE"); ok {
		c.Exclude = splitList(v)
	}
	if v, ok := get("KNOWN_TYPES"); ok {
		c.KnownTypes = append(c.KnownTypes, splitList(v)...)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the settings for values no run can use.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Root) == "" {
		errs = append(errs, errors.New("root must not be empty"))
	}
	switch c.Format {
	case "dot", "mermaid":
	default:
		errs = append(errs, fmt.Errorf("unknown format %q (valid: dot, mermaid)", c.Format))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.MaxFileSize <= 0 {
		errs = append(errs, fmt.Errorf("max_file_size must be positive, got %d", c.MaxFileSize))
	}
	if c.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("port out of range: %d", c.Server.Port))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mcoot/tourcompanion/internal/factory"
	"github.com/mcoot/tourcompanion/internal/services/planner"
	"github.com/mcoot/tourcompanion/internal/services/stamps"
	redisstorage "github.com/mcoot/tourcompanion/internal/storage/redis"
)

// Config holds CLI configuration. Values come from defaults, then
// environment variables, then the YAML config file, then flags.
type Config struct {
	ServerURL       string        `yaml:"server"`
	StorageType     string        `yaml:"storage"`
	CredentialsFile string        `yaml:"credentials_file"`
	RedisURL        string        `yaml:"redis_url"`
	RedisNamespace  string        `yaml:"redis_namespace"`
	PlannerCapacity int           `yaml:"planner_capacity"`
	StampCodes      []string      `yaml:"stamp_codes,flow"`
	StampCooldown   time.Duration `yaml:"stamp_cooldown"`
	Output          string        `yaml:"output"`
	Verbose         bool          `yaml:"verbose"`

	ConfigFile string `yaml:"-"`
}

// flag names for the settings a config file may also set
const (
	flagServer          = "server"
	flagStorage         = "storage"
	flagCredentialsFile = "credentials-file"
	flagRedisURL        = "redis-url"
	flagRedisNamespace  = "redis-namespace"
	flagCapacity        = "planner-capacity"
	flagCooldown        = "stamp-cooldown"
	flagOutput          = "output"
	flagVerbose         = "verbose"
)

// DefaultConfig returns a Config with defaults overridden by environment
func DefaultConfig() *Config {
	return &Config{
		ServerURL:       getEnvOrDefault("TOURCOMPANION_SERVER", "http://127.0.0.1:8787"),
		StorageType:     getEnvOrDefault("TOURCOMPANION_STORAGE", factory.StorageTypeFile),
		CredentialsFile: getEnvOrDefault("TOURCOMPANION_CREDENTIALS_FILE", defaultCredentialsFile()),
		RedisURL:        getEnvOrDefault("TOURCOMPANION_REDIS_URL", redisstorage.DefaultConfig().URL),
		RedisNamespace:  getEnvOrDefault("TOURCOMPANION_REDIS_NAMESPACE", redisstorage.DefaultConfig().Namespace),
		PlannerCapacity: getEnvIntOrDefault("TOURCOMPANION_PLANNER_CAPACITY", planner.DefaultCapacity),
		StampCodes:      append([]string(nil), stamps.DefaultCodes...),
		StampCooldown:   stamps.DefaultCooldown,
		Output:          getEnvOrDefault("TOURCOMPANION_OUTPUT", "text"),
		ConfigFile:      os.Getenv("TOURCOMPANION_CONFIG"),
	}
}

// LoadFile reads the YAML file at c.ConfigFile and applies every setting it
// contains whose flag was not set explicitly. No file configured is fine.
func (c *Config) LoadFile(flagChanged func(name string) bool) error {
	if c.ConfigFile == "" {
		return nil
	}

	data, err := os.ReadFile(c.ConfigFile)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", c.ConfigFile, err)
	}

	apply := func(flag string, set bool, fn func()) {
		if set && !flagChanged(flag) {
			fn()
		}
	}
	apply(flagServer, file.ServerURL != "", func() { c.ServerURL = file.ServerURL })
	apply(flagStorage, file.StorageType != "", func() { c.StorageType = file.StorageType })
	apply(flagCredentialsFile, file.CredentialsFile != "", func() { c.CredentialsFile = file.CredentialsFile })
	apply(flagRedisURL, file.RedisURL != "", func() { c.RedisURL = file.RedisURL })
	apply(flagRedisNamespace, file.RedisNamespace != "", func() { c.RedisNamespace = file.RedisNamespace })
	apply(flagCapacity, file.PlannerCapacity != 0, func() { c.PlannerCapacity = file.PlannerCapacity })
	apply(flagCooldown, file.StampCooldown != 0, func() { c.StampCooldown = file.StampCooldown })
	apply(flagOutput, file.Output != "", func() { c.Output = file.Output })
	apply(flagVerbose, file.Verbose, func() { c.Verbose = true })
	if len(file.StampCodes) > 0 {
		c.StampCodes = file.StampCodes
	}
	return nil
}

// Validate rejects settings the app cannot run with
func (c *Config) Validate() error {
	var errs []error

	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Errorf("server must be an http(s) URL, got %q", c.ServerURL))
	}

	switch c.StorageType {
	case factory.StorageTypeMemory, factory.StorageTypeRedis:
	case factory.StorageTypeFile:
		if c.CredentialsFile == "" {
			errs = append(errs, errors.New("credentials-file is required with file storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage must be memory, file or redis, got %q", c.StorageType))
	}

	if c.PlannerCapacity < 1 {
		errs = append(errs, fmt.Errorf("planner-capacity must be at least 1, got %d", c.PlannerCapacity))
	}

	if _, err := stamps.NewRegistry(c.StampCodes); err != nil {
		errs = append(errs, err)
	}

	if c.Output != "text" && c.Output != "json" {
		errs = append(errs, fmt.Errorf("output must be text or json, got %q", c.Output))
	}

	return errors.Join(errs...)
}

// FactoryConfig translates the CLI settings for the application factory
func (c *Config) FactoryConfig() factory.Config {
	cfg := factory.Config{
		StorageType:     c.StorageType,
		FilePath:        c.CredentialsFile,
		ServerURL:       c.ServerURL,
		PlannerCapacity: c.PlannerCapacity,
		StampCodes:      c.StampCodes,
		StampCooldown:   c.StampCooldown,
	}
	// zero means "use the default" to the factory
	if c.StampCooldown == 0 {
		cfg.StampCooldown = -1
	}
	if c.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		redisCfg.Namespace = c.RedisNamespace
		cfg.RedisConfig = &redisCfg
	}
	return cfg
}

func defaultCredentialsFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".tourcompanion", "credentials.json")
	}
	return filepath.Join(home, ".tourcompanion", "credentials.json")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvIntOrDefault(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return defaultVal
}

func printYAML(w io.Writer, c *Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

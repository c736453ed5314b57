package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-mvc/framework/fault"
)

// DefaultFiles are read by Load when no file is given. Missing ones are
// skipped.
var DefaultFiles = []string{".env", "system.properties"}

// Config is the central typed configuration struct.
type Config struct {
	App     AppConfig
	Mvc     MvcConfig
	Log     LogConfig
	Metrics MetricsConfig

	values map[string]string // merged file values, for Get
}

type AppConfig struct {
	Name        string `key:"APP_NAME" validate:"required"`
	Env         string `key:"APP_ENV" validate:"oneof=local production testing"`
	Port        string `key:"APP_PORT" validate:"required,numeric"`
	ContextPath string `key:"CONTEXT_PATH" validate:"omitempty,startswith=/"`
}

type MvcConfig struct {
	ScanPackage      string `key:"SCAN_PACKAGE" validate:"required"`
	InjectMissPolicy string `key:"INJECT_MISS_POLICY" validate:"oneof=ignore warn fail"`
	ParamBinding     string `key:"PARAM_BINDING" validate:"oneof=last named"`
}

type LogConfig struct {
	Level string `key:"LOG_LEVEL" validate:"oneof=debug info warn error"`
}

type MetricsConfig struct {
	Path string `key:"METRICS_PATH" validate:"omitempty,startswith=/"` // "" disables the endpoint
}

// Load reads the given property files (DefaultFiles when none) and builds a
// validated Config. Precedence, lowest first: defaults, files in the order
// given, environment variables.
//
// .env and .properties files are read with godotenv, .yaml and .yml files
// are flattened into dotted keys.
//
//	cfg, err := config.Load()
//	cfg, err := config.Load("conf/app.yaml")
func Load(files ...string) (*Config, error) {
	optional := len(files) == 0
	if optional {
		files = DefaultFiles
	}

	values := make(map[string]string)
	for _, file := range files {
		read, err := readFile(file)
		if errors.Is(err, os.ErrNotExist) && optional {
			continue
		}
		if err != nil {
			return nil, &fault.ConfigurationError{Subject: file, Reason: "cannot read configuration file", Err: err}
		}
		for k, v := range read {
			values[k] = v
		}
	}

	cfg := &Config{values: values}
	cfg.App = AppConfig{
		Name:        cfg.Get("APP_NAME", "go-mvc"),
		Env:         strings.ToLower(cfg.Get("APP_ENV", "local")),
		Port:        cfg.Get("APP_PORT", "8080"),
		ContextPath: cfg.Get("CONTEXT_PATH", ""),
	}
	cfg.Mvc = MvcConfig{
		ScanPackage:      cfg.first([]string{"SCAN_PACKAGE", "scanPackage"}, ""),
		InjectMissPolicy: strings.ToLower(cfg.Get("INJECT_MISS_POLICY", "warn")),
		ParamBinding:     strings.ToLower(cfg.Get("PARAM_BINDING", "last")),
	}
	cfg.Log = LogConfig{Level: strings.ToLower(cfg.Get("LOG_LEVEL", "info"))}
	cfg.Metrics = MetricsConfig{Path: cfg.Get("METRICS_PATH", "/metrics")}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every field against its validate tag. The first failure
// is reported as a ConfigurationError naming the configuration key.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &fault.ConfigurationError{Subject: "config", Reason: "validation failed", Err: err}
	}
	fe := verrs[0]
	return fault.Configuration(fe.Field(), "value %q fails %s", fmt.Sprint(fe.Value()), rule(fe))
}

func rule(fe validator.FieldError) string {
	if fe.Param() == "" {
		return fe.Tag()
	}
	return fe.Tag() + "=" + fe.Param()
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if key := f.Tag.Get("key"); key != "" {
			return key
		}
		return f.Name
	})
	return v
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool { return c.App.Env == "production" }

// Addr returns the listen address for App.Port.
func (c *Config) Addr() string { return ":" + c.App.Port }

// Get returns a raw configuration value: the environment variable key when
// set, else the value read from a file, else fallback.
func (c *Config) Get(key, fallback string) string {
	return c.first([]string{key}, fallback)
}

// GetInt returns an int value, or fallback when absent or malformed.
func (c *Config) GetInt(key string, fallback int) int {
	i, err := strconv.Atoi(c.Get(key, ""))
	if err != nil {
		return fallback
	}
	return i
}

// GetBool returns a bool value, or fallback when absent or malformed.
func (c *Config) GetBool(key string, fallback bool) bool {
	b, err := strconv.ParseBool(c.Get(key, ""))
	if err != nil {
		return fallback
	}
	return b
}

// Keys returns every key read from files, sorted.
func (c *Config) Keys() []string {
	out := make([]string, 0, len(c.values))
	for k := range c.values {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (c *Config) first(keys []string, fallback string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	for _, k := range keys {
		if v, ok := c.values[k]; ok && v != "" {
			return v
		}
	}
	return fallback
}

// ── files ────────────────────────────────────────────────────────────────────

func readFile(path string) (map[string]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return readYAML(path)
	default:
		return godotenv.Read(path)
	}
}

func readYAML(path string) (map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	out := make(map[string]string)
	flatten("", doc, out)
	return out, nil
}

// flatten turns nested mappings into dotted keys:
//
//	app: {name: demo}  →  "app.name" = "demo"
func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case nil:
			out[key] = ""
		case []any:
			parts := make([]string, len(val))
			for i, item := range val {
				parts[i] = fmt.Sprint(item)
			}
			out[key] = strings.Join(parts, ",")
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

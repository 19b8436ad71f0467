// Package config loads relabel settings from defaults, an optional YAML
// file and RELABEL_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. RELABEL_TRANSLATOR_APP_ID.
const EnvPrefix = "RELABEL"

const placeholder = "%s"

// Sentinel validation errors.
var (
	ErrEmptyTarget         = errors.New("transform target must not be empty")
	ErrEmptyField          = errors.New("transform field must not be empty")
	ErrEmptyBinding        = errors.New("transform binding must not be empty")
	ErrInvalidTemplate     = errors.New("key template must contain exactly one %s")
	ErrInvalidDeclaration  = errors.New("declaration kind must be const, let or var")
	ErrInvalidQuote        = errors.New("output quote must be double or single")
	ErrInvalidIndent       = errors.New("output indent must be positive")
	ErrInvalidDelay        = errors.New("translator delay must not be negative")
	ErrInvalidTimeout      = errors.New("translator timeout must be positive")
	ErrInvalidMaxInputSize = errors.New("invalid input max size")
	ErrInvalidLogLevel     = errors.New("invalid log level")
)

var logLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Config holds all relabel settings.
type Config struct {
	Transform  TransformConfig  `mapstructure:"transform"`
	Translator TranslatorConfig `mapstructure:"translator"`
	Output     OutputConfig     `mapstructure:"output"`
	Input      InputConfig      `mapstructure:"input"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// TransformConfig selects what gets rewritten and how keys are named.
type TransformConfig struct {
	Target          string `mapstructure:"target"`
	Field           string `mapstructure:"field"`
	KeyTemplate     string `mapstructure:"key_template"`
	Binding         string `mapstructure:"binding"`
	DeclarationKind string `mapstructure:"declaration_kind"`
}

// TranslatorConfig configures the Baidu client and the request queue.
type TranslatorConfig struct {
	Endpoint string        `mapstructure:"endpoint"`
	AppID    string        `mapstructure:"app_id"`
	Secret   string        `mapstructure:"secret"`
	From     string        `mapstructure:"from"`
	To       string        `mapstructure:"to"`
	Proxy    string        `mapstructure:"proxy"`
	Timeout  time.Duration `mapstructure:"timeout"`

	// Delay is the pause between two remote calls; zero disables pacing.
	Delay time.Duration `mapstructure:"delay"`
}

// OutputConfig controls code generation.
type OutputConfig struct {
	Quote  string `mapstructure:"quote"`
	Indent int    `mapstructure:"indent"`
}

// InputConfig bounds what is read.
type InputConfig struct {
	// MaxSize is a human-readable size such as "4MB" or "512KiB".
	MaxSize string `mapstructure:"max_size"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig holds export settings; all empty means no export.
type TelemetryConfig struct {
	OTLPEndpoint    string `mapstructure:"otlp_endpoint"`
	OTLPHeaders     string `mapstructure:"otlp_headers"`
	OTLPInsecure    bool   `mapstructure:"otlp_insecure"`
	MetricsTextfile string `mapstructure:"metrics_textfile"`
	TraceVerbose    bool   `mapstructure:"trace_verbose"`
}

// New returns a viper instance with every default set and environment
// overrides enabled. Commands bind their flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadConfig reads configPath, or relabel.yaml from the working directory
// or ./config when configPath is empty, and applies the environment.
func LoadConfig(configPath string) (*Config, error) {
	return Load(New(), configPath)
}

// Load reads the config file into v and decodes the merged result. A
// missing default config file is not an error; a missing explicit one is.
func Load(v *viper.Viper, configPath string) (*Config, error) {
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("relabel")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("transform.target", DefaultTarget)
	v.SetDefault("transform.field", DefaultField)
	v.SetDefault("transform.key_template", DefaultKeyTemplate)
	v.SetDefault("transform.binding", DefaultBinding)
	v.SetDefault("transform.declaration_kind", DefaultDeclarationKind)

	v.SetDefault("translator.endpoint", DefaultEndpoint)
	v.SetDefault("translator.app_id", "")
	v.SetDefault("translator.secret", "")
	v.SetDefault("translator.from", DefaultFrom)
	v.SetDefault("translator.to", DefaultTo)
	v.SetDefault("translator.proxy", "")
	v.SetDefault("translator.timeout", DefaultTimeout)
	v.SetDefault("translator.delay", DefaultDelay)

	v.SetDefault("output.quote", DefaultQuote)
	v.SetDefault("output.indent", DefaultIndent)

	v.SetDefault("input.max_size", DefaultMaxInputSize)

	v.SetDefault("logging.level", DefaultLogLevel)
	v.SetDefault("logging.json", false)

	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.otlp_headers", "")
	v.SetDefault("telemetry.otlp_insecure", false)
	v.SetDefault("telemetry.metrics_textfile", "")
	v.SetDefault("telemetry.trace_verbose", false)
}

// Validate checks every section and returns the first violation.
func (c *Config) Validate() error {
	t := c.Transform

	switch {
	case strings.TrimSpace(t.Target) == "":
		return ErrEmptyTarget
	case strings.TrimSpace(t.Field) == "":
		return ErrEmptyField
	case strings.TrimSpace(t.Binding) == "":
		return ErrEmptyBinding
	case strings.Count(t.KeyTemplate, placeholder) != 1:
		return fmt.Errorf("%w: %q", ErrInvalidTemplate, t.KeyTemplate)
	}

	switch t.DeclarationKind {
	case "const", "let", "var":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDeclaration, t.DeclarationKind)
	}

	if c.Output.Quote != QuoteDouble && c.Output.Quote != QuoteSingle {
		return fmt.Errorf("%w: %q", ErrInvalidQuote, c.Output.Quote)
	}

	if c.Output.Indent <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidIndent, c.Output.Indent)
	}

	if c.Translator.Delay < 0 {
		return fmt.Errorf("%w: %s", ErrInvalidDelay, c.Translator.Delay)
	}

	if c.Translator.Timeout <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidTimeout, c.Translator.Timeout)
	}

	if _, err := c.MaxInputBytes(); err != nil {
		return err
	}

	if !logLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	return nil
}

// MaxInputBytes parses Input.MaxSize.
func (c *Config) MaxInputBytes() (int64, error) {
	size, err := humanize.ParseBytes(c.Input.MaxSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidMaxInputSize, c.Input.MaxSize, err)
	}

	if size == 0 || size > 1<<40 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMaxInputSize, c.Input.MaxSize)
	}

	return int64(size), nil
}

// QueueDelay maps Translator.Delay onto the queue convention, where zero
// selects the default pause and a negative value disables it.
func (c *Config) QueueDelay() time.Duration {
	if c.Translator.Delay == 0 {
		return -1
	}

	return c.Translator.Delay
}

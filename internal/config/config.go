package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/TriAiAdmin/LLM-automation/internal/normalizer"
	"github.com/TriAiAdmin/LLM-automation/internal/reference"
	"github.com/TriAiAdmin/LLM-automation/pkg/utils"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all application configuration
type Config struct {
	Logger    utils.LoggerConfig `mapstructure:"logger"`
	Reference ReferenceConfig    `mapstructure:"reference"`
	POPolicy  POPolicyConfig     `mapstructure:"po_policy"`
	Currency  CurrencyConfig     `mapstructure:"currency"`
	Vendor    VendorConfig       `mapstructure:"vendor"`
	Batch     BatchConfig        `mapstructure:"batch"`
	Output    OutputConfig       `mapstructure:"output"`
	Database  DatabaseConfig     `mapstructure:"database"`
	OpenAI    OpenAIConfig       `mapstructure:"openai"`
}

// ReferenceConfig locates the reference tables
type ReferenceConfig struct {
	SBUTablePath        string `mapstructure:"sbu_table_path"`
	VendorMasterPath    string `mapstructure:"vendor_master_path"`
	CountryCurrencyPath string `mapstructure:"country_currency_path"` // empty uses the built-in table
}

// POPolicyConfig holds the purchase-order rules that differ between business units
type POPolicyConfig struct {
	MinDigits int    `mapstructure:"min_digits"`
	Width     int    `mapstructure:"width"`
	ShortMode string `mapstructure:"short_mode"`
}

// CurrencyConfig holds currency and phone defaults
type CurrencyConfig struct {
	Default     string `mapstructure:"default"`
	DialingCode string `mapstructure:"dialing_code"`
}

// VendorConfig holds vendor matching settings
type VendorConfig struct {
	Cutoff int `mapstructure:"cutoff"`
}

// BatchConfig holds batch processing settings
type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

// OutputConfig holds result file locations. Empty paths are skipped.
type OutputConfig struct {
	XLSXPath  string `mapstructure:"xlsx_path"`
	JSONPath  string `mapstructure:"json_path"`
	SheetName string `mapstructure:"sheet_name"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Path            string        `mapstructure:"path"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// OpenAIConfig holds the vision extraction settings
type OpenAIConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Model             string        `mapstructure:"model"`
	Temperature       float32       `mapstructure:"temperature"`
	MaxTokens         int           `mapstructure:"max_tokens"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxPages          int           `mapstructure:"max_pages"`
	DPI               float64       `mapstructure:"dpi"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

// Load reads configPath (optional) on top of the defaults. A .env file in the
// working directory is applied to the environment first; variables already set
// are kept.
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := gotenv.Load(".env"); err != nil {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvVars(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.output_path", "stderr")
	v.SetDefault("logger.format", "console")

	v.SetDefault("reference.sbu_table_path", "configs/sbu_ranges.csv")
	v.SetDefault("reference.vendor_master_path", "configs/vendor_master.csv")
	v.SetDefault("reference.country_currency_path", "")

	// Eight digits padded to ten is the current rule; older revisions used 7 or 9
	v.SetDefault("po_policy.min_digits", 8)
	v.SetDefault("po_policy.width", 10)
	v.SetDefault("po_policy.short_mode", string(normalizer.ShortPOPad))

	v.SetDefault("currency.default", "LKR")
	v.SetDefault("currency.dialing_code", "94")

	v.SetDefault("vendor.cutoff", normalizer.DefaultVendorCutoff)

	v.SetDefault("batch.workers", 4)

	v.SetDefault("output.xlsx_path", "")
	v.SetDefault("output.json_path", "")
	v.SetDefault("output.sheet_name", "Invoices")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.path", "data/invoices.db")
	v.SetDefault("database.max_open_conns", 1)
	v.SetDefault("database.max_idle_conns", 1)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)

	v.SetDefault("openai.model", "gpt-4o")
	v.SetDefault("openai.temperature", 0)
	v.SetDefault("openai.max_tokens", 2000)
	v.SetDefault("openai.timeout", 90*time.Second)
	v.SetDefault("openai.max_pages", 10)
	v.SetDefault("openai.dpi", 150.0)
	v.SetDefault("openai.requests_per_minute", 0)
}

// bindEnvVars binds the variables whose names do not follow the key layout
func bindEnvVars(v *viper.Viper) {
	_ = v.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = v.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	_ = v.BindEnv("database.path", "INVOICE_DB_PATH")
	_ = v.BindEnv("logger.level", "LOG_LEVEL")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.PolicyConfig().Validate(); err != nil {
		return fmt.Errorf("%w: po_policy: %w", ErrInvalidConfig, err)
	}
	if c.Vendor.Cutoff < 0 || c.Vendor.Cutoff > 100 {
		return fmt.Errorf("%w: vendor.cutoff %d must be between 0 and 100", ErrInvalidConfig, c.Vendor.Cutoff)
	}
	if c.Batch.Workers < 1 {
		return fmt.Errorf("%w: batch.workers must be at least 1", ErrInvalidConfig)
	}
	if len(strings.TrimSpace(c.Currency.Default)) != 3 {
		return fmt.Errorf("%w: currency.default %q is not a 3-letter code", ErrInvalidConfig, c.Currency.Default)
	}
	if c.Reference.SBUTablePath == "" {
		return fmt.Errorf("%w: reference.sbu_table_path is required", ErrInvalidConfig)
	}
	if c.Reference.VendorMasterPath == "" {
		return fmt.Errorf("%w: reference.vendor_master_path is required", ErrInvalidConfig)
	}
	if c.Database.Enabled && c.Database.Path == "" {
		return fmt.Errorf("%w: database.path is required when the database is enabled", ErrInvalidConfig)
	}
	return nil
}

// ValidateExtraction checks the settings needed to call the vision model
func (c *Config) ValidateExtraction() error {
	if c.OpenAI.APIKey == "" {
		return fmt.Errorf("%w: openai.api_key is required", ErrInvalidConfig)
	}
	if c.OpenAI.MaxPages < 1 {
		return fmt.Errorf("%w: openai.max_pages must be at least 1", ErrInvalidConfig)
	}
	if c.OpenAI.RequestsPerMinute < 0 {
		return fmt.Errorf("%w: openai.requests_per_minute cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// PolicyConfig converts the PO section for the engine
func (c *Config) PolicyConfig() normalizer.POPolicy {
	return normalizer.POPolicy{
		MinDigits: c.POPolicy.MinDigits,
		Width:     c.POPolicy.Width,
		ShortMode: normalizer.ShortPOMode(strings.ToLower(c.POPolicy.ShortMode)),
	}
}

// EngineOptions builds the normalization engine options
func (c *Config) EngineOptions() normalizer.Options {
	opts := normalizer.DefaultOptions()
	opts.POPolicy = c.PolicyConfig()
	opts.DefaultCurrency = strings.ToUpper(c.Currency.Default)
	opts.DialingCode = c.Currency.DialingCode
	opts.VendorCutoff = c.Vendor.Cutoff
	return opts
}

// ReferencePaths returns the reference file locations
func (c *Config) ReferencePaths() reference.Paths {
	return reference.Paths{
		SBUTable:        c.Reference.SBUTablePath,
		VendorMaster:    c.Reference.VendorMasterPath,
		CountryCurrency: c.Reference.CountryCurrencyPath,
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ramsesmoreno/cfdi-summary/internal/logger"
)

// Extractor backends accepted in CFDI_EXTRACTOR.
var extractors = map[string]bool{"pdf": true, "vision": true, "documentai": true}

type Config struct {
	// Scan Configuration
	Dir    string `yaml:"dir"`
	Rename bool   `yaml:"rename"`
	Prefix string `yaml:"prefix"`
	Suffix string `yaml:"suffix"`

	// GroupRFC is nil when grouping is off. An empty string groups by type only.
	GroupRFC *string `yaml:"group_rfc"`

	// Companion Text Extraction
	Extractor string `yaml:"extractor"`

	// Report Renditions
	Workbook bool `yaml:"workbook"`

	// Google Cloud Configuration
	GoogleCloudProject    string `yaml:"google_cloud_project"`
	GoogleCloudLocation   string `yaml:"google_cloud_location"`
	DocumentAIProcessorID string `yaml:"document_ai_processor_id"`

	// Google Sheets Configuration
	GoogleSheetURL       string `yaml:"google_sheet_url"`
	GoogleSheetWorksheet string `yaml:"google_sheet_worksheet"`

	// Logging Configuration
	LogLevel      string `yaml:"log_level"`
	LogFormat     string `yaml:"log_format"`
	LogTimeFormat string `yaml:"log_time_format"`
	LogOutput     string `yaml:"log_output"`
}

// Load reads the configuration from the environment and validates it.
func Load() (*Config, error) {
	config, err := FromEnv()
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// FromEnv reads environment variables and the CFDI_CONFIG file, if any,
// without validating. Callers overlay command-line flags and then Validate.
func FromEnv() (*Config, error) {
	config := &Config{
		Dir:                   getEnv("CFDI_DIR", "."),
		Rename:                getEnvBool("CFDI_RENAME", false),
		Prefix:                getEnv("CFDI_PREFIX", ""),
		Suffix:                getEnv("CFDI_SUFFIX", ""),
		GroupRFC:              lookupEnv("CFDI_GROUP_RFC"),
		Extractor:             getEnv("CFDI_EXTRACTOR", "pdf"),
		Workbook:              getEnvBool("CFDI_WORKBOOK", false),
		GoogleCloudProject:    getEnv("GOOGLE_CLOUD_PROJECT", ""),
		GoogleCloudLocation:   getEnv("GOOGLE_CLOUD_LOCATION", "us"),
		DocumentAIProcessorID: getEnv("DOCUMENT_AI_PROCESSOR_ID", ""),
		GoogleSheetURL:        getEnv("GOOGLE_SHEET_URL", ""),
		GoogleSheetWorksheet:  getEnv("GOOGLE_SHEET_WORKSHEET", "CFDI"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:         getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:             getEnv("LOG_OUTPUT", "stderr"),
	}

	if path := os.Getenv("CFDI_CONFIG"); path != "" {
		if err := config.LoadFile(path); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// LoadFile overlays the keys present in a YAML file onto c.
func (c *Config) LoadFile(path string) error {
	const op = "LoadFile"

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%s: parse %s: %w", op, path, err)
	}
	return nil
}

// Validate checks the extractor selection.
func (c *Config) Validate() error {
	c.Extractor = strings.ToLower(c.Extractor)
	if !extractors[c.Extractor] {
		return fmt.Errorf("CFDI_EXTRACTOR must be one of pdf, vision, documentai (got %q)", c.Extractor)
	}
	if c.Extractor == "documentai" {
		if c.GoogleCloudProject == "" {
			return fmt.Errorf("GOOGLE_CLOUD_PROJECT is required for the documentai extractor")
		}
		if c.DocumentAIProcessorID == "" {
			return fmt.Errorf("DOCUMENT_AI_PROCESSOR_ID is required for the documentai extractor")
		}
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// lookupEnv distinguishes an unset variable (nil) from an empty one.
func lookupEnv(key string) *string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	return &value
}

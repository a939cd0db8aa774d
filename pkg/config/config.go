package config

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/yuya-takeyama/s3-tree-mirror/pkg/storage"
)

// Config represents the application configuration
type Config struct {
	Source         string    `yaml:"source"`
	Destination    string    `yaml:"destination"`
	Root           string    `yaml:"root"`
	Excludes       []string  `yaml:"excludes"`
	DryRun         bool      `yaml:"dry_run"`
	Quiet          bool      `yaml:"quiet"`
	Verbose        bool      `yaml:"verbose"`
	ResultJSONFile string    `yaml:"result_json_file"`
	AWS            AWSConfig `yaml:"aws"`
}

// AWSConfig holds settings for the S3 backend
type AWSConfig struct {
	Profile      string `yaml:"profile"`
	Region       string `yaml:"region"`
	EndpointURL  string `yaml:"endpoint_url"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

// ValidationError reports an invalid configuration field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Excludes: []string{},
	}
}

// IsS3 reports whether the run targets the S3 backend.
func (c *Config) IsS3() bool {
	return isS3URI(c.Root)
}

// Validate checks if the configuration is complete and consistent
func (c *Config) Validate() error {
	if c.Source == "" {
		return &ValidationError{Field: "source", Message: "is required"}
	}

	if err := storage.ValidateName(c.Destination); err != nil {
		return &ValidationError{Field: "destination", Message: err.Error()}
	}

	if c.Root == "" {
		return &ValidationError{Field: "root", Message: "is required"}
	}

	if isS3URI(c.Source) != isS3URI(c.Root) {
		return &ValidationError{
			Field:   "source",
			Message: "must be on the same storage platform as root",
		}
	}

	for _, pattern := range c.Excludes {
		if !doublestar.ValidatePattern(pattern) {
			return &ValidationError{
				Field:   "excludes",
				Message: "invalid pattern: " + pattern,
			}
		}
	}

	if c.Quiet && c.Verbose {
		return &ValidationError{Field: "quiet", Message: "cannot be combined with verbose"}
	}

	if !c.IsS3() && (c.AWS.EndpointURL != "" || c.AWS.UsePathStyle) {
		return &ValidationError{Field: "aws", Message: "only applies to s3:// roots"}
	}

	return nil
}

func isS3URI(s string) bool {
	return strings.HasPrefix(s, "s3://")
}

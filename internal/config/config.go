// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Report formats
const (
	FormatPDF  = "pdf"
	FormatText = "text"
	FormatBoth = "both"
)

// Solver limits applied when the environment does not set them
const (
	DefaultSolverMaxNodes  = 20000
	DefaultSolverTimeLimit = 10 * time.Minute
)

// Config holds application configuration
type Config struct {
	LogLevel        string
	LogPretty       bool
	InputPath       string // JSON or YAML configuration document
	RosterDB        string // SQLite roster; used instead of InputPath when set
	RosterMonth     string // YYYY-MM read from the roster
	OutputDir       string // always absolute
	ReportFormat    string
	ProgramDump     string // optional msgpack snapshot of the compiled program
	SeedRoster      bool   // store InputPath into RosterDB instead of scheduling
	SolverMaxNodes  int    // 0 = unlimited
	SolverTimeLimit time.Duration
	S3              S3Config
}

// S3Config holds the optional object storage target for rendered reports
type S3Config struct {
	Bucket    string
	Endpoint  string // empty = AWS; set for R2, MinIO, ...
	Region    string
	AccessKey string // empty = default credential chain
	SecretKey string
	Prefix    string
}

// Enabled reports whether reports should be uploaded
func (c S3Config) Enabled() bool {
	return c.Bucket != ""
}

// Load reads configuration from environment variables. The result is not
// validated: command-line flags may still override it, so callers run Validate.
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	outputDir, err := filepath.Abs(getEnv("SHIFTPLAN_OUTPUT_DIR", "reports"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve output directory path: %w", err)
	}

	cfg := &Config{
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogPretty:       getEnvAsBool("LOG_PRETTY", true),
		InputPath:       getEnv("SHIFTPLAN_INPUT", "input_data.json"),
		RosterDB:        getEnv("SHIFTPLAN_ROSTER_DB", ""),
		RosterMonth:     getEnv("SHIFTPLAN_ROSTER_MONTH", ""),
		OutputDir:       outputDir,
		ReportFormat:    getEnv("SHIFTPLAN_REPORT_FORMAT", FormatPDF),
		ProgramDump:     getEnv("SHIFTPLAN_PROGRAM_DUMP", ""),
		SolverMaxNodes:  getEnvAsInt("SHIFTPLAN_SOLVER_MAX_NODES", DefaultSolverMaxNodes),
		SolverTimeLimit: getEnvAsDuration("SHIFTPLAN_SOLVER_TIME_LIMIT", DefaultSolverTimeLimit),
		S3: S3Config{
			Bucket:    getEnv("SHIFTPLAN_S3_BUCKET", ""),
			Endpoint:  getEnv("SHIFTPLAN_S3_ENDPOINT", ""),
			Region:    getEnv("SHIFTPLAN_S3_REGION", "auto"),
			AccessKey: getEnv("SHIFTPLAN_S3_ACCESS_KEY", ""),
			SecretKey: getEnv("SHIFTPLAN_S3_SECRET_KEY", ""),
			Prefix:    getEnv("SHIFTPLAN_S3_PREFIX", "schedules/"),
		},
	}

	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	switch c.ReportFormat {
	case FormatPDF, FormatText, FormatBoth:
	default:
		return fmt.Errorf("invalid report format %q (want pdf, text or both)", c.ReportFormat)
	}

	if c.RosterDB == "" && c.InputPath == "" {
		return fmt.Errorf("an input document or a roster database is required")
	}
	// seeding takes its month from the document
	if c.RosterDB != "" && c.RosterMonth == "" && !c.SeedRoster {
		return fmt.Errorf("SHIFTPLAN_ROSTER_MONTH is required when reading from a roster database")
	}

	if c.SolverMaxNodes < 0 {
		return fmt.Errorf("solver max nodes must be >= 0, got %d", c.SolverMaxNodes)
	}
	if c.SolverTimeLimit < 0 {
		return fmt.Errorf("solver time limit must be >= 0, got %s", c.SolverTimeLimit)
	}

	if c.S3.Enabled() {
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when a bucket is set")
		}
		if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
			return fmt.Errorf("S3 access key and secret key must be set together")
		}
	}

	return nil
}

// WantsPDF reports whether a PDF report should be rendered
func (c *Config) WantsPDF() bool {
	return c.ReportFormat == FormatPDF || c.ReportFormat == FormatBoth
}

// WantsText reports whether a text report should be rendered
func (c *Config) WantsText() bool {
	return c.ReportFormat == FormatText || c.ReportFormat == FormatBoth
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"github.com/joho/godotenv"
	"os"
	"strconv"
)

const DefaultConfigPath = "./config.json"

type Config struct {
	DebugMode bool

	ReportSize     uint
	ReportDir      string
	LogDir         string
	ScriptLog      string
	ErrorThreshold float64
	HistoryDB      string
	TemplatePath   string

	FileReadBufSizeInBytes   uint
	ParserURLStringCacheSize uint
	SummaryTopRows           int
}

func defaultConfig() Config {
	return Config{
		ReportSize:     1000,
		ReportDir:      "./reports",
		LogDir:         "./var/log",
		ScriptLog:      "",
		ErrorThreshold: 0.3,

		FileReadBufSizeInBytes:   16 * 1024,
		ParserURLStringCacheSize: 16 * 1024,
		SummaryTopRows:           10,
	}
}

/*
ParseFlagsAsConfig resolves the effective configuration in three layers:
built-in defaults, then the JSON config file, then environment variables
(with `./.env` loaded first if present).

A config file path given explicitly via `-config` must exist; the default
`./config.json` is optional.
*/
func ParseFlagsAsConfig() (Config, error) {
	defaults := defaultConfig()

	configPath := flag.String("config", DefaultConfigPath, "path to JSON config file")
	debugMode := flag.Bool("debugMode", false, "enable debug mode")
	fileReadBufSize := flag.Uint(
		"fileReadBufSizeInBytes", defaults.FileReadBufSizeInBytes,
		"size of buffer used to read lines from log",
	)
	urlCacheSize := flag.Uint(
		"parserUrlStringCacheSize", defaults.ParserURLStringCacheSize,
		"size of cache that eliminates allocation of parsed urls. Make it bigger than estimated count of distinct urls",
	)
	summaryTopRows := flag.Int(
		"summaryTopRows", defaults.SummaryTopRows,
		"count of report rows printed to stdout after a run",
	)
	flag.Parse()

	c, err := Load(*configPath, *configPath != DefaultConfigPath)
	c.DebugMode = c.DebugMode || *debugMode
	c.FileReadBufSizeInBytes = *fileReadBufSize
	c.ParserURLStringCacheSize = *urlCacheSize
	c.SummaryTopRows = *summaryTopRows
	return c, err
}

func Load(configPath string, required bool) (Config, error) {
	c := defaultConfig()

	fileErr := applyConfigFile(&c, configPath, required)
	if fileErr != nil {
		return c, fileErr
	}
	applyEnv(&c)

	if c.ReportSize == 0 {
		return c, fmt.Errorf("REPORT_SIZE should be positive")
	}
	if c.ErrorThreshold < 0 || c.ErrorThreshold > 1 {
		return c, fmt.Errorf("ERROR_THRESHOLD should be a fraction within [0.0, 1.0]")
	}
	return c, nil
}

// fileConfig mirrors the JSON config file keys. Pointers keep absent
// keys distinguishable from zero values.
type fileConfig struct {
	ReportSize     *uint    `json:"REPORT_SIZE"`
	ReportDir      *string  `json:"REPORT_DIR"`
	LogDir         *string  `json:"LOG_DIR"`
	ScriptLog      *string  `json:"SCRIPT_LOG"`
	ErrorThreshold *float64 `json:"ERROR_THRESHOLD"`
	HistoryDB      *string  `json:"HISTORY_DB"`
	TemplatePath   *string  `json:"TEMPLATE_PATH"`
}

func applyConfigFile(c *Config, configPath string, required bool) error {
	content, readErr := os.ReadFile(configPath)
	if readErr != nil {
		if os.IsNotExist(readErr) && !required {
			return nil
		}
		return fmt.Errorf("can't read config file %v: %v", configPath, readErr)
	}
	parsed := fileConfig{}
	unmarshalErr := json.Unmarshal(content, &parsed)
	if unmarshalErr != nil {
		return fmt.Errorf("can't parse config file %v: %v", configPath, unmarshalErr)
	}

	if parsed.ReportSize != nil {
		c.ReportSize = *parsed.ReportSize
	}
	if parsed.ReportDir != nil {
		c.ReportDir = *parsed.ReportDir
	}
	if parsed.LogDir != nil {
		c.LogDir = *parsed.LogDir
	}
	if parsed.ScriptLog != nil {
		c.ScriptLog = *parsed.ScriptLog
	}
	if parsed.ErrorThreshold != nil {
		c.ErrorThreshold = *parsed.ErrorThreshold
	}
	if parsed.HistoryDB != nil {
		c.HistoryDB = *parsed.HistoryDB
	}
	if parsed.TemplatePath != nil {
		c.TemplatePath = *parsed.TemplatePath
	}
	return nil
}

func applyEnv(c *Config) {
	// errors are deliberately ignored: a missing .env simply means the
	// environment is taken as-is
	_ = godotenv.Load()

	c.ReportDir = getEnvString("REPORT_DIR", c.ReportDir)
	c.LogDir = getEnvString("LOG_DIR", c.LogDir)
	c.ScriptLog = getEnvString("SCRIPT_LOG", c.ScriptLog)
	c.HistoryDB = getEnvString("HISTORY_DB", c.HistoryDB)
	c.TemplatePath = getEnvString("TEMPLATE_PATH", c.TemplatePath)
	c.ReportSize = getEnvUint("REPORT_SIZE", c.ReportSize)
	c.ErrorThreshold = getEnvFloat("ERROR_THRESHOLD", c.ErrorThreshold)
}

func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint) uint {
	if value := os.Getenv(key); value != "" {
		if parsed, parseErr := strconv.ParseUint(value, 10, 32); parseErr == nil {
			return uint(parsed)
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, parseErr := strconv.ParseFloat(value, 64); parseErr == nil {
			return parsed
		}
	}
	return defaultValue
}

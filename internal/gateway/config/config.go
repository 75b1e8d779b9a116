package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	Env               string
	LogLevel          string
	LogPretty         bool
	DatabaseURL       string
	BadgerPath        string
	EmissionTablePath string
	StoreTimeout      time.Duration
	CenterCacheTTL    time.Duration
	AllowedOrigins    []string
	Report            ReportConfig
	Insight           InsightConfig
}

type ReportConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// CanUseS3 reports whether every field needed for an S3 client is present.
func (c ReportConfig) CanUseS3() bool {
	return strings.TrimSpace(c.Endpoint) != "" &&
		strings.TrimSpace(c.AccessKey) != "" &&
		strings.TrimSpace(c.SecretKey) != "" &&
		strings.TrimSpace(c.Bucket) != ""
}

type InsightConfig struct {
	APIKey string
	Model  string
}

func (c InsightConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// Load reads .env (if present), the environment and the -port flag.
func Load() (*Config, error) {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("gateway", flag.ContinueOnError)
	port := fs.String("port", ":8081", "server port")
	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, err
	}
	return fromEnv(*port)
}

// LoadEnv is Load without flag parsing, for tools that own their own flags.
func LoadEnv() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv(":8081")
}

func fromEnv(port string) (*Config, error) {
	if envPort := strings.TrimSpace(os.Getenv("PORT")); envPort != "" {
		port = envPort
	}
	if !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		port = ":" + port
	}

	env := firstNonEmpty(strings.TrimSpace(os.Getenv("APP_ENV")), "local")

	storeTimeout, err := durationEnv("STORE_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	centerTTL, err := durationEnv("CENTER_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	return &Config{
		Port:              port,
		Env:               env,
		LogLevel:          firstNonEmpty(strings.TrimSpace(os.Getenv("LOG_LEVEL")), "info"),
		LogPretty:         boolEnv("LOG_PRETTY", strings.EqualFold(env, "local")),
		DatabaseURL:       strings.TrimSpace(os.Getenv("DATABASE_URL")),
		BadgerPath:        strings.TrimSpace(os.Getenv("BADGER_PATH")),
		EmissionTablePath: strings.TrimSpace(os.Getenv("EMISSION_TABLE_PATH")),
		StoreTimeout:      storeTimeout,
		CenterCacheTTL:    centerTTL,
		AllowedOrigins:    splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		Report:            loadReportConfig(env),
		Insight: InsightConfig{
			APIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
			Model:  firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_MODEL")), "gemini-2.5-flash"),
		},
	}, nil
}

func loadReportConfig(env string) ReportConfig {
	return ReportConfig{
		Endpoint:  resolveReportEndpoint(env),
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("REPORT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("REPORT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("REPORT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("REPORT_S3_BUCKET")), "ecoledger-reports"),
		UseSSL:    resolveReportUseSSL(env),
	}
}

func resolveReportEndpoint(env string) string {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return strings.TrimSpace(os.Getenv("REPORT_MINIO_ENDPOINT"))
	}
	return strings.TrimSpace(os.Getenv("REPORT_S3_ENDPOINT"))
}

func resolveReportUseSSL(env string) bool {
	if strings.EqualFold(strings.TrimSpace(env), "local") {
		return false
	}
	return boolEnv("REPORT_S3_USE_SSL", true)
}

func boolEnv(key string, def bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

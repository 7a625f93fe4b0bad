package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	RPCURL           string
	ArtifactsDir     string
	MultiSigArtifact string
	LicenseArtifact  string
	PayrollArtifact  string
	DerivationPath   string
	ReceiptTimeout   time.Duration
	HTTPAddr         string
	JournalDSN       string
	RedisAddr        string
	OtelEndpoint     string
	OtelSampleRatio  float64
	KafkaBrokers     []string
	KafkaTopicPrefix string
	LogLevel         string
	LogFile          string
	LogMaxSizeMB     int
	LogMaxBackups    int
}

type EnvSource interface {
	Lookup(key string) (string, bool)
}

type EnvMap map[string]string

func (e EnvMap) Lookup(key string) (string, bool) {
	value, ok := e[key]
	return value, ok
}

func FromEnviron() EnvSource {
	env := make(EnvMap)
	for _, entry := range os.Environ() {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		env[parts[0]] = parts[1]
	}
	return env
}

// LoadFromEnv reads the process environment, after .env in dev builds.
func LoadFromEnv() (Config, error) {
	if err := loadDotEnv(); err != nil {
		return Config{}, err
	}
	return Load(FromEnviron())
}

func Load(source EnvSource) (Config, error) {
	if source == nil {
		return Config{}, errors.New("env source is required")
	}

	rpcURL, ok := source.Lookup("RPC_URL")
	if !ok || strings.TrimSpace(rpcURL) == "" {
		return Config{}, errors.New("RPC_URL is required")
	}

	receiptTimeout := 2 * time.Minute
	if raw, ok := source.Lookup("RECEIPT_TIMEOUT"); ok && raw != "" {
		duration, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid RECEIPT_TIMEOUT: %w", err)
		}
		if duration <= 0 {
			return Config{}, errors.New("RECEIPT_TIMEOUT must be positive")
		}
		receiptTimeout = duration
	}

	logMaxSize, err := parseUintEnv(source, "LOG_MAX_SIZE_MB", 100)
	if err != nil {
		return Config{}, err
	}
	logMaxBackups, err := parseUintEnv(source, "LOG_MAX_BACKUPS", 3)
	if err != nil {
		return Config{}, err
	}

	sampleRatio := 1.0
	if raw, ok := source.Lookup("OTEL_SAMPLE_RATIO"); ok && strings.TrimSpace(raw) != "" {
		ratio, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil || ratio < 0 || ratio > 1 {
			return Config{}, fmt.Errorf("invalid OTEL_SAMPLE_RATIO %q: must be between 0 and 1", raw)
		}
		sampleRatio = ratio
	}

	otelEndpoint, _ := source.Lookup("OTEL_EXPORTER_OTLP_ENDPOINT")
	journalDSN, _ := source.Lookup("JOURNAL_DSN")
	redisAddr, _ := source.Lookup("REDIS_ADDR")
	logFile, _ := source.Lookup("LOG_FILE")

	return Config{
		RPCURL:           strings.TrimSpace(rpcURL),
		ArtifactsDir:     stringEnv(source, "ARTIFACTS_DIR", "artifacts"),
		MultiSigArtifact: stringEnv(source, "MULTISIG_ARTIFACT", "MultiSigWallet"),
		LicenseArtifact:  stringEnv(source, "LICENSE_ARTIFACT", "StreamingRightsManagement"),
		PayrollArtifact:  stringEnv(source, "PAYROLL_ARTIFACT", "Salaries"),
		DerivationPath:   stringEnv(source, "DERIVATION_PATH", "m/44'/60'/0'/0/0"),
		ReceiptTimeout:   receiptTimeout,
		HTTPAddr:         stringEnv(source, "HTTP_ADDR", ":8080"),
		JournalDSN:       strings.TrimSpace(journalDSN),
		RedisAddr:        strings.TrimSpace(redisAddr),
		OtelEndpoint:     strings.TrimSpace(otelEndpoint),
		OtelSampleRatio:  sampleRatio,
		KafkaBrokers:     parseList(source, "KAFKA_BROKERS"),
		KafkaTopicPrefix: stringEnv(source, "KAFKA_TOPIC_PREFIX", "chainapi-events"),
		LogLevel:         stringEnv(source, "LOG_LEVEL", "info"),
		LogFile:          strings.TrimSpace(logFile),
		LogMaxSizeMB:     int(logMaxSize),
		LogMaxBackups:    int(logMaxBackups),
	}, nil
}

func stringEnv(source EnvSource, key, defaultValue string) string {
	raw, ok := source.Lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return defaultValue
	}
	return strings.TrimSpace(raw)
}

func parseUintEnv(source EnvSource, key string, defaultValue uint64) (uint64, error) {
	raw, ok := source.Lookup(key)
	if !ok || raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return value, nil
}

func parseList(source EnvSource, key string) []string {
	raw, ok := source.Lookup(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	var values []string
	for _, item := range strings.Split(raw, ",") {
		value := strings.TrimSpace(item)
		if value == "" {
			continue
		}
		values = append(values, value)
	}
	return values
}

package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/starleague/internal/platform/logging"
)

const (
	RemoteDriverFirebase = "firebase"
	RemoteDriverMemory   = "memory"

	LocalCacheDriverSQLite = "sqlite"
	LocalCacheDriverMemory = "memory"
)

// Config stores runtime configuration for the service.
type Config struct {
	AppEnv             string
	ServiceName        string
	ServiceVersion     string
	HTTPAddr           string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	CORSAllowedOrigins []string
	AdminToken         string
	LogLevel           logging.Level

	RemoteDriver                  string
	FirebaseDatabaseURL           string
	FirebaseAuthToken             string
	FirebaseTimeout               time.Duration
	FirebaseMaxRetries            int
	FirebaseStreamRetryDelay      time.Duration
	FirebaseCircuitEnabled        bool
	FirebaseCircuitFailureCount   int
	FirebaseCircuitOpenTimeout    time.Duration
	FirebaseCircuitHalfOpenMaxReq int

	LocalCacheDriver string
	LocalCachePath   string
	LocalCachePrefix string

	SyncCollections  []string
	SyncWriteTimeout time.Duration
	SyncWriteWorkers int
	SyncCacheOnSync  bool
	SeedDemoData     bool

	MetricsEnabled             bool
	PprofEnabled               bool
	PprofAddr                  string
	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	readTimeout, err := time.ParseDuration(getEnv("APP_READ_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_READ_TIMEOUT: %w", err)
	}
	writeTimeout, err := time.ParseDuration(getEnv("APP_WRITE_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_WRITE_TIMEOUT: %w", err)
	}

	adminToken := strings.TrimSpace(getEnv("APP_ADMIN_TOKEN", ""))
	if appEnv == EnvProd && adminToken == "" {
		return Config{}, fmt.Errorf("APP_ADMIN_TOKEN is required when APP_ENV=%s", EnvProd)
	}

	remoteDriver, err := parseChoice("REMOTE_DRIVER", getEnv("REMOTE_DRIVER", RemoteDriverFirebase), RemoteDriverFirebase, RemoteDriverMemory)
	if err != nil {
		return Config{}, err
	}
	firebaseDatabaseURL := strings.TrimRight(strings.TrimSpace(getEnv("FIREBASE_DATABASE_URL", "")), "/")
	if remoteDriver == RemoteDriverFirebase {
		if firebaseDatabaseURL == "" {
			return Config{}, fmt.Errorf("FIREBASE_DATABASE_URL is required when REMOTE_DRIVER=%s", RemoteDriverFirebase)
		}
		parsed, err := url.Parse(firebaseDatabaseURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return Config{}, fmt.Errorf("FIREBASE_DATABASE_URL must be an absolute URL")
		}
	}
	firebaseTimeout, err := time.ParseDuration(getEnv("FIREBASE_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FIREBASE_TIMEOUT: %w", err)
	}
	if firebaseTimeout <= 0 {
		return Config{}, fmt.Errorf("FIREBASE_TIMEOUT must be > 0")
	}
	firebaseMaxRetries, err := getEnvAsInt("FIREBASE_MAX_RETRIES", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FIREBASE_MAX_RETRIES: %w", err)
	}
	if firebaseMaxRetries < 0 {
		return Config{}, fmt.Errorf("FIREBASE_MAX_RETRIES must be >= 0")
	}
	firebaseStreamRetryDelay, err := time.ParseDuration(getEnv("FIREBASE_STREAM_RETRY_DELAY", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FIREBASE_STREAM_RETRY_DELAY: %w", err)
	}
	if firebaseStreamRetryDelay <= 0 {
		return Config{}, fmt.Errorf("FIREBASE_STREAM_RETRY_DELAY must be > 0")
	}
	firebaseCircuitEnabled, err := strconv.ParseBool(getEnv("FIREBASE_CIRCUIT_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FIREBASE_CIRCUIT_ENABLED: %w", err)
	}
	firebaseCircuitFailureCount, err := getEnvAsInt("FIREBASE_CIRCUIT_FAILURE_COUNT", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse FIREBASE_CIRCUIT_FAILURE_COUNT: %w", err)
	}
	if firebaseCircuitFailureCount < 1 {
		return Config{}, fmt.Errorf("FIREBASE_CIRCUIT_FAILURE_COUNT must be >= 1")
	}
	firebaseCircuitOpenTimeout, err := time.ParseDuration(getEnv("FIREBASE_CIRCUIT_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse FIREBASE_CIRCUIT_OPEN_TIMEOUT: %w", err)
	}
	if firebaseCircuitOpenTimeout <= 0 {
		return Config{}, fmt.Errorf("FIREBASE_CIRCUIT_OPEN_TIMEOUT must be > 0")
	}
	firebaseCircuitHalfOpenMaxReq, err := getEnvAsInt("FIREBASE_CIRCUIT_HALF_OPEN_MAX_REQ", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse FIREBASE_CIRCUIT_HALF_OPEN_MAX_REQ: %w", err)
	}
	if firebaseCircuitHalfOpenMaxReq < 1 {
		return Config{}, fmt.Errorf("FIREBASE_CIRCUIT_HALF_OPEN_MAX_REQ must be >= 1")
	}

	localCacheDriver, err := parseChoice("LOCAL_CACHE_DRIVER", getEnv("LOCAL_CACHE_DRIVER", LocalCacheDriverSQLite), LocalCacheDriverSQLite, LocalCacheDriverMemory)
	if err != nil {
		return Config{}, err
	}
	localCachePath := strings.TrimSpace(getEnv("LOCAL_CACHE_PATH", "starleague-cache.db"))
	if localCacheDriver == LocalCacheDriverSQLite && localCachePath == "" {
		return Config{}, fmt.Errorf("LOCAL_CACHE_PATH is required when LOCAL_CACHE_DRIVER=%s", LocalCacheDriverSQLite)
	}

	syncWriteTimeout, err := time.ParseDuration(getEnv("SYNC_WRITE_TIMEOUT", "10s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_WRITE_TIMEOUT: %w", err)
	}
	if syncWriteTimeout <= 0 {
		return Config{}, fmt.Errorf("SYNC_WRITE_TIMEOUT must be > 0")
	}
	syncWriteWorkers, err := getEnvAsInt("SYNC_WRITE_WORKERS", 4)
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_WRITE_WORKERS: %w", err)
	}
	if syncWriteWorkers < 1 {
		return Config{}, fmt.Errorf("SYNC_WRITE_WORKERS must be >= 1")
	}
	syncCacheOnSync, err := strconv.ParseBool(getEnv("SYNC_CACHE_ON_SYNC", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SYNC_CACHE_ON_SYNC: %w", err)
	}

	seedDefault := "false"
	if appEnv == EnvDev {
		seedDefault = "true"
	}
	seedDemoData, err := strconv.ParseBool(getEnv("SEED_DEMO_DATA", seedDefault))
	if err != nil {
		return Config{}, fmt.Errorf("parse SEED_DEMO_DATA: %w", err)
	}

	metricsEnabled, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		return Config{}, fmt.Errorf("parse METRICS_ENABLED: %w", err)
	}

	pprofEnabled, err := strconv.ParseBool(getEnv("PPROF_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PPROF_ENABLED: %w", err)
	}
	pprofAddr := strings.TrimSpace(getEnv("PPROF_ADDR", ":6060"))
	if pprofEnabled && pprofAddr == "" {
		return Config{}, fmt.Errorf("PPROF_ADDR is required when PPROF_ENABLED=true")
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceDSN == "" {
		uptraceDSN = parseUptraceDSNFromOTLPHeaders(getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""))
	}
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	cfg := Config{
		AppEnv:                        appEnv,
		ServiceName:                   getEnv("APP_SERVICE_NAME", "starleague-api"),
		ServiceVersion:                getEnv("APP_SERVICE_VERSION", "dev"),
		HTTPAddr:                      getEnv("APP_HTTP_ADDR", ":8080"),
		ReadTimeout:                   readTimeout,
		WriteTimeout:                  writeTimeout,
		CORSAllowedOrigins:            splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		AdminToken:                    adminToken,
		LogLevel:                      logging.ParseLevel(getEnv("APP_LOG_LEVEL", "info")),
		RemoteDriver:                  remoteDriver,
		FirebaseDatabaseURL:           firebaseDatabaseURL,
		FirebaseAuthToken:             strings.TrimSpace(getEnv("FIREBASE_AUTH_TOKEN", "")),
		FirebaseTimeout:               firebaseTimeout,
		FirebaseMaxRetries:            firebaseMaxRetries,
		FirebaseStreamRetryDelay:      firebaseStreamRetryDelay,
		FirebaseCircuitEnabled:        firebaseCircuitEnabled,
		FirebaseCircuitFailureCount:   firebaseCircuitFailureCount,
		FirebaseCircuitOpenTimeout:    firebaseCircuitOpenTimeout,
		FirebaseCircuitHalfOpenMaxReq: firebaseCircuitHalfOpenMaxReq,
		LocalCacheDriver:              localCacheDriver,
		LocalCachePath:                localCachePath,
		LocalCachePrefix:              getEnv("LOCAL_CACHE_PREFIX", "sl_"),
		SyncCollections:               splitCSV(getEnv("SYNC_COLLECTIONS", "")),
		SyncWriteTimeout:              syncWriteTimeout,
		SyncWriteWorkers:              syncWriteWorkers,
		SyncCacheOnSync:               syncCacheOnSync,
		SeedDemoData:                  seedDemoData,
		MetricsEnabled:                metricsEnabled,
		PprofEnabled:                  pprofEnabled,
		PprofAddr:                     pprofAddr,
		UptraceEnabled:                uptraceEnabled,
		UptraceDSN:                    uptraceDSN,
		PyroscopeEnabled:              pyroscopeEnabled,
		PyroscopeServerAddress:        pyroscopeServerAddress,
		PyroscopeAuthToken:            strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:        strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword:    strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:           pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))
	if cfg.PyroscopeEnabled && cfg.PyroscopeAppName == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_APP_NAME cannot be empty when PYROSCOPE_ENABLED=true")
	}
	if len(cfg.CORSAllowedOrigins) == 0 {
		return Config{}, fmt.Errorf("CORS_ALLOWED_ORIGINS cannot be empty")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, item)
	}

	return out
}

func parseChoice(key, value string, allowed ...string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range allowed {
		if normalized == candidate {
			return normalized, nil
		}
	}
	return "", fmt.Errorf("invalid %s %q: valid values are %s", key, value, strings.Join(allowed, ", "))
}

func parseUptraceDSNFromOTLPHeaders(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	items := strings.Split(raw, ",")
	for _, item := range items {
		parts := strings.SplitN(strings.TrimSpace(item), "=", 2)
		if len(parts) != 2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(parts[0]), "uptrace-dsn") {
			value := strings.TrimSpace(parts[1])
			return strings.Trim(value, "\"'")
		}
	}

	return ""
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}

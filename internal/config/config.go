package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DocumentStoreKind はドキュメントストアのバックエンド種別を表す。
type DocumentStoreKind string

const (
	// DocumentStorePostgres はPostgreSQLをドキュメントストアとして使用する。
	DocumentStorePostgres DocumentStoreKind = "postgres"
	// DocumentStoreMongo はMongoDBをドキュメントストアとして使用する。
	DocumentStoreMongo DocumentStoreKind = "mongo"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Identity（リモート認証基盤）
	IdentityAPIKey       string
	IdentityBaseURL      string
	IdentityEmulatorHost string
	IdentityTimeout      time.Duration

	// Document store
	DocumentStoreURL      string
	DocumentStoreKind     DocumentStoreKind
	DocumentStoreDatabase string

	// Local session
	SessionFile   string
	SessionSecret string

	// Server（プレゼンテーション層向けローカルAPI）
	ServerPort        string
	CORSAllowedOrigin string
	RateLimitPerMin   int

	// Logging
	LogLevel string
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.envがあれば先に読み込む（既存の環境変数は上書きしない）。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", slog.String("error", err.Error()))
	}

	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.IdentityAPIKey = os.Getenv("IDENTITY_API_KEY")
	if cfg.IdentityAPIKey == "" {
		missing = append(missing, "IDENTITY_API_KEY")
	}

	cfg.DocumentStoreURL = os.Getenv("DOCUMENT_STORE_URL")
	if cfg.DocumentStoreURL == "" {
		missing = append(missing, "DOCUMENT_STORE_URL")
	}

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	kind, err := detectDocumentStoreKind(cfg.DocumentStoreURL)
	if err != nil {
		return nil, err
	}
	cfg.DocumentStoreKind = kind

	// Optional fields with defaults
	cfg.IdentityBaseURL = getEnvString("IDENTITY_BASE_URL", "https://identitytoolkit.googleapis.com/v1")
	cfg.IdentityEmulatorHost = getEnvString("IDENTITY_EMULATOR_HOST", "")
	cfg.IdentityTimeout = getEnvDuration("IDENTITY_TIMEOUT", 10*time.Second)
	cfg.DocumentStoreDatabase = getEnvString("DOCUMENT_STORE_DATABASE", "todosync")
	cfg.SessionFile = getEnvString("SESSION_FILE", defaultSessionFile())
	cfg.ServerPort = getEnvString("SERVER_PORT", "8787")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:8081")
	cfg.RateLimitPerMin = getEnvInt("RATE_LIMIT_PER_MINUTE", 120)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	return cfg, nil
}

// detectDocumentStoreKind は接続URLのスキームからバックエンド種別を判定する。
func detectDocumentStoreKind(url string) (DocumentStoreKind, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DocumentStorePostgres, nil
	case strings.HasPrefix(url, "mongodb://"), strings.HasPrefix(url, "mongodb+srv://"):
		return DocumentStoreMongo, nil
	default:
		return "", fmt.Errorf("unsupported DOCUMENT_STORE_URL scheme: %s", url)
	}
}

// defaultSessionFile はローカルセッションファイルの既定パスを返す。
func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".todosync", "session.json")
	}
	return filepath.Join(home, ".todosync", "session.json")
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

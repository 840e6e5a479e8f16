package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App    AppConfig
	HTTP   ServerConfig
	MySQL  MySQLConfig
	Log    LogConfig
	PayPal PayPalConfig
	Mailer MailerConfig
	Funnel FunnelConfig
	Jobs   JobsConfig
}

type AppConfig struct {
	ServiceName string
	// PublicBaseURL is the externally reachable base of this service,
	// used to build approval links sent to the operator.
	PublicBaseURL string
	// ApprovalRedirectBaseURL is the front-end page the manual-approval
	// handler redirects to with token/error query parameters.
	ApprovalRedirectBaseURL string
}

type ServerConfig struct {
	Host string
	Port string
}

type MySQLConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type LogConfig struct {
	Level string
}

type PayPalConfig struct {
	ClientID    string
	Secret      string
	APIBaseURL  string
	HTTPTimeout time.Duration
}

type MailerConfig struct {
	APIKey        string
	FromName      string
	FromAddress   string
	OperatorEmail string
	HTTPTimeout   time.Duration
}

type FunnelConfig struct {
	// FXRateKESToUSD is fixed at record-creation time; amount_usd never changes afterwards.
	FXRateKESToUSD       float64
	JobApplicationFeeKES int64
	HiringRequestFeeKES  int64
	RelayMaxAttempts     int32
	RelayRetryInterval   time.Duration
	JobBatchSize         int32
}

type JobsConfig struct {
	RelayDispatchInterval time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		return nil, errors.New("MYSQL_DSN environment variable is required")
	}

	return &Config{
		App: AppConfig{
			ServiceName:             getEnv("APP_SERVICE_NAME", "agency-service"),
			PublicBaseURL:           getEnv("APP_PUBLIC_BASE_URL", "http://localhost:8080"),
			ApprovalRedirectBaseURL: getEnv("APP_APPROVAL_REDIRECT_BASE_URL", "http://localhost:5173/approval-result"),
		},
		HTTP: ServerConfig{
			Host: getEnv("HTTP_HOST", "0.0.0.0"),
			Port: getEnv("HTTP_PORT", "8080"),
		},
		MySQL: MySQLConfig{
			DSN:             mysqlDSN,
			MaxOpenConns:    getIntEnv("MYSQL_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("MYSQL_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getMinutesEnv("MYSQL_CONN_MAX_LIFETIME_MINUTES", 30*time.Minute),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		PayPal: PayPalConfig{
			ClientID:    getEnv("PAYPAL_CLIENT_ID", ""),
			Secret:      getEnv("PAYPAL_SECRET", ""),
			APIBaseURL:  getEnv("PAYPAL_API_BASE_URL", "https://api-m.paypal.com"),
			HTTPTimeout: getSecondsEnv("PAYPAL_HTTP_TIMEOUT_SECONDS", 10*time.Second),
		},
		Mailer: MailerConfig{
			APIKey:        getEnv("RESEND_API_KEY", ""),
			FromName:      getEnv("MAILER_FROM_NAME", "Coshikowa Agency"),
			FromAddress:   getEnv("MAILER_FROM_ADDRESS", "onboarding@resend.dev"),
			OperatorEmail: getEnv("MAILER_OPERATOR_EMAIL", ""),
			HTTPTimeout:   getSecondsEnv("MAILER_HTTP_TIMEOUT_SECONDS", 10*time.Second),
		},
		Funnel: FunnelConfig{
			FXRateKESToUSD:       getFloatEnv("FUNNEL_FX_RATE_KES_TO_USD", 0.0078),
			JobApplicationFeeKES: int64(getIntEnv("FUNNEL_JOB_APPLICATION_FEE_KES", 2000)),
			HiringRequestFeeKES:  int64(getIntEnv("FUNNEL_HIRING_REQUEST_FEE_KES", 3000)),
			RelayMaxAttempts:     int32(getIntEnv("FUNNEL_RELAY_MAX_ATTEMPTS", 10)),
			RelayRetryInterval:   getMinutesEnv("FUNNEL_RELAY_RETRY_INTERVAL_MINUTES", 5*time.Minute),
			JobBatchSize:         int32(getIntEnv("FUNNEL_JOB_BATCH_SIZE", 100)),
		},
		Jobs: JobsConfig{
			RelayDispatchInterval: getMinutesEnv("RELAY_DISPATCH_INTERVAL_MINUTES", time.Minute),
		},
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}

func getMinutesEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
	}
	return defaultValue
}

func getSecondsEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

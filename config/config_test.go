package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s failed: %v", key, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		}
	})
}

func TestLoadRequiresMySQLDSN(t *testing.T) {
	unsetEnv(t, "MYSQL_DSN")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing MYSQL_DSN")
	}
}

func TestLoadDefaults(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/agency?parseTime=true")
	unsetEnv(t, "FUNNEL_FX_RATE_KES_TO_USD")
	unsetEnv(t, "FUNNEL_JOB_APPLICATION_FEE_KES")
	unsetEnv(t, "FUNNEL_HIRING_REQUEST_FEE_KES")
	unsetEnv(t, "PAYPAL_API_BASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Funnel.FXRateKESToUSD != 0.0078 {
		t.Fatalf("unexpected fx rate: %v", cfg.Funnel.FXRateKESToUSD)
	}
	if cfg.Funnel.JobApplicationFeeKES != 2000 || cfg.Funnel.HiringRequestFeeKES != 3000 {
		t.Fatalf("unexpected fees: %+v", cfg.Funnel)
	}
	if cfg.PayPal.APIBaseURL != "https://api-m.paypal.com" {
		t.Fatalf("unexpected paypal base url: %s", cfg.PayPal.APIBaseURL)
	}
	if cfg.App.ServiceName != "agency-service" {
		t.Fatalf("unexpected service name: %s", cfg.App.ServiceName)
	}
}

func TestLoadOverrides(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/agency?parseTime=true")
	setEnv(t, "APP_SERVICE_NAME", "agency-test")
	setEnv(t, "HTTP_PORT", "8181")
	setEnv(t, "MYSQL_MAX_OPEN_CONNS", "20")
	setEnv(t, "MYSQL_MAX_IDLE_CONNS", "8")
	setEnv(t, "MYSQL_CONN_MAX_LIFETIME_MINUTES", "40")
	setEnv(t, "FUNNEL_FX_RATE_KES_TO_USD", "0.008")
	setEnv(t, "FUNNEL_JOB_APPLICATION_FEE_KES", "2500")
	setEnv(t, "FUNNEL_HIRING_REQUEST_FEE_KES", "3500")
	setEnv(t, "FUNNEL_RELAY_MAX_ATTEMPTS", "5")
	setEnv(t, "FUNNEL_RELAY_RETRY_INTERVAL_MINUTES", "7")
	setEnv(t, "FUNNEL_JOB_BATCH_SIZE", "99")
	setEnv(t, "RELAY_DISPATCH_INTERVAL_MINUTES", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.App.ServiceName != "agency-test" {
		t.Fatalf("unexpected app service name: %s", cfg.App.ServiceName)
	}
	if cfg.HTTP.Port != "8181" {
		t.Fatalf("unexpected http port: %s", cfg.HTTP.Port)
	}
	if cfg.MySQL.MaxOpenConns != 20 || cfg.MySQL.MaxIdleConns != 8 {
		t.Fatalf("unexpected mysql pool config: %+v", cfg.MySQL)
	}
	if cfg.MySQL.ConnMaxLifetime != 40*time.Minute {
		t.Fatalf("unexpected mysql lifetime: %v", cfg.MySQL.ConnMaxLifetime)
	}
	if cfg.Funnel.FXRateKESToUSD != 0.008 {
		t.Fatalf("unexpected fx rate: %v", cfg.Funnel.FXRateKESToUSD)
	}
	if cfg.Funnel.JobApplicationFeeKES != 2500 || cfg.Funnel.HiringRequestFeeKES != 3500 {
		t.Fatalf("unexpected fees: %+v", cfg.Funnel)
	}
	if cfg.Funnel.RelayMaxAttempts != 5 {
		t.Fatalf("unexpected relay max attempts: %d", cfg.Funnel.RelayMaxAttempts)
	}
	if cfg.Funnel.RelayRetryInterval != 7*time.Minute {
		t.Fatalf("unexpected relay retry interval: %v", cfg.Funnel.RelayRetryInterval)
	}
	if cfg.Funnel.JobBatchSize != 99 {
		t.Fatalf("unexpected job batch size: %d", cfg.Funnel.JobBatchSize)
	}
	if cfg.Jobs.RelayDispatchInterval != 3*time.Minute {
		t.Fatalf("unexpected relay dispatch interval: %v", cfg.Jobs.RelayDispatchInterval)
	}
}

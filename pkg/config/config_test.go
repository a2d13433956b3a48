package config

import (
	"testing"
	"time"

	"gorm.io/gorm/logger"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.ServiceName != ServiceName {
		t.Errorf("Expected service name %s, got %s", ServiceName, cfg.ServiceName)
	}
	if cfg.Dashboard.HorizonDays != 7 {
		t.Errorf("Expected default horizon 7, got %d", cfg.Dashboard.HorizonDays)
	}
	if cfg.Dashboard.TrendMonths != 6 {
		t.Errorf("Expected default trend months 6, got %d", cfg.Dashboard.TrendMonths)
	}
	if cfg.DB.ConnMaxLifetime != time.Hour {
		t.Errorf("Expected default conn lifetime 1h, got %v", cfg.DB.ConnMaxLifetime)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DASHBOARD_HORIZON_DAYS", "14")
	t.Setenv("DB_LOG_LEVEL", "silent")
	t.Setenv("DB_CONN_MAX_LIFETIME", "30m")
	t.Setenv("DB_MAX_IDLE_CONNS", "lots")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Dashboard.HorizonDays != 14 {
		t.Errorf("Expected horizon 14, got %d", cfg.Dashboard.HorizonDays)
	}
	if cfg.DB.LogLevel != logger.Silent {
		t.Errorf("Expected silent gorm log level, got %v", cfg.DB.LogLevel)
	}
	if cfg.DB.ConnMaxLifetime != 30*time.Minute {
		t.Errorf("Expected conn lifetime 30m, got %v", cfg.DB.ConnMaxLifetime)
	}
	if cfg.DB.MaxIdleConns != 10 {
		t.Errorf("Expected malformed idle conns to fall back to 10, got %d", cfg.DB.MaxIdleConns)
	}
}

func TestLoad_RejectsInvalidDashboardWindow(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "zero_horizon", key: "DASHBOARD_HORIZON_DAYS", val: "0"},
		{name: "negative_months", key: "DASHBOARD_TREND_MONTHS", val: "-2"},
		{name: "horizon_over_limit", key: "DASHBOARD_HORIZON_DAYS", val: "367"},
		{name: "months_over_limit", key: "DASHBOARD_TREND_MONTHS", val: "121"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s=%s", tt.key, tt.val)
			}
		})
	}
}

func TestGetDSN(t *testing.T) {
	c := DBConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=n sslmode=disable"
	if got := c.GetDSN(); got != want {
		t.Errorf("Expected DSN %q, got %q", want, got)
	}
}

package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.StoreDB.Type != "sqlite" {
		t.Errorf("StoreDB.Type = %q, want sqlite", cfg.StoreDB.Type)
	}
	if cfg.StoreDB.Path != "./data/inventory.db" {
		t.Errorf("StoreDB.Path = %q", cfg.StoreDB.Path)
	}
	if cfg.Expiry.HorizonMonths != 5 {
		t.Errorf("Expiry.HorizonMonths = %d, want 5", cfg.Expiry.HorizonMonths)
	}
	if cfg.List.RowHeight != 44 || cfg.List.VisibleRows != 30 {
		t.Errorf("List = %+v, want 44x30", cfg.List)
	}
	if cfg.Cache.Type != "memory" || cfg.Cache.TTL != 5*time.Minute {
		t.Errorf("Cache = %+v, want memory with 5m TTL", cfg.Cache)
	}
	if cfg.Refresh.DashboardInterval != time.Hour {
		t.Errorf("Refresh.DashboardInterval = %v, want 1h", cfg.Refresh.DashboardInterval)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("STORE_DB_TYPE", "postgres")
	t.Setenv("EXPIRY_HORIZON_MONTHS", "3")
	t.Setenv("LIST_VISIBLE_ROWS", "50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.StoreDB.Type != "postgres" {
		t.Errorf("StoreDB.Type = %q, want postgres", cfg.StoreDB.Type)
	}
	if cfg.Expiry.HorizonMonths != 3 {
		t.Errorf("Expiry.HorizonMonths = %d, want 3", cfg.Expiry.HorizonMonths)
	}
	if cfg.List.VisibleRows != 50 {
		t.Errorf("List.VisibleRows = %d, want 50", cfg.List.VisibleRows)
	}
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("SERVER_PORT", "not-a-port")

	if _, err := Load(); err == nil {
		t.Error("Load accepted a non-numeric port")
	}
}

func TestDSNHelpers(t *testing.T) {
	s := StoreDBConfig{
		Host: "db", Port: 5432, Name: "inv", User: "app", Password: "pw", SSLMode: "disable",
		MySQLHost: "mdb", MySQLPort: 3306, MySQLName: "inv", MySQLUser: "root", MySQLPass: "pw",
	}

	if got, want := s.PostgresDSN(), "postgres://app:pw@db:5432/inv?sslmode=disable"; got != want {
		t.Errorf("PostgresDSN = %q, want %q", got, want)
	}
	if got, want := s.MySQLDSN(), "root:pw@tcp(mdb:3306)/inv?parseTime=true"; got != want {
		t.Errorf("MySQLDSN = %q, want %q", got, want)
	}
}

func TestServerAddress(t *testing.T) {
	s := ServerConfig{Host: "127.0.0.1", Port: 9000}
	if got := s.Address(); got != "127.0.0.1:9000" {
		t.Errorf("Address = %q", got)
	}
}

package database_test

import (
	"strings"
	"testing"

	"github.com/tribuna-project/tribuna/pkg/database"
)

func TestConfigFinalizeDefaults(t *testing.T) {
	cfg := &database.Config{Name: "tribuna", User: "tribuna"}

	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Host != "localhost" || cfg.Port != 5432 {
		t.Errorf("endpoint got %s:%d, want localhost:5432", cfg.Host, cfg.Port)
	}
	if cfg.MaxOpenConns != 12 {
		t.Errorf("max open conns got %d, want 12", cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns != 6 {
		t.Errorf("max idle conns got %d, want 6", cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime != "30m" {
		t.Errorf("conn max lifetime got %q, want 30m", cfg.ConnMaxLifetime)
	}
}

func TestConfigFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_DB_HOST", "db.internal")
	t.Setenv("TEST_DB_MAX_OPEN_CONNS", "4")

	cfg := &database.Config{Name: "tribuna", User: "tribuna"}
	env := &database.Env{Host: "TEST_DB_HOST", MaxOpenConns: "TEST_DB_MAX_OPEN_CONNS"}

	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Host != "db.internal" {
		t.Errorf("host got %q, want db.internal", cfg.Host)
	}
	if cfg.MaxOpenConns != 4 {
		t.Errorf("max open conns got %d, want 4", cfg.MaxOpenConns)
	}
}

func TestConfigValidateRequiresIdentity(t *testing.T) {
	cfg := &database.Config{User: "tribuna"}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("expected failure for missing database name")
	}

	cfg = &database.Config{Name: "tribuna"}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("expected failure for missing user")
	}
}

func TestConfigDsnCarriesConnectTimeout(t *testing.T) {
	cfg := &database.Config{Name: "tribuna", User: "tribuna"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	dsn := cfg.Dsn()
	if !strings.Contains(dsn, "connect_timeout=10") {
		t.Errorf("dsn %q missing connect_timeout", dsn)
	}
	if !strings.Contains(dsn, "dbname=tribuna") {
		t.Errorf("dsn %q missing dbname", dsn)
	}
}

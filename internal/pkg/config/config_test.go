package config_test

import (
	"strings"
	"testing"

	"github.com/GuyFromTheInternet/hazardousenvironments-sub000/internal/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load("hazardgrid-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Driver != "postgres" {
		t.Errorf("expected postgres driver, got %s", cfg.Storage.Driver)
	}
	if cfg.Limits.MaxMarkers != 200 || cfg.Limits.MaxResults != 200 {
		t.Errorf("unexpected limits: %+v", cfg.Limits)
	}
	if cfg.Telemetry.ServiceName != "hazardgrid-test" {
		t.Errorf("expected service name from argument, got %s", cfg.Telemetry.ServiceName)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("HAZARDGRID_SERVER_PORT", "9090")
	t.Setenv("HAZARDGRID_STORAGE_DRIVER", "sqlite")

	cfg, err := config.Load("hazardgrid-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("expected sqlite driver, got %s", cfg.Storage.Driver)
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := config.Config{
		Storage: config.StorageConfig{Driver: "mongo"},
		Dataset: config.DatasetConfig{S3Bucket: "bucket"},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	for _, want := range []string{"server.port", "storage.driver", "dataset.s3_key", "limits.max_markers"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := config.DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "hazardgrid", SSLMode: "disable"}
	if got := d.DSN(); got != "postgres://u:p@db:5432/hazardgrid?sslmode=disable" {
		t.Errorf("unexpected dsn %s", got)
	}
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("jwt:\n  secret: s3cret\n"))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverPostgres {
		t.Errorf("Database.Driver = %q, want %q", cfg.Database.Driver, DriverPostgres)
	}
	if cfg.App.RatePerShoot != 500 {
		t.Errorf("App.RatePerShoot = %d, want 500", cfg.App.RatePerShoot)
	}
	if cfg.JWT.SessionTTL != 24*time.Hour {
		t.Errorf("JWT.SessionTTL = %v, want 24h", cfg.JWT.SessionTTL)
	}
	if cfg.SMS.TwilioEnabled() {
		t.Error("TwilioEnabled() = true, want false without credentials")
	}
	if cfg.App.Location() != time.UTC {
		t.Errorf("Location() = %v, want UTC", cfg.App.Location())
	}
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing jwt secret",
			yaml:    "log:\n  level: debug\n",
			wantErr: "jwt.secret is required",
		},
		{
			name:    "unknown driver",
			yaml:    "jwt:\n  secret: x\ndatabase:\n  driver: mysql\n",
			wantErr: "unsupported database driver",
		},
		{
			name:    "negative rate",
			yaml:    "jwt:\n  secret: x\napp:\n  rate_per_shoot: -1\n",
			wantErr: "rate_per_shoot",
		},
		{
			name:    "bad timezone",
			yaml:    "jwt:\n  secret: x\napp:\n  timezone: Mars/Olympus\n",
			wantErr: "invalid app.timezone",
		},
		{
			name:    "partial twilio credentials",
			yaml:    "jwt:\n  secret: x\nsms:\n  account_sid: AC123\n",
			wantErr: "sms.auth_token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9000
database:
  driver: sqlite
  path: /tmp/test.db
jwt:
  secret: abc
  session_ttl: 2h
app:
  timezone: Asia/Kolkata
  rate_per_shoot: 750
sms:
  account_sid: AC1
  auth_token: tok
  from_number: "+15550000"
  admin_phone: "+15551111"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverSQLite || cfg.Database.Path != "/tmp/test.db" {
		t.Errorf("Database = %+v, want sqlite at /tmp/test.db", cfg.Database)
	}
	if cfg.JWT.SessionTTL != 2*time.Hour {
		t.Errorf("SessionTTL = %v, want 2h", cfg.JWT.SessionTTL)
	}
	if cfg.App.RatePerShoot != 750 {
		t.Errorf("RatePerShoot = %d, want 750", cfg.App.RatePerShoot)
	}
	if !cfg.SMS.TwilioEnabled() {
		t.Error("TwilioEnabled() = false, want true")
	}
	if cfg.SMS.BaseURL != "https://api.twilio.com" {
		t.Errorf("SMS.BaseURL = %q, want default", cfg.SMS.BaseURL)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5432, User: "u", Password: "p", DBName: "shoots", SSLMode: "disable"}
	want := "host=db port=5432 user=u password=p dbname=shoots sslmode=disable"
	if got := c.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}

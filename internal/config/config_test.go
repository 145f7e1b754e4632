package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "")
	t.Setenv("INVITE_TTL", "")
	t.Setenv("MAX_UPLOAD_BYTES", "")

	cfg := Load()

	if cfg.DBDriver != "postgres" {
		t.Errorf("DBDriver = %q, want postgres", cfg.DBDriver)
	}
	if cfg.InviteTTL != 7*24*time.Hour {
		t.Errorf("InviteTTL = %v, want 168h", cfg.InviteTTL)
	}
	if cfg.MaxUploadBytes != 10*1024*1024 {
		t.Errorf("MaxUploadBytes = %d, want 10MB", cfg.MaxUploadBytes)
	}
}

func TestLoadInvalidValuesFallBack(t *testing.T) {
	t.Setenv("JWT_ACCESS_EXPIRY", "soon")
	t.Setenv("MAX_UPLOAD_BYTES", "-4")

	cfg := Load()

	if cfg.JWTAccessExpiry != 15*time.Minute {
		t.Errorf("JWTAccessExpiry = %v, want 15m", cfg.JWTAccessExpiry)
	}
	if cfg.MaxUploadBytes != 10*1024*1024 {
		t.Errorf("MaxUploadBytes = %d, want fallback", cfg.MaxUploadBytes)
	}
}

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "postgres",
			cfg:  Config{DBDriver: "postgres", DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "fam", DBPort: "5432", DBSSLMode: "disable"},
			want: "host=db user=u password=p dbname=fam port=5432 sslmode=disable TimeZone=UTC",
		},
		{
			name: "mysql",
			cfg:  Config{DBDriver: "mysql", DBHost: "db", DBUser: "u", DBPassword: "p", DBName: "fam", DBPort: "3306"},
			want: "u:p@tcp(db:3306)/fam?charset=utf8mb4&parseTime=True&loc=UTC",
		},
		{
			name: "sqlite",
			cfg:  Config{DBDriver: "sqlite", DBName: ":memory:"},
			want: ":memory:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.DSN(); got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Config{JWTSecret: "s", DBDriver: "postgres", DBPassword: "p", StorageDriver: "local"}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing jwt secret", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: true},
		{name: "postgres without password", mutate: func(c *Config) { c.DBPassword = "" }, wantErr: true},
		{name: "sqlite without password", mutate: func(c *Config) { c.DBDriver = "sqlite"; c.DBPassword = "" }},
		{name: "unknown driver", mutate: func(c *Config) { c.DBDriver = "oracle" }, wantErr: true},
		{name: "s3 without bucket", mutate: func(c *Config) { c.StorageDriver = "s3" }, wantErr: true},
		{name: "s3 with bucket", mutate: func(c *Config) { c.StorageDriver = "s3"; c.S3Bucket = "photos" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func clearDBEnv() {
	os.Unsetenv("MYSQL_DSN")
	os.Unsetenv("DB_CONN")
	os.Unsetenv("CREDENTIAL_FILE")
}

func TestLoad(t *testing.T) {
	clearDBEnv()
	os.Setenv("MYSQL_DSN", "user:pass@tcp(localhost:3306)/auction")
	os.Setenv("JWT_SECRET", "test-secret")
	defer func() {
		clearDBEnv()
		os.Unsetenv("JWT_SECRET")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.DB.Source != SourceDSN {
		t.Errorf("Expected source %q, got %q", SourceDSN, cfg.DB.Source)
	}

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("Expected HTTPAddr :8080, got %s", cfg.HTTPAddr)
	}

	if cfg.Currency != "HK$" {
		t.Errorf("Expected default currency HK$, got %s", cfg.Currency)
	}
}

func TestLoad_NoSource(t *testing.T) {
	clearDBEnv()
	// Point the credential file somewhere that does not exist
	os.Setenv("CREDENTIAL_FILE", filepath.Join(t.TempDir(), "missing.ini"))
	os.Setenv("JWT_SECRET", "test-secret")
	defer func() {
		clearDBEnv()
		os.Unsetenv("JWT_SECRET")
	}()

	_, err := Load()
	if err == nil {
		t.Error("Expected error when no database source is configured")
	}
}

func TestResolveDB_CredentialFilePreferredOverConnString(t *testing.T) {
	clearDBEnv()
	dir := t.TempDir()
	path := filepath.Join(dir, "credential.ini")
	content := "[database]\nserver = db.local\ndatabase = auction\nusername = app\npassword = secret\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write credential file: %v", err)
	}

	os.Setenv("CREDENTIAL_FILE", path)
	os.Setenv("DB_CONN", "raw:conn@tcp(elsewhere:3306)/other")
	defer clearDBEnv()

	cfg, err := resolveDB()
	if err != nil {
		t.Fatalf("resolveDB() failed: %v", err)
	}

	if cfg.Source != SourceCredential {
		t.Errorf("Expected credential source to win over DB_CONN, got %q", cfg.Source)
	}

	want := "app:secret@tcp(db.local:3306)/auction?parseTime=true&loc=UTC"
	if cfg.DSN != want {
		t.Errorf("Expected DSN %q, got %q", want, cfg.DSN)
	}
}

func TestResolveDB_BrokenCredentialFileDoesNotFallBack(t *testing.T) {
	clearDBEnv()
	dir := t.TempDir()
	path := filepath.Join(dir, "credential.ini")
	// Missing username makes the descriptor unusable
	content := "[database]\nserver = db.local\ndatabase = auction\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write credential file: %v", err)
	}

	os.Setenv("CREDENTIAL_FILE", path)
	os.Setenv("DB_CONN", "raw:conn@tcp(elsewhere:3306)/other")
	defer clearDBEnv()

	_, err := resolveDB()
	if err == nil {
		t.Error("Expected broken credential descriptor to propagate, not fall back to DB_CONN")
	}
}

func TestWithParseTime(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"u:p@tcp(h:3306)/db", "u:p@tcp(h:3306)/db?parseTime=true&loc=UTC"},
		{"u:p@tcp(h:3306)/db?charset=utf8mb4", "u:p@tcp(h:3306)/db?charset=utf8mb4&parseTime=true&loc=UTC"},
		{"u:p@tcp(h:3306)/db?parseTime=true", "u:p@tcp(h:3306)/db?parseTime=true"},
	}
	for _, c := range cases {
		if got := withParseTime(c.in); got != c.want {
			t.Errorf("withParseTime(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

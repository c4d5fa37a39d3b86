package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadEnvFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, filepath.Join(dir, ".env"), "RECONCILER_TEST_OUTPUT_DIR=out\nRECONCILER_TEST_KEEP=file\n")

	t.Setenv("RECONCILER_TEST_KEEP", "env")
	t.Cleanup(func() { os.Unsetenv("RECONCILER_TEST_OUTPUT_DIR") })

	if err := loadEnvFile(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("RECONCILER_TEST_OUTPUT_DIR"); got != "out" {
		t.Errorf("expected variable from env file, got %q", got)
	}
	if got := os.Getenv("RECONCILER_TEST_KEEP"); got != "env" {
		t.Errorf("env file must not override the environment, got %q", got)
	}
}

func TestLoadEnvFileMissing(t *testing.T) {
	if err := loadEnvFile(filepath.Join(t.TempDir(), ".env")); err != nil {
		t.Errorf("missing env file should be ignored, got %v", err)
	}
	if err := loadEnvFile(""); err != nil {
		t.Errorf("empty path should be ignored, got %v", err)
	}
}

func TestGetVersionString(t *testing.T) {
	defer SetVersionInfo("dev", "unknown", "unknown")

	SetVersionInfo("dev", "abc123", "2024-03-31")
	if got := getVersionString(); !strings.Contains(got, "commit abc123") {
		t.Errorf("unexpected dev version %q", got)
	}

	SetVersionInfo("v1.2.0", "abc123", "2024-03-31")
	if got := rootCmd.Version; got != "v1.2.0" {
		t.Errorf("expected release version, got %q", got)
	}
}

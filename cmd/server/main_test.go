package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func executeCommand(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("execute %v: %v", args, err)
	}
	return out.String()
}

func TestCelebrationCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BIRTHDAYWALL_STORAGE_CELEBRATION_PATH", filepath.Join(dir, "birthday_config.json"))
	t.Setenv("BIRTHDAYWALL_LOG_LEVEL", "error")
	cfgFile := filepath.Join(dir, "config.yaml")

	if out := executeCommand(t, "celebration", "show", "--config", cfgFile); !strings.Contains(out, "not configured") {
		t.Fatalf("expected unconfigured record, got %q", out)
	}

	executeCommand(t, "celebration", "set", "--config", cfgFile, "--name", "Sam", "--birthday", "1990-05-17")

	out := executeCommand(t, "celebration", "show", "--config", cfgFile)
	if !strings.Contains(out, "name: Sam") || !strings.Contains(out, "birthday: 1990-05-17") {
		t.Fatalf("unexpected show output %q", out)
	}

	executeCommand(t, "celebration", "reset", "--config", cfgFile)
	if out := executeCommand(t, "celebration", "show", "--config", cfgFile); !strings.Contains(out, "not configured") {
		t.Fatalf("expected record cleared, got %q", out)
	}
}

func TestHashPassword(t *testing.T) {
	out := strings.TrimSpace(executeCommand(t, "hash-password", "s3cret"))
	if !strings.HasPrefix(out, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", out)
	}
}

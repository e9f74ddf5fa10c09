package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rradio.toml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Serial.Baud != DefaultBaudRate {
		t.Fatalf("baud = %d, want %d", cfg.Serial.Baud, DefaultBaudRate)
	}
	if cfg.Logging.Level != "info" {
		t.Fatalf("level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadOverridesAndDefaults(t *testing.T) {
	path := writeConfig(t, `
[serial]
device = "/dev/ttyACM0"
read_timeout = "250ms"

[logging]
level = "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Serial.Device != "/dev/ttyACM0" {
		t.Fatalf("device = %q", cfg.Serial.Device)
	}
	if cfg.Serial.Baud != DefaultBaudRate {
		t.Fatalf("baud default not applied: %d", cfg.Serial.Baud)
	}

	readTimeout, err := cfg.Serial.ParseReadTimeout()
	if err != nil {
		t.Fatalf("parse read timeout: %v", err)
	}
	if readTimeout != 250*time.Millisecond {
		t.Fatalf("read timeout = %s", readTimeout)
	}

	idleSleep, err := cfg.Serial.ParseIdleSleep()
	if err != nil {
		t.Fatalf("parse idle sleep: %v", err)
	}
	if idleSleep != 50*time.Millisecond {
		t.Fatalf("idle sleep default = %s", idleSleep)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	for _, content := range []string{
		"[serial]\nread_timeout = \"soon\"\n",
		"[serial]\nidle_sleep = \"-5ms\"\n",
		"[logging]\nlevel = \"loud\"\n",
	} {
		path := writeConfig(t, content)
		if _, err := Load(path); err == nil {
			t.Fatalf("expected error for config %q", content)
		}
	}
}

func TestLoadRejectsMalformedTOML(t *testing.T) {
	path := writeConfig(t, "[serial\ndevice=")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

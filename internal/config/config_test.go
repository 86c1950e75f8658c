package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend != BackendSDL {
		t.Errorf("Backend = %q", cfg.Backend)
	}
	if cfg.PollInterval != 20*time.Millisecond || cfg.IdleInterval != 250*time.Millisecond {
		t.Errorf("intervals = %s / %s", cfg.PollInterval, cfg.IdleInterval)
	}
	if cfg.Listen != ":8080" || cfg.MQTT.Topic != "joystick" || cfg.MQTT.Broker != "" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadFlags(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load([]string{
		"--backend", "LINUX",
		"--joystick", "-1",
		"--poll-interval", "10ms",
		"--mqtt.broker", "tcp://localhost:1883",
		"--debug",
	})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend != BackendLinux || cfg.Joystick != -1 || cfg.PollInterval != 10*time.Millisecond {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.MQTT.Broker != "tcp://localhost:1883" || !cfg.Debug {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	file := "backend: linux\nlisten: \"127.0.0.1:9000\"\nmqtt:\n  topic: rover\n"
	if err := os.WriteFile(filepath.Join(dir, "joyinput.yaml"), []byte(file), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JOYINPUT_JOYSTICK", "2")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Backend != BackendLinux || cfg.Listen != "127.0.0.1:9000" || cfg.MQTT.Topic != "rover" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Joystick != 2 {
		t.Errorf("Joystick = %d; want 2 from env", cfg.Joystick)
	}
}

func TestLoadInvalid(t *testing.T) {
	chdir(t, t.TempDir())

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"--backend", "hid"}, "unknown backend"},
		{[]string{"--poll-interval", "0s"}, "poll-interval"},
		{[]string{"--idle-interval", "-1s"}, "idle-interval"},
		{[]string{"--settings", ""}, "settings"},
		{[]string{"--mqtt.broker", "tcp://x:1883", "--mqtt.topic", ""}, "mqtt.topic"},
		{[]string{"--config", "missing.yaml"}, "missing.yaml"},
	}

	for _, tt := range tests {
		_, err := Load(tt.args)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("Load(%v) error = %v; want %q", tt.args, err, tt.want)
		}
	}
}

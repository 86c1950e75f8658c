// Package config collects command line flags, an optional config file and
// JOYINPUT_* environment variables into a Config.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	BackendSDL   = "sdl"
	BackendLinux = "linux"
)

type MQTT struct {
	Broker     string
	ClientID   string
	Topic      string
	CanReverse bool
}

type Config struct {
	Backend      string
	Joystick     int
	PollInterval time.Duration
	IdleInterval time.Duration
	Settings     string
	Listen       string
	MQTT         MQTT
	Tray         bool
	Debug        bool
	List         bool
}

// Load parses args (without the program name).
func Load(args []string) (*Config, error) {
	fs := pflag.NewFlagSet("joyinput", pflag.ContinueOnError)
	fs.String("config", "", "config file (default ./joyinput.yaml or $HOME/.config/joyinput/joyinput.yaml)")
	fs.String("backend", BackendSDL, "joystick backend: sdl or linux")
	fs.Int("joystick", 0, "joystick id to open at startup, -1 for none")
	fs.Duration("poll-interval", 20*time.Millisecond, "sampling interval while a joystick is open")
	fs.Duration("idle-interval", 250*time.Millisecond, "loop interval while no joystick is open")
	fs.String("settings", defaultSettingsPath(), "calibration settings file")
	fs.String("listen", ":8080", "websocket/HTTP listen address, empty to disable")
	fs.String("mqtt.broker", "", "MQTT broker URL, empty to disable")
	fs.String("mqtt.client-id", "joyinput", "MQTT client id")
	fs.String("mqtt.topic", "joystick", "MQTT topic prefix")
	fs.Bool("mqtt.can-reverse", true, "vehicle accepts negative throttle")
	fs.Bool("tray", runtime.GOOS == "windows", "show a system tray icon")
	fs.Bool("debug", false, "log every button, hat and axis event")
	fs.Bool("list", false, "list joysticks and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	v.SetEnvPrefix("joyinput")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("joyinput")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "joyinput"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := &Config{
		Backend:      strings.ToLower(v.GetString("backend")),
		Joystick:     v.GetInt("joystick"),
		PollInterval: v.GetDuration("poll-interval"),
		IdleInterval: v.GetDuration("idle-interval"),
		Settings:     v.GetString("settings"),
		Listen:       v.GetString("listen"),
		MQTT: MQTT{
			Broker:     v.GetString("mqtt.broker"),
			ClientID:   v.GetString("mqtt.client-id"),
			Topic:      v.GetString("mqtt.topic"),
			CanReverse: v.GetBool("mqtt.can-reverse"),
		},
		Tray:  v.GetBool("tray"),
		Debug: v.GetBool("debug"),
		List:  v.GetBool("list"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendSDL, BackendLinux:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("poll-interval must be positive, got %s", c.PollInterval)
	}
	if c.IdleInterval <= 0 {
		return fmt.Errorf("idle-interval must be positive, got %s", c.IdleInterval)
	}
	if c.Settings == "" {
		return errors.New("settings path is empty")
	}
	if c.MQTT.Broker != "" && c.MQTT.Topic == "" {
		return errors.New("mqtt.topic is required when mqtt.broker is set")
	}
	return nil
}

func defaultSettingsPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "joyinput-settings.yaml"
	}
	return filepath.Join(dir, "joyinput", "settings.yaml")
}

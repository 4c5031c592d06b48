package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type appConfig struct {
	adminPassword  string
	wsURL          string
	socketPath     string
	callbackURL    string
	commandTimeout time.Duration
	soundDir       string
	player         string
	speech         string
	mute           bool
	logFile        string
	logLevel       string
	altScreen      bool
	mouse          bool
	startOpen      bool
}

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault("admin_password", defaultAdminPassword)
	v.SetDefault("backend.ws_url", "")
	v.SetDefault("backend.socket", "")
	v.SetDefault("backend.callback_url", "")
	v.SetDefault("backend.command_timeout", 5*time.Second)
	v.SetDefault("audio.sound_dir", "sounds")
	v.SetDefault("audio.player", "paplay --volume={volume} {file}")
	v.SetDefault("audio.speech", "espeak-ng -v en-us {text}")
	v.SetDefault("audio.mute", false)
	v.SetDefault("log.file", filepath.Join(os.TempDir(), "mdt-tui.log"))
	v.SetDefault("log.level", "info")
	v.SetDefault("ui.alt_screen", true)
	v.SetDefault("ui.mouse", true)
	v.SetDefault("ui.start_open", false)
}

// bindConfigFlags registers the CLI flags on fs and binds each one to its
// viper key. Flags win over env, env wins over the config file.
func bindConfigFlags(fs *pflag.FlagSet, v *viper.Viper) {
	fs.String("config", "", "path to a config file (yaml, json or toml)")
	fs.String("admin-password", "", "secret that unlocks admin rendering mode")
	fs.String("ws-url", "", "websocket URL streaming backend events")
	fs.String("socket", "", "unix socket streaming newline-delimited backend events")
	fs.String("callback-url", "", "base URL receiving outbound commands as POST {url}/{Command}")
	fs.Duration("command-timeout", 5*time.Second, "timeout for one outbound command")
	fs.String("sound-dir", "sounds", "directory holding click.ogg, panic.ogg, 911.ogg, bolo.ogg")
	fs.String("audio-player", "", "audio player command; {file} and {volume} are substituted")
	fs.String("speech-command", "", "text-to-speech command; {text} is substituted")
	fs.Bool("mute", false, "disable audio cues and speech")
	fs.String("log-file", "", "log file path")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.Bool("alt-screen", true, "use the terminal alternate screen")
	fs.Bool("mouse", true, "enable mouse support")
	fs.Bool("start-open", false, "show the terminal before the backend sends open")

	bindings := map[string]string{
		"admin_password":          "admin-password",
		"backend.ws_url":          "ws-url",
		"backend.socket":          "socket",
		"backend.callback_url":    "callback-url",
		"backend.command_timeout": "command-timeout",
		"audio.sound_dir":         "sound-dir",
		"audio.player":            "audio-player",
		"audio.speech":            "speech-command",
		"audio.mute":              "mute",
		"log.file":                "log-file",
		"log.level":               "log-level",
		"ui.alt_screen":           "alt-screen",
		"ui.mouse":                "mouse",
		"ui.start_open":           "start-open",
	}
	for key, flag := range bindings {
		_ = v.BindPFlag(key, fs.Lookup(flag))
	}
}

func newConfigViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("MDT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setConfigDefaults(v)
	return v
}

func loadConfig(v *viper.Viper, configFile string) (appConfig, error) {
	if strings.TrimSpace(configFile) != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return appConfig{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("mdt")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "mdt"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return appConfig{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := appConfig{
		adminPassword:  nullCoalesce(strings.TrimSpace(v.GetString("admin_password")), defaultAdminPassword),
		wsURL:          strings.TrimSpace(v.GetString("backend.ws_url")),
		socketPath:     strings.TrimSpace(v.GetString("backend.socket")),
		callbackURL:    strings.TrimSpace(v.GetString("backend.callback_url")),
		commandTimeout: v.GetDuration("backend.command_timeout"),
		soundDir:       v.GetString("audio.sound_dir"),
		player:         v.GetString("audio.player"),
		speech:         v.GetString("audio.speech"),
		mute:           v.GetBool("audio.mute"),
		logFile:        strings.TrimSpace(v.GetString("log.file")),
		logLevel:       nullCoalesce(strings.TrimSpace(v.GetString("log.level")), "info"),
		altScreen:      v.GetBool("ui.alt_screen"),
		mouse:          v.GetBool("ui.mouse"),
		startOpen:      v.GetBool("ui.start_open"),
	}
	if cfg.commandTimeout <= 0 {
		cfg.commandTimeout = 5 * time.Second
	}
	if strings.TrimSpace(cfg.player) == "" {
		cfg.player = "paplay --volume={volume} {file}"
	}
	if strings.TrimSpace(cfg.speech) == "" {
		cfg.speech = "espeak-ng -v en-us {text}"
	}
	return cfg, nil
}

func newLogger(cfg appConfig) (*zap.Logger, error) {
	if cfg.logFile == "" {
		return zap.NewNop(), nil
	}
	level, err := zap.ParseAtomicLevel(cfg.logLevel)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", cfg.logLevel, err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = level
	zcfg.OutputPaths = []string{cfg.logFile}
	zcfg.ErrorOutputPaths = []string{cfg.logFile}
	zcfg.Sampling = nil
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

func (c appConfig) inboundEndpoint() (string, frameDialer) {
	switch {
	case c.wsURL != "":
		return c.wsURL, dialWebsocket(c.wsURL, nil)
	case c.socketPath != "":
		return c.socketPath, dialUnixSocket(c.socketPath)
	default:
		return "", nil
	}
}

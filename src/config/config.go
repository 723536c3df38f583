package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ConfigPathEnvVar = "SCREEN_CLIP"
	DefaultHotkey    = "Ctrl+Alt+A"
	OutputClipboard  = "clipboard"
	OutputFile       = "file"

	defaultThrottleMS   = 16
	defaultFocusCheckMS = 250
)

type LoadOptions struct {
	OutputOverride  string
	SaveDirOverride string
	// DevicePixelRatioOverride wins over DEVICE_PIXEL_RATIO when positive.
	DevicePixelRatioOverride float64
}

type Config struct {
	Hotkey            string
	EnableFileLogging bool
	// DevicePixelRatio is 0 for autodetect.
	DevicePixelRatio   float64
	ThrottleInterval   time.Duration
	Output             string
	SaveDir            string
	FocusCheckInterval time.Duration
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SCREEN_CLIP env var as a path to a config file
	envPath := resolveEnvPath()
	dotenvValues := readDotenvValues(envPath)
	if envPath != "" {
		_ = godotenv.Load(envPath)
	}

	cfg := &Config{
		Hotkey:             getEnvWithDefault("HOTKEY", DefaultHotkey),
		EnableFileLogging:  strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		DevicePixelRatio:   resolveDevicePixelRatio(opts),
		ThrottleInterval:   resolveMillis("THROTTLE_MS", defaultThrottleMS),
		Output:             resolveOutput(opts),
		SaveDir:            resolveSaveDir(opts, dotenvValues),
		FocusCheckInterval: resolveMillis("FOCUS_CHECK_MS", defaultFocusCheckMS),
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	execDir := filepath.Dir(execPath)
	exeEnv := filepath.Join(execDir, ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(ConfigPathEnvVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func readDotenvValues(envPath string) map[string]string {
	if envPath == "" {
		return map[string]string{}
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		return map[string]string{}
	}

	return values
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func resolveMillis(key string, def int) time.Duration {
	ms := def
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			ms = n
		}
	}
	return time.Duration(ms) * time.Millisecond
}

func resolveDevicePixelRatio(opts LoadOptions) float64 {
	if opts.DevicePixelRatioOverride > 0 {
		return opts.DevicePixelRatioOverride
	}
	if v := strings.TrimSpace(os.Getenv("DEVICE_PIXEL_RATIO")); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return 0
}

func normalizeOutput(value string) string {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case OutputFile, "save":
		return OutputFile
	default:
		return OutputClipboard
	}
}

func resolveOutput(opts LoadOptions) string {
	if override := strings.TrimSpace(opts.OutputOverride); override != "" {
		return normalizeOutput(override)
	}
	return normalizeOutput(os.Getenv("OUTPUT"))
}

// resolveSaveDir picks the directory for saved captures. A SAVE_DIR in the
// .env file wins over the process environment so a portable install keeps its setting.
func resolveSaveDir(opts LoadOptions, dotenvValues map[string]string) string {
	dir := defaultSaveDir()

	if envDir := strings.TrimSpace(os.Getenv("SAVE_DIR")); envDir != "" {
		dir = envDir
	}

	if dotenvDir := strings.TrimSpace(dotenvValues["SAVE_DIR"]); dotenvDir != "" {
		dir = dotenvDir
	}

	if override := strings.TrimSpace(opts.SaveDirOverride); override != "" {
		dir = override
	}

	return dir
}

func defaultSaveDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	desktop := filepath.Join(home, "Desktop")
	if st, err := os.Stat(desktop); err == nil && st.IsDir() {
		return desktop
	}
	return home
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	flag "github.com/spf13/pflag"

	"github.com/dgellow/nexusquery/internal"
	"github.com/dgellow/nexusquery/internal/config"
	"github.com/dgellow/nexusquery/internal/log"
)

var BuildVersion = "dev"

type options struct {
	config     string
	backendURL string
	logFile    string
	noColor    bool
	noEffects  bool
	configInit string
	validate   bool
	check      bool
	version    bool
}

func generateDefaultConfig(path string) error {
	defaultConfig := map[string]any{
		"version":             config.ConfigVersion,
		"backendURL":          config.DefaultBackendURL,
		"requestTimeout":      "30s",
		"googleSignInTimeout": "3m",
		"signUpVia":           string(config.SignUpViaBackend),
		"timing": map[string]any{
			"messageTtl":          "5s",
			"refreshInterval":     "500ms",
			"logoutDelay":         "1s",
			"signUpRedirectDelay": "3s",
		},
		"effects": map[string]any{
			"background":  true,
			"cursorTrail": true,
		},
		"log": map[string]any{
			"level": "info",
		},
	}

	data, err := json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func validateConfig(path string) error {
	fmt.Printf("Validating: %s\n", path)

	if _, err := config.Load(path); err != nil {
		fmt.Printf("\nErrors (1):\n  - %s\n\nResult: FAIL\n", err)
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Println()
	fmt.Println("Result: PASS")
	return nil
}

// loadConfig resolves the configuration: the file when one is given, the
// defaults otherwise, with flag overrides applied last.
func loadConfig(opts options) (config.Config, error) {
	cfg := config.Default()
	if opts.config != "" {
		loaded, err := config.Load(opts.config)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if opts.backendURL != "" {
		cfg.BackendURL = opts.backendURL
	}
	if opts.logFile != "" {
		cfg.Log.File = opts.logFile
	}
	if opts.noEffects {
		cfg.Effects = config.EffectsConfig{}
	}

	if err := config.ValidateConfig(&cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// setupLogging routes logs to the log file. LOG_LEVEL, when set, wins over
// the configured level.
func setupLogging(cfg config.Config) (*os.File, error) {
	if os.Getenv("LOG_LEVEL") == "" && cfg.Log.Level != "" {
		if err := log.SetLogLevel(cfg.Log.Level); err != nil {
			return nil, err
		}
	}
	path := cfg.Log.File
	if path == "" {
		path = log.DefaultPath()
	}
	return log.OpenFile(path)
}

func run(opts options) error {
	if opts.noColor || termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logFile, err := setupLogging(cfg)
	if err != nil {
		return err
	}
	defer func() {
		log.SetOutput(nil)
		_ = logFile.Close()
	}()

	log.LogInfoWithFields("main", "Starting nexusquery", map[string]any{
		"version": BuildVersion,
		"config":  opts.config,
	})

	client, err := internal.NewNexusQuery(cfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	if opts.check {
		checkCtx, cancel := context.WithTimeout(ctx, 2*cfg.RequestTimeout)
		defer cancel()
		health, err := client.Check(checkCtx)
		if err != nil {
			return fmt.Errorf("check failed: %w", err)
		}
		fmt.Printf("Backend: %s %s (%s)\n", health.Service, health.Version, health.Status)
		return nil
	}

	err = client.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func main() {
	var opts options
	flag.StringVar(&opts.config, "config", "", "path to config file (.json, .jsonc, .yaml)")
	flag.StringVar(&opts.backendURL, "backend-url", "", "override the backend URL")
	flag.StringVar(&opts.logFile, "log-file", "", "write logs to this file")
	flag.BoolVar(&opts.noColor, "no-color", false, "disable colors")
	flag.BoolVar(&opts.noEffects, "no-effects", false, "disable the animated backdrop")
	flag.StringVar(&opts.configInit, "config-init", "", "generate default config file at specified path")
	flag.BoolVar(&opts.validate, "validate", false, "validate config file and exit")
	flag.BoolVar(&opts.check, "check", false, "bootstrap against the backend, call /health and exit")
	flag.BoolVar(&opts.version, "version", false, "print version and exit")
	help := flag.BoolP("help", "h", false, "print help and exit")
	flag.Parse()

	if *help {
		flag.Usage()
		return
	}
	if opts.version {
		fmt.Println(BuildVersion)
		return
	}
	if opts.configInit != "" {
		if err := generateDefaultConfig(opts.configInit); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Generated default config at: %s\n", opts.configInit)
		return
	}
	if opts.validate {
		if opts.config == "" {
			fmt.Fprintf(os.Stderr, "Error: --config flag is required for validation\n")
			os.Exit(1)
		}
		if err := validateConfig(opts.config); err != nil {
			os.Exit(1)
		}
		return
	}

	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"fandomia/internal/config"
	applog "fandomia/internal/log"
)

var (
	configPath string
	profileDir string
	backendURL string
	verbose    bool
	direct     bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fandomia",
	Short: "Fandomia storefront backend and device cart",
	Long: `fandomia runs the storefront backend ("serve") and acts as a shopping
device against it: the cart lives on this device and, for signed-in
customers, is mirrored to the backend so other devices can pick it up.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML config file (or set CONFIG_FILE)")
	rootCmd.PersistentFlags().StringVar(&profileDir, "profile", "", "Device profile directory (default: DEVICE_DIR)")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Backend URL (default: BACKEND_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&direct, "direct", false, "Open the backend database in-process instead of calling it over HTTP")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(signupCmd)
	rootCmd.AddCommand(cartCmd)
	rootCmd.AddCommand(productCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(categoriesCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the config and applies global flag overrides.
func loadConfig() config.Config {
	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		log.Printf("[warn] %v", err)
	}
	if profileDir != "" {
		cfg.DeviceDir = profileDir
	}
	if backendURL != "" {
		cfg.BackendURL = backendURL
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	applog.SetLevel(cfg.LogLevel)
	return cfg
}

// setupLogOutput sends events to base and, if configured, to the log file.
// The returned func closes the file.
func setupLogOutput(cfg config.Config, base io.Writer) func() {
	out := base
	var f *os.File
	if cfg.LogFile != "" {
		var err error
		f, err = os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			out = io.MultiWriter(base, f)
		}
	}
	log.SetOutput(out)
	applog.SetOutput(out)
	return func() {
		applog.Sync()
		if f != nil {
			_ = f.Close()
		}
	}
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

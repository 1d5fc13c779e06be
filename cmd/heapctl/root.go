package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/arenakit/internal/config"
	"github.com/joshuapare/arenakit/internal/logger"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	configPath string

	// Arena flags, shared by every command that replays a script
	arenaSize   int
	validateOps bool
	useMmap     bool
)

// settings is the effective configuration: file values with flags applied.
var settings = config.Default()

var closeLog = func() error { return nil }

var rootCmd = &cobra.Command{
	Use:   "heapctl",
	Short: "Replay allocation scripts against an arena allocator",
	Long: `heapctl drives the arenakit first-fit allocator with allocation scripts.
It replays scripts on a fresh arena, checks that block contents survive every
resize, validates the heap, and prints utilization reports and block dumps.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return closeLog()
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file")

	rootCmd.PersistentFlags().IntVarP(&arenaSize, "size", "s", config.DefaultArenaSize, "Arena size in bytes")
	rootCmd.PersistentFlags().BoolVar(&validateOps, "validate", false, "Validate the heap after every operation")
	rootCmd.PersistentFlags().BoolVar(&useMmap, "mmap", false, "Back the arena with an anonymous mapping")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadSettings reads the config file, applies explicitly set flags over it,
// and configures logging.
func loadSettings(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("size") {
		cfg.ArenaSize = arenaSize
	}
	if flags.Changed("validate") {
		cfg.Validate = validateOps
	}
	if flags.Changed("mmap") {
		cfg.Mmap = useMmap
	}
	if flags.Lookup("format") != nil && flags.Changed("format") {
		cfg.Format = dumpFormat
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Check(); err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	closeFn, err := logger.Init(logger.Options{
		Enabled: verbose || cfg.Log.File != "",
		File:    cfg.Log.File,
		Level:   level,
		JSON:    cfg.Log.JSON,
	})
	if err != nil {
		return err
	}
	closeLog = closeFn
	settings = cfg
	logger.Debug("settings", "arena_size", cfg.ArenaSize, "validate", cfg.Validate, "mmap", cfg.Mmap, "format", cfg.Format)
	return nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"fw-transfer/internal/config"
	"fw-transfer/internal/store"
	"fw-transfer/internal/transfer"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	configFile   string
	srcFile      string
	targetFile   string
	region       string
	environments []string
	outDir       string
	variablesDSN string
	logLevel     string
	logFile      string
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "fwtransfer",
		Short: "Transfer AWS communication requirements into the internal firewall rule list",
		Long: `fwtransfer reads the "Internal FW" sheet of an AWS communication requirements
	workbook and appends the requested rules, as alert/pass pairs, to a new
	"Rules <Env> New" sheet of the internal firewall rule list.`,
		RunE:         run,
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVar(&configFile, "config", "", "YAML configuration file")
	rootCmd.Flags().StringVar(&srcFile, "src", "", "AWS communication requirements workbook (.xlsx)")
	rootCmd.Flags().StringVar(&targetFile, "target", "", "Internal firewall rule list workbook (.xlsx)")
	rootCmd.Flags().StringVar(&region, "region", "tokyo", "Region name used in the output file name (tokyo, singapore, virginia, ...)")
	rootCmd.Flags().StringSliceVar(&environments, "env", []string{"prod"}, "Environments to process: prod, nonprod, or both")
	rootCmd.Flags().StringVar(&outDir, "out-dir", "", "Output directory (default: directory of --target)")
	rootCmd.Flags().StringVar(&variablesDSN, "variables-dsn", "", "MariaDB DSN to read IP set variables from instead of the workbook")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "INFO", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFile)
	slog.SetDefault(logger)
	slog.Info("Starting FW transfer", "region", cfg.Region, "environments", cfg.Environments)
	startTime := time.Now()

	source, err := os.ReadFile(cfg.SourcePath)
	if err != nil {
		slog.Error("Failed to read source workbook", "path", cfg.SourcePath, "error", err)
		return err
	}
	target, err := os.ReadFile(cfg.TargetPath)
	if err != nil {
		slog.Error("Failed to read rule list workbook", "path", cfg.TargetPath, "error", err)
		return err
	}

	transformer := &transfer.Transformer{Logger: logger}
	if cfg.VariablesDSN != "" {
		vars, err := store.NewMariaDBVariableStore(cfg.VariablesDSN)
		if err != nil {
			slog.Error("Failed to connect to variable store", "error", err)
			return err
		}
		defer vars.Close()
		transformer.Variables = vars
	}

	outputDir := cfg.OutputDirectory()
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	// Each environment works on its own copy of the workbooks.
	var g errgroup.Group
	for _, env := range cfg.Environments {
		env := env
		g.Go(func() error {
			return transferEnvironment(transformer, source, target, cfg.Region, env, outputDir)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("Transfer complete", "duration", time.Since(startTime))
	return nil
}

func transferEnvironment(t *transfer.Transformer, source, target []byte, region, env, outputDir string) error {
	res := t.Transform(source, target, region, env)
	if !res.Success {
		slog.Error("Transfer failed", "environment", env, "message", res.Message)
		return errors.New(res.Message)
	}

	path := filepath.Join(outputDir, res.FileName)
	if err := os.WriteFile(path, res.Output, 0644); err != nil {
		slog.Error("Failed to write output", "path", path, "error", err)
		return err
	}
	slog.Info(res.Message, "environment", env, "output_file", path, "rules", res.RuleCount)
	return nil
}

// loadConfig layers explicitly set flags over file and environment settings.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("src") {
		cfg.SourcePath = srcFile
	}
	if flags.Changed("target") {
		cfg.TargetPath = targetFile
	}
	if flags.Changed("region") {
		cfg.Region = region
	}
	if flags.Changed("env") {
		cfg.Environments = environments
	}
	if flags.Changed("out-dir") {
		cfg.OutputDir = outDir
	}
	if flags.Changed("variables-dsn") {
		cfg.VariablesDSN = variablesDSN
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%w (use --src and --target, or FW_SOURCE and FW_TARGET)", err)
	}
	return cfg, nil
}

func setupLogger(level, logFilePath string) *slog.Logger {
	var logWriter io.Writer = os.Stderr
	if logFilePath != "" {
		f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err == nil {
			logWriter = f
		}
		// We don't log an error here because the logger isn't set up yet.
		// It will just fall back to stderr.
	}

	var lvl slog.Level
	switch strings.ToUpper(level) {
	case "DEBUG":
		lvl = slog.LevelDebug
	case "INFO":
		lvl = slog.LevelInfo
	case "WARN":
		lvl = slog.LevelWarn
	case "ERROR":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(logWriter, &slog.HandlerOptions{Level: lvl}))
}

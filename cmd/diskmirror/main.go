package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"diskmirror/internal/client"
	"diskmirror/internal/client/config"
	"diskmirror/internal/utils"
	"diskmirror/internal/version"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"
)

// environment names kept compatible with the legacy .env files
var envBindings = map[string]string{
	"local_dir":       "SYNC_FOLDER",
	"remote_dir":      "YANDEX_FOLDER",
	"token":           "YANDEX_TOKEN",
	"interval":        "SYNC_INTERVAL",
	"max_concurrent":  "MAX_CONCURRENT",
	"log_file":        "LOG_FILE",
	"log_level":       "LOG_LEVEL",
	"log_file_level":  "LOG_FILE_LEVEL",
	"log_rotation_mb": "LOG_ROTATION",
	"log_compress":    "LOG_COMPRESSION",
}

var rootCmd = &cobra.Command{
	Use:     "diskmirror",
	Short:   "One-way mirror of a local folder to Yandex Disk",
	Version: version.Detailed(),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := &config.Config{
			LocalDir:      viper.GetString("local_dir"),
			RemoteDir:     viper.GetString("remote_dir"),
			Token:         viper.GetString("token"),
			Interval:      time.Duration(viper.GetInt("interval")) * time.Second,
			MaxConcurrent: viper.GetInt("max_concurrent"),
			LogFile:       viper.GetString("log_file"),
			LogLevel:      viper.GetString("log_level"),
			LogFileLevel:  viper.GetString("log_file_level"),
			LogMaxSizeMB:  viper.GetInt("log_rotation_mb"),
			LogCompress:   parseCompress(viper.GetString("log_compress")),
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		closeLogs, err := setupLogging(cfg)
		if err != nil {
			return err
		}
		defer closeLogs()

		cmd.SilenceUsage = true
		showHeader()

		c, err := client.New(cfg)
		if err != nil {
			return err
		}

		defer slog.Info("Bye!")
		return c.Start(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().StringP("local", "l", "", "local folder to mirror")
	rootCmd.Flags().StringP("remote", "r", "", "remote Disk folder")
	rootCmd.Flags().StringP("token", "t", "", "Disk OAuth token")
	rootCmd.Flags().IntP("interval", "i", int(config.DefaultInterval/time.Second), "seconds between cycles")
	rootCmd.Flags().IntP("concurrency", "n", config.DefaultMaxConcurrent, "max in-flight remote operations")
	rootCmd.Flags().String("log-file", config.DefaultLogFile, "rotated log file")
}

func main() {
	// .env is optional; real environment wins either way
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) error {
	viper.BindPFlag("local_dir", cmd.Flags().Lookup("local"))
	viper.BindPFlag("remote_dir", cmd.Flags().Lookup("remote"))
	viper.BindPFlag("token", cmd.Flags().Lookup("token"))
	viper.BindPFlag("interval", cmd.Flags().Lookup("interval"))
	viper.BindPFlag("max_concurrent", cmd.Flags().Lookup("concurrency"))
	viper.BindPFlag("log_file", cmd.Flags().Lookup("log-file"))

	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			return fmt.Errorf("config bind %s: %w", env, err)
		}
	}

	return nil
}

func setupLogging(cfg *config.Config) (func(), error) {
	if err := utils.EnsureParent(cfg.LogFile); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	rotated := &lumberjack.Logger{
		Filename: cfg.LogFile,
		MaxSize:  cfg.LogMaxSizeMB,
		Compress: cfg.LogCompress,
	}

	stdoutHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      parseLevel(cfg.LogLevel),
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	})
	fileHandler := slog.NewTextHandler(rotated, &slog.HandlerOptions{
		Level: parseLevel(cfg.LogFileLevel),
	})

	logger := slog.New(utils.NewMultiLogHandler(stdoutHandler, fileHandler))
	slog.SetDefault(logger)

	return func() { rotated.Close() }, nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// legacy .env files carry values like "zip"; anything that isn't an
// explicit off switch enables compression
func parseCompress(v string) bool {
	switch strings.ToLower(v) {
	case "", "0", "false", "none", "off":
		return false
	default:
		return true
	}
}

func showHeader() {
	color.New(color.FgHiCyan, color.Bold).
		Println("diskmirror " + version.Short())
}

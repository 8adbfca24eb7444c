package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/sensorlog/app"
	"github.com/kilianp07/sensorlog/config"
	"github.com/kilianp07/sensorlog/infra/logger"
)

var (
	cfgPath string
	envFile string
)

var rootCmd = &cobra.Command{
	Use:          "sensorlog",
	Short:        "Print home sensor readings published over MQTT",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "dotenv file loaded when present")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath, envFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logOut := cmd.ErrOrStderr()
	if strings.EqualFold(cfg.Logging.Output, "stdout") {
		logOut = cmd.OutOrStdout()
	}
	if err := logger.Configure(logger.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, Writer: logOut}); err != nil {
		return err
	}
	svc, err := app.New(cfg, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return svc.Run(ctx)
}

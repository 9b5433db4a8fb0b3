package cmd

import (
	"go/types"

	"github.com/spf13/cobra"
	"github.com/stellar/go-stellar-sdk/support/config"
	"github.com/stellar/go-stellar-sdk/support/log"

	cmdUtils "github.com/stellar/stellar-verify-sender/cmd/utils"
	"github.com/stellar/stellar-verify-sender/internal/monitor"
)

// globalOptions holds the options shared by every subcommand.
var globalOptions cmdUtils.GlobalOptionsType

func rootCmd() *cobra.Command {
	configOpts := config.ConfigOptions{
		{
			Name:           "log-level",
			Usage:          `The log level used in this project. Options: "TRACE", "DEBUG", "INFO", "WARN", "ERROR", "FATAL", or "PANIC".`,
			OptType:        types.String,
			FlagDefault:    "TRACE",
			ConfigKey:      &globalOptions.LogLevel,
			CustomSetValue: cmdUtils.SetConfigOptionLogLevel,
			Required:       true,
		},
		{
			Name:      "sentry-dsn",
			Usage:     `The DSN (client key) of the Sentry project. Required when the crash tracker type is "SENTRY".`,
			OptType:   types.String,
			ConfigKey: &globalOptions.SentryDSN,
			Required:  false,
		},
		{
			Name:        "environment",
			Usage:       `The environment where the application is running. Example: "development", "staging", "production".`,
			OptType:     types.String,
			FlagDefault: "development",
			ConfigKey:   &globalOptions.Environment,
			Required:    true,
		},
		cmdUtils.CrashTrackerTypeConfigOption(&globalOptions.CrashTrackerType),
		cmdUtils.MetricTypeConfigOption(&globalOptions.MetricType),
	}

	rootCmd := &cobra.Command{
		Use:     "stellar-verify-sender",
		Short:   "Stellar Verify Sender",
		Long:    "Delivers one-time verification codes by SMS or voice call through the Twilio Verify API and reports approved verifications back to it.",
		Version: globalOptions.Version,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			configOpts.Require()
			err := configOpts.SetValues()
			if err != nil {
				log.Fatalf("Error setting values of config options: %s", err.Error())
			}
			if err = globalOptions.Validate(); err != nil {
				log.Fatalf("Error validating global options: %s", err.Error())
			}
			log.WithFields(log.F{
				"version":     globalOptions.Version,
				"git_commit":  globalOptions.GitCommit,
				"environment": globalOptions.Environment,
			}).Info("Starting stellar-verify-sender")
		},
		Run: func(cmd *cobra.Command, args []string) {
			err := cmd.Help()
			if err != nil {
				log.Fatalf("Error calling help command: %s", err.Error())
			}
		},
	}

	err := configOpts.Init(rootCmd)
	if err != nil {
		log.Fatalf("Error initializing a config option: %s", err.Error())
	}
	// Consumed by cmdUtils.LoadEnvFile before the flags are parsed; declared here so cobra accepts it.
	rootCmd.PersistentFlags().String("env-file", "", "Path to a file with environment variables to load. Defaults to the ENV_FILE env var, then to .env in the working directory.")

	return rootCmd
}

// SetupCLI returns the root command with the serve and verify subcommands attached.
func SetupCLI(version, gitCommit string) *cobra.Command {
	globalOptions.Version = version
	globalOptions.GitCommit = gitCommit
	rootCmd := rootCmd()

	rootCmd.AddCommand((&ServeCommand{}).Command(&ServerService{}, &monitor.MonitorService{}))
	rootCmd.AddCommand((&VerifyCommand{}).Command(&VerifyService{}, &monitor.MonitorService{}))

	return rootCmd
}

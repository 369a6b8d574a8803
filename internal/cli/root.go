// Package cli implements the wisp command tree.
package cli

import (
	"context"

	"wisp/internal/config"
	"wisp/pkg/logger"

	"github.com/spf13/cobra"
)

// GlobalFlags holds flags shared by every command.
type GlobalFlags struct {
	ConfigPath string
	Verbose    bool
	Quiet      bool
}

var globalFlags GlobalFlags

type contextKey struct{}

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wisp",
		Short: "Wisp - Gemini chat agent with MCP tools",
		Long: `Wisp is a line-oriented chat agent that connects Google Gemini to an
external MCP tool server. The model can request tool invocations
mid-conversation; wisp executes them and feeds the results back before
the final answer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// version, init and help work without a loaded config.
			switch cmd.Name() {
			case "version", "init", "help":
				return nil
			}

			configPath := globalFlags.ConfigPath
			if configPath == "" {
				var err error
				configPath, err = config.DefaultConfigPath()
				if err != nil {
					return err
				}
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			logLevel := cfg.Log.Level
			if globalFlags.Verbose {
				logLevel = "debug"
			}
			if globalFlags.Quiet {
				logLevel = "error"
			}

			if err := logger.Init(logger.Config{
				Level:  logLevel,
				Format: cfg.Log.Format,
				File:   cfg.Log.File,
			}); err != nil {
				return err
			}

			cmd.SetContext(context.WithValue(cmd.Context(), contextKey{}, cfg))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Close()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&globalFlags.ConfigPath, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&globalFlags.Quiet, "quiet", "q", false, "quiet mode")

	rootCmd.AddCommand(NewVersionCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewChatCmd())

	return rootCmd
}

// GetConfig retrieves the loaded configuration from the command context.
func GetConfig(cmd *cobra.Command) *config.Config {
	ctx := cmd.Context()
	if ctx == nil {
		return nil
	}
	cfg, ok := ctx.Value(contextKey{}).(*config.Config)
	if !ok {
		return nil
	}
	return cfg
}

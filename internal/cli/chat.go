package cli

import (
	"errors"
	"fmt"
	"os"

	"wisp/internal/config"
	"wisp/internal/mcp/client"
	"wisp/internal/provider/gemini"
	"wisp/internal/runner"
	"wisp/internal/tools"
	"wisp/pkg/logger"

	"github.com/spf13/cobra"
)

// NewChatCmd creates the chat command.
func NewChatCmd() *cobra.Command {
	var (
		model       string
		temperature float64
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with Gemini.

The configured MCP tool server is started as a subprocess and its tools
are offered to the model. Type 'exit' to end the session.`,
		Example: `  # Chat with the configured defaults
  wisp chat

  # Override the model for one session
  wisp chat --model gemini-2.0-flash`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := GetConfig(cmd)
			if cfg == nil {
				return errors.New("configuration not loaded")
			}
			if model != "" {
				cfg.Gemini.Model = model
			}
			if cmd.Flags().Changed("temperature") {
				cfg.Gemini.Temperature = temperature
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runChat(cmd, cfg)
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "model to use (overrides config)")
	cmd.Flags().Float64VarP(&temperature, "temperature", "t", 0, "sampling temperature (overrides config)")

	return cmd
}

func runChat(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()

	prov, err := gemini.New(ctx, gemini.Config{
		APIKey:      cfg.Gemini.APIKey,
		Model:       cfg.Gemini.Model,
		Temperature: cfg.Gemini.Temperature,
	})
	if err != nil {
		return fmt.Errorf("create provider: %w", err)
	}

	mcpClient := client.New("wisp", client.Config{
		Command: cfg.MCP.Command,
		Args:    cfg.MCP.Args,
		Env:     cfg.MCP.Env,
		WorkDir: cfg.MCP.WorkDir,
		Timeout: cfg.MCP.GetTimeout(),
	})
	if err := mcpClient.Connect(ctx); err != nil {
		return fmt.Errorf("connect to MCP server: %w", err)
	}
	defer func() {
		if err := mcpClient.Close(); err != nil {
			logger.Warn().Err(err).Msg("mcp close failed")
		}
	}()

	decls := tools.BuildDeclarations(mcpClient.ListTools())
	logger.Info().
		Str("model", cfg.Gemini.Model).
		Int("tools", len(decls)).
		Msg("chat session starting")

	fmt.Printf("Connected to %s (%d tools). Type 'exit' to quit.\n",
		mcpClient.ServerInfo().Name, len(decls))

	policy := runner.RetryPolicy{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		DefaultDelay: cfg.Retry.GetDefaultDelay(),
	}
	inv := runner.NewInvoker(prov, cfg.Gemini.Model, cfg.Gemini.Temperature, policy, os.Stdout)
	r := runner.New(inv, mcpClient, decls, os.Stdin, os.Stdout)

	return r.Run(ctx)
}

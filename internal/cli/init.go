package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"wisp/internal/config"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// InitOptions holds init command options.
type InitOptions struct {
	Force bool
}

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	opts := &InitOptions{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize wisp configuration",
		Long:  "Create the wisp configuration directory and a starter config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunInit(opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "overwrite existing configuration")

	return cmd
}

// RunInit writes the starter configuration.
func RunInit(opts *InitOptions) error {
	configDir, err := config.DefaultConfigDir()
	if err != nil {
		return fmt.Errorf("get config dir: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil && !opts.Force {
		return fmt.Errorf("configuration already exists at %s (use --force to overwrite)", configPath)
	}

	dirs := []string{
		configDir,
		filepath.Join(configDir, "logs"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}

	starter := map[string]any{
		"gemini": map[string]any{
			"api_key":     "",
			"model":       "gemini-2.0-flash",
			"temperature": 0.7,
		},
		"mcp": map[string]any{
			"command": "",
			"args":    []string{},
			"timeout": "30s",
		},
		"retry": map[string]any{
			"max_attempts":  3,
			"default_delay": "30s",
		},
		"log": map[string]any{
			"level":  "info",
			"format": "console",
		},
	}

	data, err := yaml.Marshal(starter)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Printf("Initialized wisp at %s\n", configDir)
	fmt.Printf("  Config: %s\n", configPath)
	fmt.Println("Set gemini.api_key and mcp.command before running 'wisp chat'.")

	return nil
}

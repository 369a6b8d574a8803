package config

import "github.com/spf13/viper"

// SetDefaults registers default values for all configuration keys. Every
// key must appear here: keys unknown to viper are invisible to Unmarshal,
// so WISP_* environment overrides only reach registered keys.
func SetDefaults() {
	// Gemini backend
	viper.SetDefault("gemini.api_key", "")
	viper.SetDefault("gemini.model", "gemini-2.0-flash")
	viper.SetDefault("gemini.temperature", 0.7)

	// MCP tool server
	viper.SetDefault("mcp.command", "")
	viper.SetDefault("mcp.args", []string{})
	viper.SetDefault("mcp.env", map[string]string{})
	viper.SetDefault("mcp.work_dir", "")
	viper.SetDefault("mcp.timeout", "30s")

	// Generation retry
	viper.SetDefault("retry.max_attempts", 3)
	viper.SetDefault("retry.default_delay", "30s")

	// Logging
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.file", "")

	viper.SetDefault("version", "")
}

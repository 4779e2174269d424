// Package config provides configuration management for the AI chat service.
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// loadYAMLConfig loads operational configuration from YAML files based on the
// environment. It first loads defaults.yaml, then overlays environment-specific
// configuration (local.yaml, nonprod.yaml, or prod.yaml).
// Returns a map of configuration values to be merged into the main Config struct.
func loadYAMLConfig(env Environment) (map[string]interface{}, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("defaults")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	// Load defaults
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// YAML configuration is optional; environment variables alone
			// are a complete configuration.
			return map[string]interface{}{}, nil
		}
		return nil, fmt.Errorf("failed to read defaults config: %w", err)
	}

	// Determine environment-specific config file
	var envConfigFile string
	switch env {
	case Local:
		envConfigFile = "local"
	case NonProd:
		envConfigFile = "nonprod"
	case Prod:
		envConfigFile = "prod"
	default:
		envConfigFile = "local"
	}

	// Load environment-specific overrides
	envViper := viper.New()
	envViper.SetConfigType("yaml")
	envViper.SetConfigName(envConfigFile)
	envViper.AddConfigPath("./configs")
	envViper.AddConfigPath("../configs")
	envViper.AddConfigPath("../../configs")

	if err := envViper.ReadInConfig(); err != nil {
		// Environment-specific config is optional, only return error if it's
		// not a "file not found" error
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("failed to read %s config: %w", envConfigFile, err)
		}
	}

	// Merge environment-specific config into defaults
	if err := v.MergeConfigMap(envViper.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to merge environment config: %w", err)
	}

	return v.AllSettings(), nil
}

// applyYAMLOverrides merges YAML operational settings into the configuration.
// Environment variables take precedence for the system prompt; YAML values
// fill in the gaps for deployment-managed wording and origins.
func (c *Config) applyYAMLOverrides() error {
	settings, err := loadYAMLConfig(c.Environment.Environment)
	if err != nil {
		return err
	}

	chat, _ := settings["chat"].(map[string]interface{})
	if chat != nil {
		if prompt, ok := chat["system_prompt"].(string); ok && c.Chat.SystemPrompt == "" {
			c.Chat.SystemPrompt = prompt
		}
		if lang, ok := chat["response_language"].(string); ok && lang != "" {
			c.Chat.ResponseLanguage = lang
		}
	}

	security, _ := settings["security"].(map[string]interface{})
	if security != nil {
		if origins, ok := security["allowed_origins"].([]interface{}); ok && len(origins) > 0 {
			allowed := make([]string, 0, len(origins))
			for _, o := range origins {
				if s, ok := o.(string); ok {
					allowed = append(allowed, s)
				}
			}
			if len(allowed) > 0 {
				c.Security.AllowedOrigins = allowed
			}
		}
	}

	return nil
}

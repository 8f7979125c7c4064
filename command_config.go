package sqlkit

import (
	"fmt"
	"os"

	"github.com/oarkflow/cli/contracts"
)

// ConfigInitCommand writes a sample configuration file
type ConfigInitCommand struct {
	Driver IManager
}

func (c *ConfigInitCommand) Signature() string {
	return "config:init"
}

func (c *ConfigInitCommand) Description() string {
	return "Initialize a new configuration file"
}

func (c *ConfigInitCommand) Extend() contracts.Extend {
	return contracts.Extend{
		Flags: []contracts.Flag{
			{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "Path to configuration file",
				Value:   DefaultConfigFile,
			},
			{
				Name:  "force",
				Usage: "Overwrite existing configuration file",
				Value: "false",
			},
		},
	}
}

func (c *ConfigInitCommand) Handle(ctx contracts.Context) error {
	configPath := ctx.Option("path")
	if configPath == "" {
		configPath = DefaultConfigFile
	}

	if _, err := os.Stat(configPath); err == nil && ctx.Option("force") != "true" {
		return fmt.Errorf("configuration file already exists at %s (use --force to overwrite)", configPath)
	}

	if err := CreateSampleConfig(configPath); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	logger.Info().Msgf("Configuration file created: %s", configPath)
	return nil
}

// ConfigValidateCommand validates a configuration file
type ConfigValidateCommand struct {
	Driver IManager
}

func (c *ConfigValidateCommand) Signature() string {
	return "config:validate"
}

func (c *ConfigValidateCommand) Description() string {
	return "Validate configuration file"
}

func (c *ConfigValidateCommand) Extend() contracts.Extend {
	return contracts.Extend{
		Flags: []contracts.Flag{
			{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "Path to configuration file",
				Value:   DefaultConfigFile,
			},
		},
	}
}

func (c *ConfigValidateCommand) Handle(ctx contracts.Context) error {
	configPath := ctx.Option("path")
	if configPath == "" {
		configPath = DefaultConfigFile
	}

	config, err := LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	logger.Info().Msgf("Configuration file %s is valid", configPath)
	logger.Info().Msgf("Split mode: %s, schema store: %s", config.Split.Mode, config.Schema.Store)
	return nil
}

// ConfigShowCommand displays the effective configuration
type ConfigShowCommand struct {
	Driver IManager
}

func (c *ConfigShowCommand) Signature() string {
	return "config:show"
}

func (c *ConfigShowCommand) Description() string {
	return "Show current configuration"
}

func (c *ConfigShowCommand) Extend() contracts.Extend {
	return contracts.Extend{
		Flags: []contracts.Flag{
			{
				Name:    "path",
				Aliases: []string{"p"},
				Usage:   "Path to configuration file (defaults to the running configuration)",
				Value:   "",
			},
			{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (json, table)",
				Value:   "table",
			},
		},
	}
}

func (c *ConfigShowCommand) Handle(ctx contracts.Context) error {
	config := c.Driver.Config()
	if configPath := ctx.Option("path"); configPath != "" {
		loaded, err := LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		loaded.ApplyEnvironmentOverrides()
		config = loaded
	}

	switch format := ctx.Option("format"); format {
	case "json":
		return renderJSON(c.Driver.Output(), config)
	case "table", "":
		renderConfig(c.Driver.Output(), config)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

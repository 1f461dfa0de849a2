package main

import (
	"fmt"
	"strings"

	"chat-analyzer/utils"

	"github.com/spf13/cobra"
)

func configCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or edit the configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(flags)
			if err != nil {
				return err
			}
			defer e.Close()

			config, applied := e.overrides.Effective(utils.LoadConfigOrDefault(e.paths.Config, e.logger))

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "config:    %s\n", e.paths.Config)
			fmt.Fprintf(out, "provider:  %s\n", config.Provider)
			fmt.Fprintf(out, "model:     %s (%s)\n", config.Model, utils.ModelLabel(config.Model))
			fmt.Fprintf(out, "api_key:   %s\n", maskKey(config.APIKey))
			if config.BaseURL != "" {
				fmt.Fprintf(out, "base_url:  %s\n", config.BaseURL)
			}
			fmt.Fprintf(out, "anonymize: %v\n", config.Anonymize)
			if config.SystemPrompt != "" {
				fmt.Fprintf(out, "prompt:    %s\n", oneLine(config.SystemPrompt))
			}
			if len(applied) > 0 {
				fmt.Fprintf(out, "from env:  %s\n", strings.Join(applied, ", "))
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-key <api-key>",
		Short: "Store the API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editConfig(cmd, flags, func(c *utils.Config) error {
				key := strings.TrimSpace(args[0])
				if key == "" {
					return utils.ErrMissingAPIKey
				}
				c.APIKey = key
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set-model <model>",
		Short: "Select the model by id or label (deepseek-chat, DeepSeek-R1, ...)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return editConfig(cmd, flags, func(c *utils.Config) error {
				model := strings.TrimSpace(args[0])
				if id, ok := utils.ModelIDForLabel(model); ok {
					model = id
				}
				if c.Provider != utils.ProviderOllama && !utils.IsKnownModel(model) {
					return fmt.Errorf("unknown model %q", args[0])
				}
				c.Model = model
				return nil
			})
		},
	})

	return cmd
}

// editConfig changes the config file itself; environment overrides are not
// written back
func editConfig(cmd *cobra.Command, flags *globalFlags, edit func(*utils.Config) error) error {
	e, err := openEnv(flags)
	if err != nil {
		return err
	}
	defer e.Close()

	config := utils.LoadConfigOrDefault(e.paths.Config, e.logger)
	if err := edit(config); err != nil {
		return err
	}
	config.Normalize()
	if err := utils.SaveConfig(e.paths.Config, config); err != nil {
		return err
	}

	e.logger.Info("Config updated via CLI: %s", e.paths.Config)
	fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", e.paths.Config)
	return nil
}

func maskKey(key string) string {
	switch {
	case key == "":
		return "(not set)"
	case len(key) <= 8:
		return "****"
	default:
		return key[:3] + "****" + key[len(key)-4:]
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newConfigCmd returns the "config" subcommand group for configuration management.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}

	cmd.AddCommand(newConfigValidateCmd())
	return cmd
}

// newConfigValidateCmd returns the "config validate" subcommand that checks config validity.
func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, styleSuccess.Render("✓ Configuration is valid"))
			fmt.Fprintln(out, styleDim.Render("  api: "+cfg.TMDb.APIURL))
			fmt.Fprintln(out, styleDim.Render("  images: "+cfg.TMDb.ImageURL))
			if cfg.TMDb.APIKey == "" {
				fmt.Fprintln(out, styleWarn.Render("! TMDb API key is not set; catalog requests will fail"))
			}
			if cfg.Telegram == nil {
				fmt.Fprintln(out, styleDim.Render("  telegram: disabled"))
			}
			return nil
		},
	}
}

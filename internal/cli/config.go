package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Vodeneev/surebetbot/internal/calculator/calculator"
	"github.com/Vodeneev/surebetbot/internal/pkg/config"
)

// NewConfigCommand creates the config command group
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect service configuration files",
	}

	cmd.AddCommand(newConfigValidateCommand())
	cmd.AddCommand(newConfigShowCommand())

	return cmd
}

func newConfigValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>",
		Short: "Check that a config file loads and is consistent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: ok (%d feeds, tax %.2f%%)\n", args[0], len(cfg.Feeds), cfg.Engine.TaxRate*100)

			var gapErr *calculator.GapError
			if err := calculator.NewRouter(cfg.Routing).Validate(); errors.As(err, &gapErr) {
				fmt.Fprintf(out, "warning: %v\n", gapErr)
			}
			return nil
		},
	}
}

func newConfigShowCommand() *cobra.Command {
	var withEnv bool

	cmd := &cobra.Command{
		Use:   "show <path>",
		Short: "Print the config with defaults filled in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if withEnv {
				cfg.ApplyEnv()
			}
			if cfg.Telegram.BotToken != "" {
				cfg.Telegram.BotToken = "***"
			}
			if cfg.Postgres.DSN != "" {
				cfg.Postgres.DSN = "***"
			}
			if cfg.Redis.Password != "" {
				cfg.Redis.Password = "***"
			}

			data, err := yaml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	cmd.Flags().BoolVar(&withEnv, "env", false, "Apply environment overrides before printing")

	return cmd
}

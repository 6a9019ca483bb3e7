package cmd

import (
	"github.com/auditdeck/auditdeck/internal/config"
	"github.com/auditdeck/auditdeck/internal/output"

	"github.com/spf13/cobra"
)

var (
	configureEndpoint string
	configureAPIKey   string
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Store the orchestrator endpoint and API key",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		if configureEndpoint != "" {
			cfg.APIEndpoint = configureEndpoint
		}
		if configureAPIKey != "" {
			cfg.APIKey = configureAPIKey
		}

		if err = config.Save(cfg); err != nil {
			return err
		}

		dir, _ := config.ConfigDir()
		output.Success("configuration written to %s", dir)
		return nil
	},
}

func init() {
	configureCmd.Flags().StringVar(&configureEndpoint, "api-endpoint", "", "Orchestrator API endpoint URL")
	configureCmd.Flags().StringVar(&configureAPIKey, "api-key", "", "API key")
	rootCmd.AddCommand(configureCmd)
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okabe/revue/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and manage revue configuration settings.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		fmt.Println("Current configuration:")
		fmt.Println("----------------------")
		fmt.Printf("Backend:            %s\n", cfg.Backend.Name)
		if cfg.Backend.Model != "" {
			fmt.Printf("Model:              %s\n", cfg.Backend.Model)
		}
		if cfg.Backend.Profile != "" {
			fmt.Printf("Profile:            %s\n", cfg.Backend.Profile)
		}
		if cfg.Backend.ReasoningEffort != "" {
			fmt.Printf("Reasoning effort:   %s\n", cfg.Backend.ReasoningEffort)
		}
		fmt.Printf("Mode:               %s\n", cfg.Run.Mode)
		fmt.Printf("Repository context: %v\n", cfg.Run.Context)
		fmt.Printf("Progress TUI:       %v\n", cfg.Run.TUI)
		fmt.Printf("Search root:        %s\n", cfg.Repo.SearchRoot)
		if cfg.Repo.CloneDir != "" {
			fmt.Printf("Clone dir:          %s\n", cfg.Repo.CloneDir)
		}
		fmt.Printf("Name-status limit:  %d chars\n", cfg.Truncate.NameStatusMaxChars)
		fmt.Printf("Diff limit:         %d chars\n", cfg.Truncate.DiffMaxChars)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config file path",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GetConfigPath()
		if path == "" {
			fmt.Println("No config file found. Create one at:")
			fmt.Printf("  %s (global)\n", config.GetDefaultConfigPath())
			fmt.Println("  ./.revue.yaml (project)")
		} else {
			fmt.Printf("Config file: %s\n", path)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
}

package commands

import (
	"github.com/spf13/cobra"
)

// GetHealthCmd returns the health command
func GetHealthCmd() *cobra.Command {
	return healthCmd
}

// GetVersionCmd returns the version command
func GetVersionCmd() *cobra.Command {
	return versionCmd
}

// GetStatsCmd returns the stats command
func GetStatsCmd() *cobra.Command {
	return statsCmd
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the search server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		health, err := apiClient.Health(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(health)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the search server version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		version, err := apiClient.Version(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(version)
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show server-wide statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		stats, err := apiClient.Stats(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(stats)
	},
}

// Package commands implements the meili CLI commands.
package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sanders41/meilisearch-go-sdk/pkg/client"
)

// flag names
const (
	flagURL    = "url"
	flagAPIKey = "api-key"
)

var (
	// apiClient is the shared API client instance
	apiClient client.Client

	// serverURL and apiKey hold the target server address and credentials.
	// Flag parsing sets these; PersistentPreRunE applies the env fallback.
	serverURL string
	apiKey    string
)

// initClient initializes the API client
func initClient() error {
	opts := client.DefaultOptions()
	opts.BaseURL = serverURL
	opts.APIKey = apiKey

	var err error
	apiClient, err = client.NewClient(opts)
	return err
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&serverURL, flagURL, "u", client.DefaultBaseURL, "Address of the search server (env: MEILI_HTTP_ADDR)")
	RootCmd.PersistentFlags().StringVarP(&apiKey, flagAPIKey, "k", "", "API key sent as a bearer token (env: MEILI_API_KEY)")

	RootCmd.AddCommand(GetHealthCmd())
	RootCmd.AddCommand(GetVersionCmd())
	RootCmd.AddCommand(GetStatsCmd())
	RootCmd.AddCommand(GetIndexesCmd())
	RootCmd.AddCommand(GetDocumentsCmd())
	RootCmd.AddCommand(GetTasksCmd())
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "meili",
	Short: "meili - a command line interface for a Meilisearch-compatible search server",
	Long: `meili talks to a Meilisearch-compatible search server: manage indexes,
submit documents in batches, and track the asynchronous tasks those
operations enqueue.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Precedence: flag > environment > default.
		if !cmd.Flags().Changed(flagURL) {
			if addr := os.Getenv(client.EnvBaseURL); addr != "" {
				serverURL = addr
			}
		}
		if !cmd.Flags().Changed(flagAPIKey) {
			if key := os.Getenv(client.EnvAPIKey); key != "" {
				apiKey = key
			}
		}

		if serverURL == "" {
			return fmt.Errorf("server URL cannot be empty")
		}
		return initClient()
	},
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		if apiClient != nil {
			return apiClient.Close()
		}
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}

// printJSON pretty-prints v to stdout
func printJSON(v any) error {
	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error formatting output: %w", err)
	}
	fmt.Println(string(pretty))
	return nil
}

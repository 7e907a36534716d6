package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Index flag names
const (
	flagIndexUID   = "index"
	flagPrimaryKey = "primary-key"
)

// GetIndexesCmd returns the index management command
func GetIndexesCmd() *cobra.Command {
	return indexesCmd
}

func init() {
	indexesCmd.AddCommand(createIndexCmd)
	indexesCmd.AddCommand(listIndexesCmd)
	indexesCmd.AddCommand(getIndexCmd)
	indexesCmd.AddCommand(deleteIndexCmd)

	createIndexCmd.Flags().StringP(flagIndexUID, "i", "", "Index uid")
	createIndexCmd.Flags().StringP(flagPrimaryKey, "p", "", "Primary key field for the index")
	_ = createIndexCmd.MarkFlagRequired(flagIndexUID)

	getIndexCmd.Flags().StringP(flagIndexUID, "i", "", "Index uid")
	_ = getIndexCmd.MarkFlagRequired(flagIndexUID)

	deleteIndexCmd.Flags().StringP(flagIndexUID, "i", "", "Index uid")
	_ = deleteIndexCmd.MarkFlagRequired(flagIndexUID)
}

var indexesCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage indexes",
}

var createIndexCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an index",
	RunE: func(cmd *cobra.Command, _ []string) error {
		uid, err := cmd.Flags().GetString(flagIndexUID)
		if err != nil {
			return fmt.Errorf("error getting index flag: %w", err)
		}
		primaryKey, err := cmd.Flags().GetString(flagPrimaryKey)
		if err != nil {
			return fmt.Errorf("error getting primary-key flag: %w", err)
		}

		info, err := apiClient.CreateIndex(cmd.Context(), uid, primaryKey)
		if err != nil {
			return err
		}
		return printJSON(info)
	},
}

var listIndexesCmd = &cobra.Command{
	Use:   "list",
	Short: "List all indexes",
	RunE: func(cmd *cobra.Command, _ []string) error {
		indexes, err := apiClient.ListIndexes(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(indexes)
	},
}

var getIndexCmd = &cobra.Command{
	Use:   "get",
	Short: "Get an index by uid",
	RunE: func(cmd *cobra.Command, _ []string) error {
		uid, err := cmd.Flags().GetString(flagIndexUID)
		if err != nil {
			return fmt.Errorf("error getting index flag: %w", err)
		}

		index, err := apiClient.GetIndex(cmd.Context(), uid)
		if err != nil {
			return err
		}
		return printJSON(index)
	},
}

var deleteIndexCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete an index by uid",
	RunE: func(cmd *cobra.Command, _ []string) error {
		uid, err := cmd.Flags().GetString(flagIndexUID)
		if err != nil {
			return fmt.Errorf("error getting index flag: %w", err)
		}

		info, err := apiClient.DeleteIndex(cmd.Context(), uid)
		if err != nil {
			return err
		}
		return printJSON(info)
	},
}

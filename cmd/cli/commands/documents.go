package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sanders41/meilisearch-go-sdk/pkg/client"
)

// Document flag names
const (
	flagFile       = "file"
	flagBatchSize  = "batch-size"
	flagMaxPayload = "max-payload"
	flagConcurrent = "concurrent"
	flagWait       = "wait"
	flagDocumentID = "id"
)

// GetDocumentsCmd returns the document management command
func GetDocumentsCmd() *cobra.Command {
	return documentsCmd
}

func init() {
	documentsCmd.AddCommand(addDocumentsCmd)
	documentsCmd.AddCommand(updateDocumentsCmd)
	documentsCmd.AddCommand(deleteDocumentsCmd)

	for _, cmd := range []*cobra.Command{addDocumentsCmd, updateDocumentsCmd} {
		cmd.Flags().StringP(flagIndexUID, "i", "", "Index uid")
		cmd.Flags().StringP(flagFile, "f", "", "Path to a JSON file holding an array of documents")
		cmd.Flags().StringP(flagPrimaryKey, "p", "", "Primary key field for the documents")
		cmd.Flags().Int(flagBatchSize, 0, "Documents per batch (default 1000)")
		cmd.Flags().Int(flagMaxPayload, 0, "Split batches by serialized payload bytes instead of document count")
		cmd.Flags().Bool(flagConcurrent, false, "Submit batches concurrently")
		cmd.Flags().Bool(flagWait, false, "Block until all resulting tasks reach a terminal state")
		_ = cmd.MarkFlagRequired(flagIndexUID)
		_ = cmd.MarkFlagRequired(flagFile)
	}

	deleteDocumentsCmd.Flags().StringP(flagIndexUID, "i", "", "Index uid")
	deleteDocumentsCmd.Flags().StringSlice(flagDocumentID, nil, "Document ids to delete (repeatable)")
	_ = deleteDocumentsCmd.MarkFlagRequired(flagIndexUID)
	_ = deleteDocumentsCmd.MarkFlagRequired(flagDocumentID)
}

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "Manage documents",
}

// loadDocuments reads a JSON array of documents from path
func loadDocuments(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path) // #nosec G304 - the user chooses the file
	if err != nil {
		return nil, fmt.Errorf("error reading documents file: %w", err)
	}

	var documents []map[string]any
	if err := json.Unmarshal(data, &documents); err != nil {
		return nil, fmt.Errorf("error parsing documents file: %w", err)
	}
	return documents, nil
}

// submitFlags reads the shared submission flags from cmd
func submitFlags(cmd *cobra.Command) (indexUID, primaryKey, file string, opts *client.SubmitOptions, wait bool, err error) {
	if indexUID, err = cmd.Flags().GetString(flagIndexUID); err != nil {
		return
	}
	if primaryKey, err = cmd.Flags().GetString(flagPrimaryKey); err != nil {
		return
	}
	if file, err = cmd.Flags().GetString(flagFile); err != nil {
		return
	}

	opts = &client.SubmitOptions{}
	if opts.BatchSize, err = cmd.Flags().GetInt(flagBatchSize); err != nil {
		return
	}
	if opts.MaxPayloadSize, err = cmd.Flags().GetInt(flagMaxPayload); err != nil {
		return
	}
	if opts.Concurrent, err = cmd.Flags().GetBool(flagConcurrent); err != nil {
		return
	}

	wait, err = cmd.Flags().GetBool(flagWait)
	return
}

// runSubmit is the shared body of the add and update commands
func runSubmit(cmd *cobra.Command, update bool) error {
	indexUID, primaryKey, file, opts, wait, err := submitFlags(cmd)
	if err != nil {
		return fmt.Errorf("error reading flags: %w", err)
	}

	documents, err := loadDocuments(file)
	if err != nil {
		return err
	}

	index := apiClient.Index(indexUID)
	ctx := cmd.Context()

	if wait {
		var tasks any
		if update {
			tasks, err = index.UpdateDocumentsInBatchesAndWait(ctx, documents, primaryKey, opts, nil)
		} else {
			tasks, err = index.AddDocumentsInBatchesAndWait(ctx, documents, primaryKey, opts, nil)
		}
		if err != nil {
			return err
		}
		return printJSON(tasks)
	}

	var infos any
	if update {
		infos, err = index.UpdateDocumentsInBatches(ctx, documents, primaryKey, opts)
	} else {
		infos, err = index.AddDocumentsInBatches(ctx, documents, primaryKey, opts)
	}
	if err != nil {
		return err
	}
	return printJSON(infos)
}

var addDocumentsCmd = &cobra.Command{
	Use:   "add",
	Short: "Add documents from a JSON file, replacing existing ones",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSubmit(cmd, false)
	},
}

var updateDocumentsCmd = &cobra.Command{
	Use:   "update",
	Short: "Update documents from a JSON file, merging with existing ones",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSubmit(cmd, true)
	},
}

var deleteDocumentsCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete documents by id",
	RunE: func(cmd *cobra.Command, _ []string) error {
		indexUID, err := cmd.Flags().GetString(flagIndexUID)
		if err != nil {
			return fmt.Errorf("error getting index flag: %w", err)
		}
		ids, err := cmd.Flags().GetStringSlice(flagDocumentID)
		if err != nil {
			return fmt.Errorf("error getting id flag: %w", err)
		}

		info, err := apiClient.Index(indexUID).DeleteDocuments(cmd.Context(), ids)
		if err != nil {
			return err
		}
		return printJSON(info)
	},
}

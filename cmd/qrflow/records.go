package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ltanh/qrflow/internal/cli"
	"github.com/ltanh/qrflow/internal/common"
	"github.com/ltanh/qrflow/internal/model"
	qrsync "github.com/ltanh/qrflow/internal/sync"
)

func recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Manage saved payment code records",
	}

	cmd.AddCommand(recordsListCmd())
	cmd.AddCommand(recordsEditCmd())
	cmd.AddCommand(recordsDeleteCmd())

	return cmd
}

func recordsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a user's records, most recently updated first",
		RunE:  runRecordsList,
	}

	cmd.Flags().StringP("user", "u", "", "Owner user id")
	_ = cmd.MarkFlagRequired("user")
	_ = viper.BindPFlag("records.user", cmd.Flags().Lookup("user"))

	return cmd
}

func runRecordsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	userID := viper.GetString("records.user")

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	editor := qrsync.NewEditor(store)
	records, err := editor.Load(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to load records: %w", err)
	}

	fmt.Println(cli.FormatTitle("Saved records"))
	fmt.Println(cli.RenderRecordTable(records))
	return nil
}

func recordsEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <record-id>",
		Short: "Edit a record's account details",
		Long: `Edit a saved record. The change is applied optimistically: the record
is marked dirty immediately and pushed on the next sync pass, even if
the local write has to be retried.`,
		Args: cobra.ExactArgs(1),
		RunE: runRecordsEdit,
	}

	cmd.Flags().String("name", "", "New account name")
	cmd.Flags().String("number", "", "New account number")
	cmd.Flags().String("type", "", "New record type (bank, store, ewallet)")

	return cmd
}

func runRecordsEdit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id := args[0]

	name, _ := cmd.Flags().GetString("name")
	number, _ := cmd.Flags().GetString("number")
	recordType, _ := cmd.Flags().GetString("type")

	if name == "" && number == "" && recordType == "" {
		return fmt.Errorf("nothing to edit: pass --name, --number, or --type")
	}
	if recordType != "" && !model.RecordType(recordType).ValidType() {
		return fmt.Errorf("invalid record type: %s", recordType)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	rec, err := store.GetRecordByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("record %s not found", id)
		}
		return fmt.Errorf("failed to load record: %w", err)
	}

	updated := *rec
	if name != "" {
		updated.AccountName = name
	}
	if number != "" {
		updated.AccountNumber = number
	}
	if recordType != "" {
		updated.Type = model.RecordType(recordType)
	}

	editor := qrsync.NewEditor(store)
	if err := editor.Apply(ctx, updated); err != nil {
		var fieldErr *common.FieldError
		if errors.As(err, &fieldErr) {
			// The edit is held in memory and stays dirty; only the durable
			// write failed.
			fmt.Println(cli.FormatWarning(fieldErr.Message + ", will retry on next sync"))
			return nil
		}
		return err
	}

	fmt.Println(cli.FormatSuccess("record updated, pending sync"))
	return nil
}

func recordsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <record-id>",
		Short: "Delete a record from the local store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteRecord(ctx, args[0]); err != nil {
				if errors.Is(err, common.ErrNotFound) {
					return fmt.Errorf("record %s not found", args[0])
				}
				return fmt.Errorf("failed to delete record: %w", err)
			}

			fmt.Println(cli.FormatSuccess("record deleted"))
			return nil
		},
	}
}

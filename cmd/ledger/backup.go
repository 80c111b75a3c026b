package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/ledger/internal/cli"
	"github.com/Veraticus/ledger/internal/storage"
)

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Manage ledger database backups",
		Long: `Create, list, and delete snapshots of the ledger database. Backups are
stored next to the database in a backups directory.`,
	}

	cmd.AddCommand(backupCreateCmd())
	cmd.AddCommand(backupListCmd())
	cmd.AddCommand(backupDeleteCmd())

	return cmd
}

func backupCreateCmd() *cobra.Command {
	var description string

	cmd := &cobra.Command{
		Use:   "create [tag]",
		Short: "Snapshot the ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			var tag string
			if len(args) == 1 {
				tag = args[0]
			}

			manager, closeFn, err := openBackups(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			info, err := manager.Create(ctx, tag, description)
			if err != nil {
				return fmt.Errorf("failed to create backup: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf(
				"Created backup %q (%d categories, %d records, %d investments)",
				info.ID, info.Categories, info.Records, info.Investments)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "Backup description")
	return cmd
}

func backupListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			manager, closeFn, err := openBackups(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			backups, err := manager.List(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(backups) == 0 {
				fmt.Fprintln(out, cli.InfoStyle.Render("No backups yet. Use 'ledger backup create' to make one."))
				return nil
			}

			fmt.Fprintln(out, cli.FormatTitle(cli.FolderIcon+" Backups in "+manager.Dir()))
			for _, b := range backups {
				fmt.Fprintf(out, "  %s  %s  %s\n",
					cli.HeaderStyle.Render(b.ID),
					b.CreatedAt.Format("2006-01-02 15:04"),
					cli.SubtleStyle.Render(fmt.Sprintf("%d records, %d investments", b.Records, b.Investments)))
				if b.Description != "" {
					fmt.Fprintf(out, "      %s\n", b.Description)
				}
			}
			return nil
		},
	}
}

func backupDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <tag>",
		Short: "Delete a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			manager, closeFn, err := openBackups(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := manager.Delete(ctx, args[0]); err != nil {
				return fmt.Errorf("failed to delete backup: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted backup %q", args[0])))
			return nil
		},
	}
}

func openBackups(cmd *cobra.Command) (*storage.BackupManager, func(), error) {
	store, _, err := initStorage(cmd.Context())
	if err != nil {
		return nil, nil, err
	}
	manager, err := store.Backups()
	if err != nil {
		closeStorage(store)
		return nil, nil, err
	}
	return manager, func() { closeStorage(store) }, nil
}

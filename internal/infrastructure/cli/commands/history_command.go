package commands

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/doeshing/gitscribe-go/internal/app"
	"github.com/doeshing/gitscribe-go/internal/domain"
	"github.com/doeshing/gitscribe-go/internal/infrastructure/cli/helpers"
)

// NewHistoryCommand creates the history command with all subcommands
func NewHistoryCommand(container *app.Container) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect previously generated release notes",
	}

	historyCmd.AddCommand(
		newHistoryListCommand(container),
		newHistoryShowCommand(container),
		newHistoryClearCommand(container),
		newHistoryExportCommand(container),
	)

	return historyCmd
}

// newHistoryListCommand creates the 'history list' subcommand
func newHistoryListCommand(container *app.Container) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent generations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listHistoryEntries(cmd.OutOrStdout(), container, limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", domain.DefaultHistoryLimit, "Max entries to show")
	return cmd
}

// newHistoryShowCommand creates the 'history show' subcommand
func newHistoryShowCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print the release notes of one generation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showHistoryEntry(cmd.OutOrStdout(), container, args[0])
		},
	}
}

// newHistoryClearCommand creates the 'history clear' subcommand
func newHistoryClearCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete all history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.HistoryStore == nil {
				return errors.New(ErrHistoryStoreUnavailable)
			}
			if err := container.HistoryStore.Clear(); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			helpers.NewRenderer(cmd.ErrOrStderr()).Success("history cleared")
			return nil
		},
	}
}

// newHistoryExportCommand creates the 'history export' subcommand
func newHistoryExportCommand(container *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "export <path>",
		Short: "Export history to a JSONL file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if container.HistoryStore == nil {
				return errors.New(ErrHistoryStoreUnavailable)
			}
			if err := container.HistoryStore.ExportJSON(args[0]); err != nil {
				return fmt.Errorf("failed to export history to %s: %w", args[0], err)
			}
			helpers.NewRenderer(cmd.ErrOrStderr()).Success("exported history to %s", args[0])
			return nil
		},
	}
}

// listHistoryEntries lists recent history entries
func listHistoryEntries(out io.Writer, container *app.Container, limit int) error {
	store := container.HistoryStore
	if store == nil {
		return errors.New(ErrHistoryStoreUnavailable)
	}

	records, err := store.Records(limit)
	if err != nil {
		return fmt.Errorf("failed to retrieve history records: %w", err)
	}
	if len(records) == 0 {
		fmt.Fprintln(out, MsgNoHistoryRecorded)
		return nil
	}

	for _, rec := range records {
		fmt.Fprintf(out, "%s | %s | %s..%s | %s | %s\n",
			shortID(rec.ID),
			rec.Timestamp.Local().Format(TimestampDisplayFormat),
			rec.Start,
			rec.End,
			rec.Model,
			humanize.Bytes(uint64(rec.Bytes)))
	}
	return nil
}

// showHistoryEntry prints one record. IDs may be abbreviated to a unique prefix.
func showHistoryEntry(out io.Writer, container *app.Container, id string) error {
	store := container.HistoryStore
	if store == nil {
		return errors.New(ErrHistoryStoreUnavailable)
	}

	rec, ok, err := store.Get(id)
	if err != nil {
		return err
	}
	if !ok {
		rec, ok, err = findByPrefix(store.Records, id)
		if err != nil {
			return err
		}
	}
	if !ok {
		return fmt.Errorf("no history entry %s", id)
	}

	fmt.Fprintf(out, "ID:      %s\n", rec.ID)
	fmt.Fprintf(out, "When:    %s (%s)\n", rec.Timestamp.Local().Format(TimestampDisplayFormat), humanize.Time(rec.Timestamp))
	fmt.Fprintf(out, "Repo:    %s\n", rec.Repo)
	fmt.Fprintf(out, "Range:   %s..%s\n", rec.Start, rec.End)
	fmt.Fprintf(out, "Model:   %s\n", rec.Model)
	if len(rec.Issues) > 0 {
		fmt.Fprintf(out, "Issues:  %s\n", strings.Join(rec.Issues, ", "))
	}
	fmt.Fprintf(out, "Output:  %s\n\n", rec.OutputPath)
	fmt.Fprintln(out, rec.Output)
	return nil
}

func findByPrefix(records func(int) ([]domain.HistoryRecord, error), prefix string) (domain.HistoryRecord, bool, error) {
	all, err := records(0)
	if err != nil {
		return domain.HistoryRecord{}, false, err
	}
	var match *domain.HistoryRecord
	for i := range all {
		if strings.HasPrefix(all[i].ID, prefix) {
			if match != nil {
				return domain.HistoryRecord{}, false, fmt.Errorf("history id prefix %s is ambiguous", prefix)
			}
			match = &all[i]
		}
	}
	if match == nil {
		return domain.HistoryRecord{}, false, nil
	}
	return *match, true, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

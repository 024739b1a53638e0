package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/BalanceBalls/timedoctor-reports/internal/storage"
	"github.com/BalanceBalls/timedoctor-reports/internal/storage/archive"
)

var errArchiveNotConfigured = errors.New("ARCHIVE_DSN is not set")

const historyTimeLayout = "2006-01-02 15:04"

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List reports stored in the archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return fmt.Errorf("--limit must be positive, got %d", limit)
			}

			return a.withArchive(cmd, func(st storage.Storage) error {
				list, err := st.List(cmd.Context(), limit)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tKIND\tFROM\tTO\tCREATED\tROWS")
				for _, r := range list {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\n",
						r.Id, r.Kind,
						r.From.Format(historyTimeLayout), r.To.Format(historyTimeLayout),
						r.CreatedAt.Local().Format(time.RFC3339), r.RowCount)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of most recent reports to list.")
	cmd.AddCommand(newHistoryShowCmd(a))

	return cmd
}

func newHistoryShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print an archived report as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("bad report id %q: %w", args[0], err)
			}

			return a.withArchive(cmd, func(st storage.Storage) error {
				archived, err := st.Report(cmd.Context(), id)
				if err != nil {
					return err
				}

				data, err := storage.Decode(archived.Payload)
				if err != nil {
					return err
				}

				var out bytes.Buffer
				if err := json.Indent(&out, data, "", "  "); err != nil {
					return fmt.Errorf("archived report %s is not valid json: %w", id, err)
				}
				out.WriteByte('\n')

				_, err = out.WriteTo(cmd.OutOrStdout())
				return err
			})
		},
	}
}

func (a *app) withArchive(cmd *cobra.Command, fn func(st storage.Storage) error) error {
	ctx, cfg, err := a.setup(cmd)
	if err != nil {
		return err
	}
	if cfg.ArchiveDsn == "" {
		return errArchiveNotConfigured
	}

	st, err := archive.Open(ctx, cfg.ArchiveDsn)
	if err != nil {
		return fmt.Errorf("could not open report archive: %w", err)
	}
	defer st.Close()

	cmd.SetContext(ctx)
	return fn(st)
}

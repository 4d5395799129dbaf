package cli

import (
	"errors"
	"fmt"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/database"
	"github.com/Aryan-del360/advanced-clinical-documentation-assistant/pkg/repository"
)

func newAuditCmd(e *env) *cobra.Command {
	var (
		limit int
		since time.Duration
	)

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent generation events from the audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := e.openDatabase(ctx, e.cfg, e.logger)
			if errors.Is(err, database.ErrNoURL) {
				return errors.New("audit log is disabled: set DATABASE_URL")
			}
			if err != nil {
				return fmt.Errorf("open audit log: %w", err)
			}
			defer db.Close()

			repo := repository.NewGenerationLogRepository(db.DB, e.logger)

			events, err := repo.Recent(ctx, limit)
			if err != nil {
				return err
			}
			counts, err := repo.OutcomeCounts(ctx, time.Now().Add(-since))
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			writeLine(tw, "TIME\tMODE\tOUTCOME\tCHARS\tDURATION\tREQUEST")
			for _, ev := range events {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\n",
					ev.CreatedAt.UTC().Format(time.RFC3339), ev.Mode, ev.Outcome,
					ev.TranscriptLen, ev.Duration, ev.RequestID)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			outcomes := make([]string, 0, len(counts))
			for outcome := range counts {
				outcomes = append(outcomes, outcome)
			}
			sort.Strings(outcomes)

			writeLine(cmd.OutOrStdout())
			writeLine(cmd.OutOrStdout(), fmt.Sprintf("Outcomes in the last %s:", since))
			for _, outcome := range outcomes {
				writeLine(cmd.OutOrStdout(), fmt.Sprintf("  %s: %d", outcome, counts[outcome]))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of events to list")
	cmd.Flags().DurationVar(&since, "since", 24*time.Hour, "Window for outcome counts")

	return cmd
}

package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/young626-jang/ltv-flask/internal/history"
)

type historyOutput struct {
	AnalysisID   string `json:"analysisId"`
	SourceName   string `json:"sourceName"`
	DocumentHash string `json:"documentHash"`
	LienCount    int    `json:"lienCount"`
	TotalCeiling int64  `json:"totalCeiling"`
	Diagnostics  int    `json:"diagnostics"`
	CreatedAt    string `json:"createdAt"`
}

func newHistoryCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history PROPERTY_ID",
		Short: "List the recorded analyses of a property, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := history.Open(ctx, c.cfg.History.Driver, c.cfg.History.DSN)
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.Migrate(ctx); err != nil {
				return err
			}

			records, err := store.ListByProperty(ctx, args[0], limit)
			if err != nil {
				return err
			}

			out := make([]historyOutput, 0, len(records))
			for _, rec := range records {
				out = append(out, historyOutput{
					AnalysisID:   rec.ID,
					SourceName:   rec.SourceName,
					DocumentHash: rec.DocumentHash,
					LienCount:    rec.LienCount,
					TotalCeiling: rec.TotalCeiling,
					Diagnostics:  rec.Diagnostics,
					CreatedAt:    rec.CreatedAt.UTC().Format(time.RFC3339),
				})
			}

			if c.asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			if len(out) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no analyses recorded for %s\n", args[0])
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ANALYSIS\tCREATED\tSOURCE\tLIENS\tTOTAL CEILING\tDIAGNOSTICS")
			for _, row := range out {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%d\n",
					row.AnalysisID, row.CreatedAt, row.SourceName, row.LienCount, groupDigits(uint64(max(row.TotalCeiling, 0))), row.Diagnostics)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows to list")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/young626-jang/ltv-flask/internal/service"
)

func newAnalyzeCmd(c *cli) *cobra.Command {
	var persist bool
	cmd := &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Reconstruct the current state of register documents",
		Long: `Reconstruct each document and print its surviving liens, attachments and
owners. Text and saved HTML pages are accepted; PDFs must be converted first.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, done, err := c.service(cmd.Context(), persist)
			if err != nil {
				return err
			}
			defer done()

			failed := 0
			for _, path := range args {
				in, err := service.ReadInput(path)
				if err != nil {
					c.logger.Error("read failed", "file", path, "error", err)
					failed++
					continue
				}
				a, err := svc.Analyze(cmd.Context(), in)
				if err != nil {
					c.logger.Error("analysis failed", "file", path, "error", err)
					failed++
					continue
				}
				if err := c.print(cmd.OutOrStdout(), a); err != nil {
					return err
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d documents failed", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&persist, "persist", false, "record results in the configured graph, history and cache")
	return cmd
}

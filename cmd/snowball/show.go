package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/todmy/snowball/internal/report"
)

var showCmd = &cobra.Command{
	Use:   "show RUN_ID",
	Short: "Print the ranked relationships of a stored run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if dbDSN == "" {
			return errNoDatabase
		}
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid run id %q: %w", args[0], err)
		}
		ctx := cmd.Context()

		st, err := openStore(ctx, dbDSN)
		if err != nil {
			return err
		}
		defer st.Close()

		run, err := st.runs.GetRun(ctx, id)
		if err != nil {
			return err
		}
		rels, err := st.runs.ListRelationships(ctx, id)
		if err != nil {
			return err
		}

		logger.Info("stored run", "run", run.ID, "corpus", run.CorpusKey,
			"iterations", len(run.Iterations), "relationships", len(rels))
		return report.WriteRelationships(cmd.OutOrStdout(), rels)
	},
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/todmy/snowball/internal/config"
)

var dropCorpus bool

var tuplesCmd = &cobra.Command{
	Use:   "tuples",
	Short: "Extract and store the processed tuples of a sentence file",
	Long: `Extract candidate tuples from an entity-tagged sentence file and store
them so that later runs over the same sentences and settings skip extraction.
Entity types are taken from the seeds file. With --drop the stored tuples are
removed instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if dbDSN == "" {
			return errNoDatabase
		}
		ctx := cmd.Context()

		cfg, err := config.Load(v, configFile)
		if err != nil {
			return err
		}
		if _, _, err := readSeeds(cfg); err != nil {
			return err
		}

		sentences, err := os.ReadFile(sentencesPath)
		if err != nil {
			return fmt.Errorf("failed to read sentences: %w", err)
		}

		st, err := openStore(ctx, dbDSN)
		if err != nil {
			return err
		}
		defer st.Close()

		key, err := corpusKey(cfg, sentences)
		if err != nil {
			return err
		}

		if dropCorpus {
			if err := st.tuples.DeleteCorpus(ctx, key); err != nil {
				return err
			}
			logger.Info("dropped pre-processed tuples", "corpus", key)
			return nil
		}

		_, tuples, err := generateCorpus(ctx, cfg, st, key, sentencesPath, sentences)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d tuples\n", key, len(tuples))
		return nil
	},
}

func init() {
	f := tuplesCmd.Flags()
	f.StringVar(&sentencesPath, "sentences", "", "entity-tagged sentences, one per line")
	f.StringVar(&positivePath, "positive-seeds", "", "seeds file declaring the entity types")
	f.BoolVar(&dropCorpus, "drop", false, "delete the stored tuples instead of generating them")

	_ = tuplesCmd.MarkFlagRequired("sentences")
	_ = tuplesCmd.MarkFlagRequired("positive-seeds")
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/todmy/snowball/internal/bootstrap"
	"github.com/todmy/snowball/internal/clustering"
	"github.com/todmy/snowball/internal/config"
	"github.com/todmy/snowball/internal/relation"
	"github.com/todmy/snowball/internal/report"
	"github.com/todmy/snowball/internal/storage"
	"github.com/todmy/snowball/internal/vsm"
	"github.com/todmy/snowball/pkg/models"
)

var (
	sentencesPath string
	positivePath  string
	negativePath  string
	outputPath    string
	patternsPath  string
	workers       int
	keywordsTopK  int
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Bootstrap relationships from seeds and write them ranked by confidence",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBootstrap(cmd.Context())
	},
}

func init() {
	d := config.Default()
	f := runCmd.Flags()
	f.StringVar(&sentencesPath, "sentences", "", "entity-tagged sentences, one per line")
	f.StringVar(&positivePath, "positive-seeds", "", "positive seeds file")
	f.StringVar(&negativePath, "negative-seeds", "", "negative seeds file")
	f.Float64("similarity", d.ThresholdSimilarity, "similarity threshold for clustering and extraction")
	f.Float64("confidence", d.InstanceConfidence, "confidence threshold for promoting instances to seeds")
	f.Int("iterations", d.NumberIterations, "number of bootstrapping iterations")
	f.Bool("print-patterns", false, "log pattern selectivity after every iteration")
	f.StringVar(&outputPath, "output", "relationships.txt", "ranked relationships output")
	f.StringVar(&patternsPath, "patterns", "", "write a YAML pattern report")
	f.IntVar(&workers, "workers", 0, "goroutines scoring tuples against patterns (0 = GOMAXPROCS)")
	f.IntVar(&keywordsTopK, "keywords", 5, "keywords per pattern in the pattern report")

	_ = runCmd.MarkFlagRequired("sentences")
	_ = runCmd.MarkFlagRequired("positive-seeds")

	bindFlag(config.KeySimilarity, runCmd, "similarity")
	bindFlag(config.KeyConfidence, runCmd, "confidence")
	bindFlag(config.KeyIterations, runCmd, "iterations")
	bindFlag(config.KeyPrintPatterns, runCmd, "print-patterns")
}

func readSeeds(cfg *config.Config) (positives, negatives *relation.SeedSet, err error) {
	pos, err := config.ReadSeedsFile(positivePath)
	if err != nil {
		return nil, nil, err
	}
	var neg *config.SeedFile
	if negativePath != "" {
		if neg, err = config.ReadSeedsFile(negativePath); err != nil {
			return nil, nil, err
		}
	}
	if err := cfg.ApplyTypes(pos, neg); err != nil {
		return nil, nil, err
	}

	positives = pos.Set()
	if neg != nil {
		negatives = neg.Set()
	}
	return positives, negatives, nil
}

func runBootstrap(ctx context.Context) error {
	started := time.Now()

	cfg, err := config.Load(v, configFile)
	if err != nil {
		return err
	}
	positives, negatives, err := readSeeds(cfg)
	if err != nil {
		return err
	}
	logger.Info("configuration loaded", "config", cfg, "seeds", positives.Len(), "negative_seeds", negatives.Len())

	sentences, err := os.ReadFile(sentencesPath)
	if err != nil {
		return fmt.Errorf("failed to read sentences: %w", err)
	}

	var st *store
	if dbDSN != "" {
		if st, err = openStore(ctx, dbDSN); err != nil {
			return err
		}
		defer st.Close()
	}

	tuples, model, key, err := loadCorpus(ctx, cfg, st, sentencesPath, sentences, patternsPath != "")
	if err != nil {
		return err
	}

	// cached tuples already carry their vectors
	var provider vsm.Provider = vsm.CosineProvider{}
	if model != nil {
		provider = model
	}
	engine := bootstrap.New(cfg, positives, negatives, provider, logger)
	if workers > 0 {
		engine.SetWorkers(workers)
	}
	result, err := engine.Run(ctx, tuples)
	if err != nil {
		return err
	}

	if err := writeRelationships(result.Relationships); err != nil {
		return err
	}
	logger.Info("relationships written", "path", outputPath, "count", len(result.Relationships))

	if patternsPath != "" {
		keywords := clustering.NewKeywordExtractor(model.Dictionary())
		summaries := bootstrap.SummarizePatterns(result.Patterns, keywords, keywordsTopK)
		if err := writePatterns(result.Iterations, summaries); err != nil {
			return err
		}
	}

	if st != nil {
		run, err := saveRun(ctx, st, cfg, key, started, result)
		if err != nil {
			return err
		}
		logger.Info("run stored", "run", run.ID, "corpus", run.CorpusKey,
			"duration", run.FinishedAt.Sub(run.StartedAt))
	}

	return nil
}

func writeRelationships(rels []models.Relationship) error {
	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	if err := report.WriteRelationships(f, rels); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writePatterns(iterations []models.IterationSummary, summaries []models.PatternSummary) error {
	f, err := os.Create(patternsPath)
	if err != nil {
		return fmt.Errorf("failed to create pattern report: %w", err)
	}
	if err := report.WritePatterns(f, iterations, summaries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func saveRun(ctx context.Context, st *store, cfg *config.Config, key string, started time.Time, result *bootstrap.Result) (*storage.Run, error) {
	snapshot, err := json.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config: %w", err)
	}
	run := &storage.Run{
		CorpusKey:  key,
		Config:     snapshot,
		Iterations: result.Iterations,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if err := st.runs.SaveRun(ctx, run, result.Relationships); err != nil {
		return nil, fmt.Errorf("failed to store run: %w", err)
	}
	return run, nil
}

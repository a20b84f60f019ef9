package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/todmy/snowball/internal/relation"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_PropertiesFile(t *testing.T) {
	path := writeFile(t, "parameters.cfg", strings.Join([]string{
		"# Snowball parameters",
		"! legacy comment",
		"max_tokens_away=6",
		"min_tokens_away=1",
		"context_window_size=2",
		"",
		"wUpdt=0.5",
		"wUnk=0.1",
		"wNeg=2",
		"min_pattern_support=2",
		"use_reverb=no",
		"alpha=0.2",
		"beta=0.6",
		"gamma = 0.2",
	}, "\n"))

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.MinPatternSupport)
	assert.InDelta(t, 0.1, cfg.WUnk, 1e-12)
	assert.InDelta(t, 0.6, cfg.Beta, 1e-12)
	assert.False(t, cfg.UseReVerb)
	assert.Equal(t, 2, cfg.NumberIterations)
}

func TestLoad_YAMLAndEnv(t *testing.T) {
	path := writeFile(t, "snowball.yaml", "alpha: 0.0\nbeta: 1.0\ngamma: 0.0\nsimilarity: 0.7\n")
	t.Setenv("SNOWBALL_ITERATIONS", "5")

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)
	assert.Equal(t, 0.7, cfg.ThresholdSimilarity)
	assert.Equal(t, 5, cfg.NumberIterations)
}

func TestLoad_Overrides(t *testing.T) {
	v := NewViper()
	v.Set(KeySimilarity, 0.4)
	v.Set(KeyConfidence, 0.9)

	cfg, err := Load(v, "")
	require.NoError(t, err)
	assert.Equal(t, 0.4, cfg.ThresholdSimilarity)
	assert.Equal(t, 0.9, cfg.InstanceConfidence)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{name: "weights do not sum to one", content: "alpha=0.5\nbeta=0.6\ngamma=0\n", wantErr: ErrWeightsSum},
		{name: "bad boolean", content: "use_reverb=maybe\n", wantErr: ErrInvalidConfig},
		{name: "token bounds inverted", content: "min_tokens_away=7\nmax_tokens_away=6\n", wantErr: ErrInvalidConfig},
		{name: "key without value", content: "alpha\nbeta=1\n", wantErr: ErrInvalidConfig},
		{name: "bad escape", content: "alpha=\\uZZZZ\n", wantErr: ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "parameters.cfg", tt.content)
			_, err := Load(NewViper(), path)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_WeightTolerance(t *testing.T) {
	cfg := Default()
	cfg.Alpha, cfg.Beta, cfg.Gamma = 0.1, 0.7, 0.2
	assert.NoError(t, cfg.Validate())

	cfg.Gamma = 0.3
	assert.ErrorIs(t, cfg.Validate(), ErrWeightsSum)
}

func TestReadSeeds(t *testing.T) {
	input := strings.Join([]string{
		"# headquarters",
		"e1:ORG",
		"e2:LOC",
		"",
		"Nokia;Espoo",
		" Google ; Mountain View ",
		"Nokia;Espoo",
	}, "\n")

	sf, err := ReadSeeds(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "ORG", sf.E1Type)
	assert.Equal(t, "LOC", sf.E2Type)
	assert.Equal(t, []relation.Seed{
		{E1: "Nokia", E2: "Espoo"},
		{E1: "Google", E2: "Mountain View"},
		{E1: "Nokia", E2: "Espoo"},
	}, sf.Seeds)
	assert.Equal(t, 2, sf.Set().Len())
}

func TestReadSeeds_Malformed(t *testing.T) {
	_, err := ReadSeeds(strings.NewReader("e1:ORG\ne2:LOC\nNokia Espoo\n"))
	require.ErrorIs(t, err, ErrMalformedSeed)
	assert.Contains(t, err.Error(), "line 3")
}

func TestApplyTypes(t *testing.T) {
	cfg := Default()
	require.ErrorIs(t, cfg.ApplyTypes(&SeedFile{E1Type: "ORG"}), ErrMissingEntityType)

	cfg = Default()
	require.NoError(t, cfg.ApplyTypes(&SeedFile{E1Type: "ORG", E2Type: "LOC"}, nil, &SeedFile{E2Type: "GPE"}))
	assert.Equal(t, "ORG", cfg.E1Type)
	assert.Equal(t, "GPE", cfg.E2Type)
}

func TestReadSeedsFile(t *testing.T) {
	path := writeFile(t, "seeds.txt", "e1:ORG\ne2:LOC\nNokia;Espoo\n")
	sf, err := ReadSeedsFile(path)
	require.NoError(t, err)
	assert.Len(t, sf.Seeds, 1)

	_, err = ReadSeedsFile(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

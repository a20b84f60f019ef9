package config

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config errors
var (
	ErrWeightsSum        = errors.New("alpha + beta + gamma must equal 1")
	ErrInvalidConfig     = errors.New("invalid configuration")
	ErrMissingEntityType = errors.New("seed file does not declare entity types")
	ErrMalformedSeed     = errors.New("malformed seed")
)

// weightTolerance absorbs float rounding in alpha + beta + gamma.
const weightTolerance = 1e-9

// Config keys. The short camel-case weight keys match those used in
// key=value parameter files.
const (
	KeyContextWindow     = "context_window_size"
	KeyMinTokensAway     = "min_tokens_away"
	KeyMaxTokensAway     = "max_tokens_away"
	KeyAlpha             = "alpha"
	KeyBeta              = "beta"
	KeyGamma             = "gamma"
	KeyMinPatternSupport = "min_pattern_support"
	KeyWNeg              = "wNeg"
	KeyWUnk              = "wUnk"
	KeyWUpdt             = "wUpdt"
	KeyUseReVerb         = "use_reverb"
	KeySimilarity        = "similarity"
	KeyConfidence        = "confidence"
	KeyIterations        = "iterations"
	KeyPrintPatterns     = "print_patterns"
)

// Config holds every tunable of a bootstrapping run. It is read once and
// not modified while the run is in progress.
type Config struct {
	ContextWindowSize int
	MinTokensAway     int
	MaxTokensAway     int

	Alpha float64
	Beta  float64
	Gamma float64

	MinPatternSupport int
	WNeg              float64
	WUnk              float64
	WUpdt             float64
	UseReVerb         bool

	ThresholdSimilarity float64
	InstanceConfidence  float64
	NumberIterations    int
	PrintPatterns       bool

	E1Type string
	E2Type string
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		ContextWindowSize:   2,
		MinTokensAway:       1,
		MaxTokensAway:       6,
		Alpha:               0.0,
		Beta:                1.0,
		Gamma:               0.0,
		MinPatternSupport:   4,
		WNeg:                2,
		WUnk:                0.0,
		WUpdt:               0.5,
		UseReVerb:           true,
		ThresholdSimilarity: 0.6,
		InstanceConfidence:  0.8,
		NumberIterations:    2,
	}
}

// NewViper creates a viper instance with defaults and SNOWBALL_ environment
// variable binding, e.g. SNOWBALL_MIN_PATTERN_SUPPORT.
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix("SNOWBALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault(KeyContextWindow, d.ContextWindowSize)
	v.SetDefault(KeyMinTokensAway, d.MinTokensAway)
	v.SetDefault(KeyMaxTokensAway, d.MaxTokensAway)
	v.SetDefault(KeyAlpha, d.Alpha)
	v.SetDefault(KeyBeta, d.Beta)
	v.SetDefault(KeyGamma, d.Gamma)
	v.SetDefault(KeyMinPatternSupport, d.MinPatternSupport)
	v.SetDefault(KeyWNeg, d.WNeg)
	v.SetDefault(KeyWUnk, d.WUnk)
	v.SetDefault(KeyWUpdt, d.WUpdt)
	v.SetDefault(KeyUseReVerb, "yes")
	v.SetDefault(KeySimilarity, d.ThresholdSimilarity)
	v.SetDefault(KeyConfidence, d.InstanceConfidence)
	v.SetDefault(KeyIterations, d.NumberIterations)
	v.SetDefault(KeyPrintPatterns, false)

	return v
}

// Load reads the optional config file at path into v and builds a
// validated Config. Files ending in .cfg, .conf, .properties or without an
// extension are read as key=value lines; other extensions are left to viper.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		if err := readConfigFile(v, path); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	useReVerb, err := parseBool(v.GetString(KeyUseReVerb))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, KeyUseReVerb, err)
	}

	cfg := &Config{
		ContextWindowSize:   v.GetInt(KeyContextWindow),
		MinTokensAway:       v.GetInt(KeyMinTokensAway),
		MaxTokensAway:       v.GetInt(KeyMaxTokensAway),
		Alpha:               v.GetFloat64(KeyAlpha),
		Beta:                v.GetFloat64(KeyBeta),
		Gamma:               v.GetFloat64(KeyGamma),
		MinPatternSupport:   v.GetInt(KeyMinPatternSupport),
		WNeg:                v.GetFloat64(KeyWNeg),
		WUnk:                v.GetFloat64(KeyWUnk),
		WUpdt:               v.GetFloat64(KeyWUpdt),
		UseReVerb:           useReVerb,
		ThresholdSimilarity: v.GetFloat64(KeySimilarity),
		InstanceConfidence:  v.GetFloat64(KeyConfidence),
		NumberIterations:    v.GetInt(KeyIterations),
		PrintPatterns:       v.GetBool(KeyPrintPatterns),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case "", ".cfg", ".conf", ".properties", ".props":
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		values, err := readProperties(f)
		if err != nil {
			return err
		}
		return v.MergeConfigMap(values)
	default:
		v.SetConfigFile(path)
		return v.ReadInConfig()
	}
}

// Validate checks the invariants every run depends on. The weight sum is
// checked first.
func (c *Config) Validate() error {
	if sum := c.Alpha + c.Beta + c.Gamma; math.Abs(sum-1) > weightTolerance {
		return fmt.Errorf("%w: got %g", ErrWeightsSum, sum)
	}

	var problems []string
	if c.Alpha < 0 || c.Beta < 0 || c.Gamma < 0 {
		problems = append(problems, "context weights must not be negative")
	}
	if !inUnit(c.ThresholdSimilarity) {
		problems = append(problems, "similarity must be within [0,1]")
	}
	if !inUnit(c.InstanceConfidence) {
		problems = append(problems, "confidence must be within [0,1]")
	}
	if !inUnit(c.WUpdt) {
		problems = append(problems, "wUpdt must be within [0,1]")
	}
	if c.NumberIterations < 0 {
		problems = append(problems, "iterations must not be negative")
	}
	if c.ContextWindowSize < 0 {
		problems = append(problems, "context_window_size must not be negative")
	}
	if c.MinTokensAway > c.MaxTokensAway {
		problems = append(problems, "min_tokens_away exceeds max_tokens_away")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func inUnit(x float64) bool {
	return x >= 0 && x <= 1
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "true", "t", "1", "on":
		return true, nil
	case "no", "n", "false", "f", "0", "off", "":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

// LogValue implements slog.LogValuer
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("e1_type", c.E1Type),
		slog.String("e2_type", c.E2Type),
		slog.Int("context_window", c.ContextWindowSize),
		slog.Int("max_tokens_away", c.MaxTokensAway),
		slog.Int("min_tokens_away", c.MinTokensAway),
		slog.Bool("use_reverb", c.UseReVerb),
		slog.Float64("alpha", c.Alpha),
		slog.Float64("beta", c.Beta),
		slog.Float64("gamma", c.Gamma),
		slog.Float64("w_neg", c.WNeg),
		slog.Float64("w_unk", c.WUnk),
		slog.Float64("w_updt", c.WUpdt),
		slog.Float64("threshold_similarity", c.ThresholdSimilarity),
		slog.Float64("instance_confidence", c.InstanceConfidence),
		slog.Int("min_pattern_support", c.MinPatternSupport),
		slog.Int("iterations", c.NumberIterations),
	)
}

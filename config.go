package lexicon

import "time"

// Config holds the tunable thresholds used by the analysis jobs.
type Config struct {
	Gaps   GapThresholds    `yaml:"gaps"`
	Health HealthThresholds `yaml:"health"`
	LLM    LLMConfig        `yaml:"llm"`
	Enrich EnrichConfig     `yaml:"enrich"`
}

// GapThresholds controls content gap classification.
type GapThresholds struct {
	// MinCount is the smallest search count considered for a gap.
	MinCount int `yaml:"min_count"`
	// LowRecommendations is the average below which a gap is medium.
	LowRecommendations float64 `yaml:"low_recommendations"`
	// LowMatches is the inventory match count below which a frequent
	// query is a low gap.
	LowMatches int `yaml:"low_matches"`
	// LowMinCount is the search count a low gap must reach.
	LowMinCount int `yaml:"low_min_count"`
}

// PipelineExpectation describes how often a scheduled job must report.
type PipelineExpectation struct {
	Type   ReportType    `yaml:"type"`
	Name   string        `yaml:"name"`
	MaxAge time.Duration `yaml:"max_age"`
}

// HealthThresholds controls health verdicts.
type HealthThresholds struct {
	BaselineDays            int                   `yaml:"baseline_days"`
	ZeroRateThreshold       float64               `yaml:"zero_rate_threshold"`
	BaselineMultiplier      float64               `yaml:"baseline_multiplier"`
	StaleAfter              time.Duration         `yaml:"stale_after"`
	MaxExtractionErrors     int                   `yaml:"max_extraction_errors"`
	MaxMissingKeywordsRatio float64               `yaml:"max_missing_keywords_ratio"`
	Pipelines               []PipelineExpectation `yaml:"pipelines"`
}

// LLMConfig controls calls to the completion service.
type LLMConfig struct {
	Model       string        `yaml:"model"`
	Delay       time.Duration `yaml:"delay"`
	Temperature float32       `yaml:"temperature"`
}

// EnrichConfig controls batch enrichment.
type EnrichConfig struct {
	Concurrency int `yaml:"concurrency"`
	Limit       int `yaml:"limit"`

	// Render fetches landing pages through a headless browser.
	Render bool `yaml:"render"`
}

// DefaultConfig returns the thresholds the jobs were tuned with.
func DefaultConfig() *Config {
	return &Config{
		Gaps: GapThresholds{
			MinCount:           2,
			LowRecommendations: 2,
			LowMatches:         3,
			LowMinCount:        3,
		},
		Health: HealthThresholds{
			BaselineDays:            7,
			ZeroRateThreshold:       0.15,
			BaselineMultiplier:      1.5,
			StaleAfter:              30 * 24 * time.Hour,
			MaxExtractionErrors:     10,
			MaxMissingKeywordsRatio: 0.30,
			Pipelines: []PipelineExpectation{
				{Type: ReportTypeComprehensive, Name: "Log Analysis", MaxAge: 36 * time.Hour},
				{Type: ReportTypeAudit, Name: "Content Audit", MaxAge: 192 * time.Hour},
			},
		},
		LLM: LLMConfig{
			Model:       "gemini-2.5-flash",
			Delay:       500 * time.Millisecond,
			Temperature: 0.3,
		},
		Enrich: EnrichConfig{
			Concurrency: 4,
			Limit:       20,
		},
	}
}

// Validate returns an error if any threshold is out of range.
func (c *Config) Validate() error {
	if c.Gaps.MinCount < 1 {
		return Errorf(EINVALID, "gaps.min_count must be at least 1")
	}
	if c.Gaps.LowRecommendations < 0 {
		return Errorf(EINVALID, "gaps.low_recommendations must not be negative")
	}
	if c.Health.BaselineDays < 1 {
		return Errorf(EINVALID, "health.baseline_days must be at least 1")
	}
	if c.Health.ZeroRateThreshold <= 0 || c.Health.ZeroRateThreshold > 1 {
		return Errorf(EINVALID, "health.zero_rate_threshold must be in (0,1]")
	}
	if c.Health.BaselineMultiplier < 1 {
		return Errorf(EINVALID, "health.baseline_multiplier must be at least 1")
	}
	if c.Health.MaxMissingKeywordsRatio < 0 || c.Health.MaxMissingKeywordsRatio > 1 {
		return Errorf(EINVALID, "health.max_missing_keywords_ratio must be in [0,1]")
	}
	for _, p := range c.Health.Pipelines {
		if p.Type == "" || p.MaxAge <= 0 {
			return Errorf(EINVALID, "health.pipelines entries need a type and a positive max_age")
		}
	}
	if c.LLM.Delay < 0 {
		return Errorf(EINVALID, "llm.delay must not be negative")
	}
	if c.Enrich.Concurrency < 1 {
		return Errorf(EINVALID, "enrich.concurrency must be at least 1")
	}
	return nil
}

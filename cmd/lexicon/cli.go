package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/lexicon"
	"github.com/fwojciec/lexicon/diagnose"
	"github.com/fwojciec/lexicon/fs"
)

// ReportHistory returns previously persisted analysis reports.
type ReportHistory interface {
	Recent(ctx context.Context, n int) ([]*lexicon.AnalysisReport, error)
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	Config *lexicon.Config

	Mappings lexicon.MappingService
	Promoter lexicon.Promoter
	Logs     lexicon.QueryLogService
	Content  lexicon.ContentService
	Reports  lexicon.ReportService

	Diagnoser  *diagnose.Diagnoser
	Analyzer   lexicon.ReportAnalyzer
	History    ReportHistory
	Health     lexicon.HealthChecker
	Maintainer lexicon.Maintainer
	Enricher   lexicon.Enricher
	TagFixer   lexicon.TagFixer
	Auditor    lexicon.Auditor

	Writer *fs.ReportWriter
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	DB      string `name:"db" env:"LEXICON_DB" help:"SQLite database path"`
	Config  string `name:"config" env:"LEXICON_CONFIG" help:"YAML threshold configuration"`
	Model   string `name:"model" env:"LEXICON_MODEL" help:"Gemini model for completions"`
	Verbose bool   `short:"v" help:"Log debug output to stderr"`

	Seed       SeedCmd       `cmd:"" help:"Load the terminology seed vocabulary"`
	Diagnose   DiagnoseCmd   `cmd:"" help:"Explain why a search query returned its results"`
	Analyze    AnalyzeCmd    `cmd:"" help:"Analyze the query log for content gaps and terminology"`
	Health     HealthCmd     `cmd:"" help:"Check search and content pipeline health"`
	Maintain   MaintainCmd   `cmd:"" help:"Run the scheduled maintenance cycle"`
	Mappings   MappingsCmd   `cmd:"" help:"List terminology mappings"`
	Promote    PromoteCmd    `cmd:"" help:"Activate a reviewed mapping suggestion"`
	Deactivate DeactivateCmd `cmd:"" help:"Deactivate a terminology mapping"`
	Enrich     EnrichCmd     `cmd:"" help:"Add summaries, tags and keywords to content"`
	FixTags    FixTagsCmd    `cmd:"" name:"fix-tags" help:"Normalize stored tag strings"`
	Audit      AuditCmd      `cmd:"" help:"Audit the content inventory"`
	ImportLogs ImportLogsCmd `cmd:"" name:"import-logs" help:"Import query log entries from JSON lines"`
	ImportCont ImportContCmd `cmd:"" name:"import-content" help:"Import content items from JSON lines"`
}

// SeedCmd is the "seed" subcommand.
type SeedCmd struct {
	File string `short:"f" help:"Seed YAML file (defaults to the built-in vocabulary)"`
}

// DiagnoseCmd is the "diagnose" subcommand.
type DiagnoseCmd struct {
	Query   string `arg:"" optional:"" help:"Query to diagnose"`
	QueryID string `name:"query-id" help:"Diagnose the query recorded by a log entry"`
	Worst   int    `help:"List the N worst zero-result queries instead"`
	Days    int    `default:"7" help:"Window in days for --worst"`
	AutoFix bool   `name:"auto-fix" help:"Insert suggested terminology fixes"`
	DryRun  bool   `name:"dry-run" help:"Report fixes without writing"`
	SkipAI  bool   `name:"skip-ai" help:"Skip the model diagnosis"`
	Output  string `short:"o" help:"Write the diagnosis as JSON to this path"`
}

// AnalyzeCmd is the "analyze" subcommand.
type AnalyzeCmd struct {
	Days        int    `default:"7" help:"Analyze the last N days"`
	SkipAI      bool   `name:"skip-ai" help:"Skip model-backed stages"`
	Suggestions bool   `help:"Insert model terminology suggestions"`
	DryRun      bool   `name:"dry-run" help:"Do not persist the report or suggestions"`
	Output      string `short:"o" help:"Write the report as JSON to this path"`
	CSV         string `name:"csv" help:"Write the popularity ranking as CSV to this path"`
}

// HealthCmd is the "health" subcommand.
type HealthCmd struct {
	SkipAI bool   `name:"skip-ai" help:"Skip model anomaly detection"`
	Output string `short:"o" help:"Write the report as JSON to this path"`
}

// MaintainCmd is the "maintain" subcommand.
type MaintainCmd struct {
	Mode        string   `default:"daily" enum:"daily,weekly,full" help:"Maintenance mode (daily, weekly, full)"`
	Skip        []string `help:"Step names to skip"`
	StopOnError bool     `name:"stop-on-error" help:"Halt at the first failed step"`
	DryRun      bool     `name:"dry-run" help:"Run every step without writing"`
	EnrichLimit int      `name:"enrich-limit" help:"Maximum items to enrich"`
	Output      string   `short:"o" help:"Write the run as JSON to this path"`
}

// MappingsCmd is the "mappings" subcommand.
type MappingsCmd struct {
	Category string `short:"c" help:"Only list this category"`
	Inactive bool   `help:"List inactive suggestions instead of active mappings"`
}

// PromoteCmd is the "promote" subcommand.
type PromoteCmd struct {
	ID string `arg:"" help:"Mapping ID"`
}

// DeactivateCmd is the "deactivate" subcommand.
type DeactivateCmd struct {
	ID string `arg:"" help:"Mapping ID"`
}

// EnrichCmd is the "enrich" subcommand.
type EnrichCmd struct {
	Limit     int  `short:"n" help:"Maximum items to enrich"`
	StaleDays int  `name:"stale-days" help:"Also refresh items enriched more than N days ago"`
	DryRun    bool `name:"dry-run" help:"Process items without writing"`
	Render    bool `help:"Render landing pages in headless Chrome"`
}

// FixTagsCmd is the "fix-tags" subcommand.
type FixTagsCmd struct {
	DryRun bool `name:"dry-run" help:"Report changes without writing"`
}

// AuditCmd is the "audit" subcommand.
type AuditCmd struct {
	SkipAI bool   `name:"skip-ai" help:"Skip the model prioritization"`
	DryRun bool   `name:"dry-run" help:"Do not persist the audit"`
	Output string `short:"o" help:"Write the audit as JSON to this path"`
}

// ImportLogsCmd is the "import-logs" subcommand.
type ImportLogsCmd struct {
	File string `arg:"" type:"existingfile" help:"JSON lines file of query log entries"`
}

// ImportContCmd is the "import-content" subcommand.
type ImportContCmd struct {
	File string `arg:"" type:"existingfile" help:"JSON lines file of content items"`
}

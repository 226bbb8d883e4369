package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/lexicon"
	"github.com/fwojciec/lexicon/analyze"
	"github.com/fwojciec/lexicon/audit"
	"github.com/fwojciec/lexicon/diagnose"
	"github.com/fwojciec/lexicon/enrich"
	"github.com/fwojciec/lexicon/fs"
	"github.com/fwojciec/lexicon/gemini"
	"github.com/fwojciec/lexicon/goquery"
	"github.com/fwojciec/lexicon/health"
	"github.com/fwojciec/lexicon/htmltomarkdown"
	lexhttp "github.com/fwojciec/lexicon/http"
	"github.com/fwojciec/lexicon/hygiene"
	"github.com/fwojciec/lexicon/maintenance"
	"github.com/fwojciec/lexicon/pace"
	"github.com/fwojciec/lexicon/readability"
	"github.com/fwojciec/lexicon/rod"
	lexslog "github.com/fwojciec/lexicon/slog"
	"github.com/fwojciec/lexicon/sqlite"
	"github.com/fwojciec/lexicon/suggest"
	"github.com/fwojciec/lexicon/trafilatura"
	"github.com/fwojciec/lexicon/yaml"
	"github.com/joho/godotenv"
	"google.golang.org/genai"
)

func main() {
	ctx := context.Background()

	// A missing .env file is fine; the environment may already be set.
	_ = godotenv.Load()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// fetchRate is the per-host page fetch rate used by enrichment.
const fetchRate = 1.0

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run(); --db overrides it.
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Completer overrides the Gemini completer, for end-to-end testing.
	Completer lexicon.Completer

	// Renderer is the headless browser fetcher, when rendering is enabled.
	Renderer *rod.Fetcher
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.Renderer != nil {
		_ = m.Renderer.Close()
	}
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("lexicon"),
		kong.Description("Search terminology and content gap tooling for the marketing catalog"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'lexicon --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := yaml.LoadConfig(cli.Config)
	if err != nil {
		fmt.Fprintf(stderr, "Hint: Check LEXICON_CONFIG points to a valid YAML file\n")
		return err
	}
	deps.Config = cfg
	deps.Logger = newLogger(stderr, cli.Verbose)

	if cli.DB != "" {
		m.DBPath = cli.DB
	}
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set LEXICON_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	completer := m.Completer
	if completer == nil {
		if completer, err = newCompleter(ctx, cli.Model, cfg.LLM, deps.Logger); err != nil {
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return err
		}
	}

	m.wire(deps, cli, completer)

	return kongCtx.Run(deps)
}

// wire builds the services and jobs shared by every command.
func (m *Main) wire(deps *Dependencies, cli *CLI, completer lexicon.Completer) {
	cfg, logger := deps.Config, deps.Logger

	mappingStore := sqlite.NewMappingService(m.DB)
	deps.Mappings = lexslog.NewLoggingMappingService(mappingStore, logger)
	deps.Promoter = mappingStore
	deps.Logs = sqlite.NewQueryLogService(m.DB)
	deps.Content = sqlite.NewContentService(m.DB)
	deps.Reports = sqlite.NewReportService(m.DB)
	deps.Writer = fs.NewReportWriter("")

	searcher := lexslog.NewLoggingSearcher(pace.NewSearcher(sqlite.NewSearchService(m.DB), cfg.LLM.Delay), logger)
	suggester := lexslog.NewLoggingSuggester(suggest.NewEngine(deps.Mappings, logger), logger)

	deps.Diagnoser = &diagnose.Diagnoser{
		Mappings:  deps.Mappings,
		Content:   deps.Content,
		Logs:      deps.Logs,
		Searcher:  searcher,
		Completer: completer,
		Suggester: suggester,
		Logger:    logger,
	}

	analyzer := &analyze.Analyzer{
		Logs:       deps.Logs,
		Content:    deps.Content,
		Mappings:   deps.Mappings,
		Reports:    deps.Reports,
		Completer:  completer,
		Suggester:  suggester,
		Thresholds: cfg.Gaps,
		Logger:     logger,
	}
	deps.Analyzer = lexslog.NewLoggingAnalyzer(analyzer, logger)
	deps.History = analyzer

	deps.Health = lexslog.NewLoggingHealthChecker(&health.Monitor{
		Logs:       deps.Logs,
		Content:    deps.Content,
		Reports:    deps.Reports,
		Mappings:   deps.Mappings,
		Completer:  completer,
		Thresholds: cfg.Health,
		SkipAI:     cli.Health.SkipAI,
		Logger:     logger,
	}, logger)

	var pages lexicon.Fetcher = lexhttp.NewFetcher()
	if cli.Enrich.Render || cfg.Enrich.Render {
		m.Renderer = rod.NewFetcher()
		pages = m.Renderer
	}
	fetcher := lexslog.NewLoggingFetcher(pace.NewFetcher(pages, pace.NewHostLimiter(fetchRate)), logger)
	deps.Enricher = lexslog.NewLoggingEnricher(&enrich.Enricher{
		Content:     deps.Content,
		Completer:   completer,
		Fetcher:     fetcher,
		Extractors:  []lexicon.Extractor{trafilatura.NewExtractor(), readability.NewExtractor(), goquery.NewExtractor()},
		Converter:   htmltomarkdown.NewConverter(),
		Concurrency: cfg.Enrich.Concurrency,
		Progress:    ProgressPrinter(deps.Stdout),
		Logger:      logger,
	}, logger)

	deps.TagFixer = lexslog.NewLoggingTagFixer(&hygiene.TagFixer{Content: deps.Content, Logger: logger}, logger)
	deps.Auditor = lexslog.NewLoggingAuditor(&audit.Auditor{
		Content:   deps.Content,
		Reports:   deps.Reports,
		Completer: completer,
		Logger:    logger,
	}, logger)

	deps.Maintainer = &maintenance.Orchestrator{
		Health:   deps.Health,
		Analyzer: deps.Analyzer,
		Enricher: deps.Enricher,
		TagFixer: deps.TagFixer,
		Auditor:  deps.Auditor,
		Observer: lexslog.NewStepLogger(logger),
		Logger:   logger,
	}
}

// newCompleter returns a paced, logged Gemini completer, or nil when no API
// key is configured. Model-backed stages degrade to skipped without one.
func newCompleter(ctx context.Context, model string, cfg lexicon.LLMConfig, logger *slog.Logger) (lexicon.Completer, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		logger.Warn("GEMINI_API_KEY not set; model-backed stages will be skipped")
		return nil, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Gemini API: %w", err)
	}

	c := gemini.NewCompleter(client)
	if model == "" {
		model = cfg.Model
	}
	if model != "" {
		c.Model = model
	}
	if cfg.Temperature > 0 {
		c.Temperature = cfg.Temperature
	}
	return lexslog.NewLoggingCompleter(pace.NewCompleter(c, cfg.Delay), logger), nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "lexicon.db"
	}
	dir := filepath.Join(home, ".lexicon")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "lexicon.db")
}

package sqlkit

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/oarkflow/cli"
	"github.com/oarkflow/cli/console"
	"github.com/oarkflow/cli/contracts"
	"github.com/oarkflow/log"

	"github.com/oarkflow/sqlkit/merger"
	"github.com/oarkflow/sqlkit/schema"
	"github.com/oarkflow/sqlkit/worker"
)

var (
	Name    = "sqlkit"
	Version = "v0.1.0"
)

var logger = log.Logger{
	TimeFormat: "15:04:05",
	Caller:     1,
	Writer: &log.ConsoleWriter{
		ColorOutput:    true,
		QuoteString:    true,
		EndWithMessage: true,
	},
}

// IManager is what the CLI commands drive.
type IManager interface {
	Config() *Config
	Output() io.Writer
	Split(ctx context.Context, sql string, opts SplitOptions) (worker.Response, error)
	WriteChunks(resp worker.Response, dir string) ([]string, error)
	Merge(ctx context.Context, paths []string, header string) (merger.Result, error)
	WriteMerge(result merger.Result, dir string) (string, string, error)
	Index() (*schema.Index, error)
}

type Manager struct {
	config *Config
	client contracts.Cli
	output io.Writer

	mu     sync.Mutex
	index  *schema.Index
	store  schema.Store
	pool   *worker.Pool
	cancel context.CancelFunc
}

type ManagerOption func(*Manager)

// WithConfig replaces the default configuration.
func WithConfig(config *Config) ManagerOption {
	return func(m *Manager) {
		m.config = config
	}
}

// WithIndex injects a ready schema index instead of building one from config.
func WithIndex(index *schema.Index) ManagerOption {
	return func(m *Manager) {
		m.index = index
	}
}

// WithOutput sets where command results are rendered. Defaults to stdout.
func WithOutput(w io.Writer) ManagerOption {
	return func(m *Manager) {
		m.output = w
	}
}

// NewManager builds a Manager and registers the CLI commands.
func NewManager(opts ...ManagerOption) *Manager {
	cli.SetName(Name)
	cli.SetVersion(Version)
	app := cli.New()
	client := app.Instance.Client()
	m := &Manager{
		config: DefaultConfig(),
		client: client,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(m)
	}
	ConfigureLogger(m.config.Logging)
	client.Register([]contracts.Command{
		console.NewListCommand(client),
		&SplitCommand{Driver: m},
		&MergeCommand{Driver: m},
		&SchemaSaveCommand{Driver: m},
		&SchemaLoadCommand{Driver: m},
		&SchemaRemoveCommand{Driver: m},
		&SchemaSearchCommand{Driver: m},
		&SchemaListCommand{Driver: m},
		&SchemaExportCommand{Driver: m},
		&SchemaImportCommand{Driver: m},
		&SchemaClearCommand{Driver: m},
		&SchemaStatsCommand{Driver: m},
		&ConfigInitCommand{Driver: m},
		&ConfigValidateCommand{Driver: m},
		&ConfigShowCommand{Driver: m},
	})
	return m
}

// NewManagerFromConfig loads configPath, applies SQLKIT_* overrides and
// builds a Manager from the result.
func NewManagerFromConfig(configPath string, opts ...ManagerOption) (*Manager, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	config.ApplyEnvironmentOverrides()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return NewManager(append([]ManagerOption{WithConfig(config)}, opts...)...), nil
}

// ConfigureLogger applies the logging section to the package logger.
func ConfigureLogger(cfg LoggingConfig) {
	level := log.ParseLevel(cfg.Level)
	if cfg.Verbose {
		level = log.DebugLevel
	}
	logger.Level = level
	switch cfg.Output {
	case "file":
		logger.Writer = &log.FileWriter{Filename: cfg.LogFile}
	case "both":
		logger.Writer = &log.ConsoleWriter{
			QuoteString:    true,
			EndWithMessage: true,
			Writer:         io.MultiWriter(os.Stderr, &log.FileWriter{Filename: cfg.LogFile}),
		}
	}
}

func (m *Manager) Run() {
	defer m.Close()
	m.client.Run(os.Args, true)
}

func (m *Manager) Config() *Config {
	return m.config
}

func (m *Manager) Output() io.Writer {
	return m.output
}

// Index returns the schema index, opening its store on first use.
func (m *Manager) Index() (*schema.Index, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index != nil {
		return m.index, nil
	}
	store, err := openStore(m.config.Schema)
	if err != nil {
		return nil, err
	}
	m.store = store
	m.index = schema.NewIndex(
		schema.WithStore(store),
		schema.WithKey(m.config.Schema.Key),
		schema.WithRowLimit(m.config.Schema.RowLimit),
	)
	logger.Debug().Msgf("Schema index opened on %s store", m.config.Schema.Store)
	return m.index, nil
}

func openStore(cfg SchemaConfig) (schema.Store, error) {
	switch cfg.Store {
	case "memory":
		return schema.NewMemoryStore(), nil
	case "file":
		return schema.NewFileStore(cfg.Directory)
	case "database":
		return schema.NewDatabaseStore(cfg.Database.Driver, cfg.Database.DSN(), cfg.Database.Table)
	default:
		return nil, fmt.Errorf("unsupported schema store: %s", cfg.Store)
	}
}

func (m *Manager) workers() *worker.Pool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pool == nil {
		ctx, cancel := context.WithCancel(context.Background())
		m.cancel = cancel
		m.pool = worker.NewPool(m.config.Split.Workers, worker.WithLogger(&logger))
		m.pool.Start(ctx)
	}
	return m.pool
}

// Close stops the worker pool and releases the schema store.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	var err error
	if m.pool != nil {
		err = m.pool.Close()
		m.cancel()
		m.pool = nil
	}
	if c, ok := m.store.(io.Closer); ok {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
		m.store = nil
		m.index = nil
	}
	return err
}

// SplitOptions overrides the split section of the config for one call.
// Zero values keep the configured setting.
type SplitOptions struct {
	Mode      string
	MaxBytes  int
	MaxDML    int
	SizeLimit int
	Header    string
	Fallback  string
}

func (m *Manager) request(sql string, opts SplitOptions) worker.Request {
	cfg := m.config.Split
	if opts.Mode == "" {
		opts.Mode = cfg.Mode
	}
	if opts.MaxBytes == 0 {
		opts.MaxBytes = cfg.MaxBytes
	}
	if opts.MaxDML == 0 {
		opts.MaxDML = cfg.MaxDML
	}
	if opts.SizeLimit == 0 {
		opts.SizeLimit = cfg.SizeLimit
	}
	if opts.Header == "" {
		opts.Header = cfg.Header
	}
	req := worker.Request{SQL: sql, Header: opts.Header, Fallback: opts.Fallback}
	switch opts.Mode {
	case "count":
		req.Kind = worker.KindChunkCount
		req.MaxDML = opts.MaxDML
		req.MaxBytes = opts.SizeLimit
	case "none":
		req.Kind = worker.KindSplit
	default:
		req.Kind = worker.KindChunkSize
		req.MaxBytes = opts.MaxBytes
	}
	return req
}

// Split splits sql and chunks it on the worker pool.
func (m *Manager) Split(ctx context.Context, sql string, opts SplitOptions) (worker.Response, error) {
	resp, err := m.workers().Do(ctx, m.request(sql, opts))
	if err != nil {
		return worker.Response{}, err
	}
	oversized := 0
	for _, c := range resp.Chunks {
		if c.Oversized {
			oversized++
		}
	}
	logger.Info().Msgf("Split %d statement(s) into %d chunk(s) in %v", len(resp.Statements), len(resp.Chunks), resp.Elapsed)
	if oversized > 0 {
		logger.Warn().Msgf("%d chunk(s) exceed the byte budget", oversized)
	}
	return resp, nil
}

// WriteChunks writes every chunk of resp into dir and returns the paths.
func (m *Manager) WriteChunks(resp worker.Response, dir string) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	paths := make([]string, 0, len(resp.Chunks))
	for _, c := range resp.Chunks {
		path := filepath.Join(dir, c.FileName)
		if err := os.WriteFile(path, []byte(c.Content+"\n"), 0644); err != nil {
			return nil, fmt.Errorf("failed to write chunk %s: %w", c.FileName, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Merge reads paths in order and merges them.
func (m *Manager) Merge(ctx context.Context, paths []string, header string) (merger.Result, error) {
	sources, err := merger.ReadSources(paths)
	if err != nil {
		return merger.Result{}, err
	}
	files, err := merger.ParseFiles(ctx, sources)
	if err != nil {
		return merger.Result{}, err
	}
	if header == "" {
		header = m.config.Merge.Header
	}
	result := merger.Merge(files, merger.WithHeader(header))
	logger.Info().Msgf("Merged %d file(s) into %d group(s)", len(files), len(result.Groups))
	for _, d := range result.Duplicates {
		logger.Warn().Msgf("Duplicate statement in %s: %s", strings.Join(d.Files, ", "), d.Statement)
	}
	return result, nil
}

// WriteMerge writes the merged DML script and, when it is not empty, the
// SELECT script into dir.
func (m *Manager) WriteMerge(result merger.Result, dir string) (string, string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create output directory: %w", err)
	}
	mergedPath := filepath.Join(dir, m.config.Merge.MergedFile)
	if err := os.WriteFile(mergedPath, []byte(result.MergedSQL+"\n"), 0644); err != nil {
		return "", "", fmt.Errorf("failed to write merged script: %w", err)
	}
	if result.SelectSQL == "" {
		return mergedPath, "", nil
	}
	selectPath := filepath.Join(dir, m.config.Merge.SelectFile)
	if err := os.WriteFile(selectPath, []byte(result.SelectSQL+"\n"), 0644); err != nil {
		return "", "", fmt.Errorf("failed to write select script: %w", err)
	}
	return mergedPath, selectPath, nil
}

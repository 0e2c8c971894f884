// Package scan runs the index-and-write cycle over a source tree: it
// discovers files, extracts or reuses symbols through the registry,
// resolves calls across the whole scan and writes the context documents.
package scan

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"unicode/utf8"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/spf13/afero"

	"github.com/phobologic/ccb/internal/callgraph"
	"github.com/phobologic/ccb/internal/config"
	"github.com/phobologic/ccb/internal/deps"
	"github.com/phobologic/ccb/internal/discover"
	"github.com/phobologic/ccb/internal/docs"
	"github.com/phobologic/ccb/internal/lang"
	"github.com/phobologic/ccb/internal/model"
	"github.com/phobologic/ccb/internal/parse"
	"github.com/phobologic/ccb/internal/registry"
	"github.com/phobologic/ccb/internal/summarize"
)

// DefaultMaxFileSize is the largest file the scanner reads.
const DefaultMaxFileSize = 1_000_000 // 1 MB

// Stats counts what one scan did.
type Stats struct {
	Discovered int
	CacheHits  int
	Extracted  int
	Skipped    int
	Failed     int
	Summarized int
	Pruned     int
	Documents  []string
}

// Scanner indexes a source tree. A Scanner is not safe for concurrent use.
type Scanner struct {
	cfg         *config.Config
	fs          afero.Fs
	log         *slog.Logger
	summarizer  summarize.Summarizer
	maxFileSize int64
	parsers     map[string]*sitter.Parser
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithFs sets the filesystem. The default is the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(s *Scanner) { s.fs = fs }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scanner) { s.log = l }
}

// WithSummarizer overrides the backend selected by the configuration.
func WithSummarizer(sm summarize.Summarizer) Option {
	return func(s *Scanner) { s.summarizer = sm }
}

// WithMaxFileSize skips files larger than n bytes.
func WithMaxFileSize(n int64) Option {
	return func(s *Scanner) { s.maxFileSize = n }
}

// New returns a Scanner for cfg.
func New(cfg *config.Config, opts ...Option) *Scanner {
	s := &Scanner{
		cfg:         cfg,
		fs:          afero.NewOsFs(),
		log:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		maxFileSize: DefaultMaxFileSize,
		parsers:     make(map[string]*sitter.Parser),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan indexes root and writes its documents. Per-file problems are logged
// and counted; only failing to persist the registry or the documents, or a
// root that cannot be walked, fails the scan.
func (s *Scanner) Scan(ctx context.Context, root string) (*Stats, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving root: %w", err)
	}

	if s.summarizer == nil {
		sm, err := summarize.New(ctx, s.cfg.Summarizer())
		if err != nil {
			s.log.Warn("summarizer unavailable, continuing without summaries", "provider", s.cfg.Provider, "error", err)
			sm = summarize.Noop{}
		}
		s.summarizer = sm
	}

	reg, err := registry.Load(s.fs, s.cfg.RegistryPath(root))
	if err != nil {
		s.log.Warn("starting from an empty registry", "path", reg.Path(), "error", err)
	} else {
		s.log.Debug("registry loaded", "path", reg.Path(), "entries", reg.Len())
	}

	files, err := discover.Files(s.fs, root, discover.Options{
		Include: s.cfg.Include,
		Exclude: s.cfg.Exclude,
	})
	if err != nil {
		return nil, fmt.Errorf("discovering files: %w", err)
	}

	stats := &Stats{Discovered: len(files)}
	dirs := make(map[string]*model.Directory)
	seen := make(map[string]struct{}, len(files))
	var contexts []*model.FileContext

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		fc, ok := s.scanFile(ctx, root, f, reg, dirs, seen, stats)
		if !ok {
			continue
		}
		contexts = append(contexts, fc)
		dir := directory(dirs, path.Dir(f.Path))
		dir.Files = append(dir.Files, fc)
	}

	if s.cfg.PruneStale {
		pruned := reg.Prune(seen)
		for _, p := range pruned {
			s.log.Info("pruned", "path", p)
		}
		stats.Pruned = len(pruned)
	}

	callgraph.Finalize(contexts)

	if err := reg.Save(); err != nil {
		return stats, fmt.Errorf("saving registry: %w", err)
	}

	written, err := docs.Write(s.fs, root, sortedDirs(dirs), s.cfg.OutputName)
	stats.Documents = written
	for _, p := range written {
		s.log.Info("updated", "path", p)
	}
	if err != nil {
		return stats, fmt.Errorf("writing documents: %w", err)
	}

	return stats, nil
}

// scanFile reads one file, records its dependencies and returns its symbols,
// either from the registry or freshly extracted.
func (s *Scanner) scanFile(
	ctx context.Context,
	root string,
	f discover.FileEntry,
	reg *registry.Registry,
	dirs map[string]*model.Directory,
	seen map[string]struct{},
	stats *Stats,
) (*model.FileContext, bool) {
	abs := filepath.Join(root, filepath.FromSlash(f.Path))
	// A discovered file keeps its registry entry even when it is skipped.
	seen[f.Path] = struct{}{}

	if fi, err := s.fs.Stat(abs); err == nil && s.maxFileSize > 0 && fi.Size() > s.maxFileSize {
		s.log.Warn("skipped", "path", f.Path, "reason", "too large", "size", fi.Size())
		stats.Skipped++
		return nil, false
	}

	content, err := afero.ReadFile(s.fs, abs)
	if err != nil {
		s.log.Debug("skipped", "path", f.Path, "error", err)
		stats.Skipped++
		return nil, false
	}
	if !utf8.Valid(content) {
		s.log.Debug("skipped", "path", f.Path, "reason", "not utf-8")
		stats.Skipped++
		return nil, false
	}

	deps.Extract(content, directory(dirs, path.Dir(f.Path)).Deps)

	hash := registry.HashContent(content)
	if syms, ok := reg.Lookup(f.Path, hash); ok {
		stats.CacheHits++
		return &model.FileContext{Path: f.Path, Symbols: syms}, true
	}

	adapter, ok := lang.Languages[f.Language]
	if !ok {
		stats.Skipped++
		return nil, false
	}

	s.log.Info("scanning", "path", f.Path)
	syms, err := parse.Extract(ctx, adapter, s.parser(adapter), content)
	if err != nil {
		s.log.Warn("parse failed", "path", f.Path, "error", err)
		if _, ok := reg.Entry(f.Path); ok {
			s.log.Debug("keeping previous registry entry", "path", f.Path)
		}
		stats.Failed++
		return nil, false
	}

	for i := range syms {
		sym := &syms[i]
		if !sym.IsPublic || sym.Summary != "" {
			continue
		}
		if summary, ok := s.summarizer.Summarize(ctx, f.Path, sym.Code); ok {
			sym.Summary = summary
			stats.Summarized++
			s.log.Info("summarized", "path", f.Path, "symbol", sym.Name)
		}
	}

	reg.Store(f.Path, hash, syms)
	stats.Extracted++
	return &model.FileContext{Path: f.Path, Symbols: model.CloneSymbols(syms)}, true
}

// parser returns the cached parser for a, creating it on first use.
func (s *Scanner) parser(a lang.Adapter) *sitter.Parser {
	p, ok := s.parsers[a.Name()]
	if !ok {
		p = lang.NewParser(a)
		s.parsers[a.Name()] = p
	}
	return p
}

func directory(dirs map[string]*model.Directory, p string) *model.Directory {
	d, ok := dirs[p]
	if !ok {
		d = model.NewDirectory(p)
		dirs[p] = d
	}
	return d
}

func sortedDirs(dirs map[string]*model.Directory) []*model.Directory {
	out := make([]*model.Directory, 0, len(dirs))
	for _, d := range dirs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// Package discovery locates tool log files below the configured search roots.
//
// Discovery is lazy: [Engine.Discover] returns an iterator that walks the
// roots while the caller ranges over it. Every file goes through a cheap
// filter chain (ignore globs, filename tokens, extension type guess, size
// limit) before any byte of it is read, and a file is read in full at most
// once per call.
package discovery

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/src-d/enry/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/qcreport/pkg/observability"
	"github.com/Sumatoshi-tech/qcreport/pkg/samplename"
	"github.com/Sumatoshi-tech/qcreport/pkg/textutil"
)

// Mode selects what a match carries.
type Mode int

const (
	// ModeContents yields the full file text; the file is closed before yielding.
	ModeContents Mode = iota
	// ModeHandle yields an open handle positioned at the start of the file.
	// The caller owns the handle and must close it.
	ModeHandle
	// ModeMetadata yields names only.
	ModeMetadata
)

// String returns the mode name used in logs and spans.
func (m Mode) String() string {
	switch m {
	case ModeContents:
		return "contents"
	case ModeHandle:
		return "handle"
	case ModeMetadata:
		return "metadata"
	default:
		return "unknown"
	}
}

// MatchKind records which search criterion selected a file.
type MatchKind string

const (
	// MatchedByName means a filename token matched; contents were not searched.
	MatchedByName MatchKind = "name"
	// MatchedByContent means a content token was found in a line of the file.
	MatchedByContent MatchKind = "content"
)

// Skip reasons reported to logs and metrics.
const (
	skipIgnored = "ignored"
	skipType    = "type"
	skipSize    = "size"
	skipBinary  = "binary"
	skipDecode  = "decode"
	skipIO      = "io"
)

// SearchSpec holds the tokens a module looks for. A file matches when any
// name token is a substring of its filename or, failing that, any content
// token occurs in one of its lines.
type SearchSpec struct {
	Names    []string
	Contents []string
}

// ByName returns a spec matching filenames that contain any of tokens.
func ByName(tokens ...string) SearchSpec {
	return SearchSpec{Names: tokens}
}

// ByContent returns a spec matching files with a line containing any of tokens.
func ByContent(tokens ...string) SearchSpec {
	return SearchSpec{Contents: tokens}
}

// IsEmpty reports whether the spec has no search criteria at all.
func (s SearchSpec) IsEmpty() bool {
	return len(s.Names) == 0 && len(s.Contents) == 0
}

// LogFileMatch is one discovered file.
type LogFileMatch struct {
	SampleName string
	Root       string
	Filename   string
	MatchedBy  MatchKind

	// Content is the file text in ModeContents.
	Content string
	// Handle is the open file in ModeHandle, owned by the caller.
	Handle io.ReadSeekCloser
}

// Path returns the file path as found during the walk.
func (m *LogFileMatch) Path() string {
	return filepath.Join(m.Root, m.Filename)
}

// Options configures an Engine.
type Options struct {
	// Roots are directories to walk or single files to consider.
	Roots []string
	// IgnorePatterns are filename globs (path.Match syntax) never considered.
	IgnorePatterns []string
	// SizeLimit is the largest file, in bytes, searched by content.
	// Zero or negative disables the limit.
	SizeLimit int64
	// Resolver builds sample names from filenames.
	Resolver samplename.Resolver
	// Module labels logs and metrics with the calling module.
	Module string
}

// Opener opens a file for reading.
type Opener func(name string) (io.ReadSeekCloser, error)

// Option configures optional Engine collaborators.
type Option func(*Engine)

// WithLogger sets the logger. Per-file problems are logged at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithTracer sets the tracer used for the per-call span.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

// WithMetrics sets the discovery instruments.
func WithMetrics(metrics *observability.DiscoveryMetrics) Option {
	return func(e *Engine) {
		e.metrics = metrics
	}
}

// WithOpener replaces the function used to open files.
func WithOpener(open Opener) Option {
	return func(e *Engine) {
		e.open = open
	}
}

// Engine walks search roots and filters candidate files. An Engine holds no
// state between Discover calls.
type Engine struct {
	opts    Options
	ignore  []string
	logger  *slog.Logger
	tracer  trace.Tracer
	metrics *observability.DiscoveryMetrics
	open    Opener
}

// NewEngine creates an Engine. Malformed ignore globs are logged and dropped.
func NewEngine(opts Options, options ...Option) *Engine {
	engine := &Engine{
		opts:   opts,
		logger: observability.Discard(),
		tracer: nooptrace.NewTracerProvider().Tracer("discovery"),
		open:   openFile,
	}

	for _, option := range options {
		option(engine)
	}

	engine.logger = engine.logger.With(slog.String("component", "discovery"))

	for _, pattern := range opts.IgnorePatterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			engine.logger.Warn("Ignoring malformed ignore pattern",
				slog.String("pattern", pattern), slog.String("error", err.Error()))

			continue
		}

		engine.ignore = append(engine.ignore, pattern)
	}

	return engine
}

func openFile(name string) (io.ReadSeekCloser, error) {
	return os.Open(name) //nolint:gosec // paths come from the configured search roots.
}

// Discover returns a lazy sequence of files matching spec. Each call walks the
// roots afresh. When spec has no criteria a warning is logged and the
// sequence yields a single nil before ending.
//
// Files that cannot be read are logged at debug level and skipped; a single
// bad file never stops the walk. The walk stops early when ctx is cancelled.
func (e *Engine) Discover(ctx context.Context, spec SearchSpec, mode Mode) iter.Seq[*LogFileMatch] {
	return func(yield func(*LogFileMatch) bool) {
		if spec.IsEmpty() {
			e.logger.WarnContext(ctx, "No file patterns specified for log file search",
				slog.String("module", e.opts.Module))
			yield(nil)

			return
		}

		ctx, span := e.tracer.Start(ctx, "discovery.Discover", trace.WithAttributes(
			attribute.String("qcreport.module", e.opts.Module),
			attribute.String("qcreport.discovery.mode", mode.String()),
			attribute.Int("qcreport.discovery.roots", len(e.opts.Roots)),
		))
		defer span.End()

		var matched int

		for cand := range e.candidates(ctx) {
			if err := ctx.Err(); err != nil {
				span.SetStatus(codes.Error, err.Error())

				return
			}

			match := e.inspect(ctx, cand, spec, mode)
			if match == nil {
				continue
			}

			matched++

			e.metrics.Matched(ctx, e.opts.Module, string(match.MatchedBy))

			if !yield(match) {
				break
			}
		}

		span.SetAttributes(attribute.Int("qcreport.discovery.matched", matched))
	}
}

// inspect runs the filter chain on one candidate and returns the match, or
// nil when the file is rejected.
func (e *Engine) inspect(ctx context.Context, cand candidate, spec SearchSpec, mode Mode) *LogFileMatch {
	e.metrics.Visited(ctx, e.opts.Module)

	if e.ignored(cand.name) {
		e.skip(ctx, skipIgnored)

		return nil
	}

	match := &LogFileMatch{
		SampleName: e.opts.Resolver.Resolve(cand.name, cand.root),
		Root:       cand.root,
		Filename:   cand.name,
	}

	if textutil.ContainsAny(cand.name, spec.Names) {
		match.MatchedBy = MatchedByName

		return e.deliver(ctx, match, mode)
	}

	if len(spec.Contents) == 0 {
		return nil
	}

	return e.searchContents(ctx, match, spec.Contents, mode)
}

func (e *Engine) ignored(name string) bool {
	for _, pattern := range e.ignore {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}

	return false
}

// deliver fills a name-matched result according to mode. Metadata mode never
// touches the file.
func (e *Engine) deliver(ctx context.Context, match *LogFileMatch, mode Mode) *LogFileMatch {
	if mode == ModeMetadata {
		return match
	}

	path := match.Path()

	file, err := e.open(path)
	if err != nil {
		e.readFailed(ctx, path, err)

		return nil
	}

	if mode == ModeHandle {
		match.Handle = file

		return match
	}

	data, err := io.ReadAll(file)

	closeErr := file.Close()
	if err == nil {
		err = closeErr
	}

	if err != nil {
		e.readFailed(ctx, path, err)

		return nil
	}

	if !utf8.Valid(data) {
		e.logger.DebugContext(ctx, "Couldn't decode file as UTF-8", slog.String("path", path))
		e.skip(ctx, skipDecode)

		return nil
	}

	match.Content = string(data)

	return match
}

// searchContents applies the type and size filters, then reads the file once
// and scans it line by line for any token.
func (e *Engine) searchContents(ctx context.Context, match *LogFileMatch, tokens []string, mode Mode) *LogFileMatch {
	path := match.Path()

	if reason := guessType(path); reason != "" {
		e.logger.DebugContext(ctx, "Skipping file by type", slog.String("path", path), slog.String("guess", reason))
		e.skip(ctx, skipType)

		return nil
	}

	info, err := os.Stat(path)
	if err != nil {
		e.logger.DebugContext(ctx, "Couldn't read file when checking filesize",
			slog.String("path", path), slog.String("error", err.Error()))
		e.skip(ctx, skipIO)

		return nil
	}

	if e.opts.SizeLimit > 0 && info.Size() > e.opts.SizeLimit {
		e.logger.DebugContext(ctx, "Ignoring file as too large",
			slog.String("path", path), slog.Int64("size", info.Size()), slog.Int64("limit", e.opts.SizeLimit))
		e.skip(ctx, skipSize)

		return nil
	}

	file, err := e.open(path)
	if err != nil {
		e.readFailed(ctx, path, err)

		return nil
	}

	keep := false

	defer func() {
		if !keep {
			_ = file.Close()
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		e.readFailed(ctx, path, err)

		return nil
	}

	e.metrics.Scanned(ctx, e.opts.Module, int64(len(data)))

	if enry.IsBinary(data) {
		e.logger.DebugContext(ctx, "Skipping binary file", slog.String("path", path))
		e.skip(ctx, skipBinary)

		return nil
	}

	if !utf8.Valid(data) {
		e.logger.DebugContext(ctx, "Couldn't decode file as UTF-8", slog.String("path", path))
		e.skip(ctx, skipDecode)

		return nil
	}

	text := string(data)
	if !textutil.ContainsAnyLine(text, tokens) {
		return nil
	}

	match.MatchedBy = MatchedByContent

	switch mode {
	case ModeHandle:
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			e.readFailed(ctx, path, err)

			return nil
		}

		keep = true
		match.Handle = file
	case ModeContents:
		match.Content = text
	case ModeMetadata:
	}

	return match
}

func (e *Engine) readFailed(ctx context.Context, path string, err error) {
	e.logger.DebugContext(ctx, "Couldn't read file when looking for output",
		slog.String("path", path), slog.String("error", err.Error()))
	e.skip(ctx, skipIO)
}

func (e *Engine) skip(ctx context.Context, reason string) {
	e.metrics.Skipped(ctx, e.opts.Module, reason)
}

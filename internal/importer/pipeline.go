package importer

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/gravitrone/kbconsole/internal/api"
	"github.com/gravitrone/kbconsole/internal/confirm"
	"github.com/gravitrone/kbconsole/internal/scope"
)

var (
	// ErrNotValidated is returned by Execute unless the same file was
	// validated OK for the same scope.
	ErrNotValidated = errors.New("import: file has not passed validation")
	// ErrUnsupported is returned for files other than .csv and .xlsx.
	ErrUnsupported = errors.New("import: only .csv and .xlsx files are supported")
	// ErrBusy is returned while another import request is in flight.
	ErrBusy = errors.New("import: another request is in flight")
)

// Backend is the subset of the REST client the pipeline drives.
type Backend interface {
	ValidateImport(scope, filename string, content []byte) (*api.ImportResult, error)
	ExecuteImport(scope, filename string, content []byte) (*api.ImportResult, error)
}

// File is an import file held in memory.
type File struct {
	Name string
	Data []byte
}

// ReadFile loads an import file from disk.
func ReadFile(path string) (File, error) {
	if !supported(path) {
		return File{}, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("read import file: %w", err)
	}
	return File{Name: filepath.Base(path), Data: data}, nil
}

func supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".xlsx":
		return true
	}
	return false
}

func isCSV(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

// Result is the outcome of a validate or execute call. Local is set when
// the client-side check rejected the file without a network call.
type Result struct {
	OK      bool
	Summary api.ImportSummary
	Errors  []api.ImportRowError
	Local   bool
}

type prepared struct {
	digest  [sha256.Size]byte
	summary api.ImportSummary
}

// Pipeline runs the two-phase import for one scope: Validate never writes,
// Execute replaces the whole scope and only runs for a file that validated.
type Pipeline struct {
	backend    Backend
	scope      scope.Scope
	log        zerolog.Logger
	onReplaced func() error

	mu       sync.Mutex
	prepared *prepared
	busy     bool
}

// NewPipeline creates a pipeline for one scope.
func NewPipeline(backend Backend, s scope.Scope) *Pipeline {
	return &Pipeline{backend: backend, scope: s, log: zerolog.Nop()}
}

// SetLogger attaches a logger.
func (p *Pipeline) SetLogger(log zerolog.Logger) {
	p.log = log.With().Str("scope", p.scope.String()).Logger()
}

// OnReplaced registers the hook run after a successful execute, typically
// the taxonomy controller's Reload.
func (p *Pipeline) OnReplaced(fn func() error) {
	p.onReplaced = fn
}

// Scope returns the pipeline's scope.
func (p *Pipeline) Scope() scope.Scope {
	return p.scope
}

// Prepared reports whether f validated OK and may be executed.
func (p *Pipeline) Prepared(f File) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.prepared != nil && p.prepared.digest == sha256.Sum256(f.Data)
}

// Reset forgets any validated file.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	p.prepared = nil
	p.mu.Unlock()
}

// Validate checks f locally (CSV only) and then with the backend. It never
// mutates stored data. An OK result arms Execute for the same bytes.
func (p *Pipeline) Validate(f File) (*Result, error) {
	if !supported(f.Name) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, f.Name)
	}
	if err := p.begin(); err != nil {
		return nil, err
	}
	defer p.end()
	p.Reset()

	upload, local, err := p.precheck(f)
	if err != nil {
		return nil, err
	}
	if local != nil {
		p.log.Info().Str("file", f.Name).Int("errors", len(local.Errors)).Msg("import rejected locally")
		return local, nil
	}

	res, err := p.backend.ValidateImport(p.scope.String(), upload.Name, upload.Data)
	if err != nil {
		return nil, fmt.Errorf("validate import: %w", err)
	}
	out := toResult(res)
	if out.OK {
		p.mu.Lock()
		p.prepared = &prepared{digest: sha256.Sum256(f.Data), summary: out.Summary}
		p.mu.Unlock()
	}
	p.log.Info().
		Str("file", f.Name).
		Bool("ok", out.OK).
		Int("categories", out.Summary.Categories).
		Int("cases", out.Summary.Cases).
		Int("errors", len(out.Errors)).
		Msg("import validated")
	return out, nil
}

// ExecutePrompt describes the overwrite Execute performs for f.
func (p *Pipeline) ExecutePrompt(f File) confirm.Prompt {
	p.mu.Lock()
	var summary api.ImportSummary
	if p.prepared != nil {
		summary = p.prepared.summary
	}
	p.mu.Unlock()
	return confirm.Prompt{
		Title: fmt.Sprintf("Replace the %s taxonomy", p.scope.Label()),
		Message: fmt.Sprintf(
			"Every existing %s node and case is deleted and replaced by %s (%d categories, %d cases). This cannot be undone.",
			p.scope.Label(), f.Name, summary.Categories, summary.Cases,
		),
		Action: "import execute",
		Count:  summary.Categories,
		Unit:   "Categories",
	}
}

// Execute replaces the scope's taxonomy with f after a separate
// confirmation. OK=false means nothing was written. On OK the validated
// state is cleared and the replaced hook runs.
func (p *Pipeline) Execute(f File, confirmer confirm.Confirmer) (*Result, error) {
	if !p.Prepared(f) {
		return nil, ErrNotValidated
	}
	if err := confirm.Require(confirmer, p.ExecutePrompt(f)); err != nil {
		return nil, err
	}
	if err := p.begin(); err != nil {
		return nil, err
	}
	defer p.end()
	// a file is executed at most once per validation
	defer p.Reset()

	upload, _, err := p.precheck(f)
	if err != nil {
		return nil, err
	}
	res, err := p.backend.ExecuteImport(p.scope.String(), upload.Name, upload.Data)
	if err != nil {
		if api.IsTimeout(err) {
			p.log.Warn().Str("file", f.Name).Msg("import execute timed out")
		}
		return nil, fmt.Errorf("execute import: %w", err)
	}
	out := toResult(res)
	p.log.Info().
		Str("file", f.Name).
		Bool("ok", out.OK).
		Int("categories", out.Summary.Categories).
		Int("cases", out.Summary.Cases).
		Msg("import executed")
	if out.OK && p.onReplaced != nil {
		if err := p.onReplaced(); err != nil {
			return out, fmt.Errorf("reload after import: %w", err)
		}
	}
	return out, nil
}

// precheck runs the local CSV rules. It returns the bytes to upload, or a
// local rejection.
func (p *Pipeline) precheck(f File) (File, *Result, error) {
	if !isCSV(f.Name) {
		return f, nil, nil
	}
	plan := ParseCSV(p.scope, f.Data)
	if !plan.OK() {
		return f, &Result{OK: false, Errors: plan.Errors, Local: true}, nil
	}
	if !plan.English {
		return f, nil, nil
	}
	data, err := plan.Encode()
	if err != nil {
		return f, nil, err
	}
	return File{Name: f.Name, Data: data}, nil, nil
}

func (p *Pipeline) begin() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.busy {
		return ErrBusy
	}
	p.busy = true
	return nil
}

func (p *Pipeline) end() {
	p.mu.Lock()
	p.busy = false
	p.mu.Unlock()
}

func toResult(res *api.ImportResult) *Result {
	out := &Result{OK: res.OK, Errors: res.Errors}
	if res.Summary != nil {
		out.Summary = *res.Summary
	}
	if out.Errors == nil {
		out.Errors = []api.ImportRowError{}
	}
	return out
}

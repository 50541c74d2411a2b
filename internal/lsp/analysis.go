package lsp

import (
	"context"
	"time"

	"formula/internal/diag"
	"formula/internal/driver"
	"formula/internal/source"
)

// analysis is one checked version of a document.
type analysis struct {
	fs      *source.FileSet
	file    *source.File
	results []driver.Result
}

// resultAt returns the descriptor whose line contains offset.
func (a *analysis) resultAt(offset uint32) *driver.Result {
	for i := range a.results {
		r := &a.results[i]
		if r.Span.Start <= offset && offset <= r.Span.End {
			return r
		}
	}
	return nil
}

func documentPath(uri string) string {
	if p := uriToPath(uri); p != "" {
		return p
	}
	return uri
}

func (s *Server) analyze(ctx context.Context, uri, text string) (*analysis, error) {
	fs := source.NewFileSet()
	id := fs.AddVirtual(documentPath(uri), []byte(text))
	results, err := driver.CheckAll(ctx, fs, driver.DescriptorLines(fs, id), driver.Options{
		Catalog:        s.catalog,
		MaxDiagnostics: s.maxDiagnostics,
	})
	if err != nil {
		return nil, err
	}
	return &analysis{fs: fs, file: fs.Get(id), results: results}, nil
}

func (s *Server) scheduleDiagnostics(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t := s.timers[uri]; t != nil {
		t.Stop()
	}
	s.timers[uri] = time.AfterFunc(s.debounce, func() {
		if err := s.publishDiagnostics(uri); err != nil {
			s.logf("publish diagnostics for %s: %v", uri, err)
		}
	})
}

// publishDiagnostics checks the current text of uri and sends the result.
func (s *Server) publishDiagnostics(uri string) error {
	text, version, ok := s.snapshot(uri)
	if !ok {
		return nil
	}
	a, err := s.analyze(s.baseCtx, uri, text)
	if err != nil {
		return err
	}
	list := a.diagnostics()
	s.mu.Lock()
	if len(list) > 0 {
		s.published[uri] = struct{}{}
	} else {
		delete(s.published, uri)
	}
	s.mu.Unlock()
	return s.sendPublish(uri, &version, list)
}

func (a *analysis) diagnostics() []lspDiagnostic {
	var out []lspDiagnostic
	for i := range a.results {
		for _, d := range a.results[i].Bag.Items() {
			out = append(out, lspDiagnostic{
				Range:    rangeForSpan(a.file, d.Primary),
				Severity: lspSeverity(d.Severity),
				Code:     d.Code.ID(),
				Source:   "formula",
				Message:  d.Message,
			})
		}
	}
	return out
}

func lspSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return 1
	case diag.SevWarning:
		return 2
	default:
		return 3
	}
}

// Package driver runs the checker over batches of call descriptors: it
// parses each one, infers and validates it against a catalog, and collects a
// diagnostic bag per descriptor.
package driver

import (
	"context"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"formula/internal/ast"
	"formula/internal/catalog"
	"formula/internal/descriptor"
	"formula/internal/diag"
	"formula/internal/sema"
	"formula/internal/source"
	"formula/internal/trace"
	"formula/internal/types"
)

// DefaultMaxDiagnostics is the per-descriptor bag limit when Options leaves it unset.
const DefaultMaxDiagnostics = 100

// Options configures CheckAll.
type Options struct {
	Catalog        *catalog.Catalog
	MaxDiagnostics int
	// Jobs bounds concurrent checks; 0 means GOMAXPROCS.
	Jobs int
	// Progress, when set, receives an event as each descriptor moves on.
	Progress ProgressSink
}

// Result is the outcome for one descriptor.
type Result struct {
	Span  source.Span
	Text  string
	Exprs *ast.Exprs
	Root  ast.ExprID
	// Parsed is false when the descriptor had a syntax error; Type is then
	// Unknown and Types is nil.
	Parsed bool
	Type   types.Ty
	Types  sema.TypeMap
	Bag    *diag.Bag
}

// OK reports whether the descriptor produced no errors.
func (r *Result) OK() bool { return r.Parsed && !r.Bag.HasErrors() }

// CheckAll checks every span of fs concurrently. Results come back in input
// order. fs must not be modified while CheckAll runs.
func CheckAll(ctx context.Context, fs *source.FileSet, spans []source.Span, opts Options) ([]Result, error) {
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.MustDefault()
	}
	maxDiags := opts.MaxDiagnostics
	if maxDiags <= 0 {
		maxDiags = DefaultMaxDiagnostics
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	span, ctx := trace.BeginCtx(ctx, trace.ScopePass, "check")
	span.WithExtra("calls", strconv.Itoa(len(spans)))
	defer span.End("")

	results := make([]Result, len(spans))
	if len(spans) == 0 {
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(spans)))
	for i, sp := range spans {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			started := time.Now()
			emit(opts.Progress, Event{Index: i, Stage: StageParse, Status: StatusWorking})
			// each goroutine writes only its own index
			results[i] = checkOne(gctx, fs, sp, cat, maxDiags, func(stage Stage) {
				emit(opts.Progress, Event{Index: i, Stage: stage, Status: StatusWorking})
			})
			status := StatusDone
			if !results[i].OK() {
				status = StatusError
			}
			emit(opts.Progress, Event{Index: i, Stage: StageCheck, Status: status, Elapsed: time.Since(started)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}

func checkOne(ctx context.Context, fs *source.FileSet, sp source.Span, cat *catalog.Catalog, maxDiags int, stage func(Stage)) Result {
	callSpan, _ := trace.BeginCtx(ctx, trace.ScopeCall, "call")
	bag := diag.NewBag(maxDiags)
	reporter := diag.NewDedupReporter(diag.BagReporter{Bag: bag})
	res := Result{Span: sp, Text: fs.Slice(sp), Type: types.Unknown(), Bag: bag}

	parsed, ok := descriptor.ParseSpan(fs, sp, reporter)
	res.Exprs, res.Root, res.Parsed = parsed.Exprs, parsed.Root, ok
	if ok {
		stage(StageCheck)
		checked := sema.Check(parsed.Exprs, parsed.Root, sema.Options{Reporter: reporter, Catalog: cat})
		res.Type, res.Types = checked.Root, checked.ExprTypes
	}
	bag.Sort()

	callSpan.WithExtra("diags", strconv.Itoa(bag.Len())).End(res.Text + " -> " + types.Label(res.Type))
	return res
}

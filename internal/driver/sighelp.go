package driver

import (
	"context"
	"errors"

	"formula/internal/ast"
	"formula/internal/callsig"
	"formula/internal/catalog"
	"formula/internal/descriptor"
	"formula/internal/diag"
	"formula/internal/sema"
	"formula/internal/sighelp"
	"formula/internal/source"
	"formula/internal/trace"
	"formula/internal/types"
)

// ErrNotACall is returned by SignatureHelp when the descriptor root is not a call.
var ErrNotACall = errors.New("descriptor is not a function call")

// parsedCall is the outermost call of a descriptor with its argument types.
type parsedCall struct {
	name     string
	argTys   []types.Ty
	receiver types.Ty
	postfix  bool
}

// parseCall parses the descriptor in sp and types the arguments of its root
// call. A `_` argument is types.None.
func parseCall(fs *source.FileSet, sp source.Span, cat *catalog.Catalog, bag *diag.Bag) (parsedCall, bool, error) {
	parsed, ok := descriptor.ParseSpan(fs, sp, diag.BagReporter{Bag: bag})
	if !ok {
		return parsedCall{}, false, nil
	}
	exprs := parsed.Exprs
	tm := sema.Check(exprs, parsed.Root, sema.Options{Catalog: cat}).ExprTypes

	argTy := func(id ast.ExprID) types.Ty {
		if typed, ok := exprs.TypedData(id); ok && typed.Ty.IsNone() {
			return types.None
		}
		return tm.Get(id)
	}
	argTys := func(ids []ast.ExprID) []types.Ty {
		out := make([]types.Ty, len(ids))
		for i, id := range ids {
			out[i] = argTy(id)
		}
		return out
	}

	switch expr := exprs.Get(parsed.Root); expr.Kind {
	case ast.ExprCall:
		c, _ := exprs.Call(parsed.Root)
		return parsedCall{name: c.Callee, argTys: argTys(c.Args), receiver: types.None}, true, nil
	case ast.ExprMemberCall:
		m, _ := exprs.MemberCall(parsed.Root)
		return parsedCall{
			name:     m.Method,
			argTys:   argTys(m.Args),
			receiver: argTy(m.Receiver),
			postfix:  true,
		}, true, nil
	default:
		return parsedCall{}, false, ErrNotACall
	}
}

// SignatureHelp parses the descriptor in sp and computes signature help for
// its outermost call with the cursor in argument argIndex. A `_` argument is
// treated as not typed yet. A postfix root (`recv.fn(...)`) renders in method
// style when fn allows it. Syntax errors are reported to bag and yield a nil
// help without error.
func SignatureHelp(ctx context.Context, fs *source.FileSet, sp source.Span, cat *catalog.Catalog, argIndex int, bag *diag.Bag) (*sighelp.Help, error) {
	span, _ := trace.BeginCtx(ctx, trace.ScopePass, "sighelp")
	defer span.End(fs.Slice(sp))

	if cat == nil {
		cat = catalog.MustDefault()
	}
	call, ok, err := parseCall(fs, sp, cat, bag)
	if !ok {
		return nil, err
	}
	return sighelp.Lookup(cat, call.name, sighelp.Request{
		ArgTypes: call.argTys,
		ArgIndex: argIndex,
		Receiver: call.receiver,
		Postfix:  call.postfix,
	})
}

// ExpectedArgType parses the call descriptor in sp and returns what argument
// argIndex of its outermost call should be. The receiver of a postfix call
// counts as the first argument of the function. ok is false when the
// descriptor does not parse, names an unknown function or argIndex maps to
// no parameter.
func ExpectedArgType(ctx context.Context, fs *source.FileSet, sp source.Span, cat *catalog.Catalog, argIndex int) (types.Ty, bool) {
	span, _ := trace.BeginCtx(ctx, trace.ScopePass, "expected-arg")
	defer span.End(fs.Slice(sp))

	if cat == nil {
		cat = catalog.MustDefault()
	}
	call, ok, _ := parseCall(fs, sp, cat, diag.NewBag(1))
	if !ok {
		return types.None, false
	}
	sig, ok := cat.Lookup(call.name)
	if !ok {
		return types.None, false
	}
	args := call.argTys
	if call.postfix {
		args = append([]types.Ty{call.receiver}, args...)
		argIndex++
	}
	return callsig.ExpectedArgType(sig, args, argIndex)
}

// InferType checks the descriptor in sp and returns its type. ok is false
// on a syntax error.
func InferType(ctx context.Context, fs *source.FileSet, sp source.Span, cat *catalog.Catalog) (types.Ty, bool) {
	results, err := CheckAll(ctx, fs, []source.Span{sp}, Options{Catalog: cat, MaxDiagnostics: 1, Jobs: 1})
	if err != nil || len(results) == 0 || !results[0].Parsed {
		return types.Unknown(), false
	}
	return results[0].Type, true
}

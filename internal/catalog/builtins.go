package catalog

import (
	"errors"
	"fmt"

	"formula/internal/generics"
	"formula/internal/signature"
	"formula/internal/types"
)

// tableBuilder collects signatures and every construction error so that a
// broken table reports all of its problems at once.
type tableBuilder struct {
	sigs []*signature.FunctionSig
	errs []error
}

type shapeSpec struct {
	head, repeat, tail []signature.ParamSig
}

func params(ps ...signature.ParamSig) shapeSpec { return shapeSpec{head: ps} }

func repeatParams(head, repeat, tail []signature.ParamSig) shapeSpec {
	return shapeSpec{head: head, repeat: repeat, tail: tail}
}

func ps(ps ...signature.ParamSig) []signature.ParamSig { return ps }

func (b *tableBuilder) add(cat signature.Category, detail, name string, spec shapeSpec, ret types.Ty, gens ...signature.GenericParam) {
	shape, err := signature.NewParamShape(spec.head, spec.repeat, spec.tail)
	if err != nil {
		b.errs = append(b.errs, fmt.Errorf("builtin %s: %w", name, err))
		return
	}
	sig, err := signature.NewBuiltin(cat, detail, name, shape, ret, gens...)
	if err != nil {
		b.errs = append(b.errs, err)
		return
	}
	b.sigs = append(b.sigs, sig)
}

func (b *tableBuilder) result() ([]*signature.FunctionSig, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	return b.sigs, nil
}

func plain(id types.GenericID) signature.GenericParam {
	return signature.GenericParam{ID: id, Kind: generics.Plain}
}

func variant(id types.GenericID) signature.GenericParam {
	return signature.GenericParam{ID: id, Kind: generics.Variant}
}

var (
	p   = signature.Param
	opt = signature.Opt
)

// Builtins constructs the static builtin table in category order. Every entry
// is validated; a malformed entry fails the whole table.
func Builtins() ([]*signature.FunctionSig, error) {
	var b tableBuilder
	addGeneral(&b)
	addText(&b)
	addNumber(&b)
	addDate(&b)
	addPeople(&b)
	addList(&b)
	addSpecial(&b)
	return b.result()
}

var (
	num     = types.Number()
	str     = types.String()
	boolean = types.Boolean()
	date    = types.Date()
	t0      = types.Generic(0)
)

func addGeneral(b *tableBuilder) {
	const c = signature.General
	b.add(c, "if(condition, then, else)", "if",
		params(p("condition", boolean), p("then", t0), p("else", t0)), t0, variant(0))
	b.add(c, "ifs(condition, value, ..., default)", "ifs",
		repeatParams(nil, ps(p("condition", boolean), p("value", t0)), ps(p("default", t0))), t0, variant(0))
	b.add(c, "empty(value)", "empty", params(p("value", t0)), boolean, plain(0))
	b.add(c, "format(value)", "format", params(p("value", t0)), str, plain(0))
}

func addText(b *tableBuilder) {
	const c = signature.Text
	b.add(c, "substring(text, start, end?)", "substring",
		params(p("text", str), p("start", num), opt("end", num)), str)
	b.add(c, "contains(text, search)", "contains", params(p("text", str), p("search", str)), boolean)
	b.add(c, "test(text, regex)", "test", params(p("text", str), p("regex", str)), boolean)
	b.add(c, "match(text, regex)", "match", params(p("text", str), p("regex", str)), types.List(str))
	b.add(c, "replace(text, regex, replacement)", "replace",
		params(p("text", str), p("regex", str), p("replacement", str)), str)
	b.add(c, "replaceAll(text, regex, replacement)", "replaceAll",
		params(p("text", str), p("regex", str), p("replacement", str)), str)
	b.add(c, "lower(text)", "lower", params(p("text", str)), str)
	b.add(c, "upper(text)", "upper", params(p("text", str)), str)
	b.add(c, "trim(text)", "trim", params(p("text", str)), str)
	b.add(c, "repeat(text, times)", "repeat", params(p("text", str), p("times", num)), str)
	b.add(c, "concat(lists1, lists2, ...)", "concat",
		repeatParams(ps(p("lists1", types.List(t0))), ps(p("listsN", types.List(t0))), nil),
		types.List(t0), plain(0))
	b.add(c, "join(list, separator)", "join", params(p("list", types.List(t0)), p("separator", str)), str, plain(0))
	b.add(c, "split(text, separator)", "split", params(p("text", str), p("separator", str)), types.List(str))
}

func addNumber(b *tableBuilder) {
	const c = signature.Number
	for _, name := range []string{"add", "subtract", "multiply", "mod", "divide"} {
		b.add(c, name+"(a, b)", name, params(p("a", num), p("b", num)), num)
	}
	b.add(c, "pow(base, exp)", "pow", params(p("base", num), p("exp", num)), num)

	numbers := types.RawUnion(num, types.List(num))
	for _, name := range []string{"min", "max", "sum", "median", "mean"} {
		b.add(c, name+"(values1, values2, ...)", name, repeatParams(nil, ps(p("values", numbers)), nil), num)
	}
	b.add(c, "round(value, places?)", "round", params(p("value", num), opt("places", num)), num)
	for _, name := range []string{"abs", "ceil", "floor", "sqrt", "cbrt", "exp", "ln", "log10", "log2", "sign"} {
		b.add(c, name+"(value)", name, params(p("value", num)), num)
	}
	b.add(c, "pi()", "pi", params(), num)
	b.add(c, "e()", "e", params(), num)
	b.add(c, "toNumber(value)", "toNumber", params(p("value", t0)), num, plain(0))
}

func addDate(b *tableBuilder) {
	const c = signature.Date
	b.add(c, "now()", "now", params(), date)
	b.add(c, "today()", "today", params(), date)
	for _, name := range []string{"minute", "hour", "day", "date", "week", "month", "year"} {
		b.add(c, name+"(date)", name, params(p("date", date)), num)
	}
	b.add(c, "dateAdd(date, amount, unit)", "dateAdd", params(p("date", date), p("amount", num), p("unit", str)), date)
	b.add(c, "dateSubtract(date, amount, unit)", "dateSubtract",
		params(p("date", date), p("amount", num), p("unit", str)), date)
	b.add(c, "dateBetween(a, b, unit)", "dateBetween", params(p("a", date), p("b", date), p("unit", str)), num)
	b.add(c, "dateRange(start, end)", "dateRange", params(p("start", date), p("end", date)), date)
	b.add(c, "dateStart(range)", "dateStart", params(p("range", date)), date)
	b.add(c, "dateEnd(range)", "dateEnd", params(p("range", date)), date)
	b.add(c, "timestamp(date)", "timestamp", params(p("date", date)), num)
	b.add(c, "fromTimestamp(timestampMs)", "fromTimestamp", params(p("timestamp", num)), date)
	b.add(c, "formatDate(date, format)", "formatDate", params(p("date", date), p("format", str)), str)
	b.add(c, "parseDate(text)", "parseDate", params(p("text", str)), date)
}

func addPeople(b *tableBuilder) {
	const c = signature.People
	b.add(c, "name(person)", "name", params(p("person", t0)), str, plain(0))
	b.add(c, "email(person)", "email", params(p("person", t0)), str, plain(0))
}

func addList(b *tableBuilder) {
	const c = signature.List
	list := types.List(t0)
	b.add(c, "at(list, index)", "at", params(p("list", list), p("index", num)), t0, plain(0))
	b.add(c, "first(list)", "first", params(p("list", list)), t0, plain(0))
	b.add(c, "last(list)", "last", params(p("list", list)), t0, plain(0))
	b.add(c, "slice(list, start, end?)", "slice",
		params(p("list", list), p("start", num), opt("end", num)), list, plain(0))
	for _, name := range []string{"sort", "reverse", "unique"} {
		b.add(c, name+"(list)", name, params(p("list", list)), list, plain(0))
	}
	b.add(c, "includes(list, value)", "includes", params(p("list", list), p("value", t0)), boolean, plain(0))
}

func addSpecial(b *tableBuilder) {
	const c = signature.Special
	b.add(c, "id(page?)", "id", params(opt("page", t0)), str, plain(0))
	b.add(c, "equal(a, b)", "equal", params(p("a", t0), p("b", t0)), boolean, plain(0))
	b.add(c, "unequal(a, b)", "unequal", params(p("a", t0), p("b", t0)), boolean, plain(0))
	b.add(c, "let(var, value, expr)", "let", params(p("var", t0), p("value", t0), p("expr", t0)), t0, plain(0))
	b.add(c, "lets(var1, value1, ..., expr)", "lets",
		repeatParams(nil, ps(p("var", t0), p("value", t0)), ps(p("expr", t0))), t0, plain(0))
}

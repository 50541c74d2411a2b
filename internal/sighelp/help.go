// Package sighelp computes signature help for a call being edited: the
// rendered signature split into display segments, with repeat groups
// numbered per cycle and generic parameters shown as the argument types
// inferred so far, plus the parameter the cursor is on.
package sighelp

import (
	"fmt"
	"strings"

	"fortio.org/safecast"

	"formula/internal/callsig"
	"formula/internal/catalog"
	"formula/internal/signature"
	"formula/internal/types"
)

// SegmentKind tags a display segment.
type SegmentKind string

const (
	SegName       SegmentKind = "Name"
	SegPunct      SegmentKind = "Punct"
	SegSeparator  SegmentKind = "Separator"
	SegEllipsis   SegmentKind = "Ellipsis"
	SegArrow      SegmentKind = "Arrow"
	SegParam      SegmentKind = "Param"
	SegReturnType SegmentKind = "ReturnType"
)

// Segment is one styled piece of a rendered signature.
type Segment struct {
	Kind SegmentKind `json:"kind"`
	Text string      `json:"text,omitempty"`
	Name string      `json:"name,omitempty"`
	Ty   string      `json:"ty,omitempty"`
	// ParamIndex is nil for the method-style receiver.
	ParamIndex *uint32 `json:"param_index,omitempty"`
}

// String renders the segment as plain text.
func (s Segment) String() string {
	switch s.Kind {
	case SegEllipsis:
		return "..."
	case SegParam:
		return s.Name + ": " + s.Ty
	default:
		return s.Text
	}
}

// ParameterInfo is a parameter label in the flattened form editors expect.
type ParameterInfo struct {
	Label string `json:"label"`
}

// Help is the signature help for one call.
type Help struct {
	Segments        []Segment       `json:"segments"`
	Label           string          `json:"label"`
	Parameters      []ParameterInfo `json:"parameters"`
	ActiveParameter int             `json:"active_parameter"`
}

// Request describes the call under the cursor.
type Request struct {
	// ArgTypes are the argument types typed so far, excluding the receiver
	// of a postfix call; types.None marks an empty argument.
	ArgTypes []types.Ty
	// ArgIndex is the argument the cursor is in, excluding the receiver.
	ArgIndex int
	// Receiver is the receiver type of receiver.fn(...); None for a plain call.
	Receiver types.Ty
	Postfix  bool
}

// UnknownFunctionError is returned by Lookup for a name missing from the catalog.
type UnknownFunctionError struct{ Name string }

func (e *UnknownFunctionError) Error() string { return fmt.Sprintf("unknown function: %s", e.Name) }

// Lookup computes help for a call of name. A postfix request is rendered in
// method style only when name is postfix-capable.
func Lookup(cat *catalog.Catalog, name string, req Request) (*Help, error) {
	sig, ok := cat.Lookup(name)
	if !ok {
		return nil, &UnknownFunctionError{Name: name}
	}
	methodStyle := req.Postfix && cat.IsPostfixCapable(name)
	argTys := req.ArgTypes
	if methodStyle {
		argTys = append([]types.Ty{req.Receiver}, req.ArgTypes...)
	}
	h := Compute(sig, argTys, req.ArgIndex, methodStyle)
	return &h, nil
}

// Compute renders sig for a call with argument types argTys (receiver first
// in method style) while the cursor is in argument argIndex, counted without
// the receiver.
func Compute(sig *signature.FunctionSig, argTys []types.Ty, argIndex int, methodStyle bool) Help {
	argIndexFull := max(argIndex, 0)
	if methodStyle {
		argIndexFull++
	}
	total := max(len(argTys), argIndexFull+1)
	inst := callsig.InstantiateCall(sig, argTys, total)
	r := render(sig, argTys, total, inst.Params, methodStyle)
	segs := segments(sig.Name, r, inst.Ret, methodStyle)

	h := Help{
		Segments:        segs,
		ActiveParameter: callsig.ActiveParameter(sig, argIndexFull, total, methodStyle),
	}
	var sb strings.Builder
	for _, s := range segs {
		sb.WriteString(s.String())
		if s.Kind == SegParam && s.ParamIndex != nil {
			h.Parameters = append(h.Parameters, ParameterInfo{Label: s.String()})
		}
	}
	h.Label = sb.String()
	return h
}

func paramIndex(i int) *uint32 {
	idx, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(fmt.Errorf("parameter index overflow: %w", err))
	}
	return &idx
}

func segments(name string, r rendered, ret types.Ty, methodStyle bool) []Segment {
	var out []Segment
	if methodStyle && r.receiver != nil {
		out = append(out,
			Segment{Kind: SegPunct, Text: "("},
			Segment{Kind: SegParam, Name: r.receiver.name, Ty: r.receiver.ty},
			Segment{Kind: SegPunct, Text: ")"},
			Segment{Kind: SegPunct, Text: "."},
		)
	}
	out = append(out,
		Segment{Kind: SegName, Text: name},
		Segment{Kind: SegPunct, Text: "("},
	)
	for i, s := range r.slots {
		if i > 0 {
			out = append(out, Segment{Kind: SegSeparator, Text: ", "})
		}
		if s.ellipsis {
			out = append(out, Segment{Kind: SegEllipsis})
			continue
		}
		out = append(out, Segment{Kind: SegParam, Name: s.name, Ty: s.ty, ParamIndex: paramIndex(s.index)})
	}
	return append(out,
		Segment{Kind: SegPunct, Text: ")"},
		Segment{Kind: SegArrow, Text: " -> "},
		Segment{Kind: SegReturnType, Text: types.Label(ret)},
	)
}

// Package meta is the read-only metadata model consumed by the binding
// generator: window types, their annotated methods and the type graph of
// parameters and results.
//
// The model is closed. A Type is exactly one of Primitive, Sequence, Async,
// *Composite or Unknown; generator passes switch over it exhaustively.
package meta

import (
	"context"

	"github.com/GriffinCanCode/webbridge/internal/shared/naming"
)

// Provider yields a closed snapshot of annotated windows.
type Provider interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// Snapshot is everything one generator run sees.
type Snapshot struct {
	Windows []Window
}

// Window is a native window type exposing bindings.
type Window struct {
	Name string
	// Package and Dir are set when the window was read from Go source and Go
	// wiring can be generated for it.
	Package string
	Dir     string
	// Imports maps package names used in parameter types to import paths.
	Imports map[string]string
	Methods []Method
}

// Namespace is the child object name of the window's scoped stubs.
func (w Window) Namespace() string {
	return naming.LowerCamel(w.Name)
}

// Method is one annotated method.
type Method struct {
	Name     string
	Override string
	Global   bool
	Params   []Param
	Result   Type
	// ResultGoType is the Go source text of the result (or of the channel
	// element for async results).
	ResultGoType string
	HasContext   bool
	HasError     bool
	Doc          string
}

// Exposed returns the page-side name.
func (m Method) Exposed() string {
	if m.Override != "" {
		return m.Override
	}
	return naming.LowerCamel(m.Name)
}

// Async reports whether the result is an async wrapper.
func (m Method) Async() bool {
	_, ok := m.Result.(Async)
	return ok
}

// Param is one positional parameter.
type Param struct {
	Name   string
	Type   Type
	GoType string
}

// Type is a node of the parameter/result type graph.
type Type interface {
	isType()
}

// PrimitiveKind enumerates wire primitives.
type PrimitiveKind int

const (
	String PrimitiveKind = iota
	Number
	Boolean
	Void
)

func (k PrimitiveKind) String() string {
	switch k {
	case String:
		return "string"
	case Number:
		return "number"
	case Boolean:
		return "boolean"
	default:
		return "void"
	}
}

// Primitive is a scalar wire value.
type Primitive struct {
	Kind PrimitiveKind
}

// Sequence is an ordered list of Elem.
type Sequence struct {
	Elem Type
}

// Async is a deferred Elem; stubs always return a Promise so it flattens to
// its element.
type Async struct {
	Elem Type
}

// Composite is a named record. ID is its identity across the whole run;
// Fields may be filled after the node is first referenced, which is how
// self-referential records are represented.
type Composite struct {
	ID     string
	Name   string
	Fields []Field
}

// Unknown is a type the provider could not resolve. Hint is informational.
type Unknown struct {
	Hint string
}

func (Primitive) isType()  {}
func (Sequence) isType()   {}
func (Async) isType()      {}
func (*Composite) isType() {}
func (Unknown) isType()    {}

// Field is one member of a composite.
type Field struct {
	Name     string
	Type     Type
	Static   bool
	ReadOnly bool
	Const    bool
	Indexer  bool
	Hidden   bool
}

// Serializable reports whether the field is part of the wire shape:
// mutable, instance-level, visible, not an indexer.
func (f Field) Serializable() bool {
	return !f.Static && !f.ReadOnly && !f.Const && !f.Indexer && !f.Hidden
}

// Common primitive nodes.
var (
	StringType  = Primitive{Kind: String}
	NumberType  = Primitive{Kind: Number}
	BooleanType = Primitive{Kind: Boolean}
	VoidType    = Primitive{Kind: Void}
)

// Static is a Provider over a fixed snapshot.
type Static struct {
	Snapshot *Snapshot
}

func (s Static) Load(context.Context) (*Snapshot, error) {
	return s.Snapshot, nil
}

package manifest

import (
	"context"
	"fmt"
	"strings"

	"github.com/GriffinCanCode/webbridge/internal/bindgen/meta"
	"github.com/GriffinCanCode/webbridge/internal/shared/naming"
)

// Provider implements meta.Provider over a manifest file.
type Provider struct {
	Path string
}

func (p Provider) Load(context.Context) (*meta.Snapshot, error) {
	m, err := ReadFile(p.Path)
	if err != nil {
		return nil, err
	}
	return m.Snapshot()
}

// Snapshot converts the manifest into generator metadata.
func (m *Manifest) Snapshot() (*meta.Snapshot, error) {
	records := make(map[string]*meta.Composite, len(m.Types))
	for _, r := range m.Types {
		if r.Name == "" {
			return nil, fmt.Errorf("manifest: record without name")
		}
		if _, dup := records[r.Name]; dup {
			return nil, fmt.Errorf("manifest: record %s declared twice", r.Name)
		}
		id := r.ID
		if id == "" {
			id = r.Name
		}
		records[r.Name] = &meta.Composite{ID: id, Name: r.Name}
	}
	// fields are filled once every record exists so references may cycle
	for _, r := range m.Types {
		c := records[r.Name]
		for _, f := range r.Fields {
			c.Fields = append(c.Fields, meta.Field{
				Name:     f.Name,
				Type:     ParseType(f.Type, records),
				Static:   f.Static,
				ReadOnly: f.ReadOnly,
				Const:    f.Const,
				Indexer:  f.Indexer,
				Hidden:   f.Hidden,
			})
		}
	}

	snap := &meta.Snapshot{}
	for _, w := range m.Windows {
		if w.Name == "" {
			return nil, fmt.Errorf("manifest: window without name")
		}
		mw := meta.Window{Name: w.Name}
		for _, method := range w.Methods {
			mm := meta.Method{
				Name:     method.Name,
				Override: method.Expose,
				Global:   method.Global,
				Result:   ParseType(method.Returns, records),
				Doc:      method.Doc,
			}
			if method.Returns == "" {
				mm.Result = meta.VoidType
			}
			for _, p := range method.Params {
				if err := naming.ValidateParameter(p.Name); err != nil {
					return nil, fmt.Errorf("manifest: %s.%s: %w", w.Name, method.Name, err)
				}
				mm.Params = append(mm.Params, meta.Param{Name: p.Name, Type: ParseType(p.Type, records)})
			}
			mw.Methods = append(mw.Methods, mm)
		}
		snap.Windows = append(snap.Windows, mw)
	}
	return snap, nil
}

// ParseType reads a type expression. Names that are neither primitives nor
// declared records resolve to meta.Unknown.
func ParseType(expr string, records map[string]*meta.Composite) meta.Type {
	expr = strings.TrimSpace(expr)
	switch {
	case strings.HasSuffix(expr, "[]"):
		return meta.Sequence{Elem: ParseType(strings.TrimSuffix(expr, "[]"), records)}
	case strings.HasPrefix(expr, "async<") && strings.HasSuffix(expr, ">"):
		return meta.Async{Elem: ParseType(expr[len("async<"):len(expr)-1], records)}
	}
	switch expr {
	case "string":
		return meta.StringType
	case "number":
		return meta.NumberType
	case "boolean":
		return meta.BooleanType
	case "void":
		return meta.VoidType
	case "", "any":
		return meta.Unknown{}
	}
	if c, ok := records[expr]; ok {
		return c
	}
	return meta.Unknown{Hint: expr}
}

// FormatType renders a type expression.
func FormatType(t meta.Type) string {
	switch v := t.(type) {
	case meta.Primitive:
		return v.Kind.String()
	case meta.Sequence:
		return FormatType(v.Elem) + "[]"
	case meta.Async:
		return "async<" + FormatType(v.Elem) + ">"
	case *meta.Composite:
		return v.Name
	default:
		return "any"
	}
}

// FromSnapshot serializes a snapshot, declaring every reachable record once.
func FromSnapshot(snap *meta.Snapshot) *Manifest {
	m := &Manifest{}
	seen := make(map[string]bool)

	var collect func(t meta.Type)
	collect = func(t meta.Type) {
		switch v := t.(type) {
		case meta.Sequence:
			collect(v.Elem)
		case meta.Async:
			collect(v.Elem)
		case *meta.Composite:
			if seen[v.ID] {
				return
			}
			seen[v.ID] = true
			idx := len(m.Types)
			m.Types = append(m.Types, Record{Name: v.Name, ID: v.ID})
			for _, f := range v.Fields {
				m.Types[idx].Fields = append(m.Types[idx].Fields, Field{
					Name:     f.Name,
					Type:     FormatType(f.Type),
					Static:   f.Static,
					ReadOnly: f.ReadOnly,
					Const:    f.Const,
					Indexer:  f.Indexer,
					Hidden:   f.Hidden,
				})
				collect(f.Type)
			}
		}
	}

	for _, w := range snap.Windows {
		mw := Window{Name: w.Name}
		for _, method := range w.Methods {
			mm := Method{
				Name:    method.Name,
				Expose:  method.Override,
				Global:  method.Global,
				Returns: FormatType(method.Result),
				Doc:     method.Doc,
			}
			collect(method.Result)
			for _, p := range method.Params {
				mm.Params = append(mm.Params, Param{Name: p.Name, Type: FormatType(p.Type)})
				collect(p.Type)
			}
			mw.Methods = append(mw.Methods, mm)
		}
		m.Windows = append(m.Windows, mw)
	}
	return m
}

package source

import (
	"go/ast"
	"go/types"
	"reflect"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/webbridge/internal/bindgen/meta"
)

var builtins = map[string]meta.Type{
	"string":  meta.StringType,
	"bool":    meta.BooleanType,
	"int":     meta.NumberType,
	"int8":    meta.NumberType,
	"int16":   meta.NumberType,
	"int32":   meta.NumberType,
	"int64":   meta.NumberType,
	"uint":    meta.NumberType,
	"uint8":   meta.NumberType,
	"uint16":  meta.NumberType,
	"uint32":  meta.NumberType,
	"uint64":  meta.NumberType,
	"uintptr": meta.NumberType,
	"byte":    meta.NumberType,
	"rune":    meta.NumberType,
	"float32": meta.NumberType,
	"float64": meta.NumberType,
}

var wellKnown = map[string]meta.Type{
	"time.Time":       meta.StringType,
	"time.Duration":   meta.NumberType,
	"json.Number":     meta.NumberType,
	"json.RawMessage": meta.Unknown{Hint: "json.RawMessage"},
}

// resolver maps type expressions of one package onto the meta type graph.
type resolver struct {
	pkgID string
	specs map[string]*ast.TypeSpec
	// shared across packages of a run so identities stay unique
	composites map[string]*meta.Composite
	named      map[string]bool
}

func newResolver(pkgID string, specs map[string]*ast.TypeSpec, composites map[string]*meta.Composite) *resolver {
	return &resolver{
		pkgID:      pkgID,
		specs:      specs,
		composites: composites,
		named:      make(map[string]bool),
	}
}

func (r *resolver) resolve(expr ast.Expr) meta.Type {
	switch e := expr.(type) {
	case *ast.Ident:
		return r.ident(e.Name)
	case *ast.ParenExpr:
		return r.resolve(e.X)
	case *ast.StarExpr:
		return r.resolve(e.X)
	case *ast.SelectorExpr:
		name := types.ExprString(e)
		if t, ok := wellKnown[name]; ok {
			return t
		}
		return meta.Unknown{Hint: name}
	case *ast.ArrayType:
		if e.Len == nil && isByte(e.Elt) {
			// encoding/json renders []byte as base64 text
			return meta.StringType
		}
		return meta.Sequence{Elem: r.resolve(e.Elt)}
	case *ast.ChanType:
		return meta.Async{Elem: r.resolve(e.Value)}
	default:
		return meta.Unknown{Hint: types.ExprString(expr)}
	}
}

func (r *resolver) ident(name string) meta.Type {
	if t, ok := builtins[name]; ok {
		return t
	}
	spec, ok := r.specs[name]
	if !ok || spec.TypeParams != nil {
		return meta.Unknown{Hint: name}
	}
	if st, ok := spec.Type.(*ast.StructType); ok {
		return r.composite(name, st)
	}

	// named non-struct: resolve the underlying type once
	if r.named[name] {
		return meta.Unknown{Hint: name}
	}
	r.named[name] = true
	defer delete(r.named, name)
	return r.resolve(spec.Type)
}

func (r *resolver) composite(name string, st *ast.StructType) *meta.Composite {
	id := r.pkgID + "." + name
	if c, ok := r.composites[id]; ok {
		return c
	}
	c := &meta.Composite{ID: id, Name: name}
	r.composites[id] = c
	c.Fields = r.fields(st)
	return c
}

func (r *resolver) fields(st *ast.StructType) []meta.Field {
	var out []meta.Field
	for _, f := range st.Fields.List {
		tagName, hidden := jsonTag(f.Tag)

		if len(f.Names) == 0 {
			// embedded struct without a json name is inlined
			if tagName == "" && !hidden {
				if c, ok := r.resolve(f.Type).(*meta.Composite); ok {
					out = append(out, c.Fields...)
					continue
				}
			}
			name := embeddedName(f.Type)
			out = append(out, meta.Field{
				Name:   firstNonEmpty(tagName, name),
				Type:   r.resolve(f.Type),
				Hidden: hidden || !ast.IsExported(name),
			})
			continue
		}

		t := r.resolve(f.Type)
		for _, n := range f.Names {
			out = append(out, meta.Field{
				Name:   firstNonEmpty(tagName, n.Name),
				Type:   t,
				Hidden: hidden || !n.IsExported(),
			})
		}
	}
	return out
}

func jsonTag(lit *ast.BasicLit) (name string, hidden bool) {
	if lit == nil {
		return "", false
	}
	raw, err := strconv.Unquote(lit.Value)
	if err != nil {
		return "", false
	}
	tag := reflect.StructTag(raw).Get("json")
	if tag == "-" {
		return "", true
	}
	name, _, _ = strings.Cut(tag, ",")
	return name, false
}

func embeddedName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return embeddedName(e.X)
	case *ast.SelectorExpr:
		return e.Sel.Name
	case *ast.Ident:
		return e.Name
	default:
		return types.ExprString(expr)
	}
}

func isByte(expr ast.Expr) bool {
	id, ok := expr.(*ast.Ident)
	return ok && (id.Name == "byte" || id.Name == "uint8")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

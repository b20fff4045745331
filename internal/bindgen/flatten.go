package bindgen

import (
	"github.com/GriffinCanCode/webbridge/internal/bindgen/meta"
)

// Flattener turns type nodes into TypeScript references, collecting every
// reachable composite exactly once per run.
type Flattener struct {
	visited map[string]bool
	decls   []*meta.Composite
}

func NewFlattener() *Flattener {
	return &Flattener{visited: make(map[string]bool)}
}

// Ref returns the TypeScript text referring to t.
func (f *Flattener) Ref(t meta.Type) string {
	switch v := t.(type) {
	case meta.Primitive:
		return v.Kind.String()
	case meta.Sequence:
		return f.Ref(v.Elem) + "[]"
	case meta.Async:
		return f.Ref(v.Elem)
	case *meta.Composite:
		f.declare(v)
		return v.Name
	default:
		return "any"
	}
}

// Declarations lists composites in first-reference order.
func (f *Flattener) Declarations() []*meta.Composite {
	return f.decls
}

func (f *Flattener) declare(c *meta.Composite) {
	if f.visited[c.ID] {
		return
	}
	// marked before walking fields so self references terminate
	f.visited[c.ID] = true
	f.decls = append(f.decls, c)
	for _, field := range c.Fields {
		if field.Serializable() {
			f.Ref(field.Type)
		}
	}
}

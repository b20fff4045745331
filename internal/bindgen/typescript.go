package bindgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/webbridge/internal/bindgen/meta"
	"github.com/GriffinCanCode/webbridge/internal/shared/naming"
)

const header = "// Code generated by bindgen. DO NOT EDIT.\n"

type signature struct {
	name string
	text string
}

// Declarations renders index.d.ts for the snapshot.
func Declarations(snap *meta.Snapshot, namespace string) string {
	f := NewFlattener()

	type windowDecl struct {
		name    string
		ns      string
		members []signature
	}
	var windows []windowDecl
	var globals []signature

	for _, w := range snap.Windows {
		wd := windowDecl{name: w.Name, ns: w.Namespace()}
		for _, m := range w.Methods {
			sig := signature{name: m.Exposed(), text: methodSignature(f, m)}
			if m.Global {
				globals = upsert(globals, sig)
				continue
			}
			wd.members = append(wd.members, sig)
		}
		windows = append(windows, wd)
	}

	var sb strings.Builder
	sb.WriteString(header)

	for _, c := range f.Declarations() {
		fmt.Fprintf(&sb, "\nexport interface %s {\n", c.Name)
		for _, field := range c.Fields {
			if !field.Serializable() {
				continue
			}
			fmt.Fprintf(&sb, "  %s: %s;\n", propertyName(field.Name), f.Ref(field.Type))
		}
		sb.WriteString("}\n")
	}

	for _, wd := range windows {
		fmt.Fprintf(&sb, "\nexport interface %s {\n", wd.name)
		for _, sig := range wd.members {
			fmt.Fprintf(&sb, "  %s: %s;\n", sig.name, sig.text)
		}
		sb.WriteString("}\n")
	}

	iface := upperFirst(namespace)
	sb.WriteString("\ndeclare global {\n")
	fmt.Fprintf(&sb, "  interface %s {\n", iface)
	sb.WriteString("    sendMessage: (message: string) => void;\n")
	sb.WriteString("    addListener: (listener: (message: string) => void) => void;\n")
	sb.WriteString("    removeListener: (listener: (message: string) => void) => void;\n")
	sb.WriteString("    invoke: (name: string, args: any[]) => Promise<any>;\n")
	sb.WriteString("    pendingCount: () => number;\n")
	sb.WriteString("    bindings: {\n")
	seen := make(map[string]bool)
	for _, wd := range windows {
		if seen[wd.ns] {
			continue
		}
		seen[wd.ns] = true
		fmt.Fprintf(&sb, "      %s: %s;\n", wd.ns, wd.name)
	}
	for _, sig := range globals {
		fmt.Fprintf(&sb, "      %s: %s;\n", sig.name, sig.text)
	}
	sb.WriteString("    };\n")
	sb.WriteString("  }\n\n")
	sb.WriteString("  interface Window {\n")
	fmt.Fprintf(&sb, "    %s: %s;\n", namespace, iface)
	sb.WriteString("  }\n")
	sb.WriteString("}\n\nexport {};\n")
	return sb.String()
}

// methodSignature renders "(a: number) => Promise<R>". The result is
// flattened before the parameters.
func methodSignature(f *Flattener, m meta.Method) string {
	result := f.Ref(m.Result)
	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = p.Name + ": " + f.Ref(p.Type)
	}
	return fmt.Sprintf("(%s) => Promise<%s>", strings.Join(params, ", "), result)
}

// upsert replaces an existing signature of the same name in place, so the
// last global registration wins.
func upsert(list []signature, sig signature) []signature {
	for i := range list {
		if list[i].name == sig.name {
			list[i] = sig
			return list
		}
	}
	return append(list, sig)
}

func propertyName(name string) string {
	if naming.IsIdentifier(name) {
		return name
	}
	return strconv.Quote(name)
}

func upperFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

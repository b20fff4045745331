package bindgen

import (
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/GriffinCanCode/webbridge/internal/bindgen/meta"
	"github.com/GriffinCanCode/webbridge/internal/bindgen/source"
)

// GeneratedFile is the per-package wiring file name.
const GeneratedFile = source.GeneratedFile

const (
	protocolImport = "github.com/GriffinCanCode/webbridge/internal/bridge/protocol"
	registryImport = "github.com/GriffinCanCode/webbridge/internal/bridge/registry"
)

// Wiring renders the Go binding tables for windows declared in one package.
// Every window must carry the same Package.
func Wiring(windows []meta.Window) ([]byte, error) {
	if len(windows) == 0 {
		return nil, fmt.Errorf("bindgen: no windows to wire")
	}
	pkg := windows[0].Package

	imports := map[string]string{
		"context":  "context",
		"protocol": protocolImport,
		"registry": registryImport,
	}
	var body strings.Builder
	for _, w := range windows {
		if w.Package != pkg {
			return nil, fmt.Errorf("bindgen: %s is in package %s, want %s", w.Name, w.Package, pkg)
		}
		for _, m := range w.Methods {
			for _, p := range m.Params {
				if err := qualifiers(p.GoType, w.Imports, imports); err != nil {
					return nil, fmt.Errorf("bindgen: %s.%s: %w", w.Name, m.Name, err)
				}
			}
			if m.Async() {
				if err := qualifiers(m.ResultGoType, w.Imports, imports); err != nil {
					return nil, fmt.Errorf("bindgen: %s.%s: %w", w.Name, m.Name, err)
				}
			}
		}
		writeTable(&body, w)
	}

	var src strings.Builder
	src.WriteString(header)
	fmt.Fprintf(&src, "\npackage %s\n\nimport (\n", pkg)
	var std, others []string
	for name, importPath := range imports {
		if isStdlib(importPath) {
			std = append(std, name)
		} else {
			others = append(others, name)
		}
	}
	writeImports(&src, std, imports)
	if len(std) > 0 && len(others) > 0 {
		src.WriteString("\n")
	}
	writeImports(&src, others, imports)
	src.WriteString(")\n")
	src.WriteString(body.String())

	out, err := format.Source([]byte(src.String()))
	if err != nil {
		return nil, fmt.Errorf("bindgen: format %s wiring: %w", pkg, err)
	}
	return out, nil
}

func writeImports(sb *strings.Builder, names []string, imports map[string]string) {
	sort.Slice(names, func(i, j int) bool { return imports[names[i]] < imports[names[j]] })
	for _, name := range names {
		importPath := imports[name]
		if path.Base(importPath) == name {
			fmt.Fprintf(sb, "\t%s\n", strconv.Quote(importPath))
			continue
		}
		fmt.Fprintf(sb, "\t%s %s\n", name, strconv.Quote(importPath))
	}
}

// isStdlib reports whether the first path element lacks a dot.
func isStdlib(importPath string) bool {
	first, _, _ := strings.Cut(importPath, "/")
	return !strings.Contains(first, ".")
}

func writeTable(sb *strings.Builder, w meta.Window) {
	fmt.Fprintf(sb, "\n// BridgeBindings returns the binding table of %s.\n", w.Name)
	fmt.Fprintf(sb, "func (win *%s) BridgeBindings() []registry.Binding {\n", w.Name)
	sb.WriteString("return []registry.Binding{\n")
	for _, m := range w.Methods {
		params := make([]string, len(m.Params))
		for i, p := range m.Params {
			params[i] = strconv.Quote(p.Name)
		}
		scope := "registry.ScopeWindow"
		if m.Global {
			scope = "registry.ScopeGlobal"
		}
		sb.WriteString("{\n")
		fmt.Fprintf(sb, "Name: %s,\n", strconv.Quote(m.Exposed()))
		fmt.Fprintf(sb, "Params: []string{%s},\n", strings.Join(params, ", "))
		fmt.Fprintf(sb, "Scope: %s,\n", scope)
		if m.Async() {
			sb.WriteString("Async: true,\n")
		}
		sb.WriteString("Handler: func(ctx context.Context, args protocol.Args) (any, error) {\n")
		writeCall(sb, m)
		sb.WriteString("},\n},\n")
	}
	sb.WriteString("}\n}\n")
}

func writeCall(sb *strings.Builder, m meta.Method) {
	args := make([]string, 0, len(m.Params)+1)
	if m.HasContext {
		args = append(args, "ctx")
	}
	for i, p := range m.Params {
		fmt.Fprintf(sb, "var p%d %s\n", i, p.GoType)
		fmt.Fprintf(sb, "args.Decode(%d, &p%d)\n", i, i)
		args = append(args, fmt.Sprintf("p%d", i))
	}
	call := fmt.Sprintf("win.%s(%s)", m.Name, strings.Join(args, ", "))

	void := isVoid(m.Result)
	switch {
	case void && !m.HasError:
		fmt.Fprintf(sb, "%s\nreturn nil, nil\n", call)
	case void:
		fmt.Fprintf(sb, "return nil, %s\n", call)
	case m.Async() && m.HasError:
		fmt.Fprintf(sb, "ch, err := %s\nif err != nil {\nreturn nil, err\n}\n", call)
		fmt.Fprintf(sb, "return registry.Receive[%s](ctx, ch)\n", m.ResultGoType)
	case m.Async():
		fmt.Fprintf(sb, "return registry.Receive[%s](ctx, %s)\n", m.ResultGoType, call)
	case m.HasError:
		fmt.Fprintf(sb, "v, err := %s\nif err != nil {\nreturn nil, err\n}\nreturn v, nil\n", call)
	default:
		fmt.Fprintf(sb, "return %s, nil\n", call)
	}
}

func isVoid(t meta.Type) bool {
	p, ok := t.(meta.Primitive)
	return ok && p.Kind == meta.Void
}

// qualifiers adds the imports a Go type expression refers to.
func qualifiers(goType string, known, into map[string]string) error {
	if goType == "" {
		return nil
	}
	expr, err := parser.ParseExpr(goType)
	if err != nil {
		return fmt.Errorf("parse type %q: %w", goType, err)
	}
	var missing error
	ast.Inspect(expr, func(n ast.Node) bool {
		sel, ok := n.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		id, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		importPath, ok := known[id.Name]
		if !ok {
			missing = fmt.Errorf("no import for %s in %s", id.Name, goType)
			return false
		}
		into[id.Name] = importPath
		return false
	})
	return missing
}

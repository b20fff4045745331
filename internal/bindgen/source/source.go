package source

import (
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webbridge/internal/bindgen/meta"
	"github.com/GriffinCanCode/webbridge/internal/shared/naming"
)

// DefaultBase is the embedded type marking a window.
const DefaultBase = "window.Base"

// Generated wiring files are never scanned.
const GeneratedFile = "zz_bridge_bindings.go"

var ErrNoSources = errors.New("source: no Go files matched")

// Config selects the sources to scan.
type Config struct {
	Dir     string
	Include []string
	Exclude []string
	Base    string
}

func (c Config) withDefaults() Config {
	if len(c.Include) == 0 {
		c.Include = []string{"**/*.go"}
	}
	c.Exclude = append([]string{"**/*_test.go", "**/" + GeneratedFile, "**/testdata/**", "**/vendor/**"}, c.Exclude...)
	if c.Base == "" {
		c.Base = DefaultBase
	}
	return c
}

// Provider implements meta.Provider over a source tree.
type Provider struct {
	config Config
	logger *zap.Logger
}

// New creates a source provider.
func New(config Config, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{config: config.withDefaults(), logger: logger}
}

// Load scans the tree and returns every window with annotated methods.
func (p *Provider) Load(ctx context.Context) (*meta.Snapshot, error) {
	root, err := filepath.Abs(p.config.Dir)
	if err != nil {
		return nil, err
	}
	dirs, err := p.discover(ctx, root)
	if err != nil {
		return nil, err
	}
	if len(dirs) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoSources, root)
	}

	names := make([]string, 0, len(dirs))
	for dir := range dirs {
		names = append(names, dir)
	}
	sort.Strings(names)

	snap := &meta.Snapshot{}
	composites := make(map[string]*meta.Composite)
	for _, dir := range names {
		rel, _ := filepath.Rel(root, dir)
		windows, err := p.scanDir(dir, filepath.ToSlash(rel), dirs[dir], composites)
		if err != nil {
			return nil, err
		}
		snap.Windows = append(snap.Windows, windows...)
	}

	p.logger.Debug("Scanned sources",
		zap.String("root", root),
		zap.Int("packages", len(names)),
		zap.Int("windows", len(snap.Windows)))
	return snap, nil
}

// discover walks root and groups matching files by directory.
func (p *Provider) discover(ctx context.Context, root string) (map[string][]string, error) {
	var mu sync.Mutex
	dirs := make(map[string][]string)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(file string, d os.DirEntry, err error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err != nil || d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, file)
		if err != nil {
			return nil
		}
		if !p.matches(filepath.ToSlash(rel)) {
			return nil
		}
		mu.Lock()
		dir := filepath.Dir(file)
		dirs[dir] = append(dirs[dir], file)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	for _, files := range dirs {
		sort.Strings(files)
	}
	return dirs, nil
}

func (p *Provider) matches(rel string) bool {
	if path.Ext(rel) != ".go" {
		return false
	}
	included := false
	for _, pattern := range p.config.Include {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			included = true
			break
		}
	}
	if !included {
		return false
	}
	for _, pattern := range p.config.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return false
		}
	}
	return true
}

type parsedPackage struct {
	name    string
	files   []*ast.File
	specs   map[string]*ast.TypeSpec
	methods map[string][]*ast.FuncDecl
	// file of each method, for import lookup
	owner map[*ast.FuncDecl]*ast.File
}

func (p *Provider) scanDir(dir, rel string, files []string, composites map[string]*meta.Composite) ([]meta.Window, error) {
	fset := token.NewFileSet()
	pkg := &parsedPackage{
		specs:   make(map[string]*ast.TypeSpec),
		methods: make(map[string][]*ast.FuncDecl),
		owner:   make(map[*ast.FuncDecl]*ast.File),
	}

	for _, file := range files {
		f, err := parser.ParseFile(fset, file, nil, parser.ParseComments|parser.SkipObjectResolution)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		if pkg.name == "" {
			pkg.name = f.Name.Name
		} else if f.Name.Name != pkg.name {
			p.logger.Warn("Skipping file from other package",
				zap.String("file", file),
				zap.String("package", f.Name.Name))
			continue
		}
		pkg.add(f)
	}

	// type identity is the package directory relative to the scan root
	pkgID := rel
	if rel == "." {
		pkgID = pkg.name
	}
	res := newResolver(pkgID, pkg.specs, composites)
	var windows []meta.Window
	for _, f := range pkg.files {
		for _, decl := range f.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, s := range gen.Specs {
				spec := s.(*ast.TypeSpec)
				if !embeds(spec, p.config.Base) {
					continue
				}
				w, err := p.window(fset, dir, pkg, spec.Name.Name, res)
				if err != nil {
					return nil, err
				}
				if len(w.Methods) > 0 {
					windows = append(windows, w)
				}
			}
		}
	}
	return windows, nil
}

func (pkg *parsedPackage) add(f *ast.File) {
	pkg.files = append(pkg.files, f)
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, s := range d.Specs {
				spec := s.(*ast.TypeSpec)
				pkg.specs[spec.Name.Name] = spec
			}
		case *ast.FuncDecl:
			if d.Recv == nil || len(d.Recv.List) == 0 {
				continue
			}
			recv := receiverName(d.Recv.List[0].Type)
			pkg.methods[recv] = append(pkg.methods[recv], d)
			pkg.owner[d] = f
		}
	}
}

func (p *Provider) window(fset *token.FileSet, dir string, pkg *parsedPackage, name string, res *resolver) (meta.Window, error) {
	w := meta.Window{
		Name:    name,
		Package: pkg.name,
		Dir:     dir,
		Imports: make(map[string]string),
	}
	for _, fn := range pkg.methods[name] {
		d, ok, err := parseDirective(fn.Doc)
		if err != nil {
			return w, fmt.Errorf("%s: %w", fset.Position(fn.Pos()), err)
		}
		if !ok {
			continue
		}
		if !fn.Name.IsExported() {
			return w, fmt.Errorf("%s: %s.%s must be exported to be bound", fset.Position(fn.Pos()), name, fn.Name.Name)
		}
		m, err := method(fn, d, res)
		if err != nil {
			return w, fmt.Errorf("%s: %s.%s: %w", fset.Position(fn.Pos()), name, fn.Name.Name, err)
		}
		for alias, importPath := range fileImports(pkg.owner[fn]) {
			w.Imports[alias] = importPath
		}
		w.Methods = append(w.Methods, m)
	}
	return w, nil
}

func method(fn *ast.FuncDecl, d directive, res *resolver) (meta.Method, error) {
	m := meta.Method{
		Name:     fn.Name.Name,
		Override: d.name,
		Global:   d.global,
		Doc:      strings.TrimSpace(fn.Doc.Text()),
	}

	var params []*ast.Field
	if fn.Type.Params != nil {
		params = fn.Type.Params.List
	}
	for i, field := range params {
		if _, ok := field.Type.(*ast.Ellipsis); ok {
			return m, errors.New("variadic parameters are not supported")
		}
		goType := types.ExprString(field.Type)
		if i == 0 && goType == "context.Context" && len(field.Names) <= 1 {
			m.HasContext = true
			continue
		}
		t := res.resolve(field.Type)
		names := field.Names
		if len(names) == 0 {
			names = []*ast.Ident{nil}
		}
		for _, n := range names {
			pname := fmt.Sprintf("arg%d", len(m.Params))
			if n != nil && n.Name != "_" {
				pname = n.Name
			}
			if err := naming.ValidateParameter(pname); err != nil {
				return m, err
			}
			m.Params = append(m.Params, meta.Param{Name: pname, Type: t, GoType: goType})
		}
	}

	var results []ast.Expr
	if fn.Type.Results != nil {
		for _, field := range fn.Type.Results.List {
			n := max(len(field.Names), 1)
			for range n {
				results = append(results, field.Type)
			}
		}
	}
	switch len(results) {
	case 0:
		m.Result = meta.VoidType
		return m, nil
	case 1:
		if isError(results[0]) {
			m.Result, m.HasError = meta.VoidType, true
			return m, nil
		}
	case 2:
		if !isError(results[1]) {
			return m, errors.New("second result must be error")
		}
		m.HasError = true
	default:
		return m, errors.New("too many results")
	}

	out := results[0]
	if ch, ok := out.(*ast.ChanType); ok {
		if ch.Dir == ast.SEND {
			return m, errors.New("async result must be a receive channel")
		}
		m.Result = res.resolve(ch)
		m.ResultGoType = types.ExprString(ch.Value)
		return m, nil
	}
	m.Result = res.resolve(out)
	m.ResultGoType = types.ExprString(out)
	return m, nil
}

func embeds(spec *ast.TypeSpec, base string) bool {
	st, ok := spec.Type.(*ast.StructType)
	if !ok {
		return false
	}
	for _, f := range st.Fields.List {
		if len(f.Names) != 0 {
			continue
		}
		t := f.Type
		if star, ok := t.(*ast.StarExpr); ok {
			t = star.X
		}
		if types.ExprString(t) == base {
			return true
		}
	}
	return false
}

func receiverName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return receiverName(e.X)
	case *ast.IndexExpr:
		return receiverName(e.X)
	case *ast.IndexListExpr:
		return receiverName(e.X)
	case *ast.Ident:
		return e.Name
	default:
		return ""
	}
}

func isError(expr ast.Expr) bool {
	id, ok := expr.(*ast.Ident)
	return ok && id.Name == "error"
}

// fileImports maps the names a file uses for its imports to their paths.
func fileImports(f *ast.File) map[string]string {
	out := make(map[string]string)
	if f == nil {
		return out
	}
	for _, spec := range f.Imports {
		importPath, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := importName(importPath)
		if spec.Name != nil {
			name = spec.Name.Name
		}
		if name == "_" || name == "." {
			continue
		}
		out[name] = importPath
	}
	return out
}

// importName guesses the package name from its path, skipping a major
// version suffix.
func importName(importPath string) string {
	parts := strings.Split(importPath, "/")
	name := parts[len(parts)-1]
	if len(parts) > 1 && len(name) > 1 && name[0] == 'v' && isDigits(name[1:]) {
		name = parts[len(parts)-2]
	}
	name = strings.TrimPrefix(name, "go-")
	return strings.ReplaceAll(name, "-", "_")
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

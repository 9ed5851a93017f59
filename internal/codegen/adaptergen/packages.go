package adaptergen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

type typeKind int

const (
	kindBasic typeKind = iota
	kindNamed
	kindPointer
	kindSlice
	kindOther
)

// typeRef is a type expression resolved against its file's imports
type typeRef struct {
	kind typeKind
	name string
	pkg  string
	elem *typeRef
	repr string
}

func (t *typeRef) String() string {
	switch t.kind {
	case kindBasic:
		return t.name
	case kindNamed:
		return t.pkg + "." + t.name
	case kindPointer:
		return "*" + t.elem.String()
	case kindSlice:
		return "[]" + t.elem.String()
	default:
		return t.repr
	}
}

var numericTypes = map[string]bool{
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"float32": true, "float64": true,
}

var basicTypes = map[string]bool{
	"bool": true, "string": true, "byte": true, "rune": true,
	"complex64": true, "complex128": true, "uintptr": true, "any": true, "error": true,
}

func isNumeric(t *typeRef) bool {
	return t.kind == kindBasic && numericTypes[t.name]
}

// numericRange classifies a numeric type. int and uint count as 64 bits when read
// and as 32 bits when written, the widest and narrowest sizes they can have.
func numericRange(name string, written bool) (class byte, bits int) {
	switch name {
	case "int8", "int16", "int32", "int64":
		bits, _ = strconv.Atoi(name[3:])
		return 'i', bits
	case "uint8", "uint16", "uint32", "uint64":
		bits, _ = strconv.Atoi(name[4:])
		return 'u', bits
	case "int", "uint":
		bits = 64
		if written {
			bits = 32
		}
		return name[0], bits
	case "float32":
		return 'f', 24
	case "float64":
		return 'f', 53
	}
	return 0, 0
}

// isWidening reports whether every value of src is exactly representable in dst
func isWidening(src, dst *typeRef) bool {
	srcClass, srcBits := numericRange(src.name, false)
	dstClass, dstBits := numericRange(dst.name, true)

	switch {
	case srcClass == dstClass:
		return srcBits <= dstBits
	case srcClass == 'u' && dstClass == 'i':
		return srcBits < dstBits
	case srcClass != 'f' && dstClass == 'f':
		if srcClass == 'i' {
			srcBits--
		}
		return srcBits <= dstBits
	}
	return false
}

type fieldInfo struct {
	name     string
	typ      *typeRef
	embedded bool
	skip     bool
	narrow   bool
}

type markerInfo struct {
	kind     string
	response *typeRef
}

type structInfo struct {
	pkg    *packageInfo
	name   string
	fields []fieldInfo
	marker *markerInfo
}

func (s *structInfo) key() string { return s.pkg.importPath + "." + s.name }

func (s *structInfo) field(name string) (fieldInfo, bool) {
	for _, f := range s.fields {
		if f.name == name && !f.embedded {
			return f, true
		}
	}
	return fieldInfo{}, false
}

type methodInfo struct {
	name string
	in   *typeRef
	out  *typeRef
}

type packageInfo struct {
	name       string
	importPath string
	structs    map[string]*structInfo
	interfaces map[string][]methodInfo
}

var markerNames = map[string]bool{"Returns": true, "Command": true, "Query": true}

// loadPackage parses the non-test Go files of dir
func loadPackage(dir, importPath, mediatorPath string) (*packageInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read package %s: %w", dir, err)
	}

	pkg := &packageInfo{
		importPath: importPath,
		structs:    make(map[string]*structInfo),
		interfaces: make(map[string][]methodInfo),
	}

	fset := token.NewFileSet()
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}

		file, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, parser.SkipObjectResolution)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", name, err)
		}

		if pkg.name == "" {
			pkg.name = file.Name.Name
		}

		r := &resolver{pkgPath: importPath, imports: fileImports(file)}
		for _, decl := range file.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.TYPE {
				continue
			}
			for _, spec := range gen.Specs {
				ts := spec.(*ast.TypeSpec)
				if ts.TypeParams != nil {
					continue
				}
				switch t := ts.Type.(type) {
				case *ast.StructType:
					pkg.structs[ts.Name.Name] = r.structInfo(pkg, ts.Name.Name, t, mediatorPath)
				case *ast.InterfaceType:
					pkg.interfaces[ts.Name.Name] = r.methods(t)
				}
			}
		}
	}

	if pkg.name == "" {
		return nil, fmt.Errorf("no Go files in %s", dir)
	}

	return pkg, nil
}

var versionSuffix = regexp.MustCompile(`^v[0-9]+$`)

// defaultImportName guesses the package name of an import path
func defaultImportName(importPath string) string {
	base := path.Base(importPath)
	if versionSuffix.MatchString(base) {
		base = path.Base(path.Dir(importPath))
	}
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}
	return strings.ReplaceAll(base, "-", "_")
}

func fileImports(file *ast.File) map[string]string {
	imports := make(map[string]string)
	for _, spec := range file.Imports {
		importPath, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		name := defaultImportName(importPath)
		if spec.Name != nil {
			name = spec.Name.Name
		}
		imports[name] = importPath
	}
	return imports
}

type resolver struct {
	pkgPath string
	imports map[string]string
}

func (r *resolver) resolve(expr ast.Expr) *typeRef {
	switch t := expr.(type) {
	case *ast.Ident:
		if numericTypes[t.Name] || basicTypes[t.Name] {
			return &typeRef{kind: kindBasic, name: t.Name}
		}
		return &typeRef{kind: kindNamed, name: t.Name, pkg: r.pkgPath}
	case *ast.SelectorExpr:
		if x, ok := t.X.(*ast.Ident); ok {
			if importPath, ok := r.imports[x.Name]; ok {
				return &typeRef{kind: kindNamed, name: t.Sel.Name, pkg: importPath}
			}
		}
	case *ast.StarExpr:
		return &typeRef{kind: kindPointer, elem: r.resolve(t.X)}
	case *ast.ArrayType:
		if t.Len == nil {
			return &typeRef{kind: kindSlice, elem: r.resolve(t.Elt)}
		}
	}
	return &typeRef{kind: kindOther, repr: r.pkgPath + ":" + opaque(expr)}
}

// opaque names a type expression that only matches itself
func opaque(expr ast.Expr) string {
	return fmt.Sprintf("%T@%d", expr, expr.Pos())
}

func (r *resolver) structInfo(pkg *packageInfo, name string, st *ast.StructType, mediatorPath string) *structInfo {
	info := &structInfo{pkg: pkg, name: name}

	for _, field := range st.Fields.List {
		var skip, narrow bool
		if field.Tag != nil {
			if tag, err := strconv.Unquote(field.Tag.Value); err == nil {
				switch reflect.StructTag(tag).Get("adapter") {
				case "-":
					skip = true
				case "narrow":
					narrow = true
				}
			}
		}

		if len(field.Names) == 0 {
			if marker := r.marker(field.Type, mediatorPath); marker != nil {
				info.marker = marker
			}
			info.fields = append(info.fields, fieldInfo{
				name:     embeddedName(field.Type),
				typ:      r.resolve(field.Type),
				embedded: true,
				skip:     skip,
			})
			continue
		}

		typ := r.resolve(field.Type)
		for _, ident := range field.Names {
			if !ident.IsExported() {
				continue
			}
			info.fields = append(info.fields, fieldInfo{name: ident.Name, typ: typ, skip: skip, narrow: narrow})
		}
	}

	return info
}

// marker recognises mediator.Returns[R], mediator.Command[R] and mediator.Query[R]
func (r *resolver) marker(expr ast.Expr, mediatorPath string) *markerInfo {
	index, ok := expr.(*ast.IndexExpr)
	if !ok {
		return nil
	}
	sel, ok := index.X.(*ast.SelectorExpr)
	if !ok || !markerNames[sel.Sel.Name] {
		return nil
	}
	x, ok := sel.X.(*ast.Ident)
	if !ok || r.imports[x.Name] != mediatorPath {
		return nil
	}
	return &markerInfo{kind: sel.Sel.Name, response: r.resolve(index.Index)}
}

func embeddedName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return embeddedName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.IndexExpr:
		return embeddedName(t.X)
	}
	return ""
}

// methods collects the exported unary methods of an interface
func (r *resolver) methods(it *ast.InterfaceType) []methodInfo {
	var methods []methodInfo
	for _, field := range it.Methods.List {
		fn, ok := field.Type.(*ast.FuncType)
		if !ok || len(field.Names) == 0 || !field.Names[0].IsExported() {
			continue
		}

		method := methodInfo{name: field.Names[0].Name}
		params := flatten(fn.Params)
		results := flatten(fn.Results)
		if len(params) == 2 && len(results) == 2 {
			method.in = r.resolve(params[1])
			method.out = r.resolve(results[0])
		}
		methods = append(methods, method)
	}
	return methods
}

func flatten(list *ast.FieldList) []ast.Expr {
	if list == nil {
		return nil
	}
	var exprs []ast.Expr
	for _, field := range list.List {
		n := len(field.Names)
		if n == 0 {
			n = 1
		}
		for i := 0; i < n; i++ {
			exprs = append(exprs, field.Type)
		}
	}
	return exprs
}

package adaptergen

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

type assignment struct {
	Name string
	Expr string
}

type helperKind int

const (
	helperStruct helperKind = iota
	helperStructValue
	helperSlice
)

type helper struct {
	Kind   helperKind
	Name   string
	Param  string
	Result string

	// Struct helpers
	Target string
	Fields []assignment

	// Value helpers
	Inner string

	// Slice helpers
	Elem     string
	ElemExpr string
}

type importSpec struct {
	Alias string
	Path  string
}

// planner turns type pairs into conversion expressions, collecting the
// helpers and imports they need
type planner struct {
	structs map[string]*structInfo
	imports map[string]string
	aliases map[string]string
	helpers []*helper
	byName  map[string]*helper
}

func newPlanner() *planner {
	return &planner{
		structs: make(map[string]*structInfo),
		imports: make(map[string]string),
		aliases: map[string]string{"context": "context"},
		byName:  make(map[string]*helper),
	}
}

func (p *planner) index(pkg *packageInfo) {
	for _, s := range pkg.structs {
		p.structs[s.key()] = s
	}
}

// qualifier returns the alias of importPath in the generated file, importing it on first use
func (p *planner) qualifier(importPath, name string) string {
	if alias, ok := p.imports[importPath]; ok {
		return alias
	}

	alias := name
	for i := 2; p.aliases[alias] != ""; i++ {
		alias = fmt.Sprintf("%s%d", name, i)
	}
	p.imports[importPath] = alias
	p.aliases[alias] = importPath
	return alias
}

func (p *planner) importSpecs() []importSpec {
	specs := make([]importSpec, 0, len(p.imports))
	for importPath, alias := range p.imports {
		spec := importSpec{Path: importPath}
		if alias != defaultImportName(importPath) {
			spec.Alias = alias
		}
		specs = append(specs, spec)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Path < specs[j].Path })
	return specs
}

func (p *planner) lookup(t *typeRef) (*structInfo, bool) {
	if t.kind != kindNamed {
		return nil, false
	}
	s, ok := p.structs[t.pkg+"."+t.name]
	return s, ok
}

func (p *planner) render(t *typeRef) (string, error) {
	switch t.kind {
	case kindBasic:
		return t.name, nil
	case kindNamed:
		s, ok := p.lookup(t)
		if !ok {
			return "", fmt.Errorf("type %s is outside the scanned packages", t)
		}
		return p.qualifier(s.pkg.importPath, s.pkg.name) + "." + s.name, nil
	case kindPointer:
		elem, err := p.render(t.elem)
		return "*" + elem, err
	case kindSlice:
		elem, err := p.render(t.elem)
		return "[]" + elem, err
	}
	return "", fmt.Errorf("cannot render type %s", t)
}

func (p *planner) ident(t *typeRef) string {
	switch t.kind {
	case kindBasic:
		return exported(t.name)
	case kindNamed:
		if s, ok := p.lookup(t); ok {
			return exported(s.pkg.name) + s.name
		}
		return exported(t.name)
	case kindPointer:
		return p.ident(t.elem) + "Ptr"
	case kindSlice:
		return p.ident(t.elem) + "Slice"
	}
	return "Opaque"
}

func exported(name string) string {
	if name == "" {
		return name
	}
	r := []rune(name)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// convert returns an expression converting expr of type src into dst.
// Numeric conversions that may lose range or precision need narrow.
func (p *planner) convert(src, dst *typeRef, expr string, narrow bool) (string, error) {
	if src.String() == dst.String() {
		return expr, nil
	}

	if isNumeric(src) && isNumeric(dst) {
		if !narrow && !isWidening(src, dst) {
			return "", fmt.Errorf("converting %s to %s may lose data; tag the field `adapter:\"narrow\"` to allow it", src, dst)
		}
		return dst.name + "(" + expr + ")", nil
	}

	switch {
	case src.kind == kindPointer && dst.kind == kindPointer:
		name, err := p.structHelper(src.elem, dst.elem)
		if err != nil {
			return "", err
		}
		return name + "(" + expr + ")", nil

	case src.kind == kindNamed && dst.kind == kindPointer:
		name, err := p.structHelper(src, dst.elem)
		if err != nil {
			return "", err
		}
		return name + "(&" + expr + ")", nil

	case src.kind == kindPointer && dst.kind == kindNamed:
		name, err := p.valueHelper(src.elem, dst)
		if err != nil {
			return "", err
		}
		return name + "(" + expr + ")", nil

	case src.kind == kindNamed && dst.kind == kindNamed:
		name, err := p.structHelper(src, dst)
		if err != nil {
			return "", err
		}
		return "*" + name + "(&" + expr + ")", nil

	case src.kind == kindSlice && dst.kind == kindSlice:
		name, err := p.sliceHelper(src, dst)
		if err != nil {
			return "", err
		}
		return name + "(" + expr + ")", nil
	}

	return "", fmt.Errorf("cannot convert %s to %s", src, dst)
}

func (p *planner) structHelper(src, dst *typeRef) (string, error) {
	srcStruct, ok := p.lookup(src)
	if !ok {
		return "", fmt.Errorf("cannot convert %s to %s: %s is not a known struct", src, dst, src)
	}
	dstStruct, ok := p.lookup(dst)
	if !ok {
		return "", fmt.Errorf("cannot convert %s to %s: %s is not a known struct", src, dst, dst)
	}

	name := "convert" + p.ident(src) + "To" + p.ident(dst)
	if _, ok := p.byName[name]; ok {
		return name, nil
	}

	param, err := p.render(src)
	if err != nil {
		return "", err
	}
	target, err := p.render(dst)
	if err != nil {
		return "", err
	}

	h := &helper{Kind: helperStruct, Name: name, Param: "*" + param, Result: "*" + target, Target: target}
	p.add(h)

	fields, err := p.pair(srcStruct, dstStruct, "in")
	if err != nil {
		return "", err
	}
	h.Fields = fields

	return name, nil
}

func (p *planner) valueHelper(src, dst *typeRef) (string, error) {
	inner, err := p.structHelper(src, dst)
	if err != nil {
		return "", err
	}

	name := inner + "Value"
	if _, ok := p.byName[name]; ok {
		return name, nil
	}

	param, _ := p.render(src)
	result, _ := p.render(dst)
	p.add(&helper{Kind: helperStructValue, Name: name, Param: "*" + param, Result: result, Inner: inner})
	return name, nil
}

func (p *planner) sliceHelper(src, dst *typeRef) (string, error) {
	name := "convert" + p.ident(src) + "To" + p.ident(dst)
	if _, ok := p.byName[name]; ok {
		return name, nil
	}

	param, err := p.render(src)
	if err != nil {
		return "", err
	}
	result, err := p.render(dst)
	if err != nil {
		return "", err
	}

	h := &helper{Kind: helperSlice, Name: name, Param: param, Result: result}
	p.add(h)

	elemExpr, err := p.convert(src.elem, dst.elem, "in[i]", false)
	if err != nil {
		return "", err
	}
	h.ElemExpr = elemExpr

	return name, nil
}

func (p *planner) add(h *helper) {
	p.byName[h.Name] = h
	p.helpers = append(p.helpers, h)
}

// pair maps every exported field of dst from the same-named field of src.
// Fields tagged `adapter:"-"` on either side are left out; `adapter:"narrow"` on
// either side allows a lossy numeric conversion.
func (p *planner) pair(src, dst *structInfo, srcExpr string) ([]assignment, error) {
	var assignments []assignment
	matched := make(map[string]bool)

	for _, df := range dst.fields {
		if df.embedded || df.skip {
			continue
		}

		sf, ok := src.field(df.name)
		if !ok || sf.skip {
			return nil, fmt.Errorf("field %s.%s has no counterpart in %s", dst.name, df.name, src.name)
		}
		matched[df.name] = true

		expr, err := p.convert(sf.typ, df.typ, srcExpr+"."+sf.name, sf.narrow || df.narrow)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", dst.name, df.name, err)
		}
		assignments = append(assignments, assignment{Name: df.name, Expr: expr})
	}

	var unmatched []string
	for _, sf := range src.fields {
		if sf.embedded || sf.skip || matched[sf.name] {
			continue
		}
		unmatched = append(unmatched, sf.name)
	}
	if len(unmatched) > 0 {
		return nil, fmt.Errorf("fields of %s have no counterpart in %s: %s", src.name, dst.name, strings.Join(unmatched, ", "))
	}

	return assignments, nil
}

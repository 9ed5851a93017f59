// Package adaptergen generates gRPC service adapters that forward every RPC
// to the mediator.
//
// For an RPC M(ctx, *In) (*Out, error) the internal request is the first
// struct found among In, MCommand, MQuery and MRequest in the feature
// packages, and the internal response the first among Out, MResponse and
// MReply. Fields are mapped by name.
package adaptergen

import (
	"bytes"
	_ "embed"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed adapter.go.tmpl
var adapterTemplate string

var tmpl = template.Must(template.New("adapter").Parse(adapterTemplate))

type methodData struct {
	Name           string
	InType         string
	OutType        string
	OutStruct      string
	RequestType    string
	ResponseType   string
	RequestFields  []assignment
	ResponseFields []assignment
}

type fileData struct {
	Source        string
	Package       string
	Imports       []importSpec
	Adapter       string
	ServerIface   string
	Unimplemented string
	MediatorPkg   string
	ErrorMapper   string
	Methods       []methodData
	Helpers       []*helper
}

// Generator produces adapter source from a manifest
type Generator struct {
	manifest *Manifest
	root     string
}

// NewGenerator creates a generator resolving manifest directories against root
func NewGenerator(manifest *Manifest, root string) *Generator {
	return &Generator{manifest: manifest, root: root}
}

// Generate returns the formatted adapter source
func (g *Generator) Generate() ([]byte, error) {
	m := g.manifest

	contract, err := loadPackage(g.path(m.Service.Dir), m.Service.ImportPath, m.MediatorImportPath)
	if err != nil {
		return nil, err
	}

	features := make([]*packageInfo, 0, len(m.Features))
	for _, f := range m.Features {
		pkg, err := loadPackage(g.path(f.Dir), f.ImportPath, m.MediatorImportPath)
		if err != nil {
			return nil, err
		}
		features = append(features, pkg)
	}

	serverName := m.Service.Name + "Server"
	methods, ok := contract.interfaces[serverName]
	if !ok {
		return nil, fmt.Errorf("interface %s not found in %s", serverName, m.Service.ImportPath)
	}
	if len(methods) == 0 {
		return nil, fmt.Errorf("interface %s declares no RPC methods", serverName)
	}

	p := newPlanner()
	p.index(contract)
	for _, pkg := range features {
		p.index(pkg)
	}

	contractPkg := p.qualifier(contract.importPath, contract.name)
	mediatorPkg := p.qualifier(m.MediatorImportPath, defaultImportName(m.MediatorImportPath))

	data := fileData{
		Source:        contract.name + "." + m.Service.Name,
		Package:       m.Output.Package,
		Adapter:       m.Output.Adapter,
		ServerIface:   contractPkg + "." + serverName,
		Unimplemented: contractPkg + ".Unimplemented" + serverName,
		MediatorPkg:   mediatorPkg,
		ErrorMapper:   m.Output.ErrorMapper,
	}

	for _, method := range methods {
		md, err := g.method(p, contract, features, method)
		if err != nil {
			return nil, fmt.Errorf("method %s: %w", method.name, err)
		}
		data.Methods = append(data.Methods, md)
	}

	data.Imports = p.importSpecs()
	data.Helpers = p.helpers

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render adapter: %w", err)
	}

	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to format adapter: %w", err)
	}

	return src, nil
}

// Run generates the adapter and writes it to the manifest's output file
func (g *Generator) Run() (string, error) {
	src, err := g.Generate()
	if err != nil {
		return "", err
	}

	out := g.path(g.manifest.Output.File)
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(out, src, 0644); err != nil {
		return "", fmt.Errorf("failed to write adapter: %w", err)
	}

	return out, nil
}

func (g *Generator) path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(g.root, p)
}

func (g *Generator) method(p *planner, contract *packageInfo, features []*packageInfo, method methodInfo) (methodData, error) {
	if method.in == nil || method.in.kind != kindPointer || method.out == nil || method.out.kind != kindPointer {
		return methodData{}, fmt.Errorf("expected signature (context.Context, *In) (*Out, error)")
	}

	in, ok := p.lookup(method.in.elem)
	if !ok || in.pkg != contract {
		return methodData{}, fmt.Errorf("request message %s not found in contract", method.in.elem.name)
	}
	out, ok := p.lookup(method.out.elem)
	if !ok || out.pkg != contract {
		return methodData{}, fmt.Errorf("response message %s not found in contract", method.out.elem.name)
	}

	request, err := find(features, method.name, in.name, "Command", "Query", "Request")
	if err != nil {
		return methodData{}, fmt.Errorf("request: %w", err)
	}
	response, err := find(features, method.name, out.name, "Response", "Reply")
	if err != nil {
		return methodData{}, fmt.Errorf("response: %w", err)
	}

	if request.marker == nil {
		return methodData{}, fmt.Errorf("%s does not embed a mediator request marker", request.name)
	}
	declared := request.marker.response
	if declared.kind != kindPointer || declared.elem.String() != response.key() {
		return methodData{}, fmt.Errorf("%s declares response %s, matched %s", request.name, declared, response.key())
	}

	requestFields, err := p.pair(in, request, "in")
	if err != nil {
		return methodData{}, err
	}
	responseFields, err := p.pair(response, out, "response")
	if err != nil {
		return methodData{}, err
	}

	inType, _ := p.render(method.in)
	outType, _ := p.render(method.out)
	outStruct, _ := p.render(method.out.elem)
	requestType, _ := p.render(&typeRef{kind: kindNamed, name: request.name, pkg: request.pkg.importPath})
	responseType, _ := p.render(declared)

	return methodData{
		Name:           method.name,
		InType:         inType,
		OutType:        outType,
		OutStruct:      outStruct,
		RequestType:    requestType,
		ResponseType:   responseType,
		RequestFields:  requestFields,
		ResponseFields: responseFields,
	}, nil
}

// find returns the first candidate name with exactly one struct across the feature packages
func find(features []*packageInfo, method, messageName string, suffixes ...string) (*structInfo, error) {
	candidates := []string{messageName}
	for _, suffix := range suffixes {
		if name := method + suffix; name != messageName {
			candidates = append(candidates, name)
		}
	}

	tried := make([]string, 0, len(candidates))
	for _, name := range candidates {
		var found []*structInfo
		for _, pkg := range features {
			if s, ok := pkg.structs[name]; ok {
				found = append(found, s)
			}
		}

		switch len(found) {
		case 0:
			tried = append(tried, name)
		case 1:
			return found[0], nil
		default:
			paths := make([]string, len(found))
			for i, s := range found {
				paths[i] = s.pkg.importPath
			}
			return nil, fmt.Errorf("%s is declared in several feature packages: %s", name, strings.Join(paths, ", "))
		}
	}

	return nil, fmt.Errorf("no feature type matches any of %s", strings.Join(tried, ", "))
}

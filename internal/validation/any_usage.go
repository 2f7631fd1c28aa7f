// Package validation implements repository lint tooling. The materialization
// engine traffics in untyped row values and identifiers, so `any` is part of
// its contract surface; the allowlist pins exactly which files and symbols may
// use it, and everything else is a violation.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Error reports one lint violation with its location and offending line.
type Error struct {
	File    string
	Line    int
	Message string
	Code    string
}

// AnyAllowlist captures approved any-usage locations.
type AnyAllowlist struct {
	Version int                 `json:"version"`
	Entries []AnyAllowlistEntry `json:"entries"`
}

// AnyAllowlistEntry describes a scoped any-usage exception. An entry without
// symbols allows the whole file.
type AnyAllowlistEntry struct {
	Path      string   `json:"path"`
	Symbols   []string `json:"symbols,omitempty"`
	Category  string   `json:"category"`
	Rationale string   `json:"rationale"`
}

var anyAllowlistCategories = map[string]struct{}{
	"row-boundary":    {}, // raw column values and identifiers
	"json-boundary":   {}, // serialized payloads
	"reflection":      {}, // type-switch dispatch over representations
	"internal-helper": {},
	"test-only":       {},
}

// LoadAnyAllowlist loads and validates the allowlist from disk.
func LoadAnyAllowlist(listPath string) (AnyAllowlist, error) {
	data, err := os.ReadFile(listPath) // #nosec G304 -- path comes from repo tooling
	if err != nil {
		return AnyAllowlist{}, fmt.Errorf("read any allowlist: %w", err)
	}
	var allowlist AnyAllowlist
	if err := json.Unmarshal(data, &allowlist); err != nil {
		return AnyAllowlist{}, fmt.Errorf("parse any allowlist: %w", err)
	}
	if err := validateAllowlist(&allowlist); err != nil {
		return AnyAllowlist{}, err
	}
	return allowlist, nil
}

// ValidateAnyUsageFromFile loads the allowlist and validates usage under the
// roots.
func ValidateAnyUsageFromFile(listPath, baseDir string, roots []string) ([]Error, error) {
	allowlist, err := LoadAnyAllowlist(listPath)
	if err != nil {
		return nil, err
	}
	return ValidateAnyUsage(allowlist, baseDir, roots)
}

// ValidateAnyUsage reports any usage that is not allowlisted. Test files are
// skipped; generic type constraints do not count as usage.
func ValidateAnyUsage(allowlist AnyAllowlist, baseDir string, roots []string) ([]Error, error) {
	if len(roots) == 0 {
		return nil, errors.New("no roots provided for any usage validation")
	}
	if err := validateAllowlist(&allowlist); err != nil {
		return nil, err
	}
	baseAbs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("resolve base dir: %w", err)
	}
	index := buildAllowlistIndex(allowlist)
	var violations []Error

	for _, root := range roots {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		rootPath := root
		if !filepath.IsAbs(rootPath) {
			rootPath = filepath.Join(baseAbs, rootPath)
		}
		info, err := os.Stat(rootPath)
		if err != nil {
			return nil, fmt.Errorf("stat root %s: %w", root, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("root %s is not a directory", root)
		}
		if err := filepath.WalkDir(rootPath, func(path string, entry fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if entry.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
				return nil
			}
			rel, err := filepath.Rel(baseAbs, path)
			if err != nil {
				return err
			}
			rel = normalizePath(rel)
			if index.allowAll[rel] {
				return nil
			}
			fileViolations, err := validateAnyFile(path, rel, index)
			if err != nil {
				return err
			}
			violations = append(violations, fileViolations...)
			return nil
		}); err != nil {
			return nil, err
		}
	}
	return violations, nil
}

func validateAllowlist(allowlist *AnyAllowlist) error {
	if allowlist.Version <= 0 {
		return errors.New("any allowlist version must be >= 1")
	}
	for i, entry := range allowlist.Entries {
		entry.Path = normalizePath(entry.Path)
		if entry.Path == "" || entry.Path == "." {
			return fmt.Errorf("any allowlist entry %d missing path", i)
		}
		entry.Category = strings.TrimSpace(entry.Category)
		if _, ok := anyAllowlistCategories[entry.Category]; !ok {
			return fmt.Errorf("any allowlist entry %d has unknown category %q", i, entry.Category)
		}
		if strings.TrimSpace(entry.Rationale) == "" {
			return fmt.Errorf("any allowlist entry %d missing rationale", i)
		}
		allowlist.Entries[i] = entry
	}
	return nil
}

func normalizePath(p string) string {
	cleaned := filepath.ToSlash(filepath.Clean(strings.TrimSpace(p)))
	return strings.TrimPrefix(cleaned, "./")
}

type anyAllowlistIndex struct {
	allowAll map[string]bool
	symbols  map[string]map[string]struct{}
}

func buildAllowlistIndex(allowlist AnyAllowlist) anyAllowlistIndex {
	index := anyAllowlistIndex{
		allowAll: make(map[string]bool),
		symbols:  make(map[string]map[string]struct{}),
	}
	for _, entry := range allowlist.Entries {
		if len(entry.Symbols) == 0 {
			index.allowAll[entry.Path] = true
			continue
		}
		set, ok := index.symbols[entry.Path]
		if !ok {
			set = make(map[string]struct{})
			index.symbols[entry.Path] = set
		}
		for _, symbol := range entry.Symbols {
			set[strings.TrimSpace(symbol)] = struct{}{}
		}
	}
	return index
}

func (index anyAllowlistIndex) isAllowed(relPath, symbol string) bool {
	if index.allowAll[relPath] {
		return true
	}
	if symbol == "" {
		return false
	}
	set, ok := index.symbols[relPath]
	if !ok {
		return false
	}
	_, ok = set[symbol]
	return ok
}

func validateAnyFile(path, relPath string, index anyAllowlistIndex) ([]Error, error) {
	content, err := os.ReadFile(path) // #nosec G304 -- path derives from validated roots
	if err != nil {
		return nil, err
	}
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, content, 0)
	if err != nil {
		return nil, err
	}
	constraints := collectTypeParamRanges(file)
	symbols := buildSymbolRanges(file)
	uses := collectAnyUsages(file, constraints)
	if len(uses) == 0 {
		return nil, nil
	}
	lines := strings.Split(string(content), "\n")
	var violations []Error
	for _, pos := range uses {
		position := fset.Position(pos)
		if index.isAllowed(relPath, symbolForPos(symbols, pos)) {
			continue
		}
		code := ""
		if position.Line > 0 && position.Line <= len(lines) {
			code = strings.TrimSpace(lines[position.Line-1])
		}
		violations = append(violations, Error{
			File:    relPath,
			Line:    position.Line,
			Message: "disallowed any usage; add an allowlist entry or use a concrete type",
			Code:    code,
		})
	}
	return violations, nil
}

type posRange struct {
	start token.Pos
	end   token.Pos
}

func collectTypeParamRanges(file *ast.File) []posRange {
	var ranges []posRange
	ast.Inspect(file, func(n ast.Node) bool {
		var fields *ast.FieldList
		switch node := n.(type) {
		case *ast.FuncType:
			fields = node.TypeParams
		case *ast.TypeSpec:
			fields = node.TypeParams
		}
		if fields == nil {
			return true
		}
		for _, field := range fields.List {
			if field != nil && field.Type != nil {
				ranges = append(ranges, posRange{start: field.Type.Pos(), end: field.Type.End()})
			}
		}
		return true
	})
	return ranges
}

func collectAnyUsages(file *ast.File, constraints []posRange) []token.Pos {
	var uses []token.Pos
	var stack []ast.Node
	ast.Inspect(file, func(n ast.Node) bool {
		if n == nil {
			stack = stack[:len(stack)-1]
			return true
		}
		stack = append(stack, n)
		ident, ok := n.(*ast.Ident)
		if ok && ident.Name == "any" && isTypeIdent(stack) && !inRange(ident.Pos(), constraints) {
			uses = append(uses, ident.Pos())
		}
		return true
	})
	return uses
}

func inRange(pos token.Pos, ranges []posRange) bool {
	for _, r := range ranges {
		if pos >= r.start && pos <= r.end {
			return true
		}
	}
	return false
}

// isTypeIdent reports whether the identifier on top of the stack appears in a
// type position rather than as an ordinary name.
func isTypeIdent(stack []ast.Node) bool {
	if len(stack) < 2 {
		return false
	}
	parent := stack[len(stack)-2]
	child := stack[len(stack)-1]
	switch node := parent.(type) {
	case *ast.ArrayType:
		return node.Elt == child
	case *ast.MapType:
		return node.Key == child || node.Value == child
	case *ast.ChanType:
		return node.Value == child
	case *ast.StarExpr:
		return node.X == child
	case *ast.Ellipsis:
		return node.Elt == child
	case *ast.Field:
		return node.Type == child
	case *ast.ValueSpec:
		return node.Type == child
	case *ast.TypeSpec:
		return node.Type == child
	case *ast.TypeAssertExpr:
		return node.Type == child
	case *ast.IndexExpr:
		return node.Index == child
	case *ast.IndexListExpr:
		for _, index := range node.Indices {
			if index == child {
				return true
			}
		}
	case *ast.CallExpr:
		return node.Fun == child
	}
	return false
}

type symbolRange struct {
	name  string
	start token.Pos
	end   token.Pos
}

func buildSymbolRanges(file *ast.File) []symbolRange {
	var ranges []symbolRange
	for _, decl := range file.Decls {
		switch node := decl.(type) {
		case *ast.GenDecl:
			for _, spec := range node.Specs {
				switch spec := spec.(type) {
				case *ast.TypeSpec:
					ranges = append(ranges, symbolRange{name: spec.Name.Name, start: spec.Pos(), end: spec.End()})
				case *ast.ValueSpec:
					for _, name := range spec.Names {
						ranges = append(ranges, symbolRange{name: name.Name, start: spec.Pos(), end: spec.End()})
					}
				}
			}
		case *ast.FuncDecl:
			name := node.Name.Name
			if node.Recv != nil && len(node.Recv.List) > 0 {
				if recvName := receiverTypeName(node.Recv.List[0].Type); recvName != "" {
					name = recvName
				}
			}
			ranges = append(ranges, symbolRange{name: name, start: node.Pos(), end: node.End()})
		}
	}
	return ranges
}

func receiverTypeName(expr ast.Expr) string {
	switch node := expr.(type) {
	case *ast.Ident:
		return node.Name
	case *ast.StarExpr:
		return receiverTypeName(node.X)
	case *ast.IndexExpr:
		return receiverTypeName(node.X)
	case *ast.IndexListExpr:
		return receiverTypeName(node.X)
	}
	return ""
}

func symbolForPos(ranges []symbolRange, pos token.Pos) string {
	for _, r := range ranges {
		if pos >= r.start && pos <= r.end {
			return r.name
		}
	}
	return ""
}

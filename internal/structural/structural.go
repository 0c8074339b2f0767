// Package structural evaluates parse-tree rules for Go sources, the one
// language the scanner parses structurally. Everything here is pattern
// recognition over the syntax tree; there is no type resolution.
package structural

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"regexp"
	"strings"

	"github.com/polyscan/polyscan/internal/rules"
	"github.com/polyscan/polyscan/internal/types"
)

const (
	maxFuncParams   = 6
	maxFuncLines    = 60
	maxNestingDepth = 4
	maxImportFanOut = 25
	maxTypeMethods  = 15
	// Share of methods that never touch receiver state before a type is
	// flagged as low-cohesion. Requires at least minCohesionMethods.
	maxDetachedShare   = 0.75
	minCohesionMethods = 3
)

var rePackageName = regexp.MustCompile(`^[a-z][a-z0-9]*(_test)?$`)

// Evaluate parses the unit as Go source and runs the structural rules in
// the active set. A parse error is returned so the caller can fall back
// to the pattern subset and record a scan note; it is never fatal.
func Evaluate(unit types.SourceUnit, active rules.ActiveSet) ([]types.Issue, error) {
	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, unit.Path, unit.Content, 0)
	if err != nil {
		return nil, err
	}

	w := &walker{unit: unit, fset: fset, active: active}
	w.checkPackageName(file)
	w.checkImports(file)
	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			w.checkFunc(d)
		case *ast.GenDecl:
			if d.Tok == token.CONST {
				w.checkConstNames(d)
			}
		}
	}
	w.checkCalls(file)
	w.checkTypeShape(file)
	return w.issues, nil
}

type walker struct {
	unit   types.SourceUnit
	fset   *token.FileSet
	active rules.ActiveSet
	issues []types.Issue
}

func (w *walker) emit(ruleID string, pos token.Pos, msg string) {
	if !w.active.Enabled(ruleID) {
		return
	}
	p := w.fset.Position(pos)
	w.issues = append(w.issues, rules.NewIssue(ruleID, w.unit, p.Line, p.Column, msg))
}

func (w *walker) checkPackageName(file *ast.File) {
	name := file.Name.Name
	if name == "main" || rePackageName.MatchString(name) {
		return
	}
	w.emit("SS401", file.Name.Pos(), "Go package names should be short lowercase identifiers.")
}

func (w *walker) checkImports(file *ast.File) {
	if len(file.Imports) > maxImportFanOut {
		w.emit("SS406", file.Package,
			fmt.Sprintf("File imports %d dependencies; consider reducing coupling.", len(file.Imports)))
	}
	for _, imp := range file.Imports {
		if imp.Path.Value == `"unsafe"` {
			w.emit("SS411", imp.Pos(), "The unsafe package bypasses Go memory safety.")
		}
	}
}

func (w *walker) checkFunc(fn *ast.FuncDecl) {
	if strings.Contains(fn.Name.Name, "_") && fn.Name.Name != "_" {
		w.emit("SS402", fn.Name.Pos(), "Function names should use CamelCase without underscores.")
	}
	if n := countParams(fn.Type); n > maxFuncParams {
		w.emit("SS403", fn.Name.Pos(),
			fmt.Sprintf("Function has %d parameters; target at most %d.", n, maxFuncParams))
	}
	if fn.Body != nil {
		lines := w.fset.Position(fn.End()).Line - w.fset.Position(fn.Pos()).Line + 1
		if lines > maxFuncLines {
			w.emit("SS404", fn.Name.Pos(),
				fmt.Sprintf("Function spans %d lines; target at most %d.", lines, maxFuncLines))
		}
		if depth := maxNesting(fn.Body, 0); depth > maxNestingDepth {
			w.emit("SS405", fn.Name.Pos(),
				fmt.Sprintf("Maximum block nesting depth is %d; keep it at or below %d.", depth, maxNestingDepth))
		}
	}
}

func (w *walker) checkConstNames(decl *ast.GenDecl) {
	for _, spec := range decl.Specs {
		vs, ok := spec.(*ast.ValueSpec)
		if !ok {
			continue
		}
		for _, name := range vs.Names {
			if name.Name != "_" && strings.Contains(name.Name, "_") {
				w.emit("SS410", name.Pos(), "Constant names should use CamelCase without underscores.")
			}
		}
	}
}

// checkCalls covers the call-site rules: command execution, broad
// recovers, TLS verification, and dynamic loading.
func (w *walker) checkCalls(file *ast.File) {
	ast.Inspect(file, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.CallExpr:
			w.checkCallExpr(node)
		case *ast.KeyValueExpr:
			w.checkTLSField(node)
		case *ast.AssignStmt:
			w.checkTLSAssign(node)
		}
		return true
	})
}

func (w *walker) checkCallExpr(call *ast.CallExpr) {
	switch fun := call.Fun.(type) {
	case *ast.Ident:
		if fun.Name == "recover" {
			w.emit("SS409", call.Pos(), "Recovering from every panic hides failures; scope the recovery.")
		}
	case *ast.SelectorExpr:
		pkg, ok := fun.X.(*ast.Ident)
		if !ok {
			return
		}
		switch {
		case pkg.Name == "exec" && (fun.Sel.Name == "Command" || fun.Sel.Name == "CommandContext"):
			w.emit("SS408", call.Pos(), "Avoid spawning shell commands with untrusted input.")
		case pkg.Name == "syscall" && fun.Sel.Name == "Exec":
			w.emit("SS408", call.Pos(), "Avoid direct process replacement with untrusted input.")
		case pkg.Name == "plugin" && fun.Sel.Name == "Open":
			w.emit("SS411", call.Pos(), "Dynamic plugin loading executes code chosen at runtime.")
		}
	}
}

func (w *walker) checkTLSField(kv *ast.KeyValueExpr) {
	key, ok := kv.Key.(*ast.Ident)
	if !ok || key.Name != "InsecureSkipVerify" {
		return
	}
	if val, ok := kv.Value.(*ast.Ident); ok && val.Name == "true" {
		w.emit("SS407", kv.Pos(), "Certificate verification is disabled (InsecureSkipVerify).")
	}
}

func (w *walker) checkTLSAssign(assign *ast.AssignStmt) {
	for i, lhs := range assign.Lhs {
		sel, ok := lhs.(*ast.SelectorExpr)
		if !ok || sel.Sel.Name != "InsecureSkipVerify" || i >= len(assign.Rhs) {
			continue
		}
		if val, ok := assign.Rhs[i].(*ast.Ident); ok && val.Name == "true" {
			w.emit("SS407", assign.Pos(), "Certificate verification is disabled (InsecureSkipVerify).")
		}
	}
}

// checkTypeShape evaluates the coupling/cohesion heuristics: method count
// per receiver type and the share of methods that never touch receiver
// state.
func (w *walker) checkTypeShape(file *ast.File) {
	type methodInfo struct {
		pos      token.Pos
		detached bool
	}
	methodsByType := map[string][]methodInfo{}
	firstPos := map[string]token.Pos{}

	for _, decl := range file.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok || fn.Recv == nil || len(fn.Recv.List) == 0 {
			continue
		}
		typeName := receiverTypeName(fn.Recv.List[0].Type)
		if typeName == "" {
			continue
		}
		if _, seen := firstPos[typeName]; !seen {
			firstPos[typeName] = fn.Pos()
		}
		methodsByType[typeName] = append(methodsByType[typeName], methodInfo{
			pos:      fn.Pos(),
			detached: !touchesReceiver(fn),
		})
	}

	for typeName, methods := range methodsByType {
		if len(methods) > maxTypeMethods {
			w.emit("SS412", firstPos[typeName],
				fmt.Sprintf("Type %q has %d methods; target at most %d.", typeName, len(methods), maxTypeMethods))
		}
		if len(methods) >= minCohesionMethods {
			detached := 0
			for _, m := range methods {
				if m.detached {
					detached++
				}
			}
			share := float64(detached) / float64(len(methods))
			if share > maxDetachedShare {
				w.emit("SS413", firstPos[typeName],
					fmt.Sprintf("Type %q methods rarely touch its state (%d of %d detached).", typeName, detached, len(methods)))
			}
		}
	}
}

func receiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return receiverTypeName(t.X)
	case *ast.IndexExpr:
		return receiverTypeName(t.X)
	case *ast.IndexListExpr:
		return receiverTypeName(t.X)
	default:
		return ""
	}
}

// touchesReceiver reports whether the method body references the named
// receiver at all.
func touchesReceiver(fn *ast.FuncDecl) bool {
	if fn.Body == nil || len(fn.Recv.List[0].Names) == 0 {
		return false
	}
	recvName := fn.Recv.List[0].Names[0].Name
	if recvName == "_" {
		return false
	}
	found := false
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		if found {
			return false
		}
		if id, ok := n.(*ast.Ident); ok && id.Name == recvName {
			found = true
			return false
		}
		return true
	})
	return found
}

func countParams(ft *ast.FuncType) int {
	if ft.Params == nil {
		return 0
	}
	n := 0
	for _, field := range ft.Params.List {
		if len(field.Names) == 0 {
			n++
			continue
		}
		n += len(field.Names)
	}
	return n
}

// maxNesting walks a statement tree counting nested control blocks.
func maxNesting(node ast.Node, depth int) int {
	deepest := depth
	ast.Inspect(node, func(n ast.Node) bool {
		switch stmt := n.(type) {
		case *ast.IfStmt:
			deepest = maxInt(deepest, maxNesting(stmt.Body, depth+1))
			if stmt.Else != nil {
				deepest = maxInt(deepest, maxNesting(stmt.Else, depth+1))
			}
			return false
		case *ast.ForStmt:
			deepest = maxInt(deepest, maxNesting(stmt.Body, depth+1))
			return false
		case *ast.RangeStmt:
			deepest = maxInt(deepest, maxNesting(stmt.Body, depth+1))
			return false
		case *ast.SwitchStmt:
			deepest = maxInt(deepest, maxNesting(stmt.Body, depth+1))
			return false
		case *ast.TypeSwitchStmt:
			deepest = maxInt(deepest, maxNesting(stmt.Body, depth+1))
			return false
		case *ast.SelectStmt:
			deepest = maxInt(deepest, maxNesting(stmt.Body, depth+1))
			return false
		}
		return true
	})
	return deepest
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

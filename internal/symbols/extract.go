package symbols

import (
	"perlsense/internal/cst"
	"perlsense/internal/source"
	"perlsense/internal/token"
)

// frame is one open scope of the walk.
type frame struct {
	scope ScopeID
	pkg   string
	end   uint32
	// pkgSym is the statement-form package whose region is still open in
	// this frame; it ends at the next package statement or the frame end.
	pkgSym SymbolID
}

type extractor struct {
	table  *Table
	frames []frame
	// barewords indexes references still to be classified once every
	// declaration of the file is known.
	barewords []int
	// library indexes references to well-known module exports; they are
	// dropped unless the file declares or imports a sub of that name.
	library []int
	// heredocs holds, in order, whether each pending heredoc body
	// interpolates.
	heredocs []bool
	deps     map[string]bool
}

// Extract builds the symbol table of a parsed file in one top-down walk.
// The result depends only on the tree.
func Extract(tree *cst.Tree, file source.FileID) *Table {
	if tree == nil || tree.Root == nil {
		return NewTable(file, source.Span{File: file})
	}
	t := NewTable(file, tree.Root.Span)
	x := &extractor{
		table:  t,
		frames: []frame{{scope: t.root, pkg: DefaultPackage, end: tree.Root.Span.End}},
		deps:   make(map[string]bool),
	}
	x.walkChildren(tree.Root)
	x.finishPackage(tree.Root.Span.End)
	x.classifyBarewords()
	return t
}

func (x *extractor) top() *frame { return &x.frames[len(x.frames)-1] }

func (x *extractor) pkg() string { return x.top().pkg }

func (x *extractor) enter(kind ScopeKind, span source.Span, pkg string) {
	scope := x.table.Scopes.New(kind, x.top().scope, span, pkg)
	x.frames = append(x.frames, frame{scope: scope, pkg: pkg, end: span.End})
}

func (x *extractor) leave() {
	x.finishPackage(x.top().end)
	x.frames = x.frames[:len(x.frames)-1]
}

// finishPackage closes the region of the open statement-form package.
func (x *extractor) finishPackage(end uint32) {
	f := x.top()
	if sym := x.table.Symbols.Get(f.pkgSym); sym != nil {
		sym.Span.End = end
	}
	f.pkgSym = NoSymbolID
}

func (x *extractor) declare(sym *Symbol) SymbolID {
	return x.table.declare(x.top().scope, sym)
}

func (x *extractor) addDep(module string) {
	if module == "" || x.deps[module] {
		return
	}
	x.deps[module] = true
	x.table.Dependencies = append(x.table.Dependencies, module)
}

func (x *extractor) walkChildren(n *cst.Node) {
	for _, c := range n.Children {
		x.walk(c)
	}
}

// walkExcept walks the children of n other than skip.
func (x *extractor) walkExcept(n, skip *cst.Node) {
	for _, c := range n.Children {
		if c != skip {
			x.walk(c)
		}
	}
}

func (x *extractor) walk(n *cst.Node) {
	switch n.Kind {
	case cst.Token:
		x.leaf(n.Tok)
	case cst.PackageDecl:
		x.packageDecl(n)
	case cst.SubDecl:
		x.subDecl(n)
	case cst.AnonSub:
		x.anonSub(n)
	case cst.UseDecl:
		x.useDecl(n)
	case cst.RequireExpr:
		x.requireExpr(n)
	case cst.VarDecl:
		x.varDecl(n)
	case cst.Block, cst.IfStmt, cst.WhileStmt, cst.ForStmt, cst.ForeachStmt:
		x.enter(ScopeBlock, n.Span, x.pkg())
		x.walkChildren(n)
		x.leave()
	case cst.AssignExpr:
		x.assign(n)
	case cst.Variable:
		x.variable(n, false)
	case cst.ElementExpr:
		x.element(n)
	case cst.FuncCall, cst.ListOpCall:
		x.call(n)
	case cst.MethodCall:
		x.methodCall(n)
	case cst.ClassName:
		x.classRef(n)
	case cst.Bareword:
		x.bareword(n)
	default:
		x.walkChildren(n)
	}
}

// leaf handles tokens whose text carries references.
func (x *extractor) leaf(tok *token.Token) {
	switch tok.Kind {
	case token.HeredocStart:
		x.heredocs = append(x.heredocs, interpolatingHeredoc(tok.Text))
	case token.HeredocBody:
		if len(x.heredocs) == 0 {
			return
		}
		interp := x.heredocs[0]
		x.heredocs = x.heredocs[1:]
		if interp {
			x.interpolated(tok)
		}
	case token.String, token.QuoteLike, token.Command, token.Regex, token.Substitution:
		if interpolates(tok) {
			x.interpolated(tok)
		}
	}
}

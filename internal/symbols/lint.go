package symbols

import (
	"fmt"

	"perlsense/internal/diag"
)

// Lint reports the declaration warnings perl itself gives under "use
// warnings": a sub defined twice in one package, and a lexical declared
// twice in one scope.
func Lint(t *Table, r diag.Reporter) {
	if t == nil || r == nil {
		return
	}
	subs := make(map[string]*Symbol)
	type scoped struct {
		scope ScopeID
		name  string
	}
	lexicals := make(map[scoped]*Symbol)
	syms := t.Symbols.Data()
	for i := range syms {
		sym := &syms[i]
		switch {
		case sym.Kind == SymbolSub && !sym.Forward():
			if prev := subs[sym.QualifiedName]; prev != nil {
				diag.ReportWarning(r, diag.SemRedeclaredSub, sym.NameSpan,
					fmt.Sprintf("subroutine %s redefined", sym.BareName)).
					WithNote(prev.NameSpan, "previous definition here").
					Emit()
			}
			subs[sym.QualifiedName] = sym
		case sym.Kind == SymbolVariable && sym.Lexical() && sym.Flags&SymbolFlagParam == 0:
			key := scoped{sym.Scope, sym.BareName}
			if prev := lexicals[key]; prev != nil {
				diag.ReportWarning(r, diag.SemShadowedVar, sym.NameSpan,
					fmt.Sprintf("variable %s masks earlier declaration in same scope", sym.BareName)).
					WithNote(prev.NameSpan, "earlier declaration here").
					Emit()
			}
			lexicals[key] = sym
		}
	}
}

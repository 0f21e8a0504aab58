// Package symbols extracts the declarations and name-based references of one
// parsed file into a Table.
//
// Every declaration carries two names: the bare name used by callers in the
// same package and the fully qualified one. Variables keep their sigil, so
// "our @list" in package Foo is "@list" and "@Foo::list". Barewords the
// parser could not classify are resolved after the walk against the subs
// and packages the file declares or imports.
package symbols

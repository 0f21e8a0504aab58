// Package index is the workspace-wide symbol index.
//
// Every symbol is reachable twice: by its qualified name ("Foo::bar",
// "$Foo::x") and by its bare name ("bar", "$x"). A file is replaced as a
// whole by UpdateFile, under one write lock, so a reader sees either the
// previous generation of the file or the new one and never a mix.
//
// Cross-file references are matched by name only. Nothing here follows
// data flow, so a method call on an object matches every method of that
// name.
package index

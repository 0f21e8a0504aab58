package token

// namedUnary lists builtins parsed as named unary operators: one optional
// argument, binding tighter than comparison.
var namedUnary = map[string]bool{
	"defined": true, "ref": true, "scalar": true, "lc": true, "uc": true,
	"lcfirst": true, "ucfirst": true, "length": true, "chr": true, "ord": true,
	"hex": true, "oct": true, "abs": true, "int": true, "sqrt": true,
	"log": true, "exp": true, "sin": true, "cos": true, "quotemeta": true,
	"rand": true, "srand": true, "exists": true, "delete": true, "each": true,
	"keys": true, "values": true, "shift": true, "pop": true, "chdir": true,
	"rmdir": true, "readline": true, "close": true, "chomp": true, "chop": true,
	"lock": true, "undef": true, "study": true, "pos": true, "fc": true,
	"exit": true, "umask": true, "caller": true, "sleep": true, "localtime": true,
	"gmtime": true, "alarm": true, "readlink": true, "stat": true,
	"lstat": true,
}

// listOperators lists builtins that take a comma list without parentheses.
var listOperators = map[string]bool{
	"print": true, "printf": true, "say": true, "push": true, "unshift": true,
	"splice": true, "split": true, "join": true, "map": true, "grep": true,
	"sort": true, "reverse": true, "die": true, "warn": true, "open": true,
	"sprintf": true, "unlink": true, "chmod": true, "chown": true, "kill": true,
	"bless": true,
	"pack": true, "unpack": true, "system": true, "exec": true, "binmode": true,
	"seek": true, "read": true, "sysread": true, "syswrite": true, "select": true,
	"substr": true, "index": true, "rindex": true, "atan2": true,
	"utime": true, "mkdir": true, "rename": true, "opendir": true, "readdir": true,
	"closedir": true, "eof": true, "tie": true, "untie": true,
}

// libraryFunctions are exported by common modules (List::Util, Test::More,
// Carp) and parse like list operators, but a file may declare its own sub
// of the same name, so they are not builtins.
var libraryFunctions = map[string]bool{
	"first": true, "any": true, "all": true, "none": true, "sum": true,
	"max": true, "min": true, "uniq": true, "is": true, "ok": true, "isa_ok": true,
	"is_deeply": true, "like": true, "unlike": true, "cmp_ok": true, "can_ok": true,
	"diag": true, "note": true, "plan": true, "done_testing": true, "croak": true,
	"confess": true, "carp": true, "cluck": true,
}

// blockListOperators take an optional leading block: map { ... } @list.
var blockListOperators = map[string]bool{
	"map": true, "grep": true, "sort": true, "first": true, "any": true,
	"all": true, "none": true,
}

// filehandleOperators may take a bareword or {block} filehandle before the list.
var filehandleOperators = map[string]bool{
	"print": true, "printf": true, "say": true,
}

// IsNamedUnary reports whether name is a named unary builtin.
func IsNamedUnary(name string) bool { return namedUnary[name] }

// IsListOperator reports whether name parses as a list operator.
func IsListOperator(name string) bool { return listOperators[name] || libraryFunctions[name] }

// TakesBlock reports whether name accepts a leading block argument.
func TakesBlock(name string) bool { return blockListOperators[name] }

// TakesFilehandle reports whether name accepts a filehandle before its list.
func TakesFilehandle(name string) bool { return filehandleOperators[name] }

// argless builtins are usually called bare, so "shift // 0" is defined-or.
var argless = map[string]bool{"shift": true, "pop": true, "caller": true, "wantarray": true, "time": true}

// ExpectsTerm reports whether a term, not an operator, follows the bareword
// name. It drives regex-vs-divide after identifiers.
func ExpectsTerm(name string) bool {
	if argless[name] {
		return false
	}
	return namedUnary[name] || IsListOperator(name)
}

// IsArgless reports whether name is a builtin usually called without
// arguments.
func IsArgless(name string) bool { return argless[name] }

// IsBuiltin reports whether name is a core builtin function. A file cannot
// redefine these, so they never name a user sub.
func IsBuiltin(name string) bool {
	return namedUnary[name] || listOperators[name] || argless[name]
}

// IsLibraryFunction reports whether name is a well-known module export
// that parses like a builtin.
func IsLibraryFunction(name string) bool { return libraryFunctions[name] }

// IsKnownFunction reports whether the parser treats name as a function
// call: a core builtin or a library function.
func IsKnownFunction(name string) bool { return IsBuiltin(name) || libraryFunctions[name] }

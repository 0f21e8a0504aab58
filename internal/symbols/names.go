package symbols

import "strings"

// DefaultPackage is the package in effect before any package statement.
const DefaultPackage = "main"

// SplitQualified splits "Foo::Bar::baz" into "Foo::Bar" and "baz". A leading
// sigil stays on the bare part: "$Foo::x" gives "Foo" and "$x". An
// unqualified name has an empty package.
func SplitQualified(name string) (pkg, bare string) {
	sigil, rest := splitSigil(name)
	i := strings.LastIndex(rest, "::")
	if i < 0 {
		return "", name
	}
	pkg = rest[:i]
	if pkg == "" {
		pkg = DefaultPackage
	}
	return pkg, sigil + rest[i+2:]
}

// Qualify returns name in package pkg unless it is already qualified.
func Qualify(pkg, name string) string {
	if p, bare := SplitQualified(name); p != "" {
		sigil, rest := splitSigil(bare)
		return sigil + p + "::" + rest
	}
	if pkg == "" {
		pkg = DefaultPackage
	}
	sigil, rest := splitSigil(name)
	return sigil + pkg + "::" + rest
}

// LastSegment returns the part of a package name after the last "::".
func LastSegment(name string) string {
	if i := strings.LastIndex(name, "::"); i >= 0 {
		return name[i+2:]
	}
	return name
}

func splitSigil(name string) (sigil, rest string) {
	if name == "" {
		return "", ""
	}
	switch name[0] {
	case '$', '@', '%', '&', '*':
		return name[:1], name[1:]
	}
	return "", name
}

// variableName normalizes a variable token to "<sigil><name>": braces are
// dropped and "$::x" means "$main::x". It returns "" for punctuation and
// match variables, which are never declared.
func variableName(text string) string {
	if strings.HasPrefix(text, "$#") {
		text = "@" + text[2:]
	}
	sigil, rest := splitSigil(text)
	if sigil == "" {
		return ""
	}
	if strings.HasPrefix(rest, "{") && strings.HasSuffix(rest, "}") {
		rest = strings.TrimSpace(rest[1 : len(rest)-1])
	}
	if strings.HasPrefix(rest, "::") {
		rest = DefaultPackage + rest
	}
	if !isName(rest) || rest == "_" {
		return ""
	}
	return sigil + rest
}

// isName reports whether s is an identifier, possibly package-qualified.
func isName(s string) bool {
	if s == "" {
		return false
	}
	for _, part := range strings.Split(s, "::") {
		if part == "" || !isWordStart(part[0]) {
			return false
		}
		for i := 1; i < len(part); i++ {
			if !isWordByte(part[i]) {
				return false
			}
		}
	}
	return true
}

func isWordStart(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= 0x80
}

func isWordByte(c byte) bool {
	return isWordStart(c) || c >= '0' && c <= '9'
}

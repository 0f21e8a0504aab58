package source

import (
	"crypto/sha256"
	"path/filepath"
)

// StripBOM removes a leading UTF-8 byte order mark.
func StripBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}
	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}
	return content, false
}

// Hash returns the sha256 digest used for change detection and cache keys.
func Hash(text string) [32]byte {
	return sha256.Sum256([]byte(text))
}

func buildLineStarts(text string) []uint32 {
	out := make([]uint32, 1, 1+len(text)/32)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			out = append(out, toU32(i+1))
		}
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// NormalizePath gives every path one slash-separated clean form.
func NormalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

package bibdoc

import (
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"
	"unsafe"
)

func lower(ch rune) rune { return ('a' - 'A') | ch } // returns lower-case ch iff ch is ASCII letter

func isASCIIAlphaNumeric(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || '0' <= ch && ch <= '9'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func isNumber(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

// isNameByte reports whether c may appear in an entry type, key, field or
// macro name. Non-ASCII bytes are accepted so keys may carry UTF-8.
func isNameByte(c byte) bool {
	if c >= utf8.RuneSelf {
		return true
	}
	if isSpace(c) || c < ' ' {
		return false
	}
	return !strings.ContainsRune(`"#%'(),={}@`, rune(c))
}

// ByteSlice2String converts without copying; bs must not be modified afterwards.
func ByteSlice2String(bs []byte) string {
	if len(bs) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(bs), len(bs))
}

// onlyASCIAlphaNumeric folds s to lower-case ASCII letters and digits, dropping
// everything else. Used to build duplicate-detection keys.
func onlyASCIAlphaNumeric(s string) string {
	b := make([]byte, len(s))
	i := 0
	for _, ch := range s {
		ch := lower(ch)
		if isASCIIAlphaNumeric(ch) {
			b[i] = byte(ch)
			i++
		}
	}
	return ByteSlice2String(b[:i])
}

// firstLetter returns the first letter of s that would be visible when typeset:
// braces are skipped and so are control sequences such as \emph or \'.
func firstLetter(s string) (rune, bool) {
	for i := 0; i < len(s); {
		r, w := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '{' || r == '}':
			i += w
		case r == '\\':
			i += w
			j := i
			for j < len(s) && ('a' <= s[j] && s[j] <= 'z' || 'A' <= s[j] && s[j] <= 'Z') {
				j++
			}
			if j == i && j < len(s) {
				_, w := utf8.DecodeRuneInString(s[j:])
				j += w // \' \" \~ and friends
			}
			i = j
		case unicode.IsLetter(r):
			return r, true
		default:
			i += w
		}
	}
	return 0, false
}

// isLowerWord reports whether the first visible letter of w is lower case.
// Words without letters count as not lower case.
func isLowerWord(w string) bool {
	r, ok := firstLetter(w)
	return ok && unicode.IsLower(r)
}

// walkBraces calls fn with the offset of every unescaped byte of s and the
// brace depth outside it. A backslash escapes the byte after it, so \{ and \}
// are text, exactly as the lexer reads values. fn returning false stops the
// walk. balanced is false if a '}' has no opener or a '{' is left open.
func walkBraces(s string, fn func(i, depth int) bool) (balanced bool) {
	depth := 0
	balanced = true
	escaped := false
	for i := 0; i < len(s); i++ {
		if escaped {
			escaped = false
			continue
		}
		outer := depth
		switch s[i] {
		case BACKSLASH:
			escaped = true
		case LBRACE:
			depth++
		case RBRACE:
			depth--
			outer = depth
			if depth < 0 {
				balanced = false
			}
		}
		if !fn(i, outer) {
			return false
		}
	}
	return balanced && depth == 0
}

// splitTopLevel splits s on sep wherever sep occurs unescaped at brace depth
// zero.
func splitTopLevel(s, sep string) []string {
	var out []string
	start := 0
	walkBraces(s, func(i, depth int) bool {
		if depth == 0 && i >= start && strings.HasPrefix(s[i:], sep) {
			out = append(out, s[start:i])
			start = i + len(sep)
		}
		return true
	})
	return append(out, s[start:])
}

// braceDepthOK reports whether the unescaped braces of s are balanced.
func braceDepthOK(s string) bool {
	return walkBraces(s, func(int, int) bool { return true })
}

func saveWith(filename string, w func(io.Writer) error) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		ferr := f.Close()
		if err == nil {
			err = ferr
		}
	}()
	return w(f)
}

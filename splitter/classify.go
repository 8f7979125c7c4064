package splitter

import (
	"regexp"
	"strings"
)

// Class tags a statement by its leading keyword.
type Class int

const (
	ClassOther Class = iota
	ClassDML
	ClassSelect
)

func (c Class) String() string {
	switch c {
	case ClassDML:
		return "DML"
	case ClassSelect:
		return "SELECT"
	default:
		return "OTHER"
	}
}

// incrementPattern matches "+1" next to a closing paren, the shape of an
// id-generation subquery such as "(SELECT MAX(ID) FROM T)+1".
var incrementPattern = regexp.MustCompile(`\)\s*\+\s*1\b|\+\s*1\s*\)`)

// FirstKeyword returns the upper-cased first word of stmt, skipping leading
// whitespace, comments and opening parens.
func FirstKeyword(stmt string) string {
	code := CodeOnly(stmt)
	i := 0
	for i < len(code) && (isSpace(code[i]) || code[i] == '(') {
		i++
	}
	j := i
	for j < len(code) && isWordByte(code[j]) {
		j++
	}
	return strings.ToUpper(code[i:j])
}

// Classify reports whether stmt is DML (MERGE, INSERT, UPDATE), a SELECT, or
// anything else.
func Classify(stmt string) Class {
	switch FirstKeyword(stmt) {
	case "MERGE", "INSERT", "UPDATE":
		return ClassDML
	case "SELECT":
		return ClassSelect
	default:
		return ClassOther
	}
}

// IsDML is shorthand for Classify(stmt) == ClassDML.
func IsDML(stmt string) bool {
	return Classify(stmt) == ClassDML
}

// IsValidSelect reports whether stmt is a SELECT worth keeping as a
// verification query. Bare subquery fragments and "+1" id-generation
// subqueries are rejected.
func IsValidSelect(stmt string) bool {
	if Classify(stmt) != ClassSelect {
		return false
	}
	code := CodeOnly(stmt)
	if isFragment(code) {
		return false
	}
	return !incrementPattern.MatchString(code)
}

// isFragment reports a statement that opens with '(' or closes more parens
// than it opens.
func isFragment(code string) bool {
	trimmed := strings.TrimSpace(code)
	if strings.HasPrefix(trimmed, "(") {
		return true
	}
	depth := 0
	for i := 0; i < len(code); i++ {
		switch code[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return true
			}
		}
	}
	return false
}

// CodeOnly returns stmt with comment bodies and literal contents blanked out
// by spaces. Quote characters are kept so the literal positions stay visible
// and byte offsets are preserved.
func CodeOnly(stmt string) string {
	b := []byte(stmt)
	mode := modeNormal
	for i := 0; i < len(b); i++ {
		ch := b[i]
		switch mode {
		case modeLineComment:
			if ch == '\n' {
				mode = modeNormal
				continue
			}
			b[i] = ' '
		case modeBlockComment:
			if ch == '*' && i+1 < len(b) && b[i+1] == '/' {
				b[i], b[i+1] = ' ', ' '
				mode = modeNormal
				i++
				continue
			}
			if ch != '\n' {
				b[i] = ' '
			}
		case modeSingleQuote, modeDoubleQuote:
			quote := byte('\'')
			if mode == modeDoubleQuote {
				quote = '"'
			}
			if ch == quote {
				if i+1 < len(b) && b[i+1] == quote {
					b[i], b[i+1] = ' ', ' '
					i++
					continue
				}
				mode = modeNormal
				continue
			}
			b[i] = ' '
		default:
			switch {
			case ch == '-' && i+1 < len(b) && b[i+1] == '-':
				b[i], b[i+1] = ' ', ' '
				mode = modeLineComment
				i++
			case ch == '/' && i+1 < len(b) && b[i+1] == '*':
				b[i], b[i+1] = ' ', ' '
				mode = modeBlockComment
				i++
			case ch == '\'':
				mode = modeSingleQuote
			case ch == '"':
				mode = modeDoubleQuote
			}
		}
	}
	return string(b)
}

func isWordByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9') || b == '_'
}

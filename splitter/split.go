// Package splitter turns raw SQL text into top-level statements and groups
// those statements into bounded chunks.
package splitter

import "strings"

type scanMode int

const (
	modeNormal scanMode = iota
	modeSingleQuote
	modeDoubleQuote
	modeLineComment
	modeBlockComment
)

// Split splits SQL into statements while respecting single- and double-quoted
// literals (with the doubled-quote escape) and "--" / "/* */" comments. Each
// returned statement is trimmed and ends with exactly one ';'. Comments stay
// inside the statement they precede or follow; fragments holding nothing but
// whitespace and comments are dropped.
//
// Split never fails: an unterminated literal or comment runs to the end of
// the input and the fragment is emitted as the final statement.
func Split(query string) []string {
	var stmts []string
	s := query
	l := len(s)
	start := 0
	mode := modeNormal
	hasCode := false
	// tailComment is set while the last non-space text is a line comment,
	// which would swallow an appended ';'.
	tailComment := false

	emit := func(end int) {
		if hasCode {
			stmt := strings.TrimSpace(s[start:end])
			if tailComment {
				stmt += "\n"
			}
			stmts = append(stmts, stmt+";")
		}
		hasCode = false
		tailComment = false
	}

	for i := 0; i < l; i++ {
		ch := s[i]
		switch mode {
		case modeLineComment:
			if ch == '\n' {
				mode = modeNormal
			}
			continue
		case modeBlockComment:
			if ch == '*' && i+1 < l && s[i+1] == '/' {
				mode = modeNormal
				i++
			}
			continue
		case modeSingleQuote, modeDoubleQuote:
			quote := byte('\'')
			if mode == modeDoubleQuote {
				quote = '"'
			}
			if ch == quote {
				// SQL escapes a quote by doubling it; keep both verbatim
				if i+1 < l && s[i+1] == quote {
					i++
				} else {
					mode = modeNormal
				}
			}
			continue
		}

		// modeNormal
		switch {
		case ch == '-' && i+1 < l && s[i+1] == '-':
			mode = modeLineComment
			tailComment = true
			i++
		case ch == '/' && i+1 < l && s[i+1] == '*':
			mode = modeBlockComment
			tailComment = false
			i++
		case ch == '\'':
			mode = modeSingleQuote
			hasCode = true
			tailComment = false
		case ch == '"':
			mode = modeDoubleQuote
			hasCode = true
			tailComment = false
		case ch == ';':
			emit(i)
			start = i + 1
		case !isSpace(ch):
			hasCode = true
			tailComment = false
		}
	}
	if start < l {
		emit(l)
	}
	return stmts
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == '\v'
}

package splitter

import (
	"strings"
	"testing"
)

func TestSplitRespectsSingleQuotesAndComments(t *testing.T) {
	sql := "INSERT INTO t (c) VALUES ('value;with;semis'); -- comment; with semis\nSELECT 1;"
	stmts := Split(sql)
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %v", len(stmts), stmts)
	}
	if stmts[0] != "INSERT INTO t (c) VALUES ('value;with;semis');" {
		t.Fatalf("unexpected first statement: %q", stmts[0])
	}
	if !strings.HasPrefix(stmts[1], "-- comment; with semis\n") || !strings.HasSuffix(stmts[1], "SELECT 1;") {
		t.Fatalf("comment should stay with the following statement, got: %q", stmts[1])
	}
}

func TestSplitSemicolonInsideLiterals(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want string
	}{
		{"single quote", "INSERT INTO t VALUES ('a;b');", "INSERT INTO t VALUES ('a;b');"},
		{"double quote", `UPDATE "odd;name" SET c = 1;`, `UPDATE "odd;name" SET c = 1;`},
		{"doubled single quote", "INSERT INTO t VALUES ('it''s;fine');", "INSERT INTO t VALUES ('it''s;fine');"},
		{"doubled double quote", `SELECT "a"";b" FROM t;`, `SELECT "a"";b" FROM t;`},
		{"block comment", "INSERT /* x; y */ INTO t VALUES (1);", "INSERT /* x; y */ INTO t VALUES (1);"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmts := Split(tt.sql)
			if len(stmts) != 1 {
				t.Fatalf("expected 1 statement, got %d: %v", len(stmts), stmts)
			}
			if stmts[0] != tt.want {
				t.Fatalf("got %q, want %q", stmts[0], tt.want)
			}
		})
	}
}

func TestSplitAppendsMissingTerminator(t *testing.T) {
	stmts := Split("INSERT INTO a VALUES (1);\n  UPDATE b SET c = 2  \n")
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %v", len(stmts), stmts)
	}
	if stmts[1] != "UPDATE b SET c = 2;" {
		t.Fatalf("unexpected final statement: %q", stmts[1])
	}
}

func TestSplitDiscardsWhitespaceAndCommentRemainders(t *testing.T) {
	tests := []string{
		"SELECT 1;   \n\t\n",
		"SELECT 1; -- trailing note",
		"SELECT 1; /* closing block */\n",
		"SELECT 1;;;",
	}
	for _, sql := range tests {
		stmts := Split(sql)
		if len(stmts) != 1 || stmts[0] != "SELECT 1;" {
			t.Fatalf("Split(%q) = %v, want [SELECT 1;]", sql, stmts)
		}
	}
	if got := Split("-- only a comment\n/* and a block */"); len(got) != 0 {
		t.Fatalf("comment-only input should produce no statements, got %v", got)
	}
	if got := Split("   "); len(got) != 0 {
		t.Fatalf("blank input should produce no statements, got %v", got)
	}
}

func TestSplitUnterminatedConstructsRunToEnd(t *testing.T) {
	stmts := Split("INSERT INTO t VALUES (1); INSERT INTO t VALUES ('open; still open")
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %d: %v", len(stmts), stmts)
	}
	if stmts[1] != "INSERT INTO t VALUES ('open; still open;" {
		t.Fatalf("unexpected fragment: %q", stmts[1])
	}

	stmts = Split("UPDATE t SET a = 1 /* never closed; ")
	if len(stmts) != 1 || !strings.HasSuffix(stmts[0], ";") {
		t.Fatalf("unterminated block comment should yield one statement, got %v", stmts)
	}
}

func TestSplitTrailingLineCommentKeepsTerminatorUsable(t *testing.T) {
	stmts := Split("SELECT 1 FROM dual -- note")
	if len(stmts) != 1 {
		t.Fatalf("expected 1 statement, got %v", stmts)
	}
	if stmts[0] != "SELECT 1 FROM dual -- note\n;" {
		t.Fatalf("terminator must not end up inside the comment, got %q", stmts[0])
	}
}

func TestSplitTerminatorAfterLineComment(t *testing.T) {
	stmts := Split("INSERT INTO t VALUES (1) -- note\n;\nINSERT INTO t VALUES (2);")
	if len(stmts) != 2 {
		t.Fatalf("expected 2 statements, got %v", stmts)
	}
	if stmts[0] != "INSERT INTO t VALUES (1) -- note\n;" {
		t.Fatalf("terminator must not end up inside the comment, got %q", stmts[0])
	}
	again := Split(strings.Join(stmts, "\n"))
	if len(again) != 2 {
		t.Fatalf("re-splitting joined statements gave %d statements: %v", len(again), again)
	}

	stmts = Split("UPDATE t SET a = 1 /* done */;")
	if len(stmts) != 1 || stmts[0] != "UPDATE t SET a = 1 /* done */;" {
		t.Fatalf("block comment tail should keep the plain terminator, got %q", stmts)
	}
}

func TestSplitPreservesOrderAndContent(t *testing.T) {
	parts := []string{
		"INSERT INTO a VALUES ('x')",
		"MERGE INTO b USING dual ON (1 = 1) WHEN MATCHED THEN UPDATE SET c = 'd;e'",
		"SELECT * FROM a",
		"UPDATE a SET v = 'ñandú'",
	}
	sql := strings.Join(parts, ";\n") + ";"
	stmts := Split(sql)
	if len(stmts) != len(parts) {
		t.Fatalf("expected %d statements, got %d: %v", len(parts), len(stmts), stmts)
	}
	for i, p := range parts {
		if stmts[i] != p+";" {
			t.Fatalf("statement %d = %q, want %q", i, stmts[i], p+";")
		}
	}
}

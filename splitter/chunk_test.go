package splitter

import (
	"fmt"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
)

const testHeader = "SET DEFINE OFF;"

func TestByteSize(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 3},
		{"é", 2},
		{"日本", 6},
		{"😀", 4},
		{"a\xffb", 5},
	}
	for _, tt := range tests {
		if got := ByteSize(tt.in); got != tt.want {
			t.Errorf("ByteSize(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestChunkBySizePacksGreedily(t *testing.T) {
	stmts := []string{
		"INSERT INTO T1 VALUES (1);", // 26 bytes
		"INSERT INTO T1 VALUES (2);",
		"INSERT INTO T1 VALUES (3);",
	}
	// header(15) + 2 statements with joins = 15 + 1 + 26 + 1 + 26 = 69
	chunks := ChunkBySize(stmts, 69, testHeader)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	want := testHeader + "\n" + stmts[0] + "\n" + stmts[1]
	if chunks[0].Content != want {
		t.Fatalf("chunk 0 = %q, want %q", chunks[0].Content, want)
	}
	if chunks[0].Bytes != 69 || chunks[0].Statements != 2 || chunks[0].DMLCount != 2 {
		t.Fatalf("unexpected chunk 0 stats: %+v", chunks[0])
	}
	if chunks[1].Content != testHeader+"\n"+stmts[2] {
		t.Fatalf("chunk 1 = %q", chunks[1].Content)
	}
}

func TestChunkBySizeOversizedStatementStandsAlone(t *testing.T) {
	big := "INSERT INTO T VALUES ('" + strings.Repeat("x", 200) + "');"
	stmts := []string{"SELECT 1;", big, "SELECT 2;"}
	chunks := ChunkBySize(stmts, 60, testHeader)
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d: %+v", len(chunks), chunks)
	}
	if !chunks[1].Oversized || chunks[1].Statements != 1 {
		t.Fatalf("oversized statement must be alone and flagged: %+v", chunks[1])
	}
	if chunks[0].Oversized || chunks[2].Oversized {
		t.Fatalf("only the big chunk should be flagged")
	}
}

func TestChunkBySizeNoLimitAndEmptyInput(t *testing.T) {
	if got := ChunkBySize(nil, 10, testHeader); len(got) != 0 {
		t.Fatalf("no statements should give no chunks, got %v", got)
	}
	chunks := ChunkBySize([]string{"SELECT 1;", "SELECT 2;"}, 0, "")
	if len(chunks) != 1 || chunks[0].Content != "SELECT 1;\nSELECT 2;" {
		t.Fatalf("unexpected chunks: %+v", chunks)
	}
}

func TestChunkByCountSelectsFollowTheirDML(t *testing.T) {
	stmts := []string{
		"SELECT * FROM T;",
		"INSERT INTO T VALUES (1);",
		"SELECT * FROM T WHERE ID = 1;",
		"INSERT INTO T VALUES (2);",
		"SELECT * FROM T WHERE ID = 2;",
		"UPDATE T SET A = 1;",
		"SELECT * FROM T WHERE A = 1;",
	}
	chunks := ChunkByCount(stmts, 2, testHeader, 0)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %+v", len(chunks), chunks)
	}
	if chunks[0].DMLCount != 2 || chunks[0].Statements != 5 {
		t.Fatalf("first chunk should hold 2 DML and 3 selects: %+v", chunks[0])
	}
	if !strings.HasSuffix(chunks[0].Content, "SELECT * FROM T WHERE ID = 2;") {
		t.Fatalf("select must stay with preceding DML: %q", chunks[0].Content)
	}
	if chunks[1].Content != testHeader+"\nUPDATE T SET A = 1;\nSELECT * FROM T WHERE A = 1;" {
		t.Fatalf("unexpected second chunk: %q", chunks[1].Content)
	}
}

func TestChunkByCountFlagsOversizedWithoutSplitting(t *testing.T) {
	stmts := []string{
		"INSERT INTO T VALUES ('" + strings.Repeat("a", 100) + "');",
		"INSERT INTO T VALUES ('" + strings.Repeat("b", 100) + "');",
	}
	chunks := ChunkByCount(stmts, 5, testHeader, 50)
	if len(chunks) != 1 {
		t.Fatalf("size limit must not force a split, got %d chunks", len(chunks))
	}
	if !chunks[0].Oversized {
		t.Fatalf("chunk over the size limit should be flagged")
	}
}

func randomStatements(f *gofakeit.Faker, n int) []string {
	stmts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		value := strings.Repeat(f.Word(), f.Number(1, 12))
		if f.Bool() {
			value += " ñ日😀"
		}
		switch f.Number(0, 2) {
		case 0:
			stmts = append(stmts, fmt.Sprintf("INSERT INTO %s VALUES ('%s');", f.LetterN(5), value))
		case 1:
			stmts = append(stmts, fmt.Sprintf("UPDATE %s SET c = '%s';", f.LetterN(5), value))
		default:
			stmts = append(stmts, fmt.Sprintf("SELECT '%s' FROM dual;", value))
		}
	}
	return stmts
}

func TestChunkBySizeInvariants(t *testing.T) {
	f := gofakeit.New(42)
	for round := 0; round < 50; round++ {
		stmts := randomStatements(f, f.Number(0, 40))
		budget := f.Number(20, 400)
		chunks := ChunkBySize(stmts, budget, testHeader)

		var rebuilt []string
		for i, c := range chunks {
			if c.Bytes != ByteSize(c.Content) {
				t.Fatalf("round %d chunk %d: Bytes %d != ByteSize %d", round, i, c.Bytes, ByteSize(c.Content))
			}
			if c.Bytes > budget && c.Statements != 1 {
				t.Fatalf("round %d chunk %d exceeds budget %d with %d statements", round, i, budget, c.Statements)
			}
			if !strings.HasPrefix(c.Content, testHeader+"\n") {
				t.Fatalf("round %d chunk %d missing header", round, i)
			}
			rebuilt = append(rebuilt, strings.Split(strings.TrimPrefix(c.Content, testHeader+"\n"), "\n")...)
		}
		if strings.Join(rebuilt, "\n") != strings.Join(stmts, "\n") {
			t.Fatalf("round %d: chunks dropped, duplicated or reordered statements", round)
		}
	}
}

func TestChunkByCountInvariants(t *testing.T) {
	f := gofakeit.New(7)
	for round := 0; round < 50; round++ {
		stmts := randomStatements(f, f.Number(0, 60))
		limit := f.Number(1, 6)
		chunks := ChunkByCount(stmts, limit, testHeader, 0)

		total := 0
		for i, c := range chunks {
			dml := 0
			for _, s := range strings.Split(c.Content, "\n")[1:] {
				if IsDML(s) {
					dml++
				}
			}
			if dml != c.DMLCount {
				t.Fatalf("round %d chunk %d: DMLCount %d, counted %d", round, i, c.DMLCount, dml)
			}
			if dml > limit {
				t.Fatalf("round %d chunk %d holds %d DML, limit %d", round, i, dml, limit)
			}
			total += c.Statements
		}
		if total != len(stmts) {
			t.Fatalf("round %d: %d statements in, %d out", round, len(stmts), total)
		}
	}
}

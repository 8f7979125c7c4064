package splitter

import (
	"strings"
	"unicode/utf8"
)

// ByteSize returns the number of bytes s occupies once encoded as UTF-8.
// Invalid bytes are counted as the 3-byte replacement character an encoder
// would write in their place.
func ByteSize(s string) int {
	n := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			n += utf8.RuneLen(utf8.RuneError)
		} else {
			n += size
		}
		i += size
	}
	return n
}

// Chunk is one bounded output unit: a header line followed by whole statements.
type Chunk struct {
	Content    string `json:"content"`
	Statements int    `json:"statements"`
	DMLCount   int    `json:"dml_count"`
	Bytes      int    `json:"bytes"`
	// Oversized is set when the chunk exceeds its byte budget. For size
	// chunking that only happens for a lone statement larger than the budget.
	Oversized bool `json:"oversized"`
}

type chunkBuilder struct {
	header string
	parts  []string
	bytes  int
	dml    int
}

func newChunkBuilder(header string) *chunkBuilder {
	b := &chunkBuilder{header: header}
	b.reset()
	return b
}

func (b *chunkBuilder) reset() {
	b.parts = b.parts[:0]
	b.bytes = 0
	b.dml = 0
	if b.header != "" {
		b.parts = append(b.parts, b.header)
		b.bytes = ByteSize(b.header)
	}
}

func (b *chunkBuilder) statements() int {
	if b.header != "" {
		return len(b.parts) - 1
	}
	return len(b.parts)
}

// sizeWith returns the chunk's byte length if stmt were appended.
func (b *chunkBuilder) sizeWith(stmt string) int {
	if len(b.parts) == 0 {
		return ByteSize(stmt)
	}
	return b.bytes + 1 + ByteSize(stmt)
}

func (b *chunkBuilder) add(stmt string) {
	b.bytes = b.sizeWith(stmt)
	b.parts = append(b.parts, stmt)
	if IsDML(stmt) {
		b.dml++
	}
}

func (b *chunkBuilder) build() Chunk {
	return Chunk{
		Content:    strings.Join(b.parts, "\n"),
		Statements: b.statements(),
		DMLCount:   b.dml,
		Bytes:      b.bytes,
	}
}

// ChunkBySize packs statements greedily, in order, into chunks of at most
// maxBytes bytes (header, statements and joining newlines included). A
// statement is never split: one that cannot fit even in an empty chunk is
// emitted alone and flagged Oversized. maxBytes <= 0 disables the limit.
func ChunkBySize(stmts []string, maxBytes int, header string) []Chunk {
	var chunks []Chunk
	b := newChunkBuilder(header)
	for _, stmt := range stmts {
		if maxBytes > 0 && b.statements() > 0 && b.sizeWith(stmt) > maxBytes {
			chunks = append(chunks, b.build())
			b.reset()
		}
		b.add(stmt)
	}
	if b.statements() > 0 {
		chunks = append(chunks, b.build())
	}
	if maxBytes > 0 {
		for i := range chunks {
			chunks[i].Oversized = chunks[i].Bytes > maxBytes
		}
	}
	return chunks
}

// ChunkByCount groups statements so that each chunk holds at most maxDML
// DML statements. SELECT and other statements do not count and stay with the
// DML statements that precede them. When sizeLimit > 0, chunks larger than
// sizeLimit bytes are flagged Oversized; the limit never forces a split.
// maxDML <= 0 disables the limit.
func ChunkByCount(stmts []string, maxDML int, header string, sizeLimit int) []Chunk {
	var chunks []Chunk
	b := newChunkBuilder(header)
	for _, stmt := range stmts {
		if maxDML > 0 && b.dml >= maxDML && IsDML(stmt) {
			chunks = append(chunks, b.build())
			b.reset()
		}
		b.add(stmt)
	}
	if b.statements() > 0 {
		chunks = append(chunks, b.build())
	}
	if sizeLimit > 0 {
		for i := range chunks {
			chunks[i].Oversized = chunks[i].Bytes > sizeLimit
		}
	}
	return chunks
}

package splitter

import "testing"

func TestBaseName(t *testing.T) {
	tests := []struct {
		name     string
		chunk    string
		index    int
		fallback string
		want     string
	}{
		{"insert", "SET DEFINE OFF;\nINSERT INTO HR.EMPLOYEES (ID) VALUES (1);", 0, "", "HR.EMPLOYEES"},
		{"merge lower case", "merge into app.cfg_values t using dual on (1=1);", 3, "", "app.cfg_values"},
		{"quoted", `INSERT INTO "HR"."JOB$HIST" VALUES (1);`, 0, "", "HR.JOB$HIST"},
		{"first wins", "UPDATE A SET X = 1;\nINSERT INTO B.C VALUES (1);\nINSERT INTO D.E VALUES (2);", 0, "", "B.C"},
		{"fallback", "UPDATE A SET X = 1;", 1, "my_script", "my_script"},
		{"synthetic", "UPDATE A SET X = 1;", 1, "", "CHUNK_2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BaseName(tt.chunk, tt.index, tt.fallback); got != tt.want {
				t.Fatalf("BaseName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNamerChunkFileName(t *testing.T) {
	n := NewNamer()
	if got := n.ChunkFileName("HR.EMP", 0, 1); got != "HR.EMP.sql" {
		t.Fatalf("single chunk name = %q", got)
	}
	if got := n.ChunkFileName("HR.DEPT", 1, 3); got != "HR.DEPT_2.sql" {
		t.Fatalf("multi chunk name = %q", got)
	}
	if got := n.ChunkFileName("hr.emp", 0, 1); got != "hr.emp_2.sql" {
		t.Fatalf("repeated name should be disambiguated, got %q", got)
	}
}

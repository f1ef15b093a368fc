package csvfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

var columns = []string{"No", "Tanggal", "Aplikasi", "Jenis", "Laba"}

func TestAppendRowsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := Open(filepath.Join(t.TempDir(), "entries.csv"), columns)

	if rows, err := s.Rows(ctx); err != nil || len(rows) != 0 {
		t.Fatalf("fresh store: rows=%v err=%v", rows, err)
	}

	err := s.Append(ctx, map[string]string{
		"No": "1", "Tanggal": "05/08/2026", "Aplikasi": "Canva", "Jenis": "lifetime", "Laba": "15000",
	})
	if err != nil {
		t.Fatal(err)
	}
	rows, err := s.Rows(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Named["Aplikasi"] != "Canva" || rows[0].Cell(4) != "15000" {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
	if rows[0].Index != 0 {
		t.Fatalf("index=%d", rows[0].Index)
	}
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	s := Open(filepath.Join(t.TempDir(), "entries.csv"), columns)

	for i, app := range []string{"Canva", "Capcut"} {
		if err := s.Append(ctx, map[string]string{"No": string(rune('1' + i)), "Aplikasi": app}); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Update(ctx, 1, "Laba", "8000"); err != nil {
		t.Fatal(err)
	}
	rows, _ := s.Rows(ctx)
	if rows[1].Named["Laba"] != "8000" {
		t.Fatalf("update not persisted: %+v", rows[1])
	}

	if err := s.Delete(ctx, 0); err != nil {
		t.Fatal(err)
	}
	rows, _ = s.Rows(ctx)
	if len(rows) != 1 || rows[0].Named["Aplikasi"] != "Capcut" {
		t.Fatalf("delete wrong row: %+v", rows)
	}
	if err := s.Delete(ctx, 5); err == nil {
		t.Fatal("expected out of range error")
	}
}

func TestHeaderlessFileResolvesPositionally(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "raw.csv")
	raw := "1,05/08/2026,Canva,lifetime,15000\n2,05/08/2026,Capcut,1 bulan,8000\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	s := Open(path, columns)
	rows, err := s.Rows(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Named != nil {
		t.Fatalf("headerless rows must not carry named cells: %+v", rows[0].Named)
	}
	if rows[1].Cell(2) != "Capcut" || rows[1].Cell(4) != "8000" {
		t.Fatalf("positional cells wrong: %+v", rows[1])
	}

	// updates on a headerless file stay positional
	if err := s.Update(ctx, 0, "No", "9"); err != nil {
		t.Fatal(err)
	}
	rows, _ = s.Rows(ctx)
	if rows[0].Cell(0) != "9" {
		t.Fatalf("update missed: %+v", rows[0])
	}
}

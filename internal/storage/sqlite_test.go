package storage

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestMigrationsIdempotent runs Open twice on the same database and verifies
// the schema_version count stays correct (migration not re-applied).
func TestMigrationsIdempotent(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open failed: %v", err)
	}

	v1, err := s1.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}
	s1.Close()

	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open failed: %v", err)
	}
	defer s2.Close()

	v2, err := s2.AppliedMigrations()
	if err != nil {
		t.Fatalf("AppliedMigrations: %v", err)
	}

	if len(v1) != len(v2) {
		t.Errorf("migration count changed: %d -> %d", len(v1), len(v2))
	}
}

func TestIndexesExist(t *testing.T) {
	s := openTestStore(t)

	indexes := []string{"idx_analyses_created_at", "idx_analyses_kind"}
	for _, idx := range indexes {
		var count int
		err := s.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name=?", idx).Scan(&count)
		if err != nil {
			t.Fatalf("querying index %s: %v", idx, err)
		}
		if count != 1 {
			t.Errorf("index %s not found", idx)
		}
	}
}

func TestSaveGetAnalysis(t *testing.T) {
	s := openTestStore(t)

	a := Analysis{
		ID:          "a1",
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Kind:        KindAnalysis,
		Title:       "dinner talk",
		SourceFiles: `["dinner.txt"]`,
		ContextNote: "couple's check-in",
		Transcript:  "A: hi\nB: hello",
		Result:      "## Surface Layer\nGreetings.",
	}
	if err := s.SaveAnalysis(a); err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}

	got, err := s.GetAnalysis("a1")
	if err != nil {
		t.Fatalf("GetAnalysis: %v", err)
	}
	if got.Kind != KindAnalysis || got.Title != a.Title || got.Result != a.Result {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(a.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, a.CreatedAt)
	}
}

func TestGetAnalysisNotFound(t *testing.T) {
	s := openTestStore(t)

	if _, err := s.GetAnalysis("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSaveAnalysisDefaultsSourceFiles(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveAnalysis(Analysis{ID: "a1", CreatedAt: time.Now(), Kind: KindProfile, Result: "{}"}); err != nil {
		t.Fatalf("SaveAnalysis: %v", err)
	}
	got, err := s.GetAnalysis("a1")
	if err != nil {
		t.Fatal(err)
	}
	if got.SourceFiles != "[]" {
		t.Errorf("source_files = %q, want empty array", got.SourceFiles)
	}
}

func TestListAnalysesOrderAndFilter(t *testing.T) {
	s := openTestStore(t)

	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		kind := KindAnalysis
		if i%2 == 0 {
			kind = KindEmotions
		}
		a := Analysis{
			ID:        fmt.Sprintf("a%d", i),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
			Kind:      kind,
			Result:    "x",
		}
		if err := s.SaveAnalysis(a); err != nil {
			t.Fatalf("SaveAnalysis %d: %v", i, err)
		}
	}

	all, err := s.ListAnalyses("", 10)
	if err != nil {
		t.Fatalf("ListAnalyses: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("got %d analyses, want 5", len(all))
	}
	if all[0].ID != "a4" || all[4].ID != "a0" {
		t.Errorf("not ordered newest first: %s ... %s", all[0].ID, all[4].ID)
	}

	emotions, err := s.ListAnalyses(KindEmotions, 10)
	if err != nil {
		t.Fatalf("ListAnalyses(emotions): %v", err)
	}
	if len(emotions) != 3 {
		t.Errorf("got %d emotion analyses, want 3", len(emotions))
	}

	limited, err := s.ListAnalyses("", 2)
	if err != nil {
		t.Fatalf("ListAnalyses limit: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("got %d analyses with limit 2", len(limited))
	}
}

func TestDeleteAnalysis(t *testing.T) {
	s := openTestStore(t)

	if err := s.SaveAnalysis(Analysis{ID: "a1", CreatedAt: time.Now(), Kind: KindAnalysis, Result: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteAnalysis("a1"); err != nil {
		t.Fatalf("DeleteAnalysis: %v", err)
	}
	if _, err := s.GetAnalysis("a1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("record still present after delete: %v", err)
	}
	if err := s.DeleteAnalysis("a1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

package archive

import (
	"context"
	"testing"
	"time"

	"github.com/ftorres/b3score/internal/core"
)

func testAnalysis(code string, score float64, at time.Time) core.QualityAnalysis {
	return core.QualityAnalysis{
		Code:           code,
		Sector:         core.SectorBancos,
		Composite:      core.CompositeScore{Value: score},
		Recommendation: core.Hold,
		GeneratedAt:    at,
	}
}

func TestLocalFS_RoundTrip(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	if err := fs.Write(ctx, "a/b/c.json", []byte("payload")); err != nil {
		t.Fatal(err)
	}

	data, err := fs.Read(ctx, "a/b/c.json")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Errorf("read back: got %q", data)
	}

	ok, err := fs.Exists(ctx, "a/b/c.json")
	if err != nil || !ok {
		t.Errorf("exists: got %v, %v", ok, err)
	}

	paths, err := fs.List(ctx, "a")
	if err != nil || len(paths) != 1 || paths[0] != "a/b/c.json" {
		t.Errorf("list: got %v, %v", paths, err)
	}

	if err := fs.Delete(ctx, "a/b/c.json"); err != nil {
		t.Fatal(err)
	}
	ok, _ = fs.Exists(ctx, "a/b/c.json")
	if ok {
		t.Error("file should be gone after delete")
	}
}

func TestLocalFS_ListMissingPrefix(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())

	paths, err := fs.List(context.Background(), "nothing/here")
	if err != nil {
		t.Fatalf("listing missing prefix: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("expected empty list, got %v", paths)
	}
}

func TestArchiver_SaveAndHistory(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ar := NewArchiver(fs)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, score := range []float64{55, 61, 70} {
		a := testAnalysis("ITUB4", score, base.AddDate(0, i, 0))
		if err := ar.SaveAnalysis(ctx, a); err != nil {
			t.Fatal(err)
		}
	}
	// another stock's history must not bleed in
	ar.SaveAnalysis(ctx, testAnalysis("BBDC4", 50, base))

	history, err := ar.History(ctx, "ITUB4")
	if err != nil {
		t.Fatal(err)
	}
	if len(history) != 3 {
		t.Fatalf("history: got %d entries, want 3", len(history))
	}
	for i, want := range []float64{55, 61, 70} {
		if history[i].Composite.Value != want {
			t.Errorf("entry %d: got %.0f, want %.0f", i, history[i].Composite.Value, want)
		}
	}
}

func TestArchiver_HistoryEmpty(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ar := NewArchiver(fs)

	history, err := ar.History(context.Background(), "GHOST3")
	if err != nil {
		t.Fatalf("empty history: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected no entries, got %d", len(history))
	}
}

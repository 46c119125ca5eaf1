package journal

import (
	"path/filepath"
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func readAll(t *testing.T, dir string) []Entry {
	t.Helper()
	r, err := OpenDir(dir)
	if err != nil {
		t.Fatalf("OpenDir: %v", err)
	}
	defer r.Close()
	var out []Entry
	for r.Next() {
		out = append(out, r.Entry())
	}
	if err := r.Err(); err != nil {
		t.Fatalf("read: %v", err)
	}
	return out
}

func TestWriteRotateRead(t *testing.T) {
	dir := t.TempDir()
	clk := &fakeClock{t: time.Date(2026, 3, 1, 10, 59, 0, 0, time.UTC)}
	w, err := NewWriter(dir, "g1", WithClock(clk.now))
	if err != nil {
		t.Fatal(err)
	}
	if w.Session() == "" {
		t.Fatalf("expected a session id")
	}
	if err := w.Append(KindSnapshot, []byte(`{"state":"playing"}`)); err != nil {
		t.Fatal(err)
	}
	if err := w.Append(KindEvent, []byte(`{"type":"player_joined"}`)); err != nil {
		t.Fatal(err)
	}
	clk.t = clk.t.Add(2 * time.Minute)
	if err := w.Append(KindEvent, []byte(`{"type":"cards_drawn"}`)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	files, err := ListFiles(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"journal-2026-03-01-10.jsonl.zst", "journal-2026-03-01-11.jsonl.zst"}
	if len(files) != 2 || filepath.Base(files[0]) != want[0] || filepath.Base(files[1]) != want[1] {
		t.Fatalf("files %v", files)
	}

	got := readAll(t, dir)
	if len(got) != 3 {
		t.Fatalf("entries %d", len(got))
	}
	for i, e := range got {
		if e.Seq != uint64(i+1) || e.Session != w.Session() || e.Game != "g1" {
			t.Fatalf("entry %d: %+v", i, e)
		}
	}
	if got[0].Kind != KindSnapshot || string(got[2].Data) != `{"type":"cards_drawn"}` {
		t.Fatalf("content %+v", got)
	}
}

func TestAppendAcrossSessionsSameHour(t *testing.T) {
	dir := t.TempDir()
	clk := &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	for _, s := range []string{"s1", "s2"} {
		w, err := NewWriter(dir, "g1", WithClock(clk.now), WithSession(s))
		if err != nil {
			t.Fatal(err)
		}
		if err := w.Append(KindEvent, []byte(`{"type":"x"}`)); err != nil {
			t.Fatal(err)
		}
		_ = w.Close()
	}
	got := readAll(t, dir)
	if len(got) != 2 || got[0].Session != "s1" || got[1].Session != "s2" {
		t.Fatalf("entries %+v", got)
	}
}

func TestAppendRejectsInvalidJSON(t *testing.T) {
	w, err := NewWriter(t.TempDir(), "g1")
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()
	if err := w.Append(KindEvent, []byte(`{not json`)); err == nil {
		t.Fatalf("expected error")
	}
	if err := w.Append(KindEvent, []byte(`{}`)); err != nil {
		t.Fatal(err)
	}
}

func TestOpenDirEmpty(t *testing.T) {
	if _, err := OpenDir(t.TempDir()); err == nil {
		t.Fatalf("expected error on empty dir")
	}
}

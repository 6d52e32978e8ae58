package engine

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testLoader(t *testing.T, localPath string) *Loader {
	t.Helper()
	return NewLoader(localPath, 5*time.Second, zap.NewNop())
}

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFromLocal(t *testing.T) {
	path := writeTempCSV(t, sampleCSV)
	l := testLoader(t, path)

	ds, source, err := l.Load(context.Background(), Source{UseLocal: true})
	if err != nil {
		t.Fatal(err)
	}
	if ds.NumRows() != 3 {
		t.Errorf("expected 3 rows, got %d", ds.NumRows())
	}
	if source != "local:"+path {
		t.Errorf("source label: got %q", source)
	}
}

func TestLoadFromLocalMissingFile(t *testing.T) {
	l := testLoader(t, filepath.Join(t.TempDir(), "nope.csv"))
	if _, _, err := l.Load(context.Background(), Source{UseLocal: true}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadFromURL(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	l := testLoader(t, "")
	ds, err := l.FromURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if ds.NumRows() != 3 {
		t.Errorf("expected 3 rows, got %d", ds.NumRows())
	}

	// Second load of the same URL must come from the cache.
	ds2, err := l.FromURL(context.Background(), srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	if hits != 1 {
		t.Errorf("expected 1 fetch, got %d", hits)
	}
	if ds2 != ds {
		t.Error("cache must return the same parsed dataset")
	}
}

func TestLoadFromURL404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	l := testLoader(t, "")
	if _, err := l.FromURL(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestLoadFromUpload(t *testing.T) {
	l := testLoader(t, "")

	// Undecodable bytes are dropped before parsing.
	data := append([]byte{0xff, 0xfe}, []byte(sampleCSV)...)
	ds, err := l.FromUpload(data)
	if err != nil {
		t.Fatal(err)
	}
	if ds.NumRows() != 3 {
		t.Errorf("expected 3 rows, got %d", ds.NumRows())
	}

	// Identical bytes hit the cache.
	ds2, err := l.FromUpload(append([]byte{0xff, 0xfe}, []byte(sampleCSV)...))
	if err != nil {
		t.Fatal(err)
	}
	if ds2 != ds {
		t.Error("upload cache must key by content")
	}
}

func TestLoadPriority(t *testing.T) {
	path := writeTempCSV(t, "Local\n1\n")
	l := testLoader(t, path)

	// Local flag beats upload beats URL.
	_, source, err := l.Load(context.Background(), Source{
		UseLocal: true,
		Upload:   []byte("Upload\n2\n"),
		URL:      "http://example.invalid/data.csv",
	})
	if err != nil {
		t.Fatal(err)
	}
	if source != "local:"+path {
		t.Errorf("expected local source, got %q", source)
	}

	_, source, err = l.Load(context.Background(), Source{
		Upload: []byte("Upload\n2\n"),
		URL:    "http://example.invalid/data.csv",
	})
	if err != nil {
		t.Fatal(err)
	}
	if source != "upload" {
		t.Errorf("expected upload source, got %q", source)
	}
}

func TestLoadNoSource(t *testing.T) {
	l := testLoader(t, "")
	if _, _, err := l.Load(context.Background(), Source{}); err != ErrNoSource {
		t.Errorf("expected ErrNoSource, got %v", err)
	}
}

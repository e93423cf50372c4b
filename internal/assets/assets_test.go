package assets

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{"/images/slide_1.png", "/images/slide_1.png", false},
		{"images/slide_1.png", "/images/slide_1.png", false},
		{"/images//slide_1.png", "/images/slide_1.png", false},
		{"/images/../../etc/passwd", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := Clean(tt.ref)
		if (err != nil) != tt.wantErr {
			t.Errorf("Clean(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestDirSource(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "images"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "images", "a.png"), []byte("png"), 0o644); err != nil {
		t.Fatal(err)
	}

	src := DirSource{Root: root}
	rc, err := src.Open(context.Background(), "/images/a.png")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "png" {
		t.Errorf("Open() data = %q", data)
	}

	if _, err := src.Open(context.Background(), "/images/missing.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open(missing) error = %v, want ErrNotFound", err)
	}
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/images/a.png":
			_, _ = w.Write([]byte("remote"))
		case "/images/broken.png":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := HTTPSource{BaseURL: srv.URL, Client: srv.Client()}

	rc, err := src.Open(context.Background(), "/images/a.png")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "remote" {
		t.Errorf("Open() data = %q", data)
	}

	if _, err := src.Open(context.Background(), "/images/missing.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Open(missing) error = %v, want ErrNotFound", err)
	}
	if _, err := src.Open(context.Background(), "/images/broken.png"); err == nil || errors.Is(err, ErrNotFound) {
		t.Errorf("Open(broken) error = %v, want status error", err)
	}
}

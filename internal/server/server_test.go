package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/metcalfc/trustfall/internal/config"
	"github.com/metcalfc/trustfall/internal/subscribe"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	dir := t.TempDir()
	for _, sub := range []string{"images", "audio/music"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	os.WriteFile(filepath.Join(dir, "images", "slide_1.png"), []byte("\x89PNG\r\n\x1a\n"), 0o644)
	os.WriteFile(filepath.Join(dir, "audio", "music", "intro.mp3"), []byte("ID3"), 0o644)
	cfg.Site.AssetsDir = dir
	cfg.Server.Bind = "127.0.0.1:0"
	return &cfg
}

func TestHealthz(t *testing.T) {
	s := New(testConfig(t), nil, zaptest.NewLogger(t))
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" || body["subscribe"] != false {
		t.Errorf("body = %v", body)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("responses should carry a request id")
	}
}

func TestSubscribeRoute(t *testing.T) {
	s := New(testConfig(t), nil, zaptest.NewLogger(t))

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, subscribe.Path, nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET %s = %d, want 405", subscribe.Path, rr.Code)
	}

	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, subscribe.Path, strings.NewReader(`{}`)))
	if rr.Code != http.StatusBadRequest || !strings.Contains(rr.Body.String(), subscribe.MsgMissingFields) {
		t.Errorf("POST {} = %d %q", rr.Code, rr.Body.String())
	}
}

func TestStaticAssets(t *testing.T) {
	s := New(testConfig(t), nil, zaptest.NewLogger(t))

	tests := []struct {
		path string
		want int
	}{
		{"/images/slide_1.png", http.StatusOK},
		{"/audio/music/intro.mp3", http.StatusOK},
		{"/images/missing.png", http.StatusNotFound},
		{"/state.json", http.StatusNotFound},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if rr.Code != tt.want {
			t.Errorf("GET %s = %d, want %d", tt.path, rr.Code, tt.want)
		}
	}
	if err := s.CheckAssets(); err != nil {
		t.Errorf("CheckAssets() error = %v", err)
	}
}

func TestNoAssetsWithoutDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.Site.AssetsDir = ""
	s := New(cfg, nil, zaptest.NewLogger(t))

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/images/slide_1.png", nil))
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s := New(testConfig(t), nil, zaptest.NewLogger(t))
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

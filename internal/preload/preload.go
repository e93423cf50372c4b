// Package preload fetches slide backgrounds ahead of display.
package preload

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/metcalfc/trustfall/internal/assets"
)

// maxImageBytes bounds a single background download.
const maxImageBytes = 32 << 20

// Preloader fetches, verifies and decodes images once, keeping them for the
// lifetime of the story. Failed loads are not remembered, so a later display
// simply tries again. Preloader is safe for concurrent use.
type Preloader struct {
	src assets.Source
	log *zap.Logger

	mu       sync.Mutex
	images   map[string]image.Image
	inflight map[string]*call
}

type call struct {
	done chan struct{}
	err  error
}

// New creates a preloader reading from src.
func New(src assets.Source, log *zap.Logger) *Preloader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Preloader{
		src:      src,
		log:      log.Named("preload"),
		images:   make(map[string]image.Image),
		inflight: make(map[string]*call),
	}
}

// Preload makes sure ref is fetched and decoded. Concurrent calls for the
// same ref share one fetch.
func (p *Preloader) Preload(ctx context.Context, ref string) error {
	p.mu.Lock()
	if _, ok := p.images[ref]; ok {
		p.mu.Unlock()
		return nil
	}
	if c, ok := p.inflight[ref]; ok {
		p.mu.Unlock()
		select {
		case <-c.done:
			return c.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c := &call{done: make(chan struct{})}
	p.inflight[ref] = c
	p.mu.Unlock()

	img, err := p.fetch(ctx, ref)

	p.mu.Lock()
	if err == nil {
		p.images[ref] = img
	}
	delete(p.inflight, ref)
	p.mu.Unlock()

	c.err = err
	close(c.done)
	return err
}

// PreloadAll fetches every ref concurrently and waits for all of them.
// The returned error combines every failure.
func (p *Preloader) PreloadAll(ctx context.Context, refs []string) error {
	errs := make([]error, len(refs))
	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref string) {
			defer wg.Done()
			errs[i] = p.Preload(ctx, ref)
		}(i, ref)
	}
	wg.Wait()
	return multierr.Combine(errs...)
}

// Image returns a preloaded image.
func (p *Preloader) Image(ref string) (image.Image, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	img, ok := p.images[ref]
	return img, ok
}

// Loaded reports whether ref has been preloaded.
func (p *Preloader) Loaded(ref string) bool {
	_, ok := p.Image(ref)
	return ok
}

// Len returns the number of preloaded images.
func (p *Preloader) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.images)
}

func (p *Preloader) fetch(ctx context.Context, ref string) (image.Image, error) {
	rc, err := p.src.Open(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("preload %s: %w", ref, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("preload %s: %w", ref, err)
	}
	if !filetype.IsImage(data) {
		return nil, fmt.Errorf("preload %s: not an image", ref)
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("preload %s: decode: %w", ref, err)
	}
	p.log.Debug("image preloaded", zap.String("ref", ref), zap.Int("bytes", len(data)))
	return img, nil
}

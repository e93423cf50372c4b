package soundtrack

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/audio/mp3"
	"github.com/hajimehoshi/ebiten/v2/audio/vorbis"
	"github.com/hajimehoshi/ebiten/v2/audio/wav"

	"github.com/metcalfc/trustfall/internal/assets"
)

// SampleRate is the output rate of the audio device.
const SampleRate = 44100

// decoded streams are 16-bit stereo
const bytesPerFrame = 4

// EbitenBackend decodes mp3, wav and ogg assets and plays them on the
// shared ebiten audio context.
type EbitenBackend struct {
	ctx *audio.Context
	src assets.Source
}

// NewEbitenBackend opens (or reuses) the audio context.
func NewEbitenBackend(src assets.Source) *EbitenBackend {
	ctx := audio.CurrentContext()
	if ctx == nil {
		ctx = audio.NewContext(SampleRate)
	}
	return &EbitenBackend{ctx: ctx, src: src}
}

// decodable lists the formats Load decodes, in fallback order.
var decodable = []string{".mp3", ".ogg", ".wav"}

// Load decodes ref. Formats ebiten cannot decode, such as .m4a, are replaced
// by an .mp3, .ogg or .wav sibling of the same name when one exists.
func (b *EbitenBackend) Load(ref string) (Player, error) {
	name, data, err := b.fetch(ref)
	if err != nil {
		return nil, err
	}

	var (
		stream io.ReadSeeker
		length int64
	)
	switch ext := strings.ToLower(path.Ext(name)); ext {
	case ".mp3":
		s, err := mp3.DecodeWithSampleRate(SampleRate, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		stream, length = s, s.Length()
	case ".wav":
		s, err := wav.DecodeWithSampleRate(SampleRate, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		stream, length = s, s.Length()
	case ".ogg":
		s, err := vorbis.DecodeWithSampleRate(SampleRate, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		stream, length = s, s.Length()
	default:
		return nil, fmt.Errorf("decode %s: unsupported audio format %q", name, ext)
	}

	p, err := b.ctx.NewPlayer(stream)
	if err != nil {
		return nil, fmt.Errorf("create player for %s: %w", name, err)
	}
	frames := length / bytesPerFrame
	return &ebitenPlayer{
		Player:   p,
		duration: time.Duration(frames) * time.Second / SampleRate,
	}, nil
}

// fetch reads the first decodable candidate for ref and returns its name.
func (b *EbitenBackend) fetch(ref string) (string, []byte, error) {
	candidates := audioCandidates(ref)
	for i, name := range candidates {
		rc, err := b.src.Open(context.Background(), name)
		if errors.Is(err, assets.ErrNotFound) && i < len(candidates)-1 {
			continue
		}
		if err != nil {
			return "", nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", nil, fmt.Errorf("read %s: %w", name, err)
		}
		return name, data, nil
	}
	return "", nil, fmt.Errorf("decode %s: unsupported audio format %q", ref, path.Ext(ref))
}

// audioCandidates returns ref itself when it is decodable, otherwise its
// siblings in the decodable formats.
func audioCandidates(ref string) []string {
	ext := strings.ToLower(path.Ext(ref))
	if slices.Contains(decodable, ext) {
		return []string{ref}
	}
	stem := strings.TrimSuffix(ref, path.Ext(ref))
	out := make([]string, 0, len(decodable))
	for _, e := range decodable {
		out = append(out, stem+e)
	}
	return out
}

type ebitenPlayer struct {
	*audio.Player
	duration time.Duration
}

func (p *ebitenPlayer) Play() error {
	p.Player.Play()
	return nil
}

func (p *ebitenPlayer) Duration() time.Duration { return p.duration }

func (p *ebitenPlayer) Seek(pos time.Duration) error {
	return p.Player.SetPosition(pos)
}

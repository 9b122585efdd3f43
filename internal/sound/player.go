package sound

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"
	"github.com/gopxl/beep/wav"

	"github.com/lowaak/hiit-timer/internal/workout"
)

// SampleRate is what the speaker runs at. Assets recorded at other rates are resampled on load.
const SampleRate beep.SampleRate = 44100

const resampleQuality = 4

// AssetNames maps each alert to its file name without extension
var AssetNames = map[workout.AlertKind]string{
	workout.AlertHalfwayWork:   "halfway_alert",
	workout.AlertWorkCountdown: "countdown_alert",
	workout.AlertCountdown:     "countdown_alert_321",
	workout.AlertComplete:      "workout_complete",
}

// Output is where decoded cues are sent. Play must not block.
type Output interface {
	Play(s beep.Streamer)
}

type speakerOutput struct{}

func (speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }

// NewSpeakerOutput initialises the system speaker
func NewSpeakerOutput() (Output, error) {
	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
		return nil, fmt.Errorf("initialising speaker: %w", err)
	}
	return speakerOutput{}, nil
}

// NewPlayerArgs holds the arguments for creating a new Player
type NewPlayerArgs struct {
	AssetsDir string
	Output    Output // Speaker when nil
	Logger    *log.Logger
}

// Player plays alert cues. Every failure is logged and swallowed so a
// missing sound never disturbs the workout.
type Player struct {
	mu      sync.Mutex
	buffers map[workout.AlertKind]*beep.Buffer
	out     Output
	logger  *log.Logger
}

// NewPlayer decodes every available asset up front
func NewPlayer(args NewPlayerArgs) *Player {
	if args.Logger == nil {
		panic("SoundPlayer: logger cannot be nil")
	}
	p := &Player{
		buffers: make(map[workout.AlertKind]*beep.Buffer),
		out:     args.Output,
		logger:  args.Logger,
	}
	if p.out == nil {
		out, err := NewSpeakerOutput()
		if err != nil {
			p.logger.Printf("SoundPlayer: Audio disabled: %v", err)
			return p
		}
		p.out = out
	}

	for kind, name := range AssetNames {
		buffer, err := loadAsset(args.AssetsDir, name)
		if err != nil {
			p.logger.Printf("SoundPlayer: No sound for %s: %v", kind, err)
			continue
		}
		p.buffers[kind] = buffer
	}
	p.logger.Printf("SoundPlayer: Loaded %d of %d alert sounds from %s", len(p.buffers), len(AssetNames), args.AssetsDir)
	return p
}

// Play starts the cue for kind and returns immediately
func (p *Player) Play(kind workout.AlertKind) {
	p.mu.Lock()
	defer p.mu.Unlock()

	b, ok := p.buffers[kind]
	if !ok || p.out == nil {
		p.logger.Printf("SoundPlayer: No sound loaded for %s", kind)
		return
	}
	p.out.Play(b.Streamer(0, b.Len()))
}

// Loaded reports whether a cue for kind is available
func (p *Player) Loaded(kind workout.AlertKind) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.buffers[kind]
	return ok
}

var errNoAsset = errors.New("no .ogg or .wav file")

// loadAsset decodes dir/name.ogg, falling back to dir/name.wav
func loadAsset(dir, name string) (*beep.Buffer, error) {
	for _, ext := range []string{".ogg", ".wav"} {
		path := filepath.Join(dir, name+ext)
		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}

		var (
			streamer beep.StreamSeekCloser
			format   beep.Format
		)
		if ext == ".ogg" {
			streamer, format, err = vorbis.Decode(f)
		} else {
			streamer, format, err = wav.Decode(f)
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		buffer := bufferAt(streamer, format)
		streamer.Close()
		f.Close()
		return buffer, nil
	}
	return nil, errNoAsset
}

// bufferAt reads s fully into a buffer at SampleRate
func bufferAt(s beep.Streamer, format beep.Format) *beep.Buffer {
	target := format
	target.SampleRate = SampleRate
	buffer := beep.NewBuffer(target)
	if format.SampleRate == SampleRate {
		buffer.Append(s)
	} else {
		buffer.Append(beep.Resample(resampleQuality, format.SampleRate, SampleRate, s))
	}
	return buffer
}

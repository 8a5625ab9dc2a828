// Package audio plays synthesized feedback cues for hits, misses and run
// completion.
package audio

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Player plays feedback cues. Implementations never block the caller.
type Player interface {
	Hit()
	Miss()
	Finish()
	Close() error
}

// Nop is a silent Player.
type Nop struct{}

func (Nop) Hit()         {}
func (Nop) Miss()        {}
func (Nop) Finish()      {}
func (Nop) Close() error { return nil }

// Speaker plays cues through the system audio device.
type Speaker struct {
	mu     sync.Mutex
	mixer  *beep.Mixer
	closed bool
}

// NewSpeaker initializes the audio device and starts the mixer.
func NewSpeaker() (*Speaker, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return nil, err
	}
	s := &Speaker{mixer: &beep.Mixer{}}
	speaker.Play(s.mixer)
	return s, nil
}

// Open returns a speaker-backed Player when enabled, falling back to Nop
// when the device cannot be opened.
func Open(enabled bool, logger *log.Logger) Player {
	if !enabled {
		return Nop{}
	}
	s, err := NewSpeaker()
	if err != nil {
		if logger != nil {
			logger.Warn("audio disabled", "err", err)
		}
		return Nop{}
	}
	return s
}

// Hit plays the hit bell.
func (s *Speaker) Hit() { s.play(HitSound(sampleRate)) }

// Miss plays the miss buzz.
func (s *Speaker) Miss() { s.play(MissSound(sampleRate)) }

// Finish plays the end-of-run chime.
func (s *Speaker) Finish() { s.play(FinishSound(sampleRate)) }

// Close stops playback and releases the device.
func (s *Speaker) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	speaker.Clear()
	speaker.Close()
	return nil
}

func (s *Speaker) play(st beep.Streamer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	// The mixer is read by the speaker goroutine.
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
}

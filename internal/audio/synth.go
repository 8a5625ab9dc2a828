package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Wave is an oscillator shape.
type Wave int

// Oscillator shapes.
const (
	WaveSine Wave = iota
	WaveSquare
	WaveSaw
)

const (
	hitDuration     = 220 * time.Millisecond
	hitAttack       = 3 * time.Millisecond
	hitRelease      = 200 * time.Millisecond
	missDuration    = 90 * time.Millisecond
	missAttack      = 4 * time.Millisecond
	missRelease     = 30 * time.Millisecond
	finishNote1     = 120 * time.Millisecond
	finishNote2     = 360 * time.Millisecond
	finishAttack    = 5 * time.Millisecond
	finishRelease1  = 60 * time.Millisecond
	finishRelease2  = 280 * time.Millisecond
	effectVolume    = 0.35
	missEffectLevel = 0.25
)

type oscillator struct {
	freq     float64
	phase    float64
	position int
	total    int
	wave     Wave
	rate     beep.SampleRate
}

// NewOscillator returns a streamer producing freq Hz for duration.
func NewOscillator(freq float64, duration time.Duration, wave Wave, rate beep.SampleRate) beep.Streamer {
	return &oscillator{freq: freq, total: rate.N(duration), wave: wave, rate: rate}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.total {
			return i, i > 0
		}
		var v float64
		switch o.wave {
		case WaveSquare:
			v = -1
			if o.phase < 0.5 {
				v = 1
			}
		case WaveSaw:
			v = 2 * (o.phase - 0.5)
		default:
			v = math.Sin(2 * math.Pi * o.phase)
		}
		samples[i][0] = v
		samples[i][1] = v
		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope is a linear attack/release shaper.
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

// NewEnvelope shapes s with a linear attack and release.
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer: s,
		attack:   rate.N(attack),
		release:  rate.N(release),
		total:    rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}
		gain := e.gain()
		samples[i][0] *= gain
		samples[i][1] *= gain
		e.position++
	}
	return n, ok
}

func (e *envelope) gain() float64 {
	if e.attack > 0 && e.position < e.attack {
		return float64(e.position) / float64(e.attack)
	}
	releaseStart := e.total - e.release
	if e.release > 0 && e.position >= releaseStart {
		return math.Max(0, float64(e.total-e.position)/float64(e.release))
	}
	return 1
}

func (e *envelope) Err() error { return e.streamer.Err() }

// math.Log2(0) is -Inf, so zero volume is expressed as Silent.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// HitSound is a short bell: a fundamental with an octave overtone.
func HitSound(rate beep.SampleRate) beep.Streamer {
	fund := NewEnvelope(NewOscillator(1046.5, hitDuration, WaveSine, rate), hitDuration, hitAttack, hitRelease, rate)
	over := NewEnvelope(NewOscillator(2093.0, hitDuration, WaveSine, rate), hitDuration, hitAttack, hitRelease/2, rate)
	return withVolume(beep.Mix(withVolume(fund, 0.7), withVolume(over, 0.3)), effectVolume)
}

// MissSound is a low saw buzz.
func MissSound(rate beep.SampleRate) beep.Streamer {
	osc := NewOscillator(110, missDuration, WaveSaw, rate)
	return withVolume(NewEnvelope(osc, missDuration, missAttack, missRelease, rate), missEffectLevel)
}

// FinishSound is a two-note rising chime.
func FinishSound(rate beep.SampleRate) beep.Streamer {
	n1 := NewEnvelope(NewOscillator(783.99, finishNote1, WaveSquare, rate), finishNote1, finishAttack, finishRelease1, rate)
	n2 := NewEnvelope(NewOscillator(1174.66, finishNote2, WaveSquare, rate), finishNote2, finishAttack, finishRelease2, rate)
	return withVolume(beep.Seq(n1, n2), effectVolume*0.6)
}

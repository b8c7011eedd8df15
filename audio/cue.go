// Package audio plays short tone cues alongside timeline animations
// Cues are synthesized with beep streamers and piped as raw PCM to a system player
package audio

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Cue identifies a synthesized sound
type Cue int

const (
	CueTap   Cue = iota // Click feedback
	CueChime            // Timeline start
	CueSweep            // Route change
	cueCount
)

var cueNames = [...]string{CueTap: "tap", CueChime: "chime", CueSweep: "sweep"}

func (c Cue) String() string {
	if c >= 0 && c < cueCount {
		return cueNames[c]
	}
	return "unknown"
}

// Wave is an oscillator shape
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveNoise
)

type oscillator struct {
	freq     float64
	phase    float64
	duration int
	position int
	wave     Wave
	rate     beep.SampleRate
}

// NewOscillator returns a streamer producing freq for duration
func NewOscillator(freq float64, duration time.Duration, wave Wave, rate beep.SampleRate) beep.Streamer {
	return &oscillator{freq: freq, duration: rate.N(duration), wave: wave, rate: rate}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			val = 1
			if o.phase >= 0.5 {
				val = -1
			}
		case WaveNoise:
			val = rand.Float64()*2 - 1
		}
		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope fades a stream in over attack and out over release
type envelope struct {
	streamer     beep.Streamer
	position     int
	attack       int
	release      int
	totalSamples int
}

// NewEnvelope shapes s with linear attack and release ramps
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer:     s,
		attack:       rate.N(attack),
		release:      rate.N(release),
		totalSamples: rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if e.position >= e.totalSamples {
			return i, i > 0
		}

		vol := 1.0
		if e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if remaining := e.totalSamples - e.position; remaining < e.release {
			vol = math.Max(0, float64(remaining)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// math.Log2(0) is -Inf, zero volume is rendered silent instead
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// CueDuration returns the length of a cue
func CueDuration(c Cue) time.Duration {
	switch c {
	case CueTap:
		return 40 * time.Millisecond
	case CueChime:
		return 220 * time.Millisecond
	case CueSweep:
		return 120 * time.Millisecond
	}
	return 0
}

// NewCue synthesizes cue c at rate and volume
func NewCue(c Cue, rate beep.SampleRate, volume float64) beep.Streamer {
	d := CueDuration(c)
	switch c {
	case CueTap:
		osc := NewOscillator(1200, d, WaveSquare, rate)
		return withVolume(NewEnvelope(osc, d, 2*time.Millisecond, 30*time.Millisecond, rate), volume*0.4)
	case CueChime:
		fund := NewEnvelope(NewOscillator(880, d, WaveSine, rate), d, 5*time.Millisecond, 200*time.Millisecond, rate)
		over := NewEnvelope(NewOscillator(1320, d, WaveSine, rate), d, 5*time.Millisecond, 120*time.Millisecond, rate)
		mixed := beep.Take(rate.N(d), beep.Mix(withVolume(fund, 0.7), withVolume(over, 0.3)))
		return withVolume(mixed, volume)
	case CueSweep:
		noise := NewOscillator(0, d, WaveNoise, rate)
		return withVolume(NewEnvelope(noise, d, 30*time.Millisecond, 80*time.Millisecond, rate), volume*0.5)
	}
	return beep.Silence(0)
}

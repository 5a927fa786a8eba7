// Package audio plays the short tones that accompany the shrink flash and
// the explosion.
package audio

import (
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/pthm-cable/wormhole/config"
)

// Cues owns the speaker mixer. A nil *Cues is valid and silent.
type Cues struct {
	sr          beep.SampleRate
	mixer       *beep.Mixer
	flashHz     float64
	explosionHz float64
	tone        time.Duration
}

// New initializes the speaker. Returns nil, nil when audio is disabled.
func New(cfg config.AudioConfig) (*Cues, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	sr := beep.SampleRate(cfg.SampleRate)
	if err := speaker.Init(sr, sr.N(100*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("initializing speaker: %w", err)
	}
	c := &Cues{
		sr:          sr,
		mixer:       &beep.Mixer{},
		flashHz:     cfg.FlashHz,
		explosionHz: cfg.ExplosionHz,
		tone:        time.Duration(cfg.ToneMs * float64(time.Millisecond)),
	}
	speaker.Play(c.mixer)
	return c, nil
}

// Flash plays the shrink flash tone.
func (c *Cues) Flash() {
	if c == nil {
		return
	}
	c.play(NewTone(c.sr, c.flashHz, c.tone))
}

// Explosion plays the lower explosion tone, twice as long as the flash.
func (c *Cues) Explosion() {
	if c == nil {
		return
	}
	c.play(NewTone(c.sr, c.explosionHz, 2*c.tone))
}

func (c *Cues) play(s beep.Streamer) {
	speaker.Lock()
	c.mixer.Add(s)
	speaker.Unlock()
}

// Close stops all tones and releases the speaker.
func (c *Cues) Close() {
	if c == nil {
		return
	}
	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
}

// Tone is a sine with a short attack and an exponential decay, ending after
// its duration.
type Tone struct {
	sr    beep.SampleRate
	freq  float64
	total int
	pos   int
}

// NewTone creates a tone of freq Hz lasting dur.
func NewTone(sr beep.SampleRate, freq float64, dur time.Duration) *Tone {
	return &Tone{sr: sr, freq: freq, total: sr.N(dur)}
}

// Stream implements beep.Streamer.
func (t *Tone) Stream(samples [][2]float64) (n int, ok bool) {
	if t.pos >= t.total {
		return 0, false
	}
	for i := range samples {
		if t.pos >= t.total {
			return i, true
		}
		sec := float64(t.pos) / float64(t.sr)
		progress := float64(t.pos) / float64(t.total)

		attack := math.Min(sec/0.01, 1)
		env := attack * math.Exp(-4*progress)
		v := 0.3 * env * math.Sin(2*math.Pi*t.freq*sec)

		samples[i][0] = v
		samples[i][1] = v
		t.pos++
	}
	return len(samples), true
}

// Err implements beep.Streamer.
func (t *Tone) Err() error {
	return nil
}

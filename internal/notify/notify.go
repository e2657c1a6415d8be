// Package notify raises an audible alert when a tracked sailing gets
// capacity.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

// Notifier raises one alert. Alert blocks until the alert has been
// delivered or ctx is cancelled.
type Notifier interface {
	Alert(ctx context.Context) error
}

const (
	sampleRate     = beep.SampleRate(44100)
	toneFrequency  = 880.0
	tonePulse      = 180 * time.Millisecond
	tonePause      = 120 * time.Millisecond
	defaultRepeats = 3
)

var (
	speakerOnce sync.Once
	speakerErr  error
)

// ToneNotifier plays a short repeated sine tone through the default
// audio output. The tone is synthesized, so no sound file ships with
// the binary.
type ToneNotifier struct {
	repeats int
}

// NewToneNotifier creates a tone notifier that beeps the given number
// of times per alert. Non-positive counts use a small default.
func NewToneNotifier(repeats int) *ToneNotifier {
	if repeats <= 0 {
		repeats = defaultRepeats
	}
	return &ToneNotifier{repeats: repeats}
}

// Alert plays the tone sequence. The speaker is initialised on first
// use; initialisation failure (no audio device, headless host) comes
// back as an error so callers can fall back to the terminal bell.
func (n *ToneNotifier) Alert(ctx context.Context) error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond))
	})
	if speakerErr != nil {
		return fmt.Errorf("audio output unavailable: %w", speakerErr)
	}

	tone, err := generators.SineTone(sampleRate, toneFrequency)
	if err != nil {
		return fmt.Errorf("failed to synthesize tone: %w", err)
	}

	done := make(chan struct{})
	var sequence []beep.Streamer
	for i := 0; i < n.repeats; i++ {
		sequence = append(sequence,
			beep.Take(sampleRate.N(tonePulse), tone),
			beep.Silence(sampleRate.N(tonePause)),
		)
	}
	sequence = append(sequence, beep.Callback(func() { close(done) }))

	speaker.Play(beep.Seq(sequence...))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}

// BellNotifier rings the terminal bell. It is the fallback for hosts
// without an audio device and the whole alert when sound is disabled.
type BellNotifier struct {
	out io.Writer
}

// NewBellNotifier creates a bell notifier writing to out, normally the
// terminal the TUI runs on.
func NewBellNotifier(out io.Writer) *BellNotifier {
	return &BellNotifier{out: out}
}

// Alert writes the BEL control character.
func (n *BellNotifier) Alert(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := n.out.Write([]byte{'\a'})
	return err
}

// Fallback chains notifiers: each alert tries them in order and stops
// at the first success.
type Fallback []Notifier

// Alert tries each notifier in order, returning the last error when
// every one fails.
func (f Fallback) Alert(ctx context.Context) error {
	var lastErr error
	for _, n := range f {
		if err := n.Alert(ctx); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no notifiers configured")
	}
	return lastErr
}

// Package audio synthesises the finish alert and owns the process-wide
// speaker it plays on.
package audio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/rs/zerolog/log"
)

var ErrMuted = errors.New("audio muted")

// output is the speaker surface the player needs. The real implementation
// forwards to the beep speaker package.
type output interface {
	Init(rate beep.SampleRate, bufferSize int) error
	Play(s beep.Streamer)
	Lock()
	Unlock()
	Close()
}

type speakerOutput struct{}

func (speakerOutput) Init(rate beep.SampleRate, bufferSize int) error {
	return speaker.Init(rate, bufferSize)
}
func (speakerOutput) Play(s beep.Streamer) { speaker.Play(s) }
func (speakerOutput) Lock() { speaker.Lock() }
func (speakerOutput) Unlock() { speaker.Unlock() }
func (speakerOutput) Close() { speaker.Close() }

type Options struct {
	SampleRate int
	Buffer     time.Duration
	Tone       ToneSpec
	Mute       bool
	TapSize    int
}

func DefaultOptions() Options {
	return Options{
		SampleRate: 44100,
		Buffer:     50 * time.Millisecond,
		Tone:       DefaultToneSpec(),
		TapSize:    4096,
	}
}

// Player is created once and reused for every alert. The speaker is opened
// on the first Alert, not at construction.
type Player struct {
	opts Options
	out  output

	once    sync.Once
	initErr error

	mixer *beep.Mixer
	ctrl  *beep.Ctrl
	tap   *Tap
}

func NewPlayer(opts Options) *Player {
	return newPlayer(opts, speakerOutput{})
}

func newPlayer(opts Options, out output) *Player {
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultOptions().SampleRate
	}
	if opts.Buffer <= 0 {
		opts.Buffer = DefaultOptions().Buffer
	}
	if opts.TapSize <= 0 {
		opts.TapSize = DefaultOptions().TapSize
	}
	return &Player{opts: opts, out: out}
}

func (p *Player) rate() beep.SampleRate { return beep.SampleRate(p.opts.SampleRate) }

func (p *Player) init() {
	if p.opts.Mute {
		p.initErr = ErrMuted
		return
	}
	rate := p.rate()
	if err := p.out.Init(rate, rate.N(p.opts.Buffer)); err != nil {
		p.initErr = fmt.Errorf("init speaker: %w", err)
		log.Warn().Err(err).Msg("audio initialization failed, alerts will be silent")
		return
	}
	p.mixer = &beep.Mixer{}
	p.tap = NewTap(p.mixer, p.opts.TapSize)
	p.ctrl = &beep.Ctrl{Streamer: p.tap}
	p.out.Play(p.ctrl)
	log.Debug().Int("sample_rate", p.opts.SampleRate).Msg("audio output ready")
}

// Alert resumes a suspended output and plays one tone. A failed
// initialisation is remembered; every later Alert returns the same error.
func (p *Player) Alert() error {
	p.once.Do(p.init)
	if p.initErr != nil {
		return p.initErr
	}
	p.out.Lock()
	if p.ctrl.Paused {
		p.ctrl.Paused = false
		log.Debug().Msg("audio output resumed")
	}
	p.mixer.Add(NewTone(p.rate(), p.opts.Tone))
	p.out.Unlock()
	return nil
}

// Suspend pauses the shared output until the next Alert. It is a no-op
// before the output exists.
func (p *Player) Suspend() {
	if p.ctrl == nil {
		return
	}
	p.out.Lock()
	p.ctrl.Paused = true
	p.out.Unlock()
}

func (p *Player) Suspended() bool {
	if p.ctrl == nil {
		return false
	}
	p.out.Lock()
	defer p.out.Unlock()
	return p.ctrl.Paused
}

// Level is the loudness of what the speaker played most recently.
func (p *Player) Level() float64 {
	if p.tap == nil {
		return 0
	}
	return p.tap.Level(p.rate().N(20 * time.Millisecond))
}

func (p *Player) Close() {
	if p.ctrl == nil {
		return
	}
	p.out.Close()
}

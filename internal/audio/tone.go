package audio

import (
	"math"
	"time"

	"github.com/faiface/beep"
)

// ToneSpec describes the alert: a sine voice that sweeps from StartFreq to
// EndFreq over Sweep while its gain falls from StartGain to EndGain over
// Length. Both ramps are exponential.
type ToneSpec struct {
	StartFreq float64
	EndFreq   float64
	Sweep     time.Duration
	StartGain float64
	EndGain   float64
	Length    time.Duration
}

func DefaultToneSpec() ToneSpec {
	return ToneSpec{
		StartFreq: 440,
		EndFreq:   880,
		Sweep:     100 * time.Millisecond,
		StartGain: 0.1,
		EndGain:   0.001,
		Length:    500 * time.Millisecond,
	}
}

// Frequency at offset t. Holds EndFreq once the sweep is over.
func (s ToneSpec) Frequency(t time.Duration) float64 {
	return expRamp(s.StartFreq, s.EndFreq, t, s.Sweep)
}

// Gain at offset t.
func (s ToneSpec) Gain(t time.Duration) float64 {
	return expRamp(s.StartGain, s.EndGain, t, s.Length)
}

func expRamp(from, to float64, t, span time.Duration) float64 {
	if t <= 0 {
		return from
	}
	if span <= 0 || t >= span {
		return to
	}
	return from * math.Pow(to/from, float64(t)/float64(span))
}

// Tone streams one alert and then ends.
type Tone struct {
	spec  ToneSpec
	rate  beep.SampleRate
	pos   int
	total int
	phase float64
}

func NewTone(rate beep.SampleRate, spec ToneSpec) *Tone {
	return &Tone{
		spec:  spec,
		rate:  rate,
		total: rate.N(spec.Length),
	}
}

func (t *Tone) Stream(samples [][2]float64) (n int, ok bool) {
	if t.pos >= t.total {
		return 0, false
	}
	for i := range samples {
		if t.pos >= t.total {
			return i, true
		}
		at := t.rate.D(t.pos)
		v := t.spec.Gain(at) * math.Sin(t.phase)
		samples[i][0] = v
		samples[i][1] = v
		t.phase += 2 * math.Pi * t.spec.Frequency(at) / float64(t.rate)
		if t.phase > 2*math.Pi {
			t.phase -= 2 * math.Pi
		}
		t.pos++
	}
	return len(samples), true
}

func (t *Tone) Err() error { return nil }

// Len is the total number of samples the tone produces.
func (t *Tone) Len() int { return t.total }

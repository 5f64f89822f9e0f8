package audio

import (
	"math"
	"time"

	goaudio "github.com/go-audio/audio"
)

const (
	SampleRate = 44100

	toneDuration  = 500 * time.Millisecond
	sweepDuration = 100 * time.Millisecond

	startFrequency = 440.0
	endFrequency   = 880.0
	startGain      = 0.5
	endGain        = 0.01

	maxPCM16 = math.MaxInt16
)

// exponentialRamp moves from v0 to v1 over duration, then holds v1.
// Both values must be positive.
func exponentialRamp(v0, v1 float64, elapsed, duration time.Duration) float64 {
	if elapsed >= duration {
		return v1
	}
	return v0 * math.Pow(v1/v0, float64(elapsed)/float64(duration))
}

// Tone renders the fallback buzz: a sine sweeping 440 to 880 Hz over the
// first 0.1 s while its gain decays from 0.5 to 0.01 over 0.5 s. Samples are
// mono 16-bit at SampleRate, scaled by volume.
func Tone(volume float64) *goaudio.IntBuffer {
	volume = clamp(volume)
	n := int(toneDuration.Seconds() * SampleRate)
	data := make([]int, n)

	phase := 0.0
	for i := range data {
		elapsed := time.Duration(i) * time.Second / SampleRate
		freq := exponentialRamp(startFrequency, endFrequency, elapsed, sweepDuration)
		gain := exponentialRamp(startGain, endGain, elapsed, toneDuration)

		data[i] = int(math.Round(math.Sin(phase) * gain * volume * maxPCM16))
		phase += 2 * math.Pi * freq / SampleRate
	}

	return &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: SampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}
}

func clamp(level float64) float64 {
	switch {
	case math.IsNaN(level), level < 0:
		return 0
	case level > 1:
		return 1
	default:
		return level
	}
}

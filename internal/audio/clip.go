package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/gabriel-vasile/mimetype"
	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// ErrUnsupportedClip is returned for clips that are not a recognised audio container.
var ErrUnsupportedClip = errors.New("unsupported audio clip")

// errNotPCM16 marks a well-formed WAV in an encoding other than 16-bit PCM.
var errNotPCM16 = errors.New("not 16-bit pcm")

// Kind is the container format of a clip.
type Kind string

const (
	KindWAV  Kind = "wav"
	KindMP3  Kind = "mp3"
	KindOgg  Kind = "ogg"
	KindFLAC Kind = "flac"
)

// Sniff identifies the container of data from its leading bytes.
func Sniff(data []byte) (Kind, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty", ErrUnsupportedClip)
	}

	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		switch {
		case m.Is("audio/wav"):
			return KindWAV, nil
		case m.Is("audio/mpeg"):
			return KindMP3, nil
		case m.Is("audio/flac"):
			return KindFLAC, nil
		case m.Is("audio/ogg"), m.Is("application/ogg"):
			return KindOgg, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupportedClip, detected.String())
}

// Extension is used for temp files so players that look at the name pick the right decoder.
func (k Kind) Extension() string {
	return "." + string(k)
}

// decodePCM16 decodes a 16-bit PCM WAV clip.
func decodePCM16(data []byte) (*goaudio.IntBuffer, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid wav", ErrUnsupportedClip)
	}
	if d.BitDepth != 16 || d.WavAudioFormat != 1 {
		return nil, fmt.Errorf("%w: %d-bit format %d", errNotPCM16, d.BitDepth, d.WavAudioFormat)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode wav: %w", err)
	}
	return buf, nil
}

// scale multiplies every sample by volume in place.
func scale(buf *goaudio.IntBuffer, volume float64) {
	volume = clamp(volume)
	for i, v := range buf.Data {
		buf.Data[i] = int(math.Round(float64(v) * volume))
	}
}

// writeWAV encodes buf as 16-bit PCM.
func writeWAV(w io.WriteSeeker, buf *goaudio.IntBuffer) error {
	enc := wav.NewEncoder(w, buf.Format.SampleRate, 16, buf.Format.NumChannels, 1)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("encode wav: %w", err)
	}
	return enc.Close()
}

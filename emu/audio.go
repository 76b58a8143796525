package emu

import (
	"time"
	"unsafe"

	"github.com/arl/blip"
	"github.com/veandco/go-sdl2/sdl"

	"chip8/emu/log"
)

const (
	sampleRate = 44100

	// Tone synthesis clock, so that half periods land between samples.
	clockRate = sampleRate * 64

	// blip frames are limited to blip.MaxFrame samples.
	frameClocks = clockRate / 100

	maxToneHz = sampleRate / 4
)

const (
	AudioFormat     = sdl.AUDIO_S16LSB
	AudioChannels   = 1
	AudioBufferSize = 1024
)

// tone synthesizes a band-limited square wave.
type tone struct {
	buf    *blip.Buffer
	out    []int16
	tmp    [blip.MaxFrame]int16
	half   int   // half period, in clocks
	amp    int32 // peak amplitude
	level  int32 // current output level
	next   int   // time of the next edge in the current frame
	length time.Duration
}

func newTone(cfg AudioConfig) *tone {
	t := &tone{
		buf:    blip.NewBuffer(2 * blip.MaxFrame),
		half:   clockRate / (2 * cfg.ToneHz),
		amp:    int32(cfg.Volume * 0x3FFF),
		length: time.Duration(cfg.BeepMs) * time.Millisecond,
	}
	t.buf.SetRates(clockRate, sampleRate)
	return t
}

// synth returns the samples of a beep. The returned slice is only valid until
// the next call.
func (t *tone) synth() []int16 {
	t.out = t.out[:0]
	total := int(t.length.Seconds() * clockRate)

	for total > 0 {
		frame := min(total, frameClocks)
		for ; t.next < frame; t.next += t.half {
			target := t.amp
			if t.level > 0 {
				target = -t.amp
			}
			t.buf.AddDelta(uint64(t.next), target-t.level)
			t.level = target
		}
		t.next -= frame
		total -= frame
		t.endFrame(frame)
	}

	// Back to silence, with a short tail to let the filter settle.
	t.buf.AddDelta(0, -t.level)
	t.level = 0
	t.next = 0
	t.endFrame(frameClocks)
	return t.out
}

func (t *tone) endFrame(clocks int) {
	t.buf.EndFrame(clocks)
	for t.buf.SamplesAvailable() > 0 {
		n := t.buf.ReadSamples(t.tmp[:], len(t.tmp), blip.Mono)
		t.out = append(t.out, t.tmp[:n]...)
	}
}

// sdlBeeper plays beeps on the default SDL audio device.
type sdlBeeper struct {
	dev  sdl.AudioDeviceID
	tone *tone
}

func newSDLBeeper(cfg AudioConfig) (*sdlBeeper, error) {
	b := &sdlBeeper{tone: newTone(cfg)}

	var err error
	sdl.Do(func() {
		if err = sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
			return
		}
		spec := sdl.AudioSpec{
			Freq:     sampleRate,
			Format:   AudioFormat,
			Channels: AudioChannels,
			Samples:  AudioBufferSize,
		}
		if b.dev, err = sdl.OpenAudioDevice("", false, &spec, nil, 0); err != nil {
			return
		}
		sdl.PauseAudioDevice(b.dev, false)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Beep implements hw.Beeper.
func (b *sdlBeeper) Beep() {
	samples := b.tone.synth()
	if len(samples) == 0 {
		return
	}

	buf := unsafe.Slice((*byte)(unsafe.Pointer(&samples[0])), len(samples)*2)
	cpy := make([]byte, len(buf))
	copy(cpy, buf)

	// Don't let beeps pile up if the emulator beeps faster than they play.
	if sdl.GetQueuedAudioSize(b.dev) > uint32(2*len(cpy)) {
		sdl.ClearQueuedAudio(b.dev)
	}
	if err := sdl.QueueAudio(b.dev, cpy); err != nil {
		log.ModSound.DebugZ("failed to queue audio buffer").Error("err", err).End()
	}
}

func (b *sdlBeeper) Close() {
	sdl.Do(func() { sdl.CloseAudioDevice(b.dev) })
}

// logBeeper logs beeps instead of playing them.
type logBeeper struct {
	name  string
	count int
}

func (b *logBeeper) Beep() {
	b.count++
	log.ModSound.InfoZ("Beep!").String("rom", b.name).Int("count", int64(b.count)).End()
}

// Package audio 生成烟花音效的程序化波形
//
// 所有音效都是 beep.Streamer，不依赖任何音频文件。
package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/decker502/festival/pkg/utils"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Wave 振荡器波形
type Wave int

const (
	WaveSine Wave = iota
	WaveTriangle
	WaveNoise
)

// oscillator 生成固定时长的原始波形，可带线性频率滑移
type oscillator struct {
	freq     float64
	freqEnd  float64
	phase    float64
	position int
	total    int
	wave     Wave
	rate     beep.SampleRate
	rng      *rand.Rand
}

// NewOscillator 创建振荡器
//
// 参数：
//   - freq, freqEnd: 起止频率（Hz），相同时为恒定音高
//   - duration: 时长
//   - wave: 波形
//   - rate: 采样率
//   - rng: 噪声源，仅 WaveNoise 使用，可为 nil
func NewOscillator(freq, freqEnd float64, duration time.Duration, wave Wave, rate beep.SampleRate, rng *rand.Rand) beep.Streamer {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &oscillator{
		freq:    freq,
		freqEnd: freqEnd,
		total:   rate.N(duration),
		wave:    wave,
		rate:    rate,
		rng:     rng,
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.total {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveTriangle:
			val = 4*math.Abs(o.phase-0.5) - 1
		case WaveNoise:
			val = o.rng.Float64()*2 - 1
		}
		samples[i][0] = val
		samples[i][1] = val

		progress := float64(o.position) / float64(o.total)
		freq := o.freq + (o.freqEnd-o.freq)*progress
		o.phase += freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope 线性起音 + 指数衰减
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	decay    float64 // 每个采样的衰减系数
}

// NewEnvelope 为 streamer 加上起音/衰减包络
//
// decay 是振幅衰减到约 1/1000 所需的时间
func NewEnvelope(s beep.Streamer, attack, decay time.Duration, rate beep.SampleRate) beep.Streamer {
	decaySamples := rate.N(decay)
	if decaySamples < 1 {
		decaySamples = 1
	}
	return &envelope{
		streamer: s,
		attack:   rate.N(attack),
		decay:    math.Pow(0.001, 1/float64(decaySamples)),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		var vol float64
		if e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		} else {
			vol = math.Pow(e.decay, float64(e.position-e.attack))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// NewVolume 按线性音量包装 streamer，0 以下为静音
func NewVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

const (
	popDuration = 220 * time.Millisecond
	popAttack   = 4 * time.Millisecond
)

// PopSound 生成一次烟花爆开的音效：一段下滑的正弦音加一层短噪声
//
// 参数：
//   - pitch: 音高系数，1.0 为基准（约 620Hz 滑向 180Hz）
//   - volume: 线性音量 0.0 ~ 1.0
func PopSound(rate beep.SampleRate, pitch, volume float64, rng *rand.Rand) beep.Streamer {
	if pitch <= 0 {
		pitch = 1
	}

	tone := NewEnvelope(
		NewOscillator(620*pitch, 180*pitch, popDuration, WaveSine, rate, nil),
		popAttack, popDuration, rate,
	)
	crackle := NewEnvelope(
		NewOscillator(0, 0, popDuration/2, WaveNoise, rate, rng),
		popAttack/2, popDuration/3, rate,
	)

	return NewVolume(beep.Mix(
		NewVolume(tone, 0.7),
		NewVolume(crackle, 0.3),
	), volume)
}

// PitchForX 把屏幕横坐标映射为音高系数：左侧偏低，右侧偏高
func PitchForX(x, width float64) float64 {
	if width <= 0 {
		return 1
	}
	return 0.8 + 0.4*utils.Clamp(x/width, 0, 1)
}

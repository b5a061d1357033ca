package game

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/decker502/festival/internal/audio"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// sampleRate 扬声器采样率
const sampleRate = beep.SampleRate(44100)

// speakerOnce 扬声器在进程内只能初始化一次
var (
	speakerOnce sync.Once
	speakerErr  error
)

// AudioManager 音频管理器
//
// 音效在运行时合成（internal/audio），通过 gopxl/beep 的 speaker 播放，
// 不使用 ebiten/v2/audio：speaker 独占 oto 设备，终端版 cmd/tui 也走同一条路径。
//
// 职责：
//   - 统一管理烟花音效的播放
//   - 与设置联动（SoundEnabled / SoundVolume）
//   - 扬声器不可用时进入降级模式，所有播放调用变为空操作
type AudioManager struct {
	settingsManager *SettingsManager // 可为 nil（始终按默认音量播放）
	mixer           *beep.Mixer
	rng             *rand.Rand
	enabled         bool // 扬声器是否初始化成功
	played          int
}

// NewAudioManager 创建新的音频管理器
//
// 参数：
//   - sm: SettingsManager 实例（用于读取音量设置，可为 nil）
//
// 返回：
//   - *AudioManager: 音频管理器实例，没有可用音频设备时处于降级模式
func NewAudioManager(sm *SettingsManager) *AudioManager {
	am := newSilentAudioManager(sm)
	if err := am.initSpeaker(); err != nil {
		log.Printf("[AudioManager] Warning: audio disabled (降级模式): %v", err)
		return am
	}
	am.enabled = true
	return am
}

// newSilentAudioManager 创建不连接扬声器的音频管理器（测试与降级模式使用）
func newSilentAudioManager(sm *SettingsManager) *AudioManager {
	return &AudioManager{
		settingsManager: sm,
		mixer:           &beep.Mixer{},
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (am *AudioManager) initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(sampleRate, sampleRate.N(time.Second/10))
	})
	if speakerErr != nil {
		return fmt.Errorf("failed to init speaker: %w", speakerErr)
	}
	speaker.Play(am.mixer)
	return nil
}

// PlayPop 播放一次烟花音效
//
// 参数：
//   - pitch: 音高系数（见 audio.PitchForX）
//
// 返回：
//   - bool: 是否实际加入了混音器（音效被禁用时返回 false）
func (am *AudioManager) PlayPop(pitch float64) bool {
	volume := am.getSoundVolume()
	if volume <= 0 {
		return false
	}

	streamer := audio.PopSound(sampleRate, pitch, volume, am.rng)
	if am.enabled {
		speaker.Lock()
		am.mixer.Add(streamer)
		speaker.Unlock()
	} else {
		am.mixer.Add(streamer)
	}
	am.played++
	return true
}

// getSoundVolume 计算当前音效音量，音效关闭时返回 0
func (am *AudioManager) getSoundVolume() float64 {
	if am.settingsManager == nil {
		return DefaultSettings().SoundVolume
	}
	settings := am.settingsManager.GetSettings()
	if !settings.SoundEnabled {
		return 0
	}
	return settings.SoundVolume
}

// Enabled 返回扬声器是否可用
func (am *AudioManager) Enabled() bool {
	return am.enabled
}

// PlayedCount 返回已播放的音效数量
func (am *AudioManager) PlayedCount() int {
	return am.played
}

// Close 清空混音器，停止所有正在播放的音效
func (am *AudioManager) Close() {
	if am.enabled {
		speaker.Lock()
		am.mixer.Clear()
		speaker.Unlock()
		return
	}
	am.mixer.Clear()
}

// Package main 在终端中运行烟花与水印动画
//
// Usage:
//
//	go run ./cmd/tui [flags]
//
// Flags:
//
//	--config <path>   外部配置文件（默认使用内置默认值）
//	--mute            关闭音效
//	--log <path>      日志文件（终端被界面占用，默认不输出日志）
//
// Controls:
//
//	Mouse Click   - 在点击位置放烟花
//	q / Escape    - 退出
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/decker502/festival/internal/audio"
	"github.com/decker502/festival/internal/tui"
	"github.com/decker502/festival/pkg/config"
	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)
	popVolume  = 0.5
)

func main() {
	configPath := flag.String("config", "", "外部配置文件路径")
	mute := flag.Bool("mute", false, "关闭音效")
	logPath := flag.String("log", "", "日志文件路径")
	flag.Parse()

	if err := run(*configPath, *logPath, *mute); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run 运行终端动画，返回前关闭日志文件和屏幕
func run(configPath, logPath string, mute bool) error {
	log.SetOutput(io.Discard)
	if logPath != "" {
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	cfg := config.DefaultFestivalConfig()
	if configPath != "" {
		loaded, err := config.LoadFestivalConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("failed to create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize screen: %w", err)
	}
	screen.EnableMouse()
	screen.HideCursor()

	var opts []tui.Option
	if !mute {
		if play := newPopPlayer(cfg); play != nil {
			opts = append(opts, tui.WithBurstListener(play))
		}
	}

	presenter, err := tui.New(screen, cfg, nil, opts...)
	if err != nil {
		screen.Fini()
		return fmt.Errorf("failed to initialize: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	runErr := presenter.Run(ctx)
	stop()

	presenter.Close()
	screen.Fini()
	return quitError(runErr)
}

// quitError 过滤掉 Ctrl-C 等正常退出产生的取消错误
func quitError(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// newPopPlayer 初始化扬声器并返回播放爆开音效的回调
// 扬声器不可用时返回 nil（静音运行）
// 回调只在 Presenter 的循环 goroutine 上调用
func newPopPlayer(cfg *config.FestivalConfig) func(x, y float64) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		log.Printf("[TUI] Audio initialization failed (降级模式): %v", err)
		return nil
	}

	mixer := &beep.Mixer{}
	speaker.Play(mixer)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return func(x, y float64) {
		pitch := audio.PitchForX(x, float64(cfg.Window.Width))
		pop := audio.PopSound(sampleRate, pitch, popVolume, rng)

		speaker.Lock()
		mixer.Add(pop)
		speaker.Unlock()
	}
}

package main

import (
	"flag"
	"log"
	"os"

	"github.com/decker502/festival/pkg/app"
	"github.com/decker502/festival/pkg/embedded"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	verbose := flag.Bool("verbose", false, "启用详细日志输出")
	configPath := flag.String("config", "", "外部配置文件路径（默认使用内嵌的 data/festival.yaml）")
	route := flag.String("route", "/", "启动路由：/ 或 /test")
	watch := flag.Bool("watch", false, "监听 --config 文件变化并热重载")
	flag.Parse()

	// 初始化嵌入资源
	embedded.Init(dataFS)

	festival, err := app.NewApp(app.Config{
		Verbose:    *verbose,
		ConfigPath: *configPath,
		Route:      *route,
		Watch:      *watch,
	})
	if err != nil {
		// NewApp 可能已关闭日志输出，错误直接写到 stderr
		log.SetOutput(os.Stderr)
		log.Fatalf("初始化失败: %v", err)
	}

	window := festival.WindowConfig()
	ebiten.SetWindowSize(window.Width, window.Height)
	ebiten.SetWindowTitle(window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if settings := festival.Services().Settings; settings != nil && settings.GetSettings().Fullscreen {
		ebiten.SetFullscreen(true)
	}

	// Start the game loop
	// This will call Update() and Draw() repeatedly until the window is closed
	runErr := ebiten.RunGame(festival)
	festival.Shutdown()
	if runErr != nil {
		log.SetOutput(os.Stderr)
		log.Fatal(runErr)
	}
}

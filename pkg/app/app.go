// Package app 提供应用的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来，使其可以被桌面端和移动端共用。
// 桌面端通过 main.go 调用 NewApp()，移动端通过 mobile/mobile.go 调用。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"

	"github.com/decker502/festival/pkg/config"
	"github.com/decker502/festival/pkg/embedded"
	"github.com/decker502/festival/pkg/game"
	"github.com/decker502/festival/pkg/scenes"
	"github.com/decker502/festival/pkg/utils"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"
)

// AppName gdata 存储使用的应用名
const AppName = "festival"

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// ConfigPath 外部配置文件路径，为空则使用内嵌的 data/festival.yaml
	ConfigPath string
	// Route 启动路由，为空或未注册时使用首页 "/"
	Route string
	// Watch 监听 ConfigPath 的变化并热重载（ConfigPath 为空时忽略）
	Watch bool
}

// App 是应用的核心包装器，实现 ebiten.Game 接口
type App struct {
	services *scenes.Services
	watcher  *config.Watcher
	verbose  bool

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化应用
//
// 调用此函数前，必须先调用 embedded.Init() 初始化嵌入资源。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	festivalConfig, err := LoadConfig(cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("配置加载失败: %w", err)
	}

	// 用户设置（gdata 不可用时降级为内存设置）
	var gdataManager *gdata.Manager
	if err := utils.EnsureStorageDir(); err != nil {
		log.Printf("[App] Warning: storage dir unavailable (降级模式): %v", err)
	} else if gdataManager, err = gdata.Open(gdata.Config{AppName: AppName}); err != nil {
		log.Printf("[App] Warning: gdata unavailable (降级模式): %v", err)
		gdataManager = nil
	}
	settingsManager := game.NewSettingsManager(gdataManager)
	if err := settingsManager.Load(); err != nil {
		log.Printf("[App] Warning: failed to load settings: %v", err)
	}

	services := &scenes.Services{
		Config:    festivalConfig,
		Resources: game.NewResourceManager(festivalConfig.Font.Path),
		Scenes:    game.NewSceneManager(),
		Settings:  settingsManager,
		Audio:     game.NewAudioManager(settingsManager),
		Clipboard: scenes.NewSystemClipboard(),
	}
	log.Printf("[App] AudioManager initialized (enabled=%v)", services.Audio.Enabled())

	return newApp(cfg, services)
}

// newApp 注册路由、进入启动路由并按需启动配置监听
func newApp(cfg Config, services *scenes.Services) (*App, error) {
	scenes.RegisterRoutes(services)

	route := cfg.Route
	if route == "" || !services.Scenes.HasRoute(route) {
		if route != "" {
			log.Printf("[App] Warning: unknown route %q, falling back to %q", route, scenes.RouteHome)
		}
		route = scenes.RouteHome
	}
	if err := services.Scenes.Navigate(route); err != nil {
		return nil, fmt.Errorf("启动路由 %s 创建失败: %w", route, err)
	}
	log.Printf("[App] Starting route: %s", route)

	a := &App{
		services: services,
		verbose:  cfg.Verbose,
	}

	if cfg.Watch && cfg.ConfigPath != "" {
		watcher, err := config.NewWatcher(cfg.ConfigPath)
		if err != nil {
			log.Printf("[App] Warning: config hot reload disabled: %v", err)
		} else {
			a.watcher = watcher
			log.Printf("[App] Watching %s for changes", cfg.ConfigPath)
		}
	}
	return a, nil
}

// LoadConfig 加载配置
// path 为空时读取内嵌的默认配置
func LoadConfig(path string) (*config.FestivalConfig, error) {
	if path != "" {
		log.Printf("[Config] 加载配置文件: %s", path)
		return config.LoadFestivalConfig(path)
	}

	data, err := embedded.ReadFile(config.DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	log.Printf("[Config] 加载内嵌配置: %s", config.DefaultConfigPath)
	return config.ParseFestivalConfig(data)
}

// pollWatcher 在游戏线程中消费配置变化事件（非阻塞）
func (a *App) pollWatcher() {
	if a.watcher == nil {
		return
	}
	select {
	case path, ok := <-a.watcher.Events:
		if ok {
			a.applyConfigChange(path)
		}
	case err, ok := <-a.watcher.Errors:
		if ok {
			log.Printf("[App] Warning: config watcher error: %v", err)
		}
	default:
	}
}

// applyConfigChange 重新加载配置并重建当前场景
// 新配置无效或场景重建失败时保留旧配置和旧场景
func (a *App) applyConfigChange(path string) bool {
	cfg, err := config.LoadFestivalConfig(path)
	if err != nil {
		log.Printf("[App] Warning: ignoring invalid config change: %v", err)
		return false
	}

	// 场景工厂从 Services 读取配置和字体，重建前先替换
	oldConfig, oldResources := a.services.Config, a.services.Resources
	a.services.Config = cfg
	if oldResources == nil || oldResources.CJKPath() != cfg.Font.Path {
		a.services.Resources = game.NewResourceManager(cfg.Font.Path)
	}

	if err := a.services.Scenes.Reload(); err != nil {
		a.services.Config, a.services.Resources = oldConfig, oldResources
		log.Printf("[App] Warning: failed to reload scene: %v", err)
		return false
	}
	log.Printf("[App] Config reloaded from %s", path)
	return true
}

// Update 更新应用逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			w, h := a.Layout(0, 0)
			ebiten.SetWindowSize(w, h)
			log.Printf("[App] Delayed SetWindowSize(%d, %d)", w, h)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		a.toggleFullscreen()
	}

	a.pollWatcher()

	deltaTime := 1.0 / float64(ebiten.TPS())
	a.services.Scenes.Update(deltaTime)
	return nil
}

func (a *App) toggleFullscreen() {
	if ebiten.IsFullscreen() {
		// 退出全屏
		ebiten.SetFullscreen(false)
		if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
			ebiten.RestoreWindow()
		}
		// 延迟几帧后设置窗口大小，让窗口管理器有时间处理
		a.pendingWindowSizeReset = true
		a.windowSizeResetCountdown = 3
		log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
	} else {
		ebiten.SetFullscreen(true)
	}
	if a.services.Settings != nil {
		a.services.Settings.SetFullscreen(ebiten.IsFullscreen())
	}
}

// Draw 绘制画面
// 每帧调用一次
func (a *App) Draw(screen *ebiten.Image) {
	a.services.Scenes.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸（来自配置的窗口大小）
// 此尺寸独立于实际窗口大小，Ebitengine 会自动处理缩放
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	window := a.services.Config.Window
	return window.Width, window.Height
}

// Services 返回场景共享的服务
func (a *App) Services() *scenes.Services {
	return a.services
}

// WindowConfig 返回窗口配置
func (a *App) WindowConfig() config.WindowConfig {
	return a.services.Config.Window
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}

// Shutdown 保存设置并释放资源
// 退出时调用一次
func (a *App) Shutdown() {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			log.Printf("[App] Warning: failed to close watcher: %v", err)
		}
		a.watcher = nil
	}
	a.services.Scenes.Close()
	if a.services.Settings != nil {
		if err := a.services.Settings.SaveIfDirty(); err != nil {
			log.Printf("[App] Warning: failed to save settings: %v", err)
		}
	}
	if a.services.Audio != nil {
		a.services.Audio.Close()
	}
	log.Printf("[App] Shutdown complete")
}

package scenes

import (
	"github.com/decker502/festival/pkg/config"
	"github.com/decker502/festival/pkg/game"
	"github.com/decker502/festival/pkg/scheduler"
)

// Scene is a type alias for game.Scene to maintain backward compatibility.
// All scene implementations should implement the game.Scene interface.
type Scene = game.Scene

// 路由
const (
	RouteHome = game.RootRoute
	RouteTest = "/test"
)

// Services 场景共享的服务
//
// Audio 与 Clipboard 可为 nil（降级模式：对应功能静默跳过）。
// Clock 为 nil 时使用系统时钟。
type Services struct {
	Config    *config.FestivalConfig
	Resources *game.ResourceManager
	Scenes    *game.SceneManager
	Settings  *game.SettingsManager
	Audio     *game.AudioManager
	Clipboard Clipboard
	Clock     scheduler.Clock
}

// RegisterRoutes 注册全部路由
func RegisterRoutes(services *Services) {
	services.Scenes.Register(RouteHome, func() (Scene, error) {
		return NewHomeScene(services)
	})
	services.Scenes.Register(RouteTest, func() (Scene, error) {
		return NewTestScene(services)
	})
}

package game

import (
	"fmt"
	"log"
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
)

// RootRoute 首页路由
const RootRoute = "/"

// SceneFactory 场景工厂函数类型
// 每次导航都会创建一个新的场景实例
type SceneFactory func() (Scene, error)

// SceneManager manages which scene is active through a route table.
// It ensures only one scene's Update and Draw methods are called at any given time.
type SceneManager struct {
	currentScene Scene
	currentRoute string
	routes       map[string]SceneFactory

	pendingRoute string
	hasPending   bool
}

// NewSceneManager creates and returns a new SceneManager instance.
// The manager starts with no active scene; use Navigate to set the initial scene.
func NewSceneManager() *SceneManager {
	return &SceneManager{
		routes: make(map[string]SceneFactory),
	}
}

// Register 注册路由
// 同一路径重复注册时后注册的覆盖先注册的
func (sm *SceneManager) Register(path string, factory SceneFactory) {
	sm.routes[normalizeRoute(path)] = factory
}

// HasRoute 检查路由是否已注册
func (sm *SceneManager) HasRoute(path string) bool {
	_, ok := sm.routes[normalizeRoute(path)]
	return ok
}

// Routes 返回已注册的路由（按字典序）
func (sm *SceneManager) Routes() []string {
	routes := make([]string, 0, len(sm.routes))
	for path := range sm.routes {
		routes = append(routes, path)
	}
	sort.Strings(routes)
	return routes
}

// Navigate 切换到指定路由
//
// 未知路由或场景创建失败时返回错误，当前场景保持不变。
// 切换成功后旧场景如果实现了 Closer 会被关闭。
func (sm *SceneManager) Navigate(path string) error {
	path = normalizeRoute(path)
	factory, ok := sm.routes[path]
	if !ok {
		return fmt.Errorf("unknown route %q", path)
	}

	scene, err := factory()
	if err != nil {
		return fmt.Errorf("failed to create scene for %q: %w", path, err)
	}

	log.Printf("[SceneManager] 切换路由: %q -> %q", sm.currentRoute, path)
	sm.SwitchTo(scene)
	sm.currentRoute = path
	return nil
}

// RequestNavigate 请求在当前帧 Update 结束后切换路由
// 场景在自己的 Update 中发起导航时使用，避免在回调执行中途关闭自身
func (sm *SceneManager) RequestNavigate(path string) {
	sm.pendingRoute = path
	sm.hasPending = true
}

// Reload 重新创建当前路由的场景（配置热更新时使用）
func (sm *SceneManager) Reload() error {
	if sm.currentRoute == "" {
		return fmt.Errorf("no active route")
	}
	return sm.Navigate(sm.currentRoute)
}

// SwitchTo changes the active scene to the provided scene.
// The previous scene is closed if it implements Closer.
func (sm *SceneManager) SwitchTo(scene Scene) {
	if sm.currentScene != nil && sm.currentScene != scene {
		if c, ok := sm.currentScene.(Closer); ok {
			c.Close()
		}
	}
	sm.currentScene = scene
}

// GetCurrentScene 返回当前活动的场景，没有活动场景时返回 nil
func (sm *SceneManager) GetCurrentScene() Scene {
	return sm.currentScene
}

// CurrentRoute 返回当前路由，没有活动场景时返回空字符串
func (sm *SceneManager) CurrentRoute() string {
	return sm.currentRoute
}

// Update updates the currently active scene.
// If no scene is active, this method does nothing.
// A navigation requested during the update is applied afterwards.
func (sm *SceneManager) Update(deltaTime float64) {
	if sm.currentScene != nil {
		sm.currentScene.Update(deltaTime)
	}
	if sm.hasPending {
		path := sm.pendingRoute
		sm.pendingRoute, sm.hasPending = "", false
		if err := sm.Navigate(path); err != nil {
			log.Printf("[SceneManager] Warning: navigation failed: %v", err)
		}
	}
}

// Draw renders the currently active scene to the provided screen.
// If no scene is active, this method does nothing.
func (sm *SceneManager) Draw(screen *ebiten.Image) {
	if sm.currentScene != nil {
		sm.currentScene.Draw(screen)
	}
}

// Close 关闭当前场景
func (sm *SceneManager) Close() {
	if c, ok := sm.currentScene.(Closer); ok {
		c.Close()
	}
	sm.currentScene = nil
	sm.currentRoute = ""
}

func normalizeRoute(path string) string {
	if path == "" {
		return RootRoute
	}
	if path[0] != '/' {
		path = "/" + path
	}
	for len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}

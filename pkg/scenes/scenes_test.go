package scenes

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/decker502/festival/pkg/config"
	"github.com/decker502/festival/pkg/game"
	"github.com/decker502/festival/pkg/scheduler"
	"github.com/hajimehoshi/ebiten/v2"
)

// fakeClipboard 记录写入的文本
type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteText(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

// stubScene 什么都不做的场景，用于在不读取输入的情况下驱动 SceneManager.Update
type stubScene struct{}

func (stubScene) Update(float64)     {}
func (stubScene) Draw(*ebiten.Image) {}

func newTestServices(t *testing.T) (*Services, *scheduler.MockClock) {
	t.Helper()
	clock := scheduler.NewMockClock(time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC))
	services := &Services{
		Config:    config.DefaultFestivalConfig(),
		Resources: game.NewResourceManager(""),
		Scenes:    game.NewSceneManager(),
		Settings:  game.NewSettingsManager(nil),
		Clipboard: &fakeClipboard{},
		Clock:     clock,
	}
	RegisterRoutes(services)
	return services, clock
}

func newTestHome(t *testing.T) (*HomeScene, *Services, *scheduler.MockClock) {
	t.Helper()
	services, clock := newTestServices(t)
	home, err := NewHomeScene(services)
	if err != nil {
		t.Fatalf("NewHomeScene failed: %v", err)
	}
	t.Cleanup(home.Close)
	return home, services, clock
}

func TestRegisterRoutes(t *testing.T) {
	services, _ := newTestServices(t)
	for _, route := range []string{RouteHome, RouteTest} {
		if !services.Scenes.HasRoute(route) {
			t.Errorf("route %q not registered", route)
		}
	}
	if services.Scenes.HasRoute("/missing") {
		t.Error("unexpected route /missing")
	}
}

func TestHomeScene_StartsEngine(t *testing.T) {
	home, _, _ := newTestHome(t)

	if home.Engine().Stopped() {
		t.Fatal("engine should be running")
	}
	if got := home.Engine().WatermarkCount(); got != 1 {
		t.Errorf("watermarks after start = %d, want 1", got)
	}
}

func TestHomeScene_ClickSpawnsBurst(t *testing.T) {
	home, _, clock := newTestHome(t)

	home.Click(200, 300)
	if got := home.Engine().ParticleCount(); got != 35 {
		t.Fatalf("particles after click = %d, want 35", got)
	}

	// 节流窗口内的第二次点击被忽略
	home.Click(400, 300)
	if got := home.Engine().ParticleCount(); got != 35 {
		t.Errorf("particles after throttled click = %d, want 35", got)
	}

	clock.Advance(200 * time.Millisecond)
	home.Click(400, 300)
	if got := home.Engine().ParticleCount(); got != 70 {
		t.Errorf("particles after second click = %d, want 70", got)
	}
}

func TestHomeScene_AdvanceMovesParticles(t *testing.T) {
	home, _, _ := newTestHome(t)
	home.Click(200, 300)

	home.advance(1.0 / 60)
	for _, p := range home.Engine().Particles() {
		if p.Life != 78 {
			t.Fatalf("particle %d life = %d, want 78", p.ID, p.Life)
		}
	}
}

func TestHomeScene_TitleIntro(t *testing.T) {
	home, _, _ := newTestHome(t)

	home.advance(0.05)
	if got := home.TitleScale(); got != 0 {
		t.Errorf("title scale during intro delay = %v, want 0", got)
	}

	home.advance(1.0)
	if got := home.TitleScale(); math.Abs(got-1) > 1e-4 {
		t.Errorf("title scale after intro = %v, want 1", got)
	}
}

func TestHomeScene_TitleWithoutTween(t *testing.T) {
	services, _ := newTestServices(t)
	services.Config.Title.IntroDelay = 0
	services.Config.Title.IntroDuration = 0
	home, err := NewHomeScene(services)
	if err != nil {
		t.Fatalf("NewHomeScene failed: %v", err)
	}
	defer home.Close()

	home.advance(1.0 / 60)
	if got := home.TitleScale(); got != 1 {
		t.Errorf("title scale = %v, want 1", got)
	}
}

func TestHomeScene_CopyBlessing(t *testing.T) {
	home, services, _ := newTestHome(t)
	cb := services.Clipboard.(*fakeClipboard)

	home.CopyBlessing()
	if cb.text != home.BlessingText() {
		t.Errorf("clipboard = %q, want %q", cb.text, home.BlessingText())
	}
	if !strings.HasPrefix(cb.text, "2026 马年大吉 新年快乐\n") {
		t.Errorf("unexpected blessing text %q", cb.text)
	}
	if !strings.Contains(cb.text, "心想事成") {
		t.Errorf("blessing text missing blessings: %q", cb.text)
	}
	if got := home.Status(); got != "祝福已复制" {
		t.Errorf("status = %q, want 祝福已复制", got)
	}

	// 状态提示过期
	home.advance(statusDuration + 0.1)
	if got := home.Status(); got != "" {
		t.Errorf("status after expiry = %q, want empty", got)
	}
}

func TestHomeScene_CopyBlessingFailures(t *testing.T) {
	home, services, _ := newTestHome(t)

	services.Clipboard.(*fakeClipboard).err = errors.New("boom")
	home.CopyBlessing()
	if got := home.Status(); got != "复制失败" {
		t.Errorf("status = %q, want 复制失败", got)
	}

	services.Clipboard = nil
	home.CopyBlessing()
	if got := home.Status(); got != "剪贴板不可用" {
		t.Errorf("status = %q, want 剪贴板不可用", got)
	}
}

func TestHomeScene_ToggleSound(t *testing.T) {
	home, services, _ := newTestHome(t)

	home.ToggleSound()
	if services.Settings.GetSettings().SoundEnabled {
		t.Error("sound should be disabled after toggle")
	}
	if got := home.Status(); got != "音效：关" {
		t.Errorf("status = %q, want 音效：关", got)
	}

	home.ToggleSound()
	if !services.Settings.GetSettings().SoundEnabled {
		t.Error("sound should be enabled after second toggle")
	}
}

func TestHomeScene_CloseStopsEngine(t *testing.T) {
	home, _, clock := newTestHome(t)
	sched := home.Engine().Scheduler()

	home.Close()
	if !home.Engine().Stopped() {
		t.Error("engine should be stopped")
	}
	if !sched.Closed() {
		t.Error("scheduler should be closed")
	}

	// 关闭后的点击和推进都是空操作
	clock.Advance(time.Second)
	home.Click(100, 100)
	home.Update(1.0 / 60)
	if got := home.Engine().ParticleCount(); got != 0 {
		t.Errorf("particles after close = %d, want 0", got)
	}
	home.Close()
}

func TestHomeScene_GoToTest(t *testing.T) {
	services, _ := newTestServices(t)
	sm := services.Scenes
	if err := sm.Navigate(RouteHome); err != nil {
		t.Fatalf("Navigate(/) failed: %v", err)
	}
	home := sm.GetCurrentScene().(*HomeScene)

	home.GoToTest()
	sm.SwitchTo(stubScene{})
	sm.Update(1.0 / 60)

	if got := sm.CurrentRoute(); got != RouteTest {
		t.Fatalf("route = %q, want %q", got, RouteTest)
	}
	if _, ok := sm.GetCurrentScene().(*TestScene); !ok {
		t.Errorf("current scene is %T, want *TestScene", sm.GetCurrentScene())
	}
	if !home.Engine().Stopped() {
		t.Error("home engine should be stopped after leaving the page")
	}
}

func TestNavigateAwayClosesHome(t *testing.T) {
	services, _ := newTestServices(t)
	sm := services.Scenes
	if err := sm.Navigate(RouteHome); err != nil {
		t.Fatalf("Navigate(/) failed: %v", err)
	}
	home := sm.GetCurrentScene().(*HomeScene)

	if err := sm.Navigate(RouteTest); err != nil {
		t.Fatalf("Navigate(/test) failed: %v", err)
	}
	if !home.Engine().Stopped() {
		t.Error("home engine should be stopped")
	}
	sm.Close()
}

func TestTestScene_GoHome(t *testing.T) {
	services, _ := newTestServices(t)
	sm := services.Scenes
	if err := sm.Navigate(RouteTest); err != nil {
		t.Fatalf("Navigate(/test) failed: %v", err)
	}
	page := sm.GetCurrentScene().(*TestScene)
	if page.BackButton() == nil {
		t.Fatal("back button not built")
	}

	page.GoHome()
	sm.SwitchTo(stubScene{})
	sm.Update(1.0 / 60)

	if got := sm.CurrentRoute(); got != RouteHome {
		t.Fatalf("route = %q, want %q", got, RouteHome)
	}
	if _, ok := sm.GetCurrentScene().(*HomeScene); !ok {
		t.Errorf("current scene is %T, want *HomeScene", sm.GetCurrentScene())
	}
	sm.Close()
}

func TestTestPageContent(t *testing.T) {
	if len(testPageCards) != 2 {
		t.Fatalf("cards = %d, want 2", len(testPageCards))
	}
	info := strings.Join(testPageCards[0].Lines, "\n")
	for _, want := range []string{"/test", "Test", "正常运行"} {
		if !strings.Contains(info, want) {
			t.Errorf("page info missing %q", want)
		}
	}
	features := strings.Join(testPageCards[1].Lines, "\n")
	for _, want := range []string{"路由跳转测试", "组件渲染测试", "样式应用测试"} {
		if !strings.Contains(features, want) {
			t.Errorf("feature list missing %q", want)
		}
	}
}

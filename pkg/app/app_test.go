package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/decker502/festival/pkg/config"
	"github.com/decker502/festival/pkg/embedded"
	"github.com/decker502/festival/pkg/game"
	"github.com/decker502/festival/pkg/scenes"
	"github.com/decker502/festival/pkg/scheduler"
	"golang.org/x/image/font/gofont/goregular"
)

func newTestServices() *scenes.Services {
	return &scenes.Services{
		Config:    config.DefaultFestivalConfig(),
		Resources: game.NewResourceManager(""),
		Scenes:    game.NewSceneManager(),
		Settings:  game.NewSettingsManager(nil),
		Clock:     scheduler.NewMockClock(time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC)),
	}
}

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "festival.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadConfig_Embedded(t *testing.T) {
	embedded.Init(fstest.MapFS{
		config.DefaultConfigPath: {Data: []byte("window:\n  width: 800\n  height: 600\n")},
	})
	t.Cleanup(func() { embedded.Init(nil) })

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Window.Width != 800 || cfg.Window.Height != 600 {
		t.Errorf("window = %dx%d, want 800x600", cfg.Window.Width, cfg.Window.Height)
	}
	// 未出现的字段保留默认值
	if cfg.Particles.MaxParticles != 400 {
		t.Errorf("maxParticles = %d, want 400", cfg.Particles.MaxParticles)
	}
}

func TestLoadConfig_EmbeddedNotInitialized(t *testing.T) {
	embedded.Init(nil)
	if _, err := LoadConfig(""); err == nil {
		t.Error("expected error when embedded data is not initialized")
	}
}

func TestLoadConfig_File(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "particles:\n  burstCount: 10\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Particles.BurstCount != 10 {
		t.Errorf("burstCount = %d, want 10", cfg.Particles.BurstCount)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNewApp_StartRoute(t *testing.T) {
	tests := []struct {
		name  string
		route string
		want  string
	}{
		{"default", "", scenes.RouteHome},
		{"home", "/", scenes.RouteHome},
		{"test page", "/test", scenes.RouteTest},
		{"without slash", "test", scenes.RouteTest},
		{"unknown falls back", "/nope", scenes.RouteHome},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := newApp(Config{Route: tt.route}, newTestServices())
			if err != nil {
				t.Fatalf("newApp failed: %v", err)
			}
			defer a.Shutdown()

			if got := a.Services().Scenes.CurrentRoute(); got != tt.want {
				t.Errorf("route = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestApp_Layout(t *testing.T) {
	services := newTestServices()
	services.Config.Window.Width = 960
	services.Config.Window.Height = 540
	a, err := newApp(Config{}, services)
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}
	defer a.Shutdown()

	w, h := a.Layout(1920, 1080)
	if w != 960 || h != 540 {
		t.Errorf("Layout = %dx%d, want 960x540", w, h)
	}
}

func TestApp_ApplyConfigChange(t *testing.T) {
	a, err := newApp(Config{}, newTestServices())
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}
	defer a.Shutdown()
	before := a.Services().Scenes.GetCurrentScene()

	dir := t.TempDir()
	path := writeConfig(t, dir, "window:\n  width: 1024\n  height: 576\n")
	if !a.applyConfigChange(path) {
		t.Fatal("valid config change was rejected")
	}
	if w, h := a.Layout(0, 0); w != 1024 || h != 576 {
		t.Errorf("Layout after reload = %dx%d, want 1024x576", w, h)
	}
	after := a.Services().Scenes.GetCurrentScene()
	if after == before {
		t.Error("scene should be recreated after config change")
	}
	home, ok := after.(*scenes.HomeScene)
	if !ok {
		t.Fatalf("current scene is %T, want *scenes.HomeScene", after)
	}
	if home.Engine().Config().Window.Width != 1024 {
		t.Error("recreated scene should use the new config")
	}

	// 无效配置被忽略，保留旧配置
	writeConfig(t, dir, "particles:\n  maxParticles: 0\n")
	if a.applyConfigChange(path) {
		t.Error("invalid config change should be rejected")
	}
	if w, _ := a.Layout(0, 0); w != 1024 {
		t.Errorf("width after invalid change = %d, want 1024", w)
	}
	if a.Services().Scenes.GetCurrentScene() != after {
		t.Error("scene should not change on invalid config")
	}
}

func TestApp_ApplyConfigChangeReloadsFont(t *testing.T) {
	a, err := newApp(Config{}, newTestServices())
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}
	defer a.Shutdown()

	dir := t.TempDir()
	fontPath := filepath.Join(dir, "cjk.ttf")
	if err := os.WriteFile(fontPath, goregular.TTF, 0644); err != nil {
		t.Fatalf("failed to write font: %v", err)
	}
	path := writeConfig(t, dir, "font:\n  path: "+fontPath+"\n")

	before := a.Services().Resources
	if !a.applyConfigChange(path) {
		t.Fatal("valid config change was rejected")
	}
	if a.Services().Resources == before {
		t.Error("resources should be rebuilt when font.path changes")
	}
	if got := a.Services().Resources.CJKPath(); got != fontPath {
		t.Errorf("CJKPath = %q, want %q", got, fontPath)
	}

	// 字体路径不变时复用已加载的字体
	current := a.Services().Resources
	writeConfig(t, dir, "font:\n  path: "+fontPath+"\nwindow:\n  width: 1024\n  height: 576\n")
	if !a.applyConfigChange(path) {
		t.Fatal("valid config change was rejected")
	}
	if a.Services().Resources != current {
		t.Error("resources should be kept when font.path is unchanged")
	}
}

func TestApp_ApplyConfigChangeSceneFailureKeepsOldConfig(t *testing.T) {
	services := newTestServices()
	a, err := newApp(Config{}, services)
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}
	defer a.Shutdown()

	oldConfig, oldResources := services.Config, services.Resources
	scene := services.Scenes.GetCurrentScene()
	services.Scenes.Register(scenes.RouteHome, func() (game.Scene, error) {
		return nil, errors.New("boom")
	})

	path := writeConfig(t, t.TempDir(), "window:\n  width: 1024\n  height: 576\nfont:\n  path: /nonexistent/cjk.ttf\n")
	if a.applyConfigChange(path) {
		t.Fatal("config change should fail when the scene cannot be rebuilt")
	}
	if services.Config != oldConfig {
		t.Error("config should be restored after a failed reload")
	}
	if services.Resources != oldResources {
		t.Error("resources should be restored after a failed reload")
	}
	if services.Scenes.GetCurrentScene() != scene {
		t.Error("old scene should stay active after a failed reload")
	}
	if w, _ := a.Layout(0, 0); w != oldConfig.Window.Width {
		t.Errorf("width = %d, want %d", w, oldConfig.Window.Width)
	}
}

func TestApp_WatchReloadsConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "window:\n  width: 800\n  height: 600\n")

	services := newTestServices()
	a, err := newApp(Config{ConfigPath: path, Watch: true}, services)
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}
	defer a.Shutdown()
	if a.watcher == nil {
		t.Skip("fsnotify not available on this platform")
	}

	writeConfig(t, dir, "window:\n  width: 640\n  height: 480\n")

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		a.pollWatcher()
		if w, _ := a.Layout(0, 0); w == 640 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("config change was not applied within 5s")
}

func TestApp_ShutdownClosesScene(t *testing.T) {
	a, err := newApp(Config{}, newTestServices())
	if err != nil {
		t.Fatalf("newApp failed: %v", err)
	}
	home := a.Services().Scenes.GetCurrentScene().(*scenes.HomeScene)

	a.Shutdown()
	if !home.Engine().Stopped() {
		t.Error("home engine should be stopped after shutdown")
	}
	if a.Services().Scenes.GetCurrentScene() != nil {
		t.Error("no scene should be active after shutdown")
	}
}

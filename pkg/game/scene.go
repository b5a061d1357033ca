package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene represents one page of the application (e.g., home page, test page).
// Each scene has its own update and rendering logic.
type Scene interface {
	// Update updates the scene logic based on the elapsed time.
	// deltaTime is the time elapsed since the last update in seconds.
	Update(deltaTime float64)

	// Draw renders the scene to the provided screen.
	Draw(screen *ebiten.Image)
}

// Closer 是一个可选接口，场景被切换出去时调用
//
// 持有调度器、定时器或监听器的场景在 Close 中释放它们，
// 之后不会再有任何回调修改该场景的状态。
type Closer interface {
	Close()
}

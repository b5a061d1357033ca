package systems

import (
	"image/color"
	"time"

	"github.com/decker502/festival/pkg/components"
	"github.com/decker502/festival/pkg/ecs"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/tanema/gween/ease"
)

const (
	// watermarkMaxAlpha 水印最大不透明度（背景装饰，保持很淡）
	watermarkMaxAlpha = 0.18
	// watermarkFadePortion 淡入、淡出各占动画时长的比例
	watermarkFadePortion = 0.1
	// watermarkMargin 水印在屏幕外起止的边距（像素）
	watermarkMargin = 60.0
)

// WatermarkRenderSystem 水印渲染系统
//
// 水印在 Left% 的水平位置从屏幕底部上升到顶部，
// 首尾各有一段淡入淡出。动画进度由创建时间推算，不保存任何渲染状态。
type WatermarkRenderSystem struct {
	entityManager *ecs.EntityManager
	face          text.Face
	color         color.RGBA
}

// NewWatermarkRenderSystem 创建水印渲染系统
func NewWatermarkRenderSystem(em *ecs.EntityManager, face text.Face, clr color.RGBA) *WatermarkRenderSystem {
	return &WatermarkRenderSystem{
		entityManager: em,
		face:          face,
		color:         clr,
	}
}

// Draw 渲染所有水印
//
// 参数：
//   - screen: 目标图像
//   - now: 当前时间（与引擎调度器同一时钟）
func (s *WatermarkRenderSystem) Draw(screen *ebiten.Image, now time.Time) {
	if s.face == nil {
		return
	}
	bounds := screen.Bounds()
	width := float64(bounds.Dx())
	height := float64(bounds.Dy())

	for _, id := range ecs.GetEntitiesWith1[*components.WatermarkComponent](s.entityManager) {
		wm, _ := ecs.GetComponent[*components.WatermarkComponent](s.entityManager, id)

		elapsed := now.Sub(wm.CreatedAt).Seconds() - wm.Delay
		rise, alpha := WatermarkStyle(elapsed, wm.Duration)
		if alpha <= 0 {
			continue
		}

		x := wm.Left / 100 * width
		y := height + watermarkMargin - rise*(height+2*watermarkMargin)

		op := &text.DrawOptions{}
		op.LayoutOptions.PrimaryAlign = text.AlignCenter
		op.LayoutOptions.SecondaryAlign = text.AlignCenter
		op.GeoM.Translate(x, y)
		op.ColorScale.ScaleWithColor(s.color)
		op.ColorScale.ScaleAlpha(float32(alpha))
		text.Draw(screen, wm.Text, s.face, op)
	}
}

// WatermarkStyle 计算水印动画在 elapsed 秒时的状态
//
// 返回：
//   - rise: 上升进度 0（屏幕底部）~ 1（屏幕顶部）
//   - alpha: 不透明度 0 ~ watermarkMaxAlpha
func WatermarkStyle(elapsed, duration float64) (rise, alpha float64) {
	if duration <= 0 || elapsed < 0 {
		return 0, 0
	}
	if elapsed >= duration {
		return 1, 0
	}

	t := float32(elapsed)
	d := float32(duration)
	rise = float64(ease.Linear(t, 0, 1, d))

	fade := d * watermarkFadePortion
	switch {
	case t < fade:
		alpha = float64(ease.OutQuad(t, 0, watermarkMaxAlpha, fade))
	case t > d-fade:
		alpha = float64(ease.InQuad(t-(d-fade), watermarkMaxAlpha, -watermarkMaxAlpha, fade))
	default:
		alpha = watermarkMaxAlpha
	}
	if alpha < 0 {
		alpha = 0
	}
	return rise, alpha
}

package systems

import (
	"fmt"
	"image/color"

	"github.com/decker502/festival/pkg/components"
	"github.com/decker502/festival/pkg/config"
	"github.com/decker502/festival/pkg/ecs"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// glowAlpha 光晕相对粒子本体的不透明度
const glowAlpha = 0.35

// ParticleRenderSystem 粒子渲染系统
//
// 职责：
//   - 按生成顺序绘制所有粒子（后生成的在上层）
//   - 调色板字符串到颜色的映射只在这里发生
//   - 不透明度 = Life / LifeStart，并带一圈两倍尺寸的光晕
type ParticleRenderSystem struct {
	entityManager *ecs.EntityManager
	palette       map[string]color.RGBA
	lifeStart     int
}

// NewParticleRenderSystem 创建粒子渲染系统
//
// 返回：
//   - error: 调色板中存在无法解析的颜色
func NewParticleRenderSystem(em *ecs.EntityManager, cfg config.ParticleConfig) (*ParticleRenderSystem, error) {
	palette, err := config.ParsePalette(cfg.Palette)
	if err != nil {
		return nil, fmt.Errorf("particle render system: %w", err)
	}
	return &ParticleRenderSystem{
		entityManager: em,
		palette:       palette,
		lifeStart:     cfg.LifeStart,
	}, nil
}

// Draw 渲染所有粒子
func (s *ParticleRenderSystem) Draw(screen *ebiten.Image) {
	entities := ecs.GetEntitiesWith2[*components.ParticleComponent, *components.PositionComponent](s.entityManager)

	for _, id := range entities {
		particle, _ := ecs.GetComponent[*components.ParticleComponent](s.entityManager, id)
		pos, _ := ecs.GetComponent[*components.PositionComponent](s.entityManager, id)

		alpha := ParticleAlpha(particle.Life, s.lifeStart)
		if alpha <= 0 {
			continue
		}
		base, ok := s.palette[particle.Color]
		if !ok {
			base = color.RGBA{R: 0xFF, G: 0xD7, A: 0xFF}
		}

		x, y := float32(pos.X), float32(pos.Y)
		radius := float32(particle.Size / 2)

		vector.DrawFilledCircle(screen, x, y, radius*2, FadeColor(base, alpha*glowAlpha), true)
		vector.DrawFilledCircle(screen, x, y, radius, FadeColor(base, alpha), true)
	}
}

// ParticleAlpha 根据剩余生命计算不透明度，结果限制在 [0, 1]
func ParticleAlpha(life, lifeStart int) float64 {
	if lifeStart <= 0 || life <= 0 {
		return 0
	}
	a := float64(life) / float64(lifeStart)
	if a > 1 {
		return 1
	}
	return a
}

// FadeColor 按 alpha 缩放颜色（color.RGBA 是预乘 alpha 的，四个通道一起缩放）
func FadeColor(c color.RGBA, alpha float64) color.RGBA {
	if alpha <= 0 {
		return color.RGBA{}
	}
	if alpha > 1 {
		alpha = 1
	}
	return color.RGBA{
		R: uint8(float64(c.R) * alpha),
		G: uint8(float64(c.G) * alpha),
		B: uint8(float64(c.B) * alpha),
		A: uint8(float64(c.A) * alpha),
	}
}

package entities

import (
	"math/rand"
	"time"

	"github.com/decker502/festival/pkg/components"
	"github.com/decker502/festival/pkg/config"
	"github.com/decker502/festival/pkg/ecs"
)

// WatermarkFactory 创建背景水印实体
type WatermarkFactory struct {
	em      *ecs.EntityManager
	rng     *rand.Rand
	cfg     config.WatermarkConfig
	nextSeq int
}

// NewWatermarkFactory 创建水印工厂
func NewWatermarkFactory(em *ecs.EntityManager, cfg config.WatermarkConfig, rng *rand.Rand) *WatermarkFactory {
	return &WatermarkFactory{
		em:  em,
		rng: rng,
		cfg: cfg,
	}
}

// CreateWatermark 创建一个随机文字、随机水平位置的水印
// 动态生成的水印没有动画延迟
func (f *WatermarkFactory) CreateWatermark(now time.Time) (ecs.EntityID, *components.WatermarkComponent) {
	wm := &components.WatermarkComponent{
		Seq:       f.nextSeq,
		Text:      f.cfg.Words[f.rng.Intn(len(f.cfg.Words))],
		Left:      f.cfg.LeftMin + f.rng.Float64()*(f.cfg.LeftMax-f.cfg.LeftMin),
		Duration:  f.cfg.Duration.Seconds(),
		Delay:     0,
		CreatedAt: now,
	}
	f.nextSeq++

	id := f.em.CreateEntity()
	f.em.AddComponent(id, wm)
	return id, wm
}

package entities

import (
	"math"
	"math/rand"

	"github.com/decker502/festival/pkg/components"
	"github.com/decker502/festival/pkg/config"
	"github.com/decker502/festival/pkg/ecs"
)

// ParticleFactory 创建烟花粒子实体
//
// 粒子序号由工厂分配，单调递增、从不复用，与 EntityID 相互独立。
type ParticleFactory struct {
	em      *ecs.EntityManager
	rng     *rand.Rand
	cfg     config.ParticleConfig
	nextSeq int
}

// NewParticleFactory 创建粒子工厂
func NewParticleFactory(em *ecs.EntityManager, cfg config.ParticleConfig, rng *rand.Rand) *ParticleFactory {
	return &ParticleFactory{
		em:  em,
		rng: rng,
		cfg: cfg,
	}
}

// CreateBurst 在 (originX, originY) 创建一组沿圆周均匀分布的粒子
//
// 第 i 个粒子的方向角为 2π·i/BurstCount，方向是确定的，
// 只有速度大小、颜色和尺寸是随机的。
//
// 返回：
//   - []ecs.EntityID: 按生成顺序排列的粒子实体
func (f *ParticleFactory) CreateBurst(originX, originY float64) []ecs.EntityID {
	count := f.cfg.BurstCount
	ids := make([]ecs.EntityID, 0, count)

	for i := 0; i < count; i++ {
		angle := (math.Pi * 2 * float64(i)) / float64(count)
		speed := f.cfg.SpeedMin + f.rng.Float64()*(f.cfg.SpeedMax-f.cfg.SpeedMin)

		id := f.em.CreateEntity()
		f.em.AddComponent(id, &components.PositionComponent{
			X: originX,
			Y: originY,
		})
		f.em.AddComponent(id, &components.VelocityComponent{
			VX: math.Cos(angle) * speed,
			VY: math.Sin(angle) * speed,
		})
		f.em.AddComponent(id, &components.ParticleComponent{
			Seq:   f.nextSeq,
			Color: f.cfg.Palette[f.rng.Intn(len(f.cfg.Palette))],
			Life:  f.cfg.LifeStart,
			Size:  f.cfg.SizeMin + f.rng.Float64()*(f.cfg.SizeMax-f.cfg.SizeMin),
		})
		f.nextSeq++

		ids = append(ids, id)
	}

	return ids
}

// NextSeq 返回下一个将被分配的粒子序号
func (f *ParticleFactory) NextSeq() int {
	return f.nextSeq
}

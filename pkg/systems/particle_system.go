package systems

import (
	"time"

	"github.com/decker502/festival/pkg/components"
	"github.com/decker502/festival/pkg/config"
	"github.com/decker502/festival/pkg/ecs"
	"github.com/decker502/festival/pkg/entities"
)

// ParticleSystem manages firework particles.
//
// The system has two entry points:
//  1. SpawnBurst - guarded batch spawn triggered by a click
//  2. Update     - one physics step per redraw tick
//
// Follows ECS zero-coupling principle: communicates only through EntityManager.
type ParticleSystem struct {
	EntityManager *ecs.EntityManager
	Factory       *entities.ParticleFactory

	cfg config.ParticleConfig

	lastBurst    time.Time
	hasLastBurst bool
}

// NewParticleSystem creates a new ParticleSystem instance.
func NewParticleSystem(em *ecs.EntityManager, factory *entities.ParticleFactory, cfg config.ParticleConfig) *ParticleSystem {
	return &ParticleSystem{
		EntityManager: em,
		Factory:       factory,
		cfg:           cfg,
	}
}

// SpawnBurst 尝试在 (x, y) 生成一次烟花
//
// 两个静默守卫会让调用变成空操作：
//   - 节流：距上一次通过节流的调用不足 Throttle
//   - 饱和：当前粒子数 > MaxParticles * SaturationRatio
//
// 通过节流检查即记录时间戳，即使随后被饱和守卫拒绝。
//
// 返回：
//   - bool: 是否生成了粒子（仅供宿主内部使用，例如播放音效）
func (ps *ParticleSystem) SpawnBurst(x, y float64, now time.Time) bool {
	if ps.hasLastBurst && now.Sub(ps.lastBurst) < ps.cfg.Throttle.Std() {
		return false
	}
	ps.lastBurst = now
	ps.hasLastBurst = true

	if float64(ps.Count()) > float64(ps.cfg.MaxParticles)*ps.cfg.SaturationRatio {
		return false
	}

	ps.Factory.CreateBurst(x, y)
	return true
}

// Update advances every particle by one frame.
//
// 每个粒子：位置累加速度、vy 加重力、vx 乘阻力、生命值减步长。
// 生命值 <= 0 的粒子立即移除；之后若数量仍超过上限，
// 按生成顺序从最旧的开始淘汰，直到恰好等于上限。
func (ps *ParticleSystem) Update() {
	particleEntities := ecs.GetEntitiesWith1[*components.ParticleComponent](ps.EntityManager)

	alive := 0
	for _, id := range particleEntities {
		particle, ok := ecs.GetComponent[*components.ParticleComponent](ps.EntityManager, id)
		if !ok {
			continue
		}
		position, ok := ecs.GetComponent[*components.PositionComponent](ps.EntityManager, id)
		if !ok {
			continue
		}
		velocity, ok := ecs.GetComponent[*components.VelocityComponent](ps.EntityManager, id)
		if !ok {
			continue
		}

		position.X += velocity.VX
		position.Y += velocity.VY
		velocity.VY += ps.cfg.Gravity // 重力
		velocity.VX *= ps.cfg.Damping // 空气阻力
		particle.Life -= ps.cfg.LifeStep

		if particle.Life <= 0 {
			ps.EntityManager.DestroyEntity(id)
			continue
		}
		alive++
	}

	// FIFO 淘汰：与剩余生命无关，只看生成顺序
	if overflow := alive - ps.cfg.MaxParticles; overflow > 0 {
		for _, id := range particleEntities {
			if overflow == 0 {
				break
			}
			particle, ok := ecs.GetComponent[*components.ParticleComponent](ps.EntityManager, id)
			if !ok || particle.Life <= 0 {
				continue
			}
			ps.EntityManager.DestroyEntity(id)
			overflow--
		}
	}

	ps.EntityManager.RemoveMarkedEntities()
}

// Count 返回存活粒子数量
func (ps *ParticleSystem) Count() int {
	return ecs.CountWith1[*components.ParticleComponent](ps.EntityManager)
}

// Package engine 实现烟花粒子与背景水印的动画状态引擎
//
// 引擎维护两个相互独立、随时间演化的集合：
//   - 粒子：点击触发批量生成，每帧做一次物理更新，生命耗尽或超出上限时移除
//   - 水印：周期定时器生成，每个水印由自己的一次性定时器在动画结束后移除
//
// 所有状态变更都发生在宿主泵送 Scheduler 的同一个 goroutine 上，引擎本身不加锁。
// 查询接口返回的是快照副本，调用方修改它们不会影响引擎状态。
package engine

import (
	"math/rand"
	"time"

	"github.com/decker502/festival/pkg/components"
	"github.com/decker502/festival/pkg/config"
	"github.com/decker502/festival/pkg/ecs"
	"github.com/decker502/festival/pkg/entities"
	"github.com/decker502/festival/pkg/scheduler"
	"github.com/decker502/festival/pkg/systems"
)

// Particle 粒子快照
type Particle struct {
	ID    int
	X, Y  float64
	VX    float64
	VY    float64
	Color string
	Life  int
	Size  float64
}

// Watermark 水印快照
type Watermark struct {
	ID        int
	Text      string
	Left      float64 // 百分比
	Duration  float64 // 秒
	Delay     float64 // 秒
	CreatedAt time.Time
}

// Option 配置 Engine
type Option func(*Engine)

// WithRand 指定随机源（测试中用固定种子保证可重复）
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		e.rng = rng
	}
}

// WithBurstListener 注册烟花生成回调，只有通过两个守卫的调用才会触发
func WithBurstListener(fn func(x, y float64)) Option {
	return func(e *Engine) {
		e.onBurst = fn
	}
}

// Engine 动画状态引擎
type Engine struct {
	cfg   *config.FestivalConfig
	sched *scheduler.Scheduler
	rng   *rand.Rand

	entityManager   *ecs.EntityManager
	particleSystem  *systems.ParticleSystem
	watermarkSystem *systems.WatermarkSystem

	onBurst func(x, y float64)

	frame   scheduler.Handle
	started bool
	stopped bool
}

// New 创建引擎
//
// sched 是引擎所有回调的拥有者；多个组件可以共享同一个调度器，
// 关闭调度器会一次性取消帧回调、周期定时器和所有水印移除定时器。
func New(cfg *config.FestivalConfig, sched *scheduler.Scheduler, opts ...Option) *Engine {
	e := &Engine{
		cfg:           cfg,
		sched:         sched,
		entityManager: ecs.NewEntityManager(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	particleFactory := entities.NewParticleFactory(e.entityManager, cfg.Particles, e.rng)
	watermarkFactory := entities.NewWatermarkFactory(e.entityManager, cfg.Watermarks, e.rng)

	e.particleSystem = systems.NewParticleSystem(e.entityManager, particleFactory, cfg.Particles)
	e.watermarkSystem = systems.NewWatermarkSystem(e.entityManager, watermarkFactory, sched, cfg.Watermarks)
	return e
}

// Start 注册帧回调并启动水印生成器（立即生成第一个水印）
func (e *Engine) Start() {
	if e.started || e.stopped || e.sched.Closed() {
		return
	}
	e.started = true
	e.frame = e.sched.RequestFrame(e.AdvanceFrame)
	e.watermarkSystem.Start()
}

// Stop 取消帧回调、水印生成器和所有待触发的水印移除定时器
// 之后所有变更操作都是空操作
func (e *Engine) Stop() {
	if e.stopped {
		return
	}
	e.stopped = true
	if e.frame != 0 {
		e.sched.Cancel(e.frame)
		e.frame = 0
	}
	e.watermarkSystem.Stop()
}

// Stopped 返回引擎是否已停止
func (e *Engine) Stopped() bool {
	return e.stopped
}

// Update 泵送调度器：先触发到期定时器，再执行帧回调
// 宿主在每个重绘 tick 调用一次
func (e *Engine) Update() {
	e.sched.RunTimers()
	e.sched.RunFrame()
}

// SpawnBurst 在屏幕坐标 (originX, originY) 生成一次烟花
// 被节流或饱和守卫拒绝时静默返回
func (e *Engine) SpawnBurst(originX, originY float64) {
	if e.stopped {
		return
	}
	if e.particleSystem.SpawnBurst(originX, originY, e.sched.Now()) && e.onBurst != nil {
		e.onBurst(originX, originY)
	}
}

// AdvanceFrame 推进一帧粒子物理
func (e *Engine) AdvanceFrame() {
	if e.stopped {
		return
	}
	e.particleSystem.Update()
}

// TickWatermarkSpawner 生成一个水印并安排其移除
func (e *Engine) TickWatermarkSpawner() {
	if e.stopped {
		return
	}
	e.watermarkSystem.Tick()
}

// Particles 返回当前粒子快照（按生成顺序）
func (e *Engine) Particles() []Particle {
	ids := ecs.GetEntitiesWith1[*components.ParticleComponent](e.entityManager)
	result := make([]Particle, 0, len(ids))
	for _, id := range ids {
		p, _ := ecs.GetComponent[*components.ParticleComponent](e.entityManager, id)
		pos, ok := ecs.GetComponent[*components.PositionComponent](e.entityManager, id)
		if !ok {
			continue
		}
		vel, ok := ecs.GetComponent[*components.VelocityComponent](e.entityManager, id)
		if !ok {
			continue
		}
		result = append(result, Particle{
			ID:    p.Seq,
			X:     pos.X,
			Y:     pos.Y,
			VX:    vel.VX,
			VY:    vel.VY,
			Color: p.Color,
			Life:  p.Life,
			Size:  p.Size,
		})
	}
	return result
}

// Watermarks 返回当前水印快照（按生成顺序）
func (e *Engine) Watermarks() []Watermark {
	ids := ecs.GetEntitiesWith1[*components.WatermarkComponent](e.entityManager)
	result := make([]Watermark, 0, len(ids))
	for _, id := range ids {
		wm, _ := ecs.GetComponent[*components.WatermarkComponent](e.entityManager, id)
		result = append(result, Watermark{
			ID:        wm.Seq,
			Text:      wm.Text,
			Left:      wm.Left,
			Duration:  wm.Duration,
			Delay:     wm.Delay,
			CreatedAt: wm.CreatedAt,
		})
	}
	return result
}

// ParticleCount 返回存活粒子数量
func (e *Engine) ParticleCount() int {
	return e.particleSystem.Count()
}

// WatermarkCount 返回当前水印数量
func (e *Engine) WatermarkCount() int {
	return e.watermarkSystem.Count()
}

// Config 返回引擎配置
func (e *Engine) Config() *config.FestivalConfig {
	return e.cfg
}

// Scheduler 返回引擎使用的调度器
func (e *Engine) Scheduler() *scheduler.Scheduler {
	return e.sched
}

// EntityManager 返回引擎内部的实体管理器，供渲染系统只读查询
func (e *Engine) EntityManager() *ecs.EntityManager {
	return e.entityManager
}

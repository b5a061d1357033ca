package systems

import (
	"github.com/decker502/festival/pkg/components"
	"github.com/decker502/festival/pkg/config"
	"github.com/decker502/festival/pkg/ecs"
	"github.com/decker502/festival/pkg/entities"
	"github.com/decker502/festival/pkg/scheduler"
)

// WatermarkSystem 管理背景水印的生命周期
//
// 水印完全由定时器驱动，与帧循环无关：
//   - 周期定时器每隔 Interval 生成一个水印
//   - 每个水印在创建时注册一次性定时器，Duration 之后移除
//
// 所有定时器都挂在同一个 Scheduler 上，Scheduler 关闭时一并取消。
type WatermarkSystem struct {
	EntityManager *ecs.EntityManager
	Factory       *entities.WatermarkFactory
	Scheduler     *scheduler.Scheduler

	cfg     config.WatermarkConfig
	spawner scheduler.Handle
}

// NewWatermarkSystem 创建水印系统
func NewWatermarkSystem(em *ecs.EntityManager, factory *entities.WatermarkFactory, sched *scheduler.Scheduler, cfg config.WatermarkConfig) *WatermarkSystem {
	return &WatermarkSystem{
		EntityManager: em,
		Factory:       factory,
		Scheduler:     sched,
		cfg:           cfg,
	}
}

// Start 立即生成第一个水印，并启动周期生成定时器
// 重复调用不会注册第二个周期定时器
func (s *WatermarkSystem) Start() {
	if s.spawner != 0 {
		return
	}
	s.Tick()
	s.spawner = s.Scheduler.Every(s.cfg.Interval.Std(), s.Tick)
}

// Stop 取消周期生成定时器和所有尚未触发的移除定时器
// 已存在的水印保留在原地
func (s *WatermarkSystem) Stop() {
	if s.spawner != 0 {
		s.Scheduler.Cancel(s.spawner)
		s.spawner = 0
	}
	for _, id := range ecs.GetEntitiesWith1[*components.WatermarkComponent](s.EntityManager) {
		if wm, ok := ecs.GetComponent[*components.WatermarkComponent](s.EntityManager, id); ok && wm.RemovalTimer != 0 {
			s.Scheduler.Cancel(wm.RemovalTimer)
			wm.RemovalTimer = 0
		}
	}
}

// Tick 生成一个水印，并安排它在完整动画时长后移除
func (s *WatermarkSystem) Tick() {
	id, wm := s.Factory.CreateWatermark(s.Scheduler.Now())
	wm.RemovalTimer = s.Scheduler.AfterFunc(s.cfg.Duration.Std(), func() {
		s.remove(id)
	})
}

func (s *WatermarkSystem) remove(id ecs.EntityID) {
	if !s.EntityManager.Exists(id) {
		return
	}
	s.EntityManager.DestroyEntity(id)
	s.EntityManager.RemoveMarkedEntities()
}

// Count 返回当前水印数量
func (s *WatermarkSystem) Count() int {
	return ecs.CountWith1[*components.WatermarkComponent](s.EntityManager)
}

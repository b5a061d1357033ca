package systems

import (
	"math/rand"
	"testing"
	"time"

	"github.com/decker502/festival/pkg/components"
	"github.com/decker502/festival/pkg/config"
	"github.com/decker502/festival/pkg/ecs"
	"github.com/decker502/festival/pkg/entities"
	"github.com/decker502/festival/pkg/scheduler"
)

func newTestWatermarkSystem() (*WatermarkSystem, *scheduler.MockClock) {
	cfg := config.DefaultFestivalConfig().Watermarks
	clock := scheduler.NewMockClock(time.Unix(1000, 0))
	sched := scheduler.New(clock)
	em := ecs.NewEntityManager()
	factory := entities.NewWatermarkFactory(em, cfg, rand.New(rand.NewSource(3)))
	return NewWatermarkSystem(em, factory, sched, cfg), clock
}

func TestWatermarkSystem_TickSchedulesRemoval(t *testing.T) {
	ws, clock := newTestWatermarkSystem()

	ws.Tick()
	clock.Advance(6 * time.Second)
	ws.Tick()

	if ws.Count() != 2 {
		t.Fatalf("Count() = %d, want 2", ws.Count())
	}

	clock.Advance(6 * time.Second) // 第一个到期
	ws.Scheduler.RunTimers()
	if ws.Count() != 1 {
		t.Fatalf("after 12s Count() = %d, want 1", ws.Count())
	}

	clock.Advance(6 * time.Second)
	ws.Scheduler.RunTimers()
	if ws.Count() != 0 {
		t.Fatalf("after 18s Count() = %d, want 0", ws.Count())
	}
}

func TestWatermarkSystem_StartIsIdempotent(t *testing.T) {
	ws, clock := newTestWatermarkSystem()

	ws.Start()
	ws.Start()
	if ws.Count() != 1 {
		t.Fatalf("Count() after Start = %d, want 1", ws.Count())
	}

	clock.Advance(1500 * time.Millisecond)
	ws.Scheduler.RunTimers()
	if ws.Count() != 2 {
		t.Errorf("Count() after one interval = %d, want 2 (single spawner)", ws.Count())
	}
}

func TestWatermarkSystem_StopCancelsTimers(t *testing.T) {
	ws, clock := newTestWatermarkSystem()

	ws.Start()
	clock.Advance(3 * time.Second)
	ws.Scheduler.RunTimers()
	count := ws.Count()

	ws.Stop()
	if n := ws.Scheduler.PendingTimers(); n != 0 {
		t.Fatalf("PendingTimers() after Stop = %d, want 0", n)
	}

	clock.Advance(time.Minute)
	ws.Scheduler.RunTimers()
	if ws.Count() != count {
		t.Errorf("Count() changed after Stop: %d -> %d", count, ws.Count())
	}
}

func TestWatermarkSystem_CreatedAtUsesTimerDueTime(t *testing.T) {
	ws, clock := newTestWatermarkSystem()
	start := clock.Now()

	ws.Start()
	// 宿主迟到 700ms 泵送，水印时间戳仍落在 1.5s 的整数倍上
	clock.Advance(3700 * time.Millisecond)
	ws.Scheduler.RunTimers()

	want := []time.Duration{0, 1500 * time.Millisecond, 3000 * time.Millisecond}
	var got []time.Duration
	for _, id := range ecs.GetEntitiesWith1[*components.WatermarkComponent](ws.EntityManager) {
		wm, _ := ecs.GetComponent[*components.WatermarkComponent](ws.EntityManager, id)
		got = append(got, wm.CreatedAt.Sub(start))
	}
	if len(got) != len(want) {
		t.Fatalf("created %d watermarks, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("watermark %d created at +%v, want +%v", i, got[i], want[i])
		}
	}
}

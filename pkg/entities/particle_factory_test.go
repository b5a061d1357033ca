package entities

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/decker502/festival/pkg/components"
	"github.com/decker502/festival/pkg/config"
	"github.com/decker502/festival/pkg/ecs"
)

func TestCreateBurst_RadialFan(t *testing.T) {
	em := ecs.NewEntityManager()
	cfg := config.DefaultFestivalConfig().Particles
	f := NewParticleFactory(em, cfg, rand.New(rand.NewSource(1)))

	ids := f.CreateBurst(100, 200)
	if len(ids) != cfg.BurstCount {
		t.Fatalf("burst created %d particles, want %d", len(ids), cfg.BurstCount)
	}

	for i, id := range ids {
		pos, _ := ecs.GetComponent[*components.PositionComponent](em, id)
		vel, _ := ecs.GetComponent[*components.VelocityComponent](em, id)
		p, _ := ecs.GetComponent[*components.ParticleComponent](em, id)

		if pos.X != 100 || pos.Y != 200 {
			t.Errorf("particle %d spawned at (%v, %v), want origin", i, pos.X, pos.Y)
		}

		// 方向固定为 2π·i/n，速度大小随机
		speed := math.Hypot(vel.VX, vel.VY)
		if speed < cfg.SpeedMin || speed >= cfg.SpeedMax {
			t.Errorf("particle %d speed %v outside [%v, %v)", i, speed, cfg.SpeedMin, cfg.SpeedMax)
		}
		wantAngle := 2 * math.Pi * float64(i) / float64(cfg.BurstCount)
		gotAngle := math.Atan2(vel.VY, vel.VX)
		if gotAngle < 0 {
			gotAngle += 2 * math.Pi
		}
		if diff := math.Abs(gotAngle - wantAngle); diff > 1e-9 && math.Abs(diff-2*math.Pi) > 1e-9 {
			t.Errorf("particle %d angle %v, want %v", i, gotAngle, wantAngle)
		}

		if p.Size < cfg.SizeMin || p.Size >= cfg.SizeMax {
			t.Errorf("particle %d size %v outside [%v, %v)", i, p.Size, cfg.SizeMin, cfg.SizeMax)
		}
		if p.Life != cfg.LifeStart {
			t.Errorf("particle %d life %d, want %d", i, p.Life, cfg.LifeStart)
		}
		if p.Seq != i {
			t.Errorf("particle %d seq %d, want %d", i, p.Seq, i)
		}

		found := false
		for _, c := range cfg.Palette {
			if c == p.Color {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("particle %d color %q not in palette", i, p.Color)
		}
	}
}

func TestCreateBurst_SeqNeverReused(t *testing.T) {
	em := ecs.NewEntityManager()
	cfg := config.DefaultFestivalConfig().Particles
	cfg.BurstCount = 3
	f := NewParticleFactory(em, cfg, rand.New(rand.NewSource(2)))

	f.CreateBurst(0, 0)
	for _, id := range ecs.GetEntitiesWith1[*components.ParticleComponent](em) {
		em.DestroyEntity(id)
	}
	em.RemoveMarkedEntities()

	ids := f.CreateBurst(0, 0)
	p, _ := ecs.GetComponent[*components.ParticleComponent](em, ids[0])
	if p.Seq != 3 {
		t.Errorf("first seq after destroy = %d, want 3", p.Seq)
	}
	if f.NextSeq() != 6 {
		t.Errorf("NextSeq = %d, want 6", f.NextSeq())
	}
}

func TestCreateWatermark(t *testing.T) {
	em := ecs.NewEntityManager()
	cfg := config.DefaultFestivalConfig().Watermarks
	f := NewWatermarkFactory(em, cfg, rand.New(rand.NewSource(3)))

	now := time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 20; i++ {
		_, wm := f.CreateWatermark(now)
		if wm.Seq != i {
			t.Errorf("watermark seq %d, want %d", wm.Seq, i)
		}
		if wm.Left < cfg.LeftMin || wm.Left >= cfg.LeftMax {
			t.Errorf("watermark left %v outside [%v, %v)", wm.Left, cfg.LeftMin, cfg.LeftMax)
		}
		if wm.Duration != 12 || wm.Delay != 0 {
			t.Errorf("watermark duration/delay = %v/%v, want 12/0", wm.Duration, wm.Delay)
		}
		if !wm.CreatedAt.Equal(now) {
			t.Errorf("CreatedAt = %v, want %v", wm.CreatedAt, now)
		}
	}
	if n := ecs.CountWith1[*components.WatermarkComponent](em); n != 20 {
		t.Errorf("watermark entities = %d, want 20", n)
	}
}

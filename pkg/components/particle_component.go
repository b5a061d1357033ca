package components

// ParticleComponent 烟花粒子的运行时数据
//
// 位置和速度分别存放在 PositionComponent 和 VelocityComponent 中，
// 由 ParticleSystem 每帧更新。这是纯数据组件，不包含渲染相关的表示：
// 颜色保持为调色板中的字符串，由渲染系统映射为实际颜色。
type ParticleComponent struct {
	// Seq 粒子序号，单调递增、从不复用（与 EntityID 独立）
	Seq int

	// Color 生成时从调色板中随机选取，之后不变
	Color string

	// Life 剩余生命值，每帧减少固定步长，<= 0 时移除
	Life int

	// Size 粒子尺寸（像素），生成时随机，之后不变
	Size float64
}

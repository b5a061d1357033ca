package components

// PositionComponent 存储实体的屏幕坐标（像素）
type PositionComponent struct {
	X float64
	Y float64
}

// VelocityComponent 存储实体的速度（像素/帧）
// 粒子按帧积分而不是按秒积分，步长与重绘帧一致
type VelocityComponent struct {
	VX float64
	VY float64
}

package components

import (
	"time"

	"github.com/decker502/festival/pkg/scheduler"
)

// WatermarkComponent 背景水印数据
type WatermarkComponent struct {
	Seq      int     // 水印序号，单调递增
	Text     string  // 从词表中随机选取
	Left     float64 // 水平位置（百分比）
	Duration float64 // 动画时长（秒）
	Delay    float64 // 动画延迟（秒），动态生成的水印为 0

	// CreatedAt 创建时刻（调度器时间），渲染层据此计算动画进度
	CreatedAt time.Time

	// RemovalTimer 移除定时器句柄，引擎关闭时随调度器一起取消
	RemovalTimer scheduler.Handle
}

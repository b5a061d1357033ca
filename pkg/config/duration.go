package config

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration 是可以用 Go 时长字符串（如 "150ms"、"1.5s"）书写的 YAML 字段
// 纯数字按毫秒解析
type Duration time.Duration

// Milliseconds 返回 n 毫秒的 Duration
func Milliseconds(n int64) Duration {
	return Duration(time.Duration(n) * time.Millisecond)
}

// Std 转换为 time.Duration
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Seconds 返回秒数
func (d Duration) Seconds() float64 {
	return time.Duration(d).Seconds()
}

// String implements fmt.Stringer
func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalYAML 解析时长字符串或毫秒数
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", value.Line)
	}

	if value.Tag == "!!int" {
		var ms int64
		if err := value.Decode(&ms); err != nil {
			return fmt.Errorf("line %d: %w", value.Line, err)
		}
		*d = Milliseconds(ms)
		return nil
	}

	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", value.Line, value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML 输出时长字符串
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

package config

import (
	"fmt"
	"image/color"

	"github.com/mazznoer/csscolorparser"
)

// ParseColor 解析 CSS 颜色字符串（#RRGGBB、rgb()、颜色名等）
func ParseColor(s string) (color.RGBA, error) {
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBAModel.Convert(c).(color.RGBA), nil
}

// ParsePalette 解析调色板，返回颜色字符串到 RGBA 的映射
func ParsePalette(entries []string) (map[string]color.RGBA, error) {
	palette := make(map[string]color.RGBA, len(entries))
	for _, entry := range entries {
		c, err := ParseColor(entry)
		if err != nil {
			return nil, err
		}
		palette[entry] = c
	}
	return palette, nil
}

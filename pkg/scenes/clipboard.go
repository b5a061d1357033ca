package scenes

import (
	"fmt"
	"log"

	"golang.design/x/clipboard"
)

// Clipboard 文本剪贴板
type Clipboard interface {
	WriteText(text string) error
}

// systemClipboard 系统剪贴板
type systemClipboard struct{}

// NewSystemClipboard 初始化系统剪贴板
//
// 返回：
//   - Clipboard: 系统剪贴板；当前平台不可用时返回 nil（降级模式）
func NewSystemClipboard() Clipboard {
	if err := clipboard.Init(); err != nil {
		log.Printf("[Clipboard] Warning: clipboard unavailable (降级模式): %v", err)
		return nil
	}
	return systemClipboard{}
}

func (systemClipboard) WriteText(text string) error {
	if text == "" {
		return fmt.Errorf("empty text")
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}

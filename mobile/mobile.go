//go:build mobile

// Package mobile 提供 ebitenmobile 绑定入口
//
// 此包用于构建 Android (.aar) 和 iOS (.xcframework) 包。
// 使用 ebitenmobile 工具构建时会自动调用 init() 函数。
//
// 此文件仅在使用 -tags mobile 构建时编译。
//
//	# Android
//	ebitenmobile bind -target android -tags mobile -androidapi 23 -javapkg com.decker.festival -o build/android/festival.aar -v ./mobile
//
//	# iOS (仅 macOS)
//	ebitenmobile bind -target ios -tags mobile -o build/ios/Festival.xcframework -v ./mobile
package mobile

import (
	"embed"
	"log"

	"github.com/hajimehoshi/ebiten/v2/mobile"

	"github.com/decker502/festival/pkg/app"
	"github.com/decker502/festival/pkg/embedded"
)

// 移动端没有外部配置文件，使用复制到本目录的默认配置
//
//go:embed data/festival.yaml
var dataFS embed.FS

func init() {
	embedded.Init(dataFS)

	festival, err := app.NewApp(app.Config{
		Verbose: true,
		Route:   "/",
	})
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	// 注册到 ebitenmobile
	mobile.SetGame(festival)
}

// Dummy 是一个空导出函数，确保包被 ebitenmobile 正确识别
func Dummy() {}

package game

import (
	"bytes"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/bitmapfont/v4"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// fallbackCJKFace 内置点阵字体（固定 12px，优先简体字形），最后一级回退
var fallbackCJKFace font.Face = bitmapfont.FaceSC

// ResourceManager manages loading and caching of font resources.
//
// Face 返回按顺序组合的 MultiFace：Go Regular（拉丁字符）、
// 可选的 CJK 字体文件、内置点阵字体。中文字符总能找到字形。
type ResourceManager struct {
	sourceCache   map[string]*text.GoTextFaceSource
	fontFaceCache map[string]text.Face

	latinSource *text.GoTextFaceSource
	bitmapFace  *text.GoXFace
	cjkPath     string
	cjkFailed   bool
}

// NewResourceManager creates a new ResourceManager.
//
// 参数：
//   - cjkFontPath: 可选的 CJK 字体文件路径（.ttf/.otf），为空表示只使用内置字体
func NewResourceManager(cjkFontPath string) *ResourceManager {
	return &ResourceManager{
		sourceCache:   make(map[string]*text.GoTextFaceSource),
		fontFaceCache: make(map[string]text.Face),
		cjkPath:       cjkFontPath,
	}
}

// LoadFontSource 加载并缓存字体文件
func (rm *ResourceManager) LoadFontSource(path string) (*text.GoTextFaceSource, error) {
	if source, ok := rm.sourceCache[path]; ok {
		return source, nil
	}

	fontData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file %s: %w", path, err)
	}
	source, err := text.NewGoTextFaceSource(bytes.NewReader(fontData))
	if err != nil {
		return nil, fmt.Errorf("failed to create font source for %s: %w", path, err)
	}

	rm.sourceCache[path] = source
	return source, nil
}

// LoadFont loads a font from the given path with the specified size.
func (rm *ResourceManager) LoadFont(path string, size float64) (*text.GoTextFace, error) {
	source, err := rm.LoadFontSource(path)
	if err != nil {
		return nil, err
	}
	return &text.GoTextFace{
		Source:    source,
		Size:      size,
		Direction: text.DirectionLeftToRight,
	}, nil
}

// latinFace 返回内置 Go Regular 字体
func (rm *ResourceManager) latinFace(size float64) (*text.GoTextFace, error) {
	if rm.latinSource == nil {
		source, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
		if err != nil {
			return nil, fmt.Errorf("failed to create builtin font source: %w", err)
		}
		rm.latinSource = source
	}
	return &text.GoTextFace{
		Source:    rm.latinSource,
		Size:      size,
		Direction: text.DirectionLeftToRight,
	}, nil
}

// Face 返回指定字号的界面字体
//
// CJK 字体加载失败时只记录一次警告，之后中文由内置点阵字体绘制（降级模式）。
func (rm *ResourceManager) Face(size float64) (text.Face, error) {
	cacheKey := fmt.Sprintf("ui:%.1f", size)
	if face, ok := rm.fontFaceCache[cacheKey]; ok {
		return face, nil
	}

	latin, err := rm.latinFace(size)
	if err != nil {
		return nil, err
	}

	faces := []text.Face{latin}
	if rm.cjkPath != "" && !rm.cjkFailed {
		cjk, err := rm.LoadFont(rm.cjkPath, size)
		if err != nil {
			rm.cjkFailed = true
			log.Printf("[ResourceManager] Warning: CJK font unavailable (降级模式): %v", err)
		} else {
			faces = append(faces, cjk)
		}
	}
	if rm.bitmapFace == nil {
		rm.bitmapFace = text.NewGoXFace(fallbackCJKFace)
	}
	faces = append(faces, rm.bitmapFace)

	face, err := text.NewMultiFace(faces...)
	if err != nil {
		return nil, fmt.Errorf("failed to combine fonts: %w", err)
	}

	rm.fontFaceCache[cacheKey] = face
	return face, nil
}

// CJKPath 返回配置的 CJK 字体路径
func (rm *ResourceManager) CJKPath() string {
	return rm.cjkPath
}

// HasCJK 返回是否成功加载了 CJK 字体
func (rm *ResourceManager) HasCJK() bool {
	if rm.cjkPath == "" || rm.cjkFailed {
		return false
	}
	_, ok := rm.sourceCache[rm.cjkPath]
	return ok
}

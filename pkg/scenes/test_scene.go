package scenes

import (
	"fmt"
	"image/color"
	"log"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/colornames"
)

// infoCard 测试页上的一张信息卡片
type infoCard struct {
	Title string
	Lines []string
}

// testPageCards 测试页展示的卡片内容
var testPageCards = []infoCard{
	{
		Title: "页面信息",
		Lines: []string{"路由路径：/test", "组件名称：Test", "状态：正常运行"},
	},
	{
		Title: "功能说明",
		Lines: []string{"✓ 路由跳转测试", "✓ 组件渲染测试", "✓ 样式应用测试"},
	},
}

const (
	testPageTitle       = "测试页面"
	testPageDescription = "这是一个用于验证路由与页面渲染的测试页面"
	testPageBackLabel   = "返回首页"
)

// TestScene 测试页：标题、说明、两张信息卡片和返回按钮
type TestScene struct {
	services *Services
	ui       *ebitenui.UI
	back     *widget.Button
}

// NewTestScene 创建测试页场景
func NewTestScene(services *Services) (*TestScene, error) {
	cfg := services.Config
	titleFace, err := services.Resources.Face(cfg.Font.TitleSize * 0.6)
	if err != nil {
		return nil, fmt.Errorf("test scene: %w", err)
	}
	textFace, err := services.Resources.Face(cfg.Font.TextSize)
	if err != nil {
		return nil, fmt.Errorf("test scene: %w", err)
	}

	s := &TestScene{services: services}
	s.ui = s.buildUI(titleFace, textFace)
	log.Printf("[TestScene] 已创建")
	return s, nil
}

func (s *TestScene) buildUI(titleFace, textFace text.Face) *ebitenui.UI {
	center := widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}

	title := widget.NewText(
		widget.TextOpts.Text(testPageTitle, &titleFace, colornames.Gold),
		widget.TextOpts.WidgetOpts(center),
	)
	description := widget.NewText(
		widget.TextOpts.Text(testPageDescription, &textFace, white),
		widget.TextOpts.WidgetOpts(center),
	)

	cards := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
			widget.RowLayoutOpts.Spacing(24),
		)),
		widget.ContainerOpts.WidgetOpts(center),
	)
	for _, card := range testPageCards {
		cards.AddChild(newCardWidget(card, &titleFace, &textFace))
	}

	btnIdle := imageui.NewNineSliceColor(color.NRGBA{R: 0xd4, G: 0x2a, B: 0x2a, A: 0xff})
	btnHover := imageui.NewNineSliceColor(color.NRGBA{R: 0xe8, G: 0x4a, B: 0x3a, A: 0xff})
	btnPressed := imageui.NewNineSliceColor(color.NRGBA{R: 0xa8, G: 0x1c, B: 0x1c, A: 0xff})
	s.back = widget.NewButton(
		widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnIdle, Hover: btnHover, Pressed: btnPressed}),
		widget.ButtonOpts.Text(testPageBackLabel, &textFace, &widget.ButtonTextColor{Idle: colornames.Gold}),
		widget.ButtonOpts.WidgetOpts(center, widget.WidgetOpts.MinSize(180, 44)),
		widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
			s.GoHome()
		}),
	)

	panel := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(20),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 30, Bottom: 30, Left: 40, Right: 40}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionCenter,
				VerticalPosition:   widget.AnchorLayoutPositionCenter,
			}),
		),
	)
	panel.AddChild(title)
	panel.AddChild(description)
	panel.AddChild(cards)
	panel.AddChild(s.back)

	root := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(imageui.NewNineSliceColor(colornames.Darkred)),
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)
	root.AddChild(panel)

	return &ebitenui.UI{Container: root}
}

// newCardWidget 半透明背景的卡片：标题加若干行文字
func newCardWidget(card infoCard, titleFace, textFace *text.Face) *widget.Container {
	c := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(imageui.NewNineSliceColor(color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0x1a})),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(8),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 16, Bottom: 16, Left: 24, Right: 24}),
		)),
		widget.ContainerOpts.WidgetOpts(widget.WidgetOpts.MinSize(260, 160)),
	)
	c.AddChild(widget.NewText(widget.TextOpts.Text(card.Title, titleFace, colornames.Gold)))
	for _, line := range card.Lines {
		c.AddChild(widget.NewText(widget.TextOpts.Text(line, textFace, colornames.Moccasin)))
	}
	return c
}

// Update 更新 UI，Esc 返回首页
func (s *TestScene) Update(deltaTime float64) {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		s.GoHome()
	}
	s.ui.Update()
}

// Draw 绘制测试页
func (s *TestScene) Draw(screen *ebiten.Image) {
	s.ui.Draw(screen)
}

// GoHome 返回首页
func (s *TestScene) GoHome() {
	s.services.Scenes.RequestNavigate(RouteHome)
}

// BackButton 返回按钮
func (s *TestScene) BackButton() *widget.Button {
	return s.back
}

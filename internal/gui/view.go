package gui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/glbview/internal/engine/renderer"
	"github.com/Faultbox/glbview/internal/layout"
	"github.com/Faultbox/glbview/internal/viewport"
)

const (
	barHeight   = float32(64)
	buttonWidth = float32(72)
)

var (
	errorColor   = imgui.NewVec4(1, 0.35, 0.35, 1)
	messageColor = imgui.NewVec4(0.8, 0.8, 0.8, 1)
	imageBg      = imgui.NewVec4(0.1, 0.1, 0.15, 1)
	imageTint    = imgui.NewVec4(1, 1, 1, 1)
)

// View draws the browser: the input bar across the top and one image per
// viewport below it, laid out by grid.
type View struct {
	form    *Form
	ctrl    *viewport.Controller
	grid    *layout.Grid
	targets []*renderer.Target

	// Quit runs when the user asks to exit.
	Quit func()

	hint      string
	lastMouse imgui.Vec2
}

// NewView creates a view. targets[i] must be the surface of viewport i.
func NewView(form *Form, ctrl *viewport.Controller, grid *layout.Grid, targets []*renderer.Target) *View {
	return &View{
		form:    form,
		ctrl:    ctrl,
		grid:    grid,
		targets: targets,
		hint:    fmt.Sprintf("Enter up to %d filenames, comma separated", ctrl.Len()),
	}
}

// Frame advances the controller and draws one UI frame.
func (v *View) Frame() {
	v.drawMenu()

	work := imgui.MainViewport()
	pos, size := work.WorkPos(), work.WorkSize()
	flags := imgui.WindowFlagsNoMove | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoCollapse |
		imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoScrollbar

	imgui.SetNextWindowPos(pos)
	imgui.SetNextWindowSize(imgui.NewVec2(size.X, barHeight))
	if imgui.BeginV("##input", nil, flags) {
		v.drawInput()
	}
	imgui.End()

	gridW, gridH := int(size.X), int(size.Y-barHeight)
	if w, h := v.grid.Size(); w != gridW || h != gridH {
		v.grid.Resize(gridW, gridH)
		v.ctrl.Resize()
	}
	v.ctrl.Tick()

	origin := imgui.NewVec2(pos.X, pos.Y+barHeight)
	for i := 0; i < v.grid.Len(); i++ {
		v.drawViewport(i, origin, flags|imgui.WindowFlagsNoScrollWithMouse)
	}
}

func (v *View) drawMenu() {
	if imgui.BeginMainMenuBar() {
		if imgui.BeginMenu("File") {
			if imgui.MenuItemBool("Reset All") {
				v.form.Reset()
			}
			imgui.Separator()
			if imgui.MenuItemBool("Exit") {
				v.quit()
			}
			imgui.EndMenu()
		}
		imgui.EndMainMenuBar()
	}
}

func (v *View) drawInput() {
	imgui.SetNextItemWidth(-2 * (buttonWidth + 8))
	submit := imgui.InputTextWithHint("##models", v.hint, &v.form.Query, imgui.InputTextFlagsEnterReturnsTrue, nil)
	imgui.SameLine()
	if imgui.ButtonV("Load", imgui.NewVec2(buttonWidth, 0)) {
		submit = true
	}
	imgui.SameLine()
	if imgui.ButtonV("Reset", imgui.NewVec2(buttonWidth, 0)) {
		v.form.Reset()
	}
	if submit && v.form.Submit() {
		v.quit()
	}

	switch {
	case v.form.Message == "":
		imgui.TextDisabled("Drag to orbit, right-drag to pan, scroll to zoom")
	case v.form.IsError:
		imgui.TextColored(errorColor, v.form.Message)
	default:
		imgui.TextColored(messageColor, v.form.Message)
	}
}

func (v *View) drawViewport(i int, origin imgui.Vec2, flags imgui.WindowFlags) {
	cell := v.grid.Cell(i)
	imgui.SetNextWindowPos(imgui.NewVec2(origin.X+float32(cell.X), origin.Y+float32(cell.Y)))
	imgui.SetNextWindowSize(imgui.NewVec2(float32(cell.W), float32(cell.H)))
	if imgui.BeginV(fmt.Sprintf("##viewport%d", i+1), nil, flags) {
		avail := imgui.ContentRegionAvail()
		x, y := imgui.CursorPosX(), imgui.CursorPosY()

		// GL textures start at the bottom row, so flip V.
		ref := imgui.NewTextureRefTextureID(imgui.TextureID(v.targets[i].Texture()))
		imgui.ImageWithBgV(*ref, avail, imgui.NewVec2(0, 1), imgui.NewVec2(1, 0), imageBg, imageTint)
		if imgui.IsItemHovered() {
			v.handleMouse(i)
		}

		if label, ok := v.form.Loading(i); ok {
			text := imgui.CalcTextSize(label)
			imgui.SetCursorPosX(x + (avail.X-text.X)/2)
			imgui.SetCursorPosY(y + (avail.Y-text.Y)/2)
			imgui.Text(label)
		}
	}
	imgui.End()
}

func (v *View) handleMouse(i int) {
	vp, err := v.ctrl.Viewport(i)
	if err != nil {
		return
	}
	_, h := vp.Container.Size()

	mouse := imgui.MousePos()
	dx, dy := mouse.X-v.lastMouse.X, mouse.Y-v.lastMouse.Y
	switch {
	case imgui.IsMouseDragging(imgui.MouseButtonLeft):
		vp.Controls.HandleDrag(dx, dy, h)
	case imgui.IsMouseDragging(imgui.MouseButtonRight):
		vp.Controls.HandlePan(dx, dy, h)
	}
	v.lastMouse = mouse

	if wheel := imgui.CurrentIO().MouseWheel(); wheel != 0 {
		vp.Controls.HandleZoom(wheel)
	}
}

func (v *View) quit() {
	if v.Quit != nil {
		v.Quit()
	}
}

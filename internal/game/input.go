package game

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/Garsondee/soldier-campaign/internal/demo"
)

// hostKeys drive the host itself and are never recorded.
var hostKeys = map[ebiten.Key]bool{
	ebiten.KeyEscape: true,
	ebiten.KeyP:      true,
	ebiten.KeyA:      true,
	ebiten.KeyC:      true,
	ebiten.KeyD:      true,
	ebiten.KeyF5:     true,
	ebiten.KeyF9:     true,
}

// inputState is one frame of device input, edge-triggered.
type inputState struct {
	mx, my    int
	leftDown  bool
	leftUp    bool
	rightDown bool
	rightUp   bool
	keysDown  []int
	keysUp    []int
}

// captureInput reads this frame's input edges from ebiten.
func captureInput() inputState {
	var st inputState
	st.mx, st.my = ebiten.CursorPosition()
	st.leftDown = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	st.leftUp = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft)
	st.rightDown = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight)
	st.rightUp = inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonRight)
	for _, k := range inpututil.AppendJustPressedKeys(nil) {
		if !hostKeys[k] {
			st.keysDown = append(st.keysDown, int(k))
		}
	}
	for _, k := range inpututil.AppendJustReleasedKeys(nil) {
		if !hostKeys[k] {
			st.keysUp = append(st.keysUp, int(k))
		}
	}
	return st
}

// any reports whether the frame had a press of any kind.
func (st inputState) any() bool {
	return st.leftDown || st.rightDown || len(st.keysDown) > 0
}

// events converts the frame into recordable events: keys first, then
// buttons, presses before releases.
func (st inputState) events() []demo.Event {
	mx, my := clamp16(st.mx), clamp16(st.my)
	var out []demo.Event
	for _, k := range st.keysDown {
		out = append(out, demo.Key(demo.EventKeyDown, k, mx, my))
	}
	for _, k := range st.keysUp {
		out = append(out, demo.Key(demo.EventKeyUp, k, mx, my))
	}
	if st.leftDown {
		out = append(out, demo.Click(demo.EventMouseLeftDown, mx, my))
	}
	if st.rightDown {
		out = append(out, demo.Click(demo.EventMouseRightDown, mx, my))
	}
	if st.leftUp {
		out = append(out, demo.Click(demo.EventMouseLeftUp, mx, my))
	}
	if st.rightUp {
		out = append(out, demo.Click(demo.EventMouseRightUp, mx, my))
	}
	return out
}

func clamp16(v int) int16 {
	switch {
	case v < -32768:
		return -32768
	case v > 32767:
		return 32767
	}
	return int16(v)
}

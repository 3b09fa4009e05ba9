package interaction

// ============================================================
// Pointer input types
// ============================================================

// Button identifies which pointer button triggered an event.
type Button uint8

const (
	ButtonNone Button = iota
	ButtonPrimary
	ButtonSecondary
	ButtonMiddle
)

// Modifiers are the modifier keys held during an event.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
)

func (m Modifiers) Shift() bool { return m&ModShift != 0 }
func (m Modifiers) Ctrl() bool  { return m&ModCtrl != 0 }
func (m Modifiers) Alt() bool   { return m&ModAlt != 0 }
func (m Modifiers) Super() bool { return m&ModSuper != 0 }

// PointerEvent is a raw pointer sample in viewport coordinates.
type PointerEvent struct {
	X, Y      float64
	Button    Button
	Modifiers Modifiers
}

package interaction

import (
	"builder/internal/domain"
)

// ============================================================
// Per-element interaction controller
// ============================================================

// State is the controller's gesture state.
type State uint8

const (
	StateIdle State = iota
	StateDragging
	StateResizing
	StateEditing
)

func (s State) String() string {
	switch s {
	case StateDragging:
		return "dragging"
	case StateResizing:
		return "resizing"
	case StateEditing:
		return "editing"
	}
	return "idle"
}

// Hooks are the callbacks a controller fires as it translates pointer
// input into intents. Nil hooks are skipped.
type Hooks struct {
	// Move receives an incremental delta relative to the previous pointer
	// sample, so the owner can apply x += dx; y += dy without drift.
	Move func(dx, dy float64)

	// Resize receives the absolute new size, already clamped to the
	// kind's minimum. Computed from the cumulative delta since resize
	// start, not from the previous sample.
	Resize func(width, height float64)

	// DragEnd / ResizeEnd fire once on gesture completion, distinct from
	// the per-move callbacks, so the owner can persist once per gesture.
	DragEnd   func()
	ResizeEnd func()

	// CommitContent fires when an edit session commits a changed buffer.
	CommitContent func(content string)
}

// Config describes the single element a controller drives.
type Config struct {
	Kind domain.ElementKind

	// Locked is consulted on every transition attempt; nil means never
	// locked.
	Locked func() bool

	// Size returns the element's current size, captured at resize start.
	Size func() (width, height float64)

	Hooks Hooks
}

// Controller converts raw pointer input into move/resize/edit intents
// for exactly one element. It is purely local: it knows nothing about
// other elements or the canvas.
type Controller struct {
	cfg   Config
	state State

	// dragging: previous pointer sample
	lastX, lastY float64

	// resizing: pointer and size at gesture start
	startX, startY float64
	origW, origH   float64

	// editing
	editOriginal string
	editBuffer   string
}

// New creates a controller for one element.
func New(cfg Config) *Controller {
	return &Controller{cfg: cfg}
}

// State returns the current gesture state.
func (c *Controller) State() State { return c.state }

func (c *Controller) locked() bool {
	return c.cfg.Locked != nil && c.cfg.Locked()
}

// PointerDown starts a gesture. onResizeHandle distinguishes the
// bottom-right handle from the element body. Returns true when a
// gesture actually started.
func (c *Controller) PointerDown(ev PointerEvent, onResizeHandle bool) bool {
	if c.state != StateIdle || ev.Button != ButtonPrimary || c.locked() {
		return false
	}
	if onResizeHandle {
		c.state = StateResizing
		c.startX, c.startY = ev.X, ev.Y
		if c.cfg.Size != nil {
			c.origW, c.origH = c.cfg.Size()
		}
		return true
	}
	c.state = StateDragging
	c.lastX, c.lastY = ev.X, ev.Y
	return true
}

// PointerMove advances an active gesture. Ignored while Idle or Editing.
func (c *Controller) PointerMove(ev PointerEvent) {
	switch c.state {
	case StateDragging:
		dx, dy := ev.X-c.lastX, ev.Y-c.lastY
		c.lastX, c.lastY = ev.X, ev.Y
		if (dx != 0 || dy != 0) && c.cfg.Hooks.Move != nil {
			c.cfg.Hooks.Move(dx, dy)
		}
	case StateResizing:
		min := domain.MinSize(c.cfg.Kind)
		w := c.origW + (ev.X - c.startX)
		h := c.origH + (ev.Y - c.startY)
		if w < min.Width {
			w = min.Width
		}
		if h < min.Height {
			h = min.Height
		}
		if c.cfg.Hooks.Resize != nil {
			c.cfg.Hooks.Resize(w, h)
		}
	}
}

// PointerUp ends an active gesture. Any button ends it.
func (c *Controller) PointerUp(PointerEvent) {
	c.endGesture()
}

// CaptureLost ends an active gesture the same way pointer-up does.
func (c *Controller) CaptureLost() {
	c.endGesture()
}

func (c *Controller) endGesture() {
	switch c.state {
	case StateDragging:
		c.state = StateIdle
		if c.cfg.Hooks.DragEnd != nil {
			c.cfg.Hooks.DragEnd()
		}
	case StateResizing:
		c.state = StateIdle
		if c.cfg.Hooks.ResizeEnd != nil {
			c.cfg.Hooks.ResizeEnd()
		}
	}
}

// ── Editing ────────────────────────────────────────────────

// DoubleClick begins an edit session seeded with the element's current
// content. Only text elements are editable; locked elements never enter
// Editing.
func (c *Controller) DoubleClick(content string) bool {
	if c.state != StateIdle || c.cfg.Kind != domain.ElementKindText || c.locked() {
		return false
	}
	c.state = StateEditing
	c.editOriginal = content
	c.editBuffer = content
	return true
}

// SetBuffer replaces the in-progress edit buffer.
func (c *Controller) SetBuffer(s string) {
	if c.state == StateEditing {
		c.editBuffer = s
	}
}

// Buffer returns the in-progress edit buffer.
func (c *Controller) Buffer() string { return c.editBuffer }

// Blur commits the buffer if it changed from the original and leaves
// Editing.
func (c *Controller) Blur() {
	if c.state != StateEditing {
		return
	}
	c.commitEdit()
}

// KeyEnter handles the Enter key while editing. Shift+Enter inserts a
// newline and stays in the session; bare Enter commits.
func (c *Controller) KeyEnter(shift bool) {
	if c.state != StateEditing {
		return
	}
	if shift {
		c.editBuffer += "\n"
		return
	}
	c.commitEdit()
}

// KeyEscape reverts the buffer to the pre-edit content and leaves
// Editing without committing.
func (c *Controller) KeyEscape() {
	if c.state != StateEditing {
		return
	}
	c.editBuffer = c.editOriginal
	c.state = StateIdle
}

// AbandonEdit leaves Editing without committing and discards the
// buffer. Used when selection moves elsewhere: editors commit on their
// own blur/Enter, never on selection change.
func (c *Controller) AbandonEdit() {
	if c.state == StateEditing {
		c.state = StateIdle
	}
}

func (c *Controller) commitEdit() {
	changed := c.editBuffer != c.editOriginal
	c.state = StateIdle
	if changed && c.cfg.Hooks.CommitContent != nil {
		c.cfg.Hooks.CommitContent(c.editBuffer)
	}
}

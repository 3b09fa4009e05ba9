package canvas

import (
	"context"

	"builder/internal/domain"
	"builder/internal/interaction"
)

// ─────────────────────────────────────────────────────────────
// Canvas Coordinator — single writer of canvas state
// ─────────────────────────────────────────────────────────────

// Gateway persists the element collection. Implemented by the HTTP
// persistence gateway; mocked in tests.
type Gateway interface {
	Save(ctx context.Context, elements []domain.Element) error
	Load(ctx context.Context) ([]domain.Element, error)
}

// Point is a pixel coordinate pair.
type Point struct {
	X, Y float64
}

// DropItem is one advertised payload channel of a palette drag.
type DropItem struct {
	Type string // MIME-equivalent channel name
	Data string // payload carried on that channel
}

// InteractionState is the transient gesture state the presentation
// layer reads reactively (cursor, handle visibility). Never persisted.
type InteractionState struct {
	Kind       string `json:"kind"` // "idle" | "dragging" | "resizing"
	ElementID  string `json:"elementId,omitempty"`
	CursorHint string `json:"cursorHint"`
}

var idleState = InteractionState{Kind: "idle", CursorHint: "default"}

// Coordinator owns the authoritative element collection and mediates
// every mutating operation. It is confined to the UI event goroutine:
// pointer input, drops, and updates all arrive on one loop, so state is
// unsynchronized. Only saves leave the goroutine, on snapshots.
type Coordinator struct {
	ctx     context.Context
	gateway Gateway
	emitter EventEmitter

	elements    []*domain.Element // insertion order; zIndex is the paint authority
	controllers map[string]*interaction.Controller
	selectedID  string

	// At most one element may be mid-gesture; pointer-downs while a
	// gesture is active are ignored rather than left undefined.
	activeGestureID string
	interaction     InteractionState
}

// New creates a coordinator. The emitter may be nil when no presentation
// layer is attached.
func New(ctx context.Context, gateway Gateway, emitter EventEmitter) *Coordinator {
	return &Coordinator{
		ctx:         ctx,
		gateway:     gateway,
		emitter:     emitter,
		controllers: map[string]*interaction.Controller{},
		interaction: idleState,
	}
}

// Hydrate replaces the canvas state with the persisted element list.
// Called once on mount. A load failure keeps the current (or empty)
// collection; the canvas stays interactive.
func (c *Coordinator) Hydrate(ctx context.Context) error {
	elements, err := c.gateway.Load(ctx)
	if err != nil {
		return err
	}
	c.elements = c.elements[:0]
	c.controllers = map[string]*interaction.Controller{}
	c.selectedID = ""
	c.activeGestureID = ""
	c.interaction = idleState
	for i := range elements {
		el := elements[i].Clone()
		c.elements = append(c.elements, el)
		c.controllers[el.ID] = c.newController(el.ID)
	}
	return nil
}

// Elements returns the ordered element collection. Callers must not
// retain the slice across mutations.
func (c *Coordinator) Elements() []*domain.Element { return c.elements }

// Element returns the element with the given id, or nil.
func (c *Coordinator) Element(id string) *domain.Element {
	for _, el := range c.elements {
		if el.ID == id {
			return el
		}
	}
	return nil
}

// SelectedID returns the selected element id, or "".
func (c *Coordinator) SelectedID() string { return c.selectedID }

// Interaction returns the transient gesture state.
func (c *Coordinator) Interaction() InteractionState { return c.interaction }

// Select sets the selection; "" clears it. Selecting away from an
// element mid-edit leaves its Editing state without forcing a commit —
// editors commit on their own blur/Enter, independent of selection.
func (c *Coordinator) Select(id string) {
	if id == c.selectedID {
		return
	}
	if prev, ok := c.controllers[c.selectedID]; ok {
		prev.AbandonEdit()
	}
	if id != "" && c.Element(id) == nil {
		return
	}
	c.selectedID = id
}

// HandleDrop creates an element from a palette drop. Every advertised
// payload channel is probed and the first recognized kind token wins;
// a drop with no recognized token is a silent no-op. Pointer viewport
// coordinates are translated into canvas-local ones by subtracting the
// canvas bounding-box origin and adding the scroll offset.
func (c *Coordinator) HandleDrop(items []DropItem, pointer, origin, scroll Point) *domain.Element {
	kind := ""
	for _, item := range items {
		if domain.KnownKind(item.Data) {
			kind = item.Data
			break
		}
	}
	if kind == "" {
		return nil
	}

	x := pointer.X - origin.X + scroll.X
	y := pointer.Y - origin.Y + scroll.Y
	el, err := domain.New(domain.ElementKind(kind), x, y)
	if err != nil {
		// Unreachable for recognized tokens; construction errors are
		// contract violations, not drop failures.
		return nil
	}

	c.elements = append(c.elements, el)
	c.controllers[el.ID] = c.newController(el.ID)
	c.Select(el.ID)
	c.emit("element:created", el)
	return el
}

// UpdateElement merges a patch into an element. No-op when the id is
// unknown.
func (c *Coordinator) UpdateElement(id string, patch domain.Patch) {
	for i, el := range c.elements {
		if el.ID == id {
			c.elements[i] = el.Apply(patch)
			return
		}
	}
}

// DeleteElement removes an element, clearing the selection if it was
// selected.
func (c *Coordinator) DeleteElement(id string) {
	for i, el := range c.elements {
		if el.ID != id {
			continue
		}
		c.elements = append(c.elements[:i], c.elements[i+1:]...)
		delete(c.controllers, id)
		if c.selectedID == id {
			c.selectedID = ""
		}
		if c.activeGestureID == id {
			c.activeGestureID = ""
			c.interaction = idleState
		}
		c.emit("element:deleted", id)
		return
	}
}

// Save persists the full current collection. Local state is the source
// of truth: a failed save is surfaced but never rolled back.
func (c *Coordinator) Save(ctx context.Context) error {
	return c.gateway.Save(ctx, c.snapshot())
}

// ── Pointer routing ────────────────────────────────────────
// Move/up handlers are only live while a gesture is active, mirroring
// scoped document-level listener registration: PointerMove and
// PointerUp do nothing when no gesture holds the pointer.

// PointerDown routes a pointer-down on an element body or its resize
// handle. The element becomes selected regardless of whether a gesture
// starts (locked elements still select). A pointer-down while another
// element's gesture is active is ignored.
func (c *Coordinator) PointerDown(id string, ev interaction.PointerEvent, onResizeHandle bool) {
	if c.activeGestureID != "" {
		return
	}
	ctrl, ok := c.controllers[id]
	if !ok {
		return
	}
	c.Select(id)
	if !ctrl.PointerDown(ev, onResizeHandle) {
		return
	}
	c.activeGestureID = id
	if ctrl.State() == interaction.StateResizing {
		c.interaction = InteractionState{Kind: "resizing", ElementID: id, CursorHint: "nwse-resize"}
	} else {
		c.interaction = InteractionState{Kind: "dragging", ElementID: id, CursorHint: "grabbing"}
	}
}

// PointerMove advances the active gesture, if any.
func (c *Coordinator) PointerMove(ev interaction.PointerEvent) {
	if ctrl, ok := c.controllers[c.activeGestureID]; ok {
		ctrl.PointerMove(ev)
	}
}

// PointerUp ends the active gesture, if any. The gesture-end hook
// triggers the single per-gesture save.
func (c *Coordinator) PointerUp(ev interaction.PointerEvent) {
	ctrl, ok := c.controllers[c.activeGestureID]
	if !ok {
		return
	}
	c.activeGestureID = ""
	c.interaction = idleState
	ctrl.PointerUp(ev)
}

// CaptureLost ends the active gesture the way pointer-up does. Also the
// teardown safety net.
func (c *Coordinator) CaptureLost() {
	ctrl, ok := c.controllers[c.activeGestureID]
	if !ok {
		return
	}
	c.activeGestureID = ""
	c.interaction = idleState
	ctrl.CaptureLost()
}

// ── Editing routing ────────────────────────────────────────

// DoubleClick begins editing a text element's content.
func (c *Coordinator) DoubleClick(id string) {
	ctrl, ok := c.controllers[id]
	if !ok {
		return
	}
	el := c.Element(id)
	if el == nil || el.Text == nil {
		return
	}
	ctrl.DoubleClick(el.Text.Content)
}

// SetEditBuffer replaces the in-progress edit buffer of an element.
func (c *Coordinator) SetEditBuffer(id, content string) {
	if ctrl, ok := c.controllers[id]; ok {
		ctrl.SetBuffer(content)
	}
}

// Blur routes an editor blur.
func (c *Coordinator) Blur(id string) {
	if ctrl, ok := c.controllers[id]; ok {
		ctrl.Blur()
	}
}

// KeyEnter routes the Enter key to an active editor.
func (c *Coordinator) KeyEnter(id string, shift bool) {
	if ctrl, ok := c.controllers[id]; ok {
		ctrl.KeyEnter(shift)
	}
}

// KeyEscape routes the Escape key to an active editor.
func (c *Coordinator) KeyEscape(id string) {
	if ctrl, ok := c.controllers[id]; ok {
		ctrl.KeyEscape()
	}
}

// ── wiring ─────────────────────────────────────────────────

func (c *Coordinator) newController(id string) *interaction.Controller {
	el := c.Element(id)
	kind := domain.ElementKind("")
	if el != nil {
		kind = el.Kind
	}
	return interaction.New(interaction.Config{
		Kind: kind,
		Locked: func() bool {
			if el := c.Element(id); el != nil {
				return el.Locked
			}
			return false
		},
		Size: func() (float64, float64) {
			if el := c.Element(id); el != nil {
				return el.Width, el.Height
			}
			return 0, 0
		},
		Hooks: interaction.Hooks{
			Move: func(dx, dy float64) {
				if el := c.Element(id); el != nil {
					el.X += dx
					el.Y += dy
				}
			},
			Resize: func(w, h float64) {
				if el := c.Element(id); el != nil {
					el.Width = w
					el.Height = h
				}
			},
			DragEnd:   func() { c.saveOnGestureEnd() },
			ResizeEnd: func() { c.saveOnGestureEnd() },
			CommitContent: func(content string) {
				if el := c.Element(id); el != nil && el.Text != nil {
					el.Text.Content = content
					c.emit("element:content-updated", map[string]string{
						"elementId": id,
						"content":   content,
					})
				}
			},
		},
	})
}

// saveOnGestureEnd fires exactly one save per completed gesture.
// Fire-and-forget: a save in flight never blocks new edits, and a later
// save overtakes an earlier one (last-write-wins). The snapshot is
// taken before leaving the UI goroutine.
func (c *Coordinator) saveOnGestureEnd() {
	snapshot := c.snapshot()
	go func() {
		if err := c.gateway.Save(c.ctx, snapshot); err != nil {
			c.emit("canvas:save-error", err.Error())
		}
	}()
}

// snapshot deep-copies the collection for marshalling off-goroutine.
func (c *Coordinator) snapshot() []domain.Element {
	out := make([]domain.Element, 0, len(c.elements))
	for _, el := range c.elements {
		out = append(out, *el.Clone())
	}
	return out
}

func (c *Coordinator) emit(event string, data any) {
	if c.emitter != nil {
		c.emitter.Emit(c.ctx, event, data)
	}
}

package interaction_test

import (
	"testing"

	"builder/internal/domain"
	"builder/internal/interaction"
)

// ─────────────────────────────────────────────────────────────
// Drag gestures
// ─────────────────────────────────────────────────────────────

func TestDrag_EmitsIncrementalDeltas(t *testing.T) {
	var moves [][2]float64
	dragEnds := 0
	c := interaction.New(interaction.Config{
		Kind: domain.ElementKindButton,
		Hooks: interaction.Hooks{
			Move:    func(dx, dy float64) { moves = append(moves, [2]float64{dx, dy}) },
			DragEnd: func() { dragEnds++ },
		},
	})

	if !c.PointerDown(interaction.PointerEvent{X: 100, Y: 100, Button: interaction.ButtonPrimary}, false) {
		t.Fatal("expected drag to start")
	}
	if c.State() != interaction.StateDragging {
		t.Fatalf("expected Dragging, got %v", c.State())
	}

	c.PointerMove(interaction.PointerEvent{X: 105, Y: 100})
	c.PointerMove(interaction.PointerEvent{X: 108, Y: 100})
	c.PointerUp(interaction.PointerEvent{})

	want := [][2]float64{{5, 0}, {3, 0}}
	if len(moves) != len(want) {
		t.Fatalf("expected %d move callbacks, got %d", len(want), len(moves))
	}
	for i := range want {
		if moves[i] != want[i] {
			t.Errorf("move %d: expected %v, got %v", i, want[i], moves[i])
		}
	}
	if dragEnds != 1 {
		t.Errorf("expected exactly one drag-end, got %d", dragEnds)
	}
	if c.State() != interaction.StateIdle {
		t.Errorf("expected Idle after pointer-up, got %v", c.State())
	}
}

func TestDrag_DeltasAreAdditive(t *testing.T) {
	// Applying deltas incrementally must equal summing them first.
	x, y := 40.0, 60.0
	c := interaction.New(interaction.Config{
		Kind: domain.ElementKindText,
		Hooks: interaction.Hooks{
			Move: func(dx, dy float64) { x += dx; y += dy },
		},
	})

	c.PointerDown(interaction.PointerEvent{X: 0, Y: 0, Button: interaction.ButtonPrimary}, false)
	deltas := [][2]float64{{5, 2}, {-3, 1}, {10, -7}, {0, 4}}
	px, py := 0.0, 0.0
	var sumX, sumY float64
	for _, d := range deltas {
		px += d[0]
		py += d[1]
		sumX += d[0]
		sumY += d[1]
		c.PointerMove(interaction.PointerEvent{X: px, Y: py})
	}
	c.PointerUp(interaction.PointerEvent{})

	if x != 40+sumX || y != 60+sumY {
		t.Errorf("expected (%v,%v), got (%v,%v)", 40+sumX, 60+sumY, x, y)
	}
}

func TestDrag_NonPrimaryButtonIgnored(t *testing.T) {
	c := interaction.New(interaction.Config{Kind: domain.ElementKindButton})
	if c.PointerDown(interaction.PointerEvent{Button: interaction.ButtonSecondary}, false) {
		t.Error("secondary button must not start a drag")
	}
	if c.State() != interaction.StateIdle {
		t.Errorf("expected Idle, got %v", c.State())
	}
}

func TestDrag_LockedElementRejectsGestures(t *testing.T) {
	locked := true
	c := interaction.New(interaction.Config{
		Kind:   domain.ElementKindButton,
		Locked: func() bool { return locked },
	})
	if c.PointerDown(interaction.PointerEvent{Button: interaction.ButtonPrimary}, false) {
		t.Error("locked element must not start a drag")
	}
	if c.PointerDown(interaction.PointerEvent{Button: interaction.ButtonPrimary}, true) {
		t.Error("locked element must not start a resize")
	}

	locked = false
	if !c.PointerDown(interaction.PointerEvent{Button: interaction.ButtonPrimary}, false) {
		t.Error("unlocked element must start a drag")
	}
}

func TestDrag_CaptureLossEndsGesture(t *testing.T) {
	dragEnds := 0
	c := interaction.New(interaction.Config{
		Kind:  domain.ElementKindImage,
		Hooks: interaction.Hooks{DragEnd: func() { dragEnds++ }},
	})
	c.PointerDown(interaction.PointerEvent{Button: interaction.ButtonPrimary}, false)
	c.CaptureLost()
	if c.State() != interaction.StateIdle || dragEnds != 1 {
		t.Errorf("capture loss must end the gesture: state=%v dragEnds=%d", c.State(), dragEnds)
	}
}

// ─────────────────────────────────────────────────────────────
// Resize gestures
// ─────────────────────────────────────────────────────────────

func TestResize_CumulativeFromStart(t *testing.T) {
	var got [][2]float64
	resizeEnds := 0
	c := interaction.New(interaction.Config{
		Kind: domain.ElementKindImage,
		Size: func() (float64, float64) { return 200, 150 },
		Hooks: interaction.Hooks{
			Resize:    func(w, h float64) { got = append(got, [2]float64{w, h}) },
			ResizeEnd: func() { resizeEnds++ },
		},
	})

	c.PointerDown(interaction.PointerEvent{X: 300, Y: 250, Button: interaction.ButtonPrimary}, true)
	if c.State() != interaction.StateResizing {
		t.Fatalf("expected Resizing, got %v", c.State())
	}

	// Each sample is measured from the start, not from the previous one.
	c.PointerMove(interaction.PointerEvent{X: 310, Y: 255})
	c.PointerMove(interaction.PointerEvent{X: 305, Y: 270})
	c.PointerUp(interaction.PointerEvent{})

	want := [][2]float64{{210, 155}, {205, 170}}
	if len(got) != len(want) {
		t.Fatalf("expected %d resize callbacks, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("resize %d: expected %v, got %v", i, want[i], got[i])
		}
	}
	if resizeEnds != 1 {
		t.Errorf("expected exactly one resize-end, got %d", resizeEnds)
	}
}

func TestResize_ClampsToKindMinimum(t *testing.T) {
	var lastW, lastH float64
	c := interaction.New(interaction.Config{
		Kind: domain.ElementKindText,
		Size: func() (float64, float64) { return 200, 40 },
		Hooks: interaction.Hooks{
			Resize: func(w, h float64) { lastW, lastH = w, h },
		},
	})

	c.PointerDown(interaction.PointerEvent{X: 0, Y: 0, Button: interaction.ButtonPrimary}, true)
	// Attempt to shrink far below the floor.
	c.PointerMove(interaction.PointerEvent{X: -190, Y: -30})
	c.PointerUp(interaction.PointerEvent{})

	if lastW != 80 || lastH != 24 {
		t.Errorf("expected clamp to 80x24, got %vx%v", lastW, lastH)
	}
}

func TestResize_GenericMinimumForImage(t *testing.T) {
	var lastW, lastH float64
	c := interaction.New(interaction.Config{
		Kind:  domain.ElementKindImage,
		Size:  func() (float64, float64) { return 200, 150 },
		Hooks: interaction.Hooks{Resize: func(w, h float64) { lastW, lastH = w, h }},
	})
	c.PointerDown(interaction.PointerEvent{X: 0, Y: 0, Button: interaction.ButtonPrimary}, true)
	c.PointerMove(interaction.PointerEvent{X: -500, Y: -500})
	if lastW != 80 || lastH != 30 {
		t.Errorf("expected generic floor 80x30, got %vx%v", lastW, lastH)
	}
}

// ─────────────────────────────────────────────────────────────
// Editing
// ─────────────────────────────────────────────────────────────

func TestEditing_OnlyTextElements(t *testing.T) {
	btn := interaction.New(interaction.Config{Kind: domain.ElementKindButton})
	if btn.DoubleClick("Button") {
		t.Error("button must not enter Editing")
	}

	txt := interaction.New(interaction.Config{Kind: domain.ElementKindText})
	if !txt.DoubleClick("Text") {
		t.Error("text must enter Editing on double-click")
	}
	if txt.State() != interaction.StateEditing {
		t.Errorf("expected Editing, got %v", txt.State())
	}
}

func TestEditing_LockedTextRejected(t *testing.T) {
	c := interaction.New(interaction.Config{
		Kind:   domain.ElementKindText,
		Locked: func() bool { return true },
	})
	if c.DoubleClick("Text") {
		t.Error("locked text must not enter Editing")
	}
}

func TestEditing_BlurCommitsOnlyIfChanged(t *testing.T) {
	var committed []string
	c := interaction.New(interaction.Config{
		Kind:  domain.ElementKindText,
		Hooks: interaction.Hooks{CommitContent: func(s string) { committed = append(committed, s) }},
	})

	c.DoubleClick("hello")
	c.Blur()
	if len(committed) != 0 {
		t.Fatalf("unchanged buffer must not commit, got %v", committed)
	}

	c.DoubleClick("hello")
	c.SetBuffer("hello world")
	c.Blur()
	if len(committed) != 1 || committed[0] != "hello world" {
		t.Fatalf("expected one commit of changed buffer, got %v", committed)
	}
	if c.State() != interaction.StateIdle {
		t.Errorf("expected Idle after blur, got %v", c.State())
	}
}

func TestEditing_EnterCommitsShiftEnterInsertsNewline(t *testing.T) {
	var committed []string
	c := interaction.New(interaction.Config{
		Kind:  domain.ElementKindText,
		Hooks: interaction.Hooks{CommitContent: func(s string) { committed = append(committed, s) }},
	})

	c.DoubleClick("line1")
	c.KeyEnter(true) // shift: newline, stay editing
	if c.State() != interaction.StateEditing {
		t.Fatal("shift+enter must stay in Editing")
	}
	c.SetBuffer(c.Buffer() + "line2")
	c.KeyEnter(false)
	if len(committed) != 1 || committed[0] != "line1\nline2" {
		t.Fatalf("expected commit of %q, got %v", "line1\nline2", committed)
	}
}

func TestEditing_EscapeReverts(t *testing.T) {
	var committed []string
	c := interaction.New(interaction.Config{
		Kind:  domain.ElementKindText,
		Hooks: interaction.Hooks{CommitContent: func(s string) { committed = append(committed, s) }},
	})

	c.DoubleClick("original")
	c.SetBuffer("scratch")
	c.KeyEscape()
	if len(committed) != 0 {
		t.Errorf("escape must not commit, got %v", committed)
	}
	if c.Buffer() != "original" {
		t.Errorf("escape must revert the buffer, got %q", c.Buffer())
	}
	if c.State() != interaction.StateIdle {
		t.Errorf("expected Idle after escape, got %v", c.State())
	}
}

func TestEditing_BlocksGestures(t *testing.T) {
	c := interaction.New(interaction.Config{Kind: domain.ElementKindText})
	c.DoubleClick("t")
	if c.PointerDown(interaction.PointerEvent{Button: interaction.ButtonPrimary}, false) {
		t.Error("pointer-down while Editing must not start a drag")
	}
}

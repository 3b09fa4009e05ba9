package domain

import (
	"fmt"

	"github.com/google/uuid"
)

type ElementKind string

const (
	ElementKindButton   ElementKind = "button"
	ElementKindCheckbox ElementKind = "checkbox"
	ElementKindText     ElementKind = "text"
	ElementKindImage    ElementKind = "image"
)

// KnownKind reports whether s is a recognized element kind token.
func KnownKind(s string) bool {
	switch ElementKind(s) {
	case ElementKindButton, ElementKindCheckbox, ElementKindText, ElementKindImage:
		return true
	}
	return false
}

type ButtonVariant string

const (
	ButtonVariantText      ButtonVariant = "text"
	ButtonVariantContained ButtonVariant = "contained"
	ButtonVariantOutlined  ButtonVariant = "outlined"
)

type ButtonColor string

const (
	ButtonColorPrimary   ButtonColor = "primary"
	ButtonColorSecondary ButtonColor = "secondary"
	ButtonColorSuccess   ButtonColor = "success"
	ButtonColorError     ButtonColor = "error"
	ButtonColorInfo      ButtonColor = "info"
	ButtonColorWarning   ButtonColor = "warning"
)

type TextAlign string

const (
	TextAlignLeft    TextAlign = "left"
	TextAlignCenter  TextAlign = "center"
	TextAlignRight   TextAlign = "right"
	TextAlignJustify TextAlign = "justify"
)

type ObjectFit string

const (
	ObjectFitContain   ObjectFit = "contain"
	ObjectFitCover     ObjectFit = "cover"
	ObjectFitFill      ObjectFit = "fill"
	ObjectFitNone      ObjectFit = "none"
	ObjectFitScaleDown ObjectFit = "scale-down"
)

// ButtonProps holds the attributes specific to button elements.
type ButtonProps struct {
	Label   string        `json:"label"`
	Variant ButtonVariant `json:"variant"`
	Color   ButtonColor   `json:"color"`
}

// CheckboxProps holds the attributes specific to checkbox elements.
type CheckboxProps struct {
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

// TextProps holds the attributes specific to text elements.
// Content may contain newlines.
type TextProps struct {
	Content    string    `json:"content"`
	FontSize   float64   `json:"fontSize"`
	FontFamily string    `json:"fontFamily"`
	Color      string    `json:"color"`
	TextAlign  TextAlign `json:"textAlign"`
}

// ImageProps holds the attributes specific to image elements.
type ImageProps struct {
	Src       string    `json:"src"`
	Alt       string    `json:"alt"`
	ObjectFit ObjectFit `json:"objectFit"`
}

// Element is a placed unit of canvas content. Kind is immutable after
// creation and determines which props struct is non-nil (exactly one).
// Positions are canvas-local pixels; they may go negative mid-gesture and
// are rounded to integers at the persistence boundary.
type Element struct {
	ID       string         `json:"id"`
	Kind     ElementKind    `json:"kind"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	Width    float64        `json:"width"`
	Height   float64        `json:"height"`
	ZIndex   int            `json:"zIndex"`
	Locked   bool           `json:"locked"`
	Metadata map[string]any `json:"metadata,omitempty"`

	Button   *ButtonProps   `json:"button,omitempty"`
	Checkbox *CheckboxProps `json:"checkbox,omitempty"`
	Text     *TextProps     `json:"text,omitempty"`
	Image    *ImageProps    `json:"image,omitempty"`
}

// Size holds a width/height pair in pixels.
type Size struct {
	Width  float64
	Height float64
}

// DefaultSize returns the size assigned to a freshly dropped element.
func DefaultSize(kind ElementKind) Size {
	switch kind {
	case ElementKindButton:
		return Size{120, 40}
	case ElementKindCheckbox:
		return Size{150, 24}
	case ElementKindText:
		return Size{200, 40}
	case ElementKindImage:
		return Size{200, 150}
	}
	return Size{150, 40}
}

// MinSize returns the per-kind resize floor. Kinds without an explicit
// floor use the generic 80×30 minimum.
func MinSize(kind ElementKind) Size {
	switch kind {
	case ElementKindButton:
		return Size{80, 32}
	case ElementKindCheckbox:
		return Size{120, 24}
	case ElementKindText:
		return Size{80, 24}
	}
	return Size{80, 30}
}

// New constructs an element of the given kind at a canvas position,
// assigning a fresh ID and the kind's default size and content.
// An unsupported kind is a programming error and fails fast.
func New(kind ElementKind, x, y float64) (*Element, error) {
	el := &Element{
		ID:       uuid.New().String(),
		Kind:     kind,
		X:        x,
		Y:        y,
		ZIndex:   1,
		Metadata: map[string]any{},
	}
	size := DefaultSize(kind)
	el.Width, el.Height = size.Width, size.Height

	switch kind {
	case ElementKindButton:
		el.Button = &ButtonProps{Label: "Button", Variant: ButtonVariantContained, Color: ButtonColorPrimary}
	case ElementKindCheckbox:
		el.Checkbox = &CheckboxProps{Label: "Checkbox", Checked: false}
	case ElementKindText:
		el.Text = &TextProps{Content: "Text", FontSize: 16, FontFamily: "Arial", Color: "#000000", TextAlign: TextAlignLeft}
	case ElementKindImage:
		el.Image = &ImageProps{Src: "", Alt: "Image", ObjectFit: ObjectFitContain}
	default:
		return nil, fmt.Errorf("unsupported element kind: %q", kind)
	}
	return el, nil
}

// DisplayText returns the element's own text-like field, or a
// kind-appropriate default, so the backend always receives a non-empty
// display string.
func (e *Element) DisplayText() string {
	switch {
	case e.Button != nil && e.Button.Label != "":
		return e.Button.Label
	case e.Checkbox != nil && e.Checkbox.Label != "":
		return e.Checkbox.Label
	case e.Text != nil && e.Text.Content != "":
		return e.Text.Content
	case e.Image != nil && e.Image.Alt != "":
		return e.Image.Alt
	}
	switch e.Kind {
	case ElementKindButton:
		return "Button"
	case ElementKindCheckbox:
		return "Checkbox"
	case ElementKindImage:
		return "Image"
	}
	return "Text"
}

// Clone returns a deep copy of the element.
func (e *Element) Clone() *Element {
	c := *e
	if e.Metadata != nil {
		c.Metadata = make(map[string]any, len(e.Metadata))
		for k, v := range e.Metadata {
			c.Metadata[k] = v
		}
	}
	if e.Button != nil {
		p := *e.Button
		c.Button = &p
	}
	if e.Checkbox != nil {
		p := *e.Checkbox
		c.Checkbox = &p
	}
	if e.Text != nil {
		p := *e.Text
		c.Text = &p
	}
	if e.Image != nil {
		p := *e.Image
		c.Image = &p
	}
	return &c
}

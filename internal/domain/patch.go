package domain

// ─────────────────────────────────────────────────────────────
// Element patches — partial updates merged into an element
// ─────────────────────────────────────────────────────────────

// Patch is a partial element update. Nil fields are left untouched.
// ID and kind are not part of a patch: they are immutable after creation.
// Metadata is merged key-by-key, never wholesale-replaced.
type Patch struct {
	X        *float64
	Y        *float64
	Width    *float64
	Height   *float64
	ZIndex   *int
	Locked   *bool
	Metadata map[string]any

	Button   *ButtonPatch
	Checkbox *CheckboxPatch
	Text     *TextPatch
	Image    *ImagePatch
}

type ButtonPatch struct {
	Label   *string
	Variant *ButtonVariant
	Color   *ButtonColor
}

type CheckboxPatch struct {
	Label   *string
	Checked *bool
}

type TextPatch struct {
	Content    *string
	FontSize   *float64
	FontFamily *string
	Color      *string
	TextAlign  *TextAlign
}

type ImagePatch struct {
	Src       *string
	Alt       *string
	ObjectFit *ObjectFit
}

// Apply returns a new element with the patch merged in. The receiver is
// not modified. A props patch for a different kind than the element's is
// ignored. An empty patch yields a deep-equal copy.
func (e *Element) Apply(p Patch) *Element {
	c := e.Clone()

	if p.X != nil {
		c.X = *p.X
	}
	if p.Y != nil {
		c.Y = *p.Y
	}
	if p.Width != nil {
		c.Width = *p.Width
	}
	if p.Height != nil {
		c.Height = *p.Height
	}
	if p.ZIndex != nil {
		c.ZIndex = *p.ZIndex
	}
	if p.Locked != nil {
		c.Locked = *p.Locked
	}
	if len(p.Metadata) > 0 {
		if c.Metadata == nil {
			c.Metadata = map[string]any{}
		}
		for k, v := range p.Metadata {
			c.Metadata[k] = v
		}
	}

	if p.Button != nil && c.Button != nil {
		if p.Button.Label != nil {
			c.Button.Label = *p.Button.Label
		}
		if p.Button.Variant != nil {
			c.Button.Variant = *p.Button.Variant
		}
		if p.Button.Color != nil {
			c.Button.Color = *p.Button.Color
		}
	}
	if p.Checkbox != nil && c.Checkbox != nil {
		if p.Checkbox.Label != nil {
			c.Checkbox.Label = *p.Checkbox.Label
		}
		if p.Checkbox.Checked != nil {
			c.Checkbox.Checked = *p.Checkbox.Checked
		}
	}
	if p.Text != nil && c.Text != nil {
		if p.Text.Content != nil {
			c.Text.Content = *p.Text.Content
		}
		if p.Text.FontSize != nil {
			c.Text.FontSize = *p.Text.FontSize
		}
		if p.Text.FontFamily != nil {
			c.Text.FontFamily = *p.Text.FontFamily
		}
		if p.Text.Color != nil {
			c.Text.Color = *p.Text.Color
		}
		if p.Text.TextAlign != nil {
			c.Text.TextAlign = *p.Text.TextAlign
		}
	}
	if p.Image != nil && c.Image != nil {
		if p.Image.Src != nil {
			c.Image.Src = *p.Image.Src
		}
		if p.Image.Alt != nil {
			c.Image.Alt = *p.Image.Alt
		}
		if p.Image.ObjectFit != nil {
			c.Image.ObjectFit = *p.Image.ObjectFit
		}
	}

	return c
}

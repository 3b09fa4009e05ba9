package domain

// ─────────────────────────────────────────────────────────────
// Structural validation for hydrated records of unknown shape
// ─────────────────────────────────────────────────────────────

// Validate reports whether a decoded candidate has the structure of a
// valid element: string id, recognized kind, numeric x/y/width/height,
// and the kind's required fields with correct types and enum membership.
// It never panics; malformed input simply returns false. Used
// defensively when hydrating persisted data.
func Validate(candidate map[string]any) bool {
	if candidate == nil {
		return false
	}
	id, ok := candidate["id"].(string)
	if !ok || id == "" {
		return false
	}
	kindStr, ok := candidate["kind"].(string)
	if !ok || !KnownKind(kindStr) {
		return false
	}
	for _, key := range []string{"x", "y", "width", "height"} {
		if _, ok := asNumber(candidate[key]); !ok {
			return false
		}
	}

	switch ElementKind(kindStr) {
	case ElementKindButton:
		if _, ok := candidate["label"].(string); !ok {
			return false
		}
		if v, ok := candidate["variant"].(string); !ok || !ValidButtonVariant(v) {
			return false
		}
		if c, ok := candidate["color"].(string); !ok || !ValidButtonColor(c) {
			return false
		}
	case ElementKindCheckbox:
		if _, ok := candidate["label"].(string); !ok {
			return false
		}
		if _, ok := candidate["checked"].(bool); !ok {
			return false
		}
	case ElementKindText:
		if _, ok := candidate["content"].(string); !ok {
			return false
		}
		if size, ok := asNumber(candidate["fontSize"]); !ok || size <= 0 {
			return false
		}
		if a, ok := candidate["textAlign"].(string); !ok || !ValidTextAlign(a) {
			return false
		}
	case ElementKindImage:
		if _, ok := candidate["src"].(string); !ok {
			return false
		}
		if f, ok := candidate["objectFit"].(string); !ok || !ValidObjectFit(f) {
			return false
		}
	}
	return true
}

// asNumber accepts the numeric types JSON decoding and SQL scanning
// produce.
func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// ValidButtonVariant reports enum membership for button variants.
func ValidButtonVariant(s string) bool {
	switch ButtonVariant(s) {
	case ButtonVariantText, ButtonVariantContained, ButtonVariantOutlined:
		return true
	}
	return false
}

func ValidButtonColor(s string) bool {
	switch ButtonColor(s) {
	case ButtonColorPrimary, ButtonColorSecondary, ButtonColorSuccess,
		ButtonColorError, ButtonColorInfo, ButtonColorWarning:
		return true
	}
	return false
}

func ValidTextAlign(s string) bool {
	switch TextAlign(s) {
	case TextAlignLeft, TextAlignCenter, TextAlignRight, TextAlignJustify:
		return true
	}
	return false
}

func ValidObjectFit(s string) bool {
	switch ObjectFit(s) {
	case ObjectFitContain, ObjectFitCover, ObjectFitFill, ObjectFitNone, ObjectFitScaleDown:
		return true
	}
	return false
}

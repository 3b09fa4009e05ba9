package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	"builder/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Persistence Gateway — marshal/unmarshal boundary to the
// backend element store
// ─────────────────────────────────────────────────────────────

// Record is the backend's flat element record.
type Record struct {
	ID          int64          `json:"id,omitempty"` // server-assigned, ignored on save
	ElementID   string         `json:"element_id"`
	ElementType string         `json:"element_type"`
	X           int            `json:"x"`
	Y           int            `json:"y"`
	Properties  map[string]any `json:"properties"`
	CreatedAt   string         `json:"created_at,omitempty"`
	UpdatedAt   string         `json:"updated_at,omitempty"`
}

// Client talks to the element store over HTTP. It carries no business
// logic: translation between elements and records only.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a gateway client for the given backend base URL.
// The persistence calls carry no explicit timeout; failure is whatever
// the underlying transport reports.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// Save POSTs the full element collection as a JSON array of records.
func (c *Client) Save(ctx context.Context, elements []domain.Element) error {
	records := make([]Record, 0, len(elements))
	for i := range elements {
		records = append(records, marshalElement(&elements[i]))
	}

	body, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal elements: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/elements/", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("save elements: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return httpError("save elements", resp)
	}
	return nil
}

// Load fetches the persisted records and reconstructs elements.
// Malformed records are recovered with defaults; malformed or empty
// response bodies yield an empty list, never an error.
func (c *Client) Load(ctx context.Context) ([]domain.Element, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/elements/", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("load elements: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, httpError("load elements", resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return []domain.Element{}, nil
	}

	elements := make([]domain.Element, 0, len(records))
	for i := range records {
		if el, ok := unmarshalRecord(&records[i]); ok {
			elements = append(elements, *el)
		}
	}
	return elements, nil
}

// ── marshalling ────────────────────────────────────────────

func marshalElement(e *domain.Element) Record {
	props := map[string]any{
		"width":  e.Width,
		"height": e.Height,
		"zIndex": e.ZIndex,
		"locked": e.Locked,
		// The backend always receives a non-empty display string, even
		// for kinds without their own text field.
		"text": e.DisplayText(),
	}
	if len(e.Metadata) > 0 {
		props["metadata"] = e.Metadata
	}

	switch {
	case e.Button != nil:
		props["label"] = e.Button.Label
		props["variant"] = string(e.Button.Variant)
		props["color"] = string(e.Button.Color)
	case e.Checkbox != nil:
		props["label"] = e.Checkbox.Label
		props["checked"] = e.Checkbox.Checked
	case e.Text != nil:
		props["content"] = e.Text.Content
		props["fontSize"] = e.Text.FontSize
		props["fontFamily"] = e.Text.FontFamily
		props["color"] = e.Text.Color
		props["textAlign"] = string(e.Text.TextAlign)
	case e.Image != nil:
		props["src"] = e.Image.Src
		props["alt"] = e.Image.Alt
		props["objectFit"] = string(e.Image.ObjectFit)
	}

	return Record{
		ElementID:   e.ID,
		ElementType: string(e.Kind),
		X:           int(math.Round(e.X)),
		Y:           int(math.Round(e.Y)),
		Properties:  props,
	}
}

// Defaults substituted when a record's properties omit layout fields.
const (
	fallbackWidth  = 150.0
	fallbackHeight = 40.0
)

// unmarshalRecord reconstructs an element from a record of unknown
// shape. Unknown kinds are dropped; recognized kinds with malformed or
// missing fields fall back to kind defaults. zIndex defaults to 0 when
// absent, width/height to 150×40.
func unmarshalRecord(r *Record) (*domain.Element, bool) {
	kind := domain.ElementKind(r.ElementType)
	if !domain.KnownKind(r.ElementType) || r.ElementID == "" {
		return nil, false
	}

	el := &domain.Element{
		ID:       r.ElementID,
		Kind:     kind,
		X:        float64(r.X),
		Y:        float64(r.Y),
		Width:    numProp(r.Properties, "width", fallbackWidth),
		Height:   numProp(r.Properties, "height", fallbackHeight),
		ZIndex:   int(numProp(r.Properties, "zIndex", 0)),
		Locked:   boolProp(r.Properties, "locked", false),
		Metadata: map[string]any{},
	}
	if meta, ok := r.Properties["metadata"].(map[string]any); ok {
		for k, v := range meta {
			el.Metadata[k] = v
		}
	}

	switch kind {
	case domain.ElementKindButton:
		el.Button = &domain.ButtonProps{
			Label:   strProp(r.Properties, "label", strProp(r.Properties, "text", "Button")),
			Variant: domain.ButtonVariant(enumProp(r.Properties, "variant", string(domain.ButtonVariantContained), domain.ValidButtonVariant)),
			Color:   domain.ButtonColor(enumProp(r.Properties, "color", string(domain.ButtonColorPrimary), domain.ValidButtonColor)),
		}
	case domain.ElementKindCheckbox:
		el.Checkbox = &domain.CheckboxProps{
			Label:   strProp(r.Properties, "label", strProp(r.Properties, "text", "Checkbox")),
			Checked: boolProp(r.Properties, "checked", false),
		}
	case domain.ElementKindText:
		size := numProp(r.Properties, "fontSize", 16)
		if size <= 0 {
			size = 16
		}
		el.Text = &domain.TextProps{
			Content:    strProp(r.Properties, "content", strProp(r.Properties, "text", "Text")),
			FontSize:   size,
			FontFamily: strProp(r.Properties, "fontFamily", "Arial"),
			Color:      strProp(r.Properties, "color", "#000000"),
			TextAlign:  domain.TextAlign(enumProp(r.Properties, "textAlign", string(domain.TextAlignLeft), domain.ValidTextAlign)),
		}
	case domain.ElementKindImage:
		el.Image = &domain.ImageProps{
			Src:       strProp(r.Properties, "src", ""),
			Alt:       strProp(r.Properties, "alt", "Image"),
			ObjectFit: domain.ObjectFit(enumProp(r.Properties, "objectFit", string(domain.ObjectFitContain), domain.ValidObjectFit)),
		}
	}
	return el, true
}

func numProp(props map[string]any, key string, def float64) float64 {
	switch v := props[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

func strProp(props map[string]any, key, def string) string {
	if s, ok := props[key].(string); ok && s != "" {
		return s
	}
	return def
}

func boolProp(props map[string]any, key string, def bool) bool {
	if b, ok := props[key].(bool); ok {
		return b
	}
	return def
}

func enumProp(props map[string]any, key, def string, valid func(string) bool) string {
	if s, ok := props[key].(string); ok && valid(s) {
		return s
	}
	return def
}

// ── error shaping ──────────────────────────────────────────

// httpError builds the error for a non-2xx response: JSON detail or
// message if present, then raw body text, then the HTTP status text.
func httpError(op string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	msg := ""
	var parsed map[string]any
	if json.Unmarshal(data, &parsed) == nil {
		for _, key := range []string{"detail", "message"} {
			switch v := parsed[key].(type) {
			case string:
				msg = v
			case nil:
			default:
				if b, err := json.Marshal(v); err == nil {
					msg = string(b)
				}
			}
			if msg != "" {
				break
			}
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(data))
	}
	if msg == "" {
		msg = resp.Status
	}
	return fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, msg)
}

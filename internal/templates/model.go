package templates

import "time"

// LayoutMode selects the composition strategy the document composer applies.
type LayoutMode string

const (
	// LayoutModeStructured renders the fixed block layout.
	LayoutModeStructured LayoutMode = "STRUCTURED"
	// LayoutModeFreeform renders an ordered list of free-form sections.
	LayoutModeFreeform LayoutMode = "FREEFORM"
)

// Section is one free-form block of a legacy template.
type Section struct {
	Key      string `json:"key"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Visible  bool   `json:"visible"`
	Position int    `json:"position"`
}

// Layout is a tagged variant: structured templates carry only the mode,
// freeform templates additionally carry their ordered sections.
type Layout struct {
	Mode     LayoutMode `json:"mode"`
	Sections []Section  `json:"sections,omitempty"`
}

// Styles holds the visual parameters applied at render time.
type Styles struct {
	PrimaryColor string `json:"primary_color"`
	FontFamily   string `json:"font_family"`
	CustomCSS    string `json:"custom_css,omitempty"`
	HeaderHTML   string `json:"header_html,omitempty"`
	FooterHTML   string `json:"footer_html,omitempty"`
}

// Template is an organisation-owned presentation configuration.
type Template struct {
	ID          int64     `json:"id" db:"id"`
	OrgID       int64     `json:"org_id" db:"org_id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	Layout      Layout    `json:"layout" db:"layout"`
	Styles      Styles    `json:"styles" db:"styles"`
	IsDefault   bool      `json:"is_default" db:"is_default"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

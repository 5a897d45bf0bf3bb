package templates

// CreateTemplateRequest carries the fields of a new template.
type CreateTemplateRequest struct {
	Name        string `json:"name" validate:"required,max=120"`
	Description string `json:"description" validate:"max=500"`
	Layout      Layout `json:"layout"`
	Styles      Styles `json:"styles"`
	IsDefault   bool   `json:"is_default"`
}

// UpdateTemplateRequest carries a partial template update.
type UpdateTemplateRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
	Layout      *Layout `json:"layout,omitempty"`
	Styles      *Styles `json:"styles,omitempty"`
}

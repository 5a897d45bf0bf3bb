package quotation

import "time"

// LineItemRequest carries one line of a create/update request.
type LineItemRequest struct {
	Name            string   `json:"name" validate:"required,max=200"`
	Description     string   `json:"description" validate:"max=1000"`
	Quantity        float64  `json:"quantity" validate:"gte=0"`
	UnitPrice       float64  `json:"unit_price" validate:"gte=0"`
	DiscountPercent *float64 `json:"discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	TaxPercent      *float64 `json:"tax_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	Position        int      `json:"position" validate:"gte=0"`
}

// CreateQuotationRequest carries the fields of a new quotation.
type CreateQuotationRequest struct {
	Title              string            `json:"title" validate:"required,max=200"`
	ContactID          int64             `json:"contact_id" validate:"required,gt=0"`
	AccountManagerID   *int64            `json:"account_manager_id,omitempty" validate:"omitempty,gt=0"`
	Currency           string            `json:"currency" validate:"required,len=3"`
	IssueDate          time.Time         `json:"issue_date" validate:"required"`
	ValidUntil         time.Time         `json:"valid_until" validate:"required"`
	Items              []LineItemRequest `json:"items" validate:"dive"`
	DiscountPercent    *float64          `json:"discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	TaxPercent         *float64          `json:"tax_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	Charges            float64           `json:"charges" validate:"gte=0"`
	TemplateID         *int64            `json:"template_id,omitempty" validate:"omitempty,gt=0"`
	LogoURL            *string           `json:"logo_url,omitempty"`
	SignatureURL       *string           `json:"signature_url,omitempty"`
	PaymentTerms       *string           `json:"payment_terms,omitempty"`
	TermsAndConditions *string           `json:"terms_and_conditions,omitempty"`
	Notes              *string           `json:"notes,omitempty"`
}

// UpdateQuotationRequest carries a partial update of a draft quotation.
// TotalOverride, when present, pins the grand total by hand and flags it.
type UpdateQuotationRequest struct {
	Title              *string            `json:"title,omitempty" validate:"omitempty,max=200"`
	ContactID          *int64             `json:"contact_id,omitempty" validate:"omitempty,gt=0"`
	AccountManagerID   *int64             `json:"account_manager_id,omitempty" validate:"omitempty,gt=0"`
	IssueDate          *time.Time         `json:"issue_date,omitempty"`
	ValidUntil         *time.Time         `json:"valid_until,omitempty"`
	Items              *[]LineItemRequest `json:"items,omitempty" validate:"omitempty,dive"`
	DiscountPercent    *float64           `json:"discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	TaxPercent         *float64           `json:"tax_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	Charges            *float64           `json:"charges,omitempty" validate:"omitempty,gte=0"`
	TemplateID         *int64             `json:"template_id,omitempty" validate:"omitempty,gt=0"`
	LogoURL            *string            `json:"logo_url,omitempty"`
	SignatureURL       *string            `json:"signature_url,omitempty"`
	PaymentTerms       *string            `json:"payment_terms,omitempty"`
	TermsAndConditions *string            `json:"terms_and_conditions,omitempty"`
	Notes              *string            `json:"notes,omitempty"`
	TotalOverride      *float64           `json:"total_override,omitempty" validate:"omitempty,gte=0"`
	ClearTotalOverride bool               `json:"clear_total_override,omitempty"`
}

// ListQuotationsRequest filters the org-scoped listing.
type ListQuotationsRequest struct {
	OrgID     int64            `json:"org_id" validate:"required,gt=0"`
	ContactID *int64           `json:"contact_id,omitempty"`
	Status    *QuotationStatus `json:"status,omitempty"`
	DateFrom  *time.Time       `json:"date_from,omitempty"`
	DateTo    *time.Time       `json:"date_to,omitempty"`
	Limit     int              `json:"limit" validate:"gte=0,lte=1000"`
	Offset    int              `json:"offset" validate:"gte=0"`
}

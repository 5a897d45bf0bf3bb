package quotation

import "time"

// QuotationStatus is the stored lifecycle state.
type QuotationStatus string

const (
	StatusDraft    QuotationStatus = "DRAFT"
	StatusSent     QuotationStatus = "SENT"
	StatusApproved QuotationStatus = "APPROVED"
	StatusRejected QuotationStatus = "REJECTED"
	StatusExpired  QuotationStatus = "EXPIRED"
)

// LineItem is one commercial line of a quotation. Percentages are pointers so
// an unset rate renders differently from an explicit zero.
type LineItem struct {
	ID              int64    `json:"id" db:"id"`
	QuotationID     int64    `json:"quotation_id" db:"quotation_id"`
	Name            string   `json:"name" db:"name"`
	Description     string   `json:"description" db:"description"`
	Quantity        float64  `json:"quantity" db:"quantity"`
	UnitPrice       float64  `json:"unit_price" db:"unit_price"`
	DiscountPercent *float64 `json:"discount_percent,omitempty" db:"discount_percent"`
	TaxPercent      *float64 `json:"tax_percent,omitempty" db:"tax_percent"`
	Total           float64  `json:"total" db:"total"`
	Position        int      `json:"position" db:"position"`
}

// Quotation is the central entity of the engine.
type Quotation struct {
	ID     int64  `json:"id" db:"id"`
	OrgID  int64  `json:"org_id" db:"org_id"`
	Number string `json:"number" db:"number"`
	Title  string `json:"title" db:"title"`

	ContactID        int64  `json:"contact_id" db:"contact_id"`
	OwnerID          int64  `json:"owner_id" db:"owner_id"`
	AccountManagerID *int64 `json:"account_manager_id,omitempty" db:"account_manager_id"`

	Currency        string     `json:"currency" db:"currency"`
	Items           []LineItem `json:"items,omitempty" db:"-"`
	DiscountPercent *float64   `json:"discount_percent,omitempty" db:"discount_percent"`
	TaxPercent      *float64   `json:"tax_percent,omitempty" db:"tax_percent"`
	Charges         float64    `json:"charges" db:"charges"`

	Subtotal       float64 `json:"subtotal" db:"subtotal"`
	DiscountAmount float64 `json:"discount_amount" db:"discount_amount"`
	TaxAmount      float64 `json:"tax_amount" db:"tax_amount"`
	Total          float64 `json:"total" db:"total"`
	AmountInWords  string  `json:"amount_in_words" db:"amount_in_words"`
	// TotalIsManualOverride marks a total that was set by hand and must not be
	// recomputed from the items.
	TotalIsManualOverride bool `json:"total_is_manual_override" db:"total_is_manual_override"`

	IssueDate  time.Time `json:"issue_date" db:"issue_date"`
	ValidUntil time.Time `json:"valid_until" db:"valid_until"`

	Status QuotationStatus `json:"status" db:"status"`
	// PublicAccessToken is minted once at creation and never reissued, so
	// previously shared links keep working across re-sends.
	PublicAccessToken string `json:"-" db:"public_access_token"`

	TemplateID         *int64  `json:"template_id,omitempty" db:"template_id"`
	LogoURL            *string `json:"logo_url,omitempty" db:"logo_url"`
	SignatureURL       *string `json:"signature_url,omitempty" db:"signature_url"`
	PaymentTerms       *string `json:"payment_terms,omitempty" db:"payment_terms"`
	TermsAndConditions *string `json:"terms_and_conditions,omitempty" db:"terms_and_conditions"`
	Notes              *string `json:"notes,omitempty" db:"notes"`

	SentAt    *time.Time `json:"sent_at,omitempty" db:"sent_at"`
	DecidedAt *time.Time `json:"decided_at,omitempty" db:"decided_at"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// QuotationWithDetails joins display names for list views.
type QuotationWithDetails struct {
	Quotation
	ContactName string `json:"contact_name" db:"contact_name"`
	OwnerName   string `json:"owner_name" db:"owner_name"`
}

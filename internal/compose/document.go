package compose

import (
	"time"

	"github.com/meridian-crm/meridian-crm/internal/quotation/pricing"
)

// Party is a resolved person or company shown on the document.
type Party struct {
	Name        string
	CompanyName string
	Email       string
	Phone       string
	Address     string
}

// Organization carries the issuing organisation's defaults.
type Organization struct {
	Name         string
	Address      string
	Email        string
	Phone        string
	ContactName  string
	LogoURL      string
	SignatureURL string
}

// Line is one rendered line item.
type Line struct {
	Name            string
	Description     string
	Quantity        float64
	UnitPrice       float64
	DiscountPercent *float64
	TaxPercent      *float64
	Total           float64
}

// Document is the fully resolved input of a render: quotation data plus the
// parties looked up from the directory. The client side is resolved strictly
// from the contact being quoted; it never carries the issuing organisation's
// company name.
type Document struct {
	Number     string
	Title      string
	Currency   string
	IssueDate  time.Time
	ValidUntil time.Time

	Client Party
	Sender Party
	Org    Organization

	Items  []Line
	Totals pricing.Totals

	// Per-quotation visual overrides; nil falls through to the organisation
	// defaults, absent renders nothing.
	LogoURL      *string
	SignatureURL *string

	PaymentTerms       string
	TermsAndConditions string
	Notes              string
}

// ResolveSender picks the sender card identity: account manager, then the
// quotation owner, then the organisation's contact person.
func ResolveSender(accountManager, owner *Party, org Organization) Party {
	if accountManager != nil && accountManager.Name != "" {
		return *accountManager
	}
	if owner != nil && owner.Name != "" {
		return *owner
	}
	return Party{
		Name:        org.ContactName,
		CompanyName: org.Name,
		Email:       org.Email,
		Phone:       org.Phone,
	}
}

// resolveAsset applies the asset resolution order: quotation override first,
// organisation default second, otherwise absent.
func resolveAsset(override *string, orgDefault string) string {
	if override != nil && *override != "" {
		return *override
	}
	return orgDefault
}

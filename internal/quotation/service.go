package quotation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-crm/meridian-crm/internal/compose"
	"github.com/meridian-crm/meridian-crm/internal/quotation/pricing"
	"github.com/meridian-crm/meridian-crm/internal/shared"
	"github.com/meridian-crm/meridian-crm/internal/templates"
)

// TemplateResolver resolves the template a quotation renders with.
type TemplateResolver interface {
	Resolve(ctx context.Context, orgID int64, templateID *int64) (*templates.Template, error)
}

// Renderer turns a resolved document and template into HTML.
type Renderer interface {
	Render(doc compose.Document, tpl templates.Template) (string, error)
}

// Directory resolves parties from the surrounding CRM. Contacts, users and
// organisation settings are owned elsewhere; the engine only consumes them.
type Directory interface {
	Contact(ctx context.Context, orgID, contactID int64) (*compose.Party, error)
	Person(ctx context.Context, orgID, userID int64) (*compose.Party, error)
	Organization(ctx context.Context, orgID int64) (*compose.Organization, error)
}

// Notifier enqueues delivery work when a quotation goes out. Delivery itself
// happens in the worker; failures there never block the transition.
type Notifier interface {
	QuotationSent(ctx context.Context, orgID, quotationID int64) error
}

// Service owns quotation CRUD, the pricing derivation and the lifecycle state
// machine.
type Service struct {
	repo      Repository
	templates TemplateResolver
	renderer  Renderer
	directory Directory
	notifier  Notifier
}

// NewService constructs a Service.
func NewService(repo Repository, tpls TemplateResolver, renderer Renderer, directory Directory, notifier Notifier) *Service {
	return &Service{
		repo:      repo,
		templates: tpls,
		renderer:  renderer,
		directory: directory,
		notifier:  notifier,
	}
}

// Create stores a new draft quotation with freshly derived totals and a
// newly minted public access token.
func (s *Service) Create(ctx context.Context, orgID int64, req CreateQuotationRequest, createdBy int64) (*Quotation, error) {
	if req.ValidUntil.Before(req.IssueDate) {
		return nil, fmt.Errorf("%w: valid_until must not precede issue_date", shared.ErrInvalidLineItem)
	}
	if _, err := s.directory.Contact(ctx, orgID, req.ContactID); err != nil {
		return nil, fmt.Errorf("verify contact: %w", err)
	}

	totals, err := pricing.Compute(req.Currency, lineInputs(req.Items),
		pricing.Policy{Percent: req.DiscountPercent},
		pricing.Policy{Percent: req.TaxPercent},
		req.Charges,
	)
	if err != nil {
		return nil, err
	}

	q := Quotation{
		OrgID:                 orgID,
		Title:                 req.Title,
		ContactID:             req.ContactID,
		OwnerID:               createdBy,
		AccountManagerID:      req.AccountManagerID,
		Currency:              req.Currency,
		DiscountPercent:       req.DiscountPercent,
		TaxPercent:            req.TaxPercent,
		Charges:               req.Charges,
		Subtotal:              totals.Subtotal,
		DiscountAmount:        totals.DiscountAmount,
		TaxAmount:             totals.TaxAmount,
		Total:                 totals.Total,
		AmountInWords:         totals.AmountInWords,
		IssueDate:             req.IssueDate,
		ValidUntil:            req.ValidUntil,
		Status:                StatusDraft,
		PublicAccessToken:     uuid.NewString(),
		TemplateID:            req.TemplateID,
		LogoURL:               req.LogoURL,
		SignatureURL:          req.SignatureURL,
		PaymentTerms:          req.PaymentTerms,
		TermsAndConditions:    req.TermsAndConditions,
		Notes:                 req.Notes,
		TotalIsManualOverride: false,
	}

	var quotationID int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		number, err := repo.GenerateNumber(ctx, orgID, req.IssueDate)
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		q.Number = number

		id, err := repo.Create(ctx, q)
		if err != nil {
			return fmt.Errorf("create quotation: %w", err)
		}
		quotationID = id

		return insertItems(ctx, repo, id, req.Items, req.Currency, totals)
	})
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, orgID, quotationID)
}

// Update edits a draft quotation. Totals are rederived whenever the
// commercial fields change, unless a flagged manual override pins the total.
func (s *Service) Update(ctx context.Context, orgID, id int64, req UpdateQuotationRequest) (*Quotation, error) {
	existing, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	if existing.Status != StatusDraft {
		return nil, fmt.Errorf("%w: only draft quotations can be edited", shared.ErrInvalidTransition)
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.ContactID != nil {
		if _, err := s.directory.Contact(ctx, orgID, *req.ContactID); err != nil {
			return nil, fmt.Errorf("verify contact: %w", err)
		}
		updates["contact_id"] = *req.ContactID
		existing.ContactID = *req.ContactID
	}
	if req.AccountManagerID != nil {
		updates["account_manager_id"] = *req.AccountManagerID
	}
	if req.IssueDate != nil {
		updates["issue_date"] = *req.IssueDate
		existing.IssueDate = *req.IssueDate
	}
	if req.ValidUntil != nil {
		updates["valid_until"] = *req.ValidUntil
		existing.ValidUntil = *req.ValidUntil
	}
	if existing.ValidUntil.Before(existing.IssueDate) {
		return nil, fmt.Errorf("%w: valid_until must not precede issue_date", shared.ErrInvalidLineItem)
	}
	if req.TemplateID != nil {
		updates["template_id"] = *req.TemplateID
	}
	if req.LogoURL != nil {
		updates["logo_url"] = *req.LogoURL
	}
	if req.SignatureURL != nil {
		updates["signature_url"] = *req.SignatureURL
	}
	if req.PaymentTerms != nil {
		updates["payment_terms"] = *req.PaymentTerms
	}
	if req.TermsAndConditions != nil {
		updates["terms_and_conditions"] = *req.TermsAndConditions
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}

	// Commercial inputs default to their stored values; any change triggers a
	// full rederivation.
	itemReqs := itemRequests(existing.Items)
	pricingChanged := false
	if req.Items != nil {
		itemReqs = *req.Items
		pricingChanged = true
	}
	discountPercent := existing.DiscountPercent
	if req.DiscountPercent != nil {
		discountPercent = req.DiscountPercent
		updates["discount_percent"] = *req.DiscountPercent
		pricingChanged = true
	}
	taxPercent := existing.TaxPercent
	if req.TaxPercent != nil {
		taxPercent = req.TaxPercent
		updates["tax_percent"] = *req.TaxPercent
		pricingChanged = true
	}
	charges := existing.Charges
	if req.Charges != nil {
		charges = *req.Charges
		updates["charges"] = *req.Charges
		pricingChanged = true
	}

	override := existing.TotalIsManualOverride
	overrideTotal := existing.Total
	if req.ClearTotalOverride {
		override = false
		pricingChanged = true
	}
	if req.TotalOverride != nil {
		override = true
		overrideTotal = *req.TotalOverride
	}

	var totals pricing.Totals
	if pricingChanged || req.TotalOverride != nil {
		totals, err = pricing.Compute(existing.Currency, lineInputs(itemReqs),
			pricing.Policy{Percent: discountPercent},
			pricing.Policy{Percent: taxPercent},
			charges,
		)
		if err != nil {
			return nil, err
		}
		if override {
			totals.Total = overrideTotal
			totals.AmountInWords = pricing.AmountInWords(overrideTotal, existing.Currency)
		}
		updates["subtotal"] = totals.Subtotal
		updates["discount_amount"] = totals.DiscountAmount
		updates["tax_amount"] = totals.TaxAmount
		updates["total"] = totals.Total
		updates["amount_in_words"] = totals.AmountInWords
		updates["total_is_manual_override"] = override
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if len(updates) > 0 {
			if err := repo.Update(ctx, id, updates); err != nil {
				return err
			}
		}
		if req.Items != nil {
			if err := repo.DeleteItems(ctx, id); err != nil {
				return err
			}
			return insertItems(ctx, repo, id, *req.Items, existing.Currency, totals)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("update quotation: %w", err)
	}

	return s.repo.Get(ctx, orgID, id)
}

// Get fetches one quotation.
func (s *Service) Get(ctx context.Context, orgID, id int64) (*Quotation, error) {
	return s.repo.Get(ctx, orgID, id)
}

// List fetches the filtered org-scoped listing.
func (s *Service) List(ctx context.Context, req ListQuotationsRequest) ([]QuotationWithDetails, int, error) {
	return s.repo.List(ctx, req)
}

// Send transitions a draft to SENT and notifies delivery. Re-sending an
// already SENT quotation enqueues delivery again without touching the status
// or the access token, so previously shared links keep working.
func (s *Service) Send(ctx context.Context, orgID, id int64, now time.Time) (*Quotation, error) {
	existing, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}

	switch existing.Status {
	case StatusDraft:
		if err := s.repo.UpdateStatus(ctx, id, StatusDraft, StatusSent, now); err != nil {
			return nil, fmt.Errorf("send quotation: %w", err)
		}
	case StatusSent:
		// re-send
	default:
		return nil, fmt.Errorf("%w: cannot send a %s quotation", shared.ErrInvalidTransition, existing.Status)
	}

	if s.notifier != nil {
		if err := s.notifier.QuotationSent(ctx, orgID, id); err != nil {
			return nil, fmt.Errorf("notify send: %w", err)
		}
	}
	return s.repo.Get(ctx, orgID, id)
}

// Reopen moves a decided quotation back to SENT. This is an explicit issuer
// action, never automatic.
func (s *Service) Reopen(ctx context.Context, orgID, id int64, now time.Time) (*Quotation, error) {
	existing, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, fmt.Errorf("get quotation: %w", err)
	}
	if !CanTransition(existing.Status, StatusSent) || existing.Status == StatusDraft {
		return nil, fmt.Errorf("%w: cannot reopen a %s quotation", shared.ErrInvalidTransition, existing.Status)
	}
	if err := s.repo.UpdateStatus(ctx, id, existing.Status, StatusSent, now); err != nil {
		return nil, fmt.Errorf("reopen quotation: %w", err)
	}
	return s.repo.Get(ctx, orgID, id)
}

// ResolveByToken loads a quotation through its public access token and
// reconciles the stored status with the derived expiry before anything
// client-facing happens. The token is minted at creation but the link only
// goes live on first send; a still-draft quotation resolves as not found.
func (s *Service) ResolveByToken(ctx context.Context, token string, now time.Time) (*Quotation, error) {
	q, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if q.Status == StatusDraft {
		return nil, shared.ErrTokenNotFound
	}
	q.Status = EffectiveStatus(q.Status, q.ValidUntil, now)
	return q, nil
}

// Decide applies the client's approve/reject through the public channel. The
// transition only applies while the effective status is SENT.
func (s *Service) Decide(ctx context.Context, token string, approve bool, now time.Time) (*Quotation, error) {
	q, err := s.ResolveByToken(ctx, token, now)
	if err != nil {
		return nil, err
	}
	switch q.Status {
	case StatusSent:
	case StatusExpired:
		return nil, shared.ErrQuotationExpired
	default:
		return nil, fmt.Errorf("%w: quotation is %s", shared.ErrInvalidTransition, q.Status)
	}

	target := StatusApproved
	if !approve {
		target = StatusRejected
	}
	if err := s.repo.UpdateStatus(ctx, q.ID, StatusSent, target, now); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, q.OrgID, q.ID)
}

// Render composes the final HTML document for a quotation.
func (s *Service) Render(ctx context.Context, q *Quotation) (string, error) {
	tpl, err := s.templates.Resolve(ctx, q.OrgID, q.TemplateID)
	if err != nil {
		return "", err
	}
	doc, err := s.buildDocument(ctx, q)
	if err != nil {
		return "", err
	}
	return s.renderer.Render(doc, *tpl)
}

// RenderByID is the management-surface preview path.
func (s *Service) RenderByID(ctx context.Context, orgID, id int64) (string, error) {
	q, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return "", err
	}
	return s.Render(ctx, q)
}

func (s *Service) buildDocument(ctx context.Context, q *Quotation) (compose.Document, error) {
	org, err := s.directory.Organization(ctx, q.OrgID)
	if err != nil {
		return compose.Document{}, fmt.Errorf("resolve organization: %w", err)
	}
	client, err := s.directory.Contact(ctx, q.OrgID, q.ContactID)
	if err != nil {
		return compose.Document{}, fmt.Errorf("resolve contact: %w", err)
	}

	var manager *compose.Party
	if q.AccountManagerID != nil {
		manager, err = s.directory.Person(ctx, q.OrgID, *q.AccountManagerID)
		if err != nil && !errors.Is(err, shared.ErrNotFound) {
			return compose.Document{}, fmt.Errorf("resolve account manager: %w", err)
		}
	}
	owner, err := s.directory.Person(ctx, q.OrgID, q.OwnerID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return compose.Document{}, fmt.Errorf("resolve owner: %w", err)
	}

	doc := compose.Document{
		Number:     q.Number,
		Title:      q.Title,
		Currency:   q.Currency,
		IssueDate:  q.IssueDate,
		ValidUntil: q.ValidUntil,
		Client:     *client,
		Sender:     compose.ResolveSender(manager, owner, *org),
		Org:        *org,
		Totals: pricing.Totals{
			Subtotal:       q.Subtotal,
			DiscountAmount: q.DiscountAmount,
			TaxAmount:      q.TaxAmount,
			Charges:        q.Charges,
			Total:          q.Total,
			AmountInWords:  q.AmountInWords,
		},
		LogoURL:      q.LogoURL,
		SignatureURL: q.SignatureURL,
	}
	if q.PaymentTerms != nil {
		doc.PaymentTerms = *q.PaymentTerms
	}
	if q.TermsAndConditions != nil {
		doc.TermsAndConditions = *q.TermsAndConditions
	}
	if q.Notes != nil {
		doc.Notes = *q.Notes
	}
	for _, item := range q.Items {
		doc.Items = append(doc.Items, compose.Line{
			Name:            item.Name,
			Description:     item.Description,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			TaxPercent:      item.TaxPercent,
			Total:           item.Total,
		})
	}
	return doc, nil
}

func lineInputs(items []LineItemRequest) []pricing.LineInput {
	inputs := make([]pricing.LineInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, pricing.LineInput{
			Name:            item.Name,
			Description:     item.Description,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			TaxPercent:      item.TaxPercent,
		})
	}
	return inputs
}

func itemRequests(items []LineItem) []LineItemRequest {
	reqs := make([]LineItemRequest, 0, len(items))
	for _, item := range items {
		reqs = append(reqs, LineItemRequest{
			Name:            item.Name,
			Description:     item.Description,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			TaxPercent:      item.TaxPercent,
			Position:        item.Position,
		})
	}
	return reqs
}

func insertItems(ctx context.Context, repo Repository, quotationID int64, items []LineItemRequest, currency string, totals pricing.Totals) error {
	for i, item := range items {
		line := LineItem{
			QuotationID:     quotationID,
			Name:            item.Name,
			Description:     item.Description,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			TaxPercent:      item.TaxPercent,
			Total:           totals.LineTotals[i],
			Position:        item.Position,
		}
		if line.Position == 0 {
			line.Position = i + 1
		}
		if _, err := repo.InsertItem(ctx, line); err != nil {
			return fmt.Errorf("insert line item: %w", err)
		}
	}
	return nil
}

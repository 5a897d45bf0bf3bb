package quotation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-crm/meridian-crm/internal/platform/db"
	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// Repository persists quotations and their line items.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	Get(ctx context.Context, orgID, id int64) (*Quotation, error)
	GetByToken(ctx context.Context, token string) (*Quotation, error)
	List(ctx context.Context, req ListQuotationsRequest) ([]QuotationWithDetails, int, error)
	Create(ctx context.Context, q Quotation) (int64, error)
	Update(ctx context.Context, id int64, updates map[string]interface{}) error
	InsertItem(ctx context.Context, item LineItem) (int64, error)
	DeleteItems(ctx context.Context, quotationID int64) error
	UpdateStatus(ctx context.Context, id int64, from, to QuotationStatus, at time.Time) error
	GenerateNumber(ctx context.Context, orgID int64, date time.Time) (string, error)
	OrgsWithDueQuotations(ctx context.Context, now time.Time) ([]int64, error)
	ExpireDue(ctx context.Context, orgID int64, now time.Time) (int64, error)
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository constructs a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const quotationColumns = `
	id, org_id, number, title, contact_id, owner_id, account_manager_id,
	currency, discount_percent, tax_percent, charges,
	subtotal, discount_amount, tax_amount, total, amount_in_words, total_is_manual_override,
	issue_date, valid_until, status, public_access_token,
	template_id, logo_url, signature_url, payment_terms, terms_and_conditions, notes,
	sent_at, decided_at, created_at, updated_at`

func (r *repository) Get(ctx context.Context, orgID, id int64) (*Quotation, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM quotations WHERE org_id = $1 AND id = $2
	`, quotationColumns), orgID, id)
	q, err := scanQuotation(row)
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (r *repository) GetByToken(ctx context.Context, token string) (*Quotation, error) {
	row := r.db.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM quotations WHERE public_access_token = $1
	`, quotationColumns), token)
	q, err := scanQuotation(row)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrTokenNotFound
		}
		return nil, err
	}
	if err := r.loadItems(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (r *repository) loadItems(ctx context.Context, q *Quotation) error {
	rows, err := r.db.Query(ctx, `
		SELECT id, quotation_id, name, description, quantity, unit_price,
		       discount_percent, tax_percent, total, position
		FROM quotation_items WHERE quotation_id = $1 ORDER BY position, id
	`, q.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item LineItem
		if err := rows.Scan(
			&item.ID, &item.QuotationID, &item.Name, &item.Description,
			&item.Quantity, &item.UnitPrice, &item.DiscountPercent,
			&item.TaxPercent, &item.Total, &item.Position,
		); err != nil {
			return err
		}
		q.Items = append(q.Items, item)
	}
	return rows.Err()
}

// listQuotationsSelect joins the contact and owner display names. The joined
// columns must stay in step with the contacts/users schema.
const listQuotationsSelect = `
		SELECT q.id, q.org_id, q.number, q.title, q.contact_id, q.owner_id,
		       q.currency, q.total, q.issue_date, q.valid_until, q.status,
		       q.created_at, q.updated_at,
		       c.name AS contact_name,
		       u.name AS owner_name
		FROM quotations q
		JOIN contacts c ON q.contact_id = c.id
		JOIN users u ON q.owner_id = u.id`

func (r *repository) List(ctx context.Context, req ListQuotationsRequest) ([]QuotationWithDetails, int, error) {
	conditions := []string{"q.org_id = $1"}
	args := []interface{}{req.OrgID}
	argPos := 2

	if req.ContactID != nil {
		conditions = append(conditions, fmt.Sprintf("q.contact_id = $%d", argPos))
		args = append(args, *req.ContactID)
		argPos++
	}
	if req.Status != nil {
		conditions = append(conditions, fmt.Sprintf("q.status = $%d", argPos))
		args = append(args, *req.Status)
		argPos++
	}
	if req.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("q.issue_date >= $%d", argPos))
		args = append(args, *req.DateFrom)
		argPos++
	}
	if req.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("q.issue_date <= $%d", argPos))
		args = append(args, *req.DateTo)
		argPos++
	}

	whereClause := "WHERE " + conditions[0]
	for i := 1; i < len(conditions); i++ {
		whereClause += " AND " + conditions[i]
	}

	var total int
	if err := r.db.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM quotations q %s", whereClause), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(`
		%s
		%s
		ORDER BY q.issue_date DESC, q.id DESC
		LIMIT $%d OFFSET $%d
	`, listQuotationsSelect, whereClause, argPos, argPos+1)
	args = append(args, req.Limit, req.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []QuotationWithDetails
	for rows.Next() {
		var q QuotationWithDetails
		if err := rows.Scan(
			&q.ID, &q.OrgID, &q.Number, &q.Title, &q.ContactID, &q.OwnerID,
			&q.Currency, &q.Total, &q.IssueDate, &q.ValidUntil, &q.Status,
			&q.CreatedAt, &q.UpdatedAt,
			&q.ContactName, &q.OwnerName,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, q)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, q Quotation) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotations (
			org_id, number, title, contact_id, owner_id, account_manager_id,
			currency, discount_percent, tax_percent, charges,
			subtotal, discount_amount, tax_amount, total, amount_in_words, total_is_manual_override,
			issue_date, valid_until, status, public_access_token,
			template_id, logo_url, signature_url, payment_terms, terms_and_conditions, notes,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26,
			NOW(), NOW()
		) RETURNING id
	`,
		q.OrgID, q.Number, q.Title, q.ContactID, q.OwnerID, q.AccountManagerID,
		q.Currency, q.DiscountPercent, q.TaxPercent, q.Charges,
		q.Subtotal, q.DiscountAmount, q.TaxAmount, q.Total, q.AmountInWords, q.TotalIsManualOverride,
		q.IssueDate, q.ValidUntil, q.Status, q.PublicAccessToken,
		q.TemplateID, q.LogoURL, q.SignatureURL, q.PaymentTerms, q.TermsAndConditions, q.Notes,
	).Scan(&id)
	return id, err
}

// Update applies a partial column update keyed by column name, the same
// shape the service builds from an UpdateQuotationRequest.
func (r *repository) Update(ctx context.Context, id int64, updates map[string]interface{}) error {
	query := "UPDATE quotations SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{
		"title", "contact_id", "account_manager_id", "issue_date", "valid_until",
		"discount_percent", "tax_percent", "charges",
		"subtotal", "discount_amount", "tax_amount", "total", "amount_in_words", "total_is_manual_override",
		"template_id", "logo_url", "signature_url", "payment_terms", "terms_and_conditions", "notes",
	} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	_, err := r.db.Exec(ctx, query, args...)
	return err
}

func (r *repository) InsertItem(ctx context.Context, item LineItem) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO quotation_items (
			quotation_id, name, description, quantity, unit_price,
			discount_percent, tax_percent, total, position
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`,
		item.QuotationID, item.Name, item.Description, item.Quantity, item.UnitPrice,
		item.DiscountPercent, item.TaxPercent, item.Total, item.Position,
	).Scan(&id)
	return id, err
}

func (r *repository) DeleteItems(ctx context.Context, quotationID int64) error {
	_, err := r.db.Exec(ctx, `DELETE FROM quotation_items WHERE quotation_id = $1`, quotationID)
	return err
}

// UpdateStatus performs a compare-and-set transition: the row only changes if
// it still holds the expected source status, so two racing transitions cannot
// both succeed.
func (r *repository) UpdateStatus(ctx context.Context, id int64, from, to QuotationStatus, at time.Time) error {
	var query string
	args := []interface{}{id, from, to}
	switch to {
	case StatusSent:
		query = `UPDATE quotations SET status = $3, sent_at = COALESCE(sent_at, $4), decided_at = NULL, updated_at = NOW()
			WHERE id = $1 AND status = $2`
		args = append(args, at)
	case StatusApproved, StatusRejected:
		query = `UPDATE quotations SET status = $3, decided_at = $4, updated_at = NOW()
			WHERE id = $1 AND status = $2`
		args = append(args, at)
	default:
		query = `UPDATE quotations SET status = $3, updated_at = NOW()
			WHERE id = $1 AND status = $2`
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrInvalidTransition
	}
	return nil
}

// GenerateNumber produces the next org-scoped document number, QT-YYMM-NNNN.
func (r *repository) GenerateNumber(ctx context.Context, orgID int64, date time.Time) (string, error) {
	var seq int64
	period := date.Format("200601")
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_sequences (org_id, doc_type, period, seq)
		VALUES ($1, $2, $3, 1)
		ON CONFLICT (org_id, doc_type, period)
		DO UPDATE SET seq = document_sequences.seq + 1
		RETURNING seq
	`, orgID, "QT", period).Scan(&seq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("QT-%s-%04d", date.Format("0601"), seq), nil
}

func (r *repository) OrgsWithDueQuotations(ctx context.Context, now time.Time) ([]int64, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT org_id FROM quotations
		WHERE status = $1 AND valid_until < $2::date
	`, StatusSent, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orgs []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		orgs = append(orgs, id)
	}
	return orgs, rows.Err()
}

// ExpireDue persists the derived expiry for one organisation's overdue SENT
// quotations. The status predicate makes the sweep safe against a concurrent
// approval: a row that moved on is simply skipped.
func (r *repository) ExpireDue(ctx context.Context, orgID int64, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE quotations SET status = $3, updated_at = NOW()
		WHERE org_id = $1 AND status = $2 AND valid_until < $4::date
	`, orgID, StatusSent, StatusExpired, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanQuotation(row pgx.Row) (*Quotation, error) {
	var q Quotation
	err := row.Scan(
		&q.ID, &q.OrgID, &q.Number, &q.Title, &q.ContactID, &q.OwnerID, &q.AccountManagerID,
		&q.Currency, &q.DiscountPercent, &q.TaxPercent, &q.Charges,
		&q.Subtotal, &q.DiscountAmount, &q.TaxAmount, &q.Total, &q.AmountInWords, &q.TotalIsManualOverride,
		&q.IssueDate, &q.ValidUntil, &q.Status, &q.PublicAccessToken,
		&q.TemplateID, &q.LogoURL, &q.SignatureURL, &q.PaymentTerms, &q.TermsAndConditions, &q.Notes,
		&q.SentAt, &q.DecidedAt, &q.CreatedAt, &q.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

package templates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-crm/meridian-crm/internal/platform/db"
	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// Repository persists quotation templates.
type Repository interface {
	Get(ctx context.Context, orgID, id int64) (*Template, error)
	GetDefault(ctx context.Context, orgID int64) (*Template, error)
	List(ctx context.Context, orgID int64) ([]Template, error)
	Count(ctx context.Context, orgID int64) (int, error)
	Create(ctx context.Context, t Template) (int64, error)
	Update(ctx context.Context, t Template) error
	SetDefault(ctx context.Context, orgID, id int64) error
	Delete(ctx context.Context, orgID, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const templateColumns = `id, org_id, name, description, layout, styles, is_default, created_at, updated_at`

func (r *repository) Get(ctx context.Context, orgID, id int64) (*Template, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM quotation_templates WHERE org_id = $1 AND id = $2
	`, templateColumns), orgID, id)
	return scanTemplate(row)
}

func (r *repository) GetDefault(ctx context.Context, orgID int64) (*Template, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM quotation_templates WHERE org_id = $1 AND is_default
	`, templateColumns), orgID)
	return scanTemplate(row)
}

func (r *repository) List(ctx context.Context, orgID int64) ([]Template, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s FROM quotation_templates WHERE org_id = $1 ORDER BY is_default DESC, name
	`, templateColumns), orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *repository) Count(ctx context.Context, orgID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM quotation_templates WHERE org_id = $1`, orgID).Scan(&n)
	return n, err
}

func (r *repository) Create(ctx context.Context, t Template) (int64, error) {
	layout, err := json.Marshal(t.Layout)
	if err != nil {
		return 0, fmt.Errorf("marshal layout: %w", err)
	}
	styles, err := json.Marshal(t.Styles)
	if err != nil {
		return 0, fmt.Errorf("marshal styles: %w", err)
	}

	var id int64
	err = r.pool.QueryRow(ctx, `
		INSERT INTO quotation_templates (org_id, name, description, layout, styles, is_default, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING id
	`, t.OrgID, t.Name, t.Description, layout, styles, t.IsDefault).Scan(&id)
	if err != nil {
		if isDefaultUniqueViolation(err) {
			return 0, shared.ErrDefaultTemplateConflict
		}
		return 0, err
	}
	return id, nil
}

func (r *repository) Update(ctx context.Context, t Template) error {
	layout, err := json.Marshal(t.Layout)
	if err != nil {
		return fmt.Errorf("marshal layout: %w", err)
	}
	styles, err := json.Marshal(t.Styles)
	if err != nil {
		return fmt.Errorf("marshal styles: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE quotation_templates
		SET name = $3, description = $4, layout = $5, styles = $6, updated_at = NOW()
		WHERE org_id = $1 AND id = $2
	`, t.OrgID, t.ID, t.Name, t.Description, layout, styles)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrTemplateNotFound
	}
	return nil
}

// SetDefault flips the default flag inside one serializable transaction so a
// failure partway can never leave zero or two defaults. A concurrent flip is
// reported as shared.ErrDefaultTemplateConflict for the caller to retry.
func (r *repository) SetDefault(ctx context.Context, orgID, id int64) error {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			UPDATE quotation_templates SET is_default = FALSE, updated_at = NOW()
			WHERE org_id = $1 AND is_default
		`, orgID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			UPDATE quotation_templates SET is_default = TRUE, updated_at = NOW()
			WHERE org_id = $1 AND id = $2
		`, orgID, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return shared.ErrTemplateNotFound
		}
		return nil
	})
	if err != nil {
		if isDefaultUniqueViolation(err) || isSerializationFailure(err) {
			return shared.ErrDefaultTemplateConflict
		}
		return err
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, orgID, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM quotation_templates WHERE org_id = $1 AND id = $2 AND NOT is_default
	`, orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrTemplateNotFound
	}
	return nil
}

func scanTemplate(row pgx.Row) (*Template, error) {
	var t Template
	var layout, styles []byte
	err := row.Scan(&t.ID, &t.OrgID, &t.Name, &t.Description, &layout, &styles, &t.IsDefault, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrTemplateNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(layout, &t.Layout); err != nil {
		return nil, fmt.Errorf("unmarshal layout: %w", err)
	}
	if err := json.Unmarshal(styles, &t.Styles); err != nil {
		return nil, fmt.Errorf("unmarshal styles: %w", err)
	}
	return &t, nil
}

// The partial unique index on (org_id) WHERE is_default backs the
// single-default invariant at the storage layer.
func isDefaultUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "40001"
}

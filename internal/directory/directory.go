package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-crm/meridian-crm/internal/compose"
	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// Resolver reads parties out of the CRM tables the engine does not own.
// Contacts, users and organisation settings are maintained elsewhere; the
// engine only needs their display fields at composition time.
type Resolver struct {
	pool *pgxpool.Pool
}

// NewResolver constructs a Resolver.
func NewResolver(pool *pgxpool.Pool) *Resolver {
	return &Resolver{pool: pool}
}

// Contact loads a CRM contact as a document party.
func (r *Resolver) Contact(ctx context.Context, orgID, contactID int64) (*compose.Party, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT name, COALESCE(company_name, ''), COALESCE(email, ''),
		       COALESCE(phone, ''), COALESCE(address, '')
		FROM contacts
		WHERE org_id = $1 AND id = $2
	`, orgID, contactID)

	var p compose.Party
	if err := row.Scan(&p.Name, &p.CompanyName, &p.Email, &p.Phone, &p.Address); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("load contact: %w", err)
	}
	return &p, nil
}

// Person loads an internal user as a document party.
func (r *Resolver) Person(ctx context.Context, orgID, userID int64) (*compose.Party, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT name, COALESCE(email, ''), COALESCE(phone, '')
		FROM users
		WHERE org_id = $1 AND id = $2
	`, orgID, userID)

	var p compose.Party
	if err := row.Scan(&p.Name, &p.Email, &p.Phone); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &p, nil
}

// Organization loads the issuing organisation's letterhead settings.
func (r *Resolver) Organization(ctx context.Context, orgID int64) (*compose.Organization, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT name, COALESCE(address, ''), COALESCE(email, ''), COALESCE(phone, ''),
		       COALESCE(contact_name, ''), COALESCE(logo_url, ''), COALESCE(signature_url, '')
		FROM organizations
		WHERE id = $1
	`, orgID)

	var org compose.Organization
	if err := row.Scan(&org.Name, &org.Address, &org.Email, &org.Phone,
		&org.ContactName, &org.LogoURL, &org.SignatureURL); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("load organization: %w", err)
	}
	return &org, nil
}

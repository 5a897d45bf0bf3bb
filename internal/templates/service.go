package templates

import (
	"context"
	"fmt"

	"github.com/meridian-crm/meridian-crm/internal/shared"
)

// Service owns the template registry rules, most importantly the
// single-default invariant.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create stores a new template. The organisation's first template is forced
// to be the default regardless of the request.
func (s *Service) Create(ctx context.Context, orgID int64, req CreateTemplateRequest) (*Template, error) {
	count, err := s.repo.Count(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("count templates: %w", err)
	}

	t := Template{
		OrgID:       orgID,
		Name:        req.Name,
		Description: req.Description,
		Layout:      normaliseLayout(req.Layout),
		Styles:      req.Styles,
		IsDefault:   count == 0,
	}

	id, err := s.repo.Create(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}
	if count > 0 && req.IsDefault {
		if err := s.repo.SetDefault(ctx, orgID, id); err != nil {
			return nil, fmt.Errorf("set default on create: %w", err)
		}
	}
	return s.repo.Get(ctx, orgID, id)
}

// Update replaces the mutable fields of an existing template.
func (s *Service) Update(ctx context.Context, orgID, id int64, req UpdateTemplateRequest) (*Template, error) {
	existing, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		existing.Name = *req.Name
	}
	if req.Description != nil {
		existing.Description = *req.Description
	}
	if req.Layout != nil {
		existing.Layout = normaliseLayout(*req.Layout)
	}
	if req.Styles != nil {
		existing.Styles = *req.Styles
	}
	if err := s.repo.Update(ctx, *existing); err != nil {
		return nil, fmt.Errorf("update template: %w", err)
	}
	return s.repo.Get(ctx, orgID, id)
}

// SetDefault atomically moves the default flag to the target template.
func (s *Service) SetDefault(ctx context.Context, orgID, id int64) error {
	if _, err := s.repo.Get(ctx, orgID, id); err != nil {
		return err
	}
	return s.repo.SetDefault(ctx, orgID, id)
}

// Delete removes a template. Deleting the current default is forbidden.
func (s *Service) Delete(ctx context.Context, orgID, id int64) error {
	existing, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return err
	}
	if existing.IsDefault {
		return shared.ErrCannotDeleteDefault
	}
	return s.repo.Delete(ctx, orgID, id)
}

// Duplicate copies a template under a "(Copy)" name. The copy is never the
// default.
func (s *Service) Duplicate(ctx context.Context, orgID, id int64) (*Template, error) {
	existing, err := s.repo.Get(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	copyTpl := *existing
	copyTpl.ID = 0
	copyTpl.Name = existing.Name + " (Copy)"
	copyTpl.IsDefault = false

	newID, err := s.repo.Create(ctx, copyTpl)
	if err != nil {
		return nil, fmt.Errorf("duplicate template: %w", err)
	}
	return s.repo.Get(ctx, orgID, newID)
}

// Get fetches one template.
func (s *Service) Get(ctx context.Context, orgID, id int64) (*Template, error) {
	return s.repo.Get(ctx, orgID, id)
}

// List fetches all templates of an organisation, default first.
func (s *Service) List(ctx context.Context, orgID int64) ([]Template, error) {
	return s.repo.List(ctx, orgID)
}

// Resolve picks the template a quotation renders with: its explicit choice,
// or the organisation default when none is set. A missing template is an
// error, never a silent fallback to a hard-coded layout.
func (s *Service) Resolve(ctx context.Context, orgID int64, templateID *int64) (*Template, error) {
	if templateID != nil {
		return s.repo.Get(ctx, orgID, *templateID)
	}
	return s.repo.GetDefault(ctx, orgID)
}

func normaliseLayout(l Layout) Layout {
	if l.Mode == "" {
		l.Mode = LayoutModeStructured
	}
	return l
}

package templates

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-crm/meridian-crm/internal/shared"
)

type mockRepository struct {
	templates map[int64]*Template
	nextID    int64

	setDefaultErr error
}

func newMockRepository() *mockRepository {
	return &mockRepository{templates: make(map[int64]*Template), nextID: 1}
}

func (m *mockRepository) Get(_ context.Context, orgID, id int64) (*Template, error) {
	t, ok := m.templates[id]
	if !ok || t.OrgID != orgID {
		return nil, shared.ErrTemplateNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *mockRepository) GetDefault(_ context.Context, orgID int64) (*Template, error) {
	for _, t := range m.templates {
		if t.OrgID == orgID && t.IsDefault {
			cp := *t
			return &cp, nil
		}
	}
	return nil, shared.ErrTemplateNotFound
}

func (m *mockRepository) List(_ context.Context, orgID int64) ([]Template, error) {
	var out []Template
	for _, t := range m.templates {
		if t.OrgID == orgID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *mockRepository) Count(_ context.Context, orgID int64) (int, error) {
	n := 0
	for _, t := range m.templates {
		if t.OrgID == orgID {
			n++
		}
	}
	return n, nil
}

func (m *mockRepository) Create(_ context.Context, t Template) (int64, error) {
	t.ID = m.nextID
	m.nextID++
	m.templates[t.ID] = &t
	return t.ID, nil
}

func (m *mockRepository) Update(_ context.Context, t Template) error {
	if _, ok := m.templates[t.ID]; !ok {
		return shared.ErrTemplateNotFound
	}
	m.templates[t.ID] = &t
	return nil
}

func (m *mockRepository) SetDefault(_ context.Context, orgID, id int64) error {
	if m.setDefaultErr != nil {
		return m.setDefaultErr
	}
	target, ok := m.templates[id]
	if !ok || target.OrgID != orgID {
		return shared.ErrTemplateNotFound
	}
	for _, t := range m.templates {
		if t.OrgID == orgID {
			t.IsDefault = false
		}
	}
	target.IsDefault = true
	return nil
}

func (m *mockRepository) Delete(_ context.Context, orgID, id int64) error {
	t, ok := m.templates[id]
	if !ok || t.OrgID != orgID || t.IsDefault {
		return shared.ErrTemplateNotFound
	}
	delete(m.templates, id)
	return nil
}

func (m *mockRepository) defaultCount(orgID int64) int {
	n := 0
	for _, t := range m.templates {
		if t.OrgID == orgID && t.IsDefault {
			n++
		}
	}
	return n
}

func TestCreateFirstTemplateForcedDefault(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	tpl, err := svc.Create(context.Background(), 1, CreateTemplateRequest{Name: "Modern", IsDefault: false})
	require.NoError(t, err)

	assert.True(t, tpl.IsDefault, "first template must become the default")
	assert.Equal(t, LayoutModeStructured, tpl.Layout.Mode, "empty mode normalises to structured")
}

func TestCreateSubsequentTemplateNotDefault(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), 1, CreateTemplateRequest{Name: "A"})
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), 1, CreateTemplateRequest{Name: "B"})
	require.NoError(t, err)

	assert.False(t, second.IsDefault)
	assert.Equal(t, 1, repo.defaultCount(1))
}

func TestSetDefaultMovesFlagAtomically(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	a, err := svc.Create(ctx, 1, CreateTemplateRequest{Name: "A"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, 1, CreateTemplateRequest{Name: "B"})
	require.NoError(t, err)

	require.NoError(t, svc.SetDefault(ctx, 1, b.ID))

	refreshedA, err := svc.Get(ctx, 1, a.ID)
	require.NoError(t, err)
	refreshedB, err := svc.Get(ctx, 1, b.ID)
	require.NoError(t, err)

	assert.False(t, refreshedA.IsDefault)
	assert.True(t, refreshedB.IsDefault)
	assert.Equal(t, 1, repo.defaultCount(1))
}

func TestSetDefaultConflictPropagates(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	a, err := svc.Create(ctx, 1, CreateTemplateRequest{Name: "A"})
	require.NoError(t, err)

	repo.setDefaultErr = shared.ErrDefaultTemplateConflict
	err = svc.SetDefault(ctx, 1, a.ID)
	require.ErrorIs(t, err, shared.ErrDefaultTemplateConflict)
}

func TestDeleteDefaultForbidden(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	a, err := svc.Create(ctx, 1, CreateTemplateRequest{Name: "A"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, 1, CreateTemplateRequest{Name: "B"})
	require.NoError(t, err)
	require.NoError(t, svc.SetDefault(ctx, 1, b.ID))

	err = svc.Delete(ctx, 1, b.ID)
	require.ErrorIs(t, err, shared.ErrCannotDeleteDefault)

	// The former default is deletable once the flag has moved.
	require.NoError(t, svc.Delete(ctx, 1, a.ID))
}

func TestDuplicateCopiesEverythingButIdentity(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	orig, err := svc.Create(ctx, 1, CreateTemplateRequest{
		Name:        "Classic",
		Description: "Blue header",
		Layout: Layout{Mode: LayoutModeFreeform, Sections: []Section{
			{Key: "intro", Body: "Hello {{company_name}}", Visible: true, Position: 1},
		}},
		Styles: Styles{PrimaryColor: "#003366", FontFamily: "Georgia"},
	})
	require.NoError(t, err)
	require.True(t, orig.IsDefault)

	dup, err := svc.Duplicate(ctx, 1, orig.ID)
	require.NoError(t, err)

	assert.NotEqual(t, orig.ID, dup.ID)
	assert.Equal(t, "Classic (Copy)", dup.Name)
	assert.False(t, dup.IsDefault, "a duplicate is never the default")
	assert.Equal(t, orig.Layout, dup.Layout)
	assert.Equal(t, orig.Styles, dup.Styles)
	assert.Equal(t, orig.Description, dup.Description)
	assert.Equal(t, 1, repo.defaultCount(1))
}

func TestResolveExplicitThenDefault(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	ctx := context.Background()

	def, err := svc.Create(ctx, 1, CreateTemplateRequest{Name: "Default"})
	require.NoError(t, err)
	other, err := svc.Create(ctx, 1, CreateTemplateRequest{Name: "Other"})
	require.NoError(t, err)

	resolved, err := svc.Resolve(ctx, 1, &other.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, resolved.ID)

	resolved, err = svc.Resolve(ctx, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, def.ID, resolved.ID)

	missing := int64(999)
	_, err = svc.Resolve(ctx, 1, &missing)
	require.ErrorIs(t, err, shared.ErrTemplateNotFound)
}

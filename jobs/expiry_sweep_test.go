package jobs

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-crm/meridian-crm/internal/quotation"
)

// sweepRepo stubs just the two repository calls the sweep makes.
type sweepRepo struct {
	quotation.Repository

	mu      sync.Mutex
	due     []int64
	expired []int64
	failOrg int64
}

func (r *sweepRepo) OrgsWithDueQuotations(_ context.Context, _ time.Time) ([]int64, error) {
	return r.due, nil
}

func (r *sweepRepo) ExpireDue(_ context.Context, orgID int64, _ time.Time) (int64, error) {
	if r.failOrg != 0 && orgID == r.failOrg {
		return 0, errors.New("boom")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expired = append(r.expired, orgID)
	return 1, nil
}

func TestSweepExpiresEveryDueOrg(t *testing.T) {
	repo := &sweepRepo{due: []int64{1, 2, 3, 4, 5}}

	err := SweepExpiredQuotations(context.Background(), repo, nil, time.Now())
	require.NoError(t, err)

	sort.Slice(repo.expired, func(i, j int) bool { return repo.expired[i] < repo.expired[j] })
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, repo.expired)
}

func TestSweepNoDueOrgs(t *testing.T) {
	repo := &sweepRepo{}
	assert.NoError(t, SweepExpiredQuotations(context.Background(), repo, nil, time.Now()))
}

func TestSweepPropagatesFailure(t *testing.T) {
	repo := &sweepRepo{due: []int64{1, 2}, failOrg: 2}
	assert.Error(t, SweepExpiredQuotations(context.Background(), repo, nil, time.Now()))
}

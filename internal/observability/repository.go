package observability

import (
	"context"
	"errors"

	"github.com/talx-hub/gopher-users/internal/model/user"
	"github.com/talx-hub/gopher-users/internal/serviceerrs"
)

const (
	resultOK       = "ok"
	resultMiss     = "miss"
	resultNotFound = "not_found"
	resultConflict = "conflict"
	resultError    = "error"
)

// InstrumentedRepository counts the outcome of every store operation and
// delegates the work to the wrapped repository unchanged.
type InstrumentedRepository struct {
	next    user.Repository
	metrics *Metrics
}

func NewInstrumentedRepository(next user.Repository, m *Metrics) *InstrumentedRepository {
	return &InstrumentedRepository{
		next:    next,
		metrics: m,
	}
}

func (r *InstrumentedRepository) Insert(ctx context.Context, u *user.User) (int64, error) {
	id, err := r.next.Insert(ctx, u)
	r.observe("insert", err)
	return id, err //nolint: wrapcheck // decorator must not change errors
}

func (r *InstrumentedRepository) GetByID(ctx context.Context, id int64) (*user.User, error) {
	u, err := r.next.GetByID(ctx, id)
	r.observeLookup("get_by_id", u, err)
	return u, err //nolint: wrapcheck // decorator must not change errors
}

func (r *InstrumentedRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	u, err := r.next.GetByEmail(ctx, email)
	r.observeLookup("get_by_email", u, err)
	return u, err //nolint: wrapcheck // decorator must not change errors
}

func (r *InstrumentedRepository) Update(ctx context.Context, u *user.User) error {
	err := r.next.Update(ctx, u)
	r.observe("update", err)
	return err //nolint: wrapcheck // decorator must not change errors
}

func (r *InstrumentedRepository) Delete(ctx context.Context, id int64) error {
	err := r.next.Delete(ctx, id)
	r.observe("delete", err)
	return err //nolint: wrapcheck // decorator must not change errors
}

func (r *InstrumentedRepository) observeLookup(op string, u *user.User, err error) {
	if err == nil && u == nil {
		r.metrics.StoreOperationsTotal.WithLabelValues(op, resultMiss).Inc()
		return
	}
	r.observe(op, err)
}

func (r *InstrumentedRepository) observe(op string, err error) {
	r.metrics.StoreOperationsTotal.WithLabelValues(op, result(err)).Inc()
}

func result(err error) string {
	switch {
	case err == nil:
		return resultOK
	case errors.Is(err, serviceerrs.ErrNotFound):
		return resultNotFound
	case errors.Is(err, serviceerrs.ErrAlreadyExists):
		return resultConflict
	default:
		return resultError
	}
}

package auditmock

import (
	"context"
	"errors"

	domain "credit-ledger/internal/domain/audit"
)

var _ domain.Repository = (*Repo)(nil)

var ErrAuditDown = errors.New("auditmock: audit store unavailable")

// Repo is a function-backed mock that satisfies audit.Repository.
// Unset functions succeed and record nothing.
type Repo struct {
	AppendFn       func(ctx context.Context, l *domain.Log) error
	ListByEntityFn func(ctx context.Context, entityType, entityID string) ([]domain.Log, error)
}

// Failing returns a repo whose every append fails with ErrAuditDown.
func Failing() *Repo {
	return &Repo{AppendFn: func(context.Context, *domain.Log) error { return ErrAuditDown }}
}

func (m *Repo) Append(ctx context.Context, l *domain.Log) error {
	if m.AppendFn != nil {
		return m.AppendFn(ctx, l)
	}
	return nil
}

func (m *Repo) ListByEntity(ctx context.Context, entityType, entityID string) ([]domain.Log, error) {
	if m.ListByEntityFn != nil {
		return m.ListByEntityFn(ctx, entityType, entityID)
	}
	return nil, nil
}

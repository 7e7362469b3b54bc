package queries

import (
	"context"

	"github.com/google/uuid"

	"affiliate-notify/internal/domain/request"
	"affiliate-notify/internal/infra"
	"affiliate-notify/internal/pkg/errs"
)

var (
	ErrUserNotFound = errs.New("user not found")
	ErrUserInactive = errs.New("user inactive")
)

type UserQueries interface {
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*CurrentUserView, error)
}

type UserReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*AuthorizedUserView, error)
	FindByEmail(ctx context.Context, email string) (*AuthorizedUserView, string, error)
}

type userQueriesImpl struct {
	users    UserReadStore
	requests RequestReadStore
}

func NewUserQueries(users UserReadStore, requests RequestReadStore) UserQueries {
	return &userQueriesImpl{
		users:    users,
		requests: requests,
	}
}

// GetCurrentUser loads an active account and counts its open and fulfilled
// requests. Curators usually have none of their own and see zeros.
func (q *userQueriesImpl) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*CurrentUserView, error) {
	account, err := q.users.FindByID(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !account.IsActive {
		return nil, ErrUserInactive
	}

	counts, err := q.requests.CountByUser(ctx, userID)
	if err != nil {
		return nil, errs.Wrap(err, "failed to count requests")
	}

	return &CurrentUserView{
		AuthorizedUserView: account,
		OpenRequests:       counts[request.StatusActive.String()],
		FulfilledRequests:  counts[request.StatusFulfilled.String()],
	}, nil
}

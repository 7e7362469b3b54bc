package repository

import (
	"context"

	"affiliate-notify/internal/domain/user"
	"affiliate-notify/internal/infra"
	"affiliate-notify/internal/infra/repository/converter"
	"affiliate-notify/internal/infra/sqlstore"

	"github.com/google/uuid"
)

type UserWriteQueries interface {
	CreateUser(ctx context.Context, db sqlstore.DBTX, arg sqlstore.CreateUserParams) (sqlstore.Users, error)
	UpdateUserLastLogin(ctx context.Context, db sqlstore.DBTX, id uuid.UUID) error
}

type UserRepository struct {
	queries UserWriteQueries
	db      sqlstore.DBTX
}

func NewUserRepository(queries UserWriteQueries, db sqlstore.DBTX) *UserRepository {
	return &UserRepository{
		queries: queries,
		db:      db,
	}
}

func (r *UserRepository) Create(ctx context.Context, tx sqlstore.DBTX, u *user.User) (uuid.UUID, error) {
	row, err := r.queries.CreateUser(ctx, tx, converter.UserToCreateParams(u))
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to create user", err)
	}
	return row.ID, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, tx sqlstore.DBTX, userID uuid.UUID) error {
	if err := r.queries.UpdateUserLastLogin(ctx, tx, userID); err != nil {
		return infra.WrapRepoErr("failed to update user last login", err)
	}
	return nil
}

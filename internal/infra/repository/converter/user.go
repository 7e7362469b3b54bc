package converter

import (
	"affiliate-notify/internal/domain/user"
	"affiliate-notify/internal/infra/sqlstore"
)

func UserToCreateParams(u *user.User) sqlstore.CreateUserParams {
	return sqlstore.CreateUserParams{
		ID:           u.ID(),
		Email:        u.Email().Value(),
		PasswordHash: u.PasswordHash(),
		Role:         u.Role().String(),
		IsActive:     u.IsActive(),
	}
}

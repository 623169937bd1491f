//go:build unit || e2e

package builder

import (
	"cinema-booking/internal/domain/user"
	"cinema-booking/internal/usecase/queries"

	"github.com/google/uuid"
)

// UserBuilder produces accounts in the three shapes the tests need: a domain
// user, the authorized view the auth layer reads, and a request actor.
type UserBuilder struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Role         user.Role
	IsActive     bool
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		ID:           uuid.New(),
		Email:        "holder@example.com",
		PasswordHash: "$2a$10$placeholderplaceholderplaceholderplaceholderpl",
		Role:         user.RoleCustomer,
		IsActive:     true,
	}
}

func (u *UserBuilder) With(mutate func(*UserBuilder)) *UserBuilder {
	mutate(u)
	return u
}

func (u *UserBuilder) WithEmail(email string) *UserBuilder {
	u.Email = email
	return u
}

func (u *UserBuilder) WithRole(role user.Role) *UserBuilder {
	u.Role = role
	return u
}

func (u *UserBuilder) AsOperator() *UserBuilder { return u.WithRole(user.RoleOperator) }
func (u *UserBuilder) AsAdmin() *UserBuilder    { return u.WithRole(user.RoleAdmin) }

func (u *UserBuilder) AsInactive() *UserBuilder {
	u.IsActive = false
	return u
}

func (u *UserBuilder) BuildDomain() (*user.User, error) {
	email, err := user.NewEmail(u.Email)
	if err != nil {
		return nil, err
	}
	role, err := user.NewRole(string(u.Role))
	if err != nil {
		return nil, err
	}
	return user.NewUser(email, u.PasswordHash, role), nil
}

func (u *UserBuilder) BuildReadModel() *queries.AuthorizedUserView {
	return &queries.AuthorizedUserView{
		ID:       u.ID,
		Email:    u.Email,
		Role:     string(u.Role),
		IsActive: u.IsActive,
	}
}

func (u *UserBuilder) BuildActor() user.Actor {
	return user.NewActor(u.ID, u.Role)
}

package usecase

import (
	"context"

	"civicsolve/internal/domain/entity"
)

// IdentityProvider creates sign-in identities for citizens who register with a password.
type IdentityProvider interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
}

// DepartmentRouter names the department a new complaint should be routed to.
type DepartmentRouter interface {
	Route(complaint *entity.Complaint) string
}

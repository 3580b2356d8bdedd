package firebase

import (
	"context"
	"errors"
	"strings"
)

const devTokenPrefix = "dev-"

var ErrInvalidDevToken = errors.New("invalid development token")

// DevTokenVerifier accepts "dev-<uid>" bearer tokens. It is only wired outside production
// when no Firebase project is configured.
type DevTokenVerifier struct{}

func NewDevTokenVerifier() *DevTokenVerifier {
	return &DevTokenVerifier{}
}

func DevToken(uid string) string {
	return devTokenPrefix + uid
}

func (DevTokenVerifier) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	uid := strings.TrimPrefix(token, devTokenPrefix)
	if uid == token || uid == "" {
		return nil, ErrInvalidDevToken
	}
	return &Identity{UID: uid}, nil
}

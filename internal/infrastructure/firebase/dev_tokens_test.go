package firebase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDevTokenVerifier(t *testing.T) {
	v := NewDevTokenVerifier()

	identity, err := v.VerifyToken(context.Background(), DevToken("user-1"))
	require.NoError(t, err)
	assert.Equal(t, "user-1", identity.UID)

	_, err = v.VerifyToken(context.Background(), "user-1")
	assert.ErrorIs(t, err, ErrInvalidDevToken)

	_, err = v.VerifyToken(context.Background(), "dev-")
	assert.ErrorIs(t, err, ErrInvalidDevToken)
}

func TestCredentialOption(t *testing.T) {
	assert.Len(t, CredentialOption(`{"type":"service_account"}`, "key.json"), 1)
	assert.Len(t, CredentialOption("", "key.json"), 1)
	assert.Empty(t, CredentialOption("", ""))
}

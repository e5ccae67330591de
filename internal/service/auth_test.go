package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkailive-dev/xkailive/shared/jwt"
)

func TestGuestLogin(t *testing.T) {
	svc := NewAuthService(jwt.New("test-secret", time.Hour))

	user, token, err := svc.GuestLogin("visitor", "https://cdn.example.com/a.png")
	require.NoError(t, err)

	assert.NotEmpty(t, user.Id)
	assert.Equal(t, "visitor", user.Name)
	assert.NotEmpty(t, token)

	// each guest gets a distinct identity
	user2, _, err := svc.GuestLogin("visitor", "")
	require.NoError(t, err)
	assert.NotEqual(t, user.Id, user2.Id)
}

func TestGuestLoginSanitizesName(t *testing.T) {
	svc := NewAuthService(jwt.New("test-secret", time.Hour))

	user, _, err := svc.GuestLogin("<b>bold</b> name", "")
	require.NoError(t, err)
	assert.Equal(t, "bold name", user.Name)

	_, _, err = svc.GuestLogin("<script>x</script>", "")
	assert.Error(t, err)
}

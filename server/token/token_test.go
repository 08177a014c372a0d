package token

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dekarrin/sentree/server/dao"
	"github.com/dekarrin/sentree/server/dao/inmem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func Test_Generate_Validate(t *testing.T) {
	ctx := context.Background()
	users := inmem.NewUsersRepository()
	user, err := users.Create(ctx, dao.User{Username: "admin", Password: "hash"})
	require.NoError(t, err)

	tok, err := Generate(testSecret, user)
	require.NoError(t, err)

	t.Run("valid token", func(t *testing.T) {
		got, err := Validate(ctx, tok, testSecret, users)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("wrong secret", func(t *testing.T) {
		_, err := Validate(ctx, tok, []byte("ffffffffffffffffffffffffffffffff"), users)
		assert.Error(t, err)
	})

	t.Run("unknown subject", func(t *testing.T) {
		_, err := Validate(ctx, tok, testSecret, inmem.NewUsersRepository())
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := Validate(ctx, "not.a.token", testSecret, users)
		assert.Error(t, err)
	})

	t.Run("revoked by logout", func(t *testing.T) {
		loggedOut := user
		loggedOut.LastLogoutTime = user.LastLogoutTime.Add(time.Minute)
		_, err := users.Update(ctx, user.ID, loggedOut)
		require.NoError(t, err)

		_, err = Validate(ctx, tok, testSecret, users)
		assert.Error(t, err)
	})
}

func Test_Get(t *testing.T) {
	testCases := []struct {
		name      string
		header    string
		expect    string
		expectErr bool
	}{
		{name: "bearer", header: "Bearer abc.def", expect: "abc.def"},
		{name: "lowercase scheme and spaces", header: "  bearer   abc.def ", expect: "abc.def"},
		{name: "missing", header: "", expectErr: true},
		{name: "basic scheme", header: "Basic YWRtaW46cGFzcw==", expectErr: true},
		{name: "no token", header: "Bearer", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			actual, err := Get(req)
			if tc.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expect, actual)
		})
	}
}

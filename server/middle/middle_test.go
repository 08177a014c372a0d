package middle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dekarrin/sentree/server/dao"
	"github.com/dekarrin/sentree/server/dao/inmem"
	"github.com/dekarrin/sentree/server/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func Test_Auth(t *testing.T) {
	users := inmem.NewUsersRepository()
	user, err := users.Create(context.Background(), dao.User{Username: "admin", Password: "hash"})
	require.NoError(t, err)
	tok, err := token.Generate(testSecret, user)
	require.NoError(t, err)
	otherTok, err := token.Generate([]byte("fedcba9876543210fedcba9876543210"), user)
	require.NoError(t, err)

	auth := Auth{Users: users, Secret: testSecret}

	testCases := []struct {
		name           string
		mw             Middleware
		authHeader     string
		expectStatus   int
		expectLoggedIn bool
	}{
		{name: "required, valid token", mw: auth.Required(), authHeader: "Bearer " + tok, expectStatus: http.StatusOK, expectLoggedIn: true},
		{name: "required, no token", mw: auth.Required(), expectStatus: http.StatusUnauthorized},
		{name: "required, bad token", mw: auth.Required(), authHeader: "Bearer nope", expectStatus: http.StatusUnauthorized},
		{name: "required, token signed with other secret", mw: auth.Required(), authHeader: "Bearer " + otherTok, expectStatus: http.StatusUnauthorized},
		{name: "required, not a bearer token", mw: auth.Required(), authHeader: "Basic " + tok, expectStatus: http.StatusUnauthorized},
		{name: "optional, valid token", mw: auth.Optional(), authHeader: "Bearer " + tok, expectStatus: http.StatusOK, expectLoggedIn: true},
		{name: "optional, no token", mw: auth.Optional(), expectStatus: http.StatusOK},
		{name: "optional, bad token", mw: auth.Optional(), authHeader: "Bearer nope", expectStatus: http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			var called bool
			var client Client
			next := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				called = true
				client = ClientFrom(req.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			w := httptest.NewRecorder()

			tc.mw(next).ServeHTTP(w, req)

			assert.Equal(tc.expectStatus, w.Code)
			assert.Equal(tc.expectStatus == http.StatusOK, called)
			assert.Equal(tc.expectLoggedIn, client.LoggedIn)
			if tc.expectLoggedIn {
				assert.Equal(user.ID, client.User.ID)
				assert.Equal(`user "admin"`, client.String())
			} else {
				assert.Equal(dao.User{}, client.User)
			}
		})
	}
}

func Test_ClientFrom_NoAuth(t *testing.T) {
	client := ClientFrom(context.Background())

	assert.False(t, client.LoggedIn)
	assert.Equal(t, "unauthed client", client.String())
}

package api

import (
	"net/http"
	"time"

	"github.com/dekarrin/sentree/server/dao"
	"github.com/dekarrin/sentree/server/middle"
	"github.com/dekarrin/sentree/server/result"
	"github.com/dekarrin/sentree/server/token"
)

// HTTPCreateToken returns a HandlerFunc that issues a fresh token to a client
// that already holds a valid one, without asking for credentials again. It
// must be behind middleware that requires auth.
func (api API) HTTPCreateToken() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCreateToken)
}

func (api API) epCreateToken(req *http.Request) result.Result {
	client := middle.ClientFrom(req.Context())
	if !client.LoggedIn {
		return result.Unauthorized("", "token refresh reached without auth")
	}

	return api.issueToken(client.User, "%s refreshed token", client)
}

// issueToken signs a new token for user and gives it as an HTTP-201. The
// internal message is formatted with args.
func (api API) issueToken(user dao.User, internalMsg string, args ...interface{}) result.Result {
	issued := time.Now()
	tok, err := token.Generate(api.Secret, user)
	if err != nil {
		return result.InternalServerError("could not generate JWT: %s", err.Error())
	}

	resp := TokenResponse{
		Token:   tok,
		UserID:  user.ID.String(),
		Expires: issued.Add(token.Lifetime).UTC().Format(time.RFC3339),
	}
	return result.Created(resp, append([]interface{}{internalMsg}, args...)...)
}

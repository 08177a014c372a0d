package api

import (
	"errors"
	"net/http"

	"github.com/dekarrin/sentree/server/middle"
	"github.com/dekarrin/sentree/server/result"
	"github.com/dekarrin/sentree/server/serr"
)

// HTTPCreateLogin returns a HandlerFunc that checks a username and password
// and issues a token for the account they belong to.
func (api API) HTTPCreateLogin() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epCreateLogin)
}

func (api API) epCreateLogin(req *http.Request) result.Result {
	loginData := LoginRequest{}
	err := parseJSON(req, &loginData)
	if err != nil {
		return result.BadRequest(err.Error(), err.Error())
	}

	if loginData.Username == "" {
		return result.BadRequest("username: property is empty or missing from request", "empty username")
	}
	if loginData.Password == "" {
		return result.BadRequest("password: property is empty or missing from request", "empty password")
	}

	user, err := api.Backend.Login(req.Context(), loginData.Username, loginData.Password)
	if err != nil {
		if errors.Is(err, serr.ErrBadCredentials) {
			return result.Unauthorized(serr.ErrBadCredentials.Error(), "user '%s': %s", loginData.Username, err.Error())
		}
		return result.InternalServerError(err.Error())
	}

	return api.issueToken(user, "user %q logged in", user.Username)
}

// HTTPDeleteLogin returns a HandlerFunc that logs out the user the client is
// logged in as, revoking every token issued to them. It must be behind
// middleware that requires auth.
func (api API) HTTPDeleteLogin() http.HandlerFunc {
	return httpEndpoint(api.UnauthDelay, api.epDeleteLogin)
}

func (api API) epDeleteLogin(req *http.Request) result.Result {
	client := middle.ClientFrom(req.Context())
	if !client.LoggedIn {
		return result.Unauthorized("", "logout reached without auth")
	}

	_, err := api.Backend.Logout(req.Context(), client.User.ID)
	if err != nil {
		if errors.Is(err, serr.ErrNotFound) {
			return result.NotFound()
		}
		return result.InternalServerError("could not log out user: " + err.Error())
	}

	return result.NoContent("%s logged out", client)
}

// Package middle has the HTTP middleware that works out which account, if
// any, made a request to the parse server.
package middle

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dekarrin/sentree/server/dao"
	"github.com/dekarrin/sentree/server/result"
	"github.com/dekarrin/sentree/server/token"
)

// Middleware wraps a handler in another that does something extra first.
type Middleware func(next http.Handler) http.Handler

type ctxKey int

const clientKey ctxKey = iota

// Client is who made a request.
type Client struct {
	// LoggedIn is whether the request carried a valid bearer token.
	LoggedIn bool

	// User is the account the token was issued to. It is the zero User if
	// LoggedIn is false.
	User dao.User
}

// String describes c for log messages.
func (c Client) String() string {
	if !c.LoggedIn {
		return "unauthed client"
	}
	return fmt.Sprintf("user %q", c.User.Username)
}

// ClientFrom returns the Client that Auth middleware stored in ctx. A context
// that never passed through Auth gives a Client that is not logged in.
func ClientFrom(ctx context.Context) Client {
	c, _ := ctx.Value(clientKey).(Client)
	return c
}

// Auth checks the bearer tokens of requests against the accounts in Users.
type Auth struct {
	Users  dao.UserRepository
	Secret []byte

	// Delay is waited before a request is refused for lacking a valid token.
	Delay time.Duration
}

// Required returns middleware that answers HTTP-401 to any request without a
// valid token and passes every other request on with its Client set.
func (a Auth) Required() Middleware {
	return a.middleware(true)
}

// Optional returns middleware that passes every request on, with its Client
// logged in only if it carried a valid token.
func (a Auth) Optional() Middleware {
	return a.middleware(false)
}

func (a Auth) middleware(required bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			client, err := a.identify(req)
			if err != nil && required {
				time.Sleep(a.Delay)
				result.Unauthorized("", "%s", err).WriteResponse(w)
				return
			}

			ctx := context.WithValue(req.Context(), clientKey, client)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}

// identify gives the Client a request's token was issued to. A missing,
// malformed, expired, or revoked token is an error.
func (a Auth) identify(req *http.Request) (Client, error) {
	tok, err := token.Get(req)
	if err != nil {
		return Client{}, err
	}

	user, err := token.Validate(req.Context(), tok, a.Secret, a.Users)
	if err != nil {
		return Client{}, err
	}
	return Client{LoggedIn: true, User: user}, nil
}

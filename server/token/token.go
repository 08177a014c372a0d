// Package token issues and checks the JWTs that authenticate API clients.
package token

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dekarrin/sentree/server/dao"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// Issuer is the iss claim of every token the server creates.
	Issuer = "sts"

	// Lifetime is how long a token is valid after it is issued.
	Lifetime = time.Hour
)

// Validate parses and checks tok and returns the user it was issued to. The
// token is only valid if it was signed with a key built from secret and the
// user's current password hash and logout time, so changing either revokes
// every token issued before.
func Validate(ctx context.Context, tok string, secret []byte, db dao.UserRepository) (dao.User, error) {
	var user dao.User

	_, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		// who is the user? we need this for further verification
		subj, err := t.Claims.GetSubject()
		if err != nil {
			return nil, fmt.Errorf("cannot get subject: %w", err)
		}

		id, err := uuid.Parse(subj)
		if err != nil {
			return nil, fmt.Errorf("cannot parse subject UUID: %w", err)
		}

		user, err = db.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, dao.ErrNotFound) {
				return nil, fmt.Errorf("subject does not exist")
			}
			return nil, fmt.Errorf("subject could not be validated")
		}

		return signingKey(secret, user), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(Issuer), jwt.WithLeeway(time.Minute))

	if err != nil {
		return dao.User{}, err
	}

	return user, nil
}

// Get returns the bearer token in the Authorization header of req.
func Get(req *http.Request) (string, error) {
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))

	if authHeader == "" {
		return "", fmt.Errorf("no authorization header present")
	}

	authParts := strings.SplitN(authHeader, " ", 2)
	if len(authParts) != 2 {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	scheme := strings.TrimSpace(strings.ToLower(authParts[0]))
	token := strings.TrimSpace(authParts[1])

	if scheme != "bearer" {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	return token, nil
}

// Generate creates a new signed token for u.
func Generate(secret []byte, u dao.User) (string, error) {
	claims := &jwt.MapClaims{
		"iss":        Issuer,
		"exp":        time.Now().Add(Lifetime).Unix(),
		"sub":        u.ID.String(),
		"authorized": true,
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)

	tokStr, err := tok.SignedString(signingKey(secret, u))
	if err != nil {
		return "", err
	}
	return tokStr, nil
}

func signingKey(secret []byte, u dao.User) []byte {
	var signKey []byte
	signKey = append(signKey, secret...)
	signKey = append(signKey, []byte(u.Password)...)
	signKey = append(signKey, []byte(fmt.Sprintf("%d", u.LastLogoutTime.Unix()))...)
	return signKey
}

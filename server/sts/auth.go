package sts

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/dekarrin/sentree/server/dao"
	"github.com/dekarrin/sentree/server/serr"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost used to hash stored passwords.
var PasswordCost = bcrypt.DefaultCost

// Login verifies the provided username and password against the existing user
// in persistence and returns that user if they match.
//
// The returned error, if non-nil, will return true for various calls to
// errors.Is depending on what caused the error. If the credentials do not match
// a user or if the password is incorrect, it will match serr.ErrBadCredentials.
// If the error occured due to an unexpected problem with the DB, it will match
// serr.ErrDB.
func (svc Service) Login(ctx context.Context, username string, password string) (dao.User, error) {
	user, err := svc.DB.Users().GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.User{}, serr.ErrBadCredentials
		}
		return dao.User{}, serr.WrapDB("", err)
	}

	bcryptHash, err := base64.StdEncoding.DecodeString(user.Password)
	if err != nil {
		return dao.User{}, err
	}

	err = bcrypt.CompareHashAndPassword(bcryptHash, []byte(password))
	if err != nil {
		if err == bcrypt.ErrMismatchedHashAndPassword {
			return dao.User{}, serr.ErrBadCredentials
		}
		return dao.User{}, serr.WrapDB("", err)
	}

	user.LastLoginTime = time.Now()
	user, err = svc.DB.Users().Update(ctx, user.ID, user)
	if err != nil {
		return dao.User{}, serr.WrapDB("cannot update user login time", err)
	}

	return user, nil
}

// Logout marks the user with the given ID as having logged out, invalidating
// every token issued to them so far. Returns the user entity that was logged
// out.
//
// The returned error, if non-nil, will match serr.ErrNotFound if the user
// doesn't exist, or serr.ErrDB if there was an unexpected problem with the DB.
func (svc Service) Logout(ctx context.Context, who uuid.UUID) (dao.User, error) {
	existing, err := svc.DB.Users().GetByID(ctx, who)
	if err != nil {
		if errors.Is(err, dao.ErrNotFound) {
			return dao.User{}, serr.ErrNotFound
		}
		return dao.User{}, serr.WrapDB("could not retrieve user", err)
	}

	// tokens are keyed to the logout time in whole seconds
	existing.LastLogoutTime = time.Now().Add(time.Second)

	updated, err := svc.DB.Users().Update(ctx, existing.ID, existing)
	if err != nil {
		return dao.User{}, serr.WrapDB("could not update user", err)
	}

	return updated, nil
}

// SetUser makes sure a user with the given username exists and has the given
// password, creating the user if needed. It is used to install the configured
// admin account when the server starts.
//
// The returned error, if non-nil, will match serr.ErrBadArgument if either
// argument is invalid, or serr.ErrDB if there was an unexpected problem with
// the DB.
func (svc Service) SetUser(ctx context.Context, username, password string) (dao.User, error) {
	if username == "" {
		return dao.User{}, serr.New("username cannot be blank", serr.ErrBadArgument)
	}
	if password == "" {
		return dao.User{}, serr.New("password cannot be blank", serr.ErrBadArgument)
	}

	storedPass, err := hashPassword(password)
	if err != nil {
		return dao.User{}, err
	}

	existing, err := svc.DB.Users().GetByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, dao.ErrNotFound) {
			return dao.User{}, serr.WrapDB("could not check for existing user", err)
		}

		user, err := svc.DB.Users().Create(ctx, dao.User{Username: username, Password: storedPass})
		if err != nil {
			if errors.Is(err, dao.ErrConstraintViolation) {
				return dao.User{}, serr.ErrAlreadyExists
			}
			return dao.User{}, serr.WrapDB("could not create user", err)
		}
		return user, nil
	}

	existing.Password = storedPass
	updated, err := svc.DB.Users().Update(ctx, existing.ID, existing)
	if err != nil {
		return dao.User{}, serr.WrapDB("could not update user", err)
	}
	return updated, nil
}

func hashPassword(password string) (string, error) {
	passHash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		if err == bcrypt.ErrPasswordTooLong {
			return "", serr.New("password is too long", err, serr.ErrBadArgument)
		}
		return "", serr.New("password could not be encrypted", err)
	}

	return base64.StdEncoding.EncodeToString(passHash), nil
}

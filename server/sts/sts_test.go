package sts

import (
	"context"
	"math/rand"
	"testing"

	"github.com/dekarrin/sentree"
	"github.com/dekarrin/sentree/internal/config"
	"github.com/dekarrin/sentree/internal/grammar"
	"github.com/dekarrin/sentree/internal/parse"
	"github.com/dekarrin/sentree/internal/render"
	"github.com/dekarrin/sentree/server/dao/inmem"
	"github.com/dekarrin/sentree/server/serr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testGrammar = `
	CÂU -> NP VP
	NP -> "tôi" | "nó"
	VP -> "ăn" OBJ
	OBJ -> NP | "cơm" | ε
`

func init() {
	PasswordCost = bcrypt.MinCost
}

func newTestService(t *testing.T) Service {
	eng, err := sentree.New(config.Config{}, sentree.WithGrammar(grammar.MustParse(testGrammar)), sentree.WithRand(rand.New(rand.NewSource(1))))
	require.NoError(t, err)
	return Service{DB: inmem.NewDatastore(), Engine: eng}
}

func Test_Service_Parse(t *testing.T) {
	testCases := []struct {
		name         string
		sentence     string
		mode         parse.Mode
		expectStatus sentree.Status
		expectEnd    int
		expectTree   bool
	}{
		{name: "full parse", sentence: "tôi ăn cơm", mode: parse.Strict, expectStatus: sentree.StatusOK, expectEnd: 3, expectTree: true},
		{name: "partial best effort", sentence: "nó ăn cơm nhé", mode: parse.BestEffort, expectStatus: sentree.StatusPartial, expectEnd: 3, expectTree: true},
		{name: "strict rejects partial", sentence: "nó ăn cơm nhé", mode: parse.Strict, expectStatus: sentree.StatusNoParse, expectEnd: 3},
		{name: "empty", sentence: "   ", mode: parse.Strict, expectStatus: sentree.StatusEmpty},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)
			ctx := context.Background()
			svc := newTestService(t)

			rec, err := svc.Parse(ctx, tc.sentence, tc.mode, render.Arrow)
			require.NoError(t, err)

			assert.Equal(tc.sentence, rec.Sentence)
			assert.Equal(tc.mode, rec.Mode)
			assert.Equal(render.Arrow, rec.Style)
			assert.Equal(tc.expectStatus, rec.Status)
			assert.Equal(tc.expectEnd, rec.End)
			assert.Equal(tc.expectTree, rec.Tree != nil)
			assert.NotEmpty(rec.Rendered)

			stored, err := svc.GetParse(ctx, rec.ID)
			require.NoError(t, err)
			assert.Equal(rec, stored)
		})
	}
}

func Test_Service_GetAllAndDeleteParse(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := newTestService(t)

	first, err := svc.Parse(ctx, "tôi ăn", parse.BestEffort, render.Arrow)
	require.NoError(t, err)
	second, err := svc.Parse(ctx, "nó ăn", parse.BestEffort, render.Outline)
	require.NoError(t, err)

	all, err := svc.GetAllParses(ctx)
	require.NoError(t, err)
	if assert.Len(all, 2) {
		assert.Equal(first.ID, all[0].ID)
		assert.Equal(second.ID, all[1].ID)
	}

	deleted, err := svc.DeleteParse(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(first.ID, deleted.ID)

	_, err = svc.GetParse(ctx, first.ID)
	assert.ErrorIs(err, serr.ErrNotFound)

	_, err = svc.DeleteParse(ctx, uuid.New())
	assert.ErrorIs(err, serr.ErrNotFound)
}

func Test_Service_Samples(t *testing.T) {
	testCases := []struct {
		name      string
		count     int
		expectErr error
	}{
		{name: "one", count: 1},
		{name: "several", count: 25},
		{name: "zero", count: 0, expectErr: serr.ErrBadArgument},
		{name: "too many", count: MaxSamples + 1, expectErr: serr.ErrBadArgument},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(t)

			actual, err := svc.Samples(tc.count, 42)
			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, actual, tc.count)

			again, err := svc.Samples(tc.count, 42)
			require.NoError(t, err)
			assert.Equal(t, actual, again)
		})
	}
}

func Test_Service_Login(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	created, err := svc.SetUser(ctx, "admin", "hunter2")
	require.NoError(t, err)

	t.Run("good credentials", func(t *testing.T) {
		user, err := svc.Login(ctx, "admin", "hunter2")
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
		assert.False(t, user.LastLoginTime.IsZero())
	})

	t.Run("bad password", func(t *testing.T) {
		_, err := svc.Login(ctx, "admin", "hunter3")
		assert.ErrorIs(t, err, serr.ErrBadCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Login(ctx, "root", "hunter2")
		assert.ErrorIs(t, err, serr.ErrBadCredentials)
	})

	t.Run("password replaced", func(t *testing.T) {
		updated, err := svc.SetUser(ctx, "admin", "correct horse")
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)

		_, err = svc.Login(ctx, "admin", "hunter2")
		assert.ErrorIs(t, err, serr.ErrBadCredentials)
		_, err = svc.Login(ctx, "admin", "correct horse")
		assert.NoError(t, err)
	})
}

func Test_Service_SetUser_BadArgs(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.SetUser(context.Background(), "", "pw")
	assert.ErrorIs(t, err, serr.ErrBadArgument)

	_, err = svc.SetUser(context.Background(), "admin", "")
	assert.ErrorIs(t, err, serr.ErrBadArgument)
}

func Test_Service_Logout(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	svc := newTestService(t)

	user, err := svc.SetUser(ctx, "admin", "pw")
	require.NoError(t, err)

	loggedOut, err := svc.Logout(ctx, user.ID)
	require.NoError(t, err)
	assert.True(loggedOut.LastLogoutTime.After(user.LastLogoutTime))

	_, err = svc.Logout(ctx, uuid.New())
	assert.ErrorIs(err, serr.ErrNotFound)
}

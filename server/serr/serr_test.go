package serr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Error_Error(t *testing.T) {
	testCases := []struct {
		name   string
		err    Error
		expect string
	}{
		{name: "message only", err: New("bad thing"), expect: "bad thing"},
		{name: "cause only", err: New("", ErrNotFound), expect: ErrNotFound.Error()},
		{name: "message and cause", err: New("get parse", ErrNotFound, ErrDB), expect: "get parse: " + ErrNotFound.Error()},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, tc.err.Error())
		})
	}
}

func Test_Error_Is(t *testing.T) {
	assert := assert.New(t)

	err := New("could not create", ErrAlreadyExists, ErrDB)
	assert.ErrorIs(err, ErrAlreadyExists)
	assert.ErrorIs(err, ErrDB)
	assert.NotErrorIs(err, ErrNotFound)

	wrapped := fmt.Errorf("outer: %w", err)
	assert.ErrorIs(wrapped, ErrAlreadyExists)
	assert.True(errors.Is(wrapped, New("could not create", ErrAlreadyExists, ErrDB)))
}

func Test_WrapDB(t *testing.T) {
	assert := assert.New(t)

	cause := errors.New("disk on fire")
	err := WrapDB("save record", cause)

	assert.Equal("save record: disk on fire", err.Error())
	assert.ErrorIs(err, ErrDB)
	assert.ErrorIs(err, cause)
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_WrapAndUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(KindInternal, "failed to list jobs", cause)

	assert.Equal(t, "failed to list jobs: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, Wrap(KindInternal, "unused", nil))
}

func TestSentinels_MatchThroughWrapping(t *testing.T) {
	err := fmt.Errorf("failed to get job 42: %w", ErrJobNotFound)

	assert.ErrorIs(t, err, ErrJobNotFound)
	assert.NotErrorIs(t, err, ErrApplicationNotFound)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "job not found", Message(err))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindForbidden, KindOf(fmt.Errorf("access denied: %w", ErrForbidden)))
	assert.True(t, IsForbidden(ErrForbidden))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"wrapped job sentinel", fmt.Errorf("submit: %w", ErrJobNotFound), http.StatusNotFound},
		{"application sentinel", ErrApplicationNotFound, http.StatusNotFound},
		{"invalid input", New(KindInvalid, "email is required"), http.StatusBadRequest},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", ErrForbidden, http.StatusForbidden},
		{"conflict", ErrConflict, http.StatusConflict},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestMessage_PlainError(t *testing.T) {
	assert.Equal(t, "boom", Message(errors.New("boom")))
}

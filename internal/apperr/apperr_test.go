package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesKindAndCode(t *testing.T) {
	err := fmt.Errorf("respond: %w", Conflict(CodeAlreadyResolved, "connection already resolved"))

	assert.ErrorIs(t, err, ErrAlreadyResolved)
	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrDuplicateConnection)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestStatusByKind(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{ErrEmptyContent, http.StatusBadRequest},
		{ErrThreadNotFound, http.StatusNotFound},
		{ErrNotRecipient, http.StatusForbidden},
		{ErrDuplicateConnection, http.StatusConflict},
		{PartialFailure(CodeThreadCreateFailed, "thread not created", errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Code, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Status())
		})
	}
}

func TestPartialFailureUnwraps(t *testing.T) {
	cause := errors.New("db down")
	err := PartialFailure(CodeThreadCreateFailed, "thread not created", cause)

	assert.ErrorIs(t, err, cause)
	assert.ErrorIs(t, err, ErrPartial)
	assert.Equal(t, KindPartialFailure, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(cause))
}

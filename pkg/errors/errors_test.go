package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromStatusTaxonomy(t *testing.T) {
	cases := []struct {
		status int
		code   string
	}{
		{http.StatusBadRequest, ErrValidation.Code},
		{http.StatusUnprocessableEntity, ErrValidation.Code},
		{http.StatusUnauthorized, ErrAuth.Code},
		{http.StatusForbidden, ErrForbidden.Code},
		{http.StatusNotFound, ErrNotFound.Code},
		{http.StatusConflict, ErrConflict.Code},
		{http.StatusInternalServerError, ErrServer.Code},
		{http.StatusServiceUnavailable, ErrServer.Code},
		{http.StatusTeapot, ErrServer.Code},
	}
	for _, tc := range cases {
		err := FromStatus(tc.status, "")
		assert.Equal(t, tc.code, err.Code, "status %d", tc.status)
		assert.Equal(t, tc.status, err.Status)
		assert.NotEmpty(t, err.Message)
	}
}

func TestFromStatusKeepsBackendMessage(t *testing.T) {
	err := FromStatus(http.StatusNotFound, " internship 4 not found ")
	assert.Equal(t, "internship 4 not found", err.Message)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrServer))
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	raw := errors.New("boom")
	err := FromError(raw)
	assert.Equal(t, ErrServer.Code, err.Code)
	assert.ErrorIs(t, err, raw)
	assert.Nil(t, FromError(nil))
}

func TestUserMessageAndIsAuth(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, ErrServer.Message, UserMessage(errors.New("dial tcp: refused")))
	assert.Equal(t, "grade must be between 0 and 20", UserMessage(Validation("grade must be between 0 and 20", nil)))
	assert.True(t, IsAuth(FromStatus(http.StatusUnauthorized, "token expired")))
	assert.False(t, IsAuth(ErrInvalidCredentials))
}

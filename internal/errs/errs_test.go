package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFound("order %s not found", "x"), KindNotFound},
		{"wrapped conflict", fmt.Errorf("cancel: %w", Conflict("already cancelled")), KindConflict},
		{"plain error", errors.New("boom"), KindInternal},
		{"internal", Internal("db failure", errors.New("conn reset")), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, KindNotFound.HTTPStatus())
	assert.Equal(t, http.StatusConflict, KindConflict.HTTPStatus())
	assert.Equal(t, http.StatusUnauthorized, KindUnauthorized.HTTPStatus())
	assert.Equal(t, http.StatusForbidden, KindForbidden.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, KindInvalidRequest.HTTPStatus())
	assert.Equal(t, http.StatusBadRequest, KindInvalidCode.HTTPStatus())
	assert.Equal(t, http.StatusGone, KindExpired.HTTPStatus())
	assert.Equal(t, http.StatusInternalServerError, KindInternal.HTTPStatus())
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("unique violation")
	err := Internal("failed to create admin", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to create admin: unique violation", err.Error())
	assert.True(t, Is(err, KindInternal))
	assert.False(t, Is(nil, KindInternal))
}

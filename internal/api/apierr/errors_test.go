package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/banglascrabble/internal/model"
	"github.com/mcoot/banglascrabble/internal/services/auth"
)

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"invalid move", model.ErrNotAWord, http.StatusUnprocessableEntity, model.CodeNotAWord},
		{"wrapped invalid move", fmt.Errorf("submit: %w", model.ErrRackShortage), http.StatusUnprocessableEntity, model.CodeRackShortage},
		{"turn rule", model.ErrWrongTurn, http.StatusConflict, model.CodeWrongTurn},
		{"session rule", model.ErrSessionFull, http.StatusConflict, model.CodeSessionFull},
		{"missing session", model.ErrSessionNotFound, http.StatusNotFound, CodeSessionNotFound},
		{"missing player", model.ErrPlayerNotFound, http.StatusNotFound, CodePlayerNotFound},
		{"bad token", auth.ErrInvalidSession, http.StatusUnauthorized, CodeUnauthorized},
		{"validation", NewInvalidRequestError("nope"), http.StatusBadRequest, CodeInvalidRequest},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, Status(tt.err))
			assert.Equal(t, tt.code, Describe(tt.err).Code)
		})
	}
}

func TestInternalErrorsDoNotLeakMessages(t *testing.T) {
	assert.Equal(t, "Internal server error", Describe(errors.New("password=hunter2")).Message)
}

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stockErr struct{}

func (stockErr) Error() string   { return "listing 42 is not available" }
func (stockErr) ErrorKind() Kind { return KindNotAvailable }

func TestKindOf(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantKind   Kind
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "validation: 400",
			err:        Validation("items are required"),
			wantKind:   KindValidation,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "items are required",
		},
		{
			name:       "wrapped not found: 404",
			err:        fmt.Errorf("repo.Get: %w", NotFound("order")),
			wantKind:   KindNotFound,
			wantStatus: http.StatusNotFound,
			wantMsg:    "order not found",
		},
		{
			name:       "custom kinded error: 409",
			err:        fmt.Errorf("checkout: %w", stockErr{}),
			wantKind:   KindNotAvailable,
			wantStatus: http.StatusConflict,
			wantMsg:    "listing 42 is not available",
		},
		{
			name:       "plain error: 500 and hidden",
			err:        errors.New("pq: relation does not exist"),
			wantKind:   KindInternal,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "internal server error",
		},
		{
			name:       "internal wrapper: hidden",
			err:        Internal(errors.New("boom")),
			wantKind:   KindInternal,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "internal server error",
		},
		{
			name:       "forbidden: 403",
			err:        Forbidden("nope"),
			wantKind:   KindAuthorization,
			wantStatus: http.StatusForbidden,
			wantMsg:    "nope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind := KindOf(tt.err)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantStatus, kind.HTTPStatus())
			assert.Equal(t, tt.wantMsg, PublicMessage(tt.err))
		})
	}
}

func TestDetailsOf(t *testing.T) {
	details := map[string]string{"field": "quantity"}
	err := fmt.Errorf("wrap: %w", ValidationWith("bad item", details))

	assert.Equal(t, details, DetailsOf(err))
	assert.Nil(t, DetailsOf(errors.New("plain")))
}

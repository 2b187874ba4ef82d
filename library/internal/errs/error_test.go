package errs_test

import (
	"fmt"
	"testing"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestKind(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "plain", err: errs.ErrBookUnavailable, want: "book_unavailable"},
		{name: "fmt wrapped", err: fmt.Errorf("borrow: %w", errs.ErrAlreadyBorrowing), want: "already_borrowing"},
		{name: "pkg wrapped", err: errors.Wrap(errs.ErrNotFound, "get loan"), want: "not_found"},
		{name: "validation", err: errs.NewValidationError(map[string]string{"Title": "required"}), want: "validation"},
		{name: "admission wraps conflict", err: fmt.Errorf("%w: %w", errs.ErrAdmission, errs.ErrConflict), want: "admission_failed"},
		{name: "unknown", err: errors.New("db down"), want: "internal"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, errs.Kind(tt.err))
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	t.Parallel()
	err := errs.NewValidationError(map[string]string{"Title": "required", "Author": "required"})
	require.Equal(t, "validation failed: Author: required, Title: required", err.Error())
	require.Equal(t, "validation failed", (&errs.ValidationError{}).Error())
}

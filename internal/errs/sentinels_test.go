package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidationError_UnwrapsToSentinel(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("create recipe: %w", Invalid("tags", "at least one tag is required"))
	require.ErrorIs(t, err, ErrValidation)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	require.Equal(t, "tags", ve.Field)
	require.Equal(t, "tags: at least one tag is required", ve.Error())
}

func TestValidationError_NoField(t *testing.T) {
	t.Parallel()

	require.Equal(t, "bad", Invalid("", "bad").Error())
}

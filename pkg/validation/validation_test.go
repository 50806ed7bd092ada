package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/internship-portal/internal/models"
	appErrors "github.com/noah-isme/internship-portal/pkg/errors"
)

func TestStructReportsFieldsByJSONName(t *testing.T) {
	v := New()
	err := Struct(v, models.RegisterRequest{
		FirstName:       "Ana",
		LastName:        "Diaz",
		Email:           "not-an-email",
		Password:        "abc",
		ConfirmPassword: "abd",
	})
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Equal(t, "please enter a valid email address", appErr.Fields["email"])
	assert.Equal(t, "password must be at least 6 characters", appErr.Fields["password"])
	assert.Equal(t, "passwords do not match", appErr.Fields["confirmPassword"])
}

func TestStructGradeBounds(t *testing.T) {
	v := New()
	require.NoError(t, Struct(v, models.GradeRequest{Grade: 20}))
	require.NoError(t, Struct(v, models.GradeRequest{Grade: 0}))

	err := Struct(v, models.GradeRequest{Grade: 21})
	require.Error(t, err)
	assert.Equal(t, "grade must be between 0 and 20", appErrors.UserMessage(err))
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "level", humanize("levelId"))
	assert.Equal(t, "start date", humanize("startDate"))
	assert.Equal(t, "sector", humanize("sectorIds"))
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "medgate/pkg/domain-errors"
)

func TestCheckCredentialsRequestValidate(t *testing.T) {
	t.Run("accepts a complete request", func(t *testing.T) {
		r := &CheckCredentialsRequest{
			Email:    "jane.doe@example.com",
			Password: "secret-pw",
			Role:     "staff",
		}
		require.NoError(t, r.Validate())
	})

	t.Run("rejects a whitespace-only password", func(t *testing.T) {
		r := &CheckCredentialsRequest{
			Email:    "jane.doe@example.com",
			Password: "   ",
		}
		err := r.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
		assert.Contains(t, err.Error(), "password must not be blank")
	})

	t.Run("rejects an unknown role", func(t *testing.T) {
		r := &CheckCredentialsRequest{
			Email:    "jane.doe@example.com",
			Password: "secret-pw",
			Role:     "superuser",
		}
		err := r.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestCheckCredentialsRequestNormalize(t *testing.T) {
	r := &CheckCredentialsRequest{
		Email: "  Jane.Doe@Example.COM ",
		Role:  " staff ",
	}
	r.Normalize()
	assert.Equal(t, "jane.doe@example.com", r.Email)
	assert.Equal(t, "staff", r.Role)
}

func TestSessionRequestValidate(t *testing.T) {
	t.Run("rejects a whitespace-only password", func(t *testing.T) {
		r := &SessionRequest{Password: " \t "}
		err := r.Validate()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
		assert.Contains(t, err.Error(), "password must not be blank")
	})

	t.Run("accepts a request without a location", func(t *testing.T) {
		r := &SessionRequest{Password: "secret-pw"}
		require.NoError(t, r.Validate())
	})
}

package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@example.com", NormalizeEmail("  Jane@Example.COM "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestNewUserID_DeterministicPerEmail(t *testing.T) {
	a := NewUserID("jane@example.com")
	b := NewUserID("jane@example.com")
	c := NewUserID("john@example.com")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(5), parsed.Version())
}

package models_test

import (
	"encoding/json"
	"testing"

	"complaintdesk/dashboard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestUser_DecodesMeResponse verifies the /auth/api/me payload maps onto User.
func TestUser_DecodesMeResponse(t *testing.T) {
	// Arrange
	payload := `{"id":7,"username":"amira","email":"amira@university.edu","role":"ADMIN","department":""}`

	// Act
	var u models.User
	err := json.Unmarshal([]byte(payload), &u)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, models.ID("7"), u.ID)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.Equal(t, "amira", u.DisplayName())
}

func TestParseRole(t *testing.T) {
	cases := map[string]models.Role{
		"STUDENT":    models.RoleStudent,
		"student":    models.RoleStudent,
		" Admin ":    models.RoleAdmin,
		"DEPARTMENT": models.RoleDepartment,
		"professor":  "",
		"":           "",
	}
	for raw, want := range cases {
		assert.Equal(t, want, models.ParseRole(raw), "raw=%q", raw)
	}
}

func TestRole_Upper(t *testing.T) {
	assert.Equal(t, "DEPARTMENT", models.RoleDepartment.Upper())
}

func TestUser_DisplayNameWithoutAt(t *testing.T) {
	u := models.User{Email: "registrar"}
	assert.Equal(t, "registrar", u.DisplayName())
}

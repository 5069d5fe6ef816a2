package models_test

import (
	"testing"

	"civicpulse-be/models"

	"github.com/stretchr/testify/assert"
)

func TestHashAndComparePassword(t *testing.T) {
	user := &models.User{Password: "s3cretpass"}

	err := user.HashPassword()

	assert.NoError(t, err)
	assert.NotEqual(t, "s3cretpass", user.Password, "password must be stored hashed")
	assert.True(t, user.ComparePassword("s3cretpass"))
	assert.False(t, user.ComparePassword("wrongpass"))
}

func TestRequiresModeration(t *testing.T) {
	tests := []struct {
		name string
		user models.User
		want bool
	}{
		{"travel student", models.User{Role: models.RoleStudent, TravelFlag: true}, true},
		{"plain student", models.User{Role: models.RoleStudent, TravelFlag: false}, false},
		{"citizen", models.User{Role: models.RoleCitizen, TravelFlag: true}, false},
		{"worker", models.User{Role: models.RoleWorker, TravelFlag: true}, false},
		{"admin", models.User{Role: models.RoleAdmin}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.RequiresModeration())
		})
	}
}

func TestValidRole(t *testing.T) {
	assert.True(t, models.ValidRole("citizen"))
	assert.True(t, models.ValidRole("student"))
	assert.True(t, models.ValidRole("worker"))
	assert.True(t, models.ValidRole("admin"))
	assert.False(t, models.ValidRole("superuser"))
	assert.False(t, models.ValidRole(""))
}

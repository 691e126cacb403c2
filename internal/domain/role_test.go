package domain_test

import (
	"testing"

	"github.com/dom/taskflow/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRoleAllowed(t *testing.T) {
	tests := []struct {
		name      string
		role      domain.Role
		permitted []domain.Role
		want      bool
	}{
		{name: "admin in admin set", role: domain.RoleAdmin, permitted: []domain.Role{domain.RoleAdmin}, want: true},
		{name: "user not in admin set", role: domain.RoleUser, permitted: []domain.Role{domain.RoleAdmin}, want: false},
		{name: "user in mixed set", role: domain.RoleUser, permitted: []domain.Role{domain.RoleAdmin, domain.RoleUser}, want: true},
		{name: "empty set denies", role: domain.RoleAdmin, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.RoleAllowed(tt.role, tt.permitted...))
		})
	}
}

func TestRole_IsValid(t *testing.T) {
	assert.True(t, domain.RoleUser.IsValid())
	assert.True(t, domain.RoleAdmin.IsValid())
	assert.False(t, domain.Role("moderator").IsValid())
}

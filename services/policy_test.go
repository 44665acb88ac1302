package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sales-dashboard/models"
)

func TestPolicyAllowed(t *testing.T) {
	p, err := NewPolicy()
	require.NoError(t, err)

	manager := models.User{Username: "admin", Role: models.RoleManager, Active: true}
	viewer := models.User{Username: "func1", Role: models.RoleEmployee, Active: true, CanViewDetails: true}
	plain := models.User{Username: "ana", Role: models.RoleEmployee, Active: true}

	tests := []struct {
		user models.User
		obj  string
		act  string
		want bool
	}{
		{manager, ObjectRecords, ActionViewDetailed, true},
		{manager, ObjectAccounts, ActionProvision, true},
		{manager, ObjectAccounts, ActionUpdate, true},
		{viewer, ObjectRecords, ActionViewDetailed, true},
		{viewer, ObjectAccounts, ActionProvision, false},
		{plain, ObjectRecords, ActionViewDetailed, false},
		{plain, ObjectAccounts, ActionUpdate, false},
		{models.User{}, ObjectRecords, ActionViewDetailed, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, p.Allowed(tt.user, tt.obj, tt.act), "%s %s/%s", tt.user.Username, tt.obj, tt.act)
	}
}

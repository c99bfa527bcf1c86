package authz

import (
	"testing"

	"github.com/dmitrijs2005/projectmanager/internal/common"
	"github.com/dmitrijs2005/projectmanager/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMember(t *testing.T) {
	project := &models.Project{ID: "p1", MemberIDs: []string{"alice", "bob"}}

	tests := []struct {
		name    string
		user    string
		project *models.Project
		want    bool
	}{
		{name: "member", user: "alice", project: project, want: true},
		{name: "other member", user: "bob", project: project, want: true},
		{name: "stranger", user: "mallory", project: project, want: false},
		{name: "empty project", user: "alice", project: &models.Project{}, want: false},
		{name: "nil project", user: "alice", project: nil, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMember(tt.user, tt.project))
		})
	}
}

func TestIsMember_ReflectsMutationImmediately(t *testing.T) {
	project := &models.Project{MemberIDs: []string{"alice"}}
	require.False(t, IsMember("bob", project))

	project.MemberIDs = append(project.MemberIDs, "bob")
	require.True(t, IsMember("bob", project))

	project.MemberIDs = project.MemberIDs[:1]
	require.False(t, IsMember("bob", project))
}

func TestRequireMember(t *testing.T) {
	project := &models.Project{MemberIDs: []string{"alice"}}

	require.NoError(t, RequireMember(models.Principal{UserID: "alice", Role: models.RoleUser}, project, "view this project"))

	err := RequireMember(models.Principal{UserID: "root", Role: models.RoleAdmin}, project, "view this project")
	require.ErrorIs(t, err, common.ErrorUnauthorized, "admin role does not bypass membership")
	assert.Contains(t, err.Error(), "view this project")
}

func TestUserAccessRules(t *testing.T) {
	self := models.Principal{UserID: "u1", Role: models.RoleUser}
	admin := models.Principal{UserID: "a1", Role: models.RoleAdmin}

	assert.True(t, CanAccessUser(self, "u1"))
	assert.False(t, CanAccessUser(self, "u2"))
	assert.True(t, CanAccessUser(admin, "u2"))

	require.ErrorIs(t, RequireUserAccess(self, "u2", "update this user"), common.ErrorUnauthorized)
	require.NoError(t, RequireUserAccess(admin, "u2", "update this user"))

	require.ErrorIs(t, RequireAdmin(self, "list users"), common.ErrorUnauthorized)
	require.NoError(t, RequireAdmin(admin, "list users"))
}

// Package authz computes whether a principal may act on a resource.
//
// Every project-scoped resource reduces to one question: is the caller a
// member of the project that owns it. Steps and tasks never carry their own
// ACL; callers resolve the owning project by id and ask here.
package authz

import (
	"fmt"

	"github.com/dmitrijs2005/projectmanager/internal/common"
	"github.com/dmitrijs2005/projectmanager/internal/server/models"
)

// IsMember reports whether principalID belongs to project's member set.
func IsMember(principalID string, project *models.Project) bool {
	if project == nil {
		return false
	}
	return project.HasMember(principalID)
}

// RequireMember returns common.ErrorUnauthorized unless p is a member of project.
// action is only used to make the error readable, e.g. "update this step".
func RequireMember(p models.Principal, project *models.Project, action string) error {
	if !IsMember(p.UserID, project) {
		return fmt.Errorf("%w: not authorized to %s", common.ErrorUnauthorized, action)
	}
	return nil
}

// CanAccessUser is the user-profile rule: users manage themselves, admins
// manage everyone.
func CanAccessUser(p models.Principal, targetUserID string) bool {
	return p.UserID == targetUserID || p.IsAdmin()
}

func RequireUserAccess(p models.Principal, targetUserID, action string) error {
	if !CanAccessUser(p, targetUserID) {
		return fmt.Errorf("%w: not authorized to %s", common.ErrorUnauthorized, action)
	}
	return nil
}

// RequireAdmin guards operations reserved to ADMIN, such as listing all users.
func RequireAdmin(p models.Principal, action string) error {
	if !p.IsAdmin() {
		return fmt.Errorf("%w: only admins can %s", common.ErrorUnauthorized, action)
	}
	return nil
}

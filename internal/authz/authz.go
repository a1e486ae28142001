// Package authz holds the ownership/authorization policy shared by all
// mutating resource operations.
package authz

import (
	"fmt"

	"campdir/internal/models"
)

// RequireOwner verifies the principal may perform verb on the named resource:
// either the recorded owner or an admin. The returned error names the denied
// principal and action.
func RequireOwner(principal *models.User, ownerID uint, verb, resource string) error {
	if principal == nil {
		return models.NewUnauthorizedError("Not authorized to access this route")
	}
	if principal.ID == ownerID || principal.IsAdmin() {
		return nil
	}
	return models.NewForbiddenError(
		fmt.Sprintf("User %d is not authorized to %s this %s", principal.ID, verb, resource))
}

// RequireRole verifies the principal holds one of the allowed roles. The
// returned error names the offending role.
func RequireRole(principal *models.User, roles ...models.Role) error {
	if principal == nil {
		return models.NewUnauthorizedError("Not authorized to access this route")
	}
	for _, role := range roles {
		if principal.Role == role {
			return nil
		}
	}
	return models.NewForbiddenError(
		fmt.Sprintf("User role '%s' is not authorized to access this route", principal.Role))
}

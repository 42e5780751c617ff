package auth

import "context"

// PermissionAuthorizer decides whether a permission set grants a permission.
type PermissionAuthorizer interface {
	HasPermission(ctx context.Context, userPermissions []string, permission string) (bool, error)
	HasAnyPermission(ctx context.Context, userPermissions []string, required []string) (bool, error)
}

// DefaultPermissionChecker treats "admin" as a superset of every other permission.
type DefaultPermissionChecker struct{}

func NewPermissionChecker() *DefaultPermissionChecker {
	return &DefaultPermissionChecker{}
}

func (c *DefaultPermissionChecker) HasPermission(ctx context.Context, userPermissions []string, permission string) (bool, error) {
	return c.HasAnyPermission(ctx, userPermissions, []string{permission})
}

func (c *DefaultPermissionChecker) HasAnyPermission(_ context.Context, userPermissions []string, required []string) (bool, error) {
	for _, userPerm := range userPermissions {
		if userPerm == PermAdmin {
			return true, nil
		}
		for _, requiredPerm := range required {
			if userPerm == requiredPerm {
				return true, nil
			}
		}
	}
	return false, nil
}

// Package access decides who may invoke an operation and which records a
// caller may read.
package access

import (
	"slices"

	"github.com/hugh/docvault/internal/apperr"
	"github.com/hugh/docvault/internal/database/models"
)

const (
	MsgAuthenticationRequired = "Authentication required. Please log in."
	MsgAccessDenied           = "Access denied: You do not have the necessary permissions to perform this action."
)

var (
	ErrUnauthenticated = apperr.Authentication(MsgAuthenticationRequired)
	ErrForbidden       = apperr.Authorization(MsgAccessDenied)
)

// Authorize grants when required is empty or lists the caller's role.
// Membership only; no role implies another. A nil caller always fails
// authentication before any role is compared.
func Authorize(required []models.Role, caller *models.User) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	if len(required) == 0 || slices.Contains(required, caller.Role) {
		return nil
	}
	return ErrForbidden
}

// Allowed is Authorize as a predicate.
func Allowed(required []models.Role, caller *models.User) bool {
	return Authorize(required, caller) == nil
}

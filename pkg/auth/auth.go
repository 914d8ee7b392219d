// Package auth derives the request auth context from identity-provider
// claims. Claims are injected by the hosting gateway's authorizer; this
// package never parses raw Authorization headers.
package auth

import (
	"strings"

	"github.com/whrrk/eduplatform/pkg/apperr"
)

// Role is the platform role derived from identity-provider group claims.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
	RoleUnknown Role = "UNKNOWN"
)

// AnonymousUserID is the fallback identity for requests carrying no
// identifying claim. It never passes role or enrollment checks.
const AnonymousUserID = "anonymous"

// Claim keys populated by the Cognito authorizer.
const (
	ClaimUsername = "cognito:username"
	ClaimSubject  = "sub"
	ClaimGroups   = "cognito:groups"
)

// Context is the per-request identity: who is calling and with
// which role. A zero identity resolves to anonymous/UNKNOWN rather
// than an error; downstream checks reject it.
type Context struct {
	UserID string
	Role   Role
	Groups []string
	Claims map[string]any
}

// FromClaims builds a Context from the authorizer claims mapping.
// The groups claim may arrive as a list or as a comma-separated string;
// both are normalized to a trimmed list. Role precedence is fixed,
// most privileged first: ADMIN, TEACHER, STUDENT.
func FromClaims(claims map[string]any) Context {
	ctx := Context{
		UserID: AnonymousUserID,
		Role:   RoleUnknown,
		Claims: claims,
	}
	if claims == nil {
		return ctx
	}

	if v, ok := claims[ClaimUsername].(string); ok && v != "" {
		ctx.UserID = v
	} else if v, ok := claims[ClaimSubject].(string); ok && v != "" {
		ctx.UserID = v
	}

	ctx.Groups = normalizeGroups(claims[ClaimGroups])

	for _, r := range []Role{RoleAdmin, RoleTeacher, RoleStudent} {
		if ctx.HasGroup(string(r)) {
			ctx.Role = r
			break
		}
	}

	return ctx
}

// HasGroup reports whether the context's groups include g.
func (c Context) HasGroup(g string) bool {
	for _, have := range c.Groups {
		if have == g {
			return true
		}
	}
	return false
}

// IsAnonymous reports whether the request carried no resolvable identity.
func (c Context) IsAnonymous() bool {
	return c.UserID == "" || c.UserID == AnonymousUserID
}

// RequireRole fails with Forbidden unless the context's role is one of
// the allowed roles.
func RequireRole(c Context, allowed ...Role) error {
	for _, r := range allowed {
		if c.Role == r {
			return nil
		}
	}
	return apperr.Forbidden("Forbidden")
}

func normalizeGroups(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return nil
	case []string:
		return v
	case []any:
		groups := make([]string, 0, len(v))
		for _, g := range v {
			if s, ok := g.(string); ok {
				groups = append(groups, s)
			}
		}
		return groups
	case string:
		// Cognito occasionally flattens groups to "TEACHER,STUDENT".
		parts := strings.Split(v, ",")
		groups := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				groups = append(groups, p)
			}
		}
		return groups
	default:
		return nil
	}
}

package auth

import (
	"testing"

	"github.com/whrrk/eduplatform/pkg/apperr"
)

func TestFromClaims(t *testing.T) {
	tests := []struct {
		name       string
		claims     map[string]any
		wantUserID string
		wantRole   Role
		wantGroups []string
	}{
		{
			name:       "nil claims resolve to anonymous",
			claims:     nil,
			wantUserID: AnonymousUserID,
			wantRole:   RoleUnknown,
		},
		{
			name:       "empty claims resolve to anonymous",
			claims:     map[string]any{},
			wantUserID: AnonymousUserID,
			wantRole:   RoleUnknown,
		},
		{
			name: "username claim preferred over sub",
			claims: map[string]any{
				ClaimUsername: "alice",
				ClaimSubject:  "sub-123",
			},
			wantUserID: "alice",
			wantRole:   RoleUnknown,
		},
		{
			name: "sub used when username absent",
			claims: map[string]any{
				ClaimSubject: "sub-123",
			},
			wantUserID: "sub-123",
			wantRole:   RoleUnknown,
		},
		{
			name: "groups as string list",
			claims: map[string]any{
				ClaimSubject: "u1",
				ClaimGroups:  []string{"STUDENT"},
			},
			wantUserID: "u1",
			wantRole:   RoleStudent,
			wantGroups: []string{"STUDENT"},
		},
		{
			name: "groups as interface list",
			claims: map[string]any{
				ClaimSubject: "u1",
				ClaimGroups:  []any{"TEACHER"},
			},
			wantUserID: "u1",
			wantRole:   RoleTeacher,
			wantGroups: []string{"TEACHER"},
		},
		{
			name: "groups as comma-separated string with spaces",
			claims: map[string]any{
				ClaimSubject: "u1",
				ClaimGroups:  "TEACHER, STUDENT",
			},
			wantUserID: "u1",
			wantRole:   RoleTeacher,
			wantGroups: []string{"TEACHER", "STUDENT"},
		},
		{
			name: "admin wins over teacher and student",
			claims: map[string]any{
				ClaimSubject: "u1",
				ClaimGroups:  "STUDENT,TEACHER,ADMIN",
			},
			wantUserID: "u1",
			wantRole:   RoleAdmin,
			wantGroups: []string{"STUDENT", "TEACHER", "ADMIN"},
		},
		{
			name: "teacher wins over student",
			claims: map[string]any{
				ClaimSubject: "u1",
				ClaimGroups:  []string{"STUDENT", "TEACHER"},
			},
			wantUserID: "u1",
			wantRole:   RoleTeacher,
			wantGroups: []string{"STUDENT", "TEACHER"},
		},
		{
			name: "unrecognized groups keep role unknown",
			claims: map[string]any{
				ClaimSubject: "u1",
				ClaimGroups:  []string{"AUDITOR"},
			},
			wantUserID: "u1",
			wantRole:   RoleUnknown,
			wantGroups: []string{"AUDITOR"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := FromClaims(tt.claims)
			if ctx.UserID != tt.wantUserID {
				t.Errorf("UserID = %q, want %q", ctx.UserID, tt.wantUserID)
			}
			if ctx.Role != tt.wantRole {
				t.Errorf("Role = %q, want %q", ctx.Role, tt.wantRole)
			}
			if len(ctx.Groups) != len(tt.wantGroups) {
				t.Fatalf("Groups = %v, want %v", ctx.Groups, tt.wantGroups)
			}
			for i, g := range tt.wantGroups {
				if ctx.Groups[i] != g {
					t.Errorf("Groups[%d] = %q, want %q", i, ctx.Groups[i], g)
				}
			}
		})
	}
}

func TestIsAnonymous(t *testing.T) {
	if !FromClaims(nil).IsAnonymous() {
		t.Error("nil claims should be anonymous")
	}
	ctx := FromClaims(map[string]any{ClaimSubject: "u1"})
	if ctx.IsAnonymous() {
		t.Error("resolved identity should not be anonymous")
	}
}

func TestRequireRole(t *testing.T) {
	teacher := FromClaims(map[string]any{
		ClaimSubject: "t1",
		ClaimGroups:  []string{"TEACHER"},
	})
	student := FromClaims(map[string]any{
		ClaimSubject: "s1",
		ClaimGroups:  []string{"STUDENT"},
	})

	if err := RequireRole(teacher, RoleTeacher); err != nil {
		t.Errorf("teacher should pass: %v", err)
	}
	if err := RequireRole(student, RoleTeacher, RoleAdmin); err == nil {
		t.Error("student should be rejected")
	} else if apperr.StatusOf(err) != 403 {
		t.Errorf("expected status 403, got %d", apperr.StatusOf(err))
	}
	if err := RequireRole(FromClaims(nil), RoleTeacher); err == nil {
		t.Error("anonymous should be rejected")
	}
}

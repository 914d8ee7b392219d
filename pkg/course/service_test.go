package course

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whrrk/eduplatform/pkg/apperr"
	"github.com/whrrk/eduplatform/pkg/auth"
	"github.com/whrrk/eduplatform/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func authAs(userID string, groups ...string) auth.Context {
	claims := map[string]any{auth.ClaimSubject: userID}
	if len(groups) > 0 {
		claims[auth.ClaimGroups] = groups
	}
	return auth.FromClaims(claims)
}

func TestCreateCourse_RequiresTeacher(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(), testLogger())
	ctx := context.Background()

	tests := []struct {
		name   string
		caller auth.Context
	}{
		{"student", authAs("s1", "STUDENT")},
		{"admin", authAs("a1", "ADMIN")},
		{"no groups", authAs("u1")},
		{"anonymous", auth.FromClaims(nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateCourse(ctx, tt.caller, CreateInput{Title: "X"})
			require.Error(t, err)
			assert.Equal(t, 403, apperr.StatusOf(err))
		})
	}
}

func TestCreateCourse_RequiresTitle(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(), testLogger())

	_, err := svc.CreateCourse(context.Background(), authAs("t1", "TEACHER"), CreateInput{})
	require.Error(t, err)
	assert.Equal(t, 400, apperr.StatusOf(err))
}

func TestCreateCourse_RoundTrip(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(), testLogger())
	ctx := context.Background()

	created, err := svc.CreateCourse(ctx, authAs("t1", "TEACHER"), CreateInput{Title: "X"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.CourseID)
	assert.Equal(t, "COURSE#"+created.CourseID, created.PK)
	assert.Equal(t, "META", created.SK)

	courses, err := svc.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "X", courses[0].Title)
	assert.Equal(t, created.CourseID, courses[0].CourseID)
}

func TestListCourses_Empty(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(), testLogger())

	courses, err := svc.ListCourses(context.Background())
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestEnroll_Validation(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(), testLogger())
	ctx := context.Background()

	_, err := svc.Enroll(ctx, auth.FromClaims(nil), "c1", EnrollInput{})
	require.Error(t, err)
	assert.Equal(t, 400, apperr.StatusOf(err))

	// Identity present but no recognized group: role is required.
	_, err = svc.Enroll(ctx, authAs("u1"), "c1", EnrollInput{})
	require.Error(t, err)
	assert.Equal(t, 400, apperr.StatusOf(err))
}

func TestEnroll_DefaultsRoleToStudent(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(), testLogger())

	enrollment, err := svc.Enroll(context.Background(), authAs("s1", "STUDENT"), "c1", EnrollInput{})
	require.NoError(t, err)
	assert.Equal(t, "student", enrollment.Role)
	assert.Equal(t, "COURSE#c1", enrollment.PK)
	assert.Equal(t, "USER#s1", enrollment.SK)
	assert.Equal(t, "USER#s1", enrollment.GSI1PK)
	assert.Equal(t, "COURSE#c1", enrollment.GSI1SK)
}

func TestEnroll_IdempotentOverwrite(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(), testLogger())
	ctx := context.Background()
	student := authAs("s1", "STUDENT")

	_, err := svc.Enroll(ctx, student, "c1", EnrollInput{})
	require.NoError(t, err)
	_, err = svc.Enroll(ctx, student, "c1", EnrollInput{Role: "ta"})
	require.NoError(t, err)

	members, err := svc.ListMembers(ctx, student, "c1")
	require.NoError(t, err)
	require.Len(t, members, 1, "re-enrollment must overwrite, not duplicate")
	assert.Equal(t, "s1", members[0].UserID)
	assert.Equal(t, "ta", members[0].Role)
}

func TestListMembers_Gating(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(), testLogger())
	ctx := context.Background()

	_, err := svc.Enroll(ctx, authAs("s1", "STUDENT"), "c1", EnrollInput{})
	require.NoError(t, err)

	_, err = svc.ListMembers(ctx, auth.FromClaims(nil), "c1")
	assert.Equal(t, 401, apperr.StatusOf(err))

	_, err = svc.ListMembers(ctx, authAs("s2", "STUDENT"), "c1")
	assert.Equal(t, 403, apperr.StatusOf(err), "unenrolled student must not list members")

	members, err := svc.ListMembers(ctx, authAs("t1", "TEACHER"), "c1")
	require.NoError(t, err)
	assert.Len(t, members, 1)
}

func TestListUserCourses(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(), testLogger())
	ctx := context.Background()
	student := authAs("s1", "STUDENT")

	for _, courseID := range []string{"c2", "c1"} {
		_, err := svc.Enroll(ctx, student, courseID, EnrollInput{})
		require.NoError(t, err)
	}

	enrollments, err := svc.ListUserCourses(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, enrollments, 2)
	// GSI1 sorts by COURSE#<id>.
	assert.Equal(t, "c1", enrollments[0].CourseID)
	assert.Equal(t, "c2", enrollments[1].CourseID)
}

func TestRequireEnrolled(t *testing.T) {
	svc := NewService(storage.NewMemoryStore(), testLogger())
	ctx := context.Background()

	_, err := svc.RequireEnrolled(ctx, "s1", "c1")
	require.Error(t, err)
	assert.Equal(t, 403, apperr.StatusOf(err))

	_, err = svc.Enroll(ctx, authAs("s1", "STUDENT"), "c1", EnrollInput{})
	require.NoError(t, err)

	enrollment, err := svc.RequireEnrolled(ctx, "s1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "s1", enrollment.UserID)
	assert.Equal(t, "c1", enrollment.CourseID)
}

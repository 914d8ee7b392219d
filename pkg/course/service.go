// Package course implements course creation, listing, enrollment and
// membership, plus the enrollment guard used by every course-scoped
// resource.
package course

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/whrrk/eduplatform/pkg/apperr"
	"github.com/whrrk/eduplatform/pkg/auth"
	"github.com/whrrk/eduplatform/pkg/model"
	"github.com/whrrk/eduplatform/pkg/storage"
)

// Service handles course operations against the shared table.
type Service struct {
	store  storage.Store
	logger *slog.Logger
}

// NewService creates a course service.
func NewService(store storage.Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// CreateInput is the request body for course creation. Only Title is
// required; CourseID is generated when absent.
type CreateInput struct {
	CourseID    string `json:"courseId"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TeacherID   string `json:"teacherId"`
}

// EnrollInput is the request body for enrollment. Role defaults to
// "student" when unspecified.
type EnrollInput struct {
	Role string `json:"role"`
}

// ListCourses returns every course record. Unauthenticated-safe; backed
// by a full-table scan filtered on the course key shape. No pagination.
func (s *Service) ListCourses(ctx context.Context) ([]model.Course, error) {
	items, err := s.store.Scan(ctx, model.PrefixCourse, model.SKMeta)
	if err != nil {
		return nil, err
	}

	courses := make([]model.Course, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &courses); err != nil {
		return nil, fmt.Errorf("failed to unmarshal courses: %w", err)
	}
	return courses, nil
}

// CreateCourse writes a new course record. TEACHER role required.
func (s *Service) CreateCourse(ctx context.Context, ac auth.Context, in CreateInput) (*model.Course, error) {
	if err := auth.RequireRole(ac, auth.RoleTeacher); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.Validation("title is required")
	}

	courseID := in.CourseID
	if courseID == "" {
		courseID = model.NewID("course")
	}
	teacherID := in.TeacherID
	if teacherID == "" {
		teacherID = ac.UserID
	}

	pk, sk := model.CourseKey(courseID)
	course := model.Course{
		PK:          pk,
		SK:          sk,
		Type:        model.TypeCourse,
		CourseID:    courseID,
		Title:       in.Title,
		Description: in.Description,
		TeacherID:   teacherID,
		CreatedAt:   time.Now().UTC(),
	}

	item, err := attributevalue.MarshalMap(course)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal course: %w", err)
	}
	if err := s.store.Put(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("course created",
		slog.String("courseId", courseID),
		slog.String("createdBy", ac.UserID))

	return &course, nil
}

// Enroll writes the enrollment record for (courseID, caller). Requires
// a resolvable identity and a derived role. Enrolling twice replaces
// the prior record without error.
func (s *Service) Enroll(ctx context.Context, ac auth.Context, courseID string, in EnrollInput) (*model.Enrollment, error) {
	if ac.IsAnonymous() {
		return nil, apperr.Validation("userId is required")
	}
	if ac.Role == auth.RoleUnknown {
		return nil, apperr.Validation("role is required")
	}

	role := in.Role
	if role == "" {
		role = "student"
	}

	pk, sk := model.EnrollmentKey(courseID, ac.UserID)
	enrollment := model.Enrollment{
		PK:        pk,
		SK:        sk,
		Type:      model.TypeEnrollment,
		UserID:    ac.UserID,
		CourseID:  courseID,
		Role:      role,
		CreatedAt: time.Now().UTC(),
		GSI1PK:    model.PrefixUser + ac.UserID,
		GSI1SK:    model.PrefixCourse + courseID,
	}

	item, err := attributevalue.MarshalMap(enrollment)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal enrollment: %w", err)
	}
	if err := s.store.Put(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("user enrolled",
		slog.String("courseId", courseID),
		slog.String("userId", ac.UserID),
		slog.String("role", role))

	return &enrollment, nil
}

// ListMembers returns every enrollment record for a course. STUDENT
// callers must themselves be enrolled; other roles pass through.
func (s *Service) ListMembers(ctx context.Context, ac auth.Context, courseID string) ([]model.Enrollment, error) {
	if ac.IsAnonymous() {
		return nil, apperr.Unauthorized("Unauthorized")
	}
	if ac.Role == auth.RoleStudent {
		if _, err := s.RequireEnrolled(ctx, ac.UserID, courseID); err != nil {
			return nil, err
		}
	}

	items, err := s.store.Query(ctx, model.PrefixCourse+courseID, model.PrefixUser)
	if err != nil {
		return nil, err
	}

	members := make([]model.Enrollment, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &members); err != nil {
		return nil, fmt.Errorf("failed to unmarshal enrollments: %w", err)
	}
	return members, nil
}

// ListUserCourses returns the enrollment records of a single user via
// the GSI1 mirror, i.e. the courses that user belongs to.
func (s *Service) ListUserCourses(ctx context.Context, userID string) ([]model.Enrollment, error) {
	items, err := s.store.QueryIndex(ctx, storage.IndexGSI1, model.PrefixUser+userID)
	if err != nil {
		return nil, err
	}

	enrollments := make([]model.Enrollment, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &enrollments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal enrollments: %w", err)
	}
	return enrollments, nil
}

// ListCallerCourses is ListUserCourses for the authenticated caller.
func (s *Service) ListCallerCourses(ctx context.Context, ac auth.Context) ([]model.Enrollment, error) {
	if ac.IsAnonymous() {
		return nil, apperr.Unauthorized("Unauthorized")
	}
	return s.ListUserCourses(ctx, ac.UserID)
}

// RequireEnrolled is the enrollment guard: it fails with Forbidden
// unless an enrollment record exists for (courseID, userID) and returns
// the record otherwise. A just-created enrollment can transiently miss
// here when the table read is eventually consistent; callers do not
// retry.
func (s *Service) RequireEnrolled(ctx context.Context, userID, courseID string) (*model.Enrollment, error) {
	pk, sk := model.EnrollmentKey(courseID, userID)
	item, err := s.store.Get(ctx, pk, sk)
	if err != nil {
		return nil, err
	}
	if item == nil {
		s.logger.Warn("enrollment check failed",
			slog.String("courseId", courseID),
			slog.String("userId", userID))
		return nil, apperr.Forbidden("Forbidden: not enrolled")
	}

	var enrollment model.Enrollment
	if err := attributevalue.UnmarshalMap(item, &enrollment); err != nil {
		return nil, fmt.Errorf("failed to unmarshal enrollment: %w", err)
	}
	return &enrollment, nil
}

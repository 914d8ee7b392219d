// Package thread implements discussion threads and messages scoped to
// a course.
package thread

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/whrrk/eduplatform/pkg/apperr"
	"github.com/whrrk/eduplatform/pkg/auth"
	"github.com/whrrk/eduplatform/pkg/model"
	"github.com/whrrk/eduplatform/pkg/storage"
)

// EnrollmentGuard confirms a user is enrolled in a course before
// granting access to course-scoped resources. Implemented by the
// course service.
type EnrollmentGuard interface {
	RequireEnrolled(ctx context.Context, userID, courseID string) (*model.Enrollment, error)
}

// Service handles thread and message operations.
type Service struct {
	store  storage.Store
	guard  EnrollmentGuard
	logger *slog.Logger
}

// NewService creates a thread service.
func NewService(store storage.Store, guard EnrollmentGuard, logger *slog.Logger) *Service {
	return &Service{store: store, guard: guard, logger: logger}
}

// CreateInput is the request body for thread creation. All fields are
// optional; ThreadID is generated and CreatedBy defaults to the caller.
type CreateInput struct {
	ThreadID  string `json:"threadId"`
	Title     string `json:"title"`
	CreatedBy string `json:"createdBy"`
}

// PostInput is the request body for posting a message.
type PostInput struct {
	SenderID string `json:"senderId"`
	Body     string `json:"body"`
}

// CreateThread writes a thread record with its GSI2 mirror. STUDENT
// callers must be enrolled in the course; other roles pass through.
func (s *Service) CreateThread(ctx context.Context, ac auth.Context, courseID string, in CreateInput) (*model.Thread, error) {
	if err := s.requireCourseAccess(ctx, ac, courseID); err != nil {
		return nil, err
	}

	threadID := in.ThreadID
	if threadID == "" {
		threadID = model.NewID("thread")
	}
	createdBy := in.CreatedBy
	if createdBy == "" && !ac.IsAnonymous() {
		createdBy = ac.UserID
	}

	pk, sk := model.ThreadKey(threadID)
	thread := model.Thread{
		PK:        pk,
		SK:        sk,
		Type:      model.TypeThread,
		ThreadID:  threadID,
		CourseID:  courseID,
		Title:     in.Title,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
		GSI2PK:    model.PrefixCourse + courseID,
		GSI2SK:    model.PrefixThread + threadID,
	}

	item, err := attributevalue.MarshalMap(thread)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal thread: %w", err)
	}
	if err := s.store.Put(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("thread created",
		slog.String("threadId", threadID),
		slog.String("courseId", courseID),
		slog.String("createdBy", createdBy))

	return &thread, nil
}

// ListThreads returns all threads of a course via the GSI2 mirror,
// in index order (ascending by THREAD#<id>). Same gating as creation.
func (s *Service) ListThreads(ctx context.Context, ac auth.Context, courseID string) ([]model.Thread, error) {
	if err := s.requireCourseAccess(ctx, ac, courseID); err != nil {
		return nil, err
	}

	items, err := s.store.QueryIndex(ctx, storage.IndexGSI2, model.PrefixCourse+courseID)
	if err != nil {
		return nil, err
	}

	threads := make([]model.Thread, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &threads); err != nil {
		return nil, fmt.Errorf("failed to unmarshal threads: %w", err)
	}
	return threads, nil
}

// PostMessage appends a message to a thread. The thread is resolved
// first (NotFound when absent, never Forbidden); STUDENT callers are
// then gated on enrollment in the thread's own courseId, not any
// caller-supplied value.
func (s *Service) PostMessage(ctx context.Context, ac auth.Context, threadID string, in PostInput) (*model.Message, error) {
	thread, err := s.getThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if ac.Role == auth.RoleStudent {
		if _, err := s.guard.RequireEnrolled(ctx, ac.UserID, thread.CourseID); err != nil {
			return nil, err
		}
	}

	senderID := in.SenderID
	if senderID == "" && !ac.IsAnonymous() {
		senderID = ac.UserID
	}

	now := time.Now().UTC()
	msg := model.Message{
		PK:        model.PrefixThread + threadID,
		SK:        model.MessageSK(now),
		Type:      model.TypeMessage,
		ThreadID:  threadID,
		SenderID:  senderID,
		Body:      in.Body,
		CreatedAt: now,
	}

	item, err := attributevalue.MarshalMap(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := s.store.Put(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("message posted",
		slog.String("threadId", threadID),
		slog.String("senderId", senderID))

	return &msg, nil
}

// ListMessages returns all messages of a thread in sort-key order,
// i.e. ascending creation timestamp. Same resolution and gating as
// posting.
func (s *Service) ListMessages(ctx context.Context, ac auth.Context, threadID string) ([]model.Message, error) {
	thread, err := s.getThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if ac.Role == auth.RoleStudent {
		if _, err := s.guard.RequireEnrolled(ctx, ac.UserID, thread.CourseID); err != nil {
			return nil, err
		}
	}

	items, err := s.store.Query(ctx, model.PrefixThread+threadID, model.PrefixMsg)
	if err != nil {
		return nil, err
	}

	messages := make([]model.Message, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to unmarshal messages: %w", err)
	}
	return messages, nil
}

func (s *Service) requireCourseAccess(ctx context.Context, ac auth.Context, courseID string) error {
	if ac.Role != auth.RoleStudent {
		return nil
	}
	_, err := s.guard.RequireEnrolled(ctx, ac.UserID, courseID)
	return err
}

func (s *Service) getThread(ctx context.Context, threadID string) (*model.Thread, error) {
	pk, sk := model.ThreadKey(threadID)
	item, err := s.store.Get(ctx, pk, sk)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.NotFound("Thread not found")
	}

	var thread model.Thread
	if err := attributevalue.UnmarshalMap(item, &thread); err != nil {
		return nil, fmt.Errorf("failed to unmarshal thread: %w", err)
	}
	return &thread, nil
}

// Package video implements video metadata and signed upload/playback
// URLs for course videos. Objects live in S3; the table only holds
// metadata, so a saved record may point at an object that was never
// uploaded. That surfaces as a broken playback URL, not an API error.
package video

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/whrrk/eduplatform/pkg/apperr"
	"github.com/whrrk/eduplatform/pkg/auth"
	"github.com/whrrk/eduplatform/pkg/model"
	"github.com/whrrk/eduplatform/pkg/storage"
	"golang.org/x/sync/errgroup"
)

// URLTTL is the lifetime of every signed upload and playback URL.
const URLTTL = 5 * time.Minute

// EnrollmentGuard confirms a user is enrolled in a course before
// granting access to its videos. Implemented by the course service.
type EnrollmentGuard interface {
	RequireEnrolled(ctx context.Context, userID, courseID string) (*model.Enrollment, error)
}

// Service handles video operations. A nil signer means no video bucket
// is configured; every operation then fails for that request path.
type Service struct {
	store  storage.Store
	signer Signer
	guard  EnrollmentGuard
	logger *slog.Logger
}

// NewService creates a video service. signer may be nil when the video
// bucket is not configured.
func NewService(store storage.Store, signer Signer, guard EnrollmentGuard, logger *slog.Logger) *Service {
	return &Service{store: store, signer: signer, guard: guard, logger: logger}
}

// Link is one listed video with its signed playback URL.
type Link struct {
	VideoID string `json:"videoId"`
	Title   string `json:"title"`
	URL     string `json:"url"`
}

// CourseVideos is the response of ListCourseVideos.
type CourseVideos struct {
	CourseID string `json:"courseId"`
	Videos   []Link `json:"videos"`
}

// UploadInput is the request body for upload-URL issuance.
type UploadInput struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

// UploadTicket is the response of IssueUploadURL. The client PUTs the
// file to UploadURL and then saves metadata referencing S3Key.
type UploadTicket struct {
	UploadURL string `json:"uploadUrl"`
	S3Key     string `json:"s3Key"`
}

// SaveInput is the request body for metadata save.
type SaveInput struct {
	Title string `json:"title"`
	S3Key string `json:"s3Key"`
}

// Playback is the response of Play.
type Playback struct {
	PlaybackURL string `json:"playbackUrl"`
	ExpiresIn   int    `json:"expiresIn"`
}

// ListCourseVideos returns every video of a course with a signed
// download URL per item. URLs are issued concurrently, results map 1:1
// positionally, and any single failure fails the whole request.
func (s *Service) ListCourseVideos(ctx context.Context, ac auth.Context, courseID string) (*CourseVideos, error) {
	if courseID == "" {
		return nil, apperr.Validation("courseId is required")
	}
	if err := s.requireSigner(); err != nil {
		return nil, err
	}
	if ac.Role == auth.RoleStudent {
		if _, err := s.guard.RequireEnrolled(ctx, ac.UserID, courseID); err != nil {
			return nil, err
		}
	}
	if ac.IsAnonymous() {
		return nil, apperr.Unauthorized("Unauthorized")
	}

	items, err := s.store.Query(ctx, model.PrefixCourse+courseID, model.PrefixVideo)
	if err != nil {
		return nil, err
	}

	videos := make([]model.Video, 0, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items, &videos); err != nil {
		return nil, fmt.Errorf("failed to unmarshal videos: %w", err)
	}

	links := make([]Link, len(videos))
	g, gctx := errgroup.WithContext(ctx)
	for i, v := range videos {
		i, v := i, v
		g.Go(func() error {
			url, err := s.signer.PresignGet(gctx, v.S3Key, URLTTL)
			if err != nil {
				return err
			}
			links[i] = Link{
				VideoID: strings.TrimPrefix(v.SK, model.PrefixVideo),
				Title:   v.Title,
				URL:     url,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &CourseVideos{CourseID: courseID, Videos: links}, nil
}

// IssueUploadURL returns a signed upload URL for a new course video.
// TEACHER role required. No metadata is written here; the client calls
// SaveMetadata after uploading.
func (s *Service) IssueUploadURL(ctx context.Context, ac auth.Context, courseID string, in UploadInput) (*UploadTicket, error) {
	if err := s.requireSigner(); err != nil {
		return nil, err
	}
	if err := auth.RequireRole(ac, auth.RoleTeacher); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Filename) == "" {
		return nil, apperr.Validation("filename is required")
	}

	key := fmt.Sprintf("videos/%s/%d_%s", courseID, time.Now().UnixMilli(), in.Filename)
	url, err := s.signer.PresignPut(ctx, key, in.ContentType, URLTTL)
	if err != nil {
		return nil, err
	}

	s.logger.Info("upload URL issued",
		slog.String("courseId", courseID),
		slog.String("s3Key", key),
		slog.String("userId", ac.UserID))

	return &UploadTicket{UploadURL: url, S3Key: key}, nil
}

// SaveMetadata writes the video metadata record after a client-side
// upload. TEACHER role required, same gate as upload-URL issuance.
// The upload itself is never verified here.
func (s *Service) SaveMetadata(ctx context.Context, ac auth.Context, courseID string, in SaveInput) (*model.Video, error) {
	if err := auth.RequireRole(ac, auth.RoleTeacher); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperr.Validation("title is required")
	}
	if strings.TrimSpace(in.S3Key) == "" {
		return nil, apperr.Validation("s3Key is required")
	}

	videoID := model.NewID("video")
	pk, sk := model.VideoKey(courseID, videoID)
	video := model.Video{
		PK:        pk,
		SK:        sk,
		Type:      model.TypeVideo,
		VideoID:   videoID,
		CourseID:  courseID,
		Title:     in.Title,
		S3Key:     in.S3Key,
		CreatedBy: ac.UserID,
		CreatedAt: time.Now().UTC(),
	}

	item, err := attributevalue.MarshalMap(video)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal video: %w", err)
	}
	if err := s.store.Put(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("video metadata saved",
		slog.String("courseId", courseID),
		slog.String("videoId", videoID),
		slog.String("s3Key", in.S3Key))

	return &video, nil
}

// Play returns a signed playback URL for a single video. STUDENT
// callers must be enrolled; a missing record or empty s3Key is NotFound.
func (s *Service) Play(ctx context.Context, ac auth.Context, courseID, videoID string) (*Playback, error) {
	if courseID == "" || videoID == "" {
		return nil, apperr.Validation("courseId and videoId are required")
	}
	if err := s.requireSigner(); err != nil {
		return nil, err
	}
	if ac.IsAnonymous() {
		return nil, apperr.Unauthorized("Unauthorized")
	}
	if ac.Role == auth.RoleStudent {
		if _, err := s.guard.RequireEnrolled(ctx, ac.UserID, courseID); err != nil {
			return nil, err
		}
	}

	pk, sk := model.VideoKey(courseID, videoID)
	item, err := s.store.Get(ctx, pk, sk)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperr.NotFound("Video not found")
	}

	var video model.Video
	if err := attributevalue.UnmarshalMap(item, &video); err != nil {
		return nil, fmt.Errorf("failed to unmarshal video: %w", err)
	}
	if video.S3Key == "" {
		return nil, apperr.NotFound("Video not found")
	}

	url, err := s.signer.PresignGet(ctx, video.S3Key, URLTTL)
	if err != nil {
		return nil, err
	}
	return &Playback{PlaybackURL: url, ExpiresIn: int(URLTTL.Seconds())}, nil
}

func (s *Service) requireSigner() error {
	if s.signer == nil {
		return apperr.New(http.StatusInternalServerError, "video bucket not configured")
	}
	return nil
}

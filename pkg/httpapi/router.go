// Package httpapi exposes the platform services over HTTP for the
// local server mode. The deployed API serves the same routes through
// the Lambda proxy integration in pkg/lambdaapi.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/whrrk/eduplatform/pkg/course"
	"github.com/whrrk/eduplatform/pkg/thread"
	"github.com/whrrk/eduplatform/pkg/video"
)

// API maps HTTP routes onto the service layer.
type API struct {
	courses *course.Service
	threads *thread.Service
	videos  *video.Service
	logger  *slog.Logger
}

// New creates the HTTP API.
func New(courses *course.Service, threads *thread.Service, videos *video.Service, logger *slog.Logger) *API {
	return &API{courses: courses, threads: threads, videos: videos, logger: logger}
}

// Router builds the chi router with CORS and identity middleware.
func (a *API) Router(allowedOrigin string) http.Handler {
	r := chi.NewRouter()
	r.Use(corsMiddleware(allowedOrigin))
	r.Use(withAuthContext)

	r.Get("/health", a.handleHealth)

	r.Get("/courses", a.handleListCourses)
	r.Post("/courses", a.handleCreateCourse)
	r.Post("/courses/{courseId}/enroll", a.handleEnroll)
	r.Get("/courses/{courseId}/members", a.handleListMembers)
	r.Get("/me/courses", a.handleListMyCourses)

	r.Get("/courses/{courseId}/threads", a.handleListThreads)
	r.Post("/courses/{courseId}/threads", a.handleCreateThread)
	r.Get("/threads/{threadId}/messages", a.handleListMessages)
	r.Post("/threads/{threadId}/messages", a.handlePostMessage)

	r.Get("/courses/{courseId}/videos", a.handleListVideos)
	r.Post("/courses/{courseId}/videos", a.handleSaveVideo)
	r.Post("/courses/{courseId}/videos/upload", a.handleUploadVideo)
	r.Get("/courses/{courseId}/videos/{videoId}/play", a.handlePlayVideo)

	return r
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "OK",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func (a *API) handleListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := a.courses.ListCourses(r.Context())
	if err != nil {
		writeError(w, a.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, courses)
}

func (a *API) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	var in course.CreateInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, a.logger, r, err)
		return
	}

	created, err := a.courses.CreateCourse(r.Context(), authContext(r), in)
	if err != nil {
		writeError(w, a.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (a *API) handleEnroll(w http.ResponseWriter, r *http.Request) {
	var in course.EnrollInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, a.logger, r, err)
		return
	}

	enrollment, err := a.courses.Enroll(r.Context(), authContext(r), chi.URLParam(r, "courseId"), in)
	if err != nil {
		writeError(w, a.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, enrollment)
}

func (a *API) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := a.courses.ListMembers(r.Context(), authContext(r), chi.URLParam(r, "courseId"))
	if err != nil {
		writeError(w, a.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}

func (a *API) handleListMyCourses(w http.ResponseWriter, r *http.Request) {
	enrollments, err := a.courses.ListCallerCourses(r.Context(), authContext(r))
	if err != nil {
		writeError(w, a.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, enrollments)
}

func (a *API) handleListThreads(w http.ResponseWriter, r *http.Request) {
	threads, err := a.threads.ListThreads(r.Context(), authContext(r), chi.URLParam(r, "courseId"))
	if err != nil {
		writeError(w, a.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, threads)
}

func (a *API) handleCreateThread(w http.ResponseWriter, r *http.Request) {
	var in thread.CreateInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, a.logger, r, err)
		return
	}

	created, err := a.threads.CreateThread(r.Context(), authContext(r), chi.URLParam(r, "courseId"), in)
	if err != nil {
		writeError(w, a.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (a *API) handleListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := a.threads.ListMessages(r.Context(), authContext(r), chi.URLParam(r, "threadId"))
	if err != nil {
		writeError(w, a.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (a *API) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var in thread.PostInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, a.logger, r, err)
		return
	}

	msg, err := a.threads.PostMessage(r.Context(), authContext(r), chi.URLParam(r, "threadId"), in)
	if err != nil {
		writeError(w, a.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (a *API) handleListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := a.videos.ListCourseVideos(r.Context(), authContext(r), chi.URLParam(r, "courseId"))
	if err != nil {
		writeError(w, a.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, videos)
}

func (a *API) handleSaveVideo(w http.ResponseWriter, r *http.Request) {
	var in video.SaveInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, a.logger, r, err)
		return
	}

	saved, err := a.videos.SaveMetadata(r.Context(), authContext(r), chi.URLParam(r, "courseId"), in)
	if err != nil {
		writeError(w, a.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (a *API) handleUploadVideo(w http.ResponseWriter, r *http.Request) {
	var in video.UploadInput
	if err := decodeBody(r, &in); err != nil {
		writeError(w, a.logger, r, err)
		return
	}

	ticket, err := a.videos.IssueUploadURL(r.Context(), authContext(r), chi.URLParam(r, "courseId"), in)
	if err != nil {
		writeError(w, a.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ticket)
}

func (a *API) handlePlayVideo(w http.ResponseWriter, r *http.Request) {
	playback, err := a.videos.Play(r.Context(), authContext(r),
		chi.URLParam(r, "courseId"), chi.URLParam(r, "videoId"))
	if err != nil {
		writeError(w, a.logger, r, err)
		return
	}
	writeJSON(w, http.StatusOK, playback)
}

// Package lambdaapi serves the platform API behind the API Gateway
// proxy integration. Dispatch is on gateway resource + method, and
// identity comes from the authorizer-populated claims object on the
// request context; raw headers are never parsed.
package lambdaapi

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"
	"github.com/whrrk/eduplatform/pkg/apperr"
	"github.com/whrrk/eduplatform/pkg/auth"
	"github.com/whrrk/eduplatform/pkg/course"
	"github.com/whrrk/eduplatform/pkg/thread"
	"github.com/whrrk/eduplatform/pkg/video"
)

// Handler routes API Gateway proxy events to the service layer.
type Handler struct {
	courses       *course.Service
	threads       *thread.Service
	videos        *video.Service
	allowedOrigin string
	logger        *slog.Logger
}

// New creates the Lambda API handler.
func New(courses *course.Service, threads *thread.Service, videos *video.Service, allowedOrigin string, logger *slog.Logger) *Handler {
	return &Handler{
		courses:       courses,
		threads:       threads,
		videos:        videos,
		allowedOrigin: allowedOrigin,
		logger:        logger,
	}
}

// Handle processes one API Gateway proxy event.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	if req.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusNoContent,
			Headers:    h.corsHeaders(),
		}, nil
	}

	ac := auth.FromClaims(authorizerClaims(req.RequestContext))
	result, err := h.dispatch(ctx, ac, req)
	if err != nil {
		return h.fail(req, err), nil
	}
	return h.ok(result), nil
}

func (h *Handler) dispatch(ctx context.Context, ac auth.Context, req events.APIGatewayProxyRequest) (any, error) {
	params := req.PathParameters
	method := req.HTTPMethod

	switch req.Resource {
	case "/health":
		if method == http.MethodGet {
			return map[string]string{"message": "OK"}, nil
		}

	case "/courses":
		switch method {
		case http.MethodGet:
			return h.courses.ListCourses(ctx)
		case http.MethodPost:
			var in course.CreateInput
			if err := decodeBody(req.Body, &in); err != nil {
				return nil, err
			}
			return h.courses.CreateCourse(ctx, ac, in)
		}

	case "/courses/{courseId}/enroll":
		if method == http.MethodPost {
			var in course.EnrollInput
			if err := decodeBody(req.Body, &in); err != nil {
				return nil, err
			}
			return h.courses.Enroll(ctx, ac, params["courseId"], in)
		}

	case "/courses/{courseId}/members":
		if method == http.MethodGet {
			return h.courses.ListMembers(ctx, ac, params["courseId"])
		}

	case "/me/courses":
		if method == http.MethodGet {
			return h.courses.ListCallerCourses(ctx, ac)
		}

	case "/courses/{courseId}/threads":
		switch method {
		case http.MethodGet:
			return h.threads.ListThreads(ctx, ac, params["courseId"])
		case http.MethodPost:
			var in thread.CreateInput
			if err := decodeBody(req.Body, &in); err != nil {
				return nil, err
			}
			return h.threads.CreateThread(ctx, ac, params["courseId"], in)
		}

	case "/threads/{threadId}/messages":
		switch method {
		case http.MethodGet:
			return h.threads.ListMessages(ctx, ac, params["threadId"])
		case http.MethodPost:
			var in thread.PostInput
			if err := decodeBody(req.Body, &in); err != nil {
				return nil, err
			}
			return h.threads.PostMessage(ctx, ac, params["threadId"], in)
		}

	case "/courses/{courseId}/videos":
		switch method {
		case http.MethodGet:
			return h.videos.ListCourseVideos(ctx, ac, params["courseId"])
		case http.MethodPost:
			var in video.SaveInput
			if err := decodeBody(req.Body, &in); err != nil {
				return nil, err
			}
			return h.videos.SaveMetadata(ctx, ac, params["courseId"], in)
		}

	case "/courses/{courseId}/videos/upload":
		if method == http.MethodPost {
			var in video.UploadInput
			if err := decodeBody(req.Body, &in); err != nil {
				return nil, err
			}
			return h.videos.IssueUploadURL(ctx, ac, params["courseId"], in)
		}

	case "/courses/{courseId}/videos/{videoId}/play":
		if method == http.MethodGet {
			return h.videos.Play(ctx, ac, params["courseId"], params["videoId"])
		}
	}

	return nil, apperr.NotFound("Not Found")
}

func (h *Handler) corsHeaders() map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  h.allowedOrigin,
		"Access-Control-Allow-Headers": "Content-Type,Authorization",
		"Access-Control-Allow-Methods": "GET,POST,PUT,DELETE,OPTIONS",
	}
}

func (h *Handler) ok(body any) events.APIGatewayProxyResponse {
	headers := h.corsHeaders()
	headers["Content-Type"] = "application/json"

	encoded, err := json.Marshal(body)
	if err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusInternalServerError,
			Headers:    headers,
			Body:       `{"message":"Internal Server Error"}`,
		}
	}
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    headers,
		Body:       string(encoded),
	}
}

func (h *Handler) fail(req events.APIGatewayProxyRequest, err error) events.APIGatewayProxyResponse {
	status := apperr.StatusOf(err)
	h.logger.Error("request failed",
		slog.String("method", req.HTTPMethod),
		slog.String("resource", req.Resource),
		slog.Int("status", status),
		slog.String("error", err.Error()))

	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "Internal Server Error"
	}

	headers := h.corsHeaders()
	headers["Content-Type"] = "application/json"
	encoded, _ := json.Marshal(map[string]string{"message": msg})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    headers,
		Body:       string(encoded),
	}
}

// authorizerClaims extracts the claims mapping the gateway authorizer
// attached to the request, or nil when the route is unauthenticated.
func authorizerClaims(rc events.APIGatewayProxyRequestContext) map[string]any {
	if rc.Authorizer == nil {
		return nil
	}
	if claims, ok := rc.Authorizer["claims"].(map[string]any); ok {
		return claims
	}
	return nil
}

func decodeBody(body string, v any) error {
	if body == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return apperr.Validation("invalid JSON body")
	}
	return nil
}

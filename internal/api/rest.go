package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"coursekit/internal/editor"
	"coursekit/internal/model"
)

// RestOptions configures a RestAPI.
type RestOptions struct {
	BaseURL    string
	Token      string // bearer token; empty sends no Authorization header
	Timeout    time.Duration
	MaxRetries int           // retries for GET requests on 5xx and 429
	RetryWait  time.Duration // initial wait between retries
	Logger     editor.Logger
}

// RestAPI talks to the LMS course service over HTTP. Every answer is wrapped
// in a {"status", "message", "data"} envelope.
//
// Only GET requests are retried. Save-path calls fail fast so the orchestrator
// can stop at the first failing step.
type RestAPI struct {
	client *resty.Client
	logger editor.Logger
}

type envelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

type orderRequest struct {
	Items []model.Position `json:"items"`
}

// NewRestAPI creates a RestAPI.
func NewRestAPI(opts RestOptions) (*RestAPI, error) {
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("rest api requires a base url")
	}
	logger := opts.Logger
	if logger == nil {
		logger = editor.NewNopLogger()
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("Accept", "application/json")
	if opts.Token != "" {
		client.SetAuthToken(opts.Token)
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.MaxRetries > 0 {
		client.SetRetryCount(opts.MaxRetries).AddRetryCondition(retryableGET)
		if opts.RetryWait > 0 {
			client.SetRetryWaitTime(opts.RetryWait).SetRetryMaxWaitTime(4 * opts.RetryWait)
		}
		client.AddRetryHook(func(r *resty.Response, err error) {
			if r != nil && r.Request != nil {
				logger.Warn("retrying request", "method", r.Request.Method, "url", r.Request.URL, "status", r.StatusCode())
			}
		})
	}

	return &RestAPI{client: client, logger: logger}, nil
}

func retryableGET(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
		return false
	}
	e := HTTPError{Method: r.Request.Method, StatusCode: r.StatusCode()}
	return e.IsRetryable()
}

func (a *RestAPI) ListCourses(ctx context.Context) ([]*model.Course, error) {
	return call[[]*model.Course](ctx, a, http.MethodGet, "/courses", nil, nil)
}

func (a *RestAPI) CreateCourse(ctx context.Context, f model.CourseFields) (*model.Course, error) {
	return call[*model.Course](ctx, a, http.MethodPost, "/courses", nil, f)
}

func (a *RestAPI) GetCourse(ctx context.Context, id string) (*model.Course, error) {
	return call[*model.Course](ctx, a, http.MethodGet, "/courses/{id}", pathID(id), nil)
}

func (a *RestAPI) UpdateCourse(ctx context.Context, id string, f model.CourseFields) error {
	_, err := call[struct{}](ctx, a, http.MethodPut, "/courses/{id}", pathID(id), f)
	return err
}

func (a *RestAPI) CreateModule(ctx context.Context, courseID string, f model.ModuleFields) (*model.Module, error) {
	return call[*model.Module](ctx, a, http.MethodPost, "/courses/{id}/modules", pathID(courseID), f)
}

func (a *RestAPI) UpdateModule(ctx context.Context, id string, f model.ModuleFields) error {
	_, err := call[struct{}](ctx, a, http.MethodPut, "/modules/{id}", pathID(id), f)
	return err
}

func (a *RestAPI) DeleteModule(ctx context.Context, id string) error {
	_, err := call[struct{}](ctx, a, http.MethodDelete, "/modules/{id}", pathID(id), nil)
	return err
}

func (a *RestAPI) ReorderModules(ctx context.Context, courseID string, order []model.Position) error {
	_, err := call[struct{}](ctx, a, http.MethodPut, "/courses/{id}/modules/order", pathID(courseID), orderRequest{Items: order})
	return err
}

func (a *RestAPI) CreateLesson(ctx context.Context, moduleID string, f model.LessonFields) (*model.Lesson, error) {
	return call[*model.Lesson](ctx, a, http.MethodPost, "/modules/{id}/lessons", pathID(moduleID), f)
}

func (a *RestAPI) UpdateLesson(ctx context.Context, id string, f model.LessonFields) error {
	_, err := call[struct{}](ctx, a, http.MethodPut, "/lessons/{id}", pathID(id), f)
	return err
}

func (a *RestAPI) DeleteLesson(ctx context.Context, id string) error {
	_, err := call[struct{}](ctx, a, http.MethodDelete, "/lessons/{id}", pathID(id), nil)
	return err
}

func (a *RestAPI) ReorderLessons(ctx context.Context, moduleID string, order []model.Position) error {
	_, err := call[struct{}](ctx, a, http.MethodPut, "/modules/{id}/lessons/order", pathID(moduleID), orderRequest{Items: order})
	return err
}

// call issues one request and unwraps the response envelope.
func call[T any](ctx context.Context, a *RestAPI, method, path string, params map[string]string, body any) (T, error) {
	var (
		zero   T
		result envelope[T]
		failed envelope[struct{}]
	)

	req := a.client.R().
		SetContext(ctx).
		ForceContentType("application/json").
		SetResult(&result).
		SetError(&failed)
	if params != nil {
		req.SetPathParams(params)
	}
	if body != nil {
		req.SetBody(body)
	}

	resolved := expandPath(path, params)
	resp, err := req.Execute(method, path)
	if err != nil {
		return zero, fmt.Errorf("%s %s: %w", method, resolved, err)
	}
	a.logger.Debug("api call", "method", method, "path", resolved, "status", resp.StatusCode(), "duration", resp.Time())

	if resp.IsError() {
		return zero, &HTTPError{Method: method, Path: resolved, StatusCode: resp.StatusCode(), Message: failed.Message}
	}
	if resp.StatusCode() == http.StatusNoContent || len(resp.Body()) == 0 {
		return zero, nil
	}
	if !result.Status {
		return zero, &HTTPError{Method: method, Path: resolved, StatusCode: resp.StatusCode(), Message: result.Message}
	}
	return result.Data, nil
}

func pathID(id string) map[string]string {
	return map[string]string{"id": id}
}

func expandPath(path string, params map[string]string) string {
	for k, v := range params {
		path = strings.ReplaceAll(path, "{"+k+"}", v)
	}
	return path
}

// Compile-time check that RestAPI implements editor.CourseAPI interface
var _ editor.CourseAPI = (*RestAPI)(nil)

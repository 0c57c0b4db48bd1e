package gateway

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-sync/internal/models"
)

const (
	DefaultTimeout = 10 * time.Second

	tasksPath       = "/tasks"
	maxResponseSize = 4 << 20 // 4 MiB
)

type Options struct {
	// Timeout bounds every remote call. Zero means DefaultTimeout.
	Timeout time.Duration
	// HTTPClient overrides the client used for remote calls.
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client performs the remote operations on the task collection. It
// holds no task state: every call hits the resource.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	logger  zerolog.Logger
}

// New returns a Client for the task collection served under baseURL,
// e.g. "http://localhost:8080" for "http://localhost:8080/tasks".
func New(baseURL string, opts Options) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported base url scheme %q", u.Scheme)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		timeout: timeout,
		http:    httpClient,
		logger:  opts.Logger,
	}, nil
}

func (c *Client) List(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	err := c.do(ctx, "list", http.MethodGet, tasksPath, nil, http.StatusOK, &tasks)
	if err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	if id, ok := models.DuplicateTaskID(tasks); ok {
		return nil, &TransportError{Op: "list", Err: fmt.Errorf("duplicate task id %q", id)}
	}

	c.logger.Debug().
		Int("count", len(tasks)).
		Msg("listed remote tasks")
	return tasks, nil
}

func (c *Client) Create(ctx context.Context, draft models.TaskDraft) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, "create", http.MethodPost, tasksPath, draft, http.StatusCreated, &task)
	if err != nil {
		return models.Task{}, err
	}
	if task.ID == "" {
		return models.Task{}, &TransportError{Op: "create", Err: errors.New("created task has no id")}
	}

	c.logger.Debug().
		Str("task_id", task.ID).
		Msg("created remote task")
	return task, nil
}

func (c *Client) Update(ctx context.Context, id string, patch models.TaskPatch) (models.Task, error) {
	var task models.Task
	err := c.do(ctx, "update", http.MethodPatch, taskPath(id), patch, http.StatusOK, &task)
	if err != nil {
		return models.Task{}, err
	}
	if task.ID != id {
		return models.Task{}, &TransportError{
			Op:  "update",
			Err: fmt.Errorf("updated task has id %q, want %q", task.ID, id),
		}
	}

	c.logger.Debug().
		Str("task_id", task.ID).
		Msg("updated remote task")
	return task, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	err := c.do(ctx, "delete", http.MethodDelete, taskPath(id), nil, http.StatusNoContent, nil)
	if err != nil {
		return err
	}

	c.logger.Debug().
		Str("task_id", id).
		Msg("deleted remote task")
	return nil
}

func taskPath(id string) string {
	return tasksPath + "/" + url.PathEscape(id)
}

func (c *Client) do(
	ctx context.Context,
	op, method, path string,
	body any,
	wantStatus int,
	out any,
) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("failed to encode request: %w", err)}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err, timeout: isTimeout(ctx, err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound && (op == "update" || op == "delete"):
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return fmt.Errorf("%s task %s: %w", op, strings.TrimPrefix(path, tasksPath+"/"), ErrNotFound)
	case resp.StatusCode != wantStatus && (resp.StatusCode < 200 || resp.StatusCode > 299):
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return &TransportError{Op: op, StatusCode: resp.StatusCode}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		return nil
	}

	dec := sonic.ConfigStd.NewDecoder(io.LimitReader(resp.Body, maxResponseSize))
	err = dec.Decode(out)
	if err != nil {
		return &TransportError{
			Op:      op,
			Err:     fmt.Errorf("failed to decode response: %w", err),
			timeout: isTimeout(ctx, err),
		}
	}
	return nil
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

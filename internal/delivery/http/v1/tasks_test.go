package v1

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-todo-sync/internal/models"
	"github.com/adanyl0v/go-todo-sync/internal/services"
)

func newTestRouter(seed ...models.Task) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	logger := zerolog.Nop()
	RegisterRoutes(router, New(logger, services.NewMemoryTaskService(logger, seed...)))
	return router
}

func serve(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandleGetTasksEmptyCollection(t *testing.T) {
	rec := serve(newTestRouter(), http.MethodGet, "/tasks", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("expected empty array, got %s", body)
	}
}

func TestHandleGetTasksRecordShape(t *testing.T) {
	seed := models.Task{ID: "1", Title: "A", Description: "B", CreatedAt: "2024-01-01T00:00:00Z"}
	rec := serve(newTestRouter(seed), http.MethodGet, "/tasks", "")

	want := `[{"id":"1","title":"A","description":"B","completed":false,"createdAt":"2024-01-01T00:00:00Z"}]`
	if body := strings.TrimSpace(rec.Body.String()); body != want {
		t.Fatalf("unexpected body %s", body)
	}
}

func TestHandleCreateTask(t *testing.T) {
	router := newTestRouter()
	rec := serve(router, http.MethodPost, "/tasks", `{"title":"C","description":"D"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var task models.Task
	if err := sonic.Unmarshal(rec.Body.Bytes(), &task); err != nil {
		t.Fatalf("decode task: %v", err)
	}
	if task.ID == "" || task.Title != "C" || task.Description != "D" || task.Completed || task.CreatedAt == "" {
		t.Fatalf("unexpected task %+v", task)
	}

	rec = serve(router, http.MethodGet, "/tasks", "")
	var tasks []models.Task
	if err := sonic.Unmarshal(rec.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("decode tasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0] != task {
		t.Fatalf("unexpected tasks %+v", tasks)
	}
}

func TestHandleCreateTaskRejectsInvalidDrafts(t *testing.T) {
	cases := map[string]string{
		"malformed":        `{"title":`,
		"empty title":      `{"title":"","description":"D"}`,
		"blank desc":       `{"title":"C","description":"   "}`,
		"non alphanumeric": `{"title":"C!","description":"D"}`,
	}
	for name, body := range cases {
		rec := serve(newTestRouter(), http.MethodPost, "/tasks", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, rec.Code)
		}
	}
}

func TestHandleUpdateTask(t *testing.T) {
	seed := models.Task{ID: "1", Title: "A", Description: "B", CreatedAt: "2024-01-01T00:00:00Z"}
	router := newTestRouter(seed)

	for _, method := range []string{http.MethodPatch, http.MethodPut} {
		rec := serve(router, method, "/tasks/1", `{"title":"X"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", method, rec.Code)
		}
		var task models.Task
		if err := sonic.Unmarshal(rec.Body.Bytes(), &task); err != nil {
			t.Fatalf("%s: decode task: %v", method, err)
		}
		want := seed
		want.Title = "X"
		if task != want {
			t.Fatalf("%s: expected %+v, got %+v", method, want, task)
		}
	}

	rec := serve(router, http.MethodPatch, "/tasks/missing", `{"title":"X"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandleDeleteTask(t *testing.T) {
	router := newTestRouter(models.Task{ID: "1", Title: "A", Description: "B"})

	rec := serve(router, http.MethodDelete, "/tasks/1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %s", rec.Body.String())
	}

	rec = serve(router, http.MethodDelete, "/tasks/1", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

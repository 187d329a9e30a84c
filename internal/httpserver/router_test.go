package httpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"habitpal/internal/handler"
	"habitpal/internal/notifier"
	"habitpal/internal/reminder"
	"habitpal/internal/repository"
	"habitpal/internal/service"
	"habitpal/pkg/trace"
)

type testAPI struct {
	router *Router
	svc    *service.HabitService
	hub    *notifier.Hub
	dir    string
}

func newTestAPI(t *testing.T, secret string) *testAPI {
	return newTestAPIWithBroker(t, secret, nil)
}

func newTestAPIWithBroker(t *testing.T, secret string, brokerUp func() bool) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	log := zap.NewNop()
	hub := notifier.NewHub(log)

	sched := reminder.NewScheduler(reminder.Options{Notifier: hub, Disabled: true}, log)
	t.Cleanup(sched.Close)

	svc := service.NewHabitService(
		repository.NewHabitFileRepository(filepath.Join(dir, "habits.txt"), log),
		repository.NewProfileFileRepository(filepath.Join(dir, "user.txt"), log),
		sched,
		hub,
		log,
	)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}

	router := NewRouter(
		handler.NewHabitHandler(svc, filepath.Join(dir, "habit_report.csv"), log),
		handler.NewReminderHandler(svc, hub, log),
		handler.NewProfileHandler(svc, log),
		secret,
		brokerUp,
		log,
	)
	return &testAPI{router: router, svc: svc, hub: hub, dir: dir}
}

func (a *testAPI) do(t *testing.T, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header[http.CanonicalHeaderKey(k)] = v
	}

	w := httptest.NewRecorder()
	a.router.Engine.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t, "")

	w := api.do(t, http.MethodGet, "/healthz", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d want 200", w.Code)
	}
	if w.Header().Get(trace.HeaderName) == "" {
		t.Fatal("expected a trace id on the response")
	}
}

func TestReadyz(t *testing.T) {
	up := true
	api := newTestAPIWithBroker(t, "", func() bool { return up })

	if w := api.do(t, http.MethodGet, "/readyz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("status = %d want 200", w.Code)
	}

	up = false
	if w := api.do(t, http.MethodGet, "/readyz", "", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d want 503", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	api := newTestAPI(t, "")

	api.do(t, http.MethodGet, "/healthz", "", nil)
	w := api.do(t, http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "habitpal_http_request_duration_seconds") {
		t.Fatal("expected http duration histogram in /metrics")
	}
}

func TestTraceIDPropagated(t *testing.T) {
	api := newTestAPI(t, "")

	w := api.do(t, http.MethodGet, "/healthz", "", http.Header{trace.HeaderName: {"abc123"}})
	if got := w.Header().Get(trace.HeaderName); got != "abc123" {
		t.Fatalf("trace id = %q want abc123", got)
	}
}

func TestHabitLifecycle(t *testing.T) {
	api := newTestAPI(t, "")

	w := api.do(t, http.MethodPost, "/habits", `{"name":"Meditate","frequency":"Daily","total_days":10,"reminder_time":"07:00"}`, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("add status = %d body %s", w.Code, w.Body)
	}

	w = api.do(t, http.MethodPost, "/habits/0/complete", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("complete status = %d body %s", w.Code, w.Body)
	}

	w = api.do(t, http.MethodGet, "/habits", "", nil)
	var list struct {
		Habits []struct {
			Index         int     `json:"index"`
			Name          string  `json:"name"`
			CompletedDays int     `json:"completed_days"`
			Progress      float64 `json:"progress"`
		} `json:"habits"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Habits) != 1 || list.Habits[0].CompletedDays != 1 || list.Habits[0].Progress != 10 {
		t.Fatalf("unexpected list %+v", list.Habits)
	}

	w = api.do(t, http.MethodPost, "/reports", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("report status = %d body %s", w.Code, w.Body)
	}
	if !strings.Contains(w.Body.String(), "habit_report.csv") {
		t.Fatalf("report body %s", w.Body)
	}

	w = api.do(t, http.MethodDelete, "/habits/0", "", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}
	w = api.do(t, http.MethodDelete, "/habits/0", "", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete of missing habit status = %d", w.Code)
	}
}

func TestReportPathConfinedToReportDir(t *testing.T) {
	api := newTestAPI(t, "")
	outside := filepath.Join(filepath.Dir(api.dir), "victim.txt")

	for _, body := range []string{
		`{"path":"../victim.txt"}`,
		`{"path":"` + filepath.ToSlash(outside) + `"}`,
		`{"path":"nested/x.csv"}`,
	} {
		w := api.do(t, http.MethodPost, "/reports", body, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d want 400, body %s", body, w.Code, w.Body)
		}
	}
	if _, err := os.Stat(outside); !os.IsNotExist(err) {
		t.Fatalf("file written outside report dir: %v", err)
	}

	w := api.do(t, http.MethodPost, "/reports", `{"path":"custom.csv"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body %s", w.Code, w.Body)
	}
	if _, err := os.Stat(filepath.Join(api.dir, "custom.csv")); err != nil {
		t.Fatalf("report not written beside default: %v", err)
	}
}

func TestHabitErrors(t *testing.T) {
	api := newTestAPI(t, "")

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"bad json", http.MethodPost, "/habits", `{`, http.StatusBadRequest},
		{"validation", http.MethodPost, "/habits", `{"name":"","frequency":"Daily","total_days":3}`, http.StatusBadRequest},
		{"bad frequency", http.MethodPost, "/habits", `{"name":"Gym","frequency":"Hourly","total_days":3}`, http.StatusBadRequest},
		{"bad index", http.MethodPost, "/habits/x/complete", "", http.StatusBadRequest},
		{"out of range", http.MethodPost, "/habits/4/complete", "", http.StatusBadRequest},
		{"unknown prompt", http.MethodPost, "/reminders/prompts/nope", `{"decision":"skip"}`, http.StatusNotFound},
		{"unknown decision", http.MethodPost, "/reminders/prompts/nope", `{"decision":"later"}`, http.StatusBadRequest},
		{"no profile", http.MethodGet, "/profile", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := api.do(t, tt.method, tt.path, tt.body, nil)
			if w.Code != tt.want {
				t.Fatalf("status = %d want %d body %s", w.Code, tt.want, w.Body)
			}
		})
	}
}

func TestProfileRoutes(t *testing.T) {
	api := newTestAPI(t, "")

	w := api.do(t, http.MethodPut, "/profile", `{"name":"Ana","email":"ana@example.com","gender":"F"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("save status = %d body %s", w.Code, w.Body)
	}

	w = api.do(t, http.MethodGet, "/profile", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"email":"ana@example.com"`) {
		t.Fatalf("unexpected body %s", w.Body)
	}
}

func TestReminderRoutes(t *testing.T) {
	api := newTestAPI(t, "")

	w := api.do(t, http.MethodPost, "/reminders/reschedule", "", nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("reschedule status = %d", w.Code)
	}

	w = api.do(t, http.MethodGet, "/reminders", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"reminders"`) {
		t.Fatalf("reminders status = %d body %s", w.Code, w.Body)
	}

	w = api.do(t, http.MethodGet, "/reminders/prompts", "", nil)
	if w.Code != http.StatusOK || w.Body.String() != `{"prompts":[]}` {
		t.Fatalf("prompts status = %d body %s", w.Code, w.Body)
	}
}

func TestAuthGuard(t *testing.T) {
	api := newTestAPI(t, "s3cret")

	if w := api.do(t, http.MethodGet, "/habits", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d want 401", w.Code)
	}
	if w := api.do(t, http.MethodGet, "/habits", "", http.Header{"Authorization": {"Bearer junk"}}); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token status = %d want 401", w.Code)
	}
	if w := api.do(t, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("healthz must stay open, got %d", w.Code)
	}

	token, err := GenerateToken("local", "s3cret", time.Hour)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if w := api.do(t, http.MethodGet, "/habits", "", http.Header{"Authorization": {"Bearer " + token}}); w.Code != http.StatusOK {
		t.Fatalf("valid token status = %d want 200", w.Code)
	}
}

func TestEventsStream(t *testing.T) {
	api := newTestAPI(t, "")

	srv := httptest.NewServer(api.router.Engine)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/reminders/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}

	deadline := time.Now().Add(2 * time.Second)
	for api.hub.Subscribers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream never subscribed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	api.hub.ReminderFired(context.Background(), reminder.Prompt{ID: "p1", HabitName: "Meditate", Kind: reminder.KindDaily})

	lines := make(chan string, 8)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	var got []string
	for len(got) < 2 {
		select {
		case line, ok := <-lines:
			if !ok {
				t.Fatalf("stream closed early, got %v", got)
			}
			if line != "" {
				got = append(got, line)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out, got %v", got)
		}
	}

	if got[0] != "event: fired" {
		t.Fatalf("event line = %q", got[0])
	}
	if !strings.HasPrefix(got[1], "data: ") || !strings.Contains(got[1], `"id":"p1"`) {
		t.Fatalf("data line = %q", got[1])
	}
}

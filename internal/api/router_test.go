package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/taskpilot/internal/chat"
	"github.com/alexanderramin/taskpilot/internal/domain"
	"github.com/alexanderramin/taskpilot/internal/intelligence"
	"github.com/alexanderramin/taskpilot/internal/llm"
	"github.com/alexanderramin/taskpilot/internal/mail"
	"github.com/alexanderramin/taskpilot/internal/service"
	"github.com/alexanderramin/taskpilot/internal/testutil"
	"github.com/alexanderramin/taskpilot/internal/tracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"nhooyr.io/websocket"
)

type fakeServices struct {
	tasks      []domain.Task
	err        error
	assignErr  error
	pendingArg time.Time
	recIDs     []int
	emailErr   error
}

func (f *fakeServices) All(context.Context) ([]domain.Task, error) { return f.tasks, f.err }
func (f *fakeServices) Unassigned(context.Context) ([]domain.Task, error) {
	return f.tasks, f.err
}
func (f *fakeServices) Pending(_ context.Context, due time.Time) ([]domain.Task, error) {
	f.pendingArg = due
	return f.tasks, f.err
}
func (f *fakeServices) Assign(_ context.Context, id int, email string) (domain.Task, error) {
	if f.assignErr != nil {
		return domain.Task{}, f.assignErr
	}
	return testutil.NewTask(id, testutil.WithAssignee(email, "")), nil
}
func (f *fakeServices) BulkAssign(_ context.Context, as []service.Assignment) []service.AssignmentResult {
	out := make([]service.AssignmentResult, len(as))
	for i, a := range as {
		out[i] = service.AssignmentResult{WorkItemID: a.WorkItemID, UserEmail: a.UserEmail, Success: a.WorkItemID%2 == 1}
	}
	return out
}
func (f *fakeServices) CountByState(context.Context) (map[string]int, error) {
	return map[string]int{"Active": 2}, f.err
}
func (f *fakeServices) CountByAssignment(context.Context) (map[string]int, error) {
	return map[string]int{"Unassigned": 1}, f.err
}
func (f *fakeServices) CountByType(context.Context) (map[string]int, error) {
	return map[string]int{"Bug": 3}, f.err
}

func (f *fakeServices) Users(context.Context) ([]domain.User, error) {
	return []domain.User{testutil.NewUser("Ana Lima")}, f.err
}
func (f *fakeServices) TaskCounts(context.Context) (domain.TaskCounts, error) {
	return domain.TaskCounts{"ana.lima@example.com": {DisplayName: "Ana Lima", TaskCount: 3}}, f.err
}
func (f *fakeServices) TotalPriorityByUser(context.Context) (map[string]int, error) {
	return map[string]int{"ana.lima@example.com": 57}, f.err
}

func (f *fakeServices) RiskItems(context.Context) (*service.RiskReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.RiskReport{Items: f.tasks, TotalAtRisk: len(f.tasks), RankedBy: service.RankedByScore}, nil
}
func (f *fakeServices) RiskReport(context.Context) (*service.RiskReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.RiskReport{Items: f.tasks, RankedBy: service.RankedByModel}, nil
}

func (f *fakeServices) Recommend(_ context.Context, ids []int) ([]intelligence.Recommendation, error) {
	f.recIDs = ids
	return []intelligence.Recommendation{{Email: "ana.lima@example.com", DisplayName: "Ana Lima", Reason: "free"}}, f.err
}

func (f *fakeServices) GenerateEmail(context.Context, string, string, string) (*intelligence.EmailDraft, error) {
	if f.emailErr != nil {
		return nil, f.emailErr
	}
	return &intelligence.EmailDraft{Subject: "Hello", Body: "Body"}, nil
}
func (f *fakeServices) CreateDraft(subject, _ string, to []string) (string, error) {
	if len(to) == 0 {
		return "", fmt.Errorf("%w: no recipients", service.ErrInvalidInput)
	}
	return "https://compose?subject=" + subject, nil
}
func (f *fakeServices) RecentEmails(context.Context) ([]domain.Email, error) { return nil, f.err }
func (f *fakeServices) BookMeeting(context.Context, mail.EventRequest) (domain.Event, error) {
	return domain.Event{}, f.err
}

func (f *fakeServices) List(context.Context) ([]domain.Project, error) {
	return []domain.Project{{ID: "p1", Name: "Apollo"}}, f.err
}
func (f *fakeServices) Current(context.Context) (domain.Project, error) {
	return domain.Project{ID: "p1", Name: "Apollo"}, f.err
}

type testEnv struct {
	handler http.Handler
	fake    *fakeServices
	client  *testutil.ScriptedChatClient
	store   *chat.SessionStore
}

func newEnv(t *testing.T, replies ...testutil.ScriptedReply) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	fake := &fakeServices{}
	client := testutil.NewScriptedChatClient(replies...)
	store := chat.NewSessionStore("system")
	orch := chat.NewOrchestrator(chat.Options{Client: client, Logger: logger})
	h := NewRouter(Services{
		WorkItems:  fake,
		Workload:   fake,
		Risk:       fake,
		Assignment: fake,
		Email:      fake,
		Projects:   fake,
		Chat:       orch,
		Sessions:   store,
	}, RouterOptions{AllowedOrigins: []string{"http://localhost:3000"}, Logger: logger})
	return &testEnv{handler: h, fake: fake, client: client, store: store}
}

func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, http.MethodGet, "/api/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRouter_CORS(t *testing.T) {
	env := newEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/risk/report", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouter_ListsNeverNull(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, http.MethodGet, "/api/automated_task_assignment/fetch_unassigned_tasks", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestRouter_ReadEndpoints(t *testing.T) {
	env := newEnv(t)
	env.fake.tasks = []domain.Task{testutil.NewTask(7)}

	cases := []struct {
		path  string
		field string
		want  string
	}{
		{path: "/api/automated_task_assignment/fetch_allusers", field: "0.mailAddress", want: "ana.lima@example.com"},
		{path: "/api/automated_task_assignment/task_counts", field: `ana\.lima@example\.com.taskCount`, want: "3"},
		{path: "/api/automated_task_assignment/total_priority", field: `ana\.lima@example\.com`, want: "57"},
		{path: "/api/risk/filter_risk_items", field: "items.0.id", want: "7"},
		{path: "/api/stats/count_work_items_by_state", field: "Active", want: "2"},
		{path: "/api/stats/count_work_items_by_assignment", field: "Unassigned", want: "1"},
		{path: "/api/stats/count_work_items_by_type", field: "Bug", want: "3"},
		{path: "/api/projects", field: "0.name", want: "Apollo"},
		{path: "/api/projects/current", field: "id", want: "p1"},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, tc.path, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Equal(t, tc.want, gjson.Get(rec.Body.String(), tc.field).String())
		})
	}
}

func TestRouter_UpstreamFailureIsGeneric(t *testing.T) {
	env := newEnv(t)
	env.fake.err = fmt.Errorf("fetching work items: %w: status 503 secret-detail", tracker.ErrUpstream)

	rec := env.do(t, http.MethodGet, "/api/risk/filter_risk_items", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestRouter_UpdateWorkItem(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, http.MethodPost, "/api/automated_task_assignment/update_work_item/42/ana@x.com", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ana@x.com", gjson.Get(rec.Body.String(), "work_item.assigned_to").String())

	rec = env.do(t, http.MethodPost, "/api/automated_task_assignment/update_work_item/abc/ana@x.com", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.fake.assignErr = fmt.Errorf("%w: bad email", service.ErrInvalidInput)
	rec = env.do(t, http.MethodPost, "/api/automated_task_assignment/update_work_item/42/nope", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	env.fake.assignErr = tracker.ErrNotFound
	rec = env.do(t, http.MethodPost, "/api/automated_task_assignment/update_work_item/42/ana@x.com", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/automated_task_assignment/update_work_item/42/ana@x.com", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRouter_BulkUpdate(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, http.MethodPost, "/api/automated_task_assignment/bulk_update",
		`{"assignments":[{"work_item_id":1,"user_email":"a@x.com"},{"work_item_id":2,"user_email":"b@x.com"}]}`)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, int64(1), gjson.Get(body, "succeeded").Int())
	assert.Equal(t, int64(1), gjson.Get(body, "failed").Int())
	assert.Equal(t, int64(2), gjson.Get(body, "results.#").Int())

	rec = env.do(t, http.MethodPost, "/api/automated_task_assignment/bulk_update", `{"assignments":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/automated_task_assignment/bulk_update", `{"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Recommend(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, http.MethodPost, "/api/automated_task_assignment/recommend", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, env.fake.recIDs)
	assert.Equal(t, "ana.lima@example.com", gjson.Get(rec.Body.String(), "recommendations.0.email").String())

	rec = env.do(t, http.MethodPost, "/api/automated_task_assignment/recommend", `{"work_item_ids":[4,5]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{4, 5}, env.fake.recIDs)
}

func TestRouter_PendingTasks(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, http.MethodPost, "/api/status_report/fetch_pending_tasks/2025-04-01", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), env.fake.pendingArg)

	rec = env.do(t, http.MethodPost, "/api/status_report/fetch_pending_tasks/01-04-2025", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_RiskReport(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, http.MethodPost, "/api/risk/report", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, service.RankedByModel, gjson.Get(rec.Body.String(), "ranked_by").String())
	assert.True(t, gjson.Get(rec.Body.String(), "items").IsArray())
}

func TestRouter_Email(t *testing.T) {
	env := newEnv(t)

	rec := env.do(t, http.MethodPost, "/api/email_sender/create_draft",
		`{"subject":"Hi","body":"b","to_recipients":["a@x.com"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://compose?subject=Hi", gjson.Get(rec.Body.String(), "draft_link").String())

	rec = env.do(t, http.MethodPost, "/api/email_sender/create_draft", `{"subject":"Hi","body":"b"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/email_sender/generate_email_ai", `{"to":"a@x.com","from":"me","context":"release"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Hello", gjson.Get(rec.Body.String(), "subject").String())

	env.fake.emailErr = fmt.Errorf("composing: %w", llm.ErrDisabled)
	rec = env.do(t, http.MethodPost, "/api/email_sender/generate_email_ai", `{"to":"a@x.com","from":"me","context":"release"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_ChatSendAndReset(t *testing.T) {
	env := newEnv(t, testutil.Text("first answer"), testutil.Text("second answer"))

	rec := env.do(t, http.MethodPost, "/api/chatbot/send_message", `{"message":"hello"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := rec.Body.String()
	sessionID := gjson.Get(body, "session_id").String()
	require.NotEmpty(t, sessionID)
	assert.Equal(t, "first answer", gjson.Get(body, "reply").String())
	assert.Equal(t, int64(3), gjson.Get(body, "messages.#").Int())

	rec = env.do(t, http.MethodPost, "/api/chatbot/send_message", fmt.Sprintf(`{"session_id":%q,"message":"again"}`, sessionID))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), gjson.Get(rec.Body.String(), "messages.#").Int())

	rec = env.do(t, http.MethodPost, "/api/chatbot/reset_chat", fmt.Sprintf(`{"session_id":%q,"keep_system":true}`, sessionID))
	require.Equal(t, http.StatusOK, rec.Code)
	sess, err := env.store.Get(sessionID)
	require.NoError(t, err)
	assert.Equal(t, 1, sess.Conversation.Len())

	rec = env.do(t, http.MethodPost, "/api/chatbot/send_message", `{"session_id":"missing","message":"hi"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/chatbot/send_message", `{"message":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/chatbot/reset_chat", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_ChatServiceFailure(t *testing.T) {
	env := newEnv(t, testutil.Fails(llm.ErrUnavailable))

	rec := env.do(t, http.MethodPost, "/api/chatbot/send_message", `{"message":"hello"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestRouter_ChatFailureDropsNewSessions(t *testing.T) {
	replies := make([]testutil.ScriptedReply, 50)
	for i := range replies {
		replies[i] = testutil.Fails(llm.ErrUnavailable)
	}
	env := newEnv(t, replies...)

	for i := 0; i < 50; i++ {
		rec := env.do(t, http.MethodPost, "/api/chatbot/send_message", `{"message":"hi"}`)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.False(t, gjson.Get(rec.Body.String(), "session_id").Exists())
	}

	assert.Zero(t, env.store.Len())
}

func TestRouter_ChatFailureKeepsExistingSession(t *testing.T) {
	env := newEnv(t, testutil.Text("hello"), testutil.Fails(llm.ErrUnavailable))

	rec := env.do(t, http.MethodPost, "/api/chatbot/send_message", `{"message":"hi"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	sessionID := gjson.Get(rec.Body.String(), "session_id").String()

	rec = env.do(t, http.MethodPost, "/api/chatbot/send_message", fmt.Sprintf(`{"session_id":%q,"message":"again"}`, sessionID))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, fmt.Sprintf(`{"error":"internal server error","session_id":%q}`, sessionID), rec.Body.String())
	_, err := env.store.Get(sessionID)
	assert.NoError(t, err)
	assert.Equal(t, 1, env.store.Len())
}

func TestRouter_ChatWebsocketDropsUnusedSession(t *testing.T) {
	env := newEnv(t)
	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/chatbot/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)

	_, _, err = conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, env.store.Len())

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
	assert.Eventually(t, func() bool { return env.store.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestRouter_ChatWebsocket(t *testing.T) {
	env := newEnv(t, testutil.Text("streamed answer"))
	srv := httptest.NewServer(env.handler)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/chatbot/ws"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	_, hello, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, "session", gjson.GetBytes(hello, "type").String())
	assert.NotEmpty(t, gjson.GetBytes(hello, "session_id").String())

	data, _ := json.Marshal(socketMessage{Message: "hi"})
	require.NoError(t, conn.Write(ctx, websocket.MessageText, data))

	_, frame, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(chat.EventReply), gjson.GetBytes(frame, "type").String())
	assert.Equal(t, "streamed answer", gjson.GetBytes(frame, "content").String())

	require.NoError(t, conn.Write(ctx, websocket.MessageText, []byte(`not json`)))
	_, frame, err = conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, string(chat.EventError), gjson.GetBytes(frame, "type").String())
}

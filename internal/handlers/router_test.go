package handlers

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nkiryanov/feedbackadmin/internal/apperrors"
	"github.com/nkiryanov/feedbackadmin/internal/logger"
	"github.com/nkiryanov/feedbackadmin/internal/models"
	"github.com/nkiryanov/feedbackadmin/internal/service/auth"
	"github.com/nkiryanov/feedbackadmin/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/feedbackadmin/internal/service/report"
	"github.com/nkiryanov/feedbackadmin/internal/testutil"
)

// Clock shared with the server goroutines
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testServer struct {
	url      string
	clock    *testClock
	storage  *testutil.MemoryStorage
	sessions *testutil.MemorySessions
}

// Run http server with production router and services over in-memory storage
// The storage has user "alice" with password "wonderland"
func newTestServer(t *testing.T) testServer {
	t.Helper()
	return newTestServerWithLogger(t, logger.NewNoOpLogger())
}

func newTestServerWithLogger(t *testing.T, l logger.Logger) testServer {
	t.Helper()

	hasher := auth.BcryptHasher{Cost: bcrypt.MinCost}
	clock := &testClock{now: time.Now()}

	tokens, err := tokenmanager.New(tokenmanager.Config{
		SecretKey: "test-secret",
		AccessTTL: 30 * time.Minute,
		Now:       clock.Now,
	})
	require.NoError(t, err, "token manager should be created without errors")

	storage := testutil.NewMemoryStorage()
	hash, err := hasher.Hash("wonderland")
	require.NoError(t, err)
	storage.AddUser("alice", hash)

	sessions := testutil.NewMemorySessions(storage)
	authService, err := auth.NewService(auth.Config{Hasher: hasher}, tokens, sessions)
	require.NoError(t, err, "auth service starting error")

	router := NewRouter(authService, report.NewService(sessions), []string{"http://localhost:5173"}, l)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return testServer{url: srv.URL, clock: clock, storage: storage, sessions: sessions}
}

func (s testServer) do(t *testing.T, method string, path string, token string, form url.Values) (*http.Response, string) {
	t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(t.Context(), method, s.url+path, body)
	require.NoError(t, err)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	return resp, string(data)
}

func (s testServer) login(t *testing.T) string {
	t.Helper()

	resp, body := s.do(t, http.MethodPost, "/api/v1/login", "", url.Values{"username": {"alice"}, "password": {"wonderland"}})
	require.Equalf(t, http.StatusOK, resp.StatusCode, "login failed. Body: %s", body)

	tokenStart := strings.Index(body, `"access_token":"`) + len(`"access_token":"`)
	tokenEnd := strings.Index(body[tokenStart:], `"`)
	return body[tokenStart : tokenStart+tokenEnd]
}

func Test_AuthHandlers(t *testing.T) {
	t.Parallel()

	t.Run("login ok", func(t *testing.T) {
		s := newTestServer(t)

		resp, body := s.do(t, http.MethodPost, "/api/v1/login", "", url.Values{"username": {"alice"}, "password": {"wonderland"}})

		require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
		require.Contains(t, body, `"success":true`)
		require.Contains(t, body, `"token_type":"bearer"`)
		require.NotEmpty(t, s.login(t), "access token should not be empty")
	})

	t.Run("login wrong password", func(t *testing.T) {
		s := newTestServer(t)

		resp, body := s.do(t, http.MethodPost, "/api/v1/login", "", url.Values{"username": {"alice"}, "password": {"wonderlanD"}})

		require.Equalf(t, http.StatusUnauthorized, resp.StatusCode, "not expected code. Body: %s", body)
		require.JSONEq(t, `{"success": false, "error": {"code": 401, "message": "Incorrect username or password"}}`, body)
		require.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
	})

	t.Run("login unknown user looks the same as wrong password", func(t *testing.T) {
		s := newTestServer(t)

		resp, body := s.do(t, http.MethodPost, "/api/v1/login", "", url.Values{"username": {"bob"}, "password": {"wonderland"}})

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.JSONEq(t, `{"success": false, "error": {"code": 401, "message": "Incorrect username or password"}}`, body)
	})

	t.Run("login without password", func(t *testing.T) {
		s := newTestServer(t)

		resp, body := s.do(t, http.MethodPost, "/api/v1/login", "", url.Values{"username": {"alice"}})

		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		require.JSONEq(t, `{
			"success": false,
			"error": {
				"code": 422,
				"message": "Validation Error",
				"details": {"errors": [{"field": "password", "message": "Field required"}]}
			}
		}`, body)
	})

	t.Run("login with malformed stored hash", func(t *testing.T) {
		s := newTestServer(t)
		s.storage.AddUser("carol", "not-a-bcrypt-hash")

		resp, body := s.do(t, http.MethodPost, "/api/v1/login", "", url.Values{"username": {"carol"}, "password": {"whatever"}})

		require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		require.JSONEq(t, `{"success": false, "error": {"code": 500, "message": "Internal server error"}}`, body)
	})

	t.Run("me ok", func(t *testing.T) {
		s := newTestServer(t)
		token := s.login(t)

		resp, body := s.do(t, http.MethodGet, "/api/v1/me", token, nil)

		require.Equalf(t, http.StatusOK, resp.StatusCode, "not expected code. Body: %s", body)
		require.JSONEq(t, `{"success": true, "data": {"username": "alice", "is_authenticated": true}}`, body)
	})

	t.Run("me without token", func(t *testing.T) {
		s := newTestServer(t)

		resp, body := s.do(t, http.MethodGet, "/api/v1/me", "", nil)

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.JSONEq(t, `{"success": false, "error": {"code": 401, "message": "Not authenticated"}}`, body)
	})

	t.Run("me with expired token", func(t *testing.T) {
		s := newTestServer(t)
		token := s.login(t)
		s.clock.Advance(31 * time.Minute)

		resp, body := s.do(t, http.MethodGet, "/api/v1/me", token, nil)

		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.JSONEq(t, `{"success": false, "error": {"code": 401, "message": "Could not validate credentials"}}`, body)
		require.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
	})

	t.Run("me with deleted user", func(t *testing.T) {
		s := newTestServer(t)
		token := s.login(t)
		s.storage.DeleteUser("alice")

		resp, body := s.do(t, http.MethodGet, "/api/v1/me", token, nil)

		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.JSONEq(t, `{"success": false, "error": {"code": 404, "message": "User not found"}}`, body)
	})

	t.Run("logout", func(t *testing.T) {
		s := newTestServer(t)
		token := s.login(t)

		resp, body := s.do(t, http.MethodPost, "/api/v1/logout", token, nil)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.JSONEq(t, `{"success": true, "data": {"message": "Successfully logged out", "username": "alice"}}`, body)

		// Tokens are stateless, still valid after logout
		resp, _ = s.do(t, http.MethodGet, "/api/v1/me", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func Test_ReportHandlers(t *testing.T) {
	t.Parallel()

	withData := func(t *testing.T) (testServer, string) {
		s := newTestServer(t)
		s.storage.FeedbackSummaries = []models.FeedbackSummary{
			{Query: "q1", SatisfiedCount: 1, UnsatisfiedCount: 2, TotalCount: 3},
		}
		s.storage.QALogs = []models.QALog{
			{ID: 1, TaskID: "t1", Query: "reset password", Response: "r1", CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
			{ID: 2, TaskID: "t2", Query: "opening hours", Response: "r2", CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		}
		s.storage.LowSimilarity = []models.LowSimilarityQuery{
			{ID: 1, QueryType: 1, Col: "docs", QueryContent: "abc", SimilarityScore: 0.25, MetricType: "IP", CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
		}
		return s, s.login(t)
	}

	t.Run("all reports require token", func(t *testing.T) {
		s := newTestServer(t)

		for _, path := range []string{"/api/v1/feedback/summary", "/api/v1/qa-logs", "/api/v1/low-similarity", "/api/v1/no-result/summary"} {
			resp, _ := s.do(t, http.MethodGet, path, "", nil)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		}
		assert.Equal(t, 0, s.sessions.Acquired(), "no database access for anonymous requests")
	})

	t.Run("feedback summary", func(t *testing.T) {
		s, token := withData(t)

		resp, body := s.do(t, http.MethodGet, "/api/v1/feedback/summary?limit=5", token, nil)

		require.Equalf(t, http.StatusOK, resp.StatusCode, "Body: %s", body)
		require.JSONEq(t, `{"success": true, "data": [
			{"query": "q1", "satisfied_count": 1, "unsatisfied_count": 2, "total_count": 3}
		]}`, body)
	})

	t.Run("qa logs with search", func(t *testing.T) {
		s, token := withData(t)

		resp, body := s.do(t, http.MethodGet, "/api/v1/qa-logs?search=PASS", token, nil)

		require.Equalf(t, http.StatusOK, resp.StatusCode, "Body: %s", body)
		require.JSONEq(t, `{"success": true, "data": [
			{"id": 1, "task_id": "t1", "query": "reset password", "response": "r1", "created_at": "2025-01-02T03:04:05Z"}
		]}`, body)
	})

	t.Run("low similarity", func(t *testing.T) {
		s, token := withData(t)

		resp, body := s.do(t, http.MethodGet, "/api/v1/low-similarity?min_score=0.2&max_score=0.3", token, nil)

		require.Equalf(t, http.StatusOK, resp.StatusCode, "Body: %s", body)
		require.JSONEq(t, `{"success": true, "data": [
			{"id": 1, "query_type": 1, "col": "docs", "query_content": "abc", "similarity_score": 0.25,
			 "metric_type": "IP", "results": null, "created_at": "2025-01-02T03:04:05Z"}
		]}`, body)
	})

	t.Run("empty report is empty list", func(t *testing.T) {
		s, token := withData(t)

		resp, body := s.do(t, http.MethodGet, "/api/v1/no-result/summary", token, nil)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.JSONEq(t, `{"success": true, "data": []}`, body)
	})

	t.Run("params out of range", func(t *testing.T) {
		tests := []struct {
			path    string
			message string
		}{
			{"/api/v1/feedback/summary?limit=0", "Limit must be between 1 and 100"},
			{"/api/v1/no-result/summary?limit=101", "Limit must be between 1 and 100"},
			{"/api/v1/qa-logs?skip=-1", "Skip value cannot be negative"},
			{"/api/v1/qa-logs?limit=500", "Limit must be between 1 and 100"},
			{"/api/v1/low-similarity?min_score=-0.5", "Minimum score must be between 0 and 1"},
			{"/api/v1/low-similarity?max_score=2", "Maximum score must be between 0 and 1"},
			{"/api/v1/low-similarity?min_score=0.8&max_score=0.2", "Minimum score cannot be greater than maximum score"},
		}

		s, token := withData(t)
		for _, tt := range tests {
			resp, body := s.do(t, http.MethodGet, tt.path, token, nil)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, tt.path)
			assert.JSONEq(t, `{"success": false, "error": {"code": 400, "message": "`+tt.message+`"}}`, body, tt.path)
		}
	})

	t.Run("not a number", func(t *testing.T) {
		s, token := withData(t)

		resp, body := s.do(t, http.MethodGet, "/api/v1/qa-logs?limit=many", token, nil)

		require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		require.Contains(t, body, `"message":"Validation Error"`)
		require.Contains(t, body, `"field":"limit"`)
	})

	t.Run("sessions are released", func(t *testing.T) {
		s, token := withData(t)
		s.do(t, http.MethodGet, "/api/v1/qa-logs", token, nil)
		s.do(t, http.MethodGet, "/api/v1/feedback/summary", token, nil)

		assert.Equal(t, s.sessions.Acquired(), s.sessions.Released())
	})
}

func Test_Router(t *testing.T) {
	t.Parallel()

	t.Run("root", func(t *testing.T) {
		s := newTestServer(t)

		resp, body := s.do(t, http.MethodGet, "/", "", nil)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.JSONEq(t, `{"success": true, "data": {"message": "Welcome to Admin System API", "version": "1.0.0", "api_prefix": "/api/v1"}}`, body)
	})

	t.Run("unknown path", func(t *testing.T) {
		s := newTestServer(t)

		resp, body := s.do(t, http.MethodGet, "/unknown", "", nil)

		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.JSONEq(t, `{"success": false, "error": {"code": 404, "message": "Not Found"}}`, body)
	})

	t.Run("unmatched requests use envelope", func(t *testing.T) {
		tests := []struct {
			name   string
			method string
			path   string
			code   int
			body   string
			allow  string
		}{
			{
				name:   "unknown api path",
				method: http.MethodGet,
				path:   "/api/v1/nope",
				code:   http.StatusNotFound,
				body:   `{"success": false, "error": {"code": 404, "message": "Not Found"}}`,
			},
			{
				name:   "login with GET",
				method: http.MethodGet,
				path:   "/api/v1/login",
				code:   http.StatusMethodNotAllowed,
				body:   `{"success": false, "error": {"code": 405, "message": "Method Not Allowed"}}`,
				allow:  http.MethodPost,
			},
			{
				name:   "me with DELETE",
				method: http.MethodDelete,
				path:   "/api/v1/me",
				code:   http.StatusMethodNotAllowed,
				body:   `{"success": false, "error": {"code": 405, "message": "Method Not Allowed"}}`,
				allow:  http.MethodGet,
			},
			{
				name:   "root with POST",
				method: http.MethodPost,
				path:   "/",
				code:   http.StatusMethodNotAllowed,
				body:   `{"success": false, "error": {"code": 405, "message": "Method Not Allowed"}}`,
				allow:  http.MethodGet,
			},
		}

		s := newTestServer(t)
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resp, body := s.do(t, tt.method, tt.path, "", nil)

				require.Equal(t, tt.code, resp.StatusCode)
				require.Equal(t, "application/json; charset=utf-8", resp.Header.Get("Content-Type"))
				require.JSONEq(t, tt.body, body)
				if tt.allow != "" {
					require.Contains(t, resp.Header.Get("Allow"), tt.allow)
				}
			})
		}
	})

	t.Run("cors preflight", func(t *testing.T) {
		s := newTestServer(t)

		req, err := http.NewRequestWithContext(t.Context(), http.MethodOptions, s.url+"/api/v1/me", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", http.MethodGet)
		req.Header.Set("Access-Control-Request-Headers", "Authorization")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
	})
}

type logRecord struct {
	level string
	msg   string
	args  []any
}

// Logger that keeps everything logged, attributes from With are dropped
type recordingLogger struct {
	mu      sync.Mutex
	records []logRecord
}

func (l *recordingLogger) add(level string, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, logRecord{level: level, msg: msg, args: args})
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.add("debug", msg, args) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.add("info", msg, args) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.add("warn", msg, args) }
func (l *recordingLogger) Error(msg string, args ...any) { l.add("error", msg, args) }

func (l *recordingLogger) With(args ...any) logger.Logger    { return l }
func (l *recordingLogger) WithGroup(name string) logger.Logger { return l }

// Records with the message, in logging order
func (l *recordingLogger) Find(msg string) []logRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	var found []logRecord
	for _, r := range l.records {
		if r.msg == msg {
			found = append(found, r)
		}
	}
	return found
}

// Value logged right after the key
func (r logRecord) Arg(key string) any {
	for i := 0; i+1 < len(r.args); i += 2 {
		if r.args[i] == key {
			return r.args[i+1]
		}
	}
	return nil
}

func Test_LoginFailureLogging(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		reason   error
	}{
		{
			name:     "unknown user",
			username: "bob",
			reason:   apperrors.ErrUserNotFound,
		},
		{
			name:     "wrong password",
			username: "alice",
			reason:   apperrors.ErrBadPassword,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &recordingLogger{}
			s := newTestServerWithLogger(t, l)

			resp, _ := s.do(t, http.MethodPost, "/api/v1/login", "", url.Values{"username": {tt.username}, "password": {"not-it"}})
			require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

			records := l.Find("login failed")
			require.Len(t, records, 1)
			require.Equal(t, "warn", records[0].level)
			require.Equal(t, tt.username, records[0].Arg("username"))

			reason, ok := records[0].Arg("reason").(error)
			require.True(t, ok, "reason should be logged as error")
			require.ErrorIs(t, reason, tt.reason)
			require.Nil(t, records[0].Arg("password"), "password must never be logged")
		})
	}
}

package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/stackit/internal/auth"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv, err := New(Config{
		Port:          0,
		DBPath:        ":memory:",
		JWTSecret:     "test-secret-at-least-16-bytes-long",
		AdminPassword: "admin-test-password",
	}, logger)
	require.NoError(t, err, "creating test server")
	t.Cleanup(func() { srv.db.Close() })
	return srv
}

// do sends a JSON request through the full router, with an optional
// session cookie.
func do(t *testing.T, srv *Server, method, path, body string, session *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != nil {
		req.AddCookie(session)
	}

	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	return rr
}

// registerAndLogin creates an account and returns its session cookie.
func registerAndLogin(t *testing.T, srv *Server, username string) *http.Cookie {
	t.Helper()

	body := fmt.Sprintf(`{"username":%q,"email":"%s@example.com","password":"pw123456"}`, username, username)
	rr := do(t, srv, http.MethodPost, "/register", body, nil)
	require.Equal(t, http.StatusCreated, rr.Code, "register: %s", rr.Body.String())

	rr = do(t, srv, http.MethodPost, "/login", fmt.Sprintf(`{"username":%q,"password":"pw123456"}`, username), nil)
	require.Equal(t, http.StatusOK, rr.Code, "login: %s", rr.Body.String())

	return sessionCookie(t, rr)
}

func sessionCookie(t *testing.T, rr *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.SessionCookie && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, into any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rr.Body).Decode(into))
}

func askQuestion(t *testing.T, srv *Server, session *http.Cookie, title string) string {
	t.Helper()
	body := fmt.Sprintf(`{"title":%q,"content":"some content","tags":"go,testing"}`, title)
	rr := do(t, srv, http.MethodPost, "/ask", body, session)
	require.Equal(t, http.StatusCreated, rr.Code, "ask: %s", rr.Body.String())

	var question struct {
		ID string `json:"id"`
	}
	decode(t, rr, &question)
	require.NotEmpty(t, question.ID)
	return question.ID
}

func TestRegisterLoginMe(t *testing.T) {
	srv := newTestServer(t)

	session := registerAndLogin(t, srv, "alice")

	rr := do(t, srv, http.MethodGet, "/me", "", session)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		User struct {
			Username     string `json:"username"`
			PasswordHash string `json:"passwordHash"`
		} `json:"user"`
	}
	decode(t, rr, &resp)
	assert.Equal(t, "alice", resp.User.Username)
	assert.Empty(t, resp.User.PasswordHash, "password hash must never be serialized")
}

func TestMe_Unauthenticated(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAsk_RequiresAuth(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodPost, "/ask", `{"title":"t","content":"c"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestVote_RejectsMalformedTargets(t *testing.T) {
	srv := newTestServer(t)
	session := registerAndLogin(t, srv, "alice")
	questionID := askQuestion(t, srv, session, "votable")

	t.Run("no target", func(t *testing.T) {
		rr := do(t, srv, http.MethodPost, "/vote", `{"vote_type":"up"}`, session)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("both targets", func(t *testing.T) {
		body := fmt.Sprintf(`{"question_id":%q,"answer_id":"other","vote_type":"up"}`, questionID)
		rr := do(t, srv, http.MethodPost, "/vote", body, session)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("bad type", func(t *testing.T) {
		body := fmt.Sprintf(`{"question_id":%q,"vote_type":"sideways"}`, questionID)
		rr := do(t, srv, http.MethodPost, "/vote", body, session)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestVote_TogglesScore(t *testing.T) {
	srv := newTestServer(t)
	session := registerAndLogin(t, srv, "alice")
	questionID := askQuestion(t, srv, session, "votable")

	body := fmt.Sprintf(`{"question_id":%q,"vote_type":"up"}`, questionID)

	rr := do(t, srv, http.MethodPost, "/vote", body, session)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var resp struct {
		Score int `json:"score"`
	}
	decode(t, rr, &resp)
	assert.Equal(t, 1, resp.Score)

	// Same vote again removes it.
	rr = do(t, srv, http.MethodPost, "/vote", body, session)
	require.Equal(t, http.StatusOK, rr.Code)
	decode(t, rr, &resp)
	assert.Equal(t, 0, resp.Score)
}

func TestQuestionDelete_NonOwnerForbidden(t *testing.T) {
	srv := newTestServer(t)
	owner := registerAndLogin(t, srv, "owner")
	stranger := registerAndLogin(t, srv, "stranger")
	questionID := askQuestion(t, srv, owner, "mine")

	rr := do(t, srv, http.MethodPost, "/question/delete/"+questionID, "", stranger)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(t, srv, http.MethodPost, "/question/delete/"+questionID, "", owner)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestIndex_SearchFilter(t *testing.T) {
	srv := newTestServer(t)
	session := registerAndLogin(t, srv, "alice")
	askQuestion(t, srv, session, "goroutine deadlock")
	askQuestion(t, srv, session, "css centering")

	rr := do(t, srv, http.MethodGet, "/?search=goroutine", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var resp struct {
		Questions []struct {
			Title string   `json:"title"`
			Tags  []string `json:"tags"`
		} `json:"questions"`
		Categories []struct {
			Name string `json:"name"`
		} `json:"categories"`
	}
	decode(t, rr, &resp)

	require.Len(t, resp.Questions, 1)
	assert.Equal(t, "goroutine deadlock", resp.Questions[0].Title)
	assert.Equal(t, []string{"go", "testing"}, resp.Questions[0].Tags)
	assert.Len(t, resp.Categories, 6, "seeded categories should be listed")
}

func TestQuestionView_NotFound(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/question/nonexistent", "", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	var resp struct {
		Error string `json:"error"`
	}
	decode(t, rr, &resp)
	assert.Equal(t, "not_found", resp.Error)
}

func TestAnswerFlow(t *testing.T) {
	srv := newTestServer(t)
	asker := registerAndLogin(t, srv, "asker")
	answerer := registerAndLogin(t, srv, "answerer")
	questionID := askQuestion(t, srv, asker, "needs answers")

	rr := do(t, srv, http.MethodPost, "/answer/"+questionID, `{"content":"try this"}`, answerer)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var answer struct {
		ID string `json:"id"`
	}
	decode(t, rr, &answer)

	// Only the question's author accepts.
	rr = do(t, srv, http.MethodPost, "/answer/accept/"+answer.ID, "", answerer)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = do(t, srv, http.MethodPost, "/answer/accept/"+answer.ID, "", asker)
	assert.Equal(t, http.StatusOK, rr.Code)

	// The view page shows the accepted answer.
	rr = do(t, srv, http.MethodGet, "/question/"+questionID, "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var detail struct {
		Answers []struct {
			ID         string `json:"id"`
			IsAccepted bool   `json:"isAccepted"`
			Author     string `json:"author"`
		} `json:"answers"`
	}
	decode(t, rr, &detail)
	require.Len(t, detail.Answers, 1)
	assert.True(t, detail.Answers[0].IsAccepted)
	assert.Equal(t, "answerer", detail.Answers[0].Author)

	// The asker got a notification for the answer.
	rr = do(t, srv, http.MethodGet, "/notifications", "", asker)
	require.Equal(t, http.StatusOK, rr.Code)
	var feed struct {
		Notifications []struct {
			Content string `json:"content"`
		} `json:"notifications"`
	}
	decode(t, rr, &feed)
	require.Len(t, feed.Notifications, 1)
	assert.Contains(t, feed.Notifications[0].Content, "answered your question")
}

func TestAdmin_Authorization(t *testing.T) {
	srv := newTestServer(t)
	user := registerAndLogin(t, srv, "mortal")

	rr := do(t, srv, http.MethodGet, "/admin", "", user)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	// The seeded admin account can log in with the configured password.
	login := do(t, srv, http.MethodPost, "/login", `{"username":"admin","password":"admin-test-password"}`, nil)
	require.Equal(t, http.StatusOK, login.Code, login.Body.String())
	admin := sessionCookie(t, login)

	rr = do(t, srv, http.MethodGet, "/admin", "", admin)
	assert.Equal(t, http.StatusOK, rr.Code)

	var dashboard struct {
		Stats struct {
			TotalUsers int `json:"totalUsers"`
		} `json:"stats"`
	}
	decode(t, rr, &dashboard)
	assert.Equal(t, 2, dashboard.Stats.TotalUsers, "admin + mortal")
}

func TestRegister_DuplicateUsername(t *testing.T) {
	srv := newTestServer(t)
	registerAndLogin(t, srv, "alice")

	rr := do(t, srv, http.MethodPost, "/register",
		`{"username":"alice","email":"else@example.com","password":"pw123456"}`, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestLogout_ClearsCookie(t *testing.T) {
	srv := newTestServer(t)

	rr := do(t, srv, http.MethodGet, "/logout", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var cleared bool
	for _, c := range rr.Result().Cookies() {
		if c.Name == auth.SessionCookie && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "logout should expire the session cookie")
}

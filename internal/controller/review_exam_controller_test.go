package controller

import (
	"context"
	"encoding/json"
	"errors"
	"exam_prep_backend/internal/model"
	"exam_prep_backend/internal/review"
	"exam_prep_backend/internal/service"
	"exam_prep_backend/internal/util"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReviewService struct {
	generateErr error
	result      *service.GenerateReviewResult
	progress    *model.GenerationProgress
	events      chan *model.GenerationProgress
	session     *model.ExamSession
	sessionErr  error
	summaries   []model.ExamSessionSummary

	gotUser  uint
	gotCycle int
}

func (f *fakeReviewService) GenerateReviewTest(_ context.Context, userID uint, cycle int) (*service.GenerateReviewResult, error) {
	f.gotUser, f.gotCycle = userID, cycle
	return f.result, f.generateErr
}

func (f *fakeReviewService) GetProgress(_ context.Context, userID uint, cycle int) (*model.GenerationProgress, error) {
	if f.progress == nil {
		return &model.GenerationProgress{UserID: userID, Cycle: cycle, State: "idle"}, nil
	}
	return f.progress, nil
}

func (f *fakeReviewService) SubscribeProgress(context.Context, uint, int) (<-chan *model.GenerationProgress, error) {
	if f.events == nil {
		return nil, errors.New("no pubsub")
	}
	return f.events, nil
}

func (f *fakeReviewService) GetSession(context.Context, uint, string) (*model.ExamSession, error) {
	return f.session, f.sessionErr
}

func (f *fakeReviewService) ListSessions(context.Context, uint, int) ([]model.ExamSessionSummary, error) {
	return f.summaries, nil
}

func asUser(id uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		if id != 0 {
			c.Set("user", &util.Claims{UserID: id})
		}
		c.Next()
	}
}

func newRouter(svc ReviewExamService, userID uint) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api", asUser(userID))
	rc := NewReviewExamController(svc)
	sc := NewExamSessionController(svc)
	api.POST("/cycles/:cycle/review-test", rc.Generate)
	api.GET("/cycles/:cycle/review-test/progress", rc.GetProgress)
	api.GET("/cycles/:cycle/review-test/progress/ws", rc.StreamProgress)
	api.GET("/cycles/:cycle/sessions", sc.ListSessions)
	api.GET("/exam-sessions/:id", sc.GetSession)
	return r
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, r http.Handler, method, url string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, url, nil))
	var body envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w, body
}

func TestGenerateCreated(t *testing.T) {
	svc := &fakeReviewService{result: &service.GenerateReviewResult{
		SessionID:               "abc",
		TotalQuestions:          180,
		UsedFallbackDuplication: map[string]bool{"biology": true},
		States:                  []string{"idle", "done"},
	}}

	w, body := do(t, newRouter(svc, 7), http.MethodPost, "/api/cycles/3/review-test")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, uint(7), svc.gotUser)
	assert.Equal(t, 3, svc.gotCycle)

	var data service.GenerateReviewResult
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, "abc", data.SessionID)
	assert.True(t, data.UsedFallbackDuplication["biology"])
}

func TestGenerateErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"ineligible", &review.EligibilityError{Cycle: 1, Found: 3, Required: 4}, http.StatusConflict},
		{"in progress", util.ErrGenerationInProgress, http.StatusConflict},
		{"data integrity", &review.DataIntegrityError{SessionID: "s", Reason: "missing question payload"}, http.StatusUnprocessableEntity},
		{"selection", &review.SelectionError{Subject: review.SubjectChemistry, Got: 0, Want: 60}, http.StatusUnprocessableEntity},
		{"persistence", &review.PersistenceError{Op: "write", Err: errors.New("deadlock")}, http.StatusServiceUnavailable},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := do(t, newRouter(&fakeReviewService{generateErr: tt.err}, 7), http.MethodPost, "/api/cycles/1/review-test")
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.status, body.Code)
		})
	}
}

func TestGenerateIneligibleRedirect(t *testing.T) {
	svc := &fakeReviewService{generateErr: &review.EligibilityError{Cycle: 1, Found: 2, Required: 4}}
	_, body := do(t, newRouter(svc, 7), http.MethodPost, "/api/cycles/1/review-test")

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, "exams", data["redirect"])
	assert.EqualValues(t, 2, data["completed"])
}

func TestGenerateBadRequest(t *testing.T) {
	svc := &fakeReviewService{}

	w, _ := do(t, newRouter(svc, 7), http.MethodPost, "/api/cycles/zero/review-test")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, newRouter(svc, 0), http.MethodPost, "/api/cycles/1/review-test")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetProgressEndpoint(t *testing.T) {
	svc := &fakeReviewService{progress: &model.GenerationProgress{State: "balancing", Percent: 65}}
	w, body := do(t, newRouter(svc, 7), http.MethodGet, "/api/cycles/1/review-test/progress")
	assert.Equal(t, http.StatusOK, w.Code)

	var p model.GenerationProgress
	require.NoError(t, json.Unmarshal(body.Data, &p))
	assert.Equal(t, "balancing", p.State)
	assert.Equal(t, 65, p.Percent)
}

func TestStreamProgress(t *testing.T) {
	events := make(chan *model.GenerationProgress, 4)
	svc := &fakeReviewService{events: events}
	srv := httptest.NewServer(newRouter(svc, 7))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/cycles/1/review-test/progress/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var p model.GenerationProgress
	require.NoError(t, conn.ReadJSON(&p))
	assert.Equal(t, "idle", p.State, "current progress is sent first")

	events <- &model.GenerationProgress{State: "selecting", Percent: 45}
	require.NoError(t, conn.ReadJSON(&p))
	assert.Equal(t, 45, p.Percent)

	events <- &model.GenerationProgress{State: "done", Percent: 100}
	require.NoError(t, conn.ReadJSON(&p))
	assert.Equal(t, "done", p.State)

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "stream closes after a terminal state: %v", err)
}

func TestStreamProgressWithoutPubSub(t *testing.T) {
	w := httptest.NewRecorder()
	newRouter(&fakeReviewService{}, 7).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/cycles/1/review-test/progress/ws", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"timecircuits"
	"timecircuits/internal/models"
	"timecircuits/internal/service"

	"github.com/gin-gonic/gin"
)

type mockAuth struct {
	signUpID      int
	signUpErr     error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastSignUpUsername string
	lastGenUsername    string
	lastParseToken     string
}

func (m *mockAuth) SignUp(username, password string) (int, error) {
	m.lastSignUpUsername = username
	return m.signUpID, m.signUpErr
}
func (m *mockAuth) GenerateToken(username, password string) (string, error) {
	m.lastGenUsername = username
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

// mockPanel records what the handlers forward.
type mockPanel struct {
	mu  sync.Mutex
	err error

	events    []service.InputEvent
	digits    string
	enter     bool
	travels   []bool
	returns   int
	powerCall []bool
	alarms    []alarmCall
}

type alarmCall struct {
	hour, minute int
	weekday      string
	enabled      bool
}

func (m *mockPanel) Submit(ctx context.Context, ev service.InputEvent) error {
	m.events = append(m.events, ev)
	return m.err
}
func (m *mockPanel) EnterSequence(ctx context.Context, digits string, enter bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.digits, m.enter = digits, enter
	return m.err
}

func (m *mockPanel) sequence() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.digits, m.enter
}
func (m *mockPanel) Travel(ctx context.Context, long bool) error {
	m.travels = append(m.travels, long)
	return m.err
}
func (m *mockPanel) Return(ctx context.Context) error {
	m.returns++
	return m.err
}
func (m *mockPanel) SetPower(ctx context.Context, on bool) error {
	m.powerCall = append(m.powerCall, on)
	return m.err
}
func (m *mockPanel) SetAlarm(ctx context.Context, hour, minute int, weekday string, enabled bool) error {
	m.alarms = append(m.alarms, alarmCall{hour, minute, weekday, enabled})
	return m.err
}

type mockMonitoring struct {
	state timecircuits.PanelSnapshot
	err   error
}

func (m *mockMonitoring) GetState(ctx context.Context) (timecircuits.PanelSnapshot, error) {
	return m.state, m.err
}

type mockEventLog struct {
	resp     []models.Event
	err      error
	lastFrom time.Time
	lastTo   time.Time
	lastType string
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.Event, error) {
	m.lastFrom = f.From
	m.lastTo = f.To
	m.lastType = f.Type
	return m.resp, m.err
}

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewHandler(s, nil, nil).InitRoutes()
}

// do runs one request through r with a valid bearer token.
func do(r http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer valid")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

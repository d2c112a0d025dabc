package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"devtrack.app/api/internal/http/middleware"
	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/report"
	"devtrack.app/api/internal/service"
)

// staticSession authenticates every request as user.
type staticSession struct {
	user *model.User
}

func (s staticSession) ValidateSession(context.Context, int64) (*model.User, error) {
	return s.user, nil
}

func authedRouter(user *model.User) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequireAuth(staticSession{user: user}, middleware.CookieConfig{}))
	return r
}

func perform(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewBuffer(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.SessionIDHeader, "42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

type mockAuthService struct {
	service.AuthService
	loginFn          func(ctx context.Context, email, password string) (*model.User, *model.Session, error)
	logoutFn         func(ctx context.Context, sessionID int64) error
	changePasswordFn func(ctx context.Context, user *model.User, current, next string) error
	ssoEnabled       bool
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*model.User, *model.Session, error) {
	return m.loginFn(ctx, email, password)
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID int64) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) ChangePassword(ctx context.Context, user *model.User, current, next string) error {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(ctx, user, current, next)
	}
	return nil
}

func (m *mockAuthService) SSOEnabled() bool {
	return m.ssoEnabled
}

func (m *mockAuthService) GetAuthorizationURL(state string) (string, error) {
	return "https://sso.example.com/authorize?state=" + state, nil
}

type mockPasswordResetService struct {
	service.PasswordResetService
	requestFn func(ctx context.Context, email string) error
	verifyFn  func(ctx context.Context, email, code string) error
	resetFn   func(ctx context.Context, email, code, newPassword string) error
}

func (m *mockPasswordResetService) RequestOTP(ctx context.Context, email string) error {
	if m.requestFn != nil {
		return m.requestFn(ctx, email)
	}
	return nil
}

func (m *mockPasswordResetService) VerifyOTP(ctx context.Context, email, code string) error {
	if m.verifyFn != nil {
		return m.verifyFn(ctx, email, code)
	}
	return nil
}

func (m *mockPasswordResetService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if m.resetFn != nil {
		return m.resetFn(ctx, email, code, newPassword)
	}
	return nil
}

type mockUserService struct {
	service.UserService
	createFn func(ctx context.Context, in service.CreateUserInput) (*model.User, error)
	updateFn func(ctx context.Context, actor *model.User, id int64, in service.UpdateUserInput) (*model.User, error)
}

func (m *mockUserService) Create(ctx context.Context, in service.CreateUserInput) (*model.User, error) {
	return m.createFn(ctx, in)
}

func (m *mockUserService) Update(ctx context.Context, actor *model.User, id int64, in service.UpdateUserInput) (*model.User, error) {
	return m.updateFn(ctx, actor, id, in)
}

type mockTaskService struct {
	service.TaskService
	updateStatusFn func(ctx context.Context, actor *model.User, id int64, status model.TaskStatus) (*model.Task, error)
	mineFn         func(ctx context.Context, actor *model.User, status model.TaskStatus) ([]model.Task, error)
}

func (m *mockTaskService) UpdateStatus(ctx context.Context, actor *model.User, id int64, status model.TaskStatus) (*model.Task, error) {
	return m.updateStatusFn(ctx, actor, id, status)
}

func (m *mockTaskService) Mine(ctx context.Context, actor *model.User, status model.TaskStatus) ([]model.Task, error) {
	return m.mineFn(ctx, actor, status)
}

type mockBugService struct {
	service.BugService
	updateStatusFn func(ctx context.Context, actor *model.User, id int64, status model.BugStatus) (*model.Bug, error)
}

func (m *mockBugService) UpdateStatus(ctx context.Context, actor *model.User, id int64, status model.BugStatus) (*model.Bug, error) {
	return m.updateStatusFn(ctx, actor, id, status)
}

type mockReportService struct {
	activityFn func(ctx context.Context, actor *model.User, q service.RangeQuery, format report.Format) (*service.Report, error)
	paymentsFn func(ctx context.Context, actor *model.User, q service.RangeQuery, format report.Format) (*service.Report, error)
	calls      int
}

func (m *mockReportService) Activity(ctx context.Context, actor *model.User, q service.RangeQuery, format report.Format) (*service.Report, error) {
	m.calls++
	return m.activityFn(ctx, actor, q, format)
}

func (m *mockReportService) Payments(ctx context.Context, actor *model.User, q service.RangeQuery, format report.Format) (*service.Report, error) {
	m.calls++
	return m.paymentsFn(ctx, actor, q, format)
}

type mockPaymentService struct {
	calculateFn func(ctx context.Context, actor *model.User, q service.RangeQuery) (*model.PaymentReport, error)
}

func (m *mockPaymentService) Calculate(ctx context.Context, actor *model.User, q service.RangeQuery) (*model.PaymentReport, error) {
	return m.calculateFn(ctx, actor, q)
}


package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"devtrack.app/api/common/logger"
	"devtrack.app/api/internal/http/middleware"
	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/service"
)

type fakeValidator struct {
	users map[int64]*model.User
	err   error
	seen  []int64
}

func (f *fakeValidator) ValidateSession(_ context.Context, sessionID int64) (*model.User, error) {
	f.seen = append(f.seen, sessionID)
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[sessionID]
	if !ok {
		return nil, service.ErrSessionExpired
	}
	return u, nil
}

type fakeChecker struct {
	grants map[string]bool
	err    error
}

func (f fakeChecker) HasPermission(_ context.Context, _ *model.User, key string) (bool, error) {
	return f.grants[key], f.err
}

var _ = Describe("RequireAuth", func() {
	var (
		router    *gin.Engine
		validator *fakeValidator
		dev       *model.User
	)

	BeforeEach(func() {
		dev = &model.User{ID: 7, Role: model.RoleDeveloper, IsActive: true}
		validator = &fakeValidator{users: map[int64]*model.User{100: dev}}

		router = gin.New()
		router.Use(middleware.RequireAuth(validator, middleware.CookieConfig{}))
		router.GET("/whoami", func(c *gin.Context) {
			ctx := c.Request.Context()
			fields := logger.GetLogFields(ctx)
			c.JSON(http.StatusOK, gin.H{
				"user_id":    middleware.GetUser(ctx).ID,
				"session_id": middleware.GetSessionID(ctx),
				"log_user":   *fields.UserID,
			})
		})
	})

	It("rejects requests without a session", func() {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(validator.seen).To(BeEmpty())
	})

	It("accepts the session cookie", func() {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "100"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(MatchJSON(`{"user_id":7,"session_id":100,"log_user":7}`))
	})

	It("falls back to the session header", func() {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(middleware.SessionIDHeader, "100")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(validator.seen).To(Equal([]int64{100}))
	})

	It("prefers the cookie over the header", func() {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "100"})
		req.Header.Set(middleware.SessionIDHeader, "555")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(validator.seen).To(Equal([]int64{100}))
	})

	It("rejects a non-numeric session id", func() {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(middleware.SessionIDHeader, "abc")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("clears the cookie when the session has expired", func() {
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "404"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
		Expect(w.Body.String()).To(ContainSubstring("session_expired"))
		Expect(w.Header().Get("Set-Cookie")).To(ContainSubstring("Max-Age=0"))
	})

	It("returns 500 when validation itself fails", func() {
		validator.err = errors.New("db down")
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set(middleware.SessionIDHeader, "100")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
	})
})

var _ = Describe("authorization guards", func() {
	serve := func(user *model.User, guard gin.HandlerFunc) int {
		router := gin.New()
		router.Use(middleware.RequireAuth(&fakeValidator{users: map[int64]*model.User{1: user}}, middleware.CookieConfig{}))
		router.GET("/guarded", guard, func(c *gin.Context) { c.Status(http.StatusNoContent) })

		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		req.Header.Set(middleware.SessionIDHeader, "1")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	admin := &model.User{ID: 1, Role: model.RoleAdmin, IsActive: true}
	dev := &model.User{ID: 2, Role: model.RoleDeveloper, IsActive: true}
	client := &model.User{ID: 3, Role: model.RoleClient, IsActive: true}

	DescribeTable("RequirePermission",
		func(user *model.User, checker fakeChecker, want int) {
			Expect(serve(user, middleware.RequirePermission(checker, model.PermReportsGenerate))).To(Equal(want))
		},
		Entry("admin passes without a grant", admin, fakeChecker{}, http.StatusNoContent),
		Entry("admin passes even if the checker errors", admin, fakeChecker{err: errors.New("boom")}, http.StatusNoContent),
		Entry("holder passes", dev, fakeChecker{grants: map[string]bool{model.PermReportsGenerate: true}}, http.StatusNoContent),
		Entry("other grants do not count", dev, fakeChecker{grants: map[string]bool{model.PermPaymentsView: true}}, http.StatusForbidden),
		Entry("lookup failure", dev, fakeChecker{err: errors.New("boom")}, http.StatusInternalServerError),
	)

	DescribeTable("RequireRole",
		func(user *model.User, want int) {
			Expect(serve(user, middleware.RequireRole(model.RoleDeveloper, model.RoleTeamLeader))).To(Equal(want))
		},
		Entry("listed role", dev, http.StatusNoContent),
		Entry("admin is not implied", admin, http.StatusForbidden),
		Entry("client", client, http.StatusForbidden),
	)
})

var _ = Describe("Recovery", func() {
	It("turns a panic into a 500 envelope", func() {
		router := gin.New()
		router.Use(middleware.Recovery())
		router.GET("/boom", func(*gin.Context) { panic("kaboom") })

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))

		Expect(w.Code).To(Equal(http.StatusInternalServerError))
		Expect(w.Body.String()).To(MatchJSON(`{"error":"internal server error","code":"internal"}`))
	})
})

package handler_test

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"devtrack.app/api/internal/http/handler"
	"devtrack.app/api/internal/http/middleware"
	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/service"
)

var _ = Describe("AuthHandler", func() {
	var (
		router *gin.Engine
		auth   *mockAuthService
		reset  *mockPasswordResetService
		user   *model.User
	)

	BeforeEach(func() {
		user = &model.User{ID: 11, Name: "Dev", Email: "dev@acme.io", Role: model.RoleDeveloper, IsActive: true}
		auth = &mockAuthService{}
		reset = &mockPasswordResetService{}
		cookie := middleware.CookieConfig{TTL: 24 * time.Hour}
		h := handler.NewAuthHandler(auth, reset, cookie, "http://dash.local")

		router = gin.New()
		router.POST("/auth/login", h.Login)
		router.GET("/auth/sso/login", h.SSOLogin)
		router.POST("/auth/password/forgot", h.RequestPasswordReset)
		router.POST("/auth/password/verify", h.VerifyPasswordReset)
		router.POST("/auth/password/reset", h.ResetPassword)

		session := router.Group("/auth", middleware.RequireAuth(staticSession{user: user}, cookie))
		session.GET("/me", h.Me)
		session.POST("/logout", h.Logout)
		session.POST("/password/change", h.ChangePassword)
	})

	Describe("Login", func() {
		It("sets the session cookie and returns the session id", func() {
			auth.loginFn = func(_ context.Context, email, password string) (*model.User, *model.Session, error) {
				Expect(email).To(Equal("dev@acme.io"))
				Expect(password).To(Equal("s3cret-pass"))
				return user, &model.Session{ID: 777, UserID: user.ID}, nil
			}

			w := perform(router, http.MethodPost, "/auth/login", map[string]string{
				"email":    "dev@acme.io",
				"password": "s3cret-pass",
			})

			Expect(w.Code).To(Equal(http.StatusOK))
			resp := decode(w)
			Expect(resp["session_id"]).To(Equal("777"))
			Expect(resp["expires_in"]).To(BeNumerically("==", 86400))
			Expect(resp["user"].(map[string]any)["id"]).To(Equal("11"))

			cookies := w.Result().Cookies()
			Expect(cookies).To(HaveLen(1))
			Expect(cookies[0].Name).To(Equal(middleware.SessionCookieName))
			Expect(cookies[0].Value).To(Equal("777"))
			Expect(cookies[0].HttpOnly).To(BeTrue())
		})

		It("returns 401 with a code for bad credentials", func() {
			auth.loginFn = func(context.Context, string, string) (*model.User, *model.Session, error) {
				return nil, nil, service.ErrInvalidCredentials
			}

			w := perform(router, http.MethodPost, "/auth/login", map[string]string{
				"email":    "dev@acme.io",
				"password": "wrong",
			})

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(decode(w)["code"]).To(Equal("invalid_credentials"))
		})

		It("rejects a malformed email", func() {
			w := perform(router, http.MethodPost, "/auth/login", map[string]string{
				"email":    "not-an-email",
				"password": "whatever",
			})

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(w)["code"]).To(Equal("invalid_request"))
		})
	})

	It("returns the current user", func() {
		w := perform(router, http.MethodGet, "/auth/me", nil)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(decode(w)["email"]).To(Equal("dev@acme.io"))
	})

	It("logs out the session carried by the request", func() {
		var loggedOut int64
		auth.logoutFn = func(_ context.Context, sessionID int64) error {
			loggedOut = sessionID
			return nil
		}

		w := perform(router, http.MethodPost, "/auth/logout", nil)

		Expect(w.Code).To(Equal(http.StatusNoContent))
		Expect(loggedOut).To(Equal(int64(42)))
	})

	It("maps a wrong current password to 401", func() {
		auth.changePasswordFn = func(context.Context, *model.User, string, string) error {
			return service.ErrInvalidCredentials
		}

		w := perform(router, http.MethodPost, "/auth/password/change", map[string]string{
			"current_password": "nope",
			"new_password":     "a-much-better-one",
		})

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	Describe("SSO", func() {
		It("returns 404 when SSO is not configured", func() {
			w := perform(router, http.MethodGet, "/auth/sso/login", nil)

			Expect(w.Code).To(Equal(http.StatusNotFound))
			Expect(decode(w)["code"]).To(Equal("sso_disabled"))
		})

		It("redirects to the provider with a state cookie", func() {
			auth.ssoEnabled = true

			w := perform(router, http.MethodGet, "/auth/sso/login", nil)

			Expect(w.Code).To(Equal(http.StatusTemporaryRedirect))
			Expect(w.Header().Get("Location")).To(HavePrefix("https://sso.example.com/authorize?state="))
			Expect(w.Header().Get("Set-Cookie")).To(ContainSubstring("devtrack_oauth_state="))
		})
	})

	Describe("password reset", func() {
		It("answers 202 regardless of whether the account exists", func() {
			var asked string
			reset.requestFn = func(_ context.Context, email string) error {
				asked = email
				return nil
			}

			w := perform(router, http.MethodPost, "/auth/password/forgot", map[string]string{"email": "ghost@acme.io"})

			Expect(w.Code).To(Equal(http.StatusAccepted))
			Expect(asked).To(Equal("ghost@acme.io"))
		})

		It("requires a six digit code", func() {
			w := perform(router, http.MethodPost, "/auth/password/verify", map[string]string{
				"email": "dev@acme.io",
				"code":  "12ab",
			})

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})

		DescribeTable("maps code failures",
			func(err error, status int, code string) {
				reset.resetFn = func(context.Context, string, string, string) error { return err }

				w := perform(router, http.MethodPost, "/auth/password/reset", map[string]string{
					"email":        "dev@acme.io",
					"code":         "123456",
					"new_password": strings.Repeat("x", 12),
				})

				Expect(w.Code).To(Equal(status))
				Expect(decode(w)["code"]).To(Equal(code))
			},
			Entry("wrong code", service.ErrOTPInvalid, http.StatusBadRequest, "otp_invalid"),
			Entry("expired code", service.ErrOTPExpired, http.StatusBadRequest, "otp_expired"),
			Entry("too many attempts", service.ErrOTPAttemptsExceeded, http.StatusTooManyRequests, "otp_attempts_exceeded"),
		)

		It("returns 204 once the password is reset", func() {
			w := perform(router, http.MethodPost, "/auth/password/reset", map[string]string{
				"email":        "dev@acme.io",
				"code":         "123456",
				"new_password": "brand-new-password",
			})

			Expect(w.Code).To(Equal(http.StatusNoContent))
		})
	})
})

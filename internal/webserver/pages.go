package webserver

import (
	"net/http"

	contribsession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/FischerJoao/mindestoque/internal/domain"
	"github.com/FischerJoao/mindestoque/internal/forms"
)

const flashCookie = "mind_flash"

func (s *WebServer) registerPageRoutes() {
	s.root.GET("/", s.loginPage)
	s.root.POST("/login", s.login)
	s.root.GET("/register", s.registerPage)
	s.root.POST("/register", s.register)
	s.root.GET("/logout", s.logout)
	s.root.GET("/admin", s.adminPage, s.pageGuard)
}

func (s *WebServer) flash(c echo.Context, message string) {
	store, err := contribsession.Get(flashCookie, c)
	if err != nil {
		return
	}
	store.AddFlash(message)
	_ = store.Save(c.Request(), c.Response())
}

func (s *WebServer) takeFlashes(c echo.Context) []string {
	store, err := contribsession.Get(flashCookie, c)
	if err != nil {
		return nil
	}
	raw := store.Flashes()
	_ = store.Save(c.Request(), c.Response())
	out := make([]string, 0, len(raw))
	for _, f := range raw {
		if msg, isStr := f.(string); isStr {
			out = append(out, msg)
		}
	}
	return out
}

// cookieSession parses the session cookie, nil when absent or unusable.
func (s *WebServer) cookieSession(c echo.Context) *domain.Session {
	cookie, err := c.Cookie(s.appCtx.Config().Web.SessionName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	sess, err := s.appCtx.Sessions().Parse(cookie.Value)
	if err != nil {
		return nil
	}
	return sess
}

// pageGuard protects server-rendered pages: no valid cookie means back to
// the login page. Restores registry state after a process restart.
func (s *WebServer) pageGuard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		sess := s.cookieSession(c)
		if sess == nil {
			s.clearSessionCookie(c)
			return c.Redirect(http.StatusFound, "/")
		}
		if live := s.appCtx.Sessions().CurrentSession(sess.ID); live == nil {
			s.appCtx.Sessions().Restore(sess)
		}
		c.Set(sessionContextKey, sess)
		return next(c)
	}
}

func (s *WebServer) loginPage(c echo.Context) error {
	if s.cookieSession(c) != nil {
		return c.Redirect(http.StatusFound, "/admin")
	}
	return c.Render(http.StatusOK, "login.html", map[string]interface{}{
		"Flashes": s.takeFlashes(c),
	})
}

func (s *WebServer) login(c echo.Context) error {
	var creds domain.Credentials
	if err := c.Bind(&creds); err != nil || creds.Email == "" || creds.Password == "" {
		s.flash(c, "Email and password are required")
		return c.Redirect(http.StatusFound, "/")
	}

	sess, signed, err := s.appCtx.Sessions().Authenticate(c.Request().Context(), creds.Email, creds.Password)
	if err != nil {
		// Failed exchange reads as invalid credentials; the operator simply
		// resubmits. No retry on our side.
		s.flash(c, "Invalid email or password")
		return c.Redirect(http.StatusFound, "/")
	}

	// Session readiness: bind the collection and fetch it once.
	s.appCtx.Inventory().Open(c.Request().Context(), sess)
	s.setSessionCookie(c, signed, sess)
	return c.Redirect(http.StatusFound, "/admin")
}

func (s *WebServer) registerPage(c echo.Context) error {
	return c.Render(http.StatusOK, "register.html", map[string]interface{}{
		"Flashes": s.takeFlashes(c),
	})
}

func (s *WebServer) register(c echo.Context) error {
	var reg domain.Registration
	if err := c.Bind(&reg); err != nil {
		s.flash(c, "Unable to read the registration form")
		return c.Redirect(http.StatusFound, "/register")
	}

	form := forms.NewRegistrationForm(s.appCtx.Backend())
	fieldErrs, err := form.Submit(c.Request().Context(), reg)
	if fieldErrs.Any() {
		s.flash(c, fieldErrs.Message())
		return c.Redirect(http.StatusFound, "/register")
	}
	if err != nil {
		zap.L().Warn("registration failed", zap.String("email", reg.Email), zap.Error(err))
		s.flash(c, "Registration was refused, try again")
		return c.Redirect(http.StatusFound, "/register")
	}

	s.flash(c, "Account created, sign in")
	return c.Redirect(http.StatusFound, "/")
}

func (s *WebServer) logout(c echo.Context) error {
	if sess := s.cookieSession(c); sess != nil {
		s.appCtx.Sessions().Logout(sess.ID)
		s.appCtx.Inventory().Close(sess.ID)
	}
	s.clearSessionCookie(c)
	return c.Redirect(http.StatusFound, "/")
}

func (s *WebServer) adminPage(c echo.Context) error {
	sess := currentSession(c)
	col := s.appCtx.Inventory().Get(sess.ID)
	if col == nil {
		col = s.appCtx.Inventory().Open(c.Request().Context(), sess)
	}
	return c.Render(http.StatusOK, "admin.html", map[string]interface{}{
		"User":     sess.User,
		"Products": col.Products(),
		"Summary":  col.Summary(),
		"Flashes":  s.takeFlashes(c),
	})
}

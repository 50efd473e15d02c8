// Package webserver serves the admin panel: the login/register/admin pages
// and the JSON API the pages call. All product state lives in the inventory
// registry; all product mutations go through the backend client.
package webserver

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/sessions"
	contribsession "github.com/labstack/echo-contrib/session"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"go.uber.org/zap"

	"github.com/FischerJoao/mindestoque/internal/app"
	"github.com/FischerJoao/mindestoque/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

type htmlRenderer struct {
	templates *template.Template
}

func (r *htmlRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

type WebServer struct {
	appCtx app.AppContext
	root   *echo.Echo
}

func NewWebServer(appCtx app.AppContext) *WebServer {
	s := &WebServer{appCtx: appCtx, root: echo.New()}
	s.root.HideBanner = true
	s.root.Logger.SetLevel(log.OFF)
	s.root.JSONSerializer = jsonSerializer{}
	s.root.Renderer = &htmlRenderer{
		templates: template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}

	cfg := appCtx.Config()
	s.root.Use(middleware.Recover())
	s.root.Use(middleware.RequestID())
	s.root.Use(contribsession.Middleware(sessions.NewCookieStore([]byte(cfg.Web.Secret))))
	s.root.Use(s.accessLog)

	s.registerPageRoutes()

	api := s.root.Group("/api")
	api.Use(echojwt.WithConfig(echojwt.Config{
		SigningKey:  appCtx.Sessions().Secret(),
		TokenLookup: "cookie:" + cfg.Web.SessionName,
		ErrorHandler: func(c echo.Context, err error) error {
			return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Sign in required", nil)
		},
	}))
	api.Use(s.sessionGuard)
	s.registerProductRoutes(api)

	return s
}

// accessLog writes one zap line per request, in place of echo's logger.
func (s *WebServer) accessLog(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		zap.L().Debug("http request",
			zap.String("method", c.Request().Method),
			zap.String("path", c.Request().URL.Path),
			zap.Int("status", c.Response().Status),
			zap.Duration("elapsed", time.Since(start)),
		)
		return err
	}
}

// sessionGuard turns the verified cookie token into a Session for handlers.
// A valid token unknown to the live registry means the process restarted;
// the session is restored from the cookie rather than forcing a re-login.
func (s *WebServer) sessionGuard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, tokOk := c.Get("user").(*jwt.Token)
		if !tokOk {
			return fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Sign in required", nil)
		}
		sess, err := s.appCtx.Sessions().FromToken(token)
		if err != nil {
			return fail(c, http.StatusUnauthorized, "INVALID_SESSION", "Session token is not usable", nil)
		}
		if live := s.appCtx.Sessions().CurrentSession(sess.ID); live == nil {
			s.appCtx.Sessions().Restore(sess)
		}
		c.Set(sessionContextKey, sess)
		return next(c)
	}
}

func (s *WebServer) setSessionCookie(c echo.Context, signed string, sess *domain.Session) {
	c.SetCookie(&http.Cookie{
		Name:     s.appCtx.Config().Web.SessionName,
		Value:    signed,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *WebServer) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     s.appCtx.Config().Web.SessionName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func (s *WebServer) Start() error {
	cfg := s.appCtx.Config()
	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port)
	zap.L().Info("admin panel listening", zap.String("addr", addr))
	return s.root.Start(addr)
}

func (s *WebServer) Shutdown(ctx context.Context) error {
	return s.root.Shutdown(ctx)
}

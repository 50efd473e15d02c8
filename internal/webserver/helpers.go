package webserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/FischerJoao/mindestoque/internal/backend"
	"github.com/FischerJoao/mindestoque/internal/domain"
)

const sessionContextKey = "mind.session"

type apiResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message,omitempty"`
	Detail  interface{} `json:"detail,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type pagedResponse struct {
	Code     string      `json:"code"`
	Data     interface{} `json:"data"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"pageSize"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, apiResponse{Code: "OK", Data: data})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, apiResponse{Code: code, Message: message, Detail: detail})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, pagedResponse{
		Code: "OK", Data: rows, Total: total, Page: page, PageSize: pageSize,
	})
}

// parsePagination accepts both perPage (front-end) and pageSize (legacy).
func parsePagination(c echo.Context) (int, int) {
	page := 1
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	pageSize := 50
	perPage := c.QueryParam("perPage")
	if perPage == "" {
		perPage = c.QueryParam("pageSize")
	}
	if ps, err := strconv.Atoi(perPage); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

// failFromErr maps backend client errors onto the response envelope: a
// missing token blocks with 401, a backend rejection keeps its status and
// message, anything else is a network-level failure.
func failFromErr(c echo.Context, err error) error {
	if errors.Is(err, backend.ErrNoToken) {
		return fail(c, http.StatusUnauthorized, "NO_TOKEN", "Session has no access token", nil)
	}
	if apiErr, isAPI := backend.IsAPIError(err); isAPI {
		return fail(c, apiErr.Status, "BACKEND_ERROR", apiErr.Message, nil)
	}
	return fail(c, http.StatusBadGateway, "BACKEND_UNREACHABLE",
		"Could not reach the inventory backend", err.Error())
}

func currentSession(c echo.Context) *domain.Session {
	sess, _ := c.Get(sessionContextKey).(*domain.Session)
	return sess
}

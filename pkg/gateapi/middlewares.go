package gateapi // import "github.com/joincivil/civil-content-gate/pkg/gateapi"

import (
	"fmt"
	"net/http"

	log "github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/joincivil/civil-content-gate/pkg/gaterr"
)

// kindNotFound is used for unknown routes, it is not a gate error
const kindNotFound = "not_found"

// StatusCode returns the HTTP status of a gate error kind
func StatusCode(kind gaterr.Kind) int {
	switch kind {
	case gaterr.KindValidation:
		return http.StatusBadRequest
	case gaterr.KindInvalidSignature:
		return http.StatusUnauthorized
	case gaterr.KindUnauthorized:
		return http.StatusForbidden
	case gaterr.KindUnknownCampaign:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// RequestLogger logs every request through glog
func RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Infof("[%d] %s %s (%v)", v.Status, v.Method, v.URI, v.Latency)
			return nil
		},
	})
}

// HTTPErrorHandler renders errors as {"error": {"kind", "message"}}. Causes of
// server errors are logged under an incident id and never rendered.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	switch e := err.(type) {
	case *echo.HTTPError:
		if e.Code >= http.StatusInternalServerError {
			internal(err, c)
			return
		}
		kind := string(gaterr.KindValidation)
		if e.Code == http.StatusNotFound || e.Code == http.StatusMethodNotAllowed {
			kind = kindNotFound
		}
		if e.Internal != nil {
			log.Infof("Request error: %v, err: %v", e.Message, e.Internal)
		}
		renderError(c, e.Code, kind, fmt.Sprint(e.Message))
	default:
		kind := gaterr.KindOf(err)
		status := StatusCode(kind)
		if status >= http.StatusInternalServerError {
			internal(err, c)
			return
		}
		renderError(c, status, string(kind), gaterr.MessageOf(err))
	}
}

func internal(err error, c echo.Context) {
	id := uuid.New().String()
	kind := gaterr.KindOf(err)
	if _, ok := err.(*echo.HTTPError); ok {
		kind = gaterr.KindUnknown
	}
	log.Errorf("Error [%s] %s %s: kind: %v, err: %v", id, c.Request().Method, c.Request().RequestURI,
		kind, err)

	_ = c.JSON(http.StatusInternalServerError, echo.Map{ // nolint: gosec
		"error": echo.Map{
			"kind":     string(kind),
			"message":  fmt.Sprintf("Unexpected error (id: %s)", id),
			"incident": id,
		},
	})
}

func renderError(c echo.Context, status int, kind string, message string) {
	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status) // nolint: gosec
		return
	}
	_ = c.JSON(status, echo.Map{ // nolint: gosec
		"error": echo.Map{
			"kind":    kind,
			"message": message,
		},
	})
}

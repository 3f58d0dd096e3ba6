// Package gateapi contains the HTTP surface of the content gate
package gateapi // import "github.com/joincivil/civil-content-gate/pkg/gateapi"

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/golang/glog"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/joincivil/civil-content-gate/pkg/gate"
	"github.com/joincivil/civil-content-gate/pkg/model"
)

const (
	// DefaultBodyLimit is the max request body size when none is configured
	DefaultBodyLimit = "1MiB"
)

// ChainStatus reports the last block seen by the chain heartbeat
type ChainStatus interface {
	LatestBlock() (number uint64, checkedAt time.Time, ok bool)
}

// An IOC is an Inversion Of Control pattern used to init the gateapi package.
type IOC struct {
	NetworkName     string
	RPCEndpoint     string
	ContractAddress common.Address
	BodyLimit       string

	Service *gate.ContentService
	Oracle  model.CampaignOracle
	// Chain is optional, nil when the heartbeat is disabled
	Chain ChainStatus
	// Now defaults to time.Now
	Now func() time.Time
}

// EchoEngine instantiates the web server.
func EchoEngine(ctrl IOC) *echo.Echo {
	bodyLimit := ctrl.BodyLimit
	if bodyLimit == "" {
		bodyLimit = DefaultBodyLimit
	}
	now := ctrl.Now
	if now == nil {
		now = time.Now
	}

	engine := echo.New()
	engine.HideBanner = true
	engine.HidePort = true
	engine.Use(middleware.Recover())
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))
	engine.Use(middleware.BodyLimit(bodyLimit))
	engine.Use(RequestLogger())

	// Error handler
	engine.HTTPErrorHandler = HTTPErrorHandler

	////////////
	// Router //
	////////////

	router := engine.Group("")

	h := &health{
		network:         ctrl.NetworkName,
		rpcEndpoint:     ctrl.RPCEndpoint,
		contractAddress: ctrl.ContractAddress,
		chain:           ctrl.Chain,
		now:             now,
	}
	router.GET("/health", h.Show)

	//
	// campaign handlers
	//
	c := &campaigns{
		service: ctrl.Service,
		oracle:  ctrl.Oracle,
	}
	router.GET("/campaigns", c.List)
	router.POST("/campaigns", c.Save)
	router.GET("/campaigns/:id", c.Show)
	router.GET("/campaigns/:id/subscription", c.Subscription)

	//
	// post handlers
	//
	p := &posts{
		service: ctrl.Service,
	}
	router.GET("/campaigns/:id/posts", p.List)
	router.POST("/campaigns/:id/posts", p.Publish)

	return engine
}

// LogRoutes logs the exposed routes of the engine
func LogRoutes(e *echo.Echo) {
	routes := e.Routes()
	sort.Slice(routes, func(i int, j int) bool {
		return routes[i].Path < routes[j].Path
	})
	for _, route := range routes {
		log.Infof("Route: %6s %s", route.Method, route.Path)
	}
}

type health struct {
	network         string
	rpcEndpoint     string
	contractAddress common.Address
	chain           ChainStatus
	now             func() time.Time
}

func (h *health) Show(c echo.Context) error {
	resp := echo.Map{
		"ok":              true,
		"time":            h.now().UTC().Format(time.RFC3339Nano),
		"network":         h.network,
		"rpcEndpoint":     h.rpcEndpoint,
		"contractAddress": h.contractAddress.Hex(),
	}
	if h.chain != nil {
		if number, checkedAt, ok := h.chain.LatestBlock(); ok {
			resp["latestBlock"] = fmt.Sprintf("%d", number)
			resp["checkedAt"] = checkedAt.UTC().Format(time.RFC3339Nano)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

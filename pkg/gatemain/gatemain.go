// Package gatemain wires the content gate together and runs it
package gatemain

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	log "github.com/golang/glog"
	"github.com/labstack/echo/v4"
	"github.com/robfig/cron"

	"github.com/joincivil/civil-content-gate/pkg/gate"
	"github.com/joincivil/civil-content-gate/pkg/gateapi"
	"github.com/joincivil/civil-content-gate/pkg/helpers"
	"github.com/joincivil/civil-content-gate/pkg/model"
	"github.com/joincivil/civil-content-gate/pkg/utils"
)

const (
	shutdownTimeout = 15 * time.Second
)

// Gate holds the initialized dependencies of the server
type Gate struct {
	Config    *utils.GateConfig
	Client    *ethclient.Client
	Persister model.ContentPersister
	Oracle    model.CampaignOracle
	Heartbeat *Heartbeat
	Engine    *echo.Echo

	cron *cron.Cron
}

// InitGate connects to the chain and opens the store. A store that fails to
// validate stops the initialization.
func InitGate(config *utils.GateConfig) (*Gate, error) {
	client, err := ethclient.Dial(config.EthAPIURL)
	if err != nil {
		log.Errorf("Error connecting to eth API: err: %v", err)
		return nil, err
	}

	campaignOracle, err := helpers.CampaignOracle(config, client)
	if err != nil {
		log.Errorf("Error creating campaign oracle: err: %v", err)
		client.Close()
		return nil, err
	}

	persister, err := helpers.ContentPersister(config)
	if err != nil {
		log.Errorf("Error getting the content persister: err: %v", err)
		client.Close()
		return nil, err
	}

	g := &Gate{
		Config:    config,
		Client:    client,
		Persister: persister,
		Oracle:    campaignOracle,
	}
	if config.HeartbeatCronConfig != "" {
		g.Heartbeat = NewHeartbeat(client)
	}
	g.Engine = NewEngine(config, g.Oracle, g.Persister, g.Heartbeat)
	return g, nil
}

// NewEngine builds the HTTP engine over the given oracle and store
func NewEngine(config *utils.GateConfig, oracle model.CampaignOracle,
	persister model.ContentPersister, heartbeat *Heartbeat) *echo.Echo {
	service := gate.NewContentService(&gate.NewContentServiceParams{
		Oracle:        oracle,
		CardPersister: persister,
		PostPersister: persister,
		PreviewLength: config.PreviewLength,
	})
	ctrl := gateapi.IOC{
		NetworkName:     config.NetworkName,
		RPCEndpoint:     config.EthAPIURL,
		ContractAddress: config.ContractAddr(),
		BodyLimit:       config.BodyLimit,
		Service:         service,
		Oracle:          oracle,
	}
	// A nil *Heartbeat must not become a non-nil interface
	if heartbeat != nil {
		ctrl.Chain = heartbeat
	}
	return gateapi.EchoEngine(ctrl)
}

// Run starts the heartbeat and the HTTP server, and blocks until the server
// stops or a kill signal is received.
func (g *Gate) Run() error {
	if g.Heartbeat != nil {
		cr, err := StartHeartbeatCron(g.Config.HeartbeatCronConfig, g.Heartbeat)
		if err != nil {
			log.Errorf("Error starting heartbeat: err: %v", err)
			g.Close()
			return err
		}
		g.cron = cr
	}

	quitChan := make(chan bool, 1)
	SetupKillNotify(quitChan)

	errChan := make(chan error, 1)
	go func() {
		gateapi.LogRoutes(g.Engine)
		log.Infof("Listening on %v, contract %v on %v, body limit %v bytes", g.Config.HTTPAddress,
			g.Config.ContractAddr().Hex(), g.Config.NetworkName, g.Config.BodyLimitBytes())
		errChan <- g.Engine.Start(g.Config.HTTPAddress)
	}()

	select {
	case err := <-errChan:
		g.Close()
		if err != nil && err != http.ErrServerClosed {
			log.Errorf("Error running server: err: %v", err)
			return err
		}
		return nil
	case <-quitChan:
		log.Infof("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := g.Engine.Shutdown(ctx); err != nil {
			log.Errorf("Error shutting down server: err: %v", err)
		}
		g.Close()
		return nil
	}
}

// Close stops the heartbeat and releases the store and the eth client
func (g *Gate) Close() {
	if g.cron != nil {
		g.cron.Stop()
	}
	if g.Persister != nil {
		if err := g.Persister.Close(); err != nil {
			log.Errorf("Error closing persister: err: %v", err)
		}
	}
	if g.Client != nil {
		g.Client.Close()
	}
	log.Flush()
}

// SetupKillNotify signals quitChan on SIGINT or SIGTERM
func SetupKillNotify(quitChan chan<- bool) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		quitChan <- true
	}()
}

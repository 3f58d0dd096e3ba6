// Package helpers contains various common helper functions.
// Normally they are shared functions used by the cmds.
package helpers

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	log "github.com/golang/glog"
	"github.com/jmoiron/sqlx"

	"github.com/joincivil/civil-content-gate/pkg/model"
	"github.com/joincivil/civil-content-gate/pkg/oracle"
	"github.com/joincivil/civil-content-gate/pkg/persistence"
	"github.com/joincivil/civil-content-gate/pkg/utils"
)

// ContentPersister is a helper function to return the content persister based on
// the given configuration
func ContentPersister(config *utils.GateConfig) (model.ContentPersister, error) {
	switch config.PersisterType {
	case utils.PersisterTypeBolt:
		log.Infof("Using bolt persister at %v", config.PersisterBoltPath)
		return persistence.NewBoltPersister(config.PersisterBoltPath)
	case utils.PersisterTypeFile:
		log.Infof("Using file persister in %v", config.PersisterFileDir)
		return persistence.NewFilePersister(config.PersisterFileDir)
	case utils.PersisterTypePostgresql:
		log.Infof("Using postgresql persister at %v:%v", config.PersisterPostgresAddress,
			config.PersisterPostgresPort)
		return persistence.NewPostgresPersister(
			config.PersisterPostgresAddress,
			config.PersisterPostgresPort,
			config.PersisterPostgresUser,
			config.PersisterPostgresPw,
			config.PersisterPostgresDbname,
		)
	}
	return nil, fmt.Errorf("Unsupported persister type: %v", config.PersisterTypeName)
}

// ContentPersisterFromSqlx is a helper function to return a content persister
// given an initialized sqlx.DB struct
func ContentPersisterFromSqlx(db *sqlx.DB) (model.ContentPersister, error) {
	return persistence.NewPostgresPersisterFromSqlx(db)
}

// CampaignOracle is a helper function to return the chain oracle for the
// configured contract
func CampaignOracle(config *utils.GateConfig, client bind.ContractCaller) (model.CampaignOracle, error) {
	if client == nil {
		return nil, errors.New("No eth client for the campaign oracle")
	}
	chainOracle, err := oracle.NewChainOracle(&oracle.NewChainOracleParams{
		Client:          client,
		ContractAddress: config.ContractAddr(),
		CallTimeout:     config.ChainTimeout,
		MaxRetries:      config.ChainMaxRetries,
		RetryInterval:   config.ChainRetryInterval,
	})
	if err != nil {
		return nil, err
	}
	return chainOracle, nil
}

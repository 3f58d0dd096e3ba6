// Package utils contains various common utils separate by utility types
package utils

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"text/tabwriter"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kelseyhightower/envconfig"
	"github.com/labstack/gommon/bytes"
	"github.com/robfig/cron"
)

// PersisterType is the type of persister to use.
type PersisterType int

const (
	// PersisterTypeInvalid is an invalid persister value
	PersisterTypeInvalid PersisterType = iota

	// PersisterTypeBolt is a persister that uses an embedded bolt database
	PersisterTypeBolt

	// PersisterTypeFile is a persister that uses JSON documents on disk
	PersisterTypeFile

	// PersisterTypePostgresql is a persister that uses PostgreSQL as the backend
	PersisterTypePostgresql
)

var (
	// PersisterNameToType maps valid persister names to the types above
	PersisterNameToType = map[string]PersisterType{
		"bolt":       PersisterTypeBolt,
		"file":       PersisterTypeFile,
		"postgresql": PersisterTypePostgresql,
	}

	validEthAPISchemes = map[string]bool{
		"http":  true,
		"https": true,
		"ws":    true,
		"wss":   true,
	}
)

const (
	envVarPrefix = "gate"

	usageListFormat = `The content gate is configured via environment vars only. The following environment variables can be used:
{{range .}}
{{usage_key .}}
  description: {{usage_description .}}
  type:        {{usage_type .}}
  default:     {{usage_default .}}
  required:    {{usage_required .}}
{{end}}
`
)

// GateConfig is the master config for the content gate derived from environment
// variables.
type GateConfig struct {
	EthAPIURL       string `envconfig:"eth_api_url" required:"true" desc:"Ethereum API address"`
	ContractAddress string `split_words:"true" default:"0xe800F57F7016E938d5D1Ed56Ed864A8C5bC03389" desc:"Address of the campaign contract"`
	NetworkName     string `split_words:"true" default:"sepolia" desc:"Name of the network, reported by /health"`

	HTTPAddress   string `envconfig:"http_address" default:":8080" desc:"Address the HTTP server listens on"`
	PreviewLength int    `split_words:"true" default:"140" desc:"Number of characters shown to non entitled readers"`
	BodyLimit     string `split_words:"true" default:"1MiB" desc:"Max size of a request body"`

	ChainTimeout       time.Duration `split_words:"true" default:"10s" desc:"Timeout of a single chain call"`
	ChainMaxRetries    uint          `split_words:"true" default:"3" desc:"Retries of a failed chain call"`
	ChainRetryInterval time.Duration `split_words:"true" default:"250ms" desc:"Initial wait between chain call retries"`

	HeartbeatCronConfig string `split_words:"true" desc:"Cron config string * * * * * for the chain heartbeat, empty disables it"`

	PersisterType            PersisterType `ignored:"true"`
	PersisterTypeName        string        `split_words:"true" default:"bolt" desc:"Sets the persister type to use (bolt, file, postgresql)"`
	PersisterBoltPath        string        `split_words:"true" default:"content-gate.db" desc:"If persister type is bolt, sets the database file"`
	PersisterFileDir         string        `split_words:"true" default:"data" desc:"If persister type is file, sets the directory of the JSON files"`
	PersisterPostgresAddress string        `split_words:"true" desc:"If persister type is Postgresql, sets the address"`
	PersisterPostgresPort    int           `split_words:"true" desc:"If persister type is Postgresql, sets the port"`
	PersisterPostgresDbname  string        `split_words:"true" desc:"If persister type is Postgresql, sets the database name"`
	PersisterPostgresUser    string        `split_words:"true" desc:"If persister type is Postgresql, sets the database user"`
	PersisterPostgresPw      string        `split_words:"true" desc:"If persister type is Postgresql, sets the database password"`
}

// OutputUsage prints the usage string to os.Stdout
func (c *GateConfig) OutputUsage() {
	tabs := tabwriter.NewWriter(os.Stdout, 1, 0, 4, ' ', 0)
	_ = envconfig.Usagef(envVarPrefix, c, tabs, usageListFormat) // nolint: gosec
	_ = tabs.Flush()                                             // nolint: gosec
}

// PopulateFromEnv processes the environment vars, populates GateConfig
// with the respective values, and validates the values.
func (c *GateConfig) PopulateFromEnv() error {
	err := envconfig.Process(envVarPrefix, c)
	if err != nil {
		return err
	}

	err = c.validateAPIURL()
	if err != nil {
		return err
	}

	err = c.validateContractAddress()
	if err != nil {
		return err
	}

	err = c.validateLimits()
	if err != nil {
		return err
	}

	err = c.validateCronConfig()
	if err != nil {
		return err
	}

	err = c.populatePersisterType()
	if err != nil {
		return err
	}

	return c.validatePersister()
}

// ContractAddr returns the contract address as a common.Address
func (c *GateConfig) ContractAddr() common.Address {
	return common.HexToAddress(c.ContractAddress)
}

// BodyLimitBytes returns the body limit in bytes
func (c *GateConfig) BodyLimitBytes() int64 {
	limit, _ := bytes.Parse(c.BodyLimit) // nolint: gosec
	return limit
}

func (c *GateConfig) validateAPIURL() error {
	if !IsValidEthAPIURL(c.EthAPIURL) {
		return fmt.Errorf("Invalid eth API URL: '%v'", c.EthAPIURL)
	}
	return nil
}

func (c *GateConfig) validateContractAddress() error {
	if !common.IsHexAddress(c.ContractAddress) {
		return fmt.Errorf("Invalid contract address: '%v'", c.ContractAddress)
	}
	return nil
}

func (c *GateConfig) validateLimits() error {
	if c.PreviewLength <= 0 {
		return fmt.Errorf("Invalid preview length: %v", c.PreviewLength)
	}
	if c.ChainTimeout <= 0 {
		return fmt.Errorf("Invalid chain timeout: %v", c.ChainTimeout)
	}
	limit, err := bytes.Parse(c.BodyLimit)
	if err != nil || limit <= 0 {
		return fmt.Errorf("Invalid body limit: '%v'", c.BodyLimit)
	}
	return nil
}

func (c *GateConfig) validateCronConfig() error {
	if c.HeartbeatCronConfig == "" {
		return nil
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	_, err := parser.Parse(c.HeartbeatCronConfig)
	if err != nil {
		return fmt.Errorf("Invalid cron config: '%v'", c.HeartbeatCronConfig)
	}
	return nil
}

func (c *GateConfig) validatePersister() error {
	switch c.PersisterType {
	case PersisterTypeBolt:
		if c.PersisterBoltPath == "" {
			return errors.New("Bolt path required")
		}
	case PersisterTypeFile:
		if c.PersisterFileDir == "" {
			return errors.New("File persister directory required")
		}
	case PersisterTypePostgresql:
		return c.validatePostgresqlPersister()
	}
	return nil
}

func (c *GateConfig) validatePostgresqlPersister() error {
	if c.PersisterPostgresAddress == "" {
		return errors.New("Postgresql address required")
	}
	if c.PersisterPostgresPort == 0 {
		return errors.New("Postgresql port required")
	}
	if c.PersisterPostgresDbname == "" {
		return errors.New("Postgresql db name required")
	}
	return nil
}

func (c *GateConfig) populatePersisterType() error {
	var err error
	c.PersisterType, err = PersisterTypeFromName(c.PersisterTypeName)
	return err
}

// PersisterTypeFromName returns the correct persisterType from the string name
func PersisterTypeFromName(typeStr string) (PersisterType, error) {
	pType, ok := PersisterNameToType[typeStr]
	if !ok {
		validNames := make([]string, len(PersisterNameToType))
		index := 0
		for name := range PersisterNameToType {
			validNames[index] = name
			index++
		}
		return PersisterTypeInvalid,
			fmt.Errorf("Invalid persister value: %v; valid types %v", typeStr, validNames)
	}
	return pType, nil
}

// IsValidEthAPIURL returns true if the url is a http(s) or ws(s) endpoint
func IsValidEthAPIURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return validEthAPISchemes[u.Scheme] && u.Host != ""
}

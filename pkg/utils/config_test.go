// Package utils_test contains tests for the config utils
package utils_test

import (
	"testing"
	"time"

	"github.com/joincivil/civil-content-gate/pkg/utils"
)

func setBaseEnv(t *testing.T) {
	t.Setenv("GATE_ETH_API_URL", "https://sepolia.example.com/v3/key")
	t.Setenv("GATE_PERSISTER_TYPE_NAME", "bolt")
}

func TestGateConfig(t *testing.T) {
	setBaseEnv(t)
	config := &utils.GateConfig{}
	err := config.PopulateFromEnv()
	if err != nil {
		t.Fatalf("Failed to populate from environment: err: %v", err)
	}
	if config.PersisterType != utils.PersisterTypeBolt {
		t.Errorf("Should have set the bolt persister type: %v", config.PersisterType)
	}
	if config.PreviewLength != 140 {
		t.Errorf("Should have defaulted the preview length to 140: %v", config.PreviewLength)
	}
	if config.HTTPAddress != ":8080" {
		t.Errorf("Should have defaulted the http address: %v", config.HTTPAddress)
	}
	if config.ChainTimeout != 10*time.Second {
		t.Errorf("Should have defaulted the chain timeout: %v", config.ChainTimeout)
	}
	if config.ChainMaxRetries != 3 {
		t.Errorf("Should have defaulted the chain retries: %v", config.ChainMaxRetries)
	}
	if config.ContractAddr().Hex() != "0xe800F57F7016E938d5D1Ed56Ed864A8C5bC03389" {
		t.Errorf("Should have defaulted the contract address: %v", config.ContractAddr().Hex())
	}
	if config.BodyLimitBytes() != 1024*1024 {
		t.Errorf("Should have defaulted the body limit to 1MiB: %v", config.BodyLimitBytes())
	}
}

func TestBodyLimitUnitsGateConfig(t *testing.T) {
	limits := map[string]int64{
		"1MiB": 1024 * 1024,
		"1M":   1000 * 1000,
		"512K": 512 * 1000,
		"2KiB": 2 * 1024,
	}
	for limit, expected := range limits {
		setBaseEnv(t)
		t.Setenv("GATE_BODY_LIMIT", limit)
		config := &utils.GateConfig{}
		err := config.PopulateFromEnv()
		if err != nil {
			t.Fatalf("Should have allowed body limit %v: err: %v", limit, err)
		}
		if config.BodyLimitBytes() != expected {
			t.Errorf("Should have parsed %v as %v bytes: %v", limit, expected, config.BodyLimitBytes())
		}
	}
}

func TestPostgresqlGateConfig(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("GATE_PERSISTER_TYPE_NAME", "postgresql")
	t.Setenv("GATE_PERSISTER_POSTGRES_ADDRESS", "localhost")
	t.Setenv("GATE_PERSISTER_POSTGRES_PORT", "5432")
	t.Setenv("GATE_PERSISTER_POSTGRES_DBNAME", "content_gate")
	config := &utils.GateConfig{}
	err := config.PopulateFromEnv()
	if err != nil {
		t.Errorf("Failed to populate from environment: err: %v", err)
	}
	if config.PersisterType != utils.PersisterTypePostgresql {
		t.Errorf("Should have set the postgresql persister type: %v", config.PersisterType)
	}
}

func TestMissingEthAPIURLGateConfig(t *testing.T) {
	t.Setenv("GATE_ETH_API_URL", "")
	config := &utils.GateConfig{}
	err := config.PopulateFromEnv()
	if err == nil {
		t.Errorf("Should have failed without an eth API URL")
	}
}

func TestBadEthAPIURLGateConfig(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("GATE_ETH_API_URL", "ftp://ethaddress.com")
	config := &utils.GateConfig{}
	err := config.PopulateFromEnv()
	if err == nil {
		t.Errorf("Should have failed to allow a non http eth API URL")
	}
}

func TestBadPersisterNameGateConfig(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("GATE_PERSISTER_TYPE_NAME", "mysql")
	config := &utils.GateConfig{}
	err := config.PopulateFromEnv()
	if err == nil {
		t.Errorf("Should have failed to allow bad persister type from environment")
	}
}

func TestBadPersisterPostgresqlAddressGateConfig(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("GATE_PERSISTER_TYPE_NAME", "postgresql")
	t.Setenv("GATE_PERSISTER_POSTGRES_PORT", "5432")
	t.Setenv("GATE_PERSISTER_POSTGRES_DBNAME", "content_gate")
	config := &utils.GateConfig{}
	err := config.PopulateFromEnv()
	if err == nil {
		t.Errorf("Should have failed to allow missing postgres address")
	}
}

func TestBadContractAddressGateConfig(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("GATE_CONTRACT_ADDRESS", "0x1234")
	config := &utils.GateConfig{}
	err := config.PopulateFromEnv()
	if err == nil {
		t.Errorf("Should have failed to allow a bad contract address")
	}
}

func TestBadPreviewLengthGateConfig(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("GATE_PREVIEW_LENGTH", "0")
	config := &utils.GateConfig{}
	err := config.PopulateFromEnv()
	if err == nil {
		t.Errorf("Should have failed to allow a zero preview length")
	}
}

func TestBadBodyLimitGateConfig(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("GATE_BODY_LIMIT", "lots")
	config := &utils.GateConfig{}
	err := config.PopulateFromEnv()
	if err == nil {
		t.Errorf("Should have failed to allow a bad body limit")
	}
}

func TestHeartbeatCronGateConfig(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("GATE_HEARTBEAT_CRON_CONFIG", "*/5 * * * *")
	config := &utils.GateConfig{}
	err := config.PopulateFromEnv()
	if err != nil {
		t.Errorf("Failed to populate from environment: err: %v", err)
	}

	t.Setenv("GATE_HEARTBEAT_CRON_CONFIG", "every minute")
	config = &utils.GateConfig{}
	err = config.PopulateFromEnv()
	if err == nil {
		t.Errorf("Should have failed to allow a bad cron config")
	}
}

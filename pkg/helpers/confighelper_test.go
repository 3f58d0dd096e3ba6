package helpers_test

import (
	"path/filepath"
	"testing"

	"github.com/joincivil/civil-content-gate/pkg/helpers"
	"github.com/joincivil/civil-content-gate/pkg/utils"
)

func TestBoltContentPersister(t *testing.T) {
	config := &utils.GateConfig{
		PersisterType:     utils.PersisterTypeBolt,
		PersisterTypeName: "bolt",
		PersisterBoltPath: filepath.Join(t.TempDir(), "gate.db"),
	}
	persister, err := helpers.ContentPersister(config)
	if err != nil {
		t.Fatalf("Should have created bolt persister: err: %v", err)
	}
	defer persister.Close() // nolint: errcheck
	cards, err := persister.Cards()
	if err != nil || len(cards) != 0 {
		t.Errorf("Should have returned an empty store: err: %v", err)
	}
}

func TestFileContentPersister(t *testing.T) {
	config := &utils.GateConfig{
		PersisterType:     utils.PersisterTypeFile,
		PersisterTypeName: "file",
		PersisterFileDir:  t.TempDir(),
	}
	persister, err := helpers.ContentPersister(config)
	if err != nil {
		t.Fatalf("Should have created file persister: err: %v", err)
	}
	defer persister.Close() // nolint: errcheck
}

func TestInvalidContentPersister(t *testing.T) {
	config := &utils.GateConfig{
		PersisterType:     utils.PersisterTypeInvalid,
		PersisterTypeName: "mysql",
	}
	_, err := helpers.ContentPersister(config)
	if err == nil {
		t.Errorf("Should have failed for an invalid persister type")
	}
}

func TestCampaignOracleRequiresClient(t *testing.T) {
	config := &utils.GateConfig{ContractAddress: "0xe800F57F7016E938d5D1Ed56Ed864A8C5bC03389"}
	_, err := helpers.CampaignOracle(config, nil)
	if err == nil {
		t.Errorf("Should have failed without a client")
	}
}

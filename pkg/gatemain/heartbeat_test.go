package gatemain_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/joincivil/civil-content-gate/pkg/gatemain"
	"github.com/joincivil/civil-content-gate/pkg/testutils"
	"github.com/joincivil/civil-content-gate/pkg/utils"
)

type testBlockReader struct {
	mu     sync.Mutex
	number uint64
	err    error
	calls  int
}

func (r *testBlockReader) BlockNumber(ctx context.Context) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.number, r.err
}

func TestHeartbeatCheck(t *testing.T) {
	reader := &testBlockReader{number: 42}
	heartbeat := gatemain.NewHeartbeat(reader)

	_, _, ok := heartbeat.LatestBlock()
	if ok {
		t.Errorf("Should not have a block before the first check")
	}

	heartbeat.Check()
	number, checkedAt, ok := heartbeat.LatestBlock()
	if !ok || number != 42 || checkedAt.IsZero() {
		t.Errorf("Should have recorded block 42: %v %v %v", number, checkedAt, ok)
	}

	reader.err = errors.New("rpc down")
	reader.number = 50
	heartbeat.Check()
	number, _, ok = heartbeat.LatestBlock()
	if !ok || number != 42 {
		t.Errorf("Should have kept the last good block on failure: %v %v", number, ok)
	}
}

func TestStartHeartbeatCron(t *testing.T) {
	reader := &testBlockReader{number: 7}
	heartbeat := gatemain.NewHeartbeat(reader)

	_, err := gatemain.StartHeartbeatCron("not a cron", heartbeat)
	if err == nil {
		t.Errorf("Should have failed on a bad cron spec")
	}

	cr, err := gatemain.StartHeartbeatCron("0 0 1 1 *", heartbeat)
	if err != nil {
		t.Fatalf("Should have started the heartbeat cron: err: %v", err)
	}
	defer cr.Stop()
	if reader.calls != 1 {
		t.Errorf("Should have checked once at start: %v", reader.calls)
	}
	if len(cr.Entries()) != 1 {
		t.Errorf("Should have scheduled one entry: %v", len(cr.Entries()))
	}
}

func TestNewEngineHealth(t *testing.T) {
	config := &utils.GateConfig{
		EthAPIURL:       "https://rpc.example.com",
		ContractAddress: "0xe800F57F7016E938d5D1Ed56Ed864A8C5bC03389",
		NetworkName:     "sepolia",
		PreviewLength:   140,
		BodyLimit:       "1MiB",
	}
	heartbeat := gatemain.NewHeartbeat(&testBlockReader{number: 99})
	heartbeat.Check()

	engine := gatemain.NewEngine(config, testutils.NewFakeOracle(), &testutils.TestPersister{}, heartbeat)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Should have returned 200: %v", rec.Code)
	}
	body := map[string]interface{}{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("Should have returned json: err: %v", err)
	}
	if body["latestBlock"] != "99" {
		t.Errorf("Should have reported the heartbeat block: %v", body["latestBlock"])
	}
	if body["network"] != "sepolia" {
		t.Errorf("Should have reported the network: %v", body["network"])
	}

	engine = gatemain.NewEngine(config, testutils.NewFakeOracle(), &testutils.TestPersister{}, nil)
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("Should have returned 200 without a heartbeat: %v", rec.Code)
	}
}

func TestRunClosesOnHeartbeatFailure(t *testing.T) {
	persister := &testutils.TestPersister{}
	g := &gatemain.Gate{
		Config:    &utils.GateConfig{HeartbeatCronConfig: "not a cron"},
		Persister: persister,
		Heartbeat: gatemain.NewHeartbeat(&testBlockReader{number: 1}),
	}

	err := g.Run()
	if err == nil {
		t.Fatalf("Should have failed to start the heartbeat")
	}
	if !persister.Closed {
		t.Errorf("Should have closed the persister")
	}
}

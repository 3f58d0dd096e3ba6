package gatemain

import (
	"context"
	"sync"
	"time"

	log "github.com/golang/glog"
	"github.com/robfig/cron"
)

const (
	heartbeatTimeout = 10 * time.Second
)

// BlockNumberReader is the part of the eth client used by the heartbeat
type BlockNumberReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
}

// NewHeartbeat is a convenience function to init a Heartbeat
func NewHeartbeat(client BlockNumberReader) *Heartbeat {
	return &Heartbeat{client: client, now: time.Now}
}

// Heartbeat records the latest block number seen on chain. A failed check
// keeps the last good value.
type Heartbeat struct {
	client BlockNumberReader
	now    func() time.Time

	mu        sync.RWMutex
	number    uint64
	checkedAt time.Time
	ok        bool
}

// Check queries the latest block number
func (h *Heartbeat) Check() {
	ctx, cancel := context.WithTimeout(context.Background(), heartbeatTimeout)
	defer cancel()
	number, err := h.client.BlockNumber(ctx)
	if err != nil {
		log.Warningf("Chain heartbeat failed: err: %v", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.number = number
	h.checkedAt = h.now()
	h.ok = true
	log.V(2).Infof("Chain heartbeat: block %v", number)
}

// LatestBlock returns the last block number seen and when it was seen
func (h *Heartbeat) LatestBlock() (uint64, time.Time, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.number, h.checkedAt, h.ok
}

// StartHeartbeatCron runs the heartbeat once, then on the 5 field cron spec
func StartHeartbeatCron(spec string, heartbeat *Heartbeat) (*cron.Cron, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, err
	}
	heartbeat.Check()

	cr := cron.New()
	cr.Schedule(schedule, cron.FuncJob(heartbeat.Check))
	cr.Start()
	for _, entry := range cr.Entries() {
		log.Infof("Heartbeat run times: next: %v", entry.Next)
	}
	return cr, nil
}

package client

import (
	"context"
	"fmt"
	"time"

	"github.com/tmusoni/darasa/core"
	"github.com/tmusoni/darasa/core/student"
)

// Poller re-issues a forced read every interval to pick up out-of-band
// changes to the persisted store. Reconciliation is last-write-wins: each
// successful poll overwrites the cached snapshot wholesale and is handed to
// the subscriber as-is. In-flight requests are not cancelled on overlap, so a
// stale response landing after a newer one is a known hazard; the interval is
// expected to dwarf the request timeout in practice.
type Poller struct {
	client   *Client
	interval time.Duration
	onUpdate func([]student.Student)
	logger   core.Logger
}

func NewPoller(c *Client, interval time.Duration, onUpdate func([]student.Student), logger core.Logger) *Poller {
	return &Poller{
		client:   c,
		interval: interval,
		onUpdate: onUpdate,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			students, err := p.client.FetchStudents(ctx, true /* forced */)
			if err != nil {
				p.logger.Warn(fmt.Sprintf("poll failed: %v", err))
				continue
			}
			if p.onUpdate != nil {
				p.onUpdate(students)
			}
		}
	}
}

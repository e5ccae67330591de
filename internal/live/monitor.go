package live

import (
	"context"
	"sync"
	"time"

	"github.com/xkailive-dev/xkailive/shared/logger"
)

// Connectivity statuses as shown to viewers.
const (
	NetworkGood    = "good"
	NetworkOffline = "offline"
)

// Pinger is the reachability probe the monitor drives. The store client
// satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor probes the remote endpoint on a fixed period and reports status
// flips. The initial state is good; only changes are reported.
type Monitor struct {
	pinger   Pinger
	period   time.Duration
	onChange func(status string)

	mu     sync.Mutex
	status string

	stop     chan struct{}
	stopOnce sync.Once
}

func NewMonitor(pinger Pinger, period time.Duration, onChange func(status string)) *Monitor {
	return &Monitor{
		pinger:   pinger,
		period:   period,
		onChange: onChange,
		status:   NetworkGood,
		stop:     make(chan struct{}),
	}
}

// Start begins probing. Run it in its own goroutine.
func (m *Monitor) Start() {
	ticker := time.NewTicker(m.period)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.probe()
		case <-m.stop:
			return
		}
	}
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stop) })
}

// Status returns the last observed state.
func (m *Monitor) Status() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Monitor) probe() {
	ctx, cancel := context.WithTimeout(context.Background(), m.period)
	defer cancel()

	status := NetworkGood
	if err := m.pinger.Ping(ctx); err != nil {
		status = NetworkOffline
	}

	m.mu.Lock()
	changed := status != m.status
	m.status = status
	m.mu.Unlock()

	if changed {
		logger.Log.Info("connectivity changed", "status", status)
		if m.onChange != nil {
			m.onChange(status)
		}
	}
}

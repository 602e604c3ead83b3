package mqtt

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/muhirwa45/E-moto/core/delivery"
	coremqtt "github.com/muhirwa45/E-moto/core/mqtt"
)

// Client mirrors the core mqtt.Client interface.
type Client = coremqtt.Client

// MockPublisher is an in-memory station used in tests and offline demos.
// Stations listed in Reject decline orders; stations in FailIDs can't be
// reached.
type MockPublisher struct {
	Orders  []delivery.Order
	FailIDs map[int]bool
	Reject  map[int]bool
	// Silent stations never answer, so waits end on timeout or ctx.
	Silent map[int]bool

	mu      sync.Mutex
	pending map[string]int
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		FailIDs: make(map[int]bool),
		Reject:  make(map[int]bool),
		Silent:  make(map[int]bool),
		pending: make(map[string]int),
	}
}

// SendOrder records the order or returns an error if configured to fail.
func (m *MockPublisher) SendOrder(_ context.Context, o delivery.Order) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIDs[o.StationID] {
		return "", fmt.Errorf("publish failed")
	}
	m.Orders = append(m.Orders, o)
	id := fmt.Sprintf("cmd-%d-%d", o.StationID, len(m.Orders))
	m.pending[id] = o.StationID
	return id, nil
}

// WaitForAck answers immediately unless the station is silent.
func (m *MockPublisher) WaitForAck(ctx context.Context, commandID string, timeout time.Duration) (bool, error) {
	m.mu.Lock()
	stationID, ok := m.pending[commandID]
	delete(m.pending, commandID)
	silent, reject := m.Silent[stationID], m.Reject[stationID]
	m.mu.Unlock()
	if !ok {
		return false, fmt.Errorf("unknown command %s", commandID)
	}
	if silent {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		select {
		case <-timer.C:
			return false, coremqtt.ErrAckTimeout
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	if reject {
		return false, coremqtt.ErrOrderRejected
	}
	return true, nil
}

// Sent returns a copy of the recorded orders.
func (m *MockPublisher) Sent() []delivery.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]delivery.Order(nil), m.Orders...)
}

var _ Client = (*MockPublisher)(nil)

package services

import (
	"github.com/stretchr/testify/mock"
)

// mockBroadcaster is a mock for websocket.Broadcaster
type mockBroadcaster struct {
	mock.Mock
}

func (m *mockBroadcaster) Broadcast(messageType string, data interface{}) {
	m.Called(messageType, data)
}

func (m *mockBroadcaster) ClientCount() int {
	args := m.Called()
	return args.Int(0)
}

// mockPartitioner is a mock for analytics.Partitioner
type mockPartitioner struct {
	mock.Mock
}

func (m *mockPartitioner) Partition(points [][]float64, k int, seed uint64) ([]int, error) {
	args := m.Called(points, k, seed)
	labels, _ := args.Get(0).([]int)
	return labels, args.Error(1)
}

package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueDuelImport(source string, data []byte) error {
	args := m.Called(source, data)
	return args.Error(0)
}

func (m *MockJobQueue) EnqueueSheetImport(sheetURL string) error {
	args := m.Called(sheetURL)
	return args.Error(0)
}

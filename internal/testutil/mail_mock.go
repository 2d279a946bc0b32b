package testutil

import (
	"context"
	"sync"

	"github.com/ndewijer/stock-portfolio-tracker/internal/mail"
)

// MockMailer records messages instead of sending them.
type MockMailer struct {
	mu   sync.Mutex
	sent []mail.Message
}

func NewMockMailer() *MockMailer {
	return &MockMailer{}
}

func (m *MockMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *MockMailer) Sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.sent...)
}

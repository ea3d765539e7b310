package emailsvc

import (
	"sync"

	"github.com/dams-project/backend/core"
)

// MockService captures rendered messages synchronously for assertions.
type MockService struct {
	mu       sync.Mutex
	messages []core.EmailMessage
}

var _ core.EmailService = (*MockService)(nil)

func NewMockService() *MockService {
	return &MockService{}
}

func (svc *MockService) SendMessages(messages ...*core.EmailMessage) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	for _, msg := range messages {
		_ = msg.Render()
		if msg.HasRecipients() {
			svc.messages = append(svc.messages, *msg)
		}
	}
}

// SentMessages returns a copy of everything captured so far.
func (svc *MockService) SentMessages() []core.EmailMessage {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	msgs := make([]core.EmailMessage, len(svc.messages))
	copy(msgs, svc.messages)
	return msgs
}

// Reset clears the captured messages.
func (svc *MockService) Reset() {
	svc.mu.Lock()
	defer svc.mu.Unlock()
	svc.messages = nil
}

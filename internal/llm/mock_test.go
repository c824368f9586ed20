package llm

import (
	"context"
)

type MockClient struct {
	Response      string
	ResponseQueue []string
	Err           error
	Calls         int
}

func (m *MockClient) Generate(ctx context.Context, prompt string) (string, error) {
	m.Calls++
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.ResponseQueue) > 0 {
		resp := m.ResponseQueue[0]
		m.ResponseQueue = m.ResponseQueue[1:]
		return resp, nil
	}
	return m.Response, nil
}

// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/poiesic/lorekeeper/ai"
)

// ErrNoResponse is returned when a scripted mock runs out of responses.
var ErrNoResponse = errors.New("mock model: no scripted response left")

// Reply is one scripted outcome: a completion text or an error.
type Reply struct {
	Text string
	Err  error
}

// MockModel is a test double for ai.Model.
// It plays back scripted replies in order, or delegates to InvokeFunc.
type MockModel struct {
	// InvokeFunc is called by Invoke if set.
	// If nil, the next scripted reply is returned.
	InvokeFunc func(ctx context.Context, messages []ai.Message, opts ai.InvokeOptions) (string, error)

	mu        sync.Mutex
	replies   []Reply
	next      int
	calls     [][]ai.Message
	callCount int
}

// NewMockModel creates a mock model that answers with responses in order.
// Note: Returns concrete type to allow test assertions.
func NewMockModel(responses ...string) *MockModel {
	m := &MockModel{}
	for _, r := range responses {
		m.replies = append(m.replies, Reply{Text: r})
	}
	return m
}

// NewScriptedModel creates a mock model that plays back replies, including
// failures, in order.
func NewScriptedModel(replies ...Reply) *MockModel {
	return &MockModel{replies: replies}
}

// Invoke records the call and returns the next scripted reply.
// When a stream sink is supplied, the reply text is delivered to it first.
func (m *MockModel) Invoke(ctx context.Context, messages []ai.Message, opts ...ai.InvokeOption) (string, error) {
	m.mu.Lock()
	m.callCount++
	m.calls = append(m.calls, append([]ai.Message(nil), messages...))
	fn := m.InvokeFunc
	m.mu.Unlock()

	o := ai.ApplyInvokeOptions(opts...)
	if fn != nil {
		return fn(ctx, messages, o)
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	if m.next >= len(m.replies) {
		m.mu.Unlock()
		return "", ErrNoResponse
	}
	reply := m.replies[m.next]
	m.next++
	m.mu.Unlock()

	if reply.Err != nil {
		return "", reply.Err
	}
	if o.Stream != nil {
		if err := o.Stream(ctx, reply.Text); err != nil {
			return "", err
		}
	}
	return reply.Text, nil
}

// AddResponse appends a successful reply to the script.
func (m *MockModel) AddResponse(text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, Reply{Text: text})
}

// AddError appends a failing reply to the script.
func (m *MockModel) AddError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, Reply{Err: err})
}

// CallCount returns the number of times Invoke was called.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// Calls returns a copy of the messages passed to each Invoke call.
func (m *MockModel) Calls() [][]ai.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]ai.Message, len(m.calls))
	copy(out, m.calls)
	return out
}

// Reset clears the call history, the script position and the custom function.
func (m *MockModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount = 0
	m.calls = nil
	m.next = 0
	m.InvokeFunc = nil
}

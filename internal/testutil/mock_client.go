//go:build !production

package testutil

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/YUVAUV7/set-card-pass/internal/protocol"
)

// MockClient 实现 types.ClientInterface 的 mock
type MockClient struct {
	mock.Mock
}

func (m *MockClient) GetID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetName() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) GetRoom() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClient) SetRoom(roomCode string) {
	m.Called(roomCode)
}

func (m *MockClient) SendMessage(msg *protocol.Message) {
	m.Called(msg)
}

func (m *MockClient) Close() {
	m.Called()
}

// NewSimpleClient 创建 SimpleClient
func NewSimpleClient(id, name string) *SimpleClient {
	return &SimpleClient{ID: id, Name: name}
}

// SimpleClient 简单的 mock 客户端，不使用 testify（用于不需要断言的测试）
// 收件箱加锁，允许多个协程并发广播
type SimpleClient struct {
	ID       string
	Name     string
	RoomCode string
	Messages []*protocol.Message

	mu sync.Mutex
}

func (m *SimpleClient) GetID() string       { return m.ID }
func (m *SimpleClient) GetName() string     { return m.Name }
func (m *SimpleClient) GetRoom() string     { return m.RoomCode }
func (m *SimpleClient) SetRoom(code string) { m.RoomCode = code }
func (m *SimpleClient) Close()              {}

func (m *SimpleClient) SendMessage(msg *protocol.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Messages = append(m.Messages, msg)
}

// AdoptIdentity 与服务器客户端相同的重连身份恢复钩子
func (m *SimpleClient) AdoptIdentity(id, name string) {
	m.ID = id
	m.Name = name
}

// MessagesOfType 返回收到的指定类型消息
func (m *SimpleClient) MessagesOfType(msgType protocol.MessageType) []*protocol.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*protocol.Message
	for _, msg := range m.Messages {
		if msg.Type == msgType {
			out = append(out, msg)
		}
	}
	return out
}

package http11

import (
	"io"
	"net"
	"strings"
	"sync"
	"time"
)

// mockConn implements net.Conn over an in-memory script: reads drain
// a fixed request stream, writes accumulate for inspection.
type mockConn struct {
	readData  *strings.Reader
	writeData *strings.Builder
	closed    bool
	mu        sync.Mutex
}

func newMockConn(data string) *mockConn {
	return &mockConn{
		readData:  strings.NewReader(data),
		writeData: &strings.Builder{},
	}
}

func (m *mockConn) Read(b []byte) (int, error) {
	return m.readData.Read(b)
}

func (m *mockConn) Write(b []byte) (int, error) {
	return m.writeData.Write(b)
}

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockConn) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 8080}
}

func (m *mockConn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 12345}
}

func (m *mockConn) SetDeadline(t time.Time) error      { return nil }
func (m *mockConn) SetReadDeadline(t time.Time) error  { return nil }
func (m *mockConn) SetWriteDeadline(t time.Time) error { return nil }

func (m *mockConn) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *mockConn) GetWritten() string {
	return m.writeData.String()
}

// parseOne drives a fresh parser over raw until it yields a request or
// a terminal error, filling the stream buffer as the parser asks.
func parseOne(raw string) (*Request, error) {
	sb := NewStreamBuffer(DefaultBufferSize)
	p := NewParser(DefaultLimits())
	r := strings.NewReader(raw)
	for {
		req, err := p.Next(sb)
		if err == nil {
			return req, nil
		}
		if err != ErrIncomplete {
			return nil, err
		}
		if _, ferr := sb.Fill(r); ferr != nil {
			if ferr == io.EOF {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, ferr
		}
	}
}

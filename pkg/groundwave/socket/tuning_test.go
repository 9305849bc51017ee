package socket

import (
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func tcpPair(t *testing.T) (client, server net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	done := make(chan struct{})
	go func() {
		server, _ = ln.Accept()
		close(done)
	}()
	client, err = net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	<-done
	if server == nil {
		t.Fatal("accept failed")
	}
	t.Cleanup(func() {
		client.Close()
		server.Close()
	})
	return client, server
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.NoDelay {
		t.Error("NoDelay should default on")
	}
	if cfg.RecvBuffer <= 0 || cfg.SendBuffer <= 0 {
		t.Error("buffer sizes should default positive")
	}
}

func TestApply(t *testing.T) {
	_, server := tcpPair(t)
	if err := Apply(server, DefaultConfig()); err != nil {
		t.Errorf("Apply: %v", err)
	}
	// Nil config takes defaults.
	if err := Apply(server, nil); err != nil {
		t.Errorf("Apply(nil cfg): %v", err)
	}
}

func TestApplyNonTCP(t *testing.T) {
	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()
	if err := Apply(c1, DefaultConfig()); err != nil {
		t.Errorf("non-TCP conns must be left untouched, got %v", err)
	}
}

func TestApplyListener(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()
	if err := ApplyListener(ln, DefaultConfig()); err != nil {
		t.Errorf("ApplyListener: %v", err)
	}
}

func TestSendFile(t *testing.T) {
	content := strings.Repeat("sendfile test payload\n", 1000)
	path := filepath.Join(t.TempDir(), "payload")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	client, server := tcpPair(t)

	type result struct {
		data []byte
		err  error
	}
	got := make(chan result, 1)
	go func() {
		data, err := io.ReadAll(client)
		got <- result{data, err}
	}()

	n, err := SendFile(server, f, 0, int64(len(content)))
	if err != nil {
		t.Fatalf("SendFile: %v", err)
	}
	if n != int64(len(content)) {
		t.Errorf("wrote %d bytes, want %d", n, len(content))
	}
	server.Close()

	r := <-got
	if r.err != nil {
		t.Fatalf("read: %v", r.err)
	}
	if string(r.data) != content {
		t.Errorf("received %d bytes, content mismatch", len(r.data))
	}
}

func TestSendFileOffset(t *testing.T) {
	content := "0123456789abcdef"
	path := filepath.Join(t.TempDir(), "payload")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	client, server := tcpPair(t)
	got := make(chan []byte, 1)
	go func() {
		data, _ := io.ReadAll(client)
		got <- data
	}()

	if _, err := SendFile(server, f, 4, 8); err != nil {
		t.Fatalf("SendFile: %v", err)
	}
	server.Close()

	if data := <-got; string(data) != "456789ab" {
		t.Errorf("got %q, want %q", data, "456789ab")
	}
}

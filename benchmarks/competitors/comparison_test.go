// Package competitors benchmarks groundwave's static file serving
// against net/http's FileServer and fasthttp.FS over real sockets.
package competitors

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	"github.com/yourusername/groundwave/pkg/groundwave/server"
)

// webRoot builds a directory with one file of the given size.
func webRoot(b *testing.B, size int) string {
	b.Helper()
	root := b.TempDir()
	content := strings.Repeat("x", size)
	if err := os.WriteFile(filepath.Join(root, "file.txt"), []byte(content), 0o644); err != nil {
		b.Fatal(err)
	}
	return root
}

// groundwaveClient drives raw HTTP/1.1 over one keep-alive connection.
type groundwaveClient struct {
	conn net.Conn
	br   *bufio.Reader
	body []byte
}

func newGroundwaveClient(b *testing.B, addr string) *groundwaveClient {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		b.Fatal(err)
	}
	return &groundwaveClient{conn: conn, br: bufio.NewReader(conn)}
}

func (c *groundwaveClient) get(b *testing.B, target string) {
	if _, err := fmt.Fprintf(c.conn, "GET %s HTTP/1.1\r\nHost: bench\r\n\r\n", target); err != nil {
		b.Fatal(err)
	}
	contentLength := -1
	for {
		line, err := c.br.ReadString('\n')
		if err != nil {
			b.Fatal(err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if v, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			fmt.Sscanf(v, "%d", &contentLength)
		}
	}
	if contentLength < 0 {
		b.Fatal("response missing Content-Length")
	}
	if cap(c.body) < contentLength {
		c.body = make([]byte, contentLength)
	}
	if _, err := io.ReadFull(c.br, c.body[:contentLength]); err != nil {
		b.Fatal(err)
	}
}

func startGroundwave(b *testing.B, root string) string {
	cfg := server.DefaultConfig()
	cfg.Addr = "127.0.0.1:0"
	cfg.WebRoot = root
	srv, err := server.New(cfg)
	if err != nil {
		b.Fatal(err)
	}
	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		b.Fatal(err)
	}
	go srv.Serve(ln)
	b.Cleanup(func() { srv.Close() })
	return ln.Addr().String()
}

func benchmarkFileGET(b *testing.B, size int) {
	b.Run("groundwave", func(b *testing.B) {
		addr := startGroundwave(b, webRoot(b, size))
		client := newGroundwaveClient(b, addr)
		defer client.conn.Close()

		b.ResetTimer()
		b.ReportAllocs()
		b.SetBytes(int64(size))
		for i := 0; i < b.N; i++ {
			client.get(b, "/file.txt")
		}
	})

	b.Run("net/http", func(b *testing.B) {
		root := webRoot(b, size)
		srv := httptest.NewServer(http.FileServer(http.Dir(root)))
		defer srv.Close()

		client := &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 100,
				DisableCompression:  true,
			},
		}

		b.ResetTimer()
		b.ReportAllocs()
		b.SetBytes(int64(size))
		for i := 0; i < b.N; i++ {
			resp, err := client.Get(srv.URL + "/file.txt")
			if err != nil {
				b.Fatal(err)
			}
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	})

	b.Run("fasthttp", func(b *testing.B) {
		root := webRoot(b, size)
		fs := &fasthttp.FS{Root: root}
		srv := &fasthttp.Server{Handler: fs.NewRequestHandler()}
		ln := fasthttputil.NewInmemoryListener()
		defer ln.Close()
		go srv.Serve(ln)

		client := &fasthttp.Client{
			Dial: func(addr string) (net.Conn, error) {
				return ln.Dial()
			},
		}

		var req fasthttp.Request
		var resp fasthttp.Response
		req.SetRequestURI("http://localhost/file.txt")

		b.ResetTimer()
		b.ReportAllocs()
		b.SetBytes(int64(size))
		for i := 0; i < b.N; i++ {
			if err := client.Do(&req, &resp); err != nil {
				b.Fatal(err)
			}
			resp.Reset()
		}
	})
}

func BenchmarkFileGET1KB(b *testing.B)  { benchmarkFileGET(b, 1<<10) }
func BenchmarkFileGET64KB(b *testing.B) { benchmarkFileGET(b, 64<<10) }
func BenchmarkFileGET1MB(b *testing.B)  { benchmarkFileGET(b, 1<<20) }

func BenchmarkPipelinedGET(b *testing.B) {
	addr := startGroundwave(b, webRoot(b, 512))
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		b.Fatal(err)
	}
	defer conn.Close()
	br := bufio.NewReader(conn)

	const batch = 16
	request := strings.Repeat("GET /file.txt HTTP/1.1\r\nHost: bench\r\n\r\n", batch)
	body := make([]byte, 512)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := conn.Write([]byte(request)); err != nil {
			b.Fatal(err)
		}
		for j := 0; j < batch; j++ {
			for {
				line, err := br.ReadString('\n')
				if err != nil {
					b.Fatal(err)
				}
				if line == "\r\n" {
					break
				}
			}
			if _, err := io.ReadFull(br, body); err != nil {
				b.Fatal(err)
			}
		}
	}
}

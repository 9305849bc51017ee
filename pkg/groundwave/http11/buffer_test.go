package http11

import (
	"strings"
	"testing"
)

func TestStreamBufferTakeLine(t *testing.T) {
	sb := NewStreamBuffer(64)
	sb.Fill(strings.NewReader("GET / HTTP/1.1\r\nHost: a\r\n"))

	line, ok, tooLong := sb.TakeLine(100)
	if !ok || tooLong {
		t.Fatalf("expected complete line, ok=%v tooLong=%v", ok, tooLong)
	}
	if string(line) != "GET / HTTP/1.1" {
		t.Errorf("line = %q", line)
	}

	line, ok, _ = sb.TakeLine(100)
	if !ok || string(line) != "Host: a" {
		t.Errorf("second line = %q ok=%v", line, ok)
	}

	_, ok, _ = sb.TakeLine(100)
	if ok {
		t.Error("expected no line on empty buffer")
	}
}

func TestStreamBufferTakeLineIncomplete(t *testing.T) {
	sb := NewStreamBuffer(64)
	r := strings.NewReader("GET / HT")
	sb.Fill(r)

	if _, ok, _ := sb.TakeLine(100); ok {
		t.Fatal("line without CRLF should not be consumable")
	}
	if sb.Buffered() != 8 {
		t.Errorf("partial bytes must stay buffered, got %d", sb.Buffered())
	}

	// Arrival of the rest completes the line without re-feeding the
	// earlier bytes.
	sb.Fill(strings.NewReader("TP/1.1\r\n"))
	line, ok, _ := sb.TakeLine(100)
	if !ok || string(line) != "GET / HTTP/1.1" {
		t.Errorf("line = %q ok=%v", line, ok)
	}
}

func TestStreamBufferTakeLineTooLong(t *testing.T) {
	sb := NewStreamBuffer(64)
	sb.Fill(strings.NewReader(strings.Repeat("a", 50) + "\r\n"))

	if _, _, tooLong := sb.TakeLine(10); !tooLong {
		t.Error("expected tooLong for oversize line")
	}

	// The limit also trips before any CRLF arrives, so an attacker
	// cannot stall the check by never sending one.
	sb2 := NewStreamBuffer(64)
	sb2.Fill(strings.NewReader(strings.Repeat("a", 50)))
	if _, _, tooLong := sb2.TakeLine(10); !tooLong {
		t.Error("expected tooLong without terminator")
	}
}

func TestStreamBufferBareLFIsNotTerminator(t *testing.T) {
	sb := NewStreamBuffer(64)
	sb.Fill(strings.NewReader("GET / HTTP/1.1\nHost: a\r\n"))

	line, ok, _ := sb.TakeLine(100)
	if !ok {
		t.Fatal("expected a line, CRLF exists later in stream")
	}
	if string(line) != "GET / HTTP/1.1\nHost: a" {
		t.Errorf("bare LF must not split the line, got %q", line)
	}
}

func TestStreamBufferTakeExact(t *testing.T) {
	sb := NewStreamBuffer(64)
	sb.Fill(strings.NewReader("hello world"))

	body, ok := sb.TakeExact(5)
	if !ok || string(body) != "hello" {
		t.Fatalf("TakeExact(5) = %q, %v", body, ok)
	}
	if _, ok := sb.TakeExact(100); ok {
		t.Error("TakeExact beyond buffered bytes should fail")
	}
	rest, ok := sb.TakeExact(6)
	if !ok || string(rest) != " world" {
		t.Errorf("remaining = %q", rest)
	}
}

func TestStreamBufferGrowsUnderFill(t *testing.T) {
	sb := NewStreamBuffer(16)
	big := strings.Repeat("x", 1000) + "\r\n"
	r := strings.NewReader(big)
	for sb.Buffered() < len(big) {
		if _, err := sb.Fill(r); err != nil {
			t.Fatalf("Fill: %v", err)
		}
	}
	line, ok, _ := sb.TakeLine(2000)
	if !ok || len(line) != 1000 {
		t.Errorf("grown buffer lost data: ok=%v len=%d", ok, len(line))
	}
}

func TestStreamBufferCompact(t *testing.T) {
	sb := NewStreamBuffer(64)
	sb.Fill(strings.NewReader("first\r\nsecond\r\n"))
	sb.TakeLine(100)

	sb.Compact()
	line, ok, _ := sb.TakeLine(100)
	if !ok || string(line) != "second" {
		t.Errorf("pending bytes lost across Compact: %q ok=%v", line, ok)
	}
}

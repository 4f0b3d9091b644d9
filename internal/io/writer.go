// Package io provides writers for streaming build output to a terminal.
package io

import (
	"bufio"
	"bytes"
	"io"
	"sync"
)

// FlushingWriter wraps an io.Writer and flushes after each write. It is safe
// for concurrent use, so the stdout and stderr copiers of a process can share it.
type FlushingWriter struct {
	mu      sync.Mutex
	w       io.Writer
	flusher interface{ Flush() error }
}

// NewFlushingWriter creates a new FlushingWriter. If the writer already supports
// flushing, it uses that directly. Otherwise, it wraps it in a bufio.Writer.
func NewFlushingWriter(w io.Writer) *FlushingWriter {
	fw := &FlushingWriter{w: w}

	if f, ok := w.(interface{ Flush() error }); ok {
		fw.flusher = f
	} else {
		bw := bufio.NewWriter(w)
		fw.w = bw
		fw.flusher = bw
	}

	return fw
}

// Write writes data and immediately flushes to ensure real-time output.
func (fw *FlushingWriter) Write(p []byte) (n int, err error) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	n, err = fw.w.Write(p)
	if err != nil {
		return n, err
	}

	if fw.flusher != nil {
		if flushErr := fw.flusher.Flush(); flushErr != nil {
			return n, flushErr
		}
	}

	return n, nil
}

// Flush explicitly flushes any buffered data.
func (fw *FlushingWriter) Flush() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.flusher != nil {
		return fw.flusher.Flush()
	}
	return nil
}

// LineWriter cuts a raw byte stream into lines, decodes each line to text,
// and writes it with a prefix as a single write to the destination.
type LineWriter struct {
	mu     sync.Mutex
	out    io.Writer
	prefix string
	decode func([]byte) string
	buf    []byte
}

// NewLineWriter returns a LineWriter writing "<prefix><line>\n" to out.
// A nil decode passes bytes through unchanged.
func NewLineWriter(out io.Writer, prefix string, decode func([]byte) string) *LineWriter {
	if decode == nil {
		decode = func(b []byte) string { return string(b) }
	}
	return &LineWriter{out: out, prefix: prefix, decode: decode}
}

// Write buffers p and emits every complete line. It always consumes all of p
// unless the destination fails.
func (lw *LineWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	lw.buf = append(lw.buf, p...)
	for {
		idx := bytes.IndexByte(lw.buf, '\n')
		if idx < 0 {
			break
		}
		line := lw.buf[:idx]
		lw.buf = lw.buf[idx+1:]
		if err := lw.emit(line); err != nil {
			return 0, err
		}
	}

	if len(lw.buf) == 0 {
		lw.buf = nil
	}

	return len(p), nil
}

// Flush writes a trailing line that had no newline.
func (lw *LineWriter) Flush() error {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	if len(lw.buf) == 0 {
		return nil
	}
	line := lw.buf
	lw.buf = nil
	return lw.emit(line)
}

func (lw *LineWriter) emit(line []byte) error {
	line = bytes.TrimSuffix(line, []byte{'\r'})
	_, err := io.WriteString(lw.out, lw.prefix+lw.decode(line)+"\n")
	return err
}

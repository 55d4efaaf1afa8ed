// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package transport

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// DefaultMaxMessageSize bounds a single inbound line.
const DefaultMaxMessageSize = 4 * 1024 * 1024

const readBufferSize = 64 * 1024

// ErrMessageTooLarge is returned by Receive for a line longer than the
// configured limit. The line is discarded and the transport stays usable.
var ErrMessageTooLarge = errors.New("message exceeds maximum size")

type line struct {
	data []byte
	err  error
}

// StdioTransport exchanges newline-delimited JSON-RPC messages over a
// reader/writer pair, normally os.Stdin and os.Stdout. Nothing else may
// write to the writer while the transport is in use.
//
// A single reader goroutine owns the reader for the transport's lifetime,
// so a Receive abandoned through its context does not lose or leak a read.
type StdioTransport struct {
	reader  *bufio.Reader
	maxSize int

	writeMu sync.Mutex
	writer  io.Writer

	lines     chan line
	startOnce sync.Once
	done      chan struct{}
	closeOnce sync.Once
}

// StdioOption configures a StdioTransport.
type StdioOption func(*StdioTransport)

// WithMaxMessageSize sets the inbound line limit, excluding the line
// terminator.
func WithMaxMessageSize(n int) StdioOption {
	return func(t *StdioTransport) {
		if n > 0 {
			t.maxSize = n
		}
	}
}

// NewStdioTransport creates a transport reading from r and writing to w.
func NewStdioTransport(r io.Reader, w io.Writer, opts ...StdioOption) *StdioTransport {
	t := &StdioTransport{
		reader:  bufio.NewReaderSize(r, readBufferSize),
		maxSize: DefaultMaxMessageSize,
		writer:  w,
		lines:   make(chan line, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *StdioTransport) startReader() {
	t.startOnce.Do(func() {
		go func() {
			defer close(t.lines)
			for {
				data, err := t.readLine()
				if err != nil && !errors.Is(err, ErrMessageTooLarge) {
					select {
					case t.lines <- line{err: err}:
					case <-t.done:
					}
					return
				}
				if err == nil {
					data = bytes.TrimRight(data, "\r\n")
					if len(bytes.TrimSpace(data)) == 0 {
						continue
					}
				}
				select {
				case t.lines <- line{data: data, err: err}:
				case <-t.done:
					return
				}
			}
		}()
	})
}

// readLine returns the next line including its terminator. A line longer
// than maxSize is consumed up to its newline and reported as
// ErrMessageTooLarge.
func (t *StdioTransport) readLine() ([]byte, error) {
	var buf []byte
	tooLarge := false
	for {
		chunk, err := t.reader.ReadSlice('\n')
		if !tooLarge {
			buf = append(buf, chunk...)
			if len(bytes.TrimRight(buf, "\r\n")) > t.maxSize {
				tooLarge, buf = true, nil
			}
		}
		switch {
		case err == nil:
			if tooLarge {
				return nil, ErrMessageTooLarge
			}
			return buf, nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if tooLarge {
				return nil, ErrMessageTooLarge
			}
			if len(buf) > 0 {
				return buf, nil
			}
			return nil, io.EOF
		default:
			return nil, err
		}
	}
}

// Send writes message followed by a newline. The message must not itself
// contain a newline.
func (t *StdioTransport) Send(ctx context.Context, message []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-t.done:
		return ErrClosed
	default:
	}
	if bytes.IndexByte(message, '\n') >= 0 {
		return fmt.Errorf("message contains a newline")
	}

	framed := make([]byte, 0, len(message)+1)
	framed = append(framed, message...)
	framed = append(framed, '\n')

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	if _, err := t.writer.Write(framed); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	return nil
}

// Receive returns the next non-blank line with its line terminator removed.
// An oversize line yields an error wrapping ErrMessageTooLarge; the next
// Receive continues with the following line.
func (t *StdioTransport) Receive(ctx context.Context) ([]byte, error) {
	t.startReader()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.done:
		return nil, ErrClosed
	case l, ok := <-t.lines:
		if !ok {
			return nil, io.EOF
		}
		if l.err != nil {
			if errors.Is(l.err, io.EOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("read message: %w", l.err)
		}
		return l.data, nil
	}
}

// Close stops the transport. The underlying reader and writer stay open.
func (t *StdioTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.done)
	})
	return nil
}

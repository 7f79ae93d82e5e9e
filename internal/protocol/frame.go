// internal/protocol/frame.go

// Package protocol implements the wire contract: length-prefixed frames and
// the MessagePack-encoded tagged unions exchanged between client and server.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxFrameSize is the largest accepted payload. A peer announcing more is
// fatal for the connection.
const MaxFrameSize = 256 * 1024

var (
	// ErrEmptyFrame marks a zero-length frame. Recoverable: the reader
	// replies with an error message and keeps the connection.
	ErrEmptyFrame = errors.New("empty frame")

	// ErrOversized marks a frame whose announced length exceeds
	// MaxFrameSize. Fatal: the connection must close because the stream
	// position can no longer be trusted.
	ErrOversized = errors.New("frame exceeds maximum size")

	// ErrMalformed marks a payload that is not a well-formed action.
	// Recoverable.
	ErrMalformed = errors.New("malformed payload")
)

// ReadFrame reads one length-prefixed frame: a u32 big-endian length
// followed by that many payload bytes. I/O errors pass through unwrapped so
// callers can distinguish them from protocol errors.
func ReadFrame(r io.Reader) ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint32(header[:])
	if length == 0 {
		return nil, ErrEmptyFrame
	}
	if length > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrOversized, length)
	}
	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// WriteFrame writes one length-prefixed frame.
func WriteFrame(w io.Writer, payload []byte) error {
	if len(payload) > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrOversized, len(payload))
	}
	var header [4]byte
	binary.BigEndian.PutUint32(header[:], uint32(len(payload)))
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("writing frame header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("writing frame payload: %w", err)
	}
	return nil
}

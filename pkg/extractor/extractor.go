package extractor

import (
	"bytes"
	"errors"
)

// Default markers surrounding the encrypted metadata inside GameAssembly.dll.
var (
	defaultHead = []byte{0x43, 0x00, 0x46, 0x00, 0x47, 0x00, 0x00, 0x00, 0x00, 0x00}
	defaultTail = []byte{0x00, 0x00, 0x00, 0x00}
)

var (
	ErrHeadNotFound = errors.New("head pattern not found")
	ErrTailNotFound = errors.New("tail pattern not found")
)

// ExtractionError reports which marker could not be located.
type ExtractionError struct {
	Kind error // ErrHeadNotFound or ErrTailNotFound
	Size int   // length of the scanned input
}

func (e *ExtractionError) Error() string {
	return "extract: " + e.Kind.Error()
}

func (e *ExtractionError) Unwrap() error {
	return e.Kind
}

// Extractor finds the payload between a head marker and the first tail
// marker that follows it.
type Extractor struct {
	Head []byte
	Tail []byte
}

// New returns an Extractor configured with the default markers.
func New() *Extractor {
	return &Extractor{
		Head: bytes.Clone(defaultHead),
		Tail: bytes.Clone(defaultTail),
	}
}

// Extract returns a copy of the bytes strictly between the end of the head
// marker and the start of the tail marker.
//
// The tail search stops at the first match, so a payload that itself
// contains the tail sequence is cut short.
func (x *Extractor) Extract(raw []byte) ([]byte, error) {
	headPos := bytes.Index(raw, x.Head)
	if headPos < 0 {
		return nil, &ExtractionError{Kind: ErrHeadNotFound, Size: len(raw)}
	}
	start := headPos + len(x.Head)

	tailPos := bytes.Index(raw[start:], x.Tail)
	if tailPos < 0 {
		return nil, &ExtractionError{Kind: ErrTailNotFound, Size: len(raw)}
	}

	return bytes.Clone(raw[start : start+tailPos]), nil
}

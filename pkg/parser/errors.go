package parser

import "fmt"

// OutOfBoundsError is returned when a read of Length bytes at Offset does
// not fit in a buffer of Size bytes. Section is empty for header reads.
type OutOfBoundsError struct {
	Section string
	Offset  int64
	Length  int64
	Size    int
}

func (e *OutOfBoundsError) Error() string {
	msg := fmt.Sprintf("read out of bounds: offset %d + %d > %d", e.Offset, e.Length, e.Size)
	if e.Section != "" {
		return e.Section + ": " + msg
	}
	return msg
}

// SectionOutOfBoundsError is returned when a header-declared byte region
// does not lie inside the buffer.
type SectionOutOfBoundsError struct {
	Section string
	Offset  int32
	Size    int32
	Len     int
}

func (e *SectionOutOfBoundsError) Error() string {
	return fmt.Sprintf("%s section out of bounds: [%d, %d+%d) exceeds %d bytes",
		e.Section, e.Offset, e.Offset, e.Size, e.Len)
}

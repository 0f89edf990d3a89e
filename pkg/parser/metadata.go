package parser

import (
	"bytes"
	"encoding/binary"
	"reflect"
	"strings"
	"unicode/utf8"
)

// Section names used in errors and remainders.
const (
	SectionStrings           = "string"
	SectionStringLiterals    = "string_literal"
	SectionStringLiteralData = "string_literal_data"
	SectionImages            = "images"
	SectionAssemblies        = "assemblies"
	SectionTypeDefinitions   = "type_definitions"
	SectionUsageLists        = "metadata_usage_lists"
	SectionUsagePairs        = "metadata_usage_pairs"
)

// Metadata is a decoded global-metadata.dat. It does not reference the
// buffer it was parsed from.
type Metadata struct {
	Header Header

	// StringLiterals holds the literal text as it was when parsed, one entry
	// per LiteralInfos element. Later edits to the buffer are not reflected.
	StringLiterals  []string
	LiteralInfos    []StringLiteralInfo
	Images          []ImageDefinition
	Assemblies      []AssemblyDefinition
	TypeDefinitions []TypeDefinition
	UsageLists      []MetadataUsageList
	UsagePairs      []MetadataUsagePair

	names []byte
}

// Remainder reports bytes at the end of a record section that do not form a
// whole record. They are ignored by Parse.
type Remainder struct {
	Section string
	Stride  int
	Size    int32
	Extra   int32
}

// Parse decodes data. Any out-of-range read aborts the whole decode; no
// partially populated Metadata is returned with an error.
//
// A header whose sanity field does not match ExpectedSanity is still
// decoded; check Valid.
func Parse(data []byte) (*Metadata, error) {
	md := &Metadata{}
	hv := reflect.ValueOf(&md.Header).Elem()
	if err := newCursor(data, 0).decode(headerLayout, hv); err != nil {
		return nil, err
	}
	h := &md.Header

	names, err := section(data, SectionStrings, h.StringOffset, h.StringSize)
	if err != nil {
		return nil, err
	}
	md.names = bytes.Clone(names)

	md.LiteralInfos, err = readRecords[StringLiteralInfo](data, SectionStringLiterals, stringLiteralLayout, h.StringLiteralOffset, h.StringLiteralSize)
	if err != nil {
		return nil, err
	}

	litData, err := section(data, SectionStringLiteralData, h.StringLiteralDataOffset, h.StringLiteralDataSize)
	if err != nil {
		return nil, err
	}
	md.StringLiterals = make([]string, len(md.LiteralInfos))
	for i, info := range md.LiteralInfos {
		start := uint64(info.Offset)
		end := start + uint64(info.Length)
		if end <= uint64(len(litData)) {
			md.StringLiterals[i] = lossyString(litData[start:end])
		}
	}

	if md.Images, err = readRecords[ImageDefinition](data, SectionImages, imageLayout, h.ImagesOffset, h.ImagesSize); err != nil {
		return nil, err
	}
	if md.Assemblies, err = readRecords[AssemblyDefinition](data, SectionAssemblies, assemblyLayout, h.AssembliesOffset, h.AssembliesSize); err != nil {
		return nil, err
	}
	if md.TypeDefinitions, err = readRecords[TypeDefinition](data, SectionTypeDefinitions, typeDefLayout, h.TypeDefinitionsOffset, h.TypeDefinitionsSize); err != nil {
		return nil, err
	}
	if md.UsageLists, err = readRecords[MetadataUsageList](data, SectionUsageLists, usageListLayout, h.MetadataUsageListsOffset, h.MetadataUsageListsSize); err != nil {
		return nil, err
	}
	if md.UsagePairs, err = readRecords[MetadataUsagePair](data, SectionUsagePairs, usagePairLayout, h.MetadataUsagePairsOffset, h.MetadataUsagePairsSize); err != nil {
		return nil, err
	}
	return md, nil
}

// readRecords decodes size/stride records of type T starting at offset.
// The whole declared region must lie inside data; trailing bytes that do
// not fill a record are dropped.
func readRecords[T any](data []byte, name string, l *layout, offset, size int32) ([]T, error) {
	if offset < 0 || size < 0 || int64(offset)+int64(size) > int64(len(data)) {
		return nil, &OutOfBoundsError{Section: name, Offset: int64(offset), Length: int64(size), Size: len(data)}
	}
	count := int(size) / l.size
	out := make([]T, count)
	c := newCursor(data, int64(offset))
	for i := range out {
		if err := c.decode(l, reflect.ValueOf(&out[i]).Elem()); err != nil {
			if oob, ok := err.(*OutOfBoundsError); ok {
				oob.Section = name
			}
			return nil, err
		}
	}
	return out, nil
}

func section(data []byte, name string, offset, size int32) ([]byte, error) {
	if offset < 0 || size < 0 || int64(offset)+int64(size) > int64(len(data)) {
		return nil, &SectionOutOfBoundsError{Section: name, Offset: offset, Size: size, Len: len(data)}
	}
	return data[int64(offset) : int64(offset)+int64(size)], nil
}

// lossyString converts b to a string, replacing each invalid byte with
// utf8.RuneError.
func lossyString(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	var sb strings.Builder
	sb.Grow(len(b))
	for len(b) > 0 {
		r, n := utf8.DecodeRune(b)
		sb.WriteRune(r)
		b = b[n:]
	}
	return sb.String()
}

// Valid reports whether the header carries the expected sanity value. It
// says nothing about the rest of the file.
func (m *Metadata) Valid() bool {
	return m.Header.Sanity == ExpectedSanity
}

// MagicBytes returns the sanity field in on-disk byte order.
func (m *Metadata) MagicBytes() [4]byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], m.Header.Sanity)
	return b
}

// Name returns the NUL-terminated string at index in the string pool. A
// missing terminator runs to the end of the pool. ok is false when index is
// outside the pool or the bytes are not valid UTF-8.
func (m *Metadata) Name(index int32) (string, bool) {
	if index < 0 || int(index) >= len(m.names) {
		return "", false
	}
	b := m.names[index:]
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	if !utf8.Valid(b) {
		return "", false
	}
	return string(b), true
}

// NamePoolSize returns the size of the string pool in bytes.
func (m *Metadata) NamePoolSize() int {
	return len(m.names)
}

// Remainders lists record sections whose declared size is not a multiple of
// the record stride.
func (m *Metadata) Remainders() []Remainder {
	h := &m.Header
	sections := []struct {
		name string
		l    *layout
		size int32
	}{
		{SectionStringLiterals, stringLiteralLayout, h.StringLiteralSize},
		{SectionImages, imageLayout, h.ImagesSize},
		{SectionAssemblies, assemblyLayout, h.AssembliesSize},
		{SectionTypeDefinitions, typeDefLayout, h.TypeDefinitionsSize},
		{SectionUsageLists, usageListLayout, h.MetadataUsageListsSize},
		{SectionUsagePairs, usagePairLayout, h.MetadataUsagePairsSize},
	}
	var out []Remainder
	for _, s := range sections {
		if extra := s.size % int32(s.l.size); extra != 0 {
			out = append(out, Remainder{Section: s.name, Stride: s.l.size, Size: s.size, Extra: extra})
		}
	}
	return out
}

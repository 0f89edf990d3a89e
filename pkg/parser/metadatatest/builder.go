// Package metadatatest builds synthetic global-metadata.dat buffers for
// tests.
package metadatatest

import (
	"bytes"
	"encoding/binary"

	"meta-lens/pkg/parser"
)

// Builder assembles a metadata file. Sections are laid out after the header
// in a fixed order and the header offsets are filled in by Build.
type Builder struct {
	Version         int32
	Literals        []string
	Images          []parser.ImageDefinition
	Assemblies      []parser.AssemblyDefinition
	TypeDefinitions []parser.TypeDefinition
	UsageLists      []parser.MetadataUsageList
	UsagePairs      []parser.MetadataUsagePair

	// ObfuscateLiterals stores each literal XORed with its length key.
	ObfuscateLiterals bool

	// Edit, when set, may change the header after layout and before encoding.
	Edit func(h *parser.Header)

	names bytes.Buffer
}

// New returns a Builder with a version 24 header.
func New() *Builder {
	return &Builder{Version: 24}
}

// AddName appends s to the string pool and returns its index.
func (b *Builder) AddName(s string) int32 {
	idx := int32(b.names.Len())
	b.names.WriteString(s)
	b.names.WriteByte(0)
	return idx
}

// LiteralKey is the XOR key applied to a literal of length n.
func LiteralKey(n int) byte {
	return byte(n) ^ 0x2E
}

// Build encodes the file. It also returns the header that was written.
func (b *Builder) Build() ([]byte, parser.Header) {
	h := parser.Header{Sanity: parser.ExpectedSanity, Version: b.Version}

	var body bytes.Buffer
	pos := func() int32 { return int32(parser.HeaderSize + body.Len()) }
	put := func(v any) {
		if err := binary.Write(&body, binary.LittleEndian, v); err != nil {
			panic(err)
		}
	}

	var infos []parser.StringLiteralInfo
	var litData bytes.Buffer
	for _, s := range b.Literals {
		infos = append(infos, parser.StringLiteralInfo{Length: uint32(len(s)), Offset: uint32(litData.Len())})
		raw := []byte(s)
		if b.ObfuscateLiterals {
			k := LiteralKey(len(raw))
			for i := range raw {
				raw[i] ^= k
			}
		}
		litData.Write(raw)
	}

	h.StringLiteralOffset = pos()
	put(infos)
	h.StringLiteralSize = pos() - h.StringLiteralOffset

	h.StringLiteralDataOffset = pos()
	body.Write(litData.Bytes())
	h.StringLiteralDataSize = int32(litData.Len())

	h.StringOffset = pos()
	body.Write(b.names.Bytes())
	h.StringSize = int32(b.names.Len())

	h.ImagesOffset = pos()
	put(b.Images)
	h.ImagesSize = pos() - h.ImagesOffset

	h.AssembliesOffset = pos()
	put(b.Assemblies)
	h.AssembliesSize = pos() - h.AssembliesOffset

	h.TypeDefinitionsOffset = pos()
	put(b.TypeDefinitions)
	h.TypeDefinitionsSize = pos() - h.TypeDefinitionsOffset

	h.MetadataUsageListsOffset = pos()
	put(b.UsageLists)
	h.MetadataUsageListsSize = pos() - h.MetadataUsageListsOffset

	h.MetadataUsagePairsOffset = pos()
	put(b.UsagePairs)
	h.MetadataUsagePairsSize = pos() - h.MetadataUsagePairsOffset

	if b.Edit != nil {
		b.Edit(&h)
	}

	var out bytes.Buffer
	if err := binary.Write(&out, binary.LittleEndian, &h); err != nil {
		panic(err)
	}
	out.Write(body.Bytes())
	return out.Bytes(), h
}

package deobfuscator

import (
	"bytes"
	"testing"

	"meta-lens/pkg/parser"
	"meta-lens/pkg/parser/metadatatest"
)

func buildObfuscated(t *testing.T, lits []string) ([]byte, *parser.Metadata) {
	t.Helper()
	b := metadatatest.New()
	b.Literals = lits
	b.ObfuscateLiterals = true
	data, _ := b.Build()
	md, err := parser.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return data, md
}

func TestDeobfuscate_RecoversLiterals(t *testing.T) {
	lits := []string{"Hello, world", "x", "", "UnityEngine.Debug"}
	data, md := buildObfuscated(t, lits)

	res := Deobfuscate(md, data)
	if res.Applied != len(lits) || res.Skipped != 0 {
		t.Fatalf("result %+v", res)
	}

	dec, err := parser.Parse(data)
	if err != nil {
		t.Fatalf("Parse after deobfuscation: %v", err)
	}
	for i, s := range lits {
		if dec.StringLiterals[i] != s {
			t.Fatalf("literal %d = %q, want %q", i, dec.StringLiterals[i], s)
		}
	}
}

func TestDeobfuscate_KeyDerivesFromLength(t *testing.T) {
	// A 300-byte literal uses the low byte of its length.
	lit := string(bytes.Repeat([]byte{'A'}, 300))
	data, md := buildObfuscated(t, []string{lit})

	base := int(md.Header.StringLiteralDataOffset)
	if want := byte('A') ^ byte(300&0xff) ^ LiteralXORKey; data[base] != want {
		t.Fatalf("stored byte %#x, want %#x", data[base], want)
	}
	Deobfuscate(md, data)
	if data[base] != 'A' || data[base+299] != 'A' {
		t.Fatalf("not recovered: %#x", data[base])
	}
}

func TestDeobfuscate_SelfInverse(t *testing.T) {
	data, md := buildObfuscated(t, []string{"alpha", "beta", "gamma"})
	orig := bytes.Clone(data)

	Deobfuscate(md, data)
	if bytes.Equal(data, orig) {
		t.Fatalf("first pass changed nothing")
	}
	Deobfuscate(md, data)
	if !bytes.Equal(data, orig) {
		t.Fatalf("double application did not restore the buffer")
	}
}

func TestDeobfuscate_OnlyTouchesLiteralRanges(t *testing.T) {
	data, md := buildObfuscated(t, []string{"abc", "def"})
	orig := bytes.Clone(data)
	Deobfuscate(md, data)

	lo := int(md.Header.StringLiteralDataOffset)
	hi := lo + int(md.Header.StringLiteralDataSize)
	if !bytes.Equal(data[:lo], orig[:lo]) || !bytes.Equal(data[hi:], orig[hi:]) {
		t.Fatalf("bytes outside the literal data section changed")
	}
}

func TestDeobfuscate_SkipsOutOfRange(t *testing.T) {
	data, md := buildObfuscated(t, []string{"keep", "gone", "also"})
	md.LiteralInfos[1].Offset = uint32(len(data))
	md.LiteralInfos = append(md.LiteralInfos, parser.StringLiteralInfo{Length: 0xffffffff, Offset: 0})

	res := Deobfuscate(md, data)
	if res.Applied != 2 || res.Skipped != 2 {
		t.Fatalf("result %+v", res)
	}
	base := int(md.Header.StringLiteralDataOffset)
	if string(data[base:base+4]) != "keep" || string(data[base+8:base+12]) != "also" {
		t.Fatalf("in-range literals not processed: %q", data[base:base+12])
	}
}

func TestDeobfuscate_NegativeBaseSkipped(t *testing.T) {
	data, md := buildObfuscated(t, []string{"abc"})
	orig := bytes.Clone(data)
	md.Header.StringLiteralDataOffset = -100

	res := Deobfuscate(md, data)
	if res.Skipped != 1 || !bytes.Equal(data, orig) {
		t.Fatalf("negative base not skipped: %+v", res)
	}
}

func TestDeobfuscate_ParsedLiteralsUnchanged(t *testing.T) {
	data, md := buildObfuscated(t, []string{"secret"})
	before := md.StringLiterals[0]
	Deobfuscate(md, data)
	if md.StringLiterals[0] != before {
		t.Fatalf("materialized literal changed: %q -> %q", before, md.StringLiterals[0])
	}
	if before == "secret" {
		t.Fatalf("fixture literal was not obfuscated")
	}
}

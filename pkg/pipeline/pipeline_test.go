package pipeline

import (
	"bytes"
	"errors"
	"testing"

	"meta-lens/pkg/extractor"
	"meta-lens/pkg/parser"
	"meta-lens/pkg/parser/metadatatest"
	"meta-lens/pkg/xxtea"
)

// fixture encrypts a metadata file built by b and embeds it in a fake host
// binary.
func fixture(t *testing.T, b *metadatatest.Builder) (raw, plain []byte) {
	t.Helper()
	raw, plain, ok := metadatatest.HostBinary(b, DefaultConfig().Key)
	if !ok {
		t.Fatalf("could not build a collision-free ciphertext")
	}
	return raw, plain
}

func sample() *metadatatest.Builder {
	b := metadatatest.New()
	name := b.AddName("Assembly-CSharp.dll")
	b.Literals = []string{"Hello", "World!"}
	b.ObfuscateLiterals = true
	b.Images = []parser.ImageDefinition{{NameIndex: name, EntryPointIndex: -1}}
	b.TypeDefinitions = make([]parser.TypeDefinition, 3)
	return b
}

func TestRun_EndToEnd(t *testing.T) {
	raw, plain := fixture(t, sample())

	res, err := Run(raw, DefaultConfig(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.ParseErr != nil {
		t.Fatalf("ParseErr: %v", res.ParseErr)
	}
	if !res.Valid() {
		t.Fatalf("expected valid metadata")
	}
	if !bytes.Equal(res.Plaintext[:len(plain)], plain) {
		t.Fatalf("plaintext mismatch")
	}
	if tail := res.Plaintext[len(plain):]; !bytes.Equal(tail, make([]byte, len(tail))) || len(tail) > 3 {
		t.Fatalf("unexpected padding %x", tail)
	}
	if res.CiphertextSize != len(res.Plaintext) {
		t.Fatalf("ciphertext %d bytes, plaintext %d", res.CiphertextSize, len(res.Plaintext))
	}
	if len(res.Metadata.Images) != 1 || len(res.Metadata.TypeDefinitions) != 3 {
		t.Fatalf("records: %d images, %d types", len(res.Metadata.Images), len(res.Metadata.TypeDefinitions))
	}
	if res.Deobfuscated {
		t.Fatalf("deobfuscation ran without DecryptStrings")
	}
}

func TestRun_ExtractThenDecryptBlock(t *testing.T) {
	block := []byte("0123456789abcdef")
	ct := xxtea.Encrypt(block, []byte("E8FF"))
	if !metadatatest.CleanCiphertext(ct) {
		t.Fatalf("fixture ciphertext collides with tail: %x", ct)
	}
	raw := metadatatest.Embed(bytes.Repeat([]byte{0x90}, 33), ct, []byte("rest"))

	got, err := extractor.New().Extract(raw)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if pt := xxtea.Decrypt(got, DefaultConfig().Key); !bytes.Equal(pt, block) {
		t.Fatalf("got %x want %x", pt, block)
	}
}

func TestRun_DecryptStrings(t *testing.T) {
	raw, _ := fixture(t, sample())

	res, err := Run(raw, DefaultConfig(), Options{DecryptStrings: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.Deobfuscated || res.Literals.Applied != 2 || res.Literals.Skipped != 0 {
		t.Fatalf("deobfuscation: %+v %v", res.Literals, res.Deobfuscated)
	}
	// Parsed literals were captured before the pass.
	if res.Metadata.StringLiterals[0] == "Hello" {
		t.Fatalf("parsed literal reflects later mutation")
	}

	again, err := parser.Parse(res.Plaintext)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if again.StringLiterals[0] != "Hello" || again.StringLiterals[1] != "World!" {
		t.Fatalf("literals after pass: %q", again.StringLiterals)
	}
}

func TestRun_InvalidMagicSkipsDeobfuscation(t *testing.T) {
	b := sample()
	b.Edit = func(h *parser.Header) { h.Sanity = 0x12345678 }
	raw, plain := fixture(t, b)

	res, err := Run(raw, DefaultConfig(), Options{DecryptStrings: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Metadata == nil || res.Valid() {
		t.Fatalf("expected decoded but invalid metadata")
	}
	if res.Deobfuscated || !bytes.Equal(res.Plaintext[:len(plain)], plain) {
		t.Fatalf("plaintext changed for invalid header")
	}
}

func TestRun_WrongKeyReportsParseError(t *testing.T) {
	raw, _ := fixture(t, sample())
	cfg := DefaultConfig()
	cfg.Key = []byte("not the key")

	res, err := Run(raw, cfg, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Plaintext == nil {
		t.Fatalf("plaintext missing")
	}
	// Garbage offsets almost always fall outside the buffer; when they do
	// not, the magic cannot match.
	if res.ParseErr == nil && res.Valid() {
		t.Fatalf("wrong key produced a valid header")
	}
}

func TestRun_ExtractionErrors(t *testing.T) {
	_, err := Run([]byte("nothing to see"), DefaultConfig(), Options{})
	if !errors.Is(err, extractor.ErrHeadNotFound) {
		t.Fatalf("expected ErrHeadNotFound, got %v", err)
	}
	raw := append(bytes.Clone(extractor.New().Head), 0x01, 0x02, 0x03)
	_, err = Run(raw, DefaultConfig(), Options{})
	if !errors.Is(err, extractor.ErrTailNotFound) {
		t.Fatalf("expected ErrTailNotFound, got %v", err)
	}
}

func TestRun_ShortPayloadParseFails(t *testing.T) {
	raw := metadatatest.Embed(nil, []byte{0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88}, nil)
	res, err := Run(raw, DefaultConfig(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	var oob *parser.OutOfBoundsError
	if !errors.As(res.ParseErr, &oob) {
		t.Fatalf("expected OutOfBoundsError, got %v", res.ParseErr)
	}
	if res.Metadata != nil {
		t.Fatalf("metadata returned with parse error")
	}
}

func TestRun_UnsupportedMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Mode = xxtea.Mode(3)
	if _, err := Run(nil, cfg, Options{}); !errors.Is(err, xxtea.ErrUnsupportedMode) {
		t.Fatalf("expected ErrUnsupportedMode, got %v", err)
	}
}

package metadatatest

import (
	"bytes"

	"meta-lens/pkg/extractor"
	"meta-lens/pkg/xxtea"
)

// Embed wraps payload in the default head and tail markers.
func Embed(prefix, payload, suffix []byte) []byte {
	x := extractor.New()
	var buf bytes.Buffer
	buf.Write(prefix)
	buf.Write(x.Head)
	buf.Write(payload)
	buf.Write(x.Tail)
	buf.Write(suffix)
	return buf.Bytes()
}

// CleanCiphertext reports whether ct survives embedding: the first tail
// match after the head must be the real tail.
func CleanCiphertext(ct []byte) bool {
	tail := extractor.New().Tail
	return bytes.Index(append(bytes.Clone(ct), tail...), tail) == len(ct)
}

// HostBinary encrypts the file built by b under key and embeds it in a fake
// host binary. b.Version is bumped until the ciphertext carries no stray
// tail marker; ok is false if none was found.
func HostBinary(b *Builder, key []byte) (raw, plain []byte, ok bool) {
	first := b.Version
	for v := first; v < first+64; v++ {
		b.Version = v
		plain, _ = b.Build()
		ct := xxtea.Encrypt(plain, key)
		if CleanCiphertext(ct) {
			return Embed([]byte("MZ\x90\x00host-binary-prefix"), ct, []byte("\x01\x02trailing sections")), plain, true
		}
	}
	return nil, nil, false
}

package deobfuscator

import "meta-lens/pkg/parser"

// LiteralXORKey is mixed with the low byte of each literal's length to form
// its per-literal XOR key.
const LiteralXORKey = 0x2E

// Result reports how many literal ranges were transformed and how many were
// skipped because they fell outside the buffer.
type Result struct {
	Applied int
	Skipped int
}

// Deobfuscate XORs every string literal range of buf in place, using the
// descriptors in md. Ranges outside buf are skipped. Applying it twice
// restores the original bytes.
//
// md.StringLiterals is not touched; it keeps the text seen at parse time.
func Deobfuscate(md *parser.Metadata, buf []byte) Result {
	var res Result
	base := int64(md.Header.StringLiteralDataOffset)
	for _, info := range md.LiteralInfos {
		start := base + int64(info.Offset)
		end := start + int64(info.Length)
		if start < 0 || end > int64(len(buf)) {
			res.Skipped++
			continue
		}
		xorRange(buf[start:end], byte(info.Length)^LiteralXORKey)
		res.Applied++
	}
	return res
}

func xorRange(b []byte, key byte) {
	for i := range b {
		b[i] ^= key
	}
}

package analyzer

import (
	"fmt"

	"meta-lens/pkg/parser"
	"meta-lens/pkg/pipeline"
	"meta-lens/pkg/types"
	"meta-lens/pkg/utils"
)

// Warning codes
const (
	WarnParseFailed      = "PARSE_FAILED"
	WarnSanityMismatch   = "SANITY_MISMATCH"
	WarnSectionRemainder = "SECTION_REMAINDER"
	WarnLiteralsSkipped  = "LITERALS_SKIPPED"
	WarnStringsNotRun    = "STRINGS_NOT_DECRYPTED"
)

// GenerateWarnings creates warning array based on the run outcome
func GenerateWarnings(res *pipeline.Result, decryptStrings bool) []types.Warning {
	warnings := make([]types.Warning, 0)

	// PARSE_FAILED: decrypted bytes did not decode; nothing else applies
	if res.ParseErr != nil {
		return append(warnings, types.Warning{Code: WarnParseFailed, Message: res.ParseErr.Error()})
	}
	md := res.Metadata

	// SANITY_MISMATCH: decoded, but the magic is wrong
	if !md.Valid() {
		magic := md.MagicBytes()
		want := [4]byte{0xAF, 0x1B, 0xB1, 0xFA}
		warnings = append(warnings, types.Warning{
			Code:    WarnSanityMismatch,
			Message: fmt.Sprintf("expected %s, got %s", utils.FormatHex(want[:]), utils.FormatHex(magic[:])),
		})
		// STRINGS_NOT_DECRYPTED: requested but gated on a valid header
		if decryptStrings {
			warnings = append(warnings, types.Warning{
				Code:    WarnStringsNotRun,
				Message: "string literals left encrypted: header is not valid",
			})
		}
	}

	// SECTION_REMAINDER: a record section is not a whole number of records
	for _, r := range md.Remainders() {
		warnings = append(warnings, types.Warning{
			Code:    WarnSectionRemainder,
			Message: remainderMessage(r),
		})
	}

	// LITERALS_SKIPPED: descriptors pointing outside the buffer
	if res.Deobfuscated && res.Literals.Skipped > 0 {
		warnings = append(warnings, types.Warning{
			Code:    WarnLiteralsSkipped,
			Message: fmt.Sprintf("%d of %d literals outside the buffer", res.Literals.Skipped, len(md.LiteralInfos)),
		})
	}

	return warnings
}

func remainderMessage(r parser.Remainder) string {
	return fmt.Sprintf("%s: %d bytes is not a multiple of %d (%d ignored)", r.Section, r.Size, r.Stride, r.Extra)
}

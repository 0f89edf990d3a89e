package analyzer

import (
	"encoding/hex"
	"fmt"

	"meta-lens/pkg/parser"
	"meta-lens/pkg/pipeline"
	"meta-lens/pkg/types"
	"meta-lens/pkg/utils"
)

// MaxListedLiterals caps the literals copied into a detailed summary.
const MaxListedLiterals = 64

// Summarize counts the decoded records. With detail set it also resolves
// image and assembly names and lists leading string literals.
func Summarize(md *parser.Metadata, detail bool) *types.MetadataSummary {
	s := &types.MetadataSummary{
		StringLiterals:  len(md.StringLiterals),
		Images:          len(md.Images),
		Assemblies:      len(md.Assemblies),
		TypeDefinitions: len(md.TypeDefinitions),
		UsageLists:      len(md.UsageLists),
		UsagePairs:      len(md.UsagePairs),
		NamePoolBytes:   md.NamePoolSize(),
	}
	if !detail {
		return s
	}

	for _, img := range md.Images {
		name, ok := md.Name(img.NameIndex)
		s.ImageList = append(s.ImageList, types.ImageSummary{
			Name:        name,
			TypeStart:   img.TypeStart,
			TypeCount:   img.TypeCount,
			EntryPoint:  img.EntryPointIndex,
			Token:       fmt.Sprintf("0x%08X", img.Token),
			NameMissing: !ok,
		})
	}

	for _, a := range md.Assemblies {
		name, _ := md.Name(a.Aname.NameIndex)
		culture, _ := md.Name(a.Aname.CultureIndex)
		s.AssemblyList = append(s.AssemblyList, types.AssemblySummary{
			Name:           name,
			Culture:        culture,
			Version:        fmt.Sprintf("%d.%d.%d.%d", a.Aname.Major, a.Aname.Minor, a.Aname.Build, a.Aname.Revision),
			PublicKeyToken: hex.EncodeToString(a.Aname.PublicKeyToken[:]),
			ImageIndex:     a.ImageIndex,
			Token:          fmt.Sprintf("0x%08X", a.Token),
		})
	}

	n := min(len(md.StringLiterals), MaxListedLiterals)
	s.Literals = append([]string(nil), md.StringLiterals[:n]...)
	return s
}

// Report builds the JSON output for a run
func Report(res *pipeline.Result, decryptStrings, detail bool) *types.DecodeOutput {
	out := &types.DecodeOutput{
		OK:             res.ParseErr == nil,
		CiphertextSize: res.CiphertextSize,
		PlaintextSize:  len(res.Plaintext),
		DecryptMillis:  float64(res.DecryptTime.Microseconds()) / 1000,
		Digest:         utils.Digest(res.Plaintext),
		Deobfuscated:   res.Deobfuscated,
		Warnings:       GenerateWarnings(res, decryptStrings),
	}
	if res.ParseErr != nil {
		out.Error = &types.ErrorInfo{Code: "PARSE_ERROR", Message: res.ParseErr.Error()}
		return out
	}

	magic := res.Metadata.MagicBytes()
	out.Valid = res.Metadata.Valid()
	out.Magic = utils.FormatHex(magic[:])
	out.Version = res.Metadata.Header.Version
	out.Metadata = Summarize(res.Metadata, detail)
	return out
}

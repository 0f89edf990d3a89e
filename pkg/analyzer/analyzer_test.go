package analyzer

import (
	"errors"
	"testing"

	"meta-lens/pkg/deobfuscator"
	"meta-lens/pkg/parser"
	"meta-lens/pkg/parser/metadatatest"
	"meta-lens/pkg/pipeline"
)

func parsed(t *testing.T, b *metadatatest.Builder) *parser.Metadata {
	t.Helper()
	data, _ := b.Build()
	md, err := parser.Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return md
}

func builder() *metadatatest.Builder {
	b := metadatatest.New()
	img := b.AddName("mscorlib.dll")
	asm := b.AddName("mscorlib")
	culture := b.AddName("neutral")
	b.Literals = []string{"a", "bb"}
	b.Images = []parser.ImageDefinition{{NameIndex: img, TypeCount: 12, EntryPointIndex: -1, Token: 1}, {NameIndex: 9999}}
	b.Assemblies = []parser.AssemblyDefinition{{
		Token: 0x20000001,
		Aname: parser.AssemblyNameDefinition{
			NameIndex: asm, CultureIndex: culture, Major: 4, Build: 0, Minor: 0, Revision: 0,
			PublicKeyToken: [8]byte{0xb7, 0x7a, 0x5c, 0x56, 0x19, 0x34, 0xe0, 0x89},
		},
	}}
	return b
}

func TestSummarize(t *testing.T) {
	md := parsed(t, builder())

	s := Summarize(md, false)
	if s.Images != 2 || s.Assemblies != 1 || s.StringLiterals != 2 || s.ImageList != nil || s.Literals != nil {
		t.Fatalf("brief summary %+v", s)
	}

	s = Summarize(md, true)
	if len(s.ImageList) != 2 {
		t.Fatalf("image list %+v", s.ImageList)
	}
	if s.ImageList[0].Name != "mscorlib.dll" || s.ImageList[0].NameMissing || s.ImageList[0].Token != "0x00000001" {
		t.Fatalf("image 0 %+v", s.ImageList[0])
	}
	if !s.ImageList[1].NameMissing {
		t.Fatalf("image 1 should have an unresolved name")
	}
	a := s.AssemblyList[0]
	if a.Name != "mscorlib" || a.Culture != "neutral" || a.Version != "4.0.0.0" || a.PublicKeyToken != "b77a5c561934e089" {
		t.Fatalf("assembly %+v", a)
	}
	if len(s.Literals) != 2 || s.Literals[1] != "bb" {
		t.Fatalf("literals %q", s.Literals)
	}
}

func codes(res *pipeline.Result, decryptStrings bool) []string {
	var out []string
	for _, w := range GenerateWarnings(res, decryptStrings) {
		out = append(out, w.Code)
	}
	return out
}

func TestGenerateWarnings(t *testing.T) {
	clean := parsed(t, builder())

	bad := builder()
	bad.Edit = func(h *parser.Header) {
		h.Sanity = 1
		h.ImagesSize = 41
	}
	badMD := parsed(t, bad)

	cases := []struct {
		name string
		res  *pipeline.Result
		ds   bool
		want []string
	}{
		{"clean", &pipeline.Result{Metadata: clean}, false, nil},
		{"parse failure", &pipeline.Result{ParseErr: errors.New("boom")}, true, []string{WarnParseFailed}},
		{"bad header", &pipeline.Result{Metadata: badMD}, false, []string{WarnSanityMismatch, WarnSectionRemainder}},
		{"bad header with strings", &pipeline.Result{Metadata: badMD}, true, []string{WarnSanityMismatch, WarnStringsNotRun, WarnSectionRemainder}},
		{"skipped literals", &pipeline.Result{Metadata: clean, Deobfuscated: true, Literals: deobfuscator.Result{Applied: 1, Skipped: 1}}, true, []string{WarnLiteralsSkipped}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := codes(tc.res, tc.ds)
			if len(got) != len(tc.want) {
				t.Fatalf("codes %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("codes %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestReport(t *testing.T) {
	md := parsed(t, builder())
	out := Report(&pipeline.Result{CiphertextSize: 400, Plaintext: make([]byte, 400), Metadata: md}, false, true)
	if !out.OK || !out.Valid || out.Magic != "AF 1B B1 FA" || out.Version != 24 {
		t.Fatalf("report %+v", out)
	}
	if out.Metadata == nil || out.Metadata.Images != 2 || len(out.Warnings) != 0 || out.Error != nil {
		t.Fatalf("report details %+v", out)
	}
	if len(out.Digest) != 64 {
		t.Fatalf("digest %q", out.Digest)
	}

	out = Report(&pipeline.Result{Plaintext: []byte{1}, ParseErr: errors.New("short")}, false, false)
	if out.OK || out.Error == nil || out.Error.Code != "PARSE_ERROR" || out.Metadata != nil {
		t.Fatalf("failure report %+v", out)
	}
}

// Package pipeline wires extraction, decryption, parsing and literal
// deobfuscation into a single run over one input binary.
package pipeline

import (
	"fmt"
	"time"

	"meta-lens/pkg/deobfuscator"
	"meta-lens/pkg/extractor"
	"meta-lens/pkg/parser"
	"meta-lens/pkg/xxtea"
)

var defaultKey = []byte{'E', '8', 'F', 'F'}

// Config holds the fixed parameters of a run.
type Config struct {
	Extractor *extractor.Extractor
	Key       []byte
	Mode      xxtea.Mode
}

// DefaultConfig returns the markers and key used by GameAssembly.dll builds.
func DefaultConfig() Config {
	return Config{
		Extractor: extractor.New(),
		Key:       xxtea.FixKey(defaultKey),
		Mode:      xxtea.ModeRaw,
	}
}

// Options toggle optional stages.
type Options struct {
	// DecryptStrings runs the literal deobfuscation pass over the plaintext
	// when the header is valid.
	DecryptStrings bool
}

// Result is the outcome of a run. Plaintext is always set once decryption
// has happened, even if parsing failed.
type Result struct {
	CiphertextSize int
	Plaintext      []byte
	DecryptTime    time.Duration

	Metadata *parser.Metadata
	ParseErr error

	Deobfuscated bool
	Literals     deobfuscator.Result
}

// Valid reports whether the plaintext parsed and carries the expected magic.
func (r *Result) Valid() bool {
	return r.Metadata != nil && r.Metadata.Valid()
}

// Run processes raw with cfg. Only extraction and configuration problems are
// returned as errors; a parse failure is reported in Result.ParseErr.
func Run(raw []byte, cfg Config, opts Options) (*Result, error) {
	if cfg.Extractor == nil {
		cfg.Extractor = extractor.New()
	}
	cipher, err := xxtea.New(cfg.Key, cfg.Mode)
	if err != nil {
		return nil, err
	}

	ct, err := cfg.Extractor.Extract(raw)
	if err != nil {
		return nil, err
	}

	res := &Result{CiphertextSize: len(ct)}
	start := time.Now()
	res.Plaintext = cipher.Decrypt(ct)
	res.DecryptTime = time.Since(start)

	md, err := parser.Parse(res.Plaintext)
	if err != nil {
		res.ParseErr = fmt.Errorf("parse metadata: %w", err)
		return res, nil
	}
	res.Metadata = md

	if opts.DecryptStrings && md.Valid() {
		res.Literals = deobfuscator.Deobfuscate(md, res.Plaintext)
		res.Deobfuscated = true
	}
	return res, nil
}

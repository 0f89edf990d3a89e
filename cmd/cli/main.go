package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"meta-lens/pkg/analyzer"
	"meta-lens/pkg/pipeline"
	"meta-lens/pkg/types"
	"meta-lens/pkg/utils"

	"github.com/apex/log"
	"github.com/apex/log/handlers/cli"
	"github.com/pierrec/lz4/v4"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	defaultInput  = "GameAssembly.dll"
	defaultOutput = "global-metadata.dat"
)

func main() {
	log.SetHandler(cli.New(os.Stderr))
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("metalens")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "meta-lens [INPUT] [OUTPUT]",
		Short:         "Extract and decrypt global-metadata.dat embedded in GameAssembly.dll",
		Args:          cobra.MaximumNArgs(2),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, output := defaultInput, defaultOutput
			if len(args) > 0 {
				input = args[0]
			}
			if len(args) > 1 {
				output = args[1]
			}
			return run(v, input, output, stdout)
		},
	}

	flags := cmd.Flags()
	flags.BoolP("decrypt-strings", "d", false, "Decrypt string literals")
	flags.BoolP("verbose", "v", false, "Show detailed metadata info")
	flags.Bool("json", false, "Print a JSON report to stdout")
	flags.Bool("lz4", false, "Write the output as an lz4 frame")
	flags.String("key-hex", "", "Override the XXTEA key (hex)")
	for _, name := range []string{"decrypt-strings", "verbose", "json", "lz4", "key-hex"} {
		v.BindPFlag(name, flags.Lookup(name))
	}
	return cmd
}

func run(v *viper.Viper, input, output string, stdout io.Writer) error {
	asJSON := v.GetBool("json")
	fail := func(code string, err error) error {
		if asJSON {
			printError(stdout, code, err.Error())
		}
		log.WithError(err).Error(code)
		return err
	}

	if v.GetBool("verbose") {
		log.SetLevel(log.DebugLevel)
	}

	cfg := pipeline.DefaultConfig()
	if keyHex := v.GetString("key-hex"); keyHex != "" {
		key, err := utils.HexToBytes(keyHex)
		if err != nil {
			return fail("INVALID_KEY", fmt.Errorf("key-hex: %w", err))
		}
		cfg.Key = key
	}

	raw, err := os.ReadFile(input)
	if err != nil {
		return fail("FILE_NOT_FOUND", fmt.Errorf("failed to read input: %w", err))
	}
	log.WithFields(log.Fields{"input": input, "size": utils.FormatSize(len(raw))}).Debug("Read input")

	decryptStrings := v.GetBool("decrypt-strings")
	res, err := pipeline.Run(raw, cfg, pipeline.Options{DecryptStrings: decryptStrings})
	if err != nil {
		return fail("EXTRACTION_FAILED", err)
	}
	log.Infof("Extracted %s of encrypted data from %s", utils.FormatSize(res.CiphertextSize), input)
	log.Infof("Decrypted in %.3fs", res.DecryptTime.Seconds())

	report := analyzer.Report(res, decryptStrings, v.GetBool("verbose"))
	report.Input = input
	report.Output = output
	logReport(res, report)

	if err := writeOutput(output, res.Plaintext, v.GetBool("lz4")); err != nil {
		return fail("IO_ERROR", err)
	}
	log.WithField("size", utils.FormatSize(len(res.Plaintext))).Infof("Saved to %s", output)

	if asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
	return nil
}

func logReport(res *pipeline.Result, report *types.DecodeOutput) {
	switch {
	case res.ParseErr != nil:
		log.WithError(res.ParseErr).Warn("Failed to parse metadata")
	case report.Valid:
		log.WithFields(log.Fields{"magic": report.Magic, "version": report.Version}).Info("Valid global-metadata.dat")
		if m := report.Metadata; m != nil {
			log.WithFields(log.Fields{
				"string_literals":  m.StringLiterals,
				"images":           m.Images,
				"assemblies":       m.Assemblies,
				"type_definitions": m.TypeDefinitions,
				"usage_lists":      m.UsageLists,
				"usage_pairs":      m.UsagePairs,
			}).Debug("Records")
		}
		if res.Deobfuscated {
			log.WithField("literals", res.Literals.Applied).Info("Decrypted string literals")
		}
	default:
		log.WithFields(log.Fields{"expected": "AF 1B B1 FA", "got": report.Magic}).
			Warn("Header magic mismatch; the decrypted data may not be a valid global-metadata.dat")
	}
	for _, w := range report.Warnings {
		log.WithField("code", w.Code).Debug(w.Message)
	}
}

func writeOutput(path string, data []byte, compress bool) error {
	if !compress {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	zw := lz4.NewWriter(f)
	if _, err := zw.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finish lz4 frame: %w", err)
	}
	return f.Close()
}

func printError(w io.Writer, code, message string) {
	type errorOutput struct {
		OK    bool             `json:"ok"`
		Error *types.ErrorInfo `json:"error"`
	}
	errJSON, _ := json.Marshal(errorOutput{
		OK:    false,
		Error: &types.ErrorInfo{Code: code, Message: message},
	})
	fmt.Fprintln(w, string(errJSON))
}

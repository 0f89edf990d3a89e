package utils

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// FormatSize renders a byte count with a binary-unit suffix
func FormatSize(n int) string {
	const (
		kb = 1024.0
		mb = kb * 1024
		gb = mb * 1024
	)
	b := float64(n)
	switch {
	case b >= gb:
		return fmt.Sprintf("%d bytes (%.2f GB)", n, b/gb)
	case b >= mb:
		return fmt.Sprintf("%d bytes (%.2f MB)", n, b/mb)
	case b >= kb:
		return fmt.Sprintf("%d bytes (%.2f KB)", n, b/kb)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// FormatHex renders bytes as space separated upper-case hex pairs
func FormatHex(b []byte) string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = fmt.Sprintf("%02X", c)
	}
	return strings.Join(parts, " ")
}

// HexToBytes converts hex string to bytes with validation
func HexToBytes(hexStr string) ([]byte, error) {
	if len(hexStr)%2 != 0 {
		return nil, errors.New("invalid hex string: odd length")
	}
	return hex.DecodeString(hexStr)
}

// Digest returns the double-SHA256 of data in chainhash display order.
// Used to fingerprint decrypted payloads in reports.
func Digest(data []byte) string {
	return chainhash.DoubleHashH(data).String()
}

// Package xxtea implements the corrected block TEA (XXTEA) transform over
// little-endian 32-bit words.
package xxtea

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	delta   = 0x9E3779B9
	KeySize = 16
)

// Mode selects how the plaintext length is carried in the word stream.
type Mode int

const (
	// ModeRaw packs the data with zero padding and no trailing length word.
	// The output is always a whole number of words.
	ModeRaw Mode = iota
)

func (m Mode) String() string {
	switch m {
	case ModeRaw:
		return "raw"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

var ErrUnsupportedMode = errors.New("xxtea: unsupported mode")

// Cipher holds a normalized key and a packing mode. It is immutable.
type Cipher struct {
	key  [4]uint32
	mode Mode
}

// FixKey returns key normalized to exactly KeySize bytes: shorter keys are
// zero padded on the right, longer keys are truncated.
func FixKey(key []byte) []byte {
	fixed := make([]byte, KeySize)
	copy(fixed, key)
	return fixed
}

// New returns a Cipher for key in the given mode.
func New(key []byte, mode Mode) (*Cipher, error) {
	if mode != ModeRaw {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMode, mode)
	}
	c := &Cipher{mode: mode}
	fixed := FixKey(key)
	for i := range c.key {
		c.key[i] = binary.LittleEndian.Uint32(fixed[i*4:])
	}
	return c, nil
}

// Mode reports the packing mode of c.
func (c *Cipher) Mode() Mode { return c.mode }

// Decrypt reverses the transform over data and returns a new buffer of
// 4*ceil(len(data)/4) bytes. A wrong key still yields a buffer; the output
// is never checked.
func (c *Cipher) Decrypt(data []byte) []byte {
	if len(data) == 0 {
		return []byte{}
	}
	v := toWords(data)
	c.decryptWords(v)
	return toBytes(v)
}

// Encrypt applies the forward transform. Decrypt(Encrypt(b)) yields b
// zero padded to a word boundary.
func (c *Cipher) Encrypt(data []byte) []byte {
	if len(data) == 0 {
		return []byte{}
	}
	v := toWords(data)
	c.encryptWords(v)
	return toBytes(v)
}

// Decrypt is shorthand for New(key, ModeRaw) followed by Decrypt.
func Decrypt(data, key []byte) []byte {
	c, _ := New(key, ModeRaw)
	return c.Decrypt(data)
}

// Encrypt is shorthand for New(key, ModeRaw) followed by Encrypt.
func Encrypt(data, key []byte) []byte {
	c, _ := New(key, ModeRaw)
	return c.Encrypt(data)
}

func mx(sum, y, z uint32, p int, e uint32, k *[4]uint32) uint32 {
	return ((z>>5 ^ y<<2) + (y>>3 ^ z<<4)) ^ ((sum ^ y) + (k[(uint32(p)&3)^e] ^ z))
}

func (c *Cipher) decryptWords(v []uint32) {
	n := len(v) - 1
	if n < 1 {
		return
	}
	q := 6 + 52/(n+1)
	sum := uint32(q) * delta
	y := v[0]
	for sum != 0 {
		e := (sum >> 2) & 3
		for p := n; p > 0; p-- {
			z := v[p-1]
			v[p] -= mx(sum, y, z, p, e, &c.key)
			y = v[p]
		}
		z := v[n]
		v[0] -= mx(sum, y, z, 0, e, &c.key)
		y = v[0]
		sum -= delta
	}
}

func (c *Cipher) encryptWords(v []uint32) {
	n := len(v) - 1
	if n < 1 {
		return
	}
	q := 6 + 52/(n+1)
	var sum uint32
	z := v[n]
	for ; q > 0; q-- {
		sum += delta
		e := (sum >> 2) & 3
		for p := 0; p < n; p++ {
			y := v[p+1]
			v[p] += mx(sum, y, z, p, e, &c.key)
			z = v[p]
		}
		y := v[0]
		v[n] += mx(sum, y, z, n, e, &c.key)
		z = v[n]
	}
}

func toWords(data []byte) []uint32 {
	v := make([]uint32, (len(data)+3)/4)
	for i, b := range data {
		v[i>>2] |= uint32(b) << ((i & 3) << 3)
	}
	return v
}

func toBytes(v []uint32) []byte {
	out := make([]byte, len(v)*4)
	for i, w := range v {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

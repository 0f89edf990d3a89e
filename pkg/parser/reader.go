package parser

import (
	"encoding/binary"
	"fmt"
	"reflect"
)

// cursor is a little-endian reader over a byte slice. Every read is bounds
// checked before any byte is touched.
type cursor struct {
	data []byte
	pos  int64
}

func newCursor(data []byte, pos int64) *cursor {
	return &cursor{data: data, pos: pos}
}

func (c *cursor) ensure(n int) error {
	if c.pos < 0 || c.pos+int64(n) > int64(len(c.data)) {
		return &OutOfBoundsError{Offset: c.pos, Length: int64(n), Size: len(c.data)}
	}
	return nil
}

func (c *cursor) readU16() (uint16, error) {
	if err := c.ensure(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(c.data[c.pos:])
	c.pos += 2
	return v, nil
}

func (c *cursor) readU32() (uint32, error) {
	if err := c.ensure(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.data[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *cursor) readBytes(n int) ([]byte, error) {
	if err := c.ensure(n); err != nil {
		return nil, err
	}
	b := c.data[c.pos : c.pos+int64(n)]
	c.pos += int64(n)
	return b, nil
}

// FieldSpec is one entry of a record layout: name, byte width, signedness.
type FieldSpec struct {
	Name   string
	Width  int
	Signed bool

	index []int
	kind  reflect.Kind
}

// layout is the flattened field table of a fixed-size record. It is derived
// once from the Go struct definition, so the struct is the schema.
type layout struct {
	fields []FieldSpec
	size   int
}

func layoutOf(t reflect.Type) *layout {
	l := &layout{}
	l.add(t, nil, "")
	return l
}

func (l *layout) add(t reflect.Type, prefix []int, namePrefix string) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		index := append(append([]int{}, prefix...), i)
		name := namePrefix + sf.Name

		f := FieldSpec{Name: name, index: index, kind: sf.Type.Kind()}
		switch sf.Type.Kind() {
		case reflect.Struct:
			l.add(sf.Type, index, name+".")
			continue
		case reflect.Int32:
			f.Width, f.Signed = 4, true
		case reflect.Uint32:
			f.Width = 4
		case reflect.Int16:
			f.Width, f.Signed = 2, true
		case reflect.Uint16:
			f.Width = 2
		case reflect.Array:
			if sf.Type.Elem().Kind() != reflect.Uint8 {
				panic(fmt.Sprintf("parser: unsupported array field %s.%s", t.Name(), sf.Name))
			}
			f.Width = sf.Type.Len()
		default:
			panic(fmt.Sprintf("parser: unsupported field %s.%s of kind %s", t.Name(), sf.Name, sf.Type.Kind()))
		}
		l.fields = append(l.fields, f)
		l.size += f.Width
	}
}

// decode fills dst, which must be an addressable struct value of the type
// the layout was built from.
func (c *cursor) decode(l *layout, dst reflect.Value) error {
	for _, f := range l.fields {
		fv := dst.FieldByIndex(f.index)
		switch f.kind {
		case reflect.Int32, reflect.Uint32:
			v, err := c.readU32()
			if err != nil {
				return err
			}
			if f.Signed {
				fv.SetInt(int64(int32(v)))
			} else {
				fv.SetUint(uint64(v))
			}
		case reflect.Int16, reflect.Uint16:
			v, err := c.readU16()
			if err != nil {
				return err
			}
			if f.Signed {
				fv.SetInt(int64(int16(v)))
			} else {
				fv.SetUint(uint64(v))
			}
		case reflect.Array:
			b, err := c.readBytes(f.Width)
			if err != nil {
				return err
			}
			reflect.Copy(fv, reflect.ValueOf(b))
		}
	}
	return nil
}

// Stride returns the encoded size in bytes of the record type of v.
func Stride(v any) int {
	return layoutOf(reflect.TypeOf(v)).size
}

// Fields returns the flattened field table of the record type of v.
func Fields(v any) []FieldSpec {
	return append([]FieldSpec(nil), layoutOf(reflect.TypeOf(v)).fields...)
}

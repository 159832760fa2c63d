package data

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// maxLength bounds declared string, byte and collection lengths so corrupt
// input cannot request huge allocations.
const maxLength = 1 << 28

// Write encodes v to w.
func Write(w io.Writer, v Value) error {
	bw := bufio.NewWriter(w)
	if err := writeValue(bw, v); err != nil {
		return err
	}
	return bw.Flush()
}

func writeValue(w *bufio.Writer, v Value) error {
	if v == nil {
		v = Void{}
	}
	if err := w.WriteByte(byte(v.Type())); err != nil {
		return err
	}
	var buf [8]byte
	switch x := v.(type) {
	case Void:
		return nil
	case Int:
		binary.LittleEndian.PutUint32(buf[:4], uint32(x))
		_, err := w.Write(buf[:4])
		return err
	case Long:
		binary.LittleEndian.PutUint64(buf[:], uint64(x))
		_, err := w.Write(buf[:])
		return err
	case Float:
		binary.LittleEndian.PutUint32(buf[:4], math.Float32bits(float32(x)))
		_, err := w.Write(buf[:4])
		return err
	case Double:
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(float64(x)))
		_, err := w.Write(buf[:])
		return err
	case Bool:
		b := byte(0)
		if x {
			b = 1
		}
		return w.WriteByte(b)
	case String:
		if err := writeLength(w, len(x)); err != nil {
			return err
		}
		_, err := w.WriteString(string(x))
		return err
	case ByteArray:
		if err := writeLength(w, len(x)); err != nil {
			return err
		}
		_, err := w.Write(x)
		return err
	case List:
		if err := writeLength(w, len(x)); err != nil {
			return err
		}
		for _, item := range x {
			if err := writeValue(w, item); err != nil {
				return err
			}
		}
		return nil
	case Dictionary:
		if err := writeLength(w, len(x)); err != nil {
			return err
		}
		for _, k := range x.Keys() {
			if err := writeValue(w, String(k)); err != nil {
				return err
			}
			if err := writeValue(w, x[k]); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("data: cannot encode %T", v)
	}
}

func writeLength(w *bufio.Writer, n int) error {
	if n > maxLength {
		return fmt.Errorf("data: length %d exceeds limit", n)
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(n))
	_, err := w.Write(buf[:])
	return err
}

// Read decodes one value of any type from r. Readers that are not an
// io.ByteReader are buffered and may be read past the value; pass a
// *bufio.Reader or *bytes.Reader to read several values in sequence.
func Read(r io.Reader) (Value, error) {
	return readValue(asByteReader(r))
}

type byteReader interface {
	io.Reader
	io.ByteReader
}

func asByteReader(r io.Reader) byteReader {
	if br, ok := r.(byteReader); ok {
		return br
	}
	return bufio.NewReader(r)
}

func readValue(r byteReader) (Value, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	return readPayload(r, Type(tag))
}

func readPayload(r byteReader, t Type) (Value, error) {
	var buf [8]byte
	switch t {
	case TypeVoid:
		return Void{}, nil
	case TypeInt:
		if _, err := io.ReadFull(r, buf[:4]); err != nil {
			return nil, err
		}
		return Int(int32(binary.LittleEndian.Uint32(buf[:4]))), nil
	case TypeLong:
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		return Long(int64(binary.LittleEndian.Uint64(buf[:]))), nil
	case TypeFloat:
		if _, err := io.ReadFull(r, buf[:4]); err != nil {
			return nil, err
		}
		return Float(math.Float32frombits(binary.LittleEndian.Uint32(buf[:4]))), nil
	case TypeDouble:
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return nil, err
		}
		return Double(math.Float64frombits(binary.LittleEndian.Uint64(buf[:]))), nil
	case TypeBool:
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		return Bool(b != 0), nil
	case TypeString:
		b, err := readBytes(r)
		return String(b), err
	case TypeByteArray:
		b, err := readBytes(r)
		return ByteArray(b), err
	case TypeList:
		n, err := readLength(r)
		if err != nil {
			return nil, err
		}
		list := make(List, 0, min(n, 1024))
		for i := 0; i < n; i++ {
			v, err := readValue(r)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case TypeDictionary:
		n, err := readLength(r)
		if err != nil {
			return nil, err
		}
		dict := make(Dictionary, min(n, 1024))
		for i := 0; i < n; i++ {
			k, err := readTyped(r, TypeString)
			if err != nil {
				return nil, err
			}
			v, err := readValue(r)
			if err != nil {
				return nil, err
			}
			dict[string(k.(String))] = v
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("data: unknown type tag %d", uint8(t))
	}
}

func readLength(r byteReader) (int, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	n := binary.LittleEndian.Uint32(buf[:])
	if n > maxLength {
		return 0, fmt.Errorf("data: length %d exceeds limit", n)
	}
	return int(n), nil
}

func readBytes(r byteReader) ([]byte, error) {
	n, err := readLength(r)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []byte{}, nil
	}
	// The buffer grows with the bytes actually read, so a corrupt length
	// fails at end of input instead of allocating up front.
	var buf bytes.Buffer
	m, err := io.CopyN(&buf, r, int64(n))
	if err != nil {
		if err == io.EOF && m < int64(n) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

// readTyped reads a value and fails with *MismatchError unless its tag is want.
func readTyped(r byteReader, want Type) (Value, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if Type(tag) != want {
		return nil, &MismatchError{Want: want, Got: Type(tag)}
	}
	return readPayload(r, want)
}

// ReadInt reads a value that must be an Int.
func ReadInt(r io.Reader) (int32, error) {
	v, err := readTyped(asByteReader(r), TypeInt)
	if err != nil {
		return 0, err
	}
	return int32(v.(Int)), nil
}

// ReadLong reads a value that must be a Long.
func ReadLong(r io.Reader) (int64, error) {
	v, err := readTyped(asByteReader(r), TypeLong)
	if err != nil {
		return 0, err
	}
	return int64(v.(Long)), nil
}

// ReadFloat reads a value that must be a Float.
func ReadFloat(r io.Reader) (float32, error) {
	v, err := readTyped(asByteReader(r), TypeFloat)
	if err != nil {
		return 0, err
	}
	return float32(v.(Float)), nil
}

// ReadDouble reads a value that must be a Double.
func ReadDouble(r io.Reader) (float64, error) {
	v, err := readTyped(asByteReader(r), TypeDouble)
	if err != nil {
		return 0, err
	}
	return float64(v.(Double)), nil
}

// ReadBool reads a value that must be a Bool.
func ReadBool(r io.Reader) (bool, error) {
	v, err := readTyped(asByteReader(r), TypeBool)
	if err != nil {
		return false, err
	}
	return bool(v.(Bool)), nil
}

// ReadString reads a value that must be a String.
func ReadString(r io.Reader) (string, error) {
	v, err := readTyped(asByteReader(r), TypeString)
	if err != nil {
		return "", err
	}
	return string(v.(String)), nil
}

// ReadBytes reads a value that must be a ByteArray.
func ReadBytes(r io.Reader) ([]byte, error) {
	v, err := readTyped(asByteReader(r), TypeByteArray)
	if err != nil {
		return nil, err
	}
	return []byte(v.(ByteArray)), nil
}

// ReadList reads a value that must be a List.
func ReadList(r io.Reader) (List, error) {
	v, err := readTyped(asByteReader(r), TypeList)
	if err != nil {
		return nil, err
	}
	return v.(List), nil
}

// ReadDictionary reads a value that must be a Dictionary.
func ReadDictionary(r io.Reader) (Dictionary, error) {
	v, err := readTyped(asByteReader(r), TypeDictionary)
	if err != nil {
		return nil, err
	}
	return v.(Dictionary), nil
}

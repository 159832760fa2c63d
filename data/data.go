// Package data is a small typed key-value record format: a closed set of
// primitive values, lists and string-keyed dictionaries, each written as a
// one-byte type tag followed by a little-endian payload.
package data

import (
	"errors"
	"fmt"
	"sort"
)

// Type is the tag written before every value.
type Type uint8

const (
	TypeVoid Type = iota
	TypeInt
	TypeLong
	TypeFloat
	TypeDouble
	TypeBool
	TypeString
	TypeByteArray
	TypeList
	TypeDictionary
)

var typeNames = [...]string{"void", "int", "long", "float", "double", "bool", "string", "bytes", "list", "dictionary"}

func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("type(%d)", uint8(t))
}

// ErrTypeMismatch matches every *MismatchError with errors.Is.
var ErrTypeMismatch = errors.New("data type mismatch")

// ErrMissingKey is returned when a dictionary has no value for a key.
var ErrMissingKey = errors.New("data: missing key")

// MismatchError reports a value whose tag is not the one the reader expected.
type MismatchError struct {
	Want Type
	Got  Type
}

func (e *MismatchError) Error() string { return "data type mismatch" }

func (e *MismatchError) Unwrap() error { return ErrTypeMismatch }

// Value is one record.
type Value interface {
	Type() Type
}

type (
	Void      struct{}
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	Bool      bool
	String    string
	ByteArray []byte
	List      []Value
	// Dictionary keys are written in sorted order.
	Dictionary map[string]Value
)

func (Void) Type() Type       { return TypeVoid }
func (Int) Type() Type        { return TypeInt }
func (Long) Type() Type       { return TypeLong }
func (Float) Type() Type      { return TypeFloat }
func (Double) Type() Type     { return TypeDouble }
func (Bool) Type() Type       { return TypeBool }
func (String) Type() Type     { return TypeString }
func (ByteArray) Type() Type  { return TypeByteArray }
func (List) Type() Type       { return TypeList }
func (Dictionary) Type() Type { return TypeDictionary }

// Keys returns the dictionary's keys, sorted.
func (d Dictionary) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether key is present.
func (d Dictionary) Has(key string) bool {
	_, ok := d[key]
	return ok
}

func lookup[T Value](d Dictionary, key string) (T, error) {
	var zero T
	v, ok := d[key]
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrMissingKey, key)
	}
	t, ok := v.(T)
	if !ok {
		return zero, &MismatchError{Want: zero.Type(), Got: v.Type()}
	}
	return t, nil
}

// GetInt returns the Int stored under key.
func (d Dictionary) GetInt(key string) (int32, error) {
	v, err := lookup[Int](d, key)
	return int32(v), err
}

// GetLong returns the Long stored under key.
func (d Dictionary) GetLong(key string) (int64, error) {
	v, err := lookup[Long](d, key)
	return int64(v), err
}

// GetFloat returns the Float stored under key.
func (d Dictionary) GetFloat(key string) (float32, error) {
	v, err := lookup[Float](d, key)
	return float32(v), err
}

// GetDouble returns the Double stored under key.
func (d Dictionary) GetDouble(key string) (float64, error) {
	v, err := lookup[Double](d, key)
	return float64(v), err
}

// GetBool returns the Bool stored under key.
func (d Dictionary) GetBool(key string) (bool, error) {
	v, err := lookup[Bool](d, key)
	return bool(v), err
}

// GetString returns the String stored under key.
func (d Dictionary) GetString(key string) (string, error) {
	v, err := lookup[String](d, key)
	return string(v), err
}

// GetBytes returns the ByteArray stored under key.
func (d Dictionary) GetBytes(key string) ([]byte, error) {
	v, err := lookup[ByteArray](d, key)
	return []byte(v), err
}

// GetList returns the List stored under key.
func (d Dictionary) GetList(key string) (List, error) {
	return lookup[List](d, key)
}

// GetDictionary returns the Dictionary stored under key.
func (d Dictionary) GetDictionary(key string) (Dictionary, error) {
	return lookup[Dictionary](d, key)
}

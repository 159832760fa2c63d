package data

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, v Value) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, v))
	return buf.Bytes()
}

func TestWriteIntLayout(t *testing.T) {
	b := encode(t, Int(0x01020304))
	assert.Equal(t, []byte{byte(TypeInt), 0x04, 0x03, 0x02, 0x01}, b)
}

func TestWriteStringLayout(t *testing.T) {
	b := encode(t, String("hi"))
	assert.Equal(t, []byte{byte(TypeString), 2, 0, 0, 0, 'h', 'i'}, b)
}

func TestDictionaryRoundTrip(t *testing.T) {
	in := Dictionary{
		"name":   String("box"),
		"x":      Float(1.5),
		"id":     Long(-7),
		"ratio":  Double(0.25),
		"on":     Bool(true),
		"blob":   ByteArray{1, 2, 3},
		"nested": Dictionary{"n": Int(3)},
		"items":  List{Int(1), String("two"), Void{}},
	}
	out, err := Read(bytes.NewReader(encode(t, in)))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestDictionaryKeysSorted(t *testing.T) {
	d := Dictionary{"b": Int(1), "a": Int(2), "c": Int(3)}
	assert.Equal(t, []string{"a", "b", "c"}, d.Keys())
	assert.Equal(t, encode(t, d), encode(t, Dictionary{"c": Int(3), "a": Int(2), "b": Int(1)}))
}

func TestTypedReaderMismatch(t *testing.T) {
	_, err := ReadInt(bytes.NewReader(encode(t, Float(1))))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTypeMismatch))
	assert.EqualError(t, err, "data type mismatch")

	var me *MismatchError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, TypeInt, me.Want)
	assert.Equal(t, TypeFloat, me.Got)
}

func TestSequentialTypedReads(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Int(5)))
	require.NoError(t, Write(&buf, String("five")))
	require.NoError(t, Write(&buf, Bool(true)))
	r := bytes.NewReader(buf.Bytes())

	i, err := ReadInt(r)
	require.NoError(t, err)
	assert.Equal(t, int32(5), i)
	s, err := ReadString(r)
	require.NoError(t, err)
	assert.Equal(t, "five", s)
	b, err := ReadBool(r)
	require.NoError(t, err)
	assert.True(t, b)
}

func TestDictionaryGetters(t *testing.T) {
	d := Dictionary{"x": Float(2), "name": String("n")}

	x, err := d.GetFloat("x")
	require.NoError(t, err)
	assert.Equal(t, float32(2), x)

	_, err = d.GetString("x")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = d.GetInt("missing")
	assert.ErrorIs(t, err, ErrMissingKey)
	assert.True(t, d.Has("name"))
}

func TestReadRejectsUnknownTag(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte{0x7f}))
	assert.Error(t, err)
}

func TestReadTruncated(t *testing.T) {
	b := encode(t, String("hello"))
	_, err := Read(bytes.NewReader(b[:4]))
	assert.Error(t, err)
}

func TestReadRejectsHugeLength(t *testing.T) {
	_, err := Read(bytes.NewReader([]byte{byte(TypeByteArray), 0xff, 0xff, 0xff, 0xff}))
	assert.Error(t, err)
}

func TestReadLargeLengthWithShortPayload(t *testing.T) {
	var b bytes.Buffer
	b.WriteByte(byte(TypeByteArray))
	require.NoError(t, binary.Write(&b, binary.LittleEndian, uint32(maxLength)))
	b.Write([]byte{1, 2, 3})

	_, err := Read(&b)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReadEmptyByteArray(t *testing.T) {
	out, err := Read(bytes.NewReader(encode(t, ByteArray{})))
	require.NoError(t, err)
	assert.Equal(t, ByteArray{}, out)
}

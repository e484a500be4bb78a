package chain

import (
	"io"
	"encoding/binary"
	"fmt"
	"reflect"
	"errors"
	"encoding/hex"
	bytes2 "bytes"
	"time"

	"github.com/simplechain-go/authcore/crypto"
)

type Encoder struct {
	output io.Writer
	Order  binary.ByteOrder
	count  int
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		output: w,
		Order:  binary.LittleEndian,
		count:  0,
	}
}

func (e *Encoder) writeName(name string) error {
	val, err := StringToName(name)
	if err != nil {
		return fmt.Errorf("writeName: %s", err)
	}
	return e.writeUint64(val)
}

func (e *Encoder) Encode(v interface{}) (err error) {
	switch cv := v.(type) {
	case AccountID:
		return e.writeName(string(cv))
	case string:
		return e.writeString(cv)
	case byte:
		return e.writeByte(cv)
	case int8:
		return e.writeByte(byte(cv))
	case int16:
		return e.writeInt16(cv)
	case uint16:
		return e.writeUint16(cv)
	case uint32:
		return e.writeUint32(cv)
	case uint64:
		return e.writeUint64(cv)
	case bool:
		return e.writeBool(cv)
	case []byte:
		return e.writeByteArray(cv)
	case SHA256Type:
		return e.writeSHA256(cv)
	case crypto.PublicKey:
		return e.writePublicKey(cv)
	case crypto.Signature:
		return e.writeSignature(cv)
	case *crypto.PrivateKey:
		return e.writeString(cv.String())
	case time.Time:
		return e.writeTimestamp(cv)
	case Operation:
		if err = e.writeUVarInt(int(cv.Tag())); err != nil {
			return
		}
		return e.encodeStruct(reflect.Indirect(reflect.ValueOf(cv)))
	default:

		rv := reflect.Indirect(reflect.ValueOf(v))
		t := rv.Type()

		switch t.Kind() {

		case reflect.Array:
			l := t.Len()
			for i := 0; i < l; i++ {
				if err = e.Encode(rv.Index(i).Interface()); err != nil {
					return
				}
			}
		case reflect.Slice:
			l := rv.Len()
			if err = e.writeUVarInt(l); err != nil {
				return
			}
			for i := 0; i < l; i++ {
				if err = e.Encode(rv.Index(i).Interface()); err != nil {
					return
				}
			}
		case reflect.Struct:
			if err = e.encodeStruct(rv); err != nil {
				return
			}
		case reflect.Map:
			l := rv.Len()
			if err = e.writeUVarInt(l); err != nil {
				return
			}
			for _, key := range rv.MapKeys() {
				value := rv.MapIndex(key)
				if err = e.Encode(key.Interface()); err != nil {
					return err
				}
				if err = e.Encode(value.Interface()); err != nil {
					return err
				}
			}
		default:
			return errors.New("Encode: unsupported type " + t.String())
		}
	}

	return
}

// encodeStruct writes rv's exported fields in declaration order. Factored
// out of Encode's reflect.Struct case so the Operation tagged-union branch
// can write a variant's body without re-entering the top-level type switch
// (which would just match the Operation interface case again).
func (e *Encoder) encodeStruct(rv reflect.Value) (err error) {
	t := rv.Type()
	l := rv.NumField()
	for i := 0; i < l; i++ {
		field := t.Field(i)
		tag := field.Tag.Get("eos")
		if tag == "-" {
			continue
		}

		if v := rv.Field(i); t.Field(i).Name != "_" {
			if v.CanInterface() {
				isPresent := true
				if tag == "optional" {
					isPresent = !v.IsNil()
					e.writeBool(isPresent)
				}
				if isPresent {
					if err = e.Encode(v.Interface()); err != nil {
						return
					}
				}
			}
		}
	}
	return
}

func (e *Encoder) toWriter(bytes []byte) (err error) {

	e.count += len(bytes)
	println(fmt.Sprintf("    Appending : [%s] pos [%d]", hex.EncodeToString(bytes), e.count))
	_, err = e.output.Write(bytes)
	return
}

func (e *Encoder) writeByteArray(b []byte) error {
	println(fmt.Sprintf("writing byte array of len [%d]", len(b)))
	if err := e.writeUVarInt(len(b)); err != nil {
		return err
	}
	return e.toWriter(b)
}

func (e *Encoder) writeUVarInt(v int) (err error) {
	buf := make([]byte, 8)
	l := binary.PutUvarint(buf, uint64(v))
	return e.toWriter(buf[:l])
}

func (e *Encoder) writeByte(b byte) (err error) {
	return e.toWriter([]byte{b})
}

func (e *Encoder) writeBool(b bool) (err error) {
	var out byte
	if b {
		out = 1
	}
	return e.writeByte(out)
}

func (e *Encoder) writeUint16(i uint16) (err error) {
	buf := make([]byte, TypeSize.UInt16)
	binary.LittleEndian.PutUint16(buf, i)
	return e.toWriter(buf)
}

func (e *Encoder) writeInt16(i int16) (err error) {
	return e.writeUint16(uint16(i))
}

func (e *Encoder) writeUint32(i uint32) (err error) {
	buf := make([]byte, TypeSize.UInt32)
	binary.LittleEndian.PutUint32(buf, i)
	return e.toWriter(buf)

}

func (e *Encoder) writeUint64(i uint64) (err error) {
	buf := make([]byte, TypeSize.UInt64)
	binary.LittleEndian.PutUint64(buf, i)
	return e.toWriter(buf)

}

func (e *Encoder) writeString(s string) (err error) {
	return e.writeByteArray([]byte(s))
}

func (e *Encoder) writeSHA256(sha256 SHA256Type) error {
	return e.toWriter(sha256[:])
}

func (e *Encoder) writePublicKey(publicKey crypto.PublicKey) error {
	if len(publicKey.Content) != 33 {
		return fmt.Errorf("public key should be 33 bytes")
	}
	return e.toWriter(publicKey.Content)
}

func (e *Encoder) writeSignature(sig crypto.Signature) error {
	if len(sig.Content) != 65 {
		return fmt.Errorf("signature should be 65 bytes")
	}

	return e.toWriter(sig.Content) // should write 65 bytes
}

func (e *Encoder) writeTimestamp(t time.Time) error {
	n := uint64(t.UnixNano())
	return e.writeUint64(n)
}

func MarshalBinary(v interface{}) ([]byte, error) {
	buf := new(bytes2.Buffer)
	encoder := NewEncoder(buf)
	err := encoder.Encode(v)
	return buf.Bytes(), err
}

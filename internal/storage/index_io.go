package storage

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/harshithgowdakt/keyprune/internal/compression"
	"github.com/harshithgowdakt/keyprune/internal/types"
)

// WriteVarUInt writes a variable-length unsigned integer (protobuf varint
// encoding).
func WriteVarUInt(w io.Writer, v uint64) error {
	var buf [10]byte
	n := binary.PutUvarint(buf[:], v)
	_, err := w.Write(buf[:n])
	return err
}

// ReadVarUInt reads a variable-length unsigned integer.
func ReadVarUInt(r io.ByteReader) (uint64, error) {
	return binary.ReadUvarint(r)
}

// EncodeValue encodes a single value to binary format. Fixed-size types are
// raw little-endian; strings are VarInt(length) + bytes.
func EncodeValue(w io.Writer, dt types.DataType, v types.Value) error {
	switch dt {
	case types.TypeUInt8:
		return binary.Write(w, binary.LittleEndian, v.(uint8))
	case types.TypeUInt16, types.TypeDate:
		return binary.Write(w, binary.LittleEndian, v.(uint16))
	case types.TypeUInt32, types.TypeDateTime:
		return binary.Write(w, binary.LittleEndian, v.(uint32))
	case types.TypeUInt64:
		return binary.Write(w, binary.LittleEndian, v.(uint64))
	case types.TypeInt8:
		return binary.Write(w, binary.LittleEndian, v.(int8))
	case types.TypeInt16:
		return binary.Write(w, binary.LittleEndian, v.(int16))
	case types.TypeInt32:
		return binary.Write(w, binary.LittleEndian, v.(int32))
	case types.TypeInt64:
		return binary.Write(w, binary.LittleEndian, v.(int64))
	case types.TypeFloat32:
		return binary.Write(w, binary.LittleEndian, v.(float32))
	case types.TypeFloat64:
		return binary.Write(w, binary.LittleEndian, v.(float64))
	case types.TypeString:
		s := v.(string)
		if err := WriteVarUInt(w, uint64(len(s))); err != nil {
			return err
		}
		_, err := w.Write([]byte(s))
		return err
	default:
		return errors.Errorf("unsupported data type for encoding: %s", dt.Name())
	}
}

// DecodeValue decodes a single value written by EncodeValue.
func DecodeValue(r *bytes.Reader, dt types.DataType) (types.Value, error) {
	switch dt {
	case types.TypeUInt8:
		var v uint8
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case types.TypeUInt16, types.TypeDate:
		var v uint16
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case types.TypeUInt32, types.TypeDateTime:
		var v uint32
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case types.TypeUInt64:
		var v uint64
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case types.TypeInt8:
		var v int8
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case types.TypeInt16:
		var v int16
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case types.TypeInt32:
		var v int32
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case types.TypeInt64:
		var v int64
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case types.TypeFloat32:
		var v float32
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case types.TypeFloat64:
		var v float64
		err := binary.Read(r, binary.LittleEndian, &v)
		return v, err
	case types.TypeString:
		length, err := ReadVarUInt(r)
		if err != nil {
			return nil, errors.Wrap(err, "reading string length")
		}
		buf := make([]byte, length)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, errors.Wrap(err, "reading string data")
		}
		return string(buf), nil
	default:
		return nil, errors.Errorf("unsupported data type for decoding: %s", dt.Name())
	}
}

// writeIndexFile compresses payload as a single LZ4 block and writes it.
func writeIndexFile(path string, payload []byte) error {
	block, err := compression.CompressBlock(&compression.LZ4Codec{}, payload)
	if err != nil {
		return errors.Wrapf(err, "compressing index file %s", path)
	}
	return os.WriteFile(path, block, 0644)
}

// readIndexFile reads and decompresses an index file written by
// writeIndexFile. The file must hold exactly one block: a size mismatch
// against the block header means the file was truncated or has trailing
// garbage.
func readIndexFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	compressedTotal, uncompressedSize, err := compression.ReadBlockHeader(data)
	if err != nil {
		return nil, errors.Wrapf(err, "reading index file %s", path)
	}
	if int(compressedTotal) != len(data) {
		return nil, errors.Errorf("index file %s is truncated: block header says %d bytes, file has %d",
			path, compressedTotal, len(data))
	}
	payload, err := compression.DecompressBlock(data)
	if err != nil {
		return nil, errors.Wrapf(err, "decompressing index file %s", path)
	}
	if len(payload) != int(uncompressedSize) {
		return nil, errors.Errorf("index file %s decompressed to %d bytes, block header says %d",
			path, len(payload), uncompressedSize)
	}
	return payload, nil
}

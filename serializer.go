package dbqueue

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"
)

// Serializer converts payload items to and from the storage value column.
//
// Implementations must be pure value transformations: no side effects, and
// failures reported as errors rather than panics. An empty storage value is
// never a valid encoding, so Deserialize must reject it with ErrEmptyValue.
type Serializer[T any] interface {
	// Serialize encodes an item into a storage-native value.
	Serialize(item T) ([]byte, error)
	// Deserialize decodes a storage value back into an item.
	Deserialize(data []byte) (T, error)
}

// JSONSerializer encodes items with encoding/json.
type JSONSerializer[T any] struct{}

// Serialize implements Serializer.
func (JSONSerializer[T]) Serialize(item T) ([]byte, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("dbqueue: json encode: %w", err)
	}

	return data, nil
}

// Deserialize implements Serializer.
func (JSONSerializer[T]) Deserialize(data []byte) (T, error) {
	var item T
	if len(data) == 0 {
		return item, ErrEmptyValue
	}
	if err := json.Unmarshal(data, &item); err != nil {
		return item, fmt.Errorf("dbqueue: json decode: %w", err)
	}

	return item, nil
}

// GobSerializer encodes items with encoding/gob.
type GobSerializer[T any] struct{}

// Serialize implements Serializer.
func (GobSerializer[T]) Serialize(item T) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(item); err != nil {
		return nil, fmt.Errorf("dbqueue: gob encode: %w", err)
	}

	return buf.Bytes(), nil
}

// Deserialize implements Serializer.
func (GobSerializer[T]) Deserialize(data []byte) (T, error) {
	var item T
	if len(data) == 0 {
		return item, ErrEmptyValue
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&item); err != nil {
		return item, fmt.Errorf("dbqueue: gob decode: %w", err)
	}

	return item, nil
}

// BytesSerializer stores raw byte slices as-is. Empty slices are rejected in
// both directions since an empty value cannot round-trip.
type BytesSerializer struct{}

// Serialize implements Serializer.
func (BytesSerializer) Serialize(item []byte) ([]byte, error) {
	if len(item) == 0 {
		return nil, ErrEmptyValue
	}
	out := make([]byte, len(item))
	copy(out, item)

	return out, nil
}

// Deserialize implements Serializer.
func (BytesSerializer) Deserialize(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrEmptyValue
	}
	out := make([]byte, len(data))
	copy(out, data)

	return out, nil
}

// StringSerializer stores strings as UTF-8 bytes. Empty strings are rejected
// in both directions since an empty value cannot round-trip.
type StringSerializer struct{}

// Serialize implements Serializer.
func (StringSerializer) Serialize(item string) ([]byte, error) {
	if item == "" {
		return nil, ErrEmptyValue
	}

	return []byte(item), nil
}

// Deserialize implements Serializer.
func (StringSerializer) Deserialize(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyValue
	}

	return string(data), nil
}

package redis

import (
	"encoding/json"
	"fmt"
)

// Decoder turns a pub/sub payload into a stream value.
type Decoder[T any] func(payload string) (T, error)

// Encoder turns a stream value into a pub/sub payload.
type Encoder[T any] func(v T) (string, error)

// JSONDecoder decodes payloads as JSON into T.
func JSONDecoder[T any]() Decoder[T] {
	return func(payload string) (T, error) {
		var v T
		if err := json.Unmarshal([]byte(payload), &v); err != nil {
			return v, fmt.Errorf("failed to decode payload: %w", err)
		}
		return v, nil
	}
}

// JSONEncoder encodes values as JSON.
func JSONEncoder[T any]() Encoder[T] {
	return func(v T) (string, error) {
		data, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("failed to encode value: %w", err)
		}
		return string(data), nil
	}
}

// StringDecoder passes payloads through unchanged.
func StringDecoder() Decoder[string] {
	return func(payload string) (string, error) {
		return payload, nil
	}
}

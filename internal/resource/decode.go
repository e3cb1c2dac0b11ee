package resource

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

var ErrEmptyDocument = errors.New("empty document")

// Decoder turns file contents into a value.
type Decoder[T any] func(data []byte) (T, error)

// DecodeYAML decodes a single YAML document into T. Unknown fields are
// rejected so typos in hand-edited files surface as reload failures.
func DecodeYAML[T any](data []byte) (T, error) {
	var value T
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&value); err != nil {
		if errors.Is(err, io.EOF) {
			return value, ErrEmptyDocument
		}
		return value, fmt.Errorf("decode yaml: %w", err)
	}
	return value, nil
}

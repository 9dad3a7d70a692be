package shell

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"go.trai.ch/twin/internal/core/domain"
)

// encodeArgs renders the call arguments as a JSON array. A call without
// arguments is sent as an empty array, never null.
func encodeArgs(args []domain.Value) ([]byte, error) {
	if args == nil {
		args = []domain.Value{}
	}
	data, err := json.Marshal(args)
	if err != nil {
		return nil, domain.Tag(domain.ErrArgumentEncodeFailed, err)
	}
	return append(data, '\n'), nil
}

// decodeOutput parses stdout as exactly one JSON document. Integers decode as
// int64 and other numbers as float64 so payloads compare by kind.
func decodeOutput(data []byte) (domain.Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, domain.Annotate(domain.ErrInvalidCommandOutput, "stdout", "empty")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, domain.Tag(domain.ErrInvalidCommandOutput, err)
	}

	var trailing any
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return nil, domain.Annotate(domain.ErrInvalidCommandOutput, "stdout", "trailing data after first document")
	}

	return normalizeNumbers(v), nil
}

func normalizeNumbers(v any) domain.Value {
	switch t := v.(type) {
	case json.Number:
		return numberValue(t)
	case map[string]any:
		for k, child := range t {
			t[k] = normalizeNumbers(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = normalizeNumbers(child)
		}
		return t
	default:
		return t
	}
}

func numberValue(n json.Number) domain.Value {
	if !strings.ContainsAny(n.String(), ".eE") {
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	f, err := n.Float64()
	if err != nil {
		return n.String()
	}
	return f
}

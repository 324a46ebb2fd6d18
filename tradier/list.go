package tradier

import (
	"bytes"
	"fmt"

	"github.com/xhhuango/json"
)

// Shape records which form a list field arrived in. The broker collapses a
// one-element array into a bare object and an empty one into null.
type Shape int

const (
	ShapeNull Shape = iota
	ShapeObject
	ShapeArray
)

func (s Shape) String() string {
	switch s {
	case ShapeNull:
		return "null"
	case ShapeObject:
		return "object"
	case ShapeArray:
		return "array"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// List decodes a field that may be null, a single object or an array.
type List[T any] struct {
	Shape Shape
	Items []T
}

func (l *List[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("tradier: empty list field")
	}

	switch trimmed[0] {
	case 'n':
		if !bytes.Equal(trimmed, []byte("null")) {
			return fmt.Errorf("tradier: unexpected list literal %q", trimmed)
		}
		*l = List[T]{Shape: ShapeNull}
	case '{':
		var item T
		if err := json.Unmarshal(trimmed, &item); err != nil {
			return fmt.Errorf("tradier: decoding single list item: %w", err)
		}
		*l = List[T]{Shape: ShapeObject, Items: []T{item}}
	case '[':
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("tradier: decoding list: %w", err)
		}
		*l = List[T]{Shape: ShapeArray, Items: items}
	default:
		return fmt.Errorf("tradier: list field must be null, an object or an array, got %q", trimmed[:1])
	}
	return nil
}

func (l List[T]) MarshalJSON() ([]byte, error) {
	switch l.Shape {
	case ShapeNull:
		return []byte("null"), nil
	case ShapeObject:
		if len(l.Items) == 1 {
			return json.Marshal(l.Items[0])
		}
	}
	if l.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(l.Items)
}

func DecodeOptionChain(data []byte) (OptionChain, error) {
	var chain OptionChain
	if err := json.Unmarshal(data, &chain); err != nil {
		return OptionChain{}, fmt.Errorf("tradier: decoding option chain: %w", err)
	}
	return chain, nil
}

func DecodeQuoteHistory(data []byte) (QuoteHistory, error) {
	var history QuoteHistory
	if err := json.Unmarshal(data, &history); err != nil {
		return QuoteHistory{}, fmt.Errorf("tradier: decoding quote history: %w", err)
	}
	return history, nil
}

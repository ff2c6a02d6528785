package event

import (
	"encoding/json"
	"fmt"
)

// DecodePayload returns an event payload as T. Events published in process carry
// the payload struct (or a pointer to it). Events replayed from the dead-letter
// file or the history table carry raw or generic JSON and are decoded again.
func DecodePayload[T any](input any) (T, error) {
	var out T
	switch v := input.(type) {
	case T:
		return v, nil
	case *T:
		if v != nil {
			return *v, nil
		}
		return out, fmt.Errorf("%s: nil %T", ErrMsgDecodePayload, input)
	case json.RawMessage:
		return out, unmarshalPayload(v, &out)
	case []byte:
		return out, unmarshalPayload(v, &out)
	case nil:
		return out, fmt.Errorf("%s: empty payload", ErrMsgDecodePayload)
	}

	data, err := json.Marshal(input)
	if err != nil {
		return out, fmt.Errorf("%s: %w", ErrMsgDecodePayload, err)
	}
	return out, unmarshalPayload(data, &out)
}

func unmarshalPayload(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgDecodePayload, err)
	}
	return nil
}

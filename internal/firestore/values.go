package firestore

import (
	"fmt"
	"strconv"
)

// encodeFields converts a plain field map into the store's typed value
// representation. Nil values are dropped rather than encoded; the store
// rejects documents carrying null-valued fields.
func encodeFields(fields map[string]any) (map[string]any, error) {
	encoded := make(map[string]any, len(fields))
	for name, value := range fields {
		if value == nil {
			continue
		}
		v, err := encodeValue(value)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		encoded[name] = v
	}
	return encoded, nil
}

func encodeValue(value any) (map[string]any, error) {
	switch v := value.(type) {
	case string:
		return map[string]any{"stringValue": v}, nil
	case bool:
		return map[string]any{"booleanValue": v}, nil
	case int:
		return map[string]any{"integerValue": strconv.Itoa(v)}, nil
	case int64:
		return map[string]any{"integerValue": strconv.FormatInt(v, 10)}, nil
	case float64:
		return map[string]any{"doubleValue": v}, nil
	case []any:
		values := make([]any, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			encoded, err := encodeValue(item)
			if err != nil {
				return nil, err
			}
			values = append(values, encoded)
		}
		return map[string]any{"arrayValue": map[string]any{"values": values}}, nil
	case map[string]any:
		fields, err := encodeFields(v)
		if err != nil {
			return nil, err
		}
		return map[string]any{"mapValue": map[string]any{"fields": fields}}, nil
	default:
		return nil, fmt.Errorf("unsupported value type %T", value)
	}
}

package stockroom

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// member is one key of a JSON object. With omitZero, the key is left out when
// its value is the zero value of its type.
type member struct {
	key      string
	value    any
	omitZero bool
}

func always(key string, v any) member   { return member{key, v, false} }
func omitZero(key string, v any) member { return member{key, v, true} }

// marshalObject writes the members in order.
func marshalObject(members ...member) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for _, m := range members {
		if m.omitZero {
			if v := reflect.ValueOf(m.value); !v.IsValid() || v.IsZero() {
				continue
			}
		}
		val, err := json.Marshal(m.value)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", m.key, err)
		}
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(m.key)
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

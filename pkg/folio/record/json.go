package record

import (
	"encoding/json"
	"fmt"

	"github.com/cognicore/folio/pkg/folio/internalerr"
)

// jsonValue is the typed envelope a single value is stored in, so that
// integers stay integers and dates stay dates across a round trip.
type jsonValue struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON implements json.Marshaler.
func (a Attributes) MarshalJSON() ([]byte, error) {
	out := make(map[string][]jsonValue, len(a))
	for k, vals := range a {
		enc := make([]jsonValue, 0, len(vals))
		for _, v := range vals {
			jv, err := encodeValue(v)
			if err != nil {
				return nil, internalerr.Field(k, err)
			}
			enc = append(enc, jv)
		}
		out[k] = enc
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	var raw map[string][]jsonValue
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(Attributes, len(raw))
	for k, enc := range raw {
		vals := make([]any, 0, len(enc))
		for _, jv := range enc {
			v, err := decodeValue(jv)
			if err != nil {
				return internalerr.Field(k, err)
			}
			vals = append(vals, v)
		}
		out[k] = vals
	}
	*a = out
	return nil
}

func encodeValue(v any) (jsonValue, error) {
	var (
		typ     string
		payload any
	)
	switch t := v.(type) {
	case string:
		typ, payload = "string", t
	case int64:
		typ, payload = "integer", t
	case int:
		typ, payload = "integer", int64(t)
	case float64:
		typ, payload = "decimal", t
	case bool:
		typ, payload = "boolean", t
	case Date:
		typ, payload = "date", t.String()
	case Compound:
		typ, payload = "compound", t
	default:
		return jsonValue{}, fmt.Errorf("%T: %w", v, internalerr.ErrUnsupportedValue)
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return jsonValue{}, err
	}
	return jsonValue{Type: typ, Value: raw}, nil
}

func decodeValue(jv jsonValue) (any, error) {
	switch jv.Type {
	case "string":
		var s string
		err := json.Unmarshal(jv.Value, &s)
		return s, err
	case "integer":
		var n int64
		err := json.Unmarshal(jv.Value, &n)
		return n, err
	case "decimal":
		var f float64
		err := json.Unmarshal(jv.Value, &f)
		return f, err
	case "boolean":
		var b bool
		err := json.Unmarshal(jv.Value, &b)
		return b, err
	case "date":
		var s string
		if err := json.Unmarshal(jv.Value, &s); err != nil {
			return nil, err
		}
		return ParseDate(s)
	case "compound":
		var c Compound
		err := json.Unmarshal(jv.Value, &c)
		return c, err
	default:
		return nil, fmt.Errorf("value type %q: %w", jv.Type, internalerr.ErrUnsupportedValue)
	}
}

package models

// Payload is the opaque form document supplied by the caller. The engine
// treats it as data and only inspects a small declared subset of fields for
// identity purposes (see the identity package).
type Payload map[string]any

// Section returns the nested object stored under key, or nil if the key is
// absent or holds a value of another type.
func (p Payload) Section(key string) Payload {
	if p == nil {
		return nil
	}

	switch v := p[key].(type) {
	case Payload:
		return v
	case map[string]any:
		return Payload(v)
	default:
		return nil
	}
}

// Text returns the string stored under key, or "" if the key is absent or
// holds a non-string value. No trimming is applied here; callers that need
// normalized values trim themselves.
func (p Payload) Text(key string) string {
	if p == nil {
		return ""
	}

	s, _ := p[key].(string)
	return s
}

// Clone returns a structural deep copy of the payload. Nested maps and slices
// are copied recursively so the result shares no mutable state with the
// original. Scalar values are copied as-is.
func (p Payload) Clone() Payload {
	if p == nil {
		return nil
	}

	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case Payload:
		return val.Clone()
	case map[string]any:
		return map[string]any(Payload(val).Clone())
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return val
	}
}

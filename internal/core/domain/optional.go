package domain

import "encoding/json"

// Optional marks a patch field as present. A present field overwrites the
// stored value even when Value is the zero value, which is how JSON null
// clears a field.
type Optional[T any] struct {
	Set   bool
	Value T
}

func Set[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Value: v}
}

func (o Optional[T]) ApplyTo(dst *T) {
	if o.Set {
		*dst = o.Value
	}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		var zero T
		o.Value = zero
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

package transport

import "encoding/json"

// OptionalBool distinguishes an absent JSON field from an explicit false.
// Set is true only when the field appeared in the payload, including as
// null (which clears Value back to nil).
type OptionalBool struct {
	Value *bool
	Set   bool
}

func (o OptionalBool) IsZero() bool {
	return !o.Set
}

func (o *OptionalBool) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var parsed bool
	if err := json.Unmarshal(data, &parsed); err != nil {
		return err
	}

	o.Value = &parsed
	return nil
}

func (o OptionalBool) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*o.Value)
}

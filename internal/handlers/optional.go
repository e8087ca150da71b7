package handlers

import "encoding/json"

// OptionalString distinguishes an omitted JSON key from an explicit null.
// The zero value means the key was absent. This matters for due dates,
// where null clears the field and absence leaves it alone.
type OptionalString struct {
	Set   bool
	Valid bool
	Value string
}

// UnmarshalJSON implements json.Unmarshaler
func (o *OptionalString) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Valid = false
		o.Value = ""
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

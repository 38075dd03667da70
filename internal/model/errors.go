package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FormErrorKey holds server errors that are not tied to a single field.
const FormErrorKey = "alert"

// ValidationErrors maps form field names to server-side messages.
//
// The server normally sends an object; a bare string is accepted too and is
// filed under FormErrorKey.
type ValidationErrors map[string]string

// UnmarshalJSON accepts either {"field":"message"} or "message".
func (v *ValidationErrors) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = nil
		return nil
	}

	if data[0] == '"' {
		var msg string
		if err := json.Unmarshal(data, &msg); err != nil {
			return err
		}
		if msg == "" {
			*v = nil
			return nil
		}
		*v = ValidationErrors{FormErrorKey: msg}
		return nil
	}

	var fields map[string]string
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("decoding validation errors: %w", err)
	}
	*v = fields
	return nil
}

// Form returns the form-level message, if any.
func (v ValidationErrors) Form() string {
	return v[FormErrorKey]
}

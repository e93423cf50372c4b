package config

// SecretStringValue replaces secrets wherever they are rendered.
const SecretStringValue = "<secret>"

// SecretString is a type that should be used for fields that should not be visible in logs.
type SecretString string

// String hides the value from fmt and zap.Stringer.
func (s SecretString) String() string {
	if len(s) == 0 {
		return ""
	}
	return SecretStringValue
}

// Reveal returns the actual value.
func (s SecretString) Reveal() string { return string(s) }

// MarshalJSON marshals SecretString to JSON making sure that actual value is not visible.
func (s SecretString) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return []byte("\"" + SecretStringValue + "\""), nil
}

// MarshalYAML marshals SecretString to YAML making sure that actual value is not visible.
func (s SecretString) MarshalYAML() (any, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return SecretStringValue, nil
}

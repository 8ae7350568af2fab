package utils

// GetStringValue returns the value of a nullable string pointer, or the
// empty string when nil. Convenience for nullable text columns.
func GetStringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

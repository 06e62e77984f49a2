package filter

// String provides matching operations for string fields.
// Every operator that is set must match. Equals is exact,
// Contains, StartsWith and EndsWith ignore case.
type String struct {
	Equals     *string `json:"equals"`
	Contains   *string `json:"contains"`
	StartsWith *string `json:"startsWith"`
	EndsWith   *string `json:"endsWith"`
}

// ID provides matching operations for identifier fields.
// In must not be an empty list.
type ID struct {
	Equals *string  `json:"equals"`
	In     []string `json:"in"`
}

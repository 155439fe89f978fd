package model

// Record is an arbitrary JSON object, stored without schema enforcement.
type Record map[string]any

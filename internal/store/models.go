package store

// Setting is one raw row of the settings snapshot table.
type Setting struct {
	Key   string
	Value string
}

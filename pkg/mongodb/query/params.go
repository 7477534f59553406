package query

// Params carries the string-encoded query fragments exactly as the UI sends
// them. Every field is optional; empty strings mean "not supplied".
type Params struct {
	Query          string   `json:"query"`
	Sort           string   `json:"sort"`
	Filter         string   `json:"filter"`
	Pipeline       []string `json:"pipeline"`
	Projection     string   `json:"projection"`
	Collation      string   `json:"collation"`
	Hint           string   `json:"hint"`
	ReadPreference string   `json:"readPreference"`
}

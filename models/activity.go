package models

// WorkResult is the outcome of a shift; Amount is negative on a bad day
type WorkResult struct {
	Amount  int64
	Account *Account
}

// SearchResult is the item found while searching
type SearchResult struct {
	ItemName  string
	Emoji     string
	UnitValue int64
}

// RobResult is the outcome of a robbery attempt
type RobResult struct {
	Success bool
	Stolen  int64 // set on success
	Fine    int64 // set on failure, already clamped to the robber's hand
	Robber  *Account
}

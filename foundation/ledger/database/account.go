package database

// Account represents information stored for an individual account.
type Account struct {
	Address          string `json:"address"`
	Balance          int64  `json:"balance"`
	TransactionCount int64  `json:"transactionCount"`
}

// AccountResponse is an account together with the hashes of every
// transaction it sent or received.
type AccountResponse struct {
	Address          string   `json:"address"`
	Balance          int64    `json:"balance"`
	TransactionCount int64    `json:"transactionCount"`
	Transactions     []string `json:"transactions"`
}

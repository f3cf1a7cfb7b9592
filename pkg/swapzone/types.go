package swapzone

import "github.com/shopspring/decimal"

// Currency is one entry of the upstream exchange catalog.
type Currency struct {
	Ticker   string   `json:"ticker"`
	Name     string   `json:"name"`
	Networks []string `json:"networks"`
}

// Pair identifies the two sides of an exchange, each fully resolved to a
// currency ticker and the network it lives on.
type Pair struct {
	From        string
	FromNetwork string
	To          string
	ToNetwork   string
}

// MinMax are the upstream bounds for the deposit amount of a pair.
type MinMax struct {
	MinAmount decimal.Decimal `json:"minAmount"`
	MaxAmount decimal.Decimal `json:"maxAmount"`
}

// Quote is the upstream rate estimation for a pair and amount. With
// rateType=all the estimation is the best one across all exchange partners.
type Quote struct {
	AmountEstimated decimal.Decimal `json:"amountEstimated"`
}

// CreateRequest is the payload of the transaction creation call.
type CreateRequest struct {
	From          string `json:"from"`
	FromNetwork   string `json:"fromNetwork"`
	To            string `json:"to"`
	ToNetwork     string `json:"toNetwork"`
	Amount        string `json:"amount"`
	Recipient     string `json:"recipient"`
	RefundAddress string `json:"refundAddress"`
}

// StatusInfo is the upstream progress report of a created transaction.
type StatusInfo struct {
	ID             string          `json:"id"`
	Status         string          `json:"status"`
	AmountReceived decimal.Decimal `json:"amountTo"`
}

// Transaction is the upstream record of a created exchange order.
type Transaction struct {
	ID             string          `json:"id"`
	DepositAddress string          `json:"depositAddress"`
	From           string          `json:"from"`
	To             string          `json:"to"`
	AmountDeposit  decimal.Decimal `json:"amountDeposit"`
	AmountEstimate decimal.Decimal `json:"amountEstimated"`
	Status         string          `json:"status"`
}

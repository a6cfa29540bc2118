package sender

// SendRequest is what the external payment network receives. The provider
// is opaque to this core: it either confirms with a transaction id or
// fails, and a failure must leave our state untouched.
type SendRequest struct {
	UserID      string `json:"user_id"`
	Destination string `json:"destination"`
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
	Memo        string `json:"memo"`
}

type SendResult struct {
	TransactionID string `json:"transaction_id"`
}

type PaymentSender interface {
	Send(req SendRequest) (*SendResult, error)
}

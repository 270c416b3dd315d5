package dto

// CreateAccountRequest is the request body for opening an account.
type CreateAccountRequest struct {
	HolderName     string `json:"holder_name" binding:"required,max=100"`
	InitialBalance string `json:"initial_balance" binding:"omitempty,money"` // defaults to "0.00"
}

// RenameAccountRequest is the request body for relabelling an account.
type RenameAccountRequest struct {
	HolderName string `json:"holder_name" binding:"required,max=100"`
}

// TransferRequest is the request body for a transfer.
type TransferRequest struct {
	SenderID   string `json:"sender_id" binding:"required,uuid"`
	ReceiverID string `json:"receiver_id" binding:"required,uuid"`
	Amount     string `json:"amount" binding:"required,money"`
}

// AccountResponse is the response body for an account.
type AccountResponse struct {
	ID         string `json:"id"`
	HolderName string `json:"holder_name"`
	Balance    string `json:"balance"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// TransferResponse is the response body for a transfer record.
type TransferResponse struct {
	ID         string  `json:"id"`
	SenderID   string  `json:"sender_id"`
	ReceiverID string  `json:"receiver_id"`
	Amount     string  `json:"amount"`
	Status     string  `json:"status"`
	Reason     *string `json:"reason,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

// TransferListResponse wraps a page of transfer history.
type TransferListResponse struct {
	Items      []TransferResponse `json:"items"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

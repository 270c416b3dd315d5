package handler

import (
	"account-ledger/internal/adapter/http/dto"
	"account-ledger/internal/core/domain"
	"account-ledger/internal/core/ports"
	"account-ledger/pkg/apperror"
	"account-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AccountHandler handles account endpoints.
type AccountHandler struct {
	accountSvc ports.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accountSvc ports.AccountService) *AccountHandler {
	return &AccountHandler{accountSvc: accountSvc}
}

// Create handles POST /api/v1/accounts.
func (h *AccountHandler) Create(c *gin.Context) {
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}
	dto.TrimStruct(&req)

	balance := decimal.Zero
	if req.InitialBalance != "" {
		d, err := domain.ParseMoney(req.InitialBalance)
		if err != nil {
			response.Error(c, apperror.ErrInvalidInitialBalance())
			return
		}
		balance = d
	}

	account, err := h.accountSvc.CreateAccount(c.Request.Context(), ports.CreateAccountRequest{
		HolderName:     req.HolderName,
		InitialBalance: balance,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromAccount(account))
}

// Rename handles PATCH /api/v1/accounts/:id.
func (h *AccountHandler) Rename(c *gin.Context) {
	id, err := pathID(c, "account")
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.RenameAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}
	dto.TrimStruct(&req)

	account, err := h.accountSvc.RenameAccount(c.Request.Context(), id, req.HolderName)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromAccount(account))
}

// Get handles GET /api/v1/accounts/:id.
func (h *AccountHandler) Get(c *gin.Context) {
	id, err := pathID(c, "account")
	if err != nil {
		response.Error(c, err)
		return
	}

	account, err := h.accountSvc.GetAccount(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromAccount(account))
}

// ListTransfers handles GET /api/v1/accounts/:id/transfers.
func (h *AccountHandler) ListTransfers(c *gin.Context) {
	id, err := pathID(c, "account")
	if err != nil {
		response.Error(c, err)
		return
	}

	page, pageSize := pageQuery(c)
	params := ports.TransferListParams{
		AccountID: id,
		Page:      page,
		PageSize:  pageSize,
	}
	if s := c.Query("status"); s != "" {
		status := domain.TransferStatus(s)
		if status != domain.TransferStatusSucceeded && status != domain.TransferStatusFailed {
			response.Error(c, apperror.Validation("status must be SUCCEEDED or FAILED"))
			return
		}
		params.Status = &status
	}

	records, total, err := h.accountSvc.ListTransfers(c.Request.Context(), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	params.Normalize()

	items := make([]dto.TransferResponse, 0, len(records))
	for i := range records {
		items = append(items, dto.FromTransfer(&records[i]))
	}

	response.OK(c, dto.TransferListResponse{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages(total, params.PageSize),
	})
}

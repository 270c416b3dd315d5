package handler

import (
	"account-ledger/internal/adapter/http/dto"
	"account-ledger/internal/core/domain"
	"account-ledger/internal/core/ports"
	"account-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransferHandler handles transfer endpoints.
type TransferHandler struct {
	ledgerSvc  ports.LedgerService
	accountSvc ports.AccountService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(ledgerSvc ports.LedgerService, accountSvc ports.AccountService) *TransferHandler {
	return &TransferHandler{
		ledgerSvc:  ledgerSvc,
		accountSvc: accountSvc,
	}
}

// Create handles POST /api/v1/transfers.
func (h *TransferHandler) Create(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}
	dto.TrimStruct(&req)

	// Binding has already validated all three fields.
	amount, _ := domain.ParseMoney(req.Amount)
	result, err := h.ledgerSvc.Transfer(c.Request.Context(), ports.TransferRequest{
		SenderID:   uuid.MustParse(req.SenderID),
		ReceiverID: uuid.MustParse(req.ReceiverID),
		Amount:     amount,
	})
	if err != nil {
		if result != nil {
			response.ErrorData(c, err, dto.FromTransfer(result))
			return
		}
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromTransfer(result))
}

// Get handles GET /api/v1/transfers/:id.
func (h *TransferHandler) Get(c *gin.Context) {
	id, err := pathID(c, "transfer")
	if err != nil {
		response.Error(c, err)
		return
	}

	rec, err := h.accountSvc.GetTransfer(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromTransfer(rec))
}

package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"bankcards/internal/errors"
	"bankcards/internal/model"
	"bankcards/internal/repository"
	"bankcards/internal/service"
)

// CardHandler handles card endpoints.
type CardHandler struct {
	cardService service.CardService
}

// NewCardHandler creates a new card handler.
func NewCardHandler(cardService service.CardService) *CardHandler {
	return &CardHandler{cardService: cardService}
}

// CardCreateRequest represents a card issuance request.
type CardCreateRequest struct {
	OwnerID string `json:"owner_id" validate:"required,uuid"`
}

// CardResponse represents a card with a masked number.
type CardResponse struct {
	ID             string `json:"id"`
	OwnerID        string `json:"owner_id"`
	Number         string `json:"number"`
	ExpirationDate string `json:"expiration_date"`
	Status         string `json:"status"`
	Balance        string `json:"balance"`
	CreatedAt      string `json:"created_at"`
}

// CardPageResponse represents one page of cards.
type CardPageResponse struct {
	Items []CardResponse `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

// TransferRequest represents a card-to-card transfer request.
type TransferRequest struct {
	FromCardID string `json:"from_card_id" validate:"required,uuid"`
	ToCardID   string `json:"to_card_id" validate:"required,uuid"`
	Amount     string `json:"amount" validate:"required"`
}

// TransferResponse represents a completed transfer.
type TransferResponse struct {
	TransferID string `json:"transfer_id"`
	FromCardID string `json:"from_card_id"`
	ToCardID   string `json:"to_card_id"`
	Amount     string `json:"amount"`
	CreatedAt  string `json:"created_at"`
}

// TransferPageResponse represents one page of a card's transfer history.
type TransferPageResponse struct {
	Items []TransferResponse `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Size  int                `json:"size"`
}

func toTransferResponse(transfer *model.Transfer) TransferResponse {
	return TransferResponse{
		TransferID: transfer.ID.String(),
		FromCardID: transfer.FromCardID.String(),
		ToCardID:   transfer.ToCardID.String(),
		Amount:     transfer.Amount.StringFixed(2),
		CreatedAt:  transfer.CreatedAt.Format(time.RFC3339),
	}
}

func (h *CardHandler) toResponse(card *model.Card) (CardResponse, error) {
	masked, err := h.cardService.MaskedNumber(card)
	if err != nil {
		return CardResponse{}, err
	}
	return CardResponse{
		ID:             card.ID.String(),
		OwnerID:        card.OwnerID.String(),
		Number:         masked,
		ExpirationDate: card.ExpirationDate.Format("2006-01-02"),
		Status:         string(card.Status),
		Balance:        card.Balance.StringFixed(2),
		CreatedAt:      card.CreatedAt.Format(time.RFC3339),
	}, nil
}

func (h *CardHandler) toPageResponse(cards []model.Card, total int64, page repository.PageRequest) (CardPageResponse, error) {
	items := make([]CardResponse, 0, len(cards))
	for i := range cards {
		resp, err := h.toResponse(&cards[i])
		if err != nil {
			return CardPageResponse{}, err
		}
		items = append(items, resp)
	}
	return CardPageResponse{
		Items: items,
		Total: total,
		Page:  page.Page,
		Size:  page.Limit(),
	}, nil
}

func pageFromQuery(c echo.Context) repository.PageRequest {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("size"))
	return repository.PageRequest{Page: page, Size: size}
}

// Create godoc
// @Summary Issue a new card for a user
// @Tags cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CardCreateRequest true "Card data"
// @Success 201 {object} CardResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /cards [post]
func (h *CardHandler) Create(c echo.Context) error {
	var req CardCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid owner_id",
			Code:  "INVALID_UUID",
		})
	}

	card, err := h.cardService.Create(c.Request().Context(), ownerID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	resp, err := h.toResponse(card)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, resp)
}

// Get godoc
// @Summary Get one card
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Card ID"
// @Success 200 {object} CardResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /cards/{id} [get]
func (h *CardHandler) Get(c echo.Context) error {
	cardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid card ID",
			Code:  "INVALID_UUID",
		})
	}

	caller, err := CallerFromContext(c)
	if err != nil {
		return err
	}

	card, err := h.cardService.Get(c.Request().Context(), cardID, caller)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	resp, err := h.toResponse(card)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, resp)
}

// ListByOwner godoc
// @Summary List a user's cards
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Param userId path string true "Owner ID"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} CardPageResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /cards/user/{userId} [get]
func (h *CardHandler) ListByOwner(c echo.Context) error {
	ownerID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid user ID",
			Code:  "INVALID_UUID",
		})
	}

	caller, err := CallerFromContext(c)
	if err != nil {
		return err
	}

	page := pageFromQuery(c)
	cards, total, err := h.cardService.ListByOwner(c.Request().Context(), ownerID, page, caller)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	resp, err := h.toPageResponse(cards, total, page)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, resp)
}

// ListAll godoc
// @Summary List all cards
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} CardPageResponse
// @Router /cards [get]
func (h *CardHandler) ListAll(c echo.Context) error {
	page := pageFromQuery(c)
	cards, total, err := h.cardService.ListAll(c.Request().Context(), page)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	resp, err := h.toPageResponse(cards, total, page)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, resp)
}

// ListByStatus godoc
// @Summary List cards by status
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Param status path string true "Card status" Enums(ACTIVE, BLOCKED)
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} CardPageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /cards/status/{status} [get]
func (h *CardHandler) ListByStatus(c echo.Context) error {
	status := model.CardStatus(c.Param("status"))
	if !status.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "unknown card status",
			Code:  "INVALID_STATUS",
		})
	}

	page := pageFromQuery(c)
	cards, total, err := h.cardService.ListByStatus(c.Request().Context(), status, page)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	resp, err := h.toPageResponse(cards, total, page)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, resp)
}

// ListExpiringBefore godoc
// @Summary List cards expiring before a date
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Param date path string true "Cutoff date (YYYY-MM-DD)"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} CardPageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Router /cards/expiring-before/{date} [get]
func (h *CardHandler) ListExpiringBefore(c echo.Context) error {
	cutoff, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid date, expected YYYY-MM-DD",
			Code:  "INVALID_DATE",
		})
	}

	page := pageFromQuery(c)
	cards, total, err := h.cardService.ListExpiringBefore(c.Request().Context(), cutoff, page)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	resp, err := h.toPageResponse(cards, total, page)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, resp)
}

// Transfer godoc
// @Summary Transfer between two of the caller's cards
// @Tags cards
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TransferRequest true "Transfer data"
// @Success 200 {object} TransferResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /cards/transfer [post]
func (h *CardHandler) Transfer(c echo.Context) error {
	var req TransferRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	fromCardID, err := uuid.Parse(req.FromCardID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid from_card_id",
			Code:  "INVALID_UUID",
		})
	}
	toCardID, err := uuid.Parse(req.ToCardID)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid to_card_id",
			Code:  "INVALID_UUID",
		})
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid amount",
			Code:  "INVALID_AMOUNT",
		})
	}

	transfer, err := h.cardService.Transfer(c.Request().Context(), fromCardID, toCardID, amount)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, toTransferResponse(transfer))
}

// ListTransfers godoc
// @Summary List a card's transfer history
// @Tags cards
// @Produce json
// @Security BearerAuth
// @Param id path string true "Card ID"
// @Param page query int false "Page number"
// @Param size query int false "Page size"
// @Success 200 {object} TransferPageResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /cards/{id}/transfers [get]
func (h *CardHandler) ListTransfers(c echo.Context) error {
	cardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid card ID",
			Code:  "INVALID_UUID",
		})
	}

	caller, err := CallerFromContext(c)
	if err != nil {
		return err
	}

	page := pageFromQuery(c)
	transfers, total, err := h.cardService.ListTransfers(c.Request().Context(), cardID, page, caller)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	items := make([]TransferResponse, 0, len(transfers))
	for i := range transfers {
		items = append(items, toTransferResponse(&transfers[i]))
	}
	return c.JSON(http.StatusOK, TransferPageResponse{
		Items: items,
		Total: total,
		Page:  page.Page,
		Size:  page.Limit(),
	})
}

// Block godoc
// @Summary Block a card
// @Tags cards
// @Security BearerAuth
// @Param id path string true "Card ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /cards/{id}/block [put]
func (h *CardHandler) Block(c echo.Context) error {
	return h.setStatus(c, h.cardService.Block)
}

// Activate godoc
// @Summary Activate a card
// @Tags cards
// @Security BearerAuth
// @Param id path string true "Card ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Router /cards/{id}/activate [put]
func (h *CardHandler) Activate(c echo.Context) error {
	return h.setStatus(c, h.cardService.Activate)
}

func (h *CardHandler) setStatus(c echo.Context, op func(ctx context.Context, cardID uuid.UUID) error) error {
	cardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid card ID",
			Code:  "INVALID_UUID",
		})
	}

	if err := op(c.Request().Context(), cardID); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.NoContent(http.StatusNoContent)
}

// Delete godoc
// @Summary Delete a card
// @Tags cards
// @Security BearerAuth
// @Param id path string true "Card ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /cards/{id} [delete]
func (h *CardHandler) Delete(c echo.Context) error {
	cardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid card ID",
			Code:  "INVALID_UUID",
		})
	}

	if err := h.cardService.Delete(c.Request().Context(), cardID); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.NoContent(http.StatusNoContent)
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"bankcards/internal/errors"
	"bankcards/internal/model"
	"bankcards/internal/service"
)

// BlockRequestHandler handles block request endpoints.
type BlockRequestHandler struct {
	blockRequestService service.BlockRequestService
}

// NewBlockRequestHandler creates a new block request handler.
func NewBlockRequestHandler(blockRequestService service.BlockRequestService) *BlockRequestHandler {
	return &BlockRequestHandler{blockRequestService: blockRequestService}
}

// BlockRequestResponse represents a block request.
type BlockRequestResponse struct {
	ID        string `json:"id"`
	CardID    string `json:"card_id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

func toBlockRequestResponse(request *model.BlockRequest) BlockRequestResponse {
	return BlockRequestResponse{
		ID:        request.ID.String(),
		CardID:    request.CardID.String(),
		Status:    string(request.Status),
		CreatedAt: request.CreatedAt.Format(time.RFC3339),
	}
}

// Create godoc
// @Summary Request blocking of a card
// @Tags block-requests
// @Produce json
// @Security BearerAuth
// @Param cardId path string true "Card ID"
// @Success 201 {object} BlockRequestResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /block-requests/{cardId} [post]
func (h *BlockRequestHandler) Create(c echo.Context) error {
	cardID, err := uuid.Parse(c.Param("cardId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid card ID",
			Code:  "INVALID_UUID",
		})
	}

	request, err := h.blockRequestService.Create(c.Request().Context(), cardID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, toBlockRequestResponse(request))
}

// Approve godoc
// @Summary Approve a pending block request
// @Tags block-requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} BlockRequestResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /block-requests/{id}/approve [put]
func (h *BlockRequestHandler) Approve(c echo.Context) error {
	return h.process(c, h.blockRequestService.Approve)
}

// Reject godoc
// @Summary Reject a pending block request
// @Tags block-requests
// @Produce json
// @Security BearerAuth
// @Param id path string true "Request ID"
// @Success 200 {object} BlockRequestResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /block-requests/{id}/reject [put]
func (h *BlockRequestHandler) Reject(c echo.Context) error {
	return h.process(c, h.blockRequestService.Reject)
}

func (h *BlockRequestHandler) process(c echo.Context, op func(ctx context.Context, id uuid.UUID) (*model.BlockRequest, error)) error {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request ID",
			Code:  "INVALID_UUID",
		})
	}

	request, err := op(c.Request().Context(), requestID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, toBlockRequestResponse(request))
}

// ListPending godoc
// @Summary List pending block requests
// @Tags block-requests
// @Produce json
// @Security BearerAuth
// @Success 200 {array} BlockRequestResponse
// @Router /block-requests/pending [get]
func (h *BlockRequestHandler) ListPending(c echo.Context) error {
	requests, err := h.blockRequestService.ListPending(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	items := make([]BlockRequestResponse, 0, len(requests))
	for i := range requests {
		items = append(items, toBlockRequestResponse(&requests[i]))
	}
	return c.JSON(http.StatusOK, items)
}

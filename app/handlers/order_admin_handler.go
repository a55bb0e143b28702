package handlers

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/marlonhq/marlon-api/app/dto"
	"github.com/marlonhq/marlon-api/app/middleware"
	businessflow "github.com/marlonhq/marlon-api/business_flow"
	"github.com/marlonhq/marlon-api/utils"
)

// OrderAdminHandlerInterface defines the back-office order endpoints
type OrderAdminHandlerInterface interface {
	ListOrders(c fiber.Ctx) error
	AddOrderItem(c fiber.Ctx) error
	RemoveOrderItem(c fiber.Ctx) error
	UpdateOrderPrices(c fiber.Ctx) error
	UpdateOrderStatus(c fiber.Ctx) error
	ListOrderLogs(c fiber.Ctx) error
}

// OrderAdminHandler implements the back-office order endpoints
type OrderAdminHandler struct {
	flow      businessflow.OrderFlow
	validator *validator.Validate
}

func NewOrderAdminHandler(flow businessflow.OrderFlow) OrderAdminHandlerInterface {
	return &OrderAdminHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *OrderAdminHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *OrderAdminHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// ListOrders returns orders for the back office.
// @Summary List Orders (Admin)
// @Description List orders, newest first, filtered by status or leaser
// @Tags Admin Orders
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param status query string false "Order status"
// @Param leaser_id query int false "Leaser filter"
// @Success 200 {object} dto.APIResponse{data=dto.ListOrdersResponse}
// @Failure 500 {object} dto.APIResponse "List failed"
// @Router /api/v1/admin/orders [get]
func (h *OrderAdminHandler) ListOrders(c fiber.Ctx) error {
	req := dto.ListOrdersRequest{}
	if v, err := strconv.Atoi(c.Query("page", "1")); err == nil {
		req.Page = v
	}
	if v, err := strconv.Atoi(c.Query("page_size", "20")); err == nil {
		req.PageSize = v
	}
	if v := c.Query("status"); v != "" {
		req.Status = &v
	}
	if v := c.Query("leaser_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "leaser_id must be a number", "VALIDATION_ERROR", nil)
		}
		req.LeaserID = utils.ToPtr(uint(id))
	}

	res, err := h.flow.ListOrders(h.createRequestContext(c, "/api/v1/admin/orders"), &req)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) || businessflow.IsInvalidStatusChange(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid listing parameters", "VALIDATION_ERROR", nil)
		}
		log.Println("List orders failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "List orders failed", "ORDER_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Orders retrieved", res)
}

// AddOrderItem adds a line to a draft order and reprices it.
// @Summary Add Order Item (Admin)
// @Description Add a product line to a draft order; the whole order is repriced with one coefficient from the new aggregate
// @Tags Admin Orders
// @Accept json
// @Produce json
// @Param uuid path string true "Order UUID"
// @Param request body dto.AddOrderItemRequest true "Line payload"
// @Success 200 {object} dto.APIResponse{data=dto.AddOrderItemResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Order, product, or tier not found"
// @Failure 409 {object} dto.APIResponse "Order not editable"
// @Failure 500 {object} dto.APIResponse "Update failed"
// @Router /api/v1/admin/orders/{uuid}/items [post]
func (h *OrderAdminHandler) AddOrderItem(c fiber.Ctx) error {
	var req dto.AddOrderItemRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.OrderUUID = c.Params("uuid")
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, e := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(e))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	res, err := h.flow.AddOrderItem(h.createRequestContext(c, "/api/v1/admin/orders/:uuid/items"), &req)
	if err != nil {
		return h.orderMutationErrorResponse(c, err, "Add order item failed")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Item added", res)
}

// RemoveOrderItem removes a line from a draft order and reprices the rest.
// @Summary Remove Order Item (Admin)
// @Description Remove a line from a draft order; the remaining lines are repriced with one coefficient from the new aggregate
// @Tags Admin Orders
// @Produce json
// @Param uuid path string true "Order UUID"
// @Param itemID path int true "Order item ID"
// @Success 200 {object} dto.APIResponse{data=dto.RemoveOrderItemResponse}
// @Failure 404 {object} dto.APIResponse "Order or item not found"
// @Failure 409 {object} dto.APIResponse "Order not editable"
// @Failure 500 {object} dto.APIResponse "Update failed"
// @Router /api/v1/admin/orders/{uuid}/items/{itemID} [delete]
func (h *OrderAdminHandler) RemoveOrderItem(c fiber.Ctx) error {
	itemID, err := strconv.ParseUint(c.Params("itemID"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "itemID must be a number", "VALIDATION_ERROR", nil)
	}
	req := dto.RemoveOrderItemRequest{
		OrderUUID: c.Params("uuid"),
		ItemID:    uint(itemID),
	}

	res, err := h.flow.RemoveOrderItem(h.createRequestContext(c, "/api/v1/admin/orders/:uuid/items/:itemID"), &req)
	if err != nil {
		return h.orderMutationErrorResponse(c, err, "Remove order item failed")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Item removed", res)
}

// UpdateOrderPrices sets manual display overrides on an order.
// @Summary Update Order Prices (Admin)
// @Description Set or clear manual price overrides; engine-computed figures stay untouched
// @Tags Admin Orders
// @Accept json
// @Produce json
// @Param uuid path string true "Order UUID"
// @Param request body dto.UpdateOrderPricesRequest true "Overrides payload"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateOrderPricesResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Order not found"
// @Failure 500 {object} dto.APIResponse "Update failed"
// @Router /api/v1/admin/orders/{uuid}/prices [patch]
func (h *OrderAdminHandler) UpdateOrderPrices(c fiber.Ctx) error {
	var req dto.UpdateOrderPricesRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.OrderUUID = c.Params("uuid")
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, e := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(e))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	res, err := h.flow.UpdateOrderPrices(h.createRequestContext(c, "/api/v1/admin/orders/:uuid/prices"), &req)
	if err != nil {
		if businessflow.IsOrderNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Order not found", "ORDER_NOT_FOUND", nil)
		}
		if businessflow.IsOverrideNegative(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Price overrides must be non-negative", "VALIDATION_ERROR", nil)
		}
		log.Println("Update order prices failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Update order prices failed", "ORDER_UPDATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Order prices updated", res)
}

// UpdateOrderStatus moves an order through its lifecycle.
// @Summary Update Order Status (Admin)
// @Description Move an order through draft, submitted, approved, rejected
// @Tags Admin Orders
// @Accept json
// @Produce json
// @Param uuid path string true "Order UUID"
// @Param request body dto.UpdateOrderStatusRequest true "Status payload"
// @Success 200 {object} dto.APIResponse{data=dto.UpdateOrderStatusResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Order not found"
// @Failure 409 {object} dto.APIResponse "Invalid transition"
// @Failure 500 {object} dto.APIResponse "Update failed"
// @Router /api/v1/admin/orders/{uuid}/status [patch]
func (h *OrderAdminHandler) UpdateOrderStatus(c fiber.Ctx) error {
	var req dto.UpdateOrderStatusRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.OrderUUID = c.Params("uuid")
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, e := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(e))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	res, err := h.flow.UpdateOrderStatus(h.createRequestContext(c, "/api/v1/admin/orders/:uuid/status"), &req)
	if err != nil {
		if businessflow.IsOrderNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Order not found", "ORDER_NOT_FOUND", nil)
		}
		if businessflow.IsInvalidStatusChange(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Invalid order status transition", "INVALID_STATUS_TRANSITION", nil)
		}
		log.Println("Update order status failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Update order status failed", "ORDER_UPDATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Order status updated", res)
}

// ListOrderLogs returns the audit trail of an order.
// @Summary List Order Logs (Admin)
// @Description List the audit trail of an order, newest first
// @Tags Admin Orders
// @Produce json
// @Param uuid path string true "Order UUID"
// @Param limit query int false "Max entries"
// @Param offset query int false "Offset"
// @Success 200 {object} dto.APIResponse{data=dto.ListOrderLogsResponse}
// @Failure 404 {object} dto.APIResponse "Order not found"
// @Failure 500 {object} dto.APIResponse "List failed"
// @Router /api/v1/admin/orders/{uuid}/logs [get]
func (h *OrderAdminHandler) ListOrderLogs(c fiber.Ctx) error {
	limit := 50
	if v, err := strconv.Atoi(c.Query("limit", "50")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	offset := 0
	if v, err := strconv.Atoi(c.Query("offset", "0")); err == nil && v >= 0 {
		offset = v
	}

	res, err := h.flow.ListOrderLogs(h.createRequestContext(c, "/api/v1/admin/orders/:uuid/logs"), c.Params("uuid"), limit, offset)
	if err != nil {
		if businessflow.IsOrderNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Order not found", "ORDER_NOT_FOUND", nil)
		}
		log.Println("List order logs failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "List order logs failed", "ORDER_LOG_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Order logs retrieved", res)
}

// orderMutationErrorResponse maps line mutation failures to HTTP statuses
func (h *OrderAdminHandler) orderMutationErrorResponse(c fiber.Ctx, err error, logPrefix string) error {
	switch {
	case businessflow.IsOrderNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Order not found", "ORDER_NOT_FOUND", nil)
	case businessflow.IsOrderNotEditable(err):
		return h.ErrorResponse(c, fiber.StatusConflict, "Order can no longer be modified", "ORDER_NOT_EDITABLE", nil)
	case businessflow.IsOrderItemNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Order item not found", "ORDER_ITEM_NOT_FOUND", nil)
	case businessflow.IsProductNotFound(err) || businessflow.IsProductInactive(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND", nil)
	case businessflow.IsTooManyOrderItems(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Order exceeds the maximum number of items", "VALIDATION_ERROR", nil)
	case businessflow.IsCoefficientNotFound(err):
		middleware.RecordCoefficientMiss()
		return h.ErrorResponse(c, fiber.StatusNotFound, "No coefficient tier covers this amount", "COEFFICIENT_NOT_FOUND", nil)
	case businessflow.IsDurationNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Leasing duration not found", "DURATION_NOT_FOUND", nil)
	default:
		log.Println(logPrefix+":", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, logPrefix, "ORDER_UPDATE_FAILED", nil)
	}
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *OrderAdminHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, utils.RequestTimeout)
}

func (h *OrderAdminHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}

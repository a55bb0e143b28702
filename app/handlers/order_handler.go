package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/marlonhq/marlon-api/app/dto"
	"github.com/marlonhq/marlon-api/app/middleware"
	businessflow "github.com/marlonhq/marlon-api/business_flow"
	"github.com/marlonhq/marlon-api/utils"
)

// OrderHandlerInterface defines the storefront order endpoints
type OrderHandlerInterface interface {
	CreateOrder(c fiber.Ctx) error
	GetOrder(c fiber.Ctx) error
}

// OrderHandler implements the storefront order endpoints
type OrderHandler struct {
	flow      businessflow.OrderFlow
	validator *validator.Validate
}

func NewOrderHandler(flow businessflow.OrderFlow) OrderHandlerInterface {
	return &OrderHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *OrderHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *OrderHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// CreateOrder creates a new draft order from priced cart lines.
// @Summary Create Order
// @Description Create a draft order; every line is priced with one coefficient resolved from the aggregate selling price
// @Tags Orders
// @Accept json
// @Produce json
// @Param request body dto.CreateOrderRequest true "Order payload"
// @Success 201 {object} dto.APIResponse{data=dto.CreateOrderResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Product, duration, or tier not found"
// @Failure 500 {object} dto.APIResponse "Creation failed"
// @Router /api/v1/orders [post]
func (h *OrderHandler) CreateOrder(c fiber.Ctx) error {
	var req dto.CreateOrderRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, e := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(e))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	res, err := h.flow.CreateOrder(h.createRequestContext(c, "/api/v1/orders"), &req)
	if err != nil {
		return h.orderErrorResponse(c, err, "Create order failed")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Order created", res)
}

// GetOrder returns one order with its priced lines.
// @Summary Get Order
// @Description Retrieve one order by UUID with its priced lines
// @Tags Orders
// @Produce json
// @Param uuid path string true "Order UUID"
// @Success 200 {object} dto.APIResponse{data=dto.GetOrderResponse}
// @Failure 404 {object} dto.APIResponse "Order not found"
// @Failure 500 {object} dto.APIResponse "Fetch failed"
// @Router /api/v1/orders/{uuid} [get]
func (h *OrderHandler) GetOrder(c fiber.Ctx) error {
	orderUUID := c.Params("uuid")
	res, err := h.flow.GetOrder(h.createRequestContext(c, "/api/v1/orders/:uuid"), orderUUID)
	if err != nil {
		if businessflow.IsOrderNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Order not found", "ORDER_NOT_FOUND", nil)
		}
		log.Println("Get order failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Get order failed", "ORDER_FETCH_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Order retrieved", res)
}

// orderErrorResponse maps order failure modes to HTTP statuses
func (h *OrderHandler) orderErrorResponse(c fiber.Ctx, err error, logPrefix string) error {
	switch {
	case businessflow.IsOrderEmpty(err) || businessflow.IsQuantityInvalid(err) || businessflow.IsTooManyOrderItems(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid order payload", "VALIDATION_ERROR", nil)
	case businessflow.IsProductNotFound(err) || businessflow.IsProductInactive(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND", nil)
	case businessflow.IsDurationNotFound(err) || businessflow.IsDurationInvalid(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Leasing duration is not offered", "DURATION_NOT_FOUND", nil)
	case businessflow.IsNoLeaserConfigured(err):
		return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "No leaser configured for this order", "LEASER_NOT_CONFIGURED", nil)
	case businessflow.IsLeaserNotFound(err) || businessflow.IsLeaserInactive(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Leaser not found", "LEASER_NOT_FOUND", nil)
	case businessflow.IsCoefficientNotFound(err):
		middleware.RecordCoefficientMiss()
		return h.ErrorResponse(c, fiber.StatusNotFound, "No coefficient tier covers this amount", "COEFFICIENT_NOT_FOUND", nil)
	default:
		log.Println(logPrefix+":", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, logPrefix, "ORDER_CREATE_FAILED", nil)
	}
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *OrderHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, utils.RequestTimeout)
}

func (h *OrderHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}

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

// CatalogHandlerInterface defines the storefront catalog and pricing endpoints
type CatalogHandlerInterface interface {
	ListProducts(c fiber.Ctx) error
	GetProduct(c fiber.Ctx) error
	GetProductPrice(c fiber.Ctx) error
	QuoteCart(c fiber.Ctx) error
	ListLeasingDurations(c fiber.Ctx) error
}

// CatalogHandler implements the storefront catalog and pricing endpoints
type CatalogHandler struct {
	flow      businessflow.CatalogFlow
	validator *validator.Validate
}

func NewCatalogHandler(flow businessflow.CatalogFlow) CatalogHandlerInterface {
	return &CatalogHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *CatalogHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *CatalogHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// ListProducts returns the active catalog.
// @Summary List Products
// @Description List active catalog products with their selling prices
// @Tags Catalog
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Param search query string false "Name or SKU substring"
// @Success 200 {object} dto.APIResponse{data=dto.ListProductsResponse}
// @Failure 500 {object} dto.APIResponse "List failed"
// @Router /api/v1/products [get]
func (h *CatalogHandler) ListProducts(c fiber.Ctx) error {
	req := dto.ListProductsRequest{}
	if v, err := strconv.Atoi(c.Query("page", "1")); err == nil {
		req.Page = v
	}
	if v, err := strconv.Atoi(c.Query("page_size", "20")); err == nil {
		req.PageSize = v
	}
	if v := c.Query("search"); v != "" {
		req.Search = &v
	}

	res, err := h.flow.ListProducts(h.createRequestContext(c, "/api/v1/products"), &req)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination", "VALIDATION_ERROR", nil)
		}
		log.Println("List products failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "List products failed", "PRODUCT_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Products retrieved", res)
}

// GetProduct returns one catalog product.
// @Summary Get Product
// @Description Retrieve one active catalog product by UUID
// @Tags Catalog
// @Produce json
// @Param uuid path string true "Product UUID"
// @Success 200 {object} dto.APIResponse{data=dto.GetProductResponse}
// @Failure 404 {object} dto.APIResponse "Product not found"
// @Failure 500 {object} dto.APIResponse "Fetch failed"
// @Router /api/v1/products/{uuid} [get]
func (h *CatalogHandler) GetProduct(c fiber.Ctx) error {
	productUUID := c.Params("uuid")
	res, err := h.flow.GetProduct(h.createRequestContext(c, "/api/v1/products/:uuid"), productUUID)
	if err != nil {
		if businessflow.IsProductNotFound(err) || businessflow.IsProductInactive(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND", nil)
		}
		log.Println("Get product failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Get product failed", "PRODUCT_FETCH_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Product retrieved", res)
}

// GetProductPrice prices one product over a lease duration.
// @Summary Get Product Price
// @Description Calculate the monthly and total lease price for one product
// @Tags Catalog
// @Produce json
// @Param uuid path string true "Product UUID"
// @Param duration query int true "Lease duration in months"
// @Param leaser_id query int false "Leaser override"
// @Success 200 {object} dto.APIResponse{data=dto.ProductPriceResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Product, duration, or tier not found"
// @Failure 500 {object} dto.APIResponse "Pricing failed"
// @Router /api/v1/products/{uuid}/price [get]
func (h *CatalogHandler) GetProductPrice(c fiber.Ctx) error {
	req := dto.ProductPriceRequest{ProductUUID: c.Params("uuid")}

	duration, err := strconv.Atoi(c.Query("duration", "0"))
	if err != nil || duration <= 0 {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "duration must be a positive number of months", "VALIDATION_ERROR", nil)
	}
	req.DurationMonths = duration

	if v := c.Query("leaser_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "leaser_id must be a number", "VALIDATION_ERROR", nil)
		}
		req.LeaserID = utils.ToPtr(uint(id))
	}

	res, err := h.flow.GetProductPrice(h.createRequestContext(c, "/api/v1/products/:uuid/price"), &req)
	if err != nil {
		return h.pricingErrorResponse(c, err, "Get product price failed")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Price calculated", res)
}

// QuoteCart prices a whole cart with one shared coefficient.
// @Summary Quote Cart
// @Description Price a cart: one coefficient resolved from the aggregate selling price applies to every line
// @Tags Catalog
// @Accept json
// @Produce json
// @Param request body dto.CartQuoteRequest true "Cart payload"
// @Success 200 {object} dto.APIResponse{data=dto.CartQuoteResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Product, duration, or tier not found"
// @Failure 500 {object} dto.APIResponse "Pricing failed"
// @Router /api/v1/cart/quote [post]
func (h *CatalogHandler) QuoteCart(c fiber.Ctx) error {
	var req dto.CartQuoteRequest
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

	res, err := h.flow.QuoteCart(h.createRequestContext(c, "/api/v1/cart/quote"), &req)
	if err != nil {
		return h.pricingErrorResponse(c, err, "Quote cart failed")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Cart priced", res)
}

// ListLeasingDurations returns the offered lease lengths.
// @Summary List Leasing Durations
// @Description List the lease lengths currently offered
// @Tags Catalog
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.ListLeasingDurationsResponse}
// @Failure 500 {object} dto.APIResponse "List failed"
// @Router /api/v1/leasing-durations [get]
func (h *CatalogHandler) ListLeasingDurations(c fiber.Ctx) error {
	res, err := h.flow.ListLeasingDurations(h.createRequestContext(c, "/api/v1/leasing-durations"))
	if err != nil {
		log.Println("List leasing durations failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "List leasing durations failed", "DURATION_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Leasing durations retrieved", res)
}

// pricingErrorResponse maps the shared pricing failure modes to HTTP statuses
func (h *CatalogHandler) pricingErrorResponse(c fiber.Ctx, err error, logPrefix string) error {
	switch {
	case businessflow.IsProductNotFound(err) || businessflow.IsProductInactive(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND", nil)
	case businessflow.IsDurationNotFound(err) || businessflow.IsDurationInvalid(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Leasing duration is not offered", "DURATION_NOT_FOUND", nil)
	case businessflow.IsNoLeaserConfigured(err):
		return h.ErrorResponse(c, fiber.StatusUnprocessableEntity, "No leaser configured for this product", "LEASER_NOT_CONFIGURED", nil)
	case businessflow.IsLeaserNotFound(err) || businessflow.IsLeaserInactive(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Leaser not found", "LEASER_NOT_FOUND", nil)
	case businessflow.IsCoefficientNotFound(err):
		middleware.RecordCoefficientMiss()
		return h.ErrorResponse(c, fiber.StatusNotFound, "No coefficient tier covers this amount", "COEFFICIENT_NOT_FOUND", nil)
	default:
		log.Println(logPrefix+":", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, logPrefix, "PRICING_FAILED", nil)
	}
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *CatalogHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, utils.RequestTimeout)
}

func (h *CatalogHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}

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

// LeaserAdminHandlerInterface defines the back-office configuration endpoints
type LeaserAdminHandlerInterface interface {
	CreateLeaser(c fiber.Ctx) error
	ListLeasers(c fiber.Ctx) error
	UpdateLeaser(c fiber.Ctx) error
	CreateDuration(c fiber.Ctx) error
	CreateCoefficient(c fiber.Ctx) error
	ListCoefficients(c fiber.Ctx) error
	UpdateCoefficient(c fiber.Ctx) error
	DeleteCoefficient(c fiber.Ctx) error
	ExportCoefficients(c fiber.Ctx) error
	CreateProduct(c fiber.Ctx) error
	ListProducts(c fiber.Ctx) error
	UpdateProduct(c fiber.Ctx) error
	CalculatePrice(c fiber.Ctx) error
}

// LeaserAdminHandler implements the back-office configuration endpoints
type LeaserAdminHandler struct {
	flow      businessflow.LeaserAdminFlow
	validator *validator.Validate
}

func NewLeaserAdminHandler(flow businessflow.LeaserAdminFlow) LeaserAdminHandlerInterface {
	return &LeaserAdminHandler{
		flow:      flow,
		validator: validator.New(),
	}
}

func (h *LeaserAdminHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *LeaserAdminHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

func (h *LeaserAdminHandler) validateBody(c fiber.Ctx, req any) error {
	if err := h.validator.Struct(req); err != nil {
		var validationErrors []string
		for _, e := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(e))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}
	return nil
}

// CreateLeaser registers a new financing partner.
// @Summary Create Leaser (Admin)
// @Description Register a new financing partner
// @Tags Admin Leasers
// @Accept json
// @Produce json
// @Param request body dto.AdminCreateLeaserRequest true "Leaser payload"
// @Success 201 {object} dto.APIResponse{data=dto.AdminCreateLeaserResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Name taken"
// @Failure 500 {object} dto.APIResponse "Creation failed"
// @Router /api/v1/admin/leasers [post]
func (h *LeaserAdminHandler) CreateLeaser(c fiber.Ctx) error {
	var req dto.AdminCreateLeaserRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validateBody(c, &req); err != nil {
		return err
	}

	res, err := h.flow.CreateLeaser(h.createRequestContext(c, "/api/v1/admin/leasers"), &req)
	if err != nil {
		if businessflow.IsLeaserNameRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Leaser name is required", "VALIDATION_ERROR", nil)
		}
		if businessflow.IsLeaserNameTaken(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Leaser name already exists", "LEASER_NAME_TAKEN", nil)
		}
		log.Println("Create leaser failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Create leaser failed", "LEASER_CREATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Leaser created", res)
}

// ListLeasers returns every financing partner.
// @Summary List Leasers (Admin)
// @Description List all financing partners
// @Tags Admin Leasers
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.AdminListLeasersResponse}
// @Failure 500 {object} dto.APIResponse "List failed"
// @Router /api/v1/admin/leasers [get]
func (h *LeaserAdminHandler) ListLeasers(c fiber.Ctx) error {
	res, err := h.flow.ListLeasers(h.createRequestContext(c, "/api/v1/admin/leasers"))
	if err != nil {
		log.Println("List leasers failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "List leasers failed", "LEASER_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Leasers retrieved", res)
}

// UpdateLeaser renames or (de)activates a financing partner.
// @Summary Update Leaser (Admin)
// @Description Rename or (de)activate a financing partner
// @Tags Admin Leasers
// @Accept json
// @Produce json
// @Param uuid path string true "Leaser UUID"
// @Param request body dto.AdminUpdateLeaserRequest true "Leaser payload"
// @Success 200 {object} dto.APIResponse{data=dto.AdminUpdateLeaserResponse}
// @Failure 404 {object} dto.APIResponse "Leaser not found"
// @Failure 409 {object} dto.APIResponse "Name taken"
// @Failure 500 {object} dto.APIResponse "Update failed"
// @Router /api/v1/admin/leasers/{uuid} [patch]
func (h *LeaserAdminHandler) UpdateLeaser(c fiber.Ctx) error {
	var req dto.AdminUpdateLeaserRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UUID = c.Params("uuid")
	if err := h.validateBody(c, &req); err != nil {
		return err
	}

	res, err := h.flow.UpdateLeaser(h.createRequestContext(c, "/api/v1/admin/leasers/:uuid"), &req)
	if err != nil {
		if businessflow.IsLeaserNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Leaser not found", "LEASER_NOT_FOUND", nil)
		}
		if businessflow.IsLeaserNameTaken(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Leaser name already exists", "LEASER_NAME_TAKEN", nil)
		}
		if businessflow.IsLeaserNameRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Leaser name is required", "VALIDATION_ERROR", nil)
		}
		log.Println("Update leaser failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Update leaser failed", "LEASER_UPDATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Leaser updated", res)
}

// CreateDuration registers a new offered lease length.
// @Summary Create Leasing Duration (Admin)
// @Description Register a new offered lease length in months
// @Tags Admin Durations
// @Accept json
// @Produce json
// @Param request body dto.AdminCreateDurationRequest true "Duration payload"
// @Success 201 {object} dto.APIResponse{data=dto.AdminCreateDurationResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "Duration exists"
// @Failure 500 {object} dto.APIResponse "Creation failed"
// @Router /api/v1/admin/durations [post]
func (h *LeaserAdminHandler) CreateDuration(c fiber.Ctx) error {
	var req dto.AdminCreateDurationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validateBody(c, &req); err != nil {
		return err
	}

	res, err := h.flow.CreateDuration(h.createRequestContext(c, "/api/v1/admin/durations"), &req)
	if err != nil {
		if businessflow.IsDurationInvalid(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid duration", "VALIDATION_ERROR", nil)
		}
		if businessflow.IsDurationAlreadyKnown(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Leasing duration already exists", "DURATION_EXISTS", nil)
		}
		log.Println("Create duration failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Create duration failed", "DURATION_CREATE_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Leasing duration created", res)
}

// CreateCoefficient adds a coefficient tier to a leaser's rate grid.
// @Summary Create Coefficient Tier (Admin)
// @Description Add one amount tranche with its coefficient to a leaser's grid
// @Tags Admin Coefficients
// @Accept json
// @Produce json
// @Param uuid path string true "Leaser UUID"
// @Param request body dto.AdminCreateCoefficientRequest true "Tier payload"
// @Success 201 {object} dto.APIResponse{data=dto.AdminCreateCoefficientResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Leaser or duration not found"
// @Failure 500 {object} dto.APIResponse "Creation failed"
// @Router /api/v1/admin/leasers/{uuid}/coefficients [post]
func (h *LeaserAdminHandler) CreateCoefficient(c fiber.Ctx) error {
	var req dto.AdminCreateCoefficientRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.LeaserUUID = c.Params("uuid")
	if err := h.validateBody(c, &req); err != nil {
		return err
	}

	res, err := h.flow.CreateCoefficient(h.createRequestContext(c, "/api/v1/admin/leasers/:uuid/coefficients"), &req)
	if err != nil {
		return h.coefficientErrorResponse(c, err, "Create coefficient failed", "COEFFICIENT_CREATE_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Coefficient tier created", res)
}

// ListCoefficients returns a leaser's rate grid.
// @Summary List Coefficient Tiers (Admin)
// @Description List a leaser's full coefficient grid
// @Tags Admin Coefficients
// @Produce json
// @Param uuid path string true "Leaser UUID"
// @Success 200 {object} dto.APIResponse{data=dto.AdminListCoefficientsResponse}
// @Failure 404 {object} dto.APIResponse "Leaser not found"
// @Failure 500 {object} dto.APIResponse "List failed"
// @Router /api/v1/admin/leasers/{uuid}/coefficients [get]
func (h *LeaserAdminHandler) ListCoefficients(c fiber.Ctx) error {
	res, err := h.flow.ListCoefficients(h.createRequestContext(c, "/api/v1/admin/leasers/:uuid/coefficients"), c.Params("uuid"))
	if err != nil {
		if businessflow.IsLeaserNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Leaser not found", "LEASER_NOT_FOUND", nil)
		}
		log.Println("List coefficients failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "List coefficients failed", "COEFFICIENT_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Coefficient tiers retrieved", res)
}

// UpdateCoefficient rewrites one coefficient tier.
// @Summary Update Coefficient Tier (Admin)
// @Description Change the range or coefficient of one tier
// @Tags Admin Coefficients
// @Accept json
// @Produce json
// @Param uuid path string true "Leaser UUID"
// @Param id path int true "Coefficient tier ID"
// @Param request body dto.AdminUpdateCoefficientRequest true "Tier payload"
// @Success 200 {object} dto.APIResponse{data=dto.AdminUpdateCoefficientResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Leaser or tier not found"
// @Failure 500 {object} dto.APIResponse "Update failed"
// @Router /api/v1/admin/leasers/{uuid}/coefficients/{id} [patch]
func (h *LeaserAdminHandler) UpdateCoefficient(c fiber.Ctx) error {
	coefficientID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "id must be a number", "VALIDATION_ERROR", nil)
	}

	var req dto.AdminUpdateCoefficientRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.LeaserUUID = c.Params("uuid")
	req.CoefficientID = uint(coefficientID)
	if err := h.validateBody(c, &req); err != nil {
		return err
	}

	res, err := h.flow.UpdateCoefficient(h.createRequestContext(c, "/api/v1/admin/leasers/:uuid/coefficients/:id"), &req)
	if err != nil {
		return h.coefficientErrorResponse(c, err, "Update coefficient failed", "COEFFICIENT_UPDATE_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Coefficient tier updated", res)
}

// DeleteCoefficient removes one coefficient tier.
// @Summary Delete Coefficient Tier (Admin)
// @Description Remove one tranche from a leaser's grid
// @Tags Admin Coefficients
// @Produce json
// @Param uuid path string true "Leaser UUID"
// @Param id path int true "Coefficient tier ID"
// @Success 200 {object} dto.APIResponse{data=dto.AdminDeleteCoefficientResponse}
// @Failure 404 {object} dto.APIResponse "Leaser or tier not found"
// @Failure 500 {object} dto.APIResponse "Deletion failed"
// @Router /api/v1/admin/leasers/{uuid}/coefficients/{id} [delete]
func (h *LeaserAdminHandler) DeleteCoefficient(c fiber.Ctx) error {
	coefficientID, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "id must be a number", "VALIDATION_ERROR", nil)
	}

	res, err := h.flow.DeleteCoefficient(h.createRequestContext(c, "/api/v1/admin/leasers/:uuid/coefficients/:id"), c.Params("uuid"), uint(coefficientID))
	if err != nil {
		return h.coefficientErrorResponse(c, err, "Delete coefficient failed", "COEFFICIENT_DELETE_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Coefficient tier deleted", res)
}

// ExportCoefficients downloads every leaser's rate grid as an Excel workbook.
// @Summary Export Coefficients (Admin)
// @Description Download all coefficient grids as an Excel workbook, one sheet per leaser
// @Tags Admin Coefficients
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary "Excel workbook"
// @Failure 500 {object} dto.APIResponse "Export failed"
// @Router /api/v1/admin/coefficients/export [get]
func (h *LeaserAdminHandler) ExportCoefficients(c fiber.Ctx) error {
	filename, data, err := h.flow.ExportCoefficientsExcel(h.createRequestContext(c, "/api/v1/admin/coefficients/export"))
	if err != nil {
		log.Println("Export coefficients failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Export coefficients failed", "EXPORT_FAILED", nil)
	}
	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", "attachment; filename="+filename)
	return c.Send(data)
}

// CreateProduct registers a catalog product.
// @Summary Create Product (Admin)
// @Description Register a catalog product with its purchase price and margin
// @Tags Admin Products
// @Accept json
// @Produce json
// @Param request body dto.AdminCreateProductRequest true "Product payload"
// @Success 201 {object} dto.APIResponse{data=dto.AdminCreateProductResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 409 {object} dto.APIResponse "SKU taken"
// @Failure 500 {object} dto.APIResponse "Creation failed"
// @Router /api/v1/admin/products [post]
func (h *LeaserAdminHandler) CreateProduct(c fiber.Ctx) error {
	var req dto.AdminCreateProductRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	if err := h.validateBody(c, &req); err != nil {
		return err
	}

	res, err := h.flow.CreateProduct(h.createRequestContext(c, "/api/v1/admin/products"), &req)
	if err != nil {
		return h.productErrorResponse(c, err, "Create product failed", "PRODUCT_CREATE_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Product created", res)
}

// ListProducts returns the catalog for the back office.
// @Summary List Products (Admin)
// @Description List all catalog products including inactive rows
// @Tags Admin Products
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} dto.APIResponse{data=dto.AdminListProductsResponse}
// @Failure 500 {object} dto.APIResponse "List failed"
// @Router /api/v1/admin/products [get]
func (h *LeaserAdminHandler) ListProducts(c fiber.Ctx) error {
	page := 1
	if v, err := strconv.Atoi(c.Query("page", "1")); err == nil && v > 0 {
		page = v
	}
	pageSize := 50
	if v, err := strconv.Atoi(c.Query("page_size", "50")); err == nil && v > 0 {
		pageSize = v
	}

	res, err := h.flow.ListProducts(h.createRequestContext(c, "/api/v1/admin/products"), page, pageSize)
	if err != nil {
		if businessflow.IsInvalidPage(err) || businessflow.IsInvalidPageSize(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid pagination", "VALIDATION_ERROR", nil)
		}
		log.Println("List products failed:", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "List products failed", "PRODUCT_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Products retrieved", res)
}

// UpdateProduct updates a catalog product.
// @Summary Update Product (Admin)
// @Description Update a catalog product; stored orders keep their snapshots
// @Tags Admin Products
// @Accept json
// @Produce json
// @Param uuid path string true "Product UUID"
// @Param request body dto.AdminUpdateProductRequest true "Product payload"
// @Success 200 {object} dto.APIResponse{data=dto.AdminUpdateProductResponse}
// @Failure 404 {object} dto.APIResponse "Product not found"
// @Failure 500 {object} dto.APIResponse "Update failed"
// @Router /api/v1/admin/products/{uuid} [patch]
func (h *LeaserAdminHandler) UpdateProduct(c fiber.Ctx) error {
	var req dto.AdminUpdateProductRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.UUID = c.Params("uuid")
	if err := h.validateBody(c, &req); err != nil {
		return err
	}

	res, err := h.flow.UpdateProduct(h.createRequestContext(c, "/api/v1/admin/products/:uuid"), &req)
	if err != nil {
		return h.productErrorResponse(c, err, "Update product failed", "PRODUCT_UPDATE_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Product updated", res)
}

// CalculatePrice runs an arbitrary amount through a leaser's rate grid.
// @Summary Calculate Price (Admin)
// @Description Price an arbitrary purchase price and margin through a leaser's grid
// @Tags Admin Coefficients
// @Accept json
// @Produce json
// @Param uuid path string true "Leaser UUID"
// @Param request body dto.AdminCalculatePriceRequest true "Calculation payload"
// @Success 200 {object} dto.APIResponse{data=dto.AdminCalculatePriceResponse}
// @Failure 400 {object} dto.APIResponse "Validation error"
// @Failure 404 {object} dto.APIResponse "Leaser, duration, or tier not found"
// @Failure 500 {object} dto.APIResponse "Calculation failed"
// @Router /api/v1/admin/leasers/{uuid}/calculate-price [post]
func (h *LeaserAdminHandler) CalculatePrice(c fiber.Ctx) error {
	var req dto.AdminCalculatePriceRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}
	req.LeaserUUID = c.Params("uuid")
	if err := h.validateBody(c, &req); err != nil {
		return err
	}

	res, err := h.flow.CalculatePrice(h.createRequestContext(c, "/api/v1/admin/leasers/:uuid/calculate-price"), &req)
	if err != nil {
		switch {
		case businessflow.IsLeaserNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Leaser not found", "LEASER_NOT_FOUND", nil)
		case businessflow.IsDurationNotFound(err):
			return h.ErrorResponse(c, fiber.StatusNotFound, "Leasing duration is not offered", "DURATION_NOT_FOUND", nil)
		case businessflow.IsCoefficientNotFound(err):
			middleware.RecordCoefficientMiss()
			return h.ErrorResponse(c, fiber.StatusNotFound, "No coefficient tier covers this amount", "COEFFICIENT_NOT_FOUND", nil)
		default:
			log.Println("Calculate price failed:", err)
			return h.ErrorResponse(c, fiber.StatusInternalServerError, "Calculate price failed", "PRICING_FAILED", nil)
		}
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Price calculated", res)
}

// coefficientErrorResponse maps coefficient grid failures to HTTP statuses
func (h *LeaserAdminHandler) coefficientErrorResponse(c fiber.Ctx, err error, logPrefix, failCode string) error {
	switch {
	case businessflow.IsLeaserNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Leaser not found", "LEASER_NOT_FOUND", nil)
	case businessflow.IsDurationNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Leasing duration not found", "DURATION_NOT_FOUND", nil)
	case businessflow.IsCoefficientNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Coefficient tier not found", "COEFFICIENT_NOT_FOUND", nil)
	case businessflow.IsCoefficientInvalid(err) || businessflow.IsTierRangeInvalid(err) || businessflow.IsTierAmountNegative(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
	default:
		log.Println(logPrefix+":", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, logPrefix, failCode, nil)
	}
}

// productErrorResponse maps catalog write failures to HTTP statuses
func (h *LeaserAdminHandler) productErrorResponse(c fiber.Ctx, err error, logPrefix, failCode string) error {
	switch {
	case businessflow.IsProductNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Product not found", "PRODUCT_NOT_FOUND", nil)
	case businessflow.IsProductSKUTaken(err):
		return h.ErrorResponse(c, fiber.StatusConflict, "Product SKU already exists", "PRODUCT_SKU_TAKEN", nil)
	case businessflow.IsProductNameRequired(err) || businessflow.IsPurchasePriceNegative(err) || businessflow.IsMarginPercentNegative(err):
		return h.ErrorResponse(c, fiber.StatusBadRequest, err.Error(), "VALIDATION_ERROR", nil)
	case businessflow.IsLeaserNotFound(err):
		return h.ErrorResponse(c, fiber.StatusNotFound, "Leaser not found", "LEASER_NOT_FOUND", nil)
	default:
		log.Println(logPrefix+":", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, logPrefix, failCode, nil)
	}
}

// createRequestContext mirrors other handlers for request-scoped values
func (h *LeaserAdminHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, utils.RequestTimeout)
}

func (h *LeaserAdminHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}

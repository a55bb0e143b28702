package businessflow

import (
	"context"
	"errors"
	"strings"

	"github.com/marlonhq/marlon-api/app/dto"
	"github.com/marlonhq/marlon-api/app/services"
	"github.com/marlonhq/marlon-api/models"
	"github.com/marlonhq/marlon-api/pricing"
	"github.com/marlonhq/marlon-api/repository"
	"github.com/marlonhq/marlon-api/utils"
)

// CatalogFlow defines the storefront operations: browsing products and
// pricing them through the leaser rate tables.
type CatalogFlow interface {
	ListProducts(ctx context.Context, req *dto.ListProductsRequest) (*dto.ListProductsResponse, error)
	GetProduct(ctx context.Context, productUUID string) (*dto.GetProductResponse, error)
	GetProductPrice(ctx context.Context, req *dto.ProductPriceRequest) (*dto.ProductPriceResponse, error)
	QuoteCart(ctx context.Context, req *dto.CartQuoteRequest) (*dto.CartQuoteResponse, error)
	ListLeasingDurations(ctx context.Context) (*dto.ListLeasingDurationsResponse, error)
}

type CatalogFlowImpl struct {
	productRepo  repository.ProductRepository
	durationRepo repository.LeasingDurationRepository
	leaserRepo   repository.LeaserRepository
	rateTables   services.RateTableService
}

func NewCatalogFlow(
	productRepo repository.ProductRepository,
	durationRepo repository.LeasingDurationRepository,
	leaserRepo repository.LeaserRepository,
	rateTables services.RateTableService,
) CatalogFlow {
	return &CatalogFlowImpl{
		productRepo:  productRepo,
		durationRepo: durationRepo,
		leaserRepo:   leaserRepo,
		rateTables:   rateTables,
	}
}

// ListProducts returns the active catalog page by page
func (f *CatalogFlowImpl) ListProducts(ctx context.Context, req *dto.ListProductsRequest) (*dto.ListProductsResponse, error) {
	page := req.Page
	if page == 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize == 0 {
		pageSize = 20
	}
	if page < 1 {
		return nil, NewBusinessError("VALIDATION_ERROR", "Page must be at least 1", ErrInvalidPage)
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, NewBusinessError("VALIDATION_ERROR", "Page size must be between 1 and 100", ErrInvalidPageSize)
	}

	filter := models.ProductFilter{IsActive: utils.ToPtr(true)}

	search := ""
	if req.Search != nil {
		search = strings.ToLower(strings.TrimSpace(*req.Search))
	}

	if search == "" {
		rows, err := f.productRepo.ByFilter(ctx, filter, "created_at DESC, id DESC", pageSize, (page-1)*pageSize)
		if err != nil {
			return nil, NewBusinessError("PRODUCT_LIST_FAILED", "Failed to list products", err)
		}
		total, err := f.productRepo.Count(ctx, filter)
		if err != nil {
			return nil, NewBusinessError("PRODUCT_LIST_FAILED", "Failed to count products", err)
		}
		items := make([]dto.ProductItem, 0, len(rows))
		for _, p := range rows {
			items = append(items, ToProductDTO(p))
		}
		return &dto.ListProductsResponse{
			Message: "Products retrieved successfully",
			Items:   items,
			Total:   total,
		}, nil
	}

	// Search filters on name and SKU in memory, so pagination happens after
	// the match.
	rows, err := f.productRepo.ByFilter(ctx, filter, "created_at DESC, id DESC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_LIST_FAILED", "Failed to list products", err)
	}
	matched := make([]*models.Product, 0, len(rows))
	for _, p := range rows {
		if strings.Contains(strings.ToLower(p.Name), search) || strings.Contains(strings.ToLower(p.SKU), search) {
			matched = append(matched, p)
		}
	}
	total := int64(len(matched))
	start := (page - 1) * pageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	items := make([]dto.ProductItem, 0, end-start)
	for _, p := range matched[start:end] {
		items = append(items, ToProductDTO(p))
	}
	return &dto.ListProductsResponse{
		Message: "Products retrieved successfully",
		Items:   items,
		Total:   total,
	}, nil
}

// GetProduct returns one active catalog product by UUID
func (f *CatalogFlowImpl) GetProduct(ctx context.Context, productUUID string) (*dto.GetProductResponse, error) {
	product, err := f.activeProduct(ctx, productUUID)
	if err != nil {
		return nil, err
	}
	return &dto.GetProductResponse{
		Message: "Product retrieved successfully",
		Product: ToProductDTO(product),
	}, nil
}

// GetProductPrice prices a single product over a lease duration. The leaser
// defaults to the product's financing partner when the caller names none.
func (f *CatalogFlowImpl) GetProductPrice(ctx context.Context, req *dto.ProductPriceRequest) (*dto.ProductPriceResponse, error) {
	product, err := f.activeProduct(ctx, req.ProductUUID)
	if err != nil {
		return nil, err
	}

	duration, err := f.offeredDuration(ctx, req.DurationMonths)
	if err != nil {
		return nil, err
	}

	leaserID, err := f.resolveLeaser(ctx, req.LeaserID, product.DefaultLeaserID)
	if err != nil {
		return nil, err
	}

	table, err := f.rateTables.TableFor(ctx, leaserID)
	if err != nil {
		return nil, NewBusinessError("RATE_TABLE_LOAD_FAILED", "Failed to load rate table", err)
	}

	quote, err := pricing.QuoteProduct(table, product.PurchasePrice, product.MarginPercent, &leaserID, duration.Months)
	if err != nil {
		return nil, mapPricingError(err)
	}

	return &dto.ProductPriceResponse{
		Message:        "Price calculated successfully",
		ProductUUID:    product.UUID.String(),
		DurationMonths: duration.Months,
		LeaserID:       leaserID,
		SellingPrice:   pricing.Round2(quote.SellingPrice),
		Coefficient:    quote.Coefficient,
		MonthlyPrice:   pricing.Round2(quote.MonthlyPrice),
		TotalPrice:     pricing.Round2(quote.TotalPrice),
	}, nil
}

// QuoteCart prices a whole cart: one coefficient is resolved from the cart's
// aggregate selling price and applied to every line.
func (f *CatalogFlowImpl) QuoteCart(ctx context.Context, req *dto.CartQuoteRequest) (*dto.CartQuoteResponse, error) {
	duration, err := f.offeredDuration(ctx, req.DurationMonths)
	if err != nil {
		return nil, err
	}

	if len(req.Lines) == 0 {
		return &dto.CartQuoteResponse{
			Message:        "Cart is empty",
			DurationMonths: duration.Months,
			Lines:          []dto.CartQuoteLineResult{},
		}, nil
	}

	products := make([]*models.Product, 0, len(req.Lines))
	items := make([]pricing.LineItem, 0, len(req.Lines))
	for _, line := range req.Lines {
		product, err := f.activeProduct(ctx, line.ProductUUID)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
		items = append(items, pricing.LineItem{
			ProductID:     product.ID,
			PurchasePrice: product.PurchasePrice,
			MarginPercent: product.MarginPercent,
			Quantity:      line.Quantity,
		})
	}

	leaserID, err := f.resolveLeaser(ctx, req.LeaserID, products[0].DefaultLeaserID)
	if err != nil {
		return nil, err
	}

	table, err := f.rateTables.TableFor(ctx, leaserID)
	if err != nil {
		return nil, NewBusinessError("RATE_TABLE_LOAD_FAILED", "Failed to load rate table", err)
	}

	priced, err := pricing.Recalculate(table, items, leaserID, duration.Months)
	if err != nil {
		return nil, mapPricingError(err)
	}

	resp := &dto.CartQuoteResponse{
		Message:        "Cart priced successfully",
		LeaserID:       leaserID,
		DurationMonths: duration.Months,
		Lines:          make([]dto.CartQuoteLineResult, 0, len(priced)),
	}
	var totalSelling, totalMonthly float64
	for i, line := range priced {
		resp.Coefficient = line.Coefficient
		totalSelling += line.SellingPrice * float64(line.Quantity)
		totalMonthly += line.MonthlyPrice * float64(line.Quantity)
		resp.Lines = append(resp.Lines, dto.CartQuoteLineResult{
			ProductUUID:     products[i].UUID.String(),
			Quantity:        line.Quantity,
			SellingPrice:    pricing.Round2(line.SellingPrice),
			MonthlyPrice:    pricing.Round2(line.MonthlyPrice),
			CalculatedPrice: pricing.Round2(line.CalculatedPrice),
		})
	}
	resp.TotalSellingPrice = pricing.Round2(totalSelling)
	resp.TotalMonthlyPrice = pricing.Round2(totalMonthly)

	return resp, nil
}

// ListLeasingDurations returns the lease lengths currently offered
func (f *CatalogFlowImpl) ListLeasingDurations(ctx context.Context) (*dto.ListLeasingDurationsResponse, error) {
	rows, err := f.durationRepo.ListActive(ctx)
	if err != nil {
		return nil, NewBusinessError("DURATION_LIST_FAILED", "Failed to list leasing durations", err)
	}

	items := make([]dto.LeasingDurationItem, 0, len(rows))
	for _, d := range rows {
		items = append(items, dto.LeasingDurationItem{ID: d.ID, Months: d.Months})
	}

	return &dto.ListLeasingDurationsResponse{
		Message: "Leasing durations retrieved successfully",
		Items:   items,
	}, nil
}

func (f *CatalogFlowImpl) activeProduct(ctx context.Context, productUUID string) (*models.Product, error) {
	product, err := f.productRepo.ByUUID(ctx, productUUID)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_FETCH_FAILED", "Failed to fetch product", err)
	}
	if product == nil {
		return nil, NewBusinessError("PRODUCT_NOT_FOUND", "Product not found", ErrProductNotFound)
	}
	if !utils.IsTrue(product.IsActive) {
		return nil, NewBusinessError("PRODUCT_INACTIVE", "Product is inactive", ErrProductInactive)
	}
	return product, nil
}

func (f *CatalogFlowImpl) offeredDuration(ctx context.Context, months int) (*models.LeasingDuration, error) {
	if months <= 0 {
		return nil, NewBusinessError("VALIDATION_ERROR", "Duration must be a positive number of months", ErrDurationInvalid)
	}
	duration, err := f.durationRepo.ByMonths(ctx, months)
	if err != nil {
		return nil, NewBusinessError("DURATION_FETCH_FAILED", "Failed to fetch leasing duration", err)
	}
	if duration == nil || !utils.IsTrue(duration.IsActive) {
		return nil, NewBusinessErrorf("DURATION_NOT_FOUND", "Leasing over %d months is not offered", ErrDurationNotFound, months)
	}
	return duration, nil
}

// resolveLeaser picks the requested leaser, falling back to the product's
// financing partner, and verifies it exists and is active.
func (f *CatalogFlowImpl) resolveLeaser(ctx context.Context, requested, fallback *uint) (uint, error) {
	id := requested
	if id == nil {
		id = fallback
	}
	if id == nil {
		return 0, NewBusinessError("LEASER_NOT_CONFIGURED", "No leaser configured for this product", ErrNoLeaserConfigured)
	}

	leaser, err := f.leaserRepo.ByID(ctx, *id)
	if err != nil {
		return 0, NewBusinessError("LEASER_FETCH_FAILED", "Failed to fetch leaser", err)
	}
	if leaser == nil {
		return 0, NewBusinessError("LEASER_NOT_FOUND", "Leaser not found", ErrLeaserNotFound)
	}
	if !utils.IsTrue(leaser.IsActive) {
		return 0, NewBusinessError("LEASER_INACTIVE", "Leaser is inactive", ErrLeaserInactive)
	}
	return leaser.ID, nil
}

// mapPricingError translates engine failures into business errors
func mapPricingError(err error) error {
	switch {
	case errors.Is(err, pricing.ErrTierNotFound):
		return NewBusinessError("COEFFICIENT_NOT_FOUND", "No coefficient tier covers this amount", errors.Join(ErrCoefficientNotFound, err))
	case errors.Is(err, pricing.ErrNoLeaser):
		return NewBusinessError("LEASER_NOT_CONFIGURED", "No leaser configured", ErrNoLeaserConfigured)
	case errors.Is(err, pricing.ErrInvalidInput):
		return NewBusinessError("VALIDATION_ERROR", "Invalid pricing input", err)
	default:
		return NewBusinessError("PRICING_FAILED", "Failed to calculate price", err)
	}
}

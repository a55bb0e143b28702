package businessflow

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/marlonhq/marlon-api/app/dto"
	"github.com/marlonhq/marlon-api/app/services"
	"github.com/marlonhq/marlon-api/models"
	"github.com/marlonhq/marlon-api/pricing"
	"github.com/marlonhq/marlon-api/repository"
	"github.com/marlonhq/marlon-api/utils"
)

// LeaserAdminFlow defines the back-office operations: leaser and duration
// management, the coefficient grids, the product catalog, and ad-hoc price
// calculations.
type LeaserAdminFlow interface {
	CreateLeaser(ctx context.Context, req *dto.AdminCreateLeaserRequest) (*dto.AdminCreateLeaserResponse, error)
	ListLeasers(ctx context.Context) (*dto.AdminListLeasersResponse, error)
	UpdateLeaser(ctx context.Context, req *dto.AdminUpdateLeaserRequest) (*dto.AdminUpdateLeaserResponse, error)

	CreateDuration(ctx context.Context, req *dto.AdminCreateDurationRequest) (*dto.AdminCreateDurationResponse, error)

	CreateCoefficient(ctx context.Context, req *dto.AdminCreateCoefficientRequest) (*dto.AdminCreateCoefficientResponse, error)
	ListCoefficients(ctx context.Context, leaserUUID string) (*dto.AdminListCoefficientsResponse, error)
	UpdateCoefficient(ctx context.Context, req *dto.AdminUpdateCoefficientRequest) (*dto.AdminUpdateCoefficientResponse, error)
	DeleteCoefficient(ctx context.Context, leaserUUID string, coefficientID uint) (*dto.AdminDeleteCoefficientResponse, error)
	ExportCoefficientsExcel(ctx context.Context) (string, []byte, error)

	CreateProduct(ctx context.Context, req *dto.AdminCreateProductRequest) (*dto.AdminCreateProductResponse, error)
	ListProducts(ctx context.Context, page, pageSize int) (*dto.AdminListProductsResponse, error)
	UpdateProduct(ctx context.Context, req *dto.AdminUpdateProductRequest) (*dto.AdminUpdateProductResponse, error)
	CalculatePrice(ctx context.Context, req *dto.AdminCalculatePriceRequest) (*dto.AdminCalculatePriceResponse, error)
}

type LeaserAdminFlowImpl struct {
	db              *gorm.DB
	leaserRepo      repository.LeaserRepository
	durationRepo    repository.LeasingDurationRepository
	coefficientRepo repository.LeaserCoefficientRepository
	productRepo     repository.ProductRepository
	rateTables      services.RateTableService
}

func NewLeaserAdminFlow(
	db *gorm.DB,
	leaserRepo repository.LeaserRepository,
	durationRepo repository.LeasingDurationRepository,
	coefficientRepo repository.LeaserCoefficientRepository,
	productRepo repository.ProductRepository,
	rateTables services.RateTableService,
) LeaserAdminFlow {
	return &LeaserAdminFlowImpl{
		db:              db,
		leaserRepo:      leaserRepo,
		durationRepo:    durationRepo,
		coefficientRepo: coefficientRepo,
		productRepo:     productRepo,
		rateTables:      rateTables,
	}
}

// CreateLeaser registers a new financing partner
func (f *LeaserAdminFlowImpl) CreateLeaser(ctx context.Context, req *dto.AdminCreateLeaserRequest) (*dto.AdminCreateLeaserResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewBusinessError("VALIDATION_ERROR", "Leaser name is required", ErrLeaserNameRequired)
	}

	existing, err := f.leaserRepo.ByName(ctx, name)
	if err != nil {
		return nil, NewBusinessError("LEASER_FETCH_FAILED", "Failed to check leaser name", err)
	}
	if existing != nil {
		return nil, NewBusinessError("LEASER_NAME_TAKEN", "Leaser name already exists", ErrLeaserNameTaken)
	}

	now := utils.UTCNow()
	leaser := &models.Leaser{
		UUID:      uuid.New(),
		Name:      name,
		IsActive:  utils.ToPtr(true),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := f.leaserRepo.Save(ctx, leaser); err != nil {
		return nil, NewBusinessError("LEASER_CREATE_FAILED", "Failed to create leaser", err)
	}

	return &dto.AdminCreateLeaserResponse{
		Message: "Leaser created successfully",
		Leaser:  ToLeaserDTO(leaser),
	}, nil
}

// ListLeasers returns every financing partner, active or not
func (f *LeaserAdminFlowImpl) ListLeasers(ctx context.Context) (*dto.AdminListLeasersResponse, error) {
	rows, err := f.leaserRepo.ByFilter(ctx, models.LeaserFilter{}, "name ASC", 0, 0)
	if err != nil {
		return nil, NewBusinessError("LEASER_LIST_FAILED", "Failed to list leasers", err)
	}

	items := make([]dto.LeaserItem, 0, len(rows))
	for _, l := range rows {
		items = append(items, ToLeaserDTO(l))
	}
	return &dto.AdminListLeasersResponse{
		Message: "Leasers retrieved successfully",
		Items:   items,
	}, nil
}

// UpdateLeaser renames or (de)activates a financing partner
func (f *LeaserAdminFlowImpl) UpdateLeaser(ctx context.Context, req *dto.AdminUpdateLeaserRequest) (*dto.AdminUpdateLeaserResponse, error) {
	leaser, err := f.leaserByUUID(ctx, req.UUID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, NewBusinessError("VALIDATION_ERROR", "Leaser name is required", ErrLeaserNameRequired)
		}
		if name != leaser.Name {
			existing, err := f.leaserRepo.ByName(ctx, name)
			if err != nil {
				return nil, NewBusinessError("LEASER_FETCH_FAILED", "Failed to check leaser name", err)
			}
			if existing != nil {
				return nil, NewBusinessError("LEASER_NAME_TAKEN", "Leaser name already exists", ErrLeaserNameTaken)
			}
		}
		leaser.Name = name
	}
	if req.IsActive != nil {
		leaser.IsActive = req.IsActive
	}
	leaser.UpdatedAt = utils.UTCNow()

	if err := f.leaserRepo.Update(ctx, leaser); err != nil {
		return nil, NewBusinessError("LEASER_UPDATE_FAILED", "Failed to update leaser", err)
	}

	return &dto.AdminUpdateLeaserResponse{
		Message: "Leaser updated successfully",
		Leaser:  ToLeaserDTO(leaser),
	}, nil
}

// CreateDuration registers a new offered lease length
func (f *LeaserAdminFlowImpl) CreateDuration(ctx context.Context, req *dto.AdminCreateDurationRequest) (*dto.AdminCreateDurationResponse, error) {
	if req.Months <= 0 || req.Months > utils.MaxDurationMonths {
		return nil, NewBusinessErrorf("VALIDATION_ERROR", "Duration must be between 1 and %d months", ErrDurationInvalid, utils.MaxDurationMonths)
	}

	existing, err := f.durationRepo.ByMonths(ctx, req.Months)
	if err != nil {
		return nil, NewBusinessError("DURATION_FETCH_FAILED", "Failed to check duration", err)
	}
	if existing != nil {
		return nil, NewBusinessError("DURATION_EXISTS", "Leasing duration already exists", ErrDurationAlreadyKnown)
	}

	now := utils.UTCNow()
	duration := &models.LeasingDuration{
		Months:    req.Months,
		IsActive:  utils.ToPtr(true),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := f.durationRepo.Save(ctx, duration); err != nil {
		return nil, NewBusinessError("DURATION_CREATE_FAILED", "Failed to create leasing duration", err)
	}

	return &dto.AdminCreateDurationResponse{
		Message:  "Leasing duration created successfully",
		Duration: dto.LeasingDurationItem{ID: duration.ID, Months: duration.Months},
	}, nil
}

// CreateCoefficient adds one tranche to a leaser's rate grid
func (f *LeaserAdminFlowImpl) CreateCoefficient(ctx context.Context, req *dto.AdminCreateCoefficientRequest) (*dto.AdminCreateCoefficientResponse, error) {
	leaser, err := f.leaserByUUID(ctx, req.LeaserUUID)
	if err != nil {
		return nil, err
	}

	duration, err := f.durationRepo.ByID(ctx, req.DurationID)
	if err != nil {
		return nil, NewBusinessError("DURATION_FETCH_FAILED", "Failed to fetch leasing duration", err)
	}
	if duration == nil {
		return nil, NewBusinessError("DURATION_NOT_FOUND", "Leasing duration not found", ErrDurationNotFound)
	}

	now := utils.UTCNow()
	row := &models.LeaserCoefficient{
		LeaserID:    leaser.ID,
		DurationID:  duration.ID,
		MinAmount:   req.MinAmount,
		MaxAmount:   req.MaxAmount,
		Coefficient: req.Coefficient,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Validate against the current grid and insert in one transaction so two
	// concurrent writes cannot both pass the unbounded-tier check.
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		existing, err := f.coefficientRepo.ListByLeaserAndDuration(txCtx, leaser.ID, duration.ID)
		if err != nil {
			return err
		}
		if err := validateTierSet(append(existing, row)); err != nil {
			return err
		}
		return f.coefficientRepo.Save(txCtx, row)
	})
	if err != nil {
		var be *BusinessError
		if errors.As(err, &be) {
			return nil, be
		}
		return nil, NewBusinessError("COEFFICIENT_CREATE_FAILED", "Failed to create coefficient tier", err)
	}
	if err := f.rateTables.Invalidate(ctx, leaser.ID); err != nil {
		return nil, NewBusinessError("RATE_TABLE_INVALIDATE_FAILED", "Failed to invalidate rate table cache", err)
	}

	row.Duration = duration
	return &dto.AdminCreateCoefficientResponse{
		Message:     "Coefficient tier created successfully",
		Coefficient: ToCoefficientDTO(row),
	}, nil
}

// ListCoefficients returns a leaser's full rate grid
func (f *LeaserAdminFlowImpl) ListCoefficients(ctx context.Context, leaserUUID string) (*dto.AdminListCoefficientsResponse, error) {
	leaser, err := f.leaserByUUID(ctx, leaserUUID)
	if err != nil {
		return nil, err
	}

	rows, err := f.coefficientRepo.ListByLeaser(ctx, leaser.ID)
	if err != nil {
		return nil, NewBusinessError("COEFFICIENT_LIST_FAILED", "Failed to list coefficient tiers", err)
	}

	items := make([]dto.CoefficientItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, ToCoefficientDTO(row))
	}
	return &dto.AdminListCoefficientsResponse{
		Message: "Coefficient tiers retrieved successfully",
		Items:   items,
	}, nil
}

// UpdateCoefficient rewrites one tranche of a leaser's rate grid
func (f *LeaserAdminFlowImpl) UpdateCoefficient(ctx context.Context, req *dto.AdminUpdateCoefficientRequest) (*dto.AdminUpdateCoefficientResponse, error) {
	leaser, err := f.leaserByUUID(ctx, req.LeaserUUID)
	if err != nil {
		return nil, err
	}

	row, err := f.coefficientRepo.ByID(ctx, req.CoefficientID)
	if err != nil {
		return nil, NewBusinessError("COEFFICIENT_FETCH_FAILED", "Failed to fetch coefficient tier", err)
	}
	if row == nil || row.LeaserID != leaser.ID {
		return nil, NewBusinessError("COEFFICIENT_NOT_FOUND", "Coefficient tier not found", ErrCoefficientNotFound)
	}

	if req.MinAmount != nil {
		row.MinAmount = *req.MinAmount
	}
	if req.ClearMax {
		row.MaxAmount = nil
	} else if req.MaxAmount != nil {
		row.MaxAmount = req.MaxAmount
	}
	if req.Coefficient != nil {
		row.Coefficient = *req.Coefficient
	}
	row.UpdatedAt = utils.UTCNow()

	existing, err := f.coefficientRepo.ListByLeaserAndDuration(ctx, leaser.ID, row.DurationID)
	if err != nil {
		return nil, NewBusinessError("COEFFICIENT_LIST_FAILED", "Failed to load existing tiers", err)
	}
	candidate := make([]*models.LeaserCoefficient, 0, len(existing))
	for _, t := range existing {
		if t.ID == row.ID {
			candidate = append(candidate, row)
		} else {
			candidate = append(candidate, t)
		}
	}
	if err := validateTierSet(candidate); err != nil {
		return nil, err
	}

	if err := f.coefficientRepo.Update(ctx, row); err != nil {
		return nil, NewBusinessError("COEFFICIENT_UPDATE_FAILED", "Failed to update coefficient tier", err)
	}
	if err := f.rateTables.Invalidate(ctx, leaser.ID); err != nil {
		return nil, NewBusinessError("RATE_TABLE_INVALIDATE_FAILED", "Failed to invalidate rate table cache", err)
	}

	return &dto.AdminUpdateCoefficientResponse{
		Message:     "Coefficient tier updated successfully",
		Coefficient: ToCoefficientDTO(row),
	}, nil
}

// DeleteCoefficient removes one tranche from a leaser's rate grid
func (f *LeaserAdminFlowImpl) DeleteCoefficient(ctx context.Context, leaserUUID string, coefficientID uint) (*dto.AdminDeleteCoefficientResponse, error) {
	leaser, err := f.leaserByUUID(ctx, leaserUUID)
	if err != nil {
		return nil, err
	}

	row, err := f.coefficientRepo.ByID(ctx, coefficientID)
	if err != nil {
		return nil, NewBusinessError("COEFFICIENT_FETCH_FAILED", "Failed to fetch coefficient tier", err)
	}
	if row == nil || row.LeaserID != leaser.ID {
		return nil, NewBusinessError("COEFFICIENT_NOT_FOUND", "Coefficient tier not found", ErrCoefficientNotFound)
	}

	if err := f.coefficientRepo.Delete(ctx, coefficientID); err != nil {
		return nil, NewBusinessError("COEFFICIENT_DELETE_FAILED", "Failed to delete coefficient tier", err)
	}
	if err := f.rateTables.Invalidate(ctx, leaser.ID); err != nil {
		return nil, NewBusinessError("RATE_TABLE_INVALIDATE_FAILED", "Failed to invalidate rate table cache", err)
	}

	return &dto.AdminDeleteCoefficientResponse{
		Message: "Coefficient tier deleted successfully",
	}, nil
}

// ExportCoefficientsExcel builds an Excel workbook with one sheet per leaser
// listing its full rate grid.
func (f *LeaserAdminFlowImpl) ExportCoefficientsExcel(ctx context.Context) (string, []byte, error) {
	leasers, err := f.leaserRepo.ByFilter(ctx, models.LeaserFilter{}, "name ASC", 0, 0)
	if err != nil {
		return "", nil, NewBusinessError("LEASER_LIST_FAILED", "Failed to list leasers", err)
	}

	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	usedNames := map[string]bool{}
	sheetCount := 0
	for _, leaser := range leasers {
		rows, err := f.coefficientRepo.ListByLeaser(ctx, leaser.ID)
		if err != nil {
			return "", nil, NewBusinessError("COEFFICIENT_LIST_FAILED", "Failed to list coefficient tiers", err)
		}

		baseName := sanitizeSheetName(leaser.Name)
		name := baseName
		idx := 1
		for usedNames[name] {
			idx++
			name = truncateSheetName(fmt.Sprintf("%s_%d", baseName, idx))
		}
		usedNames[name] = true
		if sheetCount == 0 {
			xl.SetSheetName(xl.GetSheetName(0), name)
		} else {
			_, _ = xl.NewSheet(name)
		}
		sheetCount++

		header := []string{"duration_months", "min_amount", "max_amount", "coefficient"}
		_ = xl.SetSheetRow(name, "A1", &header)

		for ri, row := range rows {
			months := ""
			if row.Duration != nil {
				months = strconv.Itoa(row.Duration.Months)
			}
			maxAmount := ""
			if row.MaxAmount != nil {
				maxAmount = strconv.FormatFloat(*row.MaxAmount, 'f', 2, 64)
			}
			values := []any{
				months,
				strconv.FormatFloat(row.MinAmount, 'f', 2, 64),
				maxAmount,
				strconv.FormatFloat(row.Coefficient, 'f', 4, 64),
			}
			cell := fmt.Sprintf("A%d", ri+2)
			_ = xl.SetSheetRow(name, cell, &values)
		}
	}

	var buf bytes.Buffer
	if err := xl.Write(&buf); err != nil {
		return "", nil, NewBusinessError("EXPORT_FAILED", "Failed to build Excel export", err)
	}

	filename := fmt.Sprintf("leaser_coefficients_%s.xlsx", utils.UTCNow().Format("20060102_150405"))
	return filename, buf.Bytes(), nil
}

// CreateProduct registers a catalog product
func (f *LeaserAdminFlowImpl) CreateProduct(ctx context.Context, req *dto.AdminCreateProductRequest) (*dto.AdminCreateProductResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, NewBusinessError("VALIDATION_ERROR", "Product name is required", ErrProductNameRequired)
	}
	if req.PurchasePrice < 0 {
		return nil, NewBusinessError("VALIDATION_ERROR", "Purchase price must be non-negative", ErrPurchasePriceNegative)
	}
	if req.MarginPercent < 0 {
		return nil, NewBusinessError("VALIDATION_ERROR", "Margin percent must be non-negative", ErrMarginPercentNegative)
	}

	sku := strings.TrimSpace(req.SKU)
	existing, err := f.productRepo.BySKU(ctx, sku)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_FETCH_FAILED", "Failed to check product SKU", err)
	}
	if existing != nil {
		return nil, NewBusinessError("PRODUCT_SKU_TAKEN", "Product SKU already exists", ErrProductSKUTaken)
	}

	if req.DefaultLeaserID != nil {
		if err := f.leaserExists(ctx, *req.DefaultLeaserID); err != nil {
			return nil, err
		}
	}

	now := utils.UTCNow()
	product := &models.Product{
		UUID:            uuid.New(),
		Name:            name,
		SKU:             sku,
		Category:        req.Category,
		Description:     req.Description,
		PurchasePrice:   req.PurchasePrice,
		MarginPercent:   req.MarginPercent,
		DefaultLeaserID: req.DefaultLeaserID,
		IsActive:        utils.ToPtr(true),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := f.productRepo.Save(ctx, product); err != nil {
		return nil, NewBusinessError("PRODUCT_CREATE_FAILED", "Failed to create product", err)
	}

	return &dto.AdminCreateProductResponse{
		Message: "Product created successfully",
		Product: ToAdminProductDTO(product),
	}, nil
}

// ListProducts returns the catalog for the back office, inactive rows included
func (f *LeaserAdminFlowImpl) ListProducts(ctx context.Context, page, pageSize int) (*dto.AdminListProductsResponse, error) {
	if page == 0 {
		page = 1
	}
	if pageSize == 0 {
		pageSize = 50
	}
	if page < 1 {
		return nil, NewBusinessError("VALIDATION_ERROR", "Page must be at least 1", ErrInvalidPage)
	}
	if pageSize < 1 || pageSize > 100 {
		return nil, NewBusinessError("VALIDATION_ERROR", "Page size must be between 1 and 100", ErrInvalidPageSize)
	}

	rows, err := f.productRepo.ByFilter(ctx, models.ProductFilter{}, "created_at DESC, id DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_LIST_FAILED", "Failed to list products", err)
	}
	total, err := f.productRepo.Count(ctx, models.ProductFilter{})
	if err != nil {
		return nil, NewBusinessError("PRODUCT_LIST_FAILED", "Failed to count products", err)
	}

	items := make([]dto.AdminProductItem, 0, len(rows))
	for _, p := range rows {
		items = append(items, ToAdminProductDTO(p))
	}
	return &dto.AdminListProductsResponse{
		Message: "Products retrieved successfully",
		Items:   items,
		Total:   total,
	}, nil
}

// UpdateProduct updates a catalog product. Price or margin edits change
// future quotes only; stored orders keep their snapshots.
func (f *LeaserAdminFlowImpl) UpdateProduct(ctx context.Context, req *dto.AdminUpdateProductRequest) (*dto.AdminUpdateProductResponse, error) {
	product, err := f.productRepo.ByUUID(ctx, req.UUID)
	if err != nil {
		return nil, NewBusinessError("PRODUCT_FETCH_FAILED", "Failed to fetch product", err)
	}
	if product == nil {
		return nil, NewBusinessError("PRODUCT_NOT_FOUND", "Product not found", ErrProductNotFound)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, NewBusinessError("VALIDATION_ERROR", "Product name is required", ErrProductNameRequired)
		}
		product.Name = name
	}
	if req.Category != nil {
		product.Category = req.Category
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.PurchasePrice != nil {
		if *req.PurchasePrice < 0 {
			return nil, NewBusinessError("VALIDATION_ERROR", "Purchase price must be non-negative", ErrPurchasePriceNegative)
		}
		product.PurchasePrice = *req.PurchasePrice
	}
	if req.MarginPercent != nil {
		if *req.MarginPercent < 0 {
			return nil, NewBusinessError("VALIDATION_ERROR", "Margin percent must be non-negative", ErrMarginPercentNegative)
		}
		product.MarginPercent = *req.MarginPercent
	}
	if req.DefaultLeaserID != nil {
		if err := f.leaserExists(ctx, *req.DefaultLeaserID); err != nil {
			return nil, err
		}
		product.DefaultLeaserID = req.DefaultLeaserID
	}
	if req.IsActive != nil {
		product.IsActive = req.IsActive
	}
	product.UpdatedAt = utils.UTCNow()

	if err := f.productRepo.Update(ctx, product); err != nil {
		return nil, NewBusinessError("PRODUCT_UPDATE_FAILED", "Failed to update product", err)
	}

	return &dto.AdminUpdateProductResponse{
		Message: "Product updated successfully",
		Product: ToAdminProductDTO(product),
	}, nil
}

// CalculatePrice runs an arbitrary purchase price and margin through a
// leaser's rate grid, for back-office what-if checks.
func (f *LeaserAdminFlowImpl) CalculatePrice(ctx context.Context, req *dto.AdminCalculatePriceRequest) (*dto.AdminCalculatePriceResponse, error) {
	leaser, err := f.leaserByUUID(ctx, req.LeaserUUID)
	if err != nil {
		return nil, err
	}

	duration, err := f.durationRepo.ByMonths(ctx, req.DurationMonths)
	if err != nil {
		return nil, NewBusinessError("DURATION_FETCH_FAILED", "Failed to fetch leasing duration", err)
	}
	if duration == nil {
		return nil, NewBusinessErrorf("DURATION_NOT_FOUND", "Leasing over %d months is not offered", ErrDurationNotFound, req.DurationMonths)
	}

	table, err := f.rateTables.TableFor(ctx, leaser.ID)
	if err != nil {
		return nil, NewBusinessError("RATE_TABLE_LOAD_FAILED", "Failed to load rate table", err)
	}

	quote, err := pricing.QuoteProduct(table, req.PurchasePrice, req.MarginPercent, &leaser.ID, duration.Months)
	if err != nil {
		return nil, mapPricingError(err)
	}

	return &dto.AdminCalculatePriceResponse{
		Message:      "Price calculated successfully",
		SellingPrice: pricing.Round2(quote.SellingPrice),
		Coefficient:  quote.Coefficient,
		MonthlyPrice: pricing.Round2(quote.MonthlyPrice),
		TotalPrice:   pricing.Round2(quote.TotalPrice),
	}, nil
}

func (f *LeaserAdminFlowImpl) leaserByUUID(ctx context.Context, leaserUUID string) (*models.Leaser, error) {
	leaser, err := f.leaserRepo.ByUUID(ctx, leaserUUID)
	if err != nil {
		return nil, NewBusinessError("LEASER_FETCH_FAILED", "Failed to fetch leaser", err)
	}
	if leaser == nil {
		return nil, NewBusinessError("LEASER_NOT_FOUND", "Leaser not found", ErrLeaserNotFound)
	}
	return leaser, nil
}

func (f *LeaserAdminFlowImpl) leaserExists(ctx context.Context, id uint) error {
	leaser, err := f.leaserRepo.ByID(ctx, id)
	if err != nil {
		return NewBusinessError("LEASER_FETCH_FAILED", "Failed to fetch leaser", err)
	}
	if leaser == nil {
		return NewBusinessError("LEASER_NOT_FOUND", "Leaser not found", ErrLeaserNotFound)
	}
	return nil
}

// validateTierSet checks the invariants of one (leaser, duration) grid:
// positive coefficients, non-negative amounts, min below max, and at most one
// unbounded tranche which must sit above every bounded minimum.
func validateTierSet(rows []*models.LeaserCoefficient) error {
	var unbounded *models.LeaserCoefficient
	maxBoundedMin := 0.0
	for _, row := range rows {
		if row.Coefficient <= 0 {
			return NewBusinessError("VALIDATION_ERROR", "Coefficient must be greater than zero", ErrCoefficientInvalid)
		}
		if row.MinAmount < 0 {
			return NewBusinessError("VALIDATION_ERROR", "Tier amounts must be non-negative", ErrTierAmountNegative)
		}
		if row.MaxAmount != nil {
			if *row.MaxAmount <= row.MinAmount {
				return NewBusinessError("VALIDATION_ERROR", "Tier max amount must be greater than its min amount", ErrTierRangeInvalid)
			}
			if row.MinAmount > maxBoundedMin {
				maxBoundedMin = row.MinAmount
			}
			continue
		}
		if unbounded != nil {
			return NewBusinessError("VALIDATION_ERROR", "Only one unbounded tier is allowed per duration", ErrTierRangeInvalid)
		}
		unbounded = row
	}
	if unbounded != nil && unbounded.MinAmount < maxBoundedMin {
		return NewBusinessError("VALIDATION_ERROR", "The unbounded tier must carry the highest min amount", ErrTierRangeInvalid)
	}
	return nil
}

func sanitizeSheetName(name string) string {
	// Excel sheet names cannot contain: : \\ / ? * [ ] and must be <= 31 chars
	replacer := strings.NewReplacer(":", "_", "\\", "_", "/", "_", "?", "_", "*", "_", "[", "_", "]", "_")
	safe := replacer.Replace(name)
	return truncateSheetName(strings.TrimSpace(safe))
}

func truncateSheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	if name == "" {
		return "Sheet"
	}
	return name
}

package businessflow

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marlonhq/marlon-api/app/dto"
	"github.com/marlonhq/marlon-api/app/services"
	"github.com/marlonhq/marlon-api/models"
	"github.com/marlonhq/marlon-api/pricing"
	"github.com/marlonhq/marlon-api/repository"
	"github.com/marlonhq/marlon-api/utils"
)

// OrderFlow defines the order lifecycle: creation, line mutations with full
// repricing, back-office overrides, status transitions, and the audit trail.
type OrderFlow interface {
	CreateOrder(ctx context.Context, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error)
	GetOrder(ctx context.Context, orderUUID string) (*dto.GetOrderResponse, error)
	ListOrders(ctx context.Context, req *dto.ListOrdersRequest) (*dto.ListOrdersResponse, error)
	AddOrderItem(ctx context.Context, req *dto.AddOrderItemRequest) (*dto.AddOrderItemResponse, error)
	RemoveOrderItem(ctx context.Context, req *dto.RemoveOrderItemRequest) (*dto.RemoveOrderItemResponse, error)
	UpdateOrderPrices(ctx context.Context, req *dto.UpdateOrderPricesRequest) (*dto.UpdateOrderPricesResponse, error)
	UpdateOrderStatus(ctx context.Context, req *dto.UpdateOrderStatusRequest) (*dto.UpdateOrderStatusResponse, error)
	ListOrderLogs(ctx context.Context, orderUUID string, limit, offset int) (*dto.ListOrderLogsResponse, error)
}

type OrderFlowImpl struct {
	db            *gorm.DB
	orderRepo     repository.OrderRepository
	orderItemRepo repository.OrderItemRepository
	orderLogRepo  repository.OrderLogRepository
	productRepo   repository.ProductRepository
	leaserRepo    repository.LeaserRepository
	durationRepo  repository.LeasingDurationRepository
	rateTables    services.RateTableService
	notifier      services.NotificationService
}

func NewOrderFlow(
	db *gorm.DB,
	orderRepo repository.OrderRepository,
	orderItemRepo repository.OrderItemRepository,
	orderLogRepo repository.OrderLogRepository,
	productRepo repository.ProductRepository,
	leaserRepo repository.LeaserRepository,
	durationRepo repository.LeasingDurationRepository,
	rateTables services.RateTableService,
	notifier services.NotificationService,
) OrderFlow {
	return &OrderFlowImpl{
		db:            db,
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		orderLogRepo:  orderLogRepo,
		productRepo:   productRepo,
		leaserRepo:    leaserRepo,
		durationRepo:  durationRepo,
		rateTables:    rateTables,
		notifier:      notifier,
	}
}

// orderLine pairs a pricing input with the product it snapshots
type orderLine struct {
	product *models.Product
	item    pricing.LineItem
}

// CreateOrder creates a new draft order and prices all its lines with one
// coefficient resolved from the aggregate selling price.
func (f *OrderFlowImpl) CreateOrder(ctx context.Context, req *dto.CreateOrderRequest) (*dto.CreateOrderResponse, error) {
	if len(req.Lines) == 0 {
		return nil, NewBusinessError("VALIDATION_ERROR", "Order must contain at least one line", ErrOrderEmpty)
	}
	if len(req.Lines) > utils.MaxOrderItems {
		return nil, NewBusinessError("VALIDATION_ERROR", "Order exceeds the maximum number of items", ErrTooManyOrderItems)
	}

	duration, err := f.offeredDuration(ctx, req.DurationMonths)
	if err != nil {
		return nil, err
	}

	lines := make([]orderLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		product, err := f.activeProduct(ctx, l.ProductUUID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, orderLine{
			product: product,
			item: pricing.LineItem{
				ProductID:     product.ID,
				PurchasePrice: product.PurchasePrice,
				MarginPercent: product.MarginPercent,
				Quantity:      l.Quantity,
			},
		})
	}

	leaserID, err := f.resolveLeaser(ctx, req.LeaserID, lines[0].product.DefaultLeaserID)
	if err != nil {
		return nil, err
	}

	priced, err := f.priceLines(ctx, leaserID, duration.Months, lines)
	if err != nil {
		return nil, err
	}

	now := utils.UTCNow()
	order := &models.Order{
		UUID:         uuid.New(),
		CompanyName:  strings.TrimSpace(req.CompanyName),
		ContactName:  req.ContactName,
		ContactEmail: req.ContactEmail,
		LeaserID:     leaserID,
		DurationID:   duration.ID,
		Status:       models.OrderStatusDraft,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	applyTotals(order, priced)

	md := ClientMetadataFromContext(ctx)
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.orderRepo.Save(txCtx, order); err != nil {
			return err
		}
		items := itemRows(order.ID, priced)
		if err := f.orderItemRepo.ReplaceForOrder(txCtx, order.ID, items); err != nil {
			return err
		}
		return f.logOrder(txCtx, order.ID, models.OrderLogActionCreated, "Order created", md, map[string]any{
			"line_count":  len(items),
			"coefficient": order.Coefficient,
		})
	})
	if err != nil {
		return nil, NewBusinessError("ORDER_CREATE_FAILED", "Failed to create order", err)
	}

	full, err := f.loadOrder(ctx, order.UUID.String())
	if err != nil {
		return nil, err
	}
	return &dto.CreateOrderResponse{
		Message: "Order created successfully",
		Order:   ToOrderDTO(full),
	}, nil
}

// GetOrder returns one order with its priced lines
func (f *OrderFlowImpl) GetOrder(ctx context.Context, orderUUID string) (*dto.GetOrderResponse, error) {
	order, err := f.loadOrder(ctx, orderUUID)
	if err != nil {
		return nil, err
	}
	return &dto.GetOrderResponse{
		Message: "Order retrieved successfully",
		Order:   ToOrderDTO(order),
	}, nil
}

// ListOrders returns orders for the back office, newest first
func (f *OrderFlowImpl) ListOrders(ctx context.Context, req *dto.ListOrdersRequest) (*dto.ListOrdersResponse, error) {
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

	filter := models.OrderFilter{LeaserID: req.LeaserID}
	if req.Status != nil {
		status := models.OrderStatus(*req.Status)
		if !status.Valid() {
			return nil, NewBusinessError("VALIDATION_ERROR", "Unknown order status", ErrInvalidStatusChange)
		}
		filter.Status = &status
	}

	rows, err := f.orderRepo.ByFilter(ctx, filter, "created_at DESC, id DESC", pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, NewBusinessError("ORDER_LIST_FAILED", "Failed to list orders", err)
	}
	total, err := f.orderRepo.Count(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("ORDER_LIST_FAILED", "Failed to count orders", err)
	}

	items := make([]dto.OrderItem, 0, len(rows))
	for _, o := range rows {
		items = append(items, ToOrderDTO(o))
	}
	return &dto.ListOrdersResponse{
		Message: "Orders retrieved successfully",
		Items:   items,
		Total:   total,
	}, nil
}

// AddOrderItem adds a product line to a draft order and reprices every line:
// the coefficient is re-resolved from the new aggregate, so existing lines may
// change their monthly price.
func (f *OrderFlowImpl) AddOrderItem(ctx context.Context, req *dto.AddOrderItemRequest) (*dto.AddOrderItemResponse, error) {
	lockOrder(req.OrderUUID)
	defer unlockOrder(req.OrderUUID)

	order, err := f.editableOrder(ctx, req.OrderUUID)
	if err != nil {
		return nil, err
	}

	product, err := f.activeProduct(ctx, req.ProductUUID)
	if err != nil {
		return nil, err
	}

	lines := linesFromOrder(order)
	merged := false
	for i := range lines {
		if lines[i].item.ProductID == product.ID {
			lines[i].item.Quantity += req.Quantity
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, orderLine{
			product: product,
			item: pricing.LineItem{
				ProductID:     product.ID,
				PurchasePrice: product.PurchasePrice,
				MarginPercent: product.MarginPercent,
				Quantity:      req.Quantity,
			},
		})
	}
	if len(lines) > utils.MaxOrderItems {
		return nil, NewBusinessError("VALIDATION_ERROR", "Order exceeds the maximum number of items", ErrTooManyOrderItems)
	}

	md := ClientMetadataFromContext(ctx)
	if err := f.repriceAndStore(ctx, order, lines, models.OrderLogActionItemAdded, "Item added to order", md, map[string]any{
		"product_id": product.ID,
		"quantity":   req.Quantity,
	}); err != nil {
		return nil, err
	}

	full, err := f.loadOrder(ctx, req.OrderUUID)
	if err != nil {
		return nil, err
	}
	return &dto.AddOrderItemResponse{
		Message: "Item added successfully",
		Order:   ToOrderDTO(full),
	}, nil
}

// RemoveOrderItem removes a line from a draft order and reprices the rest.
// Removing the last line leaves an empty order with zeroed totals.
func (f *OrderFlowImpl) RemoveOrderItem(ctx context.Context, req *dto.RemoveOrderItemRequest) (*dto.RemoveOrderItemResponse, error) {
	lockOrder(req.OrderUUID)
	defer unlockOrder(req.OrderUUID)

	order, err := f.editableOrder(ctx, req.OrderUUID)
	if err != nil {
		return nil, err
	}

	lines := linesFromOrder(order)
	found := false
	kept := make([]orderLine, 0, len(lines))
	for i, line := range order.Items {
		if line.ID == req.ItemID {
			found = true
			continue
		}
		kept = append(kept, lines[i])
	}
	if !found {
		return nil, NewBusinessError("ORDER_ITEM_NOT_FOUND", "Order item not found", ErrOrderItemNotFound)
	}

	md := ClientMetadataFromContext(ctx)
	if err := f.repriceAndStore(ctx, order, kept, models.OrderLogActionItemRemoved, "Item removed from order", md, map[string]any{
		"item_id": req.ItemID,
	}); err != nil {
		return nil, err
	}

	full, err := f.loadOrder(ctx, req.OrderUUID)
	if err != nil {
		return nil, err
	}
	return &dto.RemoveOrderItemResponse{
		Message: "Item removed successfully",
		Order:   ToOrderDTO(full),
	}, nil
}

// UpdateOrderPrices sets manual display overrides. Overrides never feed back
// into the engine; a later recalculation leaves them untouched.
func (f *OrderFlowImpl) UpdateOrderPrices(ctx context.Context, req *dto.UpdateOrderPricesRequest) (*dto.UpdateOrderPricesResponse, error) {
	lockOrder(req.OrderUUID)
	defer unlockOrder(req.OrderUUID)

	order, err := f.loadOrder(ctx, req.OrderUUID)
	if err != nil {
		return nil, err
	}

	for _, v := range []*float64{req.OverridePurchasePriceHT, req.OverrideCAMarlonHT, req.OverrideMonthlyTTC} {
		if v != nil && *v < 0 {
			return nil, NewBusinessError("VALIDATION_ERROR", "Price overrides must be non-negative", ErrOverrideNegative)
		}
	}

	if req.ClearOverrides {
		order.OverridePurchasePriceHT = nil
		order.OverrideCAMarlonHT = nil
		order.OverrideMonthlyTTC = nil
	} else {
		if req.OverridePurchasePriceHT != nil {
			order.OverridePurchasePriceHT = req.OverridePurchasePriceHT
		}
		if req.OverrideCAMarlonHT != nil {
			order.OverrideCAMarlonHT = req.OverrideCAMarlonHT
		}
		if req.OverrideMonthlyTTC != nil {
			order.OverrideMonthlyTTC = req.OverrideMonthlyTTC
		}
	}
	order.UpdatedAt = utils.UTCNow()

	md := ClientMetadataFromContext(ctx)
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.orderRepo.Update(txCtx, order); err != nil {
			return err
		}
		return f.logOrder(txCtx, order.ID, models.OrderLogActionOverridesSet, "Price overrides updated", md, map[string]any{
			"cleared": req.ClearOverrides,
		})
	})
	if err != nil {
		return nil, NewBusinessError("ORDER_UPDATE_FAILED", "Failed to update order prices", err)
	}

	full, err := f.loadOrder(ctx, req.OrderUUID)
	if err != nil {
		return nil, err
	}
	return &dto.UpdateOrderPricesResponse{
		Message: "Order prices updated successfully",
		Order:   ToOrderDTO(full),
	}, nil
}

// UpdateOrderStatus moves an order through draft -> submitted -> approved or
// rejected. Approved and rejected are terminal.
func (f *OrderFlowImpl) UpdateOrderStatus(ctx context.Context, req *dto.UpdateOrderStatusRequest) (*dto.UpdateOrderStatusResponse, error) {
	lockOrder(req.OrderUUID)
	defer unlockOrder(req.OrderUUID)

	order, err := f.loadOrder(ctx, req.OrderUUID)
	if err != nil {
		return nil, err
	}

	next := models.OrderStatus(req.Status)
	if !next.Valid() {
		return nil, NewBusinessError("VALIDATION_ERROR", "Unknown order status", ErrInvalidStatusChange)
	}
	if !statusTransitionAllowed(order.Status, next) {
		return nil, NewBusinessErrorf("INVALID_STATUS_TRANSITION", "Cannot move order from %s to %s", ErrInvalidStatusChange, order.Status, next)
	}

	previous := order.Status
	order.Status = next
	order.UpdatedAt = utils.UTCNow()

	md := ClientMetadataFromContext(ctx)
	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.orderRepo.Update(txCtx, order); err != nil {
			return err
		}
		return f.logOrder(txCtx, order.ID, models.OrderLogActionStatusChanged, "Order status changed", md, map[string]any{
			"from": string(previous),
			"to":   string(next),
		})
	})
	if err != nil {
		return nil, NewBusinessError("ORDER_UPDATE_FAILED", "Failed to update order status", err)
	}

	full, err := f.loadOrder(ctx, req.OrderUUID)
	if err != nil {
		return nil, err
	}

	// Notify the customer contact, best effort
	if f.notifier != nil && full.ContactEmail != nil && *full.ContactEmail != "" {
		if err := f.notifier.SendOrderStatusEmail(*full.ContactEmail, full.CompanyName, full.UUID.String(), string(next)); err != nil {
			log.Printf("Order status notification failed for %s: %v", full.UUID, err)
		}
	}

	return &dto.UpdateOrderStatusResponse{
		Message: "Order status updated successfully",
		Order:   ToOrderDTO(full),
	}, nil
}

// ListOrderLogs returns the audit trail of an order, newest first
func (f *OrderFlowImpl) ListOrderLogs(ctx context.Context, orderUUID string, limit, offset int) (*dto.ListOrderLogsResponse, error) {
	order, err := f.loadOrder(ctx, orderUUID)
	if err != nil {
		return nil, err
	}

	rows, err := f.orderLogRepo.ListByOrder(ctx, order.ID, limit, offset)
	if err != nil {
		return nil, NewBusinessError("ORDER_LOG_LIST_FAILED", "Failed to list order logs", err)
	}

	items := make([]dto.OrderLogItem, 0, len(rows))
	for _, row := range rows {
		item := dto.OrderLogItem{
			ID:        row.ID,
			Action:    row.Action,
			CreatedAt: row.CreatedAt.Format(time.RFC3339),
		}
		if row.Description != nil {
			item.Description = *row.Description
		}
		if len(row.Metadata) > 0 {
			item.Metadata = row.Metadata
		}
		items = append(items, item)
	}
	return &dto.ListOrderLogsResponse{
		Message: "Order logs retrieved successfully",
		Items:   items,
	}, nil
}

// repriceAndStore runs the engine over the given lines and persists the new
// line set, order totals, and an audit entry in one transaction. All-or-
// nothing: a tier miss leaves the stored order untouched.
func (f *OrderFlowImpl) repriceAndStore(ctx context.Context, order *models.Order, lines []orderLine, action, description string, md *ClientMetadata, extra map[string]any) error {
	months, err := f.durationMonths(ctx, order)
	if err != nil {
		return err
	}

	priced, err := f.priceLines(ctx, order.LeaserID, months, lines)
	if err != nil {
		return err
	}

	applyTotals(order, priced)
	order.UpdatedAt = utils.UTCNow()

	err = repository.WithTransaction(ctx, f.db, func(txCtx context.Context) error {
		if err := f.orderItemRepo.ReplaceForOrder(txCtx, order.ID, itemRows(order.ID, priced)); err != nil {
			return err
		}
		if err := f.orderRepo.Update(txCtx, order); err != nil {
			return err
		}
		if err := f.logOrder(txCtx, order.ID, action, description, md, extra); err != nil {
			return err
		}
		return f.logOrder(txCtx, order.ID, models.OrderLogActionRecalculated, "Order repriced", md, map[string]any{
			"coefficient":         order.Coefficient,
			"total_selling_price": order.TotalSellingPrice,
			"total_monthly_price": order.TotalMonthlyPrice,
		})
	})
	if err != nil {
		return NewBusinessError("ORDER_UPDATE_FAILED", "Failed to update order", err)
	}
	return nil
}

// priceLines loads the leaser's rate table and prices all lines with one
// shared coefficient
func (f *OrderFlowImpl) priceLines(ctx context.Context, leaserID uint, months int, lines []orderLine) ([]pricing.PricedLine, error) {
	table, err := f.rateTables.TableFor(ctx, leaserID)
	if err != nil {
		return nil, NewBusinessError("RATE_TABLE_LOAD_FAILED", "Failed to load rate table", err)
	}

	items := make([]pricing.LineItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, l.item)
	}

	priced, err := pricing.Recalculate(table, items, leaserID, months)
	if err != nil {
		return nil, mapPricingError(err)
	}
	return priced, nil
}

func (f *OrderFlowImpl) loadOrder(ctx context.Context, orderUUID string) (*models.Order, error) {
	order, err := f.orderRepo.ByUUIDWithItems(ctx, orderUUID)
	if err != nil {
		return nil, NewBusinessError("ORDER_FETCH_FAILED", "Failed to fetch order", err)
	}
	if order == nil {
		return nil, NewBusinessError("ORDER_NOT_FOUND", "Order not found", ErrOrderNotFound)
	}
	return order, nil
}

// editableOrder loads an order and rejects line mutations outside draft
func (f *OrderFlowImpl) editableOrder(ctx context.Context, orderUUID string) (*models.Order, error) {
	order, err := f.loadOrder(ctx, orderUUID)
	if err != nil {
		return nil, err
	}
	if order.Status != models.OrderStatusDraft {
		return nil, NewBusinessError("ORDER_NOT_EDITABLE", "Order can no longer be modified", ErrOrderNotEditable)
	}
	return order, nil
}

func (f *OrderFlowImpl) durationMonths(ctx context.Context, order *models.Order) (int, error) {
	if order.Duration != nil {
		return order.Duration.Months, nil
	}
	duration, err := f.durationRepo.ByID(ctx, order.DurationID)
	if err != nil {
		return 0, NewBusinessError("DURATION_FETCH_FAILED", "Failed to fetch leasing duration", err)
	}
	if duration == nil {
		return 0, NewBusinessError("DURATION_NOT_FOUND", "Leasing duration not found", ErrDurationNotFound)
	}
	return duration.Months, nil
}

func (f *OrderFlowImpl) activeProduct(ctx context.Context, productUUID string) (*models.Product, error) {
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

func (f *OrderFlowImpl) resolveLeaser(ctx context.Context, requested, fallback *uint) (uint, error) {
	id := requested
	if id == nil {
		id = fallback
	}
	if id == nil {
		return 0, NewBusinessError("LEASER_NOT_CONFIGURED", "No leaser configured for this order", ErrNoLeaserConfigured)
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

func (f *OrderFlowImpl) offeredDuration(ctx context.Context, months int) (*models.LeasingDuration, error) {
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

func (f *OrderFlowImpl) logOrder(ctx context.Context, orderID uint, action, description string, md *ClientMetadata, extra map[string]any) error {
	row := &models.OrderLog{
		OrderID:     orderID,
		Action:      action,
		Description: utils.ToPtr(description),
		Metadata:    orderLogMetadata(md, extra),
		CreatedAt:   utils.UTCNow(),
	}
	if md != nil && md.RequestID != "" {
		row.RequestID = utils.ToPtr(md.RequestID)
	}
	return f.orderLogRepo.Save(ctx, row)
}

// statusTransitionAllowed encodes the order lifecycle: draft -> submitted,
// submitted -> approved/rejected, approved and rejected terminal.
func statusTransitionAllowed(from, to models.OrderStatus) bool {
	if from == to {
		return false
	}
	switch from {
	case models.OrderStatusDraft:
		return to == models.OrderStatusSubmitted
	case models.OrderStatusSubmitted:
		return to == models.OrderStatusApproved || to == models.OrderStatusRejected
	default:
		return false
	}
}

// linesFromOrder rebuilds engine inputs from the stored line snapshots, not
// from the current catalog, so a catalog edit never changes an open order.
func linesFromOrder(order *models.Order) []orderLine {
	lines := make([]orderLine, 0, len(order.Items))
	for i := range order.Items {
		line := &order.Items[i]
		lines = append(lines, orderLine{
			product: line.Product,
			item: pricing.LineItem{
				ProductID:     line.ProductID,
				PurchasePrice: line.PurchasePrice,
				MarginPercent: line.MarginPercent,
				Quantity:      line.Quantity,
			},
		})
	}
	return lines
}

// itemRows maps engine output to order line rows, rounding once at the edge
func itemRows(orderID uint, priced []pricing.PricedLine) []*models.OrderItem {
	now := utils.UTCNow()
	rows := make([]*models.OrderItem, 0, len(priced))
	for _, p := range priced {
		rows = append(rows, &models.OrderItem{
			OrderID:         orderID,
			ProductID:       p.ProductID,
			PurchasePrice:   p.PurchasePrice,
			MarginPercent:   p.MarginPercent,
			Quantity:        p.Quantity,
			SellingPrice:    pricing.Round2(p.SellingPrice),
			Coefficient:     p.Coefficient,
			MonthlyPrice:    pricing.Round2(p.MonthlyPrice),
			CalculatedPrice: pricing.Round2(p.CalculatedPrice),
			UnitPrice:       pricing.Round2(p.UnitPrice()),
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
	return rows
}

// applyTotals rewrites the order's engine-derived fields from priced lines.
// An empty line set zeroes everything.
func applyTotals(order *models.Order, priced []pricing.PricedLine) {
	var totalSelling, totalMonthly, coefficient float64
	for _, p := range priced {
		totalSelling += p.SellingPrice * float64(p.Quantity)
		totalMonthly += p.MonthlyPrice * float64(p.Quantity)
		coefficient = p.Coefficient
	}
	order.TotalSellingPrice = pricing.Round2(totalSelling)
	order.TotalMonthlyPrice = pricing.Round2(totalMonthly)
	order.Coefficient = coefficient
}

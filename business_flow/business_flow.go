// Package businessflow contains the business logic for the application.
package businessflow

import (
	"context"
	"encoding/json"
	"time"

	"github.com/marlonhq/marlon-api/app/dto"
	"github.com/marlonhq/marlon-api/models"
	"github.com/marlonhq/marlon-api/pricing"
	"github.com/marlonhq/marlon-api/utils"
)

const RequestIDKey = "X-Request-ID"

// ClientMetadata holds client-related information for order audit logging
type ClientMetadata struct {
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`
	RequestID string `json:"request_id,omitempty"`
	Endpoint  string `json:"endpoint,omitempty"`
}

// NewClientMetadata creates a new ClientMetadata instance with basic information
func NewClientMetadata(ipAddress, userAgent string) *ClientMetadata {
	return &ClientMetadata{
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}
}

// ClientMetadataFromContext rebuilds client metadata from the request context keys set by the handlers
func ClientMetadataFromContext(ctx context.Context) *ClientMetadata {
	md := &ClientMetadata{}
	if v, ok := ctx.Value(utils.IPAddressKey).(string); ok {
		md.IPAddress = v
	}
	if v, ok := ctx.Value(utils.UserAgentKey).(string); ok {
		md.UserAgent = v
	}
	if v, ok := ctx.Value(utils.RequestIDKey).(string); ok {
		md.RequestID = v
	}
	if v, ok := ctx.Value(utils.EndpointKey).(string); ok {
		md.Endpoint = v
	}
	return md
}

// orderLogMetadata serializes client metadata plus extra fields for an order log row
func orderLogMetadata(md *ClientMetadata, extra map[string]any) json.RawMessage {
	payload := map[string]any{}
	if md != nil {
		payload["ip_address"] = md.IPAddress
		payload["user_agent"] = md.UserAgent
		if md.RequestID != "" {
			payload["request_id"] = md.RequestID
		}
		if md.Endpoint != "" {
			payload["endpoint"] = md.Endpoint
		}
	}
	for k, v := range extra {
		payload[k] = v
	}
	bs, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return bs
}

// ToOrderDTO converts an order model (with preloaded associations) to its response shape
func ToOrderDTO(order *models.Order) dto.OrderItem {
	item := dto.OrderItem{
		UUID:                    order.UUID.String(),
		Status:                  string(order.Status),
		CompanyName:             order.CompanyName,
		ContactName:             order.ContactName,
		ContactEmail:            order.ContactEmail,
		LeaserID:                order.LeaserID,
		Coefficient:             order.Coefficient,
		TotalSellingPrice:       order.TotalSellingPrice,
		TotalMonthlyPrice:       order.TotalMonthlyPrice,
		OverridePurchasePriceHT: order.OverridePurchasePriceHT,
		OverrideCAMarlonHT:      order.OverrideCAMarlonHT,
		OverrideMonthlyTTC:      order.OverrideMonthlyTTC,
		CreatedAt:               order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:               order.UpdatedAt.Format(time.RFC3339),
	}
	if order.Leaser != nil {
		item.LeaserName = order.Leaser.Name
	}
	if order.Duration != nil {
		item.DurationMonths = order.Duration.Months
	}
	if len(order.Items) > 0 {
		item.Lines = make([]dto.OrderLineItem, 0, len(order.Items))
		for _, line := range order.Items {
			item.Lines = append(item.Lines, ToOrderLineDTO(&line))
		}
	}
	return item
}

// ToOrderLineDTO converts an order item model to its response shape
func ToOrderLineDTO(line *models.OrderItem) dto.OrderLineItem {
	out := dto.OrderLineItem{
		ID:              line.ID,
		Quantity:        line.Quantity,
		SellingPrice:    line.SellingPrice,
		Coefficient:     line.Coefficient,
		MonthlyPrice:    line.MonthlyPrice,
		UnitPrice:       line.UnitPrice,
		CalculatedPrice: line.CalculatedPrice,
	}
	if line.Product != nil {
		out.ProductUUID = line.Product.UUID.String()
		out.ProductName = line.Product.Name
	}
	return out
}

// ToProductDTO converts a product model to its storefront shape (purchase price withheld)
func ToProductDTO(product *models.Product) dto.ProductItem {
	return dto.ProductItem{
		UUID:            product.UUID.String(),
		SKU:             product.SKU,
		Name:            product.Name,
		Category:        product.Category,
		Description:     product.Description,
		SellingPrice:    pricing.Round2(pricing.SellingPrice(product.PurchasePrice, product.MarginPercent)),
		DefaultLeaserID: product.DefaultLeaserID,
		CreatedAt:       product.CreatedAt.Format(time.RFC3339),
	}
}

// ToAdminProductDTO converts a product model to its back-office shape
func ToAdminProductDTO(product *models.Product) dto.AdminProductItem {
	return dto.AdminProductItem{
		ID:              product.ID,
		UUID:            product.UUID.String(),
		SKU:             product.SKU,
		Name:            product.Name,
		Category:        product.Category,
		Description:     product.Description,
		PurchasePrice:   product.PurchasePrice,
		MarginPercent:   product.MarginPercent,
		SellingPrice:    pricing.Round2(pricing.SellingPrice(product.PurchasePrice, product.MarginPercent)),
		DefaultLeaserID: product.DefaultLeaserID,
		IsActive:        utils.IsTrue(product.IsActive),
		CreatedAt:       product.CreatedAt.Format(time.RFC3339),
	}
}

// ToLeaserDTO converts a leaser model to its response shape
func ToLeaserDTO(leaser *models.Leaser) dto.LeaserItem {
	return dto.LeaserItem{
		ID:        leaser.ID,
		UUID:      leaser.UUID.String(),
		Name:      leaser.Name,
		IsActive:  utils.IsTrue(leaser.IsActive),
		CreatedAt: leaser.CreatedAt.Format(time.RFC3339),
	}
}

// ToCoefficientDTO converts a coefficient tier model to its response shape
func ToCoefficientDTO(row *models.LeaserCoefficient) dto.CoefficientItem {
	item := dto.CoefficientItem{
		ID:          row.ID,
		LeaserID:    row.LeaserID,
		DurationID:  row.DurationID,
		MinAmount:   row.MinAmount,
		MaxAmount:   row.MaxAmount,
		Coefficient: row.Coefficient,
	}
	if row.Duration != nil {
		item.DurationMonths = row.Duration.Months
	}
	return item
}

package dto

// OrderLineRequest is one product line when creating an order
type OrderLineRequest struct {
	ProductUUID string `json:"product_uuid" validate:"required,uuid4"`
	Quantity    int    `json:"quantity" validate:"required,gte=1"`
}

// CreateOrderRequest represents the request to create a new order
type CreateOrderRequest struct {
	LeaserID       *uint              `json:"leaser_id,omitempty"`
	DurationMonths int                `json:"duration_months" validate:"required,gt=0"`
	CompanyName    string             `json:"company_name" validate:"required,min=2,max=255"`
	ContactName    *string            `json:"contact_name,omitempty" validate:"omitempty,max=255"`
	ContactEmail   *string            `json:"contact_email,omitempty" validate:"omitempty,email"`
	Lines          []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type CreateOrderResponse struct {
	Message string    `json:"message"`
	Order   OrderItem `json:"order"`
}

// OrderLineItem is one priced line of an order in responses
type OrderLineItem struct {
	ID              uint    `json:"id"`
	ProductUUID     string  `json:"product_uuid"`
	ProductName     string  `json:"product_name"`
	Quantity        int     `json:"quantity"`
	SellingPrice    float64 `json:"selling_price"`
	Coefficient     float64 `json:"coefficient"`
	MonthlyPrice    float64 `json:"monthly_price"`
	UnitPrice       float64 `json:"unit_price"`
	CalculatedPrice float64 `json:"calculated_price"`
}

// OrderItem represents an order in responses
type OrderItem struct {
	UUID                    string          `json:"uuid"`
	Status                  string          `json:"status"`
	CompanyName             string          `json:"company_name"`
	ContactName             *string         `json:"contact_name,omitempty"`
	ContactEmail            *string         `json:"contact_email,omitempty"`
	LeaserID                uint            `json:"leaser_id"`
	LeaserName              string          `json:"leaser_name,omitempty"`
	DurationMonths          int             `json:"duration_months"`
	Coefficient             float64         `json:"coefficient"`
	TotalSellingPrice       float64         `json:"total_selling_price"`
	TotalMonthlyPrice       float64         `json:"total_monthly_price"`
	OverridePurchasePriceHT *float64        `json:"override_purchase_price_ht,omitempty"`
	OverrideCAMarlonHT      *float64        `json:"override_ca_marlon_ht,omitempty"`
	OverrideMonthlyTTC      *float64        `json:"override_monthly_ttc,omitempty"`
	Lines                   []OrderLineItem `json:"lines,omitempty"`
	CreatedAt               string          `json:"created_at"`
	UpdatedAt               string          `json:"updated_at"`
}

type GetOrderResponse struct {
	Message string    `json:"message"`
	Order   OrderItem `json:"order"`
}

// ListOrdersRequest represents the back-office order listing filters
type ListOrdersRequest struct {
	Page     int     `json:"-" query:"page"`
	PageSize int     `json:"-" query:"page_size"`
	Status   *string `json:"-" query:"status"`
	LeaserID *uint   `json:"-" query:"leaser_id"`
}

type ListOrdersResponse struct {
	Message string      `json:"message"`
	Items   []OrderItem `json:"items"`
	Total   int64       `json:"total"`
}

// AddOrderItemRequest adds a product line to an existing order
type AddOrderItemRequest struct {
	OrderUUID   string `json:"-"`
	ProductUUID string `json:"product_uuid" validate:"required,uuid4"`
	Quantity    int    `json:"quantity" validate:"required,gte=1"`
}

type AddOrderItemResponse struct {
	Message string    `json:"message"`
	Order   OrderItem `json:"order"`
}

// RemoveOrderItemRequest removes a line from an existing order
type RemoveOrderItemRequest struct {
	OrderUUID string `json:"-"`
	ItemID    uint   `json:"-"`
}

type RemoveOrderItemResponse struct {
	Message string    `json:"message"`
	Order   OrderItem `json:"order"`
}

// UpdateOrderPricesRequest sets manual price overrides on an order.
// Absent fields keep their current value; explicit nulls clear the override.
type UpdateOrderPricesRequest struct {
	OrderUUID               string   `json:"-"`
	OverridePurchasePriceHT *float64 `json:"override_purchase_price_ht,omitempty" validate:"omitempty,gte=0"`
	OverrideCAMarlonHT      *float64 `json:"override_ca_marlon_ht,omitempty" validate:"omitempty,gte=0"`
	OverrideMonthlyTTC      *float64 `json:"override_monthly_ttc,omitempty" validate:"omitempty,gte=0"`
	ClearOverrides          bool     `json:"clear_overrides,omitempty"`
}

type UpdateOrderPricesResponse struct {
	Message string    `json:"message"`
	Order   OrderItem `json:"order"`
}

// UpdateOrderStatusRequest moves an order through its lifecycle
type UpdateOrderStatusRequest struct {
	OrderUUID string `json:"-"`
	Status    string `json:"status" validate:"required,oneof=draft submitted approved rejected"`
}

type UpdateOrderStatusResponse struct {
	Message string    `json:"message"`
	Order   OrderItem `json:"order"`
}

// OrderLogItem is one audit entry of an order
type OrderLogItem struct {
	ID          uint   `json:"id"`
	Action      string `json:"action"`
	Description string `json:"description"`
	Metadata    any    `json:"metadata,omitempty"`
	CreatedAt   string `json:"created_at"`
}

type ListOrderLogsResponse struct {
	Message string         `json:"message"`
	Items   []OrderLogItem `json:"items"`
}

package dto

// ProductItem represents a catalog product in responses
type ProductItem struct {
	UUID            string  `json:"uuid"`
	SKU             string  `json:"sku"`
	Name            string  `json:"name"`
	Category        *string `json:"category,omitempty"`
	Description     *string `json:"description,omitempty"`
	SellingPrice    float64 `json:"selling_price"`
	DefaultLeaserID *uint   `json:"default_leaser_id,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

// ListProductsRequest represents the catalog listing filters
type ListProductsRequest struct {
	Page     int     `json:"-" query:"page"`
	PageSize int     `json:"-" query:"page_size"`
	Search   *string `json:"-" query:"search"`
}

type ListProductsResponse struct {
	Message string        `json:"message"`
	Items   []ProductItem `json:"items"`
	Total   int64         `json:"total"`
}

type GetProductResponse struct {
	Message string      `json:"message"`
	Product ProductItem `json:"product"`
}

// LeasingDurationItem represents an available lease length
type LeasingDurationItem struct {
	ID     uint `json:"id"`
	Months int  `json:"months"`
}

type ListLeasingDurationsResponse struct {
	Message string                `json:"message"`
	Items   []LeasingDurationItem `json:"items"`
}

// ProductPriceRequest asks for the monthly price of one product over a lease
type ProductPriceRequest struct {
	ProductUUID    string `json:"-"`
	DurationMonths int    `json:"-" query:"duration" validate:"required,gt=0"`
	LeaserID       *uint  `json:"-" query:"leaser_id"`
}

type ProductPriceResponse struct {
	Message        string  `json:"message"`
	ProductUUID    string  `json:"product_uuid"`
	DurationMonths int     `json:"duration_months"`
	LeaserID       uint    `json:"leaser_id"`
	SellingPrice   float64 `json:"selling_price"`
	Coefficient    float64 `json:"coefficient"`
	MonthlyPrice   float64 `json:"monthly_price"`
	TotalPrice     float64 `json:"total_price"`
}

// CartQuoteLine is one product line in a cart quote request
type CartQuoteLine struct {
	ProductUUID string `json:"product_uuid" validate:"required,uuid4"`
	Quantity    int    `json:"quantity" validate:"required,gte=1"`
}

// CartQuoteRequest prices a whole cart with a single coefficient
type CartQuoteRequest struct {
	LeaserID       *uint           `json:"leaser_id,omitempty"`
	DurationMonths int             `json:"duration_months" validate:"required,gt=0"`
	Lines          []CartQuoteLine `json:"lines" validate:"dive"`
}

// CartQuoteLineResult is one priced line in a cart quote response
type CartQuoteLineResult struct {
	ProductUUID     string  `json:"product_uuid"`
	Quantity        int     `json:"quantity"`
	SellingPrice    float64 `json:"selling_price"`
	MonthlyPrice    float64 `json:"monthly_price"`
	CalculatedPrice float64 `json:"calculated_price"`
}

type CartQuoteResponse struct {
	Message           string                `json:"message"`
	LeaserID          uint                  `json:"leaser_id"`
	DurationMonths    int                   `json:"duration_months"`
	Coefficient       float64               `json:"coefficient"`
	TotalSellingPrice float64               `json:"total_selling_price"`
	TotalMonthlyPrice float64               `json:"total_monthly_price"`
	Lines             []CartQuoteLineResult `json:"lines"`
}

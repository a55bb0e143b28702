package dto

// AdminCreateLeaserRequest represents the payload to register a leasing partner
type AdminCreateLeaserRequest struct {
	Name string `json:"name" validate:"required,min=2,max=100"`
}

type AdminCreateLeaserResponse struct {
	Message string     `json:"message"`
	Leaser  LeaserItem `json:"leaser"`
}

// LeaserItem represents a leasing partner in responses
type LeaserItem struct {
	ID        uint   `json:"id"`
	UUID      string `json:"uuid"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

type AdminListLeasersResponse struct {
	Message string       `json:"message"`
	Items   []LeaserItem `json:"items"`
}

// AdminUpdateLeaserRequest updates a leasing partner
type AdminUpdateLeaserRequest struct {
	UUID     string  `json:"-"`
	Name     *string `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	IsActive *bool   `json:"is_active,omitempty"`
}

type AdminUpdateLeaserResponse struct {
	Message string     `json:"message"`
	Leaser  LeaserItem `json:"leaser"`
}

// AdminCreateDurationRequest registers an available lease length
type AdminCreateDurationRequest struct {
	Months int `json:"months" validate:"required,gt=0"`
}

type AdminCreateDurationResponse struct {
	Message  string              `json:"message"`
	Duration LeasingDurationItem `json:"duration"`
}

// CoefficientItem represents one coefficient tier in responses
type CoefficientItem struct {
	ID             uint     `json:"id"`
	LeaserID       uint     `json:"leaser_id"`
	DurationID     uint     `json:"duration_id"`
	DurationMonths int      `json:"duration_months"`
	MinAmount      float64  `json:"min_amount"`
	MaxAmount      *float64 `json:"max_amount,omitempty"`
	Coefficient    float64  `json:"coefficient"`
}

// AdminCreateCoefficientRequest adds a coefficient tier for a leaser and duration
type AdminCreateCoefficientRequest struct {
	LeaserUUID  string   `json:"-"`
	DurationID  uint     `json:"duration_id" validate:"required"`
	MinAmount   float64  `json:"min_amount" validate:"gte=0"`
	MaxAmount   *float64 `json:"max_amount,omitempty" validate:"omitempty,gt=0"`
	Coefficient float64  `json:"coefficient" validate:"required,gt=0"`
}

type AdminCreateCoefficientResponse struct {
	Message     string          `json:"message"`
	Coefficient CoefficientItem `json:"coefficient"`
}

// AdminUpdateCoefficientRequest changes one coefficient tier
type AdminUpdateCoefficientRequest struct {
	LeaserUUID    string   `json:"-"`
	CoefficientID uint     `json:"-"`
	MinAmount     *float64 `json:"min_amount,omitempty" validate:"omitempty,gte=0"`
	MaxAmount     *float64 `json:"max_amount,omitempty" validate:"omitempty,gt=0"`
	ClearMax      bool     `json:"clear_max,omitempty"`
	Coefficient   *float64 `json:"coefficient,omitempty" validate:"omitempty,gt=0"`
}

type AdminUpdateCoefficientResponse struct {
	Message     string          `json:"message"`
	Coefficient CoefficientItem `json:"coefficient"`
}

type AdminListCoefficientsResponse struct {
	Message string            `json:"message"`
	Items   []CoefficientItem `json:"items"`
}

type AdminDeleteCoefficientResponse struct {
	Message string `json:"message"`
}

// AdminCreateProductRequest registers a catalog product
type AdminCreateProductRequest struct {
	SKU             string  `json:"sku" validate:"required,min=2,max=64"`
	Name            string  `json:"name" validate:"required,min=2,max=200"`
	Category        *string `json:"category,omitempty" validate:"omitempty,max=128"`
	Description     *string `json:"description,omitempty"`
	PurchasePrice   float64 `json:"purchase_price" validate:"gte=0"`
	MarginPercent   float64 `json:"margin_percent" validate:"gte=0"`
	DefaultLeaserID *uint   `json:"default_leaser_id,omitempty"`
}

type AdminCreateProductResponse struct {
	Message string           `json:"message"`
	Product AdminProductItem `json:"product"`
}

// AdminProductItem is the back-office view of a product, purchase price included
type AdminProductItem struct {
	ID              uint    `json:"id"`
	UUID            string  `json:"uuid"`
	SKU             string  `json:"sku"`
	Name            string  `json:"name"`
	Category        *string `json:"category,omitempty"`
	Description     *string `json:"description,omitempty"`
	PurchasePrice   float64 `json:"purchase_price"`
	MarginPercent   float64 `json:"margin_percent"`
	SellingPrice    float64 `json:"selling_price"`
	DefaultLeaserID *uint   `json:"default_leaser_id,omitempty"`
	IsActive        bool    `json:"is_active"`
	CreatedAt       string  `json:"created_at"`
}

// AdminUpdateProductRequest updates a catalog product
type AdminUpdateProductRequest struct {
	UUID            string   `json:"-"`
	Name            *string  `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Category        *string  `json:"category,omitempty" validate:"omitempty,max=128"`
	Description     *string  `json:"description,omitempty"`
	PurchasePrice   *float64 `json:"purchase_price,omitempty" validate:"omitempty,gte=0"`
	MarginPercent   *float64 `json:"margin_percent,omitempty" validate:"omitempty,gte=0"`
	DefaultLeaserID *uint    `json:"default_leaser_id,omitempty"`
	IsActive        *bool    `json:"is_active,omitempty"`
}

type AdminUpdateProductResponse struct {
	Message string           `json:"message"`
	Product AdminProductItem `json:"product"`
}

type AdminListProductsResponse struct {
	Message string             `json:"message"`
	Items   []AdminProductItem `json:"items"`
	Total   int64              `json:"total"`
}

// AdminCalculatePriceRequest prices an arbitrary purchase price through the tier grid
type AdminCalculatePriceRequest struct {
	LeaserUUID     string  `json:"-"`
	PurchasePrice  float64 `json:"purchase_price" validate:"gte=0"`
	MarginPercent  float64 `json:"margin_percent" validate:"gte=0"`
	DurationMonths int     `json:"duration_months" validate:"required,gt=0"`
}

type AdminCalculatePriceResponse struct {
	Message      string  `json:"message"`
	SellingPrice float64 `json:"selling_price"`
	Coefficient  float64 `json:"coefficient"`
	MonthlyPrice float64 `json:"monthly_price"`
	TotalPrice   float64 `json:"total_price"`
}

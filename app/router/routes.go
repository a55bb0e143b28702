// Package router provides HTTP routing, middleware configuration, and server setup for the web application
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cache"
	"github.com/gofiber/fiber/v3/middleware/compress"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/helmet"
	"github.com/gofiber/fiber/v3/middleware/limiter"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marlonhq/marlon-api/app/dto"
	"github.com/marlonhq/marlon-api/app/handlers"
	"github.com/marlonhq/marlon-api/app/middleware"
	"github.com/marlonhq/marlon-api/utils"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app                *fiber.App
	catalogHandler     handlers.CatalogHandlerInterface
	orderHandler       handlers.OrderHandlerInterface
	orderAdminHandler  handlers.OrderAdminHandlerInterface
	leaserAdminHandler handlers.LeaserAdminHandlerInterface
}

// NewFiberRouter creates a new Fiber router
func NewFiberRouter(
	catalogHandler handlers.CatalogHandlerInterface,
	orderHandler handlers.OrderHandlerInterface,
	orderAdminHandler handlers.OrderAdminHandlerInterface,
	leaserAdminHandler handlers.LeaserAdminHandlerInterface,
) Router {
	// Configure Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Marlon API",
		ServerHeader: "Marlon",
		ErrorHandler: errorHandler,
		BodyLimit:    4 * 1024 * 1024, // 4MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:                app,
		catalogHandler:     catalogHandler,
		orderHandler:       orderHandler,
		orderAdminHandler:  orderAdminHandler,
		leaserAdminHandler: leaserAdminHandler,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	// Global middleware
	r.setupMiddleware()

	// Prometheus scrape endpoint (outside the API group, no rate limiting)
	r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes
	api := r.app.Group("/api/v1")

	// Health check route (no rate limiting)
	api.Get("/health", r.healthCheck)

	// API documentation route (development only)
	if os.Getenv("APP_ENV") == "development" || os.Getenv("APP_ENV") == "local" {
		api.Get("/docs", r.getAPIDocumentation)
		log.Println("API documentation enabled for development")
	}

	// Apply general rate limiting to all API routes (aligned with nginx)
	api.Use(limiter.New(limiter.Config{
		Max:        2000,            // Maximum 2000 requests (matches nginx api zone)
		Expiration: 1 * time.Minute, // Per minute
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP() // Rate limit by IP
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
		Next: func(c fiber.Ctx) bool {
			// Skip rate limiting for health checks
			return c.Path() == "/api/v1/health"
		},
	}))

	// Storefront catalog and pricing endpoints
	api.Get("/products", r.catalogHandler.ListProducts)
	api.Get("/products/:uuid", r.catalogHandler.GetProduct)
	api.Get("/products/:uuid/price", r.catalogHandler.GetProductPrice)
	api.Post("/cart/quote", r.catalogHandler.QuoteCart)
	api.Get("/leasing-durations", r.catalogHandler.ListLeasingDurations)

	// Storefront order endpoints
	api.Post("/orders", r.orderHandler.CreateOrder)
	api.Get("/orders/:uuid", r.orderHandler.GetOrder)

	// Back-office routes with stricter rate limiting
	admin := api.Group("/admin")

	// Apply stricter rate limiting to admin endpoints (aligned with nginx)
	admin.Use(limiter.New(limiter.Config{
		Max:        200,             // Maximum 200 requests (matches nginx admin zone)
		Expiration: 1 * time.Minute, // Per minute
		KeyGenerator: func(c fiber.Ctx) string {
			return c.IP() // Rate limit by IP
		},
		LimitReached: func(c fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.APIResponse{
				Success: false,
				Message: "Too many requests. Please try again later.",
				Error: dto.ErrorDetail{
					Code: "RATE_LIMIT_EXCEEDED",
				},
			})
		},
	}))

	// Leaser configuration
	admin.Post("/leasers", r.leaserAdminHandler.CreateLeaser)
	admin.Get("/leasers", r.leaserAdminHandler.ListLeasers)
	admin.Put("/leasers/:uuid", r.leaserAdminHandler.UpdateLeaser)
	admin.Post("/durations", r.leaserAdminHandler.CreateDuration)

	// Coefficient grid
	admin.Post("/leasers/:uuid/coefficients", r.leaserAdminHandler.CreateCoefficient)
	admin.Get("/leasers/:uuid/coefficients", r.leaserAdminHandler.ListCoefficients)
	admin.Put("/leasers/:uuid/coefficients/:id", r.leaserAdminHandler.UpdateCoefficient)
	admin.Delete("/leasers/:uuid/coefficients/:id", r.leaserAdminHandler.DeleteCoefficient)
	admin.Get("/coefficients/export", r.leaserAdminHandler.ExportCoefficients)
	admin.Post("/leasers/:uuid/calculate-price", r.leaserAdminHandler.CalculatePrice)

	// Product catalog management
	admin.Post("/products", r.leaserAdminHandler.CreateProduct)
	admin.Get("/products", r.leaserAdminHandler.ListProducts)
	admin.Put("/products/:uuid", r.leaserAdminHandler.UpdateProduct)

	// Order management
	admin.Get("/orders", r.orderAdminHandler.ListOrders)
	admin.Post("/orders/:uuid/items", r.orderAdminHandler.AddOrderItem)
	admin.Delete("/orders/:uuid/items/:itemID", r.orderAdminHandler.RemoveOrderItem)
	admin.Put("/orders/:uuid/prices", r.orderAdminHandler.UpdateOrderPrices)
	admin.Put("/orders/:uuid/status", r.orderAdminHandler.UpdateOrderStatus)
	admin.Get("/orders/:uuid/logs", r.orderAdminHandler.ListOrderLogs)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// SetupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	// Security headers middleware
	r.app.Use(helmet.New(helmet.Config{
		XSSProtection:             "1; mode=block",
		ContentTypeNosniff:        "nosniff",
		XFrameOptions:             "DENY",
		HSTSMaxAge:                31536000, // 1 year
		HSTSExcludeSubdomains:     false,
		ContentSecurityPolicy:     "default-src 'self'; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'; img-src 'self' data: https:; font-src 'self' https:; connect-src 'self' https:; frame-ancestors 'none';",
		ReferrerPolicy:            "strict-origin-when-cross-origin",
		CrossOriginEmbedderPolicy: "require-corp",
		CrossOriginOpenerPolicy:   "same-origin",
		CrossOriginResourcePolicy: "cross-origin",
		OriginAgentCluster:        "?1",
		XDNSPrefetchControl:       "off",
		XDownloadOptions:          "noopen",
		XPermittedCrossDomain:     "none",
	}))

	// CORS middleware with production settings
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"https://marlon.fr",
			"https://api.marlon.fr",
			"https://admin.marlon.fr",
			"https://app.marlon.fr",
		},
		AllowMethods: []string{
			"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Accept",
			"X-Requested-With",
			"X-Request-ID",
			"Cache-Control",
		},
		ExposeHeaders: []string{
			"X-Request-ID",
			"X-Response-Time",
			"Content-Disposition",
		},
		AllowCredentials: true,
		MaxAge:           utils.CORSMaxAge,
	}))

	// Compression middleware for performance
	r.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
		Next: func(c fiber.Ctx) bool {
			// Skip compression for binary downloads
			contentType := c.Get("Content-Type")
			return contains(contentType, "image/") ||
				contains(contentType, "application/vnd.openxmlformats")
		},
	}))

	// Cache middleware for static content
	r.app.Use(cache.New(cache.Config{
		Next: func(c fiber.Ctx) bool {
			// Only cache GET requests to specific endpoints
			return c.Method() != "GET" ||
				!contains(c.Path(), "/health") &&
					!contains(c.Path(), "/leasing-durations")
		},
		Expiration:          30 * time.Minute,
		DisableCacheControl: false,
	}))

	// Advanced logging middleware
	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","protocol":"${protocol}","ip":"${ip}","user_agent":"${ua}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent},"referer":"${referer}"}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			// Skip logging for health checks in production
			return c.Path() == "/api/v1/health"
		},
	}))

	// Prometheus request metrics
	r.app.Use(middleware.Metrics())

	// Custom security middleware
	r.app.Use(r.securityMiddleware)

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e interface{}) {
			// Log panic with request context
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s","ip":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
				c.IP(),
			)
		},
	}))
}

// Custom security middleware
func (r *FiberRouter) securityMiddleware(c fiber.Ctx) error {
	// Add security headers
	c.Set("X-Response-Time", utils.UTCNow().Format(time.RFC3339))
	c.Set("Server", "Marlon")

	// Continue to next middleware
	return c.Next()
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNow().Unix(),
			"version":   "1.0.0",
			"service":   "marlon-api",
		},
	})
}

// API documentation endpoint
func (r *FiberRouter) getAPIDocumentation(c fiber.Ctx) error {
	docs := GetRouteDocumentation()
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "API documentation retrieved successfully",
		Data: fiber.Map{
			"title":       "Marlon API Documentation",
			"version":     "1.0.0",
			"description": "Equipment leasing catalog, pricing, and order API",
			"endpoints":   docs,
		},
	})
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	requestID := c.Locals("requestid")

	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": requestID,
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	// Default error code
	code := fiber.StatusInternalServerError

	// Retrieve the custom status code if it's a fiber.*Error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	// Log the error
	log.Printf("Error %d: %v", code, err)

	// Get RequestID for tracing
	requestID := c.Locals("requestid")

	// Return JSON error response
	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: "An internal server error occurred",
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNow().Unix(),
				"request_id": requestID,
			},
		},
	})
}

// Helper functions

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// contains checks if a string contains a substring
func contains(str, substr string) bool {
	return strings.Contains(str, substr)
}

// GetRouteDocumentation returns API documentation
func GetRouteDocumentation() []map[string]any {
	return []map[string]any{
		{
			"method":      "GET",
			"path":        "/api/v1/products",
			"description": "List active products with computed selling prices",
			"parameters": map[string]any{
				"page":      "number (optional) - Page number, default 1",
				"page_size": "number (optional) - Page size, default 20",
				"search":    "string (optional) - Filter by name or SKU",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/products/:uuid/price",
			"description": "Compute monthly and total leasing price for a product",
			"parameters": map[string]any{
				"duration":  "number (required) - Leasing duration in months",
				"leaser_id": "number (optional) - Leaser override, defaults to the product's leaser",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/cart/quote",
			"description": "Price a multi-line cart with a single coefficient resolved from the aggregate total",
			"parameters": map[string]any{
				"duration_months": "number (required) - Leasing duration in months",
				"leaser_id":       "number (optional) - Leaser override",
				"lines":           "array (required) - Product UUID and quantity per line",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/orders",
			"description": "Create a draft order priced at submission time",
			"parameters": map[string]any{
				"company_name":    "string (required) - Customer company name",
				"duration_months": "number (required) - Leasing duration in months",
				"lines":           "array (required) - Product UUID and quantity per line",
			},
		},
		{
			"method":      "POST",
			"path":        "/api/v1/admin/leasers/:uuid/coefficients",
			"description": "Add a coefficient tier to a leaser's rate grid",
			"parameters": map[string]any{
				"duration_id": "number (required) - Leasing duration ID",
				"min_amount":  "number (required) - Inclusive lower bound of the tier",
				"max_amount":  "number (optional) - Inclusive upper bound, omit for the open-ended tier",
				"coefficient": "number (required) - Rate applied as coefficient/100",
			},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/admin/coefficients/export",
			"description": "Download the full coefficient grid as an Excel workbook, one sheet per leaser",
			"parameters":  map[string]any{},
		},
		{
			"method":      "GET",
			"path":        "/api/v1/health",
			"description": "Health check endpoint",
			"parameters":  map[string]any{},
		},
	}
}

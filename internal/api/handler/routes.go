package handler

import (
	"github.com/labstack/echo/v4"
)

// Handlers groups everything RegisterRoutes mounts.
type Handlers struct {
	Health      *HealthHandler
	Calendar    *CalendarHandler
	Product     *ProductHandler
	Discount    *DiscountHandler
	Cart        *CartHandler
	Reservation *ReservationHandler
	Report      *ReportHandler
}

// RegisterRoutes mounts the storefront API under /api/v1 and the admin API
// under /api/v1/admin behind adminAuth.
func RegisterRoutes(e *echo.Echo, h Handlers, adminAuth echo.MiddlewareFunc) {
	e.GET("/health", h.Health.Check)

	v1 := e.Group("/api/v1")
	v1.GET("/health", h.Health.Check)

	v1.GET("/calendar/window", h.Calendar.Window)
	v1.GET("/calendar/days", h.Calendar.Days)

	v1.GET("/products", h.Product.List)
	v1.GET("/products/:id", h.Product.GetByID)

	v1.GET("/discounts/validate", h.Discount.Validate)

	v1.GET("/cart", h.Cart.Get)
	v1.PUT("/cart", h.Cart.Replace)
	v1.DELETE("/cart", h.Cart.Clear)
	v1.POST("/cart/items", h.Cart.AddItem)
	v1.DELETE("/cart/items/:product_id", h.Cart.RemoveItem)
	v1.POST("/checkout", h.Cart.Checkout)

	v1.POST("/reservations", h.Reservation.Create)
	v1.GET("/reservations/:code", h.Reservation.GetByCode)

	v1.POST("/payments/notifications", h.Reservation.PaymentNotification)

	admin := v1.Group("/admin", adminAuth)
	admin.GET("/products", h.Product.AdminList)
	admin.POST("/products", h.Product.Create)
	admin.GET("/products/:id", h.Product.AdminGet)
	admin.PUT("/products/:id", h.Product.Update)
	admin.DELETE("/products/:id", h.Product.Delete)

	admin.GET("/discounts", h.Discount.List)
	admin.POST("/discounts", h.Discount.Create)
	admin.GET("/discounts/:id", h.Discount.GetByID)
	admin.PUT("/discounts/:id", h.Discount.Update)
	admin.DELETE("/discounts/:id", h.Discount.Delete)

	admin.GET("/reservations", h.Reservation.List)
	admin.GET("/reservations/:id", h.Reservation.GetByID)
	admin.PATCH("/reservations/:id/status", h.Reservation.UpdateStatus)

	admin.GET("/reports/summary", h.Report.Summary)
}

package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-gear-rental/internal/application"
	"github.com/sanosuguru/go-gear-rental/internal/domain/product"
)

type ProductHandler struct {
	service ProductServiceInterface
}

func NewProductHandler(s ProductServiceInterface) *ProductHandler {
	return &ProductHandler{service: s}
}

type ProductRequest struct {
	Name         string `json:"name" validate:"required,max=200" example:"Dome Tent 4P"`
	Category     string `json:"category" validate:"required,max=50" example:"tent"`
	Description  string `json:"description"`
	ImageURL     string `json:"image_url" validate:"omitempty,url"`
	PricePerDay  int64  `json:"price_per_day" validate:"min=0" example:"30000"`
	PricePerTrip int64  `json:"price_per_trip" validate:"min=0" example:"100000"`
	Stock        int    `json:"stock" validate:"min=0" example:"5"`
	Version      int    `json:"version"`
}

// List godoc
// @Summary List the catalog
// @Description With start the remaining stock for that rental run is included.
// @Tags products
// @Produce json
// @Param category query string false "category"
// @Param start query string false "rental start date (YYYY-MM-DD)"
// @Param limit query int false "page size" default(100)
// @Param offset query int false "offset" default(0)
// @Success 200 {array} AvailabilityResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /products [get]
func (h *ProductHandler) List(c echo.Context) error {
	start, err := optionalDate(c, "start")
	if err != nil {
		return toHTTPError(err)
	}
	filter := product.ListFilter{
		Category: strings.ToLower(strings.TrimSpace(c.QueryParam("category"))),
		Limit:    intQuery(c, "limit"),
		Offset:   intQuery(c, "offset"),
	}
	list, err := h.service.ListAvailability(c.Request().Context(), filter, start)
	if err != nil {
		return toHTTPError(err)
	}
	resp := make([]AvailabilityResponse, len(list))
	for i, pa := range list {
		resp[i] = toAvailabilityResponse(pa)
	}
	return c.JSON(http.StatusOK, resp)
}

// GetByID godoc
// @Summary Get one product
// @Tags products
// @Produce json
// @Param id path string true "product ID"
// @Param start query string false "rental start date (YYYY-MM-DD)"
// @Success 200 {object} AvailabilityResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(c echo.Context) error {
	start, err := optionalDate(c, "start")
	if err != nil {
		return toHTTPError(err)
	}
	pa, err := h.service.GetAvailability(c.Request().Context(), c.Param("id"), start)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toAvailabilityResponse(*pa))
}

// AdminList returns catalog records without availability.
func (h *ProductHandler) AdminList(c echo.Context) error {
	products, err := h.service.ListProducts(c.Request().Context(), product.ListFilter{
		Category: c.QueryParam("category"),
		Limit:    intQuery(c, "limit"),
		Offset:   intQuery(c, "offset"),
	})
	if err != nil {
		return toHTTPError(err)
	}
	resp := make([]ProductResponse, len(products))
	for i, p := range products {
		resp[i] = toProductResponse(p)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ProductHandler) AdminGet(c echo.Context) error {
	p, err := h.service.GetProduct(c.Request().Context(), c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

// Create godoc
// @Summary Create a product
// @Tags admin
// @Accept json
// @Produce json
// @Param request body ProductRequest true "product"
// @Success 201 {object} ProductResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /admin/products [post]
func (h *ProductHandler) Create(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("malformed JSON body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := h.service.CreateProduct(c.Request().Context(), application.CreateProductInput{
		Name:         req.Name,
		Category:     req.Category,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		PricePerDay:  req.PricePerDay,
		PricePerTrip: req.PricePerTrip,
		Stock:        req.Stock,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusCreated, toProductResponse(p))
}

// Update godoc
// @Summary Update a product
// @Description A non-zero version must match the stored one.
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "product ID"
// @Param request body ProductRequest true "product"
// @Success 200 {object} ProductResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /admin/products/{id} [put]
func (h *ProductHandler) Update(c echo.Context) error {
	var req ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("malformed JSON body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	p, err := h.service.UpdateProduct(c.Request().Context(), application.UpdateProductInput{
		ID:           c.Param("id"),
		Name:         req.Name,
		Category:     req.Category,
		Description:  req.Description,
		ImageURL:     req.ImageURL,
		PricePerDay:  req.PricePerDay,
		PricePerTrip: req.PricePerTrip,
		Stock:        req.Stock,
		Version:      req.Version,
	})
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, toProductResponse(p))
}

// Delete godoc
// @Summary Delete a product
// @Description Products referenced by reservations cannot be deleted.
// @Tags admin
// @Param id path string true "product ID"
// @Success 204
// @Failure 409 {object} api.ErrorResponse
// @Router /admin/products/{id} [delete]
func (h *ProductHandler) Delete(c echo.Context) error {
	if err := h.service.DeleteProduct(c.Request().Context(), c.Param("id")); err != nil {
		return toHTTPError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

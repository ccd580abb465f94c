package handlers

import (
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/stwalsh4118/autotax/internal/errors"
	"github.com/stwalsh4118/autotax/internal/middleware"
	"github.com/stwalsh4118/autotax/internal/models"
	"github.com/stwalsh4118/autotax/internal/services"
)

// Cursor directions accepted by Move.
const (
	DirectionFirst    = "first"
	DirectionPrevious = "previous"
	DirectionNext     = "next"
	DirectionLast     = "last"
)

// VehicleHandler serves one TaxCatalog over HTTP.
// Every request holds mu for its whole catalog interaction, so the cursor
// seen by a response is the one that request left behind.
type VehicleHandler struct {
	mu      sync.Mutex
	catalog *services.TaxCatalog
}

// NewVehicleHandler creates a VehicleHandler owning catalog.
func NewVehicleHandler(catalog *services.TaxCatalog) *VehicleHandler {
	return &VehicleHandler{catalog: catalog}
}

// RegisterRoutes mounts the vehicle endpoints under rg.
func (h *VehicleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	vehicles := rg.Group("/vehicles")
	{
		vehicles.GET("/current", h.Current)
		vehicles.GET("/current/tax", h.CurrentTax)
		vehicles.POST("/cursor/:direction", h.Move)
		vehicles.GET("/most-expensive", h.MostExpensive)
		vehicles.GET("/oldest", h.Oldest)
		vehicles.GET("/search", h.Search)
		vehicles.GET("/average-price", h.AveragePrice)
	}
}

// Count returns the number of vehicles in the catalog.
func (h *VehicleHandler) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.catalog.Len()
}

// MoveRequest is the path parameter of the cursor endpoint.
type MoveRequest struct {
	Direction string `uri:"direction" binding:"required,oneof=first previous next last"`
}

// TaxRequest selects the discounts applied to the current vehicle.
type TaxRequest struct {
	PromptPayment   bool `form:"prompt_payment"`
	PublicService   bool `form:"public_service"`
	AccountTransfer bool `form:"account_transfer"`
}

// SearchRequest carries exactly one of brand or line.
type SearchRequest struct {
	Brand string `form:"brand" binding:"required_without=Line,excluded_with=Line,max=64"`
	Line  string `form:"line" binding:"required_without=Brand,excluded_with=Brand,max=64"`
}

// VehicleResponse is a vehicle together with where the cursor now sits.
type VehicleResponse struct {
	Vehicle  models.Vehicle `json:"vehicle"`
	Position int            `json:"position"`
	Count    int            `json:"count"`
}

// TaxResponse is the tax owed on the current vehicle.
type TaxResponse struct {
	Vehicle   models.Vehicle     `json:"vehicle"`
	Discounts services.Discounts `json:"discounts"`
	Tax       float64            `json:"tax"`
}

// SearchResponse is the match of a brand or line search.
// The cursor is not moved by a search, so no position is reported.
type SearchResponse struct {
	Vehicle models.Vehicle `json:"vehicle"`
}

// AveragePriceResponse is the arithmetic mean of all prices.
type AveragePriceResponse struct {
	AveragePrice float64 `json:"average_price"`
	Count        int     `json:"count"`
}

// Current handles GET /api/v1/vehicles/current.
func (h *VehicleHandler) Current(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	v, err := h.catalog.Current()
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.vehicleResponse(v))
}

// Move handles POST /api/v1/vehicles/cursor/:direction.
func (h *VehicleHandler) Move(c *gin.Context) {
	var req MoveRequest
	if err := c.ShouldBindUri(&req); err != nil {
		bindingError(c, err, "Invalid cursor direction")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var (
		v   models.Vehicle
		err error
	)
	switch req.Direction {
	case DirectionFirst:
		v, err = h.catalog.First()
	case DirectionPrevious:
		v, err = h.catalog.Previous()
	case DirectionNext:
		v, err = h.catalog.Next()
	case DirectionLast:
		v, err = h.catalog.Last()
	}
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.vehicleResponse(v))
}

// CurrentTax handles GET /api/v1/vehicles/current/tax.
func (h *VehicleHandler) CurrentTax(c *gin.Context) {
	var req TaxRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindingError(c, err, "Discount flags must be true or false")
		return
	}

	discounts := services.Discounts{
		PromptPayment:   req.PromptPayment,
		PublicService:   req.PublicService,
		AccountTransfer: req.AccountTransfer,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	v, err := h.catalog.Current()
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}

	c.JSON(http.StatusOK, TaxResponse{
		Vehicle:   v,
		Discounts: discounts,
		Tax:       h.catalog.ComputeTax(v, discounts),
	})
}

// MostExpensive handles GET /api/v1/vehicles/most-expensive.
// A match becomes the current vehicle.
func (h *VehicleHandler) MostExpensive(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	v, ok := h.catalog.FindMostExpensive()
	if !ok {
		apierrors.NotFound(c, "No vehicle has a positive price")
		return
	}
	c.JSON(http.StatusOK, h.vehicleResponse(v))
}

// Oldest handles GET /api/v1/vehicles/oldest.
// A match becomes the current vehicle.
func (h *VehicleHandler) Oldest(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	v, ok, err := h.catalog.FindOldest()
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	if !ok {
		apierrors.NotFound(c, "No vehicle has a model year before 2050")
		return
	}
	c.JSON(http.StatusOK, h.vehicleResponse(v))
}

// Search handles GET /api/v1/vehicles/search?brand= or ?line=.
func (h *VehicleHandler) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		bindingError(c, err, "Exactly one of brand or line is required")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	var (
		v     models.Vehicle
		ok    bool
		query string
	)
	if req.Brand != "" {
		v, ok = h.catalog.FindByBrand(req.Brand)
		query = "brand " + req.Brand
	} else {
		v, ok = h.catalog.FindByLine(req.Line)
		query = "line " + req.Line
	}

	if !ok {
		apierrors.NotFound(c, "No vehicle matches "+query)
		return
	}
	c.JSON(http.StatusOK, SearchResponse{Vehicle: v})
}

// AveragePrice handles GET /api/v1/vehicles/average-price.
func (h *VehicleHandler) AveragePrice(c *gin.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	avg, err := h.catalog.AveragePrice()
	if err != nil {
		h.handleCatalogError(c, err)
		return
	}
	c.JSON(http.StatusOK, AveragePriceResponse{
		AveragePrice: avg,
		Count:        h.catalog.Len(),
	})
}

// vehicleResponse must be called with mu held.
func (h *VehicleHandler) vehicleResponse(v models.Vehicle) VehicleResponse {
	return VehicleResponse{
		Vehicle:  v,
		Position: h.catalog.Position(),
		Count:    h.catalog.Len(),
	}
}

// handleCatalogError maps catalog errors onto the error envelope.
func (h *VehicleHandler) handleCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyCatalog):
		apierrors.Conflict(c, apierrors.ErrEmptyCatalog, "The catalog holds no vehicles")
	case errors.Is(err, services.ErrNavigation):
		apierrors.Conflict(c, apierrors.ErrNavigationBoundary, err.Error())
	case errors.Is(err, services.ErrInvalidModelYear):
		apierrors.UnprocessableEntity(c, apierrors.ErrInvalidModelYear, err.Error(), nil)
	default:
		apierrors.InternalServerError(c, "Catalog operation failed", err)
	}
}

// bindingError reports a failed bind as field errors when the validator
// produced them and as a plain bad request otherwise.
func bindingError(c *gin.Context, err error, message string) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		apierrors.ValidationError(c, validationErrors)
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Debug("Request binding failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	apierrors.BadRequest(c, message, nil)
}

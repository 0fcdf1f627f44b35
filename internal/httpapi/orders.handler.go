package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/k-code-yt/retail-orders/internal/domain"
	ordersvc "github.com/k-code-yt/retail-orders/internal/service/order"
	"github.com/k-code-yt/retail-orders/internal/validation"
)

type ordersHandler struct {
	svc *ordersvc.OrderService
	v   *validatorv10.Validate
}

func (h *ordersHandler) create(c *gin.Context) {
	var req validation.CreateOrderRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}

	in := &domain.NewOrder{
		ContactName:     req.ContactName,
		ContactEmail:    req.ContactEmail,
		DeliveryAddress: req.DeliveryAddress,
	}
	for _, l := range req.Lines {
		in.Lines = append(in.Lines, domain.NewOrderLine{
			ProductPublicID: l.ProductPublicID,
			Quantity:        l.Quantity,
			PricePerUnit:    decimal.NewFromFloat(l.PricePerUnit),
		})
	}

	h2, err := h.svc.CreateOrder(c.Request.Context(), in, currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	ordersPlaced.Inc()
	c.JSON(http.StatusCreated, toOrderView(h2))
}

func (h *ordersHandler) list(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	var statuses []string
	if raw := c.Query("status"); raw != "" {
		statuses = strings.Split(raw, ",")
	}

	orders, err := h.svc.ListOrders(c.Request.Context(), currentActor(c), page, size, statuses)
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, toOrderView(o))
	}
	c.JSON(http.StatusOK, views)
}

func (h *ordersHandler) get(c *gin.Context) {
	o, err := h.svc.GetOrder(c.Request.Context(), c.Param("publicID"), currentActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(o))
}

func (h *ordersHandler) ship(c *gin.Context) {
	// The body is optional; shipping without details falls back to a
	// default event message.
	var req validation.ShipOrderRequest
	if c.Request.ContentLength > 0 {
		if err := validation.BindAndValidate(c, &req, h.v); err != nil {
			return
		}
	}

	o, err := h.svc.ShipOrder(c.Request.Context(), c.Param("publicID"), &ordersvc.ShipDetails{
		TrackingNumber:   req.TrackingNumber,
		ShippingProvider: req.ShippingProvider,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(o))
}

func (h *ordersHandler) cancel(c *gin.Context) {
	var req validation.CancelOrderRequest
	if c.Request.ContentLength > 0 {
		if err := validation.BindAndValidate(c, &req, h.v); err != nil {
			return
		}
	}

	o, err := h.svc.CancelOrder(c.Request.Context(), c.Param("publicID"), &ordersvc.CancelDetails{
		Reason: req.Reason,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(o))
}

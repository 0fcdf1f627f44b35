package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	invsvc "github.com/k-code-yt/retail-orders/internal/service/inventory"
	"github.com/k-code-yt/retail-orders/internal/validation"
)

type inventoryHandler struct {
	svc *invsvc.InventoryService
	v   *validatorv10.Validate
}

func (h *inventoryHandler) createProduct(c *gin.Context) {
	var req validation.CreateProductRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	p, err := h.svc.CreateProduct(c.Request.Context(), &invsvc.NewProduct{
		Name:             req.Name,
		Quantity:         req.Quantity,
		CurrentPrice:     decimal.NewFromFloat(req.CurrentPrice),
		CategoryPublicID: req.CategoryPublicID,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProductView(p))
}

func (h *inventoryHandler) listProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	products, err := h.svc.ListProducts(c.Request.Context(), page, size, c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, toProductView(p))
	}
	c.JSON(http.StatusOK, views)
}

func (h *inventoryHandler) getProduct(c *gin.Context) {
	p, err := h.svc.GetProduct(c.Request.Context(), c.Param("publicID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductView(p))
}

func (h *inventoryHandler) updateProduct(c *gin.Context) {
	var req validation.UpdateProductRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	upd := &invsvc.ProductUpdate{
		Name:             req.Name,
		CategoryPublicID: req.CategoryPublicID,
	}
	if req.CurrentPrice != nil {
		price := decimal.NewFromFloat(*req.CurrentPrice)
		upd.CurrentPrice = &price
	}
	p, err := h.svc.UpdateProduct(c.Request.Context(), c.Param("publicID"), upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductView(p))
}

func (h *inventoryHandler) retireProduct(c *gin.Context) {
	if err := h.svc.RetireProduct(c.Request.Context(), c.Param("publicID")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *inventoryHandler) createCategory(c *gin.Context) {
	var req validation.CategoryRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	cat, err := h.svc.CreateCategory(c.Request.Context(), &invsvc.NewCategory{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCategoryView(cat))
}

func (h *inventoryHandler) listCategories(c *gin.Context) {
	categories, err := h.svc.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]CategoryView, 0, len(categories))
	for _, cat := range categories {
		views = append(views, toCategoryView(cat))
	}
	c.JSON(http.StatusOK, views)
}

func (h *inventoryHandler) getCategory(c *gin.Context) {
	cat, err := h.svc.GetCategory(c.Request.Context(), c.Param("publicID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCategoryView(cat))
}

func (h *inventoryHandler) updateCategory(c *gin.Context) {
	var req validation.CategoryRequest
	if err := validation.BindAndValidate(c, &req, h.v); err != nil {
		return
	}
	cat, err := h.svc.UpdateCategory(c.Request.Context(), c.Param("publicID"), &invsvc.NewCategory{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCategoryView(cat))
}

func (h *inventoryHandler) deleteCategory(c *gin.Context) {
	if err := h.svc.DeleteCategory(c.Request.Context(), c.Param("publicID")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

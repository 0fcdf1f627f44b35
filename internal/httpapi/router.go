package httpapi

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	invsvc "github.com/k-code-yt/retail-orders/internal/service/inventory"
	ordersvc "github.com/k-code-yt/retail-orders/internal/service/order"
	"github.com/k-code-yt/retail-orders/internal/validation"
)

var metricsOnce sync.Once

// NewRouter wires the HTTP surface: order lifecycle routes, catalog routes,
// identity + metrics middleware, /metrics and /health.
func NewRouter(orders *ordersvc.OrderService, inventory *invsvc.InventoryService) *gin.Engine {
	metricsOnce.Do(registerMetrics)

	v := validation.New()
	oh := &ordersHandler{svc: orders, v: v}
	ih := &inventoryHandler{svc: inventory, v: v}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(prometheusMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authed := r.Group("/", actorMiddleware())

	authed.POST("/orders", oh.create)
	authed.GET("/orders", oh.list)
	authed.GET("/orders/:publicID", oh.get)
	authed.POST("/orders/:publicID/ship", adminOnly(), oh.ship)
	authed.POST("/orders/:publicID/cancel", adminOnly(), oh.cancel)

	authed.GET("/products", ih.listProducts)
	authed.GET("/products/:publicID", ih.getProduct)
	authed.POST("/products", adminOnly(), ih.createProduct)
	authed.PATCH("/products/:publicID", adminOnly(), ih.updateProduct)
	authed.DELETE("/products/:publicID", adminOnly(), ih.retireProduct)

	authed.GET("/categories", ih.listCategories)
	authed.GET("/categories/:publicID", ih.getCategory)
	authed.POST("/categories", adminOnly(), ih.createCategory)
	authed.PATCH("/categories/:publicID", adminOnly(), ih.updateCategory)
	authed.DELETE("/categories/:publicID", adminOnly(), ih.deleteCategory)

	return r
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/workshop_server/internal/pkg/response"
	"github.com/qs3c/workshop_server/internal/service"
)

// CatalogHandler 公开的工作坊与商品目录
type CatalogHandler struct {
	workshopService *service.WorkshopService
	orderService    *service.OrderService
}

func NewCatalogHandler(workshopService *service.WorkshopService, orderService *service.OrderService) *CatalogHandler {
	return &CatalogHandler{
		workshopService: workshopService,
		orderService:    orderService,
	}
}

// ListWorkshops 工作坊列表
// GET /api/v1/workshops
func (h *CatalogHandler) ListWorkshops(c *gin.Context) {
	workshops, err := h.workshopService.ListWorkshops(c.Request.Context(), false)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, workshops)
}

// GetWorkshop 工作坊详情（含套餐）
// GET /api/v1/workshops/:id
func (h *CatalogHandler) GetWorkshop(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	workshop, err := h.workshopService.GetWorkshop(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, workshop)
}

// ListProducts 商品列表
// GET /api/v1/products
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	products, err := h.orderService.ListProducts(c.Request.Context())
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, products)
}

package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/workshop_server/internal/model/dto"
	"github.com/qs3c/workshop_server/internal/pkg/response"
	"github.com/qs3c/workshop_server/internal/service"
)

// AdminCatalogHandler 工作坊、套餐与商品维护
type AdminCatalogHandler struct {
	workshopService *service.WorkshopService
	orderService    *service.OrderService
}

func NewAdminCatalogHandler(workshopService *service.WorkshopService, orderService *service.OrderService) *AdminCatalogHandler {
	return &AdminCatalogHandler{
		workshopService: workshopService,
		orderService:    orderService,
	}
}

// ListWorkshops 含回收站的工作坊列表
// GET /api/v1/admin/workshops?include_deleted=
func (h *AdminCatalogHandler) ListWorkshops(c *gin.Context) {
	workshops, err := h.workshopService.ListWorkshops(c.Request.Context(), boolQuery(c, "include_deleted"))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, workshops)
}

// CreateWorkshop POST /api/v1/admin/workshops
func (h *AdminCatalogHandler) CreateWorkshop(c *gin.Context) {
	var req dto.WorkshopInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	workshop, err := h.workshopService.CreateWorkshop(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "工作坊已创建", workshop)
}

// UpdateWorkshop PUT /api/v1/admin/workshops/:id
func (h *AdminCatalogHandler) UpdateWorkshop(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.WorkshopInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	workshop, err := h.workshopService.UpdateWorkshop(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "工作坊已更新", workshop)
}

// DeleteWorkshop DELETE /api/v1/admin/workshops/:id
func (h *AdminCatalogHandler) DeleteWorkshop(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.workshopService.DeleteWorkshop(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已移入回收站", nil)
}

// RestoreWorkshop POST /api/v1/admin/workshops/:id/restore
func (h *AdminCatalogHandler) RestoreWorkshop(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.workshopService.RestoreWorkshop(c.Request.Context(), id); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已恢复", nil)
}

// AddPackage POST /api/v1/admin/workshops/:id/packages
func (h *AdminCatalogHandler) AddPackage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.PackageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	pkg, err := h.workshopService.AddPackage(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "套餐已添加", pkg)
}

// UpdatePackage PUT /api/v1/admin/workshops/:id/packages/:packageId
func (h *AdminCatalogHandler) UpdatePackage(c *gin.Context) {
	workshopID, packageID, ok := packagePath(c)
	if !ok {
		return
	}

	var req dto.PackageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	pkg, err := h.workshopService.UpdatePackage(c.Request.Context(), workshopID, packageID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "套餐已更新", pkg)
}

// DeletePackage DELETE /api/v1/admin/workshops/:id/packages/:packageId
func (h *AdminCatalogHandler) DeletePackage(c *gin.Context) {
	workshopID, packageID, ok := packagePath(c)
	if !ok {
		return
	}

	if err := h.workshopService.DeletePackage(c.Request.Context(), workshopID, packageID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已移入回收站", nil)
}

// RestorePackage POST /api/v1/admin/workshops/:id/packages/:packageId/restore
func (h *AdminCatalogHandler) RestorePackage(c *gin.Context) {
	workshopID, packageID, ok := packagePath(c)
	if !ok {
		return
	}

	if err := h.workshopService.RestorePackage(c.Request.Context(), workshopID, packageID); err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "已恢复", nil)
}

// CreateProduct POST /api/v1/admin/products
func (h *AdminCatalogHandler) CreateProduct(c *gin.Context) {
	var req dto.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	product, err := h.orderService.CreateProduct(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "商品已创建", product)
}

// UpdateProduct PUT /api/v1/admin/products/:id
func (h *AdminCatalogHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req dto.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err.Error())
		return
	}

	product, err := h.orderService.UpdateProduct(c.Request.Context(), id, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.SuccessWithMessage(c, "商品已更新", product)
}

// ListUserOrders GET /api/v1/admin/users/:userId/orders
func (h *AdminCatalogHandler) ListUserOrders(c *gin.Context) {
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), userID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	response.Success(c, orders)
}

func packagePath(c *gin.Context) (int64, int64, bool) {
	workshopID, ok := pathID(c, "id")
	if !ok {
		return 0, 0, false
	}
	packageID, ok := pathID(c, "packageId")
	if !ok {
		return 0, 0, false
	}
	return workshopID, packageID, true
}

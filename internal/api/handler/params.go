package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/workshop_server/internal/api/middleware"
	"github.com/qs3c/workshop_server/internal/pkg/response"
)

// pathID 解析路径中的 int64 参数，失败时已写入响应
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.ParamError(c, "无效的 "+name)
		return 0, false
	}
	return id, true
}

func currentUser(c *gin.Context) (int64, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.AuthError(c, "")
	}
	return userID, ok
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	return page, pageSize
}

func boolQuery(c *gin.Context, name string) bool {
	v, _ := strconv.ParseBool(c.Query(name))
	return v
}

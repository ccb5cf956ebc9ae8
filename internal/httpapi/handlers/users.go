package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/docvault/docvault/internal/common"
	"github.com/docvault/docvault/internal/models"
)

// Admin only, enforced by middleware.AdminRequired on the route group.
func (h *Handler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.DB.Order("created_at DESC").Find(&users).Error; err != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, gin.H{"users": users})
}

func (h *Handler) GetUser(c *gin.Context) {
	var user models.User
	if err := h.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			common.Fail(c, http.StatusNotFound, 40401, "user not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, user)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	res := h.DB.Delete(&models.User{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if res.RowsAffected == 0 {
		common.Fail(c, http.StatusNotFound, 40401, "user not found")
		return
	}
	common.OK(c, gin.H{"deleted": true})
}

type updateRoleReq struct {
	Role models.Role `json:"role" binding:"required"`
}

func (h *Handler) UpdateUserRole(c *gin.Context) {
	id := c.Param("id")

	var req updateRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "invalid json")
		return
	}
	if !req.Role.Valid() {
		common.Fail(c, http.StatusBadRequest, 10005, "unknown role")
		return
	}

	res := h.DB.Model(&models.User{}).Where("id = ?", id).Update("role", req.Role)
	if res.Error != nil {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	if res.RowsAffected == 0 {
		common.Fail(c, http.StatusNotFound, 40401, "user not found")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", id).Error; err != nil && err != gorm.ErrRecordNotFound {
		common.Fail(c, http.StatusInternalServerError, 20001, "db error")
		return
	}
	common.OK(c, user)
}

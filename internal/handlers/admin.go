package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/anamul94/AITutor/internal/services"
)

type AdminHandler struct {
	adminService services.AdminService
}

func NewAdminHandler(adminService services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (ah *AdminHandler) Stats(c *gin.Context) {
	stats, err := ah.adminService.GetStats(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, stats)
}

func (ah *AdminHandler) Insights(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_query", errors.New("days must be an integer"))
			return
		}
		days = parsed
	}
	insights, err := ah.adminService.GetInsights(c.Request.Context(), days)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, insights)
}

func (ah *AdminHandler) ListUsers(c *gin.Context) {
	users, err := ah.adminService.ListUsers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, users)
}

func (ah *AdminHandler) UpdateUserPlan(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		PlanType string `json:"plan_type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("invalid request body"))
		return
	}
	user, err := ah.adminService.UpdateUserPlan(c.Request.Context(), userID, req.PlanType)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, user)
}

func (ah *AdminHandler) UpdateUserStatus(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		IsActive *bool `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.IsActive == nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("is_active is required"))
		return
	}
	user, err := ah.adminService.UpdateUserStatus(c.Request.Context(), userID, *req.IsActive)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, user)
}

func (ah *AdminHandler) GetTrialDays(c *gin.Context) {
	days, err := ah.adminService.GetTrialDays(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"premium_trial_days": days})
}

func (ah *AdminHandler) SetTrialDays(c *gin.Context) {
	var req struct {
		PremiumTrialDays *int `json:"premium_trial_days"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.PremiumTrialDays == nil {
		RespondError(c, http.StatusBadRequest, "invalid_body", errors.New("premium_trial_days is required"))
		return
	}
	days, err := ah.adminService.SetTrialDays(c.Request.Context(), *req.PremiumTrialDays)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"premium_trial_days": days})
}

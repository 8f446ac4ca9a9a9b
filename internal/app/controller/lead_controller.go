package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/model"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/service"
	apperrors "github.com/mitbhavsaar/smart-crm-solutions/internal/errors"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/middleware"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type LeadController struct {
	leadService   service.LeadService
	exportService service.ExportService
}

func NewLeadController(leadService service.LeadService, exportService service.ExportService) *LeadController {
	return &LeadController{
		leadService:   leadService,
		exportService: exportService,
	}
}

type CreateLeadRequest struct {
	Name        string `json:"name" binding:"required"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email" binding:"omitempty,email"`
	Phone       string `json:"phone"`
}

type UpdateLeadRequest struct {
	Name        *string          `json:"name"`
	ContactName *string          `json:"contact_name"`
	Email       *string          `json:"email" binding:"omitempty,email"`
	Phone       *string          `json:"phone"`
	Stage       *model.LeadStage `json:"stage"`
}

// CreateLead creates a lead owned by the authenticated user
// POST /api/v1/leads
func (ctrl *LeadController) CreateLead(c *gin.Context) {
	var req CreateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid lead details")
		return
	}

	userID, _ := middleware.GetUserID(c)
	lead := &model.Lead{
		Name:        req.Name,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Stage:       model.StageNew,
		UserID:      userID,
	}
	if err := ctrl.leadService.Create(lead); err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "lead")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"lead": lead})
}

// ListLeads returns the authenticated user's leads
// GET /api/v1/leads
func (ctrl *LeadController) ListLeads(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	leads, err := ctrl.leadService.ListByUser(userID)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "lead")
		return
	}

	c.JSON(http.StatusOK, gin.H{"leads": leads})
}

// GetLead returns a lead with its material lines
// GET /api/v1/leads/:id
func (ctrl *LeadController) GetLead(c *gin.Context) {
	leadID, ok := ctrl.leadID(c)
	if !ok {
		return
	}

	lead, err := ctrl.leadService.GetWithLines(leadID)
	if err != nil {
		ctrl.respondLeadError(c, err)
		return
	}
	if !ctrl.authorize(c, lead) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"lead": lead})
}

// UpdateLead updates lead fields
// PUT /api/v1/leads/:id
func (ctrl *LeadController) UpdateLead(c *gin.Context) {
	leadID, ok := ctrl.leadID(c)
	if !ok {
		return
	}

	var req UpdateLeadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid lead details")
		return
	}

	lead, err := ctrl.leadService.GetByID(leadID)
	if err != nil {
		ctrl.respondLeadError(c, err)
		return
	}
	if !ctrl.authorize(c, lead) {
		return
	}

	if req.Name != nil {
		lead.Name = *req.Name
	}
	if req.ContactName != nil {
		lead.ContactName = *req.ContactName
	}
	if req.Email != nil {
		lead.Email = *req.Email
	}
	if req.Phone != nil {
		lead.Phone = *req.Phone
	}
	if req.Stage != nil {
		lead.Stage = *req.Stage
	}

	if err := ctrl.leadService.Update(lead); err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "lead")
		return
	}

	c.JSON(http.StatusOK, gin.H{"lead": lead})
}

// DeleteLead removes a lead and its lines
// DELETE /api/v1/leads/:id
func (ctrl *LeadController) DeleteLead(c *gin.Context) {
	leadID, ok := ctrl.leadID(c)
	if !ok {
		return
	}

	lead, err := ctrl.leadService.GetByID(leadID)
	if err != nil {
		ctrl.respondLeadError(c, err)
		return
	}
	if !ctrl.authorize(c, lead) {
		return
	}

	if err := ctrl.leadService.Delete(leadID); err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "lead")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Lead deleted"})
}

// ListMaterialLines returns the configured material lines of a lead
// GET /api/v1/leads/:id/lines
func (ctrl *LeadController) ListMaterialLines(c *gin.Context) {
	leadID, ok := ctrl.leadID(c)
	if !ok {
		return
	}

	lead, err := ctrl.leadService.GetByID(leadID)
	if err != nil {
		ctrl.respondLeadError(c, err)
		return
	}
	if !ctrl.authorize(c, lead) {
		return
	}

	lines, err := ctrl.leadService.ListMaterialLines(leadID)
	if err != nil {
		ctrl.respondLeadError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"lines": lines})
}

// RemoveMaterialLine deletes a single material line from a lead
// DELETE /api/v1/leads/:id/lines/:lineId
func (ctrl *LeadController) RemoveMaterialLine(c *gin.Context) {
	leadID, ok := ctrl.leadID(c)
	if !ok {
		return
	}
	lineID, err := strconv.ParseUint(c.Param("lineId"), 10, 64)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid line id")
		return
	}

	lead, err := ctrl.leadService.GetByID(leadID)
	if err != nil {
		ctrl.respondLeadError(c, err)
		return
	}
	if !ctrl.authorize(c, lead) {
		return
	}

	if err := ctrl.leadService.RemoveMaterialLine(leadID, uint(lineID)); err != nil {
		ctrl.respondLeadError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Material line removed"})
}

// ExportMaterialLines streams the lead's material lines as a spreadsheet
// GET /api/v1/leads/:id/export
func (ctrl *LeadController) ExportMaterialLines(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	leadID, ok := ctrl.leadID(c)
	if !ok {
		return
	}

	lead, err := ctrl.leadService.GetByID(leadID)
	if err != nil {
		ctrl.respondLeadError(c, err)
		return
	}
	if !ctrl.authorize(c, lead) {
		return
	}

	buf, filename, err := ctrl.exportService.ExportLeadLines(leadID)
	if err != nil {
		log.Error("Lead export failed", err, map[string]interface{}{
			"lead_id": leadID,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.LeadExportFailed, "failed to export material lines")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (ctrl *LeadController) leadID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid lead id")
		return 0, false
	}
	return uint(id), true
}

// authorize checks lead ownership. Admins may access any lead.
func (ctrl *LeadController) authorize(c *gin.Context, lead *model.Lead) bool {
	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)
	if lead.UserID != userID && role != model.RoleAdmin {
		apperrors.Forbidden(c, "you do not have access to this lead")
		return false
	}
	return true
}

func (ctrl *LeadController) respondLeadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLeadNotFound):
		apperrors.NotFound(c, apperrors.LeadNotFound, "lead not found")
	case errors.Is(err, service.ErrLeadLineNotFound):
		apperrors.NotFound(c, apperrors.LeadLineNotFound, "material line not found")
	default:
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "lead")
	}
}

package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/configurator"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/service"
	apperrors "github.com/mitbhavsaar/smart-crm-solutions/internal/errors"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/middleware"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/websocket"
)

var wsUpgrader = gorillaws.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type ConfiguratorController struct {
	sessionService service.SessionService
	hub            *websocket.Hub
}

func NewConfiguratorController(sessionService service.SessionService, hub *websocket.Hub) *ConfiguratorController {
	return &ConfiguratorController{
		sessionService: sessionService,
		hub:            hub,
	}
}

type OpenSessionRequest struct {
	LeadID              uint            `json:"lead_id" binding:"required"`
	TemplateID          uint            `json:"template_id" binding:"required"`
	CurrencyID          uint            `json:"currency_id"`
	CompanyID           uint            `json:"company_id"`
	UOMID               uint            `json:"uom_id"`
	Quantity            float64         `json:"quantity"`
	PreselectedValueIDs []uint          `json:"preselected_value_ids"`
	CustomValues        map[uint]string `json:"custom_values"`
	Edit                bool            `json:"edit"`
}

type SelectValueRequest struct {
	TemplateID uint `json:"template_id" binding:"required"`
	LineID     uint `json:"line_id" binding:"required"`
	ValueID    uint `json:"value_id" binding:"required"`
}

type CustomValueRequest struct {
	TemplateID uint   `json:"template_id" binding:"required"`
	ValueID    uint   `json:"value_id" binding:"required"`
	Value      string `json:"value"`
}

type QuantityRequest struct {
	TemplateID uint    `json:"template_id" binding:"required"`
	Quantity   float64 `json:"quantity"`
}

type AttachRequest struct {
	TemplateID uint `json:"template_id" binding:"required"`
}

type FileUploadRequest struct {
	TemplateID  uint   `json:"template_id" binding:"required"`
	LineID      uint   `json:"line_id" binding:"required"`
	FileName    string `json:"file_name"`
	FileData    string `json:"file_data"`
	Conditional bool   `json:"conditional"`
	Remove      bool   `json:"remove"`
}

type ReferenceRequest struct {
	TemplateID uint  `json:"template_id" binding:"required"`
	LineID     uint  `json:"line_id" binding:"required"`
	ResID      *uint `json:"res_id"`
}

// OpenSession starts a configuration session for a lead
// POST /api/v1/configurator/sessions
func (ctrl *ConfiguratorController) OpenSession(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req OpenSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid session details")
		return
	}

	session, err := ctrl.sessionService.Open(c.Request.Context(), service.OpenSessionInput{
		LeadID:              req.LeadID,
		TemplateID:          req.TemplateID,
		CurrencyID:          req.CurrencyID,
		CompanyID:           req.CompanyID,
		UOMID:               req.UOMID,
		Quantity:            req.Quantity,
		PreselectedValueIDs: req.PreselectedValueIDs,
		CustomValues:        req.CustomValues,
		Edit:                req.Edit,
	})
	if err != nil {
		if errors.Is(err, service.ErrTemplateNotFound) {
			apperrors.NotFound(c, apperrors.ConfigTemplateNotFound, "product template not found")
			return
		}
		log.Error("Failed to open configuration session", err, map[string]interface{}{
			"lead_id":     req.LeadID,
			"template_id": req.TemplateID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "session")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// GetSession returns the current session state
// GET /api/v1/configurator/sessions/:id
func (ctrl *ConfiguratorController) GetSession(c *gin.Context) {
	session, err := ctrl.sessionService.Get(c.Param("id"))
	if err != nil {
		ctrl.respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// SelectValue toggles or replaces a value selection
// POST /api/v1/configurator/sessions/:id/select
func (ctrl *ConfiguratorController) SelectValue(c *gin.Context) {
	var req SelectValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid selection details")
		return
	}

	session, err := ctrl.sessionService.SelectValue(c.Request.Context(), c.Param("id"), req.TemplateID, req.LineID, req.ValueID)
	if err != nil {
		ctrl.respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// SetCustomValue attaches free text to a selected value
// POST /api/v1/configurator/sessions/:id/custom-value
func (ctrl *ConfiguratorController) SetCustomValue(c *gin.Context) {
	var req CustomValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid custom value details")
		return
	}

	session, err := ctrl.sessionService.SetCustomValue(c.Param("id"), req.TemplateID, req.ValueID, req.Value)
	if err != nil {
		ctrl.respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// SetQuantity changes a product's quantity
// POST /api/v1/configurator/sessions/:id/quantity
func (ctrl *ConfiguratorController) SetQuantity(c *gin.Context) {
	var req QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid quantity details")
		return
	}

	session, err := ctrl.sessionService.SetQuantity(c.Request.Context(), c.Param("id"), req.TemplateID, req.Quantity)
	if err != nil {
		ctrl.respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// AttachProduct adds an optional product to the configuration
// POST /api/v1/configurator/sessions/:id/products
func (ctrl *ConfiguratorController) AttachProduct(c *gin.Context) {
	var req AttachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid product details")
		return
	}

	session, err := ctrl.sessionService.Attach(c.Request.Context(), c.Param("id"), req.TemplateID)
	if err != nil {
		ctrl.respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// DetachProduct removes an optional product from the configuration
// DELETE /api/v1/configurator/sessions/:id/products/:templateId
func (ctrl *ConfiguratorController) DetachProduct(c *gin.Context) {
	templateID, err := strconv.ParseUint(c.Param("templateId"), 10, 64)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid template id")
		return
	}

	session, err := ctrl.sessionService.Detach(c.Param("id"), uint(templateID))
	if err != nil {
		ctrl.respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// SetFile records or removes an uploaded file on a line
// POST /api/v1/configurator/sessions/:id/file
func (ctrl *ConfiguratorController) SetFile(c *gin.Context) {
	var req FileUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid file details")
		return
	}

	var payload *configurator.FilePayload
	if !req.Remove {
		if req.FileName == "" || req.FileData == "" {
			apperrors.BadRequest(c, apperrors.ValidationRequired, "file name and data are required")
			return
		}
		payload = &configurator.FilePayload{FileName: req.FileName, FileData: req.FileData}
	}

	var (
		session *configurator.Session
		err     error
	)
	if req.Conditional {
		session, err = ctrl.sessionService.SetConditionalFileUpload(c.Param("id"), req.TemplateID, req.LineID, payload)
	} else {
		session, err = ctrl.sessionService.SetFileUpload(c.Param("id"), req.TemplateID, req.LineID, payload)
	}
	if err != nil {
		ctrl.respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// SetReference records the referenced record of an m2o line
// POST /api/v1/configurator/sessions/:id/reference
func (ctrl *ConfiguratorController) SetReference(c *gin.Context) {
	var req ReferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid reference details")
		return
	}

	session, err := ctrl.sessionService.SetM2OValue(c.Request.Context(), c.Param("id"), req.TemplateID, req.LineID, req.ResID)
	if err != nil {
		ctrl.respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// Validate runs the submission gate without submitting
// GET /api/v1/configurator/sessions/:id/validate
func (ctrl *ConfiguratorController) Validate(c *gin.Context) {
	result, err := ctrl.sessionService.Validate(c.Param("id"))
	if err != nil {
		ctrl.respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"validation": result})
}

// Submit saves the configuration to the lead and closes the session
// POST /api/v1/configurator/sessions/:id/submit
func (ctrl *ConfiguratorController) Submit(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	payload, err := ctrl.sessionService.Submit(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, configurator.ErrNotValidated) {
			apperrors.UnprocessableEntity(c, apperrors.ConfigIllegalCombination, "configuration is not valid for submission")
			return
		}
		if errors.Is(err, service.ErrLeadNotFound) {
			apperrors.NotFound(c, apperrors.LeadNotFound, "lead not found")
			return
		}
		log.Error("Configuration submission failed", err, map[string]interface{}{
			"session_id": c.Param("id"),
		})
		ctrl.respondSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Configuration saved",
		"payload": payload,
	})
}

// Discard abandons the session
// DELETE /api/v1/configurator/sessions/:id
func (ctrl *ConfiguratorController) Discard(c *gin.Context) {
	if err := ctrl.sessionService.Discard(c.Param("id")); err != nil {
		ctrl.respondSessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session discarded"})
}

// Watch upgrades to a websocket that streams session events
// GET /api/v1/configurator/sessions/:id/ws
func (ctrl *ConfiguratorController) Watch(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	sessionID := c.Param("id")

	if _, err := ctrl.sessionService.Get(sessionID); err != nil {
		ctrl.respondSessionError(c, err)
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket upgrade failed", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return
	}

	userID, _ := middleware.GetUserID(c)
	client := &websocket.Client{
		Hub:       ctrl.hub,
		Conn:      &websocket.Conn{Conn: conn},
		UserID:    userID,
		SessionID: sessionID,
		Send:      make(chan []byte, 64),
	}
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

// respondSessionError maps engine and service errors onto HTTP statuses.
func (ctrl *ConfiguratorController) respondSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		apperrors.NotFound(c, apperrors.ConfigSessionNotFound, "configuration session not found")
	case errors.Is(err, configurator.ErrSessionClosed), errors.Is(err, configurator.ErrNotEditing):
		apperrors.Conflict(c, apperrors.ConfigSessionClosed, "configuration session is closed")
	case errors.Is(err, configurator.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ConfigProductNotFound, "product not found in configuration")
	case errors.Is(err, configurator.ErrGraphInconsistent):
		apperrors.Conflict(c, apperrors.ConfigMainNotDetachable, "operation not allowed on this product")
	case errors.Is(err, service.ErrProfileNotFound):
		apperrors.NotFound(c, apperrors.ResourceNotFound, "referenced record not found")
	case errors.Is(err, configurator.ErrRemoteOperation):
		apperrors.RespondWithError(c, http.StatusBadGateway, apperrors.InternalExternalAPI, "a backend operation failed, please retry")
	default:
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "session")
	}
}

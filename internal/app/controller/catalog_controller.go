package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/repository"
	"github.com/mitbhavsaar/smart-crm-solutions/internal/app/service"
	apperrors "github.com/mitbhavsaar/smart-crm-solutions/internal/errors"
)

type CatalogController struct {
	catalogService service.CatalogService
}

func NewCatalogController(catalogService service.CatalogService) *CatalogController {
	return &CatalogController{catalogService: catalogService}
}

// ListTemplates returns configurable product templates
// GET /api/v1/catalog/templates?search=&active=&limit=&offset=
func (ctrl *CatalogController) ListTemplates(c *gin.Context) {
	filter := repository.TemplateFilter{
		Search: c.Query("search"),
	}
	if active := c.Query("active"); active != "" {
		parsed, err := strconv.ParseBool(active)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "invalid active filter")
			return
		}
		filter.Active = &parsed
	}
	if limit := c.Query("limit"); limit != "" {
		filter.Limit, _ = strconv.Atoi(limit)
	}
	if offset := c.Query("offset"); offset != "" {
		filter.Offset, _ = strconv.Atoi(offset)
	}

	templates, err := ctrl.catalogService.ListTemplates(filter)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "template")
		return
	}

	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// GetTemplate returns a template with its full attribute tree
// GET /api/v1/catalog/templates/:id
func (ctrl *CatalogController) GetTemplate(c *gin.Context) {
	templateID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "invalid template id")
		return
	}

	template, err := ctrl.catalogService.GetTemplate(uint(templateID))
	if err != nil {
		if errors.Is(err, service.ErrTemplateNotFound) {
			apperrors.NotFound(c, apperrors.ConfigTemplateNotFound, "product template not found")
			return
		}
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "template")
		return
	}

	c.JSON(http.StatusOK, gin.H{"template": template})
}

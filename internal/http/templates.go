package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bordereaux/internal/database"
	"github.com/mrlokans/bordereaux/internal/database/templates"
	"github.com/mrlokans/bordereaux/internal/entities"
)

type TemplatesController struct {
	templatesRepo *templates.Repository
}

func NewTemplatesController(db *database.Database) *TemplatesController {
	return &TemplatesController{
		templatesRepo: templates.NewRepository(db.DB),
	}
}

// templateView exposes the decoded mappings alongside the catalog entry.
type templateView struct {
	*entities.Template
	Mappings map[string]string `json:"column_mappings"`
}

// ListTemplates returns the whole template catalog with decoded mappings.
func (tc *TemplatesController) ListTemplates(c *gin.Context) {
	catalog, err := tc.templatesRepo.List()
	if err != nil {
		respondInternalError(c, err, "list templates")
		return
	}

	views := make([]templateView, 0, len(catalog))
	for i := range catalog {
		mappings, err := catalog[i].Mappings()
		if err != nil {
			respondInternalError(c, err, "decode template")
			return
		}
		views = append(views, templateView{Template: &catalog[i], Mappings: mappings})
	}

	c.JSON(http.StatusOK, gin.H{"data": views, "total": len(views)})
}

type createTemplateRequest struct {
	TemplateID     string            `json:"template_id" binding:"required"`
	Name           string            `json:"name"`
	FileType       string            `json:"file_type"`
	ColumnMappings map[string]string `json:"column_mappings" binding:"required"`
}

// CreateTemplate registers a new active template.
func (tc *TemplatesController) CreateTemplate(c *gin.Context) {
	var req createTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "template_id and column_mappings are required")
		return
	}

	fileType := entities.FileType(req.FileType)
	if fileType == "" {
		fileType = entities.FileTypeUnknown
	}
	name := req.Name
	if name == "" {
		name = req.TemplateID
	}

	template := &entities.Template{
		TemplateID: req.TemplateID,
		Name:       name,
		FileType:   fileType,
		Active:     true,
	}
	if err := template.SetMappings(req.ColumnMappings); err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	if err := tc.templatesRepo.Create(template); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	respondCreated(c, template)
}

// DeactivateTemplate retires a template from matching.
func (tc *TemplatesController) DeactivateTemplate(c *gin.Context) {
	if err := tc.templatesRepo.Deactivate(c.Param("id")); err != nil {
		respondNotFound(c, "template")
		return
	}
	respondSuccess(c, "template deactivated")
}

package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/bordereaux/internal/database"
	"github.com/mrlokans/bordereaux/internal/database/proposals"
	"github.com/mrlokans/bordereaux/internal/database/templates"
	"github.com/mrlokans/bordereaux/internal/entities"
	"github.com/mrlokans/bordereaux/internal/pipeline"
	"github.com/mrlokans/bordereaux/internal/tasks"
)

type ProposalsController struct {
	proposalsRepo *proposals.Repository
	templatesRepo *templates.Repository
	orchestrator  *pipeline.Orchestrator
	taskClient    *tasks.Client
}

func NewProposalsController(db *database.Database, orchestrator *pipeline.Orchestrator, taskClient *tasks.Client) *ProposalsController {
	return &ProposalsController{
		proposalsRepo: proposals.NewRepository(db.DB),
		templatesRepo: templates.NewRepository(db.DB),
		orchestrator:  orchestrator,
		taskClient:    taskClient,
	}
}

// proposalView augments the stored proposal with its decoded candidates for
// review UIs.
type proposalView struct {
	*entities.MappingProposal
	Candidates map[string]entities.FieldCandidate `json:"field_mappings"`
	RawHeaders []string                           `json:"headers"`
}

func toView(p *entities.MappingProposal) (proposalView, error) {
	candidates, err := p.Candidates()
	if err != nil {
		return proposalView{}, err
	}
	headers, err := p.HeaderList()
	if err != nil {
		return proposalView{}, err
	}
	return proposalView{MappingProposal: p, Candidates: candidates, RawHeaders: headers}, nil
}

// ListProposals returns paginated proposals, optionally filtered by review
// status.
func (pc *ProposalsController) ListProposals(c *gin.Context) {
	limit, offset := parsePagination(c)

	result, total, err := pc.proposalsRepo.List(entities.ProposalStatus(c.Query("status")), limit, offset)
	if err != nil {
		respondInternalError(c, err, "list proposals")
		return
	}

	views := make([]proposalView, 0, len(result))
	for i := range result {
		view, err := toView(&result[i])
		if err != nil {
			respondInternalError(c, err, "decode proposal")
			return
		}
		views = append(views, view)
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    views,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(views)) < total,
	})
}

// GetProposal returns one proposal with decoded candidates.
func (pc *ProposalsController) GetProposal(c *gin.Context) {
	proposal, err := pc.proposalsRepo.GetByProposalID(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "proposal")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get proposal")
		return
	}

	view, err := toView(proposal)
	if err != nil {
		respondInternalError(c, err, "decode proposal")
		return
	}
	c.JSON(http.StatusOK, view)
}

type approveRequest struct {
	TemplateID string `json:"template_id" binding:"required"`
	Name       string `json:"name"`
	FileType   string `json:"file_type"`
}

// ApproveProposal turns a pending proposal into an active template and
// queues the originating file for another pipeline run.
func (pc *ProposalsController) ApproveProposal(c *gin.Context) {
	var req approveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "template_id is required")
		return
	}

	proposal, err := pc.proposalsRepo.GetByProposalID(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "proposal")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get proposal")
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

	template, err := pc.templatesRepo.CreateFromProposal(proposal, req.TemplateID, name, fileType)
	if err != nil {
		respondBadRequest(c, fmt.Sprintf("cannot create template: %v", err))
		return
	}

	if _, err := pc.proposalsRepo.Approve(proposal.ProposalID); err != nil {
		respondConflict(c, err.Error())
		return
	}

	// Send the waiting file back through the pipeline against the new
	// template. A failure here leaves the file parked in needs_template.
	if err := pc.orchestrator.Reprocess(proposal.FileID); err != nil {
		respondAccepted(c, "template created; file could not be requeued", gin.H{
			"template": template,
			"warning":  err.Error(),
		})
		return
	}
	if pc.taskClient != nil {
		_, _ = pc.taskClient.Add(tasks.ProcessFileTask{FileID: proposal.FileID}).Save()
	}

	respondCreated(c, gin.H{"template": template, "file_id": proposal.FileID})
}

// RejectProposal marks a pending proposal rejected.
func (pc *ProposalsController) RejectProposal(c *gin.Context) {
	proposal, err := pc.proposalsRepo.GetByProposalID(c.Param("id"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "proposal")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get proposal")
		return
	}

	if _, err := pc.proposalsRepo.Reject(proposal.ProposalID); err != nil {
		respondConflict(c, err.Error())
		return
	}
	respondSuccess(c, "proposal rejected")
}

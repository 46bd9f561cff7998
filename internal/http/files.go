package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/bordereaux/internal/database"
	"github.com/mrlokans/bordereaux/internal/database/files"
	"github.com/mrlokans/bordereaux/internal/database/verrors"
	"github.com/mrlokans/bordereaux/internal/entities"
	"github.com/mrlokans/bordereaux/internal/pipeline"
	"github.com/mrlokans/bordereaux/internal/services"
	"github.com/mrlokans/bordereaux/internal/tasks"
)

// maxUploadBytes caps uploaded bordereaux files at 50 MB.
const maxUploadBytes = 50 << 20

type FilesController struct {
	filesRepo    *files.Repository
	verrorsRepo  *verrors.Repository
	intake       *services.IntakeService
	orchestrator *pipeline.Orchestrator
	taskClient   *tasks.Client
}

func NewFilesController(db *database.Database, intake *services.IntakeService, orchestrator *pipeline.Orchestrator, taskClient *tasks.Client) *FilesController {
	return &FilesController{
		filesRepo:    files.NewRepository(db.DB),
		verrorsRepo:  verrors.NewRepository(db.DB),
		intake:       intake,
		orchestrator: orchestrator,
		taskClient:   taskClient,
	}
}

// ListFiles returns paginated files, optionally filtered by status, sender
// and file type.
func (fc *FilesController) ListFiles(c *gin.Context) {
	limit, offset := parsePagination(c)

	filter := files.Filter{
		Status:   entities.FileStatus(c.Query("status")),
		Sender:   c.Query("sender"),
		FileType: entities.FileType(c.Query("file_type")),
		Limit:    limit,
		Offset:   offset,
	}

	result, total, err := fc.filesRepo.List(filter)
	if err != nil {
		respondInternalError(c, err, "list files")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    result,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(result)) < total,
	})
}

// GetFile returns one file with its processing summary.
func (fc *FilesController) GetFile(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	file, err := fc.filesRepo.GetByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "file")
		return
	}
	if err != nil {
		respondInternalError(c, err, "get file")
		return
	}

	c.JSON(http.StatusOK, file)
}

// GetFileErrors returns a file's validation errors, paginated.
func (fc *FilesController) GetFileErrors(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := fc.filesRepo.GetByID(id); errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "file")
		return
	} else if err != nil {
		respondInternalError(c, err, "get file")
		return
	}

	limit, offset := parsePagination(c)
	errs, total, err := fc.verrorsRepo.ListByFile(id, limit, offset)
	if err != nil {
		respondInternalError(c, err, "list file errors")
		return
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Data:    errs,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: int64(offset+len(errs)) < total,
	})
}

// ReprocessFile resets a finished file and queues it for another run.
func (fc *FilesController) ReprocessFile(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := fc.filesRepo.GetByID(id); errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "file")
		return
	} else if err != nil {
		respondInternalError(c, err, "get file")
		return
	}

	if err := fc.orchestrator.Reprocess(id); err != nil {
		respondConflict(c, err.Error())
		return
	}

	fc.enqueue(id)
	respondAccepted(c, "file queued for reprocessing", gin.H{"file_id": id})
}

// UploadFile ingests a bordereaux file via multipart form.
func (fc *FilesController) UploadFile(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "multipart field 'file' is required")
		return
	}
	if header.Size > maxUploadBytes {
		respondBadRequest(c, "file too large")
		return
	}

	src, err := header.Open()
	if err != nil {
		respondInternalError(c, err, "open upload")
		return
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		respondInternalError(c, err, "read upload")
		return
	}
	if len(data) > maxUploadBytes {
		respondBadRequest(c, "file too large")
		return
	}

	file, duplicate, err := fc.intake.Receive(
		header.Filename,
		c.PostForm("sender"),
		c.PostForm("subject"),
		data,
	)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	fc.enqueue(file.ID)
	respondCreated(c, gin.H{"file": file, "duplicate": duplicate})
}

// enqueue hands a file to the task queue when one is configured; otherwise
// the scheduled sweep will pick it up.
func (fc *FilesController) enqueue(fileID uint) {
	if fc.taskClient == nil {
		return
	}
	_, _ = fc.taskClient.Add(tasks.ProcessFileTask{FileID: fileID}).Save()
}

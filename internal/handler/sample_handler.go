package handler

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/fieldlab-api/internal/dto"
	"github.com/noah-isme/fieldlab-api/internal/models"
	"github.com/noah-isme/fieldlab-api/internal/service"
	appErrors "github.com/noah-isme/fieldlab-api/pkg/errors"
	"github.com/noah-isme/fieldlab-api/pkg/response"
)

const (
	sampleImagesField = "images"
	// sampleFormOverhead covers the text fields and multipart boundaries.
	sampleFormOverhead  = 1 << 20
	defaultSampleImages = 10
	defaultImageBytes   = 10 << 20
)

type sampleService interface {
	CreateSample(ctx context.Context, req dto.CreateSampleRequest, uploads []service.ImageUpload, actor *models.JWTClaims) (*models.SampleCollection, error)
	ListSamples(ctx context.Context, query dto.SampleListQuery) ([]models.SampleCollection, *models.Pagination, error)
	GetSample(ctx context.Context, id string) (*models.SampleCollection, error)
	ReviewSample(ctx context.Context, sampleID string, outcome models.LabStatus, comments, reviewer string) (*models.SampleCollection, error)
}

type imageReader interface {
	Open(ctx context.Context, imageID string) (*service.ImageDownload, error)
	OpenSigned(ctx context.Context, imageID, token string) (*service.ImageDownload, error)
}

// SampleHandler serves sample intake, listing, lab review and image retrieval.
type SampleHandler struct {
	samples sampleService
	images  imageReader
	maxBody int64
}

// NewSampleHandler constructs a SampleHandler. maxBody caps the whole intake
// request; zero falls back to SampleBodyLimit's defaults.
func NewSampleHandler(samples sampleService, images imageReader, maxBody int64) *SampleHandler {
	if maxBody <= 0 {
		maxBody = SampleBodyLimit(0, 0)
	}
	return &SampleHandler{samples: samples, images: images, maxBody: maxBody}
}

// SampleBodyLimit is the largest intake request that can carry maxImages
// images of maxFileSize bytes each.
func SampleBodyLimit(maxImages int, maxFileSize int64) int64 {
	if maxImages <= 0 {
		maxImages = defaultSampleImages
	}
	if maxFileSize <= 0 {
		maxFileSize = defaultImageBytes
	}
	return int64(maxImages)*maxFileSize + sampleFormOverhead
}

// Create godoc
// @Summary Submit a sample collection
// @Description Multipart form with patientId, optional patientName, sampleType and notes, and one or more images
// @Tags Samples
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param patientId formData string true "Patient ID"
// @Param patientName formData string false "Patient display name"
// @Param sampleType formData string false "stool, blood, urine or other"
// @Param notes formData string false "Notes"
// @Param images formData file true "Sample images"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /field_collector/samples [post]
func (h *SampleHandler) Create(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	if c.Request.ContentLength > h.maxBody {
		response.Error(c, h.tooLarge(nil))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)

	var req dto.CreateSampleRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, h.formError(err, "invalid sample form"))
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		response.Error(c, h.formError(err, "multipart form expected"))
		return
	}

	headers := form.File[sampleImagesField]
	uploads := make([]service.ImageUpload, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			closeAll(uploads)
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, fmt.Sprintf("unable to read %s", header.Filename)))
			return
		}
		uploads = append(uploads, service.ImageUpload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Content:     file,
		})
	}
	defer closeAll(uploads)

	sample, err := h.samples.CreateSample(c.Request.Context(), req, uploads, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, sample)
}

func (h *SampleHandler) formError(err error, message string) *appErrors.Error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return h.tooLarge(err)
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message)
}

func (h *SampleHandler) tooLarge(err error) *appErrors.Error {
	return appErrors.Wrap(err, appErrors.ErrPayloadTooLarge.Code, appErrors.ErrPayloadTooLarge.Status,
		fmt.Sprintf("sample upload exceeds %d bytes", h.maxBody))
}

func closeAll(uploads []service.ImageUpload) {
	for _, u := range uploads {
		if f, ok := u.Content.(multipart.File); ok {
			_ = f.Close()
		}
	}
}

// List godoc
// @Summary List sample collections
// @Tags Samples
// @Produce json
// @Security BearerAuth
// @Param labStatus query string false "pending, approved or rejected"
// @Param patientId query string false "Patient ID"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /lab_tech/samples [get]
func (h *SampleHandler) List(c *gin.Context) {
	var query dto.SampleListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	samples, pagination, err := h.samples.ListSamples(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, samples, pagination)
}

// Get godoc
// @Summary Get sample collection
// @Tags Samples
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sample ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lab_tech/samples/{id} [get]
func (h *SampleHandler) Get(c *gin.Context) {
	sample, err := h.samples.GetSample(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sample, nil)
}

// Review godoc
// @Summary Review a sample
// @Description Approve or reject a sample. Comments are required when rejecting.
// @Tags Samples
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Sample ID"
// @Param payload body dto.ReviewSampleRequest true "Review decision"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lab_tech/samples/{id}/review [post]
func (h *SampleHandler) Review(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.ReviewSampleRequest
	if !bindJSON(c, &req, "invalid review payload") {
		return
	}
	sample, err := h.samples.ReviewSample(c.Request.Context(), c.Param("id"), req.Status, req.Comments, claims.Username)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sample, nil)
}

// Image godoc
// @Summary Fetch a sample image
// @Tags Samples
// @Produce octet-stream
// @Security BearerAuth
// @Param id path string true "Image ID"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /lab_tech/samples/images/{id} [get]
func (h *SampleHandler) Image(c *gin.Context) {
	download, err := h.images.Open(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	serveImage(c, download)
}

// SignedImage godoc
// @Summary Fetch a sample image through a signed link
// @Tags Files
// @Produce octet-stream
// @Param id path string true "Image ID"
// @Param token query string true "Signed token"
// @Success 200 {file} binary
// @Failure 403 {object} response.Envelope
// @Router /files/{id} [get]
func (h *SampleHandler) SignedImage(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "token is required"))
		return
	}
	download, err := h.images.OpenSigned(c.Request.Context(), c.Param("id"), token)
	if err != nil {
		response.Error(c, err)
		return
	}
	serveImage(c, download)
}

func serveImage(c *gin.Context, download *service.ImageDownload) {
	defer download.File.Close() //nolint:errcheck
	response.Inline(c, download.Filename, download.ContentType, download.Size, download.File)
}

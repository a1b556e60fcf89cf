package handler

import (
	"errors"
	"net/http"

	"invoicable/internal/billing"
	"invoicable/internal/model"
	"invoicable/internal/registry"
	"invoicable/internal/service"
	"invoicable/pkg/pagination"
	"invoicable/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// --- Request DTOs ---

type CreateDocumentRequest struct {
	RelatedType string `json:"related_type" binding:"required"`
	RelatedID   string `json:"related_id" binding:"required"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
}

type TaxRuleRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Percentage string `json:"percentage"` // decimal string, e.g. "0.21"
	Amount     *int64 `json:"amount"`     // fixed tax in cents
}

type AddLineRequest struct {
	InvoiceableType string           `json:"invoiceable_type" binding:"required"`
	InvoiceableID   string           `json:"invoiceable_id" binding:"required"`
	Amount          int64            `json:"amount"` // cents; may be negative
	Description     string           `json:"description"`
	Mode            string           `json:"mode" binding:"omitempty,oneof=excl incl"` // default excl
	Rate            string           `json:"rate"`                                     // single-rate shorthand, decimal string
	Taxes           []TaxRuleRequest `json:"taxes"`
	IsFree          bool             `json:"is_free"`
	IsComplimentary bool             `json:"is_complimentary"`
}

// DocumentHandler serves one document kind; main registers an instance for
// bills and one for invoices.
type DocumentHandler struct {
	svc      service.DocumentService
	basePath string
}

func NewDocumentHandler(svc service.DocumentService, basePath string) *DocumentHandler {
	return &DocumentHandler{svc: svc, basePath: basePath}
}

func (h *DocumentHandler) RegisterRoutes(router *gin.RouterGroup, auth gin.HandlerFunc) {
	docs := router.Group("/api/" + h.basePath)
	{
		docs.POST("", auth, h.CreateDocument)
		docs.GET("", h.ListDocuments)
		docs.GET("/:reference", h.GetDocument)
		docs.POST("/:reference/lines", auth, h.AddLine)
		docs.POST("/:reference/recalculate", auth, h.Recalculate)
		docs.GET("/:reference/html", h.GetHTML)
		docs.GET("/:reference/pdf", h.DownloadPDF)
	}
}

// CreateDocument creates a new document attached to a domain record
// @Summary      Create document
// @Description  Creates a new bill or invoice attached to a related domain record
// @Tags         documents
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      CreateDocumentRequest  true  "Create Document Payload"
// @Success      201      {object}  response.Response{data=model.Document}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices [post]
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	doc, err := h.svc.Create(c.Request.Context(),
		registry.Ref{Type: req.RelatedType, ID: req.RelatedID},
		service.CreateFields{Currency: req.Currency, Status: req.Status},
	)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, doc))
}

// ListDocuments returns a paginated list of documents of this kind
// @Summary      List documents
// @Tags         documents
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=[]model.Document}
// @Failure      500    {object}  response.Response
// @Router       /api/invoices [get]
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	params := pagination.Parse(c)

	docs, total, err := h.svc.List(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Page(http.StatusOK, docs, total, params.Page, params.Limit))
}

// GetDocument fetches a document by its exact reference
// @Summary      Get document by reference
// @Tags         documents
// @Produce      json
// @Param        reference  path      string  true  "Document reference"
// @Success      200        {object}  response.Response{data=model.Document}
// @Failure      404        {object}  response.Response
// @Router       /api/invoices/{reference} [get]
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	doc, err := h.svc.FindByReferenceOrFail(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// AddLine appends a charge line and recalculates the document totals
// @Summary      Add line
// @Description  Appends a line with tax rules and free/complimentary flags, then recalculates totals
// @Tags         documents
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        reference  path      string          true  "Document reference"
// @Param        payload    body      AddLineRequest  true  "Add Line Payload"
// @Success      200        {object}  response.Response{data=model.Document}
// @Failure      400        {object}  response.Response
// @Router       /api/invoices/{reference}/lines [post]
func (h *DocumentHandler) AddLine(c *gin.Context) {
	var req AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	input, err := toLineInput(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	doc, err := h.svc.FindByReferenceOrFail(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	doc, err = h.svc.AddLine(c.Request.Context(), doc, input)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// Recalculate recomputes total, tax and discount from the line set
// @Summary      Recalculate totals
// @Tags         documents
// @Security     BearerAuth
// @Produce      json
// @Param        reference  path      string  true  "Document reference"
// @Success      200        {object}  response.Response{data=model.Document}
// @Failure      404        {object}  response.Response
// @Router       /api/invoices/{reference}/recalculate [post]
func (h *DocumentHandler) Recalculate(c *gin.Context) {
	doc, err := h.svc.FindByReferenceOrFail(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	doc, err = h.svc.Recalculate(c.Request.Context(), doc)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// GetHTML returns the rendered receipt markup
// @Summary      Rendered receipt
// @Tags         documents
// @Produce      html
// @Param        reference  path      string  true  "Document reference"
// @Success      200        {string}  string
// @Failure      404        {object}  response.Response
// @Router       /api/invoices/{reference}/html [get]
func (h *DocumentHandler) GetHTML(c *gin.Context) {
	doc, err := h.svc.FindByReferenceOrFail(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	html, err := h.svc.Render(c.Request.Context(), doc, nil)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// DownloadPDF streams the receipt as a PDF attachment
// @Summary      Download receipt PDF
// @Tags         documents
// @Produce      application/pdf
// @Param        reference  path      string  true  "Document reference"
// @Success      200        {file}    file
// @Failure      404        {object}  response.Response
// @Router       /api/invoices/{reference}/pdf [get]
func (h *DocumentHandler) DownloadPDF(c *gin.Context) {
	doc, err := h.svc.FindByReferenceOrFail(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.renderError(c, err)
		return
	}

	pdf, err := h.svc.ExportPDF(c.Request.Context(), doc, nil)
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", `attachment; filename="`+doc.Reference+`.pdf"`)
	c.Header("Content-Transfer-Encoding", "binary")
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// --- Helpers ---

func toLineInput(req AddLineRequest) (service.LineInput, error) {
	input := service.LineInput{
		Item:            registry.Ref{Type: req.InvoiceableType, ID: req.InvoiceableID},
		Amount:          req.Amount,
		Description:     req.Description,
		Inclusive:       req.Mode == "incl",
		IsFree:          req.IsFree,
		IsComplimentary: req.IsComplimentary,
	}

	for _, rule := range req.Taxes {
		if rule.Amount != nil {
			amount := *rule.Amount
			input.Taxes = append(input.Taxes, model.TaxDetail{Identifier: rule.Identifier, Amount: &amount})
			continue
		}
		rate, err := decimal.NewFromString(rule.Percentage)
		if err != nil {
			return service.LineInput{}, errors.New("invalid tax percentage: " + rule.Percentage)
		}
		input.Taxes = append(input.Taxes, model.TaxDetail{Identifier: rule.Identifier, Percentage: &rate})
	}

	if req.Rate != "" {
		rate, err := decimal.NewFromString(req.Rate)
		if err != nil {
			return service.LineInput{}, errors.New("invalid rate: " + req.Rate)
		}
		input.Taxes = append(input.Taxes, billing.SingleRate(rate)...)
	}

	return input, nil
}

func (h *DocumentHandler) renderError(c *gin.Context, err error) {
	var persistErr *billing.PersistenceError
	var renderErr *billing.RenderError

	switch {
	case errors.Is(err, billing.ErrNotFound):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	case errors.Is(err, billing.ErrUnknownRecordType):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	case errors.As(err, &persistErr), errors.As(err, &renderErr):
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
	default:
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	}
}

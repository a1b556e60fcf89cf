package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"invoicable/internal/config"
	"invoicable/internal/database"
	"invoicable/internal/middleware"
	"invoicable/internal/model"
	"invoicable/internal/registry"
	"invoicable/internal/render"
	"invoicable/internal/repository"
	"invoicable/internal/service"
)

type stubConverter struct{}

func (s *stubConverter) Convert(ctx context.Context, html string) ([]byte, error) {
	return []byte("%PDF-1.4 stub"), nil
}

func setupRouter(t *testing.T, secret []byte) (*gin.Engine, *model.Customer, *model.Product) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	docRepo := repository.NewDocumentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	productRepo := repository.NewProductRepository(db)
	txManager := repository.NewTransactionManager(db)

	records := registry.New()
	service.RegisterRecords(records, customerRepo, productRepo)

	renderer, err := render.NewRenderer()
	require.NoError(t, err)

	cfg := config.Config{Currency: "EUR", Locale: "nl", ReceiptTemplate: "receipt"}
	invoiceService := service.NewInvoiceService(cfg, docRepo, auditRepo, records, txManager, renderer, &stubConverter{}, nil, zerolog.Nop())
	auditService := service.NewAuditService(auditRepo)

	router := gin.New()
	auth := middleware.RequireAuth(secret)
	NewDocumentHandler(invoiceService, "invoices").RegisterRoutes(router.Group(""), auth)
	NewAuditHandler(auditService).RegisterRoutes(router.Group(""), auth)

	customer := &model.Customer{Name: "Test Customer"}
	require.NoError(t, customerRepo.Create(context.Background(), customer))
	product := &model.Product{SKU: "SKU-1", Name: "Test Product", Price: decimal.NewFromInt(100)}
	require.NoError(t, productRepo.Create(context.Background(), product))

	return router, customer, product
}

func createInvoice(t *testing.T, router *gin.Engine, customer *model.Customer) string {
	t.Helper()

	body, _ := json.Marshal(CreateDocumentRequest{
		RelatedType: service.RecordTypeCustomer,
		RelatedID:   customer.ID.String(),
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/invoices", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Data model.Document `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Reference)
	return resp.Data.Reference
}

func addLine(t *testing.T, router *gin.Engine, reference string, payload AddLineRequest) model.Document {
	t.Helper()

	body, _ := json.Marshal(payload)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/invoices/"+reference+"/lines", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data model.Document `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data
}

func TestCreateAndFetchInvoice(t *testing.T) {
	router, customer, _ := setupRouter(t, nil)

	reference := createInvoice(t, router, customer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/invoices/"+reference, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), reference)
}

func TestGetMissingInvoiceReturns404(t *testing.T) {
	router, _, _ := setupRouter(t, nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/invoices/non-existing-reference", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddLinesAccumulatesTotals(t *testing.T) {
	router, customer, product := setupRouter(t, nil)
	reference := createInvoice(t, router, customer)

	line := AddLineRequest{
		InvoiceableType: service.RecordTypeProduct,
		InvoiceableID:   product.ID.String(),
		Amount:          100,
		Description:     "Some description",
		Mode:            "excl",
		Rate:            "0.21",
	}
	addLine(t, router, reference, line)
	doc := addLine(t, router, reference, line)

	assert.Equal(t, int64(242), doc.Total)
	assert.Equal(t, int64(42), doc.Tax)
}

func TestAddLineWithQueuedTaxRules(t *testing.T) {
	router, customer, product := setupRouter(t, nil)
	reference := createInvoice(t, router, customer)

	fixed := int64(10)
	doc := addLine(t, router, reference, AddLineRequest{
		InvoiceableType: service.RecordTypeProduct,
		InvoiceableID:   product.ID.String(),
		Amount:          200,
		Description:     "mixed taxes",
		Taxes: []TaxRuleRequest{
			{Identifier: "vat", Percentage: "0.21"},
			{Identifier: "stamp", Amount: &fixed},
		},
	})

	assert.Equal(t, int64(252), doc.Total)
	assert.Equal(t, int64(52), doc.Tax)
}

func TestAddFreeAndComplimentaryFlagsAreExclusive(t *testing.T) {
	router, customer, product := setupRouter(t, nil)
	reference := createInvoice(t, router, customer)

	body, _ := json.Marshal(AddLineRequest{
		InvoiceableType: service.RecordTypeProduct,
		InvoiceableID:   product.ID.String(),
		Amount:          100,
		IsFree:          true,
		IsComplimentary: true,
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/invoices/"+reference+"/lines", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDownloadPDFHeaders(t *testing.T) {
	router, customer, _ := setupRouter(t, nil)
	reference := createInvoice(t, router, customer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/invoices/"+reference+"/pdf", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="`+reference+`.pdf"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "binary", w.Header().Get("Content-Transfer-Encoding"))
	assert.Contains(t, w.Body.String(), "%PDF")
}

func TestGetHTMLReceipt(t *testing.T) {
	router, customer, _ := setupRouter(t, nil)
	reference := createInvoice(t, router, customer)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/invoices/"+reference+"/html", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), reference)
}

func TestMutatingRoutesRequireAuth(t *testing.T) {
	router, customer, _ := setupRouter(t, []byte("test-secret"))

	body, _ := json.Marshal(CreateDocumentRequest{
		RelatedType: service.RecordTypeCustomer,
		RelatedID:   customer.ID.String(),
	})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/invoices", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUnknownRelatedTypeReturns400(t *testing.T) {
	router, _, _ := setupRouter(t, nil)

	body, _ := json.Marshal(CreateDocumentRequest{RelatedType: "spaceship", RelatedID: "1"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/invoices", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

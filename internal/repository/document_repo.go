package repository

import (
	"context"
	"errors"

	"invoicable/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *model.Document) error
	AddLine(ctx context.Context, line *model.Line) error
	// FindByReference looks a document up by its exact reference, bypassing
	// the soft-delete default scope so drafts and filtered-out documents stay
	// findable. Returns gorm.ErrRecordNotFound when absent.
	FindByReference(ctx context.Context, kind, reference string) (*model.Document, error)
	Lines(ctx context.Context, documentID uuid.UUID) ([]model.Line, error)
	UpdateTotals(ctx context.Context, doc *model.Document) error
	List(ctx context.Context, kind string, page, limit int) ([]model.Document, int64, error)
}

type documentRepository struct {
	db *gorm.DB
}

func NewDocumentRepository(db *gorm.DB) DocumentRepository {
	return &documentRepository{db: db}
}

func (r *documentRepository) Create(ctx context.Context, doc *model.Document) error {
	return GetDB(ctx, r.db).Create(doc).Error
}

func (r *documentRepository) AddLine(ctx context.Context, line *model.Line) error {
	return GetDB(ctx, r.db).Create(line).Error
}

func (r *documentRepository) FindByReference(ctx context.Context, kind, reference string) (*model.Document, error) {
	var doc model.Document
	err := GetDB(ctx, r.db).Unscoped().
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at, id")
		}).
		Where("kind = ? AND reference = ?", kind, reference).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *documentRepository) Lines(ctx context.Context, documentID uuid.UUID) ([]model.Line, error) {
	var lines []model.Line
	err := GetDB(ctx, r.db).
		Where("document_id = ?", documentID).
		Order("created_at, id").
		Find(&lines).Error
	if err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *documentRepository) UpdateTotals(ctx context.Context, doc *model.Document) error {
	return GetDB(ctx, r.db).Model(doc).Updates(map[string]any{
		"total":    doc.Total,
		"tax":      doc.Tax,
		"discount": doc.Discount,
	}).Error
}

func (r *documentRepository) List(ctx context.Context, kind string, page, limit int) ([]model.Document, int64, error) {
	var docs []model.Document
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Document{}).Where("kind = ?", kind)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := db.Where("kind = ?", kind).
		Order("created_at desc").Offset(offset).Limit(limit).
		Find(&docs).Error
	if err != nil {
		return nil, 0, err
	}

	return docs, total, nil
}

// IsNotFound reports whether err is gorm's record-not-found.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

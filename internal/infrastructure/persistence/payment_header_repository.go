package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/farmops/backend/internal/domain/ledger"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/farmops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormPaymentHeaderRepository implements ledger.PaymentHeaderRepository using GORM
type GormPaymentHeaderRepository struct {
	db *gorm.DB
}

// NewGormPaymentHeaderRepository creates a new GormPaymentHeaderRepository
func NewGormPaymentHeaderRepository(db *gorm.DB) *GormPaymentHeaderRepository {
	return &GormPaymentHeaderRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormPaymentHeaderRepository) WithTx(tx *gorm.DB) ledger.PaymentHeaderRepository {
	if tx == nil {
		return r
	}
	return &GormPaymentHeaderRepository{db: tx}
}

// FindByID finds a header by its ID, including its installments
func (r *GormPaymentHeaderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ledger.PaymentHeader, error) {
	var model models.PaymentHeaderModel
	if err := r.db.WithContext(ctx).
		Preload("PaymentRecords").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a header by ID under a row lock. The lock holds
// until the surrounding transaction commits, serializing the
// read-recompute-write cycle per header.
func (r *GormPaymentHeaderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*ledger.PaymentHeader, error) {
	var model models.PaymentHeaderModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	// Preload cannot ride along with a locking clause on all drivers; load
	// the installments with a second query inside the same transaction.
	var recordModels []models.PaymentRecordModel
	if err := r.db.WithContext(ctx).
		Where("header_id = ?", id).
		Find(&recordModels).Error; err != nil {
		return nil, err
	}
	model.PaymentRecords = recordModels
	return model.ToDomain(), nil
}

// FindByOwnerReference finds the header reconciling the given claim
func (r *GormPaymentHeaderRepository) FindByOwnerReference(ctx context.Context, ownerReference uuid.UUID) (*ledger.PaymentHeader, error) {
	var model models.PaymentHeaderModel
	if err := r.db.WithContext(ctx).
		Preload("PaymentRecords").
		Where("owner_reference = ?", ownerReference).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByRecordID finds the header owning the given installment
func (r *GormPaymentHeaderRepository) FindByRecordID(ctx context.Context, recordID uuid.UUID) (*ledger.PaymentHeader, error) {
	var record models.PaymentRecordModel
	if err := r.db.WithContext(ctx).
		First(&record, "id = ?", recordID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByID(ctx, record.HeaderID)
}

// Save creates or updates a header together with its installments
func (r *GormPaymentHeaderRepository) Save(ctx context.Context, header *ledger.PaymentHeader) error {
	model := models.PaymentHeaderModelFromDomain(header)
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(model).Error
}

// SaveWithLock updates a header with an optimistic version check as a second
// guard behind the row lock. New installments are inserted in the same call.
func (r *GormPaymentHeaderRepository) SaveWithLock(ctx context.Context, header *ledger.PaymentHeader, expectedVersion int) error {
	model := models.PaymentHeaderModelFromDomain(header)
	result := r.db.WithContext(ctx).
		Model(&models.PaymentHeaderModel{}).
		Where("id = ? AND version = ?", header.ID, expectedVersion).
		Select("total_paid", "status", "version", "paid_at", "updated_at").
		Updates(map[string]interface{}{
			"total_paid": model.TotalPaid,
			"status":     model.Status,
			"version":    model.Version,
			"paid_at":    model.PaidAt,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	// Upsert installments; rows removed from the aggregate are deleted by
	// DeleteRecord, so only inserts and no-op updates happen here.
	for i := range model.PaymentRecords {
		if err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoNothing: true,
			}).
			Create(&model.PaymentRecords[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// DeleteRecord removes a single installment row
func (r *GormPaymentHeaderRepository) DeleteRecord(ctx context.Context, recordID uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.PaymentRecordModel{}, "id = ?", recordID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GenerateHeaderNumber generates a unique header number
func (r *GormPaymentHeaderRepository) GenerateHeaderNumber(ctx context.Context, date time.Time) (string, error) {
	// Format: PAY-YYYYMMDD-XXXXX
	prefix := fmt.Sprintf("PAY-%s-", date.Format("20060102"))

	// Get the highest header number for the date
	var lastHeader models.PaymentHeaderModel
	err := r.db.WithContext(ctx).
		Where("header_number LIKE ?", prefix+"%").
		Order("header_number DESC").
		First(&lastHeader).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int
	if err == nil && lastHeader.HeaderNumber != "" {
		parts := strings.Split(lastHeader.HeaderNumber, "-")
		if len(parts) == 3 {
			fmt.Sscanf(parts[2], "%d", &nextNum)
		}
	}
	nextNum++

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

// Ensure GormPaymentHeaderRepository implements PaymentHeaderRepository
var _ ledger.PaymentHeaderRepository = (*GormPaymentHeaderRepository)(nil)

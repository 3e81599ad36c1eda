package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/farmops/backend/internal/domain/expense"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/farmops/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormClaimRepository implements expense.ClaimRepository using GORM
type GormClaimRepository struct {
	db *gorm.DB
}

// NewGormClaimRepository creates a new GormClaimRepository
func NewGormClaimRepository(db *gorm.DB) *GormClaimRepository {
	return &GormClaimRepository{db: db}
}

// WithTx returns a repository bound to the given transaction
func (r *GormClaimRepository) WithTx(tx *gorm.DB) expense.ClaimRepository {
	if tx == nil {
		return r
	}
	return &GormClaimRepository{db: tx}
}

// FindByID finds a claim by its ID
func (r *GormClaimRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.ExpenseClaim, error) {
	var model models.ExpenseClaimModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByClaimNumber finds a claim by its human-readable number
func (r *GormClaimRepository) FindByClaimNumber(ctx context.Context, claimNumber string) (*expense.ExpenseClaim, error) {
	var model models.ExpenseClaimModel
	if err := r.db.WithContext(ctx).
		Where("claim_number = ?", claimNumber).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds claims matching the filter and the total count before pagination
func (r *GormClaimRepository) FindAll(ctx context.Context, filter expense.ClaimFilter) ([]expense.ExpenseClaim, int64, error) {
	var total int64
	countQuery := r.db.WithContext(ctx).Model(&models.ExpenseClaimModel{})
	countQuery = r.applyClaimFilterWithoutPagination(countQuery, filter)
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var claimModels []models.ExpenseClaimModel
	query := r.db.WithContext(ctx).Model(&models.ExpenseClaimModel{})
	query = r.applyClaimFilter(query, filter)
	if err := query.Find(&claimModels).Error; err != nil {
		return nil, 0, err
	}

	claims := make([]expense.ExpenseClaim, len(claimModels))
	for i, model := range claimModels {
		claims[i] = *model.ToDomain()
	}
	return claims, total, nil
}

// Save creates or updates a claim
func (r *GormClaimRepository) Save(ctx context.Context, claim *expense.ExpenseClaim) error {
	model := models.ExpenseClaimModelFromDomain(claim)
	return r.db.WithContext(ctx).Save(model).Error
}

// SaveWithLock updates a claim with an optimistic version check. A stale
// version means another transaction already decided the claim; that surfaces
// as a concurrency conflict, never as a silent overwrite.
func (r *GormClaimRepository) SaveWithLock(ctx context.Context, claim *expense.ExpenseClaim, expectedVersion int) error {
	model := models.ExpenseClaimModelFromDomain(claim)
	result := r.db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", claim.ID, expectedVersion).
		Updates(model)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// GenerateClaimNumber generates a unique claim number
func (r *GormClaimRepository) GenerateClaimNumber(ctx context.Context, date time.Time) (string, error) {
	// Format: EXP-YYYYMMDD-XXXXX
	prefix := fmt.Sprintf("EXP-%s-", date.Format("20060102"))

	// Get the highest claim number for the date
	var lastClaim models.ExpenseClaimModel
	err := r.db.WithContext(ctx).
		Where("claim_number LIKE ?", prefix+"%").
		Order("claim_number DESC").
		First(&lastClaim).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int
	if err == nil && lastClaim.ClaimNumber != "" {
		parts := strings.Split(lastClaim.ClaimNumber, "-")
		if len(parts) == 3 {
			fmt.Sscanf(parts[2], "%d", &nextNum)
		}
	}
	nextNum++

	return fmt.Sprintf("%s%05d", prefix, nextNum), nil
}

// applyClaimFilter applies filter options to the query
func (r *GormClaimRepository) applyClaimFilter(query *gorm.DB, filter expense.ClaimFilter) *gorm.DB {
	query = r.applyClaimFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, ClaimSortFields, "submission_date")
	orderDir := ValidateSortOrder(filter.OrderDir)
	query = query.Order(orderBy + " " + orderDir)

	return query
}

// applyClaimFilterWithoutPagination applies filter options without pagination
func (r *GormClaimRepository) applyClaimFilterWithoutPagination(query *gorm.DB, filter expense.ClaimFilter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("claim_number ILIKE ? OR requester_name ILIKE ? OR purpose ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.Division != "" {
		query = query.Where("division = ?", filter.Division)
	}
	if filter.SubmittedFrom != nil {
		query = query.Where("submission_date >= ?", *filter.SubmittedFrom)
	}
	if filter.SubmittedTo != nil {
		query = query.Where("submission_date <= ?", *filter.SubmittedTo)
	}

	return query
}

// GormApproverRepository implements expense.ApproverRepository using GORM
type GormApproverRepository struct {
	db *gorm.DB
}

// NewGormApproverRepository creates a new GormApproverRepository
func NewGormApproverRepository(db *gorm.DB) *GormApproverRepository {
	return &GormApproverRepository{db: db}
}

// FindByID finds an approver by ID
func (r *GormApproverRepository) FindByID(ctx context.Context, id uuid.UUID) (*expense.Approver, error) {
	var model models.ApproverModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists all approvers ordered by name
func (r *GormApproverRepository) FindAll(ctx context.Context) ([]expense.Approver, error) {
	var approverModels []models.ApproverModel
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&approverModels).Error; err != nil {
		return nil, err
	}
	approvers := make([]expense.Approver, len(approverModels))
	for i, model := range approverModels {
		approvers[i] = *model.ToDomain()
	}
	return approvers, nil
}

// Ensure interfaces are implemented
var (
	_ expense.ClaimRepository    = (*GormClaimRepository)(nil)
	_ expense.ApproverRepository = (*GormApproverRepository)(nil)
)

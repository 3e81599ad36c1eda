package models

import (
	"time"

	"github.com/farmops/backend/internal/domain/expense"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExpenseClaimModel is the persistence model for the ExpenseClaim aggregate root.
type ExpenseClaimModel struct {
	AggregateModel
	ClaimNumber     string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	RequesterName   string              `gorm:"type:varchar(200);not null"`
	Division        string              `gorm:"type:varchar(100);index"`
	Purpose         string              `gorm:"type:text;not null"`
	AmountRequested decimal.Decimal     `gorm:"type:decimal(18,2);not null"`
	SubmissionDate  time.Time           `gorm:"not null;index"`
	Status          expense.ClaimStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ApprovedAmount  *decimal.Decimal    `gorm:"type:decimal(18,2)"`
	ApproverID      *uuid.UUID          `gorm:"type:uuid;index"`
	RecipientName   string              `gorm:"type:varchar(200)"`
	PaymentDate     *time.Time
	PaymentCity     string     `gorm:"type:varchar(100)"`
	ApprovalNote    string     `gorm:"type:text"`
	ReceiptKey      string     `gorm:"type:varchar(300)"`
	RejectionReason string     `gorm:"type:varchar(500)"`
	DecidedBy       *uuid.UUID `gorm:"type:uuid"`
	DecidedAt       *time.Time
}

// TableName returns the table name for GORM
func (ExpenseClaimModel) TableName() string {
	return "expense_claims"
}

// ToDomain converts the persistence model to a domain ExpenseClaim.
func (m *ExpenseClaimModel) ToDomain() *expense.ExpenseClaim {
	return &expense.ExpenseClaim{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		ClaimNumber:     m.ClaimNumber,
		RequesterName:   m.RequesterName,
		Division:        m.Division,
		Purpose:         m.Purpose,
		AmountRequested: m.AmountRequested,
		SubmissionDate:  m.SubmissionDate,
		Status:          m.Status,
		ApprovedAmount:  m.ApprovedAmount,
		ApproverID:      m.ApproverID,
		RecipientName:   m.RecipientName,
		PaymentDate:     m.PaymentDate,
		PaymentCity:     m.PaymentCity,
		ApprovalNote:    m.ApprovalNote,
		ReceiptKey:      m.ReceiptKey,
		RejectionReason: m.RejectionReason,
		DecidedBy:       m.DecidedBy,
		DecidedAt:       m.DecidedAt,
	}
}

// FromDomain populates the persistence model from a domain ExpenseClaim.
func (m *ExpenseClaimModel) FromDomain(claim *expense.ExpenseClaim) {
	m.FromDomainAggregateRoot(claim.BaseAggregateRoot)
	m.ClaimNumber = claim.ClaimNumber
	m.RequesterName = claim.RequesterName
	m.Division = claim.Division
	m.Purpose = claim.Purpose
	m.AmountRequested = claim.AmountRequested
	m.SubmissionDate = claim.SubmissionDate
	m.Status = claim.Status
	m.ApprovedAmount = claim.ApprovedAmount
	m.ApproverID = claim.ApproverID
	m.RecipientName = claim.RecipientName
	m.PaymentDate = claim.PaymentDate
	m.PaymentCity = claim.PaymentCity
	m.ApprovalNote = claim.ApprovalNote
	m.ReceiptKey = claim.ReceiptKey
	m.RejectionReason = claim.RejectionReason
	m.DecidedBy = claim.DecidedBy
	m.DecidedAt = claim.DecidedAt
}

// ExpenseClaimModelFromDomain creates a new persistence model from a domain ExpenseClaim.
func ExpenseClaimModelFromDomain(claim *expense.ExpenseClaim) *ExpenseClaimModel {
	m := &ExpenseClaimModel{}
	m.FromDomain(claim)
	return m
}

// ApproverModel is the persistence model for the approver directory.
type ApproverModel struct {
	BaseModel
	Name string `gorm:"type:varchar(200);not null"`
}

// TableName returns the table name for GORM
func (ApproverModel) TableName() string {
	return "approvers"
}

// ToDomain converts the persistence model to a domain Approver.
func (m *ApproverModel) ToDomain() *expense.Approver {
	return &expense.Approver{
		BaseEntity: m.BaseModel.ToDomain(),
		Name:       m.Name,
	}
}

// ApproverModelFromDomain creates a new persistence model from a domain Approver.
func ApproverModelFromDomain(approver *expense.Approver) *ApproverModel {
	m := &ApproverModel{Name: approver.Name}
	m.FromDomainBaseEntity(approver.BaseEntity)
	return m
}

package models

import (
	"time"

	"github.com/farmops/backend/internal/domain/ledger"
	"github.com/farmops/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentHeaderModel is the persistence model for the PaymentHeader aggregate root.
type PaymentHeaderModel struct {
	AggregateModel
	HeaderNumber   string               `gorm:"type:varchar(50);not null;uniqueIndex"`
	OwnerReference uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex"`
	TotalBilled    decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	TotalPaid      decimal.Decimal      `gorm:"type:decimal(18,2);not null"`
	DueDate        *time.Time           `gorm:"index"`
	Status         ledger.PaymentStatus `gorm:"type:varchar(20);not null;default:'UNPAID';index"`
	PaymentRecords []PaymentRecordModel `gorm:"foreignKey:HeaderID;references:ID"`
	PaidAt         *time.Time
}

// TableName returns the table name for GORM
func (PaymentHeaderModel) TableName() string {
	return "payment_headers"
}

// ToDomain converts the persistence model to a domain PaymentHeader.
func (m *PaymentHeaderModel) ToDomain() *ledger.PaymentHeader {
	header := &ledger.PaymentHeader{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{
				ID:        m.ID,
				CreatedAt: m.CreatedAt,
				UpdatedAt: m.UpdatedAt,
			},
			Version: m.Version,
		},
		HeaderNumber:   m.HeaderNumber,
		OwnerReference: m.OwnerReference,
		TotalBilled:    m.TotalBilled,
		TotalPaid:      m.TotalPaid,
		DueDate:        m.DueDate,
		Status:         m.Status,
		PaidAt:         m.PaidAt,
		PaymentRecords: make([]ledger.PaymentRecord, len(m.PaymentRecords)),
	}
	for i, pr := range m.PaymentRecords {
		header.PaymentRecords[i] = *pr.ToDomain()
	}
	return header
}

// FromDomain populates the persistence model from a domain PaymentHeader.
func (m *PaymentHeaderModel) FromDomain(header *ledger.PaymentHeader) {
	m.FromDomainAggregateRoot(header.BaseAggregateRoot)
	m.HeaderNumber = header.HeaderNumber
	m.OwnerReference = header.OwnerReference
	m.TotalBilled = header.TotalBilled
	m.TotalPaid = header.TotalPaid
	m.DueDate = header.DueDate
	m.Status = header.Status
	m.PaidAt = header.PaidAt
	m.PaymentRecords = make([]PaymentRecordModel, len(header.PaymentRecords))
	for i, pr := range header.PaymentRecords {
		m.PaymentRecords[i] = *PaymentRecordModelFromDomain(&pr)
	}
}

// PaymentHeaderModelFromDomain creates a new persistence model from a domain PaymentHeader.
func PaymentHeaderModelFromDomain(header *ledger.PaymentHeader) *PaymentHeaderModel {
	m := &PaymentHeaderModel{}
	m.FromDomain(header)
	return m
}

// PaymentRecordModel is the persistence model for PaymentRecord.
type PaymentRecordModel struct {
	ID          uuid.UUID       `gorm:"type:uuid;primary_key"`
	HeaderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	PaymentDate time.Time       `gorm:"not null"`
	Note        string          `gorm:"type:varchar(500)"`
	ProofKey    string          `gorm:"type:varchar(300)"`
	CreatedBy   *uuid.UUID      `gorm:"type:uuid"`
	CreatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentRecordModel) TableName() string {
	return "payment_records"
}

// ToDomain converts the persistence model to a domain PaymentRecord.
func (m *PaymentRecordModel) ToDomain() *ledger.PaymentRecord {
	return &ledger.PaymentRecord{
		ID:          m.ID,
		HeaderID:    m.HeaderID,
		Amount:      m.Amount,
		PaymentDate: m.PaymentDate,
		Note:        m.Note,
		ProofKey:    m.ProofKey,
		CreatedBy:   m.CreatedBy,
		CreatedAt:   m.CreatedAt,
	}
}

// PaymentRecordModelFromDomain creates a new persistence model from a domain PaymentRecord.
func PaymentRecordModelFromDomain(record *ledger.PaymentRecord) *PaymentRecordModel {
	return &PaymentRecordModel{
		ID:          record.ID,
		HeaderID:    record.HeaderID,
		Amount:      record.Amount,
		PaymentDate: record.PaymentDate,
		Note:        record.Note,
		ProofKey:    record.ProofKey,
		CreatedBy:   record.CreatedBy,
		CreatedAt:   record.CreatedAt,
	}
}

package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/ledgerbooks/backend/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel provides common persistence fields for aggregate roots.
// It extends BaseModel with version for optimistic locking.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

// FromDomainAggregateRoot populates AggregateModel from domain BaseAggregateRoot
func (m *AggregateModel) FromDomainAggregateRoot(a shared.BaseAggregateRoot) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

// EntityAggregateModel provides common persistence fields for aggregate
// roots scoped to an owning business entity.
type EntityAggregateModel struct {
	AggregateModel
	EntityID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// FromDomainEntityAggregateRoot populates EntityAggregateModel from domain EntityAggregateRoot
func (m *EntityAggregateModel) FromDomainEntityAggregateRoot(e shared.EntityAggregateRoot) {
	m.FromDomainAggregateRoot(e.BaseAggregateRoot)
	m.EntityID = e.EntityID
}

// PopulateEntityAggregateRoot populates a domain EntityAggregateRoot from persistence model
func (m *EntityAggregateModel) PopulateEntityAggregateRoot(e *shared.EntityAggregateRoot) {
	e.BaseAggregateRoot.BaseEntity.ID = m.ID
	e.BaseAggregateRoot.BaseEntity.CreatedAt = m.CreatedAt
	e.BaseAggregateRoot.BaseEntity.UpdatedAt = m.UpdatedAt
	e.BaseAggregateRoot.Version = m.Version
	e.EntityID = m.EntityID
}

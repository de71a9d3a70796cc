package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/socialsync/backend/internal/domain/platform"
)

// ResourceModel is the persistence model for linked platform resources.
// The external ID is globally unique: a resource belongs to at most one
// company across the whole system.
type ResourceModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primary_key"`
	ExternalID     string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	Kind           string     `gorm:"type:varchar(20);not null;index"`
	Name           string     `gorm:"type:varchar(255);not null"`
	AccessToken    string     `gorm:"type:text"`
	Status         string     `gorm:"type:varchar(20);not null;index"`
	OwnerCompanyID *uuid.UUID `gorm:"type:uuid;index"`
	ConnectedAt    *time.Time
	DisconnectedAt *time.Time
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ResourceModel) TableName() string {
	return "platform_resources"
}

// ToDomain converts the model to a domain Resource
func (m *ResourceModel) ToDomain() *platform.Resource {
	return &platform.Resource{
		ID:             m.ID,
		ExternalID:     m.ExternalID,
		Kind:           platform.ResourceKind(m.Kind),
		Name:           m.Name,
		AccessToken:    m.AccessToken,
		Status:         platform.ResourceStatus(m.Status),
		OwnerCompanyID: m.OwnerCompanyID,
		ConnectedAt:    m.ConnectedAt,
		DisconnectedAt: m.DisconnectedAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// FromDomain populates the model from a domain Resource
func (m *ResourceModel) FromDomain(r *platform.Resource) {
	m.ID = r.ID
	m.ExternalID = r.ExternalID
	m.Kind = r.Kind.String()
	m.Name = r.Name
	m.AccessToken = r.AccessToken
	m.Status = string(r.Status)
	m.OwnerCompanyID = r.OwnerCompanyID
	m.ConnectedAt = r.ConnectedAt
	m.DisconnectedAt = r.DisconnectedAt
	m.CreatedAt = r.CreatedAt
	m.UpdatedAt = r.UpdatedAt
}

// SkippedResourceModel is the persistence model for ownership conflict
// records.
type SkippedResourceModel struct {
	ID                  uuid.UUID `gorm:"type:uuid;primary_key"`
	ExternalID          string    `gorm:"type:varchar(100);not null;index"`
	Name                string    `gorm:"type:varchar(255);not null"`
	Kind                string    `gorm:"type:varchar(20);not null"`
	Reason              string    `gorm:"type:varchar(50);not null"`
	AttemptingCompanyID uuid.UUID `gorm:"type:uuid;not null;index"`
	ConnectedCompanyID  uuid.UUID `gorm:"type:uuid;not null"`
	Resolved            bool      `gorm:"not null;default:false;index"`
	ResolvedAt          *time.Time
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SkippedResourceModel) TableName() string {
	return "skipped_resources"
}

// ToDomain converts the model to a domain SkippedResource
func (m *SkippedResourceModel) ToDomain() *platform.SkippedResource {
	return &platform.SkippedResource{
		ID:                  m.ID,
		ExternalID:          m.ExternalID,
		Name:                m.Name,
		Kind:                platform.ResourceKind(m.Kind),
		Reason:              platform.SkipReason(m.Reason),
		AttemptingCompanyID: m.AttemptingCompanyID,
		ConnectedCompanyID:  m.ConnectedCompanyID,
		Resolved:            m.Resolved,
		ResolvedAt:          m.ResolvedAt,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// FromDomain populates the model from a domain SkippedResource
func (m *SkippedResourceModel) FromDomain(s *platform.SkippedResource) {
	m.ID = s.ID
	m.ExternalID = s.ExternalID
	m.Name = s.Name
	m.Kind = s.Kind.String()
	m.Reason = string(s.Reason)
	m.AttemptingCompanyID = s.AttemptingCompanyID
	m.ConnectedCompanyID = s.ConnectedCompanyID
	m.Resolved = s.Resolved
	m.ResolvedAt = s.ResolvedAt
	m.CreatedAt = s.CreatedAt
	m.UpdatedAt = s.UpdatedAt
}

package models

import (
	"github.com/socialsync/backend/internal/domain/identity"
)

// CompanyModel is the persistence model for company accounts
type CompanyModel struct {
	AggregateModel
	Name             string `gorm:"type:varchar(200);not null"`
	Status           string `gorm:"type:varchar(20);not null;default:'active'"`
	PageAccessToken  string `gorm:"type:text"`
	PixelAccessToken string `gorm:"type:text"`
	PixelExternalID  string `gorm:"type:varchar(100)"`
	InstallCount     int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CompanyModel) TableName() string {
	return "companies"
}

// ToDomain converts the model to a domain Company
func (m *CompanyModel) ToDomain() *identity.Company {
	company := &identity.Company{
		Name:             m.Name,
		Status:           identity.CompanyStatus(m.Status),
		PageAccessToken:  m.PageAccessToken,
		PixelAccessToken: m.PixelAccessToken,
		PixelExternalID:  m.PixelExternalID,
		InstallCount:     m.InstallCount,
	}
	company.BaseEntity = m.BaseModel.ToDomain()
	company.Version = m.Version
	return company
}

// FromDomain populates the model from a domain Company
func (m *CompanyModel) FromDomain(c *identity.Company) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Status = string(c.Status)
	m.PageAccessToken = c.PageAccessToken
	m.PixelAccessToken = c.PixelAccessToken
	m.PixelExternalID = c.PixelExternalID
	m.InstallCount = c.InstallCount
}

package repositories

import (
	"context"

	"civic-engagement/missionhub/internal/models/gorm"

	gormlib "gorm.io/gorm"
)

// OrganizationRepo handles the organization registry
type OrganizationRepo struct {
	db *gormlib.DB
}

// NewOrganizationRepo creates a new organization repository
func NewOrganizationRepo(db *gormlib.DB) *OrganizationRepo {
	return &OrganizationRepo{db: db}
}

// FindByRNAs returns organizations keyed by RNA
func (r *OrganizationRepo) FindByRNAs(ctx context.Context, rnas []string) (map[string]*gorm.Organization, error) {
	result := make(map[string]*gorm.Organization, len(rnas))
	if len(rnas) == 0 {
		return result, nil
	}

	var orgs []*gorm.Organization
	if err := r.db.WithContext(ctx).Where("rna IN ?", rnas).Find(&orgs).Error; err != nil {
		return nil, err
	}
	for _, org := range orgs {
		result[org.RNA] = org
	}
	return result, nil
}

// FindBySirets returns organizations keyed by SIRET
func (r *OrganizationRepo) FindBySirets(ctx context.Context, sirets []string) (map[string]*gorm.Organization, error) {
	result := make(map[string]*gorm.Organization, len(sirets))
	if len(sirets) == 0 {
		return result, nil
	}

	var orgs []*gorm.Organization
	if err := r.db.WithContext(ctx).Where("siret IN ?", sirets).Find(&orgs).Error; err != nil {
		return nil, err
	}
	for _, org := range orgs {
		result[org.Siret] = org
	}
	return result, nil
}

// FindByRNA finds an organization by RNA
func (r *OrganizationRepo) FindByRNA(ctx context.Context, rna string) (*gorm.Organization, error) {
	var org gorm.Organization

	err := r.db.WithContext(ctx).Where("rna = ?", rna).First(&org).Error
	if err != nil {
		if err == gormlib.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}

	return &org, nil
}

// FindBySlug returns every organization with exactly this name slug
func (r *OrganizationRepo) FindBySlug(ctx context.Context, slug string) ([]*gorm.Organization, error) {
	var orgs []*gorm.Organization
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		Limit(2).
		Find(&orgs).Error
	return orgs, err
}

// SearchBySlug returns organizations whose slug contains the given slug
func (r *OrganizationRepo) SearchBySlug(ctx context.Context, slug string, limit int) ([]*gorm.Organization, error) {
	var orgs []*gorm.Organization
	if slug == "" {
		return orgs, nil
	}
	err := r.db.WithContext(ctx).
		Where("slug LIKE ?", "%"+slug+"%").
		Order("slug ASC").
		Limit(limit).
		Find(&orgs).Error
	return orgs, err
}

// Save inserts a new organization or updates every field of an existing one
func (r *OrganizationRepo) Save(ctx context.Context, org *gorm.Organization) error {
	if org.ID == "" {
		return r.db.WithContext(ctx).Create(org).Error
	}
	return r.db.WithContext(ctx).Save(org).Error
}

// FindByIDs loads organizations by internal id
func (r *OrganizationRepo) FindByIDs(ctx context.Context, ids []string) ([]*gorm.Organization, error) {
	var orgs []*gorm.Organization
	if len(ids) == 0 {
		return orgs, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&orgs).Error
	return orgs, err
}

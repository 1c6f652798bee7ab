package services

import (
	"strings"
	"time"

	"civic-engagement/missionhub/internal/common"
	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/models/dtos"
	"civic-engagement/missionhub/internal/models/gorm"
)

// MergeOrganization backfills empty fields of dst from src. A populated field of
// dst is never overwritten, an empty src field never clears anything.
// Reports whether dst changed.
func MergeOrganization(dst *gorm.Organization, src gorm.Organization) bool {
	changed := false

	fill := func(field *string, value string) {
		if *field == "" && value != "" {
			*field = value
			changed = true
		}
	}
	fillTime := func(field **time.Time, value *time.Time) {
		if *field == nil && value != nil {
			t := *value
			*field = &t
			changed = true
		}
	}

	fill(&dst.RNA, src.RNA)
	fill(&dst.Siren, src.Siren)
	fill(&dst.Siret, src.Siret)
	fill(&dst.Title, src.Title)
	fill(&dst.ShortTitle, src.ShortTitle)
	fill(&dst.Object, src.Object)
	fill(&dst.Nature, src.Nature)
	fill(&dst.Status, src.Status)
	fill(&dst.Website, src.Website)
	fill(&dst.Email, src.Email)
	fill(&dst.Phone, src.Phone)
	fill(&dst.Address, src.Address)
	fill(&dst.City, src.City)
	fill(&dst.PostalCode, src.PostalCode)
	fill(&dst.Department, src.Department)
	fill(&dst.Source, src.Source)
	fillTime(&dst.CreatedDate, src.CreatedDate)
	fillTime(&dst.UpdatedDate, src.UpdatedDate)

	if dst.Slug == "" && dst.Title != "" {
		dst.Slug = common.Slugify(dst.Title)
		changed = true
	}

	return changed
}

// OrganizationFromAssociation maps a grants API association payload
func OrganizationFromAssociation(asso *dtos.GrantsAssociation) gorm.Organization {
	title := asso.DenominationRNA.First()
	if title == "" {
		title = asso.DenominationSiren.First()
	}

	org := gorm.Organization{
		RNA:         NormalizeIdentifier(asso.RNA.First()),
		Siren:       NormalizeIdentifier(asso.Siren.First()),
		Title:       strings.TrimSpace(title),
		Slug:        common.Slugify(title),
		Object:      strings.TrimSpace(asso.ObjectRNA.First()),
		Nature:      asso.Nature.First(),
		Status:      asso.Status.First(),
		Website:     asso.Website.First(),
		Email:       asso.Email.First(),
		Phone:       asso.Phone.First(),
		CreatedDate: parseRegistryDate(asso.CreationDate.First()),
		UpdatedDate: parseRegistryDate(asso.ModificationDate.First()),
		Source:      constants.OrganizationSourceSubvention,
	}
	applyGrantsAddress(&org, asso.HeadOfficeAddress.First())

	for _, etab := range asso.Establishments {
		if etab.HeadOffice.First() {
			org.Siret = NormalizeIdentifier(etab.Siret.First())
			break
		}
	}
	return org
}

// OrganizationFromEstablishment maps a grants API establishment payload
func OrganizationFromEstablishment(etab *dtos.GrantsEstablishment) gorm.Organization {
	siret := NormalizeIdentifier(etab.Siret.First())
	title := strings.TrimSpace(etab.Denomination.First())

	org := gorm.Organization{
		RNA:    NormalizeIdentifier(etab.RNA.First()),
		Siret:  siret,
		Siren:  sirenOf(siret),
		Title:  title,
		Slug:   common.Slugify(title),
		Email:  etab.Email.First(),
		Phone:  etab.Phone.First(),
		Source: constants.OrganizationSourceSubvention,
	}
	applyGrantsAddress(&org, etab.Address.First())
	return org
}

func applyGrantsAddress(org *gorm.Organization, address dtos.GrantsAddress) {
	street := strings.Join(strings.Fields(strings.Join([]string{address.Number, address.StreetType, address.Street}, " ")), " ")
	org.Address = street
	org.City = strings.TrimSpace(address.City)
	org.PostalCode = strings.TrimSpace(address.PostalCode)
	org.Department = constants.DepartmentCodeFromPostalCode(org.PostalCode)
}

// parseRegistryDate accepts the registry's date formats; nil when empty or unreadable
func parseRegistryDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05", "02/01/2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

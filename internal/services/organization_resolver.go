package services

import (
	"context"
	"fmt"
	"strings"

	"civic-engagement/missionhub/internal/common"
	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/db/repositories"
	"civic-engagement/missionhub/internal/logging"
	"civic-engagement/missionhub/internal/models/gorm"
	"civic-engagement/missionhub/internal/providers"
)

// OrganizationResolver links missions to registry organizations. Per mission the
// first usable identifier wins: RNA, then SIRET, then the organization name.
type OrganizationResolver struct {
	orgs    *repositories.OrganizationRepo
	matches *repositories.NameMatchRepo
	grants  providers.GrantsClient
}

func NewOrganizationResolver(
	orgs *repositories.OrganizationRepo,
	matches *repositories.NameMatchRepo,
	grants providers.GrantsClient,
) *OrganizationResolver {
	return &OrganizationResolver{
		orgs:    orgs,
		matches: matches,
		grants:  grants,
	}
}

// grantsOutcome memoizes one grants API lookup within a batch
type grantsOutcome struct {
	org    *gorm.Organization
	failed bool
}

// resolution is the state of one Resolve call
type resolution struct {
	byRNA   map[string]*gorm.Organization
	bySiret map[string]*gorm.Organization
	rnaAPI  map[string]grantsOutcome
	etabAPI map[string]grantsOutcome
}

// Resolve sets the verification status of every mission. A storage failure marks
// the whole batch FAILED rather than leaving it partially resolved.
func (r *OrganizationResolver) Resolve(ctx context.Context, missions []*gorm.Mission) {
	if len(missions) == 0 {
		return
	}
	if err := r.resolve(ctx, missions); err != nil {
		logging.Error("[OrganizationResolver] Resolution failed, batch marked FAILED",
			"missions", len(missions), "error", err)
		for _, m := range missions {
			clearResolution(m, constants.VerificationFailed)
		}
	}
}

func (r *OrganizationResolver) resolve(ctx context.Context, missions []*gorm.Mission) error {
	var rnaMissions, siretMissions, nameMissions []*gorm.Mission
	var rnas, sirets, names []string

	for _, m := range missions {
		if rna := NormalizeIdentifier(m.OrganizationRNA); IsValidRNA(rna) {
			rnaMissions = append(rnaMissions, m)
			rnas = append(rnas, rna)
			continue
		}
		if siret := NormalizeIdentifier(m.OrganizationSiret); IsValidSiret(siret) {
			siretMissions = append(siretMissions, m)
			sirets = append(sirets, siret)
			continue
		}
		if name := strings.TrimSpace(m.OrganizationName); name != "" {
			nameMissions = append(nameMissions, m)
			names = append(names, name)
			continue
		}
		clearResolution(m, constants.VerificationNoData)
	}

	state := &resolution{
		rnaAPI:  make(map[string]grantsOutcome),
		etabAPI: make(map[string]grantsOutcome),
	}

	var err error
	if state.byRNA, err = r.orgs.FindByRNAs(ctx, common.Unique(rnas)); err != nil {
		return fmt.Errorf("failed to load organizations by RNA: %w", err)
	}
	if state.bySiret, err = r.orgs.FindBySirets(ctx, common.Unique(sirets)); err != nil {
		return fmt.Errorf("failed to load organizations by SIRET: %w", err)
	}

	for _, m := range rnaMissions {
		if err := r.resolveByRNA(ctx, state, m); err != nil {
			return err
		}
	}
	for _, m := range siretMissions {
		if err := r.resolveBySiret(ctx, state, m); err != nil {
			return err
		}
	}
	if len(nameMissions) > 0 {
		if err := r.resolveByName(ctx, nameMissions, common.Unique(names)); err != nil {
			return err
		}
	}
	return nil
}

func (r *OrganizationResolver) resolveByRNA(ctx context.Context, state *resolution, m *gorm.Mission) error {
	rna := NormalizeIdentifier(m.OrganizationRNA)

	// Missions sharing an RNA fetched earlier in this batch report the same source
	_, fetched := state.rnaAPI[rna]
	if org, ok := state.byRNA[rna]; ok && !fetched {
		applyResolution(m, org, constants.VerificationRNAMatchedWithDB)
		return nil
	}

	outcome, err := r.fetchAssociation(ctx, state, rna)
	if err != nil {
		return err
	}
	switch {
	case outcome.failed:
		clearResolution(m, constants.VerificationFailed)
	case outcome.org == nil:
		clearResolution(m, constants.VerificationRNANotMatched)
	default:
		applyResolution(m, outcome.org, constants.VerificationRNAMatchedWithSubvention)
	}
	return nil
}

// fetchAssociation queries the grants API once per RNA and persists the result.
// A grants API failure is an outcome; only a storage failure is an error.
func (r *OrganizationResolver) fetchAssociation(ctx context.Context, state *resolution, rna string) (grantsOutcome, error) {
	if outcome, ok := state.rnaAPI[rna]; ok {
		return outcome, nil
	}

	asso, err := r.grants.GetAssociation(ctx, rna)
	if err != nil {
		logging.Warn("[OrganizationResolver] Grants API association lookup failed", "rna", rna, "error", err)
		state.rnaAPI[rna] = grantsOutcome{failed: true}
		return state.rnaAPI[rna], nil
	}
	if asso == nil {
		state.rnaAPI[rna] = grantsOutcome{}
		return state.rnaAPI[rna], nil
	}

	incoming := OrganizationFromAssociation(asso)
	if incoming.RNA == "" {
		incoming.RNA = rna
	}

	target := &incoming
	if incoming.Siret != "" {
		existing, ok := state.bySiret[incoming.Siret]
		if !ok {
			found, err := r.orgs.FindBySirets(ctx, []string{incoming.Siret})
			if err != nil {
				return grantsOutcome{}, fmt.Errorf("failed to load organization %s: %w", incoming.Siret, err)
			}
			existing = found[incoming.Siret]
		}
		if existing != nil {
			MergeOrganization(existing, incoming)
			target = existing
		}
	}
	if err := r.orgs.Save(ctx, target); err != nil {
		return grantsOutcome{}, fmt.Errorf("failed to save organization %s: %w", rna, err)
	}
	if target.Siret != "" {
		state.bySiret[target.Siret] = target
	}

	state.byRNA[rna] = target
	state.rnaAPI[rna] = grantsOutcome{org: target}
	return state.rnaAPI[rna], nil
}

func (r *OrganizationResolver) resolveBySiret(ctx context.Context, state *resolution, m *gorm.Mission) error {
	siret := NormalizeIdentifier(m.OrganizationSiret)

	outcome, fetched := state.etabAPI[siret]
	if org, ok := state.bySiret[siret]; ok && !fetched {
		applyResolution(m, org, constants.VerificationSiretMatchedWithDB)
		return nil
	}

	if !fetched {
		var err error
		outcome, err = r.fetchEstablishment(ctx, state, siret)
		if err != nil {
			return err
		}
		state.etabAPI[siret] = outcome
	}

	switch {
	case outcome.failed:
		clearResolution(m, constants.VerificationFailed)
	case outcome.org == nil:
		clearResolution(m, constants.VerificationSiretNotMatched)
	default:
		applyResolution(m, outcome.org, constants.VerificationSiretMatchedWithSubvention)
	}
	return nil
}

// fetchEstablishment queries the grants API for a SIRET. When the establishment
// belongs to an association, the organization already stored under that RNA is
// enriched instead of creating a duplicate.
func (r *OrganizationResolver) fetchEstablishment(ctx context.Context, state *resolution, siret string) (grantsOutcome, error) {
	etab, err := r.grants.GetEstablishment(ctx, siret)
	if err != nil {
		logging.Warn("[OrganizationResolver] Grants API establishment lookup failed", "siret", siret, "error", err)
		return grantsOutcome{failed: true}, nil
	}
	if etab == nil {
		return grantsOutcome{}, nil
	}

	incoming := OrganizationFromEstablishment(etab)
	if incoming.Siret == "" {
		incoming.Siret = siret
		incoming.Siren = sirenOf(siret)
	}

	target := &incoming
	if IsValidRNA(incoming.RNA) {
		existing, ok := state.byRNA[incoming.RNA]
		if !ok {
			if existing, err = r.orgs.FindByRNA(ctx, incoming.RNA); err != nil {
				return grantsOutcome{}, fmt.Errorf("failed to load organization %s: %w", incoming.RNA, err)
			}
		}
		if existing != nil {
			MergeOrganization(existing, incoming)
			target = existing
		} else if asso, err := r.grants.GetAssociation(ctx, incoming.RNA); err == nil && asso != nil {
			MergeOrganization(target, OrganizationFromAssociation(asso))
		}
	}

	if err := r.orgs.Save(ctx, target); err != nil {
		return grantsOutcome{}, fmt.Errorf("failed to save organization %s: %w", siret, err)
	}

	state.bySiret[siret] = target
	if target.RNA != "" {
		state.byRNA[target.RNA] = target
	}
	return grantsOutcome{org: target}, nil
}

// resolveByName matches on the exact name slug. Anything else goes through the
// name match cache and is left for an operator to confirm.
func (r *OrganizationResolver) resolveByName(ctx context.Context, missions []*gorm.Mission, names []string) error {
	cache, err := r.matches.FindByNames(ctx, names)
	if err != nil {
		return fmt.Errorf("failed to load name matches: %w", err)
	}

	exact := make(map[string]*gorm.Organization)
	dirty := make(map[string]*gorm.OrganizationNameMatch)

	for _, m := range missions {
		name := strings.TrimSpace(m.OrganizationName)
		slug := common.Slugify(name)

		org, checked := exact[slug]
		if !checked {
			candidates, err := r.orgs.FindBySlug(ctx, slug)
			if err != nil {
				return fmt.Errorf("failed to match organization name: %w", err)
			}
			if len(candidates) == 1 {
				org = candidates[0]
			}
			exact[slug] = org
		}
		if org != nil {
			applyResolution(m, org, constants.VerificationNameExactMatched)
			continue
		}

		match, ok := cache[name]
		if !ok {
			candidates, err := r.orgs.SearchBySlug(ctx, slug, constants.MaxNameMatchCandidates)
			if err != nil {
				return fmt.Errorf("failed to search organization name: %w", err)
			}
			match = &gorm.OrganizationNameMatch{Name: name, Slug: slug}
			for _, candidate := range candidates {
				match.OrganizationIDs = append(match.OrganizationIDs, candidate.ID)
			}
			cache[name] = match
			dirty[name] = match
		}
		if m.ID != "" && !match.HasMission(m.ID) {
			match.MissionIDs = append(match.MissionIDs, m.ID)
			dirty[name] = match
		}

		if match.ConfirmedOrganizationID != nil {
			confirmed, err := r.confirmedOrganization(ctx, *match.ConfirmedOrganizationID)
			if err != nil {
				return err
			}
			if confirmed != nil {
				applyResolution(m, confirmed, constants.VerificationNameApproximateMatched)
				continue
			}
		}

		if len(match.OrganizationIDs) > 0 {
			clearResolution(m, constants.VerificationNameApproximateMatched)
		} else {
			clearResolution(m, constants.VerificationNameNotMatched)
		}
	}

	for _, match := range dirty {
		if err := r.matches.Save(ctx, match); err != nil {
			return fmt.Errorf("failed to save name match %q: %w", match.Name, err)
		}
	}
	return nil
}

// confirmedOrganization loads the organization an operator picked for a name
func (r *OrganizationResolver) confirmedOrganization(ctx context.Context, id string) (*gorm.Organization, error) {
	orgs, err := r.orgs.FindByIDs(ctx, []string{id})
	if err != nil {
		return nil, fmt.Errorf("failed to load confirmed organization %s: %w", id, err)
	}
	if len(orgs) == 0 {
		return nil, nil
	}
	return orgs[0], nil
}

func applyResolution(m *gorm.Mission, org *gorm.Organization, status constants.VerificationStatus) {
	id := org.ID
	m.OrganizationID = &id
	m.OrganizationNameVerified = org.Title
	m.OrganizationRNAVerified = org.RNA
	m.OrganizationSirenVerified = org.Siren
	m.OrganizationSiretVerified = org.Siret
	m.OrganizationAddressVerified = org.Address
	m.OrganizationCityVerified = org.City
	m.OrganizationPostalCodeVerified = org.PostalCode
	m.OrganizationVerificationStatus = status
}

func clearResolution(m *gorm.Mission, status constants.VerificationStatus) {
	m.OrganizationID = nil
	m.OrganizationNameVerified = ""
	m.OrganizationRNAVerified = ""
	m.OrganizationSirenVerified = ""
	m.OrganizationSiretVerified = ""
	m.OrganizationAddressVerified = ""
	m.OrganizationCityVerified = ""
	m.OrganizationPostalCodeVerified = ""
	m.OrganizationVerificationStatus = status
}

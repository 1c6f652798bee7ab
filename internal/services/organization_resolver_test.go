package services

import (
	"context"
	"errors"
	"testing"

	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/db/repositories"
	"civic-engagement/missionhub/internal/models/dtos"
	"civic-engagement/missionhub/internal/models/gorm"
	"civic-engagement/missionhub/internal/testutil"
)

type resolverFixture struct {
	resolver *OrganizationResolver
	orgs     *repositories.OrganizationRepo
	matches  *repositories.NameMatchRepo
	grants   *mockGrantsClient
}

func newResolverFixture(t *testing.T) *resolverFixture {
	t.Helper()
	db := testutil.NewGormDB(t)
	orgs := repositories.NewOrganizationRepo(db)
	matches := repositories.NewNameMatchRepo(db)
	grants := &mockGrantsClient{}
	return &resolverFixture{
		resolver: NewOrganizationResolver(orgs, matches, grants),
		orgs:     orgs,
		matches:  matches,
		grants:   grants,
	}
}

func (f *resolverFixture) seed(t *testing.T, org *gorm.Organization) *gorm.Organization {
	t.Helper()
	if err := f.orgs.Save(context.Background(), org); err != nil {
		t.Fatalf("Failed to seed organization: %v", err)
	}
	return org
}

func TestOrganizationResolver_RNATakesPrecedenceOverName(t *testing.T) {
	f := newResolverFixture(t)
	byRNA := f.seed(t, &gorm.Organization{RNA: "W751000001", Title: "Association A", Slug: "association-a", City: "Paris"})
	f.seed(t, &gorm.Organization{Title: "Club B", Slug: "club-b"})

	m := &gorm.Mission{ID: "m1", OrganizationRNA: "w75-100-0001", OrganizationName: "Club B"}
	f.resolver.Resolve(context.Background(), []*gorm.Mission{m})

	if m.OrganizationVerificationStatus != constants.VerificationRNAMatchedWithDB {
		t.Errorf("Expected %s, got %s", constants.VerificationRNAMatchedWithDB, m.OrganizationVerificationStatus)
	}
	if m.OrganizationID == nil || *m.OrganizationID != byRNA.ID {
		t.Errorf("Expected organization %s, got %v", byRNA.ID, m.OrganizationID)
	}
	if m.OrganizationNameVerified != "Association A" || m.OrganizationCityVerified != "Paris" {
		t.Errorf("Expected verified fields copied, got %q / %q", m.OrganizationNameVerified, m.OrganizationCityVerified)
	}
	if m.OrganizationName != "Club B" {
		t.Errorf("Expected declared name untouched, got %q", m.OrganizationName)
	}
	if f.grants.associationCalls != 0 {
		t.Errorf("Expected no grants API call, got %d", f.grants.associationCalls)
	}
}

func TestOrganizationResolver_RNAFromGrantsAPI(t *testing.T) {
	f := newResolverFixture(t)
	f.grants.getAssociationFunc = func(ctx context.Context, rna string) (*dtos.GrantsAssociation, error) {
		return &dtos.GrantsAssociation{
			RNA:             dtos.Valued[string]{{Value: rna}},
			DenominationRNA: dtos.Valued[string]{{Value: "Les Jardins"}},
			HeadOfficeAddress: dtos.Valued[dtos.GrantsAddress]{{Value: dtos.GrantsAddress{
				Street: "rue Haute", PostalCode: "44000", City: "Nantes",
			}}},
		}, nil
	}

	m1 := &gorm.Mission{ID: "m1", OrganizationRNA: "W442000001"}
	m2 := &gorm.Mission{ID: "m2", OrganizationRNA: "W442000001"}
	f.resolver.Resolve(context.Background(), []*gorm.Mission{m1, m2})

	for _, m := range []*gorm.Mission{m1, m2} {
		if m.OrganizationVerificationStatus != constants.VerificationRNAMatchedWithSubvention {
			t.Errorf("Expected %s for %s, got %s", constants.VerificationRNAMatchedWithSubvention, m.ID, m.OrganizationVerificationStatus)
		}
	}
	if f.grants.associationCalls != 1 {
		t.Errorf("Expected 1 grants API call, got %d", f.grants.associationCalls)
	}

	stored, err := f.orgs.FindByRNA(context.Background(), "W442000001")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if stored == nil {
		t.Fatal("Expected organization to be persisted")
	}
	if stored.City != "Nantes" || stored.Source != constants.OrganizationSourceSubvention {
		t.Errorf("Unexpected stored organization %+v", stored)
	}
	if m1.OrganizationID == nil || *m1.OrganizationID != stored.ID {
		t.Errorf("Expected mission linked to %s, got %v", stored.ID, m1.OrganizationID)
	}
}

func TestOrganizationResolver_GrantsOutcomes(t *testing.T) {
	f := newResolverFixture(t)
	f.grants.getAssociationFunc = func(ctx context.Context, rna string) (*dtos.GrantsAssociation, error) {
		if rna == "W000000001" {
			return nil, errors.New("upstream timeout")
		}
		return nil, nil
	}

	failed := &gorm.Mission{ID: "m1", OrganizationRNA: "W000000001"}
	unknown := &gorm.Mission{ID: "m2", OrganizationRNA: "W000000002"}
	f.resolver.Resolve(context.Background(), []*gorm.Mission{failed, unknown})

	if failed.OrganizationVerificationStatus != constants.VerificationFailed {
		t.Errorf("Expected FAILED, got %s", failed.OrganizationVerificationStatus)
	}
	if unknown.OrganizationVerificationStatus != constants.VerificationRNANotMatched {
		t.Errorf("Expected RNA_NOT_MATCHED, got %s", unknown.OrganizationVerificationStatus)
	}
	if unknown.OrganizationID != nil {
		t.Errorf("Expected no organization link, got %v", *unknown.OrganizationID)
	}
}

func TestOrganizationResolver_SiretFromDB(t *testing.T) {
	f := newResolverFixture(t)
	org := f.seed(t, &gorm.Organization{Siret: "12345678900012", Siren: "123456789", Title: "Entreprise Solidaire"})

	m := &gorm.Mission{ID: "m1", OrganizationRNA: "invalid", OrganizationSiret: "123 456 789 00012"}
	f.resolver.Resolve(context.Background(), []*gorm.Mission{m})

	if m.OrganizationVerificationStatus != constants.VerificationSiretMatchedWithDB {
		t.Errorf("Expected %s, got %s", constants.VerificationSiretMatchedWithDB, m.OrganizationVerificationStatus)
	}
	if m.OrganizationID == nil || *m.OrganizationID != org.ID {
		t.Errorf("Expected organization %s, got %v", org.ID, m.OrganizationID)
	}
}

func TestOrganizationResolver_SiretMergesIntoRNAOrganization(t *testing.T) {
	f := newResolverFixture(t)
	existing := f.seed(t, &gorm.Organization{RNA: "W691000001", Title: "Association Lyonnaise"})
	f.grants.getEstablishmentFunc = func(ctx context.Context, siret string) (*dtos.GrantsEstablishment, error) {
		return &dtos.GrantsEstablishment{
			Siret: dtos.Valued[string]{{Value: siret}},
			RNA:   dtos.Valued[string]{{Value: "W691000001"}},
			Address: dtos.Valued[dtos.GrantsAddress]{{Value: dtos.GrantsAddress{
				Street: "quai Perrache", PostalCode: "69002", City: "Lyon",
			}}},
		}, nil
	}

	m := &gorm.Mission{ID: "m1", OrganizationSiret: "98765432100017"}
	f.resolver.Resolve(context.Background(), []*gorm.Mission{m})

	if m.OrganizationVerificationStatus != constants.VerificationSiretMatchedWithSubvention {
		t.Errorf("Expected %s, got %s", constants.VerificationSiretMatchedWithSubvention, m.OrganizationVerificationStatus)
	}
	if m.OrganizationID == nil || *m.OrganizationID != existing.ID {
		t.Fatalf("Expected the RNA organization to be reused, got %v", m.OrganizationID)
	}

	stored, err := f.orgs.FindByRNA(context.Background(), "W691000001")
	if err != nil || stored == nil {
		t.Fatalf("Expected stored organization, got %v (%v)", stored, err)
	}
	if stored.Siret != "98765432100017" || stored.City != "Lyon" {
		t.Errorf("Expected SIRET and city backfilled, got %q / %q", stored.Siret, stored.City)
	}
	if stored.Title != "Association Lyonnaise" {
		t.Errorf("Expected title kept, got %q", stored.Title)
	}
}

func TestOrganizationResolver_ByName(t *testing.T) {
	f := newResolverFixture(t)
	exact := f.seed(t, &gorm.Organization{Title: "Les Restos du Coeur", Slug: "les-restos-du-coeur"})
	f.seed(t, &gorm.Organization{Title: "Amis du Parc de Lyon", Slug: "amis-du-parc-de-lyon"})

	exactMission := &gorm.Mission{ID: "m1", OrganizationName: "Les Restos du Coeur"}
	approxMission := &gorm.Mission{ID: "m2", OrganizationName: "Amis du Parc"}
	unknownMission := &gorm.Mission{ID: "m3", OrganizationName: "Inconnue"}
	noData := &gorm.Mission{ID: "m4"}

	f.resolver.Resolve(context.Background(), []*gorm.Mission{exactMission, approxMission, unknownMission, noData})

	if exactMission.OrganizationVerificationStatus != constants.VerificationNameExactMatched {
		t.Errorf("Expected exact match, got %s", exactMission.OrganizationVerificationStatus)
	}
	if exactMission.OrganizationID == nil || *exactMission.OrganizationID != exact.ID {
		t.Errorf("Expected organization %s, got %v", exact.ID, exactMission.OrganizationID)
	}
	if approxMission.OrganizationVerificationStatus != constants.VerificationNameApproximateMatched {
		t.Errorf("Expected approximate match, got %s", approxMission.OrganizationVerificationStatus)
	}
	if approxMission.OrganizationID != nil {
		t.Error("Expected approximate match not to be linked automatically")
	}
	if unknownMission.OrganizationVerificationStatus != constants.VerificationNameNotMatched {
		t.Errorf("Expected NAME_NOT_MATCHED, got %s", unknownMission.OrganizationVerificationStatus)
	}
	if noData.OrganizationVerificationStatus != constants.VerificationNoData {
		t.Errorf("Expected NO_DATA, got %s", noData.OrganizationVerificationStatus)
	}

	cache, err := f.matches.FindByNames(context.Background(), []string{"Amis du Parc"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	match := cache["Amis du Parc"]
	if match == nil {
		t.Fatal("Expected a name match cache entry")
	}
	if len(match.OrganizationIDs) != 1 {
		t.Errorf("Expected 1 candidate, got %d", len(match.OrganizationIDs))
	}
	if !match.HasMission("m2") {
		t.Errorf("Expected mission m2 attached, got %v", match.MissionIDs)
	}
}

func TestOrganizationResolver_ConfirmedNameMatch(t *testing.T) {
	f := newResolverFixture(t)
	org := f.seed(t, &gorm.Organization{Title: "Secours Populaire Fédération", Slug: "secours-populaire-federation"})
	confirmed := org.ID
	if err := f.matches.Save(context.Background(), &gorm.OrganizationNameMatch{
		Name:                    "Secours Pop",
		Slug:                    "secours-pop",
		ConfirmedOrganizationID: &confirmed,
	}); err != nil {
		t.Fatalf("Failed to seed name match: %v", err)
	}

	m := &gorm.Mission{ID: "m1", OrganizationName: "Secours Pop"}
	f.resolver.Resolve(context.Background(), []*gorm.Mission{m})

	if m.OrganizationID == nil || *m.OrganizationID != org.ID {
		t.Fatalf("Expected confirmed organization %s, got %v", org.ID, m.OrganizationID)
	}
	if m.OrganizationVerificationStatus != constants.VerificationNameApproximateMatched {
		t.Errorf("Expected %s, got %s", constants.VerificationNameApproximateMatched, m.OrganizationVerificationStatus)
	}
}

func TestOrganizationResolver_StorageFailureFailsBatch(t *testing.T) {
	db := testutil.NewGormDB(t)
	resolver := NewOrganizationResolver(repositories.NewOrganizationRepo(db), repositories.NewNameMatchRepo(db), &mockGrantsClient{})

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.Close()

	stale := "stale-org"
	missions := []*gorm.Mission{
		{ID: "m1", OrganizationRNA: "W751000001", OrganizationID: &stale},
		{ID: "m2", OrganizationName: "Club"},
	}
	resolver.Resolve(context.Background(), missions)

	for _, m := range missions {
		if m.OrganizationVerificationStatus != constants.VerificationFailed {
			t.Errorf("Expected FAILED for %s, got %s", m.ID, m.OrganizationVerificationStatus)
		}
		if m.OrganizationID != nil {
			t.Errorf("Expected organization link cleared for %s", m.ID)
		}
	}
}

func TestOrganizationResolver_RNABackfillsOrganizationStoredBySiret(t *testing.T) {
	f := newResolverFixture(t)
	existing := f.seed(t, &gorm.Organization{Siret: "12345678900011", Siren: "123456789", Title: "Les Jardins", Slug: "les-jardins"})
	f.grants.getAssociationFunc = func(ctx context.Context, rna string) (*dtos.GrantsAssociation, error) {
		return &dtos.GrantsAssociation{
			RNA:             dtos.Valued[string]{{Value: rna}},
			DenominationRNA: dtos.Valued[string]{{Value: "Les Jardins Partagés"}},
			Establishments: []dtos.GrantsEstablishment{{
				Siret:      dtos.Valued[string]{{Value: "12345678900011"}},
				HeadOffice: dtos.Valued[bool]{{Value: true}},
			}},
		}, nil
	}

	m := &gorm.Mission{ID: "m1", OrganizationRNA: "W442000002"}
	f.resolver.Resolve(context.Background(), []*gorm.Mission{m})

	if m.OrganizationVerificationStatus != constants.VerificationRNAMatchedWithSubvention {
		t.Errorf("Expected %s, got %s", constants.VerificationRNAMatchedWithSubvention, m.OrganizationVerificationStatus)
	}
	if m.OrganizationID == nil || *m.OrganizationID != existing.ID {
		t.Fatalf("Expected the SIRET organization %s to be reused, got %v", existing.ID, m.OrganizationID)
	}

	stored, err := f.orgs.FindByRNA(context.Background(), "W442000002")
	if err != nil || stored == nil {
		t.Fatalf("Expected stored organization, got %v (%v)", stored, err)
	}
	if stored.ID != existing.ID {
		t.Errorf("Expected RNA backfilled on %s, got a second organization %s", existing.ID, stored.ID)
	}
	if stored.Siret != "12345678900011" {
		t.Errorf("Expected SIRET kept, got %q", stored.Siret)
	}
}

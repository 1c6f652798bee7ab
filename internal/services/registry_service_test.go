package services

import (
	"context"
	"testing"

	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/db/repositories"
	"civic-engagement/missionhub/internal/models/gorm"
	"civic-engagement/missionhub/internal/providers"
	"civic-engagement/missionhub/internal/testutil"
)

func TestOrganizationFromRegistryRow(t *testing.T) {
	org, ok := OrganizationFromRegistryRow(providers.RegistryRow{
		"id":              "W751000001",
		"titre":           "Association Sportive du Quartier",
		"adrs_numvoie":    "12",
		"adrs_typevoie":   "RUE",
		"adrs_libvoie":    "DES ECOLES",
		"adrs_codepostal": "75005",
		"adrs_libcommune": "Paris",
		"siret":           "12345678900012",
		"date_creat":      "2010-09-01",
	})

	if !ok {
		t.Fatal("Expected row to be accepted")
	}
	if org.Address != "12 RUE DES ECOLES" {
		t.Errorf("Expected joined street, got %q", org.Address)
	}
	if org.Slug != "association-sportive-du-quartier" {
		t.Errorf("Unexpected slug %q", org.Slug)
	}
	if org.Siren != "123456789" || org.Department != "75" {
		t.Errorf("Expected siren/department derived, got %q / %q", org.Siren, org.Department)
	}
	if org.Source != constants.OrganizationSourceRegistry {
		t.Errorf("Expected registry source, got %s", org.Source)
	}

	if _, ok := OrganizationFromRegistryRow(providers.RegistryRow{"id": "123"}); ok {
		t.Error("Expected invalid RNA to be rejected")
	}
}

func TestRegistryService_Ingest(t *testing.T) {
	db := testutil.NewGormDB(t)
	ctx := context.Background()
	orgs := repositories.NewOrganizationRepo(db)

	existing := &gorm.Organization{RNA: "W751000001", Title: "Titre saisi à la main", Slug: "titre-saisi-a-la-main"}
	if err := orgs.Save(ctx, existing); err != nil {
		t.Fatalf("Failed to seed organization: %v", err)
	}

	source := &mockRegistrySource{rows: []providers.RegistryRow{
		{"id": "W751000001", "titre": "Titre du registre", "adrs_libcommune": "Paris"},
		{"id": "W751000002", "titre": "Nouvelle association"},
		{"id": "W751000002", "titre": "Doublon"},
		{"id": "pas-un-rna", "titre": "Rejetée"},
	}}

	stats, err := NewRegistryService(source, orgs).Ingest(ctx, "registry.zip")
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	if stats.Created != 1 || stats.Updated != 1 || stats.Unchanged != 1 || stats.Skipped != 1 {
		t.Errorf("Expected 1 created, 1 updated, 1 unchanged, 1 skipped, got %+v", stats)
	}

	updated, err := orgs.FindByRNA(ctx, "W751000001")
	if err != nil || updated == nil {
		t.Fatalf("Expected organization, got %v (%v)", updated, err)
	}
	if updated.Title != "Titre saisi à la main" {
		t.Errorf("Expected existing title kept, got %q", updated.Title)
	}
	if updated.City != "Paris" {
		t.Errorf("Expected city backfilled, got %q", updated.City)
	}
}

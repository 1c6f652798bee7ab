package jobs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/db"
	"civic-engagement/missionhub/internal/db/repositories"
	"civic-engagement/missionhub/internal/metrics"
	"civic-engagement/missionhub/internal/models/dtos"
	"civic-engagement/missionhub/internal/models/gorm"
	"civic-engagement/missionhub/internal/providers"
	"civic-engagement/missionhub/internal/services"
	"civic-engagement/missionhub/internal/testutil"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
)

// Mock FeedSource
type mockFeedSource struct {
	fetchFeedFunc func(ctx context.Context, feed providers.FeedRequest) ([]byte, error)
	calls         int
}

func (m *mockFeedSource) FetchFeed(ctx context.Context, feed providers.FeedRequest) ([]byte, error) {
	m.calls++
	return m.fetchFeedFunc(ctx, feed)
}

// Mock Geocoder that never finds anything
type mockGeocoder struct{}

func (mockGeocoder) Geocode(ctx context.Context, rows []dtos.GeocodeRequestRow) ([]dtos.GeocodeResult, error) {
	return nil, nil
}

// Mock GrantsClient that never finds anything
type mockGrantsClient struct{}

func (mockGrantsClient) GetAssociation(ctx context.Context, rna string) (*dtos.GrantsAssociation, error) {
	return nil, nil
}

func (mockGrantsClient) GetEstablishment(ctx context.Context, siret string) (*dtos.GrantsEstablishment, error) {
	return nil, nil
}

type importFixture struct {
	job         *ImportJob
	feed        *mockFeedSource
	publishers  *repositories.PublisherRepo
	imports     *repositories.ImportRepo
	missions    *repositories.MissionRepo
	analytics   *repositories.AnalyticsRepo
	analyticsDB *sqlx.DB
	metrics     *metrics.MetricsRegistry
	pub         *gorm.Publisher
	clock       time.Time
}

func newImportFixture(t *testing.T) *importFixture {
	t.Helper()
	db := testutil.NewGormDB(t)
	analyticsDB := testutil.NewAnalyticsDB(t)

	f := &importFixture{
		feed:        &mockFeedSource{},
		publishers:  repositories.NewPublisherRepo(db),
		imports:     repositories.NewImportRepo(db),
		missions:    repositories.NewMissionRepo(db),
		analytics:   repositories.NewAnalyticsRepo(analyticsDB),
		analyticsDB: analyticsDB,
		metrics:     metrics.NewMetricsRegistryWith(prometheus.NewRegistry()),
		clock:       time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
	}

	orgs := repositories.NewOrganizationRepo(db)
	history := repositories.NewHistoryRepo(db)
	mirror := services.NewMirrorService(f.missions, orgs, f.publishers,
		repositories.NewModerationRepo(db), f.analytics, f.metrics)

	f.job = NewImportJob(
		f.publishers,
		f.imports,
		f.missions,
		f.feed,
		services.NewMissionBuilder(nil, nil),
		services.NewGeolocationService(mockGeocoder{}),
		services.NewOrganizationResolver(orgs, repositories.NewNameMatchRepo(db), mockGrantsClient{}),
		services.NewSynchronizer(f.missions, history, ""),
		mirror,
		f.metrics,
		ImportOptions{ChunkSize: 2, BuildConcurrency: 2},
	)
	f.job.now = func() time.Time { return f.clock }

	f.pub = &gorm.Publisher{Name: "Partenaire", FeedURL: "https://partner.example/feed.xml", IsActive: true}
	if err := f.publishers.Create(context.Background(), f.pub); err != nil {
		t.Fatalf("Failed to create publisher: %v", err)
	}
	return f
}

// serve makes the feed return a document with one mission per client id
func (f *importFixture) serve(clientIDs ...string) {
	var b strings.Builder
	b.WriteString("<source>")
	for _, id := range clientIDs {
		fmt.Fprintf(&b, `<mission><clientId>%s</clientId><title>Mission %s solidaire</title>`+
			`<description>%s</description><applicationUrl>https://partner.example/%s</applicationUrl>`+
			`<domain>sport</domain><places>2</places>`+
			`<addresses><address><city>Rennes</city><postalCode>35000</postalCode>`+
			`<location><lat>48.11</lat><lon>-1.68</lon></location></address></addresses></mission>`,
			id, id, strings.Repeat("Une description suffisamment longue. ", 10), id)
	}
	b.WriteString("</source>")
	raw := []byte(b.String())
	f.feed.fetchFeedFunc = func(ctx context.Context, feed providers.FeedRequest) ([]byte, error) {
		return raw, nil
	}
}

func (f *importFixture) lastImport(t *testing.T) *gorm.Import {
	t.Helper()
	imports, err := f.imports.List(context.Background(), f.pub.ID, 1)
	if err != nil {
		t.Fatalf("Failed to list imports: %v", err)
	}
	if len(imports) != 1 {
		t.Fatalf("Expected an import entry, got %d", len(imports))
	}
	return imports[0]
}

func (f *importFixture) mission(t *testing.T, clientID string) *gorm.Mission {
	t.Helper()
	found, err := f.missions.FindByClientIDs(context.Background(), f.pub.ID, []string{clientID})
	if err != nil {
		t.Fatalf("Failed to load mission: %v", err)
	}
	m := found[clientID]
	if m == nil {
		t.Fatalf("Expected mission %s to be stored", clientID)
	}
	return m
}

func TestImportJob_RunIsIdempotent(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()
	f.serve("a", "b", "c")

	if err := f.job.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	first := f.lastImport(t)
	if first.Status != constants.ImportSuccess {
		t.Fatalf("Expected SUCCESS, got %s (%s)", first.Status, first.Error)
	}
	if first.TotalCount != 3 || first.CreatedCount != 3 || first.UpdatedCount != 0 || first.DeletedCount != 0 {
		t.Errorf("Expected 3 total / 3 created, got %+v", first)
	}
	run1 := f.clock

	f.clock = run1.Add(3 * time.Hour)
	if err := f.job.Run(ctx); err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	second := f.lastImport(t)
	if second.CreatedCount != 0 || second.UpdatedCount != 0 || second.DeletedCount != 0 {
		t.Errorf("Expected an unchanged feed to change nothing, got %+v", second)
	}

	m := f.mission(t, "b")
	if !m.UpdatedAt.Equal(run1) {
		t.Errorf("Expected updated_at to stay %v, got %v", run1, m.UpdatedAt)
	}
	if !m.LastSyncAt.Equal(f.clock) {
		t.Errorf("Expected last_sync_at %v, got %v", f.clock, m.LastSyncAt)
	}

	mirrored, err := f.analytics.FindMission(ctx, m.ID)
	if err != nil {
		t.Fatalf("Failed to load analytics mission: %v", err)
	}
	if mirrored == nil {
		t.Error("Expected mission to be mirrored to analytics")
	}

	if got := promtestutil.ToFloat64(f.metrics.ImportRunsTotal.WithLabelValues(f.pub.ID, "SUCCESS")); got != 2 {
		t.Errorf("Expected 2 successful runs counted, got %v", got)
	}
	if got := promtestutil.ToFloat64(f.metrics.ImportMissionsTotal.WithLabelValues(f.pub.ID, "created")); got != 3 {
		t.Errorf("Expected 3 created missions counted, got %v", got)
	}
}

func TestImportJob_SweepsMissingMissions(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	f.serve("a", "b", "c")
	if err := f.job.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	f.clock = f.clock.Add(time.Hour)
	f.serve("a", "c")
	if err := f.job.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	imp := f.lastImport(t)
	if imp.DeletedCount != 1 {
		t.Errorf("Expected 1 deleted mission, got %d", imp.DeletedCount)
	}

	m := f.mission(t, "b")
	if !m.Deleted {
		t.Fatal("Expected mission b to be soft-deleted")
	}
	if m.DeletedAt == nil || !m.DeletedAt.Equal(f.clock) {
		t.Errorf("Expected deleted_at %v, got %v", f.clock, m.DeletedAt)
	}

	count, err := f.missions.CountByPublisher(ctx, f.pub.ID)
	if err != nil {
		t.Fatalf("Failed to count missions: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected 2 live missions, got %d", count)
	}
}

func TestImportJob_FeedErrorKeepsMissions(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	f.serve("a", "b")
	if err := f.job.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	f.clock = f.clock.Add(time.Hour)
	f.feed.fetchFeedFunc = func(ctx context.Context, feed providers.FeedRequest) ([]byte, error) {
		return nil, errors.New("connection refused")
	}
	if err := f.job.Run(ctx); err != nil {
		t.Fatalf("Expected a failed publisher not to fail the run, got %v", err)
	}

	imp := f.lastImport(t)
	if imp.Status != constants.ImportFailed {
		t.Errorf("Expected FAILED, got %s", imp.Status)
	}
	if !strings.Contains(imp.Error, "connection refused") {
		t.Errorf("Expected error to be recorded, got %q", imp.Error)
	}
	if imp.FinishedAt == nil {
		t.Error("Expected finished_at to be set")
	}

	count, err := f.missions.CountByPublisher(ctx, f.pub.ID)
	if err != nil {
		t.Fatalf("Failed to count missions: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected missions to survive a feed error, got %d live", count)
	}
	if got := promtestutil.ToFloat64(f.metrics.ImportRunsTotal.WithLabelValues(f.pub.ID, "FAILED")); got != 1 {
		t.Errorf("Expected 1 failed run counted, got %v", got)
	}
}

func TestImportJob_EmptyFeedRemovesEverything(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()

	f.serve("a", "b")
	if err := f.job.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	f.clock = f.clock.Add(time.Hour)
	f.serve()
	if err := f.job.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	imp := f.lastImport(t)
	if imp.Status != constants.ImportSuccess || imp.DeletedCount != 2 {
		t.Errorf("Expected SUCCESS with 2 deleted, got %s with %d", imp.Status, imp.DeletedCount)
	}
}

func TestImportJob_PanicEndsAsFailedEntry(t *testing.T) {
	f := newImportFixture(t)
	f.feed.fetchFeedFunc = func(ctx context.Context, feed providers.FeedRequest) ([]byte, error) {
		panic("boom")
	}

	imp, err := f.job.ImportPublisher(context.Background(), f.pub.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if imp.Status != constants.ImportFailed {
		t.Errorf("Expected FAILED, got %s", imp.Status)
	}
	if !strings.Contains(imp.Error, "boom") {
		t.Errorf("Expected panic value in error, got %q", imp.Error)
	}
	if f.job.Running() {
		t.Error("Expected guard to be released")
	}
}

func TestImportJob_Guard(t *testing.T) {
	f := newImportFixture(t)
	f.serve("a")
	f.job.running.Store(true)

	if err := f.job.Run(context.Background()); !errors.Is(err, ErrImportRunning) {
		t.Errorf("Expected ErrImportRunning, got %v", err)
	}
	if _, err := f.job.ImportPublisher(context.Background(), f.pub.ID); !errors.Is(err, ErrImportRunning) {
		t.Errorf("Expected ErrImportRunning, got %v", err)
	}
	if f.feed.calls != 0 {
		t.Errorf("Expected no feed fetch, got %d", f.feed.calls)
	}
}

func TestImportJob_ImportPublisher(t *testing.T) {
	f := newImportFixture(t)
	f.serve("a", "b", "c", "d", "e")

	imp, err := f.job.ImportPublisher(context.Background(), f.pub.ID)
	if err != nil {
		t.Fatalf("ImportPublisher failed: %v", err)
	}
	// Five entries span three chunks of two
	if imp.CreatedCount != 5 {
		t.Errorf("Expected 5 created, got %d", imp.CreatedCount)
	}
	if !imp.StartedAt.Equal(f.clock) {
		t.Errorf("Expected started_at %v, got %v", f.clock, imp.StartedAt)
	}

	if _, err := f.job.ImportPublisher(context.Background(), "unknown"); !errors.Is(err, ErrPublisherNotFound) {
		t.Errorf("Expected ErrPublisherNotFound, got %v", err)
	}
}

func TestImportJob_MirrorCatchesUpAfterFailure(t *testing.T) {
	f := newImportFixture(t)
	ctx := context.Background()
	f.serve("a", "b")

	if _, err := f.analyticsDB.ExecContext(ctx, "DROP TABLE missions"); err != nil {
		t.Fatalf("Failed to drop analytics table: %v", err)
	}
	if err := f.job.Run(ctx); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	first := f.lastImport(t)
	if first.Status != constants.ImportSuccess || first.Mirrored {
		t.Fatalf("Expected a SUCCESS run left unmirrored, got %s (mirrored %v)", first.Status, first.Mirrored)
	}

	if err := db.MigrateAnalytics(ctx, f.analyticsDB); err != nil {
		t.Fatalf("Failed to restore analytics schema: %v", err)
	}

	// Same feed: nothing changes in the primary store, the mirror still catches up
	f.clock = f.clock.Add(3 * time.Hour)
	if err := f.job.Run(ctx); err != nil {
		t.Fatalf("Second run failed: %v", err)
	}
	second := f.lastImport(t)
	if second.UpdatedCount != 0 || second.CreatedCount != 0 {
		t.Errorf("Expected an unchanged feed, got %+v", second)
	}
	if !second.Mirrored {
		t.Error("Expected the second run to complete the mirror")
	}

	for _, clientID := range []string{"a", "b"} {
		m := f.mission(t, clientID)
		mirrored, err := f.analytics.FindMission(ctx, m.ID)
		if err != nil || mirrored == nil {
			t.Errorf("Expected mission %s to be mirrored, got %v", clientID, err)
		}
	}

	// The watermark moved: a third unchanged run mirrors nothing again
	f.clock = f.clock.Add(3 * time.Hour)
	before := promtestutil.ToFloat64(f.metrics.MirrorRecordsTotal.WithLabelValues("missions", "upserted"))
	if err := f.job.Run(ctx); err != nil {
		t.Fatalf("Third run failed: %v", err)
	}
	after := promtestutil.ToFloat64(f.metrics.MirrorRecordsTotal.WithLabelValues("missions", "upserted"))
	if after != before {
		t.Errorf("Expected no mission upserted by the third run, got %v more", after-before)
	}
}

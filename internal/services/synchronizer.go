package services

import (
	"context"
	"fmt"
	"time"

	"civic-engagement/missionhub/internal/constants"
	"civic-engagement/missionhub/internal/db/repositories"
	"civic-engagement/missionhub/internal/logging"
	"civic-engagement/missionhub/internal/models/gorm"
)

// ChunkStats counts what one WriteChunk did
type ChunkStats struct {
	Created   int
	Updated   int
	Unchanged int
	Refused   int
	Failed    int
}

// Add accumulates another chunk's counts
func (s *ChunkStats) Add(other ChunkStats) {
	s.Created += other.Created
	s.Updated += other.Updated
	s.Unchanged += other.Unchanged
	s.Refused += other.Refused
	s.Failed += other.Failed
}

// Synchronizer persists built missions to the primary store and derives their history
type Synchronizer struct {
	missions         *repositories.MissionRepo
	history          *repositories.HistoryRepo
	trackedModerator string
	now              func() time.Time
}

func NewSynchronizer(missions *repositories.MissionRepo, history *repositories.HistoryRepo, trackedModerator string) *Synchronizer {
	return &Synchronizer{
		missions:         missions,
		history:          history,
		trackedModerator: trackedModerator,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// WriteChunk upserts new and changed missions and bumps last_sync_at of unchanged
// ones. updated_at moves to runStart only when content changed. A failing batch
// upsert is retried record by record; records that still fail are logged and
// counted, not fatal, and a stored version of them is kept out of the sweep.
func (s *Synchronizer) WriteChunk(ctx context.Context, prev map[string]*gorm.Mission, built []*gorm.Mission, runStart time.Time) (ChunkStats, error) {
	var stats ChunkStats
	var toWrite []*gorm.Mission
	var unchangedIDs []string
	eventsByMission := make(map[string][]*gorm.MissionHistoryEvent)

	for _, m := range built {
		if m.StatusCode == constants.StatusRefused {
			stats.Refused++
		}

		p := prev[m.ClientID]
		if p == nil {
			m.CreatedAt = runStart
			m.UpdatedAt = runStart
			types := DeriveEventTypes(nil, true, s.trackedModerator)
			eventsByMission[m.ID] = HistoryEvents(m, types, nil, runStart)
			toWrite = append(toWrite, m)
			continue
		}

		changed := ChangedFields(p, m)
		if len(changed) == 0 {
			m.UpdatedAt = p.UpdatedAt
			unchangedIDs = append(unchangedIDs, m.ID)
			continue
		}
		m.UpdatedAt = runStart
		types := DeriveEventTypes(restorationFields(p, changed), false, s.trackedModerator)
		if len(types) == 0 {
			types = []constants.HistoryEventType{constants.HistoryUpdatedOther}
		}
		eventsByMission[m.ID] = HistoryEvents(m, types, changed, runStart)
		toWrite = append(toWrite, m)
	}

	written := toWrite
	var keepIDs []string
	if err := s.missions.UpsertBatch(ctx, toWrite); err != nil {
		logging.Warn("[Synchronizer] Batch upsert failed, retrying per record", "missions", len(toWrite), "error", err)
		written = written[:0:0]
		for _, m := range toWrite {
			if err := s.missions.UpsertBatch(ctx, []*gorm.Mission{m}); err != nil {
				logging.Error("[Synchronizer] Failed to persist mission",
					"publisher_id", m.PublisherID, "client_id", m.ClientID, "error", err)
				stats.Failed++
				if prev[m.ClientID] != nil {
					keepIDs = append(keepIDs, m.ID)
				}
				continue
			}
			written = append(written, m)
		}
	}

	var events []*gorm.MissionHistoryEvent
	for _, m := range written {
		if p := prev[m.ClientID]; p == nil {
			stats.Created++
		} else {
			stats.Updated++
		}
		events = append(events, eventsByMission[m.ID]...)
	}

	if err := s.missions.TouchSynced(ctx, append(unchangedIDs, keepIDs...), runStart); err != nil {
		return stats, fmt.Errorf("failed to touch unchanged missions: %w", err)
	}
	stats.Unchanged = len(unchangedIDs)

	if err := s.history.Append(ctx, events); err != nil {
		return stats, fmt.Errorf("failed to append history: %w", err)
	}

	return stats, nil
}

// restorationFields drops deletedAt from the typing of a mission that reappeared
// in its feed, so a restoration is not tagged Deleted
func restorationFields(prev *gorm.Mission, changed []string) []string {
	if prev.DeletedAt == nil {
		return changed
	}
	out := make([]string, 0, len(changed))
	for _, field := range changed {
		if field != constants.FieldDeletedAt {
			out = append(out, field)
		}
	}
	return out
}

// SweepDeleted soft-deletes the publisher's live missions the run did not see.
// Every mission seen by the run has last_sync_at = runStart, so only absent ones
// are older.
func (s *Synchronizer) SweepDeleted(ctx context.Context, publisherID string, runStart time.Time) (int, error) {
	ids, err := s.missions.ListIDsNotSyncedSince(ctx, publisherID, runStart)
	if err != nil {
		return 0, fmt.Errorf("failed to list missing missions: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	now := s.now()
	if err := s.missions.MarkDeleted(ctx, ids, runStart, now); err != nil {
		return 0, fmt.Errorf("failed to mark missions deleted: %w", err)
	}

	changed := []string{constants.FieldDeletedAt}
	types := DeriveEventTypes(changed, false, s.trackedModerator)
	events := make([]*gorm.MissionHistoryEvent, 0, len(ids))
	for _, id := range ids {
		events = append(events, HistoryEvents(&gorm.Mission{ID: id}, types, changed, now)...)
	}
	if err := s.history.Append(ctx, events); err != nil {
		return len(ids), fmt.Errorf("failed to append deletion history: %w", err)
	}

	return len(ids), nil
}

package study

import (
	"context"

	"github.com/bunkbed-tech/fushigi-sub000/internal/domain"
	domainerrors "github.com/bunkbed-tech/fushigi-sub000/internal/errors"
)

// Enroll adds a concept to the user's review schedule. A user has at most
// one schedule record per concept; a second enrollment is refused.
//
// The new record starts with the default ease and interval and is due
// immediately. It is merged into the local schedule once created.
func (s *Service) Enroll(ctx context.Context, conceptID string) (domain.ScheduleRecord, error) {
	if _, ok := s.Concept(conceptID); !ok {
		return domain.ScheduleRecord{}, domainerrors.NotFoundf("concept %s not found", conceptID)
	}
	for _, r := range s.c.Schedule.Items() {
		if r.ConceptID == conceptID && r.Owner == s.userID {
			return domain.ScheduleRecord{}, domainerrors.AlreadyExistsf("concept %s is already scheduled", conceptID)
		}
	}

	draft := domain.ScheduleDraft{
		Owner:        s.userID,
		ConceptID:    conceptID,
		EaseFactor:   domain.DefaultEaseFactor,
		IntervalDays: domain.DefaultIntervalDays,
		Repetition:   0,
		LastReviewed: domain.Absent(),
		DueDate:      domain.At(s.now()),
	}
	if err := s.validator.Validate(draft); err != nil {
		return domain.ScheduleRecord{}, err
	}

	created, err := s.creator.CreateSchedule(ctx, draft)
	if err != nil {
		return domain.ScheduleRecord{}, err
	}
	if _, err := s.c.Schedule.Merge(ctx, []domain.ScheduleRecord{created}); err != nil {
		// The record exists remotely; the next sync materializes it.
		s.logger.Warn("enrolled concept not cached locally", "concept_id", conceptID, "error", err)
	}

	s.logger.Info("concept enrolled", "concept_id", conceptID, "schedule_id", created.ID)
	return created, nil
}

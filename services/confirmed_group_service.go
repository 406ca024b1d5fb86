package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"lunchmate_server/models"

	"github.com/google/uuid"
)

// ConfirmedGroupService materializes fully-accepted proposals into confirmed
// groups and mirrors them into the schedule collaborator.
type ConfirmedGroupService struct {
	Repo     GroupRepository
	Schedule ScheduleSink
}

// NewConfirmedGroupService wires the registry and subscribes it to
// GroupConfirmed events on bus.
func NewConfirmedGroupService(repo GroupRepository, schedule ScheduleSink, bus *EventBus) *ConfirmedGroupService {
	s := &ConfirmedGroupService{Repo: repo, Schedule: schedule}
	if bus != nil {
		bus.SubscribeGroupConfirmed(func(ev GroupConfirmedEvent) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if _, err := s.Materialize(ctx, ev.Proposal); err != nil {
				slog.Error("failed to materialize confirmed group", "proposalId", ev.Proposal.ProposalID, "error", err)
			}
		})
	}
	return s
}

// Materialize turns a confirmed proposal into a stored ConfirmedGroup and
// pushes the calendar entry to the schedule sink.
func (s *ConfirmedGroupService) Materialize(ctx context.Context, p models.Proposal) (models.ConfirmedGroup, error) {
	group := models.ConfirmedGroup{
		GroupID:     uuid.NewString(),
		Date:        p.ProposedDate,
		MemberIDs:   p.Members(),
		OrganizerID: p.ProposerID,
		EventID:     "lunch-" + uuid.NewString(),
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.Repo.Put(ctx, group); err != nil {
		return models.ConfirmedGroup{}, err
	}

	if err := s.Schedule.Upsert(ctx, s.eventFor(group)); err != nil {
		return models.ConfirmedGroup{}, fmt.Errorf("failed to push group %s to schedule: %w", group.GroupID, err)
	}

	slog.Info("confirmed group materialized", "groupId", group.GroupID, "date", group.Date, "members", len(group.MemberIDs))
	return group, nil
}

// Leave removes userID from the group. The organizer may only leave when
// alone; a group whose membership reaches zero is removed from the schedule
// and deleted.
func (s *ConfirmedGroupService) Leave(ctx context.Context, groupID, userID string) error {
	group, err := s.Repo.Get(ctx, groupID)
	if err != nil {
		return err
	}
	if !group.HasMember(userID) {
		return fmt.Errorf("user %s is not a member of group %s: %w", userID, groupID, ErrNotFound)
	}
	if userID == group.OrganizerID && len(group.MemberIDs) > 1 {
		return fmt.Errorf("organizer cannot leave while members remain: %w", ErrPermission)
	}

	remaining := make([]string, 0, len(group.MemberIDs)-1)
	for _, id := range group.MemberIDs {
		if id != userID {
			remaining = append(remaining, id)
		}
	}
	group.MemberIDs = remaining

	if len(remaining) == 0 {
		if err := s.Schedule.Remove(ctx, group.EventID); err != nil {
			return fmt.Errorf("failed to remove schedule event %s: %w", group.EventID, err)
		}
		if err := s.Repo.Delete(ctx, groupID); err != nil {
			return err
		}
		slog.Info("confirmed group dissolved", "groupId", groupID)
		return nil
	}

	if err := s.Repo.Put(ctx, group); err != nil {
		return err
	}
	if err := s.Schedule.Upsert(ctx, s.eventFor(group)); err != nil {
		return fmt.Errorf("failed to update schedule event %s: %w", group.EventID, err)
	}
	slog.Info("member left confirmed group", "groupId", groupID, "userId", userID, "remaining", len(remaining))
	return nil
}

// GroupsFor lists the confirmed groups userID belongs to.
func (s *ConfirmedGroupService) GroupsFor(ctx context.Context, userID string) ([]models.ConfirmedGroup, error) {
	if userID == "" {
		return nil, fmt.Errorf("employee id is required: %w", ErrValidation)
	}
	return s.Repo.ListByMember(ctx, userID)
}

func (s *ConfirmedGroupService) eventFor(group models.ConfirmedGroup) ScheduleEvent {
	return ScheduleEvent{
		EventID:   group.EventID,
		Date:      group.Date,
		Title:     "Lunch group",
		MemberIDs: append([]string(nil), group.MemberIDs...),
	}
}

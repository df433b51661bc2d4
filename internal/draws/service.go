package draws

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/suvarnachakram/results-backend/internal/schedule"
	pkgerrors "github.com/suvarnachakram/results-backend/pkg/errors"
)

// Service answers the public read surface: published results, the upcoming
// slot, and the day's schedule.
type Service interface {
	PublishedForDate(ctx context.Context, date string) ([]DrawView, error)
	Next(ctx context.Context, now time.Time) (*NextView, error)
	ScheduleForDay(ctx context.Context, now time.Time) ([]SlotView, error)
}

// DrawView is the public shape of a published draw.
type DrawView struct {
	ID          uuid.UUID `json:"id"`
	Date        string    `json:"date"`
	Slot        string    `json:"slot"`
	DrawNo      string    `json:"drawNo"`
	Digits      string    `json:"digits"`
	AnnouncedAt string    `json:"announcedAt"`
}

// NextView carries the upcoming slot and its countdown.
type NextView struct {
	Slot      string `json:"slot"`
	Date      string `json:"date"`
	SecondsTo int64  `json:"secondsTo"`
}

// SlotView describes one schedule entry for the current day.
type SlotView struct {
	Slot        string             `json:"slot"`
	State       schedule.SlotState `json:"state"`
	AnnouncedAt string             `json:"announcedAt"`
	Published   bool               `json:"published"`
}

type service struct {
	repo  Repository
	clock *schedule.Clock
}

// NewService wires the read surface dependencies.
func NewService(repo Repository, clock *schedule.Clock) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "draws repository required")
	}
	if clock == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "schedule clock required")
	}
	return &service{repo: repo, clock: clock}, nil
}

func (s *service) PublishedForDate(ctx context.Context, date string) ([]DrawView, error) {
	if _, err := time.ParseInLocation("2006-01-02", date, s.clock.Location()); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD")
	}

	rows, err := s.repo.FindPublishedByDate(ctx, date)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list published draws")
	}

	views := make([]DrawView, 0, len(rows))
	for _, row := range rows {
		announced, err := s.clock.AnnouncementTime(row.Slot)
		if err != nil {
			// Rows with retired slots still render, just without an
			// announcement time.
			announced = ""
		}
		views = append(views, DrawView{
			ID:          row.ID,
			Date:        row.Date,
			Slot:        row.Slot,
			DrawNo:      row.DrawNo,
			Digits:      row.Digits(),
			AnnouncedAt: announced,
		})
	}
	return views, nil
}

func (s *service) Next(ctx context.Context, now time.Time) (*NextView, error) {
	slot, until := s.clock.NextUpcoming(now)
	return &NextView{
		Slot:      slot,
		Date:      s.clock.DateKey(now),
		SecondsTo: int64(until / time.Second),
	}, nil
}

func (s *service) ScheduleForDay(ctx context.Context, now time.Time) ([]SlotView, error) {
	date := s.clock.DateKey(now)
	published, err := s.repo.FindPublishedByDate(ctx, date)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list published draws")
	}
	publishedSlots := make(map[string]bool, len(published))
	for _, row := range published {
		publishedSlots[row.Slot] = true
	}

	slots := s.clock.Slots()
	views := make([]SlotView, 0, len(slots))
	for _, slot := range slots {
		state, err := s.clock.State(slot, now)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "classify slot")
		}
		announced, err := s.clock.AnnouncementTime(slot)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "announcement time")
		}
		views = append(views, SlotView{
			Slot:        slot,
			State:       state,
			AnnouncedAt: announced,
			Published:   publishedSlots[slot],
		})
	}
	return views, nil
}

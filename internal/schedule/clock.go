package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/suvarnachakram/results-backend/pkg/config"
)

// SlotState is the lifecycle phase of a slot relative to wall-clock time.
type SlotState string

const (
	SlotStateWaiting  SlotState = "waiting"
	SlotStateLive     SlotState = "live"
	SlotStateRevealed SlotState = "revealed"
)

// fallbackHour anchors NextUpcoming's countdown once the day's slots are
// over: the duration is measured to 12:00 tomorrow while the returned slot
// is still the first of the schedule.
const fallbackHour = 12

// Clock holds the immutable draw schedule and answers pure time questions
// about it. All comparisons operate on hour:minute in the configured
// location; seconds are ignored and days are independent (no midnight
// rollover for TimeUntil).
type Clock struct {
	slots          []string
	slotMinutes    []int
	loc            *time.Location
	revealOffset   int
	announceOffset int
	publishDelay   int
	reminderLead   int
	generateMinute int
}

// New parses the configured slot times and loads the schedule timezone.
func New(cfg config.AutomationConfig) (*Clock, error) {
	if len(cfg.Slots) == 0 {
		return nil, fmt.Errorf("at least one slot is required")
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	slots := make([]string, 0, len(cfg.Slots))
	minutes := make([]int, 0, len(cfg.Slots))
	for _, raw := range cfg.Slots {
		slot := strings.TrimSpace(raw)
		m, err := parseMinuteOfDay(slot)
		if err != nil {
			return nil, err
		}
		slots = append(slots, slot)
		minutes = append(minutes, m)
	}

	generateMinute, err := parseMinuteOfDay(cfg.GenerateTime)
	if err != nil {
		return nil, fmt.Errorf("generate time: %w", err)
	}

	revealOffset := cfg.RevealOffsetMinutes
	if revealOffset <= 0 {
		revealOffset = 15
	}
	publishDelay := cfg.PublishDelayMinutes
	if publishDelay <= 0 {
		publishDelay = 15
	}
	reminderLead := cfg.ReminderLeadMinutes
	if reminderLead <= 0 {
		reminderLead = 15
	}
	announceOffset := cfg.AnnounceAfter
	if announceOffset <= 0 {
		announceOffset = 30
	}

	// Reminders target slot minus lead on the same day; a slot earlier than
	// the lead would never get one.
	for i, m := range minutes {
		if m < reminderLead {
			return nil, fmt.Errorf("slot %q is earlier than the reminder lead of %d minutes", slots[i], reminderLead)
		}
	}

	return &Clock{
		slots:          slots,
		slotMinutes:    minutes,
		loc:            loc,
		revealOffset:   revealOffset,
		announceOffset: announceOffset,
		publishDelay:   publishDelay,
		reminderLead:   reminderLead,
		generateMinute: generateMinute,
	}, nil
}

// Slots returns the schedule in configured order.
func (c *Clock) Slots() []string {
	out := make([]string, len(c.slots))
	copy(out, c.slots)
	return out
}

// Location returns the schedule timezone.
func (c *Clock) Location() *time.Location {
	return c.loc
}

// Contains reports whether slot is part of the schedule.
func (c *Clock) Contains(slot string) bool {
	return c.SlotIndex(slot) >= 0
}

// SlotIndex returns the zero-based schedule position of slot, or -1.
func (c *Clock) SlotIndex(slot string) int {
	for i, s := range c.slots {
		if s == slot {
			return i
		}
	}
	return -1
}

// State classifies a slot against now: waiting before the slot time, live
// within [slot, slot+revealOffset), revealed afterwards.
func (c *Clock) State(slot string, now time.Time) (SlotState, error) {
	slotMinute, err := c.minuteFor(slot)
	if err != nil {
		return "", err
	}
	current := c.minuteOfDay(now)
	switch {
	case current < slotMinute:
		return SlotStateWaiting, nil
	case current < slotMinute+c.revealOffset:
		return SlotStateLive, nil
	default:
		return SlotStateRevealed, nil
	}
}

// TimeUntil returns the duration until the slot's occurrence today, or zero
// once it has passed. It never rolls over to tomorrow.
func (c *Clock) TimeUntil(slot string, now time.Time) (time.Duration, error) {
	slotMinute, err := c.minuteFor(slot)
	if err != nil {
		return 0, err
	}
	local := now.In(c.loc)
	slotTime := time.Date(local.Year(), local.Month(), local.Day(), slotMinute/60, slotMinute%60, 0, 0, c.loc)
	if !slotTime.After(local) {
		return 0, nil
	}
	return slotTime.Sub(local), nil
}

// NextUpcoming returns the first slot still ahead of now today. When the
// day's schedule is exhausted it falls back to the first slot, with the
// countdown measured to the fixed fallback time tomorrow.
func (c *Clock) NextUpcoming(now time.Time) (string, time.Duration) {
	local := now.In(c.loc)
	current := c.minuteOfDay(now)
	for i, m := range c.slotMinutes {
		if current < m {
			slotTime := time.Date(local.Year(), local.Month(), local.Day(), m/60, m%60, 0, 0, c.loc)
			return c.slots[i], slotTime.Sub(local)
		}
	}

	tomorrow := local.AddDate(0, 0, 1)
	anchor := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), fallbackHour, 0, 0, 0, c.loc)
	return c.slots[0], anchor.Sub(local)
}

// PublishDue reports whether now's time-of-day has reached slot + publish
// delay.
func (c *Clock) PublishDue(slot string, now time.Time) (bool, error) {
	slotMinute, err := c.minuteFor(slot)
	if err != nil {
		return false, err
	}
	return c.minuteOfDay(now) >= slotMinute+c.publishDelay, nil
}

// ReminderMinute reports whether now lands exactly on slot minus the
// reminder lead. A tick that skips the minute skips the reminder.
func (c *Clock) ReminderMinute(slot string, now time.Time) (bool, error) {
	slotMinute, err := c.minuteFor(slot)
	if err != nil {
		return false, err
	}
	return c.minuteOfDay(now) == slotMinute-c.reminderLead, nil
}

// GenerateMinute reports whether now lands exactly on the daily draft
// generation time.
func (c *Clock) GenerateMinute(now time.Time) bool {
	return c.minuteOfDay(now) == c.generateMinute
}

// PublishTime returns the HH:MM at which a slot's result becomes eligible
// for automatic publication.
func (c *Clock) PublishTime(slot string) (string, error) {
	slotMinute, err := c.minuteFor(slot)
	if err != nil {
		return "", err
	}
	m := (slotMinute + c.publishDelay) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", m/60, m%60), nil
}

// DrawNumber derives the human-facing draw number for a slot on a given
// day: the SC prefix, the date as DDMMYYYY, then the one-based slot
// position.
func (c *Clock) DrawNumber(date time.Time, slot string) (string, error) {
	idx := c.SlotIndex(slot)
	if idx < 0 {
		return "", fmt.Errorf("unknown slot %q", slot)
	}
	local := date.In(c.loc)
	return fmt.Sprintf("SC%02d%02d%04d%d", local.Day(), int(local.Month()), local.Year(), idx+1), nil
}

// AnnouncementTime returns the HH:MM at which a slot's result is considered
// officially announced (display only).
func (c *Clock) AnnouncementTime(slot string) (string, error) {
	slotMinute, err := c.minuteFor(slot)
	if err != nil {
		return "", err
	}
	m := (slotMinute + c.announceOffset) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", m/60, m%60), nil
}

// DateKey formats now's calendar day in the schedule timezone.
func (c *Clock) DateKey(now time.Time) string {
	return now.In(c.loc).Format("2006-01-02")
}

// Now returns the current time in the schedule timezone.
func (c *Clock) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *Clock) minuteFor(slot string) (int, error) {
	idx := c.SlotIndex(slot)
	if idx < 0 {
		return 0, fmt.Errorf("unknown slot %q", slot)
	}
	return c.slotMinutes[idx], nil
}

func (c *Clock) minuteOfDay(now time.Time) int {
	local := now.In(c.loc)
	return local.Hour()*60 + local.Minute()
}

func parseMinuteOfDay(value string) (int, error) {
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q (expected HH:MM)", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", value)
	}
	return hour*60 + minute, nil
}

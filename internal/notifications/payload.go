package notifications

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/suvarnachakram/results-backend/pkg/config"
	"github.com/suvarnachakram/results-backend/pkg/enums"
)

type pushPayload struct {
	Title              string      `json:"title"`
	Body               string      `json:"body"`
	Icon               string      `json:"icon"`
	Badge              string      `json:"badge"`
	Tag                string      `json:"tag"`
	Data               payloadData `json:"data"`
	RequireInteraction bool        `json:"requireInteraction"`
	Vibrate            []int       `json:"vibrate"`
}

type payloadData struct {
	URL    string                 `json:"url"`
	Slot   string                 `json:"slot"`
	Type   enums.NotificationKind `json:"type"`
	DrawNo string                 `json:"drawNo,omitempty"`
	Digits string                 `json:"digits,omitempty"`
}

// displayTime renders a slot in 12-hour form for notification copy, e.g.
// "17:00" becomes "5:00 PM" and "12:00" stays "12:00 PM".
func displayTime(slot string) string {
	parts := strings.SplitN(slot, ":", 2)
	if len(parts) != 2 {
		return slot
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil {
		return slot
	}
	ampm := "AM"
	if hour >= 12 {
		ampm = "PM"
	}
	display := hour
	switch {
	case hour > 12:
		display = hour - 12
	case hour == 0:
		display = 12
	}
	return fmt.Sprintf("%d:%s %s", display, parts[1], ampm)
}

// buildPayload renders the web push message for a notification kind. Result
// notifications demand interaction and carry the draw number and digits
// when known.
func buildPayload(cfg config.PushConfig, kind enums.NotificationKind, slot, drawNo, digits string) ([]byte, error) {
	timeStr := displayTime(slot)

	var title, body string
	if kind == enums.NotificationKindPreDraw {
		title = "Drawing in 15 minutes!"
		body = fmt.Sprintf("%s draw starting soon. Good luck!", timeStr)
	} else {
		title = "Results Published!"
		body = fmt.Sprintf("%s draw results are now available. Tap to view.", timeStr)
		if drawNo != "" {
			body += fmt.Sprintf(" Draw #%s", drawNo)
		}
	}

	return json.Marshal(pushPayload{
		Title: title,
		Body:  body,
		Icon:  cfg.IconPath,
		Badge: cfg.BadgePath,
		Tag:   fmt.Sprintf("%s-%s", kind, slot),
		Data: payloadData{
			URL:    cfg.ResultsURL,
			Slot:   slot,
			Type:   kind,
			DrawNo: drawNo,
			Digits: digits,
		},
		RequireInteraction: kind == enums.NotificationKindResultPublished,
		Vibrate:            []int{200, 100, 200},
	})
}

package handlers

import (
	"time"

	"github.com/google/uuid"
)

// dateLayout is the wire format for expense and settlement dates.
const dateLayout = "2006-01-02"

func parseUUID(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func parseDate(raw string) (time.Time, bool) {
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

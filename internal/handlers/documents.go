package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/fleetcn/pkg/errors"
)

const (
	defaultExpiryWindowDays = 30
	maxExpiryWindowDays     = 366
)

// expiryWindow reads ?days= and returns the [now, now+days) range for expiring documents.
func expiryWindow(c *gin.Context, now time.Time) (time.Time, time.Time, error) {
	days, err := parseIntQuery(c, "days", defaultExpiryWindowDays)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if days <= 0 || days > maxExpiryWindowDays {
		return time.Time{}, time.Time{}, errors.NewBadRequest("days must be between 1 and 366")
	}
	from := now.UTC()
	return from, from.AddDate(0, 0, days), nil
}

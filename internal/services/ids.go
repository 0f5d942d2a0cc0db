package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewIDGenerator returns a function producing ids of the form
// "<prefix>_<base36 unix millis>_<6 lowercase alphanumerics>".
func NewIDGenerator(prefix string, now func() time.Time) func() string {
	if now == nil {
		now = time.Now
	}
	return func() string {
		ms := strconv.FormatInt(now().UnixMilli(), 36)
		return prefix + "_" + ms + "_" + randomSuffix()
	}
}

// randomSuffix takes six hex characters from a fresh v4 uuid.
func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

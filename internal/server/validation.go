package server

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"tasklet/internal/models"
)

// Ids are nanoids (SQLite) or ObjectID hex (MongoDB).
var idRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

func validateID(id string) bool {
	return idRegex.MatchString(id)
}

// parseDueDate accepts RFC3339 or YYYY-MM-DD. An empty value means "clear".
func parseDueDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	t, err := parseFlexibleTime(value)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

func parseFlexibleTime(value string) (time.Time, error) {
	t, err := models.ParseDueDate(value)
	if err != nil {
		return time.Time{}, badRequestCode(fmt.Errorf("dueDate: expected RFC3339 or YYYY-MM-DD format"), ErrCodeInvalidTime)
	}
	return t, nil
}

func parseCompleted(value string) (bool, error) {
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, badRequestCode(fmt.Errorf("completed: expected a boolean"), ErrCodeInvalidBool)
	}
	return parsed, nil
}

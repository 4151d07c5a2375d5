package settings

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that the known settings values are valid.
// Extra keys are never validated.
func Validate(s Settings) error {
	if _, err := coercePermission(KeyDesktopPermission, s.DesktopPermission); err != nil {
		return err
	}
	return validateQuietHours(s.QuietHours)
}

func validateQuietHours(q QuietHours) error {
	if _, err := coerceClock(KeyQuietHours+"."+QuietKeyStart, q.Start); err != nil {
		return err
	}
	if _, err := coerceClock(KeyQuietHours+"."+QuietKeyEnd, q.End); err != nil {
		return err
	}
	return nil
}

func coerceBool(key string, value any) (bool, error) {
	switch typed := value.(type) {
	case bool:
		return typed, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(typed)) {
		case "1", "true", "yes", "on":
			return true, nil
		case "0", "false", "no", "off":
			return false, nil
		}
	case int:
		if typed == 0 || typed == 1 {
			return typed == 1, nil
		}
	case int64:
		if typed == 0 || typed == 1 {
			return typed == 1, nil
		}
	}
	return false, fmt.Errorf("%w: %s: %v is not a boolean", ErrInvalidValue, key, value)
}

func coercePermission(key string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s: expected a string, got %T", ErrInvalidValue, key, value)
	}
	switch perm := strings.ToLower(strings.TrimSpace(s)); perm {
	case "":
		return PermissionUnrequested, nil
	case PermissionUnrequested, PermissionGranted, PermissionDenied:
		return perm, nil
	default:
		return "", fmt.Errorf("%w: %s: %q is not one of unrequested, granted, denied", ErrInvalidValue, key, s)
	}
}

func coerceClock(key string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s: expected HH:MM, got %T", ErrInvalidValue, key, value)
	}
	t, err := time.Parse(clockLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %q is not HH:MM", ErrInvalidValue, key, s)
	}
	return t.Format(clockLayout), nil
}

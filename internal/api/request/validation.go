package request

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/edvin/crisisdesk/internal/platform"
)

var validate = validator.New()

// refRegex matches opaque references minted elsewhere (team IDs, media IDs).
var refRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.:-]{0,127}$`)

func init() {
	validate.RegisterValidation("ref", func(fl validator.FieldLevel) bool {
		return refRegex.MatchString(fl.Field().String())
	})
}

func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return nil
}

func RequireID(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("missing required ID")
	}
	return s, nil
}

// RequireName checks that s is a platform name carrying prefix, e.g. inc_ or res_.
func RequireName(prefix, s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("missing required ID")
	}
	if !platform.ValidName(prefix, s) {
		return "", fmt.Errorf("invalid ID %q", s)
	}
	return s, nil
}

// RequireUUID checks that s is a UUID, as used for assignment IDs.
func RequireUUID(s string) (string, error) {
	if s == "" {
		return "", fmt.Errorf("missing required ID")
	}
	if !platform.ValidID(s) {
		return "", fmt.Errorf("invalid ID %q", s)
	}
	return s, nil
}

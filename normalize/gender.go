package normalize

import (
	"strings"

	"github.com/use-agent/fahndung/models"
)

// Gender maps the free-text values sources publish onto the closed set.
func Gender(raw string) models.Gender {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "männlich", "maennlich", "mann", "m", "male":
		return models.GenderMale
	case "weiblich", "frau", "w", "f", "female":
		return models.GenderFemale
	default:
		return models.GenderUnknown
	}
}

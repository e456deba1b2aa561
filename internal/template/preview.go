package template

import (
	"fmt"

	"github.com/bingotables/bulkmsg/internal/models"
)

// Preview renders tmpl for the candidate at index, as shown in the live preview
func Preview(tmpl string, candidates models.CandidateList, index int) (string, error) {
	if len(candidates) == 0 {
		return "", fmt.Errorf("no candidates to preview")
	}
	if index < 0 || index >= len(candidates) {
		return "", fmt.Errorf("recipient index %d out of range (0-%d)", index, len(candidates)-1)
	}
	return Render(tmpl, candidates[index]), nil
}

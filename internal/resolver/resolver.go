// Package resolver finds a panel from the identifier a user typed.
package resolver

import (
	"fmt"
	"strings"

	"github.com/panel-layout/backend/internal/models"
	"golang.org/x/text/cases"
)

// Context carries layout details used to build synthetic panel keys.
type Context struct {
	ProjectID string
}

// Normalize case-folds an identifier and strips a leading "panel" token and
// a leading "#".
func Normalize(identifier string) string {
	// Casers keep state and are not shared across goroutines.
	s := strings.TrimSpace(cases.Fold().String(identifier))
	s = strings.Join(strings.Fields(s), " ")
	for _, prefix := range []string{"panel ", "panel#", "panel-", "panel_"} {
		if strings.HasPrefix(s, prefix) && len(s) > len(prefix) {
			s = strings.TrimSpace(s[len(prefix):])
			break
		}
	}
	s = strings.TrimPrefix(s, "#")
	return strings.TrimSpace(s)
}

// FindPanel returns the first panel whose candidate keys contain the
// normalized identifier. There is no disambiguation beyond first match.
// Panel numbers with leading zeros dropped are only tried once no panel
// matched exactly, so "P3" never shadows a panel actually numbered "p3".
func FindPanel(panels []models.Panel, identifier string, ctx Context) (models.Panel, bool) {
	want := Normalize(identifier)
	if want == "" {
		return models.Panel{}, false
	}
	for _, p := range panels {
		for _, key := range CandidateKeys(p, ctx) {
			if key == want {
				return p, true
			}
		}
	}
	for _, p := range panels {
		if k := trimZeros(p.PanelNumber); k != "" && k == want {
			return p, true
		}
	}
	return models.Panel{}, false
}

// CandidateKeys lists the normalized keys a panel answers to: ID, panel
// number, roll number and the synthetic key.
func CandidateKeys(p models.Panel, ctx Context) []string {
	keys := make([]string, 0, 4)
	add := func(k string) {
		if k = Normalize(k); k != "" {
			keys = append(keys, k)
		}
	}

	add(p.ID)
	add(p.PanelNumber)
	add(p.RollNumber)
	add(SyntheticKey(p, ctx))
	return keys
}

// SyntheticKey identifies a panel by project, position and size.
func SyntheticKey(p models.Panel, ctx Context) string {
	return fmt.Sprintf("%s:%g,%g:%gx%g", ctx.ProjectID, p.X, p.Y, p.Width, p.Height)
}

// trimZeros turns "P003" into "p3" and "007" into "7".
func trimZeros(s string) string {
	s = Normalize(s)
	i := 0
	for i < len(s) && (s[i] < '0' || s[i] > '9') {
		i++
	}
	if i == len(s) {
		return ""
	}
	digits := strings.TrimLeft(s[i:], "0")
	if digits == "" || digits[0] < '0' || digits[0] > '9' {
		return ""
	}
	return s[:i] + digits
}

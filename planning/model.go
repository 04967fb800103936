package planning

import (
	"strings"
	"time"

	"github.com/stagewatch/stagewatch/core/model"
)

// The scheduling API speaks JSON:API: top-level data plus a flat included
// collection referenced by type and id. Only the fields the service needs
// are declared; everything else is ignored on decode.

type resourceRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type resource struct {
	Type          string                  `json:"type"`
	ID            string                  `json:"id"`
	Attributes    attributes              `json:"attributes"`
	Relationships map[string]relationship `json:"relationships"`
}

type relationship struct {
	Data *resourceRef `json:"data"`
}

type attributes struct {
	Title            string `json:"title"`
	Dates            string `json:"dates"`
	Name             string `json:"name"`
	FullName         string `json:"full_name"`
	StartsAt         string `json:"starts_at"`
	Status           string `json:"status"`
	TeamPositionName string `json:"team_position_name"`
}

type document struct {
	Data     []resource `json:"data"`
	Included []resource `json:"included"`
}

type singleDocument struct {
	Data resource `json:"data"`
}

// includedIndex builds the type-id lookup for a document's side-loaded
// resources.
func (d document) includedIndex() map[string]resource {
	idx := make(map[string]resource, len(d.Included))
	for _, r := range d.Included {
		idx[r.Type+"-"+r.ID] = r
	}
	return idx
}

func (r resource) related(idx map[string]resource, name string) (resource, bool) {
	rel, ok := r.Relationships[name]
	if !ok || rel.Data == nil {
		return resource{}, false
	}
	res, ok := idx[rel.Data.Type+"-"+rel.Data.ID]
	return res, ok
}

// normalizeStatus maps the API's status spellings onto the single set the
// core branches on. The API uses one-letter codes in team member payloads
// and full words elsewhere.
func normalizeStatus(s string) model.AssignmentStatus {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "c", "confirmed":
		return model.StatusConfirmed
	case "a", "accepted":
		return model.StatusAccepted
	case "d", "declined":
		return model.StatusDeclined
	default:
		return model.StatusUnconfirmed
	}
}

// earliestStart picks the first scheduled service start out of a plan's
// times. Unparseable entries are skipped.
func earliestStart(times []resource) (time.Time, bool) {
	var earliest time.Time
	found := false
	for _, t := range times {
		ts, err := time.Parse(time.RFC3339, t.Attributes.StartsAt)
		if err != nil {
			continue
		}
		if !found || ts.Before(earliest) {
			earliest = ts
			found = true
		}
	}
	return earliest, found
}

package fixture

import (
	"github.com/riskibarqy/starleague/internal/platform/snapshot"
)

// Schema normalizes the matches collection. category accepts cat and round accepts r.
var Schema = snapshot.Schema{
	IDPrefix: "match",
	Aliases: map[string][]string{
		"category": {"cat"},
		"round":    {"r"},
	},
}

func Decode(snap snapshot.Snapshot) ([]Match, error) {
	records, err := snapshot.Normalize(snap, Schema)
	return FromRecords(records), err
}

func FromRecords(records []snapshot.Record) []Match {
	out := make([]Match, 0, len(records))
	for _, r := range records {
		out = append(out, FromRecord(r))
	}
	return out
}

func FromRecord(r snapshot.Record) Match {
	m := Match{
		ID:        r.ID(),
		HomeID:    r.String("homeId"),
		AwayID:    r.String("awayId"),
		Date:      r.String("date"),
		Time:      r.String("time"),
		Venue:     r.String("venue"),
		HomeGoals: goals(r, "homeGoals"),
		AwayGoals: goals(r, "awayGoals"),
		Category:  r.String("category"),
	}
	if round, ok := r.Int("round"); ok && round > 0 {
		m.Round = round
	}
	return m
}

// goals treats null, text, negative and fractional values as "not played".
func goals(r snapshot.Record, key string) *int {
	v, ok := r.Int(key)
	if !ok || v < 0 {
		return nil
	}
	return &v
}

// Remote is the document written back for one match. Unplayed goals are written as null.
func (m Match) Remote() map[string]any {
	doc := map[string]any{
		"id":        m.ID,
		"homeId":    m.HomeID,
		"awayId":    m.AwayID,
		"date":      m.Date,
		"time":      m.Time,
		"venue":     m.Venue,
		"homeGoals": nil,
		"awayGoals": nil,
	}
	if m.HomeGoals != nil {
		doc["homeGoals"] = *m.HomeGoals
	}
	if m.AwayGoals != nil {
		doc["awayGoals"] = *m.AwayGoals
	}
	if m.Category != "" {
		doc["category"] = m.Category
	}
	if m.Round > 0 {
		doc["round"] = m.Round
	}
	return doc
}

func RemoteCollection(matches []Match) []map[string]any {
	out := make([]map[string]any, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Remote())
	}
	return out
}

package team

import (
	"github.com/riskibarqy/starleague/internal/platform/snapshot"
)

// Schema normalizes the teams collection. group accepts the legacy grp field and pass the
// legacy password field.
var Schema = snapshot.Schema{
	IDPrefix: "team",
	Aliases: map[string][]string{
		"group": {"grp"},
		"pass":  {"password"},
	},
}

// Decode normalizes a teams snapshot. On ErrMalformedSnapshot the returned slice is empty.
func Decode(snap snapshot.Snapshot) ([]Team, error) {
	records, err := snapshot.Normalize(snap, Schema)
	return FromRecords(records), err
}

func FromRecords(records []snapshot.Record) []Team {
	out := make([]Team, 0, len(records))
	for _, r := range records {
		out = append(out, FromRecord(r))
	}
	return out
}

func FromRecord(r snapshot.Record) Team {
	return Team{
		ID:       r.ID(),
		Name:     r.String("name"),
		City:     r.String("city"),
		Logo:     r.String("logo"),
		Group:    r.String("group"),
		Password: r.String("pass"),
	}
}

// Remote is the document written back to the remote store for one team.
func (t Team) Remote() map[string]any {
	doc := map[string]any{
		"id":    t.ID,
		"name":  t.Name,
		"city":  t.City,
		"logo":  t.Logo,
		"group": t.Group,
	}
	if t.Password != "" {
		doc["pass"] = t.Password
	}
	return doc
}

// RemoteCollection is the whole-collection array written on every team mutation.
func RemoteCollection(teams []Team) []map[string]any {
	out := make([]map[string]any, 0, len(teams))
	for _, t := range teams {
		out = append(out, t.Remote())
	}
	return out
}

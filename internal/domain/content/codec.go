package content

import (
	"github.com/riskibarqy/starleague/internal/platform/snapshot"
)

var (
	NewsSchema    = snapshot.Schema{IDPrefix: "news"}
	SlideSchema   = snapshot.Schema{IDPrefix: "slide", Aliases: map[string][]string{"url": {"image", "src"}}}
	VideoSchema   = snapshot.Schema{IDPrefix: "video"}
	PartnerSchema = snapshot.Schema{IDPrefix: "partner"}
	PlayerSchema  = snapshot.Schema{IDPrefix: "player", Aliases: map[string][]string{"licenseNumber": {"license"}}}
)

func decode[T any](snap snapshot.Snapshot, schema snapshot.Schema, from func(snapshot.Record) T) ([]T, error) {
	records, err := snapshot.Normalize(snap, schema)
	out := make([]T, 0, len(records))
	for _, r := range records {
		out = append(out, from(r))
	}
	return out, err
}

func DecodeNews(snap snapshot.Snapshot) ([]News, error) {
	return decode(snap, NewsSchema, func(r snapshot.Record) News {
		return News{
			ID:    r.ID(),
			Title: r.String("title"),
			Date:  r.String("date"),
			Image: r.String("image"),
			Body:  r.String("body"),
		}
	})
}

func DecodeSlides(snap snapshot.Snapshot) ([]Slide, error) {
	return decode(snap, SlideSchema, func(r snapshot.Record) Slide {
		return Slide{ID: r.ID(), URL: r.String("url")}
	})
}

func DecodeVideos(snap snapshot.Snapshot) ([]Video, error) {
	return decode(snap, VideoSchema, func(r snapshot.Record) Video {
		return Video{ID: r.ID(), Embed: r.String("embed")}
	})
}

func DecodePartners(snap snapshot.Snapshot) ([]Partner, error) {
	return decode(snap, PartnerSchema, func(r snapshot.Record) Partner {
		return Partner{ID: r.ID(), Name: r.String("name"), Logo: r.String("logo")}
	})
}

func DecodePlayers(snap snapshot.Snapshot) ([]Player, error) {
	return decode(snap, PlayerSchema, func(r snapshot.Record) Player {
		return Player{
			ID:            r.ID(),
			Name:          r.String("name"),
			TeamID:        r.String("teamId"),
			Club:          r.String("club"),
			Category:      r.String("category"),
			Position:      r.String("position"),
			Photo:         r.String("photo"),
			LicenseNumber: r.String("licenseNumber"),
		}
	})
}

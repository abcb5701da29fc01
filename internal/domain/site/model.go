package site

import (
	"strings"

	"github.com/riskibarqy/starleague/internal/platform/snapshot"
)

const (
	Collection       = "site"
	SliderCollection = "slider_settings"

	DefaultNameAr = "بطولة ستارليغ"
	DefaultNameFr = "CHAMPIONNAT STARLiGUE"
	DefaultLogo   = "https://upload.wikimedia.org/wikipedia/fr/4/49/F%C3%A9d%C3%A9ration_royale_marocaine_de_football_%28logo%29.svg"

	DefaultSliderInterval = 6
	MinSliderInterval     = 2
	MaxSliderInterval     = 30
)

// Config is the site branding document.
type Config struct {
	NameAr        string `json:"nameAr"`
	NameFr        string `json:"nameFr"`
	Logo          string `json:"logo"`
	PublicBaseURL string `json:"publicBaseUrl,omitempty"`
}

func DefaultConfig() Config {
	return Config{NameAr: DefaultNameAr, NameFr: DefaultNameFr, Logo: DefaultLogo}
}

// DecodeConfig reads the site document. An absent or unreadable document yields the default;
// present fields override the default one by one.
func DecodeConfig(snap snapshot.Snapshot) (Config, error) {
	cfg := DefaultConfig()
	if !snap.Exists() {
		return cfg, nil
	}

	var doc map[string]any
	if err := snap.Decode(&doc); err != nil {
		return cfg, err
	}
	r := snapshot.Record(doc)
	if v := strings.TrimSpace(r.String("nameAr")); v != "" {
		cfg.NameAr = v
	}
	if v := strings.TrimSpace(r.String("nameFr")); v != "" {
		cfg.NameFr = v
	}
	if v := strings.TrimSpace(r.String("logo")); v != "" {
		cfg.Logo = v
	}
	cfg.PublicBaseURL = NormalizeBaseURL(r.String("publicBaseUrl"))
	return cfg, nil
}

// NormalizeBaseURL trims the value and guarantees a trailing slash; blank stays blank.
func NormalizeBaseURL(raw string) string {
	v := strings.TrimSpace(raw)
	if v == "" || strings.HasSuffix(v, "/") {
		return v
	}
	return v + "/"
}

// SliderSettings drives the public hero slider.
type SliderSettings struct {
	Autoplay bool `json:"autoplay"`
	Interval int  `json:"interval"`
}

func DefaultSliderSettings() SliderSettings {
	return SliderSettings{Autoplay: true, Interval: DefaultSliderInterval}
}

// DecodeSliderSettings keeps autoplay on unless it is explicitly false and clamps the interval.
func DecodeSliderSettings(snap snapshot.Snapshot) (SliderSettings, error) {
	out := DefaultSliderSettings()
	if !snap.Exists() {
		return out, nil
	}

	var doc map[string]any
	if err := snap.Decode(&doc); err != nil {
		return out, err
	}
	r := snapshot.Record(doc)
	if v, ok := r.Bool("autoplay"); ok && !v {
		out.Autoplay = false
	}
	if v, ok := r.Number("interval"); ok && v != 0 {
		out.Interval = clampInterval(int(v))
	}
	return out, nil
}

func clampInterval(v int) int {
	if v < MinSliderInterval {
		return MinSliderInterval
	}
	if v > MaxSliderInterval {
		return MaxSliderInterval
	}
	return v
}

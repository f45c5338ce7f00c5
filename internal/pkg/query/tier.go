package query

import "time"

// Tier is a staleness class: the age after which a cached read is refreshed.
type Tier struct {
	Name  string
	Stale time.Duration
}

var (
	RealTime = Tier{Name: "realTime", Stale: 30 * time.Second}
	Frequent = Tier{Name: "frequent", Stale: 2 * time.Minute}
	Normal   = Tier{Name: "normal", Stale: 5 * time.Minute}
	Stable   = Tier{Name: "stable", Stale: 15 * time.Minute}
	Static   = Tier{Name: "static", Stale: 60 * time.Minute}
)

// TierFor picks the default tier of a key from its family and sub-kind.
func TierFor(k Key) Tier {
	sub := ""
	if len(k) > 1 {
		sub, _ = k[1].(string)
	}
	switch k.Family() {
	case "transactions":
		if sub == "stats" {
			return RealTime
		}
		return Frequent
	case "nacha":
		if sub == "stats" {
			return Frequent
		}
		return Normal
	case "config", "organizations":
		return Stable
	case "holidays", "businessDays":
		return Static
	default:
		return Normal
	}
}

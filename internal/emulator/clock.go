package emulator

import (
	"time"
	_ "time/tzdata" // zones must resolve on hosts without a system database
)

const dateLayout = "2006-01-02"

// LocalDate returns the YYYY-MM-DD calendar date of epoch as seen in loc.
// A nil loc means UTC.
func LocalDate(epoch int64, loc *time.Location) string {
	utc := time.Unix(epoch, 0).UTC()
	y, m, d := utc.Date()
	hh, mm, ss := utc.Clock()
	// some clock sources report leap seconds as :60
	ss = min(ss, 59)
	devtime := time.Date(y, m, d, hh, mm, ss, 0, time.UTC)
	if loc != nil {
		devtime = devtime.In(loc)
	}
	return devtime.Format(dateLayout)
}

// LoadZone resolves an IANA zone name. An empty name returns (nil, nil).
func LoadZone(name string) (*time.Location, error) {
	if name == "" {
		return nil, nil
	}
	return time.LoadLocation(name)
}

// FILE: risk/calendar.go
package risk

import "time"

// TradingCalendar resolves which trading day a tick belongs to, accounting
// for the overnight session that several Chinese futures exchanges publish
// ahead of the official day session. Callers needing exchange-exact
// holiday/half-day calendars provide their own implementation; DefaultCalendar
// covers only the night-session cutover rule.
type TradingCalendar interface {
	TradingDay(t time.Time) time.Time
}

// DefaultCalendar treats any tick at or after NightSessionCutover local time
// as already belonging to the next calendar day's trading day.
type DefaultCalendar struct {
	NightSessionCutover time.Duration // offset from local midnight, default 20h30m
	Location            *time.Location
}

func NewDefaultCalendar(cutover time.Duration, loc *time.Location) DefaultCalendar {
	if cutover == 0 {
		cutover = 20*time.Hour + 30*time.Minute
	}
	if loc == nil {
		loc = time.Local
	}
	return DefaultCalendar{NightSessionCutover: cutover, Location: loc}
}

func (c DefaultCalendar) TradingDay(t time.Time) time.Time {
	local := t.In(c.Location)
	midnight := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, c.Location)
	sinceMidnight := local.Sub(midnight)
	day := midnight
	if sinceMidnight >= c.NightSessionCutover {
		day = midnight.AddDate(0, 0, 1)
	}
	return day
}

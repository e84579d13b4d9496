package date

import (
	"sort"
	"time"
)

// NoHolidays is the country code of a calendar without public holidays
const NoHolidays = ""

type holidayLookup func(day time.Time) (string, bool)

var countryHolidays = map[string]holidayLookup{
	NoHolidays: nil,
	"UA":       ukrainianHoliday,
}

// Countries returns all supported holiday country codes
func Countries() []string {
	var countries []string
	for country := range countryHolidays {
		if country == NoHolidays {
			continue
		}
		countries = append(countries, country)
	}
	sort.Strings(countries)
	return countries
}

type fixedHoliday struct {
	month time.Month
	day   int
	name  string
	from  int
	until int
}

func (h fixedHoliday) observedIn(year int) bool {
	return (h.from == 0 || year >= h.from) && (h.until == 0 || year <= h.until)
}

var ukrainianFixedHolidays = []fixedHoliday{
	{month: time.January, day: 1, name: "New Year's Day"},
	{month: time.January, day: 7, name: "Christmas Day (Julian)", until: 2023},
	{month: time.March, day: 8, name: "International Women's Day"},
	{month: time.May, day: 1, name: "Labour Day"},
	{month: time.May, day: 2, name: "Labour Day", until: 2017},
	{month: time.May, day: 8, name: "Day of Remembrance and Victory", from: 2024},
	{month: time.May, day: 9, name: "Victory Day", until: 2023},
	{month: time.June, day: 28, name: "Constitution Day"},
	{month: time.July, day: 28, name: "Statehood Day", from: 2022, until: 2023},
	{month: time.July, day: 15, name: "Statehood Day", from: 2024},
	{month: time.August, day: 24, name: "Independence Day"},
	{month: time.October, day: 1, name: "Defenders Day", from: 2023},
	{month: time.October, day: 14, name: "Defenders Day", from: 2015, until: 2022},
	{month: time.December, day: 25, name: "Christmas Day", from: 2017},
}

// martialLawStart ends the transfer of weekend holidays to the next working day
var martialLawStart = time.Date(2022, time.February, 24, 0, 0, 0, 0, time.UTC)

type namedDay struct {
	day  time.Time
	name string
}

// ukrainianHolidaysOf lists the holidays of a year in calendar order, without substitute days
func ukrainianHolidaysOf(year int, location *time.Location) []namedDay {
	var days []namedDay
	for _, holiday := range ukrainianFixedHolidays {
		if holiday.observedIn(year) {
			days = append(days, namedDay{time.Date(year, holiday.month, holiday.day, 0, 0, 0, 0, location), holiday.name})
		}
	}

	easter := OrthodoxEaster(year, location)
	days = append(days,
		namedDay{easter, "Easter Sunday"},
		namedDay{easter.AddDate(0, 0, 49), "Holy Trinity Day"},
	)

	sort.SliceStable(days, func(i, j int) bool {
		return days[i].day.Before(days[j].day)
	})

	return days
}

func isWeekend(day time.Time) bool {
	return day.Weekday() == time.Saturday || day.Weekday() == time.Sunday
}

// ukrainianSubstitutesOf moves every holiday of the year that falls on a weekend to the next
// free working day. Holidays from martialLawStart on are not transferred.
func ukrainianSubstitutesOf(year int, location *time.Location) []namedDay {
	holidays := ukrainianHolidaysOf(year, location)

	taken := map[string]bool{}
	for _, holiday := range holidays {
		taken[holiday.day.Format(DayLayout)] = true
	}

	var substitutes []namedDay
	for _, holiday := range holidays {
		if !isWeekend(holiday.day) || !holiday.day.Before(time.Date(martialLawStart.Year(), martialLawStart.Month(), martialLawStart.Day(), 0, 0, 0, 0, location)) {
			continue
		}

		day := holiday.day.AddDate(0, 0, 1)
		for isWeekend(day) || taken[day.Format(DayLayout)] {
			day = day.AddDate(0, 0, 1)
		}

		taken[day.Format(DayLayout)] = true
		substitutes = append(substitutes, namedDay{day, holiday.name + " (observed)"})
	}

	return substitutes
}

func ukrainianHoliday(day time.Time) (string, bool) {
	for _, holiday := range ukrainianHolidaysOf(day.Year(), day.Location()) {
		if sameDay(day, holiday.day) {
			return holiday.name, true
		}
	}

	if !isWeekend(day) {
		for _, substitute := range ukrainianSubstitutesOf(day.Year(), day.Location()) {
			if sameDay(day, substitute.day) {
				return substitute.name, true
			}
		}
	}

	return "", false
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// OrthodoxEaster returns the Gregorian date of Orthodox Easter Sunday, valid for the years 1900 to 2099
func OrthodoxEaster(year int, location *time.Location) time.Time {
	a := year % 4
	b := year % 7
	c := year % 19
	d := (19*c + 15) % 30
	e := (2*a + 4*b - d + 34) % 7
	month := (d + e + 114) / 31
	day := (d+e+114)%31 + 1

	// Julian to Gregorian offset for the 20th and 21st century
	return time.Date(year, time.Month(month), day+13, 0, 0, 0, 0, location)
}

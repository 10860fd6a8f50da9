package logic

import "fmt"

// Zone is a selectable UTC offset.
type Zone struct {
	OffsetSeconds int
	Name          string
}

// DefaultZone is the index of IST (UTC+5:30).
const DefaultZone = 27

// Zones is the ordered table the time zone menu cycles through. Each name is
// an abbreviation in use at that offset; offsets without one are written as
// "UTC+H:MM".
var Zones = [...]Zone{
	{-12 * 3600, "AoE"},
	{-11 * 3600, "NUT"},
	{-10 * 3600, "HST"},
	{-9*3600 - 1800, "MART"},
	{-9 * 3600, "AKST"},
	{-8 * 3600, "PST"},
	{-7 * 3600, "MST"},
	{-6 * 3600, "CST"},
	{-5*3600 - 1800, "UTC-5:30"},
	{-5 * 3600, "EST"},
	{-4*3600 - 1800, "VET"},
	{-4 * 3600, "AST"},
	{-3*3600 - 1800, "NST"},
	{-3 * 3600, "ART"},
	{-2 * 3600, "GST"},
	{-1 * 3600, "CVT"},
	{0, "UTC"},
	{1800, "UTC+0:30"},
	{1 * 3600, "CET"},
	{1*3600 + 1800, "UTC+1:30"},
	{2 * 3600, "EET"},
	{2*3600 + 1800, "UTC+2:30"},
	{3 * 3600, "MSK"},
	{3*3600 + 1800, "IRST"},
	{4 * 3600, "GST"},
	{4*3600 + 1800, "AFT"},
	{5 * 3600, "PKT"},
	{5*3600 + 1800, "IST"},
	{5*3600 + 2700, "NPT"},
	{6 * 3600, "BST"},
	{6*3600 + 1800, "MMT"},
	{7 * 3600, "WIB"},
	{8 * 3600, "SGT"},
	{8*3600 + 2700, "ACWST"},
	{9 * 3600, "JST"},
	{9*3600 + 1800, "ACST"},
	{10 * 3600, "AEST"},
	{10*3600 + 1800, "LHST"},
	{11 * 3600, "AEDT"},
	{11*3600 + 1800, "NFT"},
	{12 * 3600, "NZST"},
	{13 * 3600, "NZDT"},
	{14 * 3600, "LINT"},
}

// ZoneAt returns the table entry at i, wrapping out-of-range indices.
func ZoneAt(i int) Zone {
	return Zones[Wrap(i, len(Zones))]
}

// FormatOffset renders the zone offset as "+5:30" / "-9:30" / "+0:00".
func (z Zone) FormatOffset() string {
	sign := '+'
	s := z.OffsetSeconds
	if s < 0 {
		sign = '-'
		s = -s
	}
	return fmt.Sprintf("%c%d:%02d", sign, s/3600, (s%3600)/60)
}

func (z Zone) String() string {
	return fmt.Sprintf("%s (UTC %s)", z.Name, z.FormatOffset())
}

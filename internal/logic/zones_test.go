package logic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZoneTable(t *testing.T) {
	require.Len(t, Zones, 43)
	assert.Equal(t, "IST", Zones[DefaultZone].Name)
	assert.Equal(t, 19800, Zones[DefaultZone].OffsetSeconds)

	for i := 1; i < len(Zones); i++ {
		assert.Less(t, Zones[i-1].OffsetSeconds, Zones[i].OffsetSeconds, "table ordered at %d", i)
	}
}

func TestZoneNamesMatchOffsets(t *testing.T) {
	for offset, name := range map[int]string{
		-5 * 3600:      "EST",
		-4 * 3600:      "AST",
		-1 * 3600:      "CVT",
		1 * 3600:       "CET",
		8*3600 + 2700:  "ACWST",
		9*3600 + 1800:  "ACST",
		14 * 3600:      "LINT",
		-5*3600 - 1800: "UTC-5:30",
		2*3600 + 1800:  "UTC+2:30",
	} {
		found := false
		for _, z := range Zones {
			if z.OffsetSeconds == offset {
				found = true
				assert.Equal(t, name, z.Name, "offset %d", offset)
			}
		}
		assert.True(t, found, "offset %d in table", offset)
	}

	for _, z := range Zones {
		require.NotEmpty(t, z.Name)
		if strings.HasPrefix(z.Name, "UTC") && z.Name != "UTC" {
			assert.Equal(t, "UTC"+z.FormatOffset(), z.Name)
		}
	}
}

func TestZoneNepal(t *testing.T) {
	z := Zones[28]
	assert.Equal(t, 20700, z.OffsetSeconds)
	assert.Equal(t, "+5:45", z.FormatOffset())
}

func TestFormatOffset(t *testing.T) {
	assert.Equal(t, "-12:00", Zones[0].FormatOffset())
	assert.Equal(t, "-9:30", Zones[3].FormatOffset())
	assert.Equal(t, "+0:00", Zones[16].FormatOffset())
	assert.Equal(t, "+14:00", Zones[42].FormatOffset())
}

func TestZoneCyclingIsBijection(t *testing.T) {
	n := len(Zones)
	for start := 0; start < n; start++ {
		up, down := start, start
		seen := map[int]bool{}
		for i := 0; i < n; i++ {
			up = Step(up, n, ButtonUp)
			down = Step(down, n, ButtonDown)
			seen[up] = true
		}
		assert.Equal(t, start, up, "43 Up presses return to start")
		assert.Equal(t, start, down, "43 Down presses return to start")
		assert.Len(t, seen, n, "every index visited once")
	}
}

func TestZoneAtWraps(t *testing.T) {
	assert.Equal(t, Zones[0], ZoneAt(43))
	assert.Equal(t, Zones[42], ZoneAt(-1))
}

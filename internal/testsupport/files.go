package testsupport

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"skiprice/internal/config"
)

// FixtureResort is the resort the default scenarios study.
const FixtureResort = "Big Mountain Resort"

// RawHeader is the header row of the raw resort fixture.
var RawHeader = []string{
	"Name", "Region", "state", "vertical_drop", "fastEight", "fastQuads",
	"total_chairs", "Runs", "TerrainParks", "LongestRun_mi", "SkiableTerrain_ac",
	"Snow Making_ac", "daysOpenLastYear", "yearsOpen", "AdultWeekday",
	"AdultWeekend", "NightSkiing_ac",
}

var fixtureStates = []string{"Montana", "Idaho", "Colorado", "Utah", "Vermont"}

// RawRecords returns a deterministic raw resort table: a header row, 36
// regular resorts (the first is FixtureResort), plus rows the cleaning stage
// must fix or remove: an untidy state name, a duplicate, an implausible
// yearsOpen, and a missing price.
func RawRecords() [][]string {
	records := [][]string{RawHeader}
	for i := 0; i < 36; i++ {
		records = append(records, fixtureRow(i))
	}

	untidy := fixtureRow(36)
	untidy[0], untidy[2] = "  Untidy   Hill ", " new york "
	records = append(records, untidy)

	records = append(records, fixtureRow(1))

	badYears := fixtureRow(37)
	badYears[0], badYears[13] = "Broken Years", "2019"
	records = append(records, badYears)

	noPrice := fixtureRow(38)
	noPrice[0], noPrice[15] = "No Price", ""
	records = append(records, noPrice)
	return records
}

func fixtureRow(i int) []string {
	name := fmt.Sprintf("Resort %02d", i)
	state := fixtureStates[i%len(fixtureStates)]
	vertical := 800 + (i*137)%2200
	chairs := 3 + (i*5)%14
	runs := 20 + (i*11)%90
	fastQuads := (i * 3) % 6
	parks := 1 + i%5
	longest := 0.5 + float64((i*7)%30)/10
	skiable := 200 + (i*97)%3000
	snow := 50 + (i*41)%600
	days := 90 + (i*13)%60
	years := 30 + (i*3)%60
	night := (i * 17) % 200
	if i == 0 {
		name, state = FixtureResort, "Montana"
		vertical, chairs, runs, fastQuads, parks = 2353, 14, 105, 3, 4
		longest, skiable, snow, days, years, night = 3.3, 3000, 600, 123, 72, 600
	}
	price := 20 + 0.012*float64(vertical) + 1.8*float64(chairs) + 0.15*float64(runs) +
		2*float64(fastQuads) + 0.005*float64(skiable)

	fastEight := "0"
	if i%4 == 0 {
		fastEight = ""
	}
	return []string{
		name,
		state,
		state,
		strconv.Itoa(vertical),
		fastEight,
		strconv.Itoa(fastQuads),
		strconv.Itoa(chairs),
		strconv.Itoa(runs),
		strconv.Itoa(parks),
		strconv.FormatFloat(longest, 'f', 1, 64),
		strconv.Itoa(skiable),
		strconv.Itoa(snow),
		strconv.Itoa(days),
		strconv.Itoa(years),
		strconv.FormatFloat(price-5, 'f', 2, 64),
		strconv.FormatFloat(price, 'f', 2, 64),
		strconv.Itoa(night),
	}
}

// WriteRawData writes RawRecords to the config's raw input path and returns
// that path.
func WriteRawData(t testing.TB, cfg *config.Config) string {
	t.Helper()
	return WriteCSV(t, cfg.RawDataPath(), RawRecords())
}

// WriteCSV writes records to path, creating parent directories.
func WriteCSV(t testing.TB, path string, records [][]string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t testing.TB, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

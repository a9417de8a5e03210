package loader

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"shiftinsight.com/shiftinsight/model"
	"shiftinsight.com/shiftinsight/utils"
)

const DefaultTime = "00:00:00"

var (
	clockRe        = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2})(?:\.\d+)?)?$`)
	embeddedDateRe = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	trailingTimeRe = regexp.MustCompile(`[ T]\d{1,2}:\d{2}(?::\d{2}(?:\.\d+)?)?$`)
)

// day-first layouts are tried before month-first ones
var dateLayouts = []string{
	"2006-1-2",
	"2/1/2006",
	"1/2/2006",
	"2006.1.2",
	"2-1-2006",
	"1-2-2006",
}

var meridiemLayouts = []string{"3:04 PM", "3:04PM", "3:04:05 PM", "3:04:05PM", "3 PM", "3PM"}

// largest serial excelize accepts (9999-12-31)
const maxExcelSerial = 2958465

func isNull(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "nat", "null", "none", "#n/a":
		return true
	}
	return false
}

// CleanString trims v and falls back to def for blank or null-like values.
func CleanString(v string, def string) string {
	s := strings.TrimSpace(v)
	if isNull(s) {
		return def
	}
	return s
}

// CleanTime returns an HH:MM:SS string. ok is false when the value was replaced by DefaultTime.
//
// A bare number below 1 is an Excel day fraction and a number below 24 counts whole hours.
// Larger numbers are only accepted as Excel date-time serials carrying a time of day; whole
// numbers from 24 up are defaulted.
func CleanTime(v string) (string, bool) {
	s := strings.TrimSpace(v)
	if isNull(s) {
		return DefaultTime, false
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		switch {
		case n < 0 || math.IsNaN(n) || math.IsInf(n, 0):
			return DefaultTime, false
		case n < 1:
			return formatSeconds(int(math.Round(n * 86400))), true
		case n < 24:
			return formatSeconds(int(n) * 3600), true
		case n > maxExcelSerial:
			return DefaultTime, false
		default:
			_, frac := math.Modf(n)
			if frac == 0 {
				return DefaultTime, false
			}
			return formatSeconds(int(math.Round(frac * 86400))), true
		}
	}

	// "2024-03-01 08:00:00" and "2024-03-01T08:00:00"
	if i := strings.LastIndexAny(s, " T"); i > 0 && strings.ContainsAny(s[:i], "-/.") {
		s = strings.TrimSpace(s[i+1:])
	}

	if m := clockRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mi, _ := strconv.Atoi(m[2])
		sec := 0
		if m[3] != "" {
			sec, _ = strconv.Atoi(m[3])
		}
		if h > 23 || mi > 59 || sec > 59 {
			return DefaultTime, false
		}
		return fmt.Sprintf("%02d:%02d:%02d", h, mi, sec), true
	}

	upper := strings.ToUpper(s)
	for _, layout := range meridiemLayouts {
		if t, err := time.Parse(layout, upper); err == nil {
			return t.Format("15:04:05"), true
		}
	}

	return DefaultTime, false
}

func formatSeconds(total int) string {
	total = total % 86400
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}

// CleanDate parses the accepted date forms into a UTC midnight. ok is false when the
// sentinel date was substituted.
func CleanDate(v string) (time.Time, bool) {
	s := strings.TrimSpace(v)
	if isNull(s) {
		return utils.SentinelDate, false
	}

	if strings.HasPrefix(s, "=") {
		found := embeddedDateRe.FindString(s)
		if found == "" {
			return utils.SentinelDate, false
		}
		s = found
	}

	if n, err := strconv.ParseFloat(s, 64); err == nil {
		if n >= 1 && n <= maxExcelSerial {
			if t, err := excelize.ExcelDateToTime(n, false); err == nil {
				return midnight(t), true
			}
		}
		return utils.SentinelDate, false
	}

	s = trailingTimeRe.ReplaceAllString(s, "")

	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return midnight(t), true
		}
	}

	if t, err := utils.ParseISOTime(strings.TrimSpace(v)); err == nil {
		return midnight(*t), true
	}

	return utils.SentinelDate, false
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CleanFloat parses a number, returning 0 for blanks. ok is false when a non-blank value could not be parsed.
func CleanFloat(v string) (float64, bool) {
	s := strings.TrimSpace(v)
	if isNull(s) {
		return 0, true
	}
	s = strings.NewReplacer("£", "", ",", "", " ", "").Replace(s)
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func CleanBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "yes", "1", "y":
		return true
	}
	return false
}

func isFormula(v string) bool {
	return strings.HasPrefix(strings.TrimSpace(v), "=")
}

// Diagnostics counts the data-quality events of one load.
type Diagnostics struct {
	DefaultedDates     int `json:"defaulted_dates"`
	DefaultedTimes     int `json:"defaulted_times"`
	InvalidNumbers     int `json:"invalid_numbers"`
	PlaceholderClients int `json:"placeholder_clients"`
	PlaceholderJobs    int `json:"placeholder_jobs"`
}

func (d Diagnostics) Total() int {
	return d.DefaultedDates + d.DefaultedTimes + d.InvalidNumbers + d.PlaceholderClients + d.PlaceholderJobs
}

// CleanRow is one spreadsheet row in canonical form.
type CleanRow struct {
	Row int

	JobName   string
	ShiftName string
	FullName  string
	Location  string
	Site      string
	Role      string
	Month     string
	Day       string
	Client    string
	JobStatus string

	Date       time.Time
	ShiftStart string
	ShiftEnd   string

	Duration         float64
	PaidHours        float64
	HourRate         float64
	Deductions       float64
	Additions        float64
	TotalPay         float64
	ClientHourlyRate float64
	ClientNet        float64
	ClientNetFormula bool

	SelfEmployed bool
	DNS          bool
}

func (r CleanRow) DateKey() model.DateKey {
	return model.NewDateKey(r.Date)
}

// Cleaner converts raw rows and keeps count of every value it had to default.
type Cleaner struct {
	Diagnostics Diagnostics
}

func (c *Cleaner) CleanAll(rows []RawRow) []CleanRow {
	cleaned := make([]CleanRow, 0, len(rows))
	for _, raw := range rows {
		cleaned = append(cleaned, c.Clean(raw))
	}
	return cleaned
}

func (c *Cleaner) Clean(raw RawRow) CleanRow {
	row := CleanRow{
		Row:       raw.Number,
		JobName:   CleanString(raw.Get(ColJobName), ""),
		ShiftName: CleanString(raw.Get(ColShiftName), ""),
		FullName:  CleanString(raw.Get(ColFullName), ""),
		Location:  CleanString(raw.Get(ColLocation), ""),
		Site:      CleanString(raw.Get(ColSite), ""),
		Role:      CleanString(raw.Get(ColRole), ""),
		Month:     CleanString(raw.Get(ColMonth), ""),
		Day:       CleanString(raw.Get(ColDay), ""),
		Client:    CleanString(raw.Get(ColClient), ""),
		JobStatus: CleanString(raw.Get(ColJobStatus), ""),

		SelfEmployed: CleanBool(raw.Get(ColSelfEmployed)),
		DNS:          CleanBool(raw.Get(ColDNS)),
	}

	if row.Client == "" {
		row.Client = model.UnknownClient
		c.Diagnostics.PlaceholderClients++
	}
	if row.JobName == "" {
		row.JobName = model.UnknownJob
		c.Diagnostics.PlaceholderJobs++
	}

	var ok bool
	if row.Date, ok = CleanDate(raw.Get(ColDate)); !ok {
		c.Diagnostics.DefaultedDates++
	}
	if row.ShiftStart, ok = CleanTime(raw.Get(ColShiftStart)); !ok {
		c.Diagnostics.DefaultedTimes++
	}
	if row.ShiftEnd, ok = CleanTime(raw.Get(ColShiftEnd)); !ok {
		c.Diagnostics.DefaultedTimes++
	}

	row.ClientNetFormula = isFormula(raw.Get(ColClientNet))

	numbers := []struct {
		col string
		dst *float64
	}{
		{ColDuration, &row.Duration},
		{ColPaidHours, &row.PaidHours},
		{ColHourRate, &row.HourRate},
		{ColDeductions, &row.Deductions},
		{ColAdditions, &row.Additions},
		{ColTotalPay, &row.TotalPay},
		{ColClientHourlyRate, &row.ClientHourlyRate},
		{ColClientNet, &row.ClientNet},
	}
	for _, n := range numbers {
		value := raw.Get(n.col)
		if n.col == ColClientNet && row.ClientNetFormula {
			continue
		}
		if *n.dst, ok = CleanFloat(value); !ok {
			c.Diagnostics.InvalidNumbers++
		}
	}

	return row
}

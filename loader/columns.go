package loader

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

const (
	ColJobName          = "job_name"
	ColShiftName        = "shift_name"
	ColFullName         = "full_name"
	ColLocation         = "location"
	ColSite             = "site"
	ColRole             = "role"
	ColMonth            = "month"
	ColDate             = "date"
	ColDay              = "day"
	ColShiftStart       = "shift_start"
	ColShiftEnd         = "shift_end"
	ColDuration         = "duration"
	ColPaidHours        = "paid_hours"
	ColHourRate         = "hour_rate"
	ColDeductions       = "deductions"
	ColAdditions        = "additions"
	ColTotalPay         = "total_pay"
	ColClientHourlyRate = "client_hourly_rate"
	ColClientNet        = "client_net"
	ColSelfEmployed     = "self_employed"
	ColDNS              = "dns"
	ColClient           = "client"
	ColJobStatus        = "job_status"
)

// RequiredColumns is the fixed column set every workbook must carry, after header normalization.
var RequiredColumns = []string{
	ColJobName, ColShiftName, ColFullName, ColLocation, ColSite, ColRole, ColMonth, ColDate, ColDay,
	ColShiftStart, ColShiftEnd, ColDuration, ColPaidHours, ColHourRate, ColDeductions, ColAdditions,
	ColTotalPay, ColClientHourlyRate, ColClientNet, ColSelfEmployed, ColDNS, ColClient, ColJobStatus,
}

// formula cells in these columns are surfaced as "=..." strings when they carry no cached value
var formulaColumns = map[string]bool{
	ColDate:      true,
	ColClientNet: true,
}

var (
	separatorRe  = regexp.MustCompile(`[\s\-]+`)
	underscoreRe = regexp.MustCompile(`_+`)
)

// NormalizeHeader maps " Client-Net " and "Client Net" to "client_net".
func NormalizeHeader(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = stripDiacritics(s)
	s = separatorRe.ReplaceAllString(s, "_")
	s = underscoreRe.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

func stripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var result strings.Builder
	result.Grow(len(decomposed))

	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		result.WriteRune(r)
	}

	return result.String()
}

// MissingColumnsError is fatal for the whole file.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return fmt.Sprintf("Missing required columns: %s", strings.Join(e.Columns, ", "))
}

// CheckColumns reports every required column absent from header.
func CheckColumns(header []string) error {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}

	var missing []string
	for _, col := range RequiredColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}

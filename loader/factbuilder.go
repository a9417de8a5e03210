package loader

import (
	"fmt"
	"strings"

	"shiftinsight.com/shiftinsight/model"
	"shiftinsight.com/shiftinsight/utils"
)

const (
	ReasonMissingKeys  = "MissingKeys"
	ReasonDuplicate    = "Duplicate"
	ReasonInsertFailed = "InsertFailed"

	DuplicatePreExisting = "pre_existing"
	DuplicateIntraFile   = "intra_file"
)

// SkipRecord explains why a source row produced no fact.
type SkipRecord struct {
	Row          int     `json:"row"`
	Reason       string  `json:"reason"`
	Kind         string  `json:"kind,omitempty"`
	Details      string  `json:"details"`
	CollidesWith []int   `json:"collides_with,omitempty"`
	ClientNet    float64 `json:"client_net"`
}

// countsAgainstSource reports whether the skipped amount is missing from the warehouse
// because of this load. Pre-existing duplicates are already stored.
func (s SkipRecord) countsAgainstSource() bool {
	return s.Reason == ReasonMissingKeys || (s.Reason == ReasonDuplicate && s.Kind == DuplicateIntraFile)
}

// PendingFact is a fact waiting to be written together with the sheet row it came from.
type PendingFact struct {
	Row  int
	Fact model.FactShift
}

type BuildResult struct {
	Facts []PendingFact
	Skips []SkipRecord
}

// EffectiveClientNet recomputes formula-valued client net as rate x paid hours.
func EffectiveClientNet(r CleanRow) float64 {
	if r.ClientNetFormula {
		return r.ClientHourlyRate * r.PaidHours
	}
	return r.ClientNet
}

// BuildFacts turns cleaned rows into facts. It does no I/O: dimension ids come from dims and
// existing holds the dedup keys already stored within the file's date range.
// The first occurrence of a dedup key in file order wins.
func BuildFacts(rows []CleanRow, dims *Dimensions, existing map[model.FactKey]struct{}) BuildResult {
	var result BuildResult
	seen := make(map[model.FactKey][]int)

	for _, r := range rows {
		net := EffectiveClientNet(r)

		var missing []string
		employeeKey, hasEmployee := employeeOf(r)
		employeeID, ok := lookup(dims.Employees, employeeKey, hasEmployee)
		if !ok {
			missing = append(missing, "employee")
		}
		dateID, ok := dims.Dates[r.DateKey()]
		if !ok {
			missing = append(missing, "date")
		}
		shiftKey, hasShift := shiftOf(r)
		shiftID, ok := lookup(dims.Shifts, shiftKey, hasShift)
		if !ok {
			missing = append(missing, "shift")
		}
		// blank client/job names were replaced by placeholders, and the resolver fails the load
		// rather than leave a key without an id
		clientKey, hasClient := clientOf(r)
		clientID, ok := lookup(dims.Clients, clientKey, hasClient)
		if !ok {
			missing = append(missing, "client")
		}
		jobKey, hasJob := jobOf(r)
		jobID, ok := lookup(dims.Jobs, jobKey, hasJob)
		if !ok {
			missing = append(missing, "job")
		}
		if len(missing) > 0 {
			result.Skips = append(result.Skips, SkipRecord{
				Row:       r.Row,
				Reason:    ReasonMissingKeys,
				Details:   fmt.Sprintf("missing %s", strings.Join(missing, ", ")),
				ClientNet: net,
			})
			continue
		}

		key := model.FactKey{EmployeeID: employeeID, DateID: dateID, ShiftID: shiftID}

		if _, dup := existing[key]; dup {
			result.Skips = append(result.Skips, SkipRecord{
				Row:       r.Row,
				Reason:    ReasonDuplicate,
				Kind:      DuplicatePreExisting,
				Details:   fmt.Sprintf("%s on %s (%s) is already loaded", r.FullName, r.DateKey(), r.ShiftName),
				ClientNet: net,
			})
			continue
		}

		if earlier, dup := seen[key]; dup {
			result.Skips = append(result.Skips, SkipRecord{
				Row:          r.Row,
				Reason:       ReasonDuplicate,
				Kind:         DuplicateIntraFile,
				Details:      fmt.Sprintf("%s on %s (%s) duplicates row(s) %s", r.FullName, r.DateKey(), r.ShiftName, utils.JoinInts(earlier)),
				CollidesWith: append([]int(nil), earlier...),
				ClientNet:    net,
			})
			seen[key] = append(earlier, r.Row)
			continue
		}

		result.Facts = append(result.Facts, PendingFact{
			Row: r.Row,
			Fact: model.FactShift{
				EmployeeID:       employeeID,
				DateID:           dateID,
				ShiftID:          shiftID,
				ClientID:         clientID,
				JobID:            jobID,
				Duration:         r.Duration,
				PaidHours:        r.PaidHours,
				HourRate:         r.HourRate,
				Deductions:       r.Deductions,
				Additions:        r.Additions,
				TotalPay:         r.TotalPay,
				ClientHourlyRate: r.ClientHourlyRate,
				ClientNet:        net,
				SelfEmployed:     r.SelfEmployed,
				DNS:              r.DNS,
				JobStatus:        r.JobStatus,
			},
		})
		seen[key] = []int{r.Row}
	}

	return result
}

func lookup[K comparable](ids map[K]int32, key K, ok bool) (int32, bool) {
	if !ok {
		return 0, false
	}
	id, found := ids[key]
	return id, found
}

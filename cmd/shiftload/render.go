package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"shiftinsight.com/shiftinsight/loader"
	"shiftinsight.com/shiftinsight/model"
	"shiftinsight.com/shiftinsight/utils"
)

func newTable(w io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

func matchLabel(match bool) string {
	return utils.FormatBoolean(match, color.GreenString("match"), color.RedString("MISMATCH"))
}

func renderSummary(w io.Writer, s *loader.Summary) {
	table := newTable(w, []string{"Load", "Rows", "Inserted", "Skipped", "Failed", "New dims", "Sheet net", "Stored net", "Totals"})
	table.Append([]string{
		s.LoadID,
		strconv.Itoa(s.Rows),
		strconv.Itoa(s.Inserted),
		strconv.Itoa(s.Skipped),
		strconv.Itoa(s.Failed),
		strconv.Itoa(s.NewDimensions.Total()),
		utils.FormatMoney(s.Verification.ExcelRevenue),
		utils.FormatMoney(s.Verification.DBRevenue),
		matchLabel(s.Verification.Match),
	})
	table.Render()

	counts := s.SkipCounts()
	if len(counts) == 0 {
		return
	}
	reasons := make([]string, 0, len(counts))
	for reason := range counts {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	parts := utils.Map(reasons, func(r string) string { return fmt.Sprintf("%s=%d", r, counts[r]) })
	fmt.Fprintln(w, color.YellowString("skipped: %s", strings.Join(parts, ", ")))
}

func renderSkips(w io.Writer, skips []loader.SkipRecord) {
	if len(skips) == 0 {
		return
	}
	table := newTable(w, []string{"Row", "Reason", "Client net", "Details"})
	for _, skip := range skips {
		reason := skip.Reason
		if skip.Kind != "" {
			reason += "/" + skip.Kind
		}
		table.Append([]string{strconv.Itoa(skip.Row), reason, utils.FormatMoney(skip.ClientNet), skip.Details})
	}
	table.Render()
}

func renderRuns(w io.Writer, runs []model.LoadRun, total int64) {
	table := newTable(w, []string{"Load", "Created", "File", "Source", "Status", "Inserted", "Skipped", "Failed", "Stored net", "Totals"})
	for _, run := range runs {
		var totals string
		if run.Status == model.LoadStatusComplete {
			totals = matchLabel(run.Match)
		} else {
			totals = color.RedString(run.Error)
		}
		table.Append([]string{
			run.LoadID,
			run.CreatedAt.Format("2006-01-02 15:04"),
			run.Filename,
			run.Source,
			run.Status,
			strconv.Itoa(run.Inserted),
			strconv.Itoa(run.Skipped),
			strconv.Itoa(run.Failed),
			utils.FormatMoney(run.PersistedTotal),
			totals,
		})
	}
	table.Render()
	fmt.Fprintf(w, "%d of %d runs\n", len(runs), total)
}

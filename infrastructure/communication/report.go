package communication

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"shiftinsight.com/shiftinsight/loader"
	"shiftinsight.com/shiftinsight/utils"
)

// Notifier tells people about finished loads.
type Notifier interface {
	LoadCompleted(ctx context.Context, summary *loader.Summary) error
	LoadFailed(ctx context.Context, loadID, filename string, cause error) error
}

// Notifiers fans out to every notifier. Failures are logged and never returned.
type Notifiers []Notifier

func (n Notifiers) Completed(ctx context.Context, log logrus.FieldLogger, summary *loader.Summary) {
	for _, notifier := range n {
		if err := notifier.LoadCompleted(ctx, summary); err != nil {
			log.WithError(err).WithField("notifier", fmt.Sprintf("%T", notifier)).Warn("notification failed")
		}
	}
}

func (n Notifiers) Failed(ctx context.Context, log logrus.FieldLogger, loadID, filename string, cause error) {
	for _, notifier := range n {
		if err := notifier.LoadFailed(ctx, loadID, filename, cause); err != nil {
			log.WithError(err).WithField("notifier", fmt.Sprintf("%T", notifier)).Warn("notification failed")
		}
	}
}

func SummaryLine(s *loader.Summary) string {
	line := fmt.Sprintf("Loaded %s: %d of %d rows inserted, %d skipped, %d failed. Client net %s (sheet) / %s (stored)",
		displayName(s.Filename), s.Inserted, s.Rows, s.Skipped, s.Failed,
		utils.FormatMoney(s.Verification.ExcelRevenue), utils.FormatMoney(s.Verification.DBRevenue))
	if counts := s.SkipCounts(); len(counts) > 0 {
		line += ". Skips: " + formatCounts(counts)
	}
	return line
}

func MismatchLine(s *loader.Summary) string {
	v := s.Verification
	return fmt.Sprintf("Reconciliation mismatch for %s (load %s): sheet %s, stored %s, difference %s",
		displayName(s.Filename), s.LoadID, utils.FormatMoney(v.ExcelRevenue), utils.FormatMoney(v.DBRevenue),
		utils.FormatMoney(v.DBRevenue-v.ExcelRevenue))
}

func FailureLine(loadID, filename string, cause error) string {
	return fmt.Sprintf("Load %s of %s failed: %v", loadID, displayName(filename), cause)
}

func displayName(filename string) string {
	if filename == "" {
		return "workbook"
	}
	return filename
}

func formatCounts(counts map[string]int) string {
	reasons := make([]string, 0, len(counts))
	for reason := range counts {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)

	parts := utils.Map(reasons, func(reason string) string {
		return fmt.Sprintf("%s=%d", reason, counts[reason])
	})
	return strings.Join(parts, ", ")
}

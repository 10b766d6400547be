package export

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/svwadmin/reservations-tracker/internal/subscription"
)

var weekdayNames = []string{"Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag", "Sonntag"}

// Service produces XLSX bytes for admin exports of the subscription registry.
type Service struct {
	registry *subscription.Registry
	logger   *slog.Logger
}

func NewService(registry *subscription.Registry, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{registry: registry, logger: logger}
}

// ExportSubscriptionsXLSX returns a workbook listing every subscriber with
// their weekdays, reminder lead time and immediate-notification flag.
func (s *Service) ExportSubscriptionsXLSX() ([]byte, error) {
	metas := s.registry.All()

	f := excelize.NewFile()
	const sheet = "Subscriptions"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Email",
		"Weekdays",
		"Reminder Lead Days",
		"Immediate Notifications",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, m := range metas {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, m.Email)
		write(2, formatWeekdays(m.Weekdays))
		if m.ReminderLeadDays != nil {
			write(3, *m.ReminderLeadDays)
		} else {
			write(3, "")
		}
		write(4, m.ImmediateNotifications)

		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 36) // email
	_ = f.SetColWidth(sheet, "B", "B", 40) // weekdays
	_ = f.SetColWidth(sheet, "C", "D", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	s.logger.Info("export.subscriptions", "rows", len(metas))
	return buf.Bytes(), nil
}

func formatWeekdays(days []int) string {
	names := make([]string, 0, len(days))
	for _, d := range days {
		if d >= 0 && d < len(weekdayNames) {
			names = append(names, weekdayNames[d])
		}
	}
	return strings.Join(names, ", ")
}

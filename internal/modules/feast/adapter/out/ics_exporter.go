package out

import (
	"context"
	"fmt"
	"io"

	ics "github.com/arran4/golang-ical"

	"feastly/internal/modules/feast/domain"
	feastout "feastly/internal/modules/feast/port/out"
)

const icsProductID = "-//feastly//feast windows//EN"

// ICSExporter renders feast windows as an iCalendar document.
type ICSExporter struct{}

func NewICSExporter() feastout.CalendarExporter {
	return ICSExporter{}
}

func (ICSExporter) Export(_ context.Context, windows []domain.FeastWindow, w io.Writer) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)

	for _, window := range windows {
		event := cal.AddEvent(window.ID + "@feastly")
		event.SetDtStampTime(window.StartDate.UTC())
		event.SetStartAt(window.StartDate.UTC())
		event.SetEndAt(window.EndDate.UTC())
		event.SetSummary(fmt.Sprintf("Feast window (%s)", window.FormattedDuration()))
		event.SetProperty(ics.ComponentPropertyStatus, "CONFIRMED")
		event.SetProperty(ics.ComponentProperty("X-FEASTLY-ACTIVE"), fmt.Sprintf("%t", window.IsActive))
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("write calendar: %w", err)
	}
	return nil
}

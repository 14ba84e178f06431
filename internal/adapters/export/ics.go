package export

import (
	"fmt"
	"io"
	"route-itinerary-service/internal/domain"
	"time"

	ics "github.com/arran4/golang-ical"
)

// ServiceStart is the instant the route departs on the given civil date.
func ServiceStart(it domain.Itinerary, serviceDate time.Time) time.Time {
	y, m, d := serviceDate.Date()
	epoch := time.Unix(0, 0).UTC()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Add(it.StartInstant.Sub(epoch))
}

// WriteItineraryICS writes one event per stop, spanning arrival to departure,
// for a single service date.
func WriteItineraryICS(it domain.Itinerary, serviceDate time.Time, w io.Writer) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//route-itinerary-service//itinerary//EN")

	start := ServiceStart(it, serviceDate)
	now := time.Now()
	for _, s := range it.Stops {
		arr := domain.InstantAt(start, s.ArrivalDelta)
		dep := domain.InstantAt(start, s.DepartureDelta)

		event := cal.AddEvent(fmt.Sprintf("route-%d-%s-stop-%d", it.Route.ID, serviceDate.Format("20060102"), s.SequenceID))
		event.SetDtStampTime(now)
		event.SetStartAt(arr)
		event.SetEndAt(dep)
		event.SetSummary(fmt.Sprintf("%s: stop %d", it.Route.Name, s.SequenceID))
		event.SetLocation(fmt.Sprintf("Landmark %d", s.LandmarkID))
		event.SetDescription(fmt.Sprintf(
			"Arrive %s\nDepart %s\nDistance from start: %.0f m",
			s.Arrival, s.Departure, s.DistanceFromStart,
		))
	}

	if err := cal.SerializeTo(w); err != nil {
		return fmt.Errorf("write itinerary ics: %w", err)
	}
	return nil
}

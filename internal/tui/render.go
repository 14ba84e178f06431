package tui

import (
	"fmt"
	"route-itinerary-service/internal/domain"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderItinerary lays out a persisted route as a stop table.
func RenderItinerary(it domain.Itinerary) string {
	var b strings.Builder

	b.WriteString(accentStyle.Render(fmt.Sprintf("Route %d: %s", it.Route.ID, it.Route.Name)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("starts %s (UTC%s)", it.Start, it.Offset)))
	b.WriteString("\n\n")

	rows := [][]string{{"#", "LANDMARK", "DISTANCE", "ARRIVAL", "DEPARTURE"}}
	for _, s := range it.Stops {
		rows = append(rows, []string{
			fmt.Sprint(s.SequenceID),
			fmt.Sprint(s.LandmarkID),
			fmt.Sprintf("%.0f m", s.DistanceFromStart),
			s.Arrival.String(),
			s.Departure.String(),
		})
	}
	b.WriteString(table(rows))

	if len(it.Stops) == 0 {
		b.WriteString(mutedStyle.Render("no stops"))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderDraft shows a draft's stops in sequence order.
func RenderDraft(d *domain.RouteDraft) string {
	var b strings.Builder

	b.WriteString(accentStyle.Render(fmt.Sprintf("Draft %q", d.Name)))
	b.WriteString(mutedStyle.Render(fmt.Sprintf("  starts %s", d.Start())))
	b.WriteString("\n\n")

	rows := [][]string{{"#", "LANDMARK", "DISTANCE", "ARRIVAL", "DEPARTURE"}}
	for i, s := range d.Stops {
		name := fmt.Sprint(s.LandmarkID)
		if s.LandmarkName != "" {
			name = fmt.Sprintf("%d %s", s.LandmarkID, s.LandmarkName)
		}
		rows = append(rows, []string{
			fmt.Sprint(domain.SequenceNumber(i)),
			name,
			fmt.Sprintf("%.0f m", s.DistanceFromStart),
			domain.FromInstant(s.ArrivalInstant, d.Offset).String(),
			domain.FromInstant(s.DepartureInstant, d.Offset).String(),
		})
	}
	b.WriteString(table(rows))
	return b.String()
}

// RenderCommit summarises a commit attempt, listing every failed landmark.
func RenderCommit(rec *domain.CommitRecord) string {
	var b strings.Builder

	switch rec.Status {
	case domain.CommitSucceeded:
		b.WriteString(okStyle.Render(fmt.Sprintf("Route %d created with %d landmarks", rec.RouteID, len(rec.Landmarks))))
	case domain.CommitPartial:
		b.WriteString(errorStyle.Render(fmt.Sprintf(
			"Route %d created but %d of %d landmarks failed",
			rec.RouteID, len(rec.Failed()), len(rec.Landmarks),
		)))
	default:
		b.WriteString(errorStyle.Render("Route could not be created: " + rec.Error))
	}
	b.WriteString("\n")

	for _, o := range rec.Failed() {
		b.WriteString(fmt.Sprintf("  stop %d (landmark %d): %s\n", o.SequenceID, o.LandmarkID, o.Error))
	}
	return b.String()
}

func table(rows [][]string) string {
	widths := make([]int, len(rows[0]))
	for _, r := range rows {
		for i, c := range r {
			widths[i] = max(widths[i], lipgloss.Width(c))
		}
	}

	var b strings.Builder
	for ri, r := range rows {
		cells := make([]string, len(r))
		for i, c := range r {
			style := lipgloss.NewStyle().Width(widths[i] + 2)
			switch {
			case ri == 0:
				style = style.Inherit(headerStyle)
			case i >= 3:
				style = style.Inherit(timeStyle)
			}
			cells[i] = style.Render(c)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}
	return b.String()
}

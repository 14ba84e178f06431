package tui

import (
	"context"
	"errors"
	"fmt"
	"route-itinerary-service/internal/domain"
	"route-itinerary-service/internal/services"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
)

// RunAuthor builds a draft stop by stop with the same validation as the
// console's dialog, then optionally commits it.
func RunAuthor(ctx context.Context, drafts *services.DraftService) error {
	var name, start string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Route name").
				Value(&name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("route name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Starting time").
				Placeholder("06:00 AM").
				Value(&start).
				Validate(func(s string) error {
					_, err := domain.ParseCivilTime(s, 0)
					return err
				}),
		),
	).WithTheme(Theme())
	if err := form.Run(); err != nil {
		return err
	}

	startTime, err := domain.ParseCivilTime(start, 0)
	if err != nil {
		return err
	}
	d, err := drafts.Create(ctx, name, startTime)
	if err != nil {
		return err
	}

	for {
		in, done, err := stopDialog(len(d.Stops) == 0)
		if err != nil {
			return err
		}
		if done {
			break
		}

		updated, _, err := drafts.AddStop(ctx, d.ID, in)
		if err != nil {
			var ve *domain.ValidationError
			if errors.As(err, &ve) {
				fmt.Println(errorStyle.Render(ve.Reason))
				continue
			}
			return err
		}
		d = updated
		fmt.Println(RenderDraft(d))
	}

	if err := d.CheckCommittable(); err != nil {
		fmt.Println(errorStyle.Render(err.Error()))
		return drafts.Discard(ctx, d.ID)
	}

	commit := true
	if err := confirm(fmt.Sprintf("Commit %q with %d stops?", d.Name, len(d.Stops)), &commit); err != nil {
		return err
	}
	if !commit {
		return drafts.Discard(ctx, d.ID)
	}

	var rec *domain.CommitRecord
	var commitErr error
	_ = spinner.New().
		Title("Creating route and landmarks...").
		Action(func() {
			rec, commitErr = drafts.Commit(ctx, d.ID)
		}).
		Run()

	if rec != nil {
		fmt.Print(RenderCommit(rec))
	}
	return commitErr
}

// stopDialog asks for one stop. The first stop only needs a landmark.
func stopDialog(first bool) (domain.StopInput, bool, error) {
	var (
		landmark, landmarkName, distance string
		arrival, departure               string
		arrivalDay, departureDay         = "0", "0"
		terminus                         bool
		more                             = true
	)

	if !first {
		if err := confirm("Add another stop?", &more); err != nil {
			return domain.StopInput{}, false, err
		}
		if !more {
			return domain.StopInput{}, true, nil
		}
	}

	fields := []huh.Field{
		huh.NewInput().Title("Landmark id").Value(&landmark).Validate(positiveInt),
		huh.NewInput().Title("Landmark name").Value(&landmarkName),
	}
	if !first {
		fields = append(fields,
			huh.NewInput().Title("Distance from start (m)").Value(&distance),
			huh.NewInput().Title("Arrival").Placeholder("07:15 AM").Value(&arrival).Validate(civilTimeText),
			huh.NewInput().Title("Arrival day offset").Value(&arrivalDay).Validate(nonNegativeInt),
			huh.NewInput().Title("Departure (blank for the last stop)").Placeholder("07:20 AM").Value(&departure),
			huh.NewInput().Title("Departure day offset").Value(&departureDay).Validate(nonNegativeInt),
			huh.NewConfirm().Title("Is this the terminus?").Value(&terminus),
		)
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).WithTheme(Theme()).Run(); err != nil {
		return domain.StopInput{}, false, err
	}

	id, _ := strconv.Atoi(strings.TrimSpace(landmark))
	in := domain.StopInput{
		LandmarkID:   id,
		LandmarkName: strings.TrimSpace(landmarkName),
		Distance:     distance,
		First:        first,
		Terminus:     terminus,
	}
	if first {
		in.Distance = "0"
		return in, false, nil
	}

	aDay, _ := strconv.Atoi(arrivalDay)
	arr, err := domain.ParseCivilTime(arrival, aDay)
	if err != nil {
		return domain.StopInput{}, false, err
	}
	in.Arrival = &arr

	if strings.TrimSpace(departure) != "" {
		dDay, _ := strconv.Atoi(departureDay)
		dep, err := domain.ParseCivilTime(departure, dDay)
		if err != nil {
			return domain.StopInput{}, false, fmt.Errorf("departure: %w", err)
		}
		in.Departure = &dep
	}
	return in, false, nil
}

func confirm(title string, v *bool) error {
	return huh.NewForm(huh.NewGroup(huh.NewConfirm().Title(title).Value(v))).WithTheme(Theme()).Run()
}

func positiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n <= 0 {
		return errors.New("must be a positive whole number")
	}
	return nil
}

func nonNegativeInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return errors.New("must be 0 or more")
	}
	return nil
}

func civilTimeText(s string) error {
	_, err := domain.ParseCivilTime(s, 0)
	return err
}

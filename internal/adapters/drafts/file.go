package drafts

import (
	"encoding/json"
	"fmt"
	"os"
	"route-itinerary-service/internal/domain"
	"strings"
)

type DraftFile struct {
	Name         string     `json:"name"`
	StartingTime string     `json:"starting_time"`
	Stops        []StopSeed `json:"stops"`
}

// StopSeed is one stop as an operator writes it by hand: civil times as
// "07:15 AM" strings with separate day offsets.
type StopSeed struct {
	LandmarkID   int         `json:"landmark_id"`
	LandmarkName string      `json:"landmark_name"`
	Distance     json.Number `json:"distance_from_start"`
	Arrival      string      `json:"arrival"`
	ArrivalDay   int         `json:"arrival_day"`
	Departure    string      `json:"departure"`
	DepartureDay int         `json:"departure_day"`
	First        bool        `json:"first"`
	Terminus     bool        `json:"terminus"`
}

// ToInput converts the seed into the draft store's input, parsing its times.
func (s StopSeed) ToInput() (domain.StopInput, error) {
	in := domain.StopInput{
		LandmarkID:   s.LandmarkID,
		LandmarkName: strings.TrimSpace(s.LandmarkName),
		Distance:     s.Distance.String(),
		First:        s.First,
		Terminus:     s.Terminus,
	}

	if strings.TrimSpace(s.Arrival) != "" {
		c, err := domain.ParseCivilTime(s.Arrival, s.ArrivalDay)
		if err != nil {
			return domain.StopInput{}, &domain.TimeFormatError{Field: "arrival", Value: s.Arrival}
		}
		in.Arrival = &c
	}
	if strings.TrimSpace(s.Departure) != "" {
		c, err := domain.ParseCivilTime(s.Departure, s.DepartureDay)
		if err != nil {
			return domain.StopInput{}, &domain.TimeFormatError{Field: "departure", Value: s.Departure}
		}
		in.Departure = &c
	}

	return in, nil
}

// LoadDraftFile builds a draft from a JSON file, running every stop through
// the same validation as interactive authoring.
func LoadDraftFile(path string, id string, offset domain.CivilOffset) (*domain.RouteDraft, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load draft: read %q: %w", path, err)
	}

	var f DraftFile
	if err := json.Unmarshal(bytes, &f); err != nil {
		return nil, fmt.Errorf("load draft: parse json: %w", err)
	}

	start, err := domain.ParseCivilTime(f.StartingTime, 0)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", &domain.TimeFormatError{Field: "starting", Value: f.StartingTime})
	}

	d, err := domain.NewRouteDraft(id, f.Name, start, offset)
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	for i, s := range f.Stops {
		in, err := s.ToInput()
		if err != nil {
			return nil, fmt.Errorf("load draft: stop at index %d: %w", i+1, err)
		}
		if _, err := d.AddStop(in); err != nil {
			return nil, fmt.Errorf("load draft: stop at index %d (landmark %d): %w", i+1, s.LandmarkID, err)
		}
	}

	return d, nil
}

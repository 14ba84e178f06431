package dto

import "encoding/json"

type CivilTime struct {
	Hour      int    `json:"hour"`
	Minute    int    `json:"minute"`
	Meridiem  string `json:"meridiem"`
	DayOffset int    `json:"day_offset"`
	Display   string `json:"display,omitempty"`
}

// NumberText keeps a numeric form field exactly as typed. The console sends
// distances either as JSON numbers or as the raw text of an input box.
type NumberText string

func (n *NumberText) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NumberText(s)
		return nil
	}
	*n = NumberText(b)
	return nil
}

type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

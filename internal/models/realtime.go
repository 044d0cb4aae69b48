package models

// AlertMessage is pushed to open admin dashboards over the websocket.
type AlertMessage struct {
	Type       string      `json:"type"` // "unattended"
	Profile    string      `json:"profile"`
	Complaints []Complaint `json:"complaints"`
}

const AlertTypeUnattended = "unattended"

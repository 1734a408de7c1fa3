package trips

import (
	"time"

	"github.com/treklog/treklog/database/models"
)

// TripView is the API shape of a trip.
type TripView struct {
	ID            uint               `json:"id"`
	Name          string             `json:"name"`
	Description   string             `json:"description"`
	Privacy       string             `json:"privacy"`
	StartDate     *time.Time         `json:"start_date"`
	EndDate       *time.Time         `json:"end_date"`
	OwnerID       uint               `json:"owner_id"`
	Collaborators []CollaboratorView `json:"collaborators"`
	Tags          []string           `json:"tags"`
	Companions    []string           `json:"companions"`
	CreatedAt     int64              `json:"created_at"`
	UpdatedAt     int64              `json:"updated_at"`
}

// CollaboratorView is a collaborator as exposed by the API.
type CollaboratorView struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// ListView is one page of trips.
type ListView struct {
	Trips   []TripView `json:"trips"`
	Total   int64      `json:"total"`
	HasMore bool       `json:"has_more"`
}

func toView(trip *models.Trip) TripView {
	collaborators := make([]CollaboratorView, len(trip.Collaborators))
	for i, c := range trip.Collaborators {
		collaborators[i] = CollaboratorView{ID: c.ID, Username: c.Username}
	}
	tags := make([]string, len(trip.Tags))
	for i, t := range trip.Tags {
		tags[i] = t.Name
	}
	companions := make([]string, len(trip.Companions))
	for i, c := range trip.Companions {
		companions[i] = c.Name
	}
	return TripView{
		ID:            trip.ID,
		Name:          trip.Name,
		Description:   trip.Description,
		Privacy:       trip.Privacy,
		StartDate:     trip.StartDate,
		EndDate:       trip.EndDate,
		OwnerID:       trip.UserID,
		Collaborators: collaborators,
		Tags:          tags,
		Companions:    companions,
		CreatedAt:     trip.CreatedAt.Unix(),
		UpdatedAt:     trip.UpdatedAt.Unix(),
	}
}

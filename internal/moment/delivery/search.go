package delivery

import (
	"moments-backend/internal/moment/domain"
	"moments-backend/pkg/fuzzy"
)

func matchMoment(query string, m domain.Moment) bool {
	return fuzzy.MatchMoment(query, m.Title, m.Description, m.Notes)
}

func scoreMoment(query string, m domain.Moment) float64 {
	return fuzzy.ScoreMoment(query, m.Title, m.Description, m.Notes)
}

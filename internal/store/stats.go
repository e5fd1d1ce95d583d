package store

import (
	"context"

	"threadcraft-api/internal/domain/billing"
	"threadcraft-api/internal/domain/content"
	"threadcraft-api/internal/domain/users"
	apperr "threadcraft-api/internal/errors"
)

type Stats struct {
	TotalUsers        int64          `json:"total_users"`
	PointsOutstanding int64          `json:"points_outstanding"`
	Generations       int64          `json:"generations"`
	ActivePerPlan     map[string]int `json:"active_per_plan"`
}

// Stats aggregates the admin dashboard numbers.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	const op = "store.stats"
	db := s.conn(ctx)
	out := &Stats{ActivePerPlan: map[string]int{}}

	if err := db.Model(&users.User{}).Count(&out.TotalUsers).Error; err != nil {
		return nil, apperr.Persistence(op, err)
	}
	if err := db.Model(&users.User{}).Select("COALESCE(SUM(points), 0)").Scan(&out.PointsOutstanding).Error; err != nil {
		return nil, apperr.Persistence(op, err)
	}
	if err := db.Model(&content.GeneratedContent{}).Count(&out.Generations).Error; err != nil {
		return nil, apperr.Persistence(op, err)
	}

	var counts []struct {
		Plan  string
		Count int
	}
	err := db.Model(&billing.Subscription{}).
		Select("plan, COUNT(*) AS count").
		Where("status IN ?", []string{"active", "trialing"}).
		Group("plan").
		Scan(&counts).Error
	if err != nil {
		return nil, apperr.Persistence(op, err)
	}
	for _, c := range counts {
		out.ActivePerPlan[c.Plan] = c.Count
	}
	return out, nil
}

package store

import (
	"fmt"
	"time"

	"github.com/junhyuk/hanzam/internal/model"
)

// ExportResults builds export-ready per-student results. A grade of 0
// exports all grades.
func (s *Store) ExportResults(grade float64) (model.ResultExport, error) {
	export := model.ResultExport{
		ExportedAt: time.Now(),
		Grade:      grade,
	}

	users, err := s.ListUsers()
	if err != nil {
		return export, fmt.Errorf("list users: %w", err)
	}

	for _, u := range users {
		exams, err := s.ListExamResultsByUser(u.ID)
		if err != nil {
			return export, fmt.Errorf("list exam results for user %d: %w", u.ID, err)
		}
		if grade != 0 {
			var filtered []model.ExamResult
			for _, e := range exams {
				if e.Grade == grade {
					filtered = append(filtered, e)
				}
			}
			exams = filtered
		}
		if len(exams) == 0 {
			continue
		}

		games, err := s.ListGameResultsByUser(u.ID)
		if err != nil {
			return export, fmt.Errorf("list game results for user %d: %w", u.ID, err)
		}
		xp, err := s.TotalExperience(u.ID)
		if err != nil {
			return export, fmt.Errorf("total experience for user %d: %w", u.ID, err)
		}

		export.Results = append(export.Results, model.StudentResult{
			Username:    u.Username,
			DisplayName: u.DisplayName,
			Experience:  xp,
			Exams:       exams,
			Games:       games,
		})
		export.NumResults += len(exams)
	}

	return export, nil
}

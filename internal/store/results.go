package store

import (
	"time"

	"github.com/junhyuk/hanzam/internal/model"
)

// InsertExamResult stores a finalized exam result.
func (s *Store) InsertExamResult(r model.ExamResult) error {
	_, err := s.db.Exec(
		`INSERT INTO exam_results (id, user_id, grade, score, passed, correct_count, total, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.UserID, r.Grade, r.Score, r.Passed, r.CorrectCount, r.Total, r.StartedAt, r.EndedAt,
	)
	return err
}

// ListExamResults returns all exam results, newest first. A grade of 0
// means no grade filter.
func (s *Store) ListExamResults(grade float64) ([]model.ExamResult, error) {
	query := `SELECT id, user_id, grade, score, passed, correct_count, total, started_at, ended_at
		 FROM exam_results`
	var args []any
	if grade != 0 {
		query += ` WHERE grade = ?`
		args = append(args, grade)
	}
	query += ` ORDER BY started_at DESC`
	return s.queryExamResults(query, args...)
}

// ListExamResultsByUser returns one user's exam results, newest first.
func (s *Store) ListExamResultsByUser(userID int64) ([]model.ExamResult, error) {
	return s.queryExamResults(
		`SELECT id, user_id, grade, score, passed, correct_count, total, started_at, ended_at
		 FROM exam_results WHERE user_id = ? ORDER BY started_at DESC`, userID)
}

func (s *Store) queryExamResults(query string, args ...any) ([]model.ExamResult, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []model.ExamResult
	for rows.Next() {
		var r model.ExamResult
		if err := rows.Scan(&r.ID, &r.UserID, &r.Grade, &r.Score, &r.Passed, &r.CorrectCount, &r.Total, &r.StartedAt, &r.EndedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// InsertGameResult records a play of one of the practice games.
func (s *Store) InsertGameResult(r model.GameResult) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO game_results (user_id, game, grade, score, details, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.UserID, r.Game, r.Grade, r.Score, r.Details, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListGameResultsByUser returns one user's game results, newest first.
func (s *Store) ListGameResultsByUser(userID int64) ([]model.GameResult, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, game, grade, score, details, created_at
		 FROM game_results WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []model.GameResult
	for rows.Next() {
		var r model.GameResult
		if err := rows.Scan(&r.ID, &r.UserID, &r.Game, &r.Grade, &r.Score, &r.Details, &r.CreatedAt); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// AddExperience appends an experience award to a user's log.
func (s *Store) AddExperience(e model.ExperienceEntry) error {
	_, err := s.db.Exec(
		`INSERT INTO experience_log (user_id, amount, activity_type, activity_details, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		e.UserID, e.Amount, e.ActivityType, e.ActivityDetails, time.Now(),
	)
	return err
}

// TotalExperience returns a user's accumulated experience.
func (s *Store) TotalExperience(userID int64) (int, error) {
	var total int
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(amount), 0) FROM experience_log WHERE user_id = ?`, userID,
	).Scan(&total)
	return total, err
}

// Leaderboard returns the top users by accumulated experience.
func (s *Store) Leaderboard(limit int) ([]model.LeaderboardEntry, error) {
	rows, err := s.db.Query(
		`SELECT u.id, u.display_name, COALESCE(SUM(e.amount), 0) AS xp
		 FROM users u
		 JOIN experience_log e ON e.user_id = u.id
		 WHERE u.active
		 GROUP BY u.id, u.display_name
		 ORDER BY xp DESC, u.id
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []model.LeaderboardEntry
	for rows.Next() {
		var e model.LeaderboardEntry
		if err := rows.Scan(&e.UserID, &e.DisplayName, &e.Experience); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

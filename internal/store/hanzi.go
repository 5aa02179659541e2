package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/junhyuk/hanzam/internal/model"
)

// InsertHanzi stores a hanzi record. Related words are kept as a JSON
// column; they are only ever read back whole.
func (s *Store) InsertHanzi(h model.HanziRecord) (int64, error) {
	words, err := json.Marshal(h.RelatedWords)
	if err != nil {
		return 0, fmt.Errorf("marshal related words: %w", err)
	}
	res, err := s.db.Exec(
		`INSERT INTO hanzi (character, meaning, sound, grade, related_words)
		 VALUES (?, ?, ?, ?, ?)`,
		h.Character, h.Meaning, h.Sound, h.Grade, string(words),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateHanzi replaces all fields of an existing record.
func (s *Store) UpdateHanzi(h model.HanziRecord) error {
	words, err := json.Marshal(h.RelatedWords)
	if err != nil {
		return fmt.Errorf("marshal related words: %w", err)
	}
	res, err := s.db.Exec(
		`UPDATE hanzi SET character = ?, meaning = ?, sound = ?, grade = ?, related_words = ?
		 WHERE id = ?`,
		h.Character, h.Meaning, h.Sound, h.Grade, string(words), h.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteHanzi removes a record by ID.
func (s *Store) DeleteHanzi(id int64) error {
	_, err := s.db.Exec(`DELETE FROM hanzi WHERE id = ?`, id)
	return err
}

// GetHanzi returns a hanzi record by ID.
func (s *Store) GetHanzi(id int64) (model.HanziRecord, error) {
	row := s.db.QueryRow(
		`SELECT id, character, meaning, sound, grade, related_words FROM hanzi WHERE id = ?`, id,
	)
	return scanHanzi(row)
}

// ListHanzi returns all hanzi records ordered by grade then ID.
func (s *Store) ListHanzi() ([]model.HanziRecord, error) {
	return s.queryHanzi(`SELECT id, character, meaning, sound, grade, related_words FROM hanzi ORDER BY grade, id`)
}

// ListHanziByGrade returns the pool for a single grade.
func (s *Store) ListHanziByGrade(grade float64) ([]model.HanziRecord, error) {
	return s.queryHanzi(
		`SELECT id, character, meaning, sound, grade, related_words FROM hanzi WHERE grade = ? ORDER BY id`,
		grade,
	)
}

// HanziCount returns the number of hanzi records.
func (s *Store) HanziCount() (int, error) {
	var count int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM hanzi`).Scan(&count)
	return count, err
}

// ListDistinctGrades returns every grade that has at least one hanzi,
// ascending.
func (s *Store) ListDistinctGrades() ([]float64, error) {
	rows, err := s.db.Query(`SELECT DISTINCT grade FROM hanzi ORDER BY grade`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var grades []float64
	for rows.Next() {
		var g float64
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		grades = append(grades, g)
	}
	return grades, rows.Err()
}

func (s *Store) queryHanzi(query string, args ...any) ([]model.HanziRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var records []model.HanziRecord
	for rows.Next() {
		h, err := scanHanzi(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, h)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHanzi(row rowScanner) (model.HanziRecord, error) {
	var h model.HanziRecord
	var words string
	if err := row.Scan(&h.ID, &h.Character, &h.Meaning, &h.Sound, &h.Grade, &words); err != nil {
		return h, err
	}
	if err := json.Unmarshal([]byte(words), &h.RelatedWords); err != nil {
		return h, fmt.Errorf("unmarshal related words for hanzi %d: %w", h.ID, err)
	}
	return h, nil
}

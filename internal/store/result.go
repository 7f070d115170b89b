package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// resultRepo implements ResultRepo over the knowledge_check_results table.
type resultRepo struct {
	db *sql.DB
}

func (r *resultRepo) AppendResult(ctx context.Context, rec ResultRecord) (ResultRecord, error) {
	if rec.AttemptID == "" {
		rec.AttemptID = uuid.NewString()
	}
	if rec.CompletedAt.IsZero() {
		rec.CompletedAt = time.Now()
	}
	if rec.Answers == nil {
		rec.Answers = []AnswerRecord{}
	}

	answers, err := json.Marshal(rec.Answers)
	if err != nil {
		return rec, fmt.Errorf("marshal answers: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO knowledge_check_results (
			attempt_id, user_id, course_id, module_number, lesson_number,
			score, total_questions, passed, answers, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.AttemptID, rec.UserID, rec.CourseID, rec.ModuleNum, rec.LessonNum,
		rec.Score, rec.TotalQuestions, boolToInt(rec.Passed), string(answers),
		rec.CompletedAt.UnixMilli(),
	)
	if err != nil {
		return rec, fmt.Errorf("save knowledge check result: %w", err)
	}

	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return rec, nil
}

func (r *resultRepo) ListResults(ctx context.Context, f ResultFilter) ([]ResultRecord, error) {
	var (
		where []string
		args  []any
	)
	if f.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, f.UserID)
	}
	if f.CourseID != "" {
		where = append(where, "course_id = ?")
		args = append(args, f.CourseID)
	}

	q := `SELECT id, attempt_id, user_id, course_id, module_number, lesson_number,
		score, total_questions, passed, answers, completed_at
		FROM knowledge_check_results`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY completed_at DESC, id DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var out []ResultRecord
	for rows.Next() {
		var (
			rec       ResultRecord
			passed    int
			answers   string
			completed int64
		)
		if err := rows.Scan(&rec.ID, &rec.AttemptID, &rec.UserID, &rec.CourseID, &rec.ModuleNum,
			&rec.LessonNum, &rec.Score, &rec.TotalQuestions, &passed, &answers, &completed); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if err := json.Unmarshal([]byte(answers), &rec.Answers); err != nil {
			return nil, fmt.Errorf("decode answers of attempt %s: %w", rec.AttemptID, err)
		}
		rec.Passed = passed != 0
		rec.CompletedAt = time.UnixMilli(completed)
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *resultRepo) LessonAverages(ctx context.Context, courseID string) ([]LessonAverage, error) {
	q := `
		SELECT course_id, module_number, lesson_number, COUNT(*), COALESCE(SUM(passed), 0),
			AVG(score * 100.0 / total_questions)
		FROM knowledge_check_results
		WHERE total_questions > 0`
	var args []any
	if courseID != "" {
		q += " AND course_id = ?"
		args = append(args, courseID)
	}
	q += `
		GROUP BY course_id, module_number, lesson_number
		ORDER BY course_id, module_number, lesson_number`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query lesson averages: %w", err)
	}
	defer rows.Close()

	var out []LessonAverage
	for rows.Next() {
		var a LessonAverage
		if err := rows.Scan(&a.CourseID, &a.ModuleNum, &a.LessonNum, &a.Attempts, &a.Passes, &a.AvgScorePct); err != nil {
			return nil, fmt.Errorf("scan lesson average: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

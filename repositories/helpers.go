package repositories

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Dosada05/padel-circuit/models"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError // Возвращаем переданную ошибку "не найдено"
	}
	return nil
}

// pqConstraint returns the Postgres error code and constraint name of err, if any.
func pqConstraint(err error) (pq.ErrorCode, string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code, pqErr.Constraint, true
	}
	return "", "", false
}

func isUniqueViolation(err error, constraint string) bool {
	code, name, ok := pqConstraint(err)
	return ok && code == pqUniqueViolation && (constraint == "" || name == constraint)
}

// setColumns is the six nullable set1_p1..set3_p2 columns of a match row.
type setColumns [2 * models.MaxSets]sql.NullInt64

func (c *setColumns) dest() []interface{} {
	d := make([]interface{}, len(c))
	for i := range c {
		d[i] = &c[i]
	}
	return d
}

// sets converts the columns back to set scores, dropping trailing unplayed sets.
func (c *setColumns) sets() []models.SetScore {
	out := make([]models.SetScore, models.MaxSets)
	last := -1
	for i := 0; i < models.MaxSets; i++ {
		p1, p2 := c[2*i], c[2*i+1]
		if p1.Valid {
			v := int(p1.Int64)
			out[i].P1 = &v
		}
		if p2.Valid {
			v := int(p2.Int64)
			out[i].P2 = &v
		}
		if !out[i].IsEmpty() {
			last = i
		}
	}
	return out[:last+1]
}

// setArgs flattens set scores into the six column values.
func setArgs(sets []models.SetScore) []interface{} {
	args := make([]interface{}, 2*models.MaxSets)
	for i := 0; i < models.MaxSets; i++ {
		if i >= len(sets) {
			continue
		}
		if sets[i].P1 != nil {
			args[2*i] = *sets[i].P1
		}
		if sets[i].P2 != nil {
			args[2*i+1] = *sets[i].P2
		}
	}
	return args
}

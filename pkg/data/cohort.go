package data

import (
	"database/sql"

	"github.com/pkg/errors"

	"github.com/clinsight/reop/pkg/schema"
)

// Columns are listed in registry field order, the same external
// contract the classifier artifact carries.
const selectCohortSQL = `SELECT
		sex,
		asa_score,
		tumor_location,
		benign_malignant,
		nicu_admission,
		surgery_duration,
		diabetes,
		chf,
		functional_dependencies,
		mfi5,
		tumor_type
	FROM cohort
	ORDER BY id
`

const countCohortSQL = `SELECT COUNT(*) FROM cohort`

// GetCohort returns every cohort row as a feature vector in registry
// field order.
func GetCohort(db *sql.DB) ([][]float64, error) {
	if db == nil {
		return nil, errors.New("database not initialized")
	}

	rows, err := db.Query(selectCohortSQL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query cohort")
	}
	defer rows.Close()

	out := make([][]float64, 0)
	for rows.Next() {
		vals := make([]int, schema.Count)
		ptrs := make([]any, schema.Count)
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.Wrap(err, "failed to scan cohort row")
		}
		row := make([]float64, schema.Count)
		for i, v := range vals {
			row[i] = float64(v)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to read cohort rows")
	}
	return out, nil
}

// GetCohortSize returns the number of cohort rows.
func GetCohortSize(db *sql.DB) (int, error) {
	if db == nil {
		return 0, errors.New("database not initialized")
	}
	var n int
	if err := db.QueryRow(countCohortSQL).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "failed to count cohort")
	}
	return n, nil
}

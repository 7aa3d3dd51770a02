package booking

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// visitStorePG backs visits with the visite table. Besides the uniform
// storage contract it offers the indexed specialist queries the repository
// detects at construction time, so the relational backend answers them with
// a WHERE clause instead of a full scan.
type visitStorePG struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewVisitStorePG returns a visit store backed by the visite table.
func NewVisitStorePG(pool *pgxpool.Pool, log zerolog.Logger) *visitStorePG {
	return &visitStorePG{pool: pool, log: log.With().Str("store", "visit-pg").Logger()}
}

const visitCols = `patient_key, visit_date, visit_time, specialist_id, kind, reason, status`

func scanVisit(row pgx.Row) (Visit, error) {
	var v Visit
	err := row.Scan(&v.PatientKey, &v.Date, &v.Time, &v.SpecialistID, &v.Kind, &v.Reason, &v.Status)
	return v, err
}

func (s *visitStorePG) Save(ctx context.Context, rec Visit) bool {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO visite (patient_key, visit_date, visit_time, specialist_id, kind, reason, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		rec.PatientKey, rec.Date, rec.Time, rec.SpecialistID, rec.Kind, rec.Reason, rec.Status)
	if err != nil {
		s.log.Debug().Err(err).Str("key", rec.NaturalKey()).Msg("insert visit")
		return false
	}
	return true
}

func (s *visitStorePG) Find(ctx context.Context, tmpl Visit) (Visit, bool) {
	v, err := scanVisit(s.pool.QueryRow(ctx, `
		SELECT `+visitCols+` FROM visite
		WHERE patient_key = $1 AND visit_date = $2 AND visit_time = $3`,
		tmpl.PatientKey, tmpl.Date, tmpl.Time))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.log.Error().Err(err).Str("key", tmpl.NaturalKey()).Msg("find visit")
		}
		return Visit{}, false
	}
	return v, true
}

func (s *visitStorePG) Update(ctx context.Context, rec Visit) bool {
	tag, err := s.pool.Exec(ctx, `
		UPDATE visite SET specialist_id=$4, kind=$5, reason=$6, status=$7
		WHERE patient_key = $1 AND visit_date = $2 AND visit_time = $3`,
		rec.PatientKey, rec.Date, rec.Time, rec.SpecialistID, rec.Kind, rec.Reason, rec.Status)
	if err != nil {
		s.log.Error().Err(err).Str("key", rec.NaturalKey()).Msg("update visit")
		return false
	}
	return tag.RowsAffected() > 0
}

func (s *visitStorePG) Delete(ctx context.Context, rec Visit) bool {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM visite
		WHERE patient_key = $1 AND visit_date = $2 AND visit_time = $3`,
		rec.PatientKey, rec.Date, rec.Time)
	if err != nil {
		s.log.Error().Err(err).Str("key", rec.NaturalKey()).Msg("delete visit")
		return false
	}
	return tag.RowsAffected() > 0
}

func (s *visitStorePG) GetAll(ctx context.Context) []Visit {
	return s.queryVisits(ctx, `SELECT `+visitCols+` FROM visite`)
}

// FindBySpecialist is the indexed path for the repository facade.
func (s *visitStorePG) FindBySpecialist(ctx context.Context, specialistID int64) []Visit {
	return s.queryVisits(ctx,
		`SELECT `+visitCols+` FROM visite WHERE specialist_id = $1`, specialistID)
}

// FindByDateAndSpecialist is the indexed path for the repository facade.
func (s *visitStorePG) FindByDateAndSpecialist(ctx context.Context, date time.Time, specialistID int64) []Visit {
	return s.queryVisits(ctx,
		`SELECT `+visitCols+` FROM visite WHERE visit_date = $1 AND specialist_id = $2`,
		truncateToDay(date), specialistID)
}

func (s *visitStorePG) queryVisits(ctx context.Context, sql string, args ...interface{}) []Visit {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		s.log.Error().Err(err).Msg("query visits")
		return nil
	}
	defer rows.Close()
	var out []Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			s.log.Error().Err(err).Msg("scan visit row")
			return nil
		}
		out = append(out, v)
	}
	return out
}

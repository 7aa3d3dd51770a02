package identity

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/clinicportal/clinicportal/internal/platform/storage"
)

// Relational stores for the pazienti and specialista tables. Per the storage
// contract, SQL faults are logged and reported as a plain false/miss; a
// constraint violation on insert is indistinguishable from any other failed
// save, which is all the callers need.

type patientStorePG struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewPatientStorePG returns a patient store backed by the pazienti table.
func NewPatientStorePG(pool *pgxpool.Pool, log zerolog.Logger) storage.CredentialStore[Patient] {
	return &patientStorePG{pool: pool, log: log.With().Str("store", "patient-pg").Logger()}
}

const patientCols = `health_card, first_name, last_name, birth_date, phone, email, conditions, password`

func scanPatient(row pgx.Row) (Patient, error) {
	var p Patient
	err := row.Scan(&p.HealthCard, &p.FirstName, &p.LastName, &p.BirthDate,
		&p.Phone, &p.Email, &p.Conditions, &p.Password)
	return p, err
}

func (s *patientStorePG) Save(ctx context.Context, rec Patient) bool {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pazienti (health_card, first_name, last_name, birth_date, phone, email, conditions, password)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		rec.HealthCard, rec.FirstName, rec.LastName, rec.BirthDate,
		rec.Phone, rec.Email, rec.Conditions, rec.Password)
	if err != nil {
		s.log.Debug().Err(err).Str("key", rec.HealthCard).Msg("insert patient")
		return false
	}
	return true
}

func (s *patientStorePG) Find(ctx context.Context, tmpl Patient) (Patient, bool) {
	p, err := scanPatient(s.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM pazienti WHERE health_card = $1`, tmpl.HealthCard))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.log.Error().Err(err).Str("key", tmpl.HealthCard).Msg("find patient")
		}
		return Patient{}, false
	}
	return p, true
}

func (s *patientStorePG) FindByEmail(ctx context.Context, email string) (Patient, bool) {
	if email == "" {
		return Patient{}, false
	}
	p, err := scanPatient(s.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM pazienti WHERE LOWER(email) = LOWER($1)`, email))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.log.Error().Err(err).Msg("find patient by email")
		}
		return Patient{}, false
	}
	return p, true
}

func (s *patientStorePG) Update(ctx context.Context, rec Patient) bool {
	tag, err := s.pool.Exec(ctx, `
		UPDATE pazienti SET first_name=$2, last_name=$3, birth_date=$4, phone=$5,
			email=$6, conditions=$7, password=$8
		WHERE health_card = $1`,
		rec.HealthCard, rec.FirstName, rec.LastName, rec.BirthDate,
		rec.Phone, rec.Email, rec.Conditions, rec.Password)
	if err != nil {
		s.log.Error().Err(err).Str("key", rec.HealthCard).Msg("update patient")
		return false
	}
	return tag.RowsAffected() > 0
}

func (s *patientStorePG) Delete(ctx context.Context, rec Patient) bool {
	tag, err := s.pool.Exec(ctx, `DELETE FROM pazienti WHERE health_card = $1`, rec.HealthCard)
	if err != nil {
		s.log.Error().Err(err).Str("key", rec.HealthCard).Msg("delete patient")
		return false
	}
	return tag.RowsAffected() > 0
}

func (s *patientStorePG) GetAll(ctx context.Context) []Patient {
	rows, err := s.pool.Query(ctx, `SELECT `+patientCols+` FROM pazienti`)
	if err != nil {
		s.log.Error().Err(err).Msg("list patients")
		return nil
	}
	defer rows.Close()
	var out []Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			s.log.Error().Err(err).Msg("scan patient row")
			return nil
		}
		out = append(out, p)
	}
	return out
}

type specialistStorePG struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewSpecialistStorePG returns a specialist store backed by the specialista
// table. The table's sequence assigns the surrogate id.
func NewSpecialistStorePG(pool *pgxpool.Pool, log zerolog.Logger) storage.CredentialStore[Specialist] {
	return &specialistStorePG{pool: pool, log: log.With().Str("store", "specialist-pg").Logger()}
}

const specialistCols = `id, first_name, last_name, birth_date, phone, email, specialization, password`

func scanSpecialist(row pgx.Row) (Specialist, error) {
	var sp Specialist
	err := row.Scan(&sp.ID, &sp.FirstName, &sp.LastName, &sp.BirthDate,
		&sp.Phone, &sp.Email, &sp.Specialization, &sp.Password)
	return sp, err
}

func (s *specialistStorePG) Save(ctx context.Context, rec Specialist) bool {
	var id int64
	err := s.pool.QueryRow(ctx, `
		INSERT INTO specialista (first_name, last_name, birth_date, phone, email, specialization, password)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id`,
		rec.FirstName, rec.LastName, rec.BirthDate, rec.Phone,
		rec.Email, rec.Specialization, rec.Password).Scan(&id)
	if err != nil {
		s.log.Debug().Err(err).Str("key", rec.NaturalKey()).Msg("insert specialist")
		return false
	}
	return true
}

func (s *specialistStorePG) Find(ctx context.Context, tmpl Specialist) (Specialist, bool) {
	sp, err := scanSpecialist(s.pool.QueryRow(ctx, `
		SELECT `+specialistCols+` FROM specialista
		WHERE first_name = $1 AND last_name = $2 AND email = $3 AND specialization = $4`,
		tmpl.FirstName, tmpl.LastName, tmpl.Email, tmpl.Specialization))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.log.Error().Err(err).Str("key", tmpl.NaturalKey()).Msg("find specialist")
		}
		return Specialist{}, false
	}
	return sp, true
}

func (s *specialistStorePG) FindByEmail(ctx context.Context, email string) (Specialist, bool) {
	if email == "" {
		return Specialist{}, false
	}
	sp, err := scanSpecialist(s.pool.QueryRow(ctx,
		`SELECT `+specialistCols+` FROM specialista WHERE LOWER(email) = LOWER($1)`, email))
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.log.Error().Err(err).Msg("find specialist by email")
		}
		return Specialist{}, false
	}
	return sp, true
}

func (s *specialistStorePG) Update(ctx context.Context, rec Specialist) bool {
	tag, err := s.pool.Exec(ctx, `
		UPDATE specialista SET birth_date=$5, phone=$6, password=$7
		WHERE first_name = $1 AND last_name = $2 AND email = $3 AND specialization = $4`,
		rec.FirstName, rec.LastName, rec.Email, rec.Specialization,
		rec.BirthDate, rec.Phone, rec.Password)
	if err != nil {
		s.log.Error().Err(err).Str("key", rec.NaturalKey()).Msg("update specialist")
		return false
	}
	return tag.RowsAffected() > 0
}

func (s *specialistStorePG) Delete(ctx context.Context, rec Specialist) bool {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM specialista
		WHERE first_name = $1 AND last_name = $2 AND email = $3 AND specialization = $4`,
		rec.FirstName, rec.LastName, rec.Email, rec.Specialization)
	if err != nil {
		s.log.Error().Err(err).Str("key", rec.NaturalKey()).Msg("delete specialist")
		return false
	}
	return tag.RowsAffected() > 0
}

func (s *specialistStorePG) GetAll(ctx context.Context) []Specialist {
	rows, err := s.pool.Query(ctx, `SELECT `+specialistCols+` FROM specialista`)
	if err != nil {
		s.log.Error().Err(err).Msg("list specialists")
		return nil
	}
	defer rows.Close()
	var out []Specialist
	for rows.Next() {
		sp, err := scanSpecialist(rows)
		if err != nil {
			s.log.Error().Err(err).Msg("scan specialist row")
			return nil
		}
		out = append(out, sp)
	}
	return out
}

package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"noshow-dashboard/models"
	"noshow-dashboard/utils"
)

// PostgresStore keeps a copy of the appointment table in PostgreSQL.
// The import command writes it; the dashboard only ever reads it.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection to PostgreSQL, retrying the ping,
// runs schema migrations and returns a ready-to-use store.
func NewPostgresStore(ctx context.Context, dsn string, retry *utils.RetryConfig) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if err := retry.Do(ctx, "postgres ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	ps := &PostgresStore{db: db}
	if err := ps.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return ps, nil
}

func (ps *PostgresStore) migrate(ctx context.Context) error {
	_, err := ps.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS appointments (
			row_no          BIGINT       PRIMARY KEY,
			appointment_id  BIGINT       NOT NULL DEFAULT 0,
			patient_id      TEXT         NOT NULL DEFAULT '',
			gender          VARCHAR(1)   NOT NULL,
			scheduled_at    TIMESTAMPTZ  NOT NULL,
			appointment_at  TIMESTAMPTZ  NOT NULL,
			age             INTEGER      NOT NULL,
			neighbourhood   TEXT         NOT NULL DEFAULT '',
			scholarship     BOOLEAN      NOT NULL DEFAULT FALSE,
			hipertension    BOOLEAN      NOT NULL DEFAULT FALSE,
			diabetes        BOOLEAN      NOT NULL DEFAULT FALSE,
			alcoholism      BOOLEAN      NOT NULL DEFAULT FALSE,
			handcap         SMALLINT     NOT NULL DEFAULT 0,
			sms_received    BOOLEAN      NOT NULL DEFAULT FALSE,
			no_show         BOOLEAN      NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_appointments_gender        ON appointments(gender);
		CREATE INDEX IF NOT EXISTS idx_appointments_neighbourhood ON appointments(neighbourhood);
		CREATE INDEX IF NOT EXISTS idx_appointments_age           ON appointments(age);
	`)
	return err
}

// Write replaces the table contents with the given dataset inside one
// transaction, in batches. Each row is keyed by its position in data, so
// FetchAll returns the rows in the same order. It fails if any row was
// not stored.
func (ps *PostgresStore) Write(ctx context.Context, data models.Dataset) error {
	if len(data) == 0 {
		return nil
	}

	tx, err := ps.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM appointments"); err != nil {
		return fmt.Errorf("postgres: clear: %w", err)
	}

	const batchSize = 500
	for i := 0; i < len(data); i += batchSize {
		end := i + batchSize
		if end > len(data) {
			end = len(data)
		}
		n, err := insertBatch(ctx, tx, i, data[i:end])
		if err != nil {
			return fmt.Errorf("postgres: insert rows %d-%d: %w", i, end, err)
		}
		if n != int64(end-i) {
			return fmt.Errorf("postgres: insert rows %d-%d: stored %d of %d", i, end, n, end-i)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

const appointmentColumns = 15

// insertBatch stores batch, whose first row sits at position offset of the
// dataset, and returns the number of rows inserted.
func insertBatch(ctx context.Context, tx *sql.Tx, offset int, batch models.Dataset) (int64, error) {
	query, args := insertStatement(offset, batch)
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func insertStatement(offset int, batch models.Dataset) (string, []interface{}) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*appointmentColumns)

	for idx := range batch {
		a := &batch[idx]
		base := idx * appointmentColumns
		ph := make([]string, appointmentColumns)
		for j := range ph {
			ph[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs,
			offset+idx, a.AppointmentID, a.PatientID, a.Gender, a.ScheduledAt, a.AppointmentAt,
			a.Age, a.Neighborhood, a.Scholarship, a.Hypertension, a.Diabetes,
			a.Alcoholism, a.Handicap, a.SMSReceived, a.NoShow)
	}

	query := fmt.Sprintf(`
		INSERT INTO appointments (row_no, appointment_id, patient_id, gender, scheduled_at, appointment_at,
			age, neighbourhood, scholarship, hipertension, diabetes,
			alcoholism, handcap, sms_received, no_show)
		VALUES %s
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

// Close closes the connection pool.
func (ps *PostgresStore) Close() error {
	return ps.db.Close()
}

// FetchAll reads every appointment, in source order, and derives the
// computed columns. Failures are reported as *models.LoadError.
func (ps *PostgresStore) FetchAll(ctx context.Context) (models.Dataset, error) {
	const source = "postgres:appointments"
	rows, err := ps.db.QueryContext(ctx, `
		SELECT appointment_id, patient_id, gender, scheduled_at, appointment_at,
			age, neighbourhood, scholarship, hipertension, diabetes,
			alcoholism, handcap, sms_received, no_show
		FROM appointments
		ORDER BY row_no
	`)
	if err != nil {
		return nil, &models.LoadError{Source: source, Err: err}
	}
	defer rows.Close()

	data := make(models.Dataset, 0, 1024)
	for rows.Next() {
		var a models.Appointment
		var scheduled, appointment time.Time
		if err := rows.Scan(
			&a.AppointmentID, &a.PatientID, &a.Gender, &scheduled, &appointment,
			&a.Age, &a.Neighborhood, &a.Scholarship, &a.Hypertension, &a.Diabetes,
			&a.Alcoholism, &a.Handicap, &a.SMSReceived, &a.NoShow,
		); err != nil {
			return nil, &models.LoadError{Source: source, Row: len(data) + 1, Err: err}
		}
		a.ScheduledAt = scheduled.UTC()
		a.AppointmentAt = appointment.UTC()
		a.Derive()
		data = append(data, a)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.LoadError{Source: source, Err: err}
	}
	return data, nil
}

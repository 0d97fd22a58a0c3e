package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"award_cpp/internal/domain"
)

const dateLayout = "2006-01-02"

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// SaveReport stores the run and its quotes in one transaction and returns the run id.
func (r *Repo) SaveReport(ctx context.Context, rep domain.Report) (int64, error) {
	m := rep.SearchMetadata
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, insertRunSQL,
		m.Origin, m.Destination, m.Date, m.Passengers, m.CabinClass, len(rep.Flights))
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if len(rep.Flights) > 0 {
		values := make([]string, 0, len(rep.Flights))
		args := make([]any, 0, len(rep.Flights)*9) // 9 params per row
		for i, q := range rep.Flights {
			values = append(values, quoteRowPlaceholders)
			args = append(args,
				id, i,
				q.FlightNumber, q.DepartureTime, q.ArrivalTime,
				q.PointsRequired, q.CashPriceUSD, q.TaxesFeesUSD, q.CPP,
			)
		}
		if _, err := tx.ExecContext(ctx, insertQuotesPrefix+strings.Join(values, ","), args...); err != nil {
			return 0, fmt.Errorf("insert quotes: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *Repo) LogMiss(ctx context.Context, req domain.SearchRequest, kind, source, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, req.Origin, req.Destination, req.Date, kind, source, reason)
	return err
}

func (r *Repo) GetReport(ctx context.Context, id int64) (domain.Report, error) {
	var m domain.SearchRequest
	var date time.Time
	err := r.db.QueryRowContext(ctx, getRunSQL, id).
		Scan(&m.Origin, &m.Destination, &date, &m.Passengers, &m.CabinClass)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Report{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Report{}, err
	}
	m.Date = date.Format(dateLayout)

	rows, err := r.db.QueryContext(ctx, listQuotesSQL, id)
	if err != nil {
		return domain.Report{}, err
	}
	defer rows.Close()

	var flights []domain.FlightQuote
	for rows.Next() {
		var q domain.FlightQuote
		if err := rows.Scan(
			&q.FlightNumber, &q.DepartureTime, &q.ArrivalTime,
			&q.PointsRequired, &q.CashPriceUSD, &q.TaxesFeesUSD, &q.CPP,
		); err != nil {
			return domain.Report{}, err
		}
		flights = append(flights, q)
	}
	if err := rows.Err(); err != nil {
		return domain.Report{}, err
	}
	return domain.NewReport(m, flights), nil
}

func (r *Repo) ListRuns(ctx context.Context, limit int) ([]domain.RunView, error) {
	rows, err := r.db.QueryContext(ctx, listRunsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.RunView{}
	for rows.Next() {
		var v domain.RunView
		var date time.Time
		if err := rows.Scan(
			&v.ID,
			&v.Search.Origin, &v.Search.Destination, &date,
			&v.Search.Passengers, &v.Search.CabinClass,
			&v.TotalResults, &v.CreatedAt,
		); err != nil {
			return nil, err
		}
		v.Search.Date = date.Format(dateLayout)
		out = append(out, v)
	}
	return out, rows.Err()
}

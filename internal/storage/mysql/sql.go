package mysql

const insertRunSQL = `
INSERT INTO search_runs
  (origin, destination, travel_date, passengers, cabin_class, total_results)
VALUES
  (?, ?, ?, ?, ?, ?)
`

// One "(?,...)" group per quote is appended by SaveReport.
const insertQuotesPrefix = `
INSERT INTO flight_quotes
  (run_id, position, flight_number, departure_time, arrival_time,
   points_required, cash_price_usd, taxes_fees_usd, cpp)
VALUES `

const quoteRowPlaceholders = "(?,?,?,?,?,?,?,?,?)"

const insertMissSQL = `
INSERT INTO source_misses
  (origin, destination, travel_date, kind, source, reason)
VALUES
  (?, ?, ?, ?, ?, ?)
`

const getRunSQL = `
SELECT origin, destination, travel_date, passengers, cabin_class
FROM search_runs
WHERE id = ?
`

const listQuotesSQL = `
SELECT flight_number, departure_time, arrival_time,
       points_required, cash_price_usd, taxes_fees_usd, cpp
FROM flight_quotes
WHERE run_id = ?
ORDER BY position
`

const listRunsSQL = `
SELECT id, origin, destination, travel_date, passengers, cabin_class, total_results, created_at
FROM search_runs
ORDER BY id DESC
LIMIT ?
`

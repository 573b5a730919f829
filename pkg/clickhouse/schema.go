package clickhouse

import "fmt"

// Schema returns idempotent DDL for the bars and predictions tables.
func Schema(database, barsTable, predictionsTable string) []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
	symbol LowCardinality(String),
	date   Date,
	open   Float64,
	high   Float64,
	low    Float64,
	close  Float64,
	volume Float64
) ENGINE = ReplacingMergeTree
ORDER BY (symbol, date)`, database, barsTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s.%s (
	run_id    UUID,
	symbol    LowCardinality(String),
	date      Date,
	actual    Float64,
	predicted Float64,
	created_at DateTime DEFAULT now()
) ENGINE = MergeTree
ORDER BY (symbol, date, run_id)`, database, predictionsTable),
	}
}

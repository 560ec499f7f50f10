package pgstore

import "context"

func (s *Store) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS vrs_objects (
			id TEXT PRIMARY KEY,
			type TEXT NOT NULL,
			payload JSONB NOT NULL
		)`,
		// int8range backs the overlap search with Postgres's native range
		// type and && operator instead of a hand-rolled interval index.
		`CREATE TABLE IF NOT EXISTS allele_locations (
			allele_id TEXT PRIMARY KEY REFERENCES vrs_objects(id),
			accession TEXT NOT NULL,
			span INT8RANGE NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS allele_locations_accession_idx ON allele_locations (accession)`,
		`CREATE INDEX IF NOT EXISTS allele_locations_span_idx ON allele_locations USING GIST (span)`,
		`CREATE TABLE IF NOT EXISTS mappings (
			source_id TEXT NOT NULL,
			dest_id TEXT NOT NULL,
			type TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS mappings_source_id_idx ON mappings (source_id)`,
		`CREATE TABLE IF NOT EXISTS annotations (
			object_id TEXT NOT NULL,
			type TEXT NOT NULL,
			value JSONB NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS annotations_object_id_idx ON annotations (object_id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

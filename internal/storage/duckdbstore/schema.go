package duckdbstore

func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS vrs_objects (
			id VARCHAR PRIMARY KEY,
			type VARCHAR,
			payload VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS allele_locations (
			allele_id VARCHAR PRIMARY KEY,
			accession VARCHAR,
			start_pos BIGINT,
			end_pos BIGINT
		)`,
		`CREATE TABLE IF NOT EXISTS mappings (
			source_id VARCHAR,
			dest_id VARCHAR,
			type VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS annotations (
			object_id VARCHAR,
			type VARCHAR,
			value VARCHAR
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

package pgstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ga4gh/anyvar/internal/anyvarerr"
	"github.com/ga4gh/anyvar/internal/storage"
	"github.com/ga4gh/anyvar/internal/vrs"
)

func (s *Store) PutVRS(ctx context.Context, obj vrs.Object) error {
	id, typ, payload, err := storage.EncodeObject(obj)
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO vrs_objects (id, type, payload) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO NOTHING`, id, typ, payload); err != nil {
		return fmt.Errorf("insert vrs object: %w", err)
	}

	if a, ok := obj.(*vrs.Allele); ok && a.Location != nil && a.Location.SequenceReference != nil {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO allele_locations (allele_id, accession, span) VALUES ($1, $2, int8range($3, $4))
			 ON CONFLICT (allele_id) DO NOTHING`,
			a.VRSID(), a.Location.SequenceReference.RefgetAccession, a.Location.Start, a.Location.End); err != nil {
			return fmt.Errorf("index allele location: %w", err)
		}
	}
	return nil
}

func (s *Store) GetVRS(ctx context.Context, id string) (vrs.Object, error) {
	var typ string
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT type, payload FROM vrs_objects WHERE id = $1`, id).Scan(&typ, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, anyvarerr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query vrs object: %w", err)
	}
	return storage.DecodeObject(typ, payload)
}

func (s *Store) PutMapping(ctx context.Context, m vrs.Mapping) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mappings (source_id, dest_id, type) VALUES ($1, $2, $3)`,
		m.SourceID, m.DestID, string(m.Type))
	if err != nil {
		return fmt.Errorf("insert mapping: %w", err)
	}
	return nil
}

func (s *Store) GetMappings(ctx context.Context, objectID string, mappingType string) ([]vrs.Mapping, error) {
	query := `SELECT source_id, dest_id, type FROM mappings WHERE source_id = $1`
	args := []any{objectID}
	if mappingType != "" {
		query += ` AND type = $2`
		args = append(args, mappingType)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query mappings: %w", err)
	}
	defer rows.Close()

	var out []vrs.Mapping
	for rows.Next() {
		var m vrs.Mapping
		var typ string
		if err := rows.Scan(&m.SourceID, &m.DestID, &typ); err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		m.Type = vrs.MappingType(typ)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *Store) PutAnnotation(ctx context.Context, a vrs.Annotation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO annotations (object_id, type, value) VALUES ($1, $2, $3)`,
		a.ObjectID, a.Type, []byte(a.Value))
	if err != nil {
		return fmt.Errorf("insert annotation: %w", err)
	}
	return nil
}

func (s *Store) GetAnnotations(ctx context.Context, objectID string, annotationType string) ([]vrs.Annotation, error) {
	query := `SELECT object_id, type, value FROM annotations WHERE object_id = $1`
	args := []any{objectID}
	if annotationType != "" {
		query += ` AND type = $2`
		args = append(args, annotationType)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query annotations: %w", err)
	}
	defer rows.Close()

	var out []vrs.Annotation
	for rows.Next() {
		var a vrs.Annotation
		var value []byte
		if err := rows.Scan(&a.ObjectID, &a.Type, &value); err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		a.Value = value
		out = append(out, a)
	}
	return out, rows.Err()
}

// Search relies on Postgres's native range overlap operator (&&) against
// the GiST-indexed span column rather than an application-level interval
// tree.
func (s *Store) Search(ctx context.Context, accession string, start, end int64) ([]*vrs.Allele, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.type, o.payload
		FROM allele_locations loc
		JOIN vrs_objects o ON o.id = loc.allele_id
		WHERE loc.accession = $1 AND loc.span && int8range($2, $3)
		ORDER BY loc.allele_id`, accession, start, end)
	if err != nil {
		return nil, fmt.Errorf("search alleles: %w", err)
	}
	defer rows.Close()

	var out []*vrs.Allele
	for rows.Next() {
		var typ string
		var payload []byte
		if err := rows.Scan(&typ, &payload); err != nil {
			return nil, fmt.Errorf("scan allele: %w", err)
		}
		obj, err := storage.DecodeObject(typ, payload)
		if err != nil {
			return nil, err
		}
		a, ok := obj.(*vrs.Allele)
		if !ok {
			continue
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

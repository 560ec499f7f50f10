package duckdbstore

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
		`INSERT INTO vrs_objects (id, type, payload) VALUES (?, ?, ?)
		 ON CONFLICT (id) DO NOTHING`, id, typ, string(payload)); err != nil {
		return fmt.Errorf("insert vrs object: %w", err)
	}

	if a, ok := obj.(*vrs.Allele); ok && a.Location != nil && a.Location.SequenceReference != nil {
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO allele_locations (allele_id, accession, start_pos, end_pos) VALUES (?, ?, ?, ?)
			 ON CONFLICT (allele_id) DO NOTHING`,
			a.VRSID(), a.Location.SequenceReference.RefgetAccession, a.Location.Start, a.Location.End); err != nil {
			return fmt.Errorf("index allele location: %w", err)
		}
	}
	return nil
}

func (s *Store) GetVRS(ctx context.Context, id string) (vrs.Object, error) {
	var typ, payload string
	err := s.db.QueryRowContext(ctx, `SELECT type, payload FROM vrs_objects WHERE id = ?`, id).Scan(&typ, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, anyvarerr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query vrs object: %w", err)
	}
	return storage.DecodeObject(typ, []byte(payload))
}

func (s *Store) PutMapping(ctx context.Context, m vrs.Mapping) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mappings (source_id, dest_id, type) VALUES (?, ?, ?)`,
		m.SourceID, m.DestID, string(m.Type))
	if err != nil {
		return fmt.Errorf("insert mapping: %w", err)
	}
	return nil
}

func (s *Store) GetMappings(ctx context.Context, objectID string, mappingType string) ([]vrs.Mapping, error) {
	query := `SELECT source_id, dest_id, type FROM mappings WHERE source_id = ?`
	args := []any{objectID}
	if mappingType != "" {
		query += ` AND type = ?`
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
		`INSERT INTO annotations (object_id, type, value) VALUES (?, ?, ?)`,
		a.ObjectID, a.Type, string(a.Value))
	if err != nil {
		return fmt.Errorf("insert annotation: %w", err)
	}
	return nil
}

func (s *Store) GetAnnotations(ctx context.Context, objectID string, annotationType string) ([]vrs.Annotation, error) {
	query := `SELECT object_id, type, value FROM annotations WHERE object_id = ?`
	args := []any{objectID}
	if annotationType != "" {
		query += ` AND type = ?`
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
		var value string
		if err := rows.Scan(&a.ObjectID, &a.Type, &value); err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		a.Value = []byte(value)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) Search(ctx context.Context, accession string, start, end int64) ([]*vrs.Allele, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.type, o.payload
		FROM allele_locations loc
		JOIN vrs_objects o ON o.id = loc.allele_id
		WHERE loc.accession = ? AND loc.start_pos < ? AND loc.end_pos > ?
		ORDER BY loc.allele_id`, accession, end, start)
	if err != nil {
		return nil, fmt.Errorf("search alleles: %w", err)
	}
	defer rows.Close()

	var out []*vrs.Allele
	for rows.Next() {
		var typ, payload string
		if err := rows.Scan(&typ, &payload); err != nil {
			return nil, fmt.Errorf("scan allele: %w", err)
		}
		obj, err := storage.DecodeObject(typ, []byte(payload))
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

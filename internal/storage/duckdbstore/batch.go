package duckdbstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"strings"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/ga4gh/anyvar/internal/storage"
	"github.com/ga4gh/anyvar/internal/storage/batch"
	"github.com/ga4gh/anyvar/internal/vrs"
)

// BatchWriter returns the batch.Writer the storage.batch.Manager drains
// batches through. It uses the insert_notin strategy: existing ids are
// queried once per batch and excluded, later repeats of an id within the
// same batch are dropped, then the remainder is appended
// with go-duckdb's Appender, the bulk-load path the teacher's
// WriteVariantResults uses instead of one INSERT per row.
func (s *Store) BatchWriter() batch.Writer {
	return &duckdbBatchWriter{store: s}
}

type duckdbBatchWriter struct {
	store *Store
}

func (w *duckdbBatchWriter) ApplyBatch(ctx context.Context, objs []vrs.Object) error {
	if len(objs) == 0 {
		return nil
	}

	existing, err := w.existingIDs(ctx, objs)
	if err != nil {
		return fmt.Errorf("query existing ids: %w", err)
	}

	fresh := make([]vrs.Object, 0, len(objs))
	seen := make(map[string]bool, len(objs))
	for _, obj := range objs {
		id := obj.VRSID()
		if !existing[id] && !seen[id] {
			seen[id] = true
			fresh = append(fresh, obj)
		}
	}
	if len(fresh) == 0 {
		return nil
	}

	conn, err := w.store.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	if err := appendObjects(conn, fresh); err != nil {
		return err
	}
	return appendAlleleLocations(conn, fresh)
}

func (w *duckdbBatchWriter) existingIDs(ctx context.Context, objs []vrs.Object) (map[string]bool, error) {
	ids := make([]string, len(objs))
	placeholders := make([]string, len(objs))
	for i, obj := range objs {
		ids[i] = obj.VRSID()
		placeholders[i] = "?"
	}

	query := fmt.Sprintf(`SELECT id FROM vrs_objects WHERE id IN (%s)`, strings.Join(placeholders, ","))
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := w.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}

func appendObjects(conn *sql.Conn, objs []vrs.Object) error {
	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "vrs_objects")
		return err
	}); err != nil {
		return fmt.Errorf("create vrs_objects appender: %w", err)
	}
	defer appender.Close()

	for _, obj := range objs {
		id, typ, payload, err := storage.EncodeObject(obj)
		if err != nil {
			return err
		}
		if err := appender.AppendRow(id, typ, string(payload)); err != nil {
			return fmt.Errorf("append vrs object: %w", err)
		}
	}
	return appender.Flush()
}

func appendAlleleLocations(conn *sql.Conn, objs []vrs.Object) error {
	alleles := make([]*vrs.Allele, 0, len(objs))
	for _, obj := range objs {
		if a, ok := obj.(*vrs.Allele); ok && a.Location != nil && a.Location.SequenceReference != nil {
			alleles = append(alleles, a)
		}
	}
	if len(alleles) == 0 {
		return nil
	}

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "allele_locations")
		return err
	}); err != nil {
		return fmt.Errorf("create allele_locations appender: %w", err)
	}
	defer appender.Close()

	for _, a := range alleles {
		if err := appender.AppendRow(a.VRSID(), a.Location.SequenceReference.RefgetAccession, a.Location.Start, a.Location.End); err != nil {
			return fmt.Errorf("append allele location: %w", err)
		}
	}
	return appender.Flush()
}

package pgstore

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/ga4gh/anyvar/internal/storage"
	"github.com/ga4gh/anyvar/internal/storage/batch"
	"github.com/ga4gh/anyvar/internal/vrs"
)

// BatchWriter returns the batch.Writer the storage.batch.Manager drains
// batches through. It copies rows into a transaction-scoped (ON COMMIT
// DROP) temp table with
// pgx's binary CopyFrom, then merges into the real tables with
// INSERT ... SELECT ... ON CONFLICT DO NOTHING, since CopyFrom itself
// has no conflict-handling mode.
func (s *Store) BatchWriter() batch.Writer {
	return &pgBatchWriter{store: s}
}

type pgBatchWriter struct {
	store *Store
}

func (w *pgBatchWriter) ApplyBatch(ctx context.Context, objs []vrs.Object) error {
	if len(objs) == 0 {
		return nil
	}

	conn, err := w.store.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var pgxConn *pgx.Conn
	if err := conn.Raw(func(driverConn any) error {
		pgxConn = driverConn.(*stdlib.Conn).Conn()
		return nil
	}); err != nil {
		return fmt.Errorf("unwrap pgx connection: %w", err)
	}

	tx, err := pgxConn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	if _, err := tx.Exec(ctx, `
		CREATE TEMP TABLE pending_objects (
			id TEXT, type TEXT, payload JSONB
		) ON COMMIT DROP`); err != nil {
		return fmt.Errorf("create temp table: %w", err)
	}

	rows := make([][]any, len(objs))
	for i, obj := range objs {
		id, typ, payload, err := storage.EncodeObject(obj)
		if err != nil {
			return err
		}
		rows[i] = []any{id, typ, payload}
	}

	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"pending_objects"},
		[]string{"id", "type", "payload"},
		pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copy pending objects: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO vrs_objects (id, type, payload)
		SELECT DISTINCT ON (id) id, type, payload FROM pending_objects
		ON CONFLICT (id) DO NOTHING`); err != nil {
		return fmt.Errorf("merge pending objects: %w", err)
	}

	if err := w.mergeAlleleLocations(ctx, tx, objs); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	committed = true
	return nil
}

func (w *pgBatchWriter) mergeAlleleLocations(ctx context.Context, tx pgx.Tx, objs []vrs.Object) error {
	type row struct {
		id, accession string
		start, end    int64
	}
	var locs []row
	for _, obj := range objs {
		if a, ok := obj.(*vrs.Allele); ok && a.Location != nil && a.Location.SequenceReference != nil {
			locs = append(locs, row{a.VRSID(), a.Location.SequenceReference.RefgetAccession, a.Location.Start, a.Location.End})
		}
	}
	if len(locs) == 0 {
		return nil
	}

	if _, err := tx.Exec(ctx, `
		CREATE TEMP TABLE pending_locations (
			allele_id TEXT, accession TEXT, start_pos BIGINT, end_pos BIGINT
		) ON COMMIT DROP`); err != nil {
		return fmt.Errorf("create temp locations table: %w", err)
	}

	rows := make([][]any, len(locs))
	for i, l := range locs {
		rows[i] = []any{l.id, l.accession, l.start, l.end}
	}
	if _, err := tx.CopyFrom(ctx,
		pgx.Identifier{"pending_locations"},
		[]string{"allele_id", "accession", "start_pos", "end_pos"},
		pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copy pending locations: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO allele_locations (allele_id, accession, span)
		SELECT DISTINCT ON (allele_id) allele_id, accession, int8range(start_pos, end_pos)
		FROM pending_locations
		ON CONFLICT (allele_id) DO NOTHING`); err != nil {
		return fmt.Errorf("merge pending locations: %w", err)
	}
	return nil
}

package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"mssql-backup/internal/config"
	"mssql-backup/internal/domain"
)

// MSSQL drives backup, integrity-check and verification commands against
// one SQL Server instance. The pool is shared read-only state for a batch
// run; each backup job additionally pins its own connection.
type MSSQL struct {
	db *sql.DB
}

// Connect opens and verifies the server connection. Failing here is fatal
// for a batch run.
func Connect(ctx context.Context, cfg *config.ServerConfig) (*MSSQL, error) {
	query := url.Values{}
	query.Add("database", cfg.Database)
	query.Add("app name", "mssql-backup")
	query.Add("dial timeout", "15")
	if cfg.TrustServerCertificate {
		query.Add("trustservercertificate", "true")
	}

	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.Username, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     cfg.Instance,
		RawQuery: query.Encode(),
	}

	db, err := sql.Open("sqlserver", u.String())
	if err != nil {
		return nil, fmt.Errorf("open server connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping server: %w", err)
	}

	return &MSSQL{db: db}, nil
}

func (m *MSSQL) Close() error {
	return m.db.Close()
}

func (m *MSSQL) Ping(ctx context.Context) error {
	return m.db.PingContext(ctx)
}

// CheckIntegrity runs DBCC CHECKDB; corruption surfaces as a server error.
func (m *MSSQL) CheckIntegrity(ctx context.Context, database string) error {
	stmt := fmt.Sprintf("DBCC CHECKDB (%s) WITH NO_INFOMSGS", quoteIdent(database))
	if _, err := m.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("DBCC CHECKDB on %s: %w", database, err)
	}
	return nil
}

// StartBackup launches BACKUP DATABASE / BACKUP LOG on a dedicated
// connection and returns immediately. The statement runs detached from the
// caller's context: backup duration is data-size-dependent and only the
// engine's own limits apply. Releasing the job closes the connection and
// with it an abandoned backup.
func (m *MSSQL) StartBackup(ctx context.Context, p domain.CreateBackupParams) (domain.BackupJob, error) {
	conn, err := m.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire backup connection: %w", err)
	}

	var sessionID int
	if err := conn.QueryRowContext(ctx, "SELECT @@SPID").Scan(&sessionID); err != nil {
		conn.Close()
		return nil, fmt.Errorf("read backup session id: %w", err)
	}

	j := newJob(m.db, conn, sessionID)
	stmt := buildBackupStatement(p)
	go func() {
		_, execErr := conn.ExecContext(context.Background(), stmt, sql.Named("disk", p.FilePath))
		j.finish(execErr)
	}()

	return j, nil
}

func buildBackupStatement(p domain.CreateBackupParams) string {
	verb := "DATABASE"
	if p.Kind == domain.KindLog {
		verb = "LOG"
	}

	var opts []string
	if p.Kind == domain.KindDifferential {
		opts = append(opts, "DIFFERENTIAL")
	}
	// COPY_ONLY is meaningless for differentials; the engine would reject it.
	if p.CopyOnly && p.Kind != domain.KindDifferential {
		opts = append(opts, "COPY_ONLY")
	}
	if p.Compression {
		opts = append(opts, "COMPRESSION")
	}
	if p.Checksum {
		opts = append(opts, "CHECKSUM")
	}
	if p.RetainDays > 0 {
		opts = append(opts, fmt.Sprintf("RETAINDAYS = %d", p.RetainDays))
	}

	stmt := fmt.Sprintf("BACKUP %s %s TO DISK = @disk", verb, quoteIdent(p.Database))
	if len(opts) > 0 {
		stmt += " WITH " + strings.Join(opts, ", ")
	}
	return stmt
}

// LatestCatalogRecord reads the newest backupset row for the database from
// the msdb history catalog. Returns nil when the catalog has none.
func (m *MSSQL) LatestCatalogRecord(ctx context.Context, database string) (*domain.CatalogRecord, error) {
	const q = `SELECT TOP (1)
	backup_set_id,
	position,
	CAST(backup_size AS BIGINT),
	CAST(COALESCE(compressed_backup_size, 0) AS BIGINT)
FROM msdb.dbo.backupset
WHERE database_name = @database
ORDER BY backup_finish_date DESC, backup_set_id DESC`

	var rec domain.CatalogRecord
	err := m.db.QueryRowContext(ctx, q, sql.Named("database", database)).
		Scan(&rec.BackupSetID, &rec.Position, &rec.SizeBytes, &rec.CompressedSizeBytes)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query msdb backupset for %s: %w", database, err)
	}
	return &rec, nil
}

// ReadBackupHeader extracts the Position column from RESTORE HEADERONLY for
// the file's own most recent backup set. Returns 0 when the file reports no
// usable position.
func (m *MSSQL) ReadBackupHeader(ctx context.Context, filePath string) (int64, error) {
	rows, err := m.db.QueryContext(ctx, "RESTORE HEADERONLY FROM DISK = @disk", sql.Named("disk", filePath))
	if err != nil {
		return 0, fmt.Errorf("RESTORE HEADERONLY on %s: %w", filePath, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return 0, fmt.Errorf("read header columns: %w", err)
	}
	posIdx := -1
	for i, c := range cols {
		if strings.EqualFold(c, "Position") {
			posIdx = i
			break
		}
	}
	if posIdx < 0 {
		return 0, fmt.Errorf("header of %s has no Position column", filePath)
	}

	// A striped or appended file can hold several sets; the last row is the
	// one just written.
	var position int64
	found := false
	vals := make([]any, len(cols))
	for i := range vals {
		vals[i] = new(any)
	}
	for rows.Next() {
		if err := rows.Scan(vals...); err != nil {
			return 0, fmt.Errorf("scan header row: %w", err)
		}
		if p, ok := toInt64(*(vals[posIdx].(*any))); ok {
			position = p
			found = true
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("read header rows: %w", err)
	}
	if !found {
		return 0, nil
	}
	return position, nil
}

// VerifyBackup runs RESTORE VERIFYONLY against one backup set position.
func (m *MSSQL) VerifyBackup(ctx context.Context, filePath string, position int64) error {
	_, err := m.db.ExecContext(ctx,
		"RESTORE VERIFYONLY FROM DISK = @disk WITH FILE = @position",
		sql.Named("disk", filePath),
		sql.Named("position", position),
	)
	if err != nil {
		return fmt.Errorf("RESTORE VERIFYONLY on %s (position %d): %w", filePath, position, err)
	}
	return nil
}

func quoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func toInt64(v any) (int64, bool) {
	switch val := v.(type) {
	case int64:
		return val, val > 0
	case int32:
		return int64(val), val > 0
	case int:
		return int64(val), val > 0
	case []byte:
		n, err := strconv.ParseInt(string(val), 10, 64)
		return n, err == nil && n > 0
	case string:
		n, err := strconv.ParseInt(val, 10, 64)
		return n, err == nil && n > 0
	default:
		return 0, false
	}
}

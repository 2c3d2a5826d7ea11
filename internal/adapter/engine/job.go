package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"mssql-backup/internal/domain"
)

// job is one in-flight BACKUP statement pinned to its own connection. The
// statement's session id lets progress be read from sys.dm_exec_requests
// through the shared pool while the statement runs.
type job struct {
	db        *sql.DB
	conn      *sql.Conn
	sessionID int

	done chan struct{}
	err  error

	last     int
	released sync.Once
}

func newJob(db *sql.DB, conn *sql.Conn, sessionID int) *job {
	return &job{db: db, conn: conn, sessionID: sessionID, done: make(chan struct{})}
}

// finish is called exactly once by the statement goroutine.
func (j *job) finish(err error) {
	j.err = err
	close(j.done)
}

func (j *job) Poll(ctx context.Context) (domain.JobStatus, error) {
	select {
	case <-j.done:
		if j.err != nil {
			return domain.JobStatus{State: domain.JobFailed, Err: j.err}, nil
		}
		return domain.JobStatus{State: domain.JobSucceeded, Percent: 100}, nil
	default:
	}

	const q = `SELECT CAST(percent_complete AS INT)
FROM sys.dm_exec_requests
WHERE session_id = @session AND command LIKE 'BACKUP%'`

	var percent int
	err := j.db.QueryRowContext(ctx, q, sql.Named("session", j.sessionID)).Scan(&percent)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Request not visible yet, or it just finished; the next poll will
		// observe the terminal state.
		return domain.JobStatus{State: domain.JobRunning, Percent: j.last}, nil
	case err != nil:
		return domain.JobStatus{}, fmt.Errorf("query backup progress: %w", err)
	}

	if percent > j.last {
		j.last = percent
	}
	return domain.JobStatus{State: domain.JobRunning, Percent: j.last}, nil
}

// Release closes the pinned connection. Closing it while the statement is
// still running cancels the backup on the server side; calling it again is
// a no-op.
func (j *job) Release() error {
	var err error
	j.released.Do(func() {
		err = j.conn.Close()
	})
	return err
}

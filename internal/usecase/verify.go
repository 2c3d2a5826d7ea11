package usecase

import (
	"context"
	"fmt"

	"mssql-backup/internal/domain"
)

// OutcomeKind is the result of correlating a backup file with the catalog.
type OutcomeKind int

const (
	OutcomeMatched OutcomeKind = iota
	OutcomeMismatched
	OutcomeNotFound
)

// Outcome is the correlation verdict. Expected is the catalog position,
// Actual the position read from the file header; both are set only when the
// corresponding source had a usable value.
type Outcome struct {
	Kind     OutcomeKind
	Expected int64
	Actual   int64
}

// Correlator decides whether a freshly written backup file may be verified.
// The engine's catalog can contain stale or concurrent entries from other
// sessions backing up the same database; comparing the catalog position with
// the position the file itself reports detects that race instead of trusting
// catalog order alone.
type Correlator struct {
	engine domain.BackupEngine
}

func NewCorrelator(engine domain.BackupEngine) *Correlator {
	return &Correlator{engine: engine}
}

// Correlate matches the artifact's on-disk header against the most recent
// catalog record for the database. Positions <= 0 count as absent.
func (c *Correlator) Correlate(ctx context.Context, database, artifactPath string) (Outcome, error) {
	rec, err := c.engine.LatestCatalogRecord(ctx, database)
	if err != nil {
		return Outcome{}, fmt.Errorf("query backup catalog for %s: %w", database, err)
	}

	headerPos, err := c.engine.ReadBackupHeader(ctx, artifactPath)
	if err != nil {
		return Outcome{}, fmt.Errorf("read backup header of %s: %w", artifactPath, err)
	}

	var catalogPos int64
	if rec != nil {
		catalogPos = rec.Position
	}

	switch {
	case catalogPos <= 0 || headerPos <= 0:
		return Outcome{Kind: OutcomeNotFound, Expected: catalogPos, Actual: headerPos}, nil
	case catalogPos == headerPos:
		return Outcome{Kind: OutcomeMatched, Expected: catalogPos, Actual: headerPos}, nil
	default:
		return Outcome{Kind: OutcomeMismatched, Expected: catalogPos, Actual: headerPos}, nil
	}
}

// VerifyArtifact runs the full verification protocol for one artifact:
// correlate first, and only on a position match ask the engine to verify the
// backup set. Verifying against a wrong position silently would be worse
// than not verifying at all, so anything but Matched is surfaced as an error
// and VerifyBackup is never invoked.
func (c *Correlator) VerifyArtifact(ctx context.Context, database string, artifact domain.BackupArtifact, step domain.Step) error {
	outcome, err := c.Correlate(ctx, database, artifact.FilePath)
	if err != nil {
		return domain.NewStepError(domain.ErrVerificationEngineFailure, database, step, err)
	}

	switch outcome.Kind {
	case OutcomeNotFound:
		return domain.NewStepError(domain.ErrVerificationNotFound, database, step,
			fmt.Errorf("no catalog record or file header position for %s", artifact.FilePath))
	case OutcomeMismatched:
		return domain.NewStepError(domain.ErrVerificationMismatch, database, step,
			fmt.Errorf("catalog position %d does not match file position %d for %s",
				outcome.Expected, outcome.Actual, artifact.FilePath))
	}

	if err := c.engine.VerifyBackup(ctx, artifact.FilePath, outcome.Expected); err != nil {
		return domain.NewStepError(domain.ErrVerificationEngineFailure, database, step, err)
	}
	return nil
}

package config

import (
	"github.com/go-viper/mapstructure/v2"

	"mssql-backup/internal/domain"
)

// Defaults maps the backup section onto the per-database default request the
// batch entries are merged against.
func (c *Config) Defaults() domain.BackupRequest {
	b := c.Backup
	return domain.BackupRequest{
		CheckDatabase:        b.CheckDatabase,
		CheckBackup:          b.CheckBackup,
		CopyOnly:             b.CopyOnly,
		BackupDatabase:       b.BackupDatabase,
		BackupTransactionLog: b.BackupTransactionLog,
		Differential:         b.Differential,
		Compression:          b.Compression,
		UseSubfolder:         b.UseSubfolder,
		RetainDays:           b.RetainDays,
	}
}

// Entries classifies the raw database list into tagged batch entries: a
// plain string becomes a name entry, a mapping becomes a sparse override,
// and anything else is kept as an invalid entry so the orchestrator can
// record it instead of the batch aborting.
func (c *Config) Entries() []domain.BatchEntry {
	entries := make([]domain.BatchEntry, 0, len(c.Databases))
	for _, raw := range c.Databases {
		entries = append(entries, classifyEntry(raw))
	}
	return entries
}

func classifyEntry(raw any) domain.BatchEntry {
	switch val := raw.(type) {
	case string:
		if val == "" {
			return domain.InvalidEntry(raw)
		}
		return domain.PlainEntry(val)
	case map[string]any, map[any]any:
		var override domain.RequestOverride
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:      &override,
			ErrorUnused: true,
		})
		if err != nil || dec.Decode(val) != nil {
			return domain.InvalidEntry(raw)
		}
		return domain.OverrideEntry(override)
	default:
		return domain.InvalidEntry(raw)
	}
}

// BatchRequest assembles the complete batch for one run.
func (c *Config) BatchRequest() domain.BatchRequest {
	return domain.BatchRequest{
		Entries:         c.Entries(),
		Defaults:        c.Defaults(),
		DestinationRoot: c.Backup.DestinationRoot,
	}
}

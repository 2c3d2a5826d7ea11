package domain

import "fmt"

// BatchEntry is the tagged per-database input variant: either a plain
// database name or a sparse override merged onto the batch defaults. An
// entry with neither form set is malformed and resolves to an
// invalid-argument error; Raw keeps the original input for diagnostics.
type BatchEntry struct {
	Name     string
	Override *RequestOverride
	Raw      any
}

// PlainEntry wraps a bare database name.
func PlainEntry(name string) BatchEntry {
	return BatchEntry{Name: name, Raw: name}
}

// OverrideEntry wraps a sparse override.
func OverrideEntry(o RequestOverride) BatchEntry {
	return BatchEntry{Override: &o, Raw: o}
}

// InvalidEntry records an input that is neither a name nor an override.
func InvalidEntry(raw any) BatchEntry {
	return BatchEntry{Raw: raw}
}

// RequestOverride carries per-database deviations from the batch defaults.
// Nil fields keep the default value.
type RequestOverride struct {
	Name                 string `mapstructure:"name"`
	CheckDatabase        *bool  `mapstructure:"check_database"`
	CheckBackup          *bool  `mapstructure:"check_backup"`
	CopyOnly             *bool  `mapstructure:"copy_only"`
	BackupDatabase       *bool  `mapstructure:"backup_database"`
	BackupTransactionLog *bool  `mapstructure:"backup_transaction_log"`
	Differential         *bool  `mapstructure:"differential"`
	Compression          *bool  `mapstructure:"compression"`
	UseSubfolder         *bool  `mapstructure:"use_subfolder"`
	RetainDays           *int   `mapstructure:"retain_days"`
}

// ResolveEntry merges an entry onto the batch defaults, producing a complete
// BackupRequest. The database name is resolved and validated first.
func ResolveEntry(e BatchEntry, defaults BackupRequest) (BackupRequest, error) {
	switch {
	case e.Name != "":
		r := defaults
		r.DatabaseName = e.Name
		return r, nil

	case e.Override != nil:
		if e.Override.Name == "" {
			return BackupRequest{}, NewStepError(ErrInvalidArgument, "", 0,
				fmt.Errorf("database override without a name: %v", e.Raw))
		}
		r := defaults
		r.DatabaseName = e.Override.Name
		o := e.Override
		setBool(&r.CheckDatabase, o.CheckDatabase)
		setBool(&r.CheckBackup, o.CheckBackup)
		setBool(&r.CopyOnly, o.CopyOnly)
		setBool(&r.BackupDatabase, o.BackupDatabase)
		setBool(&r.BackupTransactionLog, o.BackupTransactionLog)
		setBool(&r.Differential, o.Differential)
		setBool(&r.Compression, o.Compression)
		setBool(&r.UseSubfolder, o.UseSubfolder)
		if o.RetainDays != nil {
			r.RetainDays = *o.RetainDays
		}
		if r.RetainDays < 0 {
			return BackupRequest{}, NewStepError(ErrInvalidArgument, r.DatabaseName, 0,
				fmt.Errorf("retain_days must not be negative: %d", r.RetainDays))
		}
		return r, nil

	default:
		return BackupRequest{}, NewStepError(ErrInvalidArgument, "", 0,
			fmt.Errorf("database entry is neither a name nor an override: %v", e.Raw))
	}
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

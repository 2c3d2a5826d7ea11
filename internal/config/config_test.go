package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"mssql-backup/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	Convey("Given a complete config file", t, func() {
		path := writeConfig(t, `
server:
  host: db.example.com
  username: sa
  password: secret
backup:
  destination_root: /var/backups
  check_database: true
  check_backup: true
  backup_transaction_log: true
  retain_days: 14
databases:
  - orders
  - name: archive
    differential: true
    check_database: false
upload_targets:
  - type: s3
    enabled: true
    region: eu-west-1
    bucket: backups
  - type: gdrive
    enabled: false
`)
		cfg, err := Load(path)

		Convey("It loads and validates", func() {
			So(err, ShouldBeNil)
			So(cfg.Server.Host, ShouldEqual, "db.example.com")
			So(cfg.Backup.RetainDays, ShouldEqual, 14)
		})

		Convey("Unset fields take their defaults", func() {
			So(cfg.Server.Port, ShouldEqual, 1433)
			So(cfg.Server.Database, ShouldEqual, "master")
			So(cfg.Backup.BackupDatabase, ShouldBeTrue)
			So(cfg.Backup.PollInterval, ShouldEqual, 2*time.Second)
			So(cfg.Backup.Schedule, ShouldEqual, "0 0 1 * * *")
		})

		Convey("Only enabled upload targets are returned", func() {
			targets := cfg.GetEnabledUploadTargets()
			So(len(targets), ShouldEqual, 1)
			So(targets[0].Type, ShouldEqual, "s3")
			So(targets[0].Bucket, ShouldEqual, "backups")
		})

		Convey("The database list becomes tagged batch entries", func() {
			entries := cfg.Entries()
			So(len(entries), ShouldEqual, 2)

			So(entries[0].Name, ShouldEqual, "orders")
			So(entries[0].Override, ShouldBeNil)

			So(entries[1].Name, ShouldBeEmpty)
			So(entries[1].Override, ShouldNotBeNil)
			So(entries[1].Override.Name, ShouldEqual, "archive")
			So(*entries[1].Override.Differential, ShouldBeTrue)
			So(*entries[1].Override.CheckDatabase, ShouldBeFalse)
			So(entries[1].Override.Compression, ShouldBeNil)
		})

		Convey("Defaults mirror the backup section", func() {
			defaults := cfg.Defaults()
			So(defaults.CheckDatabase, ShouldBeTrue)
			So(defaults.CheckBackup, ShouldBeTrue)
			So(defaults.BackupDatabase, ShouldBeTrue)
			So(defaults.BackupTransactionLog, ShouldBeTrue)
			So(defaults.RetainDays, ShouldEqual, 14)
		})

		Convey("The assembled batch carries the destination root", func() {
			batch := cfg.BatchRequest()
			So(batch.DestinationRoot, ShouldEqual, "/var/backups")
			So(len(batch.Entries), ShouldEqual, 2)
		})
	})

	Convey("Given incomplete config files", t, func() {
		Convey("A missing host is rejected", func() {
			_, err := Load(writeConfig(t, `
backup:
  destination_root: /var/backups
databases: [orders]
`))
			So(err, ShouldNotBeNil)
		})

		Convey("A missing destination root is rejected", func() {
			_, err := Load(writeConfig(t, `
server:
  host: db.example.com
databases: [orders]
`))
			So(err, ShouldNotBeNil)
		})

		Convey("An empty database list is rejected", func() {
			_, err := Load(writeConfig(t, `
server:
  host: db.example.com
backup:
  destination_root: /var/backups
`))
			So(err, ShouldNotBeNil)
		})

		Convey("A missing file is an error", func() {
			_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
			So(err, ShouldNotBeNil)
		})
	})
}

func TestClassifyEntry(t *testing.T) {
	Convey("Given raw database list values", t, func() {
		Convey("A plain string is a name entry", func() {
			e := classifyEntry("orders")
			So(e.Name, ShouldEqual, "orders")
			So(e.Override, ShouldBeNil)
		})

		Convey("An empty string is invalid", func() {
			e := classifyEntry("")
			So(e.Name, ShouldBeEmpty)
			So(e.Override, ShouldBeNil)
		})

		Convey("A mapping with known keys is an override entry", func() {
			e := classifyEntry(map[string]any{"name": "archive", "copy_only": true})
			So(e.Override, ShouldNotBeNil)
			So(e.Override.Name, ShouldEqual, "archive")
			So(*e.Override.CopyOnly, ShouldBeTrue)
		})

		Convey("A mapping with unknown keys is invalid", func() {
			e := classifyEntry(map[string]any{"name": "archive", "cmopression": true})
			So(e.Name, ShouldBeEmpty)
			So(e.Override, ShouldBeNil)
		})

		Convey("A number is invalid", func() {
			e := classifyEntry(42)
			So(e.Name, ShouldBeEmpty)
			So(e.Override, ShouldBeNil)
			So(e.Raw, ShouldEqual, 42)

			_, err := domain.ResolveEntry(e, domain.BackupRequest{})
			So(domain.IsKind(err, domain.ErrInvalidArgument), ShouldBeTrue)
		})
	})
}

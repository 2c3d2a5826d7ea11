package engine

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"mssql-backup/internal/domain"
)

func TestBuildBackupStatement(t *testing.T) {
	Convey("Given backup parameters", t, func() {
		Convey("A bare full backup has no WITH clause", func() {
			stmt := buildBackupStatement(domain.CreateBackupParams{
				Database: "orders",
				Kind:     domain.KindFull,
			})
			So(stmt, ShouldEqual, "BACKUP DATABASE [orders] TO DISK = @disk")
		})

		Convey("A log backup uses the LOG verb", func() {
			stmt := buildBackupStatement(domain.CreateBackupParams{
				Database: "orders",
				Kind:     domain.KindLog,
			})
			So(stmt, ShouldEqual, "BACKUP LOG [orders] TO DISK = @disk")
		})

		Convey("Options are appended in a fixed order", func() {
			stmt := buildBackupStatement(domain.CreateBackupParams{
				Database:    "orders",
				Kind:        domain.KindFull,
				CopyOnly:    true,
				Compression: true,
				Checksum:    true,
				RetainDays:  7,
			})
			So(stmt, ShouldEqual,
				"BACKUP DATABASE [orders] TO DISK = @disk WITH COPY_ONLY, COMPRESSION, CHECKSUM, RETAINDAYS = 7")
		})

		Convey("A differential backup drops COPY_ONLY even when requested", func() {
			stmt := buildBackupStatement(domain.CreateBackupParams{
				Database: "orders",
				Kind:     domain.KindDifferential,
				CopyOnly: true,
			})
			So(stmt, ShouldEqual, "BACKUP DATABASE [orders] TO DISK = @disk WITH DIFFERENTIAL")
		})

		Convey("Zero retain days emits no RETAINDAYS option", func() {
			stmt := buildBackupStatement(domain.CreateBackupParams{
				Database:    "orders",
				Kind:        domain.KindFull,
				Compression: true,
			})
			So(stmt, ShouldEqual, "BACKUP DATABASE [orders] TO DISK = @disk WITH COMPRESSION")
		})
	})
}

func TestQuoteIdent(t *testing.T) {
	Convey("Given database identifiers", t, func() {
		So(quoteIdent("orders"), ShouldEqual, "[orders]")
		So(quoteIdent("my db"), ShouldEqual, "[my db]")

		Convey("Closing brackets are escaped", func() {
			So(quoteIdent("odd]name"), ShouldEqual, "[odd]]name]")
		})
	})
}

func TestToInt64(t *testing.T) {
	Convey("Given driver-level column values", t, func() {
		Convey("Integer types pass through", func() {
			v, ok := toInt64(int64(42))
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 42)

			v, ok = toInt64(int32(7))
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 7)
		})

		Convey("Textual values are parsed", func() {
			v, ok := toInt64("13")
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 13)

			v, ok = toInt64([]byte("8"))
			So(ok, ShouldBeTrue)
			So(v, ShouldEqual, 8)
		})

		Convey("Non-positive and unusable values do not count as positions", func() {
			_, ok := toInt64(int64(0))
			So(ok, ShouldBeFalse)

			_, ok = toInt64("not a number")
			So(ok, ShouldBeFalse)

			_, ok = toInt64(nil)
			So(ok, ShouldBeFalse)
		})
	})
}

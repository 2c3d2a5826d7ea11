package logger

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given the logger package", t, func() {
		Convey("When creating a logger with console output only", func() {
			log, err := New("info", "")

			So(err, ShouldBeNil)
			So(log, ShouldNotBeNil)
			So(func() { log.Info("test log") }, ShouldNotPanic)
			So(func() { log.Close() }, ShouldNotPanic)
		})

		Convey("When creating a logger with a log file", func() {
			logFile := filepath.Join(t.TempDir(), "test.log")

			log, err := New("debug", logFile)
			So(err, ShouldBeNil)

			log.Debug("test debug log")
			log.Sync()

			Convey("The log file is created", func() {
				_, err := os.Stat(logFile)
				So(err, ShouldBeNil)
				log.Close()
			})
		})

		Convey("When the log level is not recognized", func() {
			log, err := New("invalid", "")

			Convey("It falls back to info", func() {
				So(err, ShouldBeNil)
				So(log, ShouldNotBeNil)
				So(func() { log.Info("still logs") }, ShouldNotPanic)
			})
		})

		Convey("When the log directory cannot be created", func() {
			log, err := New("info", "/proc/invalid/test.log")

			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "create log directory")
			So(log, ShouldBeNil)
		})

		Convey("When deriving a named child logger", func() {
			log, err := New("info", "")
			So(err, ShouldBeNil)

			child := log.Named("batch")
			So(child, ShouldNotBeNil)
			So(func() { child.Info("scoped log") }, ShouldNotPanic)
		})
	})
}

package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

type testLogger struct{}

func (testLogger) Infof(template string, args ...interface{})  {}
func (testLogger) Errorf(template string, args ...interface{}) {}

func TestScheduler(t *testing.T) {
	Convey("Given a scheduler", t, func() {
		s := New(testLogger{})

		Convey("It is created with a cron runner", func() {
			So(s, ShouldNotBeNil)
			So(s.cron, ShouldNotBeNil)
		})

		Convey("When adding a job with a valid spec", func() {
			marker := filepath.Join(t.TempDir(), "job.log")
			job := func(ctx context.Context) error {
				return os.WriteFile(marker, []byte("executed"), 0o644)
			}

			err := s.AddJob("marker", "* * * * * *", job) // every second

			Convey("The job runs after the scheduler starts", func() {
				So(err, ShouldBeNil)

				s.Start()
				time.Sleep(2 * time.Second)
				s.Stop()

				content, err := os.ReadFile(marker)
				So(err, ShouldBeNil)
				So(string(content), ShouldEqual, "executed")
			})
		})

		Convey("When adding a job with an invalid spec", func() {
			err := s.AddJob("broken", "not a spec", func(ctx context.Context) error { return nil })

			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "expected exactly 6 fields")
		})

		Convey("A failing job does not stop the schedule", func() {
			marker := filepath.Join(t.TempDir(), "after.log")
			So(s.AddJob("failing", "* * * * * *", func(ctx context.Context) error {
				return os.ErrPermission
			}), ShouldBeNil)
			So(s.AddJob("following", "* * * * * *", func(ctx context.Context) error {
				return os.WriteFile(marker, []byte("ran"), 0o644)
			}), ShouldBeNil)

			s.Start()
			time.Sleep(2 * time.Second)
			s.Stop()

			_, err := os.Stat(marker)
			So(err, ShouldBeNil)
		})
	})
}

package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"mssql-backup/internal/domain"
)

// scriptedJob replays a fixed poll sequence and counts releases.
type scriptedJob struct {
	statuses []domain.JobStatus
	idx      int
	pollErr  error
	releases int
}

func (j *scriptedJob) Poll(ctx context.Context) (domain.JobStatus, error) {
	if j.pollErr != nil {
		return domain.JobStatus{}, j.pollErr
	}
	if j.idx >= len(j.statuses) {
		return domain.JobStatus{State: domain.JobSucceeded}, nil
	}
	s := j.statuses[j.idx]
	j.idx++
	return s, nil
}

func (j *scriptedJob) Release() error {
	j.releases++
	return nil
}

func running(percent int) domain.JobStatus {
	return domain.JobStatus{State: domain.JobRunning, Percent: percent}
}

func TestJobSupervisorWatch(t *testing.T) {
	Convey("Given a supervisor with a short poll interval", t, func() {
		s := NewJobSupervisor(time.Millisecond, nil)

		Convey("Repeated percents are collapsed into strictly increasing reports", func() {
			job := &scriptedJob{statuses: []domain.JobStatus{
				running(10), running(10), running(25), running(25), running(100),
				{State: domain.JobSucceeded},
			}}

			var seen []int
			err := s.Watch(context.Background(), job, func(p int) { seen = append(seen, p) })

			So(err, ShouldBeNil)
			So(seen, ShouldResemble, []int{10, 25, 100})
			So(job.releases, ShouldEqual, 1)
		})

		Convey("A failed job surfaces its cause and is released once", func() {
			cause := errors.New("write error on device")
			job := &scriptedJob{statuses: []domain.JobStatus{
				running(10),
				{State: domain.JobFailed, Err: cause},
			}}

			err := s.Watch(context.Background(), job, nil)

			So(errors.Is(err, cause), ShouldBeTrue)
			So(job.releases, ShouldEqual, 1)
		})

		Convey("A failed job without a cause still returns an error", func() {
			job := &scriptedJob{statuses: []domain.JobStatus{{State: domain.JobFailed}}}
			So(s.Watch(context.Background(), job, nil), ShouldNotBeNil)
			So(job.releases, ShouldEqual, 1)
		})

		Convey("A poll error stops watching and releases the job", func() {
			cause := errors.New("connection reset")
			job := &scriptedJob{pollErr: cause}

			err := s.Watch(context.Background(), job, nil)

			So(errors.Is(err, cause), ShouldBeTrue)
			So(job.releases, ShouldEqual, 1)
		})

		Convey("Caller cancellation abandons the job but still releases it", func() {
			job := &scriptedJob{statuses: []domain.JobStatus{
				running(5), running(5), running(5), running(5), running(5),
				running(5), running(5), running(5), running(5), running(5),
			}}
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			err := s.Watch(ctx, job, nil)

			So(errors.Is(err, context.Canceled), ShouldBeTrue)
			So(job.releases, ShouldEqual, 1)
		})
	})

	Convey("A non-positive interval falls back to the default", t, func() {
		So(NewJobSupervisor(0, nil).interval, ShouldEqual, DefaultPollInterval)
		So(NewJobSupervisor(-time.Second, nil).interval, ShouldEqual, DefaultPollInterval)
	})
}

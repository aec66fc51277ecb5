package explorer

import (
	"errors"
	"time"

	"github.com/webszilla/work-zilla-explorer/internal/gateway"
)

type uploadJob struct {
	task     *UploadTask
	file     UploadFile
	folderID string
}

// ErrSessionClosed is returned when work is submitted to a closed session.
var ErrSessionClosed = errors.New("explorer session is closed")

// EnqueueUploads queues a batch of files for upload into the currently
// displayed folder. Tasks are prepended to the visible queue as submitted and
// processed strictly sequentially: each file's request is issued only after
// the previous one resolves, so quota failures stay attributable to a
// specific file. A storage_limit_exceeded failure does not abort the
// remaining files — attempt all, report all.
func (s *Session) EnqueueUploads(files []UploadFile) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	folderID := s.currentFolderLocked()
	jobs := make([]uploadJob, 0, len(files))
	for _, f := range files {
		s.uploadNextID++
		task := &UploadTask{ID: s.uploadNextID, Name: f.Name, Status: UploadStatusUploading}
		s.uploads = append([]*UploadTask{task}, s.uploads...)
		jobs = append(jobs, uploadJob{task: task, file: f, folderID: folderID})
	}
	s.mu.Unlock()

	s.publish(Event{Type: EventUploads})

	for _, job := range jobs {
		s.mu.Lock()
		if s.closed {
			job.task.Status = UploadStatusError
			job.task.Err = ErrSessionClosed.Error()
			s.mu.Unlock()
			continue
		}
		select {
		case s.uploadJobs <- job:
		default:
			job.task.Status = UploadStatusError
			job.task.Err = "upload queue is full"
		}
		s.mu.Unlock()
	}
	return nil
}

// Uploads returns a snapshot of the queue, newest first.
func (s *Session) Uploads() []UploadTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]UploadTask, len(s.uploads))
	for i, t := range s.uploads {
		out[i] = *t
	}
	return out
}

// uploadWorker is the single consumer of the upload queue.
func (s *Session) uploadWorker() {
	defer close(s.workerDone)
	for job := range s.uploadJobs {
		s.processUpload(job)
	}
}

func (s *Session) processUpload(job uploadJob) {
	s.mu.Lock()
	if job.task.Status != UploadStatusUploading {
		s.mu.Unlock()
		return
	}
	userID := s.scope.UserID
	s.mu.Unlock()

	_, err := s.gw.Upload(s.ctx, job.folderID, userID, job.file.Name, job.file.Content, job.file.Size)

	s.mu.Lock()
	job.task.Finished = time.Now()
	if err != nil {
		job.task.Status = UploadStatusError
		job.task.Err = err.Error()
		if gateway.IsKind(err, gateway.KindStorageLimitExceeded) {
			// Sticky banner; queued files are still attempted.
			s.limitBanner = true
		}
		s.mu.Unlock()
		s.publishError(err)
		s.publish(Event{Type: EventUploads})
		return
	}
	job.task.Status = UploadStatusDone
	s.mu.Unlock()

	s.publish(Event{Type: EventUploads})

	// Reload and refresh immediately after each success so displayed usage
	// stays live throughout a multi-file upload.
	s.reloadCurrent(s.ctx)
	s.RefreshQuota(s.ctx)
}

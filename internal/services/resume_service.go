package services

import (
	"bytes"
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/yoockh/careercoach/internal/extract"
	"github.com/yoockh/careercoach/internal/models"
	"github.com/yoockh/careercoach/internal/reporting"
	pgrepo "github.com/yoockh/careercoach/internal/repositories/postgres"
	"github.com/yoockh/careercoach/internal/storage"
	"github.com/yoockh/careercoach/internal/utils"
)

type ResumeUpload struct {
	UserID    string
	SessionID string
	FileName  string
	MediaType string
	Data      []byte
}

type ResumeService interface {
	// Extract returns the text of an uploaded PDF.
	Extract(ctx context.Context, up ResumeUpload) (string, error)
	// Archive stores an accepted upload and its metadata. Failures go to the reporter.
	Archive(ctx context.Context, up ResumeUpload, text string)
	// Latest returns metadata of the user's most recently archived resume.
	Latest(ctx context.Context, userID string) (*models.CVFile, error)
}

type resumeService struct {
	repo     pgrepo.CVFileRepository // optional
	uploader storage.Uploader        // optional
	reporter reporting.Reporter
}

func NewResumeService(repo pgrepo.CVFileRepository, uploader storage.Uploader, reporter reporting.Reporter) ResumeService {
	return &resumeService{repo: repo, uploader: uploader, reporter: reporter}
}

func (s *resumeService) Extract(ctx context.Context, up ResumeUpload) (string, error) {
	return extract.PDFText(up.Data, up.MediaType)
}

func (s *resumeService) Archive(ctx context.Context, up ResumeUpload, text string) {
	if err := s.archive(ctx, up, utf8.RuneCountInString(text)); err != nil && s.reporter != nil {
		s.reporter.Report(err)
	}
}

func (s *resumeService) Latest(ctx context.Context, userID string) (*models.CVFile, error) {
	const op = "ResumeService.Latest"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if s.repo == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "resume archive is not configured", nil)
	}
	row, err := s.repo.LatestByUser(ctx, userID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeNotFound, op, "no archived resume", err)
	}
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load archived resume", err)
	}
	return row, nil
}
func (s *resumeService) archive(ctx context.Context, up ResumeUpload, textChars int) error {
	const op = "ResumeService.archive"

	if s.uploader == nil {
		return nil
	}

	id := uuid.NewString()
	storedPath, err := s.uploader.Upload(ctx, storage.Object{
		Name:        storage.ResumeObjectName(up.UserID, id),
		ContentType: extract.MediaTypePDF,
		Metadata:    map[string]string{"source": "resume-upload", "session_id": up.SessionID},
	}, bytes.NewReader(up.Data))
	if err != nil {
		return utils.E(utils.CodeUnavailable, op, "failed to archive resume", err)
	}

	if s.repo == nil {
		return nil
	}
	row := &models.CVFile{
		ID:        id,
		UserID:    up.UserID,
		SessionID: up.SessionID,
		FileName:  up.FileName,
		FilePath:  storedPath,
		FileSize:  len(up.Data),
		MimeType:  extract.MediaTypePDF,
		TextChars: textChars,
		UploadAt:  time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, row); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to persist cv file metadata", err)
	}
	return nil
}

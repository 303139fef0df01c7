package service

import (
	"context"
	"image"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"backoffice/internal/apperr"
	"backoffice/internal/model"
	"backoffice/internal/repository"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxUploadSize  = 10 << 20
	maxUploadFiles = 10
)

var uploadTypePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,49}$`)

var allowedUploadExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true,
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true, ".csv": true, ".txt": true,
}

// re-encoded on upload; other types are stored as sent
var imageFormats = map[string]imaging.Format{
	".jpg":  imaging.JPEG,
	".jpeg": imaging.JPEG,
	".png":  imaging.PNG,
	".gif":  imaging.GIF,
}

type UploadService interface {
	// Save stores files under <dir>/<uploadType>/ and records one Attachment per file.
	Save(ctx context.Context, actorID uint, uploadType string, files []*multipart.FileHeader) ([]model.Attachment, error)
}

type uploadService struct {
	txManager   repository.TransactionManager
	attachments repository.AttachmentRepository
	audit       auditor
	dir         string
	publicURL   string
	maxWidth    int
	log         *zap.Logger
}

// NewUploadService stores files below dir and builds absolute URLs from publicURL + "/uploads".
func NewUploadService(
	txManager repository.TransactionManager,
	attachments repository.AttachmentRepository,
	auditRepo repository.AuditRepository,
	dir, publicURL string,
	maxWidth int,
	log *zap.Logger,
) UploadService {
	return &uploadService{
		txManager:   txManager,
		attachments: attachments,
		audit:       auditor{repo: auditRepo},
		dir:         dir,
		publicURL:   strings.TrimRight(publicURL, "/"),
		maxWidth:    maxWidth,
		log:         log,
	}
}

func (s *uploadService) Save(ctx context.Context, actorID uint, uploadType string, files []*multipart.FileHeader) ([]model.Attachment, error) {
	uploadType = strings.ToLower(strings.TrimSpace(uploadType))
	if !uploadTypePattern.MatchString(uploadType) {
		return nil, apperr.Validation("invalid upload type %q", uploadType)
	}
	if len(files) == 0 {
		return nil, apperr.Validation("no files uploaded")
	}
	if len(files) > maxUploadFiles {
		return nil, apperr.Validation("at most %d files per upload", maxUploadFiles)
	}
	for _, fh := range files {
		if fh.Size > maxUploadSize {
			return nil, apperr.Validation("%s exceeds the %d MB limit", fh.Filename, maxUploadSize>>20)
		}
		if !allowedUploadExt[strings.ToLower(filepath.Ext(fh.Filename))] {
			return nil, apperr.Validation("%s has an unsupported file type", fh.Filename)
		}
	}

	target := filepath.Join(s.dir, uploadType)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return nil, apperr.Internal(err, "failed to prepare upload directory")
	}

	var (
		rows    []model.Attachment
		written []string
	)
	cleanup := func() {
		for _, p := range written {
			if err := os.Remove(p); err != nil {
				s.log.Warn("failed to remove orphaned upload", zap.String("path", p), zap.Error(err))
			}
		}
	}

	for _, fh := range files {
		att, fullPath, err := s.store(target, uploadType, fh)
		if err != nil {
			cleanup()
			return nil, err
		}
		written = append(written, fullPath)
		if actorID != 0 {
			uid := actorID
			att.UploadedBy = &uid
		}
		rows = append(rows, att)
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.attachments.BulkCreate(txCtx, rows); err != nil {
			return apperr.Internal(err, "failed to record attachments")
		}
		urls := make([]string, 0, len(rows))
		for _, r := range rows {
			urls = append(urls, r.URL)
		}
		return s.audit.record(txCtx, actorID, model.ActionUpload, "attachment", 0, urls)
	})
	if err != nil {
		cleanup()
		return nil, err
	}
	return rows, nil
}

func (s *uploadService) store(dir, uploadType string, fh *multipart.FileHeader) (model.Attachment, string, error) {
	src, err := fh.Open()
	if err != nil {
		return model.Attachment{}, "", apperr.Validation("cannot read %s", fh.Filename)
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if ext == ".jpeg" {
		ext = ".jpg"
	}
	name := uuid.NewString() + ext
	fullPath := filepath.Join(dir, name)

	var size int64
	if format, ok := imageFormats[ext]; ok {
		size, err = s.writeImage(src, fullPath, format)
	} else {
		size, err = writeRaw(src, fullPath)
	}
	if err != nil {
		_ = os.Remove(fullPath)
		if apperr.KindOf(err) == apperr.KindValidation {
			return model.Attachment{}, "", err
		}
		return model.Attachment{}, "", apperr.Internal(err, "failed to store upload")
	}

	return model.Attachment{
		Type:         uploadType,
		FileName:     name,
		OriginalName: filepath.Base(fh.Filename),
		URL:          s.publicURL + path.Join("/uploads", uploadType, name),
		MimeType:     mimeOf(fh, ext),
		Size:         size,
	}, fullPath, nil
}

// writeImage decodes, shrinks to maxWidth when wider and re-encodes the image.
func (s *uploadService) writeImage(src io.Reader, fullPath string, format imaging.Format) (int64, error) {
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return 0, apperr.Validation("file is not a valid image")
	}
	if s.maxWidth > 0 && img.Bounds().Dx() > s.maxWidth {
		img = imaging.Resize(img, s.maxWidth, 0, imaging.Lanczos)
	}
	return encodeTo(fullPath, img, format)
}

func encodeTo(fullPath string, img image.Image, format imaging.Format) (int64, error) {
	f, err := os.Create(fullPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	if err := imaging.Encode(f, img, format, imaging.JPEGQuality(82)); err != nil {
		return 0, err
	}
	info, err := f.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func writeRaw(src io.Reader, fullPath string) (int64, error) {
	f, err := os.Create(fullPath)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return io.Copy(f, src)
}

func mimeOf(fh *multipart.FileHeader, ext string) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		return ct
	}
	switch ext {
	case ".jpg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".pdf":
		return "application/pdf"
	}
	return "application/octet-stream"
}

package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"

	"docvault/internal/logger"
	"docvault/internal/model"
	"docvault/internal/parser"
	"docvault/internal/repository"
	"docvault/internal/storage"
)

const (
	DefaultMaxBytes      int64 = 25 << 20
	DefaultPresignExpiry       = 15 * time.Minute
)

// DocumentSettings tune uploads and downloads.
type DocumentSettings struct {
	MaxBytes      int64
	PresignExpiry time.Duration
	// AutoParse submits every new upload to the parser in the background.
	AutoParse bool
	// ParseTimeout bounds a background parse.
	ParseTimeout time.Duration
}

// WithDefaults fills unset or non-positive limits. The HTTP body limit must be
// derived from the result, not from the raw configuration.
func (s DocumentSettings) WithDefaults() DocumentSettings {
	if s.MaxBytes <= 0 {
		s.MaxBytes = DefaultMaxBytes
	}
	if s.PresignExpiry <= 0 {
		s.PresignExpiry = DefaultPresignExpiry
	}
	if s.ParseTimeout <= 0 {
		s.ParseTimeout = 5 * time.Minute
	}
	return s
}

// DocumentPatch holds the document fields a caller may edit.
type DocumentPatch struct {
	Filename *string `json:"filename,omitempty"`
	Notes    *string `json:"notes,omitempty"`
}

// DocumentService defines the use cases for documents.
type DocumentService interface {
	// Upload stores the content in object storage and saves its metadata. An
	// active document with the same content in the report fails the upload
	// with a *DuplicateError. The object is removed again if the save fails.
	Upload(ctx context.Context, userID, reportID string, r io.Reader, filename, contentType string, size int64) (*model.Document, error)
	Get(ctx context.Context, userID, id string) (*model.Document, error)
	List(ctx context.Context, userID, reportID string, includeDeleted bool) ([]model.Document, error)
	Search(ctx context.Context, userID, reportID, query string) ([]model.Document, error)
	Update(ctx context.Context, userID, id string, patch DocumentPatch) (*model.Document, error)
	// Delete soft-deletes the document; the stored object is kept.
	Delete(ctx context.Context, userID, id string) error
	// Parse sends the document to the parser and stores the returned text.
	Parse(ctx context.Context, userID, id string) (*model.Document, error)
	DownloadURL(ctx context.Context, userID, id string) (string, error)
}

type documentService struct {
	reports  repository.ReportRepository
	docs     repository.DocumentRepository
	store    storage.Storage
	parser   parser.Parser
	settings DocumentSettings
	deps
}

// NewDocumentService constructs a DocumentService. p may be nil when parsing
// is not configured.
func NewDocumentService(
	reports repository.ReportRepository,
	docs repository.DocumentRepository,
	store storage.Storage,
	p parser.Parser,
	settings DocumentSettings,
	opts ...Option,
) DocumentService {
	return &documentService{
		reports:  reports,
		docs:     docs,
		store:    store,
		parser:   p,
		settings: settings.WithDefaults(),
		deps:     buildDeps(opts),
	}
}

func (s *documentService) Upload(ctx context.Context, userID, reportID string, r io.Reader, filename, contentType string, size int64) (*model.Document, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	if _, err := ownedReport(ctx, s.reports, userID, reportID); err != nil {
		return nil, err
	}
	if size > s.settings.MaxBytes {
		return nil, ErrTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(r, s.settings.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.settings.MaxBytes {
		return nil, ErrTooLarge
	}

	now := s.now()
	doc := &model.Document{
		ID:        s.newID(),
		ReportID:  reportID,
		Filename:  cleanFilename(filename),
		FileHash:  contentHash(data),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := model.ValidateDocument(doc); err != nil {
		return nil, err
	}

	// Check-then-act: two concurrent uploads of the same bytes can both pass.
	existing, err := s.docs.FindByHash(ctx, reportID, doc.FileHash)
	if err != nil {
		return nil, fmt.Errorf("duplicate check: %w", err)
	}
	if existing != nil {
		return nil, &DuplicateError{Existing: existing}
	}

	key := storage.ObjectKey(reportID, doc.Filename)
	objInfo, err := s.store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": doc.Filename,
			"sha256":            doc.FileHash,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}
	doc.StoragePath = objInfo.Key

	stored, err := s.docs.Save(ctx, doc)
	if err != nil {
		if delErr := s.store.Delete(ctx, objInfo.Key); delErr != nil {
			logger.From(ctx).Error("orphaned object after failed save",
				zap.String("key", objInfo.Key), zap.Error(delErr))
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	logger.From(ctx).Info("document uploaded",
		logger.DocumentID(stored.ID), logger.ReportID(reportID), zap.Int("bytes", len(data)))

	if s.settings.AutoParse && s.parser != nil {
		s.parseInBackground(ctx, userID, stored.ID, contentType)
	}
	return stored, nil
}

func (s *documentService) parseInBackground(ctx context.Context, userID, id, contentType string) {
	log := logger.From(ctx).With(logger.DocumentID(id))
	bg := logger.ToContext(context.WithoutCancel(ctx), log)
	s.async(func() {
		ctx, cancel := context.WithTimeout(bg, s.settings.ParseTimeout)
		defer cancel()
		if _, err := s.parse(ctx, userID, id, contentType); err != nil {
			log.Warn("background parse failed", zap.Error(err))
		}
	})
}

func (s *documentService) Get(ctx context.Context, userID, id string) (*model.Document, error) {
	return s.ownedDocument(ctx, userID, id)
}

func (s *documentService) List(ctx context.Context, userID, reportID string, includeDeleted bool) ([]model.Document, error) {
	if _, err := ownedReport(ctx, s.reports, userID, reportID); err != nil {
		return nil, err
	}
	return s.docs.FindByReport(ctx, reportID, includeDeleted)
}

func (s *documentService) Search(ctx context.Context, userID, reportID, query string) ([]model.Document, error) {
	if _, err := ownedReport(ctx, s.reports, userID, reportID); err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return s.docs.FindByReport(ctx, reportID, false)
	}
	return s.docs.Search(ctx, reportID, query)
}

func (s *documentService) Update(ctx context.Context, userID, id string, patch DocumentPatch) (*model.Document, error) {
	doc, err := s.ownedDocument(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if patch.Filename != nil {
		doc.Filename = cleanFilename(*patch.Filename)
	}
	if patch.Notes != nil {
		doc.Notes = blankToNil(patch.Notes)
	}
	doc.UpdatedAt = s.now()
	if err := model.ValidateDocument(doc); err != nil {
		return nil, err
	}
	stored, err := s.docs.Save(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	return stored, nil
}

func (s *documentService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.ownedDocument(ctx, userID, id); err != nil {
		return err
	}
	return s.docs.Delete(ctx, id)
}

func (s *documentService) Parse(ctx context.Context, userID, id string) (*model.Document, error) {
	return s.parse(ctx, userID, id, "")
}

func (s *documentService) parse(ctx context.Context, userID, id, contentType string) (*model.Document, error) {
	if s.parser == nil {
		return nil, parser.ErrDisabled
	}
	doc, err := s.ownedDocument(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	url, err := s.store.PresignGet(ctx, doc.StoragePath, s.settings.PresignExpiry)
	if err != nil {
		return nil, fmt.Errorf("presign: %w", err)
	}
	start := time.Now()
	text, err := s.parser.Parse(ctx, parser.Request{URL: url, Filename: doc.Filename, ContentType: contentType})
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	// Re-read so edits made while the parser was busy are not overwritten.
	latest, err := s.ownedDocument(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	latest.ParsedContent = &text
	latest.UpdatedAt = s.now()
	stored, err := s.docs.Save(ctx, latest)
	if err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	logger.From(ctx).Info("document parsed",
		logger.DocumentID(id), zap.Int("chars", len(text)), logger.Latency(time.Since(start)))
	return stored, nil
}

func (s *documentService) DownloadURL(ctx context.Context, userID, id string) (string, error) {
	doc, err := s.ownedDocument(ctx, userID, id)
	if err != nil {
		return "", err
	}
	url, err := s.store.PresignGet(ctx, doc.StoragePath, s.settings.PresignExpiry)
	if err != nil {
		return "", fmt.Errorf("presign: %w", err)
	}
	return url, nil
}

// ownedDocument loads an active document whose report is active and owned
// by userID.
func (s *documentService) ownedDocument(ctx context.Context, userID, id string) (*model.Document, error) {
	if userID == "" {
		return nil, ErrUserRequired
	}
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.docs.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil || doc.IsDeleted() {
		return nil, ErrNotFound
	}
	if _, err := ownedReport(ctx, s.reports, userID, doc.ReportID); err != nil {
		return nil, err
	}
	return doc, nil
}

// cleanFilename keeps only the final path element of a client filename.
func cleanFilename(name string) string {
	name = strings.TrimSpace(strings.ReplaceAll(name, `\`, "/"))
	if name == "" {
		return ""
	}
	base := path.Base(name)
	if base == "." || base == "/" {
		return ""
	}
	return base
}

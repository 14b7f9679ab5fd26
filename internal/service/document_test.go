package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"docvault/internal/model"
	"docvault/internal/parser"
	parserMocks "docvault/internal/parser/mocks"
	repoMocks "docvault/internal/repository/mocks"
	"docvault/internal/repository/repotest"
	"docvault/internal/storage"
	storeMocks "docvault/internal/storage/mocks"
)

// sha256("hello world")
const helloHash = "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"

type docFixture struct {
	reports *repoMocks.MockReportRepository
	docs    *repoMocks.MockDocumentRepository
	store   *storeMocks.MockStorage
	parser  *parserMocks.MockParser
}

func newDocFixture() *docFixture {
	return &docFixture{
		reports: new(repoMocks.MockReportRepository),
		docs:    new(repoMocks.MockDocumentRepository),
		store:   new(storeMocks.MockStorage),
		parser:  new(parserMocks.MockParser),
	}
}

func (f *docFixture) service(settings DocumentSettings) DocumentService {
	return NewDocumentService(f.reports, f.docs, f.store, f.parser, settings, testOpts()...)
}

func (f *docFixture) ownReport() *model.Report {
	r := repotest.NewReport(repotest.WithReportID("r1"), repotest.WithUser("alice"))
	f.reports.On("FindByID", mock.Anything, "r1").Return(r, nil)
	return r
}

func echoDocument(_ context.Context, d *model.Document) *model.Document { return d }

func putResult(_ context.Context, key string, _ io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
	return storage.ObjectInfo{Key: key, Size: opt.Size, ContentType: opt.ContentType}
}

// Duplicate detection is a lookup before insert with no unique constraint
// behind it. Two uploads of the same content that both pass the lookup are
// both stored.
func TestDocumentService_Upload_ConcurrentSameContentBothSaved(t *testing.T) {
	ctx := context.Background()
	f := newDocFixture()
	f.ownReport()

	var checked sync.WaitGroup
	checked.Add(2)
	f.docs.On("FindByHash", ctx, "r1", helloHash).Run(func(mock.Arguments) {
		checked.Done()
		checked.Wait()
	}).Return(nil, nil).Twice()
	f.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(putResult, nil).Twice()

	var mu sync.Mutex
	var saved []string
	f.docs.On("Save", ctx, mock.Anything).Run(func(args mock.Arguments) {
		mu.Lock()
		saved = append(saved, args.Get(1).(*model.Document).ID)
		mu.Unlock()
	}).Return(echoDocument, nil).Twice()

	var seq atomic.Int32
	ids := WithIDs(func() string { return fmt.Sprintf("doc-%d", seq.Add(1)) })
	svc := NewDocumentService(f.reports, f.docs, f.store, f.parser, DocumentSettings{}, append(testOpts(), ids)...)

	var g errgroup.Group
	for i := 0; i < 2; i++ {
		g.Go(func() error {
			_, err := svc.Upload(ctx, "alice", "r1", strings.NewReader("hello world"), "a.txt", "text/plain", 11)
			return err
		})
	}
	require.NoError(t, g.Wait())

	assert.ElementsMatch(t, []string{"doc-1", "doc-2"}, saved)
	f.docs.AssertNumberOfCalls(t, "FindByHash", 2)
	f.docs.AssertNumberOfCalls(t, "Save", 2)
	f.store.AssertNumberOfCalls(t, "Put", 2)
}

func TestDocumentService_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path", func(t *testing.T) {
		f := newDocFixture()
		f.ownReport()
		f.docs.On("FindByHash", ctx, "r1", helloHash).Return(nil, nil)
		f.store.On("Put", ctx, mock.MatchedBy(func(key string) bool {
			return strings.HasPrefix(key, "reports/r1/") && strings.HasSuffix(key, ".txt")
		}), mock.Anything, storage.PutObjectOptions{
			Size:        11,
			ContentType: "text/plain",
			Metadata:    map[string]string{"original-filename": "notes.txt", "sha256": helloHash},
		}).Return(putResult, nil)
		f.docs.On("Save", ctx, mock.MatchedBy(func(d *model.Document) bool {
			return d.ID == "gen-id" && d.ReportID == "r1" && d.FileHash == helloHash &&
				strings.HasPrefix(d.StoragePath, "reports/r1/") && d.CreatedAt.Equal(testNow)
		})).Return(echoDocument, nil)

		got, err := f.service(DocumentSettings{}).Upload(ctx, "alice", "r1",
			strings.NewReader("hello world"), `C:\Users\alice\notes.txt`, "text/plain", 11)
		require.NoError(t, err)
		assert.Equal(t, "notes.txt", got.Filename)
		assert.Nil(t, got.ParsedContent)
		f.docs.AssertExpectations(t)
		f.store.AssertExpectations(t)
		f.parser.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything)
	})

	t.Run("duplicate content is rejected before storage", func(t *testing.T) {
		f := newDocFixture()
		f.ownReport()
		existing := repotest.NewDocument("r1", repotest.WithDocumentID("d-old"), repotest.WithHash(helloHash))
		f.docs.On("FindByHash", ctx, "r1", helloHash).Return(existing, nil)

		_, err := f.service(DocumentSettings{}).Upload(ctx, "alice", "r1", strings.NewReader("hello world"), "a.txt", "text/plain", -1)
		require.ErrorIs(t, err, ErrDuplicate)
		var dup *DuplicateError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, "d-old", dup.Existing.ID)
		f.store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("declared size over limit", func(t *testing.T) {
		f := newDocFixture()
		f.ownReport()
		_, err := f.service(DocumentSettings{MaxBytes: 4}).Upload(ctx, "alice", "r1", strings.NewReader("hello"), "a.txt", "", 5)
		assert.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("actual size over limit", func(t *testing.T) {
		f := newDocFixture()
		f.ownReport()
		_, err := f.service(DocumentSettings{MaxBytes: 4}).Upload(ctx, "alice", "r1", strings.NewReader("hello"), "a.txt", "", -1)
		assert.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("nil reader", func(t *testing.T) {
		f := newDocFixture()
		_, err := f.service(DocumentSettings{}).Upload(ctx, "alice", "r1", nil, "a.txt", "", 0)
		assert.ErrorIs(t, err, ErrReaderNil)
	})

	t.Run("blank filename", func(t *testing.T) {
		f := newDocFixture()
		f.ownReport()
		_, err := f.service(DocumentSettings{}).Upload(ctx, "alice", "r1", strings.NewReader("x"), "  ", "", 1)
		assert.ErrorIs(t, err, model.ErrInvalid)
	})

	t.Run("foreign report", func(t *testing.T) {
		f := newDocFixture()
		f.ownReport()
		_, err := f.service(DocumentSettings{}).Upload(ctx, "mallory", "r1", strings.NewReader("x"), "a.txt", "", 1)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("storage error", func(t *testing.T) {
		f := newDocFixture()
		f.ownReport()
		f.docs.On("FindByHash", ctx, "r1", mock.Anything).Return(nil, nil)
		f.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(storage.ObjectInfo{}, errors.New("storage fail"))

		_, err := f.service(DocumentSettings{}).Upload(ctx, "alice", "r1", strings.NewReader("hello"), "a.txt", "", 5)
		assert.EqualError(t, err, "upload to storage: storage fail")
	})

	t.Run("save error rolls back the object", func(t *testing.T) {
		f := newDocFixture()
		f.ownReport()
		f.docs.On("FindByHash", ctx, "r1", mock.Anything).Return(nil, nil)
		f.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(putResult, nil)
		f.docs.On("Save", ctx, mock.Anything).Return(nil, errors.New("db fail"))
		f.store.On("Delete", ctx, mock.MatchedBy(func(key string) bool { return strings.HasPrefix(key, "reports/r1/") })).Return(nil)

		_, err := f.service(DocumentSettings{}).Upload(ctx, "alice", "r1", strings.NewReader("hello"), "a.txt", "", 5)
		assert.EqualError(t, err, "db save failed: db fail")
		f.store.AssertExpectations(t)
	})

	t.Run("save error and rollback error", func(t *testing.T) {
		f := newDocFixture()
		f.ownReport()
		f.docs.On("FindByHash", ctx, "r1", mock.Anything).Return(nil, nil)
		f.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(putResult, nil)
		f.docs.On("Save", ctx, mock.Anything).Return(nil, errors.New("db fail"))
		f.store.On("Delete", ctx, mock.Anything).Return(errors.New("rollback fail"))

		_, err := f.service(DocumentSettings{}).Upload(ctx, "alice", "r1", strings.NewReader("hello"), "a.txt", "", 5)
		assert.EqualError(t, err, "db save failed: db fail; rollback delete failed: rollback fail")
	})

	t.Run("auto parse stores parsed text", func(t *testing.T) {
		f := newDocFixture()
		f.ownReport()
		f.docs.On("FindByHash", ctx, "r1", helloHash).Return(nil, nil)
		f.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(putResult, nil)
		f.store.On("PresignGet", mock.Anything, mock.Anything, mock.Anything).Return("https://blob/signed", nil)
		f.parser.On("Parse", mock.Anything, parser.Request{URL: "https://blob/signed", Filename: "a.txt", ContentType: "text/plain"}).
			Return("hello world", nil)

		docs := &lastSaved{MockDocumentRepository: f.docs}
		svc := NewDocumentService(f.reports, docs, f.store, f.parser, DocumentSettings{AutoParse: true}, testOpts()...)

		got, err := svc.Upload(ctx, "alice", "r1", strings.NewReader("hello world"), "a.txt", "text/plain", 11)
		require.NoError(t, err)
		assert.Nil(t, got.ParsedContent)
		require.NotNil(t, docs.last.ParsedContent)
		assert.Equal(t, "hello world", *docs.last.ParsedContent)
		f.parser.AssertExpectations(t)
	})

	t.Run("auto parse failure does not fail the upload", func(t *testing.T) {
		f := newDocFixture()
		f.ownReport()
		f.docs.On("FindByHash", ctx, "r1", helloHash).Return(nil, nil)
		f.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).Return(putResult, nil)
		f.store.On("PresignGet", mock.Anything, mock.Anything, mock.Anything).Return("https://blob/signed", nil)
		f.parser.On("Parse", mock.Anything, mock.Anything).Return("", errors.New("parser down"))

		docs := &lastSaved{MockDocumentRepository: f.docs}
		svc := NewDocumentService(f.reports, docs, f.store, f.parser, DocumentSettings{AutoParse: true}, testOpts()...)

		_, err := svc.Upload(ctx, "alice", "r1", strings.NewReader("hello world"), "a.txt", "text/plain", 11)
		require.NoError(t, err)
		assert.Nil(t, docs.last.ParsedContent)
	})
}

// lastSaved serves Save and FindByID from memory and delegates the rest.
type lastSaved struct {
	*repoMocks.MockDocumentRepository
	last *model.Document
}

func (l *lastSaved) Save(_ context.Context, d *model.Document) (*model.Document, error) {
	c := *d
	l.last = &c
	out := c
	return &out, nil
}

func (l *lastSaved) FindByID(_ context.Context, id string) (*model.Document, error) {
	if l.last == nil || l.last.ID != id {
		return nil, nil
	}
	c := *l.last
	return &c, nil
}

func (f *docFixture) ownDocument(ctx context.Context, opts ...repotest.DocumentOption) *model.Document {
	f.ownReport()
	d := repotest.NewDocument("r1", append([]repotest.DocumentOption{repotest.WithDocumentID("d1")}, opts...)...)
	f.docs.On("FindByID", ctx, "d1").Return(d, nil)
	return d
}

func TestDocumentService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("owner", func(t *testing.T) {
		f := newDocFixture()
		f.ownDocument(ctx)
		got, err := f.service(DocumentSettings{}).Get(ctx, "alice", "d1")
		require.NoError(t, err)
		assert.Equal(t, "d1", got.ID)
	})

	t.Run("other user", func(t *testing.T) {
		f := newDocFixture()
		f.ownDocument(ctx)
		_, err := f.service(DocumentSettings{}).Get(ctx, "bob", "d1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("soft-deleted", func(t *testing.T) {
		f := newDocFixture()
		f.ownDocument(ctx, repotest.DocumentDeletedAt(testNow))
		_, err := f.service(DocumentSettings{}).Get(ctx, "alice", "d1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("report deleted", func(t *testing.T) {
		f := newDocFixture()
		f.reports.On("FindByID", ctx, "r1").Return(repotest.NewReport(repotest.WithReportID("r1"), repotest.WithUser("alice"), repotest.ReportDeletedAt(testNow)), nil)
		f.docs.On("FindByID", ctx, "d1").Return(repotest.NewDocument("r1", repotest.WithDocumentID("d1")), nil)
		_, err := f.service(DocumentSettings{}).Get(ctx, "alice", "d1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := newDocFixture().service(DocumentSettings{}).Get(ctx, "alice", "")
		assert.ErrorIs(t, err, ErrIDRequired)
	})
}

func TestDocumentService_ListAndSearch(t *testing.T) {
	ctx := context.Background()
	items := []model.Document{*repotest.NewDocument("r1")}

	t.Run("list", func(t *testing.T) {
		f := newDocFixture()
		f.ownReport()
		f.docs.On("FindByReport", ctx, "r1", true).Return(items, nil)

		got, err := f.service(DocumentSettings{}).List(ctx, "alice", "r1", true)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("search", func(t *testing.T) {
		f := newDocFixture()
		f.ownReport()
		f.docs.On("Search", ctx, "r1", "abc").Return(items, nil)

		got, err := f.service(DocumentSettings{}).Search(ctx, "alice", "r1", "abc")
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})

	t.Run("search foreign report", func(t *testing.T) {
		f := newDocFixture()
		f.ownReport()
		_, err := f.service(DocumentSettings{}).Search(ctx, "bob", "r1", "abc")
		assert.ErrorIs(t, err, ErrNotFound)
		f.docs.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDocumentService_Update(t *testing.T) {
	ctx := context.Background()
	f := newDocFixture()
	f.ownDocument(ctx, repotest.WithNotes("old"))
	f.docs.On("Save", ctx, mock.Anything).Return(echoDocument, nil)

	got, err := f.service(DocumentSettings{}).Update(ctx, "alice", "d1", DocumentPatch{Filename: strPtr("renamed.pdf"), Notes: strPtr(" ")})
	require.NoError(t, err)
	assert.Equal(t, "renamed.pdf", got.Filename)
	assert.Nil(t, got.Notes)
	assert.True(t, testNow.Equal(got.UpdatedAt))
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()
	f := newDocFixture()
	f.ownDocument(ctx)
	f.docs.On("Delete", ctx, "d1").Return(nil)

	require.NoError(t, f.service(DocumentSettings{}).Delete(ctx, "alice", "d1"))
	f.docs.AssertExpectations(t)
	f.store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDocumentService_Parse(t *testing.T) {
	ctx := context.Background()

	t.Run("stores parsed text", func(t *testing.T) {
		f := newDocFixture()
		d := f.ownDocument(ctx, repotest.WithFilename("scan.pdf"))
		f.store.On("PresignGet", ctx, d.StoragePath, DefaultPresignExpiry).Return("https://blob/signed", nil)
		f.parser.On("Parse", ctx, parser.Request{URL: "https://blob/signed", Filename: "scan.pdf"}).Return("text", nil)
		f.docs.On("Save", ctx, mock.MatchedBy(func(d *model.Document) bool {
			return d.ParsedContent != nil && *d.ParsedContent == "text"
		})).Return(echoDocument, nil)

		got, err := f.service(DocumentSettings{}).Parse(ctx, "alice", "d1")
		require.NoError(t, err)
		assert.True(t, got.IsParsed())
	})

	t.Run("parser failure", func(t *testing.T) {
		f := newDocFixture()
		f.ownDocument(ctx)
		f.store.On("PresignGet", ctx, mock.Anything, mock.Anything).Return("u", nil)
		f.parser.On("Parse", ctx, mock.Anything).Return("", errors.New("bad gateway"))

		_, err := f.service(DocumentSettings{}).Parse(ctx, "alice", "d1")
		assert.EqualError(t, err, "parse document: bad gateway")
		f.docs.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("no parser configured", func(t *testing.T) {
		f := newDocFixture()
		svc := NewDocumentService(f.reports, f.docs, f.store, nil, DocumentSettings{})
		_, err := svc.Parse(ctx, "alice", "d1")
		assert.ErrorIs(t, err, parser.ErrDisabled)
	})
}

func TestDocumentService_DownloadURL(t *testing.T) {
	ctx := context.Background()
	f := newDocFixture()
	d := f.ownDocument(ctx)
	f.store.On("PresignGet", ctx, d.StoragePath, DefaultPresignExpiry).Return("https://blob/signed", nil)

	got, err := f.service(DocumentSettings{}).DownloadURL(ctx, "alice", "d1")
	require.NoError(t, err)
	assert.Equal(t, "https://blob/signed", got)
}

func TestCleanFilename(t *testing.T) {
	assert.Equal(t, "a.pdf", cleanFilename("a.pdf"))
	assert.Equal(t, "b.pdf", cleanFilename("/tmp/x/b.pdf"))
	assert.Equal(t, "c.pdf", cleanFilename(`C:\docs\c.pdf`))
	assert.Equal(t, "", cleanFilename("   "))
	assert.Equal(t, "", cleanFilename("/"))
}

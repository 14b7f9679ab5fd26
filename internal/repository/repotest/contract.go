package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault/internal/model"
	"docvault/internal/repository"
)

// Repos is what a contract suite needs from an adapter under test.
type Repos struct {
	Reports   repository.ReportRepository
	Documents repository.DocumentRepository
}

// NewReposFunc returns empty, isolated repositories for one subtest.
type NewReposFunc func(t *testing.T) Repos

// RunReportRepositoryContract checks the ReportRepository behaviour every
// adapter must share.
func RunReportRepositoryContract(t *testing.T, newRepos NewReposFunc) {
	ctx := context.Background()

	t.Run("find missing returns nil", func(t *testing.T) {
		repo := newRepos(t).Reports
		for _, id := range []string{"00000000-0000-0000-0000-000000000000", "does-not-exist"} {
			got, err := repo.FindByID(ctx, id)
			require.NoError(t, err, id)
			assert.Nil(t, got, id)
		}
	})

	t.Run("save inserts then updates mutable fields only", func(t *testing.T) {
		repo := newRepos(t).Reports
		r := NewReport(WithTitle("Trip"), WithUser("alice"))

		stored, err := repo.Save(ctx, r)
		require.NoError(t, err)
		assert.Equal(t, "Trip", stored.Title)
		assert.Equal(t, "alice", stored.UserID)

		later := Epoch.Add(time.Hour)
		changed := *r
		changed.Title = "Trip 2026"
		changed.Description = strPtr("Lisbon")
		changed.UserID = "mallory"
		changed.CreatedAt = later
		changed.UpdatedAt = later

		updated, err := repo.Save(ctx, &changed)
		require.NoError(t, err)
		assert.Equal(t, "Trip 2026", updated.Title)
		assert.Equal(t, "Lisbon", *updated.Description)
		assert.True(t, later.Equal(updated.UpdatedAt))
		assert.Equal(t, "alice", updated.UserID)
		assert.True(t, Epoch.Equal(updated.CreatedAt))
	})

	t.Run("find by user filters deleted unless asked", func(t *testing.T) {
		repo := newRepos(t).Reports
		old := mustSaveReport(t, repo, NewReport(CreatedAt(Epoch)))
		mid := mustSaveReport(t, repo, NewReport(CreatedAt(Epoch.Add(time.Minute))))
		newest := mustSaveReport(t, repo, NewReport(CreatedAt(Epoch.Add(2*time.Minute))))
		mustSaveReport(t, repo, NewReport(WithUser("someone-else")))
		require.NoError(t, repo.Delete(ctx, mid.ID))

		active, err := repo.FindByUser(ctx, "user-1", false)
		require.NoError(t, err)
		assert.Equal(t, []string{newest.ID, old.ID}, reportIDs(active))

		all, err := repo.FindByUser(ctx, "user-1", true)
		require.NoError(t, err)
		assert.Equal(t, []string{newest.ID, mid.ID, old.ID}, reportIDs(all))
	})

	t.Run("delete is soft and idempotent", func(t *testing.T) {
		repo := newRepos(t).Reports
		r := mustSaveReport(t, repo, NewReport())

		require.NoError(t, repo.Delete(ctx, r.ID))
		got, err := repo.FindByID(ctx, r.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.IsDeleted())
		assert.False(t, got.DeletedAt.Before(got.CreatedAt))

		assert.NoError(t, repo.Delete(ctx, r.ID))
		assert.NoError(t, repo.Delete(ctx, "does-not-exist"))
	})

	t.Run("search title and description case-insensitively", func(t *testing.T) {
		repo := newRepos(t).Reports
		byTitle := mustSaveReport(t, repo, NewReport(WithTitle("Quarterly ABC"), CreatedAt(Epoch)))
		byDesc := mustSaveReport(t, repo, NewReport(WithTitle("Other"), WithDescription("about abc things"), CreatedAt(Epoch.Add(time.Minute))))
		deleted := mustSaveReport(t, repo, NewReport(WithTitle("abc deleted")))
		mustSaveReport(t, repo, NewReport(WithTitle("abc elsewhere"), WithUser("bob")))
		mustSaveReport(t, repo, NewReport(WithTitle("unrelated")))
		require.NoError(t, repo.Delete(ctx, deleted.ID))

		got, err := repo.Search(ctx, "user-1", "aBc")
		require.NoError(t, err)
		assert.Equal(t, []string{byDesc.ID, byTitle.ID}, reportIDs(got))
	})

	t.Run("search folds non-ASCII case", func(t *testing.T) {
		repo := newRepos(t).Reports
		trip := mustSaveReport(t, repo, NewReport(WithTitle("Über Zürich Reisebericht")))
		mustSaveReport(t, repo, NewReport(WithTitle("Uber Zurich")))

		for _, q := range []string{"über", "ZÜRICH", "reiseBERICHT"} {
			got, err := repo.Search(ctx, "user-1", q)
			require.NoError(t, err, q)
			assert.Equal(t, []string{trip.ID}, reportIDs(got), q)
		}
	})

	t.Run("search treats wildcards literally", func(t *testing.T) {
		repo := newRepos(t).Reports
		pct := mustSaveReport(t, repo, NewReport(WithTitle("growth 50% yoy")))
		mustSaveReport(t, repo, NewReport(WithTitle("growth 500 yoy")))

		got, err := repo.Search(ctx, "user-1", "50%")
		require.NoError(t, err)
		assert.Equal(t, []string{pct.ID}, reportIDs(got))
	})
}

// RunDocumentRepositoryContract checks the DocumentRepository behaviour every
// adapter must share, including the deduplication scenario.
func RunDocumentRepositoryContract(t *testing.T, newRepos NewReposFunc) {
	ctx := context.Background()

	setup := func(t *testing.T) (repository.DocumentRepository, *model.Report) {
		repos := newRepos(t)
		r := mustSaveReport(t, repos.Reports, NewReport(WithTitle("Trip")))
		return repos.Documents, r
	}

	t.Run("find missing returns nil", func(t *testing.T) {
		repo, _ := setup(t)
		for _, id := range []string{"00000000-0000-0000-0000-000000000000", "does-not-exist"} {
			got, err := repo.FindByID(ctx, id)
			require.NoError(t, err, id)
			assert.Nil(t, got, id)
		}

		byReport, err := repo.FindByReport(ctx, "no-such-report", true)
		require.NoError(t, err)
		assert.Empty(t, byReport)
		byHash, err := repo.FindByHash(ctx, "no-such-report", "h")
		require.NoError(t, err)
		assert.Nil(t, byHash)
	})

	t.Run("save round trips every column", func(t *testing.T) {
		repo, r := setup(t)
		d := NewDocument(r.ID, WithFilename("scan.pdf"), WithNotes("n"), WithParsedContent("text"))

		stored, err := repo.Save(ctx, d)
		require.NoError(t, err)
		assert.Equal(t, d.ID, stored.ID)
		assert.Equal(t, r.ID, stored.ReportID)
		assert.Equal(t, "scan.pdf", stored.Filename)
		assert.Equal(t, d.FileHash, stored.FileHash)
		assert.Equal(t, d.StoragePath, stored.StoragePath)
		assert.Equal(t, "n", *stored.Notes)
		assert.Equal(t, "text", *stored.ParsedContent)
		assert.True(t, d.CreatedAt.Equal(stored.CreatedAt))
		assert.Nil(t, stored.DeletedAt)
	})

	t.Run("update never rewrites identity or hash", func(t *testing.T) {
		repos := newRepos(t)
		r := mustSaveReport(t, repos.Reports, NewReport())
		other := mustSaveReport(t, repos.Reports, NewReport())
		repo := repos.Documents
		d := mustSaveDocument(t, repo, NewDocument(r.ID, WithHash("h1")))

		changed := *d
		changed.ReportID = other.ID
		changed.FileHash = "forged"
		changed.StoragePath = "elsewhere"
		changed.Filename = "renamed.pdf"
		changed.Notes = strPtr("edited")
		changed.ParsedContent = strPtr("parsed")
		changed.UpdatedAt = Epoch.Add(time.Hour)

		updated, err := repo.Save(ctx, &changed)
		require.NoError(t, err)
		assert.Equal(t, r.ID, updated.ReportID)
		assert.Equal(t, "h1", updated.FileHash)
		assert.Equal(t, d.StoragePath, updated.StoragePath)
		assert.Equal(t, "renamed.pdf", updated.Filename)
		assert.Equal(t, "edited", *updated.Notes)
		assert.Equal(t, "parsed", *updated.ParsedContent)
		assert.True(t, Epoch.Add(time.Hour).Equal(updated.UpdatedAt))

		moved, err := repo.FindByReport(ctx, other.ID, true)
		require.NoError(t, err)
		assert.Empty(t, moved)
	})

	t.Run("find by hash matches only active documents in the report", func(t *testing.T) {
		repos := newRepos(t)
		r := mustSaveReport(t, repos.Reports, NewReport())
		other := mustSaveReport(t, repos.Reports, NewReport())
		repo := repos.Documents
		d := mustSaveDocument(t, repo, NewDocument(r.ID, WithHash("h1")))

		got, err := repo.FindByHash(ctx, r.ID, "h1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, d.ID, got.ID)

		got, err = repo.FindByHash(ctx, other.ID, "h1")
		require.NoError(t, err)
		assert.Nil(t, got)

		require.NoError(t, repo.Delete(ctx, d.ID))
		got, err = repo.FindByHash(ctx, r.ID, "h1")
		require.NoError(t, err)
		assert.Nil(t, got)

		row, err := repo.FindByID(ctx, d.ID)
		require.NoError(t, err)
		require.NotNil(t, row)
		assert.True(t, row.IsDeleted())
		assert.False(t, row.UpdatedAt.Before(*row.DeletedAt))
	})

	t.Run("delete missing id is a no-op", func(t *testing.T) {
		repo, r := setup(t)
		d := mustSaveDocument(t, repo, NewDocument(r.ID))

		assert.NoError(t, repo.Delete(ctx, "no-such-document"))

		all, err := repo.FindByReport(ctx, r.ID, true)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, d.ID, all[0].ID)
		assert.False(t, all[0].IsDeleted())
	})

	t.Run("find by report honours include deleted", func(t *testing.T) {
		repo, r := setup(t)
		oldest := mustSaveDocument(t, repo, NewDocument(r.ID, DocumentCreatedAt(Epoch)))
		gone := mustSaveDocument(t, repo, NewDocument(r.ID, DocumentCreatedAt(Epoch.Add(time.Minute))))
		newest := mustSaveDocument(t, repo, NewDocument(r.ID, DocumentCreatedAt(Epoch.Add(2*time.Minute))))
		require.NoError(t, repo.Delete(ctx, gone.ID))

		active, err := repo.FindByReport(ctx, r.ID, false)
		require.NoError(t, err)
		assert.Equal(t, []string{newest.ID, oldest.ID}, documentIDs(active))
		for _, d := range active {
			assert.True(t, d.IsActive())
		}

		all, err := repo.FindByReport(ctx, r.ID, true)
		require.NoError(t, err)
		assert.Equal(t, []string{newest.ID, gone.ID, oldest.ID}, documentIDs(all))
	})

	t.Run("search is case-insensitive and skips deleted", func(t *testing.T) {
		repo, r := setup(t)
		byNotes := mustSaveDocument(t, repo, NewDocument(r.ID, WithNotes("see ABC appendix"), DocumentCreatedAt(Epoch)))
		byName := mustSaveDocument(t, repo, NewDocument(r.ID, WithFilename("abc-scan.PDF"), DocumentCreatedAt(Epoch.Add(time.Minute))))
		byText := mustSaveDocument(t, repo, NewDocument(r.ID, WithParsedContent("...xAbCx..."), DocumentCreatedAt(Epoch.Add(2*time.Minute))))
		deleted := mustSaveDocument(t, repo, NewDocument(r.ID, WithNotes("ABC too")))
		mustSaveDocument(t, repo, NewDocument(r.ID, WithNotes("nothing here")))
		require.NoError(t, repo.Delete(ctx, deleted.ID))

		got, err := repo.Search(ctx, r.ID, "abc")
		require.NoError(t, err)
		assert.Equal(t, []string{byText.ID, byName.ID, byNotes.ID}, documentIDs(got))
	})

	t.Run("search folds non-ASCII case", func(t *testing.T) {
		repo, r := setup(t)
		doc := mustSaveDocument(t, repo, NewDocument(r.ID, WithNotes("Notizen: ÄRZTEHAUS Ångström")))
		mustSaveDocument(t, repo, NewDocument(r.ID, WithNotes("Arztehaus")))

		for _, q := range []string{"ärztehaus", "ÅNGSTRÖM", "åNgStRöM"} {
			got, err := repo.Search(ctx, r.ID, q)
			require.NoError(t, err, q)
			assert.Equal(t, []string{doc.ID}, documentIDs(got), q)
		}
	})

	t.Run("hash is reusable after delete", func(t *testing.T) {
		repo, r := setup(t)
		d1 := mustSaveDocument(t, repo, NewDocument(r.ID, WithHash("h1")))

		got, err := repo.FindByHash(ctx, r.ID, "h1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, d1.ID, got.ID)

		require.NoError(t, repo.Delete(ctx, d1.ID))
		got, err = repo.FindByHash(ctx, r.ID, "h1")
		require.NoError(t, err)
		assert.Nil(t, got)

		d2, err := repo.Save(ctx, NewDocument(r.ID, WithHash("h1")))
		require.NoError(t, err)
		got, err = repo.FindByHash(ctx, r.ID, "h1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, d2.ID, got.ID)
	})
}

func mustSaveReport(t *testing.T, repo repository.ReportRepository, r *model.Report) *model.Report {
	t.Helper()
	out, err := repo.Save(context.Background(), r)
	require.NoError(t, err)
	require.NotNil(t, out)
	return out
}

func mustSaveDocument(t *testing.T, repo repository.DocumentRepository, d *model.Document) *model.Document {
	t.Helper()
	out, err := repo.Save(context.Background(), d)
	require.NoError(t, err)
	require.NotNil(t, out)
	return out
}

func reportIDs(rs []model.Report) []string {
	ids := make([]string, 0, len(rs))
	for _, r := range rs {
		ids = append(ids, r.ID)
	}
	return ids
}

func documentIDs(ds []model.Document) []string {
	ids := make([]string, 0, len(ds))
	for _, d := range ds {
		ids = append(ids, d.ID)
	}
	return ids
}

func strPtr(s string) *string { return &s }

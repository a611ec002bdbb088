package ingestion_engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/olusola-dev/askbase/internal/core"
	"github.com/olusola-dev/askbase/internal/core/extract"
	"github.com/olusola-dev/askbase/internal/core/vectorstore"
	"github.com/olusola-dev/askbase/internal/models"
)

type memDB struct {
	core.DbClient

	mu       sync.Mutex
	account  *models.Account
	docs     map[string]*models.SourceDocument
	eligible []string
}

func newMemDB(account *models.Account, docs ...*models.SourceDocument) *memDB {
	m := &memDB{account: account, docs: map[string]*models.SourceDocument{}}
	for _, d := range docs {
		m.docs[d.ID] = d
		m.eligible = append(m.eligible, d.ID)
	}
	return m
}

func (m *memDB) GetAccountByUniqueID(_ context.Context, id string) (*models.Account, error) {
	if m.account != nil && m.account.AccountUniqueID == id {
		return m.account, nil
	}
	return nil, nil
}

func (m *memDB) ListEligibleSourceDocuments(_ context.Context, _ string, includeProcessed bool) ([]models.SourceDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SourceDocument
	for _, id := range m.eligible {
		d := m.docs[id]
		if !d.IncludedInSourceData {
			continue
		}
		if !includeProcessed && d.ProcessedToSourceData {
			continue
		}
		out = append(out, *d)
	}
	return out, nil
}

func (m *memDB) UpdateSourceDocumentStatus(_ context.Context, id, status, errorMessage string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[id].Status = status
	m.docs[id].ErrorMessage = errorMessage
	return nil
}

func (m *memDB) MarkSourceDocumentProcessed(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[id].ProcessedToSourceData = true
	m.docs[id].Status = models.StatusCompleted
	m.docs[id].ErrorMessage = ""
	return nil
}

func (m *memDB) doc(id string) models.SourceDocument {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.docs[id]
}

type memObj struct {
	core.ObjectClient

	mu    sync.Mutex
	files map[string][]byte
}

func (m *memObj) GetFile(_ context.Context, _ string, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.files[key]; ok {
		return b, nil
	}
	return nil, core.ErrDocumentNotFound
}

type memCollection struct {
	core.Collection

	mu    sync.Mutex
	ids   []string
	texts []string
	metas []map[string]string
}

func (c *memCollection) Add(_ context.Context, ids, texts []string, metas []map[string]string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ids = append(c.ids, ids...)
	c.texts = append(c.texts, texts...)
	c.metas = append(c.metas, metas...)
	return nil
}

type memStore struct {
	core.VectorStore

	col     *memCollection
	dropped []string
}

func (s *memStore) GetOrCreateCollection(_ context.Context, name string) (core.Collection, error) {
	return s.col, nil
}

func (s *memStore) DeleteCollection(_ context.Context, name string) error {
	s.dropped = append(s.dropped, name)
	return core.ErrCollectionNotFound
}

func testAccount() *models.Account {
	return &models.Account{
		AccountUniqueID: "acct-1",
		RelevanceScore:  0.7,
		KValue:          3,
		ChunkSize:       8,
		ChunkOverlap:    2,
	}
}

func newTestIngestor(db *memDB, obj *memObj, store *memStore) *DocumentIngestor {
	extractor := extract.NewExtractor(nil, zap.NewNop())
	return NewDocumentIngestor(db, obj, store, extractor, "final-bucket", zap.NewNop())
}

func TestIngestAccountHappyPath(t *testing.T) {
	doc := &models.SourceDocument{
		ID: "doc-1", AccountUniqueID: "acct-1",
		FileName: "notes.md", StorageKey: "acct-1/notes.md",
		IncludedInSourceData: true,
	}
	db := newMemDB(testAccount(), doc)
	obj := &memObj{files: map[string][]byte{
		"acct-1/notes.md": []byte("alpha beta gamma delta"),
	}}
	store := &memStore{col: &memCollection{}}

	report, err := newTestIngestor(db, obj, store).IngestAccount(context.Background(), "acct-1", false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Zero(t, report.Failed)

	got := db.doc("doc-1")
	assert.True(t, got.ProcessedToSourceData)
	assert.Equal(t, models.StatusCompleted, got.Status)
	assert.Empty(t, got.ErrorMessage)

	require.NotEmpty(t, store.col.ids)
	assert.Len(t, store.col.texts, len(store.col.ids))
	for _, meta := range store.col.metas {
		assert.Equal(t, "notes.md", meta[models.MetaSource])
		assert.Contains(t, meta, models.MetaStart)
	}
}

func TestIngestAccountFailureIsolation(t *testing.T) {
	good := &models.SourceDocument{
		ID: "doc-good", AccountUniqueID: "acct-1",
		FileName: "a.txt", StorageKey: "acct-1/a.txt",
		IncludedInSourceData: true,
	}
	bad := &models.SourceDocument{
		ID: "doc-bad", AccountUniqueID: "acct-1",
		FileName: "image.png", StorageKey: "acct-1/image.png",
		IncludedInSourceData: true,
	}
	db := newMemDB(testAccount(), good, bad)
	obj := &memObj{files: map[string][]byte{
		"acct-1/a.txt":     []byte("usable content"),
		"acct-1/image.png": []byte{0x89, 0x50},
	}}
	store := &memStore{col: &memCollection{}}

	report, err := newTestIngestor(db, obj, store).IngestAccount(context.Background(), "acct-1", false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Processed)
	assert.Equal(t, 1, report.Failed)

	assert.Equal(t, models.StatusCompleted, db.doc("doc-good").Status)
	failed := db.doc("doc-bad")
	assert.Equal(t, models.StatusFailed, failed.Status)
	assert.NotEmpty(t, failed.ErrorMessage)
	assert.False(t, failed.ProcessedToSourceData)
}

func TestIngestAccountZeroChunksMarkedProcessed(t *testing.T) {
	doc := &models.SourceDocument{
		ID: "doc-empty", AccountUniqueID: "acct-1",
		FileName: "blank.txt", StorageKey: "acct-1/blank.txt",
		IncludedInSourceData: true,
	}
	db := newMemDB(testAccount(), doc)
	obj := &memObj{files: map[string][]byte{
		"acct-1/blank.txt": []byte("   \n\t  "),
	}}
	store := &memStore{col: &memCollection{}}

	report, err := newTestIngestor(db, obj, store).IngestAccount(context.Background(), "acct-1", false)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Failed)

	// Marked processed so it is not re-selected forever.
	got := db.doc("doc-empty")
	assert.True(t, got.ProcessedToSourceData)
	assert.Empty(t, store.col.ids)
}

func TestIngestAccountReplaceDropsCollection(t *testing.T) {
	processed := &models.SourceDocument{
		ID: "doc-old", AccountUniqueID: "acct-1",
		FileName: "old.txt", StorageKey: "acct-1/old.txt",
		IncludedInSourceData: true, ProcessedToSourceData: true,
	}
	db := newMemDB(testAccount(), processed)
	obj := &memObj{files: map[string][]byte{
		"acct-1/old.txt": []byte("already embedded once"),
	}}
	store := &memStore{col: &memCollection{}}
	ing := newTestIngestor(db, obj, store)

	// Incremental run sees nothing to do.
	report, err := ing.IngestAccount(context.Background(), "acct-1", false)
	require.NoError(t, err)
	assert.Zero(t, report.Processed)
	assert.Empty(t, store.dropped)

	// Replace drops the collection (a missing one is tolerated) and
	// re-embeds processed documents.
	report, err = ing.IngestAccount(context.Background(), "acct-1", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"collection-acct-1"}, store.dropped)
	assert.Equal(t, 1, report.Processed)
	assert.NotEmpty(t, store.col.ids)
}

// unitEmbedder returns the same unit vector for any text; only entry
// counts matter here, not similarity ordering.
type unitEmbedder struct{}

func (unitEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return []float32{0.6, 0.8, 0}, nil
}

func (e unitEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for n := range texts {
		out[n], _ = e.EmbedQuery(ctx, texts[n])
	}
	return out, nil
}

func TestIngestAccountReplaceIsIdempotent(t *testing.T) {
	doc := &models.SourceDocument{
		ID: "doc-1", AccountUniqueID: "acct-1",
		FileName: "notes.txt", StorageKey: "acct-1/notes.txt",
		IncludedInSourceData: true, ProcessedToSourceData: true,
	}
	db := newMemDB(testAccount(), doc)
	obj := &memObj{files: map[string][]byte{
		"acct-1/notes.txt": []byte("alpha beta gamma delta"),
	}}
	store, err := vectorstore.NewChromemStore(t.TempDir(), unitEmbedder{})
	require.NoError(t, err)

	extractor := extract.NewExtractor(nil, zap.NewNop())
	ing := NewDocumentIngestor(db, obj, store, extractor, "final-bucket", zap.NewNop())
	ctx := context.Background()

	// Two replace runs over unchanged documents must leave the same
	// number of entries in the collection, not accumulate.
	var counts [2]int
	for run := range counts {
		report, err := ing.IngestAccount(ctx, "acct-1", true)
		require.NoError(t, err)
		require.Equal(t, 1, report.Processed)

		col, err := store.GetCollection(ctx, vectorstore.CollectionName("acct-1"))
		require.NoError(t, err)
		counts[run], err = col.Count(ctx)
		require.NoError(t, err)
		require.Positive(t, counts[run])
	}
	assert.Equal(t, counts[0], counts[1])
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

type tracingDB struct {
	*memDB
	log *eventLog
}

func (d *tracingDB) GetAccountByUniqueID(ctx context.Context, id string) (*models.Account, error) {
	d.log.add("load")
	return d.memDB.GetAccountByUniqueID(ctx, id)
}

// gatedStore parks the replace run inside the collection drop until the
// test releases it, keeping the account lock held.
type gatedStore struct {
	core.VectorStore

	col     *memCollection
	log     *eventLog
	entered chan struct{}
	gate    chan struct{}
}

func (s *gatedStore) GetOrCreateCollection(context.Context, string) (core.Collection, error) {
	s.log.add("open")
	return s.col, nil
}

func (s *gatedStore) DeleteCollection(context.Context, string) error {
	s.log.add("drop")
	s.entered <- struct{}{}
	<-s.gate
	return core.ErrCollectionNotFound
}

func TestIngestAccountSerializedPerAccount(t *testing.T) {
	doc := &models.SourceDocument{
		ID: "doc-1", AccountUniqueID: "acct-1",
		FileName: "notes.txt", StorageKey: "acct-1/notes.txt",
		IncludedInSourceData: true, ProcessedToSourceData: true,
	}
	log := &eventLog{}
	db := &tracingDB{memDB: newMemDB(testAccount(), doc), log: log}
	obj := &memObj{files: map[string][]byte{
		"acct-1/notes.txt": []byte("already embedded once"),
	}}
	store := &gatedStore{
		col:     &memCollection{},
		log:     log,
		entered: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	extractor := extract.NewExtractor(nil, zap.NewNop())
	ing := NewDocumentIngestor(db, obj, store, extractor, "final-bucket", zap.NewNop())

	replaceDone := make(chan struct{})
	go func() {
		defer close(replaceDone)
		_, _ = ing.IngestAccount(context.Background(), "acct-1", true)
	}()
	<-store.entered

	incrementalDone := make(chan struct{})
	go func() {
		defer close(incrementalDone)
		_, _ = ing.IngestAccount(context.Background(), "acct-1", false)
	}()

	// The replace run holds the account lock inside the drop, so the
	// incremental run must not have started its work yet.
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"load", "drop"}, log.snapshot())

	close(store.gate)
	<-replaceDone
	<-incrementalDone

	// The incremental run's account load comes only after the replace
	// run released the lock; it then finds nothing unprocessed.
	assert.Equal(t, []string{"load", "drop", "open", "load"}, log.snapshot())
}

func TestIngestAccountUnknownAccount(t *testing.T) {
	db := newMemDB(testAccount())
	ing := newTestIngestor(db, &memObj{}, &memStore{col: &memCollection{}})

	_, err := ing.IngestAccount(context.Background(), "nobody", false)
	assert.ErrorIs(t, err, core.ErrAccountNotFound)
}

func TestIngestAccountExcludedDocumentsIgnored(t *testing.T) {
	excluded := &models.SourceDocument{
		ID: "doc-x", AccountUniqueID: "acct-1",
		FileName: "x.txt", StorageKey: "acct-1/x.txt",
		IncludedInSourceData: false,
	}
	db := newMemDB(testAccount(), excluded)
	store := &memStore{col: &memCollection{}}

	report, err := newTestIngestor(db, &memObj{}, store).IngestAccount(context.Background(), "acct-1", false)
	require.NoError(t, err)
	assert.Zero(t, report.Processed+report.Failed+report.Skipped)
	assert.Empty(t, store.col.ids)
}

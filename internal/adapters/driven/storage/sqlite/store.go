package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/atticus-labs/lexrag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/atticus-labs/lexrag/internal/core/domain"
	"github.com/atticus-labs/lexrag/internal/core/ports/driven"
)

var _ driven.DocumentStore = (*Store)(nil)

// Store is a SQLite-backed document and embedding store.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.lexrag/data/lexrag.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".lexrag", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "lexrag.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveDocumentWithEmbedding creates or replaces a document and its
// embedding for the embedding's model in one transaction. A re-save
// preserves the original created_at.
func (s *Store) SaveDocumentWithEmbedding(ctx context.Context, doc *domain.Document, emb domain.Embedding) error {
	if doc.UUID == "" || doc.UUID != emb.DocumentUUID {
		return fmt.Errorf("document uuid and embedding uuid must match: %w", domain.ErrInvalidInput)
	}
	if err := emb.Validate(); err != nil {
		return err
	}

	metadataJSON, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (uuid, filename, petitioner, respondent, summary, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(uuid) DO UPDATE SET
			filename = excluded.filename,
			petitioner = excluded.petitioner,
			respondent = excluded.respondent,
			summary = excluded.summary,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
	`, doc.UUID, doc.Filename, doc.Petitioner, doc.Respondent, doc.Summary,
		string(metadataJSON), doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO document_embeddings (document_uuid, model_name, dimension, vector, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(document_uuid, model_name) DO UPDATE SET
			dimension = excluded.dimension,
			vector = excluded.vector,
			created_at = excluded.created_at
	`, emb.DocumentUUID, emb.ModelName, emb.Dimension, float32SliceToBytes(emb.Vector), now)
	if err != nil {
		return fmt.Errorf("saving embedding: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetByUUID retrieves a document by UUID.
func (s *Store) GetByUUID(ctx context.Context, uuid string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT uuid, filename, petitioner, respondent, summary, metadata, created_at, updated_at
		FROM documents WHERE uuid = ?
	`, uuid)

	var doc domain.Document
	var metadataJSON string
	if err := row.Scan(&doc.UUID, &doc.Filename, &doc.Petitioner, &doc.Respondent,
		&doc.Summary, &metadataJSON, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}

	return &doc, nil
}

// ListEmbeddings returns every embedding stored for the given model,
// joined with its owning document, in insertion order.
func (s *Store) ListEmbeddings(ctx context.Context, modelName string) ([]domain.Document, []domain.Embedding, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.uuid, d.filename, d.petitioner, d.respondent, d.summary, d.metadata,
			d.created_at, d.updated_at, e.model_name, e.dimension, e.vector
		FROM document_embeddings e
		JOIN documents d ON d.uuid = e.document_uuid
		WHERE e.model_name = ?
		ORDER BY e.rowid
	`, modelName)
	if err != nil {
		return nil, nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document     //nolint:prealloc // size unknown from query
	var embs []domain.Embedding    //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.Document
		var emb domain.Embedding
		var metadataJSON string
		var vectorBlob []byte

		if err := rows.Scan(&doc.UUID, &doc.Filename, &doc.Petitioner, &doc.Respondent,
			&doc.Summary, &metadataJSON, &doc.CreatedAt, &doc.UpdatedAt,
			&emb.ModelName, &emb.Dimension, &vectorBlob); err != nil {
			return nil, nil, fmt.Errorf("scanning embedding: %w", err)
		}

		if metadataJSON != "" {
			if err := json.Unmarshal([]byte(metadataJSON), &doc.Metadata); err != nil {
				return nil, nil, fmt.Errorf("unmarshaling metadata: %w", err)
			}
		}

		emb.DocumentUUID = doc.UUID
		emb.Vector = bytesToFloat32Slice(vectorBlob)

		docs = append(docs, doc)
		embs = append(embs, emb)
	}

	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	return docs, embs, nil
}

// DeleteDocument removes a document; its embeddings cascade.
func (s *Store) DeleteDocument(ctx context.Context, uuid string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE uuid = ?", uuid)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CountDocuments returns the total number of stored documents.
func (s *Store) CountDocuments(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting documents: %w", err)
	}
	return count, nil
}

// CountEmbeddings returns the number of embeddings per model name.
func (s *Store) CountEmbeddings(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT model_name, COUNT(*) FROM document_embeddings GROUP BY model_name
	`)
	if err != nil {
		return nil, fmt.Errorf("counting embeddings: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var model string
		var count int
		if err := rows.Scan(&model, &count); err != nil {
			return nil, fmt.Errorf("scanning embedding count: %w", err)
		}
		counts[model] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embedding counts: %w", err)
	}

	return counts, nil
}

// float32SliceToBytes converts a []float32 to a byte slice for storage.
func float32SliceToBytes(floats []float32) []byte {
	if len(floats) == 0 {
		return nil
	}
	buf := make([]byte, len(floats)*4)
	for i, f := range floats {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// bytesToFloat32Slice converts a byte slice back to []float32.
func bytesToFloat32Slice(data []byte) []float32 {
	if len(data) == 0 {
		return nil
	}
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}

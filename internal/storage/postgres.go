package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/bdougie/pixelpoint/internal/dataset"
)

// PostgresConfig holds connection details for PostgreSQL
type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

func (c PostgresConfig) connString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.DBName,
	)
}

// Embedder turns description text into a vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// DescriptionSearchResult is one hit of a similarity query.
type DescriptionSearchResult struct {
	SampleKey   string
	Description string
	Similarity  float64
}

// PostgresIndex mirrors completed annotations into PostgreSQL so
// collected descriptions become searchable across sessions. The JSON
// result files on disk stay the source of truth; the index is a
// convenience layer.
type PostgresIndex struct {
	pool      *pgxpool.Pool
	datasetID int
	embedder  Embedder
}

// NewPostgresIndex connects and resolves (or creates) the dataset row.
func NewPostgresIndex(ctx context.Context, config PostgresConfig, datasetName string, embedder Embedder) (*PostgresIndex, error) {
	pool, err := pgxpool.New(ctx, config.connString())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	index := &PostgresIndex{
		pool:     pool,
		embedder: embedder,
	}

	datasetID, err := index.getOrCreateDataset(ctx, datasetName)
	if err != nil {
		return nil, err
	}
	index.datasetID = datasetID

	return index, nil
}

// Close closes the database connection
func (s *PostgresIndex) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// getOrCreateDataset gets an existing dataset entry or creates a new one
func (s *PostgresIndex) getOrCreateDataset(ctx context.Context, name string) (int, error) {
	var id int
	err := s.pool.QueryRow(ctx,
		"SELECT id FROM datasets WHERE name = $1",
		name).Scan(&id)

	if err == nil {
		return id, nil
	} else if err != pgx.ErrNoRows {
		return 0, fmt.Errorf("error checking for existing dataset: %w", err)
	}

	err = s.pool.QueryRow(ctx,
		"INSERT INTO datasets (name, created_at) VALUES ($1, $2) RETURNING id",
		name, time.Now()).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create dataset entry: %w", err)
	}

	return id, nil
}

// getOrCreateSample upserts the sample row backing a result.
func (s *PostgresIndex) getOrCreateSample(ctx context.Context, smp dataset.Sample) (int, error) {
	var id int
	err := s.pool.QueryRow(ctx,
		"SELECT id FROM samples WHERE dataset_id = $1 AND sample_key = $2",
		s.datasetID, smp.MaskID()).Scan(&id)

	if err == nil {
		return id, nil
	} else if err != pgx.ErrNoRows {
		return 0, fmt.Errorf("error checking for existing sample: %w", err)
	}

	err = s.pool.QueryRow(ctx,
		`INSERT INTO samples
        (dataset_id, sample_key, image_id, mask_path, created_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id`,
		s.datasetID, smp.MaskID(), smp.ImageID, smp.MaskPath, time.Now()).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("failed to create sample entry: %w", err)
	}

	return id, nil
}

// AddDescription stores a collected description with its embedding. An
// embedding failure is reported but the description row is stored
// regardless.
func (s *PostgresIndex) AddDescription(ctx context.Context, smp dataset.Sample, rec dataset.DescriptionRecord) error {
	sampleID, err := s.getOrCreateSample(ctx, smp)
	if err != nil {
		return err
	}

	var embedding []float32
	if s.embedder != nil {
		embedding, err = s.embedder.Embed(ctx, rec.Text)
		if err != nil {
			fmt.Printf("Warning: Failed to generate embedding: %v\n", err)
			embedding = nil
		}
	}

	if embedding != nil {
		_, err = s.pool.Exec(ctx,
			`INSERT INTO descriptions
            (sample_id, text, audio_file, embedding, created_at)
            VALUES ($1, $2, $3, $4, $5)`,
			sampleID, rec.Text, rec.AudioFile, pgvector.NewVector(embedding), time.Now())
	} else {
		_, err = s.pool.Exec(ctx,
			`INSERT INTO descriptions
            (sample_id, text, audio_file, created_at)
            VALUES ($1, $2, $3, $4)`,
			sampleID, rec.Text, rec.AudioFile, time.Now())
	}
	if err != nil {
		return fmt.Errorf("failed to store description: %w", err)
	}
	return nil
}

// AddGuess stores an evaluation result.
func (s *PostgresIndex) AddGuess(ctx context.Context, smp dataset.Sample, rec dataset.GuessRecord) error {
	sampleID, err := s.getOrCreateSample(ctx, smp)
	if err != nil {
		return err
	}

	var x, y *int
	if rec.Point != nil {
		x, y = &rec.Point.X, &rec.Point.Y
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO guesses
        (sample_id, x, y, distance, in_mask, cannot_tell, multiple_match, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sampleID, x, y, float64(rec.Distance), rec.InMask, rec.CannotTell, rec.MultipleMatch, time.Now())
	if err != nil {
		return fmt.Errorf("failed to store guess: %w", err)
	}
	return nil
}

// SearchDescriptions finds stored descriptions similar to the query text.
func (s *PostgresIndex) SearchDescriptions(ctx context.Context, query string, limit int) ([]DescriptionSearchResult, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("no embedder configured for similarity search")
	}
	queryEmbedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to generate query embedding: %w", err)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT smp.sample_key, d.text,
        1 - (d.embedding <=> $1) AS similarity
        FROM descriptions d
        JOIN samples smp ON d.sample_id = smp.id
        WHERE smp.dataset_id = $2 AND d.embedding IS NOT NULL
        ORDER BY d.embedding <=> $1
        LIMIT $3`,
		pgvector.NewVector(queryEmbedding), s.datasetID, limit)

	if err != nil {
		return nil, fmt.Errorf("failed to search descriptions: %w", err)
	}
	defer rows.Close()

	var matches []DescriptionSearchResult
	for rows.Next() {
		var m DescriptionSearchResult
		if err := rows.Scan(&m.SampleKey, &m.Description, &m.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan search results: %w", err)
		}
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

// InitSchema creates the database schema if it doesn't exist
func InitSchema(ctx context.Context, config PostgresConfig) error {
	conn, err := pgx.Connect(ctx, config.connString())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close(ctx)

	// Check if vector extension exists
	var exists bool
	err = conn.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM pg_extension WHERE extname = 'vector')").Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check for vector extension: %w", err)
	}

	if !exists {
		_, err = conn.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS vector")
		if err != nil {
			return fmt.Errorf("failed to create vector extension: %w", err)
		}
	}

	_, err = conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS datasets (
            id SERIAL PRIMARY KEY,
            name VARCHAR(255) NOT NULL,
            created_at TIMESTAMPTZ NOT NULL,
            UNIQUE(name)
        );

        CREATE TABLE IF NOT EXISTS samples (
            id SERIAL PRIMARY KEY,
            dataset_id INTEGER REFERENCES datasets(id) ON DELETE CASCADE,
            sample_key VARCHAR(255) NOT NULL,
            image_id VARCHAR(255) NOT NULL,
            mask_path VARCHAR(255),
            created_at TIMESTAMPTZ NOT NULL,
            UNIQUE(dataset_id, sample_key)
        );

        CREATE TABLE IF NOT EXISTS descriptions (
            id SERIAL PRIMARY KEY,
            sample_id INTEGER REFERENCES samples(id) ON DELETE CASCADE,
            text TEXT NOT NULL,
            audio_file VARCHAR(255),
            embedding vector(768),
            created_at TIMESTAMPTZ NOT NULL
        );

        CREATE TABLE IF NOT EXISTS guesses (
            id SERIAL PRIMARY KEY,
            sample_id INTEGER REFERENCES samples(id) ON DELETE CASCADE,
            x INTEGER,
            y INTEGER,
            distance DOUBLE PRECISION NOT NULL,
            in_mask INTEGER NOT NULL,
            cannot_tell INTEGER NOT NULL,
            multiple_match INTEGER NOT NULL,
            created_at TIMESTAMPTZ NOT NULL
        );
    `)

	if err != nil {
		return fmt.Errorf("failed to create database schema: %w", err)
	}

	_, err = conn.Exec(ctx, `
        CREATE INDEX IF NOT EXISTS idx_samples_dataset_id ON samples(dataset_id);
        CREATE INDEX IF NOT EXISTS idx_descriptions_sample_id ON descriptions(sample_id);
        CREATE INDEX IF NOT EXISTS idx_guesses_sample_id ON guesses(sample_id);
        CREATE INDEX IF NOT EXISTS idx_description_embedding ON descriptions USING ivfflat (embedding vector_l2_ops) WITH (lists = 100);
    `)

	if err != nil {
		return fmt.Errorf("failed to create database indexes: %w", err)
	}

	return nil
}

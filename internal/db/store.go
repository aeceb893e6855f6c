package db

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jwulff/lectern/internal/annotation"
	"github.com/jwulff/lectern/internal/monitoring"
)

// ErrNotFound is returned when a video does not exist.
var ErrNotFound = errors.New("not found")

const schema = `
	CREATE TABLE IF NOT EXISTS videos (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		author TEXT NOT NULL DEFAULT '',
		url TEXT NOT NULL DEFAULT '',
		duration REAL NOT NULL DEFAULT 0,
		createdAt REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS annotations (
		id TEXT NOT NULL,
		videoId TEXT NOT NULL REFERENCES videos(id) ON DELETE CASCADE,
		timestamp REAL,
		posX REAL,
		posY REAL,
		heading TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL DEFAULT '',
		seq INTEGER NOT NULL,
		createdAt REAL NOT NULL,
		PRIMARY KEY (videoId, id)
	);

	CREATE INDEX IF NOT EXISTS annotations_video_time
		ON annotations (videoId, timestamp, seq);
`

// Store provides access to the lectern SQLite database.
type Store struct {
	db *sql.DB
}

// DefaultDBPath returns the default database path.
func DefaultDBPath() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "lectern", "lectern.sqlite")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "lectern", "lectern.sqlite")
}

// Open opens the database read-write with WAL, creating it and its schema if
// needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// OpenReadOnly opens an existing database in read-only mode.
func OpenReadOnly(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveVideo inserts or updates v. An empty ID is filled with a new UUID,
// which is returned.
func (s *Store) SaveVideo(v Video) (string, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO videos (id, title, subject, author, url, duration, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			subject = excluded.subject,
			author = excluded.author,
			url = excluded.url,
			duration = excluded.duration
	`, v.ID, v.Title, v.Subject, v.Author, v.URL, v.Duration, unixFromTime(v.CreatedAt))
	if err != nil {
		return "", fmt.Errorf("save video: %w", err)
	}
	return v.ID, nil
}

// ReplaceAnnotations swaps the video's annotations for items in one
// transaction. Items without an ID, or repeating an earlier item's ID, get a
// new UUID.
func (s *Store) ReplaceAnnotations(videoID string, items []annotation.Annotation) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM annotations WHERE videoId = ?`, videoID); err != nil {
		return fmt.Errorf("delete annotations: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO annotations (id, videoId, timestamp, posX, posY, heading, body, seq, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	now := unixFromTime(time.Now())
	seen := make(map[string]bool, len(items))
	for i, a := range items {
		id := a.ID
		if id == "" || seen[id] {
			id = uuid.NewString()
		}
		seen[id] = true
		if _, err := stmt.Exec(id, videoID, a.Timestamp, a.Position.X, a.Position.Y,
			a.Content.Heading, a.Content.Body, i, now); err != nil {
			return fmt.Errorf("insert annotation %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// AnnotationsForVideo returns the video's annotations ordered by timestamp.
// Rows with a missing or invalid timestamp or position are skipped.
func (s *Store) AnnotationsForVideo(videoID string) ([]annotation.Annotation, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp, posX, posY, heading, body
		FROM annotations
		WHERE videoId = ?
		ORDER BY timestamp ASC, seq ASC
	`, videoID)
	if err != nil {
		return nil, fmt.Errorf("query annotations: %w", err)
	}
	defer rows.Close()

	var items []annotation.Annotation
	for rows.Next() {
		var a annotation.Annotation
		var ts, x, y sql.NullFloat64
		if err := rows.Scan(&a.ID, &ts, &x, &y, &a.Content.Heading, &a.Content.Body); err != nil {
			return nil, fmt.Errorf("scan annotation: %w", err)
		}
		if !ts.Valid || !x.Valid || !y.Valid || math.IsNaN(ts.Float64) || ts.Float64 < 0 {
			monitoring.Logf("[db] skipping malformed annotation %s of video %s", a.ID, videoID)
			continue
		}
		a.Timestamp = ts.Float64
		a.Position = annotation.Vec2{X: x.Float64, Y: y.Float64}
		items = append(items, a)
	}
	return items, rows.Err()
}

// Video returns one video, or ErrNotFound.
func (s *Store) Video(id string) (*Video, error) {
	row := s.db.QueryRow(`
		SELECT id, title, subject, author, url, duration, createdAt
		FROM videos
		WHERE id = ?
	`, id)

	var v Video
	var createdAt float64
	if err := row.Scan(&v.ID, &v.Title, &v.Subject, &v.Author, &v.URL, &v.Duration, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("video %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("scan video: %w", err)
	}
	v.CreatedAt = timeFromUnix(createdAt)
	return &v, nil
}

// Videos lists every video with its annotation count, newest first.
func (s *Store) Videos() ([]VideoSummary, error) {
	rows, err := s.db.Query(`
		SELECT v.id, v.title, v.subject, v.author, v.url, v.duration, v.createdAt,
			COUNT(a.id)
		FROM videos v
		LEFT JOIN annotations a ON a.videoId = v.id
		GROUP BY v.id
		ORDER BY v.createdAt DESC, v.title ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var videos []VideoSummary
	for rows.Next() {
		var v VideoSummary
		var createdAt float64
		if err := rows.Scan(&v.ID, &v.Title, &v.Subject, &v.Author, &v.URL, &v.Duration,
			&createdAt, &v.AnnotationCount); err != nil {
			return nil, fmt.Errorf("scan video: %w", err)
		}
		v.CreatedAt = timeFromUnix(createdAt)
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// DeleteVideo removes a video and its annotations.
func (s *Store) DeleteVideo(id string) error {
	res, err := s.db.Exec(`DELETE FROM videos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("video %s: %w", id, ErrNotFound)
	}
	// Cascade only fires with foreign_keys on; clear children explicitly.
	if _, err := s.db.Exec(`DELETE FROM annotations WHERE videoId = ?`, id); err != nil {
		return fmt.Errorf("delete annotations: %w", err)
	}
	return nil
}

func timeFromUnix(ts float64) time.Time {
	sec := int64(ts)
	nsec := int64((ts - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

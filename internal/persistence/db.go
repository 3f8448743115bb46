// Package persistence provides SQLite-based chronicle storage.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/backstory/internal/catalog"
	"github.com/talgya/backstory/internal/chronicle"
	"github.com/talgya/backstory/internal/social"
	"github.com/talgya/backstory/internal/world"
)

// DB wraps a SQLite connection for chronicle persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS realms (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		race TEXT NOT NULL,
		seat_q INTEGER NOT NULL,
		seat_r INTEGER NOT NULL,
		terrain INTEGER NOT NULL,
		founded_year INTEGER NOT NULL,
		ruler_title TEXT NOT NULL,
		dynasty_id INTEGER
	);

	CREATE TABLE IF NOT EXISTS dynasties (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		realm_id INTEGER NOT NULL,
		founded_year INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS rulers (
		id INTEGER PRIMARY KEY,
		dynasty_id INTEGER NOT NULL,
		generation INTEGER NOT NULL,
		name TEXT NOT NULL,
		epithet TEXT NOT NULL,
		titles_json TEXT NOT NULL,
		parent_id INTEGER,
		birth_year INTEGER NOT NULL,
		reign_start INTEGER NOT NULL,
		death_year INTEGER,
		cause TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chronicle_events (
		id TEXT PRIMARY KEY,
		year INTEGER NOT NULL,
		kind TEXT NOT NULL,
		realm_id INTEGER NOT NULL,
		ruler_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		template_id TEXT NOT NULL,
		event_type TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_year ON chronicle_events(year);
	CREATE INDEX IF NOT EXISTS idx_events_realm ON chronicle_events(realm_id);
	CREATE INDEX IF NOT EXISTS idx_rulers_dynasty ON rulers(dynasty_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveChronicle replaces the stored chronicle with c.
func (db *DB) SaveChronicle(c *chronicle.Chronicle) error {
	slog.Info("saving chronicle", "realms", len(c.Realms), "events", len(c.Events))

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"realms", "dynasties", "rulers", "chronicle_events"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	for _, r := range c.Realms {
		_, err := tx.Exec(`INSERT INTO realms
			(id, name, race, seat_q, seat_r, terrain, founded_year, ruler_title, dynasty_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Name, r.Race.String(), r.Seat.Q, r.Seat.R, r.Terrain,
			r.FoundedYear, r.RulerTitle, r.DynastyID,
		)
		if err != nil {
			return fmt.Errorf("save realm %d: %w", r.ID, err)
		}
	}

	for _, d := range c.Dynasties {
		_, err := tx.Exec(
			"INSERT INTO dynasties (id, name, realm_id, founded_year) VALUES (?, ?, ?, ?)",
			d.ID, d.Name, d.RealmID, d.FoundedYear,
		)
		if err != nil {
			return fmt.Errorf("save dynasty %d: %w", d.ID, err)
		}
		if err := saveRulers(tx, d); err != nil {
			return err
		}
	}

	stmt, err := tx.Preparex(`INSERT INTO chronicle_events
		(id, year, kind, realm_id, ruler_id, title, description, template_id, event_type)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, e := range c.Events {
		if _, err := stmt.Exec(e.ID, e.Year, e.Kind, e.RealmID, e.RulerID,
			e.Title, e.Description, e.TemplateID, e.EventType); err != nil {
			return fmt.Errorf("save event %s: %w", e.ID, err)
		}
	}

	if err := saveMeta(tx, "seed", strconv.FormatInt(c.Seed, 10)); err != nil {
		return err
	}
	if err := saveMeta(tx, "current_year", strconv.Itoa(c.CurrentYear)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("chronicle saved")
	return nil
}

func saveRulers(tx *sqlx.Tx, d *social.Dynasty) error {
	for gen, r := range d.Rulers {
		titles, err := json.Marshal(r.Titles)
		if err != nil {
			return err
		}
		_, err = tx.Exec(`INSERT INTO rulers
			(id, dynasty_id, generation, name, epithet, titles_json, parent_id,
			 birth_year, reign_start, death_year, cause)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, d.ID, gen, r.Name, r.Epithet, string(titles), r.ParentID,
			r.BirthYear, r.ReignStart, r.DeathYear, r.Cause.String(),
		)
		if err != nil {
			return fmt.Errorf("save ruler %d: %w", r.ID, err)
		}
	}
	return nil
}

func saveMeta(tx *sqlx.Tx, key, value string) error {
	_, err := tx.Exec("INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)", key, value)
	return err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

const eventColumns = "id, year, kind, realm_id, ruler_id, title, description, template_id, event_type"

// RecentEvents returns the latest N events, newest first.
func (db *DB) RecentEvents(limit int) ([]chronicle.Event, error) {
	var events []chronicle.Event
	err := db.conn.Select(&events,
		"SELECT "+eventColumns+" FROM chronicle_events ORDER BY year DESC, rowid DESC LIMIT ?",
		limit,
	)
	return events, err
}

// EventsForRealm returns a realm's events in chronological order.
func (db *DB) EventsForRealm(id social.RealmID) ([]chronicle.Event, error) {
	var events []chronicle.Event
	err := db.conn.Select(&events,
		"SELECT "+eventColumns+" FROM chronicle_events WHERE realm_id = ? ORDER BY year, rowid",
		id,
	)
	return events, err
}

type realmRow struct {
	ID          social.RealmID    `db:"id"`
	Name        string            `db:"name"`
	Race        string            `db:"race"`
	SeatQ       int               `db:"seat_q"`
	SeatR       int               `db:"seat_r"`
	Terrain     world.Terrain     `db:"terrain"`
	FoundedYear int               `db:"founded_year"`
	RulerTitle  string            `db:"ruler_title"`
	DynastyID   *social.DynastyID `db:"dynasty_id"`
}

// Realms loads every stored realm ordered by ID.
func (db *DB) Realms() ([]*social.Realm, error) {
	var rows []realmRow
	if err := db.conn.Select(&rows, `SELECT id, name, race, seat_q, seat_r, terrain,
		founded_year, ruler_title, dynasty_id FROM realms ORDER BY id`); err != nil {
		return nil, err
	}

	realms := make([]*social.Realm, 0, len(rows))
	for _, row := range rows {
		race, err := catalog.ParseRace(row.Race)
		if err != nil {
			return nil, fmt.Errorf("realm %d: %w", row.ID, err)
		}
		realms = append(realms, &social.Realm{
			ID:          row.ID,
			Name:        row.Name,
			Race:        race,
			Seat:        world.HexCoord{Q: row.SeatQ, R: row.SeatR},
			Terrain:     row.Terrain,
			FoundedYear: row.FoundedYear,
			RulerTitle:  row.RulerTitle,
			DynastyID:   row.DynastyID,
		})
	}
	return realms, nil
}

type rulerRow struct {
	ID         social.RulerID  `db:"id"`
	Name       string          `db:"name"`
	Epithet    string          `db:"epithet"`
	TitlesJSON string          `db:"titles_json"`
	ParentID   *social.RulerID `db:"parent_id"`
	BirthYear  int             `db:"birth_year"`
	ReignStart int             `db:"reign_start"`
	DeathYear  *int            `db:"death_year"`
	Cause      string          `db:"cause"`
}

// Rulers loads a dynasty's rulers, founder first.
func (db *DB) Rulers(id social.DynastyID) ([]*social.Ruler, error) {
	var rows []rulerRow
	if err := db.conn.Select(&rows, `SELECT id, name, epithet, titles_json, parent_id,
		birth_year, reign_start, death_year, cause
		FROM rulers WHERE dynasty_id = ? ORDER BY generation`, id); err != nil {
		return nil, err
	}

	rulers := make([]*social.Ruler, 0, len(rows))
	for _, row := range rows {
		r := &social.Ruler{
			ID:         row.ID,
			Name:       row.Name,
			Epithet:    row.Epithet,
			ParentID:   row.ParentID,
			BirthYear:  row.BirthYear,
			ReignStart: row.ReignStart,
			DeathYear:  row.DeathYear,
			Cause:      catalog.DeathCause(row.Cause),
		}
		if err := json.Unmarshal([]byte(row.TitlesJSON), &r.Titles); err != nil {
			return nil, fmt.Errorf("ruler %d titles: %w", row.ID, err)
		}
		rulers = append(rulers, r)
	}
	return rulers, nil
}

// EventCount returns how many chronicle events are stored.
func (db *DB) EventCount() (int, error) {
	var n int
	err := db.conn.Get(&n, "SELECT COUNT(*) FROM chronicle_events")
	return n, err
}

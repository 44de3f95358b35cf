package world

import (
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

const mapSchema = `
CREATE TABLE IF NOT EXISTS floor_maps (
	name TEXT PRIMARY KEY,
	tile_size INTEGER NOT NULL,
	map_size INTEGER NOT NULL,
	document JSONB NOT NULL,
	created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
	updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
`

// PostgresMapStore keeps authored maps in a PostgreSQL table, one JSONB
// document per map in the authored map format.
type PostgresMapStore struct {
	db *sql.DB
}

// NewPostgresMapStore connects to the database and ensures the schema exists.
func NewPostgresMapStore(connectionString string) (*PostgresMapStore, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	store := &PostgresMapStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialise schema: %w", err)
	}
	return store, nil
}

func (s *PostgresMapStore) initSchema() error {
	_, err := s.db.Exec(mapSchema)
	return err
}

func (s *PostgresMapStore) LoadMap(name string) (*Grid, error) {
	if err := validateMapName(name); err != nil {
		return nil, err
	}
	var document []byte
	err := s.db.QueryRow(`SELECT document FROM floor_maps WHERE name = $1`, name).Scan(&document)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("load map %q: %w", name, ErrMapNotFound)
		}
		return nil, fmt.Errorf("load map %q: %w", name, err)
	}
	grid, err := UnmarshalMap(document)
	if err != nil {
		return nil, fmt.Errorf("load map %q: %w", name, err)
	}
	return grid, nil
}

func (s *PostgresMapStore) SaveMap(name string, grid *Grid) error {
	if err := validateMapName(name); err != nil {
		return err
	}
	document, err := MarshalMap(grid)
	if err != nil {
		return err
	}
	query := `
	INSERT INTO floor_maps (name, tile_size, map_size, document)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (name)
	DO UPDATE SET
		tile_size = $2, map_size = $3, document = $4,
		updated_at = NOW()
	`
	if _, err := s.db.Exec(query, name, grid.TileSize, grid.MapSize, string(document)); err != nil {
		return fmt.Errorf("save map %q: %w", name, err)
	}
	return nil
}

func (s *PostgresMapStore) DeleteMap(name string) error {
	if err := validateMapName(name); err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM floor_maps WHERE name = $1`, name); err != nil {
		return fmt.Errorf("delete map %q: %w", name, err)
	}
	return nil
}

func (s *PostgresMapStore) Names() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM floor_maps ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list maps: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan map name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *PostgresMapStore) Close() error {
	return s.db.Close()
}

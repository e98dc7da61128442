package stubapi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/fhuaranca/dniadmin/internal/shared"
	"github.com/fhuaranca/dniadmin/internal/stubapi/migrations"
)

// Persona is a stored document-holder row.
type Persona struct {
	ID                 int64      `json:"id"`
	TipoDoc            string     `json:"tipodoc"`
	NroDoc             string     `json:"nrodoc"`
	Nombres            string     `json:"nombres"`
	ApellidoPaterno    string     `json:"apellido_paterno"`
	ApellidoMaterno    string     `json:"apellido_materno"`
	CodigoVerificacion string     `json:"codigo_verificacion"`
	FechaRegistro      time.Time  `json:"fecha_registro"`
	DesdeCache         bool       `json:"desde_cache"`
}

// APIToken is a stored API credential row. Token is the secret itself;
// listings include it because the admin panel shows a masked form.
type APIToken struct {
	ID            int64      `json:"id"`
	Token         string     `json:"token"`
	Nombre        string     `json:"nombre"`
	Descripcion   string     `json:"descripcion"`
	Activo        bool       `json:"activo"`
	FechaCreacion time.Time  `json:"fecha_creacion"`
	UltimoUso     *time.Time `json:"ultimo_uso"`
}

// Store wraps the sqlite database holding personas, tokens and config.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the sqlite database at path and applies schema
// migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return nil, fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the location of the underlying database file. The backup
// endpoint serves this file directly.
func (s *Store) Path() string {
	return s.path
}

// CreatePersona inserts a new row. The document number is the natural key;
// a second row with the same nrodoc yields shared.ErrorAlreadyExists.
func (s *Store) CreatePersona(ctx context.Context, p *Persona) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM personas WHERE nrodoc = ?`, p.NroDoc).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check nrodoc: %w", err)
	}
	if exists > 0 {
		return shared.ErrorAlreadyExists
	}

	if p.TipoDoc == "" {
		p.TipoDoc = "DNI"
	}
	p.FechaRegistro = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO personas (tipodoc, nrodoc, nombres, apellido_paterno, apellido_materno, codigo_verificacion, fecha_registro)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.TipoDoc, p.NroDoc, p.Nombres, p.ApellidoPaterno, p.ApellidoMaterno, p.CodigoVerificacion, p.FechaRegistro)
	if err != nil {
		return fmt.Errorf("failed to insert persona: %w", err)
	}
	p.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read insert id: %w", err)
	}
	return nil
}

func scanPersona(row interface{ Scan(...any) error }) (*Persona, error) {
	var p Persona
	var nombres, paterno, materno, codigo sql.NullString
	err := row.Scan(&p.ID, &p.TipoDoc, &p.NroDoc, &nombres, &paterno, &materno, &codigo, &p.FechaRegistro)
	if err != nil {
		return nil, err
	}
	p.Nombres = nombres.String
	p.ApellidoPaterno = paterno.String
	p.ApellidoMaterno = materno.String
	p.CodigoVerificacion = codigo.String
	return &p, nil
}

const personaColumns = `id, tipodoc, nrodoc, nombres, apellido_paterno, apellido_materno, codigo_verificacion, fecha_registro`

// GetPersona fetches one row by id.
func (s *Store) GetPersona(ctx context.Context, id int64) (*Persona, error) {
	p, err := scanPersona(s.db.QueryRowContext(ctx,
		`SELECT `+personaColumns+` FROM personas WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select persona: %w", err)
	}
	return p, nil
}

// GetPersonaByNroDoc fetches one row by document number.
func (s *Store) GetPersonaByNroDoc(ctx context.Context, nrodoc string) (*Persona, error) {
	p, err := scanPersona(s.db.QueryRowContext(ctx,
		`SELECT `+personaColumns+` FROM personas WHERE nrodoc = ?`, nrodoc))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select persona: %w", err)
	}
	return p, nil
}

// UpdatePersona overwrites the editable fields of an existing row and
// returns the updated state.
func (s *Store) UpdatePersona(ctx context.Context, id int64, p *Persona) (*Persona, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE personas SET nrodoc = ?, nombres = ?, apellido_paterno = ?, apellido_materno = ?, fecha_actualizacion = ?
		 WHERE id = ?`,
		p.NroDoc, p.Nombres, p.ApellidoPaterno, p.ApellidoMaterno, time.Now().UTC(), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update persona: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, shared.ErrorNotFound
	}
	return s.GetPersona(ctx, id)
}

// DeletePersona removes one row by id.
func (s *Store) DeletePersona(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM personas WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete persona: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return shared.ErrorNotFound
	}
	return nil
}

// searchClause builds the WHERE fragment for a free-text filter over the
// document number and name columns.
const searchClause = ` WHERE nrodoc LIKE ?1 OR nombres LIKE ?1 OR apellido_paterno LIKE ?1 OR apellido_materno LIKE ?1`

// CountPersonas returns the number of rows matching q (all rows when q
// is empty).
func (s *Store) CountPersonas(ctx context.Context, q string) (int, error) {
	query := `SELECT COUNT(*) FROM personas`
	args := []any{}
	if q != "" {
		query += searchClause
		args = append(args, "%"+q+"%")
	}
	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count personas: %w", err)
	}
	return n, nil
}

// SearchPersonas returns a page of rows matching q, newest first.
func (s *Store) SearchPersonas(ctx context.Context, q string, offset, limit int) ([]Persona, error) {
	query := `SELECT ` + personaColumns + ` FROM personas`
	args := []any{}
	if q != "" {
		query += searchClause
		args = append(args, "%"+q+"%")
	}
	query += ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select personas: %w", err)
	}
	defer rows.Close()

	result := []Persona{}
	for rows.Next() {
		p, err := scanPersona(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

const tokenColumns = `id, token, nombre, descripcion, activo, fecha_creacion, ultimo_uso`

func scanToken(row interface{ Scan(...any) error }) (*APIToken, error) {
	var t APIToken
	var descripcion sql.NullString
	var ultimoUso sql.NullTime
	err := row.Scan(&t.ID, &t.Token, &t.Nombre, &descripcion, &t.Activo, &t.FechaCreacion, &ultimoUso)
	if err != nil {
		return nil, err
	}
	t.Descripcion = descripcion.String
	if ultimoUso.Valid {
		t.UltimoUso = &ultimoUso.Time
	}
	return &t, nil
}

// CreateToken issues a new random 64-character hex token.
func (s *Store) CreateToken(ctx context.Context, nombre, descripcion string) (*APIToken, error) {
	secret, err := shared.MakeRandHexString(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	t := &APIToken{
		Token:         secret,
		Nombre:        nombre,
		Descripcion:   descripcion,
		Activo:        true,
		FechaCreacion: time.Now().UTC(),
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO api_tokens (token, nombre, descripcion, activo, fecha_creacion) VALUES (?, ?, ?, ?, ?)`,
		t.Token, t.Nombre, t.Descripcion, t.Activo, t.FechaCreacion)
	if err != nil {
		return nil, fmt.Errorf("failed to insert token: %w", err)
	}
	t.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read insert id: %w", err)
	}
	return t, nil
}

// ListTokens returns all tokens, newest first.
func (s *Store) ListTokens(ctx context.Context) ([]APIToken, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+tokenColumns+` FROM api_tokens ORDER BY fecha_creacion DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select tokens: %w", err)
	}
	defer rows.Close()

	result := []APIToken{}
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteToken removes a token by id.
func (s *Store) DeleteToken(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM api_tokens WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return shared.ErrorNotFound
	}
	return nil
}

// ToggleToken flips a token's active flag and returns the new state.
func (s *Store) ToggleToken(ctx context.Context, id int64) (*APIToken, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE api_tokens SET activo = NOT activo WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to toggle token: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, shared.ErrorNotFound
	}

	t, err := scanToken(s.db.QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM api_tokens WHERE id = ?`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to reread token: %w", err)
	}
	return t, nil
}

// TouchToken validates a secret against the active tokens and records its
// use. Unknown or inactive secrets yield shared.ErrorNotFound.
func (s *Store) TouchToken(ctx context.Context, secret string) (*APIToken, error) {
	t, err := scanToken(s.db.QueryRowContext(ctx,
		`SELECT `+tokenColumns+` FROM api_tokens WHERE token = ? AND activo = 1`, secret))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select token: %w", err)
	}

	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx,
		`UPDATE api_tokens SET ultimo_uso = ? WHERE id = ?`, now, t.ID); err != nil {
		return nil, fmt.Errorf("failed to record token use: %w", err)
	}
	t.UltimoUso = &now
	return t, nil
}

// GetConfigValue reads one configuration value; missing keys return "".
func (s *Store) GetConfigValue(ctx context.Context, clave string) (string, error) {
	var valor sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT valor FROM configuraciones WHERE clave = ?`, clave).Scan(&valor)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to select config: %w", err)
	}
	return valor.String, nil
}

// SetConfigValue upserts one configuration value.
func (s *Store) SetConfigValue(ctx context.Context, clave, valor, descripcion string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO configuraciones (clave, valor, descripcion, fecha_actualizacion)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(clave) DO UPDATE SET valor = excluded.valor, fecha_actualizacion = excluded.fecha_actualizacion`,
		clave, valor, descripcion, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert config: %w", err)
	}
	return nil
}

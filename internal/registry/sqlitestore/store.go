package sqlitestore

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/temirov/guardian/internal/registry"
)

//go:embed schema.sql
var schemaSQL string

const (
	driverNameConstant                 = "sqlite3"
	openErrorTemplateConstant          = "failed to open registry database: %w"
	pingErrorTemplateConstant          = "failed to connect to registry database: %w"
	pragmaErrorTemplateConstant        = "failed to execute %q: %w"
	schemaErrorTemplateConstant        = "failed to apply registry schema: %w"
	recordLookupErrorTemplateConstant  = "%w: %s"
	unsupportedPayloadTemplateConstant = "unsupported payload type %T for %s"
	queryErrorTemplateConstant         = "registry query failed: %w"
	transactionErrorTemplateConstant   = "registry transaction failed: %w"
	selectRecordsQueryConstant         = "SELECT id, container_path, short_name, type_tag, loadable FROM records ORDER BY id"
	selectLoadableQueryConstant        = "SELECT loadable FROM records WHERE id = ?"
	selectFlagsQueryConstant           = "SELECT flag_name, enabled FROM record_flags WHERE record_id = ?"
	selectReferencersQueryConstant     = "SELECT source_id FROM record_references WHERE target_id = ? ORDER BY source_id"
	selectRecordExistsQueryConstant    = "SELECT EXISTS(SELECT 1 FROM records WHERE id = ?)"
	upsertFlagStatementConstant        = "INSERT INTO record_flags (record_id, flag_name, enabled) VALUES (?, ?, ?) ON CONFLICT (record_id, flag_name) DO UPDATE SET enabled = excluded.enabled"
	renameRecordStatementConstant      = "UPDATE records SET id = ?, container_path = ?, short_name = ? WHERE id = ?"
	upsertRecordStatementConstant      = "INSERT INTO records (id, container_path, short_name, type_tag, loadable) VALUES (?, ?, ?, ?, ?) ON CONFLICT (id) DO UPDATE SET type_tag = excluded.type_tag, loadable = excluded.loadable"
	insertReferenceStatementConstant   = "INSERT OR IGNORE INTO record_references (source_id, target_id) VALUES (?, ?)"
	insertContainerStatementConstant   = "INSERT OR IGNORE INTO containers (path) VALUES (?)"
	selectContainerExistsQueryConstant = "SELECT EXISTS(SELECT 1 FROM containers WHERE path = ?) OR EXISTS(SELECT 1 FROM records WHERE container_path = ?)"
	referenceErrorTemplateConstant     = "reference %s -> %s: %w"
)

// Store provides a SQLite-backed content registry.
type Store struct {
	database *sql.DB
}

// RecordSeed describes a record and its flags when populating the store.
type RecordSeed struct {
	ContainerPath string
	ShortName     string
	TypeTag       string
	Loadable      bool
	Flags         map[string]bool
}

// Open creates or opens the registry database at path and applies the schema.
func Open(path string) (*Store, error) {
	database, openError := sql.Open(driverNameConstant, path)
	if openError != nil {
		return nil, fmt.Errorf(openErrorTemplateConstant, openError)
	}

	if pingError := database.Ping(); pingError != nil {
		database.Close()
		return nil, fmt.Errorf(pingErrorTemplateConstant, pingError)
	}

	database.SetMaxOpenConns(1)
	database.SetMaxIdleConns(1)

	if pragmaError := applyPragmas(database); pragmaError != nil {
		database.Close()
		return nil, pragmaError
	}

	if _, schemaError := database.Exec(schemaSQL); schemaError != nil {
		database.Close()
		return nil, fmt.Errorf(schemaErrorTemplateConstant, schemaError)
	}

	return &Store{database: database}, nil
}

// Close releases the database connection.
func (store *Store) Close() error {
	if store.database == nil {
		return nil
	}
	return store.database.Close()
}

func applyPragmas(database *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, execError := database.Exec(pragma); execError != nil {
			return fmt.Errorf(pragmaErrorTemplateConstant, pragma, execError)
		}
	}
	return nil
}

// PutRecord inserts or updates a record together with its flags.
func (store *Store) PutRecord(executionContext context.Context, seed RecordSeed) (registry.RecordID, error) {
	identifier := registry.JoinRecordID(seed.ContainerPath, seed.ShortName)
	transactionError := store.withTransaction(executionContext, func(transaction *sql.Tx) error {
		if _, execError := transaction.ExecContext(executionContext, upsertRecordStatementConstant,
			identifier.String(), strings.TrimSpace(seed.ContainerPath), seed.ShortName, seed.TypeTag, seed.Loadable); execError != nil {
			return execError
		}
		return writeFlags(executionContext, transaction, identifier, seed.Flags)
	})
	if transactionError != nil {
		return "", transactionError
	}
	return identifier, nil
}

// AddReference records that source references target. A record may reference itself.
func (store *Store) AddReference(executionContext context.Context, source registry.RecordID, target registry.RecordID) error {
	if _, execError := store.database.ExecContext(executionContext, insertReferenceStatementConstant, source.String(), target.String()); execError != nil {
		return fmt.Errorf(referenceErrorTemplateConstant, source, target, execError)
	}
	return nil
}

// ListAll enumerates every record ordered by identifier.
func (store *Store) ListAll(executionContext context.Context) ([]registry.Record, error) {
	rows, queryError := store.database.QueryContext(executionContext, selectRecordsQueryConstant)
	if queryError != nil {
		return nil, fmt.Errorf(queryErrorTemplateConstant, queryError)
	}
	defer rows.Close()

	var records []registry.Record
	for rows.Next() {
		var (
			identifier string
			record     registry.Record
		)
		if scanError := rows.Scan(&identifier, &record.ContainerPath, &record.ShortName, &record.TypeTag, &record.Loadable); scanError != nil {
			return nil, fmt.Errorf(queryErrorTemplateConstant, scanError)
		}
		record.ID = registry.RecordID(identifier)
		records = append(records, record)
	}
	if rowsError := rows.Err(); rowsError != nil {
		return nil, fmt.Errorf(queryErrorTemplateConstant, rowsError)
	}
	return records, nil
}

// TryLoad reads the record's feature flags into a detached payload.
func (store *Store) TryLoad(executionContext context.Context, identifier registry.RecordID) (registry.Payload, error) {
	var loadable bool
	lookupError := store.database.QueryRowContext(executionContext, selectLoadableQueryConstant, identifier.String()).Scan(&loadable)
	if errors.Is(lookupError, sql.ErrNoRows) {
		return nil, fmt.Errorf(recordLookupErrorTemplateConstant, registry.ErrRecordNotFound, identifier)
	}
	if lookupError != nil {
		return nil, fmt.Errorf(queryErrorTemplateConstant, lookupError)
	}
	if !loadable {
		return nil, fmt.Errorf(recordLookupErrorTemplateConstant, registry.ErrPayloadUnavailable, identifier)
	}

	rows, queryError := store.database.QueryContext(executionContext, selectFlagsQueryConstant, identifier.String())
	if queryError != nil {
		return nil, fmt.Errorf(queryErrorTemplateConstant, queryError)
	}
	defer rows.Close()

	payload := &flagPayload{flags: make(map[string]bool)}
	for rows.Next() {
		var (
			flagName string
			enabled  bool
		)
		if scanError := rows.Scan(&flagName, &enabled); scanError != nil {
			return nil, fmt.Errorf(queryErrorTemplateConstant, scanError)
		}
		payload.flags[flagName] = enabled
	}
	if rowsError := rows.Err(); rowsError != nil {
		return nil, fmt.Errorf(queryErrorTemplateConstant, rowsError)
	}
	return payload, nil
}

// Referencers lists the direct referencers of identifier.
func (store *Store) Referencers(executionContext context.Context, identifier registry.RecordID) ([]registry.RecordID, error) {
	exists, existsError := store.recordExists(executionContext, store.database, identifier)
	if existsError != nil {
		return nil, existsError
	}
	if !exists {
		return nil, fmt.Errorf(recordLookupErrorTemplateConstant, registry.ErrRecordNotFound, identifier)
	}

	rows, queryError := store.database.QueryContext(executionContext, selectReferencersQueryConstant, identifier.String())
	if queryError != nil {
		return nil, fmt.Errorf(queryErrorTemplateConstant, queryError)
	}
	defer rows.Close()

	var referencers []registry.RecordID
	for rows.Next() {
		var source string
		if scanError := rows.Scan(&source); scanError != nil {
			return nil, fmt.Errorf(queryErrorTemplateConstant, scanError)
		}
		referencers = append(referencers, registry.RecordID(source))
	}
	if rowsError := rows.Err(); rowsError != nil {
		return nil, fmt.Errorf(queryErrorTemplateConstant, rowsError)
	}
	return referencers, nil
}

// Persist writes the payload flags for identifier.
func (store *Store) Persist(executionContext context.Context, identifier registry.RecordID, payload registry.Payload) error {
	typedPayload, supported := payload.(*flagPayload)
	if !supported {
		return fmt.Errorf(unsupportedPayloadTemplateConstant, payload, identifier)
	}

	return store.withTransaction(executionContext, func(transaction *sql.Tx) error {
		exists, existsError := store.recordExists(executionContext, transaction, identifier)
		if existsError != nil {
			return existsError
		}
		if !exists {
			return fmt.Errorf(recordLookupErrorTemplateConstant, registry.ErrRecordNotFound, identifier)
		}
		return writeFlags(executionContext, transaction, identifier, typedPayload.flags)
	})
}

// Rename changes the record identity; flags and reference edges follow through cascading keys.
func (store *Store) Rename(executionContext context.Context, identifier registry.RecordID, targetContainerPath string, newName string) error {
	targetIdentifier := registry.JoinRecordID(targetContainerPath, newName)

	return store.withTransaction(executionContext, func(transaction *sql.Tx) error {
		exists, existsError := store.recordExists(executionContext, transaction, identifier)
		if existsError != nil {
			return existsError
		}
		if !exists {
			return fmt.Errorf(recordLookupErrorTemplateConstant, registry.ErrRecordNotFound, identifier)
		}

		if targetIdentifier != identifier {
			targetExists, targetError := store.recordExists(executionContext, transaction, targetIdentifier)
			if targetError != nil {
				return targetError
			}
			if targetExists {
				return fmt.Errorf(recordLookupErrorTemplateConstant, registry.ErrTargetExists, targetIdentifier)
			}
		}

		_, execError := transaction.ExecContext(executionContext, renameRecordStatementConstant,
			targetIdentifier.String(), strings.TrimSpace(targetContainerPath), newName, identifier.String())
		return execError
	})
}

// ContainerExists reports whether the container is declared or holds records.
func (store *Store) ContainerExists(executionContext context.Context, containerPath string) (bool, error) {
	trimmedPath := strings.TrimSpace(containerPath)
	var exists bool
	if queryError := store.database.QueryRowContext(executionContext, selectContainerExistsQueryConstant, trimmedPath, trimmedPath).Scan(&exists); queryError != nil {
		return false, fmt.Errorf(queryErrorTemplateConstant, queryError)
	}
	return exists, nil
}

// CreateContainer declares a container.
func (store *Store) CreateContainer(executionContext context.Context, containerPath string) error {
	if _, execError := store.database.ExecContext(executionContext, insertContainerStatementConstant, strings.TrimSpace(containerPath)); execError != nil {
		return fmt.Errorf(queryErrorTemplateConstant, execError)
	}
	return nil
}

type queryRower interface {
	QueryRowContext(executionContext context.Context, query string, arguments ...any) *sql.Row
}

func (store *Store) recordExists(executionContext context.Context, querier queryRower, identifier registry.RecordID) (bool, error) {
	var exists bool
	if queryError := querier.QueryRowContext(executionContext, selectRecordExistsQueryConstant, identifier.String()).Scan(&exists); queryError != nil {
		return false, fmt.Errorf(queryErrorTemplateConstant, queryError)
	}
	return exists, nil
}

func (store *Store) withTransaction(executionContext context.Context, work func(transaction *sql.Tx) error) error {
	transaction, beginError := store.database.BeginTx(executionContext, nil)
	if beginError != nil {
		return fmt.Errorf(transactionErrorTemplateConstant, beginError)
	}
	if workError := work(transaction); workError != nil {
		_ = transaction.Rollback()
		return workError
	}
	if commitError := transaction.Commit(); commitError != nil {
		return fmt.Errorf(transactionErrorTemplateConstant, commitError)
	}
	return nil
}

func writeFlags(executionContext context.Context, transaction *sql.Tx, identifier registry.RecordID, flags map[string]bool) error {
	flagNames := make([]string, 0, len(flags))
	for flagName := range flags {
		flagNames = append(flagNames, flagName)
	}
	sort.Strings(flagNames)

	for _, flagName := range flagNames {
		if _, execError := transaction.ExecContext(executionContext, upsertFlagStatementConstant, identifier.String(), flagName, flags[flagName]); execError != nil {
			return execError
		}
	}
	return nil
}

type flagPayload struct {
	flags map[string]bool
}

func (payload *flagPayload) GetFlag(flagName string) (bool, error) {
	enabled, found := payload.flags[flagName]
	if !found {
		return false, fmt.Errorf(recordLookupErrorTemplateConstant, registry.ErrFlagUnavailable, flagName)
	}
	return enabled, nil
}

func (payload *flagPayload) SetFlag(flagName string, enabled bool) error {
	if payload.flags == nil {
		payload.flags = make(map[string]bool)
	}
	payload.flags[flagName] = enabled
	return nil
}

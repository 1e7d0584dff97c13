package runner

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os/user"
	"time"

	"github.com/google/uuid"

	"github.com/ridoystarlord/schedmigrate/database"
	"github.com/ridoystarlord/schedmigrate/generator"
	"github.com/ridoystarlord/schedmigrate/introspect"
	"github.com/ridoystarlord/schedmigrate/migration"
	"github.com/ridoystarlord/schedmigrate/schema"
)

// MigrationRecord represents one row of the applied-migrations ledger
type MigrationRecord struct {
	ID            int64
	App           string
	Name          string
	AppliedAt     time.Time
	ExecutionTime time.Duration
	ExecutedBy    string
	Checksum      string
}

func (r MigrationRecord) Key() migration.Key {
	return migration.Key{App: r.App, Name: r.Name}
}

// MigrationLog represents a migration log entry
type MigrationLog struct {
	ID            int64
	RunID         string
	Timestamp     time.Time
	Level         string
	Message       string
	User          string
	Details       string
	MigrationName string
}

// querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Engine applies descriptors to one database and keeps its ledger.
type Engine struct {
	db     *database.DB
	graph  *migration.Graph
	logger *slog.Logger
	runID  string
	user   string
}

// New builds the dependency graph and fails on dangling dependencies or cycles.
func New(db *database.DB, migrations []migration.Migration, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	graph, err := migration.NewGraph(migrations)
	if err != nil {
		return nil, fmt.Errorf("build migration graph: %w", err)
	}
	runID := uuid.NewString()
	return &Engine{
		db:     db,
		graph:  graph,
		logger: logger.With("run_id", runID, "dialect", db.Dialect.Name()),
		runID:  runID,
		user:   getCurrentUser(),
	}, nil
}

func (e *Engine) Graph() *migration.Graph {
	return e.graph
}

func (e *Engine) Dialect() generator.Dialect {
	return e.db.Dialect
}

func getCurrentUser() string {
	currentUser, err := user.Current()
	if err != nil {
		return "unknown"
	}
	return currentUser.Username
}

func ledgerDDL(dialect string) []string {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if dialect == generator.Postgres {
		idColumn = "id BIGSERIAL PRIMARY KEY"
	}
	return []string{
		fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS schema_migrations (
		%s,
		app TEXT NOT NULL,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL,
		execution_ms BIGINT NOT NULL DEFAULT 0,
		executed_by TEXT NOT NULL DEFAULT '',
		checksum TEXT NOT NULL DEFAULT '',
		UNIQUE (app, name)
	);`, idColumn),
		fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS migration_logs (
		%s,
		run_id TEXT NOT NULL,
		logged_at TEXT NOT NULL,
		level TEXT NOT NULL,
		message TEXT NOT NULL,
		user_name TEXT NOT NULL DEFAULT '',
		details TEXT NOT NULL DEFAULT '',
		migration_name TEXT NOT NULL DEFAULT ''
	);`, idColumn),
	}
}

// EnsureLedger creates the ledger and audit-log tables when missing.
func (e *Engine) EnsureLedger(ctx context.Context) error {
	return e.ensureLedger(ctx, e.db)
}

func (e *Engine) ensureLedger(ctx context.Context, q querier) error {
	for _, stmt := range ledgerDDL(e.db.Dialect.Name()) {
		if _, err := q.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure ledger tables: %w", err)
		}
	}
	return nil
}

func (e *Engine) logActivity(ctx context.Context, q querier, level, message string, key migration.Key, details string) {
	_, err := q.ExecContext(ctx, e.db.Dialect.Rebind(`
		INSERT INTO migration_logs (run_id, logged_at, level, message, user_name, details, migration_name)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`), e.runID, time.Now().UTC().Format(time.RFC3339Nano), level, message, e.user, details, key.String())
	if err != nil {
		e.logger.Warn("failed to write migration log", "migration", key.String(), "error", err)
	}
}

func (e *Engine) applied(ctx context.Context, q querier) (map[migration.Key]MigrationRecord, error) {
	records, err := e.queryRecords(ctx, q, "", 0)
	if err != nil {
		return nil, err
	}
	out := make(map[migration.Key]MigrationRecord, len(records))
	for _, r := range records {
		out[r.Key()] = r
	}
	return out, nil
}

func (e *Engine) queryRecords(ctx context.Context, q querier, app string, limit int) ([]MigrationRecord, error) {
	query := `
		SELECT id, app, name, applied_at, execution_ms, executed_by, checksum
		FROM schema_migrations`
	var args []any
	if app != "" {
		query += " WHERE app = ?"
		args = append(args, app)
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := q.QueryContext(ctx, e.db.Dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	var records []MigrationRecord
	for rows.Next() {
		var (
			r         MigrationRecord
			appliedAt string
			ms        int64
		)
		if err := rows.Scan(&r.ID, &r.App, &r.Name, &appliedAt, &ms, &r.ExecutedBy, &r.Checksum); err != nil {
			return nil, fmt.Errorf("scan migration record: %w", err)
		}
		r.AppliedAt, _ = time.Parse(time.RFC3339Nano, appliedAt)
		r.ExecutionTime = time.Duration(ms) * time.Millisecond
		records = append(records, r)
	}
	return records, rows.Err()
}

const advisoryLockID = 72351950

// lock serializes runs against the same database. SQLite write transactions
// already take the database lock (see database.sqliteDSN).
func (e *Engine) lock(ctx context.Context, conn *sql.Conn) (func(), error) {
	if e.db.Dialect.Name() != generator.Postgres {
		return func() {}, nil
	}
	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		return nil, fmt.Errorf("acquire migration lock: %w", err)
	}
	return func() {
		if _, err := conn.ExecContext(context.Background(), "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			e.logger.Warn("failed to release migration lock", "error", err)
		}
	}, nil
}

// session opens a dedicated connection holding the run lock with the ledger ensured.
func (e *Engine) session(ctx context.Context) (*sql.Conn, func(), error) {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("get connection: %w", err)
	}
	unlock, err := e.lock(ctx, conn)
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	release := func() {
		unlock()
		conn.Close()
	}
	if err := e.ensureLedger(ctx, conn); err != nil {
		release()
		return nil, nil, err
	}
	return conn, release, nil
}

func replay(m migration.Migration, state *schema.State) error {
	for _, op := range m.Ops {
		if err := op.StateForwards(m.App, state); err != nil {
			return fmt.Errorf("%s: %s: %w", m.Key(), op.Describe(), err)
		}
	}
	return nil
}

// applyStep runs one descriptor in a single transaction: the preflight of
// every operation, their DDL in order, then the ledger row. Any failure rolls
// the whole step back.
func (e *Engine) applyStep(ctx context.Context, conn *sql.Conn, m migration.Migration, from *schema.State, fake bool) error {
	key := m.Key()
	checksum, err := migration.Checksum(m)
	if err != nil {
		return err
	}
	start := time.Now()
	e.logActivity(ctx, conn, "INFO", fmt.Sprintf("Starting migration: %s", key), key, "Migration execution started")

	err = e.inTx(ctx, conn, func(tx *sql.Tx) error {
		if !fake {
			if err := e.runOperations(ctx, tx, m, from); err != nil {
				return err
			}
		}
		_, err := tx.ExecContext(ctx, e.db.Dialect.Rebind(`
			INSERT INTO schema_migrations (app, name, applied_at, execution_ms, executed_by, checksum)
			VALUES (?, ?, ?, ?, ?, ?)
		`), m.App, m.Name, time.Now().UTC().Format(time.RFC3339Nano), time.Since(start).Milliseconds(), e.user, checksum)
		if err != nil {
			return fmt.Errorf("recording migration: %w", err)
		}
		return nil
	})
	executionTime := time.Since(start)

	if err != nil {
		e.logActivity(ctx, conn, "ERROR", fmt.Sprintf("Migration failed: %s", key), key, err.Error())
		e.logger.Error("migration failed", "migration", key.String(), "error", err)
		return fmt.Errorf("apply %s: %w", key, err)
	}

	level, verb := "SUCCESS", "Migration completed"
	if fake {
		level, verb = "WARN", "Migration faked"
	}
	e.logActivity(ctx, conn, level, fmt.Sprintf("%s: %s", verb, key), key, fmt.Sprintf("Execution time: %v", executionTime))
	e.logger.Info("migration applied", "migration", key.String(), "fake", fake, "duration", executionTime)
	return nil
}

type stagedOperation struct {
	op     migration.Operation
	before *schema.State
	after  *schema.State
}

// runOperations checks every operation against the catalog, then executes
// their DDL in order.
func (e *Engine) runOperations(ctx context.Context, tx *sql.Tx, m migration.Migration, from *schema.State) error {
	key := m.Key()
	catalog := newStagedCatalog(introspect.NewInspector(tx, e.db.Dialect.Name()))
	state := from.Clone()

	staged := make([]stagedOperation, 0, len(m.Ops))
	for _, op := range m.Ops {
		before := state.Clone()
		if err := op.StateForwards(m.App, state); err != nil {
			return fmt.Errorf("%s: %w", op.Describe(), err)
		}
		if err := op.Preflight(ctx, m.App, before, catalog); err != nil {
			return fmt.Errorf("%s: %w", op.Describe(), err)
		}
		catalog.stage(before, state)
		staged = append(staged, stagedOperation{op: op, before: before, after: state.Clone()})
	}

	for _, s := range staged {
		stmts, err := s.op.DatabaseForwards(m.App, e.db.Dialect, s.before, s.after)
		if err != nil {
			return fmt.Errorf("%s: %w", s.op.Describe(), err)
		}
		for _, stmt := range stmts {
			e.logger.Debug("executing", "migration", key.String(), "sql", stmt)
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("%s: %w\n%s", s.op.Describe(), err, stmt)
			}
		}
	}
	return nil
}

func (e *Engine) inTx(ctx context.Context, conn *sql.Conn, fn func(tx *sql.Tx) error) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ApplyOne applies exactly one descriptor. It is rejected when already
// applied or when any dependency is not yet applied.
func (e *Engine) ApplyOne(ctx context.Context, key migration.Key) error {
	m, ok := e.graph.Node(key)
	if !ok {
		return fmt.Errorf("%w: %s", migration.ErrUnknownMigration, key)
	}

	conn, release, err := e.session(ctx)
	if err != nil {
		return err
	}
	defer release()

	applied, err := e.applied(ctx, conn)
	if err != nil {
		return err
	}
	if _, done := applied[key]; done {
		return fmt.Errorf("%w: %s", migration.ErrAlreadyApplied, key)
	}
	for _, dep := range m.Deps {
		if _, done := applied[dep]; !done {
			return fmt.Errorf("%w: %s requires %s", migration.ErrDependencyUnsatisfied, key, dep)
		}
	}
	if err := m.Validate(); err != nil {
		return err
	}

	plan, err := e.graph.ForwardsPlan(key)
	if err != nil {
		return err
	}
	from, err := e.graph.State(plan[:len(plan)-1])
	if err != nil {
		return err
	}
	return e.applyStep(ctx, conn, m, from, false)
}

type MigrateOptions struct {
	// Target limits the run to this descriptor and its ancestors.
	Target *migration.Key
	// Fake records descriptors in the ledger without running their DDL.
	Fake bool
}

// Migrate applies every pending descriptor of the plan, one transaction per
// descriptor. The first failure stops the run; earlier steps stay applied.
func (e *Engine) Migrate(ctx context.Context, opts MigrateOptions) ([]migration.Key, error) {
	plan, err := e.plan(opts.Target)
	if err != nil {
		return nil, err
	}

	conn, release, err := e.session(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	applied, err := e.applied(ctx, conn)
	if err != nil {
		return nil, err
	}

	var done []migration.Key
	state := schema.NewState()
	for _, key := range plan {
		m, _ := e.graph.Node(key)
		from := state.Clone()
		if err := replay(m, state); err != nil {
			return done, err
		}
		if _, ok := applied[key]; ok {
			continue
		}
		for _, dep := range m.Deps {
			if _, ok := applied[dep]; !ok {
				return done, fmt.Errorf("%w: %s requires %s", migration.ErrDependencyUnsatisfied, key, dep)
			}
		}
		if err := m.Validate(); err != nil {
			return done, err
		}
		if err := e.applyStep(ctx, conn, m, from, opts.Fake); err != nil {
			return done, err
		}
		applied[key] = MigrationRecord{App: key.App, Name: key.Name}
		done = append(done, key)
	}

	if len(done) == 0 {
		e.logger.Info("no pending migrations")
	}
	return done, nil
}

func (e *Engine) plan(target *migration.Key) ([]migration.Key, error) {
	if target == nil {
		return e.graph.FullPlan(), nil
	}
	return e.graph.ForwardsPlan(*target)
}

type PlanStep struct {
	Key        migration.Key
	Applied    bool
	Operations []string
}

// Plan lists the steps Migrate would walk through for target.
func (e *Engine) Plan(ctx context.Context, target *migration.Key) ([]PlanStep, error) {
	plan, err := e.plan(target)
	if err != nil {
		return nil, err
	}
	if err := e.EnsureLedger(ctx); err != nil {
		return nil, err
	}
	applied, err := e.applied(ctx, e.db)
	if err != nil {
		return nil, err
	}
	steps := make([]PlanStep, 0, len(plan))
	for _, key := range plan {
		m, _ := e.graph.Node(key)
		_, done := applied[key]
		step := PlanStep{Key: key, Applied: done}
		for _, op := range m.Ops {
			step.Operations = append(step.Operations, op.Describe())
		}
		steps = append(steps, step)
	}
	return steps, nil
}

// SQLFor renders the DDL of one descriptor without touching the database.
func (e *Engine) SQLFor(key migration.Key) ([]string, error) {
	m, ok := e.graph.Node(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", migration.ErrUnknownMigration, key)
	}
	plan, err := e.graph.ForwardsPlan(key)
	if err != nil {
		return nil, err
	}
	state, err := e.graph.State(plan[:len(plan)-1])
	if err != nil {
		return nil, err
	}

	out := []string{"BEGIN;"}
	for _, op := range m.Ops {
		before := state.Clone()
		if err := op.StateForwards(m.App, state); err != nil {
			return nil, fmt.Errorf("%s: %w", op.Describe(), err)
		}
		stmts, err := op.DatabaseForwards(m.App, e.db.Dialect, before, state)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op.Describe(), err)
		}
		out = append(out, "--", "-- "+op.Describe(), "--")
		out = append(out, stmts...)
	}
	out = append(out, "COMMIT;")
	return out, nil
}

type StatusReport struct {
	Applied []MigrationRecord
	Pending []migration.Key
	// Drifted lists applied descriptors whose checksum no longer matches.
	Drifted []migration.Key
	// Unknown lists ledger rows with no registered descriptor.
	Unknown []MigrationRecord
}

func (e *Engine) Status(ctx context.Context) (*StatusReport, error) {
	if err := e.EnsureLedger(ctx); err != nil {
		return nil, err
	}
	records, err := e.queryRecords(ctx, e.db, "", 0)
	if err != nil {
		return nil, err
	}

	report := &StatusReport{}
	applied := map[migration.Key]bool{}
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		applied[r.Key()] = true
		m, ok := e.graph.Node(r.Key())
		if !ok {
			report.Unknown = append(report.Unknown, r)
			continue
		}
		report.Applied = append(report.Applied, r)
		sum, err := migration.Checksum(m)
		if err != nil {
			return nil, err
		}
		if r.Checksum != "" && r.Checksum != sum {
			report.Drifted = append(report.Drifted, r.Key())
		}
	}
	for _, key := range e.graph.FullPlan() {
		if !applied[key] {
			report.Pending = append(report.Pending, key)
		}
	}
	return report, nil
}

// CheckConsistentHistory fails when an applied descriptor has an unapplied
// dependency or its checksum has drifted.
func (e *Engine) CheckConsistentHistory(ctx context.Context) error {
	report, err := e.Status(ctx)
	if err != nil {
		return err
	}
	applied := map[migration.Key]bool{}
	for _, r := range report.Applied {
		applied[r.Key()] = true
	}
	for _, r := range report.Applied {
		m, _ := e.graph.Node(r.Key())
		for _, dep := range m.Deps {
			if !applied[dep] {
				return fmt.Errorf("%w: %s is applied before its dependency %s", migration.ErrInconsistentHistory, r.Key(), dep)
			}
		}
	}
	if len(report.Drifted) > 0 {
		return fmt.Errorf("%w: %v", migration.ErrChecksumMismatch, report.Drifted)
	}
	return nil
}

// History returns ledger rows, newest first, optionally filtered by app.
func (e *Engine) History(ctx context.Context, limit int, app string) ([]MigrationRecord, error) {
	if err := e.EnsureLedger(ctx); err != nil {
		return nil, err
	}
	return e.queryRecords(ctx, e.db, app, limit)
}

// Logs returns audit log entries, newest first.
func (e *Engine) Logs(ctx context.Context, limit int) ([]MigrationLog, error) {
	if err := e.EnsureLedger(ctx); err != nil {
		return nil, err
	}
	query := `
		SELECT id, run_id, logged_at, level, message, user_name, details, migration_name
		FROM migration_logs
		ORDER BY id DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := e.db.QueryContext(ctx, e.db.Dialect.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query migration logs: %w", err)
	}
	defer rows.Close()

	var logs []MigrationLog
	for rows.Next() {
		var (
			log      MigrationLog
			loggedAt string
		)
		if err := rows.Scan(&log.ID, &log.RunID, &loggedAt, &log.Level, &log.Message, &log.User, &log.Details, &log.MigrationName); err != nil {
			return nil, fmt.Errorf("scan migration log: %w", err)
		}
		log.Timestamp, _ = time.Parse(time.RFC3339Nano, loggedAt)
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

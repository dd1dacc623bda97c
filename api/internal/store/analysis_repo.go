package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver

	"cube-solver/api/internal/cube"
)

// AnalysisRecord — запись аудита об успешном анализе. На ответы не влияет
// и в обработке запросов не читается.
type AnalysisRecord struct {
	RequestID   string
	Faces       cube.State
	Steps       []cube.MoveStep
	Engine      string
	VisionModel string
	TextModel   string
	Duration    time.Duration
}

type AnalysisRepo struct{ DB *sql.DB }

func NewAnalysisRepo(db *sql.DB) *AnalysisRepo { return &AnalysisRepo{DB: db} }

// Open подключается к Postgres через pgx и проверяет соединение.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(1 * time.Hour)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Ping: %w", err)
	}
	return db, nil
}

const createAnalyses = `
create table if not exists cube_analyses (
  id           bigserial primary key,
  created_at   timestamptz not null default now(),
  request_id   text not null,
  engine       text not null,
  vision_model text not null,
  text_model   text not null,
  faces_json   jsonb not null,
  steps_json   jsonb not null,
  step_count   integer not null,
  duration_ms  bigint not null
)`

func (r *AnalysisRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, createAnalyses)
	return err
}

// Insert сохраняет результат анализа.
func (r *AnalysisRepo) Insert(ctx context.Context, rec AnalysisRecord) error {
	faces, err := json.Marshal(rec.Faces)
	if err != nil {
		return fmt.Errorf("marshal faces: %w", err)
	}
	steps, err := json.Marshal(rec.Steps)
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}
	const q = `
insert into cube_analyses (
  request_id, engine, vision_model, text_model,
  faces_json, steps_json, step_count, duration_ms
) values ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err = r.DB.ExecContext(ctx, q,
		rec.RequestID, rec.Engine, rec.VisionModel, rec.TextModel,
		faces, steps, len(rec.Steps), rec.Duration.Milliseconds())
	return err
}

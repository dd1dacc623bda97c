package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cube-solver/api/internal/cube"
)

func TestAnalysisRepo_Insert(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := AnalysisRecord{
		RequestID:   "req-1",
		Faces:       cube.State{cube.Up: cube.Grid{cube.White}},
		Steps:       []cube.MoveStep{{Move: "R", Description: "d", Reason: "r", TargetPieces: []string{"x"}}},
		Engine:      "gemini",
		VisionModel: "v",
		TextModel:   "t",
		Duration:    1500 * time.Millisecond,
	}

	mock.ExpectExec(regexp.QuoteMeta("insert into cube_analyses")).
		WithArgs("req-1", "gemini", "v", "t",
			[]byte(`{"U":["white"]}`),
			[]byte(`[{"move":"R","description":"d","reason":"r","targetPieces":["x"]}]`),
			1, int64(1500)).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, NewAnalysisRepo(db).Insert(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRepo_InsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("insert into cube_analyses").WillReturnError(errors.New("conn refused"))

	err = NewAnalysisRepo(db).Insert(context.Background(), AnalysisRecord{RequestID: "x"})
	assert.EqualError(t, err, "conn refused")
}

func TestAnalysisRepo_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("create table if not exists cube_analyses")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, NewAnalysisRepo(db).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

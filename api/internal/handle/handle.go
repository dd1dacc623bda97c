package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"cube-solver/api/internal/apperr"
	"cube-solver/api/internal/cube"
	"cube-solver/api/internal/logger"
	"cube-solver/api/internal/store"
	"cube-solver/api/internal/vision"
)

type Extractor interface {
	Extract(ctx context.Context, face cube.Face, data []byte) (cube.Grid, error)
}

type Planner interface {
	Plan(ctx context.Context, state cube.State) ([]cube.MoveStep, error)
}

// Recorder пишет аудит успешных анализов. nil — аудит выключен.
type Recorder interface {
	Insert(ctx context.Context, rec store.AnalysisRecord) error
}

type Options struct {
	MaxUploadBytes int64
	MaxImagePixels int64
	Engine         string
	VisionModel    string
	TextModel      string
}

const DefaultMaxUploadBytes int64 = 5 << 20

type Handle struct {
	extractor Extractor
	planner   Planner
	recorder  Recorder
	log       *zap.Logger
	opt       Options
}

func New(x Extractor, p Planner, rec Recorder, log *zap.Logger, opt Options) *Handle {
	if log == nil {
		log = zap.NewNop()
	}
	if opt.MaxUploadBytes <= 0 {
		opt.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opt.MaxImagePixels <= 0 {
		opt.MaxImagePixels = vision.DefaultMaxPixels
	}
	return &Handle{
		extractor: x,
		planner:   p,
		recorder:  rec,
		log:       log,
		opt:       opt,
	}
}

type errorBody struct {
	Detail    any    `json:"detail"`
	Traceback string `json:"traceback,omitempty"`
}

type missingField struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError переводит ошибку в {detail}. Возвращает записанный статус.
func writeError(ctx context.Context, w http.ResponseWriter, err error) int {
	e := apperr.As(err)
	code := e.Status()
	log := logger.From(ctx).With(zap.String("kind", string(e.Kind)), zap.Int("status", code))

	body := errorBody{Detail: e.Message}
	if e.Kind == apperr.Unhandled {
		body.Traceback = string(debug.Stack())
		log.Error("request failed", zap.Error(err))
	} else {
		log.Warn("request failed", zap.Error(err))
	}
	writeJSON(w, code, body)
	return code
}

func writeMissing(ctx context.Context, w http.ResponseWriter, faces []cube.Face) int {
	detail := make([]missingField, 0, len(faces))
	names := make([]string, 0, len(faces))
	for _, f := range faces {
		detail = append(detail, missingField{
			Loc:  []string{"body", string(f)},
			Msg:  "field required",
			Type: "value_error.missing",
		})
		names = append(names, string(f))
	}
	logger.From(ctx).Warn("missing faces",
		zap.String("kind", string(apperr.ValidationError)),
		zap.Strings("faces", names))
	writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: detail})
	return http.StatusUnprocessableEntity
}

package handle

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cube-solver/api/internal/apperr"
	"cube-solver/api/internal/cube"
	"cube-solver/api/internal/logger"
	"cube-solver/api/internal/metrics"
	"cube-solver/api/internal/store"
	"cube-solver/api/internal/util"
	"cube-solver/api/internal/vision"
)

const (
	RequestIDHeader = "X-Request-ID"

	auditTimeout = 5 * time.Second
)

// AnalyzeCube — POST /api/analyze-cube: шесть фото граней в multipart,
// в ответ состояние куба и шаги решения.
func (h *Handle) AnalyzeCube(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	reqID := r.Header.Get(RequestIDHeader)
	if reqID == "" {
		reqID = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, reqID)

	log := h.log.With(zap.String("request_id", reqID))
	ctx := logger.With(r.Context(), log)

	code := h.analyze(ctx, w, r, reqID, started)
	metrics.ObserveRequest(code, started)
	log.Info("analyze done", zap.Int("status", code), zap.Duration("took", time.Since(started)))
}

func (h *Handle) analyze(ctx context.Context, w http.ResponseWriter, r *http.Request, reqID string, started time.Time) int {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorBody{Detail: "Method Not Allowed"})
		return http.StatusMethodNotAllowed
	}

	maxBody := h.opt.MaxUploadBytes*int64(len(cube.Faces)) + 1<<20
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)

	uploads, err := h.readFaces(r)
	if err != nil {
		return writeError(ctx, w, err)
	}
	if missing := missingFaces(uploads); len(missing) > 0 {
		return writeMissing(ctx, w, missing)
	}

	state := make(cube.State, len(cube.Faces))
	for _, face := range cube.Faces {
		data := uploads[face]
		logger.From(ctx).Debug("face received",
			zap.String("face", string(face)),
			zap.Int("bytes", len(data)),
			zap.String("mime", util.PickMIME(data)))
		if err := vision.ValidateMax(face, data, h.opt.MaxImagePixels); err != nil {
			return writeError(ctx, w, err)
		}
		grid, err := h.extractor.Extract(ctx, face, data)
		if err != nil {
			return writeError(ctx, w, err)
		}
		logger.From(ctx).Debug("face extracted", zap.String("face", string(face)))
		state[face] = grid
	}

	steps, err := h.planner.Plan(ctx, state)
	if err != nil {
		return writeError(ctx, w, err)
	}

	writeJSON(w, http.StatusOK, cube.Envelope{Status: cube.StatusOK, Faces: state, Steps: steps})

	h.audit(ctx, store.AnalysisRecord{
		RequestID:   reqID,
		Faces:       state,
		Steps:       steps,
		Engine:      h.opt.Engine,
		VisionModel: h.opt.VisionModel,
		TextModel:   h.opt.TextModel,
		Duration:    time.Since(started),
	})
	return http.StatusOK
}

// readFaces читает части multipart по одной, чтобы ограничить размер каждой.
// Тело без multipart считается запросом без полей.
func (h *Handle) readFaces(r *http.Request) (map[cube.Face][]byte, error) {
	uploads := make(map[cube.Face][]byte, len(cube.Faces))

	mr, err := r.MultipartReader()
	if err != nil {
		return uploads, nil
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return uploads, nil
		}
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return nil, apperr.Newf(apperr.PayloadTooLarge, "Request body exceeds %d bytes", mbe.Limit)
			}
			return nil, malformedBody(err)
		}

		face, ok := faceOf(part.FormName())
		if !ok || uploads[face] != nil {
			_ = part.Close()
			continue
		}

		data, err := io.ReadAll(io.LimitReader(part, h.opt.MaxUploadBytes+1))
		_ = part.Close()
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				return nil, apperr.Newf(apperr.PayloadTooLarge, "Request body exceeds %d bytes", mbe.Limit)
			}
			return nil, malformedBody(fmt.Errorf("read face %s: %w", face, err))
		}
		if int64(len(data)) > h.opt.MaxUploadBytes {
			return nil, apperr.Newf(apperr.PayloadTooLarge, "Image for face %s exceeds %d bytes", face, h.opt.MaxUploadBytes)
		}
		if data == nil {
			data = []byte{}
		}
		uploads[face] = data
	}
}

// malformedBody — битое или оборванное multipart-тело, ошибка клиента.
func malformedBody(err error) error {
	return apperr.Wrap(apperr.MalformedBody, err, "There was an error parsing the body")
}

func faceOf(name string) (cube.Face, bool) {
	for _, f := range cube.Faces {
		if string(f) == name {
			return f, true
		}
	}
	return "", false
}

func missingFaces(uploads map[cube.Face][]byte) []cube.Face {
	var out []cube.Face
	for _, f := range cube.Faces {
		if _, ok := uploads[f]; !ok {
			out = append(out, f)
		}
	}
	return out
}

// audit не влияет на ответ: ошибки только логируются.
func (h *Handle) audit(ctx context.Context, rec store.AnalysisRecord) {
	if h.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), auditTimeout)
	defer cancel()
	if err := h.recorder.Insert(ctx, rec); err != nil {
		logger.From(ctx).Warn("audit insert failed", zap.Error(err))
	}
}

package vision

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"cube-solver/api/internal/apperr"
	"cube-solver/api/internal/cube"
	"cube-solver/api/internal/llm/prompt"
	"cube-solver/api/internal/logger"
	"cube-solver/api/internal/util"
)

// Model — мультимодальная модель (llm.Client в проде, фейк в тестах).
type Model interface {
	Vision(ctx context.Context, prompt string, image []byte, mime string) (string, error)
}

type Extractor struct {
	model Model
}

func NewExtractor(m Model) *Extractor {
	return &Extractor{model: m}
}

// Extract — один запрос к vision-модели на грань. Повторов при кривом ответе нет.
func (x *Extractor) Extract(ctx context.Context, face cube.Face, data []byte) (cube.Grid, error) {
	log := logger.From(ctx).With(zap.String("face", face.String()))

	img, format, err := toRGB(data)
	if err != nil {
		return nil, &apperr.Error{
			Kind:    apperr.InvalidImage,
			Message: "Invalid image for face " + face.String(),
			Err:     err,
		}
	}
	payload, err := encodePNG(img)
	if err != nil {
		return nil, fmt.Errorf("face %s: encode png: %w", face, err)
	}
	log.Debug("sending face to vision model",
		zap.String("source_format", format),
		zap.Int("width", img.Bounds().Dx()),
		zap.Int("height", img.Bounds().Dy()),
		zap.Int("png_bytes", len(payload)),
	)

	reply, err := x.model.Vision(ctx, prompt.FaceColors, payload, "image/png")
	if err != nil {
		return nil, err
	}

	grid, err := ParseGrid(reply)
	if err != nil {
		log.Warn("bad color reply", zap.Error(err), zap.String("raw", util.Truncate(reply, 512)))
		return nil, err
	}
	return grid, nil
}

// ParseGrid разбирает ответ модели: JSON-массив ровно из 9 известных цветов.
func ParseGrid(reply string) (cube.Grid, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal([]byte(util.StripCodeFences(reply)), &raw); err != nil {
		return nil, apperr.ColorExtraction(err, reply)
	}
	if len(raw) != cube.FaceletsPerFace {
		return nil, apperr.ColorExtraction(
			fmt.Errorf("Invalid response format - expected array of %d colors, got %d", cube.FaceletsPerFace, len(raw)),
			reply)
	}
	grid := make(cube.Grid, 0, cube.FaceletsPerFace)
	for i, r := range raw {
		var s string
		if err := json.Unmarshal(r, &s); err != nil {
			return nil, apperr.ColorExtraction(fmt.Errorf("entry %d is not a string: %s", i, r), reply)
		}
		c, ok := cube.ParseColor(s)
		if !ok {
			return nil, apperr.ColorExtraction(fmt.Errorf("entry %d: unknown color %q", i, s), reply)
		}
		grid = append(grid, c)
	}
	return grid, nil
}

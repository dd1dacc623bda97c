package solver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"cube-solver/api/internal/apperr"
	"cube-solver/api/internal/cube"
	"cube-solver/api/internal/llm/prompt"
	"cube-solver/api/internal/logger"
	"cube-solver/api/internal/util"
)

// Model — текстовая генеративная модель.
type Model interface {
	Text(ctx context.Context, prompt string) (string, error)
}

type Planner struct {
	model  Model
	schema *gojsonschema.Schema
}

func NewPlanner(m Model) (*Planner, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(prompt.StepsSchema))
	if err != nil {
		return nil, fmt.Errorf("steps schema: %w", err)
	}
	return &Planner{model: m, schema: schema}, nil
}

// Plan — один вызов текстовой модели на запрос.
func (p *Planner) Plan(ctx context.Context, state cube.State) ([]cube.MoveStep, error) {
	if !state.Complete() {
		return nil, errors.New("solver: incomplete cube state")
	}
	serialized, err := SerializeState(state)
	if err != nil {
		return nil, err
	}

	reply, err := p.model.Text(ctx, prompt.Solution(serialized))
	if err != nil {
		return nil, err
	}

	steps, err := p.ParseSteps(reply)
	if err != nil {
		logger.From(ctx).Warn("bad solution reply", zap.Error(err), zap.String("raw", util.Truncate(reply, 1024)))
		return nil, err
	}
	return steps, nil
}

// SerializeState — человекочитаемый JSON: ключ на грань, порядок U R F D L B.
func SerializeState(state cube.State) (string, error) {
	b, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize cube state: %w", err)
	}
	return string(b), nil
}

// ParseSteps разбирает ответ модели и проверяет форму шагов по prompt.StepsSchema.
func (p *Planner) ParseSteps(reply string) ([]cube.MoveStep, error) {
	body := util.StripCodeFences(reply)

	var doc any
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, apperr.SolutionGeneration(err, reply)
	}

	res, err := p.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, apperr.SolutionGeneration(err, reply)
	}
	if !res.Valid() {
		errs := make([]string, len(res.Errors()))
		for i, desc := range res.Errors() {
			errs[i] = desc.String()
		}
		return nil, apperr.SolutionGeneration(
			fmt.Errorf("steps do not match schema: %s", strings.Join(errs, "; ")), reply)
	}

	var steps []cube.MoveStep
	if err := json.Unmarshal([]byte(body), &steps); err != nil {
		return nil, apperr.SolutionGeneration(err, reply)
	}
	if steps == nil {
		steps = []cube.MoveStep{}
	}
	return steps, nil
}

package llm

import (
	"context"
	"errors"
)

// Engine — внешний генеративный сервис. Ответ возвращается как непрозрачный текст,
// разбор делают vision и solver.
type Engine interface {
	Name() string
	// Vision отправляет инструкцию и одну картинку в мультимодальную модель.
	Vision(ctx context.Context, prompt string, image []byte, mime string) (string, error)
	// Text отправляет одну текстовую инструкцию в текстовую модель.
	Text(ctx context.Context, prompt string) (string, error)
}

var ErrEmptyResponse = errors.New("llm: empty response")

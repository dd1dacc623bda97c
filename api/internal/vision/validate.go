package vision

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	// зарегистрированные декодеры
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"cube-solver/api/internal/apperr"
	"cube-solver/api/internal/cube"
)

// DefaultMaxPixels — порог «бомбы распаковки»: вдвое выше предупреждения PIL (178956970).
const DefaultMaxPixels int64 = 2 * 178956970

var errTooManyPixels = errors.New("image exceeds pixel limit")

// Validate проверяет, что загрузка грани не пустая и читается как растровое изображение
// не больше DefaultMaxPixels. Ничего не возвращает и не меняет.
func Validate(face cube.Face, data []byte) error {
	return ValidateMax(face, data, DefaultMaxPixels)
}

// ValidateMax — Validate с явным лимитом пикселей. Смотрит только заголовок,
// поэтому картинка с огромными размерами отсекается до полного декодирования.
func ValidateMax(face cube.Face, data []byte, maxPixels int64) error {
	if len(data) == 0 {
		return apperr.Newf(apperr.EmptyPayload, "No data for face %s", face)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err == nil && maxPixels > 0 && int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		err = fmt.Errorf("%w: %dx%d > %d", errTooManyPixels, cfg.Width, cfg.Height, maxPixels)
	}
	if err != nil {
		return &apperr.Error{
			Kind:    apperr.InvalidImage,
			Message: "Invalid image for face " + string(face),
			Err:     err,
		}
	}
	return nil
}

// toRGB декодирует картинку целиком и сводит её к RGB: прозрачность
// накладывается на белый фон.
func toRGB(data []byte) (*image.RGBA, string, error) {
	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Over)
	return dst, format, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

package cube

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Face — метка грани в стандартной нотации.
type Face string

const (
	Up    Face = "U"
	Right Face = "R"
	Front Face = "F"
	Down  Face = "D"
	Left  Face = "L"
	Back  Face = "B"
)

// Faces — порядок обхода граней при анализе запроса.
var Faces = []Face{Up, Right, Front, Down, Left, Back}

func (f Face) String() string { return string(f) }

type Color string

const (
	White  Color = "white"
	Yellow Color = "yellow"
	Red    Color = "red"
	Orange Color = "orange"
	Blue   Color = "blue"
	Green  Color = "green"
)

var Colors = []Color{White, Yellow, Red, Orange, Blue, Green}

// ParseColor приводит ответ модели к одной из шести допустимых меток.
func ParseColor(s string) (Color, bool) {
	c := Color(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Colors {
		if c == known {
			return c, true
		}
	}
	return "", false
}

// FaceletsPerFace — 3×3 наклейки, слева направо, сверху вниз.
const FaceletsPerFace = 9

type Grid []Color

// State — полное состояние куба. Частичные состояния наружу не отдаются.
type State map[Face]Grid

// Complete сообщает, есть ли сетка из 9 цветов для каждой из шести граней.
func (s State) Complete() bool {
	for _, f := range Faces {
		if len(s[f]) != FaceletsPerFace {
			return false
		}
	}
	return len(s) == len(Faces)
}

// MarshalJSON пишет грани в каноническом порядке U R F D L B,
// чтобы промпт и ответ были детерминированными.
func (s State) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, f := range Faces {
		g, ok := s[f]
		if !ok {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, _ := json.Marshal(string(f))
		buf.Write(k)
		buf.WriteByte(':')
		v, err := json.Marshal([]Color(g))
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MoveStep — один шаг решения. Порядок шагов значим.
type MoveStep struct {
	Move         string   `json:"move"`
	Description  string   `json:"description"`
	Reason       string   `json:"reason"`
	TargetPieces []string `json:"targetPieces"`
}

const StatusOK = "ok"

// Envelope — единственная форма успешного ответа.
type Envelope struct {
	Status string     `json:"status"`
	Faces  State      `json:"faces"`
	Steps  []MoveStep `json:"steps"`
}

package prompt

import "fmt"

// FaceColors — инструкция для vision-модели: ровно 9 цветов, только 6 имён,
// порядок с левого верхнего угла до правого нижнего.
const FaceColors = `Analyze this Rubik's cube face image. Return ONLY a JSON array of exactly 9 colors representing the face from top-left to bottom-right, row by row (e.g., ["white", "red", "blue", ...]).
Use ONLY these color names: white, yellow, red, orange, blue, green.
Do not add any text, comments or code fences outside the JSON array.`

const solutionTemplate = `You are a Rubik's cube solving expert. Given a cube state, provide a step-by-step solution using standard notation (R, U, L, D, F, B, with ' for counterclockwise and 2 for double turns).

Here's a Rubik's cube state represented as a dictionary of faces (U=Up, R=Right, F=Front, D=Down, L=Left, B=Back; each face lists 9 colors from top-left to bottom-right):
%s

Provide a solution in this JSON format and return ONLY the JSON array:
[{"move": "R", "description": "Turn right face clockwise", "reason": "Setting up white cross", "targetPieces": ["white edge", "red-white edge"]}]`

// Solution встраивает сериализованное состояние куба в инструкцию для текстовой модели.
func Solution(state string) string {
	return fmt.Sprintf(solutionTemplate, state)
}

// StepsSchema — форма ответа планировщика (solver проверяет её через gojsonschema).
const StepsSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "title": "MoveSteps",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["move", "description", "reason", "targetPieces"],
    "additionalProperties": false,
    "properties": {
      "move": {"type": "string", "pattern": "^[UDLRFB]['2]?$"},
      "description": {"type": "string"},
      "reason": {"type": "string"},
      "targetPieces": {"type": "array", "items": {"type": "string"}}
    }
  }
}`

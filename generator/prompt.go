package generator

import (
	"fmt"
	"time"

	"github.com/Rajangupta9/taskflow/models"
)

const systemInstruction = `You are an expert productivity assistant.
Your goal is to break down user goals into actionable, concrete tasks.
Focus on realistic daily steps.`

// jsonHint is appended for providers without a response schema option.
// Ollama's json format always yields an object, so the list sits under
// "tasks".
const jsonHint = `Respond with a JSON object only, of the form {"tasks": [...]}.
Each element of "tasks" is an object with "title" (a concise action title),
"category" (one of Work, Personal, Health, Learning, Finance) and "status"
(one of todo, in-progress, done).`

func userPrompt(goal string, date time.Time) string {
	return fmt.Sprintf("My goal is: %q. Generate 3 to 5 actionable tasks I can do starting %s.",
		goal, models.FormatDate(date))
}

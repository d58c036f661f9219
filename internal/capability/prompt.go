// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package capability

import (
	"bytes"
	"strings"
	"text/template"

	"github.com/pdiddy/qa-synth/internal/llm"
)

// DefaultPersona names the course prompts are written for when none is configured.
const DefaultPersona = "certified public accountant (CPA) exam"

var funcs = template.FuncMap{
	"join": func(items []string) string { return strings.Join(items, "; ") },
}

// rolePrompt pairs the system and user templates of one role.
type rolePrompt struct {
	system *template.Template
	user   *template.Template
}

func newRolePrompt(name, system, user string) rolePrompt {
	return rolePrompt{
		system: template.Must(template.New(name + "-system").Funcs(funcs).Parse(system)),
		user:   template.Must(template.New(name + "-user").Funcs(funcs).Parse(user)),
	}
}

var (
	outlinePrompt = newRolePrompt("outline",
		`You design lesson plans for a {{.Persona}} course. Produce a sectioned outline; each section carries 2-4 teachable points.`,
		`Subject: {{.Topic}}
Respond with a JSON array only. Each element has the fields "section" (string) and "bullet_points" (array of strings).`)

	notePrompt = newRolePrompt("note",
		`Write a short teaching note for a {{.Persona}} knowledge point so students can grasp it quickly.`,
		`Heading: {{.Heading}}
Points: {{join .Bullets}}
Write an explanation of 80-120 characters.`)

	qaPrompt = newRolePrompt("qa",
		`You teach a {{.Persona}} course. Write one exam question with a reference answer for the given outline point. Each variant must approach the point from a different angle.`,
		`Subject: {{.Topic}}
Points: {{join .Bullets}}
Difficulty: {{.Difficulty}}
Variant: {{.Variant}}
Do not repeat questions already written for this subject. Use exactly this format:
Question: <question>
Answer: <reference answer>`)

	answerPrompt = newRolePrompt("answer",
		`You are a {{.Persona}} teaching expert. Answer the student's question directly, concisely, and in an organized way.`,
		`Question: {{.Question}}`)

	reviewPrompt = newRolePrompt("review",
		`You are a {{.Persona}} exam-writing expert. Score the following question and answer out of 10 and comment on them.`,
		`Question: {{.Question}}
Answer: {{.Answer}}
Respond with a JSON object containing "score" (number 0-10) and "review" (string).`)
)

// render executes both templates of p against data.
func (p rolePrompt) render(data any, temperature float64) (llm.Prompt, error) {
	var sys, usr bytes.Buffer
	if err := p.system.Execute(&sys, data); err != nil {
		return llm.Prompt{}, err
	}
	if err := p.user.Execute(&usr, data); err != nil {
		return llm.Prompt{}, err
	}
	return llm.Prompt{System: sys.String(), User: usr.String(), Temperature: temperature}, nil
}

type outlineData struct {
	Persona string
	Topic   string
}

type noteData struct {
	Persona string
	Heading string
	Bullets []string
}

type qaData struct {
	Persona    string
	Topic      string
	Bullets    []string
	Difficulty string
	Variant    int
}

type answerData struct {
	Persona  string
	Question string
}

type reviewData struct {
	Persona  string
	Question string
	Answer   string
}

// Package prompt renders the fixed prompt templates sent to the text model
package prompt

import (
	"strings"
	"text/template"
)

// DefaultTopic is used when a simplify request carries no context
const DefaultTopic = "space"

var (
	simplifyTmpl = template.Must(template.New("simplify").Parse(simplifyText))
	answerTmpl   = template.Must(template.New("answer").Parse(answerText))
)

const simplifyText = `You are a friendly space educator explaining to a 14-year-old student.
Simplify the following text about {{.Topic}} into easy-to-understand language.
Use short sentences, avoid jargon, and make it engaging.

Original text:
{{.Text}}

Simplified version:`

const answerText = `You are a friendly space educator answering questions for students (14+ years old).
Provide a clear, accurate, and engaging answer using simple language.
Keep the answer concise (2-3 paragraphs max).

Question: {{.Question}}

Answer:`

// Simplify returns the prompt asking the model to rewrite text for a young
// reader. topic falls back to DefaultTopic.
func Simplify(text, topic string) string {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = DefaultTopic
	}
	return render(simplifyTmpl, map[string]string{"Text": text, "Topic": topic})
}

// Answer returns the prompt asking the model to answer a student's question
func Answer(question string) string {
	return render(answerTmpl, map[string]string{"Question": question})
}

func render(t *template.Template, data map[string]string) string {
	var sb strings.Builder
	// templates are fixed and data is a flat string map; Execute cannot fail
	_ = t.Execute(&sb, data)
	return sb.String()
}

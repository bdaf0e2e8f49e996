package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSimplify(t *testing.T) {
	p := Simplify("A coronal mass ejection is a release of plasma.", "solar weather")
	require.Contains(t, p, "about solar weather into")
	require.Contains(t, p, "Original text:\nA coronal mass ejection is a release of plasma.\n")
	require.True(t, strings.HasSuffix(p, "Simplified version:"))
}

func TestSimplifyDefaultTopic(t *testing.T) {
	p := Simplify("x", "  ")
	require.Contains(t, p, "about space into")
}

func TestAnswer(t *testing.T) {
	p := Answer("Why is Mars red?")
	require.Contains(t, p, "Question: Why is Mars red?")
	require.True(t, strings.HasSuffix(p, "Answer:"))
}

func TestTemplatesDoNotEscape(t *testing.T) {
	p := Answer(`What is "<dark matter>" & why?`)
	require.Contains(t, p, `What is "<dark matter>" & why?`)
}

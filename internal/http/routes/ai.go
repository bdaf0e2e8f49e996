package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/hlog"

	"github.com/briangreenhill/astroview/internal/http/httperr"
	"github.com/briangreenhill/astroview/internal/prompt"
)

// The AI routes are POST and so never served from the cache; the TTL is kept
// for when they become GET-addressable.
func (s *Server) aiRoutes() []route {
	return []route{
		{"simplify", http.MethodPost, "/simplify", 24 * time.Hour, s.handleSimplify},
		{"ask", http.MethodPost, "/simplify/ask", 24 * time.Hour, s.handleAsk},
	}
}

type simplifyRequest struct {
	Text    string `json:"text"`
	Context string `json:"context"`
}

type simplifyResponse struct {
	Simplified string `json:"simplified"`
	Original   string `json:"original"`
	Context    string `json:"context"`
	Demo       bool   `json:"_demo,omitempty"`
	Fallback   bool   `json:"_fallback,omitempty"`
	Message    string `json:"message,omitempty"`
}

func (s *Server) handleSimplify(w http.ResponseWriter, r *http.Request) error {
	var req simplifyRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Text) == "" {
		return httperr.Validation("Text is required", nil)
	}

	out := simplifyResponse{Simplified: req.Text, Original: req.Text, Context: req.Context}
	if s.Clients.Gemini == nil {
		out.Demo = true
		out.Message = "Using demo mode. Set GEMINI_API_KEY for AI simplification."
		writeJSON(w, out)
		return nil
	}

	text, err := s.Clients.Gemini.GenerateContent(r.Context(), prompt.Simplify(req.Text, req.Context))
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("simplify failed, returning original text")
		out.Fallback = true
		out.Message = "AI service temporarily unavailable. Showing original text."
		writeJSON(w, out)
		return nil
	}
	out.Simplified = text
	writeJSON(w, out)
	return nil
}

type askRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Answer   string `json:"answer"`
	Question string `json:"question"`
	Demo     bool   `json:"_demo,omitempty"`
	Error    bool   `json:"_error,omitempty"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) error {
	var req askRequest
	if err := decodeBody(r, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.Question) == "" {
		return httperr.Validation("Question is required", nil)
	}

	if s.Clients.Gemini == nil {
		writeJSON(w, askResponse{
			Answer:   "AI is not configured. Please set GEMINI_API_KEY.",
			Question: req.Question,
			Demo:     true,
		})
		return nil
	}

	answer, err := s.Clients.Gemini.GenerateContent(r.Context(), prompt.Answer(req.Question))
	if err != nil {
		hlog.FromRequest(r).Error().Err(err).Msg("ask failed")
		writeJSON(w, askResponse{
			Answer:   "I apologize, but I am temporarily unable to answer questions. Please try again later.",
			Question: req.Question,
			Error:    true,
		})
		return nil
	}
	writeJSON(w, askResponse{Answer: answer, Question: req.Question})
	return nil
}

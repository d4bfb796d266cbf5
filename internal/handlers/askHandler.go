package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/akolanti/docqa/internal/adapter"
	"github.com/akolanti/docqa/internal/api"
	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/internal/metrics"
	"github.com/akolanti/docqa/internal/rag"
)

const (
	eventToken       = "token"
	eventDiagnostics = "diagnostics"
	eventDone        = "done"
	eventError       = "error"
)

type tokenEvent struct {
	Text string `json:"text"`
}

// sseWriter frames server sent events and flushes after each one.
type sseWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newSSEWriter(w http.ResponseWriter) (*sseWriter, bool) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, false
	}
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	return &sseWriter{w: w, flusher: flusher}, true
}

func (s *sseWriter) send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// AskHandler godoc
// @Summary      Ask a question and stream the answer
// @Description  Retrieves candidates, reranks them and streams the grounded answer as server sent events.
// @Description  Events are token ({"text"}), then diagnostics (api.AskDiagnostics), then done. A failure at any step sends error (api.ErrorResponse) and closes the stream.
// @Tags         Messaging
// @Accept       json
// @Produce      text/event-stream
// @Param        request  body      api.AskRequest   true  "Question"
// @Success      200      {string}  string           "event stream"
// @Failure      400      {object}  api.JobResponse  "Empty question"
// @Router       /ask [post]
func AskHandler(w http.ResponseWriter, r *http.Request) {
	if !validateContext(r.Context()) {
		return
	}
	log := logRH.WithTrace(r.Context())

	var requestData api.AskRequest
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			log.Error("Couldn't close the Ask handler reader", "error", err)
		}
	}(r.Body)
	if err := json.NewDecoder(r.Body).Decode(&requestData); err != nil || strings.TrimSpace(requestData.Question) == "" {
		WriteErrorResponse(w, http.StatusBadRequest, "", "question is required")
		return
	}

	stream, ok := newSSEWriter(w)
	if !ok {
		WriteErrorResponse(w, http.StatusInternalServerError, "", "Streaming unsupported")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), config.LLMTimeout)
	defer cancel()

	if err := streamAnswer(ctx, handlerInstance.rag, requestData.Question, stream); err != nil {
		log.Warn("Ask stream ended with error", "error", err)
	}
}

// streamAnswer relays fragments as they arrive. Diagnostics follow the last
// fragment so a client can render the answer first.
func streamAnswer(ctx context.Context, service rag.Service, question string, stream *sseWriter) error {
	result, err := service.Ask(ctx, question)
	if err != nil {
		return sendFailure(stream, err)
	}

	for fragment, err := range result.Answer {
		if err != nil {
			return sendFailure(stream, err)
		}
		if err := stream.send(eventToken, tokenEvent{Text: fragment}); err != nil {
			// client went away
			return err
		}
		metrics.IncrementFragmentsStreamed()
	}

	if err := stream.send(eventDiagnostics, adapter.ToAskDiagnostics(result.Candidates, result.SelectedIndices, result.RelevantText)); err != nil {
		return err
	}
	return stream.send(eventDone, struct{}{})
}

func sendFailure(stream *sseWriter, cause error) error {
	if err := stream.send(eventError, errorBody(rag.ToJobError(cause))); err != nil {
		return err
	}
	return cause
}

package middleware

import (
	"net/http"
	"strconv"

	"github.com/akolanti/docqa/internal/handlers"
	"github.com/akolanti/docqa/internal/metrics"
	"github.com/akolanti/docqa/pkg/logger_i"
)

type requestResponseStruct struct {
	writer     http.ResponseWriter
	req        *http.Request
	badRequest failureStruct
	logger     *logger_i.Logger
}

type failureStruct struct {
	isBadRequest bool
	httpCode     int
	errorMessage string
	id           string
}

var logMW = logger_i.NewLogger("middleware")

var GetHandler = Wrap(handlers.GetHandler)

var ChatHandler = Wrap(handlers.ChatHandler)
var ChatHistoryHandler = Wrap(handlers.ChatHistoryHandler)
var GetStatusHandler = Wrap(handlers.GetStatusHandler)
var PostIngestHandler = Wrap(handlers.PostIngestHandler)
var AskHandler = Wrap(handlers.AskHandler)
var CollectionHandler = Wrap(handlers.CollectionHandler)

func Wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &metrics.HttpStatusRecorder{ResponseWriter: w, Status: http.StatusOK} //metrics
		re := processRequest(requestResponseStruct{req: r, writer: rec})

		if re.badRequest.isBadRequest {
			handleBadRequest(re)
		} else {
			next(rec, re.req)
		}

		metrics.HttpRequestsTotal.WithLabelValues(routePattern(r), strconv.Itoa(rec.Status)).Inc() //metrics
	}
}

func processRequest(re requestResponseStruct) requestResponseStruct {
	re.logger = logMW
	re = injectTrace(re)
	if re.badRequest.isBadRequest {
		return re
	}
	re.logger.Info("New request received", "method", re.req.Method, "path", re.req.URL.Path)
	return rateLimiter(re)
}

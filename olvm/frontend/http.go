package frontend

import (
	"io"
	"net/http"
	"strings"

	"github.com/Cloud-Foundations/olvm/lib/log"
	"github.com/Cloud-Foundations/olvm/lib/log/prefixlogger"
)

type httpServer struct {
	dispatcher Dispatcher
	logger     log.DebugLogger
}

func newHttpHandler(dispatcher Dispatcher,
	logger log.DebugLogger) http.Handler {
	s := &httpServer{
		dispatcher: dispatcher,
		logger:     prefixlogger.New("http: ", logger),
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics/", http.DefaultServeMux)
	mux.Handle("/metricsapi/", http.DefaultServeMux)
	mux.HandleFunc("/", s.commandHandler)
	return mux
}

func (s *httpServer) commandHandler(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	if req.Method != http.MethodGet && req.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		w.Write([]byte(`{"error": "unsupported method"}`))
		return
	}
	command := strings.Trim(req.URL.Path, "/")
	if command == "" {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "no command"}`))
		return
	}
	s.logger.Debugf(1, "%s: %s\n", req.RemoteAddr, command)
	body, err := io.ReadAll(io.LimitReader(req.Body, maxDatagramSize))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		w.Write(errorResponse(err))
		return
	}
	result, err := s.dispatcher.Dispatch(req.RemoteAddr, command,
		strings.TrimSpace(string(body)))
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write(errorResponse(err))
		return
	}
	w.Write([]byte(result))
}

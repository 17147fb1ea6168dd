package frontend

import (
	"encoding/json"
	"strings"
)

type errorReply struct {
	Error string `json:"error"`
}

func parse(line string) (string, string) {
	line = strings.TrimSpace(line)
	command, payload, _ := strings.Cut(line, " ")
	return command, strings.TrimSpace(payload)
}

func errorResponse(err error) []byte {
	data, _ := json.Marshal(errorReply{Error: err.Error()})
	return data
}

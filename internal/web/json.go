package web

import (
	"encoding/json"
	"net/http"

	"github.com/sweeney/dock-sensor/internal/actions"
)

// ActionResponse is the JSON body returned by the action endpoints.
type ActionResponse struct {
	Action string `json:"action"`
	Result string `json:"result"`
}

func formatAction(a actions.Action, result string) []byte {
	data, _ := json.Marshal(ActionResponse{Action: string(a), Result: result})
	return data
}

func writeAction(w http.ResponseWriter, code int, a actions.Action, result string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(formatAction(a, result))
}

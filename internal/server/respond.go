// internal/server/respond.go
package server

import (
	"encoding/json"
	"net/http"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeSuccess flattens the payload into the {"success": true, ...} shape.
func writeSuccess(w http.ResponseWriter, status int, payload interface{}) {
	body := map[string]interface{}{"success": true}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err == nil {
			var fields map[string]interface{}
			if json.Unmarshal(raw, &fields) == nil {
				for k, v := range fields {
					body[k] = v
				}
			}
		}
	}
	writeJSON(w, status, body)
}

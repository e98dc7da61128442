package stubapi

import (
	"encoding/json"
	"net/http"
)

// httpDescriptions mirrors the service's fixed code-description table.
var httpDescriptions = map[int]string{
	200: "OK - Solicitud procesada exitosamente",
	201: "Created - Recurso creado exitosamente",
	400: "Bad Request - Datos de entrada inválidos",
	401: "Unauthorized - Credenciales inválidas o no proporcionadas",
	403: "Forbidden - No tiene permisos para realizar esta acción",
	404: "Not Found - Recurso no encontrado",
	429: "Too Many Requests - Límite de peticiones excedido",
	500: "Internal Server Error - Error interno del servidor",
}

// apiResponse is the uniform envelope every JSON endpoint answers with.
type apiResponse struct {
	Success         bool   `json:"success"`
	Code            int    `json:"code"`
	CodeDescription string `json:"code_description"`
	Message         string `json:"message"`
	Data            any    `json:"data,omitempty"`
}

// writeResponse emits the envelope with the HTTP status matching its code.
func writeResponse(w http.ResponseWriter, code int, success bool, message string, data any) {
	desc, ok := httpDescriptions[code]
	if !ok {
		desc = "Desconocido"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(apiResponse{
		Success:         success,
		Code:            code,
		CodeDescription: desc,
		Message:         message,
		Data:            data,
	})
}

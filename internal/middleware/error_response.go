package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/todosync/internal/model"
)

// ErrorCodeHeader はエラーコードを本文を読まずに判別できるよう付与するヘッダー。
const ErrorCodeHeader = "X-Error-Code"

// ErrorResponseBody はブリッジが返すエラーの本文。
// MessageとActionはUIにそのまま表示できる文言。
type ErrorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action,omitempty"`
}

// internalError は想定外のエラー（panicや非APIError）に返す固定の内容。
var internalError = &model.APIError{
	Code:     "INTERNAL_ERROR",
	Message:  "Ocurrió un error inesperado",
	Category: "system",
	Action:   "Espera un momento e inténtalo de nuevo.",
}

// WriteErrorResponse はAPIErrorをJSONで書き込む。Unwrapで得られる元エラーは出力しない。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set(ErrorCodeHeader, apiErr.Code)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// WriteInternalServerError は500を返す。詳細は呼び出し側でログに残すこと。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteErrorResponse(w, http.StatusInternalServerError, internalError)
}

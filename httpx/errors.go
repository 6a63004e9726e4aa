package httpx

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/poll-creator/log"
)

// ErrorBody is the JSON body of every error response.
type ErrorBody struct {
	Detail string `json:"detail"`
	Errors []any  `json:"errors,omitempty"`
}

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, r *http.Request, code string, err error) {
	log.Errorf("%s: %s", code, err)
	writeError(w, r, http.StatusInternalServerError, ErrorBody{Detail: http.StatusText(http.StatusInternalServerError)})
}

// Will log a debug message, and send an HTTP response with status 404
func LogNotFound(w http.ResponseWriter, r *http.Request, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	writeError(w, r, http.StatusNotFound, ErrorBody{Detail: fmt.Sprintf("%v not found", id)})
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string) {
	log.Log(level, code)
	writeError(w, r, status, ErrorBody{Detail: http.StatusText(status)})
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	writeError(w, r, status, ErrorBody{Detail: errMsg})
}

// Like LogStatusMsg, with a list of detailed errors in the body
func LogStatusErrors(w http.ResponseWriter, r *http.Request, status int, level log.Level, code string, msg string, errs []any) {
	log.Log(level, code+":", msg)
	writeError(w, r, status, ErrorBody{Detail: msg, Errors: errs})
}

func writeError(w http.ResponseWriter, r *http.Request, status int, body ErrorBody) {
	render.Status(r, status)
	render.JSON(w, r, body)
}

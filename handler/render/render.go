package render

import (
	"encoding/json"
	"errors"
	"net/http"

	"lendfi/core"

	"github.com/sirupsen/logrus"
)

type H map[string]interface{}

// JSON render with json
func JSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorln("render json:", err)
	}
}

// Text render with text
func Text(w http.ResponseWriter, t string) {
	w.Header().Set("Content-Type", "application/text")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(t)); err != nil {
		logrus.Errorln("render text:", err)
	}
}

// Error write error
func Error(w http.ResponseWriter, statusCode, errCode int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(H{"code": errCode, "msg": err.Error()}); err != nil {
		logrus.Errorln("render error:", err)
	}
}

// BadRequest bad request error
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusBadRequest, -1, err)
}

// NotFoundRequest not found request error
func NotFoundRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusNotFound, -1, err)
}

// OperationError maps domain errors onto their codes. Limit errors carry
// the attempted value and the computed limit in the payload.
func OperationError(w http.ResponseWriter, err error) {
	var limitErr *core.LimitError
	if errors.As(err, &limitErr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		if err := json.NewEncoder(w).Encode(H{
			"code":      int(limitErr.Code),
			"msg":       err.Error(),
			"requested": limitErr.Requested,
			"limit":     limitErr.Limit,
		}); err != nil {
			logrus.Errorln("render error:", err)
		}
		return
	}

	var tokenErr *core.TokenBalanceError
	if errors.As(err, &tokenErr) {
		Error(w, http.StatusBadRequest, int(core.ErrInsufficientTokenBalance), err)
		return
	}

	var code core.ErrorCode
	if errors.As(err, &code) {
		status := http.StatusBadRequest
		if code == core.ErrOperationForbidden {
			status = http.StatusForbidden
		}

		Error(w, status, int(code), err)
		return
	}

	Error(w, http.StatusInternalServerError, int(core.ErrUnknown), err)
}

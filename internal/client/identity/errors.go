package identity

import (
	"encoding/json"
	"net/http"

	"github.com/dmitrijs2005/videotec/internal/client/models"
)

// errorBody is the error envelope of the identity service. Detail is either
// a string or a list of {"msg": ...} items.
type errorBody struct {
	Message string          `json:"message"`
	Detail  json.RawMessage `json:"detail"`
}

type detailItem struct {
	Msg string `json:"msg"`
}

func parseErrorBody(body []byte) errorBody {
	var eb errorBody
	_ = json.Unmarshal(body, &eb)
	return eb
}

// messages returns the detail messages in order.
func (eb errorBody) messages() []string {
	if len(eb.Detail) == 0 {
		return nil
	}

	var s string
	if err := json.Unmarshal(eb.Detail, &s); err == nil {
		if s == "" {
			return nil
		}
		return []string{s}
	}

	var items []detailItem
	if err := json.Unmarshal(eb.Detail, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it.Msg != "" {
			out = append(out, it.Msg)
		}
	}
	return out
}

// mapTokenError classifies a failed token request.
func mapTokenError(status int, body []byte, cause error) *models.AuthError {
	eb := parseErrorBody(body)
	msgs := eb.messages()

	switch {
	case status == http.StatusUnprocessableEntity:
		msg := models.JoinMessages(msgs)
		if msg == "" {
			msg = msgLoginFailed
		}
		return models.NewAuthError(models.KindValidation, msg, cause)
	case status >= 400 && status < 500:
		msg := msgLoginFailed
		if len(msgs) > 0 {
			msg = msgs[0]
		}
		return models.NewAuthError(models.KindInvalidCredentials, msg, cause)
	default:
		return models.NewAuthError(models.KindNetwork, msgLoginFailed, cause)
	}
}

// mapStatusError classifies a non-2xx answer to a bearer-authorized call.
func mapStatusError(status int, fallback string) *models.AuthError {
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return models.NewAuthError(models.KindInvalidCredentials, fallback, nil)
	}
	return models.NewAuthError(models.KindNetwork, fallback, nil)
}

// mapAccountError picks the message of a failed account call: message,
// then detail, then fallback.
func mapAccountError(status int, body []byte, fallback string) *models.AuthError {
	eb := parseErrorBody(body)
	msg := eb.Message
	if msg == "" {
		if msgs := eb.messages(); len(msgs) > 0 {
			msg = models.JoinMessages(msgs)
		}
	}
	if msg == "" {
		msg = fallback
	}

	kind := models.KindNetwork
	switch {
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest || status == http.StatusConflict:
		kind = models.KindValidation
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = models.KindInvalidCredentials
	}
	return models.NewAuthError(kind, msg, nil)
}

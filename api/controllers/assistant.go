package controllers

import (
	"net/http"

	"github.com/avpro-events/avpro-backend/api/responses"
	"github.com/avpro-events/avpro-backend/api/validators"
	"github.com/avpro-events/avpro-backend/internal/assistant"
	pkgerrors "github.com/avpro-events/avpro-backend/pkg/errors"
	"github.com/avpro-events/avpro-backend/pkg/logger"
)

type assistantChatRequest struct {
	Question string `json:"pregunta" validate:"required"`
}

// AssistantChat forwards a business question to the assistant with the
// current inventory context attached.
func AssistantChat(svc assistant.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "assistant service unavailable"))
			return
		}

		var payload assistantChatRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		answer, err := svc.Ask(r.Context(), payload.Question)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, answer)
	}
}

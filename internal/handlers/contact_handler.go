package handlers

import (
	"net/http"

	"verify_keep/internal/model"
	"verify_keep/internal/service"
	"verify_keep/internal/webutil"
)

type ContactHandler struct {
	service service.ContactService
}

func NewContactHandler(s service.ContactService) *ContactHandler {
	return &ContactHandler{service: s}
}

func (h *ContactHandler) SendContact(w http.ResponseWriter, r *http.Request) {
	var req model.ContactRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.SendContactMessage(r.Context(), &req); err != nil {
		handleServiceError(w, r, "Relaying contact message failed in service", err)
		return
	}

	webutil.RespondWithJSON(w, r, http.StatusOK, model.APIResponse{
		Success: true,
		Message: "Your message has been sent.",
	})
}

func (h *ContactHandler) SendJobApplication(w http.ResponseWriter, r *http.Request) {
	var req model.JobApplicationRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	if err := h.service.SendJobApplication(r.Context(), &req); err != nil {
		handleServiceError(w, r, "Relaying job application failed in service", err)
		return
	}

	webutil.RespondWithJSON(w, r, http.StatusOK, model.APIResponse{
		Success: true,
		Message: "Your application has been sent.",
	})
}

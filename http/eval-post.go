package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/veriwork/backend/councilsrvc"
	"github.com/veriwork/backend/httpjson"
	"github.com/veriwork/backend/logger"
	"github.com/veriwork/backend/srvcerror"
)

type evaluationRequest struct {
	ProjectID       string `json:"project_id"`
	SubmissionURL   string `json:"submission_url"`
	SubmissionNotes string `json:"submission_notes"`
}

func (httpserver *HttpServer) postEvaluation(w http.ResponseWriter, r *http.Request) {
	if !requireAuth(w, r) {
		return
	}

	var request evaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	log := logger.FromContext(r.Context())

	result, err := httpserver.councilSrvc.Evaluate(r.Context(), councilsrvc.Request{
		ProjectID:       request.ProjectID,
		SubmissionURL:   request.SubmissionURL,
		SubmissionNotes: request.SubmissionNotes,
	})
	if err != nil {
		// a security rejection still carries the screening verdict
		srvcErr := &srvcerror.Error{}
		if errors.As(err, &srvcErr) &&
			srvcErr.ErrorCode() == councilsrvc.ErrCodeSubmissionRejected &&
			result != nil {
			httpjson.WriteErrorJsonWithData(w, srvcErr.Error(),
				srvcErr.HttpStatusCode(), srvcErr.ErrorCode(), result)
			return
		}
		httpjson.HandleError(log, w, err)
		return
	}

	httpjson.WriteSuccessJson(w, result)
}

func (httpserver *HttpServer) enqueueEvaluation(w http.ResponseWriter, r *http.Request) {
	if !requireAuth(w, r) {
		return
	}

	var request evaluationRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	roundID, err := httpserver.councilSrvc.EnqueueEvaluation(r.Context(), councilsrvc.Request{
		ProjectID:       request.ProjectID,
		SubmissionURL:   request.SubmissionURL,
		SubmissionNotes: request.SubmissionNotes,
	})
	if err != nil {
		httpjson.HandleError(logger.FromContext(r.Context()), w, err)
		return
	}

	httpjson.WriteSuccessJson(w, map[string]string{"round_id": roundID.String()})
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/veriwork/backend/httpjson"
	"github.com/veriwork/backend/logger"
)

func (httpserver *HttpServer) getConsensus(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")

	consensus, err := httpserver.councilSrvc.GetConsensus(r.Context(), projectID)
	if err != nil {
		httpjson.HandleError(logger.FromContext(r.Context()), w, err)
		return
	}

	httpjson.WriteSuccessJson(w, consensus)
}

func (httpserver *HttpServer) getVotes(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")

	votes, err := httpserver.councilSrvc.GetVotes(r.Context(), projectID)
	if err != nil {
		httpjson.HandleError(logger.FromContext(r.Context()), w, err)
		return
	}

	httpjson.WriteSuccessJson(w, votes)
}

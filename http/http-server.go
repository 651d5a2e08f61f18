package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/veriwork/backend/councilsrvc"
)

type HttpServer struct {
	councilSrvc *councilsrvc.CouncilSrvc
	router      *chi.Mux
}

func NewHttpServer(
	councilSrvc *councilsrvc.CouncilSrvc,
	jwtKey []byte,
) *HttpServer {
	router := chi.NewRouter()

	logger := httplog.NewLogger("veriwork", httplog.Options{
		LogLevel:         slog.LevelDebug,
		Concise:          true,
		RequestHeaders:   true,
		MessageFieldName: "message",
		Tags: map[string]string{
			"env": "dev",
		},
	})

	router.Use(httplog.RequestLogger(logger))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "https://veriwork.xyz", "https://www.veriwork.xyz"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           3000,
	}))

	router.Use(getJwtAuthMiddleware(jwtKey))

	server := &HttpServer{
		councilSrvc: councilSrvc,
		router:      router,
	}

	server.routes()

	return server
}

func (httpserver *HttpServer) Start(address string) error {
	return http.ListenAndServe(address, httpserver.router)
}

func (httpserver *HttpServer) routes() {
	r := httpserver.router
	r.Post("/evaluations", httpserver.postEvaluation)
	r.Post("/evaluations/enqueue", httpserver.enqueueEvaluation)
	r.Get("/consensus/{projectId}", httpserver.getConsensus)
	r.Get("/votes/{projectId}", httpserver.getVotes)
}

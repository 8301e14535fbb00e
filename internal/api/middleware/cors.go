package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS allows browser front-ends on other origins to call the API
var CORS = cors.Handler(cors.Options{
	AllowedOrigins:   []string{"https://*", "http://*"},
	AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
	ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
	AllowCredentials: false,
	MaxAge:           300,
})

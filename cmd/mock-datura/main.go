// Command mock-datura runs a deterministic stand-in for the hosted Datura
// API. It serves canned responses for every endpoint the client binds, so
// integration tests and demos can run without an API key or network access.
//
// Configuration:
//
//	MOCK_PORT - Listen port (default: 9090)
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /desearch/ai/search", handleAISearch)
	mux.HandleFunc("POST /desearch/ai/search/links/web", handleWebLinks)
	mux.HandleFunc("POST /desearch/ai/search/links/twitter", handleTwitterLinks)
	mux.HandleFunc("POST /twitter", handleTwitterSearch)
	mux.HandleFunc("GET /web", handleWebSearch)
	mux.HandleFunc("POST /twitter/urls", handleTwitterByURLs)
	mux.HandleFunc("GET /twitter/{id}", handleTwitterByID)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: ":" + port, Handler: requireAuth(mux)}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock datura starting", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock datura failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock datura shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

// requireAuth rejects requests without an Authorization header, the same
// way the hosted API does. Health checks are exempt.
func requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/healthz" && r.Header.Get("Authorization") == "" {
			writeError(w, http.StatusUnauthorized, "Missing authorization header")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// --- AI search ---

type aiSearchRequest struct {
	Prompt     string   `json:"prompt"`
	Tools      []string `json:"tools"`
	Model      string   `json:"model"`
	DateFilter string   `json:"date_filter"`
	Streaming  bool     `json:"streaming"`
}

func handleAISearch(w http.ResponseWriter, r *http.Request) {
	var req aiSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Prompt == "" || len(req.Tools) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "prompt and tools are required")
		return
	}

	if req.Streaming {
		handleAISearchStream(w, &req)
		return
	}

	writeJSON(w, map[string]any{
		"completion": map[string]any{
			"summary": fmt.Sprintf("Mock summary for %q.", req.Prompt),
			"key_posts": []map[string]any{
				{"text": "Mock post", "url": "https://example.com/post/1"},
			},
		},
		"search_results": []map[string]any{
			{"title": "Mock result", "link": "https://example.com/1", "snippet": "A mock search result."},
		},
	})
}

func handleAISearchStream(w http.ResponseWriter, req *aiSearchRequest) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	tokens := []string{"Mock ", "summary ", "for ", fmt.Sprintf("%q.", req.Prompt)}
	for _, token := range tokens {
		data, _ := json.Marshal(map[string]any{
			"type":    "completion",
			"content": token,
		})
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	fmt.Fprintf(w, "data: [DONE]\n\n")
	flusher.Flush()
}

// --- Link searches ---

func handleWebLinks(w http.ResponseWriter, r *http.Request) {
	var req aiSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	writeJSON(w, map[string]any{
		"search_results": []map[string]any{
			{"title": "Mock link", "link": "https://example.com/1", "snippet": "A mock link result."},
			{"title": "Another link", "link": "https://example.com/2", "snippet": "A second mock link."},
		},
	})
}

func handleTwitterLinks(w http.ResponseWriter, r *http.Request) {
	var req aiSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	writeJSON(w, map[string]any{
		"miner_tweets": []map[string]any{
			{"id": "1", "text": "Mock tweet", "url": "https://x.com/mock/status/1"},
		},
	})
}

// --- Basic searches ---

func handleTwitterSearch(w http.ResponseWriter, r *http.Request) {
	var query map[string]any
	if err := json.NewDecoder(r.Body).Decode(&query); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if query["query"] == nil || query["query"] == "" {
		writeError(w, http.StatusUnprocessableEntity, "query is required")
		return
	}

	writeJSON(w, map[string]any{
		"data": []map[string]any{
			{"id": "1", "text": fmt.Sprintf("Mock tweet about %v", query["query"]), "user": map[string]any{"username": "mockuser"}},
		},
	})
}

func handleWebSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusUnprocessableEntity, "query is required")
		return
	}

	num := 10
	if n, err := strconv.Atoi(r.URL.Query().Get("num")); err == nil && n > 0 {
		num = n
	}

	results := make([]map[string]any, 0, num)
	for i := 0; i < num; i++ {
		results = append(results, map[string]any{
			"title":   fmt.Sprintf("Result %d for %s", i+1, query),
			"link":    fmt.Sprintf("https://example.com/%d", i+1),
			"snippet": "A mock web search result.",
		})
	}

	writeJSON(w, map[string]any{"data": results})
}

// --- Tweet retrieval ---

func handleTwitterByURLs(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URLs []string `json:"urls"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.URLs) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "urls are required")
		return
	}

	tweets := make([]map[string]any, 0, len(req.URLs))
	for i, u := range req.URLs {
		id := u
		if idx := strings.LastIndex(u, "/"); idx >= 0 {
			id = u[idx+1:]
		}
		tweets = append(tweets, map[string]any{
			"id":   id,
			"text": fmt.Sprintf("Mock tweet %d", i+1),
			"url":  u,
		})
	}

	writeJSON(w, map[string]any{"data": tweets})
}

func handleTwitterByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	writeJSON(w, map[string]any{
		"id":   id,
		"text": "Mock tweet body",
		"user": map[string]any{"username": "mockuser"},
		"url":  "https://x.com/mockuser/status/" + id,
	})
}

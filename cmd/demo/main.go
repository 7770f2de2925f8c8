// Command demo exercises the Datura client end to end.
//
// By default it talks to a local mock-datura instance on :9090. Set
// DATURA_BASE_URL and DATURA_API_KEY (a .env file works too) to run
// against the hosted API instead.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/datura-ai/datura-go/pkg/datura"
)

func main() {
	if err := run(); err != nil {
		slog.Error("demo failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	godotenv.Load()

	baseURL := os.Getenv("DATURA_BASE_URL")
	if baseURL == "" {
		// Point at a local mock-datura instance by default so the demo
		// runs without an API key billing against the hosted service.
		baseURL = "http://localhost:9090"
	}

	apiKey := os.Getenv("DATURA_API_KEY")
	if apiKey == "" {
		apiKey = "demo-key"
	}

	client, err := datura.New(datura.Config{
		APIKey:  apiKey,
		BaseURL: baseURL,
	})
	if err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fmt.Println("=== datura-go client demo ===")

	// 1. Plain web search.
	fmt.Println("\n[1] Basic web search:")
	res, err := client.BasicWebSearch(ctx, datura.WebSearchQuery{
		Query: "latest Go release",
		Num:   3,
	})
	if err != nil {
		return fmt.Errorf("web search: %w", err)
	}
	for _, item := range res.Get("data").Array() {
		fmt.Printf("    %s\n    %s\n", item.Get("title").String(), item.Get("link").String())
	}

	// 2. AI search with a synthesized answer.
	fmt.Println("\n[2] AI search:")
	res, err = client.AISearch(ctx, datura.AISearchRequest{
		Prompt:     "What changed in the latest Go release?",
		Tools:      []datura.Tool{datura.ToolWebSearch, datura.ToolHackerNewsSearch},
		Model:      datura.ModelNova,
		DateFilter: datura.DateFilterPastMonth,
	})
	if err != nil {
		return fmt.Errorf("ai search: %w", err)
	}
	if summary := res.Get("completion.summary"); summary.Exists() {
		fmt.Printf("    %s\n", summary.String())
	} else {
		fmt.Printf("    %s\n", res.String())
	}

	// 3. The same search, streamed chunk by chunk.
	fmt.Println("\n[3] AI search (streaming):")
	stream, err := client.AISearchStream(ctx, datura.AISearchRequest{
		Prompt: "What changed in the latest Go release?",
		Tools:  []datura.Tool{datura.ToolWebSearch},
		Model:  datura.ModelNova,
	})
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer stream.Close()

	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read stream: %w", err)
		}
		if content := chunk.Get("content"); content.Exists() {
			fmt.Print(content.String())
		} else {
			fmt.Print(chunk.Text())
		}
	}
	fmt.Println()

	fmt.Println("\n=== demo complete ===")
	return nil
}

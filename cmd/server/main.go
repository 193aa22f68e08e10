// Command server wires internal/mcp's JSON-RPC API onto an HTTP listener.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/areumfire/dcf-engine/internal/mcp"
)

// corsMiddleware adds CORS headers and answers preflight requests directly.
func corsMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "content-type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

// handleRoot returns server info for MCP client discovery.
func handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"name":         "dcf-engine-mcp-server",
		"version":      "1.0.0",
		"description":  "Discounted cash flow valuation engine",
		"mcp_endpoint": "/mcp",
	})
}

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	api := mcp.NewAPI()
	server := mcp.NewServer(api)

	http.HandleFunc("/", corsMiddleware(handleRoot))
	http.HandleFunc("/mcp", corsMiddleware(server.HandleMCP))
	http.HandleFunc("/mcp/messages", corsMiddleware(server.HandleMessages))
	http.HandleFunc("/health", corsMiddleware(server.HandleHealth))

	log.Printf("dcf-engine MCP server listening on :%s", port)
	log.Printf("Endpoints:")
	log.Printf("  GET  /             - server info")
	log.Printf("  GET  /mcp          - SSE stream for MCP")
	log.Printf("  POST /mcp          - Streamable HTTP JSON-RPC")
	log.Printf("  POST /mcp/messages - legacy SSE message delivery")
	log.Printf("  GET  /health       - health check")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}

// Package main implements the botctl CLI for operations against a running
// policybot HTTP server.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

var (
	// serverURL is the base URL for the policybot HTTP server
	serverURL string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "botctl",
	Short: "CLI for policybot HTTP server operations",
	Long: `botctl is a command-line interface for interacting with the policybot HTTP server.
It uploads documents, asks questions and checks server health.`,
	Version:      version,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:5000", "policybot server URL")
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(healthCmd)
}

// uploadCmd uploads a PDF for indexing
var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a PDF and add it to the bot",
	Long: `Upload a PDF to the policybot server, which stores and indexes it.

Examples:
  # Upload a policy document
  botctl upload handbook.pdf

  # Use a different server
  botctl upload --server http://localhost:8080 handbook.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

// askCmd asks a question
var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a question about the uploaded documents",
	Long: `Ask the policybot server a question. Multiple arguments are joined with spaces.

Examples:
  botctl ask How many vacation days do I get?`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

// healthCmd checks server health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check policybot server health",
	RunE:  runHealth,
}

// UploadResponse matches the success and error bodies of POST /upload.
type UploadResponse struct {
	Success string `json:"success"`
	Error   string `json:"error"`
}

// QueryResponse matches the success and error bodies of POST /query.
type QueryResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

// HealthResponse matches internal/http HealthResponse
type HealthResponse struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
}

// runUpload handles the upload command
func runUpload(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filepath.Base(args[0]))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	endpoint := serverURL + "/upload"
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	// Indexing runs embeddings over every chunk; allow for large documents.
	client := &http.Client{Timeout: 5 * time.Minute}

	var out UploadResponse
	if err := doJSON(client, req, &out); err != nil {
		return err
	}
	if out.Error != "" {
		return fmt.Errorf("upload failed: %s", out.Error)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.Success)
	return nil
}

// runAsk handles the ask command
func runAsk(cmd *cobra.Command, args []string) error {
	form := url.Values{"question": {strings.Join(args, " ")}}

	endpoint := serverURL + "/query"
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{Timeout: 2 * time.Minute}

	var out QueryResponse
	if err := doJSON(client, req, &out); err != nil {
		return err
	}
	if out.Error != "" {
		return fmt.Errorf("query failed: %s", out.Error)
	}
	fmt.Fprintln(cmd.OutOrStdout(), out.Response)
	return nil
}

// runHealth handles the health command
func runHealth(cmd *cobra.Command, args []string) error {
	endpoint := serverURL + "/health"
	req, err := http.NewRequestWithContext(cmd.Context(), http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	client := &http.Client{Timeout: 5 * time.Second}

	var out HealthResponse
	if err := doJSON(client, req, &out); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Server Status: %s\n", out.Status)
	fmt.Fprintf(w, "Server URL: %s\n", serverURL)
	if out.Documents >= 0 {
		fmt.Fprintf(w, "Indexed Chunks: %d\n", out.Documents)
	}
	return nil
}

// doJSON sends req and decodes the JSON body into out. 400 and 500
// responses carry a JSON error body, so they are decoded too.
func doJSON(client *http.Client, req *http.Request, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

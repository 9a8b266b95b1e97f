// Command invoke triggers one scheduled function over HTTP. It is what the
// external scheduler runs: it mints a short-lived token scoped to the
// function and prints the run summary.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/torn-watcher/internal/config"
	"github.com/torn-watcher/internal/domain"
	jwtinfra "github.com/torn-watcher/internal/infrastructure/jwt"
)

func main() {
	baseURL := flag.String("url", "http://localhost:3000", "base URL of the functions server")
	function := flag.String("function", "", "function to run, e.g. status-watcher")
	limit := flag.Int("limit", 0, "override the batch limit (1-100, 0 keeps the default)")
	caller := flag.String("caller", "scheduler", "caller name recorded in the token")
	flag.Parse()

	if *function == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}
	cfg := config.Load()

	signer, err := jwtinfra.NewSigner(cfg)
	if err != nil {
		log.Fatalf("load signing key: %v", err)
	}
	token, err := signer.Sign(*caller, *function)
	if err != nil {
		log.Fatalf("sign token: %v", err)
	}

	var body io.Reader
	if *limit > 0 {
		raw, err := json.Marshal(domain.RunOptions{Limit: *limit})
		if err != nil {
			log.Fatalf("encode body: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	endpoint := strings.TrimRight(*baseURL, "/") + "/v1/functions/" + *function
	req, err := http.NewRequest(http.MethodPost, endpoint, body)
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: cfg.RunTimeout + 10*time.Second}
	resp, err := client.Do(req)
	if err != nil {
		log.Fatalf("invoke %s: %v", *function, err)
	}
	defer resp.Body.Close()

	out, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Fatalf("read response: %v", err)
	}
	fmt.Println(string(out))
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("invoke %s: status %d", *function, resp.StatusCode)
	}
}

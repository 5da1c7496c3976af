package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"adbudget/internal/core/port"
)

// simulate posts synthetic spend events against the service's ingestion
// endpoint, standing in for an ad-serving pipeline. Each event carries a
// fresh uuid reference id, so re-running the tool never double-applies.
func main() {
	_ = godotenv.Load()

	var (
		baseURL      = flag.String("url", envOr("SIMULATE_URL", "http://localhost:8080"), "service base URL")
		brandID      = flag.Int64("brand", 0, "brand id to spend against (required)")
		campaignID   = flag.Int64("campaign", 0, "campaign id to spend against (0 = brand-level spend)")
		amount       = flag.Float64("amount", 10.0, "amount per transaction")
		transactions = flag.Int("transactions", 5, "number of transactions to send")
		randomize    = flag.Bool("randomize", false, "randomize amounts between 1 and -amount")
	)
	flag.Parse()

	if *brandID == 0 {
		flag.Usage()
		os.Exit(2)
	}

	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	client := &http.Client{Timeout: 10 * time.Second}

	var applied, duplicates, failures int
	total := decimal.Zero
	for i := 0; i < *transactions; i++ {
		amt := *amount
		if *randomize {
			amt = 1 + r.Float64()*(*amount-1)
		}
		ev := port.SpendEvent{
			BrandID:     *brandID,
			Amount:      decimal.NewFromFloat(amt).Round(2),
			ReferenceID: uuid.NewString(),
			Metadata:    map[string]string{"source": "simulator"},
		}
		if *campaignID != 0 {
			ev.CampaignID = campaignID
		}

		res, err := postSpend(client, *baseURL, ev)
		if err != nil {
			failures++
			log.Printf("spend %d failed: %v", i+1, err)
			continue
		}
		if res.Applied {
			applied++
			total = total.Add(ev.Amount)
		} else {
			duplicates++
		}
	}

	fmt.Printf("sent %d transactions: %d applied (%s total), %d duplicates, %d failures\n",
		*transactions, applied, total.StringFixed(2), duplicates, failures)
	if failures > 0 {
		os.Exit(1)
	}
}

func postSpend(client *http.Client, baseURL string, ev port.SpendEvent) (*port.SpendResult, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	resp, err := client.Post(baseURL+"/api/v1/spend", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}
	var res port.SpendResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
